package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// Strategy is one way of reaching the likes provider.
type Strategy interface {
	Name() string
	Attempt(ctx context.Context, req LikeRequest) (*ProviderResponse, error)
}

// Chain tries strategies in order and returns the first valid response.
// Nothing is retried within a strategy.
type Chain struct {
	strategies []Strategy
	timeout    time.Duration
	log        zerolog.Logger
}

// NewChain builds a chain; each attempt is bounded by timeout when positive.
func NewChain(timeout time.Duration, log zerolog.Logger, strategies ...Strategy) *Chain {
	return &Chain{strategies: strategies, timeout: timeout, log: log}
}

// Names lists the strategies in attempt order.
func (ch *Chain) Names() []string {
	out := make([]string, 0, len(ch.strategies))
	for _, s := range ch.strategies {
		out = append(out, s.Name())
	}
	return out
}

// Submit runs the chain. When every strategy fails the error wraps
// ErrUpstreamUnavailable and the last cause.
func (ch *Chain) Submit(ctx context.Context, req LikeRequest) (*ProviderResponse, error) {
	if len(ch.strategies) == 0 {
		return nil, fmt.Errorf("%w: %w", ErrUpstreamUnavailable, ErrNotConfigured)
	}
	var last error
	for _, s := range ch.strategies {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
		}
		resp, err := ch.attempt(ctx, s, req)
		if err == nil {
			return resp, nil
		}
		last = err
		ch.log.Warn().Err(err).
			Str("strategy", s.Name()).
			Str("player_id", req.PlayerID).
			Msg("likes strategy failed; trying next")
	}
	return nil, fmt.Errorf("%w: %w", ErrUpstreamUnavailable, last)
}

func (ch *Chain) attempt(ctx context.Context, s Strategy, req LikeRequest) (*ProviderResponse, error) {
	if ch.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, ch.timeout)
		defer cancel()
	}
	timer := prometheus.NewTimer(attemptDuration.WithLabelValues(s.Name()))
	resp, err := s.Attempt(ctx, req)
	timer.ObserveDuration()
	attempts.WithLabelValues(s.Name(), resultLabel(err)).Inc()
	return resp, err
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, ErrInvalidResponse):
		return "invalid"
	default:
		return "error"
	}
}

// directStrategy calls the provider URL with no intermediary.
type directStrategy struct{ c *Client }

func (s directStrategy) Name() string { return "direct" }

func (s directStrategy) Attempt(ctx context.Context, req LikeRequest) (*ProviderResponse, error) {
	body, err := s.c.get(ctx, s.c.likesURL(req))
	if err != nil {
		return nil, err
	}
	return DecodeProviderResponse(body)
}

// proxyStrategy calls the provider through a pass-through proxy that
// returns the raw body: GET <prefix><urlencoded target>.
type proxyStrategy struct {
	c      *Client
	prefix string
}

func (s proxyStrategy) Name() string { return "proxy" }

func (s proxyStrategy) Attempt(ctx context.Context, req LikeRequest) (*ProviderResponse, error) {
	body, err := s.c.get(ctx, s.prefix+url.QueryEscape(s.c.likesURL(req)))
	if err != nil {
		return nil, err
	}
	return DecodeProviderResponse(body)
}

// envelopeStrategy calls a proxy that wraps the upstream body as a JSON
// string in {"contents": "..."}.
type envelopeStrategy struct {
	c      *Client
	prefix string
}

func (s envelopeStrategy) Name() string { return "envelope" }

func (s envelopeStrategy) Attempt(ctx context.Context, req LikeRequest) (*ProviderResponse, error) {
	body, err := s.c.get(ctx, s.prefix+url.QueryEscape(s.c.likesURL(req)))
	if err != nil {
		return nil, err
	}
	var env struct {
		Contents *string `json:"contents"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: envelope: %v", ErrInvalidResponse, err)
	}
	if env.Contents == nil {
		return nil, fmt.Errorf("%w: envelope without contents", ErrInvalidResponse)
	}
	return DecodeProviderResponse([]byte(*env.Contents))
}

// relayStrategy posts to another deployment's /api/send-likes endpoint.
type relayStrategy struct {
	c      *Client
	url    string
	apiKey string
}

func (s relayStrategy) Name() string { return "relay" }

func (s relayStrategy) Attempt(ctx context.Context, req LikeRequest) (*ProviderResponse, error) {
	payload, err := json.Marshal(map[string]any{"uid": req.PlayerID, "quantity": req.Quantity})
	if err != nil {
		return nil, err
	}
	hreq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}
	hreq.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		hreq.Header.Set("X-API-Key", s.apiKey)
	}
	body, err := s.c.do(hreq)
	if err != nil {
		return nil, err
	}
	return DecodeProviderResponse(body)
}
