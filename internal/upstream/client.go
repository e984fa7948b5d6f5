// Package upstream talks to the third-party likes provider. It exposes the
// player-info lookup, the like submission with its ordered fallback chain,
// and a raw forwarding primitive used by the relay endpoints.
package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

const (
	// DefaultTimeout bounds every upstream call.
	DefaultTimeout = 10 * time.Second

	maxBodyBytes = 1 << 20
)

var (
	attempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstream_attempts_total",
			Help: "Like submission attempts by strategy and result.",
		},
		[]string{"strategy", "result"},
	)
	attemptDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "upstream_attempt_duration_seconds",
			Help:    "Duration of like submission attempts by strategy.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"strategy"},
	)
	playerLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstream_player_lookups_total",
			Help: "Player info lookups by result.",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(attempts, attemptDuration, playerLookups)
}

// Config locates the provider and the fallback intermediaries.
type Config struct {
	LikesURL  string // base URL of the likes endpoint
	LikesKey  string
	PlayerURL string // base URL of the player-info endpoint
	PlayerKey string

	ProxyURL    string // pass-through proxy prefix
	EnvelopeURL string // envelope proxy prefix
	RelayURL    string // peer /api/send-likes endpoint
	RelayAPIKey string

	Timeout    time.Duration
	Strategies []string // attempt order: relay, proxy, envelope, direct
}

// Endpoint selects the provider endpoint Forward targets.
type Endpoint int

const (
	EndpointLikes Endpoint = iota
	EndpointPlayer
)

// Forwarded is a raw upstream reply.
type Forwarded struct {
	Status      int
	Body        []byte
	ContentType string
}

// Client is the provider adapter.
type Client struct {
	cfg     Config
	http    *http.Client
	now     func() time.Time
	log     zerolog.Logger
	chain   *Chain
	custom  []Strategy
	lookups singleflight.Group
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.http = h } }

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option { return func(c *Client) { c.log = l } }

// WithNow sets the time source used for cache busters.
func WithNow(now func() time.Time) Option { return func(c *Client) { c.now = now } }

// WithStrategies replaces the configured chain.
func WithStrategies(s ...Strategy) Option {
	return func(c *Client) { c.custom = s }
}

// New builds a Client. Strategies whose prerequisites are missing from cfg
// are left out of the chain.
func New(cfg Config, opts ...Option) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.PlayerKey == "" {
		cfg.PlayerKey = cfg.LikesKey
	}
	c := &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		now:  time.Now,
		log:  zerolog.Nop(),
	}
	for _, o := range opts {
		if o != nil {
			o(c)
		}
	}
	if c.custom != nil {
		c.chain = NewChain(cfg.Timeout, c.log, c.custom...)
	} else {
		c.chain = NewChain(cfg.Timeout, c.log, c.buildStrategies()...)
	}
	return c
}

func (c *Client) buildStrategies() []Strategy {
	names := c.cfg.Strategies
	if len(names) == 0 {
		names = []string{"relay", "proxy", "envelope", "direct"}
	}
	hasProvider := c.cfg.LikesURL != "" && c.cfg.LikesKey != ""
	out := make([]Strategy, 0, len(names))
	for _, n := range names {
		switch strings.ToLower(strings.TrimSpace(n)) {
		case "relay":
			if c.cfg.RelayURL != "" {
				out = append(out, relayStrategy{c: c, url: c.cfg.RelayURL, apiKey: c.cfg.RelayAPIKey})
			}
		case "proxy":
			if hasProvider && c.cfg.ProxyURL != "" {
				out = append(out, proxyStrategy{c: c, prefix: c.cfg.ProxyURL})
			}
		case "envelope":
			if hasProvider && c.cfg.EnvelopeURL != "" {
				out = append(out, envelopeStrategy{c: c, prefix: c.cfg.EnvelopeURL})
			}
		case "direct":
			if hasProvider {
				out = append(out, directStrategy{c: c})
			}
		default:
			c.log.Warn().Str("strategy", n).Msg("unknown likes strategy ignored")
		}
	}
	return out
}

// Strategies lists the active chain in attempt order.
func (c *Client) Strategies() []string { return c.chain.Names() }

// SubmitLikes asks the provider to send likes, walking the fallback chain.
func (c *Client) SubmitLikes(ctx context.Context, req LikeRequest) (*ProviderResponse, error) {
	return c.chain.Submit(ctx, req)
}

// ResolvePlayerInfo looks up the player's nickname and region. It returns
// nil when the lookup fails or only yields a placeholder nickname.
// Concurrent lookups for the same player share one request; that request
// runs detached from any single caller, so one caller going away does not
// fail the others.
func (c *Client) ResolvePlayerInfo(ctx context.Context, playerID string) *PlayerInfo {
	if c.cfg.PlayerURL == "" || c.cfg.PlayerKey == "" {
		return nil
	}
	ch := c.lookups.DoChan(playerID, func() (any, error) {
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.cfg.Timeout)
		defer cancel()

		body, err := c.get(lctx, c.playerURL(playerID))
		if err != nil {
			playerLookups.WithLabelValues("error").Inc()
			c.log.Debug().Err(err).Str("player_id", playerID).Msg("player info lookup failed")
			return (*PlayerInfo)(nil), nil
		}
		resp, err := decodePlayerInfo(body)
		if err != nil || IsPlaceholderNickname(resp.Nickname) {
			playerLookups.WithLabelValues("unresolved").Inc()
			return (*PlayerInfo)(nil), nil
		}
		playerLookups.WithLabelValues("ok").Inc()
		return resp, nil
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil
	case res = <-ch:
	}
	info, _ := res.Val.(*PlayerInfo)
	if info == nil {
		return nil
	}
	cp := *info
	return &cp
}

// Forward calls the provider endpoint with params plus the secret key and a
// cache buster, returning the raw status and body. Non-2xx replies are not
// errors; only transport failures are.
func (c *Client) Forward(ctx context.Context, ep Endpoint, params url.Values) (*Forwarded, error) {
	base, key := c.cfg.LikesURL, c.cfg.LikesKey
	if ep == EndpointPlayer {
		base, key = c.cfg.PlayerURL, c.cfg.PlayerKey
	}
	if base == "" || key == "" {
		return nil, ErrNotConfigured
	}
	q := url.Values{}
	for k, vs := range params {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	q.Set("key", key)
	q.Set("_t", c.cacheBuster())

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, withQuery(base, q), nil)
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer res.Body.Close()
	body, err := io.ReadAll(io.LimitReader(res.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body failed: %w", err)
	}
	return &Forwarded{Status: res.StatusCode, Body: body, ContentType: res.Header.Get("Content-Type")}, nil
}

func decodePlayerInfo(body []byte) (*PlayerInfo, error) {
	var w struct {
		PlayerNickname string `json:"PlayerNickname"`
		PlayerRegion   string `json:"PlayerRegion"`
	}
	if err := json.Unmarshal(body, &w); err != nil {
		return nil, err
	}
	return &PlayerInfo{
		Nickname: strings.TrimSpace(w.PlayerNickname),
		Region:   NormalizeRegion(w.PlayerRegion),
	}, nil
}

func (c *Client) likesURL(req LikeRequest) string {
	q := url.Values{}
	q.Set("uid", req.PlayerID)
	q.Set("quantity", strconv.Itoa(req.Quantity))
	q.Set("key", c.cfg.LikesKey)
	q.Set("_t", c.cacheBuster())
	return withQuery(c.cfg.LikesURL, q)
}

func (c *Client) playerURL(playerID string) string {
	q := url.Values{}
	q.Set("uid", playerID)
	q.Set("key", c.cfg.PlayerKey)
	q.Set("_t", c.cacheBuster())
	return withQuery(c.cfg.PlayerURL, q)
}

func (c *Client) cacheBuster() string {
	return strconv.FormatInt(c.now().UnixMilli(), 10)
}

func withQuery(base string, q url.Values) string {
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + q.Encode()
}

func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	return c.do(req)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(res.Body, maxBodyBytes))
		return nil, &StatusError{Code: res.StatusCode}
	}
	body, err := io.ReadAll(io.LimitReader(res.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body failed: %w", err)
	}
	return body, nil
}
