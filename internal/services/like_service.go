// Package services – LikeService
//
// LikeService runs one like request end to end: validation, cooldown
// admission, player lookup, the provider call, nickname resolution,
// classification, recording and live notification. The steps run strictly
// in that order; no step starts before the previous one finished.
//
// Observability: Send is OpenTelemetry-instrumented and every finished run
// increments like_requests_total{outcome}.
package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/leozinbrozgg/freefirelikes2025/internal/cooldown"
	"github.com/leozinbrozgg/freefirelikes2025/internal/domain"
	"github.com/leozinbrozgg/freefirelikes2025/internal/reconcile"
	"github.com/leozinbrozgg/freefirelikes2025/internal/upstream"
)

// Request limits.
const (
	DefaultMinPlayerID int64 = 100000001
	DefaultMaxPlayerID int64 = 99999999999
	DefaultMaxQuantity       = 1000
)

// User-facing messages.
const (
	msgSuccess      = "Likes sent successfully"
	msgShortfall    = "Only %d of %d likes were delivered"
	msgLimitReached = "Daily like limit reached for this player, try again in 24h"
)

var likeRequests = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "like_requests_total",
		Help: "Like requests by final result.",
	},
	[]string{"outcome"},
)

func init() {
	prometheus.MustRegister(likeRequests)
}

// Provider is the upstream surface the service needs.
type Provider interface {
	ResolvePlayerInfo(ctx context.Context, playerID string) *upstream.PlayerInfo
	SubmitLikes(ctx context.Context, req upstream.LikeRequest) (*upstream.ProviderResponse, error)
}

// Admitter decides whether a device may start a request.
type Admitter interface {
	TryAdmit(ctx context.Context, deviceID string) cooldown.Decision
}

// Notifier fans out newly recorded entries.
type Notifier interface {
	Publish(ctx context.Context, entry domain.HistoryEntry) error
}

// SendInput is one like request.
type SendInput struct {
	PlayerID string
	Quantity int
	DeviceID string
	ClientID string
	OriginIP string
}

// LikeResult is what the caller sees after a completed run.
type LikeResult struct {
	Entry     *domain.HistoryEntry `json:"entry"`
	Outcome   domain.Outcome       `json:"outcome"`
	LikesSent int64                `json:"likesSent"`
	Requested int                  `json:"requested"`
	Shortfall bool                 `json:"shortfall"`
	Message   string               `json:"message"`
}

// LikeService coordinates a like request.
type LikeService struct {
	Provider Provider
	Cooldown Admitter
	Recorder *HistoryRecorder
	Notifier Notifier // optional
	Log      zerolog.Logger

	MinPlayerID int64
	MaxPlayerID int64
	MaxQuantity int

	// NewAttemptID overrides attempt id generation in tests.
	NewAttemptID func() string
}

// Validate checks the request fields without any I/O.
func (s *LikeService) Validate(playerID string, quantity int) error {
	minID, maxID, maxQty := s.limits()

	playerID = strings.TrimSpace(playerID)
	if playerID == "" {
		return &ValidationError{Field: "playerId", Reason: "required"}
	}
	for _, r := range playerID {
		if r < '0' || r > '9' {
			return &ValidationError{Field: "playerId", Reason: "must contain only digits"}
		}
	}
	id, err := strconv.ParseInt(playerID, 10, 64)
	if err != nil || id < minID || id > maxID {
		return &ValidationError{Field: "playerId", Reason: fmt.Sprintf("must be between %d and %d", minID, maxID)}
	}
	if quantity < 1 || quantity > maxQty {
		return &ValidationError{Field: "quantity", Reason: fmt.Sprintf("must be between 1 and %d", maxQty)}
	}
	return nil
}

// Send runs one request. Every error is one of ErrValidation,
// ErrCooldownActive, ErrUpstreamUnavailable, ErrPlayerUnresolved or
// ErrPersistence.
func (s *LikeService) Send(ctx context.Context, in SendInput) (*LikeResult, error) {
	tr := otel.Tracer("services/LikeService")
	ctx, span := tr.Start(ctx, "Send",
		trace.WithAttributes(
			attribute.String("player.id", in.PlayerID),
			attribute.Int("likes.quantity", in.Quantity),
			attribute.Bool("client.present", in.ClientID != ""),
		),
	)
	defer span.End()

	res, err := s.send(ctx, in)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		likeRequests.WithLabelValues(errorLabel(err)).Inc()
		return nil, err
	}
	span.SetAttributes(
		attribute.String("outcome", string(res.Outcome)),
		attribute.Int64("likes.sent", res.LikesSent),
	)
	likeRequests.WithLabelValues(string(res.Outcome)).Inc()
	return res, nil
}

func (s *LikeService) send(ctx context.Context, in SendInput) (*LikeResult, error) {
	in.PlayerID = strings.TrimSpace(in.PlayerID)
	if err := s.Validate(in.PlayerID, in.Quantity); err != nil {
		return nil, err
	}

	if s.Cooldown != nil {
		if d := s.Cooldown.TryAdmit(ctx, in.DeviceID); !d.Admitted {
			return nil, &CooldownError{Remaining: d.Remaining}
		}
	}

	info := s.Provider.ResolvePlayerInfo(ctx, in.PlayerID)

	req := upstream.LikeRequest{PlayerID: in.PlayerID, Quantity: in.Quantity}
	resp, err := s.Provider.SubmitLikes(ctx, req)
	if err != nil {
		s.Log.Warn().Err(err).Str("player_id", in.PlayerID).Msg("likes provider unreachable")
		if errors.Is(err, ErrUpstreamUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
	}

	nickname, region, ok := resolveNickname(resp, info)
	if !ok {
		s.Log.Warn().Str("player_id", in.PlayerID).Msg("player nickname unresolved")
		return nil, ErrPlayerUnresolved
	}

	cls := reconcile.Classify(*resp)
	if cls.Anomaly != "" {
		s.Log.Warn().Str("player_id", in.PlayerID).Str("anomaly", cls.Anomaly).Msg("provider counters inconsistent")
	}

	attemptID := uuid.NewString()
	if s.NewAttemptID != nil {
		attemptID = s.NewAttemptID()
	}
	entry, created, err := s.Recorder.Record(ctx, RecordInput{
		AttemptID:      attemptID,
		Request:        req,
		Response:       *resp,
		Classification: cls,
		Nickname:       nickname,
		Region:         region,
		ClientID:       in.ClientID,
		OriginIP:       in.OriginIP,
	})
	if err != nil {
		return nil, err
	}

	if created && s.Notifier != nil {
		if err := s.Notifier.Publish(ctx, *entry); err != nil {
			s.Log.Warn().Err(err).Str("entry_id", entry.ID).Msg("live feed publish failed")
		}
	}

	return &LikeResult{
		Entry:     entry,
		Outcome:   cls.Outcome,
		LikesSent: cls.LikesSentActual,
		Requested: in.Quantity,
		Shortfall: cls.Shortfall(in.Quantity),
		Message:   resultMessage(cls, in.Quantity),
	}, nil
}

// ResultFromEntry rebuilds the result of a recorded entry, as returned when
// an idempotent request is replayed.
func ResultFromEntry(e *domain.HistoryEntry) *LikeResult {
	cls := reconcile.Classification{
		Outcome:         e.Outcome,
		LikesSentActual: e.LikesSentActual,
		Delta:           e.LikesAfter - e.LikesBefore,
	}
	return &LikeResult{
		Entry:     e,
		Outcome:   e.Outcome,
		LikesSent: e.LikesSentActual,
		Requested: e.QuantityRequested,
		Shortfall: cls.Shortfall(e.QuantityRequested),
		Message:   resultMessage(cls, e.QuantityRequested),
	}
}

// resolveNickname prefers the provider's own nickname, then the lookup.
func resolveNickname(resp *upstream.ProviderResponse, info *upstream.PlayerInfo) (nickname, region string, ok bool) {
	if !upstream.IsPlaceholderNickname(resp.PlayerNickname) {
		return strings.TrimSpace(resp.PlayerNickname), upstream.NormalizeRegion(resp.PlayerRegion), true
	}
	if info != nil && !upstream.IsPlaceholderNickname(info.Nickname) {
		return strings.TrimSpace(info.Nickname), upstream.NormalizeRegion(info.Region), true
	}
	return "", "", false
}

func resultMessage(cls reconcile.Classification, requested int) string {
	switch {
	case cls.Outcome == domain.OutcomeLimitReached:
		return msgLimitReached
	case cls.Shortfall(requested):
		return fmt.Sprintf(msgShortfall, cls.LikesSentActual, requested)
	default:
		return msgSuccess
	}
}

func errorLabel(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return "invalid"
	case errors.Is(err, ErrCooldownActive):
		return "cooldown"
	case errors.Is(err, ErrUpstreamUnavailable):
		return "upstream_unavailable"
	case errors.Is(err, ErrPlayerUnresolved):
		return "player_unresolved"
	default:
		return "error"
	}
}

func (s *LikeService) limits() (minID, maxID int64, maxQty int) {
	minID, maxID, maxQty = s.MinPlayerID, s.MaxPlayerID, s.MaxQuantity
	if minID <= 0 {
		minID = DefaultMinPlayerID
	}
	if maxID <= 0 {
		maxID = DefaultMaxPlayerID
	}
	if maxQty <= 0 {
		maxQty = DefaultMaxQuantity
	}
	return minID, maxID, maxQty
}
