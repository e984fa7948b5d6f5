// Package services – HistoryRecorder
//
// HistoryRecorder persists exactly one global history entry per orchestration
// run and, when the run belongs to a client and granted likes, updates that
// client's cached aggregates. The two writes fail independently: the global
// write is authoritative and its failure is returned, while a failed
// client-scoped write is logged and swallowed.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/leozinbrozgg/freefirelikes2025/internal/clock"
	"github.com/leozinbrozgg/freefirelikes2025/internal/domain"
	"github.com/leozinbrozgg/freefirelikes2025/internal/reconcile"
	"github.com/leozinbrozgg/freefirelikes2025/internal/repo"
	"github.com/leozinbrozgg/freefirelikes2025/internal/upstream"
)

// RecordInput is everything known about a completed run.
type RecordInput struct {
	AttemptID      string
	Request        upstream.LikeRequest
	Response       upstream.ProviderResponse
	Classification reconcile.Classification
	Nickname       string
	Region         string
	ClientID       string
	OriginIP       string
}

// HistoryRecorder writes history entries and client aggregates.
type HistoryRecorder struct {
	DB    *gorm.DB
	Log   zerolog.Logger
	Clock clock.Clock

	// Test seams; nil uses the repo implementations.
	ApplyAtomic     func(ctx context.Context, db *gorm.DB, d repo.ClientDelta) error
	ApplySequential func(ctx context.Context, db *gorm.DB, d repo.ClientDelta) error

	mu   sync.Mutex
	last time.Time
}

// Record stores the run. created is false when the attempt had already been
// recorded, in which case the stored entry is returned untouched.
func (r *HistoryRecorder) Record(ctx context.Context, in RecordInput) (entry *domain.HistoryEntry, created bool, err error) {
	tr := otel.Tracer("services/HistoryRecorder")
	ctx, span := tr.Start(ctx, "Record",
		trace.WithAttributes(
			attribute.String("attempt.id", in.AttemptID),
			attribute.String("player.id", in.Request.PlayerID),
			attribute.String("outcome", string(in.Classification.Outcome)),
		),
	)
	defer span.End()

	if in.AttemptID == "" {
		in.AttemptID = uuid.NewString()
	}
	cls := in.Classification
	e := &domain.HistoryEntry{
		ID:                uuid.NewString(),
		AttemptID:         in.AttemptID,
		PlayerID:          in.Request.PlayerID,
		PlayerNickname:    in.Nickname,
		PlayerRegion:      upstream.NormalizeRegion(in.Region),
		QuantityRequested: in.Request.Quantity,
		LikesBefore:       in.Response.LikesBefore,
		LikesAfter:        in.Response.LikesAfter,
		LikesReported:     in.Response.LikesReported,
		LikesSentActual:   cls.LikesSentActual,
		PlayerLevel:       in.Response.PlayerLevel,
		PlayerExp:         in.Response.PlayerExp,
		Outcome:           cls.Outcome,
		OriginIP:          in.OriginIP,
		CreatedAt:         r.stamp(),
	}
	if in.ClientID != "" {
		cid := in.ClientID
		e.ClientID = &cid
	}

	if err := repo.CreateHistoryEntry(ctx, r.DB, e); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			existing, gerr := repo.GetHistoryEntryByAttempt(ctx, r.DB, in.AttemptID)
			if gerr == nil {
				return existing, false, nil
			}
			err = gerr
		}
		span.RecordError(err)
		// The provider may already have granted likes; leave enough to reconcile by hand.
		r.Log.Error().Err(err).
			Str("attempt_id", in.AttemptID).
			Str("player_id", e.PlayerID).
			Int64("likes_before", e.LikesBefore).
			Int64("likes_after", e.LikesAfter).
			Str("client_id", in.ClientID).
			Msg("global history write failed")
		return nil, false, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if in.ClientID != "" && cls.LikesSentActual > 0 {
		r.applyClient(ctx, repo.ClientDelta{
			ClientID: in.ClientID,
			PlayerID: e.PlayerID,
			Nickname: e.PlayerNickname,
			Region:   e.PlayerRegion,
			Likes:    cls.LikesSentActual,
			At:       e.CreatedAt,
		})
	}
	return e, true, nil
}

// applyClient updates the client aggregates, preferring the single
// transaction and falling back to sequential writes. Errors are swallowed.
func (r *HistoryRecorder) applyClient(ctx context.Context, d repo.ClientDelta) {
	atomic, sequential := r.ApplyAtomic, r.ApplySequential
	if atomic == nil {
		atomic = repo.ApplyClientLikes
	}
	if sequential == nil {
		sequential = repo.ApplyClientLikesSequential
	}

	err := atomic(ctx, r.DB, d)
	if err == nil {
		return
	}
	r.Log.Warn().Err(err).Str("client_id", d.ClientID).Msg("client aggregate transaction failed; using sequential update")
	if err := sequential(ctx, r.DB, d); err != nil {
		r.Log.Error().Err(err).
			Str("client_id", d.ClientID).
			Str("player_id", d.PlayerID).
			Int64("likes", d.Likes).
			Msg("client aggregate update failed")
	}
}

// stamp returns a creation time never earlier than the previous one.
func (r *HistoryRecorder) stamp() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	var now time.Time
	if r.Clock != nil {
		now = r.Clock.Now().UTC()
	} else {
		now = time.Now().UTC()
	}
	if !now.After(r.last) {
		now = r.last.Add(time.Microsecond)
	}
	r.last = now
	return now
}
