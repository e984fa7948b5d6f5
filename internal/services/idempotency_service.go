// Package services – IdempotencyService
//
// IdempotencyService remembers which history entry a (device, Idempotency-Key)
// pair produced so a retried like request replays the stored entry instead
// of calling the provider again.
package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/leozinbrozgg/freefirelikes2025/internal/clock"
	"github.com/leozinbrozgg/freefirelikes2025/internal/domain"
	"github.com/leozinbrozgg/freefirelikes2025/internal/repo"
)

// DefaultIdempotencyTTL applies when TTL is unset.
const DefaultIdempotencyTTL = 24 * time.Hour

// IdempotencyService stores and replays idempotent like results.
type IdempotencyService struct {
	DB    *gorm.DB
	TTL   time.Duration
	Clock clock.Clock
}

// Exists reports whether a live record exists for (deviceID, key).
func (s *IdempotencyService) Exists(ctx context.Context, deviceID, key string, now time.Time) (bool, error) {
	_, err := repo.GetIdempotency(ctx, s.DB, deviceID, key, now)
	if errors.Is(err, repo.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// Lookup returns the entry recorded for (deviceID, key), or repo.ErrNotFound.
func (s *IdempotencyService) Lookup(ctx context.Context, deviceID, key string) (*domain.HistoryEntry, error) {
	rec, err := repo.GetIdempotency(ctx, s.DB, deviceID, key, s.now())
	if err != nil {
		return nil, err
	}
	return repo.GetHistoryEntry(ctx, s.DB, rec.EntryID)
}

// Save records entryID for (deviceID, key). A concurrent save of the same
// pair is not an error.
func (s *IdempotencyService) Save(ctx context.Context, deviceID, key, entryID string, status int) error {
	ttl := s.TTL
	if ttl <= 0 {
		ttl = DefaultIdempotencyTTL
	}
	_, err := repo.CreateIdempotency(ctx, s.DB, deviceID, key, entryID, status, ttl)
	if errors.Is(err, repo.ErrDuplicate) {
		return nil
	}
	return err
}

// Purge deletes expired records and returns how many were removed.
func (s *IdempotencyService) Purge(ctx context.Context) (int64, error) {
	return repo.PurgeExpiredIdempotency(ctx, s.DB, s.now())
}

func (s *IdempotencyService) now() time.Time {
	if s.Clock != nil {
		return s.Clock.Now().UTC()
	}
	return time.Now().UTC()
}
