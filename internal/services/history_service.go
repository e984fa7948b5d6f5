// Package services – HistoryService
//
// HistoryService serves the read side of the global history: paginated
// listings, aggregate stats and per-player history. Everything is read from
// durable storage so results are stable across restarts.
package services

import (
	"context"

	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/leozinbrozgg/freefirelikes2025/internal/domain"
	"github.com/leozinbrozgg/freefirelikes2025/internal/repo"
)

// Listing limits for history queries.
const (
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 200
)

// HistoryRepo defines the repository contract required by HistoryService.
type HistoryRepo interface {
	// CountHistory returns the number of recorded entries.
	CountHistory(ctx context.Context, db *gorm.DB) (int64, error)

	// ListHistoryPage returns entries newest-first.
	ListHistoryPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.HistoryEntry, error)

	// ListPlayerHistory returns a player's entries newest-first.
	ListPlayerHistory(ctx context.Context, db *gorm.DB, playerID string, limit int) ([]domain.HistoryEntry, error)

	// GlobalHistoryStats aggregates every entry.
	GlobalHistoryStats(ctx context.Context, db *gorm.DB) (repo.HistoryStats, error)

	// PlayerHistoryStats aggregates one player's entries.
	PlayerHistoryStats(ctx context.Context, db *gorm.DB, playerID string) (repo.HistoryStats, error)
}

// gormHistoryRepo adapts the repo package functions to HistoryRepo.
type gormHistoryRepo struct{}

func (gormHistoryRepo) CountHistory(ctx context.Context, db *gorm.DB) (int64, error) {
	return repo.CountHistory(ctx, db)
}

func (gormHistoryRepo) ListHistoryPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.HistoryEntry, error) {
	return repo.ListHistoryPage(ctx, db, offset, limit)
}

func (gormHistoryRepo) ListPlayerHistory(ctx context.Context, db *gorm.DB, playerID string, limit int) ([]domain.HistoryEntry, error) {
	return repo.ListPlayerHistory(ctx, db, playerID, limit)
}

func (gormHistoryRepo) GlobalHistoryStats(ctx context.Context, db *gorm.DB) (repo.HistoryStats, error) {
	return repo.GlobalHistoryStats(ctx, db)
}

func (gormHistoryRepo) PlayerHistoryStats(ctx context.Context, db *gorm.DB, playerID string) (repo.HistoryStats, error) {
	return repo.PlayerHistoryStats(ctx, db, playerID)
}

// HistoryPage is one page of the global history.
type HistoryPage struct {
	Entries []domain.HistoryEntry
	Stats   repo.HistoryStats
	Total   int64
	Limit   int
	Offset  int
}

// HasMore reports whether entries exist beyond this page.
func (p HistoryPage) HasMore() bool {
	return int64(p.Offset+len(p.Entries)) < p.Total
}

// HistoryService provides history queries.
type HistoryService struct {
	DB   *gorm.DB
	Repo HistoryRepo
}

// NewHistoryService constructs a HistoryService backed by the repo package.
func NewHistoryService(db *gorm.DB) *HistoryService {
	return &HistoryService{DB: db, Repo: gormHistoryRepo{}}
}

// ClampLimit bounds a requested page size to [1, MaxHistoryLimit],
// defaulting non-positive values.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		return MaxHistoryLimit
	}
	return limit
}

// Page returns entries newest-first with global stats and the total count.
func (s *HistoryService) Page(ctx context.Context, offset, limit int) (*HistoryPage, error) {
	tr := otel.Tracer("services/HistoryService")
	ctx, span := tr.Start(ctx, "Page",
		trace.WithAttributes(
			attribute.Int("page.offset", offset),
			attribute.Int("page.limit", limit),
		),
	)
	defer span.End()

	if offset < 0 {
		offset = 0
	}
	limit = ClampLimit(limit)

	stats, err := s.Repo.GlobalHistoryStats(ctx, s.DB)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	page := &HistoryPage{Stats: stats, Total: stats.Total, Limit: limit, Offset: offset, Entries: []domain.HistoryEntry{}}
	if stats.Total == 0 || int64(offset) >= stats.Total {
		return page, nil
	}

	items, err := s.Repo.ListHistoryPage(ctx, s.DB, offset, limit)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	page.Entries = items
	return page, nil
}

// Stats returns the global aggregates.
func (s *HistoryService) Stats(ctx context.Context) (repo.HistoryStats, error) {
	tr := otel.Tracer("services/HistoryService")
	ctx, span := tr.Start(ctx, "Stats")
	defer span.End()

	return s.Repo.GlobalHistoryStats(ctx, s.DB)
}

// PlayerHistory returns the most recent entries for one player and their
// aggregates. The player id is validated like a like request.
func (s *HistoryService) PlayerHistory(ctx context.Context, playerID string, limit int) ([]domain.HistoryEntry, repo.HistoryStats, error) {
	tr := otel.Tracer("services/HistoryService")
	ctx, span := tr.Start(ctx, "PlayerHistory",
		trace.WithAttributes(attribute.String("player.id", playerID)),
	)
	defer span.End()

	if err := (&LikeService{}).Validate(playerID, 1); err != nil {
		return nil, repo.HistoryStats{}, err
	}
	limit = ClampLimit(limit)

	items, err := s.Repo.ListPlayerHistory(ctx, s.DB, playerID, limit)
	if err != nil {
		return nil, repo.HistoryStats{}, err
	}
	stats, err := s.Repo.PlayerHistoryStats(ctx, s.DB, playerID)
	if err != nil {
		return nil, repo.HistoryStats{}, err
	}
	return items, stats, nil
}
