// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the global
// like history.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions. They follow the "thin repository"
// approach: no business logic, only persistence and query composition.
//
// Error semantics:
//   - Missing rows return ErrNotFound (alias of gorm.ErrRecordNotFound).
//   - A second insert for the same attempt id returns ErrDuplicate.
//   - Other DB errors are propagated unchanged.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/leozinbrozgg/freefirelikes2025/internal/domain"
)

// CreateHistoryEntry inserts e. The caller assigns ID, AttemptID and CreatedAt.
func CreateHistoryEntry(ctx context.Context, db *gorm.DB, e *domain.HistoryEntry) error {
	if err := db.WithContext(ctx).Create(e).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// GetHistoryEntry fetches a single entry by id.
func GetHistoryEntry(ctx context.Context, db *gorm.DB, id string) (*domain.HistoryEntry, error) {
	var e domain.HistoryEntry
	if err := db.WithContext(ctx).First(&e, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

// GetHistoryEntryByAttempt fetches the entry recorded for an orchestration run.
func GetHistoryEntryByAttempt(ctx context.Context, db *gorm.DB, attemptID string) (*domain.HistoryEntry, error) {
	var e domain.HistoryEntry
	if err := db.WithContext(ctx).First(&e, "attempt_id = ?", attemptID).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

// CountHistory returns the number of recorded entries.
func CountHistory(ctx context.Context, db *gorm.DB) (int64, error) {
	var n int64
	err := db.WithContext(ctx).Model(&domain.HistoryEntry{}).Count(&n).Error
	return n, err
}

// ListHistoryPage returns entries newest-first.
func ListHistoryPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.HistoryEntry, error) {
	if offset < 0 {
		offset = 0
	}
	var out []domain.HistoryEntry
	err := db.WithContext(ctx).
		Order("created_at DESC").Order("id DESC").
		Offset(offset).Limit(limit).
		Find(&out).Error
	return out, err
}

// ListPlayerHistory returns the newest entries for one player.
func ListPlayerHistory(ctx context.Context, db *gorm.DB, playerID string, limit int) ([]domain.HistoryEntry, error) {
	var out []domain.HistoryEntry
	err := db.WithContext(ctx).
		Where("player_id = ?", playerID).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Find(&out).Error
	return out, err
}
