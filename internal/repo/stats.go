package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/leozinbrozgg/freefirelikes2025/internal/domain"
)

// HistoryStats summarizes a set of history entries.
type HistoryStats struct {
	Total      int64 `json:"total"`
	Successful int64 `json:"successful"`
	Failed     int64 `json:"failed"`
	TotalLikes int64 `json:"totalLikes"`
}

// ClientAggregate is a client's counters as derived from history_entries.
type ClientAggregate struct {
	TotalLikesSent     int64      `json:"totalLikesSent"`
	UniquePlayersCount int64      `json:"uniquePlayersCount"`
	LastActivityAt     *time.Time `json:"lastActivityAt,omitempty"`
}

// AccessStats counts clients and access codes for the admin dashboard.
type AccessStats struct {
	Clients     int64 `json:"clients"`
	Codes       int64 `json:"codes"`
	UsedCodes   int64 `json:"usedCodes"`
	ActiveCodes int64 `json:"activeCodes"`
}

// GlobalHistoryStats aggregates every recorded entry.
func GlobalHistoryStats(ctx context.Context, db *gorm.DB) (HistoryStats, error) {
	return historyStats(db.WithContext(ctx).Model(&domain.HistoryEntry{}))
}

// PlayerHistoryStats aggregates the entries of one player.
func PlayerHistoryStats(ctx context.Context, db *gorm.DB, playerID string) (HistoryStats, error) {
	return historyStats(db.WithContext(ctx).Model(&domain.HistoryEntry{}).Where("player_id = ?", playerID))
}

func historyStats(q *gorm.DB) (HistoryStats, error) {
	var row struct {
		Total      int64
		Successful int64
		TotalLikes int64
	}
	ok := []string{string(domain.OutcomeSuccess), string(domain.OutcomePartialSuccess)}
	err := q.Select(
		"COUNT(*) AS total, "+
			"COALESCE(SUM(CASE WHEN outcome IN ? THEN 1 ELSE 0 END), 0) AS successful, "+
			"COALESCE(SUM(CASE WHEN outcome IN ? THEN likes_sent_actual ELSE 0 END), 0) AS total_likes",
		ok, ok,
	).Scan(&row).Error
	if err != nil {
		return HistoryStats{}, err
	}
	return HistoryStats{
		Total:      row.Total,
		Successful: row.Successful,
		Failed:     row.Total - row.Successful,
		TotalLikes: row.TotalLikes,
	}, nil
}

// ScanClientAggregate rebuilds a client's counters from the global history,
// the ground truth the cached columns on clients are compared against.
func ScanClientAggregate(ctx context.Context, db *gorm.DB, clientID string) (ClientAggregate, error) {
	q := db.WithContext(ctx).Model(&domain.HistoryEntry{}).
		Where("client_id = ? AND likes_sent_actual > 0", clientID).
		Session(&gorm.Session{})

	var row struct {
		TotalLikes int64
		Players    int64
	}
	if err := q.
		Select("COALESCE(SUM(likes_sent_actual), 0) AS total_likes, COUNT(DISTINCT player_id) AS players").
		Scan(&row).Error; err != nil {
		return ClientAggregate{}, err
	}
	agg := ClientAggregate{TotalLikesSent: row.TotalLikes, UniquePlayersCount: row.Players}
	if row.Players == 0 {
		return agg, nil
	}

	// Latest created_at (avoid MAX() -> TEXT in SQLite)
	var last domain.HistoryEntry
	err := q.Select("created_at").Order("created_at DESC").Limit(1).Take(&last).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return ClientAggregate{}, err
	}
	if err == nil {
		t := last.CreatedAt
		agg.LastActivityAt = &t
	}
	return agg, nil
}

// CountAccess returns client and access-code counts; a code is active when
// unused and not past its expiry at now.
func CountAccess(ctx context.Context, db *gorm.DB, now time.Time) (AccessStats, error) {
	var s AccessStats
	d := db.WithContext(ctx)
	if err := d.Model(&domain.Client{}).Count(&s.Clients).Error; err != nil {
		return s, err
	}
	if err := d.Model(&domain.AccessCode{}).Count(&s.Codes).Error; err != nil {
		return s, err
	}
	if err := d.Model(&domain.AccessCode{}).Where("used = ?", true).Count(&s.UsedCodes).Error; err != nil {
		return s, err
	}
	if err := d.Model(&domain.AccessCode{}).Where("used = ? AND expires_at > ?", false, now).Count(&s.ActiveCodes).Error; err != nil {
		return s, err
	}
	return s, nil
}
