package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/leozinbrozgg/freefirelikes2025/internal/domain"
)

// ClientDelta is one confirmed grant to apply to a client's aggregates.
type ClientDelta struct {
	ClientID string
	PlayerID string
	Nickname string
	Region   string
	Likes    int64
	At       time.Time
}

// CreateClient inserts a client with zeroed counters.
func CreateClient(ctx context.Context, db *gorm.DB, name, email, phone string) (*domain.Client, error) {
	now := time.Now().UTC()
	c := &domain.Client{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     email,
		Phone:     phone,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := db.WithContext(ctx).Create(c).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return c, nil
}

// GetClient fetches a client by id.
func GetClient(ctx context.Context, db *gorm.DB, id string) (*domain.Client, error) {
	var c domain.Client
	if err := db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// GetClientByName fetches a client by its unique name.
func GetClientByName(ctx context.Context, db *gorm.DB, name string) (*domain.Client, error) {
	var c domain.Client
	if err := db.WithContext(ctx).First(&c, "name = ?", name).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// FindOrCreateClient returns the client named name, creating it if needed.
// A concurrent creator winning the unique index is resolved by re-reading.
func FindOrCreateClient(ctx context.Context, db *gorm.DB, name string) (*domain.Client, error) {
	c, err := GetClientByName(ctx, db, name)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	c, err = CreateClient(ctx, db, name, "", "")
	if errors.Is(err, ErrDuplicate) {
		return GetClientByName(ctx, db, name)
	}
	return c, err
}

// CountClients returns the number of clients.
func CountClients(ctx context.Context, db *gorm.DB) (int64, error) {
	var n int64
	err := db.WithContext(ctx).Model(&domain.Client{}).Count(&n).Error
	return n, err
}

// ListClientsPage returns clients ordered by total likes sent, highest first.
func ListClientsPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.Client, error) {
	if offset < 0 {
		offset = 0
	}
	var out []domain.Client
	err := db.WithContext(ctx).
		Order("total_likes_sent DESC").Order("created_at ASC").
		Offset(offset).Limit(limit).
		Find(&out).Error
	return out, err
}

// RecentClientPlayers returns the players a client most recently sent likes to.
func RecentClientPlayers(ctx context.Context, db *gorm.DB, clientID string, limit int) ([]domain.ClientPlayerTotal, error) {
	var out []domain.ClientPlayerTotal
	err := db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("last_sent_at DESC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// ApplyClientLikes applies d in a single transaction: increments the client
// total, upserts the per-player row and recomputes the distinct player count.
func ApplyClientLikes(ctx context.Context, db *gorm.DB, d ClientDelta) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.Client{}).
			Where("id = ?", d.ClientID).
			Updates(map[string]any{
				"total_likes_sent": gorm.Expr("total_likes_sent + ?", d.Likes),
				"last_activity_at": d.At,
				"updated_at":       d.At,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}

		row := newPlayerTotal(d)
		err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "client_id"}, {Name: "player_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"total_sent":      gorm.Expr("client_player_totals.total_sent + ?", d.Likes),
				"last_sent_at":    d.At,
				"player_nickname": d.Nickname,
				"player_region":   d.Region,
			}),
		}).Create(row).Error
		if err != nil {
			return err
		}
		return recomputeUniquePlayers(tx, d.ClientID)
	})
}

// ApplyClientLikesSequential is the non-transactional fallback for
// ApplyClientLikes. Each step is a separate read-modify-write; the final
// distinct-count recompute repairs drift left by an earlier partial run.
func ApplyClientLikesSequential(ctx context.Context, db *gorm.DB, d ClientDelta) error {
	tx := db.WithContext(ctx)

	var c domain.Client
	if err := tx.First(&c, "id = ?", d.ClientID).Error; err != nil {
		return err
	}
	c.TotalLikesSent += d.Likes
	at := d.At
	c.LastActivityAt = &at
	c.UpdatedAt = d.At
	if err := tx.Model(&domain.Client{}).Where("id = ?", c.ID).Updates(map[string]any{
		"total_likes_sent": c.TotalLikesSent,
		"last_activity_at": c.LastActivityAt,
		"updated_at":       c.UpdatedAt,
	}).Error; err != nil {
		return err
	}

	var pt domain.ClientPlayerTotal
	err := tx.First(&pt, "client_id = ? AND player_id = ?", d.ClientID, d.PlayerID).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := tx.Create(newPlayerTotal(d)).Error; err != nil {
			return err
		}
	case err != nil:
		return err
	default:
		if err := tx.Model(&domain.ClientPlayerTotal{}).Where("id = ?", pt.ID).Updates(map[string]any{
			"total_sent":      pt.TotalSent + d.Likes,
			"last_sent_at":    d.At,
			"player_nickname": d.Nickname,
			"player_region":   d.Region,
		}).Error; err != nil {
			return err
		}
	}
	return recomputeUniquePlayers(tx, d.ClientID)
}

// RecomputeUniquePlayers resets the cached distinct-player count from
// client_player_totals.
func RecomputeUniquePlayers(ctx context.Context, db *gorm.DB, clientID string) error {
	return recomputeUniquePlayers(db.WithContext(ctx), clientID)
}

func recomputeUniquePlayers(tx *gorm.DB, clientID string) error {
	var n int64
	if err := tx.Model(&domain.ClientPlayerTotal{}).Where("client_id = ?", clientID).Count(&n).Error; err != nil {
		return err
	}
	return tx.Model(&domain.Client{}).Where("id = ?", clientID).Update("unique_players_count", n).Error
}

func newPlayerTotal(d ClientDelta) *domain.ClientPlayerTotal {
	return &domain.ClientPlayerTotal{
		ID:             uuid.NewString(),
		ClientID:       d.ClientID,
		PlayerID:       d.PlayerID,
		PlayerNickname: d.Nickname,
		PlayerRegion:   d.Region,
		TotalSent:      d.Likes,
		LastSentAt:     d.At,
		CreatedAt:      d.At,
	}
}
