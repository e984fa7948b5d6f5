package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/leozinbrozgg/freefirelikes2025/internal/domain"
)

// CreateAccessCode inserts c; ErrDuplicate when the code already exists.
func CreateAccessCode(ctx context.Context, db *gorm.DB, c *domain.AccessCode) error {
	if err := db.WithContext(ctx).Omit("Client").Create(c).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// GetAccessCodeByCode fetches a code with its client preloaded.
func GetAccessCodeByCode(ctx context.Context, db *gorm.DB, code string) (*domain.AccessCode, error) {
	var c domain.AccessCode
	if err := db.WithContext(ctx).Preload("Client").First(&c, "code = ?", code).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// CountAccessCodes returns the number of access codes.
func CountAccessCodes(ctx context.Context, db *gorm.DB) (int64, error) {
	var n int64
	err := db.WithContext(ctx).Model(&domain.AccessCode{}).Count(&n).Error
	return n, err
}

// ListAccessCodesPage returns codes newest-first with clients preloaded.
func ListAccessCodesPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.AccessCode, error) {
	if offset < 0 {
		offset = 0
	}
	var out []domain.AccessCode
	err := db.WithContext(ctx).
		Preload("Client").
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&out).Error
	return out, err
}

// DeleteAccessCode removes a code by id.
func DeleteAccessCode(ctx context.Context, db *gorm.DB, id string) error {
	res := db.WithContext(ctx).Delete(&domain.AccessCode{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkAccessCodeUsed flags a code as used at the given time and, when
// boundIP is non-nil, binds it to that address unless already bound. bound
// reports whether this call set the binding; false with a nil error means
// another caller bound the code first and the stored address must be
// re-read.
func MarkAccessCodeUsed(ctx context.Context, db *gorm.DB, id string, at time.Time, boundIP *string) (bound bool, err error) {
	res := db.WithContext(ctx).Model(&domain.AccessCode{}).
		Where("id = ?", id).
		Update("used", true)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, ErrNotFound
	}
	if err := db.WithContext(ctx).Model(&domain.AccessCode{}).
		Where("id = ? AND used_at IS NULL", id).
		Update("used_at", at).Error; err != nil {
		return false, err
	}
	if boundIP == nil {
		return false, nil
	}
	res = db.WithContext(ctx).Model(&domain.AccessCode{}).
		Where("id = ? AND bound_ip IS NULL", id).
		Update("bound_ip", *boundIP)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
