package repository

import (
	"context"
	"time"

	"iam/internal/models"

	"gorm.io/gorm"
)

type VerificationRepository struct {
	db *gorm.DB
}

func NewVerificationRepository(db *gorm.DB) *VerificationRepository {
	return &VerificationRepository{db: db}
}

func (r *VerificationRepository) Create(ctx context.Context, v *models.Verification) error {
	return translate(r.db.WithContext(ctx).Create(v).Error)
}

func (r *VerificationRepository) FindValid(ctx context.Context, value string, scope models.VerificationScope, now time.Time) (*models.Verification, error) {
	var v models.Verification
	err := r.db.WithContext(ctx).
		Where("value = ? AND scope = ? AND expired_at > ?", value, scope, now).
		First(&v).Error
	if err != nil {
		return nil, translate(err)
	}
	return &v, nil
}

// DeleteValid removes a live record in a single statement. Exactly one of any
// number of concurrent callers sees a count of 1.
func (r *VerificationRepository) DeleteValid(ctx context.Context, value string, scope models.VerificationScope, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("value = ? AND scope = ? AND expired_at > ?", value, scope, now).
		Delete(&models.Verification{})
	return res.RowsAffected, res.Error
}

func (r *VerificationRepository) DeleteByUser(ctx context.Context, userID string, scope models.VerificationScope) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND scope = ?", userID, scope).
		Delete(&models.Verification{})
	return res.RowsAffected, res.Error
}

func (r *VerificationRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("expired_at <= ?", now).
		Delete(&models.Verification{})
	return res.RowsAffected, res.Error
}
