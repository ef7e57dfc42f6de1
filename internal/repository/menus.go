package repository

import (
	"context"

	"iam/internal/models"

	"gorm.io/gorm"
)

type MenuRepository struct {
	Base[models.Menu]
	db *gorm.DB
}

func NewMenuRepository(db *gorm.DB) *MenuRepository {
	return &MenuRepository{Base: NewBase[models.Menu](db), db: db}
}

func (r *MenuRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Menu{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *MenuRepository) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Menu{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListActive returns active menus in creation order. Resource-permission
// filtering happens in the caller since the column is a JSON array.
func (r *MenuRepository) ListActive(ctx context.Context) ([]models.Menu, error) {
	var menus []models.Menu
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at ASC").
		Find(&menus).Error
	if err != nil {
		return nil, err
	}
	return menus, nil
}
