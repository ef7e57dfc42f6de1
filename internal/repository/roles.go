package repository

import (
	"context"

	"iam/internal/models"

	"gorm.io/gorm"
)

type RoleRepository struct {
	Base[models.Role]
	db *gorm.DB
}

func NewRoleRepository(db *gorm.DB) *RoleRepository {
	return &RoleRepository{Base: NewBase[models.Role](db), db: db}
}

func (r *RoleRepository) FindActiveByCodes(ctx context.Context, codes []string) ([]models.Role, error) {
	var roles []models.Role
	if len(codes) == 0 {
		return roles, nil
	}
	err := r.db.WithContext(ctx).
		Where("code IN ? AND is_active = ?", codes, true).
		Find(&roles).Error
	if err != nil {
		return nil, err
	}
	return roles, nil
}

func (r *RoleRepository) FindByCode(ctx context.Context, code string) (*models.Role, error) {
	var role models.Role
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&role).Error; err != nil {
		return nil, translate(err)
	}
	return &role, nil
}

func (r *RoleRepository) FindActiveByID(ctx context.Context, id string) (*models.Role, error) {
	var role models.Role
	if err := r.db.WithContext(ctx).Where("id = ? AND is_active = ?", id, true).First(&role).Error; err != nil {
		return nil, translate(err)
	}
	return &role, nil
}

func (r *RoleRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Role{}).Where("code = ?", code).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListNewestFirst returns every role ordered by creation time, newest first.
func (r *RoleRepository) ListNewestFirst(ctx context.Context) ([]models.Role, error) {
	roles, _, err := r.List(ctx, ListOptions{OrderBy: "created_at", Desc: true})
	return roles, err
}
