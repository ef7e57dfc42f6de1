package repository

import (
	"context"

	"iam/internal/models"

	"gorm.io/gorm"
)

type PermissionRepository struct {
	Base[models.Permission]
	db *gorm.DB
}

func NewPermissionRepository(db *gorm.DB) *PermissionRepository {
	return &PermissionRepository{Base: NewBase[models.Permission](db), db: db}
}

// FindActiveByRole returns the active permissions granted to a role. A
// deactivated role grants nothing.
func (r *PermissionRepository) FindActiveByRole(ctx context.Context, roleID string) ([]models.Permission, error) {
	var perms []models.Permission
	err := r.db.WithContext(ctx).
		Model(&models.Permission{}).
		Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Joins("JOIN roles ON roles.id = role_permissions.role_id").
		Where("role_permissions.role_id = ? AND permissions.is_active = ? AND roles.is_active = ?", roleID, true, true).
		Order("permissions.code ASC").
		Find(&perms).Error
	if err != nil {
		return nil, err
	}
	return perms, nil
}

func (r *PermissionRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Permission{}).Where("code = ?", code).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PermissionRepository) FindActiveByID(ctx context.Context, id string) (*models.Permission, error) {
	var perm models.Permission
	if err := r.db.WithContext(ctx).Where("id = ? AND is_active = ?", id, true).First(&perm).Error; err != nil {
		return nil, translate(err)
	}
	return &perm, nil
}

func (r *PermissionRepository) IsGranted(ctx context.Context, permissionID, roleID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Table("role_permissions").
		Where("permission_id = ? AND role_id = ?", permissionID, roleID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PermissionRepository) Grant(ctx context.Context, permissionID, roleID string) error {
	row := map[string]interface{}{"role_id": roleID, "permission_id": permissionID}
	return translate(r.db.WithContext(ctx).Table("role_permissions").Create(row).Error)
}

func (r *PermissionRepository) ListNewestFirst(ctx context.Context) ([]models.Permission, error) {
	perms, _, err := r.List(ctx, ListOptions{OrderBy: "created_at", Desc: true})
	return perms, err
}
