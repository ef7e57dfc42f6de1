package repository

import (
	"context"
	"time"

	"iam/internal/models"

	"gorm.io/gorm"
)

type UserRepository struct {
	Base[models.User]
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{Base: NewBase[models.User](db), db: db}
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *UserRepository) FindActiveByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("id = ? AND is_active = ?", id, true).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreateWithRoles writes the user row and one user_roles row per role in a
// single transaction. Join rows get strictly increasing timestamps so the
// given order survives as assignment order.
func (r *UserRepository) CreateWithRoles(ctx context.Context, user *models.User, roles []models.Role) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Roles").Create(user).Error; err != nil {
			return translate(err)
		}
		now := time.Now()
		for i, role := range roles {
			link := models.UserRole{
				UserID:    user.ID,
				RoleID:    role.ID,
				CreatedAt: now.Add(time.Duration(i) * time.Millisecond),
			}
			if err := tx.Create(&link).Error; err != nil {
				return translate(err)
			}
		}
		return nil
	})
}

func (r *UserRepository) RolesOf(ctx context.Context, userID string) ([]models.Role, error) {
	var roles []models.Role
	err := r.db.WithContext(ctx).
		Model(&models.Role{}).
		Joins("JOIN user_roles ON user_roles.role_id = roles.id").
		Where("user_roles.user_id = ? AND roles.is_active = ?", userID, true).
		Order("user_roles.created_at ASC").
		Find(&roles).Error
	if err != nil {
		return nil, err
	}
	return roles, nil
}

func (r *UserRepository) HasRole(ctx context.Context, userID, roleID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.UserRole{}).
		Where("user_id = ? AND role_id = ?", userID, roleID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *UserRepository) AssignRole(ctx context.Context, userID, roleID string) error {
	link := models.UserRole{UserID: userID, RoleID: roleID, CreatedAt: time.Now()}
	return translate(r.db.WithContext(ctx).Create(&link).Error)
}

// ListWithRoles returns users newest first with their roles preloaded.
func (r *UserRepository) ListWithRoles(ctx context.Context, page, limit int) ([]models.User, int64, error) {
	return r.List(ctx, ListOptions{
		Page:     page,
		Limit:    limit,
		OrderBy:  "created_at",
		Desc:     true,
		Includes: []string{"Roles"},
	})
}

func (r *UserRepository) UpdateImage(ctx context.Context, userID, image string) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Update("image", image)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
