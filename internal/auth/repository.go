package auth

import (
	"context"
	"time"

	"iam/internal/models"
)

// Repositories return repository.ErrNotFound for missing rows.

type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	// CreateWithRoles inserts the user and its user_roles rows atomically,
	// in the order roles are given.
	CreateWithRoles(ctx context.Context, user *models.User, roles []models.Role) error
	// RolesOf returns the user's roles in assignment order.
	RolesOf(ctx context.Context, userID string) ([]models.Role, error)
}

type RoleRepository interface {
	FindActiveByCodes(ctx context.Context, codes []string) ([]models.Role, error)
}

type PermissionRepository interface {
	FindActiveByRole(ctx context.Context, roleID string) ([]models.Permission, error)
}

type VerificationRepository interface {
	Create(ctx context.Context, v *models.Verification) error
	FindValid(ctx context.Context, value string, scope models.VerificationScope, now time.Time) (*models.Verification, error)
	DeleteValid(ctx context.Context, value string, scope models.VerificationScope, now time.Time) (int64, error)
	DeleteByUser(ctx context.Context, userID string, scope models.VerificationScope) (int64, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
