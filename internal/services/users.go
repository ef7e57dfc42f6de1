package services

import (
	"context"
	"path/filepath"
	"strings"

	"iam/internal/auth"
	"iam/internal/errs"
	"iam/internal/models"

	"github.com/google/uuid"
)

type UserStore interface {
	FindActiveByID(ctx context.Context, id string) (*models.User, error)
	RolesOf(ctx context.Context, userID string) ([]models.Role, error)
	ListWithRoles(ctx context.Context, page, limit int) ([]models.User, int64, error)
	UpdateImage(ctx context.Context, userID, image string) error
}

// AvatarStore writes avatar objects. S3Storage is the production implementation.
type AvatarStore interface {
	Put(ctx context.Context, key string, body []byte, contentType string) error
}

// UserDetail is a profile together with the roles the user holds.
type UserDetail struct {
	auth.UserProfile
	Roles []auth.RoleProfile `json:"roles"`
}

type UserService struct {
	users   UserStore
	avatars AvatarStore
}

// NewUserService builds the service. avatars may be nil, in which case
// UploadAvatar is rejected.
func NewUserService(users UserStore, avatars AvatarStore) *UserService {
	return &UserService{users: users, avatars: avatars}
}

func (s *UserService) List(ctx context.Context, page, limit int) ([]UserDetail, int64, error) {
	users, total, err := s.users.ListWithRoles(ctx, page, limit)
	if err != nil {
		return nil, 0, fail("list users", err)
	}
	out := make([]UserDetail, 0, len(users))
	for i := range users {
		out = append(out, UserDetail{
			UserProfile: auth.NewUserProfile(&users[i]),
			Roles:       auth.NewRoleProfiles(users[i].Roles),
		})
	}
	return out, total, nil
}

// Me returns the caller's profile and active roles in assignment order.
func (s *UserService) Me(ctx context.Context, userID string) (*UserDetail, error) {
	user, err := s.users.FindActiveByID(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, errs.Unauthorized("Invalid or missing access token")
		}
		return nil, fail("load user", err)
	}
	roles, err := s.users.RolesOf(ctx, user.ID)
	if err != nil {
		return nil, fail("load user roles", err)
	}
	return &UserDetail{
		UserProfile: auth.NewUserProfile(user),
		Roles:       auth.NewRoleProfiles(roles),
	}, nil
}

func (s *UserService) UploadAvatar(ctx context.Context, userID, filename, contentType string, body []byte) (*auth.UserProfile, error) {
	if s.avatars == nil {
		return nil, errs.InvalidInput("Avatar storage is not configured")
	}
	if len(body) == 0 {
		return nil, errs.InvalidInput("file must not be empty")
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, errs.InvalidInput("file must be an image")
	}

	key := models.AvatarKeyPrefix(userID) + uuid.NewString() + strings.ToLower(filepath.Ext(filename))
	if err := s.avatars.Put(ctx, key, body, contentType); err != nil {
		return nil, fail("store avatar", err)
	}
	if err := s.users.UpdateImage(ctx, userID, models.ObjectKeyPrefix+key); err != nil {
		if isNotFound(err) {
			return nil, errs.Unauthorized("Invalid or missing access token")
		}
		return nil, fail("update avatar", err)
	}

	user, err := s.users.FindActiveByID(ctx, userID)
	if err != nil {
		return nil, fail("reload user", err)
	}
	profile := auth.NewUserProfile(user)
	return &profile, nil
}
