package auth

import (
	"time"

	"iam/internal/models"
)

// UserProfile is a user as returned to clients: no password, no active flag.
type UserProfile struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Image     *string   `json:"image"`
	ImageURL  string    `json:"imageUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type RoleProfile struct {
	ID          string    `json:"id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func NewUserProfile(u *models.User) UserProfile {
	return UserProfile{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Image:     u.Image,
		ImageURL:  u.ImageURL,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func NewRoleProfile(r *models.Role) RoleProfile {
	return RoleProfile{
		ID:          r.ID,
		Code:        r.Code,
		Name:        r.Name,
		Description: r.Description,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func NewRoleProfiles(roles []models.Role) []RoleProfile {
	out := make([]RoleProfile, 0, len(roles))
	for i := range roles {
		out = append(out, NewRoleProfile(&roles[i]))
	}
	return out
}

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type SignUpInput struct {
	Name      string
	Email     string
	Password  string
	RoleCodes []string
	Image     *string
}

type SignUpResult struct {
	User  UserProfile   `json:"user"`
	Roles []RoleProfile `json:"roles"`
}

// SignInResult carries either a token pair (one role) or an exchange token
// (several roles), never both.
type SignInResult struct {
	User                 UserProfile
	Role                 *RoleProfile
	AvailableRoles       []RoleProfile
	Tokens               *TokenPair
	ExchangeToken        string
	ExchangeExpiresAt    time.Time
	RequireRoleSelection bool
}

type SelectRoleResult struct {
	User   UserProfile
	Role   RoleProfile
	Tokens TokenPair
}
