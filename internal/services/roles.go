package services

import (
	"context"
	"fmt"
	"strings"

	"iam/internal/errs"
	"iam/internal/models"
)

type RoleStore interface {
	RoleCodeLookup
	Create(ctx context.Context, role *models.Role) error
	FindActiveByID(ctx context.Context, id string) (*models.Role, error)
	ListNewestFirst(ctx context.Context) ([]models.Role, error)
}

// RoleHolderStore is the user side of role assignment.
type RoleHolderStore interface {
	FindActiveByID(ctx context.Context, id string) (*models.User, error)
	HasRole(ctx context.Context, userID, roleID string) (bool, error)
	AssignRole(ctx context.Context, userID, roleID string) error
	RolesOf(ctx context.Context, userID string) ([]models.Role, error)
}

type CreateRoleInput struct {
	Code        string
	Name        string
	Description *string
}

type RoleRef struct {
	ID   string `json:"id"`
	Code string `json:"code"`
}

type AssignRoleResult struct {
	UserID       string    `json:"userId"`
	AssignedRole RoleRef   `json:"assignedRole"`
	AllRoles     []RoleRef `json:"allRoles"`
}

type RoleService struct {
	roles RoleStore
	users RoleHolderStore
}

func NewRoleService(roles RoleStore, users RoleHolderStore) *RoleService {
	return &RoleService{roles: roles, users: users}
}

func (s *RoleService) Create(ctx context.Context, in CreateRoleInput) (*models.Role, error) {
	code := strings.ToLower(strings.TrimSpace(in.Code))
	exists, err := s.roles.CodeExists(ctx, code)
	if err != nil {
		return nil, fail("check role code", err)
	}
	if exists {
		return nil, errs.Conflict(fmt.Sprintf("Code with value '%s' already exists", code))
	}

	role := &models.Role{
		Code:        code,
		Name:        in.Name,
		Description: in.Description,
		IsActive:    true,
	}
	if err := s.roles.Create(ctx, role); err != nil {
		return nil, fail("create role", err)
	}
	log.Success("Role %s created", role.Code)
	return role, nil
}

// AssignRole binds an active role to an active user that does not hold it yet.
func (s *RoleService) AssignRole(ctx context.Context, userID, roleID string) (*AssignRoleResult, error) {
	user, err := s.users.FindActiveByID(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, errs.InvalidInput(fmt.Sprintf("UserId with value '%s' not found", userID))
		}
		return nil, fail("load user", err)
	}
	role, err := s.roles.FindActiveByID(ctx, roleID)
	if err != nil {
		if isNotFound(err) {
			return nil, errs.InvalidInput(fmt.Sprintf("RoleId with value '%s' not found", roleID))
		}
		return nil, fail("load role", err)
	}

	held, err := s.users.HasRole(ctx, user.ID, role.ID)
	if err != nil {
		return nil, fail("check role assignment", err)
	}
	if held {
		return nil, errs.Conflict("User already has this role assigned")
	}
	if err := s.users.AssignRole(ctx, user.ID, role.ID); err != nil {
		return nil, fail("assign role", err)
	}

	roles, err := s.users.RolesOf(ctx, user.ID)
	if err != nil {
		return nil, fail("load user roles", err)
	}
	result := &AssignRoleResult{
		UserID:       user.ID,
		AssignedRole: RoleRef{ID: role.ID, Code: role.Code},
		AllRoles:     make([]RoleRef, 0, len(roles)),
	}
	for _, r := range roles {
		result.AllRoles = append(result.AllRoles, RoleRef{ID: r.ID, Code: r.Code})
	}
	log.Info("Role %s assigned to user %s", role.Code, user.ID)
	return result, nil
}

func (s *RoleService) List(ctx context.Context) ([]models.Role, error) {
	roles, err := s.roles.ListNewestFirst(ctx)
	if err != nil {
		return nil, fail("list roles", err)
	}
	return roles, nil
}
