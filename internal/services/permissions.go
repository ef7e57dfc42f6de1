package services

import (
	"context"
	"fmt"
	"strings"

	"iam/internal/errs"
	"iam/internal/models"
)

type PermissionStore interface {
	CodeExists(ctx context.Context, code string) (bool, error)
	Create(ctx context.Context, perm *models.Permission) error
	FindActiveByID(ctx context.Context, id string) (*models.Permission, error)
	IsGranted(ctx context.Context, permissionID, roleID string) (bool, error)
	Grant(ctx context.Context, permissionID, roleID string) error
	ListNewestFirst(ctx context.Context) ([]models.Permission, error)
}

// ActiveRoleLookup resolves roles that may receive grants.
type ActiveRoleLookup interface {
	RoleCodeLookup
	FindActiveByID(ctx context.Context, id string) (*models.Role, error)
}

type CreatePermissionInput struct {
	Code        string
	Name        string
	Description *string
}

type PermissionRef struct {
	ID   string `json:"id"`
	Code string `json:"code"`
}

type AssignPermissionResult struct {
	RoleID             string        `json:"roleId"`
	AssignedPermission PermissionRef `json:"assignedPermission"`
}

type PermissionService struct {
	perms PermissionStore
	roles ActiveRoleLookup
}

func NewPermissionService(perms PermissionStore, roles ActiveRoleLookup) *PermissionService {
	return &PermissionService{perms: perms, roles: roles}
}

// Create registers a resource permission <rolecode>:<action>. Route
// permissions only come from seeding.
func (s *PermissionService) Create(ctx context.Context, in CreatePermissionInput) (*models.Permission, error) {
	code := strings.TrimSpace(in.Code)

	exists, err := s.perms.CodeExists(ctx, code)
	if err != nil {
		return nil, fail("check permission code", err)
	}
	if exists {
		return nil, errs.Conflict(fmt.Sprintf("code with value '%s' already exists", code))
	}

	msg, err := checkResourceCode(ctx, s.roles, "code", code)
	if err != nil {
		return nil, fail("check permission role", err)
	}
	if msg != "" {
		return nil, errs.InvalidInput(msg)
	}

	perm := &models.Permission{
		Code:        code,
		Name:        in.Name,
		Description: in.Description,
		Type:        models.PermissionTypeResource,
		IsActive:    true,
	}
	if err := s.perms.Create(ctx, perm); err != nil {
		return nil, fail("create permission", err)
	}
	log.Success("Permission %s created", perm.Code)
	return perm, nil
}

func (s *PermissionService) Assign(ctx context.Context, permissionID, roleID string) (*AssignPermissionResult, error) {
	perm, err := s.perms.FindActiveByID(ctx, permissionID)
	if err != nil {
		if isNotFound(err) {
			return nil, errs.InvalidInput(fmt.Sprintf("permissionId with value '%s' not found", permissionID))
		}
		return nil, fail("load permission", err)
	}
	role, err := s.roles.FindActiveByID(ctx, roleID)
	if err != nil {
		if isNotFound(err) {
			return nil, errs.InvalidInput(fmt.Sprintf("roleId with value '%s' not found", roleID))
		}
		return nil, fail("load role", err)
	}

	granted, err := s.perms.IsGranted(ctx, perm.ID, role.ID)
	if err != nil {
		return nil, fail("check permission grant", err)
	}
	if granted {
		return nil, errs.Conflict(fmt.Sprintf("roleId already has permission %s assigned", perm.ID))
	}
	if err := s.perms.Grant(ctx, perm.ID, role.ID); err != nil {
		return nil, fail("grant permission", err)
	}

	log.Info("Permission %s granted to role %s", perm.Code, role.Code)
	return &AssignPermissionResult{
		RoleID:             role.ID,
		AssignedPermission: PermissionRef{ID: perm.ID, Code: perm.Code},
	}, nil
}

func (s *PermissionService) List(ctx context.Context) ([]models.Permission, error) {
	perms, err := s.perms.ListNewestFirst(ctx)
	if err != nil {
		return nil, fail("list permissions", err)
	}
	return perms, nil
}
