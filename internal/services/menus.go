package services

import (
	"context"
	"fmt"

	"iam/internal/errs"
	"iam/internal/models"
)

type MenuStore interface {
	SlugExists(ctx context.Context, slug string) (bool, error)
	Exists(ctx context.Context, id string) (bool, error)
	Create(ctx context.Context, menu *models.Menu) error
	ListActive(ctx context.Context) ([]models.Menu, error)
}

type CreateMenuInput struct {
	Slug                string
	Name                string
	Icon                *string
	Href                *string
	ParentID            *string
	ResourcePermissions []string
}

type MenuService struct {
	menus MenuStore
	roles RoleCodeLookup
}

func NewMenuService(menus MenuStore, roles RoleCodeLookup) *MenuService {
	return &MenuService{menus: menus, roles: roles}
}

func (s *MenuService) Create(ctx context.Context, in CreateMenuInput) (*models.Menu, error) {
	taken, err := s.menus.SlugExists(ctx, in.Slug)
	if err != nil {
		return nil, fail("check menu slug", err)
	}
	if taken {
		return nil, errs.Conflict(fmt.Sprintf("slug menu with value \"%s\" already exists", in.Slug))
	}

	if in.ParentID != nil && *in.ParentID != "" {
		found, err := s.menus.Exists(ctx, *in.ParentID)
		if err != nil {
			return nil, fail("check parent menu", err)
		}
		if !found {
			return nil, errs.InvalidInput(fmt.Sprintf("parentId with value \"%s\" was not found", *in.ParentID))
		}
	} else {
		in.ParentID = nil
	}

	for _, code := range in.ResourcePermissions {
		msg, err := checkResourceCode(ctx, s.roles, "resourcePermissions", code)
		if err != nil {
			return nil, fail("check menu permission", err)
		}
		if msg != "" {
			return nil, errs.InvalidInput(msg)
		}
	}

	menu := &models.Menu{
		Slug:                in.Slug,
		Name:                in.Name,
		Icon:                in.Icon,
		Href:                in.Href,
		ParentID:            in.ParentID,
		ResourcePermissions: append([]string{}, in.ResourcePermissions...),
		IsActive:            true,
	}
	if err := s.menus.Create(ctx, menu); err != nil {
		return nil, fail("create menu", err)
	}
	log.Success("Menu %s created", menu.Slug)
	return menu, nil
}

// MyMenus returns the active menus that are either unrestricted or list at
// least one of resourceCodes.
func (s *MenuService) MyMenus(ctx context.Context, resourceCodes []string) ([]models.Menu, error) {
	menus, err := s.menus.ListActive(ctx)
	if err != nil {
		return nil, fail("list menus", err)
	}
	visible := make([]models.Menu, 0, len(menus))
	for i := range menus {
		if menus[i].VisibleTo(resourceCodes) {
			visible = append(visible, menus[i])
		}
	}
	return visible, nil
}
