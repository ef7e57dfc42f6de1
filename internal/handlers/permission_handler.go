package handlers

import (
	"net/http"

	"iam/internal/api/validator"
	"iam/internal/services"

	"github.com/labstack/echo/v4"
)

type PermissionHandler struct {
	svc PermissionService
}

func NewPermissionHandler(svc PermissionService) *PermissionHandler {
	return &PermissionHandler{svc: svc}
}

// List returns every permission, newest first.
// @Summary List permissions
// @Tags permissions
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]interface{} "{permissions: []}"
// @Router /permissions [get]
func (h *PermissionHandler) List(c echo.Context) error {
	perms, err := h.svc.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"permissions": perms})
}

// Create adds a resource permission.
// @Summary Create resource permission
// @Tags permissions
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body validator.CreatePermissionRequest true "Permission"
// @Success 201 {object} map[string]interface{} "{permission: {}}"
// @Failure 400 {object} map[string]interface{} "Validation error, duplicate or unknown role"
// @Router /permissions [post]
func (h *PermissionHandler) Create(c echo.Context) error {
	var req validator.CreatePermissionRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	perm, err := h.svc.Create(c.Request().Context(), services.CreatePermissionInput{
		Code:        req.Code,
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{"permission": perm})
}

// Assign grants a permission to a role.
// @Summary Assign permission to role
// @Tags permissions
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body validator.AssignPermissionRequest true "Permission and role"
// @Success 200 {object} services.AssignPermissionResult
// @Failure 400 {object} map[string]interface{} "Unknown permission or role, or already granted"
// @Router /permissions/assign [post]
func (h *PermissionHandler) Assign(c echo.Context) error {
	var req validator.AssignPermissionRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	res, err := h.svc.Assign(c.Request().Context(), req.PermissionID, req.RoleID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}
