package handlers

import (
	"net/http"

	"iam/internal/api/validator"
	"iam/internal/services"

	"github.com/labstack/echo/v4"
)

type RoleHandler struct {
	svc RoleService
}

func NewRoleHandler(svc RoleService) *RoleHandler {
	return &RoleHandler{svc: svc}
}

// List returns every role, newest first.
// @Summary List roles
// @Tags roles
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]interface{} "{roles: []}"
// @Router /roles [get]
func (h *RoleHandler) List(c echo.Context) error {
	roles, err := h.svc.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"roles": roles})
}

// Create adds a role.
// @Summary Create role
// @Tags roles
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body validator.CreateRoleRequest true "Role"
// @Success 201 {object} map[string]interface{} "{role: {}}"
// @Failure 400 {object} map[string]interface{} "Validation error or duplicate code"
// @Router /roles [post]
func (h *RoleHandler) Create(c echo.Context) error {
	var req validator.CreateRoleRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	role, err := h.svc.Create(c.Request().Context(), services.CreateRoleInput{
		Code:        req.Code,
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{"role": role})
}

// Assign binds a role to a user.
// @Summary Assign role to user
// @Tags roles
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body validator.AssignRoleRequest true "User and role"
// @Success 200 {object} services.AssignRoleResult
// @Failure 400 {object} map[string]interface{} "Unknown user or role, or role already held"
// @Router /roles/assign [post]
func (h *RoleHandler) Assign(c echo.Context) error {
	var req validator.AssignRoleRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	res, err := h.svc.AssignRole(c.Request().Context(), req.UserID, req.RoleID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}
