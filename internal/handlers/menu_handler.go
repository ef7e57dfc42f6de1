package handlers

import (
	"net/http"

	"iam/internal/api/middleware"
	"iam/internal/api/validator"
	"iam/internal/services"

	"github.com/labstack/echo/v4"
)

type MenuHandler struct {
	svc MenuService
}

func NewMenuHandler(svc MenuService) *MenuHandler {
	return &MenuHandler{svc: svc}
}

// Create adds a menu entry.
// @Summary Create menu
// @Tags menus
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body validator.CreateMenuRequest true "Menu"
// @Success 201 {object} map[string]interface{} "{menu: {}}"
// @Failure 400 {object} map[string]interface{} "Validation error, duplicate slug, unknown parent or role"
// @Router /menus [post]
func (h *MenuHandler) Create(c echo.Context) error {
	var req validator.CreateMenuRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	menu, err := h.svc.Create(c.Request().Context(), services.CreateMenuInput{
		Slug:                req.Slug,
		Name:                req.Name,
		Icon:                req.Icon,
		Href:                req.Href,
		ParentID:            req.ParentID,
		ResourcePermissions: req.ResourcePermissions,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{"menu": menu})
}

// MyMenus lists the menus visible to the caller's role.
// @Summary My menus
// @Tags menus
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]interface{} "{menus: []}"
// @Router /menus/my-menus [get]
func (h *MenuHandler) MyMenus(c echo.Context) error {
	menus, err := h.svc.MyMenus(c.Request().Context(), middleware.GetResourcePermissions(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"menus": menus})
}
