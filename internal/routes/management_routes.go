package routes

import (
	"iam/internal/api/middleware"
	"iam/internal/handlers"

	"github.com/labstack/echo/v4"
)

// SetupUserRoutes mounts /users. Avatar upload is only exposed when storage is configured.
func SetupUserRoutes(api *echo.Group, h *handlers.UserHandler, guard echo.MiddlewareFunc, avatars bool) {
	users := api.Group("/users", guard)

	users.GET("", h.List, middleware.RequireRoutePermissions("user:read"))
	users.GET("/me", h.Me)
	if avatars {
		users.POST("/me/avatar", h.UploadAvatar, middleware.RequireRoutePermissions("user:update"))
	}
}

func SetupRoleRoutes(api *echo.Group, h *handlers.RoleHandler, guard echo.MiddlewareFunc) {
	roles := api.Group("/roles", guard)

	roles.GET("", h.List, middleware.RequireRoutePermissions("role:read"))
	roles.POST("", h.Create, middleware.RequireRoutePermissions("role:create"))
	roles.POST("/assign", h.Assign, middleware.RequireRoutePermissions("role:update"))
}

func SetupPermissionRoutes(api *echo.Group, h *handlers.PermissionHandler, guard echo.MiddlewareFunc) {
	perms := api.Group("/permissions", guard)

	perms.GET("", h.List, middleware.RequireRoutePermissions("permission:read"))
	perms.POST("", h.Create, middleware.RequireRoutePermissions("permission:create"))
	perms.POST("/assign", h.Assign, middleware.RequireRoutePermissions("permission:update"))
}

func SetupMenuRoutes(api *echo.Group, h *handlers.MenuHandler, guard echo.MiddlewareFunc) {
	menus := api.Group("/menus", guard)

	menus.GET("/my-menus", h.MyMenus, middleware.RequireRoutePermissions("menu:read"))
	menus.POST("", h.Create, middleware.RequireRoutePermissions("menu:create"))
}
