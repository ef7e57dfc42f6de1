package routes

import (
	"iam/internal/handlers"

	"github.com/labstack/echo/v4"
)

// SetupAuthRoutes mounts /auth. Credential endpoints share one throttle.
func SetupAuthRoutes(api *echo.Group, h *handlers.AuthHandler, guard, throttle echo.MiddlewareFunc) {
	auth := api.Group("/auth")

	// Public routes (no auth required)
	auth.POST("/sign-up", h.SignUp)
	auth.POST("/sign-in", h.SignIn, throttle)
	auth.POST("/select-role", h.SelectRole, throttle)
	auth.POST("/refresh-tokens", h.RefreshTokens, throttle)

	auth.POST("/sign-out", h.SignOut, guard)
}
