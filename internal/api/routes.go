package api

import (
	"net/http"

	_ "iam/docs/swagger"
	"iam/internal/api/middleware"
	"iam/internal/handlers"
	"iam/internal/routes"

	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
)

func (s *Server) registerRoutes() {
	// Health check
	// @Summary Health check
	// @Description Check if the server is running
	// @Accept json
	// @Produce json
	// @Success 200 {object} map[string]string "OK"
	// @Router /health [get]
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/swagger/*", echoSwagger.WrapHandler)

	// API v1 group
	api := s.echo.Group("/api/v1")
	guard := s.guard.Middleware()

	throttle := func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	if s.deps.Limiter != nil {
		throttle = middleware.Throttle(s.deps.Limiter)
	}

	routes.SetupAuthRoutes(api, handlers.NewAuthHandler(s.deps.Auth), guard, throttle)
	routes.SetupUserRoutes(api, handlers.NewUserHandler(s.deps.Users), guard, s.deps.Avatars)
	routes.SetupRoleRoutes(api, handlers.NewRoleHandler(s.deps.Roles), guard)
	routes.SetupPermissionRoutes(api, handlers.NewPermissionHandler(s.deps.Permissions), guard)
	routes.SetupMenuRoutes(api, handlers.NewMenuHandler(s.deps.Menus), guard)

	s.echo.Any("/", func(c echo.Context) error {
		return c.Redirect(http.StatusTemporaryRedirect, "/swagger/index.html")
	})
}
