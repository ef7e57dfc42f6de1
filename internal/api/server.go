package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-advanced-admin/admin"
	admingorm "github.com/go-advanced-admin/orm-gorm"
	adminecho "github.com/go-advanced-admin/web-echo"
	"golang.org/x/time/rate"

	iammiddleware "iam/internal/api/middleware"
	"iam/internal/api/validator"
	"iam/internal/config"
	"iam/internal/errs"
	"iam/internal/handlers"
	"iam/internal/models"

	console "iam/internal/utils/logger"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"
)

var log = console.New("API-Server")

// Dependencies are the collaborators the HTTP layer is built from.
type Dependencies struct {
	Auth        handlers.AuthService
	Roles       handlers.RoleService
	Permissions handlers.PermissionService
	Menus       handlers.MenuService
	Users       handlers.UserService
	Verifier    iammiddleware.TokenVerifier
	Resolver    iammiddleware.PermissionLoader
	Limiter     iammiddleware.Limiter
	// DB backs the admin panel. Nil disables it.
	DB      *gorm.DB
	Avatars bool
}

type Server struct {
	echo   *echo.Echo
	config *config.Config
	deps   Dependencies
	guard  *iammiddleware.AccessGuard
}

// NewServer @title IAM API
// @version 1.0
// @description Multi-role authentication and authorization service.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func NewServer(cfg *config.Config, deps Dependencies) (*Server, error) {
	e := echo.New()
	e.HideBanner = true

	// Create custom validator
	e.Validator = validator.NewValidator()

	// Configure middleware
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Info("%s %s %d %s", v.Method, v.URI, v.Status, v.Latency)
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.Server.AllowOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPut, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, echo.HeaderContentLength},
	}))
	e.Use(middleware.RequestID())
	e.Use(middleware.Secure())
	if cfg.Server.RequestTimeout > 0 {
		e.Use(middleware.TimeoutWithConfig(middleware.TimeoutConfig{
			Timeout: cfg.Server.RequestTimeout,
		}))
	}
	e.Use(middleware.BodyLimit(cfg.Server.BodyLimit))
	if cfg.Server.RateLimit > 0 {
		e.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(rate.Limit(cfg.Server.RateLimit))))
	}

	// Custom error handler
	e.HTTPErrorHandler = customHTTPErrorHandler

	s := &Server{
		echo:   e,
		config: cfg,
		deps:   deps,
		guard:  iammiddleware.NewAccessGuard(deps.Verifier, deps.Resolver),
	}

	if deps.DB != nil && cfg.Server.AdminPanel {
		if err := s.mountAdminPanel(); err != nil {
			return nil, err
		}
	}

	s.registerRoutes()
	return s, nil
}

// mountAdminPanel serves a read-only view of users, roles, permissions and
// menus under /admin for callers allowed to update users.
func (s *Server) mountAdminPanel() error {
	gormIntegrator := admingorm.NewIntegrator(s.deps.DB)
	group := s.echo.Group("/admin", s.guard.Middleware(), iammiddleware.RequireRoutePermissions(adminRouteCode))
	echoIntegrator := adminecho.NewIntegrator(group)

	adminPanel, err := admin.NewPanel(gormIntegrator, echoIntegrator, adminPermission, nil)
	if err != nil {
		return log.Error("Failed to create admin panel", err)
	}
	app, err := adminPanel.RegisterApp("IAM", "IAM Admin Panel", nil)
	if err != nil {
		return log.Error("Failed to register admin app", err)
	}
	for _, model := range models.AdminModels() {
		if _, err := app.RegisterModel(model, nil); err != nil {
			return log.Error("Failed to register admin model %T", err, model)
		}
	}
	log.Success("Admin panel mounted at /admin with %d models", len(app.ModelsSlice))
	return nil
}

const adminRouteCode = "user:update"

// adminPermission allows reads only. Writes go through the management API,
// which validates input and emits events.
func adminPermission(request admin.PermissionRequest, ctx interface{}) (bool, error) {
	if request.Action == nil || string(*request.Action) != "read" {
		return false, nil
	}
	c, ok := ctx.(echo.Context)
	if !ok {
		return false, nil
	}
	return iammiddleware.GetPermissions(c).HasRoutes(adminRouteCode), nil
}

func (s *Server) Start() error {
	return s.echo.Start(fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// ServeHTTP lets tests drive the server without a listener.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

// Health check endpoint
func (s *Server) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"version": "1.0.0",
		"time":    time.Now().Format(time.RFC3339),
	})
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error   string   `json:"error"`
	Message []string `json:"message"`
	Code    int      `json:"code"`
	Time    string   `json:"time"`
}

// Custom HTTP error handler
func customHTTPErrorHandler(err error, c echo.Context) {
	var (
		code     = http.StatusInternalServerError
		messages = []string{errs.InternalMessage}
	)

	var (
		domainErr     *errs.Error
		httpErr       *echo.HTTPError
		validationErr validator.ValidationErrors
	)
	switch {
	case errors.As(err, &domainErr):
		code = domainErr.Status()
		messages = domainErr.Messages
		if domainErr.Kind == errs.KindInternal {
			messages = []string{errs.InternalMessage}
		}
	case errors.As(err, &validationErr):
		code = http.StatusBadRequest
		messages = formatValidationErrors(validationErr)
	case errors.As(err, &httpErr):
		code = httpErr.Code
		messages = []string{fmt.Sprint(httpErr.Message)}
	default:
		log.Error("Unhandled error on %s %s", err, c.Request().Method, c.Request().URL.Path)
	}

	if c.Response().Committed {
		return
	}
	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, ErrorResponse{
			Error:   http.StatusText(code),
			Message: messages,
			Code:    code,
			Time:    time.Now().Format(time.RFC3339),
		})
	}
	if err != nil {
		c.Echo().Logger.Error(err)
	}
}

// formatValidationErrors renders one message per failed field
func formatValidationErrors(ve validator.ValidationErrors) []string {
	if len(ve) == 0 {
		return []string{"Request is invalid"}
	}
	return ve.Messages()
}
