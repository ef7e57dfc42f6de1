package handlers

import (
	"context"

	"iam/internal/auth"
	"iam/internal/errs"
	"iam/internal/models"
	"iam/internal/services"

	"github.com/labstack/echo/v4"
)

// AuthService is the engine behind the /auth routes. *auth.Service satisfies it.
type AuthService interface {
	SignUp(ctx context.Context, in auth.SignUpInput) (*auth.SignUpResult, error)
	SignIn(ctx context.Context, email, password string) (*auth.SignInResult, error)
	SelectRole(ctx context.Context, exchangeToken, roleID string) (*auth.SelectRoleResult, error)
	RefreshTokens(ctx context.Context, refreshToken string) (*auth.TokenPair, error)
	SignOut(ctx context.Context, userID string) error
}

type RoleService interface {
	Create(ctx context.Context, in services.CreateRoleInput) (*models.Role, error)
	AssignRole(ctx context.Context, userID, roleID string) (*services.AssignRoleResult, error)
	List(ctx context.Context) ([]models.Role, error)
}

type PermissionService interface {
	Create(ctx context.Context, in services.CreatePermissionInput) (*models.Permission, error)
	Assign(ctx context.Context, permissionID, roleID string) (*services.AssignPermissionResult, error)
	List(ctx context.Context) ([]models.Permission, error)
}

type MenuService interface {
	Create(ctx context.Context, in services.CreateMenuInput) (*models.Menu, error)
	MyMenus(ctx context.Context, resourceCodes []string) ([]models.Menu, error)
}

type UserService interface {
	List(ctx context.Context, page, limit int) ([]services.UserDetail, int64, error)
	Me(ctx context.Context, userID string) (*services.UserDetail, error)
	UploadAvatar(ctx context.Context, userID, filename, contentType string, body []byte) (*auth.UserProfile, error)
}

// bind decodes and validates a request body. Validation errors are returned
// as is so the error handler can render one message per field.
func bind(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return errs.InvalidInput("Request body is malformed")
	}
	return c.Validate(req)
}
