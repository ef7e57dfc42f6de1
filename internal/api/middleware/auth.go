package middleware

import (
	"context"
	"strings"

	"iam/internal/auth"
	"iam/internal/errs"
	"iam/internal/utils/logger"

	"github.com/labstack/echo/v4"
)

var log = logger.New("auth_middleware")

const MsgInvalidAccessToken = "Invalid or missing access token"

const (
	activeUserKey  = "activeUser"
	permissionsKey = "permissions"
)

// TokenVerifier checks an access token. *auth.Signer satisfies it.
type TokenVerifier interface {
	VerifyAccess(token string) (*auth.AccessClaims, error)
}

// PermissionLoader resolves what a role may do. *auth.PermissionResolver satisfies it.
type PermissionLoader interface {
	Resolve(ctx context.Context, roleID string) (*auth.PermissionPayload, error)
}

// AccessGuard authenticates bearer tokens and attaches the caller's identity
// and freshly resolved permissions to the request.
type AccessGuard struct {
	verifier TokenVerifier
	resolver PermissionLoader
}

func NewAccessGuard(verifier TokenVerifier, resolver PermissionLoader) *AccessGuard {
	return &AccessGuard{verifier: verifier, resolver: resolver}
}

func (g *AccessGuard) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				return errs.Unauthorized(MsgInvalidAccessToken)
			}

			claims, err := g.verifier.VerifyAccess(token)
			if err != nil {
				log.Debug("Rejected access token: %v", err)
				return errs.Unauthorized(MsgInvalidAccessToken)
			}

			perms, err := g.resolver.Resolve(c.Request().Context(), claims.Role.ID)
			if err != nil {
				log.Error("Failed to resolve permissions for role %s", err, claims.Role.ID)
				return errs.Internal(err)
			}

			c.Set(activeUserKey, claims)
			c.Set(permissionsKey, perms)
			return next(c)
		}
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

// GetActiveUser returns the verified claims, or nil outside a guarded route.
func GetActiveUser(c echo.Context) *auth.AccessClaims {
	if claims, ok := c.Get(activeUserKey).(*auth.AccessClaims); ok {
		return claims
	}
	return nil
}

func GetPermissions(c echo.Context) *auth.PermissionPayload {
	if perms, ok := c.Get(permissionsKey).(*auth.PermissionPayload); ok {
		return perms
	}
	return nil
}

func GetResourcePermissions(c echo.Context) []string {
	return GetPermissions(c).ResourceCodes()
}
