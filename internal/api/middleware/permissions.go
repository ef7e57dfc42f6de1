package middleware

import (
	"iam/internal/errs"

	"github.com/labstack/echo/v4"
)

const MsgForbiddenRoute = "You are not allowed to access this resources"

// RequireRoutePermissions lets the request through only when the caller's
// role holds every listed route code. It must run after AccessGuard.
func RequireRoutePermissions(codes ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if len(codes) == 0 {
				return next(c)
			}
			if !GetPermissions(c).HasRoutes(codes...) {
				return errs.Forbidden(MsgForbiddenRoute)
			}
			return next(c)
		}
	}
}
