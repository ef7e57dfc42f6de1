package middleware

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Limiter counts attempts per client. *ratelimit.SlidingWindowLimiter satisfies it.
type Limiter interface {
	Allow(ctx context.Context, identifier string) (bool, error)
}

// Throttle rejects clients that exceed the limiter's window with 429. When
// the limiter itself fails the request is let through.
func Throttle(limiter Limiter) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			allowed, err := limiter.Allow(c.Request().Context(), c.RealIP())
			if err != nil {
				log.Warn("Rate limiter unavailable, allowing %s: %v", c.RealIP(), err)
				return next(c)
			}
			if !allowed {
				return echo.NewHTTPError(http.StatusTooManyRequests, "Too many requests, please try again later")
			}
			return next(c)
		}
	}
}
