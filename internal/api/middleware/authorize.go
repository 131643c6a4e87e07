package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/huertohogar/storefront-api/internal/core/domain"
	"github.com/huertohogar/storefront-api/internal/pkg/metrics"
)

// Authorize enforces the policy on the principal set by Authenticate.
func Authorize(policy *Policy) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			switch d := policy.Decide(req.Method, RoutedPath(req), domain.PrincipalFromContext(req.Context())); d {
			case Unauthenticated:
				metrics.AuthorizationDenialsTotal.WithLabelValues(d.String()).Inc()
				return domain.ErrUnauthenticated
			case Forbidden:
				metrics.AuthorizationDenialsTotal.WithLabelValues(d.String()).Inc()
				return domain.ErrForbidden
			}
			return next(c)
		}
	}
}
