package middleware

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/huertohogar/storefront-api/internal/core/domain"
	"github.com/huertohogar/storefront-api/internal/core/security"
	"github.com/huertohogar/storefront-api/internal/pkg/metrics"
)

// TokenVerifier checks bearer tokens.
type TokenVerifier interface {
	Verify(token string) (*security.Claims, error)
	ValidateFor(claims *security.Claims, username string) error
}

// UserLoader reloads the identity named by a token subject.
type UserLoader interface {
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
}

// Authenticate resolves the bearer token, if any, into a request principal.
// It never rejects a request: anything it cannot authenticate continues
// anonymously and is left to Authorize.
func Authenticate(tokens TokenVerifier, users UserLoader, policy *Policy, logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if policy.IsPublic(req.Method, RoutedPath(req)) {
				return next(c)
			}
			if domain.PrincipalFromContext(req.Context()) != nil {
				return next(c)
			}

			raw, ok := bearerToken(req.Header.Get(echo.HeaderAuthorization))
			if !ok {
				return next(c)
			}

			claims, err := tokens.Verify(raw)
			if err != nil {
				reason := security.Reason(err)
				metrics.TokenRejectionsTotal.WithLabelValues(reason).Inc()
				logger.Warn().Str("reason", reason).Str("path", req.URL.Path).Err(err).Msg("bearer token rejected")
				return next(c)
			}

			user, err := users.FindByUsername(req.Context(), claims.Subject)
			if err != nil {
				metrics.TokenRejectionsTotal.WithLabelValues("unknown_user").Inc()
				logger.Warn().Str("subject", claims.Subject).Err(err).Msg("token subject could not be loaded")
				return next(c)
			}
			if err := tokens.ValidateFor(claims, user.Username); err != nil {
				reason := security.Reason(err)
				metrics.TokenRejectionsTotal.WithLabelValues(reason).Inc()
				logger.Warn().Str("reason", reason).Str("subject", claims.Subject).Msg("token does not match principal")
				return next(c)
			}

			principal := domain.NewPrincipal(user)
			c.SetRequest(req.WithContext(domain.WithPrincipal(req.Context(), principal)))
			return next(c)
		}
	}
}

// bearerToken extracts the token from an Authorization header. Empty
// tokens and the literal "null" some clients send are treated as absent.
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" || token == "null" {
		return "", false
	}
	return token, true
}
