package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/huertohogar/storefront-api/internal/core/domain"
)

// currentPrincipal returns the principal set by the authentication filter.
// Handlers behind the policy normally always have one; the check covers
// routes wired without it.
func currentPrincipal(c echo.Context) (*domain.Principal, error) {
	p := domain.PrincipalFromContext(c.Request().Context())
	if p == nil {
		return nil, domain.ErrUnauthenticated
	}
	return p, nil
}

// pathID parses a positive int64 path parameter.
func pathID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}
