package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/huertohogar/storefront-api/internal/core/domain"
	"github.com/huertohogar/storefront-api/internal/core/ports"
	"github.com/huertohogar/storefront-api/internal/pkg/metrics"
)

const headerIdempotencyKey = "Idempotency-Key"

// IdempotencyGuard records Idempotency-Key values per owner.
type IdempotencyGuard interface {
	Claim(ctx context.Context, scope, key string) (bool, error)
	Release(ctx context.Context, scope, key string) error
}

type CartHandler struct {
	service ports.CartService
	guard   IdempotencyGuard
	logger  zerolog.Logger
}

// NewCartHandler builds the cart endpoints. guard may be nil, in which case
// Idempotency-Key headers are ignored.
func NewCartHandler(service ports.CartService, guard IdempotencyGuard, logger zerolog.Logger) *CartHandler {
	return &CartHandler{service: service, guard: guard, logger: logger}
}

// List returns the caller's cart lines.
//
// @Summary      List cart items
// @Tags         cart
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.CartItem
// @Failure      401  {object}  errorResponse
// @Router       /api/cart [get]
func (h *CartHandler) List(c echo.Context) error {
	p, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	items, err := h.service.Items(c.Request().Context(), p.Username)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

// Total returns the sum of the caller's cart.
//
// @Summary      Cart total
// @Tags         cart
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  cartTotalResponse
// @Failure      401  {object}  errorResponse
// @Router       /api/cart/total [get]
func (h *CartHandler) Total(c echo.Context) error {
	p, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	total, err := h.service.Total(c.Request().Context(), p.Username)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cartTotalResponse{Total: total})
}

// Add changes the quantity of a product in the caller's cart. A negative
// quantity reduces the line and removes it once it reaches zero.
//
// @Summary      Add or update a cart line
// @Tags         cart
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string            false  "Rejects replays of the same request for one hour"
// @Param        body             body      addToCartRequest  true   "Product and quantity delta"
// @Success      201              {object}  domain.CartItem
// @Success      200              {object}  messageResponse
// @Failure      400              {object}  errorResponse
// @Failure      401              {object}  errorResponse
// @Failure      404              {object}  errorResponse
// @Failure      409              {object}  errorResponse
// @Router       /api/cart/add [post]
func (h *CartHandler) Add(c echo.Context) error {
	p, err := currentPrincipal(c)
	if err != nil {
		return err
	}

	var req addToCartRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	key := strings.TrimSpace(c.Request().Header.Get(headerIdempotencyKey))
	claimed := false
	if key != "" && h.guard != nil {
		ok, err := h.guard.Claim(ctx, p.Username, key)
		switch {
		case err != nil:
			h.logger.Warn().Err(err).Str("owner", p.Username).Msg("idempotency check unavailable, continuing")
		case !ok:
			metrics.IdempotencyTotal.WithLabelValues("hit").Inc()
			return domain.ErrDuplicateRequest
		default:
			metrics.IdempotencyTotal.WithLabelValues("miss").Inc()
			claimed = true
		}
	}

	res, err := h.service.AddOrUpdate(ctx, p.Username, req.ProductID, req.Quantity)
	if err != nil {
		if claimed {
			if rerr := h.guard.Release(ctx, p.Username, key); rerr != nil {
				h.logger.Warn().Err(rerr).Str("owner", p.Username).Msg("idempotency release failed")
			}
		}
		return err
	}

	if res.Removed {
		return c.JSON(http.StatusOK, messageResponse{Message: "item removed from cart"})
	}
	return c.JSON(http.StatusCreated, res.Item)
}

// Remove deletes one line from the caller's cart.
//
// @Summary      Remove a cart line
// @Tags         cart
// @Security     BearerAuth
// @Param        id   path  int  true  "Cart item ID"
// @Success      204
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/cart/{id} [delete]
func (h *CartHandler) Remove(c echo.Context) error {
	p, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.Remove(c.Request().Context(), p.Username, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Clear empties the caller's cart.
//
// @Summary      Clear the cart
// @Tags         cart
// @Security     BearerAuth
// @Success      204
// @Failure      401  {object}  errorResponse
// @Router       /api/cart/clear [delete]
func (h *CartHandler) Clear(c echo.Context) error {
	p, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	if err := h.service.Clear(c.Request().Context(), p.Username); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
