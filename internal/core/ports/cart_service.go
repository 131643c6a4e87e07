package ports

import (
	"context"

	"github.com/huertohogar/storefront-api/internal/core/domain"
)

// CartUpdate describes the outcome of AddOrUpdate. Item is nil when the line
// was removed or there was nothing to reduce.
type CartUpdate struct {
	Item    *domain.CartItem
	Removed bool
}

// CartService defines use-case operations for a user's cart.
type CartService interface {
	Items(ctx context.Context, owner string) ([]*domain.CartItem, error)
	Total(ctx context.Context, owner string) (int64, error)
	AddOrUpdate(ctx context.Context, owner string, productID int64, delta int) (*CartUpdate, error)
	Remove(ctx context.Context, owner string, itemID int64) error
	Clear(ctx context.Context, owner string) error
}
