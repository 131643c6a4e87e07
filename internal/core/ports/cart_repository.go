package ports

import (
	"context"

	"github.com/huertohogar/storefront-api/internal/core/domain"
)

// CartRepository persists cart lines. Every operation is scoped to the
// owning username.
type CartRepository interface {
	List(ctx context.Context, owner string) ([]*domain.CartItem, error)
	// FindByProduct returns domain.ErrCartItemNotFound when the owner has no
	// line for the product.
	FindByProduct(ctx context.Context, owner string, productID int64) (*domain.CartItem, error)
	Create(ctx context.Context, item *domain.CartItem) (*domain.CartItem, error)
	UpdateQuantity(ctx context.Context, owner string, id int64, quantity int) (*domain.CartItem, error)
	// Delete returns domain.ErrCartItemNotFound when no line matched.
	Delete(ctx context.Context, owner string, id int64) error
	Clear(ctx context.Context, owner string) error
}
