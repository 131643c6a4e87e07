package ports

import (
	"context"

	"github.com/huertohogar/storefront-api/internal/core/domain"
)

// ProductRepository defines persistence operations for the catalog.
// Lookups of unknown IDs return domain.ErrProductNotFound.
type ProductRepository interface {
	List(ctx context.Context) ([]*domain.Product, error)
	FindByID(ctx context.Context, id int64) (*domain.Product, error)
	Create(ctx context.Context, p *domain.Product) (*domain.Product, error)
	Update(ctx context.Context, p *domain.Product) (*domain.Product, error)
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int64, error)
}
