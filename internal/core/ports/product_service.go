package ports

import (
	"context"

	"github.com/huertohogar/storefront-api/internal/core/domain"
)

// ProductInput carries the mutable fields of a catalog entry.
type ProductInput struct {
	Name        string
	Description string
	Price       int64
	Unit        string
	Stock       int
	Rating      float64
	Category    string
	ImageURL    string
}

// ProductService defines use-case operations for the catalog.
type ProductService interface {
	List(ctx context.Context) ([]*domain.Product, error)
	Get(ctx context.Context, id int64) (*domain.Product, error)
	Create(ctx context.Context, input ProductInput) (*domain.Product, error)
	Update(ctx context.Context, id int64, input ProductInput) (*domain.Product, error)
	Delete(ctx context.Context, id int64) error
}
