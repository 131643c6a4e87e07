package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/huertohogar/storefront-api/internal/core/domain"
	"github.com/huertohogar/storefront-api/internal/core/ports"
	"github.com/huertohogar/storefront-api/internal/pkg/metrics"
)

type CartService struct {
	items    ports.CartRepository
	products ports.ProductRepository
	logger   zerolog.Logger
}

func NewCartService(items ports.CartRepository, products ports.ProductRepository, logger zerolog.Logger) *CartService {
	return &CartService{items: items, products: products, logger: logger}
}

func (s *CartService) Items(ctx context.Context, owner string) ([]*domain.CartItem, error) {
	items, err := s.items.List(ctx, owner)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*domain.CartItem{}
	}
	return items, nil
}

// Total sums unit price times quantity over the owner's lines.
func (s *CartService) Total(ctx context.Context, owner string) (int64, error) {
	items, err := s.items.List(ctx, owner)
	if err != nil {
		return 0, err
	}
	var total int64
	for _, it := range items {
		total += it.Subtotal()
	}
	return total, nil
}

// AddOrUpdate adjusts the quantity of productID in the owner's cart by
// delta. Lines that drop to zero or below are removed; a new line is priced
// from the catalog at the time it is created.
func (s *CartService) AddOrUpdate(ctx context.Context, owner string, productID int64, delta int) (*ports.CartUpdate, error) {
	if delta == 0 {
		return nil, domain.ErrInvalidQuantity
	}
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	existing, err := s.items.FindByProduct(ctx, owner, productID)
	switch {
	case errors.Is(err, domain.ErrCartItemNotFound):
		if delta < 0 {
			return &ports.CartUpdate{Removed: true}, nil
		}
		item, err := s.items.Create(ctx, &domain.CartItem{
			Owner:       owner,
			ProductID:   product.ID,
			ProductName: product.Name,
			UnitPrice:   product.Price,
			Quantity:    delta,
		})
		if err != nil {
			return nil, fmt.Errorf("create cart item: %w", err)
		}
		metrics.CartMutationsTotal.WithLabelValues("add").Inc()
		return &ports.CartUpdate{Item: item}, nil
	case err != nil:
		return nil, err
	}

	quantity := existing.Quantity + delta
	if quantity <= 0 {
		if err := s.items.Delete(ctx, owner, existing.ID); err != nil {
			return nil, err
		}
		metrics.CartMutationsTotal.WithLabelValues("remove").Inc()
		s.logger.Debug().Str("owner", owner).Int64("product_id", productID).Msg("cart line removed")
		return &ports.CartUpdate{Removed: true}, nil
	}

	item, err := s.items.UpdateQuantity(ctx, owner, existing.ID, quantity)
	if err != nil {
		return nil, err
	}
	metrics.CartMutationsTotal.WithLabelValues("update").Inc()
	return &ports.CartUpdate{Item: item}, nil
}

func (s *CartService) Remove(ctx context.Context, owner string, itemID int64) error {
	if err := s.items.Delete(ctx, owner, itemID); err != nil {
		return err
	}
	metrics.CartMutationsTotal.WithLabelValues("remove").Inc()
	return nil
}

func (s *CartService) Clear(ctx context.Context, owner string) error {
	if err := s.items.Clear(ctx, owner); err != nil {
		return err
	}
	metrics.CartMutationsTotal.WithLabelValues("clear").Inc()
	return nil
}
