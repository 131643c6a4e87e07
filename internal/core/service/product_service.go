package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/huertohogar/storefront-api/internal/core/domain"
	"github.com/huertohogar/storefront-api/internal/core/ports"
)

type ProductService struct {
	repo   ports.ProductRepository
	logger zerolog.Logger
}

func NewProductService(repo ports.ProductRepository, logger zerolog.Logger) *ProductService {
	return &ProductService{repo: repo, logger: logger}
}

func (s *ProductService) List(ctx context.Context) ([]*domain.Product, error) {
	return s.repo.List(ctx)
}

func (s *ProductService) Get(ctx context.Context, id int64) (*domain.Product, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *ProductService) Create(ctx context.Context, input ports.ProductInput) (*domain.Product, error) {
	if err := validateProduct(input); err != nil {
		return nil, err
	}
	p, err := s.repo.Create(ctx, toProduct(0, input))
	if err != nil {
		return nil, err
	}
	s.logger.Info().Int64("product_id", p.ID).Str("name", p.Name).Msg("product created")
	return p, nil
}

// Update replaces every mutable field of an existing product.
func (s *ProductService) Update(ctx context.Context, id int64, input ports.ProductInput) (*domain.Product, error) {
	if err := validateProduct(input); err != nil {
		return nil, err
	}
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, err
	}
	p, err := s.repo.Update(ctx, toProduct(id, input))
	if err != nil {
		return nil, err
	}
	s.logger.Info().Int64("product_id", p.ID).Msg("product updated")
	return p, nil
}

func (s *ProductService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Int64("product_id", id).Msg("product deleted")
	return nil
}

func validateProduct(input ports.ProductInput) error {
	switch {
	case strings.TrimSpace(input.Name) == "":
		return fmt.Errorf("%w: name is required", domain.ErrInvalidProduct)
	case input.Price < 0:
		return fmt.Errorf("%w: price must not be negative", domain.ErrInvalidProduct)
	case input.Stock < 0:
		return fmt.Errorf("%w: stock must not be negative", domain.ErrInvalidProduct)
	}
	return nil
}

func toProduct(id int64, in ports.ProductInput) *domain.Product {
	return &domain.Product{
		ID:          id,
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Price:       in.Price,
		Unit:        in.Unit,
		Stock:       in.Stock,
		Rating:      in.Rating,
		Category:    in.Category,
		ImageURL:    in.ImageURL,
	}
}
