package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/huertohogar/storefront-api/internal/core/domain"
	"github.com/huertohogar/storefront-api/internal/core/ports"
)

var _ ports.CartRepository = (*CartRepository)(nil)

type CartRepository struct {
	pool *pgxpool.Pool
}

func NewCartRepository(pool *pgxpool.Pool) *CartRepository {
	return &CartRepository{pool: pool}
}

const cartColumns = `id, owner, product_id, product_name, unit_price, quantity`

func (r *CartRepository) List(ctx context.Context, owner string) ([]*domain.CartItem, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := r.pool.Query(ctx, `SELECT `+cartColumns+` FROM cart_items WHERE owner = $1 ORDER BY id`, owner)
	if err != nil {
		return nil, fmt.Errorf("list cart: %w", err)
	}
	defer rows.Close()

	out := make([]*domain.CartItem, 0)
	for rows.Next() {
		it, err := scanCartItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *CartRepository) FindByProduct(ctx context.Context, owner string, productID int64) (*domain.CartItem, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return scanCartItem(r.pool.QueryRow(ctx,
		`SELECT `+cartColumns+` FROM cart_items WHERE owner = $1 AND product_id = $2`, owner, productID))
}

func (r *CartRepository) Create(ctx context.Context, item *domain.CartItem) (*domain.CartItem, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	const query = `
		INSERT INTO cart_items (owner, product_id, product_name, unit_price, quantity)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + cartColumns
	created, err := scanCartItem(r.pool.QueryRow(ctx, query, item.Owner, item.ProductID, item.ProductName, item.UnitPrice, item.Quantity))
	if err != nil {
		return nil, fmt.Errorf("insert cart item: %w", err)
	}
	return created, nil
}

func (r *CartRepository) UpdateQuantity(ctx context.Context, owner string, id int64, quantity int) (*domain.CartItem, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return scanCartItem(r.pool.QueryRow(ctx,
		`UPDATE cart_items SET quantity = $3 WHERE id = $1 AND owner = $2 RETURNING `+cartColumns, id, owner, quantity))
}

func (r *CartRepository) Delete(ctx context.Context, owner string, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	tag, err := r.pool.Exec(ctx, `DELETE FROM cart_items WHERE id = $1 AND owner = $2`, id, owner)
	if err != nil {
		return fmt.Errorf("delete cart item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCartItemNotFound
	}
	return nil
}

func (r *CartRepository) Clear(ctx context.Context, owner string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.pool.Exec(ctx, `DELETE FROM cart_items WHERE owner = $1`, owner); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

func scanCartItem(row pgx.Row) (*domain.CartItem, error) {
	var it domain.CartItem
	if err := row.Scan(&it.ID, &it.Owner, &it.ProductID, &it.ProductName, &it.UnitPrice, &it.Quantity); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCartItemNotFound
		}
		return nil, err
	}
	return &it, nil
}
