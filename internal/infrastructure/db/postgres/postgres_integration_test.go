package postgres

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/huertohogar/storefront-api/internal/core/domain"
)

// testPool connects to POSTGRES_TEST_URL with a clean schema. The test is
// skipped when the variable is unset.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("POSTGRES_TEST_URL")
	if url == "" {
		t.Skip("POSTGRES_TEST_URL not set")
	}

	ctx := context.Background()
	pool, err := Connect(ctx, url)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if _, err := pool.Exec(ctx, `TRUNCATE cart_items, products, users RESTART IDENTITY CASCADE`); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}

func TestUserRepository_Integration(t *testing.T) {
	pool := testPool(t)
	repo := NewUserRepository(pool)
	ctx := context.Background()

	now := time.Now().UTC()
	created, err := repo.Create(ctx, &domain.User{Username: "alice", PasswordHash: "h", FullName: "Alice", Roles: []string{domain.RoleUser, domain.RoleAdmin}, CreatedAt: now, UpdatedAt: now})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == 0 || len(created.Roles) != 2 {
		t.Fatalf("unexpected user: %+v", created)
	}

	if _, err := repo.Create(ctx, &domain.User{Username: "alice", PasswordHash: "x", Roles: []string{domain.RoleUser}, CreatedAt: now, UpdatedAt: now}); !errors.Is(err, domain.ErrDuplicateIdentity) {
		t.Fatalf("expected ErrDuplicateIdentity, got %v", err)
	}

	found, err := repo.FindByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("FindByUsername: %v", err)
	}
	if found.ID != created.ID || found.Roles[1] != domain.RoleAdmin {
		t.Fatalf("unexpected user: %+v", found)
	}
	if ok, _ := repo.ExistsByUsername(ctx, "alice"); !ok {
		t.Fatalf("expected alice to exist")
	}
	if _, err := repo.FindByUsername(ctx, "bob"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestProductAndCartRepositories_Integration(t *testing.T) {
	pool := testPool(t)
	products := NewProductRepository(pool)
	cart := NewCartRepository(pool)
	ctx := context.Background()

	p, err := products.Create(ctx, &domain.Product{Name: "Manzanas Fuji", Price: 1200, Unit: "kg", Stock: 150})
	if err != nil {
		t.Fatalf("Create product: %v", err)
	}
	p.Price = 1300
	if updated, err := products.Update(ctx, p); err != nil || updated.Price != 1300 {
		t.Fatalf("Update product: %+v %v", updated, err)
	}
	if _, err := products.Update(ctx, &domain.Product{ID: 999, Name: "x"}); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}

	item, err := cart.Create(ctx, &domain.CartItem{Owner: "alice", ProductID: p.ID, ProductName: p.Name, UnitPrice: p.Price, Quantity: 2})
	if err != nil {
		t.Fatalf("Create cart item: %v", err)
	}
	if err := cart.Delete(ctx, "bob", item.ID); !errors.Is(err, domain.ErrCartItemNotFound) {
		t.Fatalf("expected ownership check, got %v", err)
	}
	if items, _ := cart.List(ctx, "alice"); len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}

	// Deleting the product cascades to cart lines.
	if err := products.Delete(ctx, p.ID); err != nil {
		t.Fatalf("Delete product: %v", err)
	}
	if _, err := cart.FindByProduct(ctx, "alice", p.ID); !errors.Is(err, domain.ErrCartItemNotFound) {
		t.Fatalf("expected cart line to be gone, got %v", err)
	}
	if n, _ := products.Count(ctx); n != 0 {
		t.Fatalf("expected no products, got %d", n)
	}
}
