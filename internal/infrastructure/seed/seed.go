// Package seed loads the starter catalog and an optional administrator on
// startup.
package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/huertohogar/storefront-api/internal/core/domain"
	"github.com/huertohogar/storefront-api/internal/core/ports"
)

// Catalog is the produce list loaded into an empty product store.
var Catalog = []domain.Product{
	{Name: "Manzanas fuji", Price: 1200, Unit: "kg", Stock: 150, Rating: 4.8, Category: "FRUTAS", Description: "Manzanas Fuji crujientes y dulces."},
	{Name: "Naranjas valencia", Price: 1000, Unit: "kg", Stock: 200, Rating: 4.5, Category: "FRUTAS", Description: "Jugosas y ricas en vitamina C."},
	{Name: "Plátanos cavendish", Price: 800, Unit: "kg", Stock: 250, Rating: 4.2, Category: "FRUTAS", Description: "Plátanos maduros y dulces."},
	{Name: "Zanahorias orgánicas", Price: 900, Unit: "kg", Stock: 100, Rating: 4.7, Category: "VEGETALES", Description: "Zanahorias crujientes cultivadas sin pesticidas."},
	{Name: "Espinacas frescas", Price: 700, Unit: "bolsa", Stock: 80, Rating: 4.6, Category: "VEGETALES", Description: "Espinacas frescas y nutritivas."},
	{Name: "Pimientos tricolor", Price: 1500, Unit: "kg", Stock: 120, Rating: 4.4, Category: "VEGETALES", Description: "Pimientos rojos, amarillos y verdes."},
	{Name: "Miel orgánica", Price: 5000, Unit: "frasco", Stock: 50, Rating: 4.9, Category: "DESPENSA", Description: "Miel pura y orgánica."},
	{Name: "Quinoa orgánica", Price: 800, Unit: "bolsa", Stock: 130, Rating: 4.3, Category: "DESPENSA", Description: "Quinoa orgánica cultivada en los Andes."},
	{Name: "Leche entera", Price: 800, Unit: "litro", Stock: 120, Rating: 4.5, Category: "LACTEOS", Description: "Leche entera fresca y nutritiva."},
}

// Admin describes the administrator account to create. Both fields empty
// means no administrator is seeded.
type Admin struct {
	Username string
	Password string
	FullName string
}

type Seeder struct {
	products ports.ProductRepository
	users    ports.UserRepository
	hasher   ports.PasswordHasher
	logger   zerolog.Logger
}

func New(products ports.ProductRepository, users ports.UserRepository, hasher ports.PasswordHasher, logger zerolog.Logger) *Seeder {
	return &Seeder{products: products, users: users, hasher: hasher, logger: logger}
}

// Run loads the catalog when the store is empty and creates the
// administrator when configured and missing. It is safe to run on every
// start.
func (s *Seeder) Run(ctx context.Context, admin Admin) error {
	if err := s.seedCatalog(ctx); err != nil {
		return err
	}
	if admin.Username == "" && admin.Password == "" {
		return nil
	}
	if admin.Username == "" || admin.Password == "" {
		return errors.New("seed admin needs both a username and a password")
	}
	return s.seedAdmin(ctx, admin)
}

func (s *Seeder) seedCatalog(ctx context.Context) error {
	n, err := s.products.Count(ctx)
	if err != nil {
		return fmt.Errorf("count products: %w", err)
	}
	if n > 0 {
		s.logger.Debug().Int64("products", n).Msg("catalog already populated")
		return nil
	}
	for i := range Catalog {
		p := Catalog[i]
		if _, err := s.products.Create(ctx, &p); err != nil {
			return fmt.Errorf("seed product %q: %w", p.Name, err)
		}
	}
	s.logger.Info().Int("products", len(Catalog)).Msg("catalog seeded")
	return nil
}

func (s *Seeder) seedAdmin(ctx context.Context, admin Admin) error {
	exists, err := s.users.ExistsByUsername(ctx, admin.Username)
	if err != nil {
		return fmt.Errorf("check admin: %w", err)
	}
	if exists {
		s.logger.Debug().Str("username", admin.Username).Msg("admin already exists")
		return nil
	}

	hash, err := s.hasher.Hash(admin.Password)
	if err != nil {
		return err
	}
	fullName := admin.FullName
	if fullName == "" {
		fullName = "Administrator"
	}
	now := time.Now().UTC()
	_, err = s.users.Create(ctx, &domain.User{
		Username:     admin.Username,
		PasswordHash: hash,
		FullName:     fullName,
		Roles:        []string{domain.RoleUser, domain.RoleAdmin},
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil && !errors.Is(err, domain.ErrDuplicateIdentity) {
		return fmt.Errorf("create admin: %w", err)
	}
	s.logger.Info().Str("username", admin.Username).Msg("admin user seeded")
	return nil
}
