package ports

import (
	"context"

	"github.com/huertohogar/storefront-api/internal/core/domain"
)

// UserRepository is the credential store. Implementations must enforce
// username uniqueness themselves and report violations as
// domain.ErrDuplicateIdentity.
type UserRepository interface {
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
}
