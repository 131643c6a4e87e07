package ports

import (
	"context"
	"time"

	"github.com/huertohogar/storefront-api/internal/core/domain"
)

// RegisterInput carries a self-service registration request.
type RegisterInput struct {
	Username string
	Password string
	FullName string
	Roles    []string
}

// LoginResult is returned on successful credential verification. Roles are
// the normalized authorities written into the token.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	Roles     []string
	User      *domain.User
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	Login(ctx context.Context, username, password string) (*LoginResult, error)
}
