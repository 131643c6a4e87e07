package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/huertohogar/storefront-api/internal/pkg/metrics"
	"github.com/huertohogar/storefront-api/internal/core/domain"
	"github.com/huertohogar/storefront-api/internal/core/ports"
)

// AuthService implements registration and login.
type AuthService struct {
	users  ports.UserRepository
	hasher ports.PasswordHasher
	tokens ports.TokenIssuer
	logger zerolog.Logger
	now    func() time.Time

	// allowRoles lets callers pick their own roles at registration.
	allowRoles bool
	dummyHash  string
}

func NewAuthService(users ports.UserRepository, hasher ports.PasswordHasher, tokens ports.TokenIssuer, logger zerolog.Logger, allowRoleAssignment bool) *AuthService {
	s := &AuthService{
		users:      users,
		hasher:     hasher,
		tokens:     tokens,
		logger:     logger,
		now:        time.Now,
		allowRoles: allowRoleAssignment,
	}
	// Compared against when the username is unknown so both login failure
	// paths cost one bcrypt comparison.
	if h, err := hasher.Hash("storefront-unknown-user"); err == nil {
		s.dummyHash = h
	}
	return s
}

// Register creates a new identity. Roles default to ROLE_USER; caller-chosen
// roles are kept only when role assignment is enabled.
func (s *AuthService) Register(ctx context.Context, input ports.RegisterInput) (*domain.User, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" || input.Password == "" {
		metrics.RegistrationsTotal.WithLabelValues("missing_credentials").Inc()
		return nil, domain.ErrMissingCredentials
	}

	exists, err := s.users.ExistsByUsername(ctx, username)
	if err != nil {
		metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("check username: %w", err)
	}
	if exists {
		metrics.RegistrationsTotal.WithLabelValues("duplicate").Inc()
		return nil, domain.ErrDuplicateIdentity
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	roles := []string{domain.RoleUser}
	if requested := domain.DefaultRoles(input.Roles); s.allowRoles {
		roles = requested
	} else if len(requested) != 1 || requested[0] != domain.RoleUser {
		s.logger.Warn().Str("username", username).Strs("requested_roles", input.Roles).Msg("ignoring self-assigned roles at registration")
	}

	now := s.now().UTC()
	created, err := s.users.Create(ctx, &domain.User{
		Username:     username,
		PasswordHash: hash,
		FullName:     strings.TrimSpace(input.FullName),
		Roles:        roles,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateIdentity) {
			metrics.RegistrationsTotal.WithLabelValues("duplicate").Inc()
			return nil, domain.ErrDuplicateIdentity
		}
		metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("create user: %w", err)
	}

	metrics.RegistrationsTotal.WithLabelValues("success").Inc()
	s.logger.Info().Str("username", created.Username).Strs("roles", created.Roles).Msg("user registered")
	return created, nil
}

// Login verifies credentials and issues a bearer token. An unknown username
// and a wrong password both yield domain.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, username, password string) (*ports.LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		metrics.LoginsTotal.WithLabelValues("missing_credentials").Inc()
		return nil, domain.ErrMissingCredentials
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			metrics.LoginsTotal.WithLabelValues("error").Inc()
			return nil, fmt.Errorf("load user: %w", err)
		}
		s.hasher.Verify(password, s.dummyHash)
		metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
		return nil, domain.ErrInvalidCredentials
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
		s.logger.Debug().Str("username", username).Msg("password mismatch")
		return nil, domain.ErrInvalidCredentials
	}

	principal := domain.NewPrincipal(user)
	token, expiresAt, err := s.tokens.Issue(principal.Username, principal.Authorities, s.now())
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("issue token: %w", err)
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	return &ports.LoginResult{Token: token, ExpiresAt: expiresAt, Roles: principal.Authorities, User: user}, nil
}
