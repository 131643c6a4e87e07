package domain

import (
	"errors"
	"strings"
	"time"
)

const (
	RoleUser  = "ROLE_USER"
	RoleAdmin = "ROLE_ADMIN"

	rolePrefix = "ROLE_"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrDuplicateIdentity  = errors.New("username is already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrMissingCredentials = errors.New("username and password are required")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrUnauthenticated    = errors.New("authentication required")
	ErrForbidden          = errors.New("access forbidden")
)

// User is the persisted identity record. It carries no authentication
// behaviour of its own; see NewPrincipal and Authorities.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	FullName     string    `json:"fullName"`
	Roles        []string  `json:"roles"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Authorities normalizes a role set into granted authorities: trimmed,
// upper-cased, ROLE_ prefixed, de-duplicated, in first-seen order.
func Authorities(roles []string) []string {
	out := make([]string, 0, len(roles))
	seen := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		r = strings.ToUpper(strings.TrimSpace(r))
		if r == "" {
			continue
		}
		if !strings.HasPrefix(r, rolePrefix) {
			r = rolePrefix + r
		}
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out
}

// DefaultRoles returns the normalized role set, falling back to RoleUser when
// nothing usable was supplied.
func DefaultRoles(roles []string) []string {
	normalized := Authorities(roles)
	if len(normalized) == 0 {
		return []string{RoleUser}
	}
	return normalized
}
