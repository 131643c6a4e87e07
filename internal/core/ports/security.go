package ports

import "time"

// PasswordHasher produces and checks one-way salted password hashes.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}

// TokenIssuer signs bearer tokens for authenticated users.
type TokenIssuer interface {
	Issue(subject string, roles []string, now time.Time) (token string, expiresAt time.Time, err error)
}
