package security

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/huertohogar/storefront-api/internal/core/domain"
)

const (
	// MinSecretBytes is the shortest accepted HMAC key (256 bits).
	MinSecretBytes = 32

	DefaultTokenTTL = 10 * time.Hour
	DefaultIssuer   = "storefront-api"
)

// Every verification failure wraps domain.ErrTokenInvalid; the specific
// reason is kept for logs and metrics.
var (
	ErrTokenMalformed = fmt.Errorf("%w: malformed", domain.ErrTokenInvalid)
	ErrTokenSignature = fmt.Errorf("%w: signature mismatch", domain.ErrTokenInvalid)
	ErrTokenExpired   = fmt.Errorf("%w: expired", domain.ErrTokenInvalid)
	ErrTokenSubject   = fmt.Errorf("%w: subject missing or mismatched", domain.ErrTokenInvalid)
	ErrTokenClaims    = fmt.Errorf("%w: claims rejected", domain.ErrTokenInvalid)
)

// Claims is the token payload: registered claims plus the role list.
type Claims struct {
	Roles []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// TokenCodec issues and verifies HS256 bearer tokens.
type TokenCodec struct {
	key    []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
	parser *jwt.Parser
}

// TokenOption customizes a TokenCodec.
type TokenOption func(*TokenCodec)

// WithIssuer sets the iss claim written and required by the codec.
func WithIssuer(issuer string) TokenOption {
	return func(c *TokenCodec) { c.issuer = issuer }
}

// WithClock replaces time.Now for expiry checks.
func WithClock(now func() time.Time) TokenOption {
	return func(c *TokenCodec) { c.now = now }
}

// NewTokenCodec builds a codec signing with key. Keys shorter than
// MinSecretBytes are refused.
func NewTokenCodec(key []byte, ttl time.Duration, opts ...TokenOption) (*TokenCodec, error) {
	if len(key) < MinSecretBytes {
		return nil, fmt.Errorf("signing key is %d bytes, need at least %d", len(key), MinSecretBytes)
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("token ttl must be positive, got %s", ttl)
	}

	c := &TokenCodec{
		key:    append([]byte(nil), key...),
		ttl:    ttl,
		issuer: DefaultIssuer,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return c.now() }),
	}
	if c.issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(c.issuer))
	}
	c.parser = jwt.NewParser(parserOpts...)
	return c, nil
}

// DecodeSecret turns the configured secret into key bytes. Standard base64
// that decodes to at least MinSecretBytes is used decoded; anything else is
// used verbatim.
func DecodeSecret(secret string) []byte {
	secret = strings.TrimSpace(secret)
	if decoded, err := base64.StdEncoding.DecodeString(secret); err == nil && len(decoded) >= MinSecretBytes {
		return decoded
	}
	return []byte(secret)
}

// TTL is the lifetime given to every issued token.
func (c *TokenCodec) TTL() time.Duration { return c.ttl }

// Issue signs a token for subject valid from now until now+TTL.
func (c *TokenCodec) Issue(subject string, roles []string, now time.Time) (string, time.Time, error) {
	if subject == "" {
		return "", time.Time{}, ErrTokenSubject
	}
	expiresAt := now.Add(c.ttl)
	claims := &Claims{
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    c.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify checks the signature, then expiry, then subject presence, and
// returns the claims of a valid token.
func (c *TokenCodec) Verify(token string) (*Claims, error) {
	claims := &Claims{}
	_, err := c.parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return c.key, nil
	})
	if err != nil {
		return nil, classify(err)
	}
	if claims.Subject == "" {
		return nil, ErrTokenSubject
	}
	return claims, nil
}

// ValidateFor confirms verified claims still belong to username and have not
// expired in the meantime.
func (c *TokenCodec) ValidateFor(claims *Claims, username string) error {
	if claims == nil || claims.Subject == "" || claims.Subject != username {
		return ErrTokenSubject
	}
	if claims.ExpiresAt == nil || !c.now().Before(claims.ExpiresAt.Time) {
		return ErrTokenExpired
	}
	return nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %v", ErrTokenSignature, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	default:
		return fmt.Errorf("%w: %v", ErrTokenClaims, err)
	}
}

// Reason returns a short label for a verification error, for logs and
// metric labels.
func Reason(err error) string {
	switch {
	case errors.Is(err, ErrTokenMalformed):
		return "malformed"
	case errors.Is(err, ErrTokenSignature):
		return "signature"
	case errors.Is(err, ErrTokenExpired):
		return "expired"
	case errors.Is(err, ErrTokenSubject):
		return "subject"
	case errors.Is(err, ErrTokenClaims):
		return "claims"
	default:
		return "unknown"
	}
}
