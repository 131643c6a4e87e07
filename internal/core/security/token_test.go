package security

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/huertohogar/storefront-api/internal/core/domain"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func newTestCodec(t *testing.T, ttl time.Duration, clock *fakeClock) *TokenCodec {
	t.Helper()
	codec, err := NewTokenCodec(testKey, ttl, WithClock(clock.Now))
	if err != nil {
		t.Fatalf("NewTokenCodec returned error: %v", err)
	}
	return codec
}

func TestTokenCodec_IssueVerify(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	codec := newTestCodec(t, time.Hour, clock)

	token, exp, err := codec.Issue("alice", []string{domain.RoleUser}, clock.t)
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}
	if !exp.Equal(clock.t.Add(time.Hour)) {
		t.Fatalf("unexpected expiry: %s", exp)
	}
	if strings.Count(token, ".") != 2 {
		t.Fatalf("expected three-part token, got %q", token)
	}

	claims, err := codec.Verify(token)
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if claims.Subject != "alice" {
		t.Fatalf("unexpected subject: %s", claims.Subject)
	}
	if claims.Issuer != DefaultIssuer {
		t.Fatalf("unexpected issuer: %s", claims.Issuer)
	}
	if len(claims.Roles) != 1 || claims.Roles[0] != domain.RoleUser {
		t.Fatalf("unexpected roles: %v", claims.Roles)
	}
	if err := codec.ValidateFor(claims, "alice"); err != nil {
		t.Fatalf("ValidateFor returned error: %v", err)
	}
	if err := codec.ValidateFor(claims, "bob"); !errors.Is(err, ErrTokenSubject) {
		t.Fatalf("expected ErrTokenSubject, got %v", err)
	}
}

func TestTokenCodec_Expired(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	codec := newTestCodec(t, time.Hour, clock)

	token, _, err := codec.Issue("alice", nil, clock.t)
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}
	claims, err := codec.Verify(token)
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}

	clock.t = clock.t.Add(time.Hour + time.Second)
	_, err = codec.Verify(token)
	if !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
	if !errors.Is(err, domain.ErrTokenInvalid) {
		t.Fatalf("expected error to wrap ErrTokenInvalid, got %v", err)
	}
	if err := codec.ValidateFor(claims, "alice"); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ValidateFor to report expiry, got %v", err)
	}
}

func TestTokenCodec_TamperedSignature(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	codec := newTestCodec(t, time.Hour, clock)

	token, _, _ := codec.Issue("alice", nil, clock.t)
	parts := strings.Split(token, ".")
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	_, err := codec.Verify(tampered)
	if !errors.Is(err, ErrTokenSignature) {
		t.Fatalf("expected ErrTokenSignature, got %v", err)
	}
	if !errors.Is(err, domain.ErrTokenInvalid) {
		t.Fatalf("expected error to wrap ErrTokenInvalid, got %v", err)
	}
}

func TestTokenCodec_TamperedPayload(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	codec := newTestCodec(t, time.Hour, clock)

	token, _, _ := codec.Issue("alice", []string{domain.RoleUser}, clock.t)
	parts := strings.Split(token, ".")
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	forged := strings.Replace(string(payload), domain.RoleUser, domain.RoleAdmin, 1)
	tampered := parts[0] + "." + base64.RawURLEncoding.EncodeToString([]byte(forged)) + "." + parts[2]

	if _, err := codec.Verify(tampered); !errors.Is(err, ErrTokenSignature) {
		t.Fatalf("expected ErrTokenSignature, got %v", err)
	}
}

func TestTokenCodec_Malformed(t *testing.T) {
	codec := newTestCodec(t, time.Hour, &fakeClock{t: time.Now()})

	for _, token := range []string{"", "null", "abc", "a.b", "a.b.c"} {
		_, err := codec.Verify(token)
		if !errors.Is(err, domain.ErrTokenInvalid) {
			t.Fatalf("token %q: expected ErrTokenInvalid, got %v", token, err)
		}
	}
	if _, err := codec.Verify("not-a-token"); !errors.Is(err, ErrTokenMalformed) {
		t.Fatalf("expected ErrTokenMalformed, got %v", err)
	}
}

func TestTokenCodec_RejectsOtherAlgorithms(t *testing.T) {
	now := time.Now()
	codec := newTestCodec(t, time.Hour, &fakeClock{t: now})

	claims := &Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "alice",
		Issuer:    DefaultIssuer,
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}}
	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(testKey)
	if err != nil {
		t.Fatalf("sign HS512: %v", err)
	}
	if _, err := codec.Verify(hs512); !errors.Is(err, ErrTokenSignature) {
		t.Fatalf("expected ErrTokenSignature for HS512, got %v", err)
	}

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}
	if _, err := codec.Verify(none); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Fatalf("expected none algorithm to be rejected, got %v", err)
	}
}

func TestTokenCodec_RequiresExpiryAndSubject(t *testing.T) {
	now := time.Now()
	codec := newTestCodec(t, time.Hour, &fakeClock{t: now})

	noExp, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject: "alice",
		Issuer:  DefaultIssuer,
	}}).SignedString(testKey)
	if _, err := codec.Verify(noExp); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Fatalf("expected token without exp to be rejected, got %v", err)
	}

	noSub, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{RegisteredClaims: jwt.RegisteredClaims{
		Issuer:    DefaultIssuer,
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}}).SignedString(testKey)
	if _, err := codec.Verify(noSub); !errors.Is(err, ErrTokenSubject) {
		t.Fatalf("expected ErrTokenSubject, got %v", err)
	}

	if _, _, err := codec.Issue("", nil, now); !errors.Is(err, ErrTokenSubject) {
		t.Fatalf("expected Issue to reject empty subject, got %v", err)
	}
}

func TestTokenCodec_DifferentKeyOrIssuer(t *testing.T) {
	now := time.Now()
	issuer := newTestCodec(t, time.Hour, &fakeClock{t: now})
	token, _, _ := issuer.Issue("alice", nil, now)

	other, _ := NewTokenCodec([]byte("ffffffffffffffffffffffffffffffff"), time.Hour)
	if _, err := other.Verify(token); !errors.Is(err, ErrTokenSignature) {
		t.Fatalf("expected ErrTokenSignature with another key, got %v", err)
	}

	otherIss, _ := NewTokenCodec(testKey, time.Hour, WithIssuer("someone-else"))
	if _, err := otherIss.Verify(token); !errors.Is(err, ErrTokenClaims) {
		t.Fatalf("expected ErrTokenClaims for issuer mismatch, got %v", err)
	}
}

func TestNewTokenCodec_Validation(t *testing.T) {
	if _, err := NewTokenCodec([]byte("short"), time.Hour); err == nil {
		t.Fatalf("expected error for short key")
	}
	if _, err := NewTokenCodec(testKey, 0); err == nil {
		t.Fatalf("expected error for zero ttl")
	}
}

func TestDecodeSecret(t *testing.T) {
	raw := base64.StdEncoding.EncodeToString(testKey)
	if got := DecodeSecret(raw); string(got) != string(testKey) {
		t.Fatalf("expected base64 secret to decode, got %q", got)
	}
	if got := DecodeSecret("plain-secret"); string(got) != "plain-secret" {
		t.Fatalf("expected plain secret verbatim, got %q", got)
	}
}

func TestReason(t *testing.T) {
	cases := map[error]string{
		ErrTokenMalformed: "malformed",
		ErrTokenSignature: "signature",
		ErrTokenExpired:   "expired",
		ErrTokenSubject:   "subject",
		ErrTokenClaims:    "claims",
		errors.New("x"):   "unknown",
	}
	for err, want := range cases {
		if got := Reason(err); got != want {
			t.Fatalf("Reason(%v) = %q, want %q", err, got, want)
		}
	}
}
