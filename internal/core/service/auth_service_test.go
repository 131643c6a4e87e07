package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/huertohogar/storefront-api/internal/core/domain"
	"github.com/huertohogar/storefront-api/internal/core/ports"
	"github.com/huertohogar/storefront-api/internal/core/security"
)

type stubUserRepo struct {
	mu     sync.Mutex
	users  map[string]*domain.User
	nextID int64
	// existsErr, if set, is returned by ExistsByUsername.
	existsErr error
	// skipExists makes ExistsByUsername report false so the store constraint
	// is exercised.
	skipExists bool
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	clone.Roles = append([]string(nil), u.Roles...)
	return &clone
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) ExistsByUsername(_ context.Context, username string) (bool, error) {
	if r.existsErr != nil {
		return false, r.existsErr
	}
	if r.skipExists {
		return false, nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.users[username]
	return ok, nil
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.users[user.Username]; exists {
		return nil, domain.ErrDuplicateIdentity
	}
	r.nextID++
	stored := cloneUser(user)
	stored.ID = r.nextID
	r.users[stored.Username] = stored
	return cloneUser(stored), nil
}

var testSigningKey = []byte("0123456789abcdef0123456789abcdef")

func newTestAuthService(t *testing.T, repo *stubUserRepo, allowRoles bool) (*AuthService, *security.TokenCodec) {
	t.Helper()
	hasher, err := security.NewBcryptHasher(bcrypt.MinCost)
	if err != nil {
		t.Fatalf("NewBcryptHasher: %v", err)
	}
	codec, err := security.NewTokenCodec(testSigningKey, time.Hour)
	if err != nil {
		t.Fatalf("NewTokenCodec: %v", err)
	}
	return NewAuthService(repo, hasher, codec, zerolog.Nop(), allowRoles), codec
}

func TestAuthService_Register_Success(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := newTestAuthService(t, repo, false)

	user, err := svc.Register(context.Background(), ports.RegisterInput{
		Username: "alice@example.com",
		Password: "pw123456",
		FullName: "Alice Doe",
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if user.ID == 0 {
		t.Fatalf("expected an assigned id")
	}
	if user.PasswordHash == "pw123456" {
		t.Fatalf("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("pw123456")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
	if len(user.Roles) != 1 || user.Roles[0] != domain.RoleUser {
		t.Fatalf("expected default role, got %v", user.Roles)
	}
	if user.FullName != "Alice Doe" {
		t.Fatalf("unexpected full name: %q", user.FullName)
	}
}

func TestAuthService_Register_MissingCredentials(t *testing.T) {
	svc, _ := newTestAuthService(t, newStubUserRepo(), false)

	cases := []ports.RegisterInput{
		{Username: "", Password: "pw"},
		{Username: "   ", Password: "pw"},
		{Username: "bob", Password: ""},
	}
	for _, in := range cases {
		if _, err := svc.Register(context.Background(), in); !errors.Is(err, domain.ErrMissingCredentials) {
			t.Fatalf("input %+v: expected ErrMissingCredentials, got %v", in, err)
		}
	}
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := newTestAuthService(t, repo, false)
	ctx := context.Background()

	if _, err := svc.Register(ctx, ports.RegisterInput{Username: "alice", Password: "one"}); err != nil {
		t.Fatalf("first Register returned error: %v", err)
	}
	if _, err := svc.Register(ctx, ports.RegisterInput{Username: "alice", Password: "two"}); !errors.Is(err, domain.ErrDuplicateIdentity) {
		t.Fatalf("expected ErrDuplicateIdentity, got %v", err)
	}
	if len(repo.users) != 1 {
		t.Fatalf("expected exactly one stored user, got %d", len(repo.users))
	}
	// The first password still works.
	if _, err := svc.Login(ctx, "alice", "one"); err != nil {
		t.Fatalf("expected first credentials to survive, got %v", err)
	}
}

func TestAuthService_Register_StoreConstraint(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := newTestAuthService(t, repo, false)
	ctx := context.Background()

	if _, err := svc.Register(ctx, ports.RegisterInput{Username: "alice", Password: "one"}); err != nil {
		t.Fatalf("first Register returned error: %v", err)
	}
	repo.skipExists = true
	if _, err := svc.Register(ctx, ports.RegisterInput{Username: "alice", Password: "two"}); !errors.Is(err, domain.ErrDuplicateIdentity) {
		t.Fatalf("expected ErrDuplicateIdentity from the store, got %v", err)
	}
}

func TestAuthService_Register_ConcurrentSameUsername(t *testing.T) {
	repo := newStubUserRepo()
	repo.skipExists = true
	svc, _ := newTestAuthService(t, repo, false)

	var wg sync.WaitGroup
	results := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Register(context.Background(), ports.RegisterInput{Username: "race", Password: "pw"})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	ok := 0
	for err := range results {
		switch {
		case err == nil:
			ok++
		case !errors.Is(err, domain.ErrDuplicateIdentity):
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 {
		t.Fatalf("expected exactly one successful registration, got %d", ok)
	}
}

func TestAuthService_Register_Roles(t *testing.T) {
	ctx := context.Background()

	locked, _ := newTestAuthService(t, newStubUserRepo(), false)
	u, err := locked.Register(ctx, ports.RegisterInput{Username: "mallory", Password: "pw", Roles: []string{"ADMIN"}})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if len(u.Roles) != 1 || u.Roles[0] != domain.RoleUser {
		t.Fatalf("expected self-assigned roles to be ignored, got %v", u.Roles)
	}

	open, _ := newTestAuthService(t, newStubUserRepo(), true)
	u, err = open.Register(ctx, ports.RegisterInput{Username: "root", Password: "pw", Roles: []string{"user", "admin", "ROLE_ADMIN"}})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if len(u.Roles) != 2 || u.Roles[0] != domain.RoleUser || u.Roles[1] != domain.RoleAdmin {
		t.Fatalf("unexpected roles: %v", u.Roles)
	}
}

func TestAuthService_Register_RepoError(t *testing.T) {
	repo := newStubUserRepo()
	repo.existsErr = errors.New("connection refused")
	svc, _ := newTestAuthService(t, repo, false)

	_, err := svc.Register(context.Background(), ports.RegisterInput{Username: "a", Password: "b"})
	if err == nil || errors.Is(err, domain.ErrDuplicateIdentity) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	repo := newStubUserRepo()
	svc, codec := newTestAuthService(t, repo, false)
	ctx := context.Background()

	if _, err := svc.Register(ctx, ports.RegisterInput{Username: "a@b.com", Password: "pw123456", FullName: "A B"}); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	res, err := svc.Login(ctx, "a@b.com", "pw123456")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if res.Token == "" {
		t.Fatalf("expected token")
	}
	if res.User == nil || res.User.Username != "a@b.com" {
		t.Fatalf("unexpected user: %+v", res.User)
	}
	if !res.ExpiresAt.After(time.Now()) {
		t.Fatalf("expected expiry in the future, got %s", res.ExpiresAt)
	}

	claims, err := codec.Verify(res.Token)
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if claims.Subject != "a@b.com" {
		t.Fatalf("unexpected subject: %s", claims.Subject)
	}
	if len(claims.Roles) != 1 || claims.Roles[0] != domain.RoleUser {
		t.Fatalf("unexpected roles claim: %v", claims.Roles)
	}
	if len(res.Roles) != len(claims.Roles) || res.Roles[0] != claims.Roles[0] {
		t.Fatalf("result roles %v differ from token roles %v", res.Roles, claims.Roles)
	}
}

func TestAuthService_Login_InvalidCredentials(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := newTestAuthService(t, repo, false)
	ctx := context.Background()

	if _, err := svc.Register(ctx, ports.RegisterInput{Username: "alice", Password: "right"}); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	res, err := svc.Login(ctx, "alice", "wrong")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if res != nil {
		t.Fatalf("expected no result on failure")
	}

	if _, err := svc.Login(ctx, "nobody", "right"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}
}

func TestAuthService_Login_MissingCredentials(t *testing.T) {
	svc, _ := newTestAuthService(t, newStubUserRepo(), false)

	if _, err := svc.Login(context.Background(), "", "pw"); !errors.Is(err, domain.ErrMissingCredentials) {
		t.Fatalf("expected ErrMissingCredentials, got %v", err)
	}
	if _, err := svc.Login(context.Background(), "alice", ""); !errors.Is(err, domain.ErrMissingCredentials) {
		t.Fatalf("expected ErrMissingCredentials, got %v", err)
	}
}

func TestAuthService_Login_UsesServiceClock(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := newTestAuthService(t, repo, false)
	fixed := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	if _, err := svc.Register(context.Background(), ports.RegisterInput{Username: "alice", Password: "pw"}); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	res, err := svc.Login(context.Background(), "alice", "pw")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if !res.ExpiresAt.Equal(fixed.Add(time.Hour)) {
		t.Fatalf("unexpected expiry: %s", res.ExpiresAt)
	}
}
