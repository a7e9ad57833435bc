package service

import (
	"context"
	"errors"
	"reflect"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/redmath/phonebook/internal/core/domain"
)

type stubUserRepo struct {
	mu         sync.Mutex
	users      map[string]*domain.User
	nextID     int
	findErr    error // returned by every Find* call when set
	createErrs []error
	creates    int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.creates++
	if len(r.createErrs) > 0 {
		err := r.createErrs[0]
		r.createErrs = r.createErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	for _, u := range r.users {
		if u.Username == user.Username || (user.Email != "" && u.Email == user.Email) {
			return nil, domain.ErrUserExists
		}
	}
	r.nextID++
	stored := cloneUser(user)
	stored.ID = strconv.Itoa(r.nextID)
	r.users[stored.ID] = stored
	return cloneUser(stored), nil
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, u := range r.users {
		if u.Username == username {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, u := range r.users {
		if u.Email != "" && u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) List(_ context.Context) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, cloneUser(u))
	}
	return out, nil
}

func (r *stubUserRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *stubUserRepo) seed(t *testing.T, username, password, email, role string) {
	t.Helper()
	var hash string
	if password != "" {
		b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
		if err != nil {
			t.Fatalf("hash: %v", err)
		}
		hash = string(b)
	}
	if _, err := r.Create(context.Background(), &domain.User{
		Username: username, Email: email, PasswordHash: hash, Role: role,
	}); err != nil {
		t.Fatalf("seed %s: %v", username, err)
	}
}

type failingIssuer struct{}

func (failingIssuer) Issue(string, []string) (*domain.Token, error) {
	return nil, domain.ErrTokenIssuance
}

func newAuthSvc(repo *stubUserRepo) (*AuthService, *TokenService) {
	tokens := NewTokenService([]byte("secret"))
	return NewAuthService(repo, NewBcryptHasher(bcrypt.MinCost), tokens, zerolog.Nop()), tokens
}

func TestAuthService_Login_Success(t *testing.T) {
	repo := newStubUserRepo()
	repo.seed(t, "carol", "s3cret", "carol@example.com", domain.RoleAdmin)
	svc, tokens := newAuthSvc(repo)

	tok, err := svc.Login(context.Background(), "carol", "s3cret")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if tok.Type != "Bearer" || tok.ExpiresIn != 3600 || tok.Subject != "carol" {
		t.Fatalf("unexpected token: %+v", tok)
	}

	claims, err := tokens.Verify(tok.Value)
	if err != nil {
		t.Fatalf("token invalid: %v", err)
	}
	if claims.Subject != "carol" {
		t.Fatalf("expected sub carol, got %q", claims.Subject)
	}
	if !reflect.DeepEqual(claims.Authorities, []string{domain.RoleAdmin}) {
		t.Fatalf("expected [ROLE_ADMIN], got %v", claims.Authorities)
	}
	if d := time.Until(claims.ExpiresAt); d <= 59*time.Minute || d > time.Hour {
		t.Fatalf("expected exp about an hour away, got %v", d)
	}
}

func TestAuthService_Login_InvalidPassword(t *testing.T) {
	repo := newStubUserRepo()
	repo.seed(t, "dave", "goodpass", "", domain.RoleUser)
	svc, _ := newAuthSvc(repo)

	if _, err := svc.Login(context.Background(), "dave", "badpass"); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_UnknownUserIndistinguishable(t *testing.T) {
	repo := newStubUserRepo()
	repo.seed(t, "dave", "goodpass", "", domain.RoleUser)
	svc, _ := newAuthSvc(repo)

	_, wrongPass := svc.Login(context.Background(), "dave", "badpass")
	_, noUser := svc.Login(context.Background(), "ghost", "badpass")
	if wrongPass != noUser || noUser != domain.ErrInvalidCredentials {
		t.Fatalf("expected identical errors, got %v and %v", wrongPass, noUser)
	}
}

func TestAuthService_Login_EmptyInput(t *testing.T) {
	repo := newStubUserRepo()
	repo.seed(t, "dave", "goodpass", "", domain.RoleUser)
	svc, _ := newAuthSvc(repo)

	for _, tc := range []struct{ user, pass string }{{"", "goodpass"}, {"dave", ""}, {"", ""}} {
		if _, err := svc.Login(context.Background(), tc.user, tc.pass); err != domain.ErrInvalidCredentials {
			t.Fatalf("%+v: expected ErrInvalidCredentials, got %v", tc, err)
		}
	}
}

func TestAuthService_Login_OAuthOnlyUser(t *testing.T) {
	repo := newStubUserRepo()
	repo.seed(t, "erin", "", "erin@example.com", domain.RoleUser)
	svc, _ := newAuthSvc(repo)

	if _, err := svc.Login(context.Background(), "erin", "anything"); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_StoreError(t *testing.T) {
	repo := newStubUserRepo()
	repo.findErr = errors.New("connection refused")
	svc, _ := newAuthSvc(repo)

	_, err := svc.Login(context.Background(), "dave", "pass")
	if err == nil || errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
}

func TestAuthService_Login_IssuanceFailure(t *testing.T) {
	repo := newStubUserRepo()
	repo.seed(t, "dave", "goodpass", "", domain.RoleUser)
	svc := NewAuthService(repo, NewBcryptHasher(bcrypt.MinCost), failingIssuer{}, zerolog.Nop())

	if _, err := svc.Login(context.Background(), "dave", "goodpass"); !errors.Is(err, domain.ErrTokenIssuance) {
		t.Fatalf("expected ErrTokenIssuance, got %v", err)
	}
}

// countingHasher records how many comparisons a login performs.
type countingHasher struct {
	*BcryptHasher
	verifies int
	hashes   []string
}

func (h *countingHasher) Verify(plain, hash string) bool {
	h.verifies++
	h.hashes = append(h.hashes, hash)
	return h.BcryptHasher.Verify(plain, hash)
}

func TestAuthService_Login_RejectionsCostOneComparison(t *testing.T) {
	repo := newStubUserRepo()
	repo.seed(t, "dave", "goodpass", "", domain.RoleUser)
	repo.seed(t, "erin", "", "erin@example.com", domain.RoleUser)

	cases := map[string]string{
		"unknown user":   "ghost",
		"wrong password": "dave",
		"no password":    "erin",
	}
	for name, username := range cases {
		hasher := &countingHasher{BcryptHasher: NewBcryptHasher(bcrypt.MinCost)}
		svc := NewAuthService(repo, hasher, NewTokenService([]byte("secret")), zerolog.Nop())

		if _, err := svc.Login(context.Background(), username, "badpass"); err != domain.ErrInvalidCredentials {
			t.Fatalf("%s: expected ErrInvalidCredentials, got %v", name, err)
		}
		if hasher.verifies != 1 {
			t.Fatalf("%s: expected exactly one hash comparison, got %d", name, hasher.verifies)
		}
		if hasher.hashes[0] == "" {
			t.Fatalf("%s: comparison ran against an empty hash", name)
		}
	}
}

func TestAuthService_Login_PlaceholderNeverGrantsAccess(t *testing.T) {
	repo := newStubUserRepo()
	repo.seed(t, "erin", "", "erin@example.com", domain.RoleUser)
	svc, _ := newAuthSvc(repo)

	for _, username := range []string{"erin", "ghost"} {
		if _, err := svc.Login(context.Background(), username, placeholderPassword); err != domain.ErrInvalidCredentials {
			t.Fatalf("%s: expected ErrInvalidCredentials, got %v", username, err)
		}
	}
}
