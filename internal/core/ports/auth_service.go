package ports

import (
	"context"

	"github.com/redmath/phonebook/internal/core/domain"
)

// PasswordHasher hashes and verifies stored credentials.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, hash string) bool
}

// TokenIssuer signs bounded-lifetime tokens.
type TokenIssuer interface {
	Issue(subject string, authorities []string) (*domain.Token, error)
}

// TokenVerifier validates presented tokens and returns their claims.
type TokenVerifier interface {
	Verify(token string) (*domain.Claims, error)
}

// AuthService is the username/password login flow.
type AuthService interface {
	Login(ctx context.Context, username, password string) (*domain.Token, error)
}

// OAuthService maps an externally authenticated identity to a local account
// and issues a token for it.
type OAuthService interface {
	Authenticate(ctx context.Context, identity domain.ExternalIdentity) (*domain.Token, error)
}
