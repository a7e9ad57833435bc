package ports

import (
	"context"
	"time"

	"github.com/redmath/phonebook/internal/core/domain"
)

// IdentityProvider drives the authorization code flow against an external
// identity provider.
type IdentityProvider interface {
	Name() string
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*domain.ExternalIdentity, error)
}

// StateStore remembers issued OAuth state values until the callback consumes
// them. Consume must succeed at most once per state.
type StateStore interface {
	Save(ctx context.Context, state string, ttl time.Duration) error
	Consume(ctx context.Context, state string) (bool, error)
}
