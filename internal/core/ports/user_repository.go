package ports

import (
	"context"

	"github.com/redmath/phonebook/internal/core/domain"
)

// UserRepository is the credential store. Implementations must enforce
// uniqueness of username and of non-empty email atomically and report a
// conflict as domain.ErrUserExists.
type UserRepository interface {
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	// Delete removes the user with the given id, or returns domain.ErrUserNotFound.
	Delete(ctx context.Context, id string) error
}
