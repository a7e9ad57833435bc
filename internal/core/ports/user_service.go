package ports

import (
	"context"

	"github.com/redmath/phonebook/internal/core/domain"
)

// RegisterUserInput carries the fields accepted by /users/add.
type RegisterUserInput struct {
	Username string
	Password string
	Email    string
	Role     string
}

// UserService manages accounts.
type UserService interface {
	Register(ctx context.Context, in RegisterUserInput) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	Delete(ctx context.Context, id string) error
}
