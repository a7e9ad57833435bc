package ports

import (
	"context"

	"github.com/redmath/phonebook/internal/core/domain"
)

// ContactService is the phonebook use-case layer.
type ContactService interface {
	Save(ctx context.Context, contact domain.Contact) (*domain.Contact, error)
	Update(ctx context.Context, contact domain.Contact) error
	List(ctx context.Context) ([]*domain.Contact, error)
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) error
}
