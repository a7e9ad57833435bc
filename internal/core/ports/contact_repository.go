package ports

import (
	"context"

	"github.com/redmath/phonebook/internal/core/domain"
)

// ContactRepository persists phonebook entries keyed by id.
type ContactRepository interface {
	Create(ctx context.Context, contact *domain.Contact) (*domain.Contact, error)
	// Update replaces the stored contact with the same id, or returns
	// domain.ErrContactNotFound.
	Update(ctx context.Context, contact *domain.Contact) error
	List(ctx context.Context) ([]*domain.Contact, error)
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) error
}
