package memory

import (
	"context"
	"sort"
	"strconv"
	"sync"

	"github.com/redmath/phonebook/internal/core/domain"
)

// ContactRepository is a map-backed ports.ContactRepository.
type ContactRepository struct {
	mu       sync.RWMutex
	nextID   int64
	contacts map[string]*domain.Contact
}

func NewContactRepository() *ContactRepository {
	return &ContactRepository{contacts: make(map[string]*domain.Contact)}
}

func (r *ContactRepository) Create(_ context.Context, contact *domain.Contact) (*domain.Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	stored := *contact
	stored.ID = strconv.FormatInt(r.nextID, 10)
	r.contacts[stored.ID] = &stored

	out := stored
	return &out, nil
}

func (r *ContactRepository) Update(_ context.Context, contact *domain.Contact) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.contacts[contact.ID]; !ok {
		return domain.ErrContactNotFound
	}
	stored := *contact
	r.contacts[contact.ID] = &stored
	return nil
}

// List returns contacts in creation order.
func (r *ContactRepository) List(_ context.Context) ([]*domain.Contact, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Contact, 0, len(r.contacts))
	for _, c := range r.contacts {
		clone := *c
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return idLess(out[i].ID, out[j].ID) })
	return out, nil
}

func (r *ContactRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.contacts[id]; !ok {
		return domain.ErrContactNotFound
	}
	delete(r.contacts, id)
	return nil
}

func (r *ContactRepository) DeleteAll(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.contacts = make(map[string]*domain.Contact)
	return nil
}
