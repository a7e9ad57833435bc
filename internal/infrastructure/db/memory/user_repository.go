// Package memory provides process-local stores used when no database is
// configured and in tests. Records are kept in maps keyed by id.
package memory

import (
	"context"
	"sort"
	"strconv"
	"sync"

	"github.com/redmath/phonebook/internal/core/domain"
)

// UserRepository is a map-backed ports.UserRepository. Uniqueness of
// username and non-empty email is checked under the same lock as the insert.
type UserRepository struct {
	mu         sync.RWMutex
	nextID     int64
	byID       map[string]*domain.User
	byUsername map[string]string
	byEmail    map[string]string
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:       make(map[string]*domain.User),
		byUsername: make(map[string]string),
		byEmail:    make(map[string]string),
	}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *UserRepository) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byUsername[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(r.byID[id]), nil
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	if email == "" {
		return nil, domain.ErrUserNotFound
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(r.byID[id]), nil
}

func (r *UserRepository) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byUsername[user.Username]; taken {
		return nil, domain.ErrUserExists
	}
	if user.Email != "" {
		if _, taken := r.byEmail[user.Email]; taken {
			return nil, domain.ErrUserExists
		}
	}

	r.nextID++
	stored := cloneUser(user)
	stored.ID = strconv.FormatInt(r.nextID, 10)

	r.byID[stored.ID] = stored
	r.byUsername[stored.Username] = stored.ID
	if stored.Email != "" {
		r.byEmail[stored.Email] = stored.ID
	}
	return cloneUser(stored), nil
}

// List returns users in creation order.
func (r *UserRepository) List(_ context.Context) ([]*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]*domain.User, 0, len(r.byID))
	for _, u := range r.byID {
		users = append(users, cloneUser(u))
	}
	sort.Slice(users, func(i, j int) bool { return idLess(users[i].ID, users[j].ID) })
	return users, nil
}

func (r *UserRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	delete(r.byID, id)
	delete(r.byUsername, u.Username)
	if u.Email != "" {
		delete(r.byEmail, u.Email)
	}
	return nil
}

// Ping always succeeds; it lets the store stand in for a database in
// readiness checks.
func (r *UserRepository) Ping(context.Context) error { return nil }

func idLess(a, b string) bool {
	ai, aerr := strconv.ParseInt(a, 10, 64)
	bi, berr := strconv.ParseInt(b, 10, 64)
	if aerr != nil || berr != nil {
		return a < b
	}
	return ai < bi
}
