package memory

import (
	"context"
	"errors"
	"sync"
	"time"
)

// StateStore keeps OAuth state values in memory until consumed or expired.
type StateStore struct {
	mu     sync.Mutex
	now    func() time.Time
	states map[string]time.Time
}

func NewStateStore() *StateStore {
	return &StateStore{now: time.Now, states: make(map[string]time.Time)}
}

// Save records state until ttl elapses, sweeping expired entries first.
// Saving a live state again is an error.
func (s *StateStore) Save(_ context.Context, state string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for k, exp := range s.states {
		if !now.Before(exp) {
			delete(s.states, k)
		}
	}
	if _, ok := s.states[state]; ok {
		return errors.New("save oauth state: state already exists")
	}
	s.states[state] = now.Add(ttl)
	return nil
}

// Consume reports whether state was saved and has not expired, removing it
// either way.
func (s *StateStore) Consume(_ context.Context, state string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	exp, ok := s.states[state]
	if !ok {
		return false, nil
	}
	delete(s.states, state)
	return s.now().Before(exp), nil
}
