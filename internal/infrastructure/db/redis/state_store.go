package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// StateStore keeps OAuth state values in Redis so any replica can complete
// the callback. Key format: oauth_state:<state>
type StateStore struct {
	client *redis.Client
}

func NewStateStore(client *redis.Client) *StateStore {
	return &StateStore{client: client}
}

// Save records state until ttl elapses. Saving an existing state is an error.
func (s *StateStore) Save(ctx context.Context, state string, ttl time.Duration) error {
	ok, err := s.client.SetNX(ctx, s.key(state), "1", ttl).Result()
	if err != nil {
		return fmt.Errorf("save oauth state: %w", err)
	}
	if !ok {
		return errors.New("save oauth state: state already exists")
	}
	return nil
}

// Consume deletes state and reports whether it was present. DEL is atomic,
// so concurrent callbacks with the same state cannot both succeed.
func (s *StateStore) Consume(ctx context.Context, state string) (bool, error) {
	n, err := s.client.Del(ctx, s.key(state)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("consume oauth state: %w", err)
	}
	return n > 0, nil
}

func (s *StateStore) key(state string) string {
	return "oauth_state:" + state
}
