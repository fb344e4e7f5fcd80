package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/2beens/fittrack/pkg"

	"github.com/go-redis/redis/v8"
)

const (
	stateKeyPrefix = "fittrack||oauth-state||"
	StateTTL       = 10 * time.Minute
)

// StateStore issues single-use OAuth state values.
type StateStore struct {
	redisClient *redis.Client
	// injectable for tests
	RandStringFunc func(s int) (string, error)
}

func NewStateStore(redisClient *redis.Client) *StateStore {
	return &StateStore{
		redisClient:    redisClient,
		RandStringFunc: pkg.GenerateRandomString,
	}
}

func (s *StateStore) Create(ctx context.Context) (string, error) {
	state, err := s.RandStringFunc(24)
	if err != nil {
		return "", fmt.Errorf("generate state: %w", err)
	}
	if err := s.redisClient.Set(ctx, stateKeyPrefix+state, 1, StateTTL).Err(); err != nil {
		return "", fmt.Errorf("store state: %w", err)
	}
	return state, nil
}

// Consume reports whether the state was issued by us and not used yet.
// The state is removed either way.
func (s *StateStore) Consume(ctx context.Context, state string) (bool, error) {
	if state == "" {
		return false, nil
	}
	n, err := s.redisClient.Del(ctx, stateKeyPrefix+state).Result()
	if err != nil {
		return false, fmt.Errorf("consume state: %w", err)
	}
	return n == 1, nil
}
