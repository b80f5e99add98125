package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// SessionStore tracks per-user claims epochs in Redis.
// Key format: claims_epoch:<uid>
//
// A missing key reads as epoch 0, so users who never had a revocation
// carry epoch 0 in their tokens and pass the middleware check without a
// Redis write.
type SessionStore struct {
	client *redis.Client
}

// NewSessionStore creates a SessionStore wrapping the given Redis client.
func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client}
}

// Epoch returns the current claims epoch for uid.
func (s *SessionStore) Epoch(ctx context.Context, uid string) (int64, error) {
	n, err := s.client.Get(ctx, s.key(uid)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("session epoch: %w", err)
	}
	return n, nil
}

// Bump increments the claims epoch for uid, invalidating every token
// minted under a lower epoch. Returns the new epoch.
func (s *SessionStore) Bump(ctx context.Context, uid string) (int64, error) {
	n, err := s.client.Incr(ctx, s.key(uid)).Result()
	if err != nil {
		return 0, fmt.Errorf("session bump: %w", err)
	}
	return n, nil
}

func (s *SessionStore) key(uid string) string {
	return "claims_epoch:" + uid
}
