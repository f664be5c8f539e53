package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevokedTokenStore blacklists JWT IDs until their natural expiry.
// Key format: revoked:<jti>
type RevokedTokenStore struct {
	client *redis.Client
}

// NewRevokedTokenStore creates a RevokedTokenStore wrapping the given Redis client.
func NewRevokedTokenStore(client *redis.Client) *RevokedTokenStore {
	return &RevokedTokenStore{client: client}
}

// Revoke records the token ID. The entry expires with the token itself, so
// the blacklist never outgrows the set of live tokens.
func (s *RevokedTokenStore) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.key(jti), "1", ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether the token ID has been blacklisted.
func (s *RevokedTokenStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := s.client.Exists(ctx, s.key(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("revocation check: %w", err)
	}
	return n > 0, nil
}

func (s *RevokedTokenStore) key(jti string) string {
	return "revoked:" + jti
}
