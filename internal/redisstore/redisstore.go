// Package redisstore keeps revoked token ids as Redis keys that expire
// together with the token they block.
package redisstore

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Skotchmaster/watchit/internal/store"
)

const defaultPrefix = "watchit:revoked:"

type RevocationStore struct {
	client redis.UniversalClient
	prefix string
	now    func() time.Time
}

var _ store.Revocations = (*RevocationStore)(nil)

func New(client redis.UniversalClient) *RevocationStore {
	return &RevocationStore{client: client, prefix: defaultPrefix, now: time.Now}
}

func NewClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

func (s *RevocationStore) key(jti string) string { return s.prefix + jti }

// Revoke stores jti until expiresAt. A token that has already expired needs
// no entry since validation rejects it before looking here.
func (s *RevocationStore) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.client.SetNX(ctx, s.key(jti), expiresAt.Unix(), ttl).Err(); err != nil {
		return fmt.Errorf("redis setnx: %w", err)
	}
	return nil
}

func (s *RevocationStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := s.client.Exists(ctx, s.key(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists: %w", err)
	}
	return n > 0, nil
}

func (s *RevocationStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
