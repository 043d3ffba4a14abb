// Package idempotency binds client idempotency keys to pre-allocated order ids.
package idempotency

import (
	"context"
	"errors"
	"fmt"
	"time"

	"orders/internal/core/domain/model/kernel"
	"orders/internal/core/ports"

	goredis "github.com/redis/go-redis/v9"
)

const (
	DefaultTTL = 24 * time.Hour
	keyPrefix  = "orders:idempotency:"

	// a key can expire between SETNX and GET
	maxClaimAttempts = 3
)

var _ ports.IdempotencyStore = (*RedisStore)(nil)

// RedisStore binds keys with SETNX so replicas share claims.
type RedisStore struct {
	rdb goredis.Cmdable
	ttl time.Duration
}

// NewRedisStore wraps a client.
//
// Parameters:
//   - rdb: any go-redis client or cluster client
//   - ttl: how long a key stays bound, DefaultTTL when not positive
//
// Example:
//
//	rdb := goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr})
//	store := idempotency.NewRedisStore(rdb, 24*time.Hour)
func NewRedisStore(rdb goredis.Cmdable, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{rdb: rdb, ttl: ttl}
}

// Claim binds key to candidate unless it is already bound, and returns the
// bound id. A key that expires between SETNX and GET is retried.
func (s *RedisStore) Claim(ctx context.Context, key string, candidate kernel.UUID) (kernel.UUID, error) {
	redisKey := keyPrefix + key

	for range maxClaimAttempts {
		ok, err := s.rdb.SetNX(ctx, redisKey, candidate.String(), s.ttl).Result()
		if err != nil {
			return kernel.UUID{}, fmt.Errorf("claim idempotency key: %w", err)
		}
		if ok {
			return candidate, nil
		}

		raw, err := s.rdb.Get(ctx, redisKey).Result()
		if errors.Is(err, goredis.Nil) {
			continue
		}
		if err != nil {
			return kernel.UUID{}, fmt.Errorf("read idempotency key: %w", err)
		}

		bound, err := kernel.UUIDFromString(raw)
		if err != nil {
			return kernel.UUID{}, fmt.Errorf("idempotency key %q holds %q: %w", key, raw, err)
		}
		return bound, nil
	}

	return kernel.UUID{}, fmt.Errorf("idempotency key %q could not be claimed", key)
}
