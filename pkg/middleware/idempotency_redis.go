package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"docbook/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// RedisIdempotencyStore shares cached responses between API replicas. Each
// entry is a JSON string under <prefix>:<key> expiring after ttl.
type RedisIdempotencyStore struct {
	redis  *redis.Client
	prefix string
	ttl    time.Duration
	log    *logger.Logger
}

func NewRedisIdempotencyStore(client *redis.Client, prefix string, ttl time.Duration, log *logger.Logger) *RedisIdempotencyStore {
	if log == nil {
		log = logger.Discard()
	}
	return &RedisIdempotencyStore{redis: client, prefix: prefix, ttl: ttl, log: log}
}

func (s *RedisIdempotencyStore) key(k string) string {
	return s.prefix + ":" + k
}

func (s *RedisIdempotencyStore) Get(ctx context.Context, key string) (*CachedResponse, bool) {
	raw, err := s.redis.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.log.Warn("Idempotency lookup failed", "error", err)
		}
		return nil, false
	}

	var cached CachedResponse
	if err := json.Unmarshal(raw, &cached); err != nil {
		s.log.Warn("Discarding unreadable idempotency entry", "error", err)
		return nil, false
	}
	return &cached, true
}

// Set stores response unless another replica stored one first.
func (s *RedisIdempotencyStore) Set(ctx context.Context, key string, response *CachedResponse) {
	response.CreatedAt = time.Now()
	raw, err := json.Marshal(response)
	if err != nil {
		s.log.Error("Failed to encode idempotency entry", "error", err)
		return
	}
	if err := s.redis.SetNX(ctx, s.key(key), raw, s.ttl).Err(); err != nil {
		s.log.Warn("Failed to store idempotency entry", "error", err)
	}
}

// Stop is a no-op; the client belongs to the caller.
func (s *RedisIdempotencyStore) Stop() {}
