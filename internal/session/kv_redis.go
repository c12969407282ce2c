package session

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "medimart:"

// RedisKV is the production KV driver backed by Redis. Keys are
// namespaced under "medimart:" and optionally expire so abandoned
// sessions do not accumulate.
type RedisKV struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisKV creates a Redis-backed store. A non-positive ttl keeps
// keys forever, matching browser local storage semantics.
func NewRedisKV(client *redis.Client, ttl time.Duration) *RedisKV {
	if client == nil {
		return nil
	}
	return &RedisKV{client: client, ttl: ttl}
}

// Get implements KV.
func (r *RedisKV) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := r.client.Get(ctx, redisKeyPrefix+key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("session: redis get %s: %w", key, err)
	}
	return value, true, nil
}

// Set implements KV.
func (r *RedisKV) Set(ctx context.Context, key, value string) error {
	if err := r.client.Set(ctx, redisKeyPrefix+key, value, r.ttl).Err(); err != nil {
		return fmt.Errorf("session: redis set %s: %w", key, err)
	}
	return nil
}
