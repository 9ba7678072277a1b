package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache implements CacheStore on a Redis client. An optional key prefix
// namespaces the deployment.
type RedisCache struct {
	rc     *redis.Client
	prefix string
}

// NewRedisCache creates a cache store backed by the given Redis client.
func NewRedisCache(rc *redis.Client, prefix string) *RedisCache {
	return &RedisCache{rc: rc, prefix: prefix}
}

func (s *RedisCache) key(k string) string {
	if s.prefix == "" {
		return k
	}
	return s.prefix + ":" + k
}

func (s *RedisCache) Get(ctx context.Context, key string) (string, error) {
	val, err := s.rc.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("%w: redis get %s: %v", ErrStoreUnavailable, key, err)
	}
	return val, nil
}

func (s *RedisCache) Put(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := s.rc.Set(ctx, s.key(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("%w: redis set %s: %v", ErrStoreUnavailable, key, err)
	}
	return nil
}

func (s *RedisCache) Remove(ctx context.Context, key string) error {
	if err := s.rc.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("%w: redis del %s: %v", ErrStoreUnavailable, key, err)
	}
	return nil
}
