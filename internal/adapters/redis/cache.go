package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// CacheRepo implements ports.CacheRepository using Redis. Resource query
// services use it to cache upstream reads and to invalidate whole key
// families when a mutation goes through.
type CacheRepo struct {
	client redis.UniversalClient
}

// NewCacheRepo creates a new CacheRepo with the given Redis client.
func NewCacheRepo(client redis.UniversalClient) *CacheRepo {
	return &CacheRepo{client: client}
}

// Set stores a value in Redis with the given key and TTL.
func (r *CacheRepo) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if key == "" {
		return errors.New("key cannot be empty")
	}

	return r.client.Set(ctx, key, value, ttl).Err()
}

// Get retrieves a value from Redis by key. A missing key returns (nil, nil).
func (r *CacheRepo) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, errors.New("key cannot be empty")
	}

	result, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // Key doesn't exist
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}

	return []byte(result), nil
}

// DeletePrefix removes every key under the given prefix and returns the
// number of keys deleted. SCAN is used instead of KEYS so invalidation
// never blocks the server on a large keyspace.
func (r *CacheRepo) DeletePrefix(ctx context.Context, prefix string) (int64, error) {
	if prefix == "" {
		return 0, errors.New("prefix cannot be empty")
	}

	var deleted int64
	iter := r.client.Scan(ctx, 0, prefix+"*", 100).Iterator()

	batch := make([]string, 0, 100)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := r.client.Del(ctx, batch...).Result()
		if err != nil {
			return fmt.Errorf("redis del: %w", err)
		}
		deleted += n
		batch = batch[:0]
		return nil
	}

	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == cap(batch) {
			if err := flush(); err != nil {
				return deleted, err
			}
		}
	}
	if err := iter.Err(); err != nil {
		return deleted, fmt.Errorf("redis scan: %w", err)
	}
	if err := flush(); err != nil {
		return deleted, err
	}

	return deleted, nil
}

// Health checks the health of the Redis connection.
func (r *CacheRepo) Health(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
