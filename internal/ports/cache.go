package ports

import (
	"context"
	"time"
)

// CacheRepository is the request/response cache behind the query services.
// Invalidation is prefix-based only; there is no custom eviction policy.
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DeletePrefix(ctx context.Context, prefix string) (int64, error)
}
