package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/KrownWealth/afrozonauto-admin/internal/ports"
)

// readThrough serves a query from cache when possible, fetching from
// upstream on a miss. Cache failures are logged and absorbed: a broken
// cache degrades to pass-through, never to an error surface.
func readThrough[T any](
	ctx context.Context,
	cache ports.CacheRepository,
	logger *slog.Logger,
	key string,
	ttl time.Duration,
	fetch func(context.Context) (T, error),
) (T, error) {
	var zero T

	if cache != nil {
		raw, err := cache.Get(ctx, key)
		switch {
		case err != nil:
			logger.WarnContext(ctx, "cache read failed", "key", key, "error", err)
		case raw != nil:
			var cached T
			if err := json.Unmarshal(raw, &cached); err != nil {
				logger.WarnContext(ctx, "cache entry corrupt, refetching", "key", key, "error", err)
			} else {
				return cached, nil
			}
		}
	}

	fetched, err := fetch(ctx)
	if err != nil {
		return zero, err
	}

	if cache != nil {
		raw, err := json.Marshal(fetched)
		if err != nil {
			logger.WarnContext(ctx, "cache encode failed", "key", key, "error", err)
			return fetched, nil
		}
		if err := cache.Set(ctx, key, raw, ttl); err != nil {
			logger.WarnContext(ctx, "cache write failed", "key", key, "error", err)
		}
	}

	return fetched, nil
}

// invalidate drops every cached entry under the given prefixes after a
// mutation. Stale reads are worse than cold ones, so failures are logged
// but the mutation result still stands.
func invalidate(
	ctx context.Context,
	cache ports.CacheRepository,
	logger *slog.Logger,
	prefixes ...string,
) {
	if cache == nil {
		return
	}
	for _, prefix := range prefixes {
		if _, err := cache.DeletePrefix(ctx, prefix); err != nil {
			logger.WarnContext(ctx, "cache invalidation failed", "prefix", prefix, "error", err)
		}
	}
}
