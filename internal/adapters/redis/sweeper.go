package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	domainauth "github.com/KrownWealth/afrozonauto-admin/internal/domain/auth"
)

// SessionSweeper removes dead sessions from Redis. TTLs already evict
// expired entries; the sweeper reclaims refresh-failed sessions early and
// drops entries that no longer unmarshal.
type SessionSweeper struct {
	client redis.UniversalClient
	prefix string
}

// NewSessionSweeper creates a sweeper over the default session keyspace.
func NewSessionSweeper(client redis.UniversalClient) *SessionSweeper {
	return &SessionSweeper{client: client, prefix: "session:"}
}

// NewSessionSweeperWithPrefix creates a sweeper over a custom keyspace.
func NewSessionSweeperWithPrefix(client redis.UniversalClient, prefix string) *SessionSweeper {
	return &SessionSweeper{client: client, prefix: prefix}
}

// SweepSessions scans at most batchSize session keys and deletes the dead
// ones. Returns the number of sessions removed in this pass.
func (s *SessionSweeper) SweepSessions(ctx context.Context, batchSize int) (int64, error) {
	if batchSize <= 0 {
		batchSize = 100
	}

	var (
		removed int64
		scanned int
	)
	now := time.Now()

	iter := s.client.Scan(ctx, 0, s.prefix+"*", int64(batchSize)).Iterator()
	for iter.Next(ctx) {
		if scanned >= batchSize {
			break
		}
		scanned++

		key := iter.Val()
		dead, err := s.isDead(ctx, key, now)
		if err != nil {
			return removed, err
		}
		if !dead {
			continue
		}

		n, err := s.client.Del(ctx, key).Result()
		if err != nil {
			return removed, fmt.Errorf("redis del %s: %w", key, err)
		}
		removed += n
	}
	if err := iter.Err(); err != nil {
		return removed, fmt.Errorf("redis scan: %w", err)
	}

	return removed, nil
}

func (s *SessionSweeper) isDead(ctx context.Context, key string, now time.Time) (bool, error) {
	data, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil // Evicted between scan and read
		}
		return false, fmt.Errorf("redis get %s: %w", key, err)
	}

	var sess domainauth.Session
	if err := json.Unmarshal([]byte(data), &sess); err != nil {
		return true, nil // Corrupt payload, reclaim it
	}

	return sess.RefreshFailed || !sess.Usable(now), nil
}
