package service

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"log/slog"
	"time"

	"github.com/KrownWealth/afrozonauto-admin/config"
	"github.com/KrownWealth/afrozonauto-admin/internal/ports"
)

// SessionReaperOptions groups dependencies for SessionReaper.
type SessionReaperOptions struct {
	Sweeper ports.SessionSweeper       // Required: session sweeper
	Config  config.SessionReaperConfig // Required: reaper configuration
	Logger  *slog.Logger               // Optional: structured logger
}

// SessionReaper periodically reclaims dead sessions. Store TTLs evict
// expired entries on their own; the reaper's job is to remove
// refresh-failed sessions before their TTL runs out so the keyspace stays
// an honest census of live users.
type SessionReaper struct {
	sweeper ports.SessionSweeper
	config  config.SessionReaperConfig
	logger  *slog.Logger
}

// NewSessionReaper constructs a new SessionReaper.
func NewSessionReaper(opts SessionReaperOptions) (*SessionReaper, error) {
	if opts.Sweeper == nil {
		return nil, errors.New("session sweeper is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &SessionReaper{
		sweeper: opts.Sweeper,
		config:  opts.Config,
		logger:  logger.With("component", "session_reaper"),
	}, nil
}

// Run starts the reaper loop and runs until the context is cancelled.
// Returns nil on graceful shutdown (context.Canceled), error otherwise.
func (r *SessionReaper) Run(ctx context.Context) error {
	r.logger.InfoContext(ctx, "starting session reaper", "interval", r.config.Interval)

	// Add jitter to prevent thundering herd if multiple instances start together
	r.waitWithJitter(ctx)

	ticker := time.NewTicker(r.config.Interval)
	defer ticker.Stop()

	r.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			r.logger.InfoContext(ctx, "session reaper stopping", "reason", ctx.Err())
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()

		case <-ticker.C:
			r.sweep(ctx)
		}
	}
}

// sweep runs batches until the keyspace is clean. Errors are logged and the
// loop keeps running; a flaky store should not kill the reaper.
func (r *SessionReaper) sweep(ctx context.Context) {
	start := time.Now()
	var total int64

	for {
		removed, err := r.sweeper.SweepSessions(ctx, r.config.BatchSize)
		if err != nil {
			if isContextCancellation(err) {
				r.logger.DebugContext(ctx, "sweep cancelled by context", "error", err)
				return
			}
			r.logger.ErrorContext(ctx, "session sweep failed", "error", err)
			return
		}
		total += removed
		if removed == 0 {
			break
		}
		if ctx.Err() != nil {
			return
		}
	}

	if total > 0 {
		r.logger.InfoContext(ctx, "reclaimed dead sessions",
			"count", total,
			"elapsed", time.Since(start),
		)
	}
}

// waitWithJitter adds a random delay up to 10% of the interval to prevent thundering herd.
func (r *SessionReaper) waitWithJitter(ctx context.Context) {
	maxJitter := int64(r.config.Interval / 10)
	if maxJitter <= 0 {
		return
	}

	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// If crypto/rand fails, skip jitter rather than failing startup
		r.logger.WarnContext(ctx, "failed to generate jitter, skipping", "error", err)
		return
	}

	jitterNanos := binary.BigEndian.Uint64(buf[:]) % uint64(maxJitter)
	jitter := time.Duration(int64(jitterNanos)) // #nosec G115 - bounded by maxJitter which is int64

	select {
	case <-time.After(jitter):
	case <-ctx.Done():
		// Graceful shutdown during jitter
	}
}

func isContextCancellation(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
