package ports

import "context"

// SessionSweeper removes sessions that can no longer be used: entries
// flagged by a failed token refresh and entries whose payload is corrupt.
// Plain expiry is handled by store TTLs and is not the sweeper's job.
type SessionSweeper interface {
	// SweepSessions scans at most batchSize sessions and returns the number
	// removed. A zero return means the keyspace is fully swept.
	SweepSessions(ctx context.Context, batchSize int) (int64, error)
}
