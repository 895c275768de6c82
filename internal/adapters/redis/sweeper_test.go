package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionSweeper_RemovesDeadSessionsOnly(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	ctx := context.Background()
	store := NewSessionStore(client)

	live := testSession("live-1")
	require.NoError(t, store.Save(ctx, live))

	flagged := testSession("flagged-1")
	flagged.RefreshFailed = true
	require.NoError(t, store.Save(ctx, flagged))

	// Expired sessions cannot go through Save; plant the record directly
	// the way a clock skew or a lost TTL would leave it.
	expired := testSession("expired-1")
	expired.ExpiresAt = time.Now().Add(-time.Minute)
	raw, err := json.Marshal(expired)
	require.NoError(t, err)
	require.NoError(t, client.Set(ctx, "session:expired-1", raw, time.Hour).Err())

	require.NoError(t, client.Set(ctx, "session:corrupt-1", "{not json", time.Hour).Err())

	// Unrelated keyspaces are never touched.
	require.NoError(t, client.Set(ctx, "vehicles:list:p1", "[]", time.Hour).Err())

	sweeper := NewSessionSweeper(client)
	removed, err := sweeper.SweepSessions(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(3), removed)

	_, err = store.Get(ctx, "live-1")
	assert.NoError(t, err)

	_, err = store.Get(ctx, "flagged-1")
	assert.ErrorIs(t, err, ErrNotFound)

	exists, err := client.Exists(ctx, "vehicles:list:p1").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), exists)
}

func TestSessionSweeper_SecondPassFindsNothing(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	ctx := context.Background()
	store := NewSessionStore(client)

	dead := testSession("dead-1")
	dead.RefreshFailed = true
	require.NoError(t, store.Save(ctx, dead))

	sweeper := NewSessionSweeper(client)

	removed, err := sweeper.SweepSessions(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	removed, err = sweeper.SweepSessions(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(0), removed)
}

func TestSessionSweeper_CustomPrefix(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	ctx := context.Background()
	require.NoError(t, client.Set(ctx, "alt:dead", "{not json", time.Hour).Err())

	sweeper := NewSessionSweeperWithPrefix(client, "alt:")
	removed, err := sweeper.SweepSessions(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
}
