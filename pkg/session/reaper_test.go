package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	testdb "github.com/tarsy-transit/opsagent/test/database"

	"github.com/tarsy-transit/opsagent/pkg/session"
)

func TestStore_ReapExpired_MarksStalePendingSessionsExpired(t *testing.T) {
	pool := testdb.NewTestPool(t)
	store := session.NewStore(pool)
	ctx := context.Background()

	sess, err := store.Create(ctx, "user-1", map[string]any{"action": "cancel_trip"})
	require.NoError(t, err)

	_, err = pool.Exec(ctx, `UPDATE sessions SET expires_at = $1 WHERE session_id = $2`,
		time.Now().UTC().Add(-time.Hour), sess.SessionID)
	require.NoError(t, err)

	expired, deleted, err := store.ReapExpired(ctx, 365)
	require.NoError(t, err)
	assert.EqualValues(t, 1, expired)
	assert.EqualValues(t, 0, deleted)

	fetched, err := store.Get(ctx, sess.SessionID)
	require.NoError(t, err)
	assert.Equal(t, session.StatusExpired, fetched.Status)
}

func TestStore_ReapExpired_DeletesOldTerminalSessions(t *testing.T) {
	pool := testdb.NewTestPool(t)
	store := session.NewStore(pool)
	ctx := context.Background()

	sess, err := store.Create(ctx, "user-1", map[string]any{"action": "cancel_trip"})
	require.NoError(t, err)
	_, err = store.Cancel(ctx, sess.SessionID, nil)
	require.NoError(t, err)

	_, err = pool.Exec(ctx, `UPDATE sessions SET updated_at = $1 WHERE session_id = $2`,
		time.Now().UTC().AddDate(0, 0, -10), sess.SessionID)
	require.NoError(t, err)

	expired, deleted, err := store.ReapExpired(ctx, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 0, expired)
	assert.EqualValues(t, 1, deleted)

	_, err = store.Get(ctx, sess.SessionID)
	assert.ErrorIs(t, err, session.ErrNotFound)
}
