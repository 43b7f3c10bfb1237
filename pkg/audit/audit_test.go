package audit_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tarsy-transit/opsagent/pkg/audit"
	"github.com/tarsy-transit/opsagent/pkg/config"
	"github.com/tarsy-transit/opsagent/pkg/masking"
	testdb "github.com/tarsy-transit/opsagent/test/database"
)

func TestWriteAndListByEntity(t *testing.T) {
	pool := testdb.NewTestPool(t)
	ctx := context.Background()

	tx, err := pool.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, audit.Write(ctx, tx, "user-1", "cancel_trip", "trip", 42,
		map[string]any{"live_status": "SCHEDULED"}, map[string]any{"live_status": "CANCELLED"}))
	require.NoError(t, tx.Commit(ctx))

	records, err := audit.ListByEntity(ctx, pool, "trip", 42)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "cancel_trip", records[0].Action)
	assert.Equal(t, "user-1", records[0].UserID)
	assert.Equal(t, "CANCELLED", records[0].After["live_status"])
}

func TestListByEntity_NoRecordsReturnsEmpty(t *testing.T) {
	pool := testdb.NewTestPool(t)
	records, err := audit.ListByEntity(context.Background(), pool, "trip", 999)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestWrite_MasksConfiguredPatterns(t *testing.T) {
	pool := testdb.NewTestPool(t)
	ctx := context.Background()

	audit.SetMasker(masking.NewService(&config.MaskingConfig{Enabled: true, Patterns: []string{"phone_number"}}))
	t.Cleanup(func() { audit.SetMasker(nil) })

	tx, err := pool.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, audit.Write(ctx, tx, "user-1", "update_trip_time", "trip", 43,
		map[string]any{"note": "driver callback 555-123-4567"}, map[string]any{"note": "rescheduled"}))
	require.NoError(t, tx.Commit(ctx))

	records, err := audit.ListByEntity(ctx, pool, "trip", 43)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.NotContains(t, records[0].Before["note"], "555-123-4567")
}
