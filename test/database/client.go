// Package database provides a disposable Postgres instance for tests.
// Grounded on the teacher's test/database/client.go: CI mode reuses an
// externally provisioned database via an env var, local dev mode spins up
// a testcontainers-go Postgres, and either way the returned pool has
// every embedded migration already applied. Reimplemented over pgxpool
// instead of an ent-backed *sql.DB — see DESIGN.md.
package database

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/tarsy-transit/opsagent/pkg/db"
)

// NewTestPool returns a pgxpool.Pool pointed at a throwaway database with
// all migrations applied, and registers cleanup to close the pool (and
// terminate the container, when one was started) at the end of the test.
func NewTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	connStr := resolveTestConnString(t, ctx)
	require.NoError(t, db.RunMigrationsForDSN(connStr))

	poolCfg, err := pgxpool.ParseConfig(connStr)
	require.NoError(t, err)
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	require.NoError(t, err)
	require.NoError(t, pool.Ping(ctx))

	t.Cleanup(pool.Close)
	return pool
}

func resolveTestConnString(t *testing.T, ctx context.Context) string {
	t.Helper()

	if ciDSN := os.Getenv("CI_DATABASE_URL"); ciDSN != "" {
		t.Log("using external Postgres from CI_DATABASE_URL")
		return ciDSN
	}

	t.Log("using testcontainers-go for Postgres")
	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("opsagent_test"),
		postgres.WithUsername("opsagent"),
		postgres.WithPassword("opsagent"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(pgContainer); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	return connStr
}
