package database

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ory/dockertest/v3"
	"github.com/stretchr/testify/require"
)

// postgresDSN returns TEST_DATABASE_URL, or starts a throwaway container.
func postgresDSN(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}
	if dsn := os.Getenv("TEST_DATABASE_URL"); dsn != "" {
		return dsn
	}

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("docker not available: %v", err)
	}
	if err := pool.Client.Ping(); err != nil {
		t.Skipf("docker not reachable: %v", err)
	}

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16-alpine",
		Env: []string{
			"POSTGRES_USER=jobs",
			"POSTGRES_PASSWORD=jobs",
			"POSTGRES_DB=jobs",
		},
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pool.Purge(resource); err != nil {
			t.Logf("failed to purge postgres container: %v", err)
		}
	})
	_ = resource.Expire(300)

	dsn := fmt.Sprintf("postgres://jobs:jobs@%s/jobs?sslmode=disable", resource.GetHostPort("5432/tcp"))

	pool.MaxWait = 90 * time.Second
	require.NoError(t, pool.Retry(func() error {
		p, err := pgxpool.New(context.Background(), dsn)
		if err != nil {
			return err
		}
		defer p.Close()
		return p.Ping(context.Background())
	}))
	return dsn
}

func TestPostgresStore(t *testing.T) {
	dsn := postgresDSN(t)
	ctx := context.Background()

	cfg := Config{
		Driver:         DriverPostgres,
		DSN:            dsn,
		RawTable:       "test_jobs_raw",
		ProcessedTable: "test_jobs_processed",
	}
	store, err := Open(ctx, cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	pg := store.(*postgresStore)
	_, err = pg.db.Exec(ctx, "DROP TABLE IF EXISTS test_jobs_raw, test_jobs_processed")
	require.NoError(t, err)
	require.NoError(t, store.Migrate(ctx))

	exerciseStore(t, store)
}
