//go:build integration

package sql_test

import (
	"context"
	"testing"
	"time"

	"github.com/bcnelson/yatube/internal/storage"
	"github.com/bcnelson/yatube/internal/storage/sql"
	"github.com/bcnelson/yatube/internal/storage/storagetest"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// startPostgres runs a throwaway PostgreSQL container and returns its DSN.
func startPostgres(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:alpine",
		postgres.WithDatabase("yatube"),
		postgres.WithUsername("yatube"),
		postgres.WithPassword("yatube"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	})

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	return dsn
}

// resetSchema drops every table so each subtest starts from a fresh migration.
func resetSchema(t *testing.T, driver, dsn string) {
	t.Helper()
	store, err := sql.New(driver, dsn)
	require.NoError(t, err)
	require.NoError(t, store.Reset())
	require.NoError(t, store.Close())
}

func TestPostgresStore(t *testing.T) {
	dsn := startPostgres(t)

	for _, driver := range []string{"postgres", "pgx"} {
		t.Run(driver, func(t *testing.T) {
			storagetest.Run(t, func(t *testing.T) storage.Storage {
				resetSchema(t, driver, dsn)
				store, err := sql.New(driver, dsn)
				require.NoError(t, err)
				return store
			})
		})
	}
}
