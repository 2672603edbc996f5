//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/donaldgifford/meli-lister/internal/store"
)

func setupPostgres(t *testing.T) *store.PostgresStore {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("meli_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, pgContainer.Terminate(ctx))
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	s, err := store.NewPostgresStore(ctx, connStr, 2)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = s.Close()
	})

	require.NoError(t, s.Migrate(ctx))

	return s
}

func TestPostgresStore_Ping(t *testing.T) {
	s := setupPostgres(t)
	require.NoError(t, s.Ping(context.Background()))
}

func TestPostgresStore_MigrateIsIdempotent(t *testing.T) {
	s := setupPostgres(t)
	require.NoError(t, s.Migrate(context.Background()))
}

func TestPostgresStore_SessionLifecycle(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()

	_, err := s.Load(ctx, "sid-1")
	require.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.Save(ctx, "sid-1", map[string]string{
		"CLIENT_ID":     "1234",
		"CLIENT_SECRET": "test_secret",
	}, time.Hour))

	got, err := s.Load(ctx, "sid-1")
	require.NoError(t, err)
	assert.Equal(t, "1234", got["CLIENT_ID"])

	// Save replaces the whole value set.
	require.NoError(t, s.Save(ctx, "sid-1", map[string]string{"ML_USER_ID": "3135"}, time.Hour))
	got, err = s.Load(ctx, "sid-1")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"ML_USER_ID": "3135"}, got)

	require.NoError(t, s.Delete(ctx, "sid-1"))
	_, err = s.Load(ctx, "sid-1")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestPostgresStore_PurgeExpired(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "expired", map[string]string{"k": "v"}, -time.Minute))
	require.NoError(t, s.Save(ctx, "live", map[string]string{"k": "v"}, time.Hour))

	_, err := s.Load(ctx, "expired")
	require.ErrorIs(t, err, store.ErrNotFound)

	n, err := s.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = s.Load(ctx, "live")
	require.NoError(t, err)
}
