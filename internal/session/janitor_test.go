package session_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/meli-lister/internal/session"
	"github.com/donaldgifford/meli-lister/internal/store"
)

func TestNewJanitor(t *testing.T) {
	t.Parallel()

	j, err := session.NewJanitor(store.NewMemoryStore(), 15*time.Minute, slog.Default())
	require.NoError(t, err)
	assert.Len(t, j.Entries(), 1)
}

func TestJanitor_Purge(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s := store.NewMemoryStore(store.WithMemoryNowFunc(func() time.Time { return now }))

	require.NoError(t, s.Save(ctx, "old", map[string]string{"CLIENT_ID": "a"}, time.Minute))
	require.NoError(t, s.Save(ctx, "fresh", map[string]string{"CLIENT_ID": "b"}, time.Hour))
	now = now.Add(10 * time.Minute)

	j, err := session.NewJanitor(s, time.Hour, slog.Default())
	require.NoError(t, err)

	n, err := j.Purge(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, 1, s.Len())
}

func TestJanitor_StartStop(t *testing.T) {
	t.Parallel()

	j, err := session.NewJanitor(store.NewMemoryStore(), time.Hour, slog.Default())
	require.NoError(t, err)

	j.Start()
	<-j.Stop().Done()
}
