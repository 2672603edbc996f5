package meli_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/meli-lister/internal/meli"
)

func TestRateLimiter_Wait(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		rate    float64
		burst   int
		daily   int64
		calls   int
		wantErr bool
	}{
		{name: "allows calls within rate", rate: 100, burst: 10, daily: 5000, calls: 3},
		{name: "allows burst", rate: 100, burst: 5, daily: 5000, calls: 5},
		{name: "rejects when daily limit reached", rate: 100, burst: 10, daily: 2, calls: 3, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rl := meli.NewRateLimiter(tt.rate, tt.burst, tt.daily)

			var lastErr error
			for range tt.calls {
				lastErr = rl.Wait(context.Background())
				if lastErr != nil {
					break
				}
			}

			if tt.wantErr {
				require.ErrorIs(t, lastErr, meli.ErrDailyLimitReached)
				return
			}
			require.NoError(t, lastErr)
			assert.Equal(t, int64(tt.calls), rl.DailyCount())
			assert.Equal(t, tt.daily-int64(tt.calls), rl.Remaining())
		})
	}
}

func TestRateLimiter_WindowReset(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 15, 14, 30, 0, 0, time.UTC)
	rl := meli.NewRateLimiter(100, 10, 1,
		meli.WithRateLimiterNowFunc(func() time.Time { return now }),
	)

	assert.Equal(t, now.Add(24*time.Hour), rl.ResetAt())
	require.NoError(t, rl.Wait(context.Background()))
	require.ErrorIs(t, rl.Wait(context.Background()), meli.ErrDailyLimitReached)

	now = now.Add(25 * time.Hour)
	require.NoError(t, rl.Wait(context.Background()))
	assert.Equal(t, int64(1), rl.DailyCount())
}

func TestRateLimiter_CanceledContextReleasesQuota(t *testing.T) {
	t.Parallel()

	rl := meli.NewRateLimiter(0.001, 1, 10)
	require.NoError(t, rl.Wait(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.Error(t, rl.Wait(ctx))
	assert.Equal(t, int64(1), rl.DailyCount())
}
