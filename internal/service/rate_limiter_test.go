package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiterSlidingWindow(t *testing.T) {
	_, rdb := newTestRedis(t)
	limiter := NewRateLimiter(rdb)
	ctx := context.Background()

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		decision, err := limiter.Allow(ctx, "10.0.0.1", 3, time.Minute)
		require.NoError(t, err)
		assert.Equal(t, 2-i, decision.Remaining)
		now = now.Add(10 * time.Second)
	}

	decision, err := limiter.Allow(ctx, "10.0.0.1", 3, time.Minute)
	require.ErrorIs(t, err, ErrRateLimited)
	assert.Equal(t, 0, decision.Remaining)
	assert.Equal(t, 30*time.Second, decision.RetryAfter)

	// other keys have their own window
	_, err = limiter.Allow(ctx, "10.0.0.2", 3, time.Minute)
	require.NoError(t, err)

	// the first hit slides out of the window
	now = now.Add(31 * time.Second)
	_, err = limiter.Allow(ctx, "10.0.0.1", 3, time.Minute)
	require.NoError(t, err)
}
