package ratelimit

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestLimiterAllowSlidingWindow(t *testing.T) {
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = client.Close() }()
	limiter := Limiter{Client: client, Prefix: "test:"}

	ctx := context.Background()
	window := 2 * time.Second
	max := 2

	for i := 0; i < max; i++ {
		allowed, remaining, _, err := limiter.Allow(ctx, "key", window, max)
		require.NoError(t, err)
		require.True(t, allowed, "request %d should be allowed", i)
		require.Equal(t, max-(i+1), remaining)
	}

	allowed, remaining, _, err := limiter.Allow(ctx, "key", window, max)
	require.NoError(t, err)
	require.False(t, allowed, "third request should be rejected")
	require.Zero(t, remaining)

	mr.FastForward(window)

	allowed, _, _, err = limiter.Allow(ctx, "key", window, max)
	require.NoError(t, err)
	require.True(t, allowed, "request after window should be allowed")
}

func TestLimiterNilClientFailsOpen(t *testing.T) {
	limiter := Limiter{}
	allowed, _, _, err := limiter.Allow(context.Background(), "key", time.Second, 1)
	require.NoError(t, err)
	require.True(t, allowed)
}
