package ratecard

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/dwiky-labs/ongkir-api/internal/quote"
)

func dec(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return &Cache{Client: client, TTL: time.Minute}, mr
}

func cachedSnapshot(t *testing.T) (*quote.Snapshot, []uuid.UUID) {
	t.Helper()
	snap, err := buildSnapshot(baseRowSet())
	require.NoError(t, err)
	vendorIDs := make([]uuid.UUID, 0, len(snap.Vendors))
	for id := range snap.Vendors {
		vendorIDs = append(vendorIDs, id)
	}
	return snap, vendorIDs
}

func TestCacheRoundTrip(t *testing.T) {
	t.Parallel()

	cache, _ := newTestCache(t)
	ctx := context.Background()
	snap, vendorIDs := cachedSnapshot(t)

	_, ok, err := cache.Get(ctx, vendorIDs)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, cache.Set(ctx, vendorIDs, snap))

	got, ok, err := cache.Get(ctx, vendorIDs)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, len(snap.Vendors), len(got.Vendors))
	for scope, rules := range snap.Rules {
		cachedRules, found := got.Rules[scope]
		require.True(t, found, "scope %s survives the JSON round trip", scope)
		require.True(t, rules.TierThreePercent.Equal(cachedRules.TierThreePercent))
	}
}

func TestCacheKeyIgnoresVendorOrder(t *testing.T) {
	t.Parallel()

	cache, _ := newTestCache(t)
	ctx := context.Background()
	snap, _ := cachedSnapshot(t)

	a, b := uuid.New(), uuid.New()
	require.NoError(t, cache.Set(ctx, []uuid.UUID{a, b}, snap))

	_, ok, err := cache.Get(ctx, []uuid.UUID{b, a})
	require.NoError(t, err)
	require.True(t, ok, "same vendor set in different order hits the same key")
}

func TestCacheInvalidateOrphansSnapshots(t *testing.T) {
	t.Parallel()

	cache, _ := newTestCache(t)
	ctx := context.Background()
	snap, vendorIDs := cachedSnapshot(t)

	require.NoError(t, cache.Set(ctx, vendorIDs, snap))
	require.NoError(t, cache.Invalidate(ctx))

	_, ok, err := cache.Get(ctx, vendorIDs)
	require.NoError(t, err)
	require.False(t, ok, "generation bump must orphan cached snapshots")
}

func TestCacheDisabledIsNoop(t *testing.T) {
	t.Parallel()

	var cache *Cache
	ctx := context.Background()
	snap, vendorIDs := cachedSnapshot(t)

	require.NoError(t, cache.Set(ctx, vendorIDs, snap))
	_, ok, err := cache.Get(ctx, vendorIDs)
	require.NoError(t, err)
	require.False(t, ok)
	require.NoError(t, cache.Invalidate(ctx))
}
