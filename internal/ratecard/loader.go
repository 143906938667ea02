package ratecard

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dwiky-labs/ongkir-api/internal/obs"
	"github.com/dwiky-labs/ongkir-api/internal/quote"
)

// Loader combines the Postgres store with the Redis cache. Cache failures
// degrade to a direct load; a quote must never fail because Redis is down.
type Loader struct {
	Store  *Store
	Cache  *Cache
	Logger zerolog.Logger
}

// Snapshot returns the configuration snapshot covering the given vendors.
func (l *Loader) Snapshot(ctx context.Context, vendorIDs []uuid.UUID) (*quote.Snapshot, error) {
	ids := dedupe(vendorIDs)

	if snap, ok, err := l.Cache.Get(ctx, ids); err != nil {
		l.Logger.Warn().Err(err).Msg("ratecard cache read failed")
	} else if ok {
		countCache(true)
		return snap, nil
	}
	countCache(false)

	snap, err := l.Store.Load(ctx, ids)
	if err != nil {
		return nil, err
	}
	if err := l.Cache.Set(ctx, ids, snap); err != nil {
		l.Logger.Warn().Err(err).Msg("ratecard cache write failed")
	}
	return snap, nil
}

func countCache(hit bool) {
	if obs.RatecardCacheTotal == nil {
		return
	}
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	obs.RatecardCacheTotal.WithLabelValues(outcome).Inc()
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
