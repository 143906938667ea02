package ratecard

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/dwiky-labs/ongkir-api/internal/quote"
)

const cacheGenerationKey = "ratecard:gen"

// Cache keeps loaded snapshots in Redis, keyed by the vendor set and a
// generation counter that admin writes bump. Bumping the generation orphans
// every cached snapshot at once instead of tracking per-scope keys.
type Cache struct {
	Client *redis.Client
	TTL    time.Duration
}

// Get returns a cached snapshot for the vendor set, if one exists for the
// current generation.
func (c *Cache) Get(ctx context.Context, vendorIDs []uuid.UUID) (*quote.Snapshot, bool, error) {
	if c == nil || c.Client == nil {
		return nil, false, nil
	}
	key, err := c.key(ctx, vendorIDs)
	if err != nil {
		return nil, false, err
	}
	data, err := c.Client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, false, nil
		}
		return nil, false, err
	}
	var snap quote.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, false, err
	}
	return &snap, true, nil
}

// Set stores a snapshot under the current generation.
func (c *Cache) Set(ctx context.Context, vendorIDs []uuid.UUID, snap *quote.Snapshot) error {
	if c == nil || c.Client == nil || c.TTL <= 0 {
		return nil
	}
	key, err := c.key(ctx, vendorIDs)
	if err != nil {
		return err
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return c.Client.Set(ctx, key, data, c.TTL).Err()
}

// Invalidate bumps the generation counter, orphaning all cached snapshots.
func (c *Cache) Invalidate(ctx context.Context) error {
	if c == nil || c.Client == nil {
		return nil
	}
	return c.Client.Incr(ctx, cacheGenerationKey).Err()
}

func (c *Cache) key(ctx context.Context, vendorIDs []uuid.UUID) (string, error) {
	gen, err := c.Client.Get(ctx, cacheGenerationKey).Int64()
	if err != nil && err != redis.Nil {
		return "", err
	}

	ids := make([]string, 0, len(vendorIDs))
	for _, id := range vendorIDs {
		ids = append(ids, id.String())
	}
	sort.Strings(ids)
	sum := sha256.Sum256([]byte(strings.Join(ids, ",")))

	return "ratecard:snap:" + strconv.FormatInt(gen, 10) + ":" + hex.EncodeToString(sum[:16]), nil
}
