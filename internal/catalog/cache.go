package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// CachedStore is a read-through Redis cache in front of a Store.
// Products are cached as JSON with a TTL; cache failures degrade to the
// underlying store rather than failing the lookup.
type CachedStore struct {
	Next   Store
	Client *redis.Client
	TTL    time.Duration
}

func (c *CachedStore) key(id uuid.UUID) string {
	return "catalog:product:" + id.String()
}

// Product returns the cached product when present, otherwise loads it
// from the underlying store and caches the result.
func (c *CachedStore) Product(ctx context.Context, id uuid.UUID) (Product, error) {
	if c == nil || c.Next == nil {
		return Product{}, fmt.Errorf("catalog cache not configured")
	}
	if c.Client == nil || c.TTL <= 0 {
		return c.Next.Product(ctx, id)
	}

	key := c.key(id)
	if data, err := c.Client.Get(ctx, key).Bytes(); err == nil {
		var p Product
		if err := json.Unmarshal(data, &p); err == nil {
			return p, nil
		}
		// Corrupt entry: drop it and reload.
		_ = c.Client.Del(ctx, key).Err()
	}

	p, err := c.Next.Product(ctx, id)
	if err != nil {
		return Product{}, err
	}
	if data, err := json.Marshal(p); err == nil {
		_ = c.Client.Set(ctx, key, data, c.TTL).Err()
	}
	return p, nil
}

// Invalidate removes a product from the cache, for callers reacting to
// catalog updates.
func (c *CachedStore) Invalidate(ctx context.Context, id uuid.UUID) error {
	if c == nil || c.Client == nil {
		return nil
	}
	return c.Client.Del(ctx, c.key(id)).Err()
}
