package redisrepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/kirinyoku/tixmarket/internal/metrics"
	redisx "github.com/kirinyoku/tixmarket/internal/redis"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// Cache stores read models as JSON: public listing pages keyed by the
// listings generation, and per-vendor statistics.
type Cache struct {
	rdb *redis.Client
	sf  singleflight.Group
}

func New(client *redis.Client) *Cache {
	return &Cache{rdb: client}
}

// Generation returns the current listings generation. A missing counter
// reads as zero.
func (c *Cache) Generation(ctx context.Context) (int64, error) {
	n, err := c.rdb.Get(ctx, redisx.KeyTicketsGeneration()).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}

// InvalidateListings orphans every cached public listing page.
func (c *Cache) InvalidateListings(ctx context.Context) error {
	return c.rdb.Incr(ctx, redisx.KeyTicketsGeneration()).Err()
}

func (c *Cache) InvalidateVendorStats(ctx context.Context, vendorID string) error {
	return c.rdb.Del(ctx, redisx.KeyVendorStats(vendorID)).Err()
}

// getJSON reads key into a T. An entry that no longer decodes into T is
// reported as a miss and overwritten by the next load.
func getJSON[T any](ctx context.Context, c *Cache, key string) (T, bool, error) {
	var out T

	b, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return out, false, nil
	}
	if err != nil {
		return out, false, err
	}

	if err := json.Unmarshal(b, &out); err != nil {
		var zero T
		return zero, false, nil
	}
	return out, true, nil
}

func setJSON(ctx context.Context, c *Cache, key string, val any, ttl time.Duration) error {
	b, err := json.Marshal(val)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key, b, ttl).Err()
}

// GetOrSetJSON returns the cached value under key or loads and stores it.
// Concurrent misses for one key share a single loader call, which runs
// detached from the cancellation of whichever caller started it. A failed
// write-back is ignored.
func GetOrSetJSON[T any](
	ctx context.Context,
	c *Cache,
	key string,
	ttl time.Duration,
	loader func(ctx context.Context) (T, error),
) (T, error) {
	const op = "redisrepo.GetOrSetJSON"

	var zero T

	v, ok, err := getJSON[T](ctx, c, key)
	if err != nil {
		return zero, fmt.Errorf("%s: %w", op, err)
	}
	if ok {
		metrics.CacheLookups.WithLabelValues("hit").Inc()
		return v, nil
	}
	metrics.CacheLookups.WithLabelValues("miss").Inc()

	shared, err, _ := c.sf.Do(key, func() (any, error) {
		ctx := context.WithoutCancel(ctx)

		if v, ok, err := getJSON[T](ctx, c, key); err != nil || ok {
			return v, err
		}
		v, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		_ = setJSON(ctx, c, key, v, ttl)
		return v, nil
	})
	if err != nil {
		return zero, err
	}

	out, ok := shared.(T)
	if !ok {
		return zero, fmt.Errorf("%s: cached value for %q has type %T", op, key, shared)
	}
	return out, nil
}
