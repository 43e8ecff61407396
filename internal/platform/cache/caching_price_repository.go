// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"metals_backend/internal/feature/prices/domain/entity"
	"metals_backend/internal/feature/prices/usecase"
)

const dateLayout = "2006-01-02"

// CachingPriceRepository decorates an ObservationRepository with Redis
// caching of ranged lookups. It implements the decorator pattern,
// transparently adding caching without modifying the underlying repository.
type CachingPriceRepository struct {
	inner     usecase.ObservationRepository
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

// NewCachingPriceRepository decorates an ObservationRepository with Redis caching.
// If ttl is 0, it defaults to 5 minutes. If namespace is empty, it uses "prices".
func NewCachingPriceRepository(rdb *redis.Client, ttl time.Duration, inner usecase.ObservationRepository, namespace string) *CachingPriceRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if namespace == "" {
		namespace = "prices"
	}
	return &CachingPriceRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// UpsertBatch merges observations and invalidates the affected symbols'
// cached ranges.
func (c *CachingPriceRepository) UpsertBatch(ctx context.Context, observations []entity.Observation) error {
	if err := c.inner.UpsertBatch(ctx, observations); err != nil {
		return err
	}
	if c.rdb == nil || len(observations) == 0 {
		return nil
	}

	seen := map[string]struct{}{}
	for _, obs := range observations {
		prefix := c.cacheKeyPrefix(obs.Symbol)
		if _, ok := seen[prefix]; ok {
			continue
		}
		seen[prefix] = struct{}{}
		_ = c.deleteByPattern(ctx, prefix+"*") // Best effort: don't fail if cache deletion fails
	}
	return nil
}

// FindRange retrieves observations, checking the cache first and falling
// back to the store.
func (c *CachingPriceRepository) FindRange(ctx context.Context, symbol string, start, end time.Time) ([]entity.Observation, error) {
	if c.rdb == nil {
		return c.inner.FindRange(ctx, symbol, start, end)
	}

	key := c.cacheKey(symbol, start, end)

	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out []entity.Observation
		if err := json.Unmarshal(b, &out); err == nil {
			return out, nil
		}
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
	}

	out, err := c.inner.FindRange(ctx, symbol, start, end)
	if err != nil {
		return nil, err
	}

	if b, err := json.Marshal(out); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}

	return out, nil
}

func (c *CachingPriceRepository) cacheKey(symbol string, start, end time.Time) string {
	return fmt.Sprintf("%s:%s:%s:%s",
		c.namespace,
		safe(symbol),
		start.UTC().Format(dateLayout),
		end.UTC().Format(dateLayout),
	)
}

func (c *CachingPriceRepository) cacheKeyPrefix(symbol string) string {
	return fmt.Sprintf("%s:%s:", c.namespace, safe(symbol))
}

// deleteByPattern deletes all cache keys matching a given pattern using SCAN.
func (c *CachingPriceRepository) deleteByPattern(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		keys, cur, err := c.rdb.Scan(ctx, cursor, pattern, 200).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = cur
		if cursor == 0 {
			break
		}
	}
	return nil
}

// safe escapes characters that are problematic for Redis keys.
func safe(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	return s
}
