// internal/catalog/cache.go
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"sizing-workers/internal/common/logger"
	"sizing-workers/internal/common/metrics"
	"sizing-workers/internal/models"

	"github.com/redis/go-redis/v9"
)

const tablesKeyPrefix = "sizing:tables:"

// CachedProvider keeps resolved tables in Redis. Cache failures fall through
// to the wrapped provider.
type CachedProvider struct {
	next   Provider
	redis  *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewCachedProvider(next Provider, client *redis.Client, ttl time.Duration, log logger.Logger) *CachedProvider {
	return &CachedProvider{
		next:   next,
		redis:  client,
		ttl:    ttl,
		logger: log,
	}
}

func (c *CachedProvider) ListProducts(ctx context.Context) ([]models.Product, error) {
	return c.next.ListProducts(ctx)
}

func (c *CachedProvider) GetProduct(ctx context.Context, slug string) (*models.Product, error) {
	return c.next.GetProduct(ctx, slug)
}

func (c *CachedProvider) GetTables(ctx context.Context, slug string) (*Tables, error) {
	key := tablesKeyPrefix + slug
	if val, err := c.redis.Get(ctx, key).Result(); err == nil {
		var t Tables
		if err := json.Unmarshal([]byte(val), &t); err == nil {
			metrics.CatalogCacheLookups.WithLabelValues("hit").Inc()
			return &t, nil
		}
		metrics.CatalogCacheLookups.WithLabelValues("corrupt").Inc()
		c.logger.Warn("discarding unreadable cached tables", map[string]interface{}{
			"productSlug": slug,
		})
	} else if errors.Is(err, redis.Nil) {
		metrics.CatalogCacheLookups.WithLabelValues("miss").Inc()
	} else {
		metrics.CatalogCacheLookups.WithLabelValues("error").Inc()
		c.logger.Warn("tables cache read failed", map[string]interface{}{
			"productSlug": slug,
			"error":       err,
		})
	}

	t, err := c.next.GetTables(ctx, slug)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(t)
	if err != nil {
		c.logger.Warn("tables cache encode failed", map[string]interface{}{
			"productSlug": slug,
			"error":       err,
		})
		return t, nil
	}
	if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("tables cache write failed", map[string]interface{}{
			"productSlug": slug,
			"error":       err,
		})
	}
	return t, nil
}

// Invalidate drops the cached tables for the given slugs.
func (c *CachedProvider) Invalidate(ctx context.Context, slugs ...string) error {
	if len(slugs) == 0 {
		return nil
	}
	keys := make([]string, len(slugs))
	for i, s := range slugs {
		keys[i] = tablesKeyPrefix + s
	}
	return c.redis.Del(ctx, keys...).Err()
}
