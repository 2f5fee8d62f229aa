package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/mohamedkhairy/signal-monitor/internal/models"
	"github.com/mohamedkhairy/signal-monitor/internal/storage"
)

// RedisCache is a BarCache shared through Redis; expiry is left to the key TTL
type RedisCache struct {
	redis  storage.KeyValueStore
	ttl    time.Duration
	prefix string
}

// NewRedisCache creates a new Redis-backed cache
func NewRedisCache(redis storage.KeyValueStore, ttl time.Duration, prefix string) *RedisCache {
	if prefix == "" {
		prefix = "bars"
	}
	return &RedisCache{
		redis:  redis,
		ttl:    ttl,
		prefix: prefix,
	}
}

func (c *RedisCache) key(symbol string) string {
	return fmt.Sprintf("%s:%s", c.prefix, symbol)
}

// Get reads the cached window; a missing key is a miss
func (c *RedisCache) Get(ctx context.Context, symbol string) ([]models.Bar, bool, error) {
	var bars []models.Bar
	found, err := c.redis.GetJSON(ctx, c.key(symbol), &bars)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cached bars for %s: %w", symbol, err)
	}
	if !found {
		return nil, false, nil
	}
	if bars == nil {
		bars = []models.Bar{}
	}
	return bars, true, nil
}

// Set writes the window with the cache TTL
func (c *RedisCache) Set(ctx context.Context, symbol string, bars []models.Bar) error {
	if bars == nil {
		bars = []models.Bar{}
	}
	if err := c.redis.SetJSON(ctx, c.key(symbol), bars, c.ttl); err != nil {
		return fmt.Errorf("failed to cache bars for %s: %w", symbol, err)
	}
	return nil
}

// Delete drops a symbol's entry
func (c *RedisCache) Delete(ctx context.Context, symbol string) error {
	return c.redis.Delete(ctx, c.key(symbol))
}
