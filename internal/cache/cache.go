// Package cache keeps the rendered overview payload in Redis so repeated
// display polls between mutations skip the database. Caching is optional
// and best-effort: Redis failures are logged and the caller falls through
// to the store.
package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"millbook/internal/events"
)

const overviewKey = "millbook:overview"

// Cache wraps a Redis client with the overview TTL.
type Cache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// New constructs a cache over the given client.
func New(rdb *redis.Client, ttl time.Duration, logger zerolog.Logger) *Cache {
	return &Cache{
		rdb:    rdb,
		ttl:    ttl,
		logger: logger.With().Str("component", "cache").Logger(),
	}
}

// Bind invalidates the cached overview on every committed mutation.
func (c *Cache) Bind(bus *events.Bus) {
	bus.Subscribe(events.TopicUpdate, func(string) {
		c.Invalidate(context.Background())
	})
}

// GetOverview returns the cached payload, or false on miss or error.
func (c *Cache) GetOverview(ctx context.Context) ([]byte, bool) {
	payload, err := c.rdb.Get(ctx, overviewKey).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		c.logger.Warn().Err(err).Msg("overview cache read failed")
		return nil, false
	}
	return payload, true
}

// SetOverview stores the payload with the configured TTL.
func (c *Cache) SetOverview(ctx context.Context, payload []byte) {
	if err := c.rdb.Set(ctx, overviewKey, payload, c.ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Msg("overview cache write failed")
	}
}

// Invalidate drops the cached payload.
func (c *Cache) Invalidate(ctx context.Context) {
	if err := c.rdb.Del(ctx, overviewKey).Err(); err != nil {
		c.logger.Warn().Err(err).Msg("overview cache invalidation failed")
	}
}
