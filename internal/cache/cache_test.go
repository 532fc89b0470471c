package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"millbook/internal/events"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return New(rdb, time.Minute, zerolog.Nop()), mr
}

func TestSetAndGetOverview(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	_, ok := c.GetOverview(ctx)
	assert.False(t, ok, "empty cache misses")

	payload := []byte(`{"bookings":[],"closedSlots":[]}`)
	c.SetOverview(ctx, payload)

	got, ok := c.GetOverview(ctx)
	require.True(t, ok)
	assert.Equal(t, payload, got)
}

func TestTTLExpiry(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	c.SetOverview(ctx, []byte("{}"))
	mr.FastForward(2 * time.Minute)

	_, ok := c.GetOverview(ctx)
	assert.False(t, ok)
}

func TestInvalidate(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	c.SetOverview(ctx, []byte("{}"))
	c.Invalidate(ctx)

	_, ok := c.GetOverview(ctx)
	assert.False(t, ok)
}

func TestBindInvalidatesOnUpdate(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	bus := events.NewBus()
	c.Bind(bus)

	c.SetOverview(ctx, []byte("{}"))
	bus.Publish(events.TopicUpdate)

	_, ok := c.GetOverview(ctx)
	assert.False(t, ok)
}

func TestRedisDownIsBestEffort(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	c := New(rdb, time.Minute, zerolog.Nop())
	mr.Close()

	ctx := context.Background()
	assert.NotPanics(t, func() {
		c.SetOverview(ctx, []byte("{}"))
		_, ok := c.GetOverview(ctx)
		assert.False(t, ok)
		c.Invalidate(ctx)
	})
}
