package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hawkset.claimhawk.org/common"
)

func newTestCache(t *testing.T) (*StatsCache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	c := NewStatsCacheWithClient(client)
	t.Cleanup(func() { c.Close() })
	return c, mr
}

// TestStatsCache_SetGet validates the round trip through Redis.
func TestStatsCache_SetGet(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	stats := &common.DatasetStats{
		Name:        "claimhawk_dataset",
		Description: "Claims UI workflows",
		SampleCount: 42,
		CreatedAt:   time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, c.Set(ctx, stats))

	got, ok := c.Get(ctx, "claimhawk_dataset")
	require.True(t, ok)
	assert.Equal(t, stats.SampleCount, got.SampleCount)
	assert.Equal(t, stats.Description, got.Description)
}

// TestStatsCache_Miss validates that unknown datasets report a miss.
func TestStatsCache_Miss(t *testing.T) {
	c, _ := newTestCache(t)

	_, ok := c.Get(context.Background(), "nope")
	assert.False(t, ok)
}

// TestStatsCache_Invalidate validates that invalidation removes the entry.
func TestStatsCache_Invalidate(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, &common.DatasetStats{Name: "ds", SampleCount: 1}))
	require.NoError(t, c.Invalidate(ctx, "ds"))

	_, ok := c.Get(ctx, "ds")
	assert.False(t, ok)
}

// TestStatsCache_TTL validates that entries expire.
func TestStatsCache_TTL(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, &common.DatasetStats{Name: "ds", SampleCount: 1}))

	mr.FastForward(DefaultTTL + time.Second)

	_, ok := c.Get(ctx, "ds")
	assert.False(t, ok)
}

// TestStatsCache_CorruptEntry validates that an unparseable entry is treated
// as a miss and dropped.
func TestStatsCache_CorruptEntry(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, mr.Set("hawkset:stats:ds", "{not json"))

	_, ok := c.Get(ctx, "ds")
	assert.False(t, ok)
	assert.False(t, mr.Exists("hawkset:stats:ds"))
}
