// Package cache provides a Redis-backed cache for dataset statistics.
// Dataset listings are read on every page load of the annotation UI while
// writes are comparatively rare, so stats are cached per dataset name and
// invalidated whenever a sample or dataset mutation goes through.
//
// The cache is strictly an accelerator: every method degrades to a miss on
// connection trouble and callers fall back to CouchDB.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"hawkset.claimhawk.org/common"
)

// DefaultTTL bounds staleness for entries that escape invalidation (for
// example a write from another replica that crashed before the Invalidate).
const DefaultTTL = 5 * time.Minute

// StatsCache caches DatasetStats documents keyed by dataset name.
type StatsCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStatsCache creates a cache on a dedicated Redis client.
func NewStatsCache(addr, password string) *StatsCache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})
	return &StatsCache{client: client, ttl: DefaultTTL}
}

// NewStatsCacheWithClient wraps an existing client; used by tests to point
// the cache at miniredis.
func NewStatsCacheWithClient(client *redis.Client) *StatsCache {
	return &StatsCache{client: client, ttl: DefaultTTL}
}

func statsKey(dataset string) string {
	return "hawkset:stats:" + dataset
}

// Get returns the cached stats for a dataset, or ok=false on a miss. Redis
// errors are logged and reported as misses so the caller falls through to
// the document store.
func (s *StatsCache) Get(ctx context.Context, dataset string) (*common.DatasetStats, bool) {
	data, err := s.client.Get(ctx, statsKey(dataset)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			common.Logger.WithError(err).Warn("stats cache read failed")
		}
		return nil, false
	}

	var stats common.DatasetStats
	if err := json.Unmarshal(data, &stats); err != nil {
		common.Logger.WithError(err).Warn("stats cache entry corrupt, dropping")
		s.client.Del(ctx, statsKey(dataset))
		return nil, false
	}
	return &stats, true
}

// Set stores stats under the dataset name with the cache TTL.
func (s *StatsCache) Set(ctx context.Context, stats *common.DatasetStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to marshal stats: %w", err)
	}
	if err := s.client.Set(ctx, statsKey(stats.Name), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache stats: %w", err)
	}
	return nil
}

// Invalidate drops the cached entry for a dataset after a mutation.
func (s *StatsCache) Invalidate(ctx context.Context, dataset string) error {
	if err := s.client.Del(ctx, statsKey(dataset)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate stats: %w", err)
	}
	return nil
}

// Ping verifies connectivity at startup.
func (s *StatsCache) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close releases the Redis connection.
func (s *StatsCache) Close() error {
	return s.client.Close()
}
