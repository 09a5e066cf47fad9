// Package cache keeps recommendation results in Redis so repeated queries
// skip the ranking pass. Keys embed the catalog fingerprint, so a rebuilt
// catalog with different data never reads stale entries.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/ravindradesineni/Movie-recommendation/internal/recommender"
	"github.com/ravindradesineni/Movie-recommendation/pkg/metrics"
	pkgredis "github.com/ravindradesineni/Movie-recommendation/pkg/redis"
	"github.com/ravindradesineni/Movie-recommendation/pkg/resilience"
	"golang.org/x/sync/singleflight"
)

const keyPrefix = "rec:"

// Store is the subset of the Redis client the cache needs. Get must return
// an error satisfying pkgredis.IsNilError for missing keys.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	FlushByPattern(ctx context.Context, pattern string) (int64, error)
}

type QueryCache struct {
	store       Store
	ttl         time.Duration
	fingerprint string
	breaker     *resilience.CircuitBreaker
	metrics     *metrics.Metrics
	group       singleflight.Group
	logger      *slog.Logger
	hits        atomic.Int64
	misses      atomic.Int64
}

// New returns a cache for results of the catalog identified by fingerprint.
// m may be nil.
func New(store Store, ttl time.Duration, fingerprint string, m *metrics.Metrics) *QueryCache {
	var onChange func(from, to resilience.State)
	if m != nil {
		m.CacheCircuitState.Set(float64(resilience.StateClosed))
		onChange = func(_, to resilience.State) { m.CacheCircuitState.Set(float64(to)) }
	}
	return &QueryCache{
		store:       store,
		ttl:         ttl,
		fingerprint: fingerprint,
		breaker: resilience.NewCircuitBreaker("redis-cache", resilience.CircuitBreakerConfig{
			OnStateChange: onChange,
		}),
		metrics: m,
		logger:  slog.Default().With("component", "recommendation-cache"),
	}
}

// Get looks up a cached result. Store failures count as misses.
func (c *QueryCache) Get(ctx context.Context, kind, key string, n int) ([]recommender.Recommendation, bool) {
	k := c.buildKey(kind, key, n)
	var (
		data string
		miss bool
	)
	err := c.breaker.Execute(func() error {
		v, err := c.store.Get(ctx, k)
		if pkgredis.IsNilError(err) {
			miss = true
			return nil
		}
		data = v
		return err
	})
	if err != nil {
		c.logger.Warn("cache get failed", "key", k, "error", err)
		miss = true
	}
	if miss {
		c.recordMiss()
		return nil, false
	}
	var recs []recommender.Recommendation
	if err := json.Unmarshal([]byte(data), &recs); err != nil {
		c.logger.Error("cache unmarshal failed", "key", k, "error", err)
		c.recordMiss()
		return nil, false
	}
	c.recordHit()
	c.logger.Debug("cache hit", "kind", kind, "key", key, "n", n)
	return recs, true
}

func (c *QueryCache) Set(ctx context.Context, kind, key string, n int, recs []recommender.Recommendation) {
	k := c.buildKey(kind, key, n)
	data, err := json.Marshal(recs)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", k, "error", err)
		return
	}
	if err := c.breaker.Execute(func() error {
		return c.store.Set(ctx, k, data, c.ttl)
	}); err != nil {
		c.logger.Warn("cache set failed", "key", k, "error", err)
	}
}

// GetOrCompute returns the cached result or computes and stores it.
// Concurrent misses for the same key share one computation. Errors from
// computeFn are returned and not cached.
func (c *QueryCache) GetOrCompute(
	ctx context.Context,
	kind, key string,
	n int,
	computeFn func() ([]recommender.Recommendation, error),
) ([]recommender.Recommendation, bool, error) {
	if recs, ok := c.Get(ctx, kind, key, n); ok {
		return recs, true, nil
	}
	val, err, _ := c.group.Do(c.buildKey(kind, key, n), func() (interface{}, error) {
		recs, err := computeFn()
		if err != nil {
			return nil, err
		}
		c.Set(ctx, kind, key, n, recs)
		return recs, nil
	})
	if err != nil {
		return nil, false, err
	}
	return val.([]recommender.Recommendation), false, nil
}

// Invalidate deletes every cached result, including those of other
// catalog fingerprints.
func (c *QueryCache) Invalidate(ctx context.Context) error {
	deleted, err := c.store.FlushByPattern(ctx, keyPrefix+"*")
	if err != nil {
		return fmt.Errorf("invalidating cache: %w", err)
	}
	c.logger.Info("cache invalidated", "keys_deleted", deleted)
	return nil
}

func (c *QueryCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func (c *QueryCache) recordHit() {
	c.hits.Add(1)
	if c.metrics != nil {
		c.metrics.CacheHitsTotal.Inc()
	}
}

func (c *QueryCache) recordMiss() {
	c.misses.Add(1)
	if c.metrics != nil {
		c.metrics.CacheMissesTotal.Inc()
	}
}

// buildKey hashes the query so titles with arbitrary characters make safe
// keys. Titles are not normalized: catalog lookups are exact.
func (c *QueryCache) buildKey(kind, key string, n int) string {
	raw := fmt.Sprintf("%s|%s|n=%d", kind, key, n)
	hash := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("%s%s:%x", keyPrefix, c.fingerprint, hash[:16])
}
