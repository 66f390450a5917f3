// Package cache is a Redis-backed TTL cache for computed responses.
// Concurrent misses for the same key are coalesced into one computation,
// and Redis failures degrade to uncached operation through a circuit
// breaker instead of failing the request.
package cache

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/sync/singleflight"

	"github.com/Adithya-Monish-Kumar-K/Movie-Recommendation-Platform/pkg/metrics"
	pkgredis "github.com/Adithya-Monish-Kumar-K/Movie-Recommendation-Platform/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/Movie-Recommendation-Platform/pkg/resilience"
)

const keyPrefix = "movierec:"

// ErrMiss is returned by a Backend when the key does not exist.
var ErrMiss = errors.New("cache miss")

// Backend is the key-value store behind a Cache.
type Backend interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	FlushByPattern(ctx context.Context, pattern string) (int64, error)
	CountByPattern(ctx context.Context, pattern string) (int64, error)
}

type redisBackend struct {
	*pkgredis.Client
}

// NewRedisBackend adapts a Redis client, mapping missing keys to ErrMiss.
func NewRedisBackend(c *pkgredis.Client) Backend {
	return redisBackend{Client: c}
}

func (b redisBackend) Get(ctx context.Context, key string) (string, error) {
	v, err := b.Client.Get(ctx, key)
	if pkgredis.IsNilError(err) {
		return "", ErrMiss
	}
	return v, err
}

// Options configures a Cache.
type Options struct {
	TTL     time.Duration
	Breaker *resilience.CircuitBreaker
	Metrics *metrics.Metrics
}

// Stats is a point-in-time view of cache effectiveness.
type Stats struct {
	Namespace    string  `json:"namespace"`
	Hits         int64   `json:"hits"`
	Misses       int64   `json:"misses"`
	HitRate      float64 `json:"hit_rate"`
	Keys         int64   `json:"keys"`
	BreakerState string  `json:"breaker_state,omitempty"`
}

// Cache stores JSON-encoded values of type T under one namespace.
type Cache[T any] struct {
	backend   Backend
	namespace string
	opts      Options
	group     singleflight.Group
	logger    *slog.Logger
	hits      atomic.Int64
	misses    atomic.Int64
}

// New creates a cache whose keys live under namespace.
func New[T any](backend Backend, namespace string, opts Options) *Cache[T] {
	if opts.TTL <= 0 {
		opts.TTL = 5 * time.Minute
	}
	return &Cache[T]{
		backend:   backend,
		namespace: namespace,
		opts:      opts,
		logger:    slog.Default().With("component", "response-cache", "namespace", namespace),
	}
}

// Key derives a fixed-length key from the request parts.
func (c *Cache[T]) Key(parts ...string) string {
	hash := sha256.Sum256([]byte(strings.Join(parts, "\x1f")))
	return fmt.Sprintf("%s%s:%x", keyPrefix, c.namespace, hash[:16])
}

func (c *Cache[T]) guard(fn func() error) error {
	if c.opts.Breaker == nil {
		return fn()
	}
	return c.opts.Breaker.Execute(fn)
}

// Get returns the cached value for key.
func (c *Cache[T]) Get(ctx context.Context, key string) (T, bool) {
	var zero T
	var data string
	err := c.guard(func() error {
		var err error
		data, err = c.backend.Get(ctx, key)
		if errors.Is(err, ErrMiss) {
			return nil
		}
		return err
	})
	if err != nil {
		if !errors.Is(err, resilience.ErrCircuitOpen) {
			c.logger.Warn("cache get failed", "key", key, "error", err)
		}
		c.recordMiss()
		return zero, false
	}
	if data == "" {
		c.recordMiss()
		return zero, false
	}
	var v T
	if err := json.Unmarshal([]byte(data), &v); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		c.recordMiss()
		return zero, false
	}
	c.recordHit()
	c.logger.Debug("cache hit", "key", key)
	return v, true
}

// Set stores v under key for the configured TTL. Failures are logged only.
func (c *Cache[T]) Set(ctx context.Context, key string, v T) {
	data, err := json.Marshal(v)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	err = c.guard(func() error {
		return c.backend.Set(ctx, key, data, c.opts.TTL)
	})
	if err != nil && !errors.Is(err, resilience.ErrCircuitOpen) {
		c.logger.Warn("cache set failed", "key", key, "error", err)
	}
}

// GetOrCompute returns the cached value for key or computes, stores and
// returns it. Errors from compute are returned and never cached. The bool
// reports a cache hit.
func (c *Cache[T]) GetOrCompute(ctx context.Context, key string, compute func() (T, error)) (T, bool, error) {
	if v, ok := c.Get(ctx, key); ok {
		return v, true, nil
	}
	val, err, _ := c.group.Do(key, func() (interface{}, error) {
		v, err := compute()
		if err != nil {
			return v, err
		}
		c.Set(ctx, key, v)
		return v, nil
	})
	if err != nil {
		var zero T
		return zero, false, err
	}
	return val.(T), false, nil
}

// Invalidate deletes every key in this cache's namespace.
func (c *Cache[T]) Invalidate(ctx context.Context) (int64, error) {
	deleted, err := c.backend.FlushByPattern(ctx, c.pattern())
	if err != nil {
		return deleted, fmt.Errorf("invalidating cache: %w", err)
	}
	c.logger.Info("cache invalidate", "keys_deleted", deleted)
	return deleted, nil
}

// Stats reports hit counters and the number of live keys.
func (c *Cache[T]) Stats(ctx context.Context) Stats {
	hits, misses := c.hits.Load(), c.misses.Load()
	s := Stats{Namespace: c.namespace, Hits: hits, Misses: misses}
	if total := hits + misses; total > 0 {
		s.HitRate = float64(hits) / float64(total)
	}
	if n, err := c.backend.CountByPattern(ctx, c.pattern()); err == nil {
		s.Keys = n
	} else {
		c.logger.Warn("cache key count failed", "error", err)
	}
	if c.opts.Breaker != nil {
		s.BreakerState = c.opts.Breaker.State()
	}
	return s
}

func (c *Cache[T]) pattern() string {
	return keyPrefix + c.namespace + ":*"
}

func (c *Cache[T]) recordHit() {
	c.hits.Add(1)
	if c.opts.Metrics != nil {
		c.opts.Metrics.CacheHitsTotal.Inc()
	}
}

func (c *Cache[T]) recordMiss() {
	c.misses.Add(1)
	if c.opts.Metrics != nil {
		c.opts.Metrics.CacheMissesTotal.Inc()
	}
}
