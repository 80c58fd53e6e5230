// Package cache provides a fail-soft Redis access layer.
//
// The store is a best-effort accelerator for rate limiting and stats
// caching, never a correctness dependency: every operation swallows
// connectivity failures and returns an "unavailable" zero value, and
// every call is bounded by a short timeout so a stalled Redis cannot
// stall redirects.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultOpTimeout bounds individual store operations.
const DefaultOpTimeout = 500 * time.Millisecond

// Cache wraps a Redis client with availability tracking.
type Cache struct {
	client    *redis.Client
	logger    *slog.Logger
	opTimeout time.Duration
	available atomic.Bool
}

// New creates a Cache from a Redis URL. Unlike a hard dependency, an
// unreachable Redis does not fail construction: the cache starts in the
// unavailable state and recovers when operations start succeeding.
func New(ctx context.Context, redisURL string, opTimeout time.Duration, logger *slog.Logger) (*Cache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	// Connection pool settings
	opt.PoolSize = 10
	opt.MinIdleConns = 2
	opt.PoolTimeout = 4 * time.Second
	opt.ConnMaxIdleTime = 5 * time.Minute

	if opTimeout <= 0 {
		opTimeout = DefaultOpTimeout
	}

	c := &Cache{
		client:    redis.NewClient(opt),
		logger:    logger.With("component", "cache"),
		opTimeout: opTimeout,
	}

	pingCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	if err := c.client.Ping(pingCtx).Err(); err != nil {
		c.logger.Warn("redis unavailable at startup, continuing degraded", "error", err)
		c.available.Store(false)
	} else {
		c.available.Store(true)
	}

	return c, nil
}

// IsAvailable reports whether the store answered its last operation.
func (c *Cache) IsAvailable() bool {
	return c.available.Load()
}

// Ping checks Redis connectivity and refreshes the availability flag.
func (c *Cache) Ping(ctx context.Context) error {
	ctx, cancel := c.opContext(ctx)
	defer cancel()

	err := c.client.Ping(ctx).Err()
	c.observe("ping", err)
	return err
}

// Close closes the Redis client.
func (c *Cache) Close() error {
	return c.client.Close()
}

// Get returns the value for key, or ok=false if the key is absent or
// the store is unavailable.
func (c *Cache) Get(ctx context.Context, key string) (string, bool) {
	ctx, cancel := c.opContext(ctx)
	defer cancel()

	value, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.observe("get", err)
		}
		return "", false
	}
	c.available.Store(true)
	return value, true
}

// Set stores value under key with the given TTL (ttl <= 0 means no
// expiry). Returns false if the store is unavailable.
func (c *Cache) Set(ctx context.Context, key, value string, ttl time.Duration) bool {
	ctx, cancel := c.opContext(ctx)
	defer cancel()

	if ttl < 0 {
		ttl = 0
	}
	err := c.client.Set(ctx, key, value, ttl).Err()
	c.observe("set", err)
	return err == nil
}

// Incr increments the counter at key and returns the new value.
// Returns 0 if the store is unavailable.
func (c *Cache) Incr(ctx context.Context, key string) int64 {
	ctx, cancel := c.opContext(ctx)
	defer cancel()

	n, err := c.client.Incr(ctx, key).Result()
	c.observe("incr", err)
	if err != nil {
		return 0
	}
	return n
}

// Expire sets a TTL on key. Returns false if the key does not exist or
// the store is unavailable.
func (c *Cache) Expire(ctx context.Context, key string, ttl time.Duration) bool {
	ctx, cancel := c.opContext(ctx)
	defer cancel()

	ok, err := c.client.Expire(ctx, key, ttl).Result()
	c.observe("expire", err)
	return err == nil && ok
}

// TTL returns the remaining TTL for key, or -1 if the key is absent,
// has no expiry, or the store is unavailable.
func (c *Cache) TTL(ctx context.Context, key string) time.Duration {
	ctx, cancel := c.opContext(ctx)
	defer cancel()

	d, err := c.client.TTL(ctx, key).Result()
	c.observe("ttl", err)
	if err != nil || d < 0 {
		return -1
	}
	return d
}

// Delete removes key. Returns false if the store is unavailable.
func (c *Cache) Delete(ctx context.Context, key string) bool {
	ctx, cancel := c.opContext(ctx)
	defer cancel()

	err := c.client.Del(ctx, key).Err()
	c.observe("delete", err)
	return err == nil
}

// opContext bounds a store operation with the configured timeout.
func (c *Cache) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, c.opTimeout)
}

// observe updates the availability flag from an operation outcome and
// logs connectivity failures at warn level for operational visibility.
func (c *Cache) observe(op string, err error) {
	if err == nil || errors.Is(err, redis.Nil) {
		c.available.Store(true)
		return
	}
	if c.available.Swap(false) {
		c.logger.Warn("redis operation failed, degrading", "op", op, "error", err)
	}
}
