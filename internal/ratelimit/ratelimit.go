// Package ratelimit implements distributed fixed-window rate limiting
// on top of a fail-soft key/value counter store.
//
// The algorithm is a counting fixed window, not a sliding window: the
// counter resets at discrete TTL boundaries, so up to 2x the limit can
// pass across a window boundary in the worst case. That burst allowance
// is an accepted property of the design, traded for a single counter
// and O(1) store operations per check.
package ratelimit

import (
	"context"
	"log/slog"
	"math"
	"strconv"
	"time"
)

// keyPrefix namespaces rate counters in the shared store.
const keyPrefix = "ratelimit:"

// Store is the counter store consumed by the limiter. Implementations
// must be fail-soft: operations return zero values instead of errors
// when the backing store is unreachable.
type Store interface {
	Get(ctx context.Context, key string) (string, bool)
	Incr(ctx context.Context, key string) int64
	Expire(ctx context.Context, key string, ttl time.Duration) bool
	TTL(ctx context.Context, key string) time.Duration
	Delete(ctx context.Context, key string) bool
	IsAvailable() bool
}

// Limiter enforces a fixed-window request limit per identifier.
type Limiter struct {
	store  Store
	logger *slog.Logger
	limit  int
	window time.Duration
}

// New creates a Limiter allowing limit requests per window for each
// identifier (typically client IP plus route class).
func New(store Store, logger *slog.Logger, limit int, window time.Duration) *Limiter {
	return &Limiter{
		store:  store,
		logger: logger.With("component", "ratelimit"),
		limit:  limit,
		window: window,
	}
}

// Limit returns the configured per-window request limit.
func (l *Limiter) Limit() int {
	return l.limit
}

// Allow reports whether a request for the identifier is within the
// limit, counting the request when it is. Fails open: when the store is
// unavailable, every request is allowed rather than blocking traffic.
func (l *Limiter) Allow(ctx context.Context, identifier string) bool {
	if !l.store.IsAvailable() {
		return true
	}

	key := keyPrefix + identifier

	count := l.currentCount(ctx, key)
	if count >= int64(l.limit) {
		if l.store.TTL(ctx, key) > 0 {
			return false
		}
		// Counter at limit but no TTL: stale window, reset it.
		l.store.Delete(ctx, key)
	}

	// The first increment creates the key and starts the window.
	if n := l.store.Incr(ctx, key); n == 1 {
		if !l.store.Expire(ctx, key, l.window) {
			l.logger.Warn("failed to set rate window TTL", "identifier", identifier)
		}
	}

	return true
}

// Remaining returns how many requests the identifier has left in the
// current window. An unavailable store means effectively unlimited.
func (l *Limiter) Remaining(ctx context.Context, identifier string) int {
	if !l.store.IsAvailable() {
		return math.MaxInt
	}

	count := l.currentCount(ctx, keyPrefix+identifier)
	remaining := int64(l.limit) - count
	if remaining < 0 {
		return 0
	}
	return int(remaining)
}

// RetryAfter returns how long until the identifier's window resets,
// or 0 when unknown or the store is unavailable.
func (l *Limiter) RetryAfter(ctx context.Context, identifier string) time.Duration {
	if !l.store.IsAvailable() {
		return 0
	}

	ttl := l.store.TTL(ctx, keyPrefix+identifier)
	if ttl < 0 {
		return 0
	}
	return ttl
}

// Reset clears the identifier's counter, opening a fresh window.
func (l *Limiter) Reset(ctx context.Context, identifier string) {
	l.store.Delete(ctx, keyPrefix+identifier)
}

// currentCount reads the counter, treating absent or garbage values
// as zero.
func (l *Limiter) currentCount(ctx context.Context, key string) int64 {
	value, ok := l.store.Get(ctx, key)
	if !ok {
		return 0
	}
	count, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0
	}
	return count
}
