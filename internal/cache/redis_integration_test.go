//go:build integration

package cache

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/snaplink/snaplink/internal/testutil"
)

func newCacheTestEnv(t *testing.T) (context.Context, *Cache) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}

	ctx := context.Background()
	redisURL := testutil.RequireEnv(t, "REDIS_URL")

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	c, err := New(ctx, redisURL, DefaultOpTimeout, logger)
	if err != nil {
		t.Fatalf("create cache: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })

	if err := c.Ping(ctx); err != nil {
		t.Skipf("redis unreachable: %v", err)
	}

	return ctx, c
}

func testKey(prefix string) string {
	return "test:" + prefix + ":" + uuid.NewString()
}

func TestIntegrationSetGetDelete(t *testing.T) {
	ctx, c := newCacheTestEnv(t)

	key := testKey("roundtrip")
	if !c.Set(ctx, key, "value-1", time.Minute) {
		t.Fatal("Set failed")
	}

	value, ok := c.Get(ctx, key)
	if !ok || value != "value-1" {
		t.Errorf("Get = %q, %v; want value-1, true", value, ok)
	}

	if !c.Delete(ctx, key) {
		t.Error("Delete failed")
	}
	if _, ok := c.Get(ctx, key); ok {
		t.Error("expected miss after delete")
	}
}

func TestIntegrationIncrExpireTTL(t *testing.T) {
	ctx, c := newCacheTestEnv(t)

	key := testKey("counter")
	defer c.Delete(ctx, key)

	if got := c.Incr(ctx, key); got != 1 {
		t.Errorf("first Incr = %d, want 1", got)
	}
	if got := c.Incr(ctx, key); got != 2 {
		t.Errorf("second Incr = %d, want 2", got)
	}

	if c.TTL(ctx, key) != -1 {
		t.Error("expected no TTL before Expire")
	}
	if !c.Expire(ctx, key, time.Minute) {
		t.Fatal("Expire failed")
	}
	ttl := c.TTL(ctx, key)
	if ttl <= 0 || ttl > time.Minute {
		t.Errorf("TTL = %v, want (0, 1m]", ttl)
	}
}

func TestIntegrationGetMissingKey(t *testing.T) {
	ctx, c := newCacheTestEnv(t)

	if _, ok := c.Get(ctx, testKey("missing")); ok {
		t.Error("expected miss for unknown key")
	}
}
