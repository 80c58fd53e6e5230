// Package testutil provides shared helpers for tests.
package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

const advisoryLockID int64 = 730731

// AcquireDBLock grabs a global advisory lock to serialize DB tests.
func AcquireDBLock(ctx context.Context, pool *pgxpool.Pool) (func() error, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", advisoryLockID); err != nil {
		conn.Release()
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}

	unlock := func() error {
		defer conn.Release()
		if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", advisoryLockID); err != nil {
			return fmt.Errorf("release advisory lock: %w", err)
		}
		return nil
	}

	return unlock, nil
}

// ResetSchema drops and recreates the links/clicks schema for tests.
func ResetSchema(ctx context.Context, pool *pgxpool.Pool) error {
	root, err := ProjectRoot()
	if err != nil {
		return err
	}

	downPath := filepath.Join(root, "migrations", "000001_init.down.sql")
	upPath := filepath.Join(root, "migrations", "000001_init.up.sql")

	downSQL, err := os.ReadFile(downPath)
	if err != nil {
		return fmt.Errorf("read down migration: %w", err)
	}
	if _, err := pool.Exec(ctx, string(downSQL)); err != nil {
		return fmt.Errorf("apply down migration: %w", err)
	}

	upSQL, err := os.ReadFile(upPath)
	if err != nil {
		return fmt.Errorf("read up migration: %w", err)
	}
	if _, err := pool.Exec(ctx, string(upSQL)); err != nil {
		return fmt.Errorf("apply up migration: %w", err)
	}

	return nil
}

// ProjectRoot returns the repository root directory.
func ProjectRoot() (string, error) {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		return "", fmt.Errorf("failed to determine caller location")
	}
	// internal/testutil/testutil.go -> repo root
	return filepath.Dir(filepath.Dir(filepath.Dir(file))), nil
}

// MemoryStore is a deterministic in-memory stand-in for the Redis
// key/value store. Time is controlled with Advance, and availability
// can be toggled to exercise fail-open behavior.
type MemoryStore struct {
	mu          sync.Mutex
	now         time.Time
	entries     map[string]memoryEntry
	unavailable bool
}

type memoryEntry struct {
	value     string
	expiresAt time.Time // zero means no expiry
}

// NewMemoryStore creates an empty, available MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		now:     time.Now(),
		entries: make(map[string]memoryEntry),
	}
}

// SetAvailable toggles the simulated store availability.
func (s *MemoryStore) SetAvailable(available bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unavailable = !available
}

// Advance moves the store's clock forward, expiring entries whose TTL
// has elapsed.
func (s *MemoryStore) Advance(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = s.now.Add(d)
}

// IsAvailable reports the simulated availability.
func (s *MemoryStore) IsAvailable() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.unavailable
}

// Get returns the live value for key.
func (s *MemoryStore) Get(ctx context.Context, key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.unavailable {
		return "", false
	}
	entry, ok := s.live(key)
	if !ok {
		return "", false
	}
	return entry.value, true
}

// Set stores value under key with an optional TTL.
func (s *MemoryStore) Set(ctx context.Context, key, value string, ttl time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.unavailable {
		return false
	}
	entry := memoryEntry{value: value}
	if ttl > 0 {
		entry.expiresAt = s.now.Add(ttl)
	}
	s.entries[key] = entry
	return true
}

// Incr increments the counter at key, creating it at 1.
func (s *MemoryStore) Incr(ctx context.Context, key string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.unavailable {
		return 0
	}
	entry, ok := s.live(key)
	count := int64(0)
	if ok {
		count, _ = strconv.ParseInt(entry.value, 10, 64)
	}
	count++
	entry.value = strconv.FormatInt(count, 10)
	if !ok {
		entry.expiresAt = time.Time{}
	}
	s.entries[key] = entry
	return count
}

// Expire sets a TTL on an existing key.
func (s *MemoryStore) Expire(ctx context.Context, key string, ttl time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.unavailable {
		return false
	}
	entry, ok := s.live(key)
	if !ok {
		return false
	}
	entry.expiresAt = s.now.Add(ttl)
	s.entries[key] = entry
	return true
}

// TTL returns the remaining TTL for key, or -1 when absent, unset or
// unavailable.
func (s *MemoryStore) TTL(ctx context.Context, key string) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.unavailable {
		return -1
	}
	entry, ok := s.live(key)
	if !ok || entry.expiresAt.IsZero() {
		return -1
	}
	return entry.expiresAt.Sub(s.now)
}

// Delete removes key.
func (s *MemoryStore) Delete(ctx context.Context, key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.unavailable {
		return false
	}
	delete(s.entries, key)
	return true
}

// Len returns the number of live entries.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for key := range s.entries {
		if _, ok := s.live(key); ok {
			n++
		}
	}
	return n
}

// live returns the entry for key if it has not expired, lazily pruning
// expired entries. Callers must hold the mutex.
func (s *MemoryStore) live(key string) (memoryEntry, bool) {
	entry, ok := s.entries[key]
	if !ok {
		return memoryEntry{}, false
	}
	if !entry.expiresAt.IsZero() && !s.now.Before(entry.expiresAt) {
		delete(s.entries, key)
		return memoryEntry{}, false
	}
	return entry, true
}
