//go:build integration

package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/snaplink/snaplink/internal/model"
	"github.com/snaplink/snaplink/internal/testutil"
)

func newRepoTestEnv(t *testing.T) (context.Context, *Repository) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}

	ctx := context.Background()
	dbURL := testutil.RequireEnv(t, "DATABASE_URL")

	repo, err := New(ctx, dbURL, PoolLimits{MaxConns: 4})
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(repo.Close)

	unlock, err := testutil.AcquireDBLock(ctx, repo.Pool())
	if err != nil {
		t.Fatalf("acquire db lock: %v", err)
	}
	t.Cleanup(func() {
		_ = unlock()
	})

	if err := testutil.ResetSchema(ctx, repo.Pool()); err != nil {
		t.Fatalf("reset schema: %v", err)
	}

	return ctx, repo
}

func newTestLink(code string, owner *string) *model.Link {
	return &model.Link{
		ID:          ulid.Make().String(),
		OwnerID:     owner,
		Code:        code,
		Destination: "https://example.com/" + code,
		Active:      true,
		CreatedAt:   time.Now().UTC(),
	}
}

func strPtr(s string) *string { return &s }

func TestIntegrationCreateAndGetLink(t *testing.T) {
	ctx, repo := newRepoTestEnv(t)

	link := newTestLink("roundtrip1", strPtr("alice"))
	if err := repo.CreateLink(ctx, link); err != nil {
		t.Fatalf("CreateLink failed: %v", err)
	}

	retrieved, err := repo.GetLinkByCode(ctx, "roundtrip1")
	if err != nil {
		t.Fatalf("GetLinkByCode failed: %v", err)
	}
	if retrieved.ID != link.ID {
		t.Errorf("ID mismatch: got %q, want %q", retrieved.ID, link.ID)
	}
	if retrieved.Destination != link.Destination {
		t.Errorf("Destination mismatch: got %q, want %q", retrieved.Destination, link.Destination)
	}
	if retrieved.OwnerID == nil || *retrieved.OwnerID != "alice" {
		t.Errorf("OwnerID mismatch: got %v", retrieved.OwnerID)
	}
}

func TestIntegrationCreateLinkDuplicateCode(t *testing.T) {
	ctx, repo := newRepoTestEnv(t)

	if err := repo.CreateLink(ctx, newTestLink("dup1", nil)); err != nil {
		t.Fatalf("CreateLink (first) failed: %v", err)
	}

	err := repo.CreateLink(ctx, newTestLink("dup1", nil))
	if !errors.Is(err, ErrCodeExists) {
		t.Errorf("expected ErrCodeExists, got %v", err)
	}
}

func TestIntegrationGetLinkByCodeSkipsInactive(t *testing.T) {
	ctx, repo := newRepoTestEnv(t)

	link := newTestLink("inactive1", nil)
	if err := repo.CreateLink(ctx, link); err != nil {
		t.Fatalf("CreateLink failed: %v", err)
	}
	if err := repo.DeactivateLink(ctx, link.ID); err != nil {
		t.Fatalf("DeactivateLink failed: %v", err)
	}

	if _, err := repo.GetLinkByCode(ctx, "inactive1"); !errors.Is(err, ErrLinkNotFound) {
		t.Errorf("expected ErrLinkNotFound for inactive link, got %v", err)
	}

	// Still visible by ID.
	retrieved, err := repo.GetLinkByID(ctx, link.ID)
	if err != nil {
		t.Fatalf("GetLinkByID failed: %v", err)
	}
	if retrieved.Active {
		t.Error("expected link inactive")
	}
}

func TestIntegrationDeleteLinkOwnership(t *testing.T) {
	ctx, repo := newRepoTestEnv(t)

	link := newTestLink("owned1", strPtr("alice"))
	if err := repo.CreateLink(ctx, link); err != nil {
		t.Fatalf("CreateLink failed: %v", err)
	}

	deleted, err := repo.DeleteLink(ctx, link.ID, "mallory")
	if err != nil {
		t.Fatalf("DeleteLink failed: %v", err)
	}
	if deleted {
		t.Error("expected delete with wrong owner to match nothing")
	}

	deleted, err = repo.DeleteLink(ctx, link.ID, "alice")
	if err != nil || !deleted {
		t.Fatalf("expected owner delete to succeed, deleted=%v err=%v", deleted, err)
	}

	deleted, err = repo.DeleteLink(ctx, link.ID, "alice")
	if err != nil {
		t.Fatalf("repeat DeleteLink failed: %v", err)
	}
	if deleted {
		t.Error("expected repeat delete to match nothing")
	}
}

func TestIntegrationListLinksByOwner(t *testing.T) {
	ctx, repo := newRepoTestEnv(t)

	for i, code := range []string{"lista", "listb", "listc"} {
		link := newTestLink(code, strPtr("alice"))
		link.CreatedAt = time.Now().UTC().Add(time.Duration(i) * time.Second)
		if err := repo.CreateLink(ctx, link); err != nil {
			t.Fatalf("CreateLink %q failed: %v", code, err)
		}
	}
	if err := repo.CreateLink(ctx, newTestLink("other1", strPtr("bob"))); err != nil {
		t.Fatalf("CreateLink failed: %v", err)
	}

	links, err := repo.ListLinksByOwner(ctx, "alice", 2, 0)
	if err != nil {
		t.Fatalf("ListLinksByOwner failed: %v", err)
	}
	if len(links) != 2 {
		t.Fatalf("expected 2 links, got %d", len(links))
	}
	// Newest first.
	if links[0].Code != "listc" {
		t.Errorf("expected newest link first, got %q", links[0].Code)
	}

	total, err := repo.CountLinksByOwner(ctx, "alice")
	if err != nil {
		t.Fatalf("CountLinksByOwner failed: %v", err)
	}
	if total != 3 {
		t.Errorf("expected total 3, got %d", total)
	}
}

func TestIntegrationExpiresAtRoundTrip(t *testing.T) {
	ctx, repo := newRepoTestEnv(t)

	expires := time.Now().UTC().Add(time.Hour).Truncate(time.Microsecond)
	link := newTestLink("expiring1", nil)
	link.ExpiresAt = &expires
	if err := repo.CreateLink(ctx, link); err != nil {
		t.Fatalf("CreateLink failed: %v", err)
	}

	retrieved, err := repo.GetLinkByID(ctx, link.ID)
	if err != nil {
		t.Fatalf("GetLinkByID failed: %v", err)
	}
	if retrieved.ExpiresAt == nil || !retrieved.ExpiresAt.Equal(expires) {
		t.Errorf("ExpiresAt mismatch: got %v, want %v", retrieved.ExpiresAt, expires)
	}
}
