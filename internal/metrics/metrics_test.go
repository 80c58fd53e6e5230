package metrics

import (
	"sync"
	"testing"
)

func TestInMemoryCounters(t *testing.T) {
	rec := NewInMemory()

	rec.IncLinkCreated()
	rec.IncLinkCreated()
	rec.IncLinkDeleted()
	rec.IncRedirect()
	rec.IncClickRecorded()
	rec.IncClickDropped()
	rec.IncRateLimited()
	rec.SetAnalyticsQueueDepth(12)

	snap := rec.Snapshot()
	if snap.LinksCreated != 2 {
		t.Errorf("LinksCreated = %d, want 2", snap.LinksCreated)
	}
	if snap.LinksDeleted != 1 {
		t.Errorf("LinksDeleted = %d, want 1", snap.LinksDeleted)
	}
	if snap.Redirects != 1 {
		t.Errorf("Redirects = %d, want 1", snap.Redirects)
	}
	if snap.ClicksRecorded != 1 || snap.ClicksDropped != 1 {
		t.Errorf("clicks = %d recorded / %d dropped, want 1/1", snap.ClicksRecorded, snap.ClicksDropped)
	}
	if snap.RateLimited != 1 {
		t.Errorf("RateLimited = %d, want 1", snap.RateLimited)
	}
	if snap.AnalyticsQueueDepth != 12 {
		t.Errorf("AnalyticsQueueDepth = %d, want 12", snap.AnalyticsQueueDepth)
	}
}

func TestInMemoryConcurrentUse(t *testing.T) {
	rec := NewInMemory()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				rec.IncRedirect()
			}
		}()
	}
	wg.Wait()

	if got := rec.Snapshot().Redirects; got != 1000 {
		t.Errorf("Redirects = %d, want 1000", got)
	}
}
