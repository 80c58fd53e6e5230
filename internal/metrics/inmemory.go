package metrics

import "sync/atomic"

// Snapshot captures current in-memory counters.
type Snapshot struct {
	LinksCreated        uint64
	LinksDeleted        uint64
	Redirects           uint64
	ClicksRecorded      uint64
	ClicksDropped       uint64
	AnalyticsQueueDepth int64
	RateLimited         uint64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	linksCreated        uint64
	linksDeleted        uint64
	redirects           uint64
	clicksRecorded      uint64
	clicksDropped       uint64
	analyticsQueueDepth int64
	rateLimited         uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		LinksCreated:        atomic.LoadUint64(&m.linksCreated),
		LinksDeleted:        atomic.LoadUint64(&m.linksDeleted),
		Redirects:           atomic.LoadUint64(&m.redirects),
		ClicksRecorded:      atomic.LoadUint64(&m.clicksRecorded),
		ClicksDropped:       atomic.LoadUint64(&m.clicksDropped),
		AnalyticsQueueDepth: atomic.LoadInt64(&m.analyticsQueueDepth),
		RateLimited:         atomic.LoadUint64(&m.rateLimited),
	}
}

// IncLinkCreated increments the link created counter.
func (m *InMemoryRecorder) IncLinkCreated() {
	atomic.AddUint64(&m.linksCreated, 1)
}

// IncLinkDeleted increments the link deleted counter.
func (m *InMemoryRecorder) IncLinkDeleted() {
	atomic.AddUint64(&m.linksDeleted, 1)
}

// IncRedirect increments the redirect counter.
func (m *InMemoryRecorder) IncRedirect() {
	atomic.AddUint64(&m.redirects, 1)
}

// IncClickRecorded increments the recorded click counter.
func (m *InMemoryRecorder) IncClickRecorded() {
	atomic.AddUint64(&m.clicksRecorded, 1)
}

// IncClickDropped increments the dropped click counter.
func (m *InMemoryRecorder) IncClickDropped() {
	atomic.AddUint64(&m.clicksDropped, 1)
}

// SetAnalyticsQueueDepth records the current queue depth.
func (m *InMemoryRecorder) SetAnalyticsQueueDepth(depth int64) {
	atomic.StoreInt64(&m.analyticsQueueDepth, depth)
}

// IncRateLimited increments the rejected request counter.
func (m *InMemoryRecorder) IncRateLimited() {
	atomic.AddUint64(&m.rateLimited, 1)
}
