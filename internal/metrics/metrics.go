// Package metrics provides lightweight hooks for instrumentation.
package metrics

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Link management metrics
	IncLinkCreated()
	IncLinkDeleted()

	// Redirect metrics
	IncRedirect()

	// Analytics pipeline metrics
	IncClickRecorded()
	IncClickDropped()
	SetAnalyticsQueueDepth(depth int64)

	// Rate limiting metrics
	IncRateLimited()
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
