package metrics

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncLinkCreated is a no-op.
func (n *NoopRecorder) IncLinkCreated() {}

// IncLinkDeleted is a no-op.
func (n *NoopRecorder) IncLinkDeleted() {}

// IncRedirect is a no-op.
func (n *NoopRecorder) IncRedirect() {}

// IncClickRecorded is a no-op.
func (n *NoopRecorder) IncClickRecorded() {}

// IncClickDropped is a no-op.
func (n *NoopRecorder) IncClickDropped() {}

// SetAnalyticsQueueDepth is a no-op.
func (n *NoopRecorder) SetAnalyticsQueueDepth(depth int64) {}

// IncRateLimited is a no-op.
func (n *NoopRecorder) IncRateLimited() {}
