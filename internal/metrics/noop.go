package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncPostCreated is a no-op.
func (n *NoopRecorder) IncPostCreated() {}

// IncPostUpdated is a no-op.
func (n *NoopRecorder) IncPostUpdated() {}

// IncPostDeleted is a no-op.
func (n *NoopRecorder) IncPostDeleted() {}

// IncPostsListed is a no-op.
func (n *NoopRecorder) IncPostsListed() {}

// ObserveListDuration is a no-op.
func (n *NoopRecorder) ObserveListDuration(duration time.Duration) {}

// IncRateLimited is a no-op.
func (n *NoopRecorder) IncRateLimited() {}
