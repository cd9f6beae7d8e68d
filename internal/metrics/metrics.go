// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Post management metrics
	IncPostCreated()
	IncPostUpdated()
	IncPostDeleted()

	// Read path
	IncPostsListed()
	ObserveListDuration(duration time.Duration)

	// Edge
	IncRateLimited()
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
