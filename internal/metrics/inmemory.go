package metrics

import (
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	PostsCreated        uint64
	PostsUpdated        uint64
	PostsDeleted        uint64
	PostsListed         uint64
	ListDurationCount   uint64
	ListDurationTotalNs int64
	RateLimited         uint64
}

// InMemoryRecorder stores metrics in memory.
type InMemoryRecorder struct {
	postsCreated        uint64
	postsUpdated        uint64
	postsDeleted        uint64
	postsListed         uint64
	listDurationCount   uint64
	listDurationTotalNs int64
	rateLimited         uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		PostsCreated:        atomic.LoadUint64(&m.postsCreated),
		PostsUpdated:        atomic.LoadUint64(&m.postsUpdated),
		PostsDeleted:        atomic.LoadUint64(&m.postsDeleted),
		PostsListed:         atomic.LoadUint64(&m.postsListed),
		ListDurationCount:   atomic.LoadUint64(&m.listDurationCount),
		ListDurationTotalNs: atomic.LoadInt64(&m.listDurationTotalNs),
		RateLimited:         atomic.LoadUint64(&m.rateLimited),
	}
}

// IncPostCreated increments post created counter.
func (m *InMemoryRecorder) IncPostCreated() {
	atomic.AddUint64(&m.postsCreated, 1)
}

// IncPostUpdated increments post updated counter.
func (m *InMemoryRecorder) IncPostUpdated() {
	atomic.AddUint64(&m.postsUpdated, 1)
}

// IncPostDeleted increments post deleted counter.
func (m *InMemoryRecorder) IncPostDeleted() {
	atomic.AddUint64(&m.postsDeleted, 1)
}

// IncPostsListed increments the list request counter.
func (m *InMemoryRecorder) IncPostsListed() {
	atomic.AddUint64(&m.postsListed, 1)
}

// ObserveListDuration records how long a list query took.
func (m *InMemoryRecorder) ObserveListDuration(duration time.Duration) {
	atomic.AddUint64(&m.listDurationCount, 1)
	atomic.AddInt64(&m.listDurationTotalNs, duration.Nanoseconds())
}

// IncRateLimited increments the rejected request counter.
func (m *InMemoryRecorder) IncRateLimited() {
	atomic.AddUint64(&m.rateLimited, 1)
}
