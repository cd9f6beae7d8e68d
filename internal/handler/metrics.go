package handler

import (
	"fmt"
	"net/http"

	"github.com/inkwell/inkwell/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus exposition format.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeMetric(w, "inkwell_posts_created_total %d\n", snap.PostsCreated)
	writeMetric(w, "inkwell_posts_updated_total %d\n", snap.PostsUpdated)
	writeMetric(w, "inkwell_posts_deleted_total %d\n", snap.PostsDeleted)
	writeMetric(w, "inkwell_posts_list_requests_total %d\n", snap.PostsListed)
	writeMetric(w, "inkwell_posts_list_duration_seconds_count %d\n", snap.ListDurationCount)
	writeMetric(w, "inkwell_posts_list_duration_seconds_sum %.6f\n", float64(snap.ListDurationTotalNs)/1e9)
	writeMetric(w, "inkwell_rate_limited_total %d\n", snap.RateLimited)
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
