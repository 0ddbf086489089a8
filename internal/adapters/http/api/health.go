package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/okian/rapport/pkg/metrics"
)

// StatsProvider reports operational counters for GET /stats.
type StatsProvider interface {
	GetStats() map[string]interface{}
}

// HealthHandler serves the operational endpoints: health, stats and metrics.
type HealthHandler struct {
	snapshot func() (uint64, bool)
	stats    StatsProvider
	metrics  http.Handler
}

// NewHealthHandler creates a new health handler. snapshot may be nil.
func NewHealthHandler(stats StatsProvider, snapshot func() (uint64, bool)) *HealthHandler {
	return &HealthHandler{
		snapshot: snapshot,
		stats:    stats,
		metrics:  promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}),
	}
}

type healthResponse struct {
	Status          string `json:"status"`
	SnapshotVersion uint64 `json:"snapshot_version"`
	SnapshotLoaded  bool   `json:"snapshot_loaded"`
}

// HandleHealth handles GET /healthz requests. The process is healthy before
// the first snapshot loads; snapshot_loaded tells readiness apart.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	resp := healthResponse{Status: "ok"}
	if h.snapshot != nil {
		resp.SnapshotVersion, resp.SnapshotLoaded = h.snapshot()
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleStats writes the service counters as JSON.
func (h *HealthHandler) HandleStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.stats.GetStats())
}

// HandleMetrics serves the Prometheus registry.
func (h *HealthHandler) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	h.metrics.ServeHTTP(w, r)
}
