package handler

import (
	"net/http"
)

// MetricsExporter renders metrics in the Prometheus exposition format.
// *metrics.PrometheusRecorder implements it.
type MetricsExporter interface {
	Handler() http.Handler
}

// MetricsHandler exposes application metrics.
type MetricsHandler struct {
	exporter http.Handler
}

// NewMetricsHandler creates a new MetricsHandler. A nil exporter makes the
// endpoint report 503.
func NewMetricsHandler(exporter MetricsExporter) *MetricsHandler {
	h := &MetricsHandler{}
	if exporter != nil {
		h.exporter = exporter.Handler()
	}
	return h
}

// Metrics handles GET /metrics.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.exporter == nil {
		writeError(w, http.StatusServiceUnavailable, "METRICS_DISABLED", "metrics are disabled")
		return
	}
	h.exporter.ServeHTTP(w, r)
}
