package handler

import (
	"context"
	"net/http"
	"time"
)

// HealthChecker defines an interface for checking service health.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Check results reported by Readyz.
const (
	checkOK       = "ok"
	checkDisabled = "disabled"
)

// HealthHandler manages health check endpoints.
type HealthHandler struct {
	db    HealthChecker
	cache HealthChecker
}

// NewHealthHandler creates a new HealthHandler.
// cache may be nil when Redis is not configured.
func NewHealthHandler(db, cache HealthChecker) *HealthHandler {
	return &HealthHandler{
		db:    db,
		cache: cache,
	}
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Healthz is a liveness probe. It performs no dependency checks.
//
// GET /healthz
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// Readyz is a readiness probe.
// Postgres is required: if it is down the probe fails with 503.
// Redis only backs rate limiting, which fails open, so a Redis outage
// reports "degraded" with 200.
//
// GET /readyz
func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := map[string]string{
		"postgres": ping(ctx, h.db),
		"redis":    ping(ctx, h.cache),
	}

	status, code := "ok", http.StatusOK
	switch {
	case checks["postgres"] != checkOK:
		status, code = "unhealthy", http.StatusServiceUnavailable
	case checks["redis"] != checkOK && checks["redis"] != checkDisabled:
		status = "degraded"
	}

	writeJSON(w, code, HealthResponse{Status: status, Checks: checks})
}

func ping(ctx context.Context, c HealthChecker) string {
	if c == nil {
		return checkDisabled
	}
	if err := c.Ping(ctx); err != nil {
		return "error: " + err.Error()
	}
	return checkOK
}
