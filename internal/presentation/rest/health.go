package rest

import (
	"context"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"
)

const readinessTimeout = 2 * time.Second

// ReadinessCheck probes one dependency. A nil error means ready.
type ReadinessCheck struct {
	Name  string
	Probe func(ctx context.Context) error
}

// HealthHandler provides HTTP health check endpoints for the prediction service.
type HealthHandler struct {
	logger    *slog.Logger
	service   string
	startTime time.Time
	checks    []ReadinessCheck
	loaded    atomic.Bool
}

// NewHealthHandler creates a new health check handler. The service reports
// not ready until SetArtifactsLoaded(true) is called.
func NewHealthHandler(service string, logger *slog.Logger, checks ...ReadinessCheck) *HealthHandler {
	return &HealthHandler{
		logger:    logger,
		service:   service,
		startTime: time.Now(),
		checks:    checks,
	}
}

// SetArtifactsLoaded records whether the artifact set is in place.
func (h *HealthHandler) SetArtifactsLoaded(loaded bool) {
	h.loaded.Store(loaded)
}

// HealthResponse is the JSON response for health checks.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Uptime  string `json:"uptime"`
}

// ReadinessResponse is the JSON response for readiness checks.
type ReadinessResponse struct {
	Status  string            `json:"status"`
	Service string            `json:"service"`
	Checks  map[string]string `json:"checks"`
}

// RegisterRoutes registers health endpoints on the provided ServeMux.
func (h *HealthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", h.Healthz)
	mux.HandleFunc("GET /readyz", h.Readyz)
}

// Healthz handles liveness probe requests.
func (h *HealthHandler) Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "healthy",
		Service: h.service,
		Uptime:  time.Since(h.startTime).Round(time.Second).String(),
	})
}

// Readyz handles readiness probe requests.
func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	ready := true
	checks := make(map[string]string, len(h.checks)+1)

	if h.loaded.Load() {
		checks["artifacts"] = "ok"
	} else {
		checks["artifacts"] = "not loaded"
		ready = false
	}

	for _, c := range h.checks {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		err := c.Probe(ctx)
		cancel()

		if err != nil {
			h.logger.WarnContext(r.Context(), "readiness check failed",
				slog.String("check", c.Name),
				slog.String("error", err.Error()),
			)
			checks[c.Name] = "unavailable"
			ready = false
			continue
		}
		checks[c.Name] = "ok"
	}

	resp := ReadinessResponse{Status: "ready", Service: h.service, Checks: checks}
	status := http.StatusOK
	if !ready {
		resp.Status = "not_ready"
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}
