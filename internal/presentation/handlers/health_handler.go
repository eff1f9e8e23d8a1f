package handlers

import (
	"context"
	"net/http"
	"time"
)

// HealthChecker defines the interface for health checking components
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// HealthCheckFunc adapts a function to HealthChecker
type HealthCheckFunc func(ctx context.Context) error

func (f HealthCheckFunc) HealthCheck(ctx context.Context) error {
	return f(ctx)
}

type namedCheck struct {
	name     string
	checker  HealthChecker
	critical bool
}

// HealthHandler handles health check requests. A failing critical
// dependency makes the service unhealthy, any other one degraded.
type HealthHandler struct {
	checks []namedCheck
}

// NewHealthHandler creates a health handler with the store as its critical dependency
func NewHealthHandler(store HealthChecker) *HealthHandler {
	return (&HealthHandler{}).WithCheck("store", store, true)
}

// WithCheck adds a dependency; nil checkers are ignored
func (h *HealthHandler) WithCheck(name string, checker HealthChecker, critical bool) *HealthHandler {
	if checker != nil {
		h.checks = append(h.checks, namedCheck{name: name, checker: checker, critical: critical})
	}
	return h
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Services  map[string]string `json:"services"`
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Services:  make(map[string]string, len(h.checks)),
	}

	for _, c := range h.checks {
		if err := c.checker.HealthCheck(ctx); err != nil {
			response.Services[c.name] = "unhealthy: " + err.Error()
			if c.critical {
				response.Status = "unhealthy"
			} else if response.Status == "healthy" {
				response.Status = "degraded"
			}
			continue
		}
		response.Services[c.name] = "healthy"
	}

	status := http.StatusOK
	if response.Status == "unhealthy" {
		status = http.StatusServiceUnavailable
	}

	respondJSON(w, status, response)
}

// Ready handles GET /ready (Kubernetes readiness probe)
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	for _, c := range h.checks {
		if !c.critical {
			continue
		}
		if err := c.checker.HealthCheck(ctx); err != nil {
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ready"))
}

// Live handles GET /live (Kubernetes liveness probe)
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("alive"))
}
