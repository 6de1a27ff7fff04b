package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"dossier/internal/httputil"
)

// HealthCheck pings one backing service
type HealthCheck = func(ctx context.Context) error

// HealthHandler reports liveness plus the state of each backing service
type HealthHandler struct {
	checks map[string]HealthCheck
	logger *slog.Logger
}

// NewHealthHandler creates a health handler; checks may be empty
func NewHealthHandler(checks map[string]HealthCheck, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{checks: checks, logger: logger}
}

type healthResponse struct {
	Status   string            `json:"status"`
	Time     time.Time         `json:"time"`
	Services map[string]string `json:"services,omitempty"`
}

// HealthCheck returns 200 when every backing service answers, 503 otherwise
// GET /health
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := healthResponse{Status: "ok", Time: time.Now().UTC()}
	status := http.StatusOK

	if len(h.checks) > 0 {
		resp.Services = make(map[string]string, len(h.checks))
	}
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			h.logger.Warn("health check failed", "service", name, "error", err)
			resp.Services[name] = "down"
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Services[name] = "up"
	}

	httputil.RespondJSON(w, status, resp)
}
