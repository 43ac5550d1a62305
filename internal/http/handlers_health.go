package httpx

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

const defaultReadyTimeout = 2 * time.Second

// HealthCheck reports whether one backing dependency is ready.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// HealthHandlers serves the liveness and readiness endpoints.
type HealthHandlers struct {
	Checks  []HealthCheck
	Timeout time.Duration // per readiness request; defaults to 2s
	Logger  *slog.Logger
}

// Live reports that the process is serving. It never touches the directory,
// so a database outage does not restart healthy pods.
// GET|HEAD /healthz.
func (h *HealthHandlers) Live(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodHead {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready runs every check and answers 503 when any fails. Failure details go
// to the log only.
// GET /readyz.
func (h *HealthHandlers) Ready(w http.ResponseWriter, r *http.Request) {
	timeout := h.Timeout
	if timeout <= 0 {
		timeout = defaultReadyTimeout
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeout)
	defer cancel()

	status := http.StatusOK
	results := make(map[string]string, len(h.Checks))
	for _, c := range h.Checks {
		if err := c.Check(ctx); err != nil {
			status = http.StatusServiceUnavailable
			results[c.Name] = "unavailable"
			loggerOrDefault(h.Logger).WarnContext(ctx, "readiness check failed", "check", c.Name, "error", err)
			continue
		}
		results[c.Name] = "ok"
	}

	overall := "ok"
	if status != http.StatusOK {
		overall = "unavailable"
	}
	WriteJSON(w, status, map[string]any{"status": overall, "checks": results})
}
