package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Pinger is any dependency whose liveness the health check reports.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type pingFunc func(ctx context.Context) error

func (f pingFunc) PingContext(ctx context.Context) error { return f(ctx) }

// PingerFunc adapts a Ping(ctx) method such as prefs.Store.Ping.
func PingerFunc(f func(ctx context.Context) error) Pinger { return pingFunc(f) }

type HealthCheck struct {
	Status string `json:"status"`
}

type HealthResponse map[string]HealthCheck

type HealthHandler struct {
	checks map[string]Pinger
	logger *slog.Logger
}

func NewHealthHandler(checks map[string]Pinger, logger *slog.Logger) *HealthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthHandler{checks: checks, logger: logger}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	resp := HealthResponse{}
	status := http.StatusOK
	for name, p := range h.checks {
		if err := p.PingContext(ctx); err != nil {
			h.logger.Error("health check failed", "name", name, "error", err)
			resp[name] = HealthCheck{Status: "error"}
			status = http.StatusServiceUnavailable
			continue
		}
		resp[name] = HealthCheck{Status: "ok"}
	}

	if err := writeJSON(w, status, resp, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
