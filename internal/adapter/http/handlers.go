package http

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

const healthCheckTimeout = 2 * time.Second

// Pinger is a dependency the health endpoint reports on.
type Pinger func(ctx context.Context) error

type Handler struct {
	checks map[string]Pinger
	now    func() time.Time
}

// NewHandler builds the health handler; checks are keyed by the name shown in the response.
func NewHandler(checks map[string]Pinger) *Handler {
	return &Handler{checks: checks, now: func() time.Time { return time.Now().UTC() }}
}

// Health answers 200 when every dependency responds and 503 otherwise, with one entry per check.
func (h *Handler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), healthCheckTimeout)
	defer cancel()

	status, code := "ok", http.StatusOK
	deps := make(map[string]string, len(h.checks))
	for name, ping := range h.checks {
		if err := ping(ctx); err != nil {
			deps[name] = err.Error()
			status, code = "degraded", http.StatusServiceUnavailable
			continue
		}
		deps[name] = "ok"
	}
	return c.JSON(code, map[string]any{
		"status":       status,
		"dependencies": deps,
		"time":         h.now().Format(time.RFC3339Nano),
	})
}
