package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

type healthBody struct {
	Status       string            `json:"status"`
	Dependencies map[string]string `json:"dependencies"`
	Time         string            `json:"time"`
}

func callHealth(t *testing.T, h *Handler) (*httptest.ResponseRecorder, healthBody) {
	t.Helper()
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/health", nil), rec)
	if err := h.Health(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	return rec, decode[healthBody](t, rec)
}

func TestHealth_AllDependenciesUp(t *testing.T) {
	fixed := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	h := NewHandler(map[string]Pinger{
		"mysql": func(context.Context) error { return nil },
		"redis": func(context.Context) error { return nil },
	})
	h.now = func() time.Time { return fixed }

	rec, body := callHealth(t, h)
	if rec.Code != http.StatusOK || body.Status != "ok" {
		t.Fatalf("got %d %+v", rec.Code, body)
	}
	if body.Dependencies["mysql"] != "ok" || body.Dependencies["redis"] != "ok" {
		t.Fatalf("dependencies = %v", body.Dependencies)
	}
	if body.Time != "2026-03-01T09:00:00Z" {
		t.Fatalf("time = %q", body.Time)
	}
}

func TestHealth_DegradedWhenAPingFails(t *testing.T) {
	h := NewHandler(map[string]Pinger{
		"mysql": func(context.Context) error { return nil },
		"redis": func(ctx context.Context) error {
			if _, ok := ctx.Deadline(); !ok {
				t.Fatalf("ping without deadline")
			}
			return errors.New("connection refused")
		},
	})
	rec, body := callHealth(t, h)
	if rec.Code != http.StatusServiceUnavailable || body.Status != "degraded" {
		t.Fatalf("got %d %+v", rec.Code, body)
	}
	if body.Dependencies["redis"] != "connection refused" || body.Dependencies["mysql"] != "ok" {
		t.Fatalf("dependencies = %v", body.Dependencies)
	}
}

func TestHealth_NoChecks(t *testing.T) {
	rec, body := callHealth(t, NewHandler(nil))
	if rec.Code != http.StatusOK || body.Status != "ok" || len(body.Dependencies) != 0 {
		t.Fatalf("got %d %+v", rec.Code, body)
	}
}
