package http

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Probe reports whether one backing dependency is reachable.
type Probe func(ctx context.Context) error

type Handler struct{ probes map[string]Probe }

func NewHandler(probes map[string]Probe) *Handler { return &Handler{probes: probes} }

// Health answers 200 when every probe passes and 503 naming the failing ones otherwise.
func (h *Handler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	status, code := "ok", http.StatusOK
	checks := make(map[string]string, len(h.probes))
	for name, probe := range h.probes {
		if err := probe(ctx); err != nil {
			checks[name] = err.Error()
			status, code = "degraded", http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}
	body := map[string]any{
		"status": status,
		"time":   time.Now().UTC().Format(time.RFC3339Nano),
	}
	if len(checks) > 0 {
		body["checks"] = checks
	}
	return c.JSON(code, body)
}
