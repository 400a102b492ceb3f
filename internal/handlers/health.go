package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/crucial707/educompanion/internal/repo"
)

// HealthHandler serves the root banner and the liveness and readiness probes.
type HealthHandler struct {
	Pinger repo.Pinger
	Logger *zerolog.Logger
}

func (h *HealthHandler) Root(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("EduCompanion API is running!"))
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

// Ready answers 503 while the store cannot be reached.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if h.Pinger == nil {
		JSONError(w, "store not configured", http.StatusServiceUnavailable)
		return
	}
	if err := h.Pinger.Ping(ctx); err != nil {
		h.Logger.Warn().Err(err).Msg("readiness check failed")
		JSONError(w, "store unavailable", http.StatusServiceUnavailable)
		return
	}
	JSON(w, http.StatusOK, map[string]any{"status": "ready"})
}
