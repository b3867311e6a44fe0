package http_handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/electroworld/auth-service/internal/transport/http/response"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	directory Pinger
	timeout   time.Duration
}

func NewHealthHandler(directory Pinger) *HealthHandler {
	return &HealthHandler{directory: directory, timeout: 2 * time.Second}
}

// Healthz handles GET /healthz
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	response.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readyz handles GET /readyz
func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	if h.directory != nil {
		ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
		defer cancel()
		if err := h.directory.Ping(ctx); err != nil {
			response.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "unavailable",
				"error":  "user directory unavailable",
			})
			return
		}
	}
	response.WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
