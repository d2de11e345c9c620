package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/juliancavero/mirestaurante-back/internal/ports"
)

type HealthHandler struct {
	Checker ports.HealthChecker
}

func (h HealthHandler) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.health)
}

func (h HealthHandler) health(w http.ResponseWriter, r *http.Request) {
	if err := h.Checker.Health(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "database unreachable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}
