package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// HealthHandler serves the App Engine style health and warmup probes.
type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

func (h *HealthHandler) RegisterRoutes(r chi.Router) {
	r.Get("/_ah/health", h.Health)
	r.Get("/_ah/warmup", h.Warmup)
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (h *HealthHandler) Warmup(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
