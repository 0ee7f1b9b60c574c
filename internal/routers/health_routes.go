package routers

import (
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"jobmate/interview/internal/handlers"
)

func HealthRoutes(r *chi.Mux, h *handlers.HealthHandler) {
	r.Get("/healthz", h.HealthzHandler)
	r.Get("/readyz", h.ReadyzHandler)
	r.Handle("/metrics", promhttp.Handler())
}
