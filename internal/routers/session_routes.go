package routers

import (
	"github.com/go-chi/chi/v5"

	"jobmate/interview/internal/live"
	"jobmate/interview/internal/middleware"
	"jobmate/interview/internal/models"
)

// SessionRoutes mounts the interview session API and the live stream
// endpoint.
func SessionRoutes(r *chi.Mux, o *live.Orchestrator) {
	r.Route("/api/v1/interview", func(r chi.Router) {
		r.With(middleware.ValidateRequest[models.SessionSetupRequest]()).
			Post("/sessions", o.CreateSessionHandler)
		r.Get("/sessions", o.ListSessionsHandler)
		r.Get("/sessions/{session_id}", o.GetSessionHandler)
		r.Get("/sessions/{session_id}/summary", o.SummaryHandler)
		r.HandleFunc("/ws", o.WsHandler)
	})
}
