package web

import (
	"github.com/go-chi/chi/v5"
	"github.com/kozaktomas/face-morph/internal/web/handlers"
)

func (s *Server) setupRoutes() {
	chainHandler := handlers.NewChainHandler(s.runs, s.config.Chain.AgeWeight, s.config.Chain.Workers, s.logger)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", handlers.HealthCheck)
		r.Post("/chain", chainHandler.Build)

		// Run history needs a database
		if s.runs != nil {
			runsHandler := handlers.NewRunsHandler(s.runs, s.logger)
			r.Get("/runs", runsHandler.List)
			r.Get("/runs/{id}", runsHandler.Get)
		}
	})
}
