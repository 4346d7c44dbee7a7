package api

import (
	"itinerary-route-service/internal/api/handlers"
	"itinerary-route-service/internal/ports"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(planner handlers.PlanService, tracker ports.UsageTracker, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	planHandler := &handlers.PlanHandler{Planner: planner, Logger: logger}
	usageHandler := &handlers.UsageHandler{Tracker: tracker, Logger: logger}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(logger))
	r.Use(middleware.Recoverer)

	r.Get("/health", handlers.Health)
	r.Get("/usage", usageHandler.Summary)

	r.Route("/trips/{tripID}", func(r chi.Router) {
		r.Post("/optimize", planHandler.OptimizeTrip)
		r.Post("/days/{day}/optimize", planHandler.OptimizeDay)
		r.Get("/days/{day}/route.geojson", planHandler.DayRoute)
	})

	return r
}
