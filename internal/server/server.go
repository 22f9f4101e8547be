// Package server implements the HTTP transport layer for the plannerd API.
package server

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tidyplan/plannerd/internal/app"
	"github.com/tidyplan/plannerd/internal/telemetry"
)

// ReadyChecker reports whether the system is ready to serve traffic.
type ReadyChecker func(ctx context.Context) error

// Deps holds all dependencies for the HTTP server.
type Deps struct {
	Todos    *app.TodoService
	Horizons *app.HorizonService
	Events   *app.EventService

	ReadyCheck     ReadyChecker       // nil = always ready (for tests)
	Metrics        *telemetry.Metrics // nil = no request metrics
	MetricsHandler http.Handler       // nil = no /metrics endpoint
}

// New creates an http.Handler with all routes and middleware wired.
func New(deps Deps) http.Handler {
	s := &server{deps: deps}

	r := chi.NewRouter()

	// Global middleware
	r.Use(s.recovery)
	r.Use(s.requestID)
	r.Use(s.logging)
	if deps.Metrics != nil {
		r.Use(metricsMiddleware(deps.Metrics))
	}

	// System endpoints
	r.Get("/healthz", s.handleHealthz)
	r.Get("/readyz", s.handleReadyz)
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	r.Route("/todos", func(r chi.Router) {
		r.Get("/", s.handleListTodos)
		r.Post("/", s.handleCreateTodo)
		r.Get("/count", s.handleCountTodos)
		r.Get("/{id}", s.handleGetTodo)
		r.Put("/{id}", s.handleUpdateTodo)
		r.Delete("/{id}", s.handleDeleteTodo)
	})

	r.Route("/horizons", func(r chi.Router) {
		r.Get("/", s.handleListHorizons)
		r.Post("/", s.handleCreateHorizon)
		r.Put("/", s.handleEditHorizons)      // edit by current-value criteria
		r.Delete("/", s.handleDeleteHorizonsByTitle)
		r.Get("/count", s.handleCountHorizons)
		r.Get("/{id}", s.handleGetHorizon)
		r.Put("/{id}", s.handleUpdateHorizon)
		r.Delete("/{id}", s.handleDeleteHorizon)
	})

	r.Route("/events", func(r chi.Router) {
		r.Get("/", s.handleListEvents)
		r.Post("/", s.handleCreateEvent)
		r.Get("/{id}", s.handleGetEvent)
		r.Delete("/{id}", s.handleDeleteEvent)
	})

	return r
}

type server struct {
	deps Deps
}
