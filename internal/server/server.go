// Package server exposes the amortization engine and the saved-calculation
// store over HTTP.
package server

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/ledgerline/homeloan-forecast/internal/store"
)

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	store   store.Storage
	logger  *zap.Logger
	version string
}

// NewHandler creates a new handler backed by the given storage.
func NewHandler(storage store.Storage, logger *zap.Logger, version string) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if version == "" {
		version = "dev"
	}
	return &Handler{store: storage, logger: logger, version: version}
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Route("/api", func(r chi.Router) {
		r.Post("/simulate", h.Simulate)

		r.Route("/calculations", func(r chi.Router) {
			r.Get("/", h.ListCalculations)
			r.Post("/", h.CreateCalculation)
			r.Get("/{id}", h.GetCalculation)
			r.Put("/{id}", h.UpdateCalculation)
			r.Delete("/{id}", h.DeleteCalculation)
			r.Get("/{id}/schedule", h.GetSchedule)
			r.Get("/{id}/export", h.ExportCalculation)
		})

		r.Get("/version", h.Version)
	})

	return r
}
