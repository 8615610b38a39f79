// Package server exposes the search backend and the notes API over HTTP.
package server

import (
	"context"
	"net/http"
	"time"

	"carfinder/models"
	"carfinder/services"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RunLister reads search history.
type RunLister interface {
	RecentSearchRuns(ctx context.Context, limit int) ([]models.SearchRun, error)
}

type Server struct {
	search *services.SearchService
	leads  *services.LeadService
	runs   RunLister
}

func New(search *services.SearchService, leads *services.LeadService, runs RunLister) *Server {
	return &Server{search: search, leads: leads, runs: runs}
}

// Router wires every route. Searches get a generous deadline since each
// source already has its own timeout.
func (s *Server) Router(allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.With(middleware.Timeout(60*time.Second)).Post("/search", s.handleSearch)
		r.Get("/search/runs", s.handleSearchRuns)

		r.Get("/notes", s.handleListNotes)
		r.Post("/notes", s.handleSaveNote)
		r.Delete("/notes", s.handleDeleteNoteByURL)
		r.Delete("/notes/{id}", s.handleDeleteLead)

		r.Get("/leads", s.handleListLeads)
		r.Post("/leads", s.handleSaveNote)
		r.Get("/leads/stats", s.handleStats)
		r.Patch("/leads/{id}/status", s.handleSetStatus)
		r.Patch("/leads/{id}/follow-up", s.handleSetFollowUp)
		r.Delete("/leads/{id}", s.handleDeleteLead)
	})

	return r
}
