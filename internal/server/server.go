// Package server exposes the retrieval engine over HTTP.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/ppiankov/claimscope/internal/model"
	"github.com/ppiankov/claimscope/internal/rebac"
	"github.com/ppiankov/claimscope/internal/retrieval"
)

// ClaimLister is the claim surface the API needs
type ClaimLister interface {
	List(ctx context.Context, userID, viewerID string) ([]*model.Claim, error)
}

// Server is the claimscope HTTP API server
type Server struct {
	engine   retrieval.QueryEngine
	claims   ClaimLister
	resolver *rebac.Resolver
	router   chi.Router
	log      *logrus.Logger
	version  string
	started  time.Time
}

// New creates a new Server
func New(engine retrieval.QueryEngine, claimSvc ClaimLister, resolver *rebac.Resolver, log *logrus.Logger, version string) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}
	s := &Server{
		engine:   engine,
		claims:   claimSvc,
		resolver: resolver,
		log:      log,
		version:  version,
		started:  time.Now(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/query", s.handleQuery)
		r.Get("/users/{userID}/scope", s.handleScope)
		r.Get("/users/{userID}/claims", s.handleListClaims)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":  "ok",
		"version": s.version,
		"uptime":  time.Since(s.started).Seconds(),
	})
}
