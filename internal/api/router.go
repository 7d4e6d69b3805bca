package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"touchbase/internal/config"
)

// Server owns the chi router and the handler wiring for the management API.
type Server struct {
	router  chi.Router
	logger  *slog.Logger
	cfg     *config.Config
	actions *ActionHandler
}

// NewServer builds a Server with the global middleware chain and all v1
// routes mounted. The returned Server is ready to serve via Handler().
func NewServer(cfg *config.Config, logger *slog.Logger, repo ActionRepo) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		router:  chi.NewRouter(),
		logger:  logger,
		cfg:     cfg,
		actions: NewActionHandler(repo, NewValidator(logger), logger),
	}
	s.mountRoutes()
	return s
}

// Handler returns the root http.Handler for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// mountRoutes registers the middleware chain and routes. Middleware order
// matters: Recoverer outermost, then request-ID so the logger can include it.
func (s *Server) mountRoutes() {
	s.router.Use(Recoverer(s.logger))
	s.router.Use(RequestIDMiddleware)
	s.router.Use(RequestLogger(s.logger))

	s.router.Get("/healthz", s.handleHealth)
	s.router.Route("/v1", func(r chi.Router) {
		s.actions.RegisterRoutes(r)
	})
}

// handleHealth is a liveness probe. It deliberately avoids touching the
// database so a degraded store does not take the whole service out of the
// load balancer.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	JSON(w, r, http.StatusOK, APIResponse{Data: map[string]string{"status": "ok"}})
}
