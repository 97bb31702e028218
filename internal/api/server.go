// Package api provides the HTTP API server and handlers for the Folio server.
package api

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/audiofolio/folio-server/internal/config"
	"github.com/audiofolio/folio-server/internal/ratelimit"
)

const apiVersion = "1.0.0"

// Server holds dependencies for HTTP handlers.
type Server struct {
	services *Services
	router   *chi.Mux
	api      huma.API
	logger   *slog.Logger

	// triggerLimiter throttles scan and import triggers per target so a
	// misbehaving client cannot queue the same work over and over.
	triggerLimiter *ratelimit.Keyed
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(cfg *config.Config, services *Services, logger *slog.Logger) *Server {
	router := chi.NewRouter()

	s := &Server{
		services:       services,
		router:         router,
		logger:         logger,
		triggerLimiter: ratelimit.New(cfg.Scan.TriggerRPS, cfg.Scan.TriggerBurst),
	}

	s.setupMiddleware()

	humaConfig := huma.DefaultConfig(cfg.Server.Name, apiVersion)
	s.api = humachi.New(router, humaConfig)
	RegisterErrorHandler()

	s.registerHealthRoutes()
	s.registerLibraryRoutes()
	s.registerDirectoryRoutes()
	s.registerAudiobookRoutes()
	s.registerImportRoutes()
	s.registerSearchRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures the middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
}

// allowTrigger checks the per-target trigger budget. Returns a 429 error
// when the target has been triggered too recently.
func (s *Server) allowTrigger(key string) error {
	if s.triggerLimiter.Allow(key) {
		return nil
	}
	s.logger.Warn("trigger rate limit exceeded", "key", key)
	return huma.Error429TooManyRequests("triggered too recently, try again later")
}
