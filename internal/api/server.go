package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/phobrla/openinsafari/internal/api/handler"
	mw "github.com/phobrla/openinsafari/internal/api/middleware"
	"github.com/phobrla/openinsafari/internal/api/response"
	"github.com/phobrla/openinsafari/internal/auth"
	"github.com/phobrla/openinsafari/internal/config"
	"github.com/phobrla/openinsafari/internal/opener"
	"github.com/phobrla/openinsafari/internal/origin"
	"github.com/phobrla/openinsafari/internal/platform"
)

// Version is announced in the ping payload so the extension's options page
// can show what it is talking to.
const Version = "2.0.0"

type Server struct {
	router chi.Router
	logger zerolog.Logger
	cfg    *config.Config
	filter *origin.Filter
	guard  *auth.Guard
	opener opener.Opener
}

func NewServer(logger zerolog.Logger, cfg *config.Config, filter *origin.Filter, guard *auth.Guard, op opener.Opener) *Server {
	s := &Server{
		router: chi.NewRouter(),
		logger: logger,
		cfg:    cfg,
		filter: filter,
		guard:  guard,
		opener: op,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(mw.RequestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(mw.Metrics)
	// Origin gate comes before CORS and auth: off-network callers get a
	// bare 403 and learn nothing about headers or credentials.
	s.router.Use(mw.Origin(s.filter, s.logger))
	s.router.Use(mw.CORS)
}

func (s *Server) setupRoutes() {
	// Prometheus metrics and liveness, origin-gated but tokenless so the
	// supervisor and local tooling can probe them.
	s.router.Handle("/metrics", promhttp.Handler())
	s.router.Get("/healthz", s.handleHealthz)

	s.router.Group(func(r chi.Router) {
		r.Use(mw.Auth(s.guard, s.logger))

		ping := handler.NewPing(Version, platform.Hostname())
		r.Get("/ping", ping.Get)

		open := handler.NewOpen(s.opener)
		r.Post("/open", open.Post)
	})

	s.router.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		response.WriteError(w, http.StatusNotFound, "not found")
	})
	s.router.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	response.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
