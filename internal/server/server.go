// Package server hosts the simulator over HTTP: a JSON session API in which each
// session drives its own Simulator tick by tick, and a static file host for the
// visualization front end.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/cpu-sched/cpu-sched/internal/store"
)

// Config holds server settings.
type Config struct {
	Addr        string `yaml:"addr" mapstructure:"addr"`
	StaticDir   string `yaml:"static_dir" mapstructure:"static_dir"`     // empty disables static hosting
	MaxTicks    int64  `yaml:"max_ticks" mapstructure:"max_ticks"`       // ceiling for /run; 0 = unlimited
	MaxSessions int    `yaml:"max_sessions" mapstructure:"max_sessions"` // 0 = unlimited

	// SessionTTL lets a full server reclaim sessions idle this long; 0 keeps them.
	SessionTTL time.Duration `yaml:"session_ttl" mapstructure:"session_ttl"`
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		Addr:        ":8080",
		StaticDir:   "www",
		MaxTicks:    10000,
		MaxSessions: 256,
		SessionTTL:  30 * time.Minute,
	}
}

// Server is the simulator HTTP API server.
type Server struct {
	router    chi.Router
	logger    *logrus.Entry
	config    Config
	startTime time.Time
	sessions  *SessionManager
	store     store.Store // optional; finished sessions are persisted when set
}

// Option configures optional Server dependencies.
type Option func(*Server)

// WithStore persists each session's run once it finishes.
func WithStore(st store.Store) Option {
	return func(s *Server) {
		s.store = st
	}
}

// New creates a Server with all routes registered.
func New(cfg Config, opts ...Option) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		logger:    logrus.WithField("component", "server"),
		config:    cfg,
		startTime: time.Now(),
		sessions:  NewSessionManager(cfg.MaxSessions, cfg.SessionTTL),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Handler returns the http.Handler for this server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() {
	r := s.router

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(s.logger))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Post("/sessions", s.handleCreateSession)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Delete("/", s.handleDeleteSession)
			r.Post("/processes", s.handleAddProcess)
			r.Put("/config", s.handleUpdateConfig)
			r.Post("/tick", s.handleTick)
			r.Post("/run", s.handleRun)
			r.Get("/gantt", s.handleGantt)
			r.Get("/summary", s.handleSummary)
		})

		r.Get("/runs", s.handleListRuns)
		r.Get("/runs/{id}", s.handleGetRun)
	})

	if s.config.StaticDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(s.config.StaticDir)))
	}
}
