// Package server exposes schema generation over HTTP for the serve command.
//
// Routes:
//
//	GET /healthz
//	GET /schemas/{schema}.ts    TypeScript declarations
//	GET /schemas/{schema}.json  the synthesized model as JSON
//	GET /schemas/{schema}.yaml  the synthesized model as YAML
//
// The schema routes accept repeated "table" query parameters to restrict
// the output. Rendered bodies are cached; concurrent identical requests
// share one introspection.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/singleflight"

	"github.com/koustreak/schemats/internal/cache"
	"github.com/koustreak/schemats/internal/logger"
	"github.com/koustreak/schemats/internal/schema"
)

// Config wires a Server to its collaborators.
type Config struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string

	// Source introspects the database. Required.
	Source schema.Source

	// SourceName identifies the database in cache keys and file headers.
	// Use a redacted connection string.
	SourceName string

	// Cache stores rendered bodies. Nil disables caching.
	Cache cache.Cache

	// CacheTTL is passed to Cache.Set. Zero uses the cache default.
	CacheTTL time.Duration

	// Header adds the generated-file banner to TypeScript output.
	Header bool

	// Concurrency bounds per-table fetches of one request.
	Concurrency int

	// RequestTimeout bounds one generation. Zero means 60s.
	RequestTimeout time.Duration

	// Logger receives request and cache logs. Nil uses the global logger.
	Logger *logger.Logger
}

// Server is the HTTP front end.
type Server struct {
	cfg    Config
	log    *logger.Logger
	router chi.Router
	group  singleflight.Group
	now    func() time.Time
}

// New builds a Server and its routes.
func New(cfg Config) *Server {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 60 * time.Second
	}
	s := &Server{
		cfg: cfg,
		log: cfg.Logger,
		now: time.Now,
	}
	if s.log == nil {
		s.log = logger.L()
	}

	r := chi.NewRouter()
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Get("/healthz", s.handleHealth)
	r.Get("/schemas/{file}", s.handleSchema)
	s.router = r

	return s
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.With().Str("addr", s.cfg.Addr).Logger().Info("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}
