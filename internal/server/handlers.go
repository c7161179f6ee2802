package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/koustreak/schemats/internal/cache"
	"github.com/koustreak/schemats/internal/errs"
	"github.com/koustreak/schemats/internal/logger"
	"github.com/koustreak/schemats/internal/render"
	"github.com/koustreak/schemats/internal/schema"
)

// pinger is implemented by sources that own a live connection.
type pinger interface {
	Ping(ctx context.Context) error
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if p, ok := s.cfg.Source.(pinger); ok {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		if err := p.Ping(ctx); err != nil {
			logger.FromContext(r.Context()).Error("health check failed", err)
			writeJSONError(w, http.StatusServiceUnavailable, err)
			return
		}
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	schemaName, format, err := parseFile(chi.URLParam(r, "file"))
	if err != nil {
		writeError(w, err)
		return
	}
	tables := dedupe(r.URL.Query()["table"])

	key := cache.Key(s.cfg.SourceName, schemaName, string(format), tables)
	if body, ok := s.cached(ctx, key); ok {
		w.Header().Set("X-Cache", "HIT")
		writeBody(w, format, body)
		return
	}

	// Identical concurrent requests share one introspection. The shared
	// call must not die with the first caller's request context.
	v, err, _ := s.group.Do(key, func() (any, error) {
		genCtx, cancel := context.WithTimeout(log.WithContext(context.Background()), s.cfg.RequestTimeout)
		defer cancel()

		body, err := s.generate(genCtx, schemaName, format, tables)
		if err != nil {
			return nil, err
		}
		s.store(genCtx, key, body)
		return body, nil
	})
	if err != nil {
		log.ErrorWith("generation failed", err, logger.Fields{"schema": schemaName})
		writeError(w, err)
		return
	}

	w.Header().Set("X-Cache", "MISS")
	writeBody(w, format, v.([]byte))
}

// dedupe drops repeated tables and keeps the first occurrence of each, so
// requests that share a cache key also render the same banner.
func dedupe(tables []string) []string {
	if len(tables) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(tables))
	out := make([]string, 0, len(tables))
	for _, t := range tables {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func (s *Server) generate(ctx context.Context, schemaName string, format render.Format, tables []string) ([]byte, error) {
	model, err := schema.Build(ctx, s.cfg.Source, schema.Request{
		Schema:      schemaName,
		Tables:      tables,
		Concurrency: s.cfg.Concurrency,
	})
	if err != nil {
		return nil, err
	}

	return render.Render(model, format, render.Options{
		Header:     s.cfg.Header,
		ConnString: s.cfg.SourceName,
		Tables:     tables,
		Schema:     model.Schema,
		Now:        s.now,
	})
}

// cached reads key from the cache. Cache failures are logged and treated
// as misses.
func (s *Server) cached(ctx context.Context, key string) ([]byte, bool) {
	if s.cfg.Cache == nil {
		return nil, false
	}
	body, err := s.cfg.Cache.Get(ctx, key)
	if err != nil {
		if !cache.IsMiss(err) {
			logger.FromContext(ctx).ErrorWith("cache read failed", err, logger.Fields{"key": key})
		}
		return nil, false
	}
	return body, true
}

func (s *Server) store(ctx context.Context, key string, body []byte) {
	if s.cfg.Cache == nil {
		return
	}
	if err := s.cfg.Cache.Set(ctx, key, body, s.cfg.CacheTTL); err != nil {
		logger.FromContext(ctx).ErrorWith("cache write failed", err, logger.Fields{"key": key})
	}
}

// parseFile splits "public.ts" into the schema name and output format.
// The "_default" schema name selects the database's default schema.
func parseFile(file string) (string, render.Format, error) {
	dot := strings.LastIndexByte(file, '.')
	if dot <= 0 || dot == len(file)-1 {
		return "", "", errs.Newf(errs.ErrKindInvalidInput, "expected <schema>.<ts|json|yaml>, got %q", file)
	}
	format, err := render.ParseFormat(file[dot+1:])
	if err != nil {
		return "", "", err
	}
	name := file[:dot]
	if name == "_default" {
		name = ""
	}
	return name, format, nil
}

func writeBody(w http.ResponseWriter, format render.Format, body []byte) {
	w.Header().Set("Content-Type", format.ContentType())
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSONError(w, statusFor(err), err)
}

func writeJSONError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error": err.Error(),
		"kind":  errs.KindOf(err).String(),
	})
}

func statusFor(err error) int {
	switch errs.KindOf(err) {
	case errs.ErrKindInvalidInput, errs.ErrKindUnsupported:
		return http.StatusBadRequest
	case errs.ErrKindNotFound:
		return http.StatusNotFound
	case errs.ErrKindPermissionDenied:
		return http.StatusForbidden
	case errs.ErrKindTimeout:
		return http.StatusGatewayTimeout
	case errs.ErrKindConnectionFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// requestLogger tags each request with a run ID, carries a child logger in
// the request context and logs the outcome.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		runID := uuid.NewString()

		reqLog := s.log.With().Str("run_id", runID).Logger()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		ww.Header().Set("X-Run-ID", runID)

		next.ServeHTTP(ww, r.WithContext(reqLog.WithContext(r.Context())))

		s.log.Access().
			Str("run_id", runID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Strs("tables", dedupe(r.URL.Query()["table"])).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Str("cache", ww.Header().Get("X-Cache")).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}
