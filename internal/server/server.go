package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrymomot/sessioncache/pkg/health"
	"github.com/dmitrymomot/sessioncache/pkg/logger"
	"github.com/dmitrymomot/sessioncache/pkg/sessioncache"
)

// Server serves the session cache over HTTP.
type Server struct {
	cache  *sessioncache.Cache
	logger *slog.Logger
	opts   *options
}

// New creates a server backed by cache.
func New(cache *sessioncache.Cache, opts ...Option) *Server {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return &Server{cache: cache, logger: o.logger, opts: o}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health/live", health.LivenessHandler())
	r.Get("/health/ready", health.ReadinessHandler(s.opts.checks, health.WithLogger(s.logger)))
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", s.handle(s.createSession))
		r.Route("/{id}", func(r chi.Router) {
			r.Use(withSessionID)
			r.Get("/", s.handle(s.getSession))
			r.Put("/", s.handle(s.putSession))
			r.Delete("/", s.handle(s.deleteSession))
		})
	})

	return r
}

type handlerFunc func(w http.ResponseWriter, r *http.Request) error

// handle renders errors returned by h. Server errors are logged.
func (s *Server) handle(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := h(w, r)
		if err == nil {
			return
		}

		httpErr := asHTTPError(err)
		if httpErr.Code >= http.StatusInternalServerError {
			s.logger.ErrorContext(r.Context(), "request failed",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Any("error", err),
			)
		}
		writeJSON(w, httpErr.Code, map[string]string{"error": httpErr.Message})
	}
}

// withSessionID puts the {id} path parameter on the request context so that
// every log line written while serving it carries session_id.
func withSessionID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := logger.WithSessionID(r.Context(), chi.URLParam(r, "id"))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestIDExtractor adds the chi request ID to log records.
func RequestIDExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		id := middleware.GetReqID(ctx)
		if id == "" {
			return slog.Attr{}, false
		}
		return slog.String("request_id", id), true
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	// Numbers in session values stay json.Number, as they do after a restore.
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return errBadRequest("invalid JSON body", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Run serves srv until ctx is cancelled or the listener fails, then shuts the
// server down and runs the shutdown hooks in order.
func Run(ctx context.Context, srv *http.Server, shutdownTimeout time.Duration, log *slog.Logger, shutdownHooks ...func(context.Context) error) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", slog.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var errs []error
	select {
	case err := <-errCh:
		if err != nil {
			errs = append(errs, err)
		}
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, err)
	}

	for _, hook := range shutdownHooks {
		if err := hook(shutdownCtx); err != nil {
			errs = append(errs, err)
			log.Error("shutdown hook failed", slog.Any("error", err))
		}
	}

	if len(errs) > 0 {
		log.Error("shutdown completed with errors")
		return errors.Join(errs...)
	}

	log.Info("shutdown completed")
	return nil
}
