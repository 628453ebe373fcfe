// Package server exposes a store.Store over a JSON HTTP API.
//
// A Store is not safe for concurrent use, so every handler holds the
// server's mutex for the duration of its store call. Requests are
// therefore executed one at a time.
package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/koustreak/schemastore/internal/config"
	"github.com/koustreak/schemastore/internal/logger"
	"github.com/koustreak/schemastore/internal/store"
)

// Server serves one Store.
type Server struct {
	mu     sync.Mutex
	store  *store.Store
	log    *logger.Logger
	router chi.Router
}

// New builds the router for s. A nil log discards output.
func New(s *store.Store, log *logger.Logger) *Server {
	if log == nil {
		log = logger.Nop()
	}
	srv := &Server{store: s, log: log}
	srv.router = srv.routes()
	return srv
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.log))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.health)
	r.Delete("/database", s.dropDatabase)

	r.Route("/tables", func(r chi.Router) {
		r.Get("/", s.listTables)
		r.Post("/", s.createTable)

		r.Route("/{table}", func(r chi.Router) {
			r.Get("/", s.describeTable)
			r.Delete("/", s.dropTable)
			r.Post("/rename", s.renameTable)

			r.Post("/columns", s.addColumn)
			r.Put("/columns/{column}", s.modifyColumn)
			r.Delete("/columns/{column}", s.dropColumn)
			r.Post("/columns/{column}/rename", s.renameColumn)

			r.Post("/foreign-keys", s.addForeignKey)

			r.Get("/rows", s.selectRows)
			r.Post("/rows", s.insertRow)
			r.Patch("/rows", s.updateRows)
			r.Delete("/rows", s.deleteRows)
		})
	})
	return r
}

// ListenAndServe serves on cfg.Addr until ctx is cancelled, then shuts
// down gracefully within cfg.ShutdownTimeout.
func (s *Server) ListenAndServe(ctx context.Context, cfg config.HTTPConfig) error {
	httpSrv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Infof("listening on %s", cfg.Addr)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	timeout := cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.log.Info("shutting down")
	return httpSrv.Shutdown(shutdownCtx)
}

// requestLogger logs one line per request after it completes.
func requestLogger(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r.WithContext(log.WithContext(r.Context())))

			log.HTTPEvent().
				Str("request_id", middleware.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", time.Since(start)).
				Msg("request")
		})
	}
}
