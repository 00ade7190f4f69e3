package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/statebox/pkg/store"
)

// Server is the HTTP inspector for a store.Store.
type Server struct {
	store    *store.Store
	config   *Config
	logger   *slog.Logger
	router   chi.Router
	upgrader websocket.Upgrader

	httpServer *http.Server

	// closing is closed by Shutdown to end watch connections, which
	// http.Server.Shutdown does not track once hijacked.
	closing   chan struct{}
	closeOnce sync.Once
	watches   sync.WaitGroup
}

// New creates a Server for s. A nil config uses DefaultConfig.
func New(s *store.Store, config *Config) *Server {
	config = config.withDefaults()

	srv := &Server{
		store:  s,
		config: config,
		logger: config.Logger.With("component", "inspector"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     config.CheckOrigin,
		},
		closing: make(chan struct{}),
	}
	srv.router = srv.routes()
	srv.httpServer = &http.Server{
		Addr:              config.Address,
		Handler:           srv.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	if s.config.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.config.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/states", func(r chi.Router) {
		r.Get("/", s.handleList)
		r.Route("/{name}", func(r chi.Router) {
			r.Get("/", s.handleGet)
			r.Put("/", s.handlePut)
			r.Post("/compact", s.handleCompact)
			r.Get("/watch", s.handleWatch)
		})
	})
	return r
}

// Handler returns the inspector's http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Run listens on config.Address until ctx is done, then shuts down. It
// returns nil once Shutdown has been called, even if Shutdown ran first.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("inspector listening", "address", s.config.Address)
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("inspector shutting down")
		return s.Shutdown(context.Background())
	}
}

// Shutdown ends watch connections and stops the HTTP server, waiting at most
// config.ShutdownTimeout.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	s.closeOnce.Do(func() { close(s.closing) })

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("shutdown error", "error", err)
		return err
	}

	done := make(chan struct{})
	go func() {
		s.watches.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	s.logger.Info("inspector shutdown complete")
	return nil
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
