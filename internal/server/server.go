package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/kartoza/byproduct-exchange/internal/api"
	"github.com/kartoza/byproduct-exchange/internal/config"
	"github.com/kartoza/byproduct-exchange/internal/datasets"
	"github.com/kartoza/byproduct-exchange/internal/logging"
	"github.com/kartoza/byproduct-exchange/internal/metrics"
)

// Server holds all the components for the web application
type Server struct {
	cfg        config.Config
	httpServer *http.Server
	router     *mux.Router
	handler    http.Handler
	store      *datasets.Store
	metrics    *metrics.Metrics
}

// New loads both datasets and wires the HTTP stack. A dataset that cannot
// be loaded is fatal: the server never starts with partial data.
func New(cfg config.Config) (*Server, error) {
	store, err := datasets.Load(cfg.Data, cfg.Matching)
	if err != nil {
		return nil, fmt.Errorf("failed to load datasets: %w", err)
	}
	return NewWithStore(cfg, store), nil
}

// NewWithStore wires the HTTP stack around an already loaded store
func NewWithStore(cfg config.Config, store *datasets.Store) *Server {
	s := &Server{
		cfg:    cfg,
		router: mux.NewRouter(),
		store:  store,
	}

	if cfg.Metrics.Enabled {
		s.metrics = metrics.New()
		stats := store.Stats()
		s.metrics.SetDatasetRows(stats.Byproducts, stats.Companies)
	}

	s.setupRoutes()

	// Outermost first: request ID so every later log line carries it
	var h http.Handler = s.router
	h = api.NewRateLimit(cfg.RateLimit)(h)
	h = api.NewCORS(cfg.CORS)(h)
	h = api.RequestID(h)
	s.handler = h

	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	s.router.Use(api.Instrument(s.metrics))

	apiHandler := api.NewHandler(s.store, s.metrics, s.cfg)
	apiHandler.RegisterRoutes(s.router)

	if s.metrics != nil {
		s.router.Handle(s.cfg.Metrics.Path, s.metrics.Handler()).Methods("GET")
	}

	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"not found"}` + "\n"))
	})
}

// Handler returns the full middleware chain, for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start begins listening for HTTP connections
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.handler,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	logging.Info().
		Str("addr", s.httpServer.Addr).
		Str("environment", s.cfg.Server.Environment).
		Msg("Server listening")
	return s.httpServer.ListenAndServe()
}

// Stop gracefully shuts down the server, letting in-flight requests finish
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()

	return s.httpServer.Shutdown(ctx)
}
