package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mselser95/hl-holdtime/internal/batch"
	"github.com/mselser95/hl-holdtime/pkg/healthprobe"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const (
	defaultRequestTimeout    = 30 * time.Second
	defaultBatchTimeout      = 5 * time.Minute
	defaultMaxBatchAddresses = 100
)

// Server provides the holding-time API plus metrics and health endpoints.
type Server struct {
	server        *http.Server
	router        chi.Router
	logger        *zap.Logger
	healthChecker *healthprobe.HealthChecker
}

// Config holds server configuration.
type Config struct {
	Port          string
	Logger        *zap.Logger
	HealthChecker *healthprobe.HealthChecker

	// Analyzer enables the /api routes when set.
	Analyzer          batch.Analyzer
	Criteria          batch.Criteria
	RequestTimeout    time.Duration
	BatchTimeout      time.Duration
	MaxBatchAddresses int
}

// New creates a new HTTP server.
func New(cfg *Config) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if cfg.Logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.HealthChecker == nil {
		return nil, errors.New("health checker cannot be nil")
	}

	requestTimeout := cfg.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = defaultRequestTimeout
	}
	batchTimeout := cfg.BatchTimeout
	if batchTimeout <= 0 {
		batchTimeout = defaultBatchTimeout
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	// Routes
	r.Get("/metrics", promhttp.Handler().ServeHTTP)
	r.Get("/health", cfg.HealthChecker.Health())
	r.Get("/ready", cfg.HealthChecker.Ready())

	if cfg.Analyzer != nil {
		handler, err := NewHoldingTimeHandler(&HandlerConfig{
			Analyzer:     cfg.Analyzer,
			Criteria:     cfg.Criteria,
			MaxAddresses: cfg.MaxBatchAddresses,
			Logger:       cfg.Logger,
		})
		if err != nil {
			return nil, fmt.Errorf("create holding-time handler: %w", err)
		}

		r.Route("/api", func(r chi.Router) {
			r.With(middleware.Timeout(requestTimeout)).
				Get("/accounts/{address}/holding-time", handler.HandleAccount)
			r.With(middleware.Timeout(batchTimeout)).
				Post("/batch", handler.HandleBatch)
		})
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      batchTimeout + 15*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return &Server{
		server:        server,
		router:        r,
		logger:        cfg.Logger,
		healthChecker: cfg.HealthChecker,
	}, nil
}

// Handler returns the server's router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server.
// This is a blocking call that returns when the server stops or encounters an error.
func (s *Server) Start() error {
	s.logger.Info("http-server-starting", zap.String("addr", s.server.Addr))

	err := s.server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen and serve: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("http-server-shutting-down")

	err := s.server.Shutdown(ctx)
	if err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	s.logger.Info("http-server-shutdown-complete")
	return nil
}
