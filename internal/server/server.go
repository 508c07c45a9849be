package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/klauspost/compress/gzhttp"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"netinv.sh/internal/console"
	"netinv.sh/internal/dashboard"
	"netinv.sh/internal/inventory"
	"netinv.sh/internal/middleware"
	"netinv.sh/internal/observability"
)

const serviceName = "netinv-console"

// Config holds the console server configuration
type Config struct {
	Addr  string
	Title string

	// Per-client rate limit on the dashboard and API routes
	Rate       float64
	Burst      int
	TrustProxy bool

	// Origins allowed to read /api from a browser. Empty means same origin.
	CORSOrigins []string

	ShutdownTimeout time.Duration

	Dashboard dashboard.Options
}

// DefaultConfig returns the configuration used when nothing is set
func DefaultConfig() Config {
	return Config{
		Addr:            ":8088",
		Title:           "Network Inventory",
		Rate:            10,
		Burst:           20,
		ShutdownTimeout: 10 * time.Second,
		Dashboard:       dashboard.DefaultOptions(),
	}
}

// Server is the web console. Every page view runs its own dashboard
// render against the inventory source.
type Server struct {
	config     Config
	src        dashboard.Source
	logger     *zap.Logger
	limiter    *middleware.RateLimiter
	health     *observability.HealthService
	handler    http.Handler
	httpServer *http.Server
}

// New creates a console server reading from src
func New(config Config, src dashboard.Source, logger *zap.Logger) (*Server, error) {
	if src == nil {
		return nil, errors.New("server: nil inventory source")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.ShutdownTimeout <= 0 {
		config.ShutdownTimeout = 10 * time.Second
	}

	corsConfig := middleware.ConsoleCORSConfig(config.CORSOrigins)
	if err := middleware.ValidateCORSConfig(corsConfig); err != nil {
		return nil, err
	}

	limiter, err := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		Rate:       config.Rate,
		Burst:      config.Burst,
		Expiration: time.Hour,
		TrustProxy: config.TrustProxy,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limiter: %w", err)
	}

	s := &Server{
		config:  config,
		src:     src,
		logger:  logger,
		limiter: limiter,
		health:  observability.NewHealthService(5 * time.Second),
	}
	s.health.RegisterCheckFunc("inventory", func(ctx context.Context) error {
		_, err := src.VLANs(ctx, inventory.Query{Limit: 1})
		return err
	})
	s.handler = s.routes(corsConfig)
	return s, nil
}

// Handler returns the fully wrapped HTTP handler
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes(corsConfig *middleware.CORSConfig) http.Handler {
	router := mux.NewRouter()
	router.Use(middleware.NewMetricsMiddleware(serviceName))

	limited := middleware.RateLimitMiddleware(s.limiter, serviceName)

	router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	router.HandleFunc("/readyz", s.health.ReadinessHandler()).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	router.Handle("/", limited(http.HandlerFunc(s.handleDashboard))).Methods(http.MethodGet, http.MethodHead)

	api := router.PathPrefix("/api").Subrouter()
	api.Use(middleware.CORSMiddleware(corsConfig), limited)
	api.HandleFunc("/dashboard", s.handleSnapshot).Methods(http.MethodGet, http.MethodOptions)

	var h http.Handler = router
	h = middleware.SecurityHeaders(console.EChartsCDN)(h)
	h = middleware.LoggingMiddleware(s.logger)(h)
	h = middleware.RecoveryMiddleware(s.logger)(h)
	h = middleware.RequestIDMiddleware(h)
	h = middleware.NewTracingMiddleware(serviceName)(h)
	return gzhttp.GzipHandler(h)
}

// Run listens on the configured address and serves until ctx is cancelled
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled, then shuts down gracefully
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.httpServer = &http.Server{
		Handler:           s.handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting console server", zap.String("addr", ln.Addr().String()))
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	case err, ok := <-errCh:
		s.limiter.Stop()
		if !ok {
			return nil
		}
		return err
	}
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down console server")
	defer s.limiter.Stop()

	if s.httpServer == nil {
		return nil
	}
	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("Failed to shutdown HTTP server", zap.Error(err))
		return err
	}
	return nil
}
