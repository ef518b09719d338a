// Package server serves metrics and health probes for the watch command.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"bubu-hq/verifier/pkg/telemetry/health"
	"bubu-hq/verifier/pkg/telemetry/logging"
	"bubu-hq/verifier/pkg/telemetry/metrics"
)

// DefaultShutdownTimeout bounds graceful shutdown when Config leaves it unset.
const DefaultShutdownTimeout = 5 * time.Second

// Config configures the probe server.
type Config struct {
	// Address is the listen address, e.g. ":9464" or "127.0.0.1:0".
	Address string

	// MetricsPath is where the Prometheus handler is mounted.
	// Default: "/metrics"
	MetricsPath string

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration

	// Version is reported on /version.
	Version health.VersionInfo
}

// Server exposes a metrics collector and health checks over HTTP.
type Server struct {
	config  Config
	metrics *metrics.Collector
	checker *health.Checker
	tracker *health.Tracker
	logger  *logging.Logger

	httpServer *http.Server
	listener   net.Listener
	ready      chan struct{}
	mu         sync.RWMutex
	isRunning  bool
}

// New creates a server. A nil collector leaves the metrics path unmounted;
// a nil tracker leaves /status unmounted.
func New(cfg Config, collector *metrics.Collector, checker *health.Checker, tracker *health.Tracker, logger *logging.Logger) *Server {
	if cfg.MetricsPath == "" {
		cfg.MetricsPath = "/metrics"
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = DefaultShutdownTimeout
	}
	if checker == nil {
		checker = health.New(0)
	}
	if logger == nil {
		logger = logging.Discard()
	}

	return &Server{
		config:  cfg,
		metrics: collector,
		checker: checker,
		tracker: tracker,
		logger:  logger.WithComponent("server"),
		ready:   make(chan struct{}),
	}
}

// Handler returns the routed handler without starting a listener.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	if s.metrics != nil {
		mux.Handle(s.config.MetricsPath, s.metrics.Handler())
	}
	health.Register(mux, s.checker, s.tracker, s.config.Version)

	return s.recovery(s.logRequests(mux))
}

// Start listens on the configured address and blocks until ctx is done or
// the server fails. Cancelling ctx shuts the server down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}

	listener, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to listen on %s: %w", s.config.Address, err)
	}

	s.listener = listener
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.isRunning = true
	s.mu.Unlock()
	close(s.ready)

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("serving probes",
			"address", listener.Addr().String(),
			"metrics_path", s.config.MetricsPath,
		)
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		return s.shutdown()
	case err := <-errChan:
		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()
		return err
	}
}

// Ready is closed once the listener is bound.
func (s *Server) Ready() <-chan struct{} {
	return s.ready
}

// Addr returns the bound address, or "" before Start.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// IsRunning reports whether the server is serving.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

func (s *Server) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()

	var shutdownErr error
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("error during server shutdown", "error", err)
		shutdownErr = fmt.Errorf("server shutdown error: %w", err)
	}

	s.mu.Lock()
	s.isRunning = false
	s.mu.Unlock()

	s.logger.Info("probe server stopped")
	return shutdownErr
}
