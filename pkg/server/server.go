package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"

	"mealshare/trustcore/pkg/config"
	"mealshare/trustcore/pkg/location"
	"mealshare/trustcore/pkg/safety"
	"mealshare/trustcore/pkg/telemetry/health"
	"mealshare/trustcore/pkg/telemetry/logging"
	"mealshare/trustcore/pkg/telemetry/metrics"
	"mealshare/trustcore/pkg/telemetry/tracing"
)

// API routes.
const (
	RouteValidate       = "/v1/content/validate"
	RouteCheck          = "/v1/content/check"
	RoutePublicLocation = "/v1/location/public"
)

// Dependencies are the components a Server serves from. Store is required;
// the rest fall back to disabled or discarding implementations.
type Dependencies struct {
	Store     *safety.Store
	Checker   *health.Checker
	Collector *metrics.Collector
	Tracer    *tracing.Tracer
	Logger    *logging.Logger
	Version   health.VersionInfo
}

// Server is the trust core HTTP sidecar.
type Server struct {
	config     *config.Config
	store      *safety.Store
	obfuscator location.Obfuscator
	checker    *health.Checker
	collector  *metrics.Collector
	tracer     *tracing.Tracer
	logger     *logging.Logger
	version    health.VersionInfo

	httpServer   *http.Server
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// NewServer creates a sidecar server. cfg is expected to have passed
// config.Validate; defaults are applied to any zero fields.
func NewServer(cfg *config.Config, deps Dependencies) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if deps.Store == nil {
		return nil, errors.New("term store is nil")
	}
	config.ApplyDefaults(cfg)

	obfuscator, err := location.NewObfuscator(cfg.Location.MaxOffsetDegrees)
	if err != nil {
		return nil, fmt.Errorf("failed to create obfuscator: %w", err)
	}

	s := &Server{
		config:     cfg,
		store:      deps.Store,
		obfuscator: obfuscator,
		checker:    deps.Checker,
		collector:  deps.Collector,
		tracer:     deps.Tracer,
		logger:     deps.Logger,
		version:    deps.Version,
	}
	if s.checker == nil {
		s.checker = health.New(0)
		s.checker.RegisterCheck("termset", health.TermSetCheck(s.store))
	}
	if s.logger == nil {
		s.logger = logging.Discard()
	}
	return s, nil
}

// Start listens on the configured address and serves until ctx is
// cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Server.ListenAddress)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Server.ListenAddress, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled or the server fails.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		_ = ln.Close()
		return errors.New("server is already running")
	}
	s.isRunning = true
	s.httpServer = &http.Server{
		Handler:        s.Handler(),
		ReadTimeout:    s.config.Server.ReadTimeout,
		WriteTimeout:   s.config.Server.WriteTimeout,
		IdleTimeout:    s.config.Server.IdleTimeout,
		MaxHeaderBytes: s.config.Server.MaxHeaderBytes,
	}
	httpServer := s.httpServer
	s.mu.Unlock()

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting trust core server", "address", ln.Addr().String())
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("server error: %w", err)
		}
		close(errChan)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case err, ok := <-errChan:
		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()
		if !ok {
			return nil
		}
		return err
	}
}

// Shutdown gracefully shuts down the server within the configured timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		httpServer := s.httpServer
		running := s.isRunning
		s.mu.Unlock()
		if !running || httpServer == nil {
			return
		}

		s.logger.Info("initiating graceful shutdown", "timeout", s.config.Server.ShutdownTimeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.Server.ShutdownTimeout)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("error during server shutdown", "error", err)
			shutdownErr = fmt.Errorf("server shutdown error: %w", err)
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		s.logger.Info("trust core server stopped")
	})

	return shutdownErr
}

// IsRunning returns true if the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.Handle(RouteValidate, s.route(RouteValidate, http.MethodPost, s.handleValidate))
	mux.Handle(RouteCheck, s.route(RouteCheck, http.MethodPost, s.handleCheck))
	mux.Handle(RoutePublicLocation, s.route(RoutePublicLocation, http.MethodPost, s.handlePublicLocation))

	health.Register(mux, s.checker, s.config.Telemetry.Health, s.version)
	if s.config.Telemetry.Metrics.Enabled && s.collector != nil {
		mux.Handle(s.config.Telemetry.Metrics.Path, s.collector.Handler())
	}

	var handler http.Handler = mux
	handler = s.loggingMiddleware(handler)
	handler = requestIDMiddleware(handler)
	handler = s.recoveryMiddleware(handler)

	return handler
}
