package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/flashbots/go-utils/httplogger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/atomic"

	"github.com/dtroode/loginvault/internal/logger"
	"github.com/dtroode/loginvault/internal/model"
)

// Config holds HTTP server parameters.
type Config struct {
	ListenAddr   string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	// DrainTimeout is how long /readyz reports not ready before shutdown.
	DrainTimeout time.Duration
}

const readinessTimeout = 2 * time.Second

// Server serves the message endpoint and health endpoints.
type Server struct {
	cfg       Config
	isReady   atomic.Bool
	handler   *Handler
	readiness model.HealthChecker
	logger    *logger.Logger
	srv       *http.Server
}

var _ model.Server = (*Server)(nil)

// New creates a Server. It reports ready while readiness pings succeed and
// until Stop is called. A nil readiness checker skips the ping.
func New(cfg Config, handler *Handler, readiness model.HealthChecker, logger *logger.Logger) *Server {
	s := &Server{
		cfg:       cfg,
		handler:   handler,
		readiness: readiness,
		logger:    logger,
	}
	s.isReady.Store(true)

	s.srv = &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      s.Router(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return s
}

// Router returns the HTTP routes.
func (s *Server) Router() http.Handler {
	mux := chi.NewRouter()
	mux.Use(middleware.Recoverer)

	mux.With(s.httpLogger).Post("/v1/messages", s.handler.HandleMessage)

	mux.Get("/livez", s.handleLivenessCheck)
	mux.Get("/readyz", s.handleReadinessCheck)

	return mux
}

func (s *Server) httpLogger(next http.Handler) http.Handler {
	return httplogger.LoggingMiddlewareSlog(s.logger.Logger, next)
}

func (s *Server) handleLivenessCheck(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

func (s *Server) handleReadinessCheck(w http.ResponseWriter, r *http.Request) {
	if !s.isReady.Load() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready"})
		return
	}

	if s.readiness != nil {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		if err := s.readiness.Ping(ctx); err != nil {
			s.logger.Warn("readiness check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "store unavailable"})
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// Start listens through the security layer and serves until stopped.
func (s *Server) Start(securityLayer model.SecurityLayer) error {
	listener, err := securityLayer.Listen("tcp", s.cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	s.logger.Info("starting HTTP server", "address", s.cfg.ListenAddr)
	if err := s.srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop marks the server not ready, waits out the drain period and shuts
// down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	if s.isReady.Swap(false) && s.cfg.DrainTimeout > 0 {
		s.logger.Info("HTTP server draining", "duration", s.cfg.DrainTimeout)
		select {
		case <-time.After(s.cfg.DrainTimeout):
		case <-ctx.Done():
		}
	}

	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down HTTP server: %w", err)
	}
	return nil
}

// Address returns the configured listen address.
func (s *Server) Address() string {
	return s.cfg.ListenAddr
}
