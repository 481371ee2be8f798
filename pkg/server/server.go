/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Server is the HTTP API server: system endpoints, registered API handlers and
// the middleware chain shared by the latter.
type Server struct {
	name    string
	version string
	config  *Config

	limiter  *rate.Limiter
	handlers map[string]http.HandlerFunc

	httpServer *http.Server

	mu    sync.RWMutex
	ready bool
}

// Option configures a Server.
type Option func(*Server)

// WithName sets the service name reported by the root endpoint.
func WithName(name string) Option {
	return func(s *Server) {
		s.name = name
	}
}

// WithVersion sets the service version.
func WithVersion(version string) Option {
	return func(s *Server) {
		s.version = version
	}
}

// WithConfig replaces DefaultConfig.
func WithConfig(cfg *Config) Option {
	return func(s *Server) {
		if cfg != nil {
			s.config = cfg
		}
	}
}

// WithHandler registers an API handler under a ServeMux pattern such as
// "POST /v1/validate". API handlers go through the middleware chain.
func WithHandler(pattern string, h http.HandlerFunc) Option {
	return func(s *Server) {
		s.handlers[pattern] = h
	}
}

// WithHandlers registers several API handlers.
func WithHandlers(handlers map[string]http.HandlerFunc) Option {
	return func(s *Server) {
		for p, h := range handlers {
			s.handlers[p] = h
		}
	}
}

// New creates a Server. It is not ready until Run starts listening.
func New(opts ...Option) *Server {
	s := &Server{
		name:     "dc-api-server",
		version:  "dev",
		config:   DefaultConfig(),
		handlers: make(map[string]http.HandlerFunc),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.limiter = rate.NewLimiter(s.config.RateLimit, s.config.RateLimitBurst)
	return s
}

// SetReady flips the readiness reported by /ready.
func (s *Server) SetReady(ready bool) {
	s.mu.Lock()
	s.ready = ready
	s.mu.Unlock()
}

func (s *Server) isReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// Routes returns the registered API patterns, sorted.
func (s *Server) Routes() []string {
	out := make([]string, 0, len(s.handlers))
	for p := range s.handlers {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Handler returns the complete HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.setupRoutes()
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	started := time.Now()
	s.httpServer = &http.Server{
		Addr:              s.config.Addr(),
		Handler:           s.Handler(),
		ReadTimeout:       s.config.ReadTimeout,
		ReadHeaderTimeout: s.config.ReadTimeout,
		WriteTimeout:      s.config.WriteTimeout,
		IdleTimeout:       s.config.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting",
			"name", s.name,
			"version", s.version,
			"address", s.httpServer.Addr,
			"rate_limit", float64(s.config.RateLimit),
			"rate_limit_burst", s.config.RateLimitBurst)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	s.SetReady(true)

	select {
	case err := <-errCh:
		s.SetReady(false)
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	s.SetReady(false)
	slog.Info("server shutting down", "timeout", s.config.ShutdownTimeout)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	slog.Info("server stopped", "uptime", time.Since(started).Round(time.Second))
	return nil
}
