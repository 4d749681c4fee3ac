// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package server

import (
	"context"
	stderrors "errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/NVIDIA/onedigit/pkg/defaults"
	"github.com/NVIDIA/onedigit/pkg/engine"
	"github.com/NVIDIA/onedigit/pkg/errors"
)

// Option configures a Server.
type Option func(*Server)

// WithName sets the name reported by the index route.
func WithName(name string) Option {
	return func(s *Server) {
		s.config.Name = name
	}
}

// WithVersion sets the version written into responses.
func WithVersion(version string) Option {
	return func(s *Server) {
		s.config.Version = version
	}
}

// WithAddress sets the listen host; empty listens on all interfaces.
func WithAddress(address string) Option {
	return func(s *Server) {
		s.config.Address = address
	}
}

// WithPort sets the listen port. Zero picks a free port.
func WithPort(port int) Option {
	return func(s *Server) {
		s.config.Port = port
	}
}

// WithRateLimit sets the token bucket for API routes.
func WithRateLimit(limit rate.Limit, burst int) Option {
	return func(s *Server) {
		s.config.RateLimit = limit
		s.config.RateLimitBurst = burst
	}
}

// WithMaxCost caps the max_cost a request may ask for.
func WithMaxCost(maxCost int) Option {
	return func(s *Server) {
		if maxCost > 0 {
			s.config.MaxCost = maxCost
		}
	}
}

// WithSearchDefaults sets the values used for omitted solve fields.
func WithSearchDefaults(cfg engine.Config) Option {
	return func(s *Server) {
		s.config.Search = cfg
	}
}

// WithSolveTimeout bounds a single search.
func WithSolveTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.config.SolveTimeout = d
		}
	}
}

// Hooks are called on lifecycle transitions. Nil fields are skipped.
type Hooks struct {
	// OnReady runs once the listener is bound, with its address.
	OnReady func(addr string)

	// OnShutdown runs when draining starts.
	OnShutdown func()
}

// WithHooks sets the lifecycle hooks.
func WithHooks(h Hooks) Option {
	return func(s *Server) {
		s.hooks = h
	}
}

// WithLogger sets the logger; the default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// Server serves the solve API.
type Server struct {
	config      *Config
	httpServer  *http.Server
	rateLimiter *rate.Limiter
	logger      *slog.Logger
	hooks       Hooks

	mu    sync.RWMutex
	ready bool
	addr  string
}

// New creates a Server from NewConfig and opts.
func New(opts ...Option) *Server {
	s := &Server{
		config: NewConfig(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.rateLimiter = rate.NewLimiter(s.config.RateLimit, s.config.RateLimitBurst)
	s.httpServer = &http.Server{
		Addr:              net.JoinHostPort(s.config.Address, strconv.Itoa(s.config.Port)),
		Handler:           s.setupRoutes(),
		ReadTimeout:       s.config.ReadTimeout,
		ReadHeaderTimeout: defaults.ServerReadHeaderTimeout,
		WriteTimeout:      s.config.WriteTimeout,
		IdleTimeout:       s.config.IdleTimeout,
	}

	return s
}

// Handler returns the routed handler, middleware included.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Addr returns the bound address once Start is listening, else the
// configured one.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.addr != "" {
		return s.addr
	}
	return s.httpServer.Addr
}

// SetReady sets the readiness state reported by /ready.
func (s *Server) SetReady(ready bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = ready
}

func (s *Server) isReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// Start listens and serves until ctx is done, then shuts down.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return errors.WrapWithContext(errors.ErrCodeUnavailable, "failed to listen", err,
			map[string]any{"address": s.httpServer.Addr})
	}

	s.mu.Lock()
	s.addr = ln.Addr().String()
	s.ready = true
	s.mu.Unlock()

	s.logger.Info("server listening", "address", ln.Addr().String())
	if s.hooks.OnReady != nil {
		s.hooks.OnReady(ln.Addr().String())
	}

	errChan := make(chan error, 1)
	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		return s.Shutdown(context.WithoutCancel(ctx))
	case err := <-errChan:
		s.SetReady(false)
		return errors.Wrap(errors.ErrCodeInternal, "server failed", err)
	}
}

// Shutdown marks the server unready and drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.SetReady(false)
	if s.hooks.OnShutdown != nil {
		s.hooks.OnShutdown()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	s.logger.Info("shutting down server")
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(errors.ErrCodeTimeout, "graceful shutdown failed", err)
	}
	return nil
}

// Run serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("starting server",
		"name", s.config.Name,
		"version", s.config.Version,
		"address", s.httpServer.Addr,
		"rateLimit", float64(s.config.RateLimit),
		"rateLimitBurst", s.config.RateLimitBurst,
		"maxCost", s.config.MaxCost,
		"solveTimeout", s.config.SolveTimeout,
		"readTimeout", s.config.ReadTimeout,
		"writeTimeout", s.config.WriteTimeout,
		"idleTimeout", s.config.IdleTimeout,
		"shutdownTimeout", s.config.ShutdownTimeout)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.Start(gctx)
	})

	if err := g.Wait(); err != nil {
		return err
	}

	s.logger.Info("server stopped gracefully")
	return nil
}
