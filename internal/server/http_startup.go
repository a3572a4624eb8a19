package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"
)

const shutdownTimeout = 30 * time.Second

// Start binds the listener, serves until ctx is cancelled and then drains
// in-flight requests for up to shutdownTimeout
func (s *Server) Start(ctx context.Context) error {
	defer s.closeRateLimiter()

	httpServer := &http.Server{
		Addr:         net.JoinHostPort(s.Host, s.Port),
		Handler:      s.Handler(),
		ReadTimeout:  s.ReadTimeout,
		WriteTimeout: s.WriteTimeout,
		IdleTimeout:  s.IdleTimeout,
		BaseContext:  func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}
	if err := s.configureTLS(httpServer); err != nil {
		return err
	}

	listener, err := net.Listen("tcp", httpServer.Addr)
	if err != nil {
		return fmt.Errorf("server failed to start: %w", err)
	}
	s.displayServerInfo(os.Stdout)

	return s.serve(ctx, httpServer, listener)
}

// Handler returns the routes wrapped in the full middleware chain
func (s *Server) Handler() http.Handler {
	return s.obs.HTTPMiddleware()(s.setupRoutes())
}

func (s *Server) serve(ctx context.Context, httpServer *http.Server, listener net.Listener) error {
	tlsEnabled := httpServer.TLSConfig != nil
	serveErr := make(chan error, 1)
	go func() {
		s.Logger.Info("Starting HTTP server",
			"address", listener.Addr().String(),
			"tls_enabled", tlsEnabled)

		var err error
		if tlsEnabled {
			err = httpServer.ServeTLS(listener, "", "")
		} else {
			err = httpServer.Serve(listener)
		}
		serveErr <- err
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server stopped unexpectedly: %w", err)
	case <-ctx.Done():
	}

	s.Logger.Info("Received shutdown signal, starting graceful shutdown",
		"cause", context.Cause(ctx).Error())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		s.Logger.LogError(err, "Failed to shutdown server gracefully, forcing close")
		return httpServer.Close()
	}

	s.Logger.Info("Server shutdown completed successfully")
	return nil
}

func (s *Server) closeRateLimiter() {
	if s.RateLimiter != nil {
		s.RateLimiter.Close()
		s.Logger.Debug("Rate limiter stopped")
	}
}
