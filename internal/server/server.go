// internal/server/server.go
//
// HTTP server helper with timeouts and graceful shutdown.
//
//   • ReadTimeout   – abort slow-loris headers and slow upload bodies
//   • WriteTimeout  – cap total response time
//   • IdleTimeout   – close keep-alives on idle clients
//
// Run serves until ctx is cancelled, then drains in-flight requests for up to
// ShutdownGrace.  cmd/web cancels ctx on SIGINT / SIGTERM.

package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ShutdownGrace bounds the drain phase.
const ShutdownGrace = 20 * time.Second

// Timeouts overrides the defaults; zero fields keep them.
type Timeouts struct {
	Read, Write, Idle time.Duration
}

// New constructs an *http.Server with sensible defaults.
func New(addr string, handler http.Handler, t Timeouts) *http.Server {
	s := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	if t.Read > 0 {
		s.ReadTimeout = t.Read
	}
	if t.Write > 0 {
		s.WriteTimeout = t.Write
	}
	if t.Idle > 0 {
		s.IdleTimeout = t.Idle
	}
	return s
}

// Run serves srv until ctx ends or the listener fails.
func Run(ctx context.Context, srv *http.Server) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		zap.S().Infow("http listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		zap.S().Infow("http shutting down", "grace", ShutdownGrace)
		sctx, cancel := context.WithTimeout(context.Background(), ShutdownGrace)
		defer cancel()
		return srv.Shutdown(sctx)
	})

	return g.Wait()
}
