// Package server runs the HTTP API and its background jobs.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vmunix/vidfmt/internal/mappings"
)

// Config for the server runner.
type Config struct {
	Addr            string
	ShutdownTimeout time.Duration // defaults to 30s
	RefreshInterval time.Duration // 0 disables periodic reloads
}

// Reloader re-reads the mappings from storage.
type Reloader interface {
	Load(ctx context.Context) mappings.Status
}

// Runner manages the HTTP server and the refresh job.
type Runner struct {
	handler  http.Handler
	reloader Reloader
	config   Config
	logger   *slog.Logger
}

// NewRunner creates a new runner. reloader may be nil.
func NewRunner(handler http.Handler, reloader Reloader, cfg Config, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}
	return &Runner{
		handler:  handler,
		reloader: reloader,
		config:   cfg,
		logger:   logger,
	}
}

// Run listens on the configured address and serves until ctx is canceled.
func (r *Runner) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", r.config.Addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	return r.Serve(ctx, ln)
}

// Serve serves on ln until ctx is canceled, then shuts down gracefully.
// It blocks until every component has stopped.
func (r *Runner) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           r.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		r.logger.Info("server starting", "addr", ln.Addr().String())
		if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		r.logger.Info("server stopping")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), r.config.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	if r.reloader != nil && r.config.RefreshInterval > 0 {
		g.Go(func() error {
			r.refresh(ctx)
			return nil
		})
	}

	err := g.Wait()
	r.logger.Info("server stopped")
	return err
}

// refresh reloads the mappings on every tick so an offline remote is picked up again.
func (r *Runner) refresh(ctx context.Context) {
	ticker := time.NewTicker(r.config.RefreshInterval)
	defer ticker.Stop()

	log := r.logger.With("component", "refresh")
	log.Info("refresh started", "interval", r.config.RefreshInterval.String())

	for {
		select {
		case <-ctx.Done():
			log.Info("refresh stopped")
			return
		case <-ticker.C:
			status := r.reloader.Load(ctx)
			log.Debug("mappings reloaded", "status", status)
		}
	}
}
