package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"

	"github.com/vmunix/vidfmt/internal/config"
	"github.com/vmunix/vidfmt/internal/mappings"
	"github.com/vmunix/vidfmt/internal/store"
	"github.com/vmunix/vidfmt/pkg/sites"
)

// app holds what every subcommand needs: config, logger, database and the mapping service.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	db       *sql.DB
	mappings *mappings.Service
}

// loadConfig loads path, or the discovered config file when path is empty.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.LoadOrDefault()
	}
	return config.Load(path)
}

// newLogger builds the text logger. CLI commands stay quiet below warn unless verbose.
func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// openApp wires config, database, stores and the mapping service, then loads the mappings.
func openApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	db, err := store.Open(ctx, cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}

	// A nil *RemoteStore must not reach the service as a non-nil interface.
	var remote store.Store
	if cfg.Remote.Enabled() {
		remote = store.NewRemoteStore(cfg.Remote.URL, cfg.Remote.APIKey, cfg.Remote.Timeout, cfg.Remote.RequestsPerSecond)
	}

	svc := mappings.New(sites.New(), store.NewSQLiteStore(db), remote, logger)
	status := svc.Load(ctx)
	logger.Debug("mappings ready", "status", status, "sites", svc.Dictionary().Len())

	return &app{cfg: cfg, logger: logger, db: db, mappings: svc}, nil
}

// setup loads the config named by --config and opens the app with a stderr logger.
func setup(ctx context.Context, stderr io.Writer) (*app, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return openApp(ctx, cfg, newLogger(stderr, level))
}

func (a *app) Close() error {
	return a.db.Close()
}
