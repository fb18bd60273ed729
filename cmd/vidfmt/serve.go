package main

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	v1 "github.com/vmunix/vidfmt/internal/api/v1"
	"github.com/vmunix/vidfmt/internal/server"
	"github.com/vmunix/vidfmt/pkg/filename"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Run the HTTP API on server.host:server.port.

Endpoints (under /api/v1):
  POST /format           format entries, 409 with the unmapped keys
  GET  /mappings         mapping document (?all=true for built-ins)
  POST /mappings         replace the mapping document
  GET  /sites            list site keys
  POST /sites/supply     add display names for unmapped keys
  GET  /status           version and storage status`,
	Args: cobra.NoArgs,
	RunE: runServeCmd,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Listen address (overrides server.host and server.port)")
}

func runServeCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	level := parseLogLevel(cfg.Server.LogLevel)
	if verbose {
		level = parseLogLevel("debug")
	}
	logger := newLogger(os.Stdout, level)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := openApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	api, err := v1.New(v1.ServerDeps{
		Mappings: a.mappings,
		Format: filename.Options{
			Workers:       cfg.Format.Workers,
			AllowUnmapped: cfg.Format.AllowUnmapped,
		},
		APIKey:  cfg.Server.APIKey,
		Version: version,
		Logger:  logger,
	})
	if err != nil {
		return fmt.Errorf("api: %w", err)
	}

	addr, _ := cmd.Flags().GetString("addr")
	if addr == "" {
		addr = net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port))
	}

	runCfg := server.Config{Addr: addr}
	if cfg.Remote.Enabled() {
		runCfg.RefreshInterval = cfg.Remote.RefreshInterval
	}
	runner := server.NewRunner(api.Handler(), a.mappings, runCfg, logger)

	return runner.Run(ctx)
}
