package main

import (
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var version = "dev"

var (
	configPath string
	jsonOutput bool
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "vidfmt",
	Short: "Normalize adult video filenames",
	Long: `vidfmt - normalize adult video filenames

Rewrites bracketed, dash-dated and dot/space-separated release names
into "[Site] - YY.MM.DD - Performers Title Quality.ext", resolving
site keys through a built-in dictionary extended with your own names.

Run 'vidfmt serve' to expose the same formatter over HTTP.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: discovered)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output to stderr")

	rootCmd.Version = version
	rootCmd.SetVersionTemplate("vidfmt {{.Version}}\n")
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
