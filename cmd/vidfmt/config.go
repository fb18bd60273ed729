package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vmunix/vidfmt/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
}

var configTestCmd = &cobra.Command{
	Use:   "test [path]",
	Short: "Validate configuration file",
	Long:  "Validates config.toml syntax, required fields, and environment variable substitution without opening the database.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConfigTest,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration with defaults applied",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(configPath)
		if err != nil {
			return err
		}
		return cfg.Encode(cmd.OutOrStdout())
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write an example configuration file",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConfigInit,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configTestCmd, configShowCmd, configInitCmd)
	configInitCmd.Flags().Bool("force", false, "Overwrite an existing file")
}

func runConfigTest(cmd *cobra.Command, args []string) error {
	path := configPath
	if len(args) > 0 {
		path = args[0]
	}
	if path == "" {
		found, err := config.Discover()
		if err != nil {
			return err
		}
		path = found
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Validating %s...\n\n", path)

	cfg, err := config.Load(path)
	if err != nil {
		var configErr *config.ConfigError
		if errors.As(err, &configErr) {
			configErr.Report(out)
			return fmt.Errorf("configuration invalid")
		}
		return fmt.Errorf("failed to load config: %w", err)
	}

	printConfigSummary(out, cfg)
	fmt.Fprintln(out, "\nConfiguration valid!")
	return nil
}


func printConfigSummary(w io.Writer, cfg *config.Config) {
	fmt.Fprintln(w, "Configuration Summary:")
	fmt.Fprintf(w, "  Server:     %s:%d (log: %s)\n", cfg.Server.Host, cfg.Server.Port, cfg.Server.LogLevel)
	if cfg.Server.APIKey != "" {
		fmt.Fprintln(w, "  API key:    set")
	}
	fmt.Fprintf(w, "  Database:   %s\n", cfg.Database.Path)

	if cfg.Remote.Enabled() {
		fmt.Fprintf(w, "  Remote:     %s (timeout %s, %g req/s, refresh %s)\n",
			cfg.Remote.URL, cfg.Remote.Timeout, cfg.Remote.RequestsPerSecond, cfg.Remote.RefreshInterval)
	} else {
		fmt.Fprintln(w, "  Remote:     disabled")
	}

	workers := "sequential"
	if cfg.Format.Workers > 1 {
		workers = fmt.Sprintf("%d workers", cfg.Format.Workers)
	}
	fmt.Fprintf(w, "  Format:     %s, allow unmapped: %t\n", workers, cfg.Format.AllowUnmapped)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	force, _ := cmd.Flags().GetBool("force")

	path := config.DefaultPath()
	if len(args) > 0 {
		path = args[0]
	}

	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	if err := config.WriteDefault(path); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}
