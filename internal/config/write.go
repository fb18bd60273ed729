package config

import (
	_ "embed"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

//go:embed default_config.toml
var defaultConfig string

const maskedSecret = "********"

// WriteDefault writes the commented example config to path, creating parent directories.
func WriteDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(defaultConfig), 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Encode writes the effective configuration, defaults included, as TOML.
// API keys are masked.
func (c *Config) Encode(w io.Writer) error {
	shown := *c
	shown.Server.APIKey = mask(c.Server.APIKey)
	shown.Remote.APIKey = mask(c.Remote.APIKey)
	return toml.NewEncoder(w).Encode(shown)
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}
	return maskedSecret
}
