package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EnvConfig names the environment variable that pins the config file.
const EnvConfig = "VIDFMT_CONFIG"

// ErrNotFound is returned by Discover when no config file exists on the search path.
var ErrNotFound = errors.New("no vidfmt config file")

// DefaultPath is where `vidfmt config init` writes by default: $XDG_CONFIG_HOME/vidfmt/config.toml,
// falling back to ~/.config and finally the working directory.
func DefaultPath() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(".", "config.toml")
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "vidfmt", "config.toml")
}

// searchPaths lists the candidates Discover tries after EnvConfig, most specific first.
func searchPaths() []string {
	return []string{"./config.toml", DefaultPath(), "/etc/vidfmt/config.toml"}
}

// Discover returns the config file to use. A path set in EnvConfig must exist;
// otherwise the first existing entry of the search paths wins.
func Discover() (string, error) {
	if pinned := os.Getenv(EnvConfig); pinned != "" {
		if _, err := os.Stat(pinned); err != nil {
			return "", fmt.Errorf("%s=%s: %w", EnvConfig, pinned, err)
		}
		return pinned, nil
	}

	candidates := searchPaths()
	for _, p := range candidates {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w (searched %s)", ErrNotFound, strings.Join(candidates, ", "))
}

// LoadOrDefault loads the discovered config file. With no file anywhere on the search path
// the built-in defaults are returned, so the CLI works without any setup.
func LoadOrDefault() (*Config, error) {
	path, err := Discover()
	if errors.Is(err, ErrNotFound) {
		return Default(), nil
	}
	if err != nil {
		return nil, err
	}
	return Load(path)
}
