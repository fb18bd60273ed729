// Package config handles TOML configuration loading with environment variable substitution.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the root configuration structure.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Remote   RemoteConfig   `toml:"remote"`
	Format   FormatConfig   `toml:"format"`
}

type ServerConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	LogLevel string `toml:"log_level"`
	APIKey   string `toml:"api_key"` // empty disables the X-Api-Key check
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

// RemoteConfig points at an optional document store that mirrors the custom site mappings.
type RemoteConfig struct {
	URL               string        `toml:"url"`
	APIKey            string        `toml:"api_key"`
	Timeout           time.Duration `toml:"timeout"`
	RequestsPerSecond float64       `toml:"requests_per_second"`
	RefreshInterval   time.Duration `toml:"refresh_interval"` // serve only
}

// Enabled reports whether a remote store is configured.
func (r RemoteConfig) Enabled() bool {
	return r.URL != ""
}

type FormatConfig struct {
	Workers       int  `toml:"workers"`
	AllowUnmapped bool `toml:"allow_unmapped"`
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads, parses and validates the configuration file.
func Load(path string) (*Config, error) {
	cfg, err := LoadWithoutValidation(path)
	if err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, &ConfigError{Path: path, Invalid: errs}
	}
	return cfg, nil
}

// LoadWithoutValidation reads and parses the configuration file, applying defaults
// but skipping Validate. Unresolved environment variables are still an error.
func LoadWithoutValidation(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	content, missing := substituteEnvVars(string(data))
	if len(missing) > 0 {
		return nil, &ConfigError{Path: path, Unset: missing}
	}

	var cfg Config
	if _, err := toml.Decode(content, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "127.0.0.1"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8585
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}
	if c.Database.Path == "" {
		c.Database.Path = "./data/vidfmt.db"
	}
	if c.Remote.Timeout == 0 {
		c.Remote.Timeout = 10 * time.Second
	}
	if c.Remote.RequestsPerSecond == 0 {
		c.Remote.RequestsPerSecond = 2
	}
	if c.Remote.RefreshInterval == 0 {
		c.Remote.RefreshInterval = 5 * time.Minute
	}
}

// envVarPattern matches ${VAR}, ${VAR:-default} and ${VAR:?message}.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?:(:-|:\?)([^}]*))?\}`)

// substituteEnvVars expands environment references and reports the ones that could not be resolved.
// An empty variable counts as unset for the :- and :? forms. Comment lines are left alone.
func substituteEnvVars(content string) (string, []string) {
	var missing []string
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}
		lines[i] = envVarPattern.ReplaceAllStringFunc(line, func(match string) string {
			m := envVarPattern.FindStringSubmatch(match)
			name, op, arg := m[1], m[2], m[3]
			value, ok := os.LookupEnv(name)

			switch op {
			case ":-":
				if value == "" {
					return arg
				}
				return value
			case ":?":
				if value == "" {
					missing = append(missing, name+": "+strings.TrimSpace(arg))
					return match
				}
				return value
			default:
				if !ok {
					missing = append(missing, name)
					return match
				}
				return value
			}
		})
	}
	return strings.Join(lines, "\n"), missing
}
