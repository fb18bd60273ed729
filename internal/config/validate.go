package config

import (
	"fmt"
	"net/url"
)

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true, "": true,
}

// Validate checks the configuration for errors.
// Returns a slice of error messages (empty if valid).
func (c *Config) Validate() []string {
	var errs []string

	if c.Server.Port != 0 && (c.Server.Port < 1 || c.Server.Port > 65535) {
		errs = append(errs, fmt.Sprintf("server.port: must be between 1 and 65535, got %d", c.Server.Port))
	}
	if !validLogLevels[c.Server.LogLevel] {
		errs = append(errs, fmt.Sprintf("server.log_level: must be one of debug, info, warn, error; got %q", c.Server.LogLevel))
	}

	if c.Database.Path == "" {
		errs = append(errs, "database.path: required")
	}

	if c.Remote.URL != "" {
		u, err := url.Parse(c.Remote.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, fmt.Sprintf("remote.url: must be an http(s) URL, got %q", c.Remote.URL))
		}
	}
	if c.Remote.Timeout < 0 {
		errs = append(errs, fmt.Sprintf("remote.timeout: must not be negative, got %s", c.Remote.Timeout))
	}
	if c.Remote.RequestsPerSecond < 0 {
		errs = append(errs, fmt.Sprintf("remote.requests_per_second: must not be negative, got %g", c.Remote.RequestsPerSecond))
	}

	if c.Remote.RefreshInterval < 0 {
		errs = append(errs, fmt.Sprintf("remote.refresh_interval: must not be negative, got %s", c.Remote.RefreshInterval))
	}

	if c.Format.Workers < 0 {
		errs = append(errs, fmt.Sprintf("format.workers: must not be negative, got %d", c.Format.Workers))
	}

	return errs
}
