package config

import (
	"fmt"
	"io"
	"strings"
)

// ConfigError reports why a config file was rejected. Unset references stop loading before
// the file is decoded, so Load never returns both lists filled.
type ConfigError struct {
	Path    string
	Unset   []string // ${VAR} references with no value and no default
	Invalid []string // "section.key: reason" entries from Validate
}

// Error renders the problems on one line, e.g.
// "vidfmt config ./config.toml: unset VIDFMT_API_KEY; invalid server.port: must be 1-65535".
func (e *ConfigError) Error() string {
	var b strings.Builder
	b.WriteString("vidfmt config")
	if e.Path != "" {
		b.WriteString(" " + e.Path)
	}
	sep := ": "
	if len(e.Unset) > 0 {
		b.WriteString(sep + "unset " + strings.Join(e.Unset, ", "))
		sep = "; "
	}
	for _, msg := range e.Invalid {
		b.WriteString(sep + "invalid " + msg)
		sep = "; "
	}
	return b.String()
}

// HasErrors reports whether anything was rejected.
func (e *ConfigError) HasErrors() bool {
	return len(e.Unset) > 0 || len(e.Invalid) > 0
}

// Report writes the problems as an indented list, one section per kind.
func (e *ConfigError) Report(w io.Writer) {
	section := func(title string, items []string) {
		if len(items) == 0 {
			return
		}
		fmt.Fprintf(w, "%s (%d):\n", title, len(items))
		for _, item := range items {
			fmt.Fprintf(w, "  - %s\n", item)
		}
		fmt.Fprintln(w)
	}
	section("Unset environment variables", e.Unset)
	section("Invalid settings", e.Invalid)
}
