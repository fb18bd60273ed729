package sites

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrMalformed indicates mapping data that is not a flat string-to-string object.
var ErrMalformed = errors.New("malformed site mappings")

// Format is a serialization of a mapping document.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

func (f Format) String() string {
	if f == FormatYAML {
		return "yaml"
	}
	return "json"
}

// FormatForPath picks the format from a file extension. Anything but .yaml/.yml is JSON.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// DecodeMappings parses a flat JSON object of site keys to display names.
func DecodeMappings(data []byte) (map[string]string, error) {
	return Decode(data, FormatJSON)
}

// Decode parses a flat mapping document. Nested values, arrays, numbers and
// non-object documents are rejected with ErrMalformed.
func Decode(data []byte, format Format) (map[string]string, error) {
	var raw map[string]any
	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &raw)
	default:
		err = json.Unmarshal(data, &raw)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: not an object", ErrMalformed)
	}

	out := make(map[string]string, len(raw))
	for k, v := range raw {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%w: value for %q is not a string", ErrMalformed, k)
		}
		out[k] = s
	}
	return out, nil
}

// Encode serializes a mapping with sorted keys. JSON is indented by two spaces.
func Encode(m map[string]string, format Format) ([]byte, error) {
	if m == nil {
		m = map[string]string{}
	}
	switch format {
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(m); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		data, err := json.MarshalIndent(m, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	}
}
