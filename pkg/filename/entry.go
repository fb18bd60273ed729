// Package filename parses loosely structured video filenames and renders them in one canonical form.
package filename

import (
	"fmt"
	"strings"
)

// Shape is the naming convention an input entry follows.
type Shape int

const (
	ShapeInvalid Shape = iota
	ShapeBracket
	ShapeDashDate
	ShapeTraditionalDot
	ShapeTraditionalSpace
)

func (s Shape) String() string {
	switch s {
	case ShapeBracket:
		return "bracket"
	case ShapeDashDate:
		return "dash_date"
	case ShapeTraditionalDot:
		return "traditional_dot"
	case ShapeTraditionalSpace:
		return "traditional_space"
	default:
		return "invalid"
	}
}

// MarshalText renders the shape by name in JSON output.
func (s Shape) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a shape name as written by MarshalText.
func (s *Shape) UnmarshalText(b []byte) error {
	for c := ShapeInvalid; c <= ShapeTraditionalSpace; c++ {
		if c.String() == string(b) {
			*s = c
			return nil
		}
	}
	return fmt.Errorf("unknown shape %q", b)
}

// Traditional reports whether the shape is one of the delimiter-separated forms.
func (s Shape) Traditional() bool {
	return s == ShapeTraditionalDot || s == ShapeTraditionalSpace
}

// onlyFansKey is the one site key whose traditional dates are space-joined.
const onlyFansKey = "onlyfans"

// defaultExtension is used when no extension can be found in the entry.
const defaultExtension = "mp4"

// Entry is one parsed input segment.
type Entry struct {
	Raw       string
	Shape     Shape
	SiteKey   string    // lowercase lookup key
	Site      string    // site as written in the input
	Title     string    // capitalized performer or title text
	Date      [3]string // components in output order
	Tags      Tags
	Extension string
}

// Valid reports whether the entry matched a supported shape.
func (e Entry) Valid() bool {
	return e.Shape != ShapeInvalid
}

// spaceDated reports whether the date renders space-joined with no separator before the title.
func (e Entry) spaceDated() bool {
	return e.Shape.Traditional() && e.SiteKey == onlyFansKey
}

// DateString joins the date components with the separator the shape uses.
func (e Entry) DateString() string {
	sep := "."
	if e.spaceDated() {
		sep = " "
	}
	return strings.Join(e.Date[:], sep)
}
