package filename

import (
	"regexp"
	"slices"
	"strings"
	"unicode"
)

const (
	res4K    = "[2160p][4K]"
	res1080p = "1080p"
	rqSuffix = "[rq]"
)

// resolutionTokens are the raw resolution literals recognized in filenames.
var resolutionTokens = []string{"2160p", "1080p", "720p", "480p"}

// extensions are the container literals recognized in traditional entries.
var extensions = map[string]bool{
	"mp4": true, "wmv": true, "avi": true, "mov": true, "mkv": true,
}

// extTagRegex matches an extension carrying a release tag, e.g. "wmv-lewd".
var extTagRegex = regexp.MustCompile(`(?i)^(mp4|wmv|avi|mov|mkv)-\S+$`)

// markers are tokens that never belong to a traditional title.
var markers = map[string]bool{
	"4k": true, "xxx": true,
	"2160p": true, "1080p": true, "720p": true, "480p": true,
	"mp4": true, "wmv": true, "avi": true, "mov": true, "mkv": true,
	"rq": true, "[rq]": true, "[xc]": true,
}

// Tags holds the quality hints found in an entry.
type Tags struct {
	Has4K       bool
	Resolutions []string // raw resolution tokens in the order they appeared
	RQ          bool
}

// add records tok if it is a quality token and reports whether it was one.
func (t *Tags) add(tok string) bool {
	lower := strings.ToLower(tok)
	switch lower {
	case "4k":
		t.Has4K = true
		return true
	case "rq", "[rq]":
		t.RQ = true
		return true
	}
	for _, r := range resolutionTokens {
		if lower == r {
			t.Resolutions = append(t.Resolutions, r)
			return true
		}
	}
	return false
}

func (t Tags) has(res string) bool {
	for _, r := range t.Resolutions {
		if r == res {
			return true
		}
	}
	return false
}

// Resolution returns the rendered resolution string.
// An explicit 4k or 2160p wins, then the first resolution seen, then 1080p.
// An rq tag with no explicit resolution renders no resolution at all.
func (t Tags) Resolution() string {
	switch {
	case t.Has4K || t.has("2160p"):
		return res4K
	case len(t.Resolutions) > 0:
		return t.Resolutions[0]
	case t.RQ:
		return ""
	default:
		return res1080p
	}
}

// Suffix returns the literal tag appended after the resolution.
func (t Tags) Suffix() string {
	if t.RQ {
		return rqSuffix
	}
	return ""
}

// isQualityToken reports whether tok is a resolution, 4k or rq tag.
func isQualityToken(tok string) bool {
	var t Tags
	return t.add(tok)
}

// isResolutionLiteral reports whether w is a raw resolution or 4k, the words dedupeTitle strips.
func isResolutionLiteral(w string) bool {
	lower := strings.ToLower(w)
	return lower == "4k" || slices.Contains(resolutionTokens, lower)
}

// isMarker reports whether tok is excluded from traditional titles.
func isMarker(tok string) bool {
	lower := strings.ToLower(tok)
	return markers[lower] || extTagRegex.MatchString(lower)
}

// extensionOf returns the container named by tok, accepting "ext" and "ext-TAG".
func extensionOf(tok string) (string, bool) {
	lower := strings.ToLower(tok)
	if extensions[lower] {
		return lower, true
	}
	if m := extTagRegex.FindStringSubmatch(lower); m != nil {
		return m[1], true
	}
	return "", false
}

// isTagSeparator reports the runes that split free trailing text into words.
// Hyphens and apostrophes are not separators, so names survive intact.
func isTagSeparator(r rune) bool {
	switch r {
	case '.', '_', '[', ']', '(', ')', ',', '+':
		return true
	}
	return unicode.IsSpace(r)
}

// scanTags collects quality tokens from free text and returns the words that were not tags.
func scanTags(text string, tags *Tags) []string {
	var rest []string
	for _, w := range strings.FieldsFunc(text, isTagSeparator) {
		if !tags.add(w) {
			rest = append(rest, w)
		}
	}
	return rest
}
