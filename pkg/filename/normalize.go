package filename

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Capitalize uppercases the first letter of every whitespace-separated word.
// The rest of each word keeps its original casing ("McKenzie" stays "McKenzie").
func Capitalize(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = capitalizeWord(w)
	}
	return strings.Join(words, " ")
}

func capitalizeWord(w string) string {
	r, size := utf8.DecodeRuneInString(w)
	if r == utf8.RuneError {
		return w
	}
	return string(unicode.ToUpper(r)) + w[size:]
}

// dedupeTitle drops resolution words left inside a title so they are not rendered twice.
// Words are compared case-insensitively against the chosen resolution, each raw
// resolution literal, and "4k".
func dedupeTitle(title, resolution string) string {
	words := strings.Fields(title)
	kept := words[:0]
	for _, w := range words {
		if isResolutionWord(w, resolution) {
			continue
		}
		kept = append(kept, w)
	}
	return strings.Join(kept, " ")
}

func isResolutionWord(w, resolution string) bool {
	if resolution != "" && strings.EqualFold(w, resolution) {
		return true
	}
	return isResolutionLiteral(w)
}

// siteKey derives the dictionary key from a site as written: lowercase, no whitespace.
func siteKey(site string) string {
	return strings.Join(strings.Fields(strings.ToLower(site)), "")
}

// fallbackSiteName is used for sites missing from the dictionary.
func fallbackSiteName(site string) string {
	return capitalizeWord(strings.TrimSpace(site))
}

// twoDigitYear truncates a four-digit year to its last two digits.
func twoDigitYear(year string) string {
	if len(year) <= 2 {
		return year
	}
	return year[len(year)-2:]
}
