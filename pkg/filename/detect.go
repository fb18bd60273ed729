package filename

import (
	"regexp"
	"strings"
)

// bracketRegex matches "[Site] (Performer) MM-DD-YY <rest>.ext".
var bracketRegex = regexp.MustCompile(
	`^\[\s*([^\]]+?)\s*\]\s*\(\s*([^)]+?)\s*\)\s*(\d{2})-(\d{2})-(\d{2})(.*?)(?:\.([A-Za-z0-9]{2,4}))?$`)

// dashDateRegex matches "Site - Title (DD.MM.YYYY) <rest>.ext".
var dashDateRegex = regexp.MustCompile(
	`^([^-]+?)\s*-\s*(.+?)\s*\((\d{2})\.(\d{2})\.(\d{4})\)(.*?)(?:\.([A-Za-z0-9]{2,4}))?$`)

// parenRegex matches a parenthesized group inside trailing text.
var parenRegex = regexp.MustCompile(`\(([^)]*)\)`)

// minTraditionalTokens is site + three date tokens + at least one title or tag token.
const minTraditionalTokens = 5

// detectors are tried in order; the first match wins. The order matters because
// a bracket or dash entry can also split into enough dot tokens to look traditional.
var detectors = []func(raw string) (Entry, bool){
	detectBracket,
	detectDashDate,
	detectTraditional,
}

// Detect classifies one trimmed entry and extracts its fields.
// Entries matching no rule come back with ShapeInvalid.
func Detect(raw string) Entry {
	raw = strings.TrimSpace(raw)
	for _, detect := range detectors {
		if e, ok := detect(raw); ok {
			return e
		}
	}
	return Entry{Raw: raw, Shape: ShapeInvalid}
}

func detectBracket(raw string) (Entry, bool) {
	m := bracketRegex.FindStringSubmatch(raw)
	if m == nil {
		return Entry{}, false
	}

	e := Entry{
		Raw:       raw,
		Shape:     ShapeBracket,
		Site:      m[1],
		SiteKey:   siteKey(m[1]),
		Date:      [3]string{m[5], m[3], m[4]}, // MM-DD-YY -> YY.MM.DD
	}
	rest, ext := splitSuffix(m[6], m[7])
	e.Extension = ext

	// Parenthesized extras only carry quality hints.
	for _, p := range parenRegex.FindAllStringSubmatch(rest, -1) {
		scanTags(p[1], &e.Tags)
	}

	// Loose words outside the extras extend the performer, minus the XXX marker.
	words := []string{m[2]}
	for _, w := range scanTags(parenRegex.ReplaceAllString(rest, " "), &e.Tags) {
		if strings.EqualFold(w, "xxx") {
			continue
		}
		words = append(words, w)
	}
	e.Title = Capitalize(strings.Join(words, " "))

	return e, true
}

func detectDashDate(raw string) (Entry, bool) {
	m := dashDateRegex.FindStringSubmatch(raw)
	if m == nil {
		return Entry{}, false
	}
	site := strings.TrimSpace(m[1])
	if site == "" {
		return Entry{}, false
	}

	e := Entry{
		Raw:       raw,
		Shape:     ShapeDashDate,
		Site:      site,
		SiteKey:   siteKey(site),
		Title:     Capitalize(m[2]),
		Date:      [3]string{twoDigitYear(m[5]), m[4], m[3]}, // DD.MM.YYYY -> YY.MM.DD
	}
	rest, ext := splitSuffix(m[6], m[7])
	e.Extension = ext

	// Resolution words in the title are stripped on render but still count.
	for _, w := range strings.Fields(m[2]) {
		if isResolutionLiteral(w) {
			e.Tags.add(w)
		}
	}
	// Unrecognized trailing words are dropped.
	scanTags(rest, &e.Tags)

	return e, true
}

func detectTraditional(raw string) (Entry, bool) {
	tokens, shape := splitTraditional(raw)
	if len(tokens) < minTraditionalTokens {
		return Entry{}, false
	}

	e := Entry{
		Raw:     raw,
		Shape:   shape,
		Site:    tokens[0],
		SiteKey: siteKey(tokens[0]),
		Date:    [3]string{tokens[1], tokens[2], tokens[3]},
	}

	var title []string
	for _, tok := range tokens[4:] {
		if ext, ok := extensionOf(tok); ok && e.Extension == "" {
			e.Extension = ext
		}
		if isMarker(tok) {
			e.Tags.add(tok)
			continue
		}
		title = append(title, tok)
	}
	if e.Extension == "" {
		e.Extension = defaultExtension
	}
	e.Title = Capitalize(strings.Join(title, " "))

	return e, true
}

// splitTraditional splits on periods when there are enough of them, otherwise on whitespace.
// In the whitespace form a known extension glued to the last word becomes its own token.
func splitTraditional(raw string) ([]string, Shape) {
	if parts := nonEmpty(strings.Split(raw, ".")); len(parts) > 3 {
		return parts, ShapeTraditionalDot
	}

	fields := strings.Fields(raw)
	if len(fields) <= 3 {
		return nil, ShapeInvalid
	}
	last := fields[len(fields)-1]
	if i := strings.LastIndex(last, "."); i > 0 {
		if _, ok := extensionOf(last[i+1:]); ok {
			fields[len(fields)-1] = last[:i]
			fields = append(fields, last[i+1:])
		}
	}
	return fields, ShapeTraditionalSpace
}

func nonEmpty(parts []string) []string {
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// splitSuffix decides whether the trailing ".suffix" is an extension. A quality token such as
// ".720p" or ".rq" goes back into the rest text and the default extension is used.
func splitSuffix(rest, suffix string) (string, string) {
	if suffix != "" && isQualityToken(suffix) {
		return rest + "." + suffix, defaultExtension
	}
	return rest, explicitExtension(suffix)
}

func explicitExtension(ext string) string {
	if ext == "" {
		return defaultExtension
	}
	return strings.ToLower(ext)
}
