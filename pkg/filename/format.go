package filename

import (
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/unicode/norm"
)

// NoValidInput is what hosts show when an input has no entries at all.
const NoValidInput = "No valid input provided."

const invalidPrefix = "[Error] Invalid filename format: "

// SiteResolver looks up display names by site key.
type SiteResolver interface {
	Resolve(key string) (string, bool)
}

// Suggester proposes known keys resembling an unmapped one.
// Resolvers that also implement it get suggestions attached to escalations.
type Suggester interface {
	Suggest(key string, limit int) []string
}

// maxSuggestions caps the suggestions offered per unmapped key.
const maxSuggestions = 3

// EscalationError is returned when a batch names sites the dictionary does not know.
// Nothing is rendered; the caller supplies display names and retries with Input.
type EscalationError struct {
	Keys        []string            // unmapped keys in first-seen order
	Input       string              // the input as given, for the retry
	Suggestions map[string][]string // advisory near matches per key
}

func (e *EscalationError) Error() string {
	return fmt.Sprintf("unmapped site keys: %s", strings.Join(e.Keys, ", "))
}

// Options tunes a Formatter.
type Options struct {
	// Workers bounds parallel detection and rendering. Values below 2 run sequentially.
	Workers int
	// AllowUnmapped renders unknown sites with a capitalized key instead of escalating.
	AllowUnmapped bool
}

// Line is the rendered result for one entry.
type Line struct {
	Input  string `json:"input"`
	Output string `json:"output"`
	Shape  Shape  `json:"shape"`
	Valid  bool   `json:"valid"`
}

// Result is a rendered batch.
type Result struct {
	Lines    []Line
	Unmapped []string // keys rendered with the fallback name (AllowUnmapped only)
}

// String joins the rendered lines in input order.
func (r *Result) String() string {
	out := make([]string, len(r.Lines))
	for i, l := range r.Lines {
		out[i] = l.Output
	}
	return strings.Join(out, "\n")
}

// Formatter turns multi-entry input into canonical filenames.
type Formatter struct {
	sites SiteResolver
	opts  Options
}

// New creates a Formatter that resolves site names through sites.
func New(sites SiteResolver, opts Options) *Formatter {
	return &Formatter{sites: sites, opts: opts}
}

// Format renders every entry of input, one line each, joined by newlines.
// Empty input yields an empty string. Unknown site keys yield an *EscalationError.
func (f *Formatter) Format(input string) (string, error) {
	res, err := f.FormatEntries(input)
	if err != nil {
		return "", err
	}
	return res.String(), nil
}

// FormatEntries is Format with the per-entry results kept apart.
func (f *Formatter) FormatEntries(input string) (*Result, error) {
	raws := SplitEntries(input)
	if len(raws) == 0 {
		return &Result{}, nil
	}

	entries := make([]Entry, len(raws))
	f.each(len(raws), func(i int) {
		entries[i] = Detect(raws[i])
	})

	// Every entry is detected before any is rendered.
	unmapped := f.unmappedKeys(entries)
	if len(unmapped) > 0 && !f.opts.AllowUnmapped {
		return nil, f.escalate(unmapped, input)
	}

	lines := make([]Line, len(entries))
	f.each(len(entries), func(i int) {
		lines[i] = f.render(entries[i])
	})

	res := &Result{Lines: lines}
	if f.opts.AllowUnmapped {
		res.Unmapped = unmapped
	}
	return res, nil
}

// SplitEntries splits input on commas and newlines, trimming and dropping empty segments.
func SplitEntries(input string) []string {
	input = norm.NFC.String(input)
	segments := strings.FieldsFunc(input, func(r rune) bool {
		return r == ',' || r == '\n'
	})
	out := segments[:0]
	for _, s := range segments {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func (f *Formatter) render(e Entry) Line {
	line := Line{Input: e.Raw, Shape: e.Shape, Valid: e.Valid()}
	if !e.Valid() {
		line.Output = invalidPrefix + e.Raw
		return line
	}

	site, ok := f.sites.Resolve(e.SiteKey)
	if !ok {
		site = fallbackSiteName(e.Site)
	}

	resolution := e.Tags.Resolution()
	var tail []string
	if title := dedupeTitle(e.Title, resolution); title != "" {
		tail = append(tail, title)
	}
	if quality := resolution + e.Tags.Suffix(); quality != "" {
		tail = append(tail, quality)
	}

	var b strings.Builder
	b.WriteString("[" + site + "] - ")
	b.WriteString(e.DateString())
	if e.spaceDated() {
		b.WriteString(" ")
	} else {
		b.WriteString(" - ")
	}
	b.WriteString(strings.Join(tail, " "))
	b.WriteString("." + e.Extension)

	line.Output = b.String()
	return line
}

// unmappedKeys returns site keys absent from the dictionary, de-duplicated in first-seen order.
func (f *Formatter) unmappedKeys(entries []Entry) []string {
	var keys []string
	seen := make(map[string]bool)
	for _, e := range entries {
		if !e.Valid() || seen[e.SiteKey] {
			continue
		}
		seen[e.SiteKey] = true
		if _, ok := f.sites.Resolve(e.SiteKey); !ok {
			keys = append(keys, e.SiteKey)
		}
	}
	return keys
}

func (f *Formatter) escalate(keys []string, input string) *EscalationError {
	esc := &EscalationError{Keys: keys, Input: input}
	if s, ok := f.sites.(Suggester); ok {
		esc.Suggestions = make(map[string][]string)
		for _, k := range keys {
			if hits := s.Suggest(k, maxSuggestions); len(hits) > 0 {
				esc.Suggestions[k] = hits
			}
		}
	}
	return esc
}

// each runs fn for every index, in parallel when Workers allows it.
// Entries share no state, so each index only touches its own slot.
func (f *Formatter) each(n int, fn func(i int)) {
	if f.opts.Workers < 2 || n < 2 {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}

	var g errgroup.Group
	g.SetLimit(f.opts.Workers)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			fn(i)
			return nil
		})
	}
	_ = g.Wait()
}
