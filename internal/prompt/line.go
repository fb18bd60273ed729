package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/vmunix/vidfmt/pkg/filename"
	"github.com/vmunix/vidfmt/pkg/sites"
)

// Line prompts one question per line. It works over pipes and is what non-terminal sessions use.
type Line struct {
	in  *bufio.Reader
	out io.Writer
}

// NewLine creates a line prompter reading answers from in and writing questions to out.
func NewLine(in io.Reader, out io.Writer) *Line {
	return &Line{in: bufio.NewReader(in), out: out}
}

// SiteNames asks for each unmapped key in order, repeating the question until a name is given.
func (l *Line) SiteNames(ctx context.Context, esc *filename.EscalationError) (map[string]string, error) {
	fmt.Fprintf(l.out, "%d site key(s) have no display name.\n", len(esc.Keys))

	names := make(map[string]string, len(esc.Keys))
	for _, key := range esc.Keys {
		question := fmt.Sprintf("Display name for %q", key)
		if hits := esc.Suggestions[key]; len(hits) > 0 {
			question += fmt.Sprintf(" (similar: %s)", strings.Join(hits, ", "))
		}

		for {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			fmt.Fprint(l.out, question+": ")
			answer, err := l.readLine()
			if err != nil {
				return nil, err
			}
			if answer != "" {
				names[key] = answer
				break
			}
			fmt.Fprintln(l.out, "A display name is required.")
		}
	}
	return names, nil
}

var conflictChoices = map[string]sites.ConflictPolicy{
	"k": sites.KeepBoth,
	"r": sites.Replace,
	"e": sites.MergeExistingNew,
	"n": sites.MergeNewExisting,
}

// Conflict asks which policy settles one conflicting key. Single letters and full policy names are accepted.
func (l *Line) Conflict(key, existing, imported string) (sites.ConflictPolicy, error) {
	fmt.Fprintf(l.out, "Conflict for %q: existing %q, imported %q\n", key, existing, imported)
	for {
		fmt.Fprint(l.out, "[k]eep both, [r]eplace, merge [e]xisting+new, merge [n]ew+existing: ")
		answer, err := l.readLine()
		if err != nil {
			return 0, err
		}
		answer = strings.ToLower(answer)
		if p, ok := conflictChoices[answer]; ok {
			return p, nil
		}
		if p, err := sites.ParsePolicy(answer); err == nil {
			return p, nil
		}
		fmt.Fprintf(l.out, "Unknown choice %q.\n", answer)
	}
}

// readLine returns the next trimmed line. End of input before any text is ErrAborted.
func (l *Line) readLine() (string, error) {
	line, err := l.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSpace(line), nil
		}
		if errors.Is(err, io.EOF) {
			return "", ErrAborted
		}
		return "", fmt.Errorf("reading answer: %w", err)
	}
	return strings.TrimSpace(line), nil
}
