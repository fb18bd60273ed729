// Package prompt asks a person for the display names of unmapped site keys and for
// the policy to apply to conflicting imports.
package prompt

import (
	"context"
	"errors"

	"github.com/vmunix/vidfmt/pkg/filename"
	"github.com/vmunix/vidfmt/pkg/sites"
)

// ErrAborted is returned when the person cancels a prompt or input ends early.
var ErrAborted = errors.New("prompt aborted")

// Prompter is the interactive side of the escalation round trip.
type Prompter interface {
	// SiteNames returns a display name for every key in esc.Keys.
	SiteNames(ctx context.Context, esc *filename.EscalationError) (map[string]string, error)
	// Conflict picks the policy for one key whose imported name differs from the existing one.
	Conflict(key, existing, imported string) (sites.ConflictPolicy, error)
}
