package v1

import (
	"context"
	"errors"
	"log/slog"

	"github.com/vmunix/vidfmt/internal/mappings"
	"github.com/vmunix/vidfmt/pkg/filename"
	"github.com/vmunix/vidfmt/pkg/sites"
)

// ErrMissingDependency is returned when a required dependency is nil.
var ErrMissingDependency = errors.New("missing required dependency")

// MappingService is the part of mappings.Service the API uses.
type MappingService interface {
	Dictionary() *sites.Dictionary
	Status() mappings.Status
	Update(ctx context.Context, entries map[string]string) (mappings.SaveResult, error)
	Supply(ctx context.Context, supplied map[string]string) (mappings.SaveResult, error)
	Export(customOnly bool) map[string]string
}

// ServerDeps contains all dependencies for the API server.
type ServerDeps struct {
	Mappings MappingService   // required
	Format   filename.Options // formatter options for every request
	APIKey   string           // empty disables the X-Api-Key check
	Version  string
	Logger   *slog.Logger
}

// Validate checks that all required dependencies are provided.
func (d ServerDeps) Validate() error {
	if d.Mappings == nil {
		return errors.New("mapping service is required")
	}
	return nil
}
