// Package store persists the custom site mappings, locally in SQLite and optionally
// on a remote document store.
package store

//go:generate mockgen -destination=mocks/mock_store.go -package=mocks github.com/vmunix/vidfmt/internal/store Store

import (
	"context"
	"errors"
)

var (
	// ErrUnavailable means the store could not be reached or answered with a server error.
	ErrUnavailable = errors.New("store unavailable")
	// ErrRejected means the store refused the request.
	ErrRejected = errors.New("store rejected request")
)

// Store loads and saves the custom mapping subset as one document.
type Store interface {
	// Load returns the saved mappings. A store that has never been written returns an empty map.
	Load(ctx context.Context) (map[string]string, error)
	// Save replaces the saved mappings.
	Save(ctx context.Context, mappings map[string]string) error
}
