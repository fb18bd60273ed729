// Package mappings owns the live site dictionary and keeps it in sync with local and remote storage.
package mappings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/vmunix/vidfmt/internal/store"
	"github.com/vmunix/vidfmt/pkg/sites"
)

var (
	// ErrIncompleteMapping is returned for a row with an empty key or an empty display name.
	ErrIncompleteMapping = errors.New("mapping needs both a site key and a display name")
	// ErrBuiltinKey is returned when removing a key that only exists in the built-in table.
	ErrBuiltinKey = errors.New("built-in site keys cannot be removed")
	// ErrUnknownKey is returned when removing a key that is not mapped at all.
	ErrUnknownKey = errors.New("site key not mapped")
)

// Status describes where the current mappings came from.
type Status string

const (
	StatusLocal   Status = "local"   // no remote store configured
	StatusOnline  Status = "online"  // last remote call succeeded
	StatusOffline Status = "offline" // last remote call failed; local copy in use
)

// SaveResult reports which stores accepted a save.
type SaveResult struct {
	Local  bool `json:"local"`
	Remote bool `json:"remote"`
}

// Service coordinates the dictionary with its stores. Writes are serialized.
type Service struct {
	dict   *sites.Dictionary
	local  store.Store
	remote store.Store // nil when no remote store is configured
	logger *slog.Logger

	mu     sync.Mutex
	status atomic.Value // Status
}

// New creates a service. remote may be nil.
func New(dict *sites.Dictionary, local, remote store.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		dict:   dict,
		local:  local,
		remote: remote,
		logger: logger.With("component", "mappings"),
	}
	s.status.Store(StatusLocal)
	return s
}

// Dictionary returns the live dictionary.
func (s *Service) Dictionary() *sites.Dictionary {
	return s.dict
}

// Status returns the persistence status.
func (s *Service) Status() Status {
	return s.status.Load().(Status)
}

// Load reads the custom mappings, local first and then remote. A successful remote load wins
// and is cached locally. Failures never surface: malformed or unreadable data is logged and
// the dictionary keeps its last good state, falling back to built-ins only.
func (s *Service) Load(ctx context.Context) Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	custom, err := s.local.Load(ctx)
	switch {
	case errors.Is(err, sites.ErrMalformed):
		s.logger.Warn("discarding malformed local mappings", "error", err)
		custom = map[string]string{}
	case err != nil:
		s.logger.Warn("local mappings unavailable", "error", err)
	}
	if err == nil || errors.Is(err, sites.ErrMalformed) {
		s.dict.ReplaceCustom(custom)
	}

	if s.remote == nil {
		s.status.Store(StatusLocal)
		return StatusLocal
	}

	remote, err := s.remote.Load(ctx)
	switch {
	case errors.Is(err, sites.ErrMalformed):
		s.logger.Warn("discarding malformed remote mappings", "error", err)
		s.status.Store(StatusOnline)
		return StatusOnline
	case err != nil:
		s.logger.Warn("remote mappings unavailable, using local copy", "error", err)
		s.status.Store(StatusOffline)
		return StatusOffline
	}

	s.dict.ReplaceCustom(remote)
	s.status.Store(StatusOnline)
	if err := s.local.Save(ctx, s.dict.Custom()); err != nil {
		s.logger.Warn("caching remote mappings locally failed", "error", err)
	}
	s.logger.Debug("mappings loaded", "custom", len(remote), "source", "remote")
	return StatusOnline
}

// Update makes entries the complete desired mapping. Only the entries that differ from the
// built-in table are kept as custom mappings. The local save error is returned; the remote
// save is best-effort and reported in SaveResult.
func (s *Service) Update(ctx context.Context, entries map[string]string) (SaveResult, error) {
	if err := validate(entries); err != nil {
		return SaveResult{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.replace(ctx, sites.DiffFromBuiltin(entries))
}

// Supply merges display names for previously unmapped keys into the custom mappings.
func (s *Service) Supply(ctx context.Context, supplied map[string]string) (SaveResult, error) {
	if err := validate(supplied); err != nil {
		return SaveResult{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.dict.MergeCustom(supplied)
	return s.replace(ctx, sites.DiffFromBuiltin(s.dict.Custom()))
}

// Remove deletes a custom mapping. Removing an override of a built-in key restores the built-in name.
func (s *Service) Remove(ctx context.Context, key string) (SaveResult, error) {
	key = sites.NormalizeKey(key)

	s.mu.Lock()
	defer s.mu.Unlock()

	custom := s.dict.Custom()
	if _, ok := custom[key]; !ok {
		if sites.IsBuiltin(key) {
			return SaveResult{}, fmt.Errorf("%w: %s", ErrBuiltinKey, key)
		}
		return SaveResult{}, fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	delete(custom, key)
	return s.replace(ctx, custom)
}

// Import merges imported mappings into the live dictionary, settling conflicts with resolve.
func (s *Service) Import(ctx context.Context, imported map[string]string, resolve sites.ConflictResolver) (SaveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	merged, err := sites.Import(s.dict.All(), imported, resolve)
	if err != nil {
		return SaveResult{}, fmt.Errorf("import: %w", err)
	}
	return s.replace(ctx, sites.DiffFromBuiltin(merged))
}

// Export returns the live mapping, or only the custom subset when customOnly is set.
func (s *Service) Export(customOnly bool) map[string]string {
	if customOnly {
		return s.dict.Custom()
	}
	return s.dict.All()
}

// replace installs custom and persists it. Callers hold mu.
func (s *Service) replace(ctx context.Context, custom map[string]string) (SaveResult, error) {
	s.dict.ReplaceCustom(custom)
	custom = s.dict.Custom()

	var res SaveResult
	if err := s.local.Save(ctx, custom); err != nil {
		return res, fmt.Errorf("save local mappings: %w", err)
	}
	res.Local = true

	if s.remote == nil {
		return res, nil
	}
	if err := s.remote.Save(ctx, custom); err != nil {
		s.logger.Warn("remote save failed, mappings kept locally", "error", err)
		s.status.Store(StatusOffline)
		return res, nil
	}
	res.Remote = true
	s.status.Store(StatusOnline)
	return res, nil
}

func validate(entries map[string]string) error {
	for k, v := range entries {
		if strings.TrimSpace(k) == "" || strings.TrimSpace(v) == "" {
			return fmt.Errorf("%w: %q -> %q", ErrIncompleteMapping, k, v)
		}
	}
	return nil
}
