package sites

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
)

// ConflictPolicy decides what happens when an imported key already has a different name.
type ConflictPolicy int

const (
	// KeepBoth keeps the existing name and stores the imported one under the next free "key-N".
	KeepBoth ConflictPolicy = iota
	// Replace overwrites the existing name.
	Replace
	// MergeExistingNew stores "existing imported".
	MergeExistingNew
	// MergeNewExisting stores "imported existing".
	MergeNewExisting
)

var policyNames = map[ConflictPolicy]string{
	KeepBoth:         "keep-both",
	Replace:          "replace",
	MergeExistingNew: "merge-existing-new",
	MergeNewExisting: "merge-new-existing",
}

func (p ConflictPolicy) String() string {
	if s, ok := policyNames[p]; ok {
		return s
	}
	return "unknown"
}

// ParsePolicy parses a policy name such as "replace" or "merge-new-existing".
func ParsePolicy(s string) (ConflictPolicy, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for p, name := range policyNames {
		if name == s {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown conflict policy %q (want keep-both, replace, merge-existing-new or merge-new-existing)", s)
}

// ConflictResolver picks a policy for one conflicting key.
type ConflictResolver func(key, existing, imported string) (ConflictPolicy, error)

// Always returns a resolver that applies p to every conflict.
func Always(p ConflictPolicy) ConflictResolver {
	return func(string, string, string) (ConflictPolicy, error) {
		return p, nil
	}
}

// Import merges imported entries into existing and returns the combined mapping.
// Keys present on both sides with different names are settled by resolve.
// Neither input is modified.
func Import(existing, imported map[string]string, resolve ConflictResolver) (map[string]string, error) {
	out := Normalize(existing)
	incoming := Normalize(imported)

	for _, key := range slices.Sorted(maps.Keys(incoming)) {
		name := incoming[key]
		current, ok := out[key]
		if !ok || current == name {
			out[key] = name
			continue
		}

		policy, err := resolve(key, current, name)
		if err != nil {
			return nil, fmt.Errorf("resolve %q: %w", key, err)
		}
		switch policy {
		case Replace:
			out[key] = name
		case MergeExistingNew:
			out[key] = current + " " + name
		case MergeNewExisting:
			out[key] = name + " " + current
		case KeepBoth:
			out[freeKey(out, key)] = name
		default:
			return nil, fmt.Errorf("resolve %q: unknown policy %d", key, policy)
		}
	}
	return out, nil
}

// freeKey returns the first "key-N" (N >= 2) not present in m.
func freeKey(m map[string]string, key string) string {
	for n := 2; ; n++ {
		candidate := key + "-" + strconv.Itoa(n)
		if _, taken := m[candidate]; !taken {
			return candidate
		}
	}
}
