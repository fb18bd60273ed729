package sites

import (
	"cmp"
	"slices"

	"github.com/hbollon/go-edlib"
)

// suggestThreshold is the minimum Jaro-Winkler similarity for a suggestion.
const suggestThreshold = 0.85

type scored struct {
	key   string
	score float32
}

// Suggest returns up to limit known keys that look like key, best match first.
// Jaro-Winkler favors shared prefixes, which suits site keys ("julesjordan" vs "julesjorder").
func (d *Dictionary) Suggest(key string, limit int) []string {
	key = NormalizeKey(key)
	if key == "" || limit <= 0 {
		return nil
	}

	d.mu.RLock()
	var hits []scored
	for k := range d.live {
		if k == key {
			continue
		}
		if s := edlib.JaroWinklerSimilarity(key, k); s >= suggestThreshold {
			hits = append(hits, scored{key: k, score: s})
		}
	}
	d.mu.RUnlock()

	slices.SortFunc(hits, func(a, b scored) int {
		if c := cmp.Compare(b.score, a.score); c != 0 {
			return c
		}
		return cmp.Compare(a.key, b.key)
	})

	out := make([]string, 0, min(limit, len(hits)))
	for _, h := range hits {
		if len(out) == limit {
			break
		}
		out = append(out, h.key)
	}
	return out
}
