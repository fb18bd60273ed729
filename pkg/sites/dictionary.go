// Package sites maps short site keys found in filenames to display names.
package sites

import (
	"maps"
	"slices"
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// builtin is the default table. It is never mutated; customizations overlay it.
var builtin = map[string]string{
	"anilos":            "Anilos",
	"analvids":          "AnalVids",
	"btb":               "BigTitsBoss",
	"blacksonblondes":   "BlacksOnBlondes",
	"brazzersexxtra":    "BrazzersExxtra",
	"brattymilf":        "BrattyMILF",
	"brattysis":         "BrattySis",
	"clubsweethearts":   "ClubSweethearts",
	"clips4sale":        "Clips4Sale",
	"dirtyauditions":    "DirtyAuditions",
	"dorcelclub":        "DorcelClub",
	"evilangel":         "EvilAngel",
	"exploitedteens":    "ExploitedTeens",
	"familyxxx":         "FamilyXXX",
	"hookuphotshot":     "HookupHotshot",
	"julesjorder":       "JulesJordan",
	"loan4k":            "Loan4K",
	"maturenl":          "MatureNL",
	"mysisterhotfriend": "MySistersHotFriend",
	"mydirtyhobby":      "MyDirtyHobby",
	"mypervyfamily":     "MyPervyFamily",
	"nublies":           "Nubiles",
	"onlyfans":          "OnlyFans",
	"pornbox":           "PornBox",
	"pornfidelity":      "PornFidelity",
	"pornmegaload":      "PornMegaLoad",
	"pornworld":         "PornWorld",
	"povmasters":        "POVMasters",
	"sexart":            "SexArt",
	"sexmex":            "SexMex",
	"swallowed":         "Swallowed",
	"thepovgod":         "ThePOVGod",
	"youthlust":         "YouthLust",
}

// Builtin returns a copy of the default table.
func Builtin() map[string]string {
	return maps.Clone(builtin)
}

// IsBuiltin reports whether key is part of the default table.
func IsBuiltin(key string) bool {
	_, ok := builtin[NormalizeKey(key)]
	return ok
}

// Entry is one key/name pair.
type Entry struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

// NormalizeKey trims and lowercases a site key.
func NormalizeKey(key string) string {
	return cases.Lower(language.Und).String(strings.TrimSpace(key))
}

// Normalize returns entries with keys normalized and values trimmed.
// Pairs left with an empty key or name are dropped.
func Normalize(entries map[string]string) map[string]string {
	out := make(map[string]string, len(entries))
	for k, v := range entries {
		k, v = NormalizeKey(k), strings.TrimSpace(v)
		if k == "" || v == "" {
			continue
		}
		out[k] = v
	}
	return out
}

// DiffFromBuiltin returns the entries whose key is not built in or whose name differs
// from the built-in one. This is the subset worth persisting.
func DiffFromBuiltin(entries map[string]string) map[string]string {
	out := make(map[string]string)
	for k, v := range Normalize(entries) {
		if def, ok := builtin[k]; ok && def == v {
			continue
		}
		out[k] = v
	}
	return out
}

// Dictionary is the live mapping: the built-in table overlaid by custom entries.
// It is safe for concurrent use.
type Dictionary struct {
	mu     sync.RWMutex
	custom map[string]string
	live   map[string]string
}

// New creates a dictionary holding only the built-in table.
func New() *Dictionary {
	d := &Dictionary{custom: make(map[string]string)}
	d.rebuild()
	return d
}

// Resolve looks up a display name. The key is matched case-insensitively.
func (d *Dictionary) Resolve(key string) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	name, ok := d.live[NormalizeKey(key)]
	return name, ok
}

// MergeCustom inserts or overwrites custom entries.
func (d *Dictionary) MergeCustom(entries map[string]string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	maps.Copy(d.custom, Normalize(entries))
	d.rebuild()
}

// ReplaceCustom discards all custom entries and installs entries in their place.
func (d *Dictionary) ReplaceCustom(entries map[string]string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.custom = Normalize(entries)
	d.rebuild()
}

// Custom returns a copy of the custom entries.
func (d *Dictionary) Custom() map[string]string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return maps.Clone(d.custom)
}

// All returns a copy of the live mapping.
func (d *Dictionary) All() map[string]string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return maps.Clone(d.live)
}

// Entries returns the live mapping sorted by key.
func (d *Dictionary) Entries() []Entry {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]Entry, 0, len(d.live))
	for _, k := range slices.Sorted(maps.Keys(d.live)) {
		out = append(out, Entry{Key: k, Name: d.live[k]})
	}
	return out
}

// Len returns the number of live entries.
func (d *Dictionary) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.live)
}

// rebuild recomputes live as builtin ∪ custom. Callers hold mu.
func (d *Dictionary) rebuild() {
	live := maps.Clone(builtin)
	maps.Copy(live, d.custom)
	d.live = live
}
