// Package params holds the normalized two-level parameter structure fed to
// the namelist serializer, together with the case-folding normalizer and the
// reserved-key guard that run before any plugin value is injected.
//
// Normalization fixes one canonical case per level: section names are
// upper-cased and key names are lower-cased. Lookups against the tree are
// therefore case-insensitive from the caller's perspective while the rendered
// output stays deterministic.
package params

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/calcforge/uscfprep/internal/errors"
)

// Section maps lower-cased key names to scalar or list-of-scalar values.
type Section map[string]any

// Tree maps upper-cased section names to their sections.
type Tree map[string]Section

// ReservedKey is a (section, key) pair the plugin computes itself. A reserved
// key found in user input is a fatal error, never an overwrite.
type ReservedKey struct {
	Section string
	Key     string
}

// Und-locale casers keep folding locale-independent, so the same input always
// produces the same tree bytes.
var (
	upper = cases.Upper(language.Und)
	lower = cases.Lower(language.Und)
)

// FoldSection returns the canonical form of a section name.
func FoldSection(name string) string { return upper.String(name) }

// FoldKey returns the canonical form of a key name.
func FoldKey(name string) string { return lower.String(name) }

// Normalize builds a Tree from a raw two-level mapping: section names
// upper-cased, key names within each section lower-cased. Two distinct input
// keys folding to the same canonical key are a validation error naming the
// offending mapping. The input is not modified.
func Normalize(raw map[string]map[string]any) (Tree, error) {
	folded, err := foldKeys(raw, FoldSection, "parameters")
	if err != nil {
		return nil, err
	}

	tree := make(Tree, len(folded))
	for section, entries := range folded {
		keys, err := foldKeys(entries, FoldKey, section)
		if err != nil {
			return nil, err
		}
		tree[section] = keys
	}

	return tree, nil
}

// UppercaseKeys folds the keys of a one-level mapping to upper case, with the
// same collision detection as Normalize. Used for the settings mapping.
func UppercaseKeys(raw map[string]any, name string) (map[string]any, error) {
	return foldKeys(raw, upper.String, name)
}

func foldKeys[V any](raw map[string]V, fold func(string) string, name string) (map[string]V, error) {
	out := make(map[string]V, len(raw))
	for k, v := range raw {
		out[fold(k)] = v
	}
	if len(out) != len(raw) {
		return nil, errors.KeyCollision(name, strings.Join(duplicatedKeys(raw, fold), ","))
	}

	return out, nil
}

// duplicatedKeys returns, sorted, every folded key produced by more than one
// input key.
func duplicatedKeys[V any](raw map[string]V, fold func(string) string) []string {
	counts := make(map[string]int, len(raw))
	for k := range raw {
		counts[fold(k)]++
	}

	var doubled []string
	for k, n := range counts {
		if n > 1 {
			doubled = append(doubled, k)
		}
	}
	sort.Strings(doubled)

	return doubled
}

// CheckReserved fails on the first reserved pair already present in the tree.
// The reserved table is scanned in order, so the reported pair is
// deterministic. Must run before any computed value is injected.
func CheckReserved(tree Tree, reserved []ReservedKey) error {
	for _, rk := range reserved {
		if section, ok := tree[rk.Section]; ok {
			if _, ok := section[rk.Key]; ok {
				return errors.ReservedKeyConflict(rk.Section, rk.Key)
			}
		}
	}

	return nil
}

// Clone returns a deep copy of the tree's structure. Values are shared; they
// are treated as immutable scalars throughout preparation.
func (t Tree) Clone() Tree {
	out := make(Tree, len(t))
	for name, section := range t {
		copied := make(Section, len(section))
		for k, v := range section {
			copied[k] = v
		}
		out[name] = copied
	}

	return out
}

// Set stores a value under the canonical form of section and key, creating
// the section if needed.
func (t Tree) Set(section, key string, value any) {
	name := FoldSection(section)
	if t[name] == nil {
		t[name] = make(Section)
	}
	t[name][FoldKey(key)] = value
}

// Lookup fetches a value by section and key, folding both to canonical case.
func (t Tree) Lookup(section, key string) (any, bool) {
	entries, ok := t[FoldSection(section)]
	if !ok {
		return nil, false
	}
	v, ok := entries[FoldKey(key)]

	return v, ok
}

// SectionNames returns the tree's section names in ascending order.
func (t Tree) SectionNames() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}
