// Package priority holds the ordered, user-configured list of priority levels.
//
// A [Registry] is configuration, not an enumeration: callers build one from
// whatever levels the user configured and pass it explicitly to the parser,
// the query engine, and the exporters. Position in the list defines rank
// (index 0 is the most urgent level).
package priority

import (
	"errors"
	"fmt"
	"strings"
)

// Registry errors.
var (
	ErrEmptyLevelName = errors.New("priority level name cannot be empty")
	ErrDuplicateLevel = errors.New("duplicate priority level")
)

// Level is a single configured priority level.
type Level struct {
	// Name is the canonical (upper-cased) level name.
	Name string
	// Color is an opaque display hint, usually "#RRGGBB".
	Color string
	// Rank is the level's position in the registry.
	Rank int
}

// Registry is an immutable ordered list of priority levels.
// The zero value is an empty registry.
type Registry struct {
	levels []Level
	rank   map[string]int
}

// Canonical returns the canonical form of a priority name.
func Canonical(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

// NewRegistry builds a registry from levels in rank order. Names are
// canonicalized; Rank fields on the input are ignored and reassigned.
func NewRegistry(levels []Level) (*Registry, error) {
	reg := &Registry{
		levels: make([]Level, 0, len(levels)),
		rank:   make(map[string]int, len(levels)),
	}

	for i, level := range levels {
		name := Canonical(level.Name)
		if name == "" {
			return nil, fmt.Errorf("%w (position %d)", ErrEmptyLevelName, i+1)
		}

		if _, dup := reg.rank[name]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateLevel, name)
		}

		reg.rank[name] = len(reg.levels)
		reg.levels = append(reg.levels, Level{Name: name, Color: level.Color, Rank: len(reg.levels)})
	}

	return reg, nil
}

// DefaultLevels returns the built-in HIGH/MEDIUM/LOW levels.
func DefaultLevels() []Level {
	return []Level{
		{Name: "HIGH", Color: "#DC3232", Rank: 0},
		{Name: "MEDIUM", Color: "#DCA01E", Rank: 1},
		{Name: "LOW", Color: "#50A050", Rank: 2},
	}
}

// Default returns a registry of [DefaultLevels].
func Default() *Registry {
	reg, _ := NewRegistry(DefaultLevels())

	return reg
}

// Levels returns a copy of the levels in rank order.
func (r *Registry) Levels() []Level {
	if r == nil {
		return nil
	}

	out := make([]Level, len(r.levels))
	copy(out, r.levels)

	return out
}

// Len returns the number of configured levels.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}

	return len(r.levels)
}

// Rank returns the position of name in the registry. The lookup is
// case-insensitive. ok is false for names the registry does not know.
func (r *Registry) Rank(name string) (int, bool) {
	if r == nil {
		return 0, false
	}

	idx, ok := r.rank[Canonical(name)]

	return idx, ok
}

// Lookup returns the level with the given name (case-insensitive).
func (r *Registry) Lookup(name string) (Level, bool) {
	idx, ok := r.Rank(name)
	if !ok {
		return Level{}, false
	}

	return r.levels[idx], true
}

// Contains reports whether name is a configured level.
func (r *Registry) Contains(name string) bool {
	_, ok := r.Rank(name)

	return ok
}

// Names returns the canonical level names in rank order.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}

	names := make([]string, len(r.levels))
	for i, level := range r.levels {
		names[i] = level.Name
	}

	return names
}
