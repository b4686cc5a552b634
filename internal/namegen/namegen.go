// Package namegen produces lazy sequences of repository name and description pairs.
package namegen

import (
	"fmt"
	"iter"
	"sort"
	"strconv"
	"strings"

	"pkt.systems/repostamp/schema"
)

// Generator yields name pairs. Each call to Generate starts a new sequence from the
// configured start; sequences are unbounded and the consumer decides how many to take.
type Generator interface {
	Generate() iter.Seq[schema.NamePair]
}

// Field describes one parameter a strategy accepts.
type Field struct {
	Name string
	Info string
}

// Factory builds a generator from string parameters.
type Factory func(params map[string]string) (Generator, error)

type strategy struct {
	fields  []Field
	factory Factory
}

// Registry maps strategy names to their fields and factories.
type Registry struct {
	strategies map[string]strategy
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{strategies: make(map[string]strategy)}
}

// Default returns a registry holding the built-in strategies.
func Default() *Registry {
	r := NewRegistry()
	r.Register("groups", groupsFields, newGroups)
	r.Register("prefix", prefixFields, newPrefix)
	r.Register("template", templateFields, newTemplate)
	return r
}

// Register adds or replaces a strategy.
func (r *Registry) Register(name string, fields []Field, factory Factory) {
	r.strategies[strings.ToLower(strings.TrimSpace(name))] = strategy{fields: fields, factory: factory}
}

// Names returns the registered strategy names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.strategies))
	for name := range r.strategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Fields returns the ordered fields of a strategy.
func (r *Registry) Fields(name string) ([]Field, error) {
	s, ok := r.lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: unknown strategy %q", schema.ErrInvalidGenerator, name)
	}
	return append([]Field(nil), s.fields...), nil
}

// New builds the named strategy. Parameters not declared by the strategy are rejected.
func (r *Registry) New(name string, params map[string]string) (Generator, error) {
	s, ok := r.lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: unknown strategy %q", schema.ErrInvalidGenerator, name)
	}
	for key := range params {
		if !hasField(s.fields, key) {
			return nil, fmt.Errorf("%w: %s does not accept %q", schema.ErrInvalidGenerator, name, key)
		}
	}
	gen, err := s.factory(params)
	if err != nil {
		return nil, err
	}
	return gen, nil
}

func (r *Registry) lookup(name string) (strategy, bool) {
	s, ok := r.strategies[strings.ToLower(strings.TrimSpace(name))]
	return s, ok
}

func hasField(fields []Field, name string) bool {
	for _, f := range fields {
		if f.Name == name {
			return true
		}
	}
	return false
}

func intParam(params map[string]string, key string, fallback int) (int, error) {
	raw, ok := params[key]
	if !ok || strings.TrimSpace(raw) == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer, got %q", schema.ErrInvalidGenerator, key, raw)
	}
	if value < 0 {
		return 0, fmt.Errorf("%w: %s must not be negative", schema.ErrInvalidGenerator, key)
	}
	return value, nil
}

// pad left-pads n with zeros to width digits. Wider numbers are returned unchanged.
func pad(n, width int) string {
	return fmt.Sprintf("%0*d", width, n)
}
