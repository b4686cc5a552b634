// Package collab produces per-repository collaborator lists.
package collab

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"pkt.systems/repostamp/schema"
)

// Source yields exactly count collaborator lists, one per repository in creation order.
type Source interface {
	Produce(count int) ([][]string, error)
}

// Field describes one parameter a strategy accepts.
type Field struct {
	Name string
	Info string
}

// Factory builds a source from string parameters.
type Factory func(params map[string]string) (Source, error)

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

// Default returns a registry holding the built-in sources.
func Default() *Registry {
	r := NewRegistry()
	r.Register("none", nil, func(map[string]string) (Source, error) { return None{}, nil })
	r.Register("inline", inlineFields, newInline)
	r.Register("csv", csvFields, newCSV)
	r.Register("round-robin", roundRobinFields, newRoundRobin)
	return r
}

// Register adds or replaces a strategy.
func (r *Registry) Register(name string, fields []Field, factory Factory) {
	r.strategies[strings.ToLower(strings.TrimSpace(name))] = strategy{fields: fields, factory: factory}
}

// Names returns the registered source names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.strategies))
	for name := range r.strategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Fields returns the ordered fields of a source.
func (r *Registry) Fields(name string) ([]Field, error) {
	s, ok := r.strategies[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: unknown source %q", schema.ErrInvalidSource, name)
	}
	return append([]Field(nil), s.fields...), nil
}

// New builds the named source. An empty name selects "none".
func (r *Registry) New(name string, params map[string]string) (Source, error) {
	if strings.TrimSpace(name) == "" {
		name = "none"
	}
	s, ok := r.strategies[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: unknown source %q", schema.ErrInvalidSource, name)
	}
	for key := range params {
		known := false
		for _, f := range s.fields {
			if f.Name == key {
				known = true
				break
			}
		}
		if !known {
			return nil, fmt.Errorf("%w: %s does not accept %q", schema.ErrInvalidSource, name, key)
		}
	}
	return s.factory(params)
}

// None yields empty lists.
type None struct{}

// Produce implements Source.
func (None) Produce(count int) ([][]string, error) {
	if err := checkCount(count); err != nil {
		return nil, err
	}
	return make([][]string, count), nil
}

// fit pads rows with empty lists up to count and rejects sources with more rows.
func fit(rows [][]string, count int) ([][]string, error) {
	if err := checkCount(count); err != nil {
		return nil, err
	}
	if len(rows) > count {
		return nil, fmt.Errorf("%w: %d lists for %d repositories", schema.ErrCollaboratorCount, len(rows), count)
	}
	out := make([][]string, count)
	copy(out, rows)
	return out, nil
}

func checkCount(count int) error {
	if count < 0 {
		return fmt.Errorf("%w: %d", schema.ErrInvalidCount, count)
	}
	return nil
}

func splitLogins(value string) []string {
	var logins []string
	for _, part := range strings.Split(value, ",") {
		if login := strings.TrimSpace(part); login != "" {
			logins = append(logins, login)
		}
	}
	return logins
}

func positiveParam(params map[string]string, key string, fallback int) (int, error) {
	raw := strings.TrimSpace(params[key])
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return 0, fmt.Errorf("%w: %s must be a positive integer, got %q", schema.ErrInvalidSource, key, params[key])
	}
	return value, nil
}
