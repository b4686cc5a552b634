package namegen

import (
	"fmt"
	"iter"

	"pkt.systems/repostamp/schema"
)

var prefixFields = []Field{
	{Name: "prefix", Info: "name prefix (required)"},
	{Name: "start", Info: "first number (default 1)"},
	{Name: "width", Info: "zero padded digits (default 2)"},
	{Name: "description", Info: "description for every repository (default: the name)"},
}

// Prefix yields prefix followed by a zero padded counter.
type Prefix struct {
	Prefix      string
	Start       int
	Width       int
	Description string
}

func newPrefix(params map[string]string) (Generator, error) {
	prefix := params["prefix"]
	if prefix == "" {
		return nil, fmt.Errorf("%w: prefix is required", schema.ErrInvalidGenerator)
	}
	start, err := intParam(params, "start", 1)
	if err != nil {
		return nil, err
	}
	width, err := intParam(params, "width", 2)
	if err != nil {
		return nil, err
	}
	if err := schema.ValidateRepoName(prefix + pad(start, width)); err != nil {
		return nil, fmt.Errorf("%w: %v", schema.ErrInvalidGenerator, err)
	}
	return Prefix{Prefix: prefix, Start: start, Width: width, Description: params["description"]}, nil
}

// Generate implements Generator.
func (p Prefix) Generate() iter.Seq[schema.NamePair] {
	return func(yield func(schema.NamePair) bool) {
		for n := p.Start; ; n++ {
			name := p.Prefix + pad(n, p.Width)
			description := p.Description
			if description == "" {
				description = name
			}
			if !yield(schema.NamePair{Name: name, Description: description}) {
				return
			}
		}
	}
}
