package namegen

import (
	"bytes"
	"fmt"
	"iter"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	"pkt.systems/repostamp/schema"
)

var templateFields = []Field{
	{Name: "name", Info: "name template, e.g. lab-{{ .Padded }} (required)"},
	{Name: "description", Info: "description template (default: the name)"},
	{Name: "start", Info: "first number (default 1)"},
	{Name: "width", Info: "digits in .Padded (default 2)"},
}

// TemplateData is the value both templates are executed against.
type TemplateData struct {
	Index  int
	Number int
	Padded string
}

// Template renders names and descriptions with text/template and the sprig functions.
type Template struct {
	name        *template.Template
	description *template.Template
	start       int
	width       int
}

func newTemplate(params map[string]string) (Generator, error) {
	nameText := params["name"]
	if strings.TrimSpace(nameText) == "" {
		return nil, fmt.Errorf("%w: name template is required", schema.ErrInvalidGenerator)
	}
	start, err := intParam(params, "start", 1)
	if err != nil {
		return nil, err
	}
	width, err := intParam(params, "width", 2)
	if err != nil {
		return nil, err
	}
	name, err := parseTemplate("name", nameText)
	if err != nil {
		return nil, err
	}
	var description *template.Template
	if text := params["description"]; text != "" {
		description, err = parseTemplate("description", text)
		if err != nil {
			return nil, err
		}
	}
	gen := &Template{name: name, description: description, start: start, width: width}
	if _, err := gen.render(0); err != nil {
		return nil, err
	}
	return gen, nil
}

func parseTemplate(field, text string) (*template.Template, error) {
	tmpl, err := template.New(field).Funcs(sprig.TxtFuncMap()).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s template: %v", schema.ErrInvalidGenerator, field, err)
	}
	return tmpl, nil
}

// Generate implements Generator. The sequence ends early if a rendered name is not a
// valid repository name.
func (t *Template) Generate() iter.Seq[schema.NamePair] {
	return func(yield func(schema.NamePair) bool) {
		for index := 0; ; index++ {
			pair, err := t.render(index)
			if err != nil {
				return
			}
			if !yield(pair) {
				return
			}
		}
	}
}

func (t *Template) render(index int) (schema.NamePair, error) {
	number := t.start + index
	data := TemplateData{Index: index, Number: number, Padded: pad(number, t.width)}
	name, err := execute(t.name, data)
	if err != nil {
		return schema.NamePair{}, err
	}
	name = strings.TrimSpace(name)
	if err := schema.ValidateRepoName(name); err != nil {
		return schema.NamePair{}, fmt.Errorf("%w: %v", schema.ErrInvalidGenerator, err)
	}
	description := name
	if t.description != nil {
		description, err = execute(t.description, data)
		if err != nil {
			return schema.NamePair{}, err
		}
	}
	return schema.NamePair{Name: name, Description: description}, nil
}

func execute(tmpl *template.Template, data TemplateData) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("%w: render %s template: %v", schema.ErrInvalidGenerator, tmpl.Name(), err)
	}
	return buf.String(), nil
}
