package inject

import (
	"fmt"
	"os"
	"strings"
	"text/template"
)

// Data passed to the definition template for one shader
type Definition struct {
	Symbol string
	Path   string
	Source string
}

// Create Definition for a record by reading and escaping its shader file
func NewDefinition(rec Record) (Definition, error) {
	src, err := os.ReadFile(rec.Path)
	if err != nil {
		return Definition{}, fmt.Errorf("read shader %q: %w", rec.Path, err)
	}
	return Definition{
		Symbol: rec.Symbol,
		Path:   rec.Path,
		Source: Escape(string(src)),
	}, nil
}

func parseTemplate(name, source string) (*template.Template, error) {
	tmpl, err := template.New(name).Parse(source)
	if err != nil {
		return nil, fmt.Errorf("parse template %q: %w", name, err)
	}
	return tmpl, nil
}

// Render one definition per record, in record order
func renderDefinitions(tmpl *template.Template, records []Record) (string, error) {
	bldr := strings.Builder{}
	for i, rec := range records {
		def, err := NewDefinition(rec)
		if err != nil {
			return "", err
		}
		if err := tmpl.Execute(&bldr, def); err != nil {
			return "", fmt.Errorf("shader #%d: execute template: %w", i, err)
		}
	}
	return bldr.String(), nil
}
