package template

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// catalog is the on-disk YAML document shape:
//
//	templates:
//	  - name: maintenance_window
//	    subject: "Maintenance scheduled: {{title}}"
//	    body: |
//	      Window starts at {{start_time}}.
//	    variables: [title, start_time]
type catalog struct {
	Templates []Template `yaml:"templates"`
}

// Parse decodes a YAML template catalog.
func Parse(data []byte) ([]Template, error) {
	var c catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, errors.Join(ErrInvalidCatalog, err)
	}

	for i, t := range c.Templates {
		if err := t.Validate(); err != nil {
			return nil, errors.Join(ErrInvalidCatalog, fmt.Errorf("template %d: %w", i, err))
		}
	}

	return c.Templates, nil
}

// ParseFile reads and decodes a YAML template catalog from disk.
func ParseFile(path string) ([]Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Join(ErrInvalidCatalog, err)
	}
	return Parse(data)
}

// LoadFile parses a YAML catalog and registers every template it contains.
// Registration is all-or-nothing: a malformed catalog registers nothing.
func (r *Registry) LoadFile(path string) error {
	templates, err := ParseFile(path)
	if err != nil {
		return err
	}

	for _, t := range templates {
		if err := r.Register(t); err != nil {
			return err
		}
	}
	return nil
}
