package template

import "errors"

var (
	// ErrInvalidTemplate is returned when a template fails validation.
	ErrInvalidTemplate = errors.New("invalid template")

	// ErrInvalidCatalog is returned when a YAML catalog cannot be parsed.
	ErrInvalidCatalog = errors.New("invalid template catalog")

	// ErrTemplateNotFound is returned when rendering references an
	// unregistered template name.
	ErrTemplateNotFound = errors.New("template not found")
)
