package template

import (
	"fmt"
	"strings"
)

// Template is a named notification body with {{variable}} placeholders.
type Template struct {
	Name      string   `json:"name" yaml:"name"`
	Subject   string   `json:"subject" yaml:"subject"`
	Body      string   `json:"body" yaml:"body"`
	Variables []string `json:"variables,omitempty" yaml:"variables,omitempty"`
}

// Validate checks that the template can be registered.
func (t Template) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidTemplate)
	}
	return nil
}

// Render substitutes {{key}} placeholders in the subject and body with values
// from ctx. Values are stringified with fmt.Sprint. Placeholders without a
// matching key are left verbatim so missing data stays visible in the
// delivered message instead of disappearing silently. Render never fails.
func (t Template) Render(ctx map[string]any) (subject, body string) {
	subject = t.Subject
	body = t.Body

	for key, value := range ctx {
		placeholder := "{{" + key + "}}"
		replacement := fmt.Sprint(value)
		subject = strings.ReplaceAll(subject, placeholder, replacement)
		body = strings.ReplaceAll(body, placeholder, replacement)
	}

	return subject, body
}
