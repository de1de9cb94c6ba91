// Package template provides named notification templates with {{variable}}
// placeholder substitution and a concurrency-safe registry.
//
// Rendering is deliberately forgiving: placeholders without a matching
// context key are left verbatim in the output, so an incomplete context
// produces a delivered message with visible gaps rather than an error.
// Template variables carry no type information; every value is stringified
// with fmt.Sprint.
//
// # Usage
//
//	registry := template.NewRegistry()
//	for _, t := range template.Defaults() {
//	    _ = registry.Register(t)
//	}
//
//	tmpl, ok := registry.Get("resource_warning")
//	if !ok {
//	    return template.ErrTemplateNotFound
//	}
//	subject, body := tmpl.Render(map[string]any{
//	    "resource_type": "memory",
//	    "usage_level":   92.5,
//	    "threshold":     85,
//	    "timestamp":     time.Now().Format(time.RFC3339),
//	})
//
// # Catalogs
//
// Templates can be declared in YAML catalogs and loaded in bulk:
//
//	if err := registry.LoadFile("templates.yaml"); err != nil {
//	    return err
//	}
//
// Registration is last-write-wins, which lets catalogs and code override the
// stock templates returned by Defaults.
package template
