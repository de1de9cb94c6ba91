package template_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifykit/pkg/template"
)

const validCatalog = `
templates:
  - name: maintenance_window
    subject: "Maintenance scheduled: {{title}}"
    body: |
      Window starts at {{start_time}} and lasts {{duration}}.
    variables: [title, start_time, duration]
  - name: incident_resolved
    subject: "Resolved: {{incident_id}}"
    body: "Incident {{incident_id}} was resolved at {{resolved_at}}."
`

func TestParse(t *testing.T) {
	t.Parallel()

	t.Run("valid catalog", func(t *testing.T) {
		t.Parallel()

		templates, err := template.Parse([]byte(validCatalog))
		require.NoError(t, err)
		require.Len(t, templates, 2)

		assert.Equal(t, "maintenance_window", templates[0].Name)
		assert.Equal(t, []string{"title", "start_time", "duration"}, templates[0].Variables)
		assert.Equal(t, "incident_resolved", templates[1].Name)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		t.Parallel()

		_, err := template.Parse([]byte("templates:\n  - name: [broken"))
		assert.ErrorIs(t, err, template.ErrInvalidCatalog)
	})

	t.Run("template without name", func(t *testing.T) {
		t.Parallel()

		_, err := template.Parse([]byte("templates:\n  - subject: orphan\n"))
		require.ErrorIs(t, err, template.ErrInvalidCatalog)
		assert.ErrorIs(t, err, template.ErrInvalidTemplate)
	})
}

func TestRegistry_LoadFile(t *testing.T) {
	t.Parallel()

	t.Run("registers all templates", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "catalog.yaml")
		require.NoError(t, os.WriteFile(path, []byte(validCatalog), 0o644))

		registry := template.NewRegistry()
		require.NoError(t, registry.LoadFile(path))

		assert.Equal(t, 2, registry.Len())

		tmpl, ok := registry.Get("maintenance_window")
		require.True(t, ok)

		subject, _ := tmpl.Render(map[string]any{"title": "DB upgrade"})
		assert.Equal(t, "Maintenance scheduled: DB upgrade", subject)
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		registry := template.NewRegistry()
		err := registry.LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.ErrorIs(t, err, template.ErrInvalidCatalog)
	})

	t.Run("malformed catalog registers nothing", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("templates: {broken"), 0o644))

		registry := template.NewRegistry()
		require.Error(t, registry.LoadFile(path))
		assert.Zero(t, registry.Len())
	})
}
