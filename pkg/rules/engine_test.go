package rules_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifykit/pkg/notification"
	"github.com/dmitrymomot/notifykit/pkg/rules"
)

func validRule(name string, cond rules.Condition) rules.Rule {
	return rules.Rule{
		Name:       name,
		Type:       rules.TypeEvent,
		Condition:  cond,
		Level:      notification.LevelWarning,
		Recipients: []string{"ops@example.com"},
		Enabled:    true,
	}
}

func TestEngine_Register(t *testing.T) {
	t.Parallel()

	t.Run("valid rule", func(t *testing.T) {
		t.Parallel()

		engine := rules.NewEngine()
		require.NoError(t, engine.Register(validRule("a", rules.EventType("x"))))

		got, ok := engine.Get("a")
		require.True(t, ok)
		assert.Equal(t, "a", got.Name)
	})

	t.Run("validation failures", func(t *testing.T) {
		t.Parallel()

		engine := rules.NewEngine()

		noName := validRule("", rules.EventType("x"))
		assert.ErrorIs(t, engine.Register(noName), rules.ErrInvalidRule)

		noCondition := validRule("a", nil)
		assert.ErrorIs(t, engine.Register(noCondition), rules.ErrInvalidRule)

		badType := validRule("a", rules.EventType("x"))
		badType.Type = rules.Type("WEIRD")
		assert.ErrorIs(t, engine.Register(badType), rules.ErrInvalidRule)

		badLevel := validRule("a", rules.EventType("x"))
		badLevel.Level = notification.Level("URGENT")
		assert.ErrorIs(t, engine.Register(badLevel), rules.ErrInvalidRule)

		noRecipients := validRule("a", rules.EventType("x"))
		noRecipients.Recipients = nil
		assert.ErrorIs(t, engine.Register(noRecipients), rules.ErrInvalidRule)
	})

	t.Run("replacement keeps evaluation position", func(t *testing.T) {
		t.Parallel()

		engine := rules.NewEngine()
		require.NoError(t, engine.Register(validRule("first", rules.EventType("x"))))
		require.NoError(t, engine.Register(validRule("second", rules.EventType("x"))))

		replacement := validRule("first", rules.EventType("x"))
		replacement.Description = "updated"
		require.NoError(t, engine.Register(replacement))

		all := engine.Rules()
		require.Len(t, all, 2)
		assert.Equal(t, "first", all[0].Name)
		assert.Equal(t, "updated", all[0].Description)
		assert.Equal(t, "second", all[1].Name)
	})
}

func TestEngine_Evaluate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("returns matches in registration order", func(t *testing.T) {
		t.Parallel()

		engine := rules.NewEngine()
		require.NoError(t, engine.Register(validRule("b_second", rules.EventType("deploy"))))
		require.NoError(t, engine.Register(validRule("a_first", rules.EventType("deploy"))))
		require.NoError(t, engine.Register(validRule("unrelated", rules.EventType("other"))))

		matched := engine.Evaluate(ctx, map[string]any{"event_type": "deploy"})
		require.Len(t, matched, 2)
		assert.Equal(t, "b_second", matched[0].Name)
		assert.Equal(t, "a_first", matched[1].Name)
	})

	t.Run("no matches yields empty result", func(t *testing.T) {
		t.Parallel()

		engine := rules.NewEngine()
		require.NoError(t, engine.Register(validRule("a", rules.EventType("deploy"))))

		matched := engine.Evaluate(ctx, map[string]any{"event_type": "something_else"})
		assert.Empty(t, matched)
	})

	t.Run("disabled rules are skipped", func(t *testing.T) {
		t.Parallel()

		engine := rules.NewEngine()
		require.NoError(t, engine.Register(validRule("a", rules.EventType("deploy"))))
		require.NoError(t, engine.SetEnabled("a", false))

		matched := engine.Evaluate(ctx, map[string]any{"event_type": "deploy"})
		assert.Empty(t, matched)

		require.NoError(t, engine.SetEnabled("a", true))
		matched = engine.Evaluate(ctx, map[string]any{"event_type": "deploy"})
		assert.Len(t, matched, 1)
	})

	t.Run("panicking condition is isolated and logged", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := slog.New(slog.NewTextHandler(&buf, nil))

		engine := rules.NewEngine(rules.WithLogger(log))
		require.NoError(t, engine.Register(validRule("broken", func(map[string]any) bool {
			panic("nil map access")
		})))
		require.NoError(t, engine.Register(validRule("healthy", rules.EventType("deploy"))))

		matched := engine.Evaluate(ctx, map[string]any{"event_type": "deploy"})
		require.Len(t, matched, 1)
		assert.Equal(t, "healthy", matched[0].Name)
		assert.Contains(t, buf.String(), "broken")
		assert.Contains(t, buf.String(), "panicked")
	})

	t.Run("set enabled on unknown rule", func(t *testing.T) {
		t.Parallel()

		engine := rules.NewEngine()
		assert.ErrorIs(t, engine.SetEnabled("ghost", true), rules.ErrRuleNotFound)
	})
}
