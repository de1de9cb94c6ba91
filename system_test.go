package notifykit_test

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/notifykit"
	"github.com/dmitrymomot/notifykit/pkg/dispatch"
	"github.com/dmitrymomot/notifykit/pkg/mailer"
	"github.com/dmitrymomot/notifykit/pkg/notification"
	"github.com/dmitrymomot/notifykit/pkg/rules"
	"github.com/dmitrymomot/notifykit/pkg/template"
)

// stubSender records outgoing messages and signals each delivery.
type stubSender struct {
	mu     sync.Mutex
	msgs   []mailer.Message
	signal chan struct{}
}

func newStubSender() *stubSender {
	return &stubSender{signal: make(chan struct{}, 16)}
}

func (s *stubSender) Send(ctx context.Context, msg mailer.Message) error {
	s.mu.Lock()
	s.msgs = append(s.msgs, msg)
	s.mu.Unlock()
	s.signal <- struct{}{}
	return nil
}

func (s *stubSender) sent() []mailer.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]mailer.Message, len(s.msgs))
	copy(out, s.msgs)
	return out
}

func newSystem(t *testing.T, opts ...notifykit.Option) (*notifykit.System, *notification.MemoryStorage, *stubSender) {
	t.Helper()
	storage := notification.NewMemoryStorage()
	sender := newStubSender()
	sys, err := notifykit.New(storage, sender, opts...)
	require.NoError(t, err)
	return sys, storage, sender
}

func waitDelivery(t *testing.T, sender *stubSender) {
	t.Helper()
	select {
	case <-sender.signal:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for delivery")
	}
}

// settle gives the worker time to persist the outcome of a signaled delivery.
func settle() {
	time.Sleep(50 * time.Millisecond)
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("successful creation", func(t *testing.T) {
		t.Parallel()

		sys, _, _ := newSystem(t)
		require.NotNil(t, sys)
	})

	t.Run("nil storage error", func(t *testing.T) {
		t.Parallel()

		sys, err := notifykit.New(nil, newStubSender())
		assert.ErrorIs(t, err, dispatch.ErrStorageNil)
		assert.Nil(t, sys)
	})

	t.Run("nil sender error", func(t *testing.T) {
		t.Parallel()

		sys, err := notifykit.New(notification.NewMemoryStorage(), nil)
		assert.ErrorIs(t, err, dispatch.ErrSenderNil)
		assert.Nil(t, sys)
	})

	t.Run("invalid rule error", func(t *testing.T) {
		t.Parallel()

		sys, err := notifykit.New(notification.NewMemoryStorage(), newStubSender(),
			notifykit.WithRules(rules.Rule{Name: "broken"}))
		assert.ErrorIs(t, err, rules.ErrInvalidRule)
		assert.Nil(t, sys)
	})

	t.Run("invalid template error", func(t *testing.T) {
		t.Parallel()

		sys, err := notifykit.New(notification.NewMemoryStorage(), newStubSender(),
			notifykit.WithTemplates(template.Template{Subject: "nameless"}))
		assert.ErrorIs(t, err, template.ErrInvalidTemplate)
		assert.Nil(t, sys)
	})

	t.Run("custom template overrides stock one", func(t *testing.T) {
		t.Parallel()

		sys, storage, _ := newSystem(t, notifykit.WithTemplates(template.Template{
			Name:    "resource_warning",
			Subject: "Disk {{disk}} almost full",
			Body:    "{{disk}} is at {{pct}}%",
		}))

		// Same name, so the template count stays at the stock five.
		assert.Len(t, sys.Templates(), 5)

		id, err := sys.SendFromTemplate(context.Background(), "resource_warning",
			[]string{"ops@example.com"}, map[string]any{"disk": "/var", "pct": 93})
		require.NoError(t, err)

		got, err := storage.Get(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, "Disk /var almost full", got.Subject)
		assert.Equal(t, "/var is at 93%", got.Body)
	})
}

func TestSystem_Send(t *testing.T) {
	t.Parallel()

	t.Run("queues a pending notification", func(t *testing.T) {
		t.Parallel()

		sys, storage, _ := newSystem(t)
		ctx := context.Background()

		id, err := sys.Send(ctx, notification.LevelError, []string{"ops@example.com"},
			"Disk almost full", "Only 2% left on /var", map[string]any{"host": "db-1"})
		require.NoError(t, err)
		require.NotEmpty(t, id)

		got, err := sys.GetNotification(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, notification.StatusPending, got.Status)
		assert.Equal(t, notification.LevelError, got.Level)
		assert.Equal(t, "Disk almost full", got.Subject)
		assert.Equal(t, "Only 2% left on /var", got.Body)
		assert.Equal(t, []string{"ops@example.com"}, got.Recipients)
		assert.Equal(t, map[string]any{"host": "db-1"}, got.Metadata)
		assert.Equal(t, notification.DefaultMaxRetries, got.MaxRetries)

		trail, err := sys.AuditTrail(ctx, id)
		require.NoError(t, err)
		require.Len(t, trail, 1)
		assert.Equal(t, notification.EventQueued, trail[0].Event)
		assert.Equal(t, "ERROR", trail[0].Details["level"])
		assert.Equal(t, 1, trail[0].Details["recipients"])

		// The worker is not running, so nothing was delivered yet.
		pending, err := storage.ListPending(ctx)
		require.NoError(t, err)
		assert.Len(t, pending, 1)
	})

	t.Run("rejects invalid recipient address", func(t *testing.T) {
		t.Parallel()

		sys, storage, _ := newSystem(t)
		ctx := context.Background()

		id, err := sys.Send(ctx, notification.LevelInfo, []string{"not-an-email"},
			"Subject", "Body", nil)
		assert.ErrorIs(t, err, mailer.ErrInvalidMessage)
		assert.Empty(t, id)

		pending, err := storage.ListPending(ctx)
		require.NoError(t, err)
		assert.Empty(t, pending)
	})

	t.Run("rejects empty recipients", func(t *testing.T) {
		t.Parallel()

		sys, _, _ := newSystem(t)

		id, err := sys.Send(context.Background(), notification.LevelInfo, nil,
			"Subject", "Body", nil)
		assert.ErrorIs(t, err, mailer.ErrInvalidMessage)
		assert.Empty(t, id)
	})

	t.Run("applies the configured retry budget", func(t *testing.T) {
		t.Parallel()

		sys, _, _ := newSystem(t, notifykit.WithDefaultMaxRetries(5))
		ctx := context.Background()

		id, err := sys.Send(ctx, notification.LevelInfo, []string{"ops@example.com"},
			"Subject", "Body", nil)
		require.NoError(t, err)

		got, err := sys.GetNotification(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, 5, got.MaxRetries)
	})
}

func TestSystem_SendFromTemplate(t *testing.T) {
	t.Parallel()

	t.Run("renders a stock template", func(t *testing.T) {
		t.Parallel()

		sys, _, _ := newSystem(t)
		ctx := context.Background()

		id, err := sys.SendFromTemplate(ctx, "resource_warning",
			[]string{"ops@example.com"}, map[string]any{
				"resource_type": "disk",
				"usage_level":   92,
				"threshold":     85,
				"timestamp":     "2025-06-01T12:00:00Z",
			})
		require.NoError(t, err)

		got, err := sys.GetNotification(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, notification.LevelInfo, got.Level)
		assert.Equal(t, "Resource Warning - disk", got.Subject)
		assert.Contains(t, got.Body, "<strong>Usage Level:</strong> 92%")
		assert.Contains(t, got.Body, "<strong>Warning Threshold:</strong> 85%")
		assert.NotContains(t, got.Body, "{{")
	})

	t.Run("applies send options", func(t *testing.T) {
		t.Parallel()

		sys, _, _ := newSystem(t)
		ctx := context.Background()

		id, err := sys.SendFromTemplate(ctx, "performance_alert",
			[]string{"oncall@example.com"}, map[string]any{"alert_type": "latency"},
			notifykit.SendWithLevel(notification.LevelCritical),
			notifykit.SendWithMetadata(map[string]any{"source": "monitoring"}),
			notifykit.SendWithMaxRetries(0),
		)
		require.NoError(t, err)

		got, err := sys.GetNotification(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, notification.LevelCritical, got.Level)
		assert.Equal(t, map[string]any{"source": "monitoring"}, got.Metadata)
		assert.Zero(t, got.MaxRetries)
	})

	t.Run("unknown template error", func(t *testing.T) {
		t.Parallel()

		sys, _, _ := newSystem(t)

		id, err := sys.SendFromTemplate(context.Background(), "no_such_template",
			[]string{"ops@example.com"}, nil)
		assert.ErrorIs(t, err, notifykit.ErrTemplateNotFound)
		assert.ErrorContains(t, err, "no_such_template")
		assert.Empty(t, id)
	})
}

func TestSystem_HandleEvent(t *testing.T) {
	t.Parallel()

	highCPU := rules.Rule{
		Name:       "cpu-critical",
		Type:       rules.TypeThreshold,
		Condition:  rules.FieldAbove("cpu", 90),
		Level:      notification.LevelCritical,
		Recipients: []string{"oncall@example.com"},
		Enabled:    true,
	}
	elevatedCPU := rules.Rule{
		Name:       "cpu-elevated",
		Type:       rules.TypeThreshold,
		Condition:  rules.FieldAbove("cpu", 80),
		Level:      notification.LevelWarning,
		Recipients: []string{"ops@example.com", "dev@example.com"},
		Enabled:    true,
	}
	deploys := rules.Rule{
		Name:       "deploy-events",
		Type:       rules.TypeEvent,
		Condition:  rules.EventType("deploy"),
		Level:      notification.LevelInfo,
		Recipients: []string{"dev@example.com"},
		Enabled:    true,
	}

	t.Run("queues one notification per matching rule", func(t *testing.T) {
		t.Parallel()

		sys, _, _ := newSystem(t, notifykit.WithRules(highCPU, elevatedCPU, deploys))
		ctx := context.Background()

		event := map[string]any{"event_type": "metric", "cpu": 97.5}
		ids, err := sys.HandleEvent(ctx, event)
		require.NoError(t, err)
		require.Len(t, ids, 2)

		payload, err := json.MarshalIndent(event, "", "  ")
		require.NoError(t, err)

		first, err := sys.GetNotification(ctx, ids[0])
		require.NoError(t, err)
		assert.Equal(t, "Alert: cpu-critical", first.Subject)
		assert.Equal(t, fmt.Sprintf("Alert rule 'cpu-critical' triggered:\n\n%s", payload), first.Body)
		assert.Equal(t, notification.LevelCritical, first.Level)
		assert.Equal(t, []string{"oncall@example.com"}, first.Recipients)
		assert.Equal(t, map[string]any{"rule_name": "cpu-critical", "rule_type": "THRESHOLD"}, first.Metadata)

		second, err := sys.GetNotification(ctx, ids[1])
		require.NoError(t, err)
		assert.Equal(t, "Alert: cpu-elevated", second.Subject)
		assert.Equal(t, notification.LevelWarning, second.Level)
		assert.Equal(t, []string{"ops@example.com", "dev@example.com"}, second.Recipients)
	})

	t.Run("no matching rules is not an error", func(t *testing.T) {
		t.Parallel()

		sys, storage, _ := newSystem(t, notifykit.WithRules(highCPU, deploys))
		ctx := context.Background()

		ids, err := sys.HandleEvent(ctx, map[string]any{"event_type": "metric", "cpu": 12})
		require.NoError(t, err)
		assert.Nil(t, ids)

		pending, err := storage.ListPending(ctx)
		require.NoError(t, err)
		assert.Empty(t, pending)
	})

	t.Run("disabled rule does not trigger", func(t *testing.T) {
		t.Parallel()

		sys, _, _ := newSystem(t, notifykit.WithRules(highCPU, elevatedCPU))
		require.NoError(t, sys.SetRuleEnabled("cpu-critical", false))

		ids, err := sys.HandleEvent(context.Background(), map[string]any{"cpu": 97.5})
		require.NoError(t, err)
		require.Len(t, ids, 1)

		got, err := sys.GetNotification(context.Background(), ids[0])
		require.NoError(t, err)
		assert.Equal(t, "Alert: cpu-elevated", got.Subject)
	})
}

func TestSystem_DeliversEndToEnd(t *testing.T) {
	t.Parallel()

	sys, _, sender := newSystem(t, notifykit.WithPollInterval(20*time.Millisecond))
	ctx := context.Background()

	require.NoError(t, sys.Start(ctx))
	defer sys.Stop()

	id, err := sys.Send(ctx, notification.LevelError, []string{"ops@example.com"},
		"Disk almost full", "Only 2% left on /var", nil)
	require.NoError(t, err)

	waitDelivery(t, sender)
	settle()

	got, err := sys.GetNotification(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, notification.StatusSent, got.Status)
	require.NotNil(t, got.SentAt)

	msgs := sender.sent()
	require.Len(t, msgs, 1)
	assert.Equal(t, []string{"ops@example.com"}, msgs[0].Recipients)
	assert.Equal(t, "Disk almost full", msgs[0].Subject)
	assert.Equal(t, "Only 2% left on /var", msgs[0].BodyHTML)

	trail, err := sys.AuditTrail(ctx, id)
	require.NoError(t, err)
	require.Len(t, trail, 2)
	assert.Equal(t, notification.EventQueued, trail[0].Event)
	assert.Equal(t, notification.EventSent, trail[1].Event)

	stats := sys.Stats()
	assert.Equal(t, int64(1), stats.Processed)
	assert.Equal(t, int64(1), stats.Sent)
	assert.Zero(t, stats.Retried)
	assert.Zero(t, stats.Failed)
}

func TestSystem_RunUnderErrgroup(t *testing.T) {
	t.Parallel()

	sys, _, sender := newSystem(t, notifykit.WithPollInterval(20*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	g, gctx := errgroup.WithContext(ctx)
	g.Go(sys.Run(gctx))

	id, err := sys.Send(context.Background(), notification.LevelInfo,
		[]string{"ops@example.com"}, "Hello", "World", nil)
	require.NoError(t, err)

	waitDelivery(t, sender)
	settle()

	cancel()
	require.NoError(t, g.Wait())

	got, err := sys.GetNotification(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, notification.StatusSent, got.Status)
}

func TestSystem_Cleanup(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	sys, storage, _ := newSystem(t, notifykit.WithClock(func() time.Time { return now }))
	ctx := context.Background()

	save := func(age time.Duration, transition func(*notification.Notification) error) *notification.Notification {
		n, err := notification.New(notification.LevelInfo, "Subject", "Body", []string{"ops@example.com"})
		require.NoError(t, err)
		n.CreatedAt = now.Add(-age)
		if transition != nil {
			require.NoError(t, transition(n))
		}
		require.NoError(t, storage.Save(ctx, n))
		return n
	}

	oldSent := save(48*time.Hour, func(n *notification.Notification) error { return n.MarkSent(now.Add(-47 * time.Hour)) })
	recentSent := save(time.Hour, func(n *notification.Notification) error { return n.MarkSent(now.Add(-time.Hour)) })
	oldFailed := save(48*time.Hour, func(n *notification.Notification) error { return n.MarkFailed("gave up") })
	oldPending := save(48*time.Hour, nil)

	count, err := sys.Cleanup(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	for id, want := range map[string]notification.Status{
		oldSent.ID:    notification.StatusArchived,
		recentSent.ID: notification.StatusSent,
		oldFailed.ID:  notification.StatusFailed,
		oldPending.ID: notification.StatusPending,
	} {
		got, err := storage.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, want, got.Status)
	}

	// A second pass finds nothing left to archive.
	count, err = sys.Cleanup(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestSystem_Registry(t *testing.T) {
	t.Parallel()

	t.Run("stock templates are registered", func(t *testing.T) {
		t.Parallel()

		sys, _, _ := newSystem(t)
		assert.Equal(t, []string{
			"migration_completed",
			"migration_error",
			"migration_started",
			"performance_alert",
			"resource_warning",
		}, sys.Templates())
	})

	t.Run("register template at runtime", func(t *testing.T) {
		t.Parallel()

		sys, _, _ := newSystem(t)
		require.NoError(t, sys.RegisterTemplate(template.Template{Name: "weekly_report", Subject: "Weekly Report"}))
		assert.Contains(t, sys.Templates(), "weekly_report")
	})

	t.Run("register rule at runtime", func(t *testing.T) {
		t.Parallel()

		sys, _, _ := newSystem(t)
		require.NoError(t, sys.RegisterRule(rules.Rule{
			Name:       "errors",
			Type:       rules.TypeEvent,
			Condition:  rules.EventType("error"),
			Level:      notification.LevelError,
			Recipients: []string{"ops@example.com"},
			Enabled:    true,
		}))
		require.Len(t, sys.Rules(), 1)
		assert.Equal(t, "errors", sys.Rules()[0].Name)
	})

	t.Run("toggle unknown rule error", func(t *testing.T) {
		t.Parallel()

		sys, _, _ := newSystem(t)
		assert.ErrorIs(t, sys.SetRuleEnabled("missing", true), notifykit.ErrRuleNotFound)
	})

	t.Run("unknown notification error", func(t *testing.T) {
		t.Parallel()

		sys, _, _ := newSystem(t)
		_, err := sys.GetNotification(context.Background(), "01234567-89ab-cdef-0123-456789abcdef")
		assert.ErrorIs(t, err, notifykit.ErrNotFound)
	})
}
