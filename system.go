package notifykit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/dmitrymomot/notifykit/pkg/dispatch"
	"github.com/dmitrymomot/notifykit/pkg/logger"
	"github.com/dmitrymomot/notifykit/pkg/mailer"
	"github.com/dmitrymomot/notifykit/pkg/notification"
	"github.com/dmitrymomot/notifykit/pkg/rules"
	"github.com/dmitrymomot/notifykit/pkg/template"
)

// System is the notification facade: it persists and queues notifications,
// renders templates, evaluates alert rules against events, and runs the
// background delivery worker.
type System struct {
	storage    notification.Storage
	templates  *template.Registry
	rules      *rules.Engine
	worker     *dispatch.Worker
	logger     *slog.Logger
	clock      func() time.Time
	maxRetries int
}

// New creates a notification system over the given storage and mail sender.
// The stock template set is registered first; templates passed via
// WithTemplates override stock templates with the same name.
func New(storage notification.Storage, sender mailer.Sender, opts ...Option) (*System, error) {
	options := &systemOptions{
		logger:     slog.Default(),
		clock:      time.Now,
		maxRetries: notification.DefaultMaxRetries,
	}
	for _, opt := range opts {
		opt(options)
	}

	registry := template.NewRegistry()
	for _, t := range template.Defaults() {
		if err := registry.Register(t); err != nil {
			return nil, fmt.Errorf("register stock template %q: %w", t.Name, err)
		}
	}
	for _, t := range options.templates {
		if err := registry.Register(t); err != nil {
			return nil, fmt.Errorf("register template %q: %w", t.Name, err)
		}
	}

	engine := rules.NewEngine(rules.WithLogger(options.logger))
	for _, r := range options.rules {
		if err := engine.Register(r); err != nil {
			return nil, fmt.Errorf("register rule %q: %w", r.Name, err)
		}
	}

	workerOpts := []dispatch.WorkerOption{
		dispatch.WithLogger(options.logger),
		dispatch.WithClock(options.clock),
	}
	if options.pollInterval > 0 {
		workerOpts = append(workerOpts, dispatch.WithPollInterval(options.pollInterval))
	}
	if options.queueSize > 0 {
		workerOpts = append(workerOpts, dispatch.WithQueueSize(options.queueSize))
	}
	if options.maxBackoff > 0 {
		workerOpts = append(workerOpts, dispatch.WithMaxBackoff(options.maxBackoff))
	}
	if options.guard != nil {
		workerOpts = append(workerOpts, dispatch.WithIdempotencyGuard(options.guard))
	}

	worker, err := dispatch.NewWorker(storage, sender, workerOpts...)
	if err != nil {
		return nil, err
	}

	return &System{
		storage:    storage,
		templates:  registry,
		rules:      engine,
		worker:     worker,
		logger:     options.logger,
		clock:      options.clock,
		maxRetries: options.maxRetries,
	}, nil
}

// Start launches the delivery worker.
func (s *System) Start(ctx context.Context) error {
	if err := s.worker.Start(ctx); err != nil {
		return err
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "Notification system started")
	return nil
}

// Stop shuts the delivery worker down, letting the in-flight delivery finish.
func (s *System) Stop() error {
	if err := s.worker.Stop(); err != nil {
		return err
	}
	s.logger.LogAttrs(context.Background(), slog.LevelInfo, "Notification system stopped")
	return nil
}

// Run starts the system and returns a function suitable for errgroup
func (s *System) Run(ctx context.Context) func() error {
	return s.worker.Run(ctx)
}

// Send queues a notification for delivery and returns its id. Recipient
// addresses are validated synchronously; a malformed address fails here
// rather than burning delivery retries.
func (s *System) Send(ctx context.Context, level notification.Level, recipients []string, subject, body string, metadata map[string]any) (string, error) {
	return s.send(ctx, level, recipients, subject, body, metadata, -1)
}

// SendFromTemplate renders the named template with tctx and queues the
// result. The level defaults to Info; override it and other per-send
// settings via SendOption.
func (s *System) SendFromTemplate(ctx context.Context, templateName string, recipients []string, tctx map[string]any, opts ...SendOption) (string, error) {
	tpl, ok := s.templates.Get(templateName)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrTemplateNotFound, templateName)
	}

	options := sendOptions{level: notification.LevelInfo, maxRetries: -1}
	for _, opt := range opts {
		opt(&options)
	}

	subject, body := tpl.Render(tctx)
	id, err := s.send(ctx, options.level, recipients, subject, body, options.metadata, options.maxRetries)
	if err != nil {
		return "", err
	}
	s.logger.LogAttrs(ctx, slog.LevelDebug, "Template notification queued",
		logger.TemplateName(templateName),
		logger.NotificationID(id),
	)
	return id, nil
}

// HandleEvent evaluates the event against all registered alert rules and
// queues one notification per matching rule, using the rule's level and
// recipients. It returns the queued notification ids; no rules matching is
// not an error. A mid-loop failure returns the ids queued so far.
func (s *System) HandleEvent(ctx context.Context, event map[string]any) ([]string, error) {
	matched := s.rules.Evaluate(ctx, event)
	if len(matched) == 0 {
		return nil, nil
	}

	payload, err := json.MarshalIndent(event, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode event: %w", err)
	}

	ids := make([]string, 0, len(matched))
	for _, rule := range matched {
		id, err := s.send(ctx, rule.Level, rule.Recipients,
			"Alert: "+rule.Name,
			fmt.Sprintf("Alert rule '%s' triggered:\n\n%s", rule.Name, payload),
			map[string]any{"rule_name": rule.Name, "rule_type": string(rule.Type)},
			-1,
		)
		if err != nil {
			return ids, fmt.Errorf("alert %q: %w", rule.Name, err)
		}
		ids = append(ids, id)

		s.logger.LogAttrs(ctx, slog.LevelInfo, "Alert rule triggered",
			logger.RuleName(rule.Name),
			logger.NotificationID(id),
			logger.Level(rule.Level),
		)
	}
	return ids, nil
}

// send persists, audits and enqueues one notification. maxRetries below zero
// applies the system default.
func (s *System) send(ctx context.Context, level notification.Level, recipients []string, subject, body string, metadata map[string]any, maxRetries int) (string, error) {
	if err := mailer.ValidateAddresses(recipients); err != nil {
		return "", err
	}

	if maxRetries < 0 {
		maxRetries = s.maxRetries
	}
	opts := []notification.Option{notification.WithMaxRetries(maxRetries)}
	if metadata != nil {
		opts = append(opts, notification.WithMetadata(metadata))
	}

	n, err := notification.New(level, subject, body, recipients, opts...)
	if err != nil {
		return "", err
	}

	if err := s.storage.Save(ctx, n); err != nil {
		return "", fmt.Errorf("save notification: %w", err)
	}

	// Best-effort: a failed audit write never blocks the send.
	entry := notification.NewAuditEntry(n.ID, notification.EventQueued, map[string]any{
		"level":      string(level),
		"recipients": len(recipients),
	})
	if err := s.storage.AppendAudit(ctx, entry); err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "Failed to append audit entry",
			logger.NotificationID(n.ID),
			logger.Error(err),
		)
	}

	s.worker.Enqueue(n)

	s.logger.LogAttrs(ctx, slog.LevelInfo, "Notification queued",
		logger.NotificationID(n.ID),
		logger.Level(level),
		logger.Recipients(len(recipients)),
	)
	return n.ID, nil
}

// GetNotification retrieves a notification by id.
// Returns ErrNotFound when no record exists.
func (s *System) GetNotification(ctx context.Context, id string) (*notification.Notification, error) {
	return s.storage.Get(ctx, id)
}

// ListByStatus returns up to limit notifications with the given status,
// newest first. A non-positive limit returns all matches.
func (s *System) ListByStatus(ctx context.Context, status notification.Status, limit int) ([]notification.Notification, error) {
	return s.storage.ListByStatus(ctx, status, limit)
}

// AuditTrail returns the notification's delivery history in chronological
// order.
func (s *System) AuditTrail(ctx context.Context, id string) ([]notification.AuditEntry, error) {
	return s.storage.ListAudit(ctx, id)
}

// Cleanup archives SENT notifications older than the given age and returns
// the number archived. FAILED notifications are never archived.
func (s *System) Cleanup(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := s.clock().Add(-olderThan)
	count, err := s.storage.ArchiveOlderThan(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		s.logger.LogAttrs(ctx, slog.LevelInfo, "Archived old notifications",
			slog.Int64("count", count),
			slog.Time("cutoff", cutoff),
		)
	}
	return count, nil
}

// RegisterTemplate adds or replaces a notification template.
func (s *System) RegisterTemplate(t template.Template) error {
	return s.templates.Register(t)
}

// RegisterRule adds or replaces an alert rule.
func (s *System) RegisterRule(r rules.Rule) error {
	return s.rules.Register(r)
}

// SetRuleEnabled toggles an alert rule without unregistering it.
func (s *System) SetRuleEnabled(name string, enabled bool) error {
	return s.rules.SetEnabled(name, enabled)
}

// Templates returns the names of all registered templates, sorted.
func (s *System) Templates() []string {
	return s.templates.Names()
}

// Rules returns all registered alert rules in registration order.
func (s *System) Rules() []rules.Rule {
	return s.rules.Rules()
}

// Stats returns a snapshot of the delivery worker's counters.
func (s *System) Stats() dispatch.Stats {
	return s.worker.Stats()
}
