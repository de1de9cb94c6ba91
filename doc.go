// Package notifykit provides a durable notification delivery system for Go
// services: queued email notifications with retry and backoff, reusable
// message templates, and alert rules that turn system events into
// notifications.
//
// NotifyKit is designed for services that need reliable operational email
// without adopting a full message broker. Notifications are persisted before
// delivery, so a crash never loses an accepted notification, and every
// delivery attempt leaves an audit trail.
//
// Key Features:
//
//   - Durable queue: accepted notifications survive restarts and are
//     retried with exponential backoff until sent or exhausted
//   - Templates with {{placeholder}} substitution and a stock set for
//     common operational messages
//   - Alert rules: register conditions over event payloads and let matching
//     events fan out notifications to the right recipients
//   - Pluggable transports: SMTP, Postmark, or a dev transport that writes
//     messages to disk
//   - Storage backends: PostgreSQL for production, in-memory for tests
//
// Basic Usage:
//
//	storage := notification.NewMemoryStorage()
//	sender := mailer.MustNewSMTPSender(mailerCfg)
//
//	system, err := notifykit.New(storage, sender,
//		notifykit.WithLogger(log),
//	)
//	if err != nil {
//		return err
//	}
//
//	if err := system.Start(ctx); err != nil {
//		return err
//	}
//	defer system.Stop()
//
//	id, err := system.Send(ctx, notification.LevelError,
//		[]string{"ops@example.com"},
//		"Migration failed",
//		"Migration 0042 failed on shard 3",
//		nil,
//	)
//
// Templates:
//
//	id, err := system.SendFromTemplate(ctx, "migration_completed",
//		[]string{"team@example.com"},
//		map[string]any{
//			"migration_id":    "0042_add_indexes",
//			"status":          "success",
//			"duration":        "12s",
//			"items_count":     1840,
//			"completion_time": time.Now().Format(time.RFC3339),
//			"additional_info": "3 tables affected",
//		},
//	)
//
// Alert Rules:
//
//	rule := rules.Rule{
//		Name:       "high_memory_usage",
//		Type:       rules.TypeThreshold,
//		Condition:  rules.All(rules.FieldEquals("metric", "memory"), rules.FieldAbove("value", 85)),
//		Level:      notification.LevelWarning,
//		Recipients: []string{"devops@example.com"},
//		Enabled:    true,
//	}
//	if err := system.RegisterRule(rule); err != nil {
//		return err
//	}
//
//	// Later, from your metrics pipeline:
//	ids, err := system.HandleEvent(ctx, map[string]any{"metric": "memory", "value": 91.5})
//
// Production Wiring:
//
// LoadConfig and NewFromConfig assemble the PostgreSQL-backed system from
// environment variables, including the mail transport and the optional
// Redis idempotency guard:
//
//	cfg, err := notifykit.LoadConfig()
//	if err != nil {
//		return err
//	}
//	system, cleanup, err := notifykit.NewFromConfig(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer cleanup()
//
//	g, ctx := errgroup.WithContext(ctx)
//	g.Go(system.Run(ctx))
package notifykit
