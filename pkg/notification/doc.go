// Package notification defines the durable notification record, its delivery
// lifecycle, and the storage capability the rest of the module builds on.
//
// A Notification moves through a fixed set of statuses:
//
//   - PENDING: queued, awaiting the first delivery attempt
//   - RETRYING: a delivery attempt failed, another is due at NextRetryAt
//   - SENT: delivered successfully, SentAt recorded
//   - FAILED: retry budget exhausted, terminal
//   - ARCHIVED: delivered record swept by retention, terminal
//
// PENDING and RETRYING may move to SENT, RETRYING, or FAILED. Only SENT
// records are archived; FAILED records never are, so permanently
// undeliverable notifications stay visible for inspection.
//
// CanTransition exposes the transition table; the MarkSent, ScheduleRetry,
// MarkFailed, and Archive helpers mutate a record while enforcing it.
//
// # Storage
//
// The Storage interface covers persistence for both the notification records
// and their append-only audit trail. Implementations must serialize mutations
// and make Save an idempotent upsert by ID. MemoryStorage provides a
// mutex-guarded map implementation for development and tests; pkg/pg provides
// the PostgreSQL implementation for production.
//
// # Usage
//
//	n, err := notification.New(
//	    notification.LevelWarning,
//	    "Disk space low",
//	    "Volume /data is at 91% capacity",
//	    []string{"ops@example.com"},
//	    notification.WithMaxRetries(5),
//	)
//	if err != nil {
//	    return err
//	}
//	if err := store.Save(ctx, n); err != nil {
//	    return err
//	}
package notification
