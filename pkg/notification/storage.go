package notification

import (
	"context"
	"time"
)

// Storage handles notification persistence and the delivery audit trail.
//
// Implementations must serialize mutations so that concurrent producers and
// the delivery worker never interleave partial writes. Save is an idempotent
// upsert keyed by notification ID: saving the same state twice leaves the
// store unchanged.
type Storage interface {
	// Save inserts the notification or replaces the stored record with
	// the same ID.
	Save(ctx context.Context, n *Notification) error

	// Get retrieves a single notification by ID.
	// Returns ErrNotFound when no record exists.
	Get(ctx context.Context, id string) (*Notification, error)

	// ListPending returns notifications awaiting delivery, both PENDING and
	// RETRYING, ordered oldest first. Backoff filtering is the caller's
	// concern; records with a future NextRetryAt are included.
	ListPending(ctx context.Context) ([]Notification, error)

	// ListByStatus returns up to limit notifications with the given status,
	// newest first. A non-positive limit returns all matches.
	ListByStatus(ctx context.Context, status Status, limit int) ([]Notification, error)

	// AppendAudit appends an entry to the notification's delivery history.
	// Audit writes are best-effort: a failure here must never roll back a
	// previously saved status change.
	AppendAudit(ctx context.Context, entry AuditEntry) error

	// ListAudit returns the notification's audit trail in chronological order.
	ListAudit(ctx context.Context, notificationID string) ([]AuditEntry, error)

	// ArchiveOlderThan transitions SENT notifications created before the
	// cutoff to ARCHIVED and returns the number archived. FAILED records are
	// never archived; they remain visible for inspection.
	ArchiveOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
