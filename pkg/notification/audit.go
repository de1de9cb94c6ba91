package notification

import (
	"time"

	"github.com/google/uuid"
)

// Audit event names recorded over a notification's lifetime.
const (
	EventQueued          = "QUEUED"
	EventSent            = "SENT"
	EventRetryScheduled  = "RETRY_SCHEDULED"
	EventFailedPermanent = "FAILED_PERMANENT"
	EventArchived        = "ARCHIVED"
)

// AuditEntry is a single append-only record in a notification's delivery
// history. Entries are never updated or deleted.
type AuditEntry struct {
	ID             string         `json:"id"`
	NotificationID string         `json:"notification_id"`
	Event          string         `json:"event"`
	CreatedAt      time.Time      `json:"created_at"`
	Details        map[string]any `json:"details,omitempty"`
}

// NewAuditEntry creates an audit entry for the given notification and event.
func NewAuditEntry(notificationID, event string, details map[string]any) AuditEntry {
	return AuditEntry{
		ID:             uuid.New().String(),
		NotificationID: notificationID,
		Event:          event,
		CreatedAt:      time.Now().UTC(),
		Details:        details,
	}
}
