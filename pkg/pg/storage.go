package pg

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/notifykit/pkg/notification"
)

var _ notification.Storage = (*Storage)(nil)

// Storage persists notifications and their audit trail in PostgreSQL.
// All mutations go through single statements, so the serial delivery worker
// and concurrent producers never observe partial writes.
type Storage struct {
	pool *pgxpool.Pool
}

// NewStorage creates a PostgreSQL-backed notification storage.
func NewStorage(pool *pgxpool.Pool) *Storage {
	return &Storage{pool: pool}
}

const (
	qNotificationUpsert = `
INSERT INTO notifications (id, level, subject, body, recipients, status, created_at, sent_at, retry_count, max_retries, next_retry_at, error_message, metadata)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
ON CONFLICT (id) DO UPDATE SET
    level         = EXCLUDED.level,
    subject       = EXCLUDED.subject,
    body          = EXCLUDED.body,
    recipients    = EXCLUDED.recipients,
    status        = EXCLUDED.status,
    sent_at       = EXCLUDED.sent_at,
    retry_count   = EXCLUDED.retry_count,
    max_retries   = EXCLUDED.max_retries,
    next_retry_at = EXCLUDED.next_retry_at,
    error_message = EXCLUDED.error_message,
    metadata      = EXCLUDED.metadata;
`

	qNotificationSelect = `
SELECT id, level, subject, body, recipients, status, created_at, sent_at, retry_count, max_retries, next_retry_at, error_message, metadata
FROM notifications
`

	qNotificationByID = qNotificationSelect + `WHERE id = $1;`

	qNotificationsPending = qNotificationSelect + `
WHERE status IN ($1, $2)
ORDER BY created_at ASC;
`

	qNotificationsByStatus = qNotificationSelect + `
WHERE status = $1
ORDER BY created_at DESC
LIMIT NULLIF($2, 0);
`

	qAuditInsert = `
INSERT INTO notification_audit (id, notification_id, event, created_at, details)
VALUES ($1, $2, $3, $4, $5);
`

	qAuditByNotification = `
SELECT id, notification_id, event, created_at, details
FROM notification_audit
WHERE notification_id = $1
ORDER BY created_at ASC, id ASC;
`

	qArchiveOlderThan = `
UPDATE notifications
SET status = $1
WHERE status = $2 AND created_at < $3;
`
)

func (s *Storage) Save(ctx context.Context, n *notification.Notification) error {
	recipients, err := json.Marshal(n.Recipients)
	if err != nil {
		return fmt.Errorf("marshal recipients: %w", err)
	}

	var metadata []byte
	if n.Metadata != nil {
		metadata, err = json.Marshal(n.Metadata)
		if err != nil {
			return fmt.Errorf("marshal metadata: %w", err)
		}
	}

	if _, err := s.pool.Exec(ctx, qNotificationUpsert,
		n.ID,
		string(n.Level),
		n.Subject,
		n.Body,
		recipients,
		string(n.Status),
		n.CreatedAt,
		n.SentAt,
		n.RetryCount,
		n.MaxRetries,
		n.NextRetryAt,
		n.ErrorMessage,
		metadata,
	); err != nil {
		return fmt.Errorf("upsert notification: %w", err)
	}
	return nil
}

func (s *Storage) Get(ctx context.Context, id string) (*notification.Notification, error) {
	n, err := scanNotification(s.pool.QueryRow(ctx, qNotificationByID, id))
	if err != nil {
		if IsNotFoundError(err) {
			return nil, notification.ErrNotFound
		}
		return nil, fmt.Errorf("get notification: %w", err)
	}
	return n, nil
}

func (s *Storage) ListPending(ctx context.Context) ([]notification.Notification, error) {
	rows, err := s.pool.Query(ctx, qNotificationsPending,
		string(notification.StatusPending),
		string(notification.StatusRetrying),
	)
	if err != nil {
		return nil, fmt.Errorf("query pending notifications: %w", err)
	}
	defer rows.Close()

	return collectNotifications(rows)
}

func (s *Storage) ListByStatus(ctx context.Context, status notification.Status, limit int) ([]notification.Notification, error) {
	if limit < 0 {
		limit = 0
	}

	rows, err := s.pool.Query(ctx, qNotificationsByStatus, string(status), limit)
	if err != nil {
		return nil, fmt.Errorf("query notifications by status: %w", err)
	}
	defer rows.Close()

	return collectNotifications(rows)
}

func (s *Storage) AppendAudit(ctx context.Context, entry notification.AuditEntry) error {
	var details []byte
	if entry.Details != nil {
		var err error
		details, err = json.Marshal(entry.Details)
		if err != nil {
			return fmt.Errorf("marshal audit details: %w", err)
		}
	}

	if _, err := s.pool.Exec(ctx, qAuditInsert,
		entry.ID,
		entry.NotificationID,
		entry.Event,
		entry.CreatedAt,
		details,
	); err != nil {
		// A retried append may race its predecessor; the entry is already
		// recorded, so the write succeeded.
		if IsDuplicateKeyError(err) {
			return nil
		}
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

func (s *Storage) ListAudit(ctx context.Context, notificationID string) ([]notification.AuditEntry, error) {
	rows, err := s.pool.Query(ctx, qAuditByNotification, notificationID)
	if err != nil {
		return nil, fmt.Errorf("query audit trail: %w", err)
	}
	defer rows.Close()

	var entries []notification.AuditEntry
	for rows.Next() {
		var (
			entry   notification.AuditEntry
			details []byte
		)
		if err := rows.Scan(&entry.ID, &entry.NotificationID, &entry.Event, &entry.CreatedAt, &details); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		if len(details) > 0 {
			if err := json.Unmarshal(details, &entry.Details); err != nil {
				return nil, fmt.Errorf("unmarshal audit details: %w", err)
			}
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return entries, nil
}

func (s *Storage) ArchiveOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, qArchiveOlderThan,
		string(notification.StatusArchived),
		string(notification.StatusSent),
		cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("archive notifications: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanNotification(row pgx.Row) (*notification.Notification, error) {
	var (
		n          notification.Notification
		level      string
		status     string
		recipients []byte
		metadata   []byte
	)
	if err := row.Scan(
		&n.ID,
		&level,
		&n.Subject,
		&n.Body,
		&recipients,
		&status,
		&n.CreatedAt,
		&n.SentAt,
		&n.RetryCount,
		&n.MaxRetries,
		&n.NextRetryAt,
		&n.ErrorMessage,
		&metadata,
	); err != nil {
		return nil, err
	}

	n.Level = notification.Level(level)
	n.Status = notification.Status(status)

	if err := json.Unmarshal(recipients, &n.Recipients); err != nil {
		return nil, fmt.Errorf("unmarshal recipients: %w", err)
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &n.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal metadata: %w", err)
		}
	}
	return &n, nil
}

func collectNotifications(rows pgx.Rows) ([]notification.Notification, error) {
	var out []notification.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		out = append(out, *n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}
