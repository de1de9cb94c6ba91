package notification

import (
	"time"

	"github.com/google/uuid"
)

// DefaultMaxRetries is applied when a notification is created without an
// explicit retry budget.
const DefaultMaxRetries = 3

// Level represents notification severity.
type Level string

const (
	LevelDebug    Level = "DEBUG"
	LevelInfo     Level = "INFO"
	LevelWarning  Level = "WARNING"
	LevelError    Level = "ERROR"
	LevelCritical Level = "CRITICAL"
)

// Valid checks if the level is one of the known severities.
func (l Level) Valid() bool {
	switch l {
	case LevelDebug, LevelInfo, LevelWarning, LevelError, LevelCritical:
		return true
	}
	return false
}

// ParseLevel converts a stored string into a Level.
func ParseLevel(s string) (Level, error) {
	l := Level(s)
	if !l.Valid() {
		return "", ErrInvalidLevel
	}
	return l, nil
}

// Status represents the delivery lifecycle state of a notification.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusSent     Status = "SENT"
	StatusFailed   Status = "FAILED"
	StatusRetrying Status = "RETRYING"
	StatusArchived Status = "ARCHIVED"
)

// Valid checks if the status is one of the known lifecycle states.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusSent, StatusFailed, StatusRetrying, StatusArchived:
		return true
	}
	return false
}

// Terminal reports whether the status admits no further transitions.
func (s Status) Terminal() bool {
	return s == StatusFailed || s == StatusArchived
}

// ParseStatus converts a stored string into a Status.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", ErrInvalidStatus
	}
	return st, nil
}

// transitions is the allowed status transition table. FAILED records a
// permanently exhausted delivery and is never archived or revived.
var transitions = map[Status][]Status{
	StatusPending:  {StatusSent, StatusRetrying, StatusFailed},
	StatusRetrying: {StatusSent, StatusRetrying, StatusFailed},
	StatusSent:     {StatusArchived},
}

// CanTransition reports whether moving a notification from one status to
// another is allowed by the delivery lifecycle.
func CanTransition(from, to Status) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Notification is the durable record of a single delivery request.
// One record covers all its recipients; per-recipient outcomes are not
// tracked separately.
type Notification struct {
	ID           string         `json:"id"`
	Level        Level          `json:"level"`
	Subject      string         `json:"subject"`
	Body         string         `json:"body"`
	Recipients   []string       `json:"recipients"`
	Status       Status         `json:"status"`
	CreatedAt    time.Time      `json:"created_at"`
	SentAt       *time.Time     `json:"sent_at,omitempty"`
	RetryCount   int            `json:"retry_count"`
	MaxRetries   int            `json:"max_retries"`
	NextRetryAt  *time.Time     `json:"next_retry_at,omitempty"`
	ErrorMessage string         `json:"error_message,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// Option configures a notification at creation time.
type Option func(*Notification)

// WithMetadata attaches arbitrary key-value context to the notification.
func WithMetadata(meta map[string]any) Option {
	return func(n *Notification) {
		if len(meta) > 0 {
			n.Metadata = meta
		}
	}
}

// WithMaxRetries overrides the default retry budget.
// Negative values are ignored; zero disables retries entirely.
func WithMaxRetries(n int) Option {
	return func(notif *Notification) {
		if n >= 0 {
			notif.MaxRetries = n
		}
	}
}

// New creates a pending notification with a generated identifier.
func New(level Level, subject, body string, recipients []string, opts ...Option) (*Notification, error) {
	if !level.Valid() {
		return nil, ErrInvalidLevel
	}
	if len(recipients) == 0 {
		return nil, ErrNoRecipients
	}

	n := &Notification{
		ID:         uuid.New().String(),
		Level:      level,
		Subject:    subject,
		Body:       body,
		Recipients: append([]string(nil), recipients...),
		Status:     StatusPending,
		CreatedAt:  time.Now().UTC(),
		MaxRetries: DefaultMaxRetries,
	}

	for _, opt := range opts {
		opt(n)
	}

	return n, nil
}

// Eligible reports whether the notification is due for a delivery attempt.
// Pending records are always due; retrying records wait out their backoff.
func (n *Notification) Eligible(now time.Time) bool {
	switch n.Status {
	case StatusPending:
		return true
	case StatusRetrying:
		return n.NextRetryAt == nil || !n.NextRetryAt.After(now)
	}
	return false
}

// MarkSent transitions the notification to SENT, recording the delivery time
// and clearing retry bookkeeping.
func (n *Notification) MarkSent(at time.Time) error {
	if !CanTransition(n.Status, StatusSent) {
		return ErrInvalidTransition
	}
	n.Status = StatusSent
	n.SentAt = &at
	n.NextRetryAt = nil
	n.ErrorMessage = ""
	return nil
}

// ScheduleRetry records a failed attempt and moves the notification to
// RETRYING with the next attempt due after the given backoff.
func (n *Notification) ScheduleRetry(now time.Time, backoff time.Duration, cause string) error {
	if !CanTransition(n.Status, StatusRetrying) {
		return ErrInvalidTransition
	}
	next := now.Add(backoff)
	n.Status = StatusRetrying
	n.RetryCount++
	n.NextRetryAt = &next
	n.ErrorMessage = cause
	return nil
}

// MarkFailed transitions the notification to FAILED after the retry budget
// is exhausted. FAILED is terminal.
func (n *Notification) MarkFailed(cause string) error {
	if !CanTransition(n.Status, StatusFailed) {
		return ErrInvalidTransition
	}
	n.Status = StatusFailed
	n.NextRetryAt = nil
	n.ErrorMessage = cause
	return nil
}

// Archive transitions a delivered notification to ARCHIVED.
func (n *Notification) Archive() error {
	if !CanTransition(n.Status, StatusArchived) {
		return ErrInvalidTransition
	}
	n.Status = StatusArchived
	n.NextRetryAt = nil
	return nil
}
