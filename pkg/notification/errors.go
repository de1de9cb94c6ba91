package notification

import "errors"

var (
	// ErrNotFound is returned when no notification exists for the given ID.
	ErrNotFound = errors.New("notification not found")

	// ErrNoRecipients is returned when a notification is created without recipients.
	ErrNoRecipients = errors.New("notification requires at least one recipient")

	// ErrInvalidLevel is returned for an unknown severity level.
	ErrInvalidLevel = errors.New("invalid notification level")

	// ErrInvalidStatus is returned for an unknown lifecycle status.
	ErrInvalidStatus = errors.New("invalid notification status")

	// ErrInvalidTransition is returned when a status change violates the
	// delivery lifecycle.
	ErrInvalidTransition = errors.New("invalid status transition")
)
