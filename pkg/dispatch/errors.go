package dispatch

import "errors"

var (
	// ErrStorageNil is returned when a nil storage is provided
	ErrStorageNil = errors.New("storage cannot be nil")

	// ErrSenderNil is returned when a nil sender is provided
	ErrSenderNil = errors.New("sender cannot be nil")

	// ErrAlreadyStarted is returned when starting a running worker
	ErrAlreadyStarted = errors.New("worker already started")

	// ErrNotStarted is returned when stopping a worker that is not running
	ErrNotStarted = errors.New("worker not started")
)
