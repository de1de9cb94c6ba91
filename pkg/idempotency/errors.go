package idempotency

import "errors"

var (
	ErrFailedToParseRedisConnString = errors.New("failed to parse redis connection string")
	ErrRedisNotReady                = errors.New("redis did not become ready within the given time period")

	// ErrGuardUnavailable wraps backend failures. Callers are expected to
	// treat it as a soft failure and proceed with delivery.
	ErrGuardUnavailable = errors.New("idempotency guard unavailable")
)
