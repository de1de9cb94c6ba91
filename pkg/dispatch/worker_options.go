package dispatch

import (
	"log/slog"
	"time"

	"github.com/dmitrymomot/notifykit/pkg/idempotency"
)

// WorkerOption is a functional option for configuring a worker
type WorkerOption func(*workerOptions)

type workerOptions struct {
	pollInterval time.Duration
	queueSize    int
	maxBackoff   time.Duration
	clock        func() time.Time
	guard        idempotency.Guard
	logger       *slog.Logger
}

// WithPollInterval sets how often the worker scans storage for due
// notifications. The same interval bounds how long the worker waits on the
// submission channel between scans.
func WithPollInterval(d time.Duration) WorkerOption {
	return func(o *workerOptions) {
		if d > 0 {
			o.pollInterval = d
		}
	}
}

// WithQueueSize sets the submission channel buffer. Producers never block on
// a full buffer; overflow is picked up by the next storage scan.
func WithQueueSize(n int) WorkerOption {
	return func(o *workerOptions) {
		if n > 0 {
			o.queueSize = n
		}
	}
}

// WithMaxBackoff caps the exponential retry delay.
func WithMaxBackoff(d time.Duration) WorkerOption {
	return func(o *workerOptions) {
		if d > 0 {
			o.maxBackoff = d
		}
	}
}

// WithClock replaces the time source used for retry scheduling and
// eligibility checks. Intended for tests.
func WithClock(now func() time.Time) WorkerOption {
	return func(o *workerOptions) {
		if now != nil {
			o.clock = now
		}
	}
}

// WithIdempotencyGuard enables delivery dedup across lost status writes.
// Guard failures are soft: delivery proceeds as if no guard was configured.
func WithIdempotencyGuard(guard idempotency.Guard) WorkerOption {
	return func(o *workerOptions) {
		o.guard = guard
	}
}

// WithLogger sets the logger for the worker
func WithLogger(logger *slog.Logger) WorkerOption {
	return func(o *workerOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}
