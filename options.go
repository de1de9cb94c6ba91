package notifykit

import (
	"log/slog"
	"time"

	"github.com/dmitrymomot/notifykit/pkg/idempotency"
	"github.com/dmitrymomot/notifykit/pkg/notification"
	"github.com/dmitrymomot/notifykit/pkg/rules"
	"github.com/dmitrymomot/notifykit/pkg/template"
)

// Option is a functional option for configuring a System.
type Option func(*systemOptions)

type systemOptions struct {
	logger       *slog.Logger
	templates    []template.Template
	rules        []rules.Rule
	pollInterval time.Duration
	queueSize    int
	maxBackoff   time.Duration
	guard        idempotency.Guard
	clock        func() time.Time
	maxRetries   int
}

// WithLogger sets the logger shared by the facade, the rule engine and the
// delivery worker.
func WithLogger(log *slog.Logger) Option {
	return func(o *systemOptions) {
		if log != nil {
			o.logger = log
		}
	}
}

// WithTemplates registers additional templates at construction. They are
// applied after the stock set, so a template sharing a stock name replaces it.
func WithTemplates(templates ...template.Template) Option {
	return func(o *systemOptions) {
		o.templates = append(o.templates, templates...)
	}
}

// WithRules registers alert rules at construction.
func WithRules(rs ...rules.Rule) Option {
	return func(o *systemOptions) {
		o.rules = append(o.rules, rs...)
	}
}

// WithPollInterval sets the delivery worker's poll interval.
func WithPollInterval(d time.Duration) Option {
	return func(o *systemOptions) {
		if d > 0 {
			o.pollInterval = d
		}
	}
}

// WithQueueSize sets the delivery worker's submission buffer size.
func WithQueueSize(n int) Option {
	return func(o *systemOptions) {
		if n > 0 {
			o.queueSize = n
		}
	}
}

// WithMaxBackoff caps the exponential retry delay between delivery attempts.
func WithMaxBackoff(d time.Duration) Option {
	return func(o *systemOptions) {
		if d > 0 {
			o.maxBackoff = d
		}
	}
}

// WithIdempotencyGuard enables delivery dedup across lost status writes.
func WithIdempotencyGuard(guard idempotency.Guard) Option {
	return func(o *systemOptions) {
		o.guard = guard
	}
}

// WithClock replaces the time source. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(o *systemOptions) {
		if now != nil {
			o.clock = now
		}
	}
}

// WithDefaultMaxRetries sets the retry budget applied to notifications
// created through the facade.
func WithDefaultMaxRetries(n int) Option {
	return func(o *systemOptions) {
		if n >= 0 {
			o.maxRetries = n
		}
	}
}

// SendOption overrides per-notification settings on template and alert sends.
type SendOption func(*sendOptions)

type sendOptions struct {
	level      notification.Level
	metadata   map[string]any
	maxRetries int // -1 means the system default
}

// SendWithLevel overrides the severity level. Template sends default to Info.
func SendWithLevel(level notification.Level) SendOption {
	return func(o *sendOptions) {
		o.level = level
	}
}

// SendWithMetadata attaches metadata to the notification.
func SendWithMetadata(meta map[string]any) SendOption {
	return func(o *sendOptions) {
		o.metadata = meta
	}
}

// SendWithMaxRetries overrides the notification's retry budget.
func SendWithMaxRetries(n int) SendOption {
	return func(o *sendOptions) {
		if n >= 0 {
			o.maxRetries = n
		}
	}
}
