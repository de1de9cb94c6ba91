package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrymomot/notifykit/pkg/idempotency"
	"github.com/dmitrymomot/notifykit/pkg/logger"
	"github.com/dmitrymomot/notifykit/pkg/mailer"
	"github.com/dmitrymomot/notifykit/pkg/notification"
)

const (
	// DefaultMaxBackoff caps the exponential retry delay.
	DefaultMaxBackoff = 60 * time.Minute

	// processTimeout bounds one delivery attempt including its storage
	// writes. Attempts run on a context detached from the worker lifecycle
	// so graceful shutdown lets the in-flight notification finish.
	processTimeout = 5 * time.Minute

	// guardKeyTTL covers the longest plausible redelivery window of a
	// notification before its dedup key may expire.
	guardKeyTTL = 24 * time.Hour
)

// Backoff returns the delay before the next delivery attempt:
// 2^retryCount minutes, capped at max. retryCount is the attempt's position
// in the retry sequence, starting at 1.
func Backoff(retryCount int, max time.Duration) time.Duration {
	if max <= 0 {
		max = DefaultMaxBackoff
	}
	if retryCount < 1 {
		retryCount = 1
	}
	// 2^n overflows quickly; anything past 30 doublings is over the cap anyway.
	if retryCount > 30 {
		return max
	}
	d := time.Duration(1<<uint(retryCount)) * time.Minute
	if d > max {
		return max
	}
	return d
}

// Stats is a snapshot of the worker's delivery counters.
type Stats struct {
	Processed int64 `json:"processed"`
	Sent      int64 `json:"sent"`
	Retried   int64 `json:"retried"`
	Failed    int64 `json:"failed"`
}

// Worker drains the submission queue and scans storage for due
// notifications, delivering them serially through the configured sender.
type Worker struct {
	storage notification.Storage
	sender  mailer.Sender
	guard   idempotency.Guard

	submissions chan *notification.Notification

	pollInterval time.Duration
	maxBackoff   time.Duration
	now          func() time.Time
	logger       *slog.Logger

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	processed atomic.Int64
	sent      atomic.Int64
	retried   atomic.Int64
	failed    atomic.Int64
}

// NewWorker creates a delivery worker over the given storage and sender.
func NewWorker(storage notification.Storage, sender mailer.Sender, opts ...WorkerOption) (*Worker, error) {
	if storage == nil {
		return nil, ErrStorageNil
	}
	if sender == nil {
		return nil, ErrSenderNil
	}

	options := &workerOptions{
		pollInterval: 5 * time.Second,
		queueSize:    256,
		maxBackoff:   DefaultMaxBackoff,
		clock:        time.Now,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	return &Worker{
		storage:      storage,
		sender:       sender,
		guard:        options.guard,
		submissions:  make(chan *notification.Notification, options.queueSize),
		pollInterval: options.pollInterval,
		maxBackoff:   options.maxBackoff,
		now:          options.clock,
		logger:       options.logger,
	}, nil
}

// Enqueue hands a notification to the worker's fast path without blocking.
// On a full buffer the notification is dropped from the fast path only: it is
// already persisted and the next storage scan picks it up.
func (w *Worker) Enqueue(n *notification.Notification) {
	if n == nil {
		return
	}
	select {
	case w.submissions <- n:
	default:
		w.logger.LogAttrs(context.Background(), slog.LevelDebug, "Submission buffer full, deferring to poll",
			logger.NotificationID(n.ID),
		)
	}
}

// Start begins processing notifications in the background.
func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.cancel != nil {
		return ErrAlreadyStarted
	}

	w.ctx, w.cancel = context.WithCancel(ctx)
	w.wg.Add(1)
	go w.run()

	w.logger.LogAttrs(ctx, slog.LevelInfo, "Delivery worker started",
		slog.Duration("poll_interval", w.pollInterval),
		slog.Int("queue_size", cap(w.submissions)),
	)
	return nil
}

// Stop shuts the worker down, waiting for the in-flight notification to
// finish.
func (w *Worker) Stop() error {
	w.mu.Lock()
	if w.cancel == nil {
		w.mu.Unlock()
		return ErrNotStarted
	}
	cancel := w.cancel
	w.cancel = nil
	w.mu.Unlock()

	cancel()
	w.wg.Wait()

	w.logger.LogAttrs(context.Background(), slog.LevelInfo, "Delivery worker stopped")
	return nil
}

// Run starts the worker and returns a function suitable for errgroup
func (w *Worker) Run(ctx context.Context) func() error {
	return func() error {
		if err := w.Start(ctx); err != nil {
			return err
		}

		<-ctx.Done()

		return w.Stop()
	}
}

// Stats returns a snapshot of the delivery counters.
func (w *Worker) Stats() Stats {
	return Stats{
		Processed: w.processed.Load(),
		Sent:      w.sent.Load(),
		Retried:   w.retried.Load(),
		Failed:    w.failed.Load(),
	}
}

// run is the main processing loop. The wait on the submission channel doubles
// as the poll clock: submitted notifications are handled immediately, and at
// least once per poll interval storage is scanned for due retries.
func (w *Worker) run() {
	defer w.wg.Done()

	timer := time.NewTimer(w.pollInterval)
	defer timer.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case n := <-w.submissions:
			w.process(n)
			w.drain()
		case <-timer.C:
			w.drain()
			w.scan()
			timer.Reset(w.pollInterval)
		}
	}
}

// drain processes everything currently buffered without blocking.
func (w *Worker) drain() {
	for {
		select {
		case <-w.ctx.Done():
			return
		case n := <-w.submissions:
			w.process(n)
		default:
			return
		}
	}
}

// scan picks up due notifications that bypassed the fast path: poll
// submissions dropped on a full buffer, retries whose backoff elapsed, and
// anything left PENDING by a crashed worker.
func (w *Worker) scan() {
	pending, err := w.storage.ListPending(w.ctx)
	if err != nil {
		if w.ctx.Err() == nil {
			w.logger.LogAttrs(w.ctx, slog.LevelError, "Failed to scan pending notifications",
				logger.Error(err),
			)
		}
		return
	}

	for i := range pending {
		if w.ctx.Err() != nil {
			return
		}
		n := &pending[i]
		if !n.Eligible(w.now()) {
			continue
		}
		w.process(n)
	}
}

// process runs one delivery attempt and persists the resulting state change.
// Exactly one Save happens per attempt; a failed Save is logged and the state
// discarded, so the notification is processed again on a later scan.
func (w *Worker) process(n *notification.Notification) {
	if n.Status != notification.StatusPending && n.Status != notification.StatusRetrying {
		return
	}

	w.processed.Add(1)
	start := time.Now()

	// Detached from the worker lifecycle so Stop lets the attempt finish.
	ctx, cancel := context.WithTimeout(context.Background(), processTimeout)
	defer cancel()
	ctx = logger.ContextWithNotificationID(ctx, n.ID)

	if err := w.deliver(ctx, n); err != nil {
		w.retryOrFail(ctx, n, err)
		return
	}

	w.sent.Add(1)
	if err := n.MarkSent(w.now()); err != nil {
		w.logger.LogAttrs(ctx, slog.LevelError, "Cannot mark notification sent",
			logger.Error(err),
			logger.Status(n.Status),
		)
		return
	}
	if err := w.storage.Save(ctx, n); err != nil {
		w.logger.LogAttrs(ctx, slog.LevelError, "Failed to persist sent status, notification may be re-delivered",
			logger.Error(err),
		)
		return
	}
	w.audit(ctx, n, notification.EventSent, map[string]any{
		"recipients": len(n.Recipients),
	})
	w.logger.LogAttrs(ctx, slog.LevelInfo, "Notification sent",
		logger.Level(n.Level),
		logger.Recipients(len(n.Recipients)),
		logger.Duration(time.Since(start)),
	)
}

// deliver consults the idempotency guard and invokes the sender. A panicking
// sender is recovered and reported as a delivery failure.
func (w *Worker) deliver(ctx context.Context, n *notification.Notification) (err error) {
	key := ""
	if w.guard != nil {
		key = idempotency.Key(n)
		seen, guardErr := w.guard.Seen(ctx, key)
		switch {
		case guardErr != nil:
			w.logger.LogAttrs(ctx, slog.LevelWarn, "Idempotency guard unavailable, delivering anyway",
				logger.Error(guardErr),
			)
		case seen:
			w.logger.LogAttrs(ctx, slog.LevelInfo, "Delivery suppressed, notification already sent")
			return nil
		}
	}

	if err := w.send(ctx, n); err != nil {
		return err
	}

	if w.guard != nil {
		if guardErr := w.guard.Mark(ctx, key, guardKeyTTL); guardErr != nil {
			w.logger.LogAttrs(ctx, slog.LevelWarn, "Failed to mark delivery in idempotency guard",
				logger.Error(guardErr),
			)
		}
	}
	return nil
}

func (w *Worker) send(ctx context.Context, n *notification.Notification) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in sender: %v", r)
			w.logger.LogAttrs(ctx, slog.LevelError, "Sender panicked",
				slog.Any("panic", r),
			)
		}
	}()

	return w.sender.Send(ctx, mailer.Message{
		Recipients: n.Recipients,
		Subject:    n.Subject,
		BodyHTML:   n.Body,
		Tag:        string(n.Level),
	})
}

// retryOrFail schedules the next attempt or, with retries exhausted, marks
// the notification permanently failed.
func (w *Worker) retryOrFail(ctx context.Context, n *notification.Notification, cause error) {
	if n.RetryCount < n.MaxRetries {
		delay := Backoff(n.RetryCount+1, w.maxBackoff)
		if err := n.ScheduleRetry(w.now(), delay, cause.Error()); err != nil {
			w.logger.LogAttrs(ctx, slog.LevelError, "Cannot schedule retry",
				logger.Error(err),
				logger.Status(n.Status),
			)
			return
		}
		if err := w.storage.Save(ctx, n); err != nil {
			w.logger.LogAttrs(ctx, slog.LevelError, "Failed to persist retry state",
				logger.Error(err),
			)
			return
		}
		w.retried.Add(1)
		w.audit(ctx, n, notification.EventRetryScheduled, map[string]any{
			"retry_count": n.RetryCount,
			"error":       cause.Error(),
		})
		w.logger.LogAttrs(ctx, slog.LevelWarn, "Delivery failed, retry scheduled",
			logger.RetryCount(n.RetryCount),
			slog.Duration("backoff", delay),
			logger.Error(cause),
		)
		return
	}

	if err := n.MarkFailed(cause.Error()); err != nil {
		w.logger.LogAttrs(ctx, slog.LevelError, "Cannot mark notification failed",
			logger.Error(err),
			logger.Status(n.Status),
		)
		return
	}
	if err := w.storage.Save(ctx, n); err != nil {
		w.logger.LogAttrs(ctx, slog.LevelError, "Failed to persist failed status",
			logger.Error(err),
		)
		return
	}
	w.failed.Add(1)
	w.audit(ctx, n, notification.EventFailedPermanent, map[string]any{
		"retry_count": n.RetryCount,
		"error":       cause.Error(),
	})
	w.logger.LogAttrs(ctx, slog.LevelError, "Notification failed permanently",
		logger.RetryCount(n.RetryCount),
		logger.Error(cause),
	)
}

// audit appends a delivery history entry. Audit writes are best-effort and
// never roll back the status change they describe.
func (w *Worker) audit(ctx context.Context, n *notification.Notification, event string, details map[string]any) {
	entry := notification.NewAuditEntry(n.ID, event, details)
	if err := w.storage.AppendAudit(ctx, entry); err != nil {
		w.logger.LogAttrs(ctx, slog.LevelWarn, "Failed to append audit entry",
			logger.Event(event),
			logger.Error(err),
		)
	}
}
