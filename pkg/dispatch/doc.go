// Package dispatch runs the background delivery loop for queued
// notifications.
//
// A Worker combines two intake paths. Producers hand freshly persisted
// notifications to Enqueue for immediate processing, and a periodic storage
// scan picks up everything else: retries whose backoff elapsed, submissions
// dropped on a full buffer, and records left behind by a previous process.
// Processing is serial, so storage implementations never see concurrent
// writes from one worker.
//
// # Delivery semantics
//
// Each attempt ends in exactly one storage write: SENT on success, RETRYING
// with an exponential backoff (2^n minutes, capped) while retries remain, or
// FAILED once they are exhausted. Every outcome appends an audit entry.
//
// Delivery is at-least-once. When the status write after a successful send
// fails, the worker logs the error and discards the state change; the next
// scan delivers the notification again. Configure an idempotency.Guard to
// suppress those duplicates where they matter.
//
// # Usage
//
//	worker, err := dispatch.NewWorker(storage, sender,
//		dispatch.WithPollInterval(5*time.Second),
//		dispatch.WithLogger(log),
//	)
//	if err != nil {
//		return err
//	}
//
//	if err := worker.Start(ctx); err != nil {
//		return err
//	}
//	defer worker.Stop()
//
//	worker.Enqueue(n)
//
// Or under errgroup:
//
//	g, ctx := errgroup.WithContext(ctx)
//	g.Go(worker.Run(ctx))
package dispatch
