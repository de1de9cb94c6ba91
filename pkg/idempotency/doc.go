// Package idempotency provides an optional dedup guard for the delivery
// worker.
//
// The worker persists a notification's status after each delivery attempt.
// If that write fails, the notification stays PENDING and will be delivered
// again on the next poll. A Guard closes this window: the worker marks a key
// after each successful send and checks it before the next attempt, so a
// notification whose SENT write was lost is recognized instead of re-sent.
//
// Two implementations are provided:
//
//   - MemoryGuard: map-backed, for tests and single-process setups.
//   - RedisGuard: SETNX/EXISTS with TTL, for deployments where several
//     workers share a store.
//
// Guard failures are soft. An unreachable backend returns
// ErrGuardUnavailable, and callers proceed with delivery as if no guard was
// configured: an occasional duplicate is preferable to halting delivery.
//
// # Usage
//
//	client, err := idempotency.Connect(ctx, cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//	guard := idempotency.NewRedisGuard(client)
//
//	worker, err := dispatch.NewWorker(storage, sender,
//		dispatch.WithIdempotencyGuard(guard),
//	)
package idempotency
