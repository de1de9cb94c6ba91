package idempotency

import (
	"context"
	"time"

	"github.com/dmitrymomot/notifykit/pkg/notification"
)

// Guard tracks delivery keys that were already handed to a transport, so a
// notification whose status update was lost is not delivered a second time.
type Guard interface {
	// Seen reports whether the key was marked and its TTL has not elapsed.
	Seen(ctx context.Context, key string) (bool, error)

	// Mark records the key for ttl. A non-positive ttl keeps the key until
	// the backend evicts it.
	Mark(ctx context.Context, key string, ttl time.Duration) error
}

// Key returns the delivery dedup key for a notification. The key depends on
// the notification id only: retries of the same notification share one key.
func Key(n *notification.Notification) string {
	return "notify:delivered:" + n.ID
}
