package idempotency

import (
	"context"
	"sync"
	"time"
)

// MemoryGuard is an in-process Guard backed by a map. It is suitable for
// tests and single-process deployments; expired entries are removed lazily
// when read.
type MemoryGuard struct {
	mu      sync.Mutex
	entries map[string]time.Time // key -> expiry; zero value means no expiry
}

// NewMemoryGuard creates an empty in-memory guard.
func NewMemoryGuard() *MemoryGuard {
	return &MemoryGuard{entries: make(map[string]time.Time)}
}

func (g *MemoryGuard) Seen(ctx context.Context, key string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	expiry, ok := g.entries[key]
	if !ok {
		return false, nil
	}
	if !expiry.IsZero() && time.Now().After(expiry) {
		delete(g.entries, key)
		return false, nil
	}
	return true, nil
}

func (g *MemoryGuard) Mark(ctx context.Context, key string, ttl time.Duration) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	var expiry time.Time
	if ttl > 0 {
		expiry = time.Now().Add(ttl)
	}
	g.entries[key] = expiry
	return nil
}
