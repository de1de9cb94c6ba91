package notification

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStorage is an in-memory implementation of the Storage interface.
// Suitable for development and testing.
type MemoryStorage struct {
	notifications map[string]Notification
	audit         map[string][]AuditEntry
	mu            sync.RWMutex
}

// NewMemoryStorage creates a new in-memory notification storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		notifications: make(map[string]Notification),
		audit:         make(map[string][]AuditEntry),
	}
}

func (s *MemoryStorage) Save(ctx context.Context, n *Notification) error {
	if n == nil || n.ID == "" {
		return ErrNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *n
	stored.Recipients = append([]string(nil), n.Recipients...)
	if n.Metadata != nil {
		meta := make(map[string]any, len(n.Metadata))
		for k, v := range n.Metadata {
			meta[k] = v
		}
		stored.Metadata = meta
	}
	s.notifications[n.ID] = stored
	return nil
}

func (s *MemoryStorage) Get(ctx context.Context, id string) (*Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.notifications[id]
	if !ok {
		return nil, ErrNotFound
	}

	// Return a copy to prevent external mutation of stored data
	n := stored
	n.Recipients = append([]string(nil), stored.Recipients...)
	return &n, nil
}

func (s *MemoryStorage) ListPending(ctx context.Context) ([]Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var pending []Notification
	for _, n := range s.notifications {
		if n.Status == StatusPending || n.Status == StatusRetrying {
			pending = append(pending, n)
		}
	}

	sort.Slice(pending, func(i, j int) bool {
		return pending[i].CreatedAt.Before(pending[j].CreatedAt)
	})

	return pending, nil
}

func (s *MemoryStorage) ListByStatus(ctx context.Context, status Status, limit int) ([]Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []Notification
	for _, n := range s.notifications {
		if n.Status == status {
			matched = append(matched, n)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}

	return matched, nil
}

func (s *MemoryStorage) AppendAudit(ctx context.Context, entry AuditEntry) error {
	if entry.NotificationID == "" {
		return ErrNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.audit[entry.NotificationID] = append(s.audit[entry.NotificationID], entry)
	return nil
}

func (s *MemoryStorage) ListAudit(ctx context.Context, notificationID string) ([]AuditEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := s.audit[notificationID]
	out := make([]AuditEntry, len(entries))
	copy(out, entries)

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	return out, nil
}

func (s *MemoryStorage) ArchiveOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var archived int64
	for id, n := range s.notifications {
		if n.Status != StatusSent || !n.CreatedAt.Before(cutoff) {
			continue
		}
		n.Status = StatusArchived
		n.NextRetryAt = nil
		s.notifications[id] = n
		archived++
	}

	return archived, nil
}
