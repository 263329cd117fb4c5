// Package offset persists the locally tracked consumption offset per
// queue. Updates are best-effort and never block the consume path.
package offset

import (
	"context"
	"sync"

	"github.com/quarkmq/consumer/internal/message"
)

// OffsetUnknown is returned by Read for queues with no recorded offset.
const OffsetUnknown = int64(-1)

// Store records consumption progress per queue.
type Store interface {
	// Update records a new offset. With persistImmediately the write is
	// also pushed to the backing store asynchronously; either way the
	// call returns without blocking.
	Update(queue message.QueueIdentity, offset int64, persistImmediately bool)
	// Read returns the recorded offset, or OffsetUnknown.
	Read(queue message.QueueIdentity) int64
	// PersistAll flushes every locally recorded offset.
	PersistAll(ctx context.Context) error
	// Remove forgets a queue's offset, used when a partition is revoked.
	Remove(queue message.QueueIdentity)
}

// MemoryStore keeps offsets in process memory only. Broadcasting
// consumers use it: their progress is per-instance and not shared.
type MemoryStore struct {
	mu    sync.RWMutex
	table map[message.QueueIdentity]int64
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{table: make(map[message.QueueIdentity]int64)}
}

// Update records the offset. Offsets never move backwards.
func (s *MemoryStore) Update(queue message.QueueIdentity, offset int64, _ bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.table[queue]; !ok || offset > cur {
		s.table[queue] = offset
	}
}

// Read returns the recorded offset, or OffsetUnknown.
func (s *MemoryStore) Read(queue message.QueueIdentity) int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if off, ok := s.table[queue]; ok {
		return off
	}
	return OffsetUnknown
}

// PersistAll is a no-op for the in-memory store.
func (s *MemoryStore) PersistAll(context.Context) error { return nil }

// Remove forgets the queue's offset.
func (s *MemoryStore) Remove(queue message.QueueIdentity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.table, queue)
}
