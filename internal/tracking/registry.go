package tracking

import (
	"sync"

	"github.com/quarkmq/consumer/internal/message"
)

// Registry maps queue identities to their tracking queues. The registry
// lock covers only the lookup; each Queue carries its own lock, so
// removal on one partition never blocks inserts on another.
type Registry struct {
	mu     sync.RWMutex
	queues map[message.QueueIdentity]*Queue
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{queues: make(map[message.QueueIdentity]*Queue)}
}

// Get returns the tracking queue for the identity, or nil.
func (r *Registry) Get(q message.QueueIdentity) *Queue {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.queues[q]
}

// GetOrCreate returns the tracking queue for the identity, creating it on
// first use.
func (r *Registry) GetOrCreate(q message.QueueIdentity) *Queue {
	r.mu.RLock()
	tq := r.queues[q]
	r.mu.RUnlock()
	if tq != nil {
		return tq
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if tq = r.queues[q]; tq == nil {
		tq = NewQueue()
		r.queues[q] = tq
	}
	return tq
}

// Drop marks the identity's queue dropped and removes it from the
// registry. Returns false if the queue was unknown.
func (r *Registry) Drop(q message.QueueIdentity) bool {
	r.mu.Lock()
	tq := r.queues[q]
	delete(r.queues, q)
	r.mu.Unlock()

	if tq == nil {
		return false
	}
	tq.Drop()
	return true
}

// Len returns the number of tracked queues.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.queues)
}
