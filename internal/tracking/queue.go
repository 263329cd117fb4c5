// Package tracking records which pulled-but-unacknowledged messages are
// outstanding per queue and computes the next safely advanceable offset.
package tracking

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/quarkmq/consumer/internal/message"
)

// OffsetNone is returned by RemoveMessages when no offset became safe to
// advance (the queue never held any of the removed messages).
const OffsetNone = int64(-1)

// Queue holds the outstanding messages of one logical partition, ordered
// by queue offset. The puller inserts, consume tasks remove; both sides
// may run concurrently, so every mutation happens under the lock. The
// dropped flag marks a partition the consumer no longer owns (rebalanced
// away); it is checked lock-free on the consume hot path.
type Queue struct {
	mu        sync.Mutex
	msgs      map[int64]*message.Message
	maxOffset int64
	dropped   atomic.Bool
}

// NewQueue creates an empty tracking queue.
func NewQueue() *Queue {
	return &Queue{msgs: make(map[int64]*message.Message)}
}

// IsDropped reports whether this partition has been revoked.
func (q *Queue) IsDropped() bool {
	return q.dropped.Load()
}

// Drop marks the partition as revoked. Consume tasks in flight will
// discard their results instead of acting on it.
func (q *Queue) Drop() {
	q.dropped.Store(true)
}

// Put records newly pulled messages as outstanding.
func (q *Queue) Put(msgs []*message.Message) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, m := range msgs {
		q.msgs[m.QueueOffset] = m
		if m.QueueOffset > q.maxOffset {
			q.maxOffset = m.QueueOffset
		}
	}
}

// Len returns the number of outstanding messages.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.msgs)
}

// Contains reports whether the message at the given offset is outstanding.
func (q *Queue) Contains(offset int64) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	_, ok := q.msgs[offset]
	return ok
}

// RemoveMessages removes durably resolved messages and returns the offset
// consumption may safely advance to: the lowest offset still outstanding,
// or maxOffset+1 once the queue drains. Returns OffsetNone when the queue
// held nothing to begin with, so a caller never persists an offset this
// structure did not produce.
func (q *Queue) RemoveMessages(msgs []*message.Message) int64 {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.msgs) == 0 {
		return OffsetNone
	}

	for _, m := range msgs {
		delete(q.msgs, m.QueueOffset)
	}

	if len(q.msgs) == 0 {
		return q.maxOffset + 1
	}
	return q.lowestOffsetLocked()
}

func (q *Queue) lowestOffsetLocked() int64 {
	first := true
	var lowest int64
	for off := range q.msgs {
		if first || off < lowest {
			lowest = off
			first = false
		}
	}
	return lowest
}

// Snapshot returns the outstanding messages in offset order. Used by the
// rebalance path when handing a partition to another consumer.
func (q *Queue) Snapshot() []*message.Message {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]*message.Message, 0, len(q.msgs))
	for _, m := range q.msgs {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].QueueOffset < out[j].QueueOffset })
	return out
}
