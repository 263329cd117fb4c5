package consume

import (
	"container/heap"
	"sync"
	"time"

	"github.com/quarkmq/consumer/internal/log"
	"github.com/quarkmq/consumer/internal/message"
	"github.com/quarkmq/consumer/internal/tracking"
)

// retryEntry is one scheduled resubmission: a batch whose hand-back
// failed, re-entering the dispatch pipeline after its deadline.
type retryEntry struct {
	at       time.Time
	msgs     []*message.Message
	queue    message.QueueIdentity
	tracking *tracking.Queue
}

type retryHeap []*retryEntry

func (h retryHeap) Len() int            { return len(h) }
func (h retryHeap) Less(i, j int) bool  { return h[i].at.Before(h[j].at) }
func (h retryHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *retryHeap) Push(x interface{}) { *h = append(*h, x.(*retryEntry)) }
func (h *retryHeap) Pop() interface{} {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return e
}

// retryScheduler resubmits batches after a fixed delay. A single
// goroutine services a deadline-ordered heap, so one timer covers any
// number of pending retries and listener logic never runs on the
// scheduler goroutine itself.
type retryScheduler struct {
	addCh    chan *retryEntry
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	resubmit func(msgs []*message.Message, queue message.QueueIdentity, tq *tracking.Queue, viaRetryPath bool)
	log      *log.Logger
}

func newRetryScheduler(resubmit func([]*message.Message, message.QueueIdentity, *tracking.Queue, bool), logger *log.Logger) *retryScheduler {
	s := &retryScheduler{
		addCh:    make(chan *retryEntry, 64),
		stopCh:   make(chan struct{}),
		resubmit: resubmit,
		log:      logger,
	}
	s.wg.Add(1)
	go s.loop()
	return s
}

// schedule enqueues one batch for resubmission after delay. Batches
// scheduled after stop are dropped.
func (s *retryScheduler) schedule(msgs []*message.Message, queue message.QueueIdentity, tq *tracking.Queue, delay time.Duration) {
	e := &retryEntry{
		at:       time.Now().Add(delay),
		msgs:     msgs,
		queue:    queue,
		tracking: tq,
	}
	select {
	case s.addCh <- e:
	case <-s.stopCh:
		s.log.Warn("retry scheduler stopped, dropping %d messages for %s", len(msgs), queue)
	}
}

func (s *retryScheduler) loop() {
	defer s.wg.Done()

	pending := &retryHeap{}
	heap.Init(pending)

	timer := time.NewTimer(time.Hour)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		var timerC <-chan time.Time
		if pending.Len() > 0 {
			wait := time.Until((*pending)[0].at)
			if wait < 0 {
				wait = 0
			}
			timer.Reset(wait)
			timerC = timer.C
		}

		select {
		case e := <-s.addCh:
			heap.Push(pending, e)
		case <-timerC:
			now := time.Now()
			for pending.Len() > 0 && !(*pending)[0].at.After(now) {
				e := heap.Pop(pending).(*retryEntry)
				s.resubmit(e.msgs, e.queue, e.tracking, true)
			}
		case <-s.stopCh:
			if n := pending.Len(); n > 0 {
				s.log.Warn("retry scheduler stopping with %d batches still pending, they will not be resubmitted", n)
			}
			return
		}

		if timerC != nil && !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
	}
}

// stop terminates the scheduler. Retries already scheduled but not yet
// fired are lost; the messages stay outstanding in their tracking queues
// and will be redelivered by the next pull cycle.
func (s *retryScheduler) stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
	s.wg.Wait()
}
