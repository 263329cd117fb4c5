package consume

import (
	"errors"
	"sync"

	"github.com/quarkmq/consumer/internal/log"
)

// ErrPoolShutdown is returned by submit after the pool stopped accepting
// work.
var ErrPoolShutdown = errors.New("worker pool is shut down")

// workerPool executes consume requests on a tunable number of workers fed
// from an unbounded FIFO queue. Because the queue is unbounded the pool
// never grows past the core size; the configured maximum acts only as the
// ceiling for runtime core-size tuning. Backpressure is therefore
// controlled by sizing the core, not by queue rejection.
type workerPool struct {
	mu       sync.Mutex
	cond     *sync.Cond
	queue    []func()
	core     int
	workers  int
	shutdown bool
	wg       sync.WaitGroup
	log      *log.Logger
}

func newWorkerPool(core int, logger *log.Logger) *workerPool {
	if core < 1 {
		core = 1
	}
	p := &workerPool{
		core: core,
		log:  logger,
	}
	p.cond = sync.NewCond(&p.mu)

	p.mu.Lock()
	for p.workers < p.core {
		p.spawnLocked()
	}
	p.mu.Unlock()
	return p
}

func (p *workerPool) spawnLocked() {
	p.workers++
	p.wg.Add(1)
	go p.worker()
}

func (p *workerPool) worker() {
	defer p.wg.Done()
	for {
		p.mu.Lock()
		for len(p.queue) == 0 && !p.shutdown && p.workers <= p.core {
			p.cond.Wait()
		}

		// Retire surplus workers once the queue drains; pending work is
		// still served first so a shrink never strands queued requests.
		if len(p.queue) == 0 {
			p.workers--
			p.mu.Unlock()
			return
		}

		task := p.queue[0]
		p.queue = p.queue[1:]
		p.mu.Unlock()

		task()
	}
}

// submit enqueues a task. It never blocks; the queue is unbounded.
func (p *workerPool) submit(task func()) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.shutdown {
		return ErrPoolShutdown
	}
	p.queue = append(p.queue, task)
	p.cond.Signal()
	return nil
}

// setCoreSize adjusts the worker count at runtime. Growing spawns workers
// immediately; shrinking lets surplus workers retire after the queue
// drains. The caller is responsible for range validation.
func (p *workerPool) setCoreSize(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.shutdown || n < 1 {
		return
	}
	p.core = n
	for p.workers < p.core {
		p.spawnLocked()
	}
	p.cond.Broadcast()
}

func (p *workerPool) coreSize() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.core
}

func (p *workerPool) pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queue)
}

// close stops accepting work and waits until queued and in-flight tasks
// finish.
func (p *workerPool) close() {
	p.mu.Lock()
	if p.shutdown {
		p.mu.Unlock()
		p.wg.Wait()
		return
	}
	p.shutdown = true
	p.cond.Broadcast()
	p.mu.Unlock()
	p.wg.Wait()
}
