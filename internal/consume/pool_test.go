package consume

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarkmq/consumer/internal/log"
)

func TestWorkerPool_ExecutesAllTasks(t *testing.T) {
	p := newWorkerPool(2, log.New())
	defer p.close()

	var done sync.WaitGroup
	var count atomic.Int64
	for i := 0; i < 50; i++ {
		done.Add(1)
		err := p.submit(func() {
			count.Add(1)
			done.Done()
		})
		require.NoError(t, err)
	}
	done.Wait()

	assert.Equal(t, int64(50), count.Load())
}

func TestWorkerPool_SubmitAfterClose(t *testing.T) {
	p := newWorkerPool(1, log.New())
	p.close()

	err := p.submit(func() {})
	assert.ErrorIs(t, err, ErrPoolShutdown)
}

func TestWorkerPool_CloseDrainsQueue(t *testing.T) {
	p := newWorkerPool(1, log.New())

	var count atomic.Int64
	for i := 0; i < 20; i++ {
		require.NoError(t, p.submit(func() {
			time.Sleep(time.Millisecond)
			count.Add(1)
		}))
	}

	p.close()

	assert.Equal(t, int64(20), count.Load())
	assert.Equal(t, 0, p.pending())
}

func TestWorkerPool_CloseIdempotent(t *testing.T) {
	p := newWorkerPool(2, log.New())
	p.close()
	p.close()
}

func TestWorkerPool_SetCoreSize(t *testing.T) {
	p := newWorkerPool(2, log.New())
	defer p.close()

	p.setCoreSize(6)
	assert.Equal(t, 6, p.coreSize())

	p.setCoreSize(1)
	assert.Equal(t, 1, p.coreSize())

	// Out-of-range requests are the caller's problem; zero is ignored here.
	p.setCoreSize(0)
	assert.Equal(t, 1, p.coreSize())
}

func TestWorkerPool_ShrinkStillServesQueuedWork(t *testing.T) {
	p := newWorkerPool(4, log.New())

	var done sync.WaitGroup
	var count atomic.Int64
	for i := 0; i < 30; i++ {
		done.Add(1)
		require.NoError(t, p.submit(func() {
			time.Sleep(time.Millisecond)
			count.Add(1)
			done.Done()
		}))
	}

	p.setCoreSize(1)
	done.Wait()
	p.close()

	assert.Equal(t, int64(30), count.Load())
}

func TestWorkerPool_MinimumOneWorker(t *testing.T) {
	p := newWorkerPool(0, log.New())
	defer p.close()

	assert.Equal(t, 1, p.coreSize())

	ran := make(chan struct{})
	require.NoError(t, p.submit(func() { close(ran) }))
	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("task did not run")
	}
}
