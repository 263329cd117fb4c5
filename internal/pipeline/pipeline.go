// Package pipeline coordinates the ingest to consumption hot path: it
// batches incoming messages per queue, registers them as outstanding, and
// feeds the consumption engine, while periodically flushing offsets.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/quarkmq/consumer/internal/broker"
	"github.com/quarkmq/consumer/internal/config"
	"github.com/quarkmq/consumer/internal/consume"
	"github.com/quarkmq/consumer/internal/log"
	"github.com/quarkmq/consumer/internal/message"
	"github.com/quarkmq/consumer/internal/offset"
	"github.com/quarkmq/consumer/internal/tracking"
)

// Subscriber starts the ingest subscription feeding the pipeline.
// Both *broker.Client and *broker.Pool satisfy it.
type Subscriber interface {
	Subscribe(handler broker.MessageHandler) error
}

// Pipeline orchestrates the ingest→consume flow.
type Pipeline struct {
	subscriber Subscriber
	engine     *consume.Service
	registry   *tracking.Registry
	offsets    offset.Store

	msgChan           chan *message.Message
	dispatchBatchSize int
	flushInterval     time.Duration
	persistTicker     *time.Ticker
	shutdownTimeout   time.Duration
	log               *log.Logger
}

// New creates a pipeline wired to the given engine and transport.
func New(
	subscriber Subscriber,
	engine *consume.Service,
	registry *tracking.Registry,
	offsets offset.Store,
	cfg *config.PipelineConfig,
	logger *log.Logger,
) *Pipeline {
	return &Pipeline{
		subscriber:        subscriber,
		engine:            engine,
		registry:          registry,
		offsets:           offsets,
		msgChan:           make(chan *message.Message, cfg.BufferCapacity),
		dispatchBatchSize: cfg.DispatchBatchSize,
		flushInterval:     cfg.FlushInterval,
		persistTicker:     time.NewTicker(cfg.PersistInterval),
		shutdownTimeout:   cfg.ShutdownTimeout,
		log:               logger,
	}
}

// startLoop starts a loop goroutine and reports non-canceled errors
func (p *Pipeline) startLoop(
	ctx context.Context,
	wg *sync.WaitGroup,
	name string,
	loop func(context.Context) error,
	errCh chan<- error,
) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := loop(ctx); err != nil && !errors.Is(err, context.Canceled) {
			errCh <- fmt.Errorf("%s loop error: %w", name, err)
		}
	}()
}

// Run subscribes to the ingest topic and drives the pipeline loops until
// the context is canceled or a loop fails.
func (p *Pipeline) Run(ctx context.Context) error {
	p.log.Info("Starting consumer pipeline for group %s", p.engine.Group())

	if err := p.subscriber.Subscribe(p.Enqueue); err != nil {
		return fmt.Errorf("failed to subscribe to ingest topic: %w", err)
	}

	var wg sync.WaitGroup
	errCh := make(chan error, 2)

	p.startLoop(ctx, &wg, "dispatch", p.dispatchLoop, errCh)
	p.startLoop(ctx, &wg, "persist", p.persistLoop, errCh)

	select {
	case <-ctx.Done():
		p.log.Info("Shutting down consumer pipeline")
		p.persistTicker.Stop()
		wg.Wait()
		return ctx.Err()
	case err := <-errCh:
		p.log.Error("Pipeline error: %v", err)
		p.persistTicker.Stop()
		wg.Wait()
		return err
	}
}

// Enqueue hands one ingest message to the dispatch loop. It never blocks
// the transport callback: with a full buffer the message is dropped, its
// offset was never advanced, so the broker redelivers it.
func (p *Pipeline) Enqueue(msg *message.Message) {
	select {
	case p.msgChan <- msg:
	default:
		p.log.Warn("pipeline buffer full, dropping message %s for redelivery", msg.MsgID)
	}
}

// dispatchLoop groups buffered messages by queue identity and submits a
// group once it reaches the dispatch batch size; partial groups flush on
// the flush interval so a slow topic never waits indefinitely.
func (p *Pipeline) dispatchLoop(ctx context.Context) error {
	flushTicker := time.NewTicker(p.flushInterval)
	defer flushTicker.Stop()

	groups := make(map[message.QueueIdentity][]*message.Message)

	for {
		select {
		case <-ctx.Done():
			p.drainInto(groups)
			p.flushAll(groups)
			return ctx.Err()
		case msg := <-p.msgChan:
			p.collect(groups, msg)
		case <-flushTicker.C:
			p.flushAll(groups)
		}
	}
}

// collect adds a message to its queue's group, flushing the group once it
// reaches the dispatch batch size.
func (p *Pipeline) collect(groups map[message.QueueIdentity][]*message.Message, msg *message.Message) {
	queue := msg.Queue()
	groups[queue] = append(groups[queue], msg)
	if len(groups[queue]) >= p.dispatchBatchSize {
		p.flush(queue, groups[queue])
		delete(groups, queue)
	}
}

// drainInto empties whatever is still buffered without blocking.
func (p *Pipeline) drainInto(groups map[message.QueueIdentity][]*message.Message) {
	for {
		select {
		case msg := <-p.msgChan:
			p.collect(groups, msg)
		default:
			return
		}
	}
}

func (p *Pipeline) flushAll(groups map[message.QueueIdentity][]*message.Message) {
	for queue, msgs := range groups {
		p.flush(queue, msgs)
		delete(groups, queue)
	}
}

// flush registers the batch as outstanding and submits it to the engine.
func (p *Pipeline) flush(queue message.QueueIdentity, msgs []*message.Message) {
	if len(msgs) == 0 {
		return
	}
	tq := p.registry.GetOrCreate(queue)
	tq.Put(msgs)
	p.engine.Submit(msgs, queue, tq, false)
	p.log.Debug("dispatched %d messages for %s", len(msgs), queue)
}

// persistLoop periodically flushes locally tracked offsets.
func (p *Pipeline) persistLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-p.persistTicker.C:
			if err := p.offsets.PersistAll(ctx); err != nil {
				p.log.Error("Failed to persist offsets: %v", err)
			}
		}
	}
}

// DropQueue revokes a partition: in-flight results for it are discarded
// and its local offset is forgotten.
func (p *Pipeline) DropQueue(queue message.QueueIdentity) bool {
	dropped := p.registry.Drop(queue)
	if dropped {
		p.offsets.Remove(queue)
		p.log.Info("dropped queue %s", queue)
	}
	return dropped
}

// Close performs the final offset flush.
func (p *Pipeline) Close() error {
	p.persistTicker.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), p.shutdownTimeout)
	defer cancel()
	if err := p.offsets.PersistAll(ctx); err != nil {
		return fmt.Errorf("final offset flush failed: %w", err)
	}
	return nil
}
