package consume

import (
	"time"

	"github.com/quarkmq/consumer/internal/broker"
	"github.com/quarkmq/consumer/internal/config"
	"github.com/quarkmq/consumer/internal/log"
	"github.com/quarkmq/consumer/internal/message"
	"github.com/quarkmq/consumer/internal/offset"
	"github.com/quarkmq/consumer/internal/stats"
	"github.com/quarkmq/consumer/internal/tracking"
)

// corePoolCeiling is the hard cap for runtime pool tuning, guarding
// against a runaway resize request.
const corePoolCeiling = 1<<15 - 1

// Service is the consumption façade: it owns the worker pool and the
// retry scheduler and is the only entry point for batch submission.
type Service struct {
	group       string
	model       Model
	retryTopic  string
	batchMax    int
	maxPoolSize int
	retryDelay  time.Duration

	listener  Listener
	pool      *workerPool
	scheduler *retryScheduler
	hooks     *HookRegistry
	stats     *stats.Collector
	offsets   offset.Store
	sender    broker.Sender

	sendBackTimeout time.Duration
	log             *log.Logger
}

// NewService builds the engine for one consumer group. The sender may be
// nil under broadcasting semantics; collector and offsets may be nil, in
// which case stats and offset persistence are skipped.
func NewService(
	cfg *config.ConsumerConfig,
	listener Listener,
	sender broker.Sender,
	offsets offset.Store,
	collector *stats.Collector,
	logger *log.Logger,
) *Service {
	model := Clustering
	if cfg.Model == config.ModelBroadcasting {
		model = Broadcasting
	}

	s := &Service{
		group:           cfg.Group,
		model:           model,
		retryTopic:      message.RetryTopic(cfg.Group),
		batchMax:        cfg.ConsumeBatchMaxSize,
		maxPoolSize:     cfg.ConsumeThreadMax,
		retryDelay:      cfg.RetryDelay,
		listener:        listener,
		hooks:           NewHookRegistry(),
		stats:           collector,
		offsets:         offsets,
		sender:          sender,
		sendBackTimeout: cfg.SendBackTimeout,
		log:             logger,
	}
	if s.batchMax < 1 {
		s.batchMax = 1
	}

	s.pool = newWorkerPool(cfg.ConsumeThreadMin, logger)
	s.scheduler = newRetryScheduler(s.Submit, logger)
	return s
}

// Hooks exposes the hook registry for instrumentation registration.
func (s *Service) Hooks() *HookRegistry {
	return s.hooks
}

// Group returns the consumer group this engine serves.
func (s *Service) Group() string {
	return s.group
}

// Submit splits the batch into sub-batches of at most the configured
// consume batch size and dispatches each onto the worker pool. Submission
// failures are logged and the sub-batch is dropped for this cycle: its
// offset was never advanced, so the next pull redelivers it.
func (s *Service) Submit(msgs []*message.Message, queue message.QueueIdentity, tq *tracking.Queue, viaRetryPath bool) {
	if len(msgs) == 0 {
		return
	}
	if viaRetryPath {
		s.log.Debug("resubmitting %d messages for %s via retry path", len(msgs), queue)
	}

	for start := 0; start < len(msgs); start += s.batchMax {
		end := start + s.batchMax
		if end > len(msgs) {
			end = len(msgs)
		}
		req := &consumeRequest{
			msgs:     msgs[start:end],
			queue:    queue,
			tracking: tq,
		}
		if err := s.pool.submit(func() { s.consume(req) }); err != nil {
			s.log.Error("failed to submit consume request for %s, dropping %d messages this cycle: %v",
				queue, len(req.msgs), err)
		}
	}
}

// SetCorePoolSize tunes the live worker floor. Out-of-range requests are
// ignored: the size must be positive, below the hard ceiling, and below
// the configured pool maximum.
func (s *Service) SetCorePoolSize(n int) {
	if n > 0 && n <= corePoolCeiling && n < s.maxPoolSize {
		s.pool.setCoreSize(n)
	}
}

// CorePoolSize returns the current worker floor.
func (s *Service) CorePoolSize() int {
	return s.pool.coreSize()
}

// Shutdown stops the retry scheduler and the worker pool. In-flight and
// queued tasks run to completion; scheduled-but-unfired retries are lost,
// their messages stay outstanding for the next pull cycle.
func (s *Service) Shutdown() {
	s.scheduler.stop()
	s.pool.close()
}

// ConsumeDirectly invokes the listener synchronously on the calling
// goroutine for a single message, bypassing the pool. Used for
// operator-triggered diagnostic re-consumption.
func (s *Service) ConsumeDirectly(msg *message.Message, brokerName string) DirectResult {
	res := DirectResult{
		Order:      false,
		AutoCommit: true,
	}

	msgs := []*message.Message{msg}
	queue := message.QueueIdentity{Topic: msg.Topic, BrokerName: brokerName, QueueID: msg.QueueID}
	ctx := NewContext(queue)

	s.resetRetryTopic(msgs)

	s.log.Info("consume message directly: %s", msg)
	begin := time.Now()

	outcome, panicVal := s.invokeListener(msgs, ctx)
	res.SpentTime = time.Since(begin)

	switch {
	case panicVal != nil:
		res.Code = DirectPanicked
		res.Remark = panicDesc(panicVal)
		s.log.Warn("consume directly panic: %v Group: %s Msgs: %v MQ: %s", panicVal, s.group, msgs, queue)
	case outcome == ConsumeSuccess:
		res.Code = DirectSuccess
	case outcome == ReconsumeLater:
		res.Code = DirectLater
	default:
		res.Code = DirectReturnedUnset
	}

	s.log.Info("consume directly result: %s spent: %v", res.Code, res.SpentTime)
	return res
}

// invokeListener runs the listener, converting a panic into a non-nil
// panic value with an unset outcome.
func (s *Service) invokeListener(msgs []*message.Message, ctx *Context) (outcome Outcome, panicVal interface{}) {
	defer func() {
		if r := recover(); r != nil {
			panicVal = r
			outcome = OutcomeUnset
		}
	}()
	outcome = s.listener.Consume(msgs, ctx)
	return outcome, nil
}

// resetRetryTopic undoes broker-side retry-topic tagging: a message
// routed through the group retry topic regains its original topic before
// the listener sees it. Applying the rewrite twice is a no-op.
func (s *Service) resetRetryTopic(msgs []*message.Message) {
	for _, msg := range msgs {
		retryTopic := msg.Property(message.PropertyRetryTopic)
		if retryTopic != "" && msg.Topic == s.retryTopic {
			msg.Topic = retryTopic
		}
	}
}

func panicDesc(v interface{}) string {
	if err, ok := v.(error); ok {
		return err.Error()
	}
	if str, ok := v.(string); ok {
		return str
	}
	return "panic in listener"
}
