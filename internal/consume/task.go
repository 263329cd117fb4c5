package consume

import (
	"time"

	"github.com/quarkmq/consumer/internal/message"
	"github.com/quarkmq/consumer/internal/tracking"
)

// consumeRequest is one unit of work: an immutable sub-batch bound to its
// queue identity and tracking queue, executed on a pool worker.
type consumeRequest struct {
	msgs     []*message.Message
	queue    message.QueueIdentity
	tracking *tracking.Queue
}

// consume runs the listener for one request and routes the result to the
// resolver. The dropped flag is checked on entry and again right before
// resolution: a queue revoked mid-execution discards the whole result,
// since ownership already moved elsewhere.
func (s *Service) consume(req *consumeRequest) {
	if req.tracking.IsDropped() {
		s.log.Info("the message queue is not able to consume, because it is dropped: %s", req.queue)
		return
	}

	ctx := NewContext(req.queue)

	var hookCtx *HookContext
	if s.hooks.HasHooks() {
		hookCtx = &HookContext{
			Group: s.group,
			Queue: req.queue,
			Msgs:  req.msgs,
		}
		s.hooks.ExecuteBefore(hookCtx)
	}

	s.resetRetryTopic(req.msgs)

	begin := time.Now()
	outcome, panicVal := s.invokeListener(req.msgs, ctx)
	consumeRT := time.Since(begin)

	if panicVal != nil {
		s.log.Warn("listener panic: %v Group: %s Msgs: %v MQ: %s",
			panicVal, s.group, req.msgs, req.queue)
	}

	if outcome == OutcomeUnset {
		if panicVal == nil {
			s.log.Warn("listener returned no outcome, Group: %s Msgs: %v MQ: %s",
				s.group, req.msgs, req.queue)
		}
		outcome = ReconsumeLater
	}

	if hookCtx != nil {
		hookCtx.Status = outcome.String()
		hookCtx.Success = outcome == ConsumeSuccess
		s.hooks.ExecuteAfter(hookCtx)
	}

	s.stats.RecordConsumeLatency(s.group, req.queue.Topic, float64(consumeRT)/float64(time.Millisecond))

	if req.tracking.IsDropped() {
		s.log.Warn("queue dropped without processing consume result, queue=%s, msgs=%v", req.queue, req.msgs)
		return
	}

	s.processConsumeResult(outcome, ctx, req)
}
