package consume

import (
	"context"

	"github.com/quarkmq/consumer/internal/message"
)

// processConsumeResult partitions the batch around the listener's ack
// index, reconciles the failed subset against the delivery semantics, and
// advances the offset for everything durably resolved.
//
// The listener reports one cut point, not per-message status: everything
// at index <= ackIndex counts as acknowledged, everything after it as
// failed, whatever actually happened to the individual messages.
func (s *Service) processConsumeResult(outcome Outcome, ctx *Context, req *consumeRequest) {
	if len(req.msgs) == 0 {
		return
	}

	ackIndex := ctx.AckIndex

	switch outcome {
	case ConsumeSuccess:
		if ackIndex >= len(req.msgs) {
			ackIndex = len(req.msgs) - 1
		}
		ok := ackIndex + 1
		failed := len(req.msgs) - ok
		s.stats.RecordOK(s.group, req.queue.Topic, int64(ok))
		s.stats.RecordFailed(s.group, req.queue.Topic, int64(failed))
	case ReconsumeLater:
		// Whatever ack index the listener set, a later-outcome fails the
		// whole batch.
		ackIndex = -1
		s.stats.RecordFailed(s.group, req.queue.Topic, int64(len(req.msgs)))
	}

	// resolved is the set whose removal may advance the offset: the full
	// batch minus messages still pending on the retry path.
	resolved := req.msgs

	switch s.model {
	case Broadcasting:
		// No redelivery in broadcasting mode: failed messages are logged
		// and dropped, and still count as handled.
		for i := ackIndex + 1; i < len(req.msgs); i++ {
			s.log.Warn("BROADCASTING, the message consume failed, drop it, %s", req.msgs[i])
		}
	case Clustering:
		var backFailed []*message.Message
		for i := ackIndex + 1; i < len(req.msgs); i++ {
			msg := req.msgs[i]
			if !s.sendMessageBack(msg, ctx) {
				msg.ReconsumeTimes++
				backFailed = append(backFailed, msg)
			}
		}

		if len(backFailed) > 0 {
			resolved = removeAll(req.msgs, backFailed)
			s.scheduler.schedule(backFailed, req.queue, req.tracking, s.retryDelay)
		}
	}

	off := req.tracking.RemoveMessages(resolved)
	if off >= 0 && s.offsets != nil {
		s.offsets.Update(req.queue, off, true)
	}
}

// sendMessageBack hands one failed message back to the broker. Returns
// false when the hand-back itself failed, routing the message to the
// delayed retry path instead.
func (s *Service) sendMessageBack(msg *message.Message, consumeCtx *Context) bool {
	if s.sender == nil {
		s.log.Error("no broker sender configured, cannot send back message %s", msg.MsgID)
		return false
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.sendBackTimeout)
	defer cancel()

	delayLevel := consumeCtx.DelayLevelWhenNextConsume
	if err := s.sender.SendBack(ctx, msg, delayLevel, consumeCtx.Queue.BrokerName); err != nil {
		s.log.Error("send message back failed, group: %s msg: %s: %v", s.group, msg, err)
		return false
	}
	return true
}

// removeAll returns msgs without the entries in drop, preserving order.
func removeAll(msgs, drop []*message.Message) []*message.Message {
	dropped := make(map[*message.Message]struct{}, len(drop))
	for _, m := range drop {
		dropped[m] = struct{}{}
	}
	kept := make([]*message.Message, 0, len(msgs)-len(drop))
	for _, m := range msgs {
		if _, ok := dropped[m]; !ok {
			kept = append(kept, m)
		}
	}
	return kept
}
