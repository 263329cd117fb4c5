// Package consume implements the concurrent message-consumption engine:
// batch dispatch onto a bounded worker pool, outcome resolution against
// the delivery semantics, broker hand-back with a delayed in-process
// retry path, and safe offset advancement.
package consume

import (
	"math"
	"time"

	"github.com/quarkmq/consumer/internal/message"
)

// Outcome is the result a listener reports for one batch. The zero value
// means the listener reported nothing; the engine coerces it to
// ReconsumeLater.
type Outcome int

const (
	OutcomeUnset Outcome = iota
	ConsumeSuccess
	ReconsumeLater
)

func (o Outcome) String() string {
	switch o {
	case ConsumeSuccess:
		return "CONSUME_SUCCESS"
	case ReconsumeLater:
		return "RECONSUME_LATER"
	default:
		return "UNSET"
	}
}

// Model selects the delivery semantics for the whole consumer group.
type Model int

const (
	// Clustering consumers share each queue; failed messages are handed
	// back to the broker for redelivery.
	Clustering Model = iota
	// Broadcasting consumers each see every message; failed messages are
	// logged and dropped, there is no redelivery.
	Broadcasting
)

func (m Model) String() string {
	if m == Broadcasting {
		return "broadcasting"
	}
	return "clustering"
}

// Listener is the user-supplied business logic. It receives the batch and
// may set ctx.AckIndex to mark a cut point: messages at index <= AckIndex
// are acknowledged, the rest are failed. Panics are recovered by the
// engine and treated like an unset outcome.
type Listener interface {
	Consume(msgs []*message.Message, ctx *Context) Outcome
}

// ListenerFunc adapts a function to the Listener interface.
type ListenerFunc func(msgs []*message.Message, ctx *Context) Outcome

func (f ListenerFunc) Consume(msgs []*message.Message, ctx *Context) Outcome {
	return f(msgs, ctx)
}

// Context is the per-invocation consumption context handed to the
// listener. AckIndex defaults to "everything acknowledged"; the resolver
// clamps it to the batch length.
type Context struct {
	Queue                     message.QueueIdentity
	AckIndex                  int
	DelayLevelWhenNextConsume int
}

// NewContext creates a context bound to one queue identity.
func NewContext(queue message.QueueIdentity) *Context {
	return &Context{
		Queue:    queue,
		AckIndex: math.MaxInt32,
	}
}

// DirectResultCode is the outcome of a diagnostic direct consumption.
type DirectResultCode int

const (
	DirectSuccess DirectResultCode = iota
	DirectLater
	DirectReturnedUnset
	DirectPanicked
)

func (c DirectResultCode) String() string {
	switch c {
	case DirectSuccess:
		return "CR_SUCCESS"
	case DirectLater:
		return "CR_LATER"
	case DirectReturnedUnset:
		return "CR_RETURN_NULL"
	case DirectPanicked:
		return "CR_THROW_EXCEPTION"
	}
	return "CR_UNKNOWN"
}

// DirectResult reports a ConsumeDirectly invocation: the mapped outcome,
// the wall-clock time spent in the listener, and a remark describing a
// recovered panic if one occurred.
type DirectResult struct {
	Code       DirectResultCode
	Order      bool
	AutoCommit bool
	Remark     string
	SpentTime  time.Duration
}
