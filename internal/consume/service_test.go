package consume

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarkmq/consumer/internal/config"
	"github.com/quarkmq/consumer/internal/log"
	"github.com/quarkmq/consumer/internal/message"
	"github.com/quarkmq/consumer/internal/offset"
	"github.com/quarkmq/consumer/internal/tracking"
)

// fakeSender records hand-back attempts and fails the configured message IDs.
type fakeSender struct {
	mu      sync.Mutex
	calls   []string
	failIDs map[string]bool
}

func (f *fakeSender) SendBack(_ context.Context, msg *message.Message, _ int, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, msg.MsgID)
	if f.failIDs[msg.MsgID] {
		return errors.New("publish failed")
	}
	return nil
}

func (f *fakeSender) sent() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}

func testConsumerConfig() *config.ConsumerConfig {
	return &config.ConsumerConfig{
		Group:               "test-group",
		Model:               config.ModelClustering,
		ConsumeThreadMin:    2,
		ConsumeThreadMax:    8,
		ConsumeBatchMaxSize: 1,
		RetryDelay:          20 * time.Millisecond,
		SendBackTimeout:     time.Second,
	}
}

func newTestService(t *testing.T, cfg *config.ConsumerConfig, listener Listener, sender *fakeSender) (*Service, *offset.MemoryStore) {
	t.Helper()
	store := offset.NewMemoryStore()
	s := NewService(cfg, listener, sender, store, nil, log.New())
	t.Cleanup(s.Shutdown)
	return s, store
}

func makeMessages(topic, broker string, queueID int, baseOffset int64, n int) []*message.Message {
	msgs := make([]*message.Message, 0, n)
	for i := 0; i < n; i++ {
		msgs = append(msgs, &message.Message{
			Topic:         topic,
			BrokerName:    broker,
			QueueID:       queueID,
			QueueOffset:   baseOffset + int64(i),
			MsgID:         string(rune('a'+i)) + "-msg",
			Body:          []byte("payload"),
			BornTimestamp: time.Now(),
		})
	}
	return msgs
}

func TestSubmit_SplitsBatches(t *testing.T) {
	cfg := testConsumerConfig()
	cfg.ConsumeBatchMaxSize = 2

	var mu sync.Mutex
	var sizes []int
	done := make(chan struct{}, 8)
	listener := ListenerFunc(func(msgs []*message.Message, _ *Context) Outcome {
		mu.Lock()
		sizes = append(sizes, len(msgs))
		mu.Unlock()
		done <- struct{}{}
		return ConsumeSuccess
	})

	s, _ := newTestService(t, cfg, listener, &fakeSender{})

	msgs := makeMessages("orders", "broker-a", 0, 100, 5)
	queue := msgs[0].Queue()
	tq := tracking.NewQueue()
	tq.Put(msgs)

	s.Submit(msgs, queue, tq, false)

	for i := 0; i < 3; i++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("listener invocations missing")
		}
	}

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, sizes, 3)
	total := 0
	for _, n := range sizes {
		assert.LessOrEqual(t, n, 2)
		total += n
	}
	assert.Equal(t, 5, total)
}

func TestSubmit_EmptyBatchIsNoOp(t *testing.T) {
	called := false
	listener := ListenerFunc(func([]*message.Message, *Context) Outcome {
		called = true
		return ConsumeSuccess
	})
	s, _ := newTestService(t, testConsumerConfig(), listener, &fakeSender{})

	s.Submit(nil, message.QueueIdentity{}, tracking.NewQueue(), false)
	time.Sleep(20 * time.Millisecond)
	assert.False(t, called)
}

func TestSetCorePoolSize(t *testing.T) {
	cfg := testConsumerConfig()
	cfg.ConsumeThreadMin = 2
	cfg.ConsumeThreadMax = 8

	listener := ListenerFunc(func([]*message.Message, *Context) Outcome { return ConsumeSuccess })
	s, _ := newTestService(t, cfg, listener, &fakeSender{})

	require.Equal(t, 2, s.CorePoolSize())

	s.SetCorePoolSize(4)
	assert.Equal(t, 4, s.CorePoolSize())

	// Ignored: not positive.
	s.SetCorePoolSize(0)
	assert.Equal(t, 4, s.CorePoolSize())
	s.SetCorePoolSize(-1)
	assert.Equal(t, 4, s.CorePoolSize())

	// Ignored: must stay below the configured maximum.
	s.SetCorePoolSize(8)
	assert.Equal(t, 4, s.CorePoolSize())

	// Ignored: above the hard ceiling.
	s.SetCorePoolSize(corePoolCeiling + 1)
	assert.Equal(t, 4, s.CorePoolSize())
}

func TestConsumeDirectly(t *testing.T) {
	tests := []struct {
		name       string
		listener   ListenerFunc
		wantCode   DirectResultCode
		wantRemark string
	}{
		{
			name:     "success",
			listener: func([]*message.Message, *Context) Outcome { return ConsumeSuccess },
			wantCode: DirectSuccess,
		},
		{
			name:     "later",
			listener: func([]*message.Message, *Context) Outcome { return ReconsumeLater },
			wantCode: DirectLater,
		},
		{
			name:     "unset outcome",
			listener: func([]*message.Message, *Context) Outcome { return OutcomeUnset },
			wantCode: DirectReturnedUnset,
		},
		{
			name:       "panic",
			listener:   func([]*message.Message, *Context) Outcome { panic("listener exploded") },
			wantCode:   DirectPanicked,
			wantRemark: "listener exploded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestService(t, testConsumerConfig(), tt.listener, &fakeSender{})

			msg := makeMessages("orders", "broker-a", 0, 50, 1)[0]
			res := s.ConsumeDirectly(msg, "broker-a")

			assert.Equal(t, tt.wantCode, res.Code)
			assert.False(t, res.Order)
			assert.True(t, res.AutoCommit)
			assert.Equal(t, tt.wantRemark, res.Remark)
			assert.GreaterOrEqual(t, res.SpentTime, time.Duration(0))
		})
	}
}

func TestConsumeDirectly_RewritesRetryTopic(t *testing.T) {
	var seenTopic string
	listener := ListenerFunc(func(msgs []*message.Message, _ *Context) Outcome {
		seenTopic = msgs[0].Topic
		return ConsumeSuccess
	})
	s, _ := newTestService(t, testConsumerConfig(), listener, &fakeSender{})

	msg := &message.Message{
		Topic:       message.RetryTopic("test-group"),
		BrokerName:  "broker-a",
		QueueOffset: 1,
		MsgID:       "retry-msg",
	}
	msg.SetProperty(message.PropertyRetryTopic, "orders")

	res := s.ConsumeDirectly(msg, "broker-a")

	assert.Equal(t, DirectSuccess, res.Code)
	assert.Equal(t, "orders", seenTopic)
}

func TestResetRetryTopic_Idempotent(t *testing.T) {
	listener := ListenerFunc(func([]*message.Message, *Context) Outcome { return ConsumeSuccess })
	s, _ := newTestService(t, testConsumerConfig(), listener, &fakeSender{})

	msg := &message.Message{Topic: message.RetryTopic("test-group")}
	msg.SetProperty(message.PropertyRetryTopic, "orders")

	s.resetRetryTopic([]*message.Message{msg})
	require.Equal(t, "orders", msg.Topic)

	// Second rewrite leaves the restored topic alone.
	s.resetRetryTopic([]*message.Message{msg})
	assert.Equal(t, "orders", msg.Topic)
}

func TestResetRetryTopic_OtherTopicUntouched(t *testing.T) {
	listener := ListenerFunc(func([]*message.Message, *Context) Outcome { return ConsumeSuccess })
	s, _ := newTestService(t, testConsumerConfig(), listener, &fakeSender{})

	msg := &message.Message{Topic: message.RetryTopic("another-group")}
	msg.SetProperty(message.PropertyRetryTopic, "orders")

	s.resetRetryTopic([]*message.Message{msg})
	assert.Equal(t, message.RetryTopic("another-group"), msg.Topic)
}

func TestShutdown_RejectsNewWork(t *testing.T) {
	listener := ListenerFunc(func([]*message.Message, *Context) Outcome { return ConsumeSuccess })

	store := offset.NewMemoryStore()
	s := NewService(testConsumerConfig(), listener, nil, store, nil, log.New())
	s.Shutdown()

	// Submission after shutdown is dropped without panicking; offset was
	// never advanced so the batch is redelivered later.
	msgs := makeMessages("orders", "broker-a", 0, 10, 1)
	tq := tracking.NewQueue()
	tq.Put(msgs)
	s.Submit(msgs, msgs[0].Queue(), tq, false)

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, tq.Len())
	assert.Equal(t, offset.OffsetUnknown, store.Read(msgs[0].Queue()))
}

func TestGroup(t *testing.T) {
	listener := ListenerFunc(func([]*message.Message, *Context) Outcome { return ConsumeSuccess })
	s, _ := newTestService(t, testConsumerConfig(), listener, &fakeSender{})
	assert.Equal(t, "test-group", s.Group())
}
