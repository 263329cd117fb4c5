// Package message provides the shared data model for queued messages and
// the logical partitions consumption is tracked against.
package message

import (
	"fmt"
	"time"
)

// Property keys carried in the message property bag. The broker tags a
// message with its original topic before routing it through the group
// retry topic; consumers undo that tagging before user code sees it.
const (
	PropertyRetryTopic = "RETRY_TOPIC"
	PropertyDelayLevel = "DELAY"
)

// RetryTopicPrefix prefixes the per-group retry topic on the broker side.
const RetryTopicPrefix = "%RETRY%"

// RetryTopic returns the canonical retry topic for a consumer group.
func RetryTopic(group string) string {
	return RetryTopicPrefix + group
}

// Message is a single queued message as pulled from the broker.
// Topic and ReconsumeTimes are the only fields mutated after the pull:
// Topic by the retry-topic rewrite, ReconsumeTimes by the hand-back path.
type Message struct {
	Topic          string
	BrokerName     string
	QueueID        int
	QueueOffset    int64
	MsgID          string
	Body           []byte
	ReconsumeTimes int
	BornTimestamp  time.Time
	Properties     map[string]string
}

// Property returns the named property or the empty string.
func (m *Message) Property(key string) string {
	if m.Properties == nil {
		return ""
	}
	return m.Properties[key]
}

// SetProperty sets a property, allocating the bag on first use.
func (m *Message) SetProperty(key, value string) {
	if m.Properties == nil {
		m.Properties = make(map[string]string, 4)
	}
	m.Properties[key] = value
}

// Queue returns the identity of the partition this message belongs to.
func (m *Message) Queue() QueueIdentity {
	return QueueIdentity{Topic: m.Topic, BrokerName: m.BrokerName, QueueID: m.QueueID}
}

func (m *Message) String() string {
	return fmt.Sprintf("Message[msgId=%s, topic=%s, broker=%s, queue=%d, offset=%d, reconsume=%d]",
		m.MsgID, m.Topic, m.BrokerName, m.QueueID, m.QueueOffset, m.ReconsumeTimes)
}

// QueueIdentity identifies a logical partition: one numbered queue of a
// topic on one broker. Value-comparable, usable as a map key.
type QueueIdentity struct {
	Topic      string
	BrokerName string
	QueueID    int
}

func (q QueueIdentity) String() string {
	return fmt.Sprintf("%s@%s@%d", q.Topic, q.BrokerName, q.QueueID)
}
