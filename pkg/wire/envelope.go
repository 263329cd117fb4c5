package wire

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"
)

// Envelope is the broker-facing JSON representation of one message, used
// both for ingest payloads and for hand-back publishes. The body travels
// base64-encoded so arbitrary bytes survive the JSON transport.
type Envelope struct {
	MsgID          string            `json:"msgId"`
	Topic          string            `json:"topic"`
	BrokerName     string            `json:"brokerName"`
	QueueID        int               `json:"queueId"`
	QueueOffset    int64             `json:"queueOffset"`
	ReconsumeTimes int               `json:"reconsumeTimes"`
	DelayLevel     int               `json:"delayLevel,omitempty"`
	BornTimestamp  time.Time         `json:"bornTimestamp"`
	Properties     map[string]string `json:"properties,omitempty"`
	Body           []byte            `json:"body,omitempty"`
}

// Encode serializes the envelope using the low-allocation builder.
// The returned slice is owned by the caller.
func Encode(e *Envelope) []byte {
	b := NewBuilder(len(e.Body)*4/3 + 256)
	b.BeginObject()
	b.AddStringField("msgId", e.MsgID)
	b.AddStringField("topic", e.Topic)
	b.AddStringField("brokerName", e.BrokerName)
	b.AddIntField("queueId", e.QueueID)
	b.AddInt64Field("queueOffset", e.QueueOffset)
	b.AddIntField("reconsumeTimes", e.ReconsumeTimes)
	if e.DelayLevel != 0 {
		b.AddIntField("delayLevel", e.DelayLevel)
	}
	b.AddTimeRFC3339Field("bornTimestamp", e.BornTimestamp)
	b.AddStringMapField("properties", e.Properties)
	if len(e.Body) > 0 {
		b.AddStringField("body", base64.StdEncoding.EncodeToString(e.Body))
	}
	b.EndObject()

	out := make([]byte, len(b.Bytes()))
	copy(out, b.Bytes())
	return out
}

// Decode parses an envelope from its JSON form.
func Decode(payload []byte) (*Envelope, error) {
	var e Envelope
	if err := json.Unmarshal(payload, &e); err != nil {
		return nil, fmt.Errorf("failed to parse envelope: %w", err)
	}
	if e.MsgID == "" {
		return nil, fmt.Errorf("envelope missing required field: msgId")
	}
	if e.Topic == "" {
		return nil, fmt.Errorf("envelope missing required field: topic")
	}
	return &e, nil
}
