// Package broker provides the MQTT transport to the message broker:
// hand-back of failed messages and the ingest subscription feeding the
// consumer pipeline.
package broker

import (
	"context"
	"time"

	"github.com/quarkmq/consumer/internal/message"
	"github.com/quarkmq/consumer/pkg/wire"
)

// Sender returns failed messages to the broker for future redelivery.
type Sender interface {
	SendBack(ctx context.Context, msg *message.Message, delayLevel int, brokerName string) error
}

// MessageHandler receives messages decoded from the ingest subscription.
type MessageHandler func(*message.Message)

// toEnvelope builds the wire form of a message for hand-back.
func toEnvelope(msg *message.Message, delayLevel int) *wire.Envelope {
	return &wire.Envelope{
		MsgID:          msg.MsgID,
		Topic:          msg.Topic,
		BrokerName:     msg.BrokerName,
		QueueID:        msg.QueueID,
		QueueOffset:    msg.QueueOffset,
		ReconsumeTimes: msg.ReconsumeTimes,
		DelayLevel:     delayLevel,
		BornTimestamp:  msg.BornTimestamp,
		Properties:     msg.Properties,
		Body:           msg.Body,
	}
}

// toMessage converts a decoded envelope into the in-process message form.
func toMessage(e *wire.Envelope) *message.Message {
	born := e.BornTimestamp
	if born.IsZero() {
		born = time.Now()
	}
	return &message.Message{
		Topic:          e.Topic,
		BrokerName:     e.BrokerName,
		QueueID:        e.QueueID,
		QueueOffset:    e.QueueOffset,
		MsgID:          e.MsgID,
		Body:           e.Body,
		ReconsumeTimes: e.ReconsumeTimes,
		BornTimestamp:  born,
		Properties:     e.Properties,
	}
}
