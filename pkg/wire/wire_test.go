package wire

import (
	"encoding/json"
	"testing"
	"time"
)

func TestBuilderEscaping(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected string
	}{
		{"plain", "hello", `{"f":"hello"}`},
		{"quote and backslash", `a"b\c`, `{"f":"a\"b\\c"}`},
		{"newline and tab", "a\nb\tc", `{"f":"a\nb\tc"}`},
		{"control char", "a\x01b", `{"f":"a\u0001b"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuilder(64)
			b.BeginObject()
			b.AddStringField("f", tt.value)
			b.EndObject()
			if got := string(b.Bytes()); got != tt.expected {
				t.Errorf("got %s, want %s", got, tt.expected)
			}
		})
	}
}

func TestBuilderNumericFields(t *testing.T) {
	b := NewBuilder(64)
	b.BeginObject()
	b.AddIntField("queueId", 3)
	b.AddInt64Field("offset", -42)
	b.AddInt64Field("zero", 0)
	b.EndObject()

	expected := `{"queueId":3,"offset":-42,"zero":0}`
	if got := string(b.Bytes()); got != expected {
		t.Errorf("got %s, want %s", got, expected)
	}
}

func TestBuilderReset(t *testing.T) {
	b := NewBuilder(64)
	b.BeginObject()
	b.AddStringField("a", "1")
	b.EndObject()
	b.Reset()
	b.BeginObject()
	b.AddStringField("b", "2")
	b.EndObject()
	if got := string(b.Bytes()); got != `{"b":"2"}` {
		t.Errorf("got %s after reset", got)
	}
}

func TestEnvelopeRoundTrip(t *testing.T) {
	born := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	in := &Envelope{
		MsgID:          "m-1",
		Topic:          "%RETRY%order-group",
		BrokerName:     "broker-a",
		QueueID:        2,
		QueueOffset:    1041,
		ReconsumeTimes: 3,
		DelayLevel:     2,
		BornTimestamp:  born,
		Properties:     map[string]string{"RETRY_TOPIC": "orders"},
		Body:           []byte{0x00, 0xff, 'p', 'a', 'y'},
	}

	encoded := Encode(in)
	if !json.Valid(encoded) {
		t.Fatalf("Encode produced invalid JSON: %s", encoded)
	}

	out, err := Decode(encoded)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if out.MsgID != in.MsgID || out.Topic != in.Topic || out.BrokerName != in.BrokerName {
		t.Errorf("identity fields mismatch: %+v", out)
	}
	if out.QueueID != in.QueueID || out.QueueOffset != in.QueueOffset {
		t.Errorf("queue fields mismatch: %+v", out)
	}
	if out.ReconsumeTimes != 3 || out.DelayLevel != 2 {
		t.Errorf("retry fields mismatch: %+v", out)
	}
	if !out.BornTimestamp.Equal(born) {
		t.Errorf("bornTimestamp = %v, want %v", out.BornTimestamp, born)
	}
	if out.Properties["RETRY_TOPIC"] != "orders" {
		t.Errorf("properties mismatch: %v", out.Properties)
	}
	if string(out.Body) != string(in.Body) {
		t.Errorf("body mismatch: %v", out.Body)
	}
}

func TestDecodeRejectsIncomplete(t *testing.T) {
	if _, err := Decode([]byte(`{`)); err == nil {
		t.Error("expected error for malformed JSON")
	}
	if _, err := Decode([]byte(`{"topic":"orders"}`)); err == nil {
		t.Error("expected error for missing msgId")
	}
	if _, err := Decode([]byte(`{"msgId":"m-1"}`)); err == nil {
		t.Error("expected error for missing topic")
	}
}
