// Package stats aggregates consumption statistics through OpenTelemetry
// metric instruments.
package stats

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Collector holds the metric instruments for one consumer process.
// A nil Collector is valid and drops every record, so callers never have
// to guard the hot path.
type Collector struct {
	meter metric.Meter

	consumeOK      metric.Int64Counter
	consumeFailed  metric.Int64Counter
	consumeLatency metric.Float64Histogram
}

// NewCollector creates a collector with all instruments initialized.
func NewCollector() (*Collector, error) {
	c := &Collector{
		meter: otel.Meter("mq-consumer"),
	}

	var err error

	c.consumeOK, err = c.meter.Int64Counter(
		"mq.consume.ok.total",
		metric.WithDescription("Messages consumed successfully"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create consumeOK counter: %w", err)
	}

	c.consumeFailed, err = c.meter.Int64Counter(
		"mq.consume.failed.total",
		metric.WithDescription("Messages that failed consumption"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create consumeFailed counter: %w", err)
	}

	c.consumeLatency, err = c.meter.Float64Histogram(
		"mq.consume.duration",
		metric.WithDescription("Listener invocation duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create consumeLatency histogram: %w", err)
	}

	return c, nil
}

func attrs(group, topic string) metric.MeasurementOption {
	return metric.WithAttributes(
		attribute.String("group", group),
		attribute.String("topic", topic),
	)
}

// RecordOK counts successfully consumed messages.
func (c *Collector) RecordOK(group, topic string, n int64) {
	if c == nil || n <= 0 {
		return
	}
	c.consumeOK.Add(context.Background(), n, attrs(group, topic))
}

// RecordFailed counts messages whose consumption failed.
func (c *Collector) RecordFailed(group, topic string, n int64) {
	if c == nil || n <= 0 {
		return
	}
	c.consumeFailed.Add(context.Background(), n, attrs(group, topic))
}

// RecordConsumeLatency records one listener invocation duration.
func (c *Collector) RecordConsumeLatency(group, topic string, millis float64) {
	if c == nil {
		return
	}
	c.consumeLatency.Record(context.Background(), millis, attrs(group, topic))
}
