package rc4

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/rbaliyan/config-rc4"

// Operation names used for spans and the "rc4.operation" attribute.
const (
	opEncode = "encode"
	opDecode = "decode"
)

// telemetry holds the tracer and metric instruments for a Codec.
type telemetry struct {
	tracer     trace.Tracer
	operations metric.Int64Counter
	bytes      metric.Int64Counter
	failures   metric.Int64Counter
}

func newTelemetry(tp trace.TracerProvider, mp metric.MeterProvider) (*telemetry, error) {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	meter := mp.Meter(instrumentationName)

	operations, err := meter.Int64Counter("rc4.codec.operations",
		metric.WithDescription("Number of codec encode and decode calls."),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("rc4: failed to create operations counter: %w", err)
	}
	bytes, err := meter.Int64Counter("rc4.codec.bytes",
		metric.WithDescription("Number of payload bytes passed through the keystream."),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, fmt.Errorf("rc4: failed to create bytes counter: %w", err)
	}
	failures, err := meter.Int64Counter("rc4.codec.errors",
		metric.WithDescription("Number of failed codec calls."),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, fmt.Errorf("rc4: failed to create errors counter: %w", err)
	}

	return &telemetry{
		tracer:     tp.Tracer(instrumentationName),
		operations: operations,
		bytes:      bytes,
		failures:   failures,
	}, nil
}

// start opens a span for op on the named codec.
func (t *telemetry) start(ctx context.Context, op, codecName string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "rc4.Codec."+op,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("rc4.codec", codecName),
			attribute.String("rc4.operation", op),
		),
	)
}

// finish records the outcome of op and ends span.
func (t *telemetry) finish(ctx context.Context, span trace.Span, op, keyID string, n int, err error) {
	attrs := metric.WithAttributes(attribute.String("rc4.operation", op))
	t.operations.Add(ctx, 1, attrs)

	if keyID != "" {
		span.SetAttributes(attribute.String("rc4.key_id", keyID))
	}
	if err != nil {
		t.failures.Add(ctx, 1, attrs)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		t.bytes.Add(ctx, int64(n), attrs)
		span.SetAttributes(attribute.Int("rc4.bytes", n))
	}
	span.End()
}
