// control/tracing.go
// Author: momentics <momentics@gmail.com>
//
// OpenTelemetry spans around pipe transfers.

package control

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation scope of transfer spans.
const TracerName = "github.com/momentics/hioload-aio"

// SpanManager handles transfer span lifecycle.
// Use NewSpanManager() for OTel tracing or NoopSpanManager{} when disabled.
type SpanManager interface {
	// StartTransferSpan starts a span covering one pipe transfer.
	StartTransferSpan(ctx context.Context, transferID string, capacity int) (context.Context, trace.Span)

	// EndSpanWithError completes a span, optionally recording an error.
	EndSpanWithError(span trace.Span, err error)

	// AddSpanEvent adds an event to the span carried by ctx.
	AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue)
}

type otelSpanManager struct {
	tracer trace.Tracer
}

// NewSpanManager returns a SpanManager on the global tracer provider.
func NewSpanManager() SpanManager {
	return NewSpanManagerFrom(otel.GetTracerProvider())
}

// NewSpanManagerFrom returns a SpanManager on an explicit provider.
func NewSpanManagerFrom(tp trace.TracerProvider) SpanManager {
	return &otelSpanManager{tracer: tp.Tracer(TracerName)}
}

// StartTransferSpan starts the transfer span.
func (m *otelSpanManager) StartTransferSpan(ctx context.Context, transferID string, capacity int) (context.Context, trace.Span) {
	return m.tracer.Start(ctx, "hioload.aio.pipe",
		trace.WithAttributes(
			attribute.String("transfer.id", transferID),
			attribute.Int("ring.capacity", capacity),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndSpanWithError completes a span, optionally recording an error.
func (m *otelSpanManager) EndSpanWithError(span trace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// AddSpanEvent adds an event to the current span.
func (m *otelSpanManager) AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.AddEvent(name, trace.WithAttributes(attrs...))
}
