// control/metrics.go
// Author: momentics <momentics@gmail.com>
//
// OpenTelemetry metrics for registrations, dispatches and transfers.

package control

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MeterName is the instrumentation scope used for every instrument.
const MeterName = "github.com/momentics/hioload-aio"

// MetricsRecorder records runtime metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordRegistration records a registration accepted by the reactor.
	RecordRegistration(ctx context.Context, interest string, virtual bool)

	// RecordDispatch records one callback invocation and its outcome.
	RecordDispatch(ctx context.Context, direction, status string)

	// RecordTransfer records a finished pipe transfer.
	RecordTransfer(ctx context.Context, bytesRead, bytesWritten int64, duration time.Duration, err error)
}

type otelMetrics struct {
	registrations metric.Int64Counter
	dispatches    metric.Int64Counter
	transfers     metric.Int64Counter
	transferErrs  metric.Int64Counter
	bytes         metric.Int64Counter
	duration      metric.Float64Histogram
}

func newOtelMetrics(meter metric.Meter) (*otelMetrics, error) {
	registrations, err := meter.Int64Counter("hioload.aio.registrations",
		metric.WithDescription("Number of registrations accepted by the reactor"),
	)
	if err != nil {
		return nil, err
	}

	dispatches, err := meter.Int64Counter("hioload.aio.dispatches",
		metric.WithDescription("Number of readiness callbacks invoked"),
	)
	if err != nil {
		return nil, err
	}

	transfers, err := meter.Int64Counter("hioload.aio.transfers",
		metric.WithDescription("Number of finished pipe transfers"),
	)
	if err != nil {
		return nil, err
	}

	transferErrs, err := meter.Int64Counter("hioload.aio.transfer.errors",
		metric.WithDescription("Number of pipe transfers that failed"),
	)
	if err != nil {
		return nil, err
	}

	bytes, err := meter.Int64Counter("hioload.aio.bytes",
		metric.WithDescription("Bytes moved by pipe transfers"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram("hioload.aio.transfer.duration_ms",
		metric.WithDescription("Pipe transfer duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		registrations: registrations,
		dispatches:    dispatches,
		transfers:     transfers,
		transferErrs:  transferErrs,
		bytes:         bytes,
		duration:      duration,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder bound to the global OTel
// meter provider. Configure the provider first:
//
//	otel.SetMeterProvider(yourProvider)
//
// If instrument creation fails, a no-op recorder is returned.
func NewMetricsRecorder() MetricsRecorder {
	return NewMetricsRecorderFrom(otel.Meter(MeterName))
}

// NewMetricsRecorderFrom builds a recorder on an explicit meter.
func NewMetricsRecorderFrom(meter metric.Meter) MetricsRecorder {
	m, err := newOtelMetrics(meter)
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

// RecordRegistration records a registration.
func (m *otelMetrics) RecordRegistration(ctx context.Context, interest string, virtual bool) {
	m.registrations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("interest", interest),
		attribute.Bool("virtual", virtual),
	))
}

// RecordDispatch records a callback invocation.
func (m *otelMetrics) RecordDispatch(ctx context.Context, direction, status string) {
	m.dispatches.Add(ctx, 1, metric.WithAttributes(
		attribute.String("direction", direction),
		attribute.String("status", status),
	))
}

// RecordTransfer records a finished transfer.
func (m *otelMetrics) RecordTransfer(ctx context.Context, bytesRead, bytesWritten int64, duration time.Duration, err error) {
	attrs := []attribute.KeyValue{
		attribute.Bool("success", err == nil),
	}
	m.transfers.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.duration.Record(ctx, float64(duration.Microseconds())/1000, metric.WithAttributes(attrs...))
	m.bytes.Add(ctx, bytesRead, metric.WithAttributes(attribute.String("direction", "read")))
	m.bytes.Add(ctx, bytesWritten, metric.WithAttributes(attribute.String("direction", "write")))
	if err != nil {
		m.transferErrs.Add(ctx, 1)
	}
}
