// File: stream/options.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package stream

import (
	"context"
	"log/slog"

	"github.com/momentics/hioload-aio/control"
	"github.com/momentics/hioload-aio/pool"
)

// DefaultCapacity is the ring capacity used when none is configured.
const DefaultCapacity = 64 * 1024

type options struct {
	capacity int
	pool     *pool.BytePool
	metrics  control.MetricsRecorder
	spans    control.SpanManager
	logger   *slog.Logger
	ctx      context.Context
	bypass   bool
}

// Option configures one transfer.
type Option func(*options)

func buildOptions(opts []Option) options {
	o := options{
		bypass:  true,
		metrics: control.NoopMetrics{},
		spans:   control.NoopSpanManager{},
		ctx:     context.Background(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.capacity <= 0 {
		o.capacity = DefaultCapacity
		if o.pool != nil {
			o.capacity = o.pool.Size()
		}
	}
	o.logger = control.OrDiscard(o.logger)
	return o
}

// WithCapacity sets the ring capacity in bytes. Any value >= 1 is valid.
func WithCapacity(n int) Option { return func(o *options) { o.capacity = n } }

// WithPool takes ring storage from p when the capacity matches its size.
func WithPool(p *pool.BytePool) Option { return func(o *options) { o.pool = p } }

// WithRecorder records transfer metrics.
func WithRecorder(m control.MetricsRecorder) Option {
	return func(o *options) {
		if m != nil {
			o.metrics = m
		}
	}
}

// WithSpans wraps each transfer in a span.
func WithSpans(s control.SpanManager) Option {
	return func(o *options) {
		if s != nil {
			o.spans = s
		}
	}
}

// WithLogger logs transfer lifecycle events.
func WithLogger(l *slog.Logger) Option { return func(o *options) { o.logger = l } }

// WithContext sets the parent context of the transfer span. It does not
// cancel the transfer.
func WithContext(ctx context.Context) Option {
	return func(o *options) {
		if ctx != nil {
			o.ctx = ctx
		}
	}
}

// WithBypass controls whether pipes into a MemSink skip the ring.
// Enabled by default.
func WithBypass(enabled bool) Option { return func(o *options) { o.bypass = enabled } }
