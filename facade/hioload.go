// File: facade/hioload.go
// Unified facade layer for hioload-aio.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Runtime aggregates the core components behind a single value: the
// reactor, the logger, metrics and span recording, the ring buffer pool,
// the live config store and debug probes. It is built from a Config and
// hands out stream options wired to those components.

package facade

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	"github.com/momentics/hioload-aio/affinity"
	"github.com/momentics/hioload-aio/control"
	"github.com/momentics/hioload-aio/future"
	"github.com/momentics/hioload-aio/pool"
	"github.com/momentics/hioload-aio/reactor"
	"github.com/momentics/hioload-aio/stream"
)

// Option adjusts how New builds a Runtime.
type Option func(*settings)

type settings struct {
	logOutput io.Writer
	reactor   []reactor.Option
	metrics   control.MetricsRecorder
	spans     control.SpanManager
}

// WithLogOutput sends log records to w instead of stderr.
func WithLogOutput(w io.Writer) Option { return func(s *settings) { s.logOutput = w } }

// WithReactorOptions passes extra options to reactor.New, e.g. a poller.
func WithReactorOptions(opts ...reactor.Option) Option {
	return func(s *settings) { s.reactor = append(s.reactor, opts...) }
}

// WithMetrics overrides the recorder selected by Config.EnableMetrics.
func WithMetrics(m control.MetricsRecorder) Option { return func(s *settings) { s.metrics = m } }

// WithSpans overrides the span manager selected by Config.EnableTracing.
func WithSpans(sm control.SpanManager) Option { return func(s *settings) { s.spans = sm } }

// Runtime is the assembled I/O runtime.
type Runtime struct {
	cfg     *Config
	reactor *reactor.Reactor
	logger  *slog.Logger
	metrics control.MetricsRecorder
	spans   control.SpanManager
	buffers atomic.Pointer[pool.BytePool]
	store   *control.ConfigStore
	debug   *control.DebugProbes

	mu     sync.Mutex
	closed bool
}

// New constructs a Runtime. A nil cfg selects DefaultConfig.
func New(cfg *Config, opts ...Option) (*Runtime, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := settings{logOutput: os.Stderr}
	for _, opt := range opts {
		opt(&s)
	}

	logger, err := control.NewLogger(s.logOutput, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, fmt.Errorf("facade: %w", err)
	}
	rt := &Runtime{cfg: cfg, logger: logger, store: control.NewConfigStore(cfg.snapshot())}

	switch {
	case s.metrics != nil:
		rt.metrics = s.metrics
	case cfg.EnableMetrics:
		rt.metrics = control.NewMetricsRecorder()
	default:
		rt.metrics = control.NoopMetrics{}
	}
	switch {
	case s.spans != nil:
		rt.spans = s.spans
	case cfg.EnableTracing:
		rt.spans = control.NewSpanManager()
	default:
		rt.spans = control.NoopSpanManager{}
	}

	ropts := append([]reactor.Option{
		reactor.WithLogger(logger),
		reactor.WithRecorder(rt.metrics),
		reactor.WithMaxEvents(cfg.MaxEvents),
		reactor.WithPollTimeout(cfg.PollTimeout),
	}, s.reactor...)
	rt.reactor, err = reactor.New(ropts...)
	if err != nil {
		return nil, fmt.Errorf("facade: reactor init failure: %w", err)
	}
	rt.buffers.Store(pool.NewBytePool(cfg.BufferSize))

	rt.store.OnReload(rt.applyReload)
	rt.debug = control.NewDebugProbes()
	if cfg.EnableDebug {
		control.RegisterLoopProbes(rt.debug, rt.reactor)
		control.RegisterPlatformProbes(rt.debug)
		rt.debug.RegisterProbe("pool.buffer_size", func() any { return rt.BufferPool().Size() })
		rt.debug.RegisterProbe("pool.in_use", func() any { return rt.BufferPool().InUse() })
	}
	logger.Debug("runtime ready",
		slog.Int("buffer_size", cfg.BufferSize),
		slog.Int("max_events", cfg.MaxEvents),
	)
	return rt, nil
}

// applyReload swaps the buffer pool when buffer_size changed. Transfers
// already running keep the ring they started with.
func (rt *Runtime) applyReload(snapshot map[string]any) {
	size, ok := snapshot["buffer_size"].(int)
	if !ok || size < 1 || size == rt.BufferPool().Size() {
		return
	}
	rt.buffers.Store(pool.NewBytePool(size))
	rt.logger.Info("buffer size reloaded", slog.Int("buffer_size", size))
}

// Reactor returns the event loop. Drive it with Run or RunUntilIdle.
func (rt *Runtime) Reactor() *reactor.Reactor { return rt.reactor }

// Logger returns the configured logger.
func (rt *Runtime) Logger() *slog.Logger { return rt.logger }

// Metrics returns the metrics recorder.
func (rt *Runtime) Metrics() control.MetricsRecorder { return rt.metrics }

// BufferPool returns the pool rings are currently taken from.
func (rt *Runtime) BufferPool() *pool.BytePool { return rt.buffers.Load() }

// Control returns the live config store.
func (rt *Runtime) Control() *control.ConfigStore { return rt.store }

// Debug returns the debug probes.
func (rt *Runtime) Debug() *control.DebugProbes { return rt.debug }

// Config returns the configuration the runtime was built with.
func (rt *Runtime) Config() Config { return *rt.cfg }

// PipeOptions returns stream options wired to the runtime's pool,
// observability and logger. ctx parents the transfer span.
func (rt *Runtime) PipeOptions(ctx context.Context) []stream.Option {
	return []stream.Option{
		stream.WithPool(rt.BufferPool()),
		stream.WithRecorder(rt.metrics),
		stream.WithSpans(rt.spans),
		stream.WithLogger(rt.logger),
		stream.WithContext(ctx),
	}
}

// Pipe starts a transfer on the runtime's reactor with PipeOptions.
func (rt *Runtime) Pipe(ctx context.Context, src *stream.Resource, sink stream.WriteStream) *future.Future[struct{}] {
	return stream.Pipe(rt.reactor, src, sink, append(rt.PipeOptions(ctx), src.Options()...)...)
}

// Reload merges cfg into the live config and applies it before returning.
func (rt *Runtime) Reload(cfg map[string]any) {
	rt.store.SetConfigSync(cfg)
}

// Run drives the reactor until ctx is done or Stop is called. With
// LoopCPU set the calling thread is pinned for the duration of the loop.
func (rt *Runtime) Run(ctx context.Context) error {
	if rt.cfg.LoopCPU >= 0 {
		unpin, err := affinity.Pin(rt.cfg.LoopCPU)
		if err != nil {
			rt.logger.Warn("CPU affinity not applied", slog.Int("cpu", rt.cfg.LoopCPU), slog.String("error", err.Error()))
		} else {
			defer unpin()
		}
	}
	return rt.reactor.Run(ctx)
}

// Stop asks a running loop to return. Safe from any goroutine.
func (rt *Runtime) Stop() { rt.reactor.Stop() }

// Close fails every live registration and releases the poller. Calling it
// again is a no-op. Loop goroutine only.
func (rt *Runtime) Close() error {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if rt.closed {
		return nil
	}
	rt.closed = true
	if err := rt.reactor.Close(); err != nil {
		return fmt.Errorf("facade: close reactor: %w", err)
	}
	return nil
}

// Shutdown delegates to Close.
func (rt *Runtime) Shutdown() error { return rt.Close() }
