package facade_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-aio/control"
	"github.com/momentics/hioload-aio/facade"
	"github.com/momentics/hioload-aio/fake"
	"github.com/momentics/hioload-aio/reactor"
	"github.com/momentics/hioload-aio/stream"
)

func newRuntime(t *testing.T, cfg *facade.Config, logs *bytes.Buffer) (*facade.Runtime, *fake.Poller) {
	t.Helper()
	p := fake.NewPoller()
	rt, err := facade.New(cfg,
		facade.WithLogOutput(logs),
		facade.WithReactorOptions(reactor.WithPoller(p)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rt.Close() })
	return rt, p
}

func TestParseConfigKeepsDefaults(t *testing.T) {
	cfg, err := facade.ParseConfig([]byte("buffer_size: 4096\npoll_timeout: 5ms\nlog_format: json\n"))
	require.NoError(t, err)
	assert.Equal(t, 4096, cfg.BufferSize)
	assert.Equal(t, 5*time.Millisecond, cfg.PollTimeout)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, facade.DefaultConfig().MaxEvents, cfg.MaxEvents)
}

func TestParseConfigRejectsInvalid(t *testing.T) {
	_, err := facade.ParseConfig([]byte("buffer_size: 0\nmax_events: -1\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "buffer_size")
	assert.Contains(t, err.Error(), "max_events")

	_, err = facade.ParseConfig([]byte("buffer_size: [1"))
	assert.Error(t, err)
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aio.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_events: 16\nenable_debug: false\n"), 0o600))

	cfg, err := facade.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 16, cfg.MaxEvents)
	assert.False(t, cfg.EnableDebug)

	_, err = facade.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestRuntimePipe(t *testing.T) {
	var logs bytes.Buffer
	cfg := facade.DefaultConfig()
	cfg.BufferSize = 4
	cfg.LogLevel = "debug"
	rt, _ := newRuntime(t, cfg, &logs)

	w := fake.NewWriter()
	src := stream.NewResource(fake.NewReader(fake.Data("through the runtime")), reactor.Level)
	fut := rt.Pipe(context.Background(), src, stream.NewResource(w, reactor.Level))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, rt.Reactor().RunUntilIdle(ctx))

	_, err, ok := fut.Result()
	require.True(t, ok)
	require.NoError(t, err)
	assert.Equal(t, "through the runtime", w.String())
	assert.Zero(t, rt.BufferPool().InUse())
	assert.Contains(t, logs.String(), "transfer completed")
	assert.Contains(t, logs.String(), "transfer_id=")
}

func TestRuntimeReloadSwapsPool(t *testing.T) {
	var logs bytes.Buffer
	rt, _ := newRuntime(t, nil, &logs)
	assert.Equal(t, 64*1024, rt.BufferPool().Size())

	rt.Reload(map[string]any{"buffer_size": 128})
	assert.Equal(t, 128, rt.BufferPool().Size())
	assert.Equal(t, 128, rt.Control().GetInt("buffer_size", 0))

	rt.Reload(map[string]any{"buffer_size": "bogus"})
	assert.Equal(t, 128, rt.BufferPool().Size())
}

func TestRuntimeDebugProbes(t *testing.T) {
	var logs bytes.Buffer
	rt, _ := newRuntime(t, nil, &logs)

	hold := stream.NewResource(fake.NewReader(fake.WouldBlock()), reactor.Level)
	rt.Pipe(context.Background(), hold, stream.NewMemSink())

	state := rt.Debug().DumpState()
	assert.EqualValues(t, 1, state["reactor.registrations"])
	assert.Contains(t, state, "platform.cpus")
	assert.Contains(t, state, "pool.buffer_size")
}

func TestRuntimeCloseIsIdempotent(t *testing.T) {
	var logs bytes.Buffer
	rt, p := newRuntime(t, nil, &logs)
	require.NoError(t, rt.Close())
	require.NoError(t, rt.Shutdown())
	assert.True(t, p.Closed())
}

func TestRuntimeUsesInjectedMetrics(t *testing.T) {
	var logs bytes.Buffer
	rt, err := facade.New(nil,
		facade.WithLogOutput(&logs),
		facade.WithReactorOptions(reactor.WithPoller(fake.NewPoller())),
		facade.WithMetrics(control.NoopMetrics{}),
	)
	require.NoError(t, err)
	defer rt.Close()
	assert.Equal(t, control.NoopMetrics{}, rt.Metrics())
}

func TestNewRejectsBadLogger(t *testing.T) {
	cfg := facade.DefaultConfig()
	cfg.LogFormat = "xml"
	_, err := facade.New(cfg, facade.WithReactorOptions(reactor.WithPoller(fake.NewPoller())))
	assert.Error(t, err)
}

func TestRuntimeRunStops(t *testing.T) {
	var logs bytes.Buffer
	cfg := facade.DefaultConfig()
	cfg.LoopCPU = 1 << 20
	cfg.PollTimeout = time.Millisecond
	rt, _ := newRuntime(t, cfg, &logs)

	ctx, cancel := context.WithCancel(context.Background())
	rt.Reactor().Next(cancel)
	assert.ErrorIs(t, rt.Run(ctx), context.Canceled)
	assert.Contains(t, logs.String(), "CPU affinity not applied")
}
