package stream_test

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/momentics/hioload-aio/api"
	"github.com/momentics/hioload-aio/control"
	"github.com/momentics/hioload-aio/fake"
	"github.com/momentics/hioload-aio/future"
	"github.com/momentics/hioload-aio/pool"
	"github.com/momentics/hioload-aio/reactor"
	"github.com/momentics/hioload-aio/stream"
)

func newReactor(t *testing.T) (*reactor.Reactor, *fake.Poller) {
	t.Helper()
	p := fake.NewPoller()
	r, err := reactor.New(reactor.WithPoller(p), reactor.WithPollTimeout(time.Millisecond))
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r, p
}

func runIdle(t *testing.T, r *reactor.Reactor) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, r.RunUntilIdle(ctx))
}

func result[T any](t *testing.T, f *future.Future[T]) (T, error) {
	t.Helper()
	v, err, ok := f.Result()
	require.True(t, ok, "future not resolved")
	return v, err
}

func TestPipeThroughSingleByteRing(t *testing.T) {
	r, _ := newReactor(t)
	w := fake.NewWriter()
	src := stream.NewResource(fake.NewReader(fake.Data("hello")), reactor.Level)

	fut := src.PipeWith(r, stream.NewResource(w, reactor.Level), stream.WithCapacity(1))
	runIdle(t, r)

	_, err := result(t, fut)
	require.NoError(t, err)
	assert.Equal(t, "hello", w.String())
	assert.Zero(t, r.Len())
}

func TestPipeToleratesWouldBlock(t *testing.T) {
	r, _ := newReactor(t)
	rd := fake.NewReader(fake.WouldBlock(), fake.WouldBlock(), fake.WouldBlock(), fake.Data("hello"), fake.EOF())
	w := fake.NewWriter()

	fut := stream.Pipe(r, stream.NewResource(rd, reactor.Level), stream.NewResource(w, reactor.Level))
	runIdle(t, r)

	_, err := result(t, fut)
	require.NoError(t, err)
	assert.Equal(t, "hello", w.String())
	assert.GreaterOrEqual(t, rd.Calls(), 5)
}

func TestPipeWriterFailureStopsReader(t *testing.T) {
	r, _ := newReactor(t)
	steps := make([]fake.Step, 0, 64)
	for range 64 {
		steps = append(steps, fake.Data("abcd"), fake.WouldBlock())
	}
	rd := fake.NewReader(steps...)
	w := fake.NewWriter().FailAfter(3, syscall.EPIPE)

	fut := stream.Pipe(r, stream.NewResource(rd, reactor.Level), stream.NewResource(w, reactor.Level), stream.WithCapacity(4))
	runIdle(t, r)

	_, err := result(t, fut)
	require.Error(t, err)
	assert.Equal(t, api.KindBrokenPipe, api.KindOf(err))
	assert.Equal(t, "abc", w.String())

	calls := rd.Calls()
	for range 5 {
		require.NoError(t, r.RunOnce(0))
	}
	assert.Equal(t, calls, rd.Calls())
	assert.Zero(t, r.Len())
}

func TestPipeReaderFailure(t *testing.T) {
	r, _ := newReactor(t)
	rd := fake.NewReader(fake.Data("ab"), fake.Fail(api.ErrConnectionReset))
	w := fake.NewWriter()

	fut := stream.Pipe(r, stream.NewResource(rd, reactor.Level), stream.NewResource(w, reactor.Level))
	runIdle(t, r)

	_, err := result(t, fut)
	assert.ErrorIs(t, err, api.ErrConnectionReset)
	assert.Zero(t, r.Len())
}

func TestPipeCompletesOnWriterEOF(t *testing.T) {
	r, _ := newReactor(t)
	rd := fake.NewReader(fake.Data("abc"), fake.WouldBlock(), fake.Data("def"))
	w := fake.NewWriter(fake.Accept(2), fake.Fail(io.EOF))

	fut := stream.Pipe(r, stream.NewResource(rd, reactor.Level), stream.NewResource(w, reactor.Level))
	runIdle(t, r)

	_, err := result(t, fut)
	require.NoError(t, err)
	assert.Equal(t, "ab", w.String())
	assert.Zero(t, r.Len())
}

func TestPipePreservesOrder(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	data := make([]byte, 8192)
	for i := range data {
		data[i] = byte(rng.UintN(256))
	}
	for _, capacity := range []int{1, 3, 7, 64, 4096} {
		for _, chunk := range []int{1, 5, 100, 0} {
			t.Run(fmt.Sprintf("cap%d_chunk%d", capacity, chunk), func(t *testing.T) {
				r, _ := newReactor(t)
				var steps []fake.Step
				for off := 0; off < len(data); {
					n := min(1+rng.IntN(300), len(data)-off)
					steps = append(steps, fake.Step{Data: data[off : off+n]})
					if rng.IntN(3) == 0 {
						steps = append(steps, fake.WouldBlock())
					}
					off += n
				}
				w := fake.NewWriter().WithChunk(chunk)
				fut := stream.Pipe(r, stream.NewResource(fake.NewReader(steps...), reactor.Level),
					stream.NewResource(w, reactor.Level), stream.WithCapacity(capacity))
				runIdle(t, r)

				_, err := result(t, fut)
				require.NoError(t, err)
				assert.Equal(t, data, w.Bytes())
			})
		}
	}
}

func TestPipeOverDescriptors(t *testing.T) {
	r, p := newReactor(t)
	rd := fake.FdReader{Reader: fake.NewReader(fake.Data("abc"), fake.WouldBlock(), fake.Data("def")), FD: 5}
	w := fake.FdWriter{Writer: fake.NewWriter().WithChunk(2), FD: 6}
	p.SetReady(5, reactor.Readable)
	p.SetReady(6, reactor.Writable)

	fut := stream.Pipe(r, stream.NewResource(rd, reactor.Level), stream.NewResource(w, reactor.Level), stream.WithCapacity(4))
	runIdle(t, r)

	_, err := result(t, fut)
	require.NoError(t, err)
	assert.Equal(t, "abcdef", w.String())
	_, watched := p.Watched(5)
	assert.False(t, watched)
	_, watched = p.Watched(6)
	assert.False(t, watched)
	assert.Contains(t, p.Ops(), "add 5 readable level")
}

type hookedSink struct {
	w     *fake.Writer
	ended int
}

func (s *hookedSink) OnWrite(r *reactor.Reactor, listener stream.WriteListener) (*reactor.Handle, error) {
	return r.Register(reactor.NewRegistration(s.w, reactor.Writable, reactor.Level, nil, func() reactor.Action {
		return listener(s.w.Write)
	}).OnEnd(func(*api.Error) { s.ended++ }))
}

func TestPipeKeepsSinkEndHook(t *testing.T) {
	r, _ := newReactor(t)
	sink := &hookedSink{w: fake.NewWriter()}
	src := stream.NewResource(fake.NewReader(fake.Data("hello"), fake.EOF()), reactor.Level)

	fut := src.Pipe(r, sink)
	runIdle(t, r)

	_, err := result(t, fut)
	require.NoError(t, err)
	assert.Equal(t, "hello", sink.w.String())
	assert.Equal(t, 1, sink.ended)
}

func TestPipeRejectsWrongRoles(t *testing.T) {
	r, _ := newReactor(t)

	fut := stream.Pipe(r, stream.NewResource("not a reader", reactor.Level), stream.NewMemSink())
	_, err := result(t, fut)
	assert.Equal(t, api.KindMismatchedResourceType, api.KindOf(err))

	fut = stream.Pipe(r, stream.NewResource(fake.NewReader(fake.Data("x")), reactor.Level),
		stream.NewResource("not a writer", reactor.Level))
	_, err = result(t, fut)
	assert.Equal(t, api.KindMismatchedResourceType, api.KindOf(err))
	assert.Zero(t, r.Len())
}

func TestPipeFailsWhenReactorCloses(t *testing.T) {
	p := fake.NewPoller()
	r, err := reactor.New(reactor.WithPoller(p))
	require.NoError(t, err)
	blocked := &blockingReader{}

	fut := stream.Pipe(r, stream.NewResource(blocked, reactor.Level), stream.NewResource(fake.NewWriter(), reactor.Level))
	require.NoError(t, r.RunOnce(0))
	require.NoError(t, r.Close())

	_, err = result(t, fut)
	assert.ErrorIs(t, err, reactor.ErrStopped)
	assert.Zero(t, r.Len())
}

type blockingReader struct{}

func (*blockingReader) Read([]byte) (int, error) { return 0, api.ErrWouldBlock }

func TestPipeBorrowsRingFromPool(t *testing.T) {
	r, _ := newReactor(t)
	bp := pool.NewBytePool(8)
	w := fake.NewWriter()

	fut := stream.Pipe(r, stream.NewResource(fake.NewReader(fake.Data("pooled ring data")), reactor.Level),
		stream.NewResource(w, reactor.Level), stream.WithPool(bp))
	assert.EqualValues(t, 1, bp.InUse())
	runIdle(t, r)

	_, err := result(t, fut)
	require.NoError(t, err)
	assert.Equal(t, "pooled ring data", w.String())
	assert.Zero(t, bp.InUse())
}

func TestPipeRecordsMetricsAndSpan(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	t.Cleanup(func() {
		_ = mp.Shutdown(context.Background())
		_ = tp.Shutdown(context.Background())
	})

	r, _ := newReactor(t)
	w := fake.NewWriter()
	fut := stream.Pipe(r, stream.NewResource(fake.NewReader(fake.Data("metered")), reactor.Level),
		stream.NewResource(w, reactor.Level),
		stream.WithRecorder(control.NewMetricsRecorderFrom(mp.Meter(control.MeterName))),
		stream.WithSpans(control.NewSpanManagerFrom(tp)),
	)
	runIdle(t, r)
	_, err := result(t, fut)
	require.NoError(t, err)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	var transfers, moved int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			for _, dp := range sum.DataPoints {
				switch m.Name {
				case "hioload.aio.transfers":
					transfers += dp.Value
				case "hioload.aio.bytes":
					moved += dp.Value
				}
			}
		}
	}
	assert.EqualValues(t, 1, transfers)
	assert.Positive(t, moved)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "hioload.aio.pipe", spans[0].Name)
}
