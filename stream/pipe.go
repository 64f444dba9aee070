// File: stream/pipe.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Ring-buffered pipe between a readable resource and a writable sink.

package stream

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/momentics/hioload-aio/api"
	"github.com/momentics/hioload-aio/control"
	"github.com/momentics/hioload-aio/future"
	"github.com/momentics/hioload-aio/internal/concurrency"
	"github.com/momentics/hioload-aio/pool"
	"github.com/momentics/hioload-aio/reactor"
)

// transfer is the state shared by the read and write callbacks of one
// pipe. It lives in a concurrency.Exclusive so overlapping access panics.
type transfer struct {
	id       string
	ring     *pool.Ring
	producer *future.Producer[struct{}]
	readH    *reactor.Handle
	writeH   *reactor.Handle
	readDone bool
	finished bool

	bytesRead    int64
	bytesWritten int64
	started      time.Time

	o      options
	logger *slog.Logger
	ctx    context.Context
	span   trace.Span
}

// finish marks the transfer resolved and returns the work to run once the
// shared state is no longer borrowed. Later calls return nil.
func (t *transfer) finish(err *api.Error) func() {
	if t.finished {
		return nil
	}
	t.finished = true
	readH, writeH, ring := t.readH, t.writeH, t.ring
	t.ring = nil
	return func() {
		readH.Cancel()
		writeH.Cancel()
		if ring != nil {
			if t.o.pool != nil && ring.Cap() == t.o.pool.Size() {
				ring.Release(t.o.pool)
			} else {
				ring.Release(nil)
			}
		}
		t.report(err)
		if err != nil {
			t.producer.Fail(err)
			return
		}
		t.producer.Complete(struct{}{})
	}
}

func (t *transfer) report(err *api.Error) {
	elapsed := time.Since(t.started)
	var rerr error
	if err != nil {
		rerr = err
		control.LogTransferError(t.logger, err, t.bytesRead, t.bytesWritten)
	} else {
		control.LogTransferComplete(t.logger, t.bytesRead, t.bytesWritten, float64(elapsed.Microseconds())/1000)
	}
	t.o.metrics.RecordTransfer(t.ctx, t.bytesRead, t.bytesWritten, elapsed, rerr)
	t.o.spans.AddSpanEvent(t.ctx, "transfer.end",
		attribute.Int64("bytes.read", t.bytesRead),
		attribute.Int64("bytes.written", t.bytesWritten),
	)
	t.o.spans.EndSpanWithError(t.span, rerr)
}

func newTransfer(capacity int, o options) (*transfer, *future.Future[struct{}]) {
	producer, fut := future.Pair[struct{}]()
	id := uuid.NewString()
	t := &transfer{
		id:       id,
		producer: producer,
		started:  time.Now(),
		o:        o,
		logger:   control.EnrichLogger(o.logger, id),
	}
	t.ctx, t.span = o.spans.StartTransferSpan(o.ctx, id, capacity)
	return t, fut
}

// Pipe moves everything readable from src into sink. The returned future
// completes once the source reached EOF and every buffered byte was
// written, or once the sink reported EOF. It fails with the first hard
// error from either side, after which neither side is touched again.
func Pipe(r *reactor.Reactor, src *Resource, sink WriteStream, opts ...Option) *future.Future[struct{}] {
	o := buildOptions(opts)
	raw, ok := src.raw.(api.RawReader)
	if !ok {
		return future.Failed[struct{}](errNotReadable)
	}
	if ms, isMem := sink.(*MemSink); isMem && o.bypass {
		return pipeToMem(r, src, raw, ms, o)
	}

	t, fut := newTransfer(o.capacity, o)
	if o.pool != nil && o.capacity == o.pool.Size() {
		t.ring = o.pool.NewRing()
	} else {
		t.ring = pool.NewRing(o.capacity)
	}
	t.logger.Debug("transfer starting", slog.Int("capacity", o.capacity))
	st := concurrency.NewExclusive(t)

	onEnd := func(err *api.Error) {
		if err == nil {
			return
		}
		var fin func()
		st.With(func(t **transfer) { fin = (*t).finish(err) })
		if fin != nil {
			fin()
		}
	}

	onReadable := func(reactor.ReadHint) reactor.Action {
		var (
			act reactor.Action
			fin func()
		)
		st.With(func(tp **transfer) {
			t := *tp
			if t.finished {
				act = reactor.Done()
				return
			}
			n, p, err := readTo(raw, t.ring)
			t.bytesRead += int64(n)
			if n > 0 {
				t.writeH.Resume()
			}
			switch {
			case err != nil:
				fin = t.finish(err)
				act = reactor.Fail(err)
			case p == done:
				t.readDone = true
				act = reactor.Done()
				if !t.ring.HasRemainingToRead() {
					fin = t.finish(nil)
				}
			default:
				if !t.ring.HasRemainingToWrite() {
					t.readH.Pause()
				}
				act = reactor.Continue()
			}
		})
		if fin != nil {
			fin()
		}
		return act
	}

	listener := func(w api.Writer) reactor.Action {
		var (
			act reactor.Action
			fin func()
		)
		st.With(func(tp **transfer) {
			t := *tp
			if t.finished {
				act = reactor.Done()
				return
			}
			n, p, err := writeFrom(t.ring, w)
			t.bytesWritten += int64(n)
			if n > 0 && !t.readDone {
				t.readH.Resume()
			}
			switch {
			case err != nil:
				fin = t.finish(err)
				act = reactor.Fail(err)
			case p == done:
				act = reactor.Done()
				fin = t.finish(nil)
			case !t.ring.HasRemainingToRead() && t.readDone:
				act = reactor.Done()
				fin = t.finish(nil)
			default:
				if !t.ring.HasRemainingToRead() {
					t.writeH.Pause()
				}
				act = reactor.Continue()
			}
		})
		if fin != nil {
			fin()
		}
		return act
	}

	readH, err := r.Register(reactor.NewRegistration(src.raw, reactor.Readable, src.mode, onReadable, nil).OnEnd(onEnd))
	if err != nil {
		t.finish(api.Classify(err))()
		return fut
	}
	st.With(func(tp **transfer) { (*tp).readH = readH })

	writeH, err := sink.OnWrite(r, listener)
	if err != nil {
		var fin func()
		st.With(func(tp **transfer) { fin = (*tp).finish(api.Classify(err)) })
		fin()
		return fut
	}
	writeH.OnEnd(onEnd)
	st.With(func(tp **transfer) { (*tp).writeH = writeH })
	return fut
}
