// File: stream/mem.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// In-memory sources and sinks.

package stream

import (
	"bytes"
	"io"
	"log/slog"

	"github.com/momentics/hioload-aio/api"
	"github.com/momentics/hioload-aio/future"
	"github.com/momentics/hioload-aio/internal/concurrency"
	"github.com/momentics/hioload-aio/reactor"
)

// MemSink is an always-writable in-memory sink.
type MemSink struct {
	buf bytes.Buffer
}

var (
	_ WriteStream   = (*MemSink)(nil)
	_ api.RawWriter = (*MemSink)(nil)
)

// NewMemSink returns an empty sink.
func NewMemSink() *MemSink { return &MemSink{} }

// OnWrite registers listener as a virtual writable registration.
func (m *MemSink) OnWrite(r *reactor.Reactor, listener WriteListener) (*reactor.Handle, error) {
	return r.Register(reactor.NewRegistration(m, reactor.Writable, reactor.Level, nil, func() reactor.Action {
		return listener(m.Write)
	}))
}

// Write appends p. It never blocks.
func (m *MemSink) Write(p []byte) (int, error) { return m.buf.Write(p) }

// Bytes returns the collected bytes. The slice aliases the sink.
func (m *MemSink) Bytes() []byte { return m.buf.Bytes() }

func (m *MemSink) String() string { return m.buf.String() }

// Len returns the number of collected bytes.
func (m *MemSink) Len() int { return m.buf.Len() }

// Reset discards the collected bytes.
func (m *MemSink) Reset() { m.buf.Reset() }

// readInto reads from src straight into the sink's spare capacity, at most
// limit bytes per call.
func (m *MemSink) readInto(src api.RawReader, limit int) (int, progress, *api.Error) {
	m.buf.Grow(limit)
	tail := m.buf.AvailableBuffer()[:limit]
	total := 0
	for total < limit {
		n, err := src.Read(tail[total:])
		if n < 0 || n > limit-total {
			return total, moreLater, api.NewError(api.KindInvalidInput, "reader returned an invalid count")
		}
		total += n
		if err != nil {
			m.buf.Write(tail[:total])
			p, e := signal(err)
			return total, p, e
		}
		if n == 0 {
			break
		}
	}
	m.buf.Write(tail[:total])
	return total, moreLater, nil
}

// pipeToMem reads src directly into sink without an intermediate ring.
func pipeToMem(r *reactor.Reactor, src *Resource, raw api.RawReader, sink *MemSink, o options) *future.Future[struct{}] {
	t, fut := newTransfer(o.capacity, o)
	t.logger.Debug("transfer starting", slog.Int("capacity", o.capacity), slog.Bool("bypass", true))
	st := concurrency.NewExclusive(t)

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
			n, p, err := sink.readInto(raw, o.capacity)
			t.bytesRead += int64(n)
			t.bytesWritten += int64(n)
			switch {
			case err != nil:
				fin = t.finish(err)
				act = reactor.Fail(err)
			case p == done:
				t.readDone = true
				fin = t.finish(nil)
				act = reactor.Done()
			default:
				act = reactor.Continue()
			}
		})
		if fin != nil {
			fin()
		}
		return act
	}
	onEnd := func(err *api.Error) {
		if err == nil {
			return
		}
		if fin := concurrency.Borrow(st, func(tp **transfer) func() { return (*tp).finish(err) }); fin != nil {
			fin()
		}
	}

	h, err := r.Register(reactor.NewRegistration(src.raw, reactor.Readable, src.mode, onReadable, nil).OnEnd(onEnd))
	if err != nil {
		t.finish(api.Classify(err))()
		return fut
	}
	st.With(func(tp **transfer) { (*tp).readH = h })
	return fut
}

// MemReader is an in-memory source. Used as a RawReader it hands out its
// bytes and then reports io.EOF.
type MemReader struct {
	data []byte
	off  int
}

var (
	_ ReadStream[[]byte] = (*MemReader)(nil)
	_ api.RawReader      = (*MemReader)(nil)
)

// NewMemReader returns a source over data. data is not copied.
func NewMemReader(data []byte) *MemReader { return &MemReader{data: data} }

func (m *MemReader) Read(p []byte) (int, error) {
	if m.off >= len(m.data) {
		return 0, io.EOF
	}
	n := copy(p, m.data[m.off:])
	m.off += n
	return n, nil
}

// Len returns the number of unread bytes.
func (m *MemReader) Len() int { return len(m.data) - m.off }

// Pipe writes the unread bytes into sink on its writable notifications.
// The future carries the source's data once everything was accepted or
// the sink reported EOF.
func (m *MemReader) Pipe(r *reactor.Reactor, sink WriteStream) *future.Future[[]byte] {
	producer, fut := future.Pair[[]byte]()
	listener := func(w api.Writer) reactor.Action {
		if producer.Resolved() {
			return reactor.Done()
		}
		p, err := writeAll(m.data, &m.off, w)
		switch {
		case err != nil:
			producer.Fail(err)
			return reactor.Fail(err)
		case p == done:
			producer.Complete(m.data)
			return reactor.Done()
		}
		return reactor.Continue()
	}
	h, err := sink.OnWrite(r, listener)
	if err != nil {
		producer.Fail(err)
		return fut
	}
	h.OnEnd(func(err *api.Error) {
		if err != nil && !producer.Resolved() {
			producer.Fail(err)
		}
	})
	return fut
}

// StringReader is a MemReader whose Pipe yields a string.
type StringReader struct {
	*MemReader
}

var _ ReadStream[string] = StringReader{}

// NewStringReader returns a source over s.
func NewStringReader(s string) StringReader {
	return StringReader{MemReader: NewMemReader([]byte(s))}
}

// Pipe is MemReader.Pipe with the result converted to a string.
func (s StringReader) Pipe(r *reactor.Reactor, sink WriteStream) *future.Future[string] {
	return future.Map(s.MemReader.Pipe(r, sink), func(b []byte) (string, error) {
		return string(b), nil
	})
}
