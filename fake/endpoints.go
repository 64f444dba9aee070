// Author: momentics <momentics@gmail.com>
// SPDX-License-Identifier: MIT

package fake

import (
	"bytes"
	"io"
	"sync"

	"github.com/momentics/hioload-aio/api"
)

// Step is one scripted outcome of a Read or Write call. For readers Data is
// handed out (possibly across several calls); for writers Accept bounds how
// many bytes the call takes. A non-nil Err is returned instead.
type Step struct {
	Data   []byte
	Accept int
	Err    error
}

// WouldBlock scripts a would-block signal.
func WouldBlock() Step { return Step{Err: api.ErrWouldBlock} }

// Data scripts a chunk of readable bytes.
func Data(s string) Step { return Step{Data: []byte(s)} }

// Accept scripts a write call that takes at most n bytes.
func Accept(n int) Step { return Step{Accept: n} }

// EOF scripts end of file.
func EOF() Step { return Step{Err: io.EOF} }

// Fail scripts a hard error.
func Fail(err error) Step { return Step{Err: err} }

// Reader is a scripted api.RawReader. Once the script is exhausted every
// call reports io.EOF.
type Reader struct {
	mu    sync.Mutex
	steps []Step
	calls int
}

// NewReader returns a reader playing steps in order.
func NewReader(steps ...Step) *Reader {
	return &Reader{steps: steps}
}

func (r *Reader) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if len(r.steps) == 0 {
		return 0, io.EOF
	}
	s := r.steps[0]
	if s.Err != nil {
		r.steps = r.steps[1:]
		return 0, s.Err
	}
	n := copy(p, s.Data)
	if n < len(s.Data) {
		r.steps[0].Data = s.Data[n:]
	} else {
		r.steps = r.steps[1:]
	}
	return n, nil
}

// Calls returns the number of Read calls so far.
func (r *Reader) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

// Writer is a scripted api.RawWriter collecting accepted bytes. With an
// exhausted script every call accepts everything, bounded by the chunk size.
type Writer struct {
	mu      sync.Mutex
	buf     bytes.Buffer
	steps   []Step
	chunk   int
	failAt  int
	failErr error
	calls   int
}

// NewWriter returns a writer playing steps in order.
func NewWriter(steps ...Step) *Writer {
	return &Writer{steps: steps}
}

// WithChunk caps the bytes accepted per call.
func (w *Writer) WithChunk(n int) *Writer {
	w.chunk = n
	return w
}

// FailAfter makes the writer return err once n bytes have been accepted.
func (w *Writer) FailAfter(n int, err error) *Writer {
	w.failAt, w.failErr = n, err
	return w
}

func (w *Writer) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.calls++
	if w.failErr != nil && w.buf.Len() >= w.failAt {
		return 0, w.failErr
	}
	n := len(p)
	if len(w.steps) > 0 {
		s := w.steps[0]
		w.steps = w.steps[1:]
		if s.Err != nil {
			return 0, s.Err
		}
		n = min(n, s.Accept)
	}
	if w.chunk > 0 {
		n = min(n, w.chunk)
	}
	if w.failErr != nil {
		n = min(n, w.failAt-w.buf.Len())
	}
	w.buf.Write(p[:n])
	return n, nil
}

// Bytes returns a copy of the accepted bytes.
func (w *Writer) Bytes() []byte {
	w.mu.Lock()
	defer w.mu.Unlock()
	return bytes.Clone(w.buf.Bytes())
}

// String returns the accepted bytes as a string.
func (w *Writer) String() string { return string(w.Bytes()) }

// Calls returns the number of Write calls so far.
func (w *Writer) Calls() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.calls
}

// FdReader is a Reader that claims a descriptor, so the reactor watches it
// through the Poller instead of treating it as virtual.
type FdReader struct {
	*Reader
	FD int
}

// Fd implements api.Descriptor.
func (r FdReader) Fd() int { return r.FD }

// FdWriter is the descriptor-backed counterpart of Writer.
type FdWriter struct {
	*Writer
	FD int
}

// Fd implements api.Descriptor.
func (w FdWriter) Fd() int { return w.FD }
