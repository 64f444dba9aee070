// File: stream/stream.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package stream

import (
	"slices"

	"github.com/momentics/hioload-aio/api"
	"github.com/momentics/hioload-aio/future"
	"github.com/momentics/hioload-aio/reactor"
)

// WriteListener is invoked on every writable opportunity with the sink's
// writer. Its Action decides whether the write registration stays alive.
type WriteListener func(w api.Writer) reactor.Action

// WriteStream is the writable-stream role.
type WriteStream interface {
	OnWrite(r *reactor.Reactor, listener WriteListener) (*reactor.Handle, error)
}

// ReadStream is the readable-stream role. R is struct{} for resources and
// the drained value for in-memory sources.
type ReadStream[R any] interface {
	Pipe(r *reactor.Reactor, sink WriteStream) *future.Future[R]
}

var (
	errNotReadable = api.NewError(api.KindMismatchedResourceType, "resource is not readable")
	errNotWritable = api.NewError(api.KindMismatchedResourceType, "resource is not writable")
)

// Resource adapts a raw non-blocking reader and/or writer to both stream
// roles. Resources implementing api.Descriptor are watched by the reactor's
// poller; all others are polled on every loop iteration.
type Resource struct {
	raw  any
	mode reactor.PollMode
	opts []Option
}

var (
	_ ReadStream[struct{}] = (*Resource)(nil)
	_ WriteStream          = (*Resource)(nil)
)

// NewResource wraps raw, which should implement api.RawReader,
// api.RawWriter or both. opts apply to every Pipe started from it.
func NewResource(raw any, mode reactor.PollMode, opts ...Option) *Resource {
	return &Resource{raw: raw, mode: mode, opts: opts}
}

// Raw returns the wrapped resource.
func (s *Resource) Raw() any { return s.raw }

// Options returns the options applied to every Pipe started from s.
func (s *Resource) Options() []Option { return slices.Clone(s.opts) }

// Mode returns the poll mode used for registrations.
func (s *Resource) Mode() reactor.PollMode { return s.mode }

// OnWrite registers listener for writable notifications.
func (s *Resource) OnWrite(r *reactor.Reactor, listener WriteListener) (*reactor.Handle, error) {
	w, ok := s.raw.(api.RawWriter)
	if !ok {
		return nil, errNotWritable
	}
	return r.Register(reactor.NewRegistration(s.raw, reactor.Writable, s.mode, nil, func() reactor.Action {
		return listener(w.Write)
	}))
}

// Pipe starts a transfer of everything readable from s into sink.
func (s *Resource) Pipe(r *reactor.Reactor, sink WriteStream) *future.Future[struct{}] {
	return Pipe(r, s, sink, s.opts...)
}

// PipeWith is Pipe with extra options appended to the resource defaults.
func (s *Resource) PipeWith(r *reactor.Reactor, sink WriteStream, opts ...Option) *future.Future[struct{}] {
	return Pipe(r, s, sink, append(append([]Option(nil), s.opts...), opts...)...)
}
