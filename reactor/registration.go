// File: reactor/registration.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package reactor

import "github.com/momentics/hioload-aio/api"

// ReadFunc is invoked when the resource is readable.
type ReadFunc func(hint ReadHint) Action

// WriteFunc is invoked when the resource is writable.
type WriteFunc func() Action

// Registration binds a resource to per-direction callbacks. After Register
// the reactor owns it; the caller keeps only the returned Handle.
//
// A resource implementing api.Descriptor is watched through the Poller.
// Any other resource is virtual: it is treated as always ready and its
// callbacks run on every loop iteration until paused or finished.
type Registration struct {
	resource   any
	interest   Interest
	mode       PollMode
	onReadable ReadFunc
	onWritable WriteFunc
	onEnd      func(err *api.Error)

	r      *Reactor
	fd     int
	active Interest
	paused bool
	ended  bool
	endErr *api.Error
}

// NewRegistration builds a registration. A callback may be nil only when
// interest does not include its direction.
func NewRegistration(resource any, interest Interest, mode PollMode, onReadable ReadFunc, onWritable WriteFunc) *Registration {
	return &Registration{
		resource:   resource,
		interest:   interest,
		mode:       mode,
		onReadable: onReadable,
		onWritable: onWritable,
		fd:         -1,
	}
}

// OnEnd sets a hook run once when the registration is dropped. err is nil
// when every direction finished with Done or the handle was cancelled.
func (g *Registration) OnEnd(fn func(err *api.Error)) *Registration {
	g.onEnd = fn
	return g
}

// Interest returns the directions the registration was created with.
func (g *Registration) Interest() Interest { return g.interest }

// Mode returns the poll mode.
func (g *Registration) Mode() PollMode { return g.mode }

// Resource returns the registered resource.
func (g *Registration) Resource() any { return g.resource }

// Virtual reports whether the resource has no descriptor.
func (g *Registration) Virtual() bool {
	_, ok := g.resource.(api.Descriptor)
	return !ok
}

// Handle steers a live registration. Methods are no-ops on a nil Handle
// and after the registration ended. Loop goroutine only.
type Handle struct {
	reg *Registration
}

// Pause stops callbacks for this registration until Resume.
func (h *Handle) Pause() {
	if h == nil || h.reg.ended || h.reg.paused {
		return
	}
	h.reg.paused = true
	h.reg.r.rearm(h.reg)
}

// Resume re-enables callbacks. For edge-triggered descriptors this also
// re-arms readiness, so pending data is reported again.
func (h *Handle) Resume() {
	if h == nil || h.reg.ended || !h.reg.paused {
		return
	}
	h.reg.paused = false
	h.reg.r.rearm(h.reg)
}

// Cancel drops the registration. The OnEnd hook sees a nil error.
func (h *Handle) Cancel() {
	if h == nil || h.reg.ended {
		return
	}
	h.reg.r.finish(h.reg, h.reg.active, nil)
}

// OnEnd adds fn to the end hooks of the registration. Hooks run in the
// order they were attached. If the registration already ended, fn runs
// once the current callback returns, with the error it ended with.
func (h *Handle) OnEnd(fn func(err *api.Error)) {
	if h == nil || fn == nil {
		return
	}
	if h.reg.ended {
		err := h.reg.endErr
		h.reg.r.later(func() { fn(err) })
		return
	}
	if prev := h.reg.onEnd; prev != nil {
		h.reg.onEnd = func(err *api.Error) {
			prev(err)
			fn(err)
		}
		return
	}
	h.reg.onEnd = fn
}

// Active reports whether the registration is still live.
func (h *Handle) Active() bool { return h != nil && !h.reg.ended }

// Paused reports whether callbacks are suspended.
func (h *Handle) Paused() bool { return h != nil && h.reg.paused }

// Interest returns the directions still registered.
func (h *Handle) Interest() Interest {
	if h == nil || h.reg.ended {
		return 0
	}
	return h.reg.active
}
