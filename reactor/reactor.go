// File: reactor/reactor.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Single-threaded readiness reactor.

package reactor

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync/atomic"
	"time"

	"github.com/momentics/hioload-aio/api"
	"github.com/momentics/hioload-aio/control"
	"github.com/momentics/hioload-aio/internal/concurrency"
)

const (
	defaultMaxEvents   = 128
	defaultPollTimeout = 100 * time.Millisecond
)

// Option configures a Reactor.
type Option func(*Reactor)

// WithPoller sets the readiness backend. Defaults to the platform poller.
func WithPoller(p Poller) Option { return func(r *Reactor) { r.poller = p } }

// WithLogger sets the logger. Nil discards.
func WithLogger(l *slog.Logger) Option { return func(r *Reactor) { r.logger = control.OrDiscard(l) } }

// WithRecorder sets the metrics recorder.
func WithRecorder(m control.MetricsRecorder) Option {
	return func(r *Reactor) {
		if m != nil {
			r.metrics = m
		}
	}
}

// WithMaxEvents bounds the events handled per poll.
func WithMaxEvents(n int) Option {
	return func(r *Reactor) {
		if n > 0 {
			r.maxEvents = n
		}
	}
}

// WithPollTimeout bounds a single poll in Run and RunUntilIdle.
func WithPollTimeout(d time.Duration) Option {
	return func(r *Reactor) {
		if d > 0 {
			r.pollTimeout = d
		}
	}
}

// slot tracks the two directions of one descriptor.
type slot struct {
	fd    int
	mode  PollMode
	read  *Registration
	write *Registration
	added bool
	armed Interest
}

func (s *slot) want() Interest {
	var w Interest
	if s.read != nil && !s.read.paused && s.read.active&Readable != 0 {
		w |= Readable
	}
	if s.write != nil && !s.write.paused && s.write.active&Writable != 0 {
		w |= Writable
	}
	return w
}

// Reactor dispatches readiness to registrations.
type Reactor struct {
	poller      Poller
	logger      *slog.Logger
	metrics     control.MetricsRecorder
	maxEvents   int
	pollTimeout time.Duration

	tasks   *concurrency.TaskQueue
	events  []Event
	slots   map[int]*slot
	virtual []*Registration
	live    atomic.Int64
	stopped atomic.Bool
	closed  bool

	depth int
	after []func()
}

// New creates a reactor. Without WithPoller the platform poller is used.
func New(opts ...Option) (*Reactor, error) {
	r := &Reactor{
		logger:      control.DiscardLogger(),
		metrics:     control.NoopMetrics{},
		maxEvents:   defaultMaxEvents,
		pollTimeout: defaultPollTimeout,
		tasks:       concurrency.NewTaskQueue(),
		slots:       make(map[int]*slot),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.poller == nil {
		p, err := NewDefaultPoller()
		if err != nil {
			return nil, fmt.Errorf("reactor: %w", api.Classify(err))
		}
		r.poller = p
	}
	r.events = make([]Event, r.maxEvents)
	return r, nil
}

// Register submits reg and returns its handle. It fails when the reactor
// is closed, when the registration is malformed or already submitted, when
// a direction of its descriptor is already owned, or when the poller
// refuses the descriptor.
func (r *Reactor) Register(reg *Registration) (*Handle, error) {
	if r.closed {
		return nil, ErrStopped
	}
	if reg == nil || reg.interest == 0 || reg.interest&^(Readable|Writable) != 0 {
		return nil, ErrInvalidRegistration
	}
	if (reg.interest&Readable != 0 && reg.onReadable == nil) ||
		(reg.interest&Writable != 0 && reg.onWritable == nil) {
		return nil, ErrInvalidRegistration
	}
	if reg.r != nil {
		return nil, ErrDuplicate
	}

	reg.r = r
	reg.active = reg.interest
	if d, ok := reg.resource.(api.Descriptor); ok {
		if err := r.attach(reg, d.Fd()); err != nil {
			reg.r, reg.active = nil, 0
			return nil, err
		}
	} else {
		reg.fd = -1
		r.virtual = append(r.virtual, reg)
	}
	r.live.Add(1)
	r.metrics.RecordRegistration(context.Background(), reg.interest.String(), reg.fd < 0)
	r.logger.Debug("registered",
		slog.Int("fd", reg.fd),
		slog.String("interest", reg.interest.String()),
		slog.String("mode", reg.mode.String()),
	)
	return &Handle{reg: reg}, nil
}

func (r *Reactor) attach(reg *Registration, fd int) error {
	s, existing := r.slots[fd]
	if !existing {
		s = &slot{fd: fd, mode: reg.mode}
	} else if s.mode != reg.mode {
		return ErrModeMismatch
	}
	if (reg.interest&Readable != 0 && s.read != nil) || (reg.interest&Writable != 0 && s.write != nil) {
		return ErrDuplicate
	}
	prevRead, prevWrite := s.read, s.write
	if reg.interest&Readable != 0 {
		s.read = reg
	}
	if reg.interest&Writable != 0 {
		s.write = reg
	}
	if err := r.sync(s); err != nil {
		s.read, s.write = prevRead, prevWrite
		return fmt.Errorf("reactor: register fd %d: %w", fd, api.Classify(err))
	}
	reg.fd = fd
	r.slots[fd] = s
	return nil
}

// sync pushes the wanted interest of s to the poller. A slot with nothing
// armed is removed from the poller so hang-ups on paused descriptors do
// not spin the loop.
func (r *Reactor) sync(s *slot) error {
	want := s.want()
	var err error
	switch {
	case want == 0 && s.added:
		err = r.poller.Delete(s.fd)
		s.added = false
	case want == 0:
	case !s.added:
		if err = r.poller.Add(s.fd, want, s.mode); err == nil {
			s.added = true
		}
	default:
		err = r.poller.Modify(s.fd, want, s.mode)
	}
	if err == nil {
		s.armed = want
	}
	return err
}

func (r *Reactor) rearm(reg *Registration) {
	if reg.fd < 0 {
		return
	}
	s := r.slots[reg.fd]
	if s == nil {
		return
	}
	if err := r.sync(s); err != nil {
		e := api.Classify(err)
		r.logger.Warn("rearm failed", slog.Int("fd", s.fd), slog.String("error", e.Error()))
		r.later(func() { r.failSlot(s, e) })
	}
}

func (r *Reactor) failSlot(s *slot, err *api.Error) {
	if s.read != nil {
		r.finish(s.read, s.read.active, err)
	}
	if s.write != nil {
		r.finish(s.write, s.write.active, err)
	}
}

// finish drops the directions in drop, or the whole registration when err
// is set. OnEnd runs once the last direction is gone.
func (r *Reactor) finish(reg *Registration, drop Interest, err *api.Error) {
	if reg.ended {
		return
	}
	reg.active &^= drop
	if err != nil {
		reg.active = 0
	}
	if reg.fd >= 0 {
		if s := r.slots[reg.fd]; s != nil {
			if s.read == reg && reg.active&Readable == 0 {
				s.read = nil
			}
			if s.write == reg && reg.active&Writable == 0 {
				s.write = nil
			}
			if e := r.sync(s); e != nil {
				r.logger.Debug("poller update on finish", slog.Int("fd", s.fd), slog.String("error", e.Error()))
			}
			if s.read == nil && s.write == nil {
				delete(r.slots, s.fd)
			}
		}
	}
	if reg.active != 0 {
		return
	}
	reg.ended = true
	reg.endErr = err
	if reg.fd < 0 {
		r.virtual = slices.DeleteFunc(r.virtual, func(g *Registration) bool { return g == reg })
	}
	r.live.Add(-1)
	if reg.onEnd != nil {
		r.later(func() { reg.onEnd(err) })
	}
}

// later runs fn after the current callback returns, or now if none runs.
func (r *Reactor) later(fn func()) {
	if r.depth > 0 {
		r.after = append(r.after, fn)
		return
	}
	fn()
}

func (r *Reactor) flushAfter() {
	for r.depth == 0 && len(r.after) > 0 {
		fns := r.after
		r.after = nil
		for _, fn := range fns {
			fn()
		}
	}
}

func (r *Reactor) invoke(reg *Registration, dir Interest, hint ReadHint) {
	if reg.ended {
		return
	}
	if reg.interest&dir == 0 {
		defect := errWrongWritable
		if dir == Readable {
			defect = errWrongReadable
		}
		r.logger.Error("wrong-direction notification",
			slog.Int("fd", reg.fd),
			slog.String("interest", reg.interest.String()),
			slog.String("received", dir.String()),
		)
		r.finish(reg, reg.active, defect)
		r.flushAfter()
		return
	}
	if reg.paused || reg.active&dir == 0 {
		return
	}
	act := r.call(reg, dir, hint)
	r.metrics.RecordDispatch(context.Background(), dir.String(), act.Status.String())
	switch act.Status {
	case StatusDone:
		r.finish(reg, dir, nil)
	case StatusFailed:
		err := act.Err
		if err == nil {
			err = api.OfKind(api.KindOther)
		}
		r.logger.Debug("registration failed", slog.Int("fd", reg.fd), slog.String("error", err.Error()))
		r.finish(reg, reg.active, err)
	}
	r.flushAfter()
}

func (r *Reactor) call(reg *Registration, dir Interest, hint ReadHint) (act Action) {
	r.depth++
	defer func() {
		r.depth--
		if p := recover(); p != nil {
			r.logger.Error("callback panicked",
				slog.Int("fd", reg.fd),
				slog.String("direction", dir.String()),
				slog.Any("panic", p),
			)
			act = Fail(api.NewError(api.KindOther, fmt.Sprintf("callback panicked: %v", p)))
		}
	}()
	if dir == Readable {
		if hint == 0 {
			hint = HintData
		}
		return reg.onReadable(hint)
	}
	return reg.onWritable()
}

func (r *Reactor) dispatch(ev Event) {
	s := r.slots[ev.Fd]
	if s == nil {
		return
	}
	if ev.Ready&Readable != 0 && s.read != nil {
		r.invoke(s.read, Readable, ev.Hint)
	}
	if ev.Ready&Writable != 0 {
		if s = r.slots[ev.Fd]; s != nil && s.write != nil {
			r.invoke(s.write, Writable, 0)
		}
	}
}

func (r *Reactor) runVirtual() {
	if len(r.virtual) == 0 {
		return
	}
	for _, reg := range slices.Clone(r.virtual) {
		if reg.active&Readable != 0 {
			r.invoke(reg, Readable, HintData)
		}
		if reg.active&Writable != 0 {
			r.invoke(reg, Writable, 0)
		}
	}
}

func (r *Reactor) readyVirtual() bool {
	for _, reg := range r.virtual {
		if !reg.paused && reg.active != 0 {
			return true
		}
	}
	return false
}

func (r *Reactor) runTasks() {
	for _, fn := range r.tasks.Drain() {
		r.runTask(fn)
	}
}

func (r *Reactor) runTask(fn func()) {
	r.depth++
	defer func() {
		r.depth--
		if p := recover(); p != nil {
			r.logger.Error("task panicked", slog.Any("panic", p))
		}
		r.flushAfter()
	}()
	fn()
}

// RunOnce handles one batch: queued tasks, virtual registrations, then one
// poll of up to timeout (negative blocks). The poll does not block while
// tasks or ready virtual registrations are pending.
func (r *Reactor) RunOnce(timeout time.Duration) error {
	if r.closed {
		return ErrStopped
	}
	r.runTasks()
	r.runVirtual()
	if r.readyVirtual() || r.tasks.Len() > 0 {
		timeout = 0
	}
	n, err := r.poller.Wait(r.events, timeout)
	if err != nil {
		return fmt.Errorf("reactor: wait: %w", api.Classify(err))
	}
	for _, ev := range r.events[:n] {
		r.dispatch(ev)
	}
	return nil
}

// Run loops until ctx is done or Stop is called. It returns ctx.Err() when
// the context ended the loop and nil after Stop.
func (r *Reactor) Run(ctx context.Context) error {
	defer r.stopped.Store(false)
	release := context.AfterFunc(ctx, r.Stop)
	defer release()
	for !r.stopped.Load() {
		if err := r.RunOnce(r.pollTimeout); err != nil {
			return err
		}
	}
	return ctx.Err()
}

// RunUntilIdle loops until no registrations and no tasks remain, ctx is
// done, or Stop is called.
func (r *Reactor) RunUntilIdle(ctx context.Context) error {
	defer r.stopped.Store(false)
	release := context.AfterFunc(ctx, r.Stop)
	defer release()
	for r.live.Load() > 0 || r.tasks.Len() > 0 {
		if r.stopped.Load() {
			return ctx.Err()
		}
		if err := r.RunOnce(r.pollTimeout); err != nil {
			return err
		}
	}
	return nil
}

// Logger returns the logger the reactor reports through.
func (r *Reactor) Logger() *slog.Logger { return r.logger }

// Stop asks a running loop to return. Safe from any goroutine.
func (r *Reactor) Stop() {
	r.stopped.Store(true)
	_ = r.poller.Wake()
}

// Wake interrupts a blocked poll. Safe from any goroutine.
func (r *Reactor) Wake() error { return r.poller.Wake() }

// Next queues fn to run on the loop goroutine before the next poll.
// Safe from any goroutine.
func (r *Reactor) Next(fn func()) {
	r.tasks.Push(fn)
	_ = r.poller.Wake()
}

// Len returns the number of live registrations.
func (r *Reactor) Len() int { return int(r.live.Load()) }

// Pending returns the number of queued tasks.
func (r *Reactor) Pending() int { return r.tasks.Len() }

// Close drops every registration with ErrStopped and releases the poller.
func (r *Reactor) Close() error {
	if r.closed {
		return nil
	}
	for _, s := range r.slots {
		r.failSlot(s, ErrStopped)
	}
	for _, reg := range slices.Clone(r.virtual) {
		r.finish(reg, reg.active, ErrStopped)
	}
	r.closed = true
	return r.poller.Close()
}
