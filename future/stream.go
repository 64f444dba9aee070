// File: future/stream.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Ordered multi-value completion primitive.

package future

import (
	"context"
	"iter"
	"sync"

	"github.com/eapache/queue"

	"github.com/momentics/hioload-aio/api"
)

type streamState[T any] struct {
	mu     sync.Mutex
	q      *queue.Queue
	ended  bool
	err    error
	notify chan struct{}

	onValue      func(T)
	onEnd        func(error)
	subscribed   bool
	draining     bool
	endDelivered bool
}

// Sender is the producing side of a Stream.
type Sender[T any] struct {
	s *streamState[T]
}

// Stream is the consuming side. Values arrive in the order they were sent.
// After the stream ended Recv keeps returning the terminal error.
type Stream[T any] struct {
	s *streamState[T]
}

// NewStream creates a connected sender and stream. Values sent before
// anyone consumes them are buffered without bound.
func NewStream[T any]() (*Sender[T], *Stream[T]) {
	s := &streamState[T]{q: queue.New(), notify: make(chan struct{}, 1)}
	return &Sender[T]{s: s}, &Stream[T]{s: s}
}

// Send emits v. Panics after Close or Fail.
func (p *Sender[T]) Send(v T) {
	s := p.s
	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		panic(ErrAlreadyResolved)
	}
	s.q.Add(v)
	s.mu.Unlock()
	s.wake()
	s.pump()
}

// Close ends the stream normally. Panics if already ended.
func (p *Sender[T]) Close() { p.end(nil) }

// Fail ends the stream with err, classified into the error taxonomy.
// Panics if already ended.
func (p *Sender[T]) Fail(err error) {
	e := api.Classify(err)
	if e == nil {
		e = api.OfKind(api.KindOther)
	}
	p.end(e)
}

// Ended reports whether Close or Fail has been called.
func (p *Sender[T]) Ended() bool {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	return p.s.ended
}

func (p *Sender[T]) end(err error) {
	s := p.s
	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		panic(ErrAlreadyResolved)
	}
	s.ended = true
	s.err = err
	s.mu.Unlock()
	s.wake()
	s.pump()
}

func (s *streamState[T]) wake() {
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

// pump delivers buffered values and the terminal event to a subscriber.
// Only one goroutine drains at a time; concurrent senders just enqueue.
func (s *streamState[T]) pump() {
	s.mu.Lock()
	if !s.subscribed || s.draining {
		s.mu.Unlock()
		return
	}
	s.draining = true
	for {
		if s.q.Length() > 0 {
			v := s.q.Remove().(T)
			s.mu.Unlock()
			s.onValue(v)
			s.mu.Lock()
			continue
		}
		if s.ended && !s.endDelivered {
			s.endDelivered = true
			err := s.err
			s.mu.Unlock()
			if s.onEnd != nil {
				s.onEnd(err)
			}
			s.mu.Lock()
			continue
		}
		break
	}
	s.draining = false
	s.mu.Unlock()
}

// Recv returns the next value. After Close it returns an EOF-kind error,
// after Fail the failure; both are sticky.
func (c *Stream[T]) Recv(ctx context.Context) (T, error) {
	s := c.s
	var zero T
	for {
		s.mu.Lock()
		if s.q.Length() > 0 {
			v := s.q.Remove().(T)
			s.mu.Unlock()
			return v, nil
		}
		if s.ended {
			err := s.err
			s.mu.Unlock()
			if err == nil {
				return zero, api.ErrEOF
			}
			return zero, err
		}
		s.mu.Unlock()
		select {
		case <-s.notify:
		case <-ctx.Done():
			return zero, ctx.Err()
		}
	}
}

// TryRecv returns a buffered value without blocking.
func (c *Stream[T]) TryRecv() (v T, ok bool) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	if c.s.q.Length() == 0 {
		return v, false
	}
	return c.s.q.Remove().(T), true
}

// All returns a lazy sequence of the remaining values. A failure is
// yielded once as the final pair; a normal close just ends the sequence.
func (c *Stream[T]) All(ctx context.Context) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for {
			v, err := c.Recv(ctx)
			if err != nil {
				if !api.IsEOF(err) || !c.closedNormally() {
					yield(v, err)
				}
				return
			}
			if !yield(v, nil) {
				return
			}
		}
	}
}

func (c *Stream[T]) closedNormally() bool {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	return c.s.ended && c.s.err == nil
}

// Subscribe switches the stream to push mode: onValue sees every value in
// order, including ones buffered before the call, then onEnd sees nil after
// Close or the failure. Callbacks run on the sending goroutine. Recv must
// not be used once subscribed. Panics on a second Subscribe.
func (c *Stream[T]) Subscribe(onValue func(T), onEnd func(error)) {
	s := c.s
	s.mu.Lock()
	if s.subscribed {
		s.mu.Unlock()
		panic(ErrAlreadyConsumed)
	}
	s.subscribed = true
	s.onValue = onValue
	s.onEnd = onEnd
	s.mu.Unlock()
	s.pump()
}
