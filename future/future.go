// File: future/future.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package future

import (
	"context"
	"errors"
	"sync"

	"github.com/momentics/hioload-aio/api"
)

var (
	// ErrAlreadyResolved is the panic value for a second Complete, Fail,
	// Send or Close on the same producer.
	ErrAlreadyResolved = errors.New("future: already resolved")
	// ErrAlreadyConsumed is the panic value for a second continuation.
	ErrAlreadyConsumed = errors.New("future: continuation already registered")
)

type cell[T any] struct {
	mu       sync.Mutex
	done     chan struct{}
	resolved bool
	val      T
	err      error
	cont     func(T, error)
}

// Producer resolves its Future exactly once.
type Producer[T any] struct {
	c *cell[T]
}

// Future is the consumer side of a pending result.
type Future[T any] struct {
	c *cell[T]
}

// Pair creates a pending future and its producer.
func Pair[T any]() (*Producer[T], *Future[T]) {
	c := &cell[T]{done: make(chan struct{})}
	return &Producer[T]{c: c}, &Future[T]{c: c}
}

// Resolved returns an already completed future.
func Resolved[T any](v T) *Future[T] {
	p, f := Pair[T]()
	p.Complete(v)
	return f
}

// Failed returns an already failed future.
func Failed[T any](err error) *Future[T] {
	p, f := Pair[T]()
	p.Fail(err)
	return f
}

// Complete resolves the future with v. Panics if already resolved.
func (p *Producer[T]) Complete(v T) {
	p.resolve(v, nil)
}

// Fail resolves the future with err, classified into the error taxonomy.
// Panics if already resolved.
func (p *Producer[T]) Fail(err error) {
	e := api.Classify(err)
	if e == nil {
		e = api.OfKind(api.KindOther)
	}
	var zero T
	p.resolve(zero, e)
}

// Resolved reports whether Complete or Fail has been called.
func (p *Producer[T]) Resolved() bool {
	p.c.mu.Lock()
	defer p.c.mu.Unlock()
	return p.c.resolved
}

func (p *Producer[T]) resolve(v T, err error) {
	c := p.c
	c.mu.Lock()
	if c.resolved {
		c.mu.Unlock()
		panic(ErrAlreadyResolved)
	}
	c.resolved = true
	c.val, c.err = v, err
	cont := c.cont
	close(c.done)
	c.mu.Unlock()
	if cont != nil {
		cont(v, err)
	}
}

// OnComplete registers the continuation. It runs exactly once on the
// goroutine that resolves the future, or immediately if the future is
// already resolved. Only one continuation may be registered.
func (f *Future[T]) OnComplete(fn func(v T, err error)) {
	c := f.c
	c.mu.Lock()
	if c.cont != nil {
		c.mu.Unlock()
		panic(ErrAlreadyConsumed)
	}
	c.cont = fn
	if !c.resolved {
		c.mu.Unlock()
		return
	}
	v, err := c.val, c.err
	c.mu.Unlock()
	fn(v, err)
}

// Await blocks until the future resolves or ctx is done. It must not be
// called from the loop goroutine that is expected to resolve the future.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.c.done:
		f.c.mu.Lock()
		defer f.c.mu.Unlock()
		return f.c.val, f.c.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Done is closed once the future resolves.
func (f *Future[T]) Done() <-chan struct{} { return f.c.done }

// Result returns the outcome without blocking; ok is false while pending.
func (f *Future[T]) Result() (v T, err error, ok bool) {
	f.c.mu.Lock()
	defer f.c.mu.Unlock()
	if !f.c.resolved {
		return v, nil, false
	}
	return f.c.val, f.c.err, true
}

// Map derives a future by applying fn to a successful result. It consumes
// the continuation slot of f.
func Map[T, U any](f *Future[T], fn func(T) (U, error)) *Future[U] {
	p, out := Pair[U]()
	f.OnComplete(func(v T, err error) {
		if err != nil {
			p.Fail(err)
			return
		}
		u, err := fn(v)
		if err != nil {
			p.Fail(err)
			return
		}
		p.Complete(u)
	})
	return out
}

// Both holds the results of Join.
type Both[A, B any] struct {
	First  A
	Second B
}

// Join resolves once both futures resolved. The first failure observed wins.
func Join[A, B any](a *Future[A], b *Future[B]) *Future[Both[A, B]] {
	p, out := Pair[Both[A, B]]()
	var (
		mu     sync.Mutex
		res    Both[A, B]
		left   = 2
		failed bool
	)
	settle := func(err error, set func()) {
		mu.Lock()
		defer mu.Unlock()
		if failed {
			return
		}
		if err != nil {
			failed = true
			p.Fail(err)
			return
		}
		set()
		if left--; left == 0 {
			p.Complete(res)
		}
	}
	a.OnComplete(func(v A, err error) { settle(err, func() { res.First = v }) })
	b.OnComplete(func(v B, err error) { settle(err, func() { res.Second = v }) })
	return out
}

// All resolves with every result in argument order, or the first failure.
func All[T any](fs ...*Future[T]) *Future[[]T] {
	p, out := Pair[[]T]()
	if len(fs) == 0 {
		p.Complete(nil)
		return out
	}
	var (
		mu     sync.Mutex
		res    = make([]T, len(fs))
		left   = len(fs)
		failed bool
	)
	for i, f := range fs {
		f.OnComplete(func(v T, err error) {
			mu.Lock()
			defer mu.Unlock()
			if failed {
				return
			}
			if err != nil {
				failed = true
				p.Fail(err)
				return
			}
			res[i] = v
			if left--; left == 0 {
				p.Complete(res)
			}
		})
	}
	return out
}
