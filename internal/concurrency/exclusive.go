// File: internal/concurrency/exclusive.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package concurrency

import "sync/atomic"

// ErrAlreadyBorrowed is the panic value raised when an Exclusive is
// borrowed while another borrow is still open.
var ErrAlreadyBorrowed = borrowError("concurrency: exclusive value already borrowed")

type borrowError string

func (e borrowError) Error() string { return string(e) }

// Exclusive holds a value that several closures share but only one may
// touch at a time. Overlapping borrows indicate broken scheduling and panic
// instead of silently aliasing.
type Exclusive[T any] struct {
	borrowed atomic.Bool
	val      T
}

// NewExclusive wraps v.
func NewExclusive[T any](v T) *Exclusive[T] {
	return &Exclusive[T]{val: v}
}

// With runs fn with exclusive access to the value.
func (e *Exclusive[T]) With(fn func(v *T)) {
	e.acquire()
	defer e.borrowed.Store(false)
	fn(&e.val)
}

// Borrowed reports whether a borrow is open.
func (e *Exclusive[T]) Borrowed() bool { return e.borrowed.Load() }

func (e *Exclusive[T]) acquire() {
	if !e.borrowed.CompareAndSwap(false, true) {
		panic(ErrAlreadyBorrowed)
	}
}

// Borrow runs fn with exclusive access and returns its result.
func Borrow[T, R any](e *Exclusive[T], fn func(v *T) R) R {
	e.acquire()
	defer e.borrowed.Store(false)
	return fn(&e.val)
}
