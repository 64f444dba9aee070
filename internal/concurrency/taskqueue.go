// File: internal/concurrency/taskqueue.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Unbounded FIFO of deferred tasks. Any goroutine may push, the event loop
// drains.

package concurrency

import (
	"sync"

	"github.com/eapache/queue"
)

// TaskQueue is a mutex-guarded FIFO of func() tasks.
type TaskQueue struct {
	mu sync.Mutex
	q  *queue.Queue
}

// NewTaskQueue creates an empty queue.
func NewTaskQueue() *TaskQueue {
	return &TaskQueue{q: queue.New()}
}

// Push appends fn. Nil tasks are ignored.
func (t *TaskQueue) Push(fn func()) {
	if fn == nil {
		return
	}
	t.mu.Lock()
	t.q.Add(fn)
	t.mu.Unlock()
}

// Len returns the number of queued tasks.
func (t *TaskQueue) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.q.Length()
}

// Drain removes the tasks queued at the time of the call, in FIFO order.
// Tasks pushed by the returned tasks are left for the next drain.
func (t *TaskQueue) Drain() []func() {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := t.q.Length()
	if n == 0 {
		return nil
	}
	out := make([]func(), 0, n)
	for i := 0; i < n; i++ {
		out = append(out, t.q.Remove().(func()))
	}
	return out
}
