// Author: momentics <momentics@gmail.com>
// SPDX-License-Identifier: MIT

package fake

import (
	"fmt"
	"slices"
	"sync"
	"syscall"
	"time"

	"github.com/momentics/hioload-aio/reactor"
)

type watch struct {
	interest reactor.Interest
	mode     reactor.PollMode
	armed    bool
}

// Poller is a reactor.Poller whose readiness is set by the test.
// Level-mode descriptors are reported while ready; edge-mode descriptors
// are reported once per SetReady or re-arm through Modify.
type Poller struct {
	mu      sync.Mutex
	watches map[int]*watch
	ready   map[int]reactor.Interest
	hints   map[int]reactor.ReadHint
	failAdd map[int]error
	ops     []string
	kick    chan struct{}
	closed  bool
	waits   int
}

var _ reactor.Poller = (*Poller)(nil)

// NewPoller creates an idle poller.
func NewPoller() *Poller {
	return &Poller{
		watches: make(map[int]*watch),
		ready:   make(map[int]reactor.Interest),
		hints:   make(map[int]reactor.ReadHint),
		failAdd: make(map[int]error),
		kick:    make(chan struct{}, 1),
	}
}

// SetReady replaces the readiness of fd.
func (p *Poller) SetReady(fd int, ready reactor.Interest) {
	p.mu.Lock()
	p.ready[fd] = ready
	if w := p.watches[fd]; w != nil {
		w.armed = true
	}
	p.mu.Unlock()
	p.Wake()
}

// SetHint sets the read hint reported with fd.
func (p *Poller) SetHint(fd int, hint reactor.ReadHint) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.hints[fd] = hint
}

// FailAdd makes the next Add of fd fail with err.
func (p *Poller) FailAdd(fd int, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failAdd[fd] = err
}

// Watched returns the interest currently watched for fd.
func (p *Poller) Watched(fd int) (reactor.Interest, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	w, ok := p.watches[fd]
	if !ok {
		return 0, false
	}
	return w.interest, true
}

// Ops returns the recorded poller operations, e.g. "add 3 readable level".
func (p *Poller) Ops() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.ops)
}

// Waits returns how many times Wait was called.
func (p *Poller) Waits() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.waits
}

// Closed reports whether Close was called.
func (p *Poller) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

func (p *Poller) Add(fd int, interest reactor.Interest, mode reactor.PollMode) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err, ok := p.failAdd[fd]; ok {
		delete(p.failAdd, fd)
		return err
	}
	if _, ok := p.watches[fd]; ok {
		return syscall.EEXIST
	}
	p.watches[fd] = &watch{interest: interest, mode: mode, armed: true}
	p.ops = append(p.ops, fmt.Sprintf("add %d %s %s", fd, interest, mode))
	return nil
}

func (p *Poller) Modify(fd int, interest reactor.Interest, mode reactor.PollMode) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	w, ok := p.watches[fd]
	if !ok {
		return syscall.ENOENT
	}
	w.interest, w.mode, w.armed = interest, mode, true
	p.ops = append(p.ops, fmt.Sprintf("mod %d %s %s", fd, interest, mode))
	return nil
}

func (p *Poller) Delete(fd int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.watches[fd]; !ok {
		return syscall.ENOENT
	}
	delete(p.watches, fd)
	p.ops = append(p.ops, fmt.Sprintf("del %d", fd))
	return nil
}

func (p *Poller) collect(events []reactor.Event) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.waits++
	fds := make([]int, 0, len(p.watches))
	for fd := range p.watches {
		fds = append(fds, fd)
	}
	slices.Sort(fds)
	n := 0
	for _, fd := range fds {
		if n == len(events) {
			break
		}
		w := p.watches[fd]
		ready := p.ready[fd] & w.interest
		if ready == 0 || (w.mode == reactor.Edge && !w.armed) {
			continue
		}
		w.armed = false
		ev := reactor.Event{Fd: fd, Ready: ready}
		if ready&reactor.Readable != 0 {
			ev.Hint = p.hints[fd]
			if ev.Hint == 0 {
				ev.Hint = reactor.HintData
			}
		}
		events[n] = ev
		n++
	}
	return n
}

// Wait never blocks longer than timeout and returns early on Wake or SetReady.
func (p *Poller) Wait(events []reactor.Event, timeout time.Duration) (int, error) {
	if p.Closed() {
		return 0, syscall.EBADF
	}
	if n := p.collect(events); n > 0 || timeout == 0 {
		return n, nil
	}
	var timer <-chan time.Time
	if timeout > 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		timer = t.C
	}
	select {
	case <-p.kick:
	case <-timer:
	}
	return p.collect(events), nil
}

func (p *Poller) Wake() error {
	select {
	case p.kick <- struct{}{}:
	default:
	}
	return nil
}

func (p *Poller) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}
