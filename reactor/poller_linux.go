//go:build linux

// File: reactor/poller_linux.go
// Author: momentics <momentics@gmail.com>
//
// epoll(7) backend with an eventfd for cross-goroutine wakeups.

package reactor

import (
	"fmt"
	"time"

	"golang.org/x/sys/unix"
)

type epollPoller struct {
	epfd   int
	wakefd int
	raw    []unix.EpollEvent
}

// NewEpollPoller creates the Linux epoll backend.
func NewEpollPoller() (Poller, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("epoll create: %w", err)
	}
	wakefd, err := unix.Eventfd(0, unix.EFD_NONBLOCK|unix.EFD_CLOEXEC)
	if err != nil {
		unix.Close(epfd)
		return nil, fmt.Errorf("eventfd: %w", err)
	}
	ev := unix.EpollEvent{Events: unix.EPOLLIN, Fd: int32(wakefd)}
	if err := unix.EpollCtl(epfd, unix.EPOLL_CTL_ADD, wakefd, &ev); err != nil {
		unix.Close(wakefd)
		unix.Close(epfd)
		return nil, fmt.Errorf("epoll ctl add eventfd: %w", err)
	}
	return &epollPoller{epfd: epfd, wakefd: wakefd}, nil
}

// NewDefaultPoller returns the platform poller.
func NewDefaultPoller() (Poller, error) { return NewEpollPoller() }

func epollEvents(interest Interest, mode PollMode) uint32 {
	var ev uint32
	if interest&Readable != 0 {
		ev |= unix.EPOLLIN | unix.EPOLLRDHUP
	}
	if interest&Writable != 0 {
		ev |= unix.EPOLLOUT
	}
	if mode == Edge {
		ev |= unix.EPOLLET
	}
	return ev
}

func (p *epollPoller) Add(fd int, interest Interest, mode PollMode) error {
	ev := unix.EpollEvent{Events: epollEvents(interest, mode), Fd: int32(fd)}
	if err := unix.EpollCtl(p.epfd, unix.EPOLL_CTL_ADD, fd, &ev); err != nil {
		return fmt.Errorf("epoll ctl add: %w", err)
	}
	return nil
}

func (p *epollPoller) Modify(fd int, interest Interest, mode PollMode) error {
	ev := unix.EpollEvent{Events: epollEvents(interest, mode), Fd: int32(fd)}
	if err := unix.EpollCtl(p.epfd, unix.EPOLL_CTL_MOD, fd, &ev); err != nil {
		return fmt.Errorf("epoll ctl mod: %w", err)
	}
	return nil
}

func (p *epollPoller) Delete(fd int) error {
	if err := unix.EpollCtl(p.epfd, unix.EPOLL_CTL_DEL, fd, nil); err != nil {
		return fmt.Errorf("epoll ctl del: %w", err)
	}
	return nil
}

func (p *epollPoller) Wait(events []Event, timeout time.Duration) (int, error) {
	if cap(p.raw) < len(events) {
		p.raw = make([]unix.EpollEvent, len(events))
	}
	raw := p.raw[:len(events)]
	ms := -1
	if timeout >= 0 {
		ms = int(timeout.Milliseconds())
		if ms == 0 && timeout > 0 {
			ms = 1
		}
	}
	n, err := unix.EpollWait(p.epfd, raw, ms)
	if err != nil {
		if err == unix.EINTR {
			return 0, nil
		}
		return 0, fmt.Errorf("epoll wait: %w", err)
	}
	out := 0
	for i := 0; i < n; i++ {
		ev := raw[i]
		if int(ev.Fd) == p.wakefd {
			p.drainWake()
			continue
		}
		var e Event
		e.Fd = int(ev.Fd)
		if ev.Events&unix.EPOLLIN != 0 {
			e.Ready |= Readable
			e.Hint |= HintData
		}
		if ev.Events&unix.EPOLLOUT != 0 {
			e.Ready |= Writable
		}
		if ev.Events&(unix.EPOLLHUP|unix.EPOLLRDHUP) != 0 {
			e.Ready |= Readable
			e.Hint |= HintHup
		}
		if ev.Events&unix.EPOLLERR != 0 {
			// both sides get a chance to observe the socket error
			e.Ready |= Readable | Writable
			e.Hint |= HintError
		}
		events[out] = e
		out++
	}
	return out, nil
}

func (p *epollPoller) drainWake() {
	var buf [8]byte
	for {
		if _, err := unix.Read(p.wakefd, buf[:]); err != nil {
			return
		}
	}
}

func (p *epollPoller) Wake() error {
	one := [8]byte{1}
	_, err := unix.Write(p.wakefd, one[:])
	if err == unix.EAGAIN {
		// counter saturated, a wakeup is already pending
		return nil
	}
	return err
}

func (p *epollPoller) Close() error {
	unix.Close(p.wakefd)
	return unix.Close(p.epfd)
}
