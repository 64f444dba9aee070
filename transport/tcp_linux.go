//go:build linux

// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

package transport

import (
	"fmt"
	"log/slog"
	"net"
	"net/netip"

	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-aio/api"
	"github.com/momentics/hioload-aio/future"
	"github.com/momentics/hioload-aio/reactor"
	"github.com/momentics/hioload-aio/stream"
)

// DefaultBacklog is the listen backlog used when none is given.
const DefaultBacklog = 128

// Conn is a non-blocking TCP connection.
type Conn struct {
	f *file
}

var (
	_ api.RawReader  = (*Conn)(nil)
	_ api.RawWriter  = (*Conn)(nil)
	_ api.Descriptor = (*Conn)(nil)
)

func (c *Conn) Fd() int                     { return c.f.Fd() }
func (c *Conn) Read(b []byte) (int, error)  { return c.f.read(b) }
func (c *Conn) Write(b []byte) (int, error) { return c.f.write(b) }
func (c *Conn) Close() error                { return c.f.close() }

// CloseWrite shuts down the sending side so the peer reads EOF.
func (c *Conn) CloseWrite() error {
	if err := unix.Shutdown(c.f.fd, unix.SHUT_WR); err != nil {
		return api.LatestSystemError(err)
	}
	return nil
}

// LocalAddr returns the bound address.
func (c *Conn) LocalAddr() net.Addr { return sockName(c.f.fd, unix.Getsockname) }

// RemoteAddr returns the peer address.
func (c *Conn) RemoteAddr() net.Addr { return sockName(c.f.fd, unix.Getpeername) }

// Stream wraps the connection for both stream roles. Read and write
// registrations of one connection must use the same mode.
func (c *Conn) Stream(mode reactor.PollMode, opts ...stream.Option) *stream.Resource {
	return stream.NewResource(c, mode, opts...)
}

// Listener is a non-blocking TCP listening socket.
type Listener struct {
	f      *file
	handle *reactor.Handle
}

// ListenTCP binds a listening socket to addr ("host:port"). backlog <= 0
// selects DefaultBacklog.
func ListenTCP(addr string, backlog int) (*Listener, error) {
	ap, err := resolve(addr)
	if err != nil {
		return nil, err
	}
	if backlog <= 0 {
		backlog = DefaultBacklog
	}
	fd, err := socket(ap)
	if err != nil {
		return nil, err
	}
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		unix.Close(fd)
		return nil, api.LatestSystemError(err)
	}
	if err := unix.Bind(fd, sockaddr(ap)); err != nil {
		unix.Close(fd)
		return nil, api.LatestSystemError(err)
	}
	if err := unix.Listen(fd, backlog); err != nil {
		unix.Close(fd)
		return nil, api.LatestSystemError(err)
	}
	return &Listener{f: &file{fd: fd}}, nil
}

// Fd implements api.Descriptor.
func (l *Listener) Fd() int { return l.f.Fd() }

// Addr returns the bound address, with the chosen port for ":0".
func (l *Listener) Addr() net.Addr { return sockName(l.f.fd, unix.Getsockname) }

// Accept registers the listener and emits every accepted connection on
// the returned stream. The stream closes when the listener is closed and
// fails on the first hard accept error.
func (l *Listener) Accept(r *reactor.Reactor) *future.Stream[*Conn] {
	sender, conns := future.NewStream[*Conn]()
	onReadable := func(reactor.ReadHint) reactor.Action {
		for {
			nfd, _, err := unix.Accept4(l.f.fd, unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC)
			switch err {
			case nil:
				setNoDelay(r.Logger(), nfd)
				sender.Send(&Conn{f: &file{fd: nfd}})
				continue
			case unix.EINTR, unix.ECONNABORTED:
				continue
			}
			e := api.LatestSystemError(err)
			if e.Kind == api.KindWouldBlock {
				return reactor.Continue()
			}
			return reactor.Fail(e)
		}
	}
	reg := reactor.NewRegistration(l, reactor.Readable, reactor.Edge, onReadable, nil).OnEnd(func(err *api.Error) {
		if err != nil {
			sender.Fail(err)
			return
		}
		sender.Close()
	})
	h, err := r.Register(reg)
	if err != nil {
		sender.Fail(err)
		return conns
	}
	l.handle = h
	return conns
}

// Close stops accepting and closes the socket. Call it on the loop
// goroutine when Accept was used.
func (l *Listener) Close() error {
	l.handle.Cancel()
	return l.f.close()
}

// DialTCP starts a non-blocking connect to addr. The future completes with
// the connection once the handshake finished.
func DialTCP(r *reactor.Reactor, addr string) *future.Future[*Conn] {
	ap, err := resolve(addr)
	if err != nil {
		return future.Failed[*Conn](err)
	}
	fd, err := socket(ap)
	if err != nil {
		return future.Failed[*Conn](err)
	}
	conn := &Conn{f: &file{fd: fd}}
	if err := unix.Connect(fd, sockaddr(ap)); err != nil && err != unix.EINPROGRESS {
		conn.Close()
		return future.Failed[*Conn](api.LatestSystemError(err))
	}
	setNoDelay(r.Logger(), fd)

	producer, fut := future.Pair[*Conn]()
	var connectErr *api.Error
	onWritable := func() reactor.Action {
		soerr, err := unix.GetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_ERROR)
		if err != nil {
			connectErr = api.LatestSystemError(err)
		} else if soerr != 0 {
			connectErr = api.FromErrno(unix.Errno(soerr))
		}
		return reactor.Done()
	}
	// The connection is handed out from the end hook so that the caller can
	// register the descriptor's write direction right away.
	reg := reactor.NewRegistration(conn, reactor.Writable, reactor.Level, nil, onWritable).OnEnd(func(err *api.Error) {
		if err == nil {
			err = connectErr
		}
		if err != nil {
			conn.Close()
			producer.Fail(err)
			return
		}
		producer.Complete(conn)
	})
	if _, err := r.Register(reg); err != nil {
		conn.Close()
		producer.Fail(err)
	}
	return fut
}

func resolve(addr string) (netip.AddrPort, error) {
	ta, err := net.ResolveTCPAddr("tcp", addr)
	if err != nil {
		return netip.AddrPort{}, fmt.Errorf("transport: resolve %q: %w", addr, api.NewError(api.KindInvalidInput, err.Error()))
	}
	ap := ta.AddrPort()
	if !ap.Addr().IsValid() {
		ap = netip.AddrPortFrom(netip.IPv6Unspecified(), ap.Port())
	}
	return netip.AddrPortFrom(ap.Addr().Unmap(), ap.Port()), nil
}

// setNoDelay disables Nagle on fd. Failure leaves the socket usable, so it
// is only logged.
func setNoDelay(logger *slog.Logger, fd int) {
	if err := unix.SetsockoptInt(fd, unix.IPPROTO_TCP, unix.TCP_NODELAY, 1); err != nil {
		logger.Debug("TCP_NODELAY not applied", slog.Int("fd", fd), slog.String("error", err.Error()))
	}
}

func socket(ap netip.AddrPort) (int, error) {
	family := unix.AF_INET6
	if ap.Addr().Is4() {
		family = unix.AF_INET
	}
	fd, err := unix.Socket(family, unix.SOCK_STREAM|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, unix.IPPROTO_TCP)
	if err != nil {
		return -1, api.LatestSystemError(err)
	}
	return fd, nil
}

func sockaddr(ap netip.AddrPort) unix.Sockaddr {
	if ap.Addr().Is4() {
		return &unix.SockaddrInet4{Port: int(ap.Port()), Addr: ap.Addr().As4()}
	}
	return &unix.SockaddrInet6{Port: int(ap.Port()), Addr: ap.Addr().As16()}
}

func sockName(fd int, get func(int) (unix.Sockaddr, error)) net.Addr {
	sa, err := get(fd)
	if err != nil {
		return nil
	}
	switch a := sa.(type) {
	case *unix.SockaddrInet4:
		return net.TCPAddrFromAddrPort(netip.AddrPortFrom(netip.AddrFrom4(a.Addr), uint16(a.Port)))
	case *unix.SockaddrInet6:
		return net.TCPAddrFromAddrPort(netip.AddrPortFrom(netip.AddrFrom16(a.Addr), uint16(a.Port)))
	}
	return nil
}
