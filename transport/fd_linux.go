//go:build linux

// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

package transport

import (
	"io"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-aio/api"
	"github.com/momentics/hioload-aio/reactor"
	"github.com/momentics/hioload-aio/stream"
)

// file is a non-blocking descriptor.
type file struct {
	fd        int
	closeOnce sync.Once
	closeErr  error
}

func (f *file) Fd() int { return f.fd }

// read maps a zero-length read to io.EOF and errno values to api errors.
func (f *file) read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	for {
		n, err := unix.Read(f.fd, p)
		switch {
		case err == unix.EINTR:
			continue
		case err != nil:
			return 0, api.LatestSystemError(err)
		case n == 0:
			return 0, io.EOF
		}
		return n, nil
	}
}

func (f *file) write(p []byte) (int, error) {
	for {
		n, err := unix.Write(f.fd, p)
		switch {
		case err == unix.EINTR:
			continue
		case err != nil:
			return 0, api.LatestSystemError(err)
		}
		return n, nil
	}
}

func (f *file) close() error {
	f.closeOnce.Do(func() {
		if err := unix.Close(f.fd); err != nil {
			f.closeErr = api.LatestSystemError(err)
		}
	})
	return f.closeErr
}

// PipeReader is the read end of an OS pipe.
type PipeReader struct{ f *file }

// PipeWriter is the write end of an OS pipe.
type PipeWriter struct{ f *file }

var (
	_ api.RawReader  = (*PipeReader)(nil)
	_ api.Descriptor = (*PipeReader)(nil)
	_ api.RawWriter  = (*PipeWriter)(nil)
	_ api.Descriptor = (*PipeWriter)(nil)
)

// Pipe creates a non-blocking, close-on-exec pipe.
func Pipe() (*PipeReader, *PipeWriter, error) {
	var fds [2]int
	if err := unix.Pipe2(fds[:], unix.O_NONBLOCK|unix.O_CLOEXEC); err != nil {
		return nil, nil, api.LatestSystemError(err)
	}
	return &PipeReader{f: &file{fd: fds[0]}}, &PipeWriter{f: &file{fd: fds[1]}}, nil
}

func (p *PipeReader) Fd() int                    { return p.f.Fd() }
func (p *PipeReader) Read(b []byte) (int, error) { return p.f.read(b) }
func (p *PipeReader) Close() error               { return p.f.close() }

// Stream wraps the read end for piping.
func (p *PipeReader) Stream(mode reactor.PollMode, opts ...stream.Option) *stream.Resource {
	return stream.NewResource(p, mode, opts...)
}

func (p *PipeWriter) Fd() int                     { return p.f.Fd() }
func (p *PipeWriter) Write(b []byte) (int, error) { return p.f.write(b) }
func (p *PipeWriter) Close() error                { return p.f.close() }

// Stream wraps the write end as a sink.
func (p *PipeWriter) Stream(mode reactor.PollMode) *stream.Resource {
	return stream.NewResource(p, mode)
}
