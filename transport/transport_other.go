//go:build !linux

// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

package transport

import (
	"github.com/momentics/hioload-aio/api"
	"github.com/momentics/hioload-aio/future"
	"github.com/momentics/hioload-aio/reactor"
)

var errUnsupported = api.NewError(api.KindIOUnavailable, "transport: platform not supported")

// PipeReader is unavailable on this platform.
type PipeReader struct{}

// PipeWriter is unavailable on this platform.
type PipeWriter struct{}

// Conn is unavailable on this platform.
type Conn struct{}

// Listener is unavailable on this platform.
type Listener struct{}

// Pipe always fails on this platform.
func Pipe() (*PipeReader, *PipeWriter, error) { return nil, nil, errUnsupported }

// ListenTCP always fails on this platform.
func ListenTCP(string, int) (*Listener, error) { return nil, errUnsupported }

// DialTCP always fails on this platform.
func DialTCP(*reactor.Reactor, string) *future.Future[*Conn] {
	return future.Failed[*Conn](errUnsupported)
}
