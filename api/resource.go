// File: api/resource.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Raw non-blocking resource contracts consumed by the piping engine.

package api

// RawReader is a non-blocking byte source. Would-block and end of file are
// reported through the error taxonomy (ErrWouldBlock, ErrEOF or io.EOF),
// never out of band. A zero-length read with a nil error means the peer is
// not ready yet.
type RawReader interface {
	Read(p []byte) (int, error)
}

// RawWriter is a non-blocking byte sink with the same signalling rules.
type RawWriter interface {
	Write(p []byte) (int, error)
}

// Descriptor is implemented by resources backed by an OS readiness source.
type Descriptor interface {
	Fd() int
}

// Writer is the function handed to write listeners. It writes a prefix of
// p into the sink and reports how much was accepted.
type Writer func(p []byte) (int, error)
