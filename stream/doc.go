// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package stream provides the readable/writable stream roles and the pipe
// engine that moves bytes from a readable resource into a writable sink
// through a fixed-capacity ring, resolving a future once the transfer ends.
//
// In-memory endpoints skip the ring: a MemReader writes its bytes straight
// into the sink's writer, and a pipe into a MemSink reads straight into
// the sink's storage.
package stream
