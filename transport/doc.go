// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package transport provides non-blocking OS resources for the reactor:
// anonymous pipes and TCP sockets. Every type implements api.Descriptor,
// so the reactor watches it through its poller, and api.RawReader or
// api.RawWriter, so it plugs into stream.Resource.
//
// Only Linux is supported; other platforms get constructors that fail with
// an api.KindIOUnavailable error.
package transport
