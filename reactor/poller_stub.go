//go:build !linux

// File: reactor/poller_stub.go
// Author: momentics <momentics@gmail.com>
//
// Stub for platforms without a native backend. WithPoller still works.

package reactor

import "github.com/momentics/hioload-aio/api"

var errUnsupported = api.NewError(api.KindIOUnavailable, "reactor: this platform is not supported")

// NewDefaultPoller returns an error on unsupported platforms.
func NewDefaultPoller() (Poller, error) {
	return nil, errUnsupported
}
