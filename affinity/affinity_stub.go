//go:build !linux

// File: affinity/affinity_stub.go
// Author: momentics <momentics@gmail.com>
//
// Stub implementation for unsupported platforms.

package affinity

import "github.com/momentics/hioload-aio/api"

var errUnsupported = api.NewError(api.KindIOUnavailable, "affinity: not supported on this platform")

func setAffinityPlatform(int) (func(), error) { return nil, errUnsupported }

func currentCPUs() ([]int, error) { return nil, errUnsupported }
