// File: reactor/errors.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package reactor

import "github.com/momentics/hioload-aio/api"

var (
	// ErrStopped is reported once the reactor has been closed.
	ErrStopped = api.NewError(api.KindOther, "event loop terminated")
	// ErrDuplicate is returned when a direction of a descriptor is already owned.
	ErrDuplicate = api.NewError(api.KindInvalidInput, "descriptor direction already registered")
	// ErrInvalidRegistration is returned for registrations without interest
	// or without a callback for one of their directions.
	ErrInvalidRegistration = api.NewError(api.KindInvalidInput, "registration has no callback for its interest")
	// ErrModeMismatch is returned when two registrations on one descriptor
	// ask for different poll modes.
	ErrModeMismatch = api.NewError(api.KindInvalidInput, "poll mode differs from existing registration")

	errWrongReadable = api.NewError(api.KindOther, "received readable on a writable registration")
	errWrongWritable = api.NewError(api.KindOther, "received writable on a readable registration")
)

// IsDefect reports whether err marks broken interest bookkeeping.
func IsDefect(err error) bool {
	e := api.Classify(err)
	return e == errWrongReadable || e == errWrongWritable
}
