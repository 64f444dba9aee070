// File: reactor/poller.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Platform-neutral readiness backend used by Reactor.

package reactor

import "time"

// Poller is the OS readiness mechanism behind a Reactor.
type Poller interface {
	// Add starts watching fd for interest.
	Add(fd int, interest Interest, mode PollMode) error
	// Modify replaces the watched interest of fd.
	Modify(fd int, interest Interest, mode PollMode) error
	// Delete stops watching fd.
	Delete(fd int) error
	// Wait blocks up to timeout (negative blocks indefinitely) and fills
	// events. An interrupted wait returns zero events and no error.
	Wait(events []Event, timeout time.Duration) (int, error)
	// Wake interrupts a blocked Wait. Safe from any goroutine.
	Wake() error
	// Close releases the backend.
	Close() error
}
