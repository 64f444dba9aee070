// File: reactor/types.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package reactor

import (
	"strings"

	"github.com/momentics/hioload-aio/api"
)

// Interest is the set of readiness directions a registration owns.
type Interest uint8

const (
	Readable Interest = 1 << iota
	Writable
)

func (i Interest) String() string {
	switch i {
	case 0:
		return "none"
	case Readable:
		return "readable"
	case Writable:
		return "writable"
	case Readable | Writable:
		return "readable|writable"
	}
	return "invalid"
}

// PollMode selects how the poller reports readiness.
type PollMode uint8

const (
	// Level reports a descriptor for as long as it stays ready.
	Level PollMode = iota
	// Edge reports a descriptor once per readiness transition.
	Edge
)

func (m PollMode) String() string {
	if m == Edge {
		return "edge"
	}
	return "level"
}

// ReadHint tells a read callback why it was woken.
type ReadHint uint8

const (
	HintData ReadHint = 1 << iota
	HintHup
	HintError
)

func (h ReadHint) String() string {
	var parts []string
	if h&HintData != 0 {
		parts = append(parts, "data")
	}
	if h&HintHup != 0 {
		parts = append(parts, "hup")
	}
	if h&HintError != 0 {
		parts = append(parts, "error")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// Status is the outcome of one callback invocation.
type Status uint8

const (
	// StatusContinue keeps the interest registered.
	StatusContinue Status = iota
	// StatusDone drops the interest, this side finished normally.
	StatusDone
	// StatusFailed drops the whole registration.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusContinue:
		return "continue"
	case StatusDone:
		return "done"
	}
	return "failed"
}

// Action is returned by every callback.
type Action struct {
	Status Status
	Err    *api.Error
}

// Continue keeps the interest registered.
func Continue() Action { return Action{Status: StatusContinue} }

// Done finishes this direction of the registration.
func Done() Action { return Action{Status: StatusDone} }

// Fail finishes the registration with err, classified if needed.
func Fail(err error) Action {
	e := api.Classify(err)
	if e == nil {
		e = api.OfKind(api.KindOther)
	}
	return Action{Status: StatusFailed, Err: e}
}

// Event is one readiness notification produced by a Poller.
type Event struct {
	Fd    int
	Ready Interest
	Hint  ReadHint
}
