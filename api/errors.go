// File: api/errors.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Classified error value and canonical sentinels.

package api

import "errors"

// Error is the single error type carried through the runtime once a raw
// failure has been classified. Match on Kind, Desc is meant for logs.
type Error struct {
	Kind Kind
	Desc string
	// Err is the raw error the value was classified from, if any.
	Err error
}

// Error implements the error interface as "kind: desc".
func (e *Error) Error() string {
	return e.Kind.String() + ": " + e.Desc
}

// Unwrap exposes the raw error.
func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so errors.Is(err, ErrWouldBlock)
// works regardless of description.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// Signal reports whether the error is would-block or EOF.
func (e *Error) Signal() bool { return e != nil && e.Kind.Signal() }

// NewError builds an error with an explicit description.
func NewError(kind Kind, desc string) *Error {
	return &Error{Kind: kind, Desc: desc}
}

// OfKind builds an error carrying the canonical description of kind.
func OfKind(kind Kind) *Error {
	return &Error{Kind: kind, Desc: kind.Description()}
}

// Canonical sentinels, usable as errors.Is targets.
var (
	ErrEOF                    = OfKind(KindEOF)
	ErrWouldBlock             = OfKind(KindWouldBlock)
	ErrAddressInUse           = OfKind(KindAddressInUse)
	ErrPermissionDenied       = OfKind(KindPermissionDenied)
	ErrConnectionFailed       = OfKind(KindConnectionFailed)
	ErrConnectionClosed       = OfKind(KindConnectionClosed)
	ErrConnectionRefused      = OfKind(KindConnectionRefused)
	ErrConnectionReset        = OfKind(KindConnectionReset)
	ErrConnectionAborted      = OfKind(KindConnectionAborted)
	ErrNotConnected           = OfKind(KindNotConnected)
	ErrBrokenPipe             = OfKind(KindBrokenPipe)
	ErrPathAlreadyExists      = OfKind(KindPathAlreadyExists)
	ErrPathDoesntExist        = OfKind(KindPathDoesntExist)
	ErrMismatchedResourceType = OfKind(KindMismatchedResourceType)
	ErrTemporaryFailure       = OfKind(KindTemporaryFailure)
	ErrIOUnavailable          = OfKind(KindIOUnavailable)
	ErrInvalidInput           = OfKind(KindInvalidInput)
	ErrOther                  = OfKind(KindOther)
)

// KindOf classifies err and returns its kind. nil yields KindOther.
func KindOf(err error) Kind {
	if e := Classify(err); e != nil {
		return e.Kind
	}
	return KindOther
}

// IsWouldBlock reports whether err classifies as would-block.
func IsWouldBlock(err error) bool { return err != nil && KindOf(err) == KindWouldBlock }

// IsEOF reports whether err classifies as end of file.
func IsEOF(err error) bool { return err != nil && KindOf(err) == KindEOF }

// IsSignal reports whether err is one of the two protocol signals.
func IsSignal(err error) bool { return err != nil && KindOf(err).Signal() }
