// File: api/classify.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Total mapping from lower-level error domains into the Kind set.

package api

import (
	"errors"
	"io"
	"io/fs"
	"net"
	"os"
	"syscall"
)

// Classify maps err onto exactly one Kind. Already classified errors are
// returned as-is, syscall errnos go through FromErrno, generic io/os/net
// errors through a fixed table. Anything else is KindOther.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	var errno syscall.Errno
	if errors.As(err, &errno) {
		e := FromErrno(errno)
		e.Err = err
		return e
	}
	kind, ok := classifyGeneric(err)
	if !ok {
		return &Error{Kind: KindOther, Desc: KindOther.Description(), Err: err}
	}
	return &Error{Kind: kind, Desc: err.Error(), Err: err}
}

func classifyGeneric(err error) (Kind, bool) {
	switch {
	case errors.Is(err, io.EOF):
		return KindEOF, true
	case errors.Is(err, io.ErrUnexpectedEOF), errors.Is(err, io.ErrShortWrite), errors.Is(err, io.ErrNoProgress):
		return KindOther, true
	case errors.Is(err, io.ErrClosedPipe):
		return KindBrokenPipe, true
	case errors.Is(err, net.ErrClosed), errors.Is(err, os.ErrClosed):
		return KindConnectionClosed, true
	case errors.Is(err, fs.ErrNotExist):
		return KindPathDoesntExist, true
	case errors.Is(err, fs.ErrExist):
		return KindPathAlreadyExists, true
	case errors.Is(err, fs.ErrPermission):
		return KindPermissionDenied, true
	case errors.Is(err, fs.ErrInvalid):
		return KindInvalidInput, true
	case errors.Is(err, os.ErrDeadlineExceeded):
		return KindOther, true
	}
	return KindOther, false
}

// FromErrno classifies a single OS error number.
func FromErrno(errno syscall.Errno) *Error {
	kind := errnoKind(errno)
	if errno == 0 {
		return OfKind(KindOther)
	}
	return &Error{Kind: kind, Desc: errno.Error()}
}

// LatestSystemError classifies the errno reported by the syscall that
// produced err. Go surfaces errno through the returned error rather than
// process-global state, so callers pass the error of the failing call
// immediately. Errors without an errno fall back to Classify.
func LatestSystemError(err error) *Error {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		e := FromErrno(errno)
		e.Err = err
		return e
	}
	if err == nil {
		return OfKind(KindOther)
	}
	return Classify(err)
}
