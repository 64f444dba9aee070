//go:build unix

// File: api/errno_unix.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

import (
	"syscall"

	"golang.org/x/sys/unix"
)

var errnoKinds = map[syscall.Errno]Kind{
	unix.EAGAIN:       KindWouldBlock,
	unix.EINPROGRESS:  KindWouldBlock,
	unix.EALREADY:     KindWouldBlock,
	unix.EADDRINUSE:   KindAddressInUse,
	unix.EACCES:       KindPermissionDenied,
	unix.EPERM:        KindPermissionDenied,
	unix.ENETUNREACH:  KindConnectionFailed,
	unix.EHOSTUNREACH: KindConnectionFailed,
	unix.ETIMEDOUT:    KindConnectionFailed,
	unix.ENETDOWN:     KindConnectionFailed,
	unix.ESHUTDOWN:    KindConnectionClosed,
	unix.ECONNREFUSED: KindConnectionRefused,
	unix.ECONNRESET:   KindConnectionReset,
	unix.ECONNABORTED: KindConnectionAborted,
	unix.ENOTCONN:     KindNotConnected,
	unix.EPIPE:        KindBrokenPipe,
	unix.EEXIST:       KindPathAlreadyExists,
	unix.ENOENT:       KindPathDoesntExist,
	unix.ENOTDIR:      KindMismatchedResourceType,
	unix.EISDIR:       KindMismatchedResourceType,
	unix.ENOTSOCK:     KindMismatchedResourceType,
	unix.ESPIPE:       KindMismatchedResourceType,
	unix.EINTR:        KindTemporaryFailure,
	unix.EBUSY:        KindTemporaryFailure,
	unix.ENOBUFS:      KindTemporaryFailure,
	unix.ENOMEM:       KindTemporaryFailure,
	unix.EMFILE:       KindTemporaryFailure,
	unix.ENFILE:       KindTemporaryFailure,
	unix.EINVAL:       KindInvalidInput,
	unix.EBADF:        KindInvalidInput,
	unix.EFAULT:       KindInvalidInput,
	unix.ENOSYS:       KindIOUnavailable,
	unix.EOPNOTSUPP:   KindIOUnavailable,
}

// EWOULDBLOCK aliases EAGAIN on Linux but not on every unix.
func init() {
	errnoKinds[unix.EWOULDBLOCK] = KindWouldBlock
}

func errnoKind(errno syscall.Errno) Kind {
	if k, ok := errnoKinds[errno]; ok {
		return k
	}
	return KindOther
}
