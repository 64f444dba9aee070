//go:build !unix

// File: api/errno_other.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

import "syscall"

func errnoKind(errno syscall.Errno) Kind {
	switch errno {
	case syscall.EAGAIN:
		return KindWouldBlock
	case syscall.EADDRINUSE:
		return KindAddressInUse
	case syscall.EACCES, syscall.EPERM:
		return KindPermissionDenied
	case syscall.ECONNREFUSED:
		return KindConnectionRefused
	case syscall.ECONNRESET:
		return KindConnectionReset
	case syscall.ECONNABORTED:
		return KindConnectionAborted
	case syscall.ENOTCONN:
		return KindNotConnected
	case syscall.EPIPE:
		return KindBrokenPipe
	case syscall.EEXIST:
		return KindPathAlreadyExists
	case syscall.ENOENT:
		return KindPathDoesntExist
	case syscall.EINVAL:
		return KindInvalidInput
	}
	return KindOther
}
