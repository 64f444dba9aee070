// File: api/classify_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api_test

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net"
	"os"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-aio/api"
)

func TestClassifyGenericErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want api.Kind
	}{
		{"eof", io.EOF, api.KindEOF},
		{"wrapped eof", fmt.Errorf("read: %w", io.EOF), api.KindEOF},
		{"unexpected eof", io.ErrUnexpectedEOF, api.KindOther},
		{"short write", io.ErrShortWrite, api.KindOther},
		{"closed pipe", io.ErrClosedPipe, api.KindBrokenPipe},
		{"net closed", net.ErrClosed, api.KindConnectionClosed},
		{"not exist", fs.ErrNotExist, api.KindPathDoesntExist},
		{"exist", fs.ErrExist, api.KindPathAlreadyExists},
		{"permission", fs.ErrPermission, api.KindPermissionDenied},
		{"invalid", fs.ErrInvalid, api.KindInvalidInput},
		{"deadline", os.ErrDeadlineExceeded, api.KindOther},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := api.Classify(tc.err)
			require.NotNil(t, got)
			assert.Equal(t, tc.want, got.Kind)
			assert.ErrorIs(t, got, tc.err)
		})
	}
}

func TestClassifyErrno(t *testing.T) {
	cases := map[syscall.Errno]api.Kind{
		syscall.EAGAIN:       api.KindWouldBlock,
		syscall.EADDRINUSE:   api.KindAddressInUse,
		syscall.EACCES:       api.KindPermissionDenied,
		syscall.EPERM:        api.KindPermissionDenied,
		syscall.ECONNREFUSED: api.KindConnectionRefused,
		syscall.ECONNRESET:   api.KindConnectionReset,
		syscall.ECONNABORTED: api.KindConnectionAborted,
		syscall.ENOTCONN:     api.KindNotConnected,
		syscall.EPIPE:        api.KindBrokenPipe,
		syscall.EEXIST:       api.KindPathAlreadyExists,
		syscall.ENOENT:       api.KindPathDoesntExist,
		syscall.EINVAL:       api.KindInvalidInput,
	}
	for errno, want := range cases {
		assert.Equal(t, want, api.FromErrno(errno).Kind, errno.Error())

		// errnos wrapped the way os and net report them
		wrapped := &os.SyscallError{Syscall: "read", Err: errno}
		assert.Equal(t, want, api.Classify(wrapped).Kind, errno.Error())
		opErr := &net.OpError{Op: "write", Net: "tcp", Err: wrapped}
		assert.Equal(t, want, api.Classify(opErr).Kind, errno.Error())
	}
}

func TestClassifyUnknownIsOther(t *testing.T) {
	raw := errors.New("something odd")
	got := api.Classify(raw)
	require.NotNil(t, got)
	assert.Equal(t, api.KindOther, got.Kind)
	assert.Equal(t, "unknown I/O error", got.Desc)
	assert.Same(t, raw, errors.Unwrap(got))
}

func TestClassifyKeepsClassified(t *testing.T) {
	in := api.NewError(api.KindBrokenPipe, "sink went away")
	assert.Same(t, in, api.Classify(in))
	assert.Same(t, in, api.Classify(fmt.Errorf("pipe: %w", in)))
	assert.Nil(t, api.Classify(nil))
}

func TestOfKindDescriptions(t *testing.T) {
	for _, k := range api.Kinds() {
		e := api.OfKind(k)
		assert.Equal(t, k, e.Kind)
		assert.NotEmpty(t, e.Desc)
		assert.Equal(t, k.String()+": "+e.Desc, e.Error())
	}
	assert.Equal(t, "eof: end of file", api.ErrEOF.Error())
	assert.Equal(t, "would_block: operation would block", api.ErrWouldBlock.Error())
}

func TestErrorIsMatchesKind(t *testing.T) {
	err := fmt.Errorf("write: %w", api.NewError(api.KindWouldBlock, "socket full"))
	assert.ErrorIs(t, err, api.ErrWouldBlock)
	assert.NotErrorIs(t, err, api.ErrEOF)
	assert.True(t, api.IsWouldBlock(err))
	assert.True(t, api.IsSignal(err))
	assert.True(t, api.IsEOF(io.EOF))
	assert.False(t, api.IsSignal(api.ErrBrokenPipe))
	assert.False(t, api.IsSignal(nil))
}

func TestLatestSystemError(t *testing.T) {
	err := &os.PathError{Op: "open", Path: "/nope", Err: syscall.ENOENT}
	got := api.LatestSystemError(err)
	assert.Equal(t, api.KindPathDoesntExist, got.Kind)
	assert.Equal(t, api.KindOther, api.LatestSystemError(nil).Kind)
	assert.Equal(t, api.KindEOF, api.LatestSystemError(io.EOF).Kind)
}
