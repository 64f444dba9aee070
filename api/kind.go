// File: api/kind.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Closed set of error kinds recognized by the runtime.

package api

// Kind classifies every failure the runtime can observe.
type Kind uint8

const (
	KindOther Kind = iota
	KindEOF
	KindWouldBlock
	KindAddressInUse
	KindPermissionDenied
	KindConnectionFailed
	KindConnectionClosed
	KindConnectionRefused
	KindConnectionReset
	KindConnectionAborted
	KindNotConnected
	KindBrokenPipe
	KindPathAlreadyExists
	KindPathDoesntExist
	KindMismatchedResourceType
	KindTemporaryFailure
	KindIOUnavailable
	KindInvalidInput

	kindCount
)

var kindNames = [kindCount]string{
	KindOther:                  "other",
	KindEOF:                    "eof",
	KindWouldBlock:             "would_block",
	KindAddressInUse:           "address_in_use",
	KindPermissionDenied:       "permission_denied",
	KindConnectionFailed:       "connection_failed",
	KindConnectionClosed:       "connection_closed",
	KindConnectionRefused:      "connection_refused",
	KindConnectionReset:        "connection_reset",
	KindConnectionAborted:      "connection_aborted",
	KindNotConnected:           "not_connected",
	KindBrokenPipe:             "broken_pipe",
	KindPathAlreadyExists:      "path_already_exists",
	KindPathDoesntExist:        "path_doesnt_exist",
	KindMismatchedResourceType: "mismatched_resource_type",
	KindTemporaryFailure:       "temporary_failure",
	KindIOUnavailable:          "io_unavailable",
	KindInvalidInput:           "invalid_input",
}

var kindDescs = [kindCount]string{
	KindOther:                  "unknown I/O error",
	KindEOF:                    "end of file",
	KindWouldBlock:             "operation would block",
	KindAddressInUse:           "address in use",
	KindPermissionDenied:       "permission denied",
	KindConnectionFailed:       "connection failed",
	KindConnectionClosed:       "connection closed",
	KindConnectionRefused:      "connection refused",
	KindConnectionReset:        "connection reset",
	KindConnectionAborted:      "connection aborted",
	KindNotConnected:           "not connected",
	KindBrokenPipe:             "broken pipe",
	KindPathAlreadyExists:      "path already exists",
	KindPathDoesntExist:        "path doesn't exist",
	KindMismatchedResourceType: "mismatched resource type for operation",
	KindTemporaryFailure:       "temporary failure (resource unavailable)",
	KindIOUnavailable:          "io unavailable on this thread",
	KindInvalidInput:           "invalid input for this operation",
}

// String returns the stable snake_case name of the kind.
func (k Kind) String() string {
	if k >= kindCount {
		return kindNames[KindOther]
	}
	return kindNames[k]
}

// Description returns the canonical human readable description.
func (k Kind) Description() string {
	if k >= kindCount {
		return kindDescs[KindOther]
	}
	return kindDescs[k]
}

// Signal reports whether the kind is a protocol signal rather than a failure.
// Would-block suspends a pump side, EOF terminates it cleanly.
func (k Kind) Signal() bool {
	return k == KindWouldBlock || k == KindEOF
}

// Kinds returns every kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, 0, kindCount)
	for k := Kind(0); k < kindCount; k++ {
		out = append(out, k)
	}
	return out
}
