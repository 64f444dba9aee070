// File: pool/ring.go
// Author: momentics <momentics@gmail.com>
//
// Fixed-capacity byte ring with monotonic cursors.
// Not safe for concurrent use: a ring belongs to one transfer and is only
// touched from reactor callbacks.

package pool

import (
	"github.com/momentics/hioload-aio/api"
)

// ErrOvercommit is returned when Advance* is asked to commit more bytes than
// the corresponding view exposed. The ring is left untouched.
var ErrOvercommit = api.NewError(api.KindInvalidInput, "ring advance exceeds exposed region")

// Ring is a circular byte buffer. Cursors only grow; the position of a
// cursor is its value modulo the capacity, so any capacity >= 1 works.
type Ring struct {
	buf  []byte
	head uint64 // read cursor
	tail uint64 // write cursor
}

// NewRing allocates a zeroed ring of the given capacity.
func NewRing(capacity int) *Ring {
	if capacity < 1 {
		panic("pool: ring capacity must be at least 1")
	}
	return &Ring{buf: make([]byte, capacity)}
}

// NewRingFrom adopts buf as ring storage.
func NewRingFrom(buf []byte) *Ring {
	if len(buf) == 0 {
		panic("pool: ring storage must not be empty")
	}
	return &Ring{buf: buf}
}

// Cap returns the fixed capacity.
func (r *Ring) Cap() int { return len(r.buf) }

// Remaining returns the number of bytes waiting to be read.
func (r *Ring) Remaining() int { return int(r.tail - r.head) }

// Free returns the number of bytes that can still be written.
func (r *Ring) Free() int { return len(r.buf) - r.Remaining() }

// HasRemainingToRead reports whether the reader view is non-empty.
func (r *Ring) HasRemainingToRead() bool { return r.tail != r.head }

// HasRemainingToWrite reports whether the writer view is non-empty.
func (r *Ring) HasRemainingToWrite() bool { return r.Remaining() < len(r.buf) }

// WriterView returns the contiguous free region starting at the write
// cursor. When the free region wraps, only the first segment is returned;
// the rest is exposed after AdvanceWrite moves the cursor past the end.
func (r *Ring) WriterView() []byte {
	free := r.Free()
	if free == 0 {
		return nil
	}
	pos := int(r.tail % uint64(len(r.buf)))
	end := min(pos+free, len(r.buf))
	return r.buf[pos:end:end]
}

// AdvanceWrite commits n bytes written into the last WriterView.
func (r *Ring) AdvanceWrite(n int) error {
	if n < 0 || n > len(r.WriterView()) {
		return ErrOvercommit
	}
	r.tail += uint64(n)
	return nil
}

// ReaderView returns the contiguous filled region starting at the read
// cursor, first segment only when it wraps.
func (r *Ring) ReaderView() []byte {
	rem := r.Remaining()
	if rem == 0 {
		return nil
	}
	pos := int(r.head % uint64(len(r.buf)))
	end := min(pos+rem, len(r.buf))
	return r.buf[pos:end:end]
}

// AdvanceRead commits n bytes consumed from the last ReaderView.
func (r *Ring) AdvanceRead(n int) error {
	if n < 0 || n > len(r.ReaderView()) {
		return ErrOvercommit
	}
	r.head += uint64(n)
	return nil
}

// Write copies as much of p as fits, across the wrap point.
func (r *Ring) Write(p []byte) int {
	total := 0
	for len(p) > 0 {
		v := r.WriterView()
		if len(v) == 0 {
			break
		}
		n := copy(v, p)
		r.tail += uint64(n)
		p = p[n:]
		total += n
	}
	return total
}

// Read drains up to len(p) bytes, across the wrap point.
func (r *Ring) Read(p []byte) int {
	total := 0
	for len(p) > 0 {
		v := r.ReaderView()
		if len(v) == 0 {
			break
		}
		n := copy(p, v)
		r.head += uint64(n)
		p = p[n:]
		total += n
	}
	return total
}

// Reset drops all buffered bytes.
func (r *Ring) Reset() {
	r.head, r.tail = 0, 0
}

// Release hands the storage back to p. The ring must not be used afterwards.
func (r *Ring) Release(p *BytePool) {
	if p != nil && r.buf != nil {
		p.PutBuffer(r.buf)
	}
	r.buf = nil
	r.head, r.tail = 0, 0
}
