// File: pool/bytepool.go
// Author: momentics <momentics@gmail.com>

package pool

import (
	"sync"
	"sync/atomic"
)

// BytePool recycles fixed-size byte slices used as ring storage.
// Safe for concurrent use.
type BytePool struct {
	size  int
	pool  sync.Pool
	inUse atomic.Int64
}

// NewBytePool returns a pool handing out slices of exactly size bytes.
func NewBytePool(size int) *BytePool {
	if size < 1 {
		panic("pool: buffer size must be at least 1")
	}
	b := &BytePool{size: size}
	b.pool.New = func() any {
		buf := make([]byte, size)
		return &buf
	}
	return b
}

// Size returns the slice length handed out by GetBuffer.
func (b *BytePool) Size() int { return b.size }

// InUse returns the number of buffers currently checked out.
func (b *BytePool) InUse() int64 { return b.inUse.Load() }

// GetBuffer returns a buffer from the pool.
func (b *BytePool) GetBuffer() []byte {
	b.inUse.Add(1)
	return *(b.pool.Get().(*[]byte))
}

// PutBuffer returns a buffer to the pool. Slices of the wrong size are
// left to the GC.
func (b *BytePool) PutBuffer(buf []byte) {
	b.inUse.Add(-1)
	if cap(buf) != b.size {
		return
	}
	buf = buf[:b.size]
	clear(buf)
	b.pool.Put(&buf)
}

// NewRing returns a ring backed by pooled storage. Release it with
// Ring.Release(b) once the transfer is over.
func (b *BytePool) NewRing() *Ring {
	return NewRingFrom(b.GetBuffer())
}
