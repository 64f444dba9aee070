package pool_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/momentics/hioload-aio/pool"
)

func TestBytePoolRing(t *testing.T) {
	bp := pool.NewBytePool(64)
	r := bp.NewRing()
	assert.Equal(t, 64, r.Cap())
	assert.EqualValues(t, 1, bp.InUse())

	r.Write([]byte("payload"))
	r.Release(bp)
	assert.EqualValues(t, 0, bp.InUse())

	// recycled storage comes back zeroed
	buf := bp.GetBuffer()
	assert.Len(t, buf, 64)
	assert.Equal(t, make([]byte, 64), buf)
	bp.PutBuffer(buf)
}

func TestBytePoolDropsForeignSizes(t *testing.T) {
	bp := pool.NewBytePool(8)
	bp.GetBuffer()
	bp.PutBuffer(make([]byte, 3))
	assert.Len(t, bp.GetBuffer(), 8)
}
