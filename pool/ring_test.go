package pool_test

import (
	"bytes"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-aio/api"
	"github.com/momentics/hioload-aio/pool"
)

func TestRingInvariantUnderRandomAdvances(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for _, capacity := range []int{1, 2, 3, 7, 16, 100} {
		r := pool.NewRing(capacity)
		for i := 0; i < 2000; i++ {
			if rng.IntN(2) == 0 {
				v := r.WriterView()
				n := 0
				if len(v) > 0 {
					n = rng.IntN(len(v) + 1)
				}
				require.NoError(t, r.AdvanceWrite(n))
			} else {
				v := r.ReaderView()
				n := 0
				if len(v) > 0 {
					n = rng.IntN(len(v) + 1)
				}
				require.NoError(t, r.AdvanceRead(n))
			}
			require.Equal(t, capacity, r.Remaining()+r.Free(), "capacity %d step %d", capacity, i)
			require.GreaterOrEqual(t, r.Remaining(), 0)
			require.LessOrEqual(t, r.Remaining(), capacity)
		}
	}
}

func TestRingRejectsOvercommit(t *testing.T) {
	r := pool.NewRing(4)
	require.NoError(t, r.AdvanceWrite(3))

	err := r.AdvanceWrite(2)
	assert.ErrorIs(t, err, api.ErrInvalidInput)
	assert.Equal(t, 3, r.Remaining())

	err = r.AdvanceRead(4)
	assert.ErrorIs(t, err, pool.ErrOvercommit)
	assert.Equal(t, 3, r.Remaining())

	assert.Error(t, r.AdvanceRead(-1))
	assert.Error(t, r.AdvanceWrite(-1))
	assert.Equal(t, 1, r.Free())
}

func TestRingWrapSplitViews(t *testing.T) {
	r := pool.NewRing(4)
	copy(r.WriterView(), "abc")
	require.NoError(t, r.AdvanceWrite(3))
	require.NoError(t, r.AdvanceRead(2))

	// free region is [3:4] then [0:2]; only the first segment is exposed
	assert.Len(t, r.WriterView(), 1)
	copy(r.WriterView(), "d")
	require.NoError(t, r.AdvanceWrite(1))
	assert.Len(t, r.WriterView(), 2)
	copy(r.WriterView(), "ef")
	require.NoError(t, r.AdvanceWrite(2))
	assert.False(t, r.HasRemainingToWrite())
	assert.Nil(t, r.WriterView())

	assert.Equal(t, []byte("cd"), r.ReaderView())
	require.NoError(t, r.AdvanceRead(2))
	assert.Equal(t, []byte("ef"), r.ReaderView())
}

func TestRingFIFOAcrossWrap(t *testing.T) {
	r := pool.NewRing(5)
	src := []byte("the quick brown fox jumps over the lazy dog")
	var out bytes.Buffer
	in := src
	buf := make([]byte, 3)
	for len(in) > 0 || r.HasRemainingToRead() {
		n := r.Write(in)
		in = in[n:]
		m := r.Read(buf)
		out.Write(buf[:m])
	}
	assert.Equal(t, src, out.Bytes())
}

func TestRingCapacityOne(t *testing.T) {
	r := pool.NewRing(1)
	assert.True(t, r.HasRemainingToWrite())
	assert.False(t, r.HasRemainingToRead())
	assert.Equal(t, 1, r.Write([]byte("hi")))
	assert.Equal(t, []byte("h"), r.ReaderView())
	assert.Zero(t, r.Free())
	r.Reset()
	assert.Equal(t, 1, r.Free())
}

func TestRingPanicsOnZeroCapacity(t *testing.T) {
	assert.Panics(t, func() { pool.NewRing(0) })
	assert.Panics(t, func() { pool.NewRingFrom(nil) })
}
