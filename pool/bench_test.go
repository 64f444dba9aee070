package pool_test

import (
	"testing"

	"github.com/momentics/hioload-aio/pool"
)

// BenchmarkBytePoolRing measures borrowing and releasing pooled rings.
func BenchmarkBytePoolRing(b *testing.B) {
	bp := pool.NewBytePool(4096)
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			r := bp.NewRing()
			r.Release(bp)
		}
	})
}

// BenchmarkRingThroughput measures copying through a wrapped ring.
func BenchmarkRingThroughput(b *testing.B) {
	r := pool.NewRing(1024)
	in := make([]byte, 700)
	out := make([]byte, 700)
	b.SetBytes(int64(len(in)))
	for b.Loop() {
		r.Write(in)
		r.Read(out)
	}
}
