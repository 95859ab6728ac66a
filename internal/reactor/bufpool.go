package reactor

import (
	"sort"
	"sync"
	"sync/atomic"
)

// bytePool provides reusable byte buffers using size-bucketed sync.Pool,
// adapted from the teacher's internal/runtime/asyncio.BytePool. Workers use
// it for the 4 KiB scratch buffer each read into, so a busy worker does not
// allocate a fresh slice on every socket read.
type bytePool struct {
	buckets []poolBucket
}

type poolBucket struct {
	size  int
	limit int64
	inuse int64
	pool  sync.Pool
}

// newScratchPool returns a bytePool sized for connection scratch reads:
// the spec's fixed 4 KiB read buffer, plus 16 KiB and 64 KiB buckets. The
// worker only draws 4 KiB read buffers from it; connection output buffers
// grow by plain append and are not pooled.
func newScratchPool() *bytePool {
	sizes := []int{4096, 16384, 65536}
	bs := append([]int(nil), sizes...)
	sort.Ints(bs)
	buckets := make([]poolBucket, len(bs))
	for i, sz := range bs {
		buckets[i] = poolBucket{
			size:  sz,
			limit: 1024,
			pool:  sync.Pool{New: func() any { return make([]byte, sz) }},
		}
	}
	return &bytePool{buckets: buckets}
}

// Get returns a buffer with capacity >= n and length 0. If n exceeds the
// largest bucket, a fresh buffer of exactly n is allocated and returned;
// such oversize buffers are not pooled on Put.
func (bp *bytePool) Get(n int) []byte {
	if n <= 0 {
		n = 1
	}
	idx := bp.findBucket(n)
	if idx < 0 {
		return make([]byte, 0, n)
	}
	b := &bp.buckets[idx]
	buf := b.pool.Get().([]byte)
	atomic.AddInt64(&b.inuse, 1)
	return buf[:0]
}

// Put returns a buffer to the pool if its capacity matches a known bucket
// and the per-bucket retention limit has not been exceeded.
func (bp *bytePool) Put(buf []byte) {
	capn := cap(buf)
	if capn == 0 {
		return
	}
	idx := bp.findBucket(capn)
	if idx < 0 || bp.buckets[idx].size != capn {
		return
	}
	b := &bp.buckets[idx]
	if cur := atomic.AddInt64(&b.inuse, -1); cur >= b.limit {
		return
	}
	b.pool.Put(buf[:capn])
}

func (bp *bytePool) findBucket(n int) int {
	i := sort.Search(len(bp.buckets), func(i int) bool { return bp.buckets[i].size >= n })
	if i >= len(bp.buckets) {
		return -1
	}
	return i
}
