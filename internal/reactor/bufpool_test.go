package reactor

import "testing"

func TestBytePool_GetReturnsZeroLengthWithCapacity(t *testing.T) {
	p := newScratchPool()
	buf := p.Get(4096)
	if len(buf) != 0 {
		t.Fatalf("len = %d, want 0", len(buf))
	}
	if cap(buf) < 4096 {
		t.Fatalf("cap = %d, want >= 4096", cap(buf))
	}
}

func TestBytePool_PutGetRoundTrip(t *testing.T) {
	p := newScratchPool()
	buf := p.Get(4096)
	buf = buf[:4096]
	p.Put(buf)
	buf2 := p.Get(4096)
	if cap(buf2) != cap(buf) {
		t.Fatalf("expected round-tripped buffer to reuse the 4096 bucket")
	}
}

func TestBytePool_OversizeNotPooled(t *testing.T) {
	p := newScratchPool()
	buf := p.Get(1 << 20)
	if cap(buf) != 1<<20 {
		t.Fatalf("cap = %d, want exactly %d for an oversize request", cap(buf), 1<<20)
	}
	p.Put(buf) // must not panic even though it is not a known bucket size
}
