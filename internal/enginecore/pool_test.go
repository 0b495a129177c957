package enginecore

import "testing"

func TestPoolAcquireReleaseConservation(t *testing.T) {
	p := NewOrderPool(4)
	if p.Len() != 0 || p.Cap() != 4 {
		t.Fatalf("expected empty pool of capacity 4, got len=%d cap=%d", p.Len(), p.Cap())
	}

	var slots []uint32
	for i := 0; i < 4; i++ {
		slot, ok := p.Acquire(uint64(i), 100, 1, Buy)
		if !ok {
			t.Fatalf("acquire %d: unexpected exhaustion", i)
		}
		slots = append(slots, slot)
	}

	if _, ok := p.Acquire(99, 100, 1, Buy); ok {
		t.Fatal("expected pool exhaustion at capacity")
	}
	if p.Len() != p.Cap() {
		t.Fatalf("live count %d != capacity %d", p.Len(), p.Cap())
	}

	p.Release(slots[0])
	if p.Len() != 3 {
		t.Fatalf("expected len 3 after release, got %d", p.Len())
	}

	// LIFO reuse: the slot just released is the next one acquired.
	next, ok := p.Acquire(100, 1, 1, Sell)
	if !ok || next != slots[0] {
		t.Fatalf("expected LIFO reuse of slot %d, got %d (ok=%v)", slots[0], next, ok)
	}
}

func TestPoolAcquireInitializesRecord(t *testing.T) {
	p := NewOrderPool(1)
	slot, ok := p.Acquire(7, 1500, 30, Sell)
	if !ok {
		t.Fatal("acquire failed on empty pool")
	}
	rec := p.At(slot)
	if rec.ID != 7 || rec.Price != 1500 || rec.Remaining != 30 || rec.Side != Sell {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if rec.prev != nullSlot || rec.next != nullSlot {
		t.Fatalf("freshly acquired record must be unlinked, got prev=%d next=%d", rec.prev, rec.next)
	}
}
