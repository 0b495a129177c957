package enginecore

// OrderPool is a fixed-capacity slab allocator for OrderRecord slots.
// Construction reserves the backing array exactly once; Acquire/Release
// never touch the heap afterward. The free list is a LIFO stack so the
// most recently released slot — the one most likely still warm in
// L1/L2 — is reused first.
//
// Grounded on domain/order.go's sync.Pool-recycled Order, generalized
// to a contiguous, index-addressable slab: sync.Pool entries are not
// stable or slot-addressable and may be reclaimed by the GC between
// Get/Put, which cannot support the intrusive index-pair linkage the
// price level queue requires.
type OrderPool struct {
	records []OrderRecord
	free    []uint32
}

// NewOrderPool reserves a backing array of capacity slots and seeds the
// free stack with every index, highest first so slot 0 is the first
// handed out (cosmetic — acquire order is otherwise unconstrained).
func NewOrderPool(capacity uint32) *OrderPool {
	p := &OrderPool{
		records: make([]OrderRecord, capacity),
		free:    make([]uint32, capacity),
	}
	for i := uint32(0); i < capacity; i++ {
		p.free[i] = capacity - 1 - i
	}
	return p
}

// Cap returns the pool's fixed capacity.
func (p *OrderPool) Cap() int { return len(p.records) }

// Len returns the number of slots currently in use.
func (p *OrderPool) Len() int { return len(p.records) - len(p.free) }

// Acquire pops a free slot, writes the record's fields in place, and
// returns the slot index. ok is false if the pool is exhausted.
func (p *OrderPool) Acquire(id, price, remaining uint64, side Side) (slot uint32, ok bool) {
	n := len(p.free)
	if n == 0 {
		return 0, false
	}
	slot = p.free[n-1]
	p.free = p.free[:n-1]

	rec := &p.records[slot]
	rec.ID = id
	rec.Price = price
	rec.Remaining = remaining
	rec.Side = side
	rec.prev = nullSlot
	rec.next = nullSlot
	return slot, true
}

// Release returns slot to the free stack. It is undefined behavior to
// release a slot not currently acquired, or to release the same slot
// twice — the engine guarantees neither happens.
func (p *OrderPool) Release(slot uint32) {
	p.free = append(p.free, slot)
}

// At resolves a slot index to its record. Valid only while the slot is
// acquired.
func (p *OrderPool) At(slot uint32) *OrderRecord {
	return &p.records[slot]
}
