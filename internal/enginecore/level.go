package enginecore

// PriceLevel is an intrusive doubly-linked FIFO of the orders resting at
// one price. head is the earliest-arrived order (time priority); tail is
// the latest. Volume is a cached aggregate of the linked records'
// Remaining: Append adds, Remove subtracts, and the engine's cross loop
// subtracts each fill from both matched levels as it decrements the
// records' Remaining in place.
type PriceLevel struct {
	Price  uint64
	Volume uint64
	head   uint32
	tail   uint32
}

// newPriceLevel returns an empty level at price.
func newPriceLevel(price uint64) *PriceLevel {
	return &PriceLevel{Price: price, head: nullSlot, tail: nullSlot}
}

// IsEmpty reports whether the level currently holds no orders.
func (l *PriceLevel) IsEmpty() bool { return l.head == nullSlot }

// Append links the record at slot onto the tail of the level.
func (l *PriceLevel) Append(pool *OrderPool, slot uint32) {
	rec := pool.At(slot)
	rec.prev = l.tail
	rec.next = nullSlot

	if l.tail == nullSlot {
		l.head = slot
	} else {
		pool.At(l.tail).next = slot
	}
	l.tail = slot
	l.Volume += rec.Remaining
}

// Remove unlinks the record at slot from the level. The caller must
// ensure the record is currently linked in this level. Volume is
// decremented by the record's *current* remaining quantity (zero for a
// record the cross loop has fully filled).
func (l *PriceLevel) Remove(pool *OrderPool, slot uint32) {
	rec := pool.At(slot)

	if rec.prev != nullSlot {
		pool.At(rec.prev).next = rec.next
	} else {
		l.head = rec.next
	}
	if rec.next != nullSlot {
		pool.At(rec.next).prev = rec.prev
	} else {
		l.tail = rec.prev
	}

	l.Volume -= rec.Remaining
	rec.prev = nullSlot
	rec.next = nullSlot
}

// Head returns the slot of the earliest unfilled order. Undefined on an
// empty level — callers only invoke this when IsEmpty is false.
func (l *PriceLevel) Head() uint32 { return l.head }
