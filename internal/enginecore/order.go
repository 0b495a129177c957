package enginecore

// OrderRecord is a single resting order. prev/next are slot indices into
// the owning pool's backing array — the index-pair substitute for
// pointers spec'd in the design notes for intrusive lists under a
// single-owner slab. Both are nullSlot while an acquired record is
// unlinked and after a record is detached; a slot that has never been
// acquired still holds zero values.
type OrderRecord struct {
	ID        uint64
	Price     uint64
	Remaining uint64
	Side      Side

	prev uint32
	next uint32
}
