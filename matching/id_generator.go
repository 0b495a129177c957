package matching

import "sync/atomic"

// IDGenerator hands out unique, monotonically increasing order
// identifiers for an ingress simulator. Order identifiers in the
// matching core are unsigned 64-bit integers, not strings, so — unlike
// the teacher's string-building trade ID generator — this is just an
// atomic counter.
type IDGenerator struct {
	counter uint64
}

// NewIDGenerator creates a new order ID generator.
func NewIDGenerator() *IDGenerator {
	return &IDGenerator{}
}

// Next returns the next unique ID, starting from 1.
func (g *IDGenerator) Next() uint64 {
	return atomic.AddUint64(&g.counter, 1)
}
