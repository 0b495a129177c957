package matching

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nanobook/matching-engine/internal/enginecore"
)

// waitForCondition polls condition until it is true or timeout elapses.
// More reliable than a fixed sleep for a goroutine draining a ring
// buffer on its own schedule.
func waitForCondition(condition func() bool, timeout, checkInterval time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return true
		}
		time.Sleep(checkInterval)
	}
	return false
}

func newTestRunner(symbol string, poolCapacity uint32) *Runner {
	r := NewRunner(RunnerConfig{
		Symbol:       symbol,
		PoolCapacity: poolCapacity,
		RequestRing:  4096,
		TradeRing:    4096,
	})
	r.Start()
	return r
}

// TestOrderFinalStateConsistency submits an equal number of resting
// sells then crossing buys and checks every trade lands exactly once,
// referencing IDs that were actually submitted.
func TestOrderFinalStateConsistency(t *testing.T) {
	const numOrders = 5000
	const orderQty = 100
	const price = 50000

	r := newTestRunner("SYMBOL-A", 2*numOrders)
	defer r.Stop()

	ids := NewIDGenerator()
	sellIDs := make(map[uint64]bool, numOrders)
	buyIDs := make(map[uint64]bool, numOrders)

	var reports []TradeReport
	var reportMu sync.Mutex
	var reportCount atomic.Int64
	stopConsumer := make(chan struct{})
	var consumerWg sync.WaitGroup

	consumerWg.Add(1)
	go func() {
		defer consumerWg.Done()
		for {
			select {
			case <-stopConsumer:
				return
			default:
				tr, ok := r.PopTrade()
				if ok {
					reportMu.Lock()
					reports = append(reports, tr)
					reportMu.Unlock()
					reportCount.Add(1)
				}
			}
		}
	}()

	for i := 0; i < numOrders; i++ {
		id := ids.Next()
		sellIDs[id] = true
		r.SubmitRequest(id, price, orderQty, enginecore.Sell)
	}

	for i := 0; i < numOrders; i++ {
		id := ids.Next()
		buyIDs[id] = true
		r.SubmitRequest(id, price, orderQty, enginecore.Buy)
	}

	if !waitForCondition(func() bool { return reportCount.Load() >= numOrders }, 10*time.Second, 5*time.Millisecond) {
		t.Fatalf("timed out waiting for trades: got %d, want %d", reportCount.Load(), numOrders)
	}

	close(stopConsumer)
	consumerWg.Wait()

	if len(reports) != numOrders {
		t.Fatalf("expected %d trades, got %d", numOrders, len(reports))
	}

	seen := make(map[string]bool, len(reports))
	var totalQty uint64
	for _, rep := range reports {
		if seen[rep.ReportID] {
			t.Errorf("duplicate report ID %s", rep.ReportID)
		}
		seen[rep.ReportID] = true

		if !buyIDs[rep.Trade.AggressiveID] {
			t.Errorf("trade references unknown buy order %d", rep.Trade.AggressiveID)
		}
		if !sellIDs[rep.Trade.PassiveID] {
			t.Errorf("trade references unknown sell order %d", rep.Trade.PassiveID)
		}
		if rep.Trade.Price != price {
			t.Errorf("expected execution price %d, got %d", price, rep.Trade.Price)
		}
		totalQty += rep.Trade.Quantity
	}

	if want := uint64(numOrders) * orderQty; totalQty != want {
		t.Errorf("expected total traded quantity %d, got %d", want, totalQty)
	}

	if snap := r.Snapshot(); len(snap) != 0 {
		t.Errorf("expected empty book after full cross, got %+v", snap)
	}
}

// TestExactlyOnceUnderAlternatingSubmit interleaves buy/sell submits at
// the same price and verifies every order participates in exactly one
// trade leg — no duplicate fills, no dropped orders.
func TestExactlyOnceUnderAlternatingSubmit(t *testing.T) {
	const numOrders = 10000

	r := newTestRunner("SYMBOL-A", numOrders)
	defer r.Stop()

	ids := NewIDGenerator()
	sent := make(map[uint64]bool, numOrders)

	var refCounts sync.Map
	var tradeCount atomic.Int64
	stopConsumer := make(chan struct{})
	var consumerWg sync.WaitGroup

	consumerWg.Add(1)
	go func() {
		defer consumerWg.Done()
		for {
			select {
			case <-stopConsumer:
				return
			default:
				tr, ok := r.PopTrade()
				if ok {
					bump(&refCounts, tr.Trade.AggressiveID)
					bump(&refCounts, tr.Trade.PassiveID)
					tradeCount.Add(1)
				}
			}
		}
	}()

	for i := 0; i < numOrders; i++ {
		id := ids.Next()
		sent[id] = true
		side := enginecore.Sell
		if i%2 == 1 {
			side = enginecore.Buy
		}
		r.SubmitRequest(id, 50000, 100, side)
	}

	expected := int64(numOrders / 2)
	if !waitForCondition(func() bool { return tradeCount.Load() >= expected }, 10*time.Second, 5*time.Millisecond) {
		t.Fatalf("timed out: got %d trades, want %d", tradeCount.Load(), expected)
	}

	close(stopConsumer)
	consumerWg.Wait()

	for id := range sent {
		v, ok := refCounts.Load(id)
		if !ok {
			t.Errorf("order %d never appeared in a trade", id)
			continue
		}
		if v.(int) != 1 {
			t.Errorf("order %d appeared in %d trades, want exactly 1", id, v.(int))
		}
	}
}

func bump(m *sync.Map, key uint64) {
	for {
		v, loaded := m.LoadOrStore(key, 1)
		if !loaded {
			return
		}
		if m.CompareAndSwap(key, v, v.(int)+1) {
			return
		}
	}
}

// TestCancelThroughRunner queues a submit, a cancel of that order, and a
// second submit on the same ring; the engine applies them in the order
// the ring delivers them, leaving one resting level.
func TestCancelThroughRunner(t *testing.T) {
	r := newTestRunner("SYMBOL-A", 8)
	defer r.Stop()

	r.SubmitRequest(1, 100, 10, enginecore.Buy)
	r.CancelRequest(1)
	r.SubmitRequest(2, 100, 10, enginecore.Buy)

	if !waitForCondition(func() bool { return len(r.Snapshot()) == 1 }, 2*time.Second, time.Millisecond) {
		t.Fatalf("expected exactly order 2 resting, got %+v", r.Snapshot())
	}
}
