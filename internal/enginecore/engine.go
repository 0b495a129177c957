package enginecore

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// EngineConfig parameterizes a single Engine instance.
type EngineConfig struct {
	// PoolCapacity bounds the number of orders the engine can hold
	// resting at once. A growable pool would reintroduce heap traffic
	// on the hot path, so capacity is fixed for the engine's lifetime.
	PoolCapacity uint32

	// Logger receives boundary diagnostics (pool exhaustion, duplicate
	// submits, fatal invariant violations). The hot path — Submit,
	// Cancel, and the cross loop — never logs on the success path. Nil
	// falls back to zerolog's package-level default logger.
	Logger *zerolog.Logger
}

// Engine owns the pool, both side books, and the identifier index. It
// is single-threaded: every method must be called from the one thread
// that owns the engine, per the concurrency model in which no locks
// protect book state because no other thread may touch it.
type Engine struct {
	pool  *OrderPool
	bids  *sideBook
	asks  *sideBook
	index map[uint64]uint32 // identifier -> pool slot
	log   zerolog.Logger
}

// NewEngine constructs an engine with the given pool capacity. The
// caller's goroutine becomes the engine's sole thread of control.
func NewEngine(cfg EngineConfig) *Engine {
	lg := log.Logger
	if cfg.Logger != nil {
		lg = *cfg.Logger
	}
	return &Engine{
		pool:  NewOrderPool(cfg.PoolCapacity),
		bids:  newSideBook(true),
		asks:  newSideBook(false),
		index: make(map[uint64]uint32, cfg.PoolCapacity),
		log:   lg,
	}
}

func (e *Engine) book(side Side) *sideBook {
	if side == Buy {
		return e.bids
	}
	return e.asks
}

// Submit applies a new limit order. It returns the trades produced by
// the subsequent cross loop, and an error only for pool exhaustion — a
// duplicate identifier is silently ignored (no mutation, no trade, no
// error) per the engine's idempotency guard.
func (e *Engine) Submit(id, price, quantity uint64, side Side) ([]Trade, error) {
	if quantity == 0 {
		return nil, nil
	}

	if _, exists := e.index[id]; exists {
		e.log.Debug().Uint64("id", id).Msg("duplicate submit ignored")
		return nil, nil
	}

	slot, ok := e.pool.Acquire(id, price, quantity, side)
	if !ok {
		e.log.Warn().Uint64("id", id).Msg("pool exhausted, submit rejected")
		return nil, ErrPoolExhausted
	}

	e.index[id] = slot
	lvl := e.book(side).levelFor(price)
	lvl.Append(e.pool, slot)

	return e.cross(side), nil
}

// Cancel removes a resting order from the book. It reports
// ErrUnknownIdentifier if id is not present; no state changes in that
// case.
func (e *Engine) Cancel(id uint64) error {
	slot, ok := e.index[id]
	if !ok {
		return ErrUnknownIdentifier
	}

	rec := e.pool.At(slot)
	sb := e.book(rec.Side)
	lvl, found := sb.levels.Get(rec.Price)
	if !found {
		e.fatal("cancel: indexed order has no owning level", id)
	}

	lvl.Remove(e.pool, slot)
	delete(e.index, id)
	e.pool.Release(slot)

	if lvl.IsEmpty() {
		sb.removeLevel(lvl)
	}
	return nil
}

// cross runs the matching loop until the spread no longer inverts,
// emitting one Trade per fill. Price priority picks the best level on
// each side; time priority walks each level's FIFO head first. aggressor
// names the side that just received the triggering Submit: every trade
// produced by this call is against that side, so its record is always
// the aggressive leg and the opposite side's head is always the passive
// leg, regardless of which side happens to be bid or ask. The execution
// price is always the passive leg's price — price improvement accrues
// to the aggressor, never the resting order.
func (e *Engine) cross(aggressor Side) []Trade {
	var trades []Trade

	for {
		bestBid := e.bids.Best()
		bestAsk := e.asks.Best()
		if bestBid == nil || bestAsk == nil || bestBid.Price < bestAsk.Price {
			break
		}

		bidSlot := bestBid.Head()
		askSlot := bestAsk.Head()
		bidRec := e.pool.At(bidSlot)
		askRec := e.pool.At(askSlot)

		fillQty := bidRec.Remaining
		if askRec.Remaining < fillQty {
			fillQty = askRec.Remaining
		}

		var trade Trade
		if aggressor == Buy {
			trade = Trade{AggressiveID: bidRec.ID, PassiveID: askRec.ID, Price: askRec.Price, Quantity: fillQty}
		} else {
			trade = Trade{AggressiveID: askRec.ID, PassiveID: bidRec.ID, Price: bidRec.Price, Quantity: fillQty}
		}
		trades = append(trades, trade)

		bidRec.Remaining -= fillQty
		askRec.Remaining -= fillQty
		bestBid.Volume -= fillQty
		bestAsk.Volume -= fillQty

		if bidRec.Remaining == 0 {
			e.releaseFilled(e.bids, bestBid, bidSlot, bidRec.ID)
		}
		if askRec.Remaining == 0 {
			e.releaseFilled(e.asks, bestAsk, askSlot, askRec.ID)
		}
	}

	return trades
}

func (e *Engine) releaseFilled(sb *sideBook, lvl *PriceLevel, slot uint32, id uint64) {
	lvl.Remove(e.pool, slot)
	delete(e.index, id)
	e.pool.Release(slot)
	if lvl.IsEmpty() {
		sb.removeLevel(lvl)
	}
}

func (e *Engine) fatal(msg string, id uint64) {
	e.log.Fatal().Uint64("id", id).Msg(msg)
	panic(msg)
}

// Snapshot returns every resting level as (side, price, volume) rows,
// descending price for bids and ascending for asks — the one read
// surface a dashboard or metrics caller uses.
func (e *Engine) Snapshot() []LevelInfo {
	out := e.bids.snapshot()
	out = append(out, e.asks.snapshot()...)
	return out
}

// PoolLen and PoolCap expose the pool conservation invariant
// (live + free == capacity) for callers and tests.
func (e *Engine) PoolLen() int { return e.pool.Len() }
func (e *Engine) PoolCap() int { return e.pool.Cap() }
