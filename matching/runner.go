// Package matching wires the single-threaded enginecore.Engine to its
// concurrency boundary: a dedicated goroutine pinned to an OS thread
// consumes requests off an SPSC ring buffer and publishes resulting
// trades to an outgoing one, mirroring the teacher's MatchingEngine /
// ExchangeEngine split between a per-symbol matching loop and a
// copy-on-write symbol router.
package matching

import (
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/google/uuid"

	"github.com/nanobook/matching-engine/internal/enginecore"
	"github.com/nanobook/matching-engine/internal/ring"
)

// TradeReport pairs a core trade with the identifiers an external
// consumer needs but the hot path never computes: a report ID and the
// symbol it occurred on.
type TradeReport struct {
	ReportID string
	Symbol   string
	Trade    enginecore.Trade
}

// RunnerConfig parameterizes a single Runner.
type RunnerConfig struct {
	Symbol        string
	PoolCapacity  uint32
	RequestRing   uint64 // capacity of the inbound request ring
	TradeRing     uint64 // capacity of the outbound trade ring
	Logger        *zerolog.Logger
}

// Runner owns one symbol's Engine and the two ring buffers bridging it
// to the outside world. Exactly one goroutine — spawned by Start —
// calls into the engine; SubmitRequest/CancelRequest from other
// goroutines only ever push onto the inbound ring.
//
// Grounded on the teacher's MatchingEngine.Start(), which locks its
// matching goroutine to an OS thread via runtime.LockOSThread() and
// drains a producer queue in a tight loop; the teacher's queue blocks
// on an OS semaphore when empty; this Runner's inbound ring buffer
// instead spins, so the matching goroutine never suspends while work
// might be pending.
type Runner struct {
	symbol string
	engine *enginecore.Engine

	requests *ring.Ring
	trades   *ring.Generic[TradeReport]

	stop chan struct{}
	done chan struct{}

	log zerolog.Logger
}

// NewRunner constructs a Runner for one symbol. Start must be called to
// begin draining requests.
func NewRunner(cfg RunnerConfig) *Runner {
	lg := log.Logger
	if cfg.Logger != nil {
		lg = *cfg.Logger
	}
	return &Runner{
		symbol: cfg.Symbol,
		engine: enginecore.NewEngine(enginecore.EngineConfig{PoolCapacity: cfg.PoolCapacity, Logger: &lg}),
		requests: ring.New(cfg.RequestRing),
		trades:   ring.NewGeneric[TradeReport](cfg.TradeRing),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
		log:      lg.With().Str("symbol", cfg.Symbol).Logger(),
	}
}

// Start launches the matching goroutine. It locks itself to an OS
// thread for the lifetime of the runner, per the teacher's rationale:
// fewer context switches, better cache locality for the engine's hot
// path.
func (r *Runner) Start() {
	go func() {
		defer close(r.done)
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()

		for {
			select {
			case <-r.stop:
				return
			default:
			}

			req, ok := r.requests.Pop()
			if !ok {
				continue
			}

			if req.IsCancel {
				if err := r.engine.Cancel(req.ID); err != nil {
					r.log.Debug().Uint64("id", req.ID).Err(err).Msg("cancel rejected")
				}
				continue
			}

			trades, err := r.engine.Submit(req.ID, req.Price, req.Quantity, enginecore.Side(req.Side))
			if err != nil {
				r.log.Warn().Uint64("id", req.ID).Err(err).Msg("submit rejected")
				continue
			}
			for _, tr := range trades {
				report := TradeReport{ReportID: uuid.NewString(), Symbol: r.symbol, Trade: tr}
				for !r.trades.Push(report) {
					// outbound ring full: spin until the reporter catches up.
				}
			}
		}
	}()
}

// Stop signals the matching goroutine to exit and blocks until it has.
func (r *Runner) Stop() {
	close(r.stop)
	<-r.done
}

// SubmitRequest enqueues a submit for the matching goroutine. It spins
// until the ring accepts it; callers that cannot afford to spin should
// size RequestRing generously instead.
func (r *Runner) SubmitRequest(id, price, quantity uint64, side enginecore.Side) {
	req := ring.Request{ID: id, Price: price, Quantity: quantity, Side: uint8(side)}
	for !r.requests.Push(req) {
	}
}

// CancelRequest enqueues a cancel for the matching goroutine.
func (r *Runner) CancelRequest(id uint64) {
	req := ring.Request{ID: id, IsCancel: true}
	for !r.requests.Push(req) {
	}
}

// PopTrade drains one trade report, if any are available yet.
func (r *Runner) PopTrade() (TradeReport, bool) {
	return r.trades.Pop()
}

// Snapshot reads the resting book. The engine is only safe to read from
// its own goroutine, so callers needing a consistent snapshot from
// outside should prefer enginecore.LockedEngine instead of Runner.
func (r *Runner) Snapshot() []enginecore.LevelInfo {
	return r.engine.Snapshot()
}

// Exchange routes submit/cancel traffic across many symbols, one Runner
// per symbol, created lazily on first use. Grounded on the teacher's
// ExchangeEngine: an atomic.Value holding an immutable map gives a
// lock-free read path for the overwhelmingly common case (the symbol's
// Runner already exists), falling back to a mutex-guarded copy-on-write
// insert only the first time a symbol is seen.
type Exchange struct {
	runners atomic.Value // map[string]*Runner
	mu      sync.Mutex
	cfg     func(symbol string) RunnerConfig
}

// NewExchange constructs an Exchange. cfg derives a RunnerConfig (pool
// capacity, ring sizes, logger) for a symbol the first time it's seen.
func NewExchange(cfg func(symbol string) RunnerConfig) *Exchange {
	e := &Exchange{cfg: cfg}
	e.runners.Store(make(map[string]*Runner))
	return e
}

// Runner returns the Runner for symbol, starting it the first time the
// symbol is requested.
func (e *Exchange) Runner(symbol string) *Runner {
	runners := e.runners.Load().(map[string]*Runner)
	if r, ok := runners[symbol]; ok {
		return r
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	runners = e.runners.Load().(map[string]*Runner)
	if r, ok := runners[symbol]; ok {
		return r
	}

	r := NewRunner(e.cfg(symbol))
	r.Start()

	next := make(map[string]*Runner, len(runners)+1)
	for k, v := range runners {
		next[k] = v
	}
	next[symbol] = r
	e.runners.Store(next)

	return r
}

// StopAll stops every Runner the Exchange has created.
func (e *Exchange) StopAll() {
	for _, r := range e.runners.Load().(map[string]*Runner) {
		r.Stop()
	}
}
