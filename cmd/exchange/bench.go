package main

import (
	"fmt"
	"math/rand"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/nanobook/matching-engine/internal/enginecore"
	"github.com/nanobook/matching-engine/matching"
)

var benchDuration time.Duration

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Measure submit and trade throughput against a single Runner",
	Run:   runBench,
}

func init() {
	benchCmd.Flags().DurationVar(&benchDuration, "duration", 5*time.Second, "benchmark duration")
}

// runBench adapts the teacher's cmd/benchmark throughput loop: a
// single producer hammering the engine (the SPSC ring buffer permits
// only one, unlike the teacher's channel-backed queue which tolerated
// several) and a consumer goroutine draining trades, reporting QPS/TPS
// once the run completes.
func runBench(cmd *cobra.Command, args []string) {
	r := matching.NewRunner(matching.RunnerConfig{
		Symbol:       symbol,
		PoolCapacity: poolCap,
		RequestRing:  1 << 16,
		TradeRing:    1 << 16,
	})
	r.Start()
	defer r.Stop()

	var orderCount, tradeCount atomic.Int64
	stop := make(chan struct{})

	go func() {
		for {
			select {
			case <-stop:
				return
			default:
			}
			if _, ok := r.PopTrade(); ok {
				tradeCount.Add(1)
			} else {
				runtime.Gosched()
			}
		}
	}()

	log.Info().Int("cpus", runtime.NumCPU()).Dur("duration", benchDuration).Msg("starting benchmark")

	start := time.Now()
	producerDone := make(chan struct{})
	go func() {
		defer close(producerDone)
		ids := matching.NewIDGenerator()
		for {
			select {
			case <-stop:
				return
			default:
			}
			id := ids.Next()
			price := uint64(50000 + rand.Intn(200))
			side := enginecore.Buy
			if id%2 == 0 {
				side = enginecore.Sell
			}
			r.SubmitRequest(id, price, 1, side)
			orderCount.Add(1)
		}
	}()

	time.Sleep(benchDuration)
	close(stop)
	<-producerDone
	time.Sleep(100 * time.Millisecond)

	elapsed := time.Since(start)
	orders := orderCount.Load()
	trades := tradeCount.Load()

	fmt.Printf("duration:        %v\n", elapsed)
	fmt.Printf("orders:          %d (%.0f/s)\n", orders, float64(orders)/elapsed.Seconds())
	fmt.Printf("trades:          %d (%.0f/s)\n", trades, float64(trades)/elapsed.Seconds())
	fmt.Printf("match rate:      %.2f%%\n", float64(trades)/float64(orders)*100)

	snap := r.Snapshot()
	fmt.Printf("resting levels:  %d\n", len(snap))
}
