package main

import (
	"math/rand"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/nanobook/matching-engine/internal/enginecore"
	"github.com/nanobook/matching-engine/matching"
)

var runDuration time.Duration

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Feed randomized orders into the engine and print trades as they happen",
	Run:   runRun,
}

func init() {
	runCmd.Flags().DurationVar(&runDuration, "duration", 10*time.Second, "how long to generate orders")
}

const (
	simMaxPrice = 60000
	simMinPrice = 40000
)

// generateRandomOrder mints a uniformly random limit order around a
// central price, so submits cross the spread often enough to produce a
// steady trade stream. Grounded on lightsgoout-go-quantcup's
// GenerateRandomOrder: a single rand.Intn call per field, no
// distribution modeling.
func generateRandomOrder(ids *matching.IDGenerator) (id, price, qty uint64, side enginecore.Side) {
	id = ids.Next()
	price = uint64(simMinPrice + rand.Intn(simMaxPrice-simMinPrice))
	qty = uint64(1 + rand.Intn(1000))
	if rand.Intn(2) == 0 {
		side = enginecore.Buy
	} else {
		side = enginecore.Sell
	}
	return id, price, qty, side
}

func runRun(cmd *cobra.Command, args []string) {
	r := matching.NewRunner(matching.RunnerConfig{
		Symbol:       symbol,
		PoolCapacity: poolCap,
		RequestRing:  1 << 16,
		TradeRing:    1 << 16,
	})
	r.Start()
	defer r.Stop()

	ids := matching.NewIDGenerator()
	stop := time.After(runDuration)

	go func() {
		for {
			id, price, qty, side := generateRandomOrder(ids)
			r.SubmitRequest(id, price, qty, side)
			select {
			case <-stop:
				return
			default:
			}
		}
	}()

	for {
		select {
		case <-stop:
			return
		default:
		}
		tr, ok := r.PopTrade()
		if !ok {
			continue
		}
		log.Info().
			Str("report_id", tr.ReportID).
			Str("symbol", tr.Symbol).
			Uint64("aggressive_id", tr.Trade.AggressiveID).
			Uint64("passive_id", tr.Trade.PassiveID).
			Uint64("price", tr.Trade.Price).
			Uint64("quantity", tr.Trade.Quantity).
			Msg("trade")
	}
}
