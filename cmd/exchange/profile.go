package main

import (
	"os"
	"runtime"
	"runtime/pprof"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/nanobook/matching-engine/internal/enginecore"
	"github.com/nanobook/matching-engine/matching"
)

var (
	profileDuration time.Duration
	profileOut      string
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Capture a CPU profile while driving the engine at load",
	Run:   runProfile,
}

func init() {
	profileCmd.Flags().DurationVar(&profileDuration, "duration", 10*time.Second, "profiling duration")
	profileCmd.Flags().StringVar(&profileOut, "out", "cpu.prof", "CPU profile output path")
}

func runProfile(cmd *cobra.Command, args []string) {
	f, err := os.Create(profileOut)
	if err != nil {
		log.Fatal().Err(err).Msg("exchange: cannot create profile output")
	}
	defer f.Close()

	if err := pprof.StartCPUProfile(f); err != nil {
		log.Fatal().Err(err).Msg("exchange: cannot start CPU profile")
	}
	defer pprof.StopCPUProfile()

	log.Info().Str("out", profileOut).Dur("duration", profileDuration).Msg("profiling")

	r := matching.NewRunner(matching.RunnerConfig{
		Symbol:       symbol,
		PoolCapacity: poolCap,
		RequestRing:  1 << 16,
		TradeRing:    1 << 16,
	})
	r.Start()
	defer r.Stop()

	var tradeCount atomic.Int64
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

	ids := matching.NewIDGenerator()
	producerDone := make(chan struct{})
	go func() {
		defer close(producerDone)
		for {
			select {
			case <-stop:
				return
			default:
			}
			id := ids.Next()
			side := enginecore.Buy
			if id%2 == 0 {
				side = enginecore.Sell
			}
			r.SubmitRequest(id, 50000+id%200, 1, side)
		}
	}()

	time.Sleep(profileDuration)
	close(stop)
	<-producerDone

	log.Info().Int64("trades", tradeCount.Load()).Msg("profile run complete")
}
