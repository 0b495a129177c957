package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	symbol  string
	poolCap uint32
)

var rootCmd = &cobra.Command{
	Use:   "exchange",
	Short: "Drive the single-symbol matching engine from the command line",
}

// Execute runs the root command, reporting any error to stderr and
// exiting non-zero.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal().Err(err).Msg("exchange: command failed")
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig, initLogger)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./exchange.yaml)")
	rootCmd.PersistentFlags().StringVar(&symbol, "symbol", "SYMBOL-A", "trading symbol routed to the engine")
	rootCmd.PersistentFlags().Uint32Var(&poolCap, "pool-capacity", 1<<20, "fixed order pool capacity")
	viper.BindPFlag("symbol", rootCmd.PersistentFlags().Lookup("symbol"))
	viper.BindPFlag("pool_capacity", rootCmd.PersistentFlags().Lookup("pool-capacity"))

	rootCmd.AddCommand(runCmd, benchCmd, profileCmd)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("exchange")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
	}

	viper.SetEnvPrefix("EXCHANGE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Warn().Err(err).Msg("exchange: config file present but unreadable, falling back to flags/env")
		}
	}

	symbol = viper.GetString("symbol")
	poolCap = viper.GetUint32("pool_capacity")
}

func initLogger() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
}
