package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile string
	env        string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tradewind",
	Short: "Tradewind - 종목별 퀀트+감성 트레이딩 시그널 시스템",
	Long: `Tradewind Unified CLI

Per-instrument trading signals: ensemble return models fused with
news sentiment, executed through a brokerage REST API.

Usage:
  go run ./cmd/tradewind [command]

Examples:
  go run ./cmd/tradewind scheduler start
  go run ./cmd/tradewind train
  go run ./cmd/tradewind sentiment
  go run ./cmd/tradewind trade
  go run ./cmd/tradewind api`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().StringVar(&env, "env", "development", "environment (development|staging|production)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
