package cli

import (
	"github.com/spf13/cobra"

	"forex-rsi-alerts/internal/app"
)

var (
	checkPair       string
	checkTimeframe  string
	checkSkipNotify bool
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify market-data and notification connectivity",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := app.CheckOptions{
			Pair:       checkPair,
			Timeframe:  checkTimeframe,
			SkipNotify: checkSkipNotify,
		}
		return getApp().Check(cmd.Context(), opts)
	},
}

func init() {
	checkCmd.Flags().StringVar(&checkPair, "pair", "EUR/USD", "Pair to fetch for the test")
	checkCmd.Flags().StringVar(&checkTimeframe, "timeframe", "1h", "Timeframe to fetch for the test")
	checkCmd.Flags().BoolVar(&checkSkipNotify, "skip-notify", false, "Skip the Telegram test message")
}
