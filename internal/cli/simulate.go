package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"forex-rsi-alerts/internal/app"
)

var (
	simulatePair      string
	simulateTimeframe string
	simulateRSI       float64
	simulatePrice     float64
)

var simulateCmd = &cobra.Command{
	Use:   "simulate-alert",
	Short: "Run the alert decision and delivery path with a given RSI value",
	RunE: func(cmd *cobra.Command, args []string) error {
		if simulateRSI < 0 || simulateRSI > 100 {
			return errors.New("--rsi must lie within [0, 100]")
		}
		if simulatePrice <= 0 {
			return errors.New("--price must be greater than 0")
		}

		opts := app.SimulateOptions{
			Pair:      simulatePair,
			Timeframe: simulateTimeframe,
			RSI:       simulateRSI,
			Price:     simulatePrice,
		}
		return getApp().SimulateAlert(cmd.Context(), opts)
	},
}

func init() {
	simulateCmd.Flags().StringVar(&simulatePair, "pair", "EUR/USD", "Pair symbol")
	simulateCmd.Flags().StringVar(&simulateTimeframe, "timeframe", "1h", "Timeframe (1h or 4h)")
	simulateCmd.Flags().Float64Var(&simulateRSI, "rsi", 0, "RSI value to evaluate")
	simulateCmd.Flags().Float64Var(&simulatePrice, "price", 0, "Closing price to report")
	_ = simulateCmd.MarkFlagRequired("rsi")
	_ = simulateCmd.MarkFlagRequired("price")
}
