package market

import (
	"time"

	"github.com/shopspring/decimal"
)

// Candle is one finalized aggregation period, reduced to the fields the engine uses.
type Candle struct {
	CloseTime time.Time
	Close     decimal.Decimal
}

// Key identifies one monitored (pair, timeframe) series.
type Key struct {
	Pair      Pair
	Timeframe Timeframe
}

func (k Key) String() string {
	return k.Pair.String() + " " + k.Timeframe.Interval()
}

// Closes extracts closing prices oldest to newest as float64 for indicator math.
func Closes(candles []Candle) []float64 {
	closes := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close.InexactFloat64()
	}
	return closes
}
