package market

import (
	"fmt"
	"time"
)

// Timeframe enumerates the supported candle aggregation periods.
type Timeframe int

const (
	// OneHour candles close at minute 0 of every hour (UTC).
	OneHour Timeframe = iota
	// FourHour candles close at UTC hours 0, 4, 8, 12, 16, and 20.
	FourHour
)

// Timeframes lists every monitored timeframe in evaluation order.
var Timeframes = []Timeframe{OneHour, FourHour}

// Duration returns the candle span.
func (t Timeframe) Duration() time.Duration {
	switch t {
	case FourHour:
		return 4 * time.Hour
	default:
		return time.Hour
	}
}

// Interval returns the provider interval token.
func (t Timeframe) Interval() string {
	switch t {
	case FourHour:
		return "4h"
	default:
		return "1h"
	}
}

// ParseTimeframe maps an interval token back to a Timeframe.
func ParseTimeframe(interval string) (Timeframe, error) {
	switch interval {
	case "1h":
		return OneHour, nil
	case "4h":
		return FourHour, nil
	default:
		return 0, fmt.Errorf("unsupported timeframe %q", interval)
	}
}

func (t Timeframe) String() string {
	return t.Interval()
}
