// Package rsi implements the Relative Strength Index with Wilder's smoothing.
package rsi

// DefaultPeriod is the standard RSI lookback.
const DefaultPeriod = 14

// Series computes RSI values for closes (oldest to newest) over the given
// period. The result is aligned to closes[period:]: result[i] reflects the
// candle at closes[period+i]. Fewer than period+1 closes yield an empty
// series rather than an error.
//
// Wilder's smoothing is used throughout: the seed averages are simple means
// of the first period gains/losses, and every subsequent average is
// (prev*(period-1) + current) / period. When the smoothed loss is zero the
// value is 100 by convention.
func Series(closes []float64, period int) []float64 {
	if period <= 0 || len(closes) <= period {
		return nil
	}

	gains := make([]float64, len(closes)-1)
	losses := make([]float64, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			gains[i-1] = delta
		} else {
			losses[i-1] = -delta
		}
	}

	var avgGain, avgLoss float64
	for i := 0; i < period; i++ {
		avgGain += gains[i]
		avgLoss += losses[i]
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	values := make([]float64, 0, len(gains)-period+1)
	values = append(values, value(avgGain, avgLoss))

	for i := period; i < len(gains); i++ {
		avgGain = (avgGain*float64(period-1) + gains[i]) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + losses[i]) / float64(period)
		values = append(values, value(avgGain, avgLoss))
	}

	return values
}

// Latest returns the most recent RSI value for closes, or ok=false when the
// series is too short to produce one.
func Latest(closes []float64, period int) (float64, bool) {
	values := Series(closes, period)
	if len(values) == 0 {
		return 0, false
	}
	return values[len(values)-1], true
}

func value(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}
