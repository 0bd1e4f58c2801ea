// Package clock computes UTC-aligned candle close boundaries and tracks
// which boundaries have already been handled per monitored series.
package clock

import (
	"time"

	"forex-rsi-alerts/internal/market"
)

// LastBoundary returns the most recent candle close at or before now for the
// timeframe. One-hour candles close at minute 0 of every hour; four-hour
// candles close at UTC hours 0, 4, 8, 12, 16, and 20.
func LastBoundary(tf market.Timeframe, now time.Time) time.Time {
	return now.UTC().Truncate(tf.Duration())
}

// NextBoundary returns the first candle close strictly after now.
func NextBoundary(tf market.Timeframe, now time.Time) time.Time {
	return LastBoundary(tf, now).Add(tf.Duration())
}

// Tracker remembers the last processed boundary per key so a close is acted
// on exactly once no matter how many ticks land inside the tolerance window.
// It is not safe for concurrent use; the monitor loop is its sole caller.
type Tracker struct {
	processed map[market.Key]time.Time
}

// NewTracker constructs an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{processed: make(map[market.Key]time.Time)}
}

// Due reports whether the key's latest candle close should be processed now.
// It returns true only when now falls within tolerance after a boundary that
// has not been handled yet, and marks that boundary as handled. If the loop
// wakes late and several boundaries have elapsed, only the most recent one is
// considered; older misses are never backfilled.
func (t *Tracker) Due(key market.Key, now time.Time, tolerance time.Duration) (time.Time, bool) {
	boundary := LastBoundary(key.Timeframe, now)
	if now.UTC().Sub(boundary) >= tolerance {
		return boundary, false
	}
	if last, ok := t.processed[key]; ok && !boundary.After(last) {
		return boundary, false
	}
	t.processed[key] = boundary
	return boundary, true
}
