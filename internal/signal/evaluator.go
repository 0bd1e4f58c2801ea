// Package signal decides when an RSI reading becomes an alert, applying
// per-series cooldown so a lingering zone cannot flood the notifier.
package signal

import (
	"time"

	"github.com/shopspring/decimal"

	"forex-rsi-alerts/internal/market"
)

// Zone classifies an RSI value against the configured thresholds.
type Zone int

const (
	Neutral Zone = iota
	Oversold
	Overbought
)

func (z Zone) String() string {
	switch z {
	case Oversold:
		return "oversold"
	case Overbought:
		return "overbought"
	default:
		return "neutral"
	}
}

// Alert is the immutable event handed to the notifier when a signal fires.
type Alert struct {
	Pair      market.Pair
	Timeframe market.Timeframe
	RSI       float64
	Price     decimal.Decimal
	Zone      Zone
	Time      time.Time
}

// State carries the per-series alert history. LastAlert, once set, only moves
// forward; two fired alerts for the same series are never closer than the
// cooldown.
type State struct {
	LastAlert *time.Time
	LastZone  Zone
}

// Evaluator holds the thresholds, the cooldown, and the state map. It is not
// safe for concurrent use; the monitor loop is its sole caller.
type Evaluator struct {
	oversold   float64
	overbought float64
	cooldown   time.Duration
	states     map[market.Key]*State
}

// NewEvaluator constructs an Evaluator. Threshold ordering is validated by
// the configuration layer before this is reached.
func NewEvaluator(oversold, overbought float64, cooldown time.Duration) *Evaluator {
	return &Evaluator{
		oversold:   oversold,
		overbought: overbought,
		cooldown:   cooldown,
		states:     make(map[market.Key]*State),
	}
}

// Classify maps an RSI value to its zone.
func (e *Evaluator) Classify(rsiValue float64) Zone {
	switch {
	case rsiValue <= e.oversold:
		return Oversold
	case rsiValue >= e.overbought:
		return Overbought
	default:
		return Neutral
	}
}

// Evaluate applies the alert decision for one series and returns the alert to
// dispatch, or nil. hasRSI=false (insufficient history) leaves state
// untouched. A neutral reading records the zone and never fires, even right
// after an alert zone: re-arming is by cooldown, not by zone re-entry.
// Cooldown is measured from the previous fired alert's instant and is set
// here, before delivery, so a flaky notification channel cannot cause storms.
func (e *Evaluator) Evaluate(key market.Key, rsiValue float64, hasRSI bool, price decimal.Decimal, now time.Time) *Alert {
	if !hasRSI {
		return nil
	}

	state := e.states[key]
	if state == nil {
		state = &State{}
		e.states[key] = state
	}

	zone := e.Classify(rsiValue)
	if zone == Neutral {
		state.LastZone = Neutral
		return nil
	}

	if state.LastAlert != nil && now.Sub(*state.LastAlert) < e.cooldown {
		state.LastZone = zone
		return nil
	}

	fired := now
	state.LastAlert = &fired
	state.LastZone = zone

	return &Alert{
		Pair:      key.Pair,
		Timeframe: key.Timeframe,
		RSI:       rsiValue,
		Price:     price,
		Zone:      zone,
		Time:      now,
	}
}

// StateFor exposes a copy of the tracked state, mainly for inspection.
func (e *Evaluator) StateFor(key market.Key) (State, bool) {
	state, ok := e.states[key]
	if !ok {
		return State{}, false
	}
	return *state, true
}
