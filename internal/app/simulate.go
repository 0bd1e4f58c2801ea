package app

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"forex-rsi-alerts/internal/market"
	"forex-rsi-alerts/internal/signal"
)

// SimulateOptions feed a synthetic reading through the alert path.
type SimulateOptions struct {
	Pair      string
	Timeframe string
	RSI       float64
	Price     float64
}

// SimulateAlert runs the configured evaluator and notifier against a given
// RSI reading, bypassing the market-data fetch. Useful for verifying the
// Telegram channel and the rendered message without waiting for a real
// signal.
func (a *App) SimulateAlert(ctx context.Context, opts SimulateOptions) error {
	if !a.Config.Alerting.Enabled {
		return errors.New("alerting is disabled in configuration")
	}

	notifier := a.newNotifier()
	if notifier == nil {
		return errors.New("no notification channel configured")
	}

	pair, err := market.ParsePair(opts.Pair)
	if err != nil {
		return err
	}
	tf, err := market.ParseTimeframe(opts.Timeframe)
	if err != nil {
		return err
	}

	evaluator := signal.NewEvaluator(a.Config.RSI.Oversold, a.Config.RSI.Overbought, a.Config.RSI.Cooldown)
	key := market.Key{Pair: pair, Timeframe: tf}
	alert := evaluator.Evaluate(key, opts.RSI, true, decimal.NewFromFloat(opts.Price), time.Now().UTC())
	if alert == nil {
		return errors.New("rsi value is in the neutral zone; no alert to send")
	}

	if err := notifier.Notify(ctx, *alert); err != nil {
		return err
	}

	a.Logger.Info().
		Str("pair", pair.String()).
		Str("timeframe", tf.Interval()).
		Str("zone", alert.Zone.String()).
		Msg("simulated alert delivered")
	return nil
}
