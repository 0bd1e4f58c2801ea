package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"forex-rsi-alerts/internal/market"
	"forex-rsi-alerts/internal/rsi"
)

// CheckOptions configure the readiness check.
type CheckOptions struct {
	Pair       string
	Timeframe  string
	SkipNotify bool
}

// Check verifies the two external collaborators end to end: it fetches one
// series from the market-data provider, computes an RSI value from it, and
// sends a test message through the notification channel. Intended to be run
// once after deployment, before `run`.
func (a *App) Check(ctx context.Context, opts CheckOptions) error {
	pair, err := market.ParsePair(opts.Pair)
	if err != nil {
		return err
	}
	tf, err := market.ParseTimeframe(opts.Timeframe)
	if err != nil {
		return err
	}

	candles, err := a.newFetcher().FetchCloses(ctx, pair, tf)
	if err != nil {
		return fmt.Errorf("market data check failed: %w", err)
	}
	if len(candles) == 0 {
		return fmt.Errorf("market data check failed: provider returned no candles for %s %s", pair, tf.Interval())
	}

	latest := candles[len(candles)-1]
	value, ok := rsi.Latest(market.Closes(candles), a.Config.RSI.Period)
	if !ok {
		return fmt.Errorf("market data check failed: %d candles is insufficient for RSI(%d)", len(candles), a.Config.RSI.Period)
	}

	fmt.Fprintf(os.Stdout, "market data: ok (%s %s, %d candles, last close %s, RSI %.2f)\n",
		pair, tf.Interval(), len(candles), latest.CloseTime.UTC().Format(time.RFC3339), value)

	if opts.SkipNotify {
		return nil
	}

	notifier := a.newNotifier()
	if notifier == nil {
		fmt.Fprintln(os.Stdout, "telegram: not configured, skipped")
		return nil
	}

	text := fmt.Sprintf("[Connection Test]\n%s %s RSI(%d) = %.2f\nChannel is working.",
		pair, tf.Interval(), a.Config.RSI.Period, value)
	if err := notifier.NotifyText(ctx, text); err != nil {
		return fmt.Errorf("telegram check failed: %w", err)
	}

	fmt.Fprintln(os.Stdout, "telegram: ok")
	return nil
}
