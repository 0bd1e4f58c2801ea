// Package monitor ties the candle clock, quiet window, fetcher, RSI engine,
// and signal evaluator together into the polling loop.
package monitor

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"forex-rsi-alerts/internal/alerting"
	"forex-rsi-alerts/internal/clock"
	"forex-rsi-alerts/internal/config"
	"forex-rsi-alerts/internal/fetcher"
	"forex-rsi-alerts/internal/market"
	"forex-rsi-alerts/internal/quiet"
	"forex-rsi-alerts/internal/rsi"
	"forex-rsi-alerts/internal/scheduler"
	"forex-rsi-alerts/internal/signal"
	"forex-rsi-alerts/internal/storage"
)

// Monitor orchestrates one sequential evaluation cycle per tick. All mutable
// state (the boundary tracker and the evaluator's alert states) is owned by
// this loop and never touched from another goroutine.
type Monitor struct {
	scheduler   *scheduler.Scheduler
	fetcher     fetcher.CandleFetcher
	notifier    alerting.Notifier
	sampleStore storage.SampleStore
	alertStore  storage.AlertStore
	locker      storage.AdvisoryLocker
	logger      zerolog.Logger

	pairs      []market.Pair
	period     int
	oversold   float64
	overbought float64
	tolerance  time.Duration
	window     quiet.Window
	tracker    *clock.Tracker
	evaluator  *signal.Evaluator
	lockKey    int64
	alertsOn   bool

	sleeping bool
}

// New constructs the monitor from validated configuration.
func New(cfg *config.Config, sched *scheduler.Scheduler, candleFetcher fetcher.CandleFetcher, notifier alerting.Notifier, sampleStore storage.SampleStore, alertStore storage.AlertStore, logger zerolog.Logger) *Monitor {
	var locker storage.AdvisoryLocker
	if l, ok := sampleStore.(storage.AdvisoryLocker); ok {
		locker = l
	}

	return &Monitor{
		scheduler:   sched,
		fetcher:     candleFetcher,
		notifier:    notifier,
		sampleStore: sampleStore,
		alertStore:  alertStore,
		locker:      locker,
		logger:      logger.With().Str("component", "monitor").Logger(),
		pairs:       cfg.Pairs(),
		period:      cfg.RSI.Period,
		oversold:    cfg.RSI.Oversold,
		overbought:  cfg.RSI.Overbought,
		tolerance:   cfg.Monitor.Tolerance,
		window:      quiet.NewWindow(cfg.Quiet.StartHour, cfg.Quiet.EndHour, cfg.QuietLocation()),
		tracker:     clock.NewTracker(),
		evaluator:   signal.NewEvaluator(cfg.RSI.Oversold, cfg.RSI.Overbought, cfg.RSI.Cooldown),
		lockKey:     cfg.Monitor.AdvisoryLockKey,
		alertsOn:    cfg.Alerting.Enabled,
	}
}

// Run announces startup and blocks in the tick loop until ctx is cancelled.
func (m *Monitor) Run(ctx context.Context) error {
	if m.scheduler == nil {
		return fmt.Errorf("scheduler not configured")
	}

	m.sendText(ctx, m.startupMessage(time.Now()))
	m.logger.Info().
		Int("pairs", len(m.pairs)).
		Int("timeframes", len(market.Timeframes)).
		Msg("monitoring started")

	return m.scheduler.Run(ctx, m.Tick)
}

// Tick runs one full evaluation cycle. It never returns an error for per-key
// failures; those are logged and isolated so one bad fetch cannot starve the
// remaining series.
func (m *Monitor) Tick(ctx context.Context, now time.Time) error {
	unlock, proceed, err := m.acquireLock(ctx)
	if err != nil {
		return err
	}
	if !proceed {
		m.logger.Debug().Time("tick", now).Msg("skip tick because advisory lock held elsewhere")
		return nil
	}
	if unlock != nil {
		defer unlock()
	}

	if m.window.Active(now) {
		if !m.sleeping {
			m.sleeping = true
			m.logger.Info().Time("wake_at", m.window.WakeTime(now)).Msg("entering quiet window")
			m.sendText(ctx, m.sleepMessage(now))
		}
		return nil
	}
	if m.sleeping {
		m.sleeping = false
		m.logger.Info().Msg("quiet window over, resuming monitoring")
		m.sendText(ctx, m.wakeMessage(now))
	}

	for _, tf := range market.Timeframes {
		for _, pair := range m.pairs {
			key := market.Key{Pair: pair, Timeframe: tf}
			boundary, due := m.tracker.Due(key, now, m.tolerance)
			if !due {
				continue
			}
			m.evaluateKey(ctx, key, boundary, now)
		}
	}

	return nil
}

// evaluateKey performs fetch -> RSI -> decision -> dispatch for one series.
// Every failure path is contained here.
func (m *Monitor) evaluateKey(ctx context.Context, key market.Key, boundary, now time.Time) {
	candles, err := m.fetcher.FetchCloses(ctx, key.Pair, key.Timeframe)
	if err != nil {
		m.logger.Warn().Err(err).
			Str("pair", key.Pair.String()).
			Str("timeframe", key.Timeframe.Interval()).
			Time("boundary", boundary).
			Msg("fetch failed, series skipped until next close")
		return
	}
	if len(candles) == 0 {
		m.logger.Warn().Str("series", key.String()).Msg("fetch returned no candles")
		return
	}

	latest := candles[len(candles)-1]
	rsiValue, hasRSI := rsi.Latest(market.Closes(candles), m.period)
	if !hasRSI {
		m.logger.Warn().
			Str("series", key.String()).
			Int("candles", len(candles)).
			Msg("insufficient history for RSI")
	} else {
		m.logger.Info().
			Str("series", key.String()).
			Float64("rsi", rsiValue).
			Msg("series evaluated")
		m.recordSample(ctx, key, latest, rsiValue)
	}

	alert := m.evaluator.Evaluate(key, rsiValue, hasRSI, latest.Close, now)
	if alert == nil {
		return
	}

	m.recordAlert(ctx, alert, latest.CloseTime)
	m.dispatch(ctx, alert)
}

// dispatch forwards the alert. Delivery failure is logged only: the cooldown
// was already committed by the evaluator, which keeps a flaky channel from
// producing alert storms.
func (m *Monitor) dispatch(ctx context.Context, alert *signal.Alert) {
	if !m.alertsOn || m.notifier == nil {
		return
	}
	if err := m.notifier.Notify(ctx, *alert); err != nil {
		m.logger.Error().Err(err).
			Str("pair", alert.Pair.String()).
			Str("timeframe", alert.Timeframe.Interval()).
			Msg("failed to dispatch alert")
	}
}

func (m *Monitor) recordSample(ctx context.Context, key market.Key, latest market.Candle, rsiValue float64) {
	if m.sampleStore == nil {
		return
	}
	sample := storage.RSISample{
		Pair:      key.Pair.String(),
		Timeframe: key.Timeframe.Interval(),
		CloseTS:   latest.CloseTime,
		RSI:       rsiValue,
		Price:     latest.Close,
		Zone:      m.evaluator.Classify(rsiValue).String(),
		CreatedAt: time.Now().UTC(),
	}
	if err := m.sampleStore.UpsertSample(ctx, sample); err != nil {
		m.logger.Error().Err(err).Str("series", key.String()).Msg("failed to persist sample")
	}
}

func (m *Monitor) recordAlert(ctx context.Context, alert *signal.Alert, closeTS time.Time) {
	if m.alertStore == nil {
		return
	}
	record := storage.AlertRecord{
		Pair:      alert.Pair.String(),
		Timeframe: alert.Timeframe.Interval(),
		CloseTS:   closeTS,
		RSI:       alert.RSI,
		Price:     alert.Price,
		Zone:      alert.Zone.String(),
	}
	if _, err := m.alertStore.InsertAlert(ctx, record); err != nil {
		m.logger.Error().Err(err).Str("pair", record.Pair).Msg("failed to persist alert record")
	}
}

// sendText delivers a lifecycle message; failures are never fatal.
func (m *Monitor) sendText(ctx context.Context, text string) {
	if !m.alertsOn || m.notifier == nil {
		return
	}
	if err := m.notifier.NotifyText(ctx, text); err != nil {
		m.logger.Error().Err(err).Msg("failed to send lifecycle message")
	}
}

func (m *Monitor) acquireLock(ctx context.Context) (func(), bool, error) {
	if m.lockKey == 0 || m.locker == nil {
		return nil, true, nil
	}
	unlock, acquired, err := m.locker.TryAdvisoryLock(ctx, m.lockKey)
	if err != nil {
		return nil, false, fmt.Errorf("acquire advisory lock: %w", err)
	}
	if !acquired {
		return nil, false, nil
	}
	return unlock, true, nil
}
