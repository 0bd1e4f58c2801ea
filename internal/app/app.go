package app

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"forex-rsi-alerts/internal/alerting"
	"forex-rsi-alerts/internal/config"
	"forex-rsi-alerts/internal/fetcher"
	"forex-rsi-alerts/internal/monitor"
	"forex-rsi-alerts/internal/scheduler"
	"forex-rsi-alerts/internal/storage"
)

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{Config: cfg, Logger: logger.With().Str("component", "app").Logger()}
}

func (a *App) newFetcher() fetcher.CandleFetcher {
	return fetcher.NewTwelveData(fetcher.TwelveDataOptions{
		BaseURL:     a.Config.TwelveData.BaseURL,
		APIKey:      a.Config.TwelveData.APIKey,
		OutputSize:  a.Config.TwelveData.OutputSize,
		Timeout:     a.Config.TwelveData.RequestTimeout,
		DailyBudget: a.Config.TwelveData.DailyBudget,
		UserAgent:   a.Config.TwelveData.UserAgent,
	}, a.Logger)
}

func (a *App) newNotifier() alerting.Notifier {
	if a.Config.Alerting.Telegram.Enabled {
		cfg := a.Config.Alerting.Telegram
		return alerting.NewTelegramNotifier(cfg.BotToken, cfg.ChatID, cfg.APIBase, a.Config.QuietLocation(), 10*time.Second, a.Logger)
	}
	return nil
}

func (a *App) openStore(ctx context.Context) (*storage.Store, func(), error) {
	if a.Config.Database.DSN == "" {
		return nil, nil, nil
	}

	pool, err := storage.NewPool(ctx, a.Config.Database)
	if err != nil {
		return nil, nil, err
	}

	store := storage.NewStore(pool)
	closer := func() {
		store.Close()
	}
	return store, closer, nil
}

// Run executes the long-running monitoring loop.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		a.Logger.Warn().Msg("database.dsn not configured; sample history disabled")
	}
	if closeStore != nil {
		defer closeStore()
	}

	sched := scheduler.New(scheduler.Options{
		Interval:     a.Config.Monitor.TickInterval,
		AlignToStart: true,
		StartupDelay: a.Config.Monitor.StartupDelay,
	}, a.Logger)

	notifier := a.newNotifier()
	if notifier == nil {
		a.Logger.Warn().Msg("telegram not configured; alerts will only be logged")
	}

	var sampleStore storage.SampleStore
	var alertStore storage.AlertStore
	if store != nil {
		sampleStore = store
		alertStore = store
	}

	mon := monitor.New(a.Config, sched, a.newFetcher(), notifier, sampleStore, alertStore, a.Logger)

	a.Logger.Info().Msg("starting monitoring loop")
	err = mon.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		a.Logger.Error().Err(err).Msg("monitor terminated with error")
		return err
	}

	a.Logger.Info().Msg("monitoring loop stopped")
	return nil
}

// ExportOptions hold parameters for exporting historical RSI samples.
type ExportOptions struct {
	Pair      string
	Timeframe string
	From      *time.Time
	To        *time.Time
	PNGPath   string
	CSVPath   string
	MaxPoints int
}

// ShowOptions configure the show command.
type ShowOptions struct {
	Limit  int
	Alerts bool
}
