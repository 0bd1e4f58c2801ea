package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"forex-rsi-alerts/internal/logging"
	"forex-rsi-alerts/internal/market"
)

// Config materialises application configuration. It is read once at startup
// and treated as immutable afterwards.
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Logging    logging.Config   `mapstructure:"logging"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Monitor    MonitorConfig    `mapstructure:"monitor"`
	RSI        RSIConfig        `mapstructure:"rsi"`
	Quiet      QuietConfig      `mapstructure:"quiet"`
	TwelveData TwelveDataConfig `mapstructure:"twelvedata"`
	Alerting   AlertingConfig   `mapstructure:"alerting"`
	Export     ExportConfig     `mapstructure:"export"`
}

// AppConfig general metadata.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

// DatabaseConfig encapsulates optional PostgreSQL connectivity for the
// sample/alert history. Empty DSN disables persistence entirely.
type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	MigrationsPath  string        `mapstructure:"migrations_path"`
}

// MonitorConfig governs the polling loop.
type MonitorConfig struct {
	Pairs           []string      `mapstructure:"pairs"`
	TickInterval    time.Duration `mapstructure:"tick_interval"`
	Tolerance       time.Duration `mapstructure:"tolerance"`
	StartupDelay    time.Duration `mapstructure:"startup_delay"`
	AdvisoryLockKey int64         `mapstructure:"advisory_lock_key"`
}

// RSIConfig holds indicator thresholds and the alert cooldown.
type RSIConfig struct {
	Period     int           `mapstructure:"period"`
	Oversold   float64       `mapstructure:"oversold"`
	Overbought float64       `mapstructure:"overbought"`
	Cooldown   time.Duration `mapstructure:"cooldown"`
}

// QuietConfig defines the nightly window during which polling is suppressed.
type QuietConfig struct {
	StartHour int    `mapstructure:"start_hour"`
	EndHour   int    `mapstructure:"end_hour"`
	Timezone  string `mapstructure:"timezone"`
}

// TwelveDataConfig captures market-data provider connectivity.
type TwelveDataConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	APIKey         string        `mapstructure:"api_key"`
	OutputSize     int           `mapstructure:"output_size"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	DailyBudget    int           `mapstructure:"daily_budget"`
	UserAgent      string        `mapstructure:"user_agent"`
}

// AlertingConfig defines alert routing.
type AlertingConfig struct {
	Enabled  bool           `mapstructure:"enabled"`
	Telegram TelegramConfig `mapstructure:"telegram"`
}

// TelegramConfig describes the Telegram delivery channel.
type TelegramConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
	APIBase  string `mapstructure:"api_base"`
}

// ExportConfig sets CLI export behaviour.
type ExportConfig struct {
	MaxDataPoints int `mapstructure:"max_data_points"`
}

// Load builds configuration from file, environment, and defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("RSIWATCHER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHook()); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "rsiwatcher")
	v.SetDefault("app.environment", "development")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("monitor.pairs", market.DefaultPairSymbols)
	v.SetDefault("monitor.tick_interval", "1m")
	v.SetDefault("monitor.tolerance", "3m")
	v.SetDefault("monitor.startup_delay", "0s")
	v.SetDefault("monitor.advisory_lock_key", int64(0x72736977))

	v.SetDefault("rsi.period", 14)
	v.SetDefault("rsi.oversold", 30.0)
	v.SetDefault("rsi.overbought", 70.0)
	v.SetDefault("rsi.cooldown", "4h")

	v.SetDefault("quiet.start_hour", 2)
	v.SetDefault("quiet.end_hour", 5)
	v.SetDefault("quiet.timezone", "Asia/Kolkata")

	v.SetDefault("twelvedata.base_url", "https://api.twelvedata.com")
	v.SetDefault("twelvedata.output_size", 50)
	v.SetDefault("twelvedata.request_timeout", "10s")
	v.SetDefault("twelvedata.daily_budget", 780)
	v.SetDefault("twelvedata.user_agent", "rsiwatcher/1.0")

	v.SetDefault("alerting.enabled", true)
	v.SetDefault("alerting.telegram.enabled", false)
	v.SetDefault("alerting.telegram.api_base", "https://api.telegram.org")

	v.SetDefault("export.max_data_points", 100000)

	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("database.migrations_path", "migrations")
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}

// Validate performs startup-time sanity checks. Any failure here is fatal;
// nothing in the steady-state loop re-validates configuration.
func (c *Config) Validate() error {
	if len(c.Monitor.Pairs) == 0 {
		return fmt.Errorf("monitor.pairs must not be empty")
	}
	if _, err := market.ParsePairs(c.Monitor.Pairs); err != nil {
		return fmt.Errorf("monitor.pairs: %w", err)
	}
	if c.Monitor.TickInterval <= 0 {
		return fmt.Errorf("monitor.tick_interval must be greater than zero")
	}
	if c.Monitor.Tolerance <= 0 {
		return fmt.Errorf("monitor.tolerance must be greater than zero")
	}
	if c.Monitor.TickInterval > c.Monitor.Tolerance {
		return fmt.Errorf("monitor.tick_interval must not exceed monitor.tolerance, or candle closes can be missed")
	}
	if c.RSI.Period < 2 {
		return fmt.Errorf("rsi.period must be at least 2")
	}
	if c.RSI.Oversold >= c.RSI.Overbought {
		return fmt.Errorf("rsi.oversold (%v) must be below rsi.overbought (%v)", c.RSI.Oversold, c.RSI.Overbought)
	}
	if c.RSI.Oversold < 0 || c.RSI.Overbought > 100 {
		return fmt.Errorf("rsi thresholds must lie within [0, 100]")
	}
	if c.RSI.Cooldown <= 0 {
		return fmt.Errorf("rsi.cooldown must be greater than zero")
	}
	if c.Quiet.StartHour < 0 || c.Quiet.StartHour > 23 || c.Quiet.EndHour < 0 || c.Quiet.EndHour > 23 {
		return fmt.Errorf("quiet window hours must lie within [0, 23]")
	}
	if _, err := time.LoadLocation(c.Quiet.Timezone); err != nil {
		return fmt.Errorf("quiet.timezone: %w", err)
	}
	if c.TwelveData.OutputSize <= c.RSI.Period {
		return fmt.Errorf("twelvedata.output_size must exceed rsi.period to produce an RSI value")
	}
	if c.Export.MaxDataPoints <= 0 {
		return fmt.Errorf("export.max_data_points must be greater than zero")
	}
	if c.Alerting.Telegram.Enabled {
		if c.Alerting.Telegram.BotToken == "" {
			return fmt.Errorf("alerting.telegram.bot_token is required when telegram is enabled")
		}
		if c.Alerting.Telegram.ChatID == "" {
			return fmt.Errorf("alerting.telegram.chat_id is required when telegram is enabled")
		}
	}
	return nil
}

// Pairs returns the parsed pair set. Validate guarantees this cannot fail
// after Load.
func (c *Config) Pairs() []market.Pair {
	pairs, err := market.ParsePairs(c.Monitor.Pairs)
	if err != nil {
		panic("config: pairs changed after validation: " + err.Error())
	}
	return pairs
}

// QuietLocation returns the quiet-window timezone. Validate guarantees this
// cannot fail after Load.
func (c *Config) QuietLocation() *time.Location {
	loc, err := time.LoadLocation(c.Quiet.Timezone)
	if err != nil {
		panic("config: timezone changed after validation: " + err.Error())
	}
	return loc
}

// ResolveMaxPoints returns either the CLI override or config default.
func (c *Config) ResolveMaxPoints(override int) int {
	if override > 0 {
		return override
	}
	return c.Export.MaxDataPoints
}
