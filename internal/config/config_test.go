package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Monitor: MonitorConfig{
			Pairs:        []string{"EUR/USD", "GBP/JPY"},
			TickInterval: time.Minute,
			Tolerance:    3 * time.Minute,
		},
		RSI: RSIConfig{
			Period:     14,
			Oversold:   30,
			Overbought: 70,
			Cooldown:   4 * time.Hour,
		},
		Quiet: QuietConfig{
			StartHour: 2,
			EndHour:   5,
			Timezone:  "Asia/Kolkata",
		},
		TwelveData: TwelveDataConfig{OutputSize: 50},
		Export:     ExportConfig{MaxDataPoints: 1000},
	}
}

func TestValidateAccepts(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		keyword string
	}{
		{"empty pairs", func(c *Config) { c.Monitor.Pairs = nil }, "pairs"},
		{"bad pair", func(c *Config) { c.Monitor.Pairs = []string{"EURUSD"} }, "pairs"},
		{"duplicate pair", func(c *Config) { c.Monitor.Pairs = []string{"EUR/USD", "EUR/USD"} }, "duplicate"},
		{"zero tick", func(c *Config) { c.Monitor.TickInterval = 0 }, "tick_interval"},
		{"tick above tolerance", func(c *Config) { c.Monitor.TickInterval = 5 * time.Minute }, "tolerance"},
		{"thresholds inverted", func(c *Config) { c.RSI.Oversold = 70; c.RSI.Overbought = 30 }, "oversold"},
		{"thresholds equal", func(c *Config) { c.RSI.Oversold = 50; c.RSI.Overbought = 50 }, "oversold"},
		{"threshold out of range", func(c *Config) { c.RSI.Overbought = 130 }, "within"},
		{"zero cooldown", func(c *Config) { c.RSI.Cooldown = 0 }, "cooldown"},
		{"bad quiet hour", func(c *Config) { c.Quiet.StartHour = 24 }, "quiet"},
		{"bad timezone", func(c *Config) { c.Quiet.Timezone = "Mars/Olympus" }, "timezone"},
		{"output size too small", func(c *Config) { c.TwelveData.OutputSize = 14 }, "output_size"},
		{"telegram enabled without token", func(c *Config) {
			c.Alerting.Telegram.Enabled = true
			c.Alerting.Telegram.ChatID = "42"
		}, "bot_token"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.keyword) {
				t.Fatalf("error %q should mention %q", err, tc.keyword)
			}
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load defaults: %v", err)
	}
	if len(cfg.Monitor.Pairs) != 28 {
		t.Fatalf("expected 28 default pairs, got %d", len(cfg.Monitor.Pairs))
	}
	if cfg.RSI.Period != 14 || cfg.RSI.Oversold != 30 || cfg.RSI.Overbought != 70 {
		t.Fatalf("unexpected RSI defaults: %+v", cfg.RSI)
	}
	if cfg.RSI.Cooldown != 4*time.Hour {
		t.Fatalf("expected 4h cooldown default, got %s", cfg.RSI.Cooldown)
	}
	if cfg.Monitor.TickInterval != time.Minute || cfg.Monitor.Tolerance != 3*time.Minute {
		t.Fatalf("unexpected monitor defaults: %+v", cfg.Monitor)
	}
	if cfg.Quiet.Timezone != "Asia/Kolkata" {
		t.Fatalf("unexpected quiet timezone: %s", cfg.Quiet.Timezone)
	}
	if got := len(cfg.Pairs()); got != 28 {
		t.Fatalf("Pairs() returned %d entries", got)
	}
}
