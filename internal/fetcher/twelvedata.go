package fetcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"forex-rsi-alerts/internal/market"
)

const timeSeriesPath = "/time_series"

// ErrBudgetExhausted signals that the daily request allowance is spent. The
// monitor treats it like any other fetch failure: skip the key, retry on the
// next due candle.
var ErrBudgetExhausted = errors.New("daily request budget exhausted")

// TwelveDataOptions parameterise the TwelveData fetcher.
type TwelveDataOptions struct {
	BaseURL     string
	APIKey      string
	OutputSize  int
	Timeout     time.Duration
	DailyBudget int
	UserAgent   string
}

// TwelveData fetches candle series from the TwelveData time_series endpoint.
type TwelveData struct {
	opts    TwelveDataOptions
	logger  zerolog.Logger
	client  *http.Client
	baseURL string

	mu        sync.Mutex
	requests  int
	budgetDay time.Time
}

// NewTwelveData constructs a TwelveData fetcher.
func NewTwelveData(opts TwelveDataOptions, logger zerolog.Logger) *TwelveData {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.twelvedata.com"
	}

	if opts.OutputSize <= 0 {
		opts.OutputSize = 50
	}

	return &TwelveData{
		opts:    opts,
		logger:  logger.With().Str("component", "twelvedata_fetcher").Logger(),
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// FetchCloses retrieves up to OutputSize candles, oldest to newest.
func (f *TwelveData) FetchCloses(ctx context.Context, pair market.Pair, tf market.Timeframe) ([]market.Candle, error) {
	if f.opts.APIKey == "" {
		return nil, errors.New("twelvedata api key required")
	}
	if err := f.consumeBudget(); err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("symbol", pair.String())
	query.Set("interval", tf.Interval())
	query.Set("outputsize", strconv.Itoa(f.opts.OutputSize))
	query.Set("apikey", f.opts.APIKey)

	endpoint := f.baseURL + timeSeriesPath + "?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if ua := strings.TrimSpace(f.opts.UserAgent); ua != "" {
		req.Header.Set("User-Agent", ua)
	} else {
		req.Header.Set("User-Agent", "rsiwatcher/1.0")
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, parseHTTPError(resp.StatusCode, payload)
	}

	var series timeSeriesResponse
	if err := json.Unmarshal(payload, &series); err != nil {
		return nil, fmt.Errorf("decode time series: %w", err)
	}

	// The API reports quota and symbol errors with HTTP 200 and a code field.
	if series.Code != 0 && series.Code != http.StatusOK {
		if series.Message != "" {
			return nil, fmt.Errorf("twelvedata api error (%d): %s", series.Code, series.Message)
		}
		return nil, fmt.Errorf("twelvedata api error (%d)", series.Code)
	}
	if len(series.Values) == 0 {
		return nil, errors.New("time series returned no values")
	}

	candles, err := parseCandles(series.Values)
	if err != nil {
		return nil, err
	}

	f.logger.Debug().
		Str("pair", pair.String()).
		Str("interval", tf.Interval()).
		Int("candles", len(candles)).
		Msg("fetched time series")

	return candles, nil
}

// consumeBudget enforces the provider's daily request allowance. The counter
// resets at UTC midnight.
func (f *TwelveData) consumeBudget() error {
	if f.opts.DailyBudget <= 0 {
		return nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	today := time.Now().UTC().Truncate(24 * time.Hour)
	if today.After(f.budgetDay) {
		f.budgetDay = today
		f.requests = 0
	}
	if f.requests >= f.opts.DailyBudget {
		return ErrBudgetExhausted
	}
	f.requests++
	return nil
}

// RequestsToday reports the consumed budget for the current UTC day.
func (f *TwelveData) RequestsToday() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	if time.Now().UTC().Truncate(24 * time.Hour).After(f.budgetDay) {
		return 0
	}
	return f.requests
}

type timeSeriesValue struct {
	Datetime string `json:"datetime"`
	Close    string `json:"close"`
}

type timeSeriesResponse struct {
	Values  []timeSeriesValue `json:"values"`
	Code    int               `json:"code"`
	Message string            `json:"message"`
}

// parseCandles converts the newest-first provider payload into an
// oldest-first candle slice.
func parseCandles(values []timeSeriesValue) ([]market.Candle, error) {
	candles := make([]market.Candle, 0, len(values))
	for i := len(values) - 1; i >= 0; i-- {
		closeTime, err := parseDatetime(values[i].Datetime)
		if err != nil {
			return nil, fmt.Errorf("parse candle time %q: %w", values[i].Datetime, err)
		}
		price, err := decimal.NewFromString(values[i].Close)
		if err != nil {
			return nil, fmt.Errorf("parse close %q: %w", values[i].Close, err)
		}
		candles = append(candles, market.Candle{CloseTime: closeTime, Close: price})
	}
	return candles, nil
}

func parseDatetime(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}
	return time.ParseInLocation("2006-01-02 15:04:05", value, time.UTC)
}

type errorResponse struct {
	Code    int    `json:"code"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

func parseHTTPError(status int, payload []byte) error {
	var apiErr errorResponse
	if err := json.Unmarshal(payload, &apiErr); err == nil && apiErr.Message != "" {
		return fmt.Errorf("twelvedata api error (%d): %s", status, apiErr.Message)
	}
	if len(payload) > 0 {
		return fmt.Errorf("twelvedata api error (%d): %s", status, strings.TrimSpace(string(payload)))
	}
	return fmt.Errorf("twelvedata api error (%d)", status)
}

var _ CandleFetcher = (*TwelveData)(nil)
