package fetcher

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"forex-rsi-alerts/internal/market"
)

func noopLogger() zerolog.Logger {
	return zerolog.Nop()
}

var eurusd = market.Pair{Base: "EUR", Quote: "USD"}

func TestTwelveDataFetchMissingKey(t *testing.T) {
	f := NewTwelveData(TwelveDataOptions{}, noopLogger())
	if _, err := f.FetchCloses(context.Background(), eurusd, market.OneHour); err == nil {
		t.Fatal("missing api key should return an error")
	}
}

func TestTwelveDataFetchSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("symbol"); got != "EUR/USD" {
			t.Fatalf("unexpected symbol %q", got)
		}
		if got := r.URL.Query().Get("interval"); got != "1h" {
			t.Fatalf("unexpected interval %q", got)
		}
		if got := r.URL.Query().Get("outputsize"); got != "50" {
			t.Fatalf("unexpected outputsize %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		// Provider returns newest first.
		_ = json.NewEncoder(w).Encode(map[string]any{
			"values": []map[string]string{
				{"datetime": "2024-12-15 09:00:00", "close": "1.1042"},
				{"datetime": "2024-12-15 08:00:00", "close": "1.1038"},
				{"datetime": "2024-12-15 07:00:00", "close": "1.1031"},
			},
			"status": "ok",
		})
	}))
	defer srv.Close()

	f := NewTwelveData(TwelveDataOptions{
		BaseURL: srv.URL,
		APIKey:  "key",
		Timeout: time.Second,
	}, noopLogger())

	candles, err := f.FetchCloses(context.Background(), eurusd, market.OneHour)
	if err != nil {
		t.Fatalf("successful response should not error: %v", err)
	}
	if len(candles) != 3 {
		t.Fatalf("expected 3 candles, got %d", len(candles))
	}
	if !candles[0].CloseTime.Before(candles[2].CloseTime) {
		t.Fatal("candles should be ordered oldest to newest")
	}
	if candles[2].Close.String() != "1.1042" {
		t.Fatalf("latest close should be 1.1042, got %s", candles[2].Close)
	}
}

func TestTwelveDataFetchEmbeddedAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Quota errors arrive with HTTP 200.
		_ = json.NewEncoder(w).Encode(map[string]any{
			"code":    429,
			"message": "You have run out of API credits",
			"status":  "error",
		})
	}))
	defer srv.Close()

	f := NewTwelveData(TwelveDataOptions{BaseURL: srv.URL, APIKey: "key", Timeout: time.Second}, noopLogger())

	if _, err := f.FetchCloses(context.Background(), eurusd, market.OneHour); err == nil {
		t.Fatal("embedded error code should return an error")
	}
}

func TestTwelveDataFetchHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{"code": 400, "message": "bad symbol"})
	}))
	defer srv.Close()

	f := NewTwelveData(TwelveDataOptions{BaseURL: srv.URL, APIKey: "key", Timeout: time.Second}, noopLogger())

	if _, err := f.FetchCloses(context.Background(), eurusd, market.OneHour); err == nil {
		t.Fatal("HTTP 400 should return an error")
	}
}

func TestTwelveDataFetchBadClose(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"values": []map[string]string{
				{"datetime": "2024-12-15 09:00:00", "close": "not-a-price"},
			},
		})
	}))
	defer srv.Close()

	f := NewTwelveData(TwelveDataOptions{BaseURL: srv.URL, APIKey: "key", Timeout: time.Second}, noopLogger())

	if _, err := f.FetchCloses(context.Background(), eurusd, market.OneHour); err == nil {
		t.Fatal("unparseable close should return an error")
	}
}

func TestTwelveDataDailyBudget(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		_ = json.NewEncoder(w).Encode(map[string]any{
			"values": []map[string]string{
				{"datetime": "2024-12-15 09:00:00", "close": "1.1"},
			},
		})
	}))
	defer srv.Close()

	f := NewTwelveData(TwelveDataOptions{
		BaseURL:     srv.URL,
		APIKey:      "key",
		Timeout:     time.Second,
		DailyBudget: 2,
	}, noopLogger())

	for i := 0; i < 2; i++ {
		if _, err := f.FetchCloses(context.Background(), eurusd, market.OneHour); err != nil {
			t.Fatalf("request %d within budget should succeed: %v", i+1, err)
		}
	}

	_, err := f.FetchCloses(context.Background(), eurusd, market.OneHour)
	if !errors.Is(err, ErrBudgetExhausted) {
		t.Fatalf("expected ErrBudgetExhausted, got %v", err)
	}
	if calls != 2 {
		t.Fatalf("exhausted budget must not hit the network, got %d calls", calls)
	}
	if f.RequestsToday() != 2 {
		t.Fatalf("expected 2 consumed requests, got %d", f.RequestsToday())
	}
}
