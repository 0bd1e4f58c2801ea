package clock

import (
	"testing"
	"time"

	"forex-rsi-alerts/internal/market"
)

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("parse %s: %v", value, err)
	}
	return parsed
}

func TestNextBoundary(t *testing.T) {
	cases := []struct {
		tf   market.Timeframe
		now  string
		want string
	}{
		{market.FourHour, "2024-12-15T01:17:00Z", "2024-12-15T04:00:00Z"},
		{market.FourHour, "2024-12-15T04:00:00Z", "2024-12-15T08:00:00Z"},
		{market.FourHour, "2024-12-15T23:59:59Z", "2024-12-16T00:00:00Z"},
		{market.OneHour, "2024-12-15T01:17:00Z", "2024-12-15T02:00:00Z"},
		{market.OneHour, "2024-12-15T23:00:00Z", "2024-12-16T00:00:00Z"},
	}

	for _, tc := range cases {
		got := NextBoundary(tc.tf, mustTime(t, tc.now))
		if !got.Equal(mustTime(t, tc.want)) {
			t.Errorf("NextBoundary(%s, %s) = %s, want %s", tc.tf, tc.now, got, tc.want)
		}
	}
}

func TestLastBoundaryFourHourOffsets(t *testing.T) {
	for hour := 0; hour < 24; hour++ {
		now := time.Date(2024, 12, 15, hour, 30, 0, 0, time.UTC)
		boundary := LastBoundary(market.FourHour, now)
		if boundary.Hour()%4 != 0 || boundary.Minute() != 0 {
			t.Fatalf("hour %d: boundary %s not aligned to 4h offsets", hour, boundary)
		}
	}
}

func TestTrackerDueOncePerBoundary(t *testing.T) {
	tracker := NewTracker()
	key := market.Key{Pair: market.Pair{Base: "EUR", Quote: "USD"}, Timeframe: market.OneHour}
	tolerance := 3 * time.Minute
	boundary := mustTime(t, "2024-12-15T09:00:00Z")

	// Every tick inside the tolerance window sees the same boundary; only the
	// first is due.
	due := 0
	for _, offset := range []time.Duration{0, time.Minute, 2 * time.Minute} {
		if _, ok := tracker.Due(key, boundary.Add(offset), tolerance); ok {
			due++
		}
	}
	if due != 1 {
		t.Fatalf("expected exactly one due tick per boundary, got %d", due)
	}

	// The next boundary becomes due again.
	if _, ok := tracker.Due(key, boundary.Add(time.Hour), tolerance); !ok {
		t.Fatal("next boundary should be due")
	}
}

func TestTrackerOutsideTolerance(t *testing.T) {
	tracker := NewTracker()
	key := market.Key{Pair: market.Pair{Base: "GBP", Quote: "JPY"}, Timeframe: market.OneHour}

	now := mustTime(t, "2024-12-15T09:12:00Z")
	if _, ok := tracker.Due(key, now, 3*time.Minute); ok {
		t.Fatal("12 minutes past the close should not be due")
	}
}

func TestTrackerLateWakeSkipsMissedBoundaries(t *testing.T) {
	tracker := NewTracker()
	key := market.Key{Pair: market.Pair{Base: "EUR", Quote: "USD"}, Timeframe: market.OneHour}
	tolerance := 3 * time.Minute

	if _, ok := tracker.Due(key, mustTime(t, "2024-12-15T06:01:00Z"), tolerance); !ok {
		t.Fatal("06:00 boundary should be due")
	}

	// Loop stalls through 07:00 and 08:00; waking at 09:01 must process only
	// the 09:00 boundary.
	boundary, ok := tracker.Due(key, mustTime(t, "2024-12-15T09:01:00Z"), tolerance)
	if !ok {
		t.Fatal("09:00 boundary should be due after a stall")
	}
	if !boundary.Equal(mustTime(t, "2024-12-15T09:00:00Z")) {
		t.Fatalf("expected 09:00 boundary, got %s", boundary)
	}

	// The skipped boundaries stay skipped.
	if _, ok := tracker.Due(key, mustTime(t, "2024-12-15T09:02:00Z"), tolerance); ok {
		t.Fatal("09:00 boundary must not be processed twice")
	}
}

func TestTrackerKeysAreIndependent(t *testing.T) {
	tracker := NewTracker()
	now := mustTime(t, "2024-12-15T08:01:00Z")
	tolerance := 3 * time.Minute

	oneHour := market.Key{Pair: market.Pair{Base: "EUR", Quote: "USD"}, Timeframe: market.OneHour}
	fourHour := market.Key{Pair: market.Pair{Base: "EUR", Quote: "USD"}, Timeframe: market.FourHour}

	if _, ok := tracker.Due(oneHour, now, tolerance); !ok {
		t.Fatal("1h key should be due")
	}
	if _, ok := tracker.Due(fourHour, now, tolerance); !ok {
		t.Fatal("4h key should be due independently of the 1h key")
	}
}
