package quiet

import (
	"testing"
	"time"
)

func TestActive(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	window := NewWindow(2, 5, loc)

	cases := []struct {
		hour, minute int
		want         bool
	}{
		{3, 30, true},
		{2, 0, true},
		{4, 59, true},
		{5, 0, false},
		{1, 59, false},
		{23, 0, false},
	}

	for _, tc := range cases {
		now := time.Date(2024, 12, 15, tc.hour, tc.minute, 0, 0, loc)
		if got := window.Active(now); got != tc.want {
			t.Errorf("Active(%02d:%02d) = %v, want %v", tc.hour, tc.minute, got, tc.want)
		}
	}
}

func TestActiveConvertsTimezone(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	window := NewWindow(2, 5, loc)

	// 22:00 UTC is 03:30 IST, inside the window.
	now := time.Date(2024, 12, 14, 22, 0, 0, 0, time.UTC)
	if !window.Active(now) {
		t.Fatal("22:00 UTC should be inside the 02:00-05:00 IST window")
	}
}

func TestActiveWrapsMidnight(t *testing.T) {
	window := NewWindow(22, 5, time.UTC)

	if !window.Active(time.Date(2024, 12, 15, 23, 0, 0, 0, time.UTC)) {
		t.Fatal("23:00 should be inside a 22-05 window")
	}
	if !window.Active(time.Date(2024, 12, 15, 3, 0, 0, 0, time.UTC)) {
		t.Fatal("03:00 should be inside a 22-05 window")
	}
	if window.Active(time.Date(2024, 12, 15, 12, 0, 0, 0, time.UTC)) {
		t.Fatal("12:00 should be outside a 22-05 window")
	}
}

func TestEmptyWindowNeverActive(t *testing.T) {
	window := NewWindow(2, 2, time.UTC)
	for hour := 0; hour < 24; hour++ {
		if window.Active(time.Date(2024, 12, 15, hour, 30, 0, 0, time.UTC)) {
			t.Fatalf("window with start==end should never be active (hour %d)", hour)
		}
	}
}

func TestWakeTime(t *testing.T) {
	window := NewWindow(2, 5, time.UTC)

	now := time.Date(2024, 12, 15, 3, 0, 0, 0, time.UTC)
	wake := window.WakeTime(now)
	want := time.Date(2024, 12, 15, 5, 0, 0, 0, time.UTC)
	if !wake.Equal(want) {
		t.Fatalf("WakeTime = %s, want %s", wake, want)
	}

	// Past today's end hour the wake rolls to tomorrow.
	now = time.Date(2024, 12, 15, 6, 0, 0, 0, time.UTC)
	wake = window.WakeTime(now)
	want = time.Date(2024, 12, 16, 5, 0, 0, 0, time.UTC)
	if !wake.Equal(want) {
		t.Fatalf("WakeTime = %s, want %s", wake, want)
	}
}
