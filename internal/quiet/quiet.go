// Package quiet implements the nightly window during which polling and
// evaluation are suppressed.
package quiet

import "time"

// Window is a local time-of-day range [Start, End) in whole hours.
type Window struct {
	Start    int
	End      int
	Location *time.Location
}

// NewWindow builds a window in the named timezone.
func NewWindow(startHour, endHour int, loc *time.Location) Window {
	if loc == nil {
		loc = time.UTC
	}
	return Window{Start: startHour, End: endHour, Location: loc}
}

// Active reports whether now falls inside the window. A window whose Start
// equals End is never active; Start > End wraps past midnight.
func (w Window) Active(now time.Time) bool {
	hour := now.In(w.Location).Hour()
	switch {
	case w.Start == w.End:
		return false
	case w.Start < w.End:
		return hour >= w.Start && hour < w.End
	default:
		return hour >= w.Start || hour < w.End
	}
}

// WakeTime returns the next instant the window closes, for reporting.
func (w Window) WakeTime(now time.Time) time.Time {
	local := now.In(w.Location)
	wake := time.Date(local.Year(), local.Month(), local.Day(), w.End, 0, 0, 0, w.Location)
	if !wake.After(local) {
		wake = wake.AddDate(0, 0, 1)
	}
	return wake
}
