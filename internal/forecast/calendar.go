// internal/forecast/calendar.go
package forecast

import "time"

// Window is an inclusive run of calendar days occupied by a lunar event in
// one Gregorian year (e.g. Ramadan 2025-03-01 for 30 days).
type Window struct {
	Start time.Time
	Days  int
}

// NewWindow builds a window from a start date and a day count. The caller
// validates day counts at the boundary; the engine assumes Days >= 1.
func NewWindow(start time.Time, days int) Window {
	return Window{Start: Midnight(start), Days: days}
}

// End returns the last day inside the window.
func (w Window) End() time.Time {
	return w.Start.AddDate(0, 0, w.Days-1)
}

// Contains reports whether d falls inside the window (inclusive).
func (w Window) Contains(d time.Time) bool {
	d = Midnight(d)
	return !d.Before(w.Start) && !d.After(w.End())
}

// Ordinal returns the 1-based day number of d within the window, or 0 when
// d lies outside it.
func (w Window) Ordinal(d time.Time) int {
	if !w.Contains(d) {
		return 0
	}
	return int(Midnight(d).Sub(w.Start).Hours()/24) + 1
}

// DayAt returns the date of the 1-based ordinal day of the window.
func (w Window) DayAt(ordinal int) time.Time {
	return w.Start.AddDate(0, 0, ordinal-1)
}

// Trailing returns the window of `days` days immediately following this one,
// with no gap. Ramadan's 4-day Eid holiday is Trailing(4).
func (w Window) Trailing(days int) Window {
	return Window{Start: w.End().AddDate(0, 0, 1), Days: days}
}

// Months returns the distinct month numbers the window touches, in order.
func (w Window) Months() []int {
	var months []int
	seen := make(map[int]bool)
	for d := w.Start; !d.After(w.End()); d = d.AddDate(0, 0, 1) {
		m := int(d.Month())
		if !seen[m] {
			seen[m] = true
			months = append(months, m)
		}
	}
	return months
}

// CrossesMonth reports whether the window spans a month boundary.
func (w Window) CrossesMonth() bool {
	return w.Start.Month() != w.End().Month() || w.Start.Year() != w.End().Year()
}

// Date builds a UTC-midnight date, the canonical form for all business dates
// inside the engine.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Midnight truncates a timestamp to its UTC calendar date.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ShiftYear moves a date to another year keeping month and day. Feb 29 maps
// to Feb 28 when the target year is not a leap year; no other date changes.
func ShiftYear(d time.Time, year int) time.Time {
	if d.Month() == time.February && d.Day() == 29 && !isLeapYear(year) {
		return Date(year, time.February, 28)
	}
	return Date(year, d.Month(), d.Day())
}

// DaysInMonth returns the number of calendar days in (year, month).
func DaysInMonth(year int, month time.Month) int {
	return Date(year, month, 1).AddDate(0, 1, -1).Day()
}

func isLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}
