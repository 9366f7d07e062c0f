// internal/forecast/classifier.go
package forecast

import (
	"fmt"
	"time"
)

// DayCategory is the disjoint classification of a calendar day relative to
// one lunar event. Every date maps to exactly one category.
type DayCategory int

const (
	// DayNormal: the date is unrelated to the event.
	DayNormal DayCategory = iota
	// DayEvent: the date falls inside the event window itself.
	DayEvent
	// DayHoliday: the date falls inside the trailing post-event holiday
	// window (Ramadan's 4 Eid days; zero-length for other events).
	DayHoliday
	// DayAdjacent: the date shares a calendar month with an event boundary,
	// so whole-month averages over it would be contaminated.
	DayAdjacent
)

func (c DayCategory) String() string {
	switch c {
	case DayEvent:
		return "event"
	case DayHoliday:
		return "holiday"
	case DayAdjacent:
		return "adjacent"
	default:
		return "normal"
	}
}

// YearRole distinguishes the historical compare year from the forecast
// budget year when classifying a date.
type YearRole int

const (
	CompareYear YearRole = iota
	BudgetYear
)

// EventCalendar holds both year windows for one lunar event together with
// the classification quirks that differ between events.
type EventCalendar struct {
	Name string

	CY Window
	BY Window

	// HolidayDays is the length of the trailing holiday window (4 for
	// Ramadan/Eid, 0 otherwise).
	HolidayDays int

	// CrossYearAdjacency marks budget-year dates adjacent when they share a
	// month with the compare-year event's end. Without it, a BY month whose
	// CY counterpart was split between event and normal days would be
	// averaged as if the CY month were clean.
	CrossYearAdjacency bool
}

func (ec *EventCalendar) window(role YearRole) Window {
	if role == CompareYear {
		return ec.CY
	}
	return ec.BY
}

// Holiday returns the trailing holiday window for the given year role and
// whether the event has one at all.
func (ec *EventCalendar) Holiday(role YearRole) (Window, bool) {
	if ec.HolidayDays <= 0 {
		return Window{}, false
	}
	return ec.window(role).Trailing(ec.HolidayDays), true
}

// span is the full event reach: window plus trailing holiday if any.
func (ec *EventCalendar) span(role YearRole) (start, end Window) {
	w := ec.window(role)
	if hol, ok := ec.Holiday(role); ok {
		return w, hol
	}
	return w, w
}

// Classify maps a date to its category for the given year role. The caller
// passes compare-year dates with CompareYear and budget-year dates with
// BudgetYear; the function does not guess the role from the date.
func (ec *EventCalendar) Classify(d time.Time, role YearRole) DayCategory {
	day := Midnight(d)
	w := ec.window(role)

	if w.Contains(day) {
		return DayEvent
	}
	if hol, ok := ec.Holiday(role); ok && hol.Contains(day) {
		return DayHoliday
	}

	_, last := ec.span(role)
	if day.Month() == w.Start.Month() || day.Month() == last.End().Month() {
		return DayAdjacent
	}
	if role == BudgetYear && ec.CrossYearAdjacency && day.Month() == ec.CY.End().Month() {
		return DayAdjacent
	}
	return DayNormal
}

// AffectedMonths lists the months whose days classify as event, holiday or
// adjacent for the given role, in ascending order.
func (ec *EventCalendar) AffectedMonths(role YearRole) []int {
	seen := make(map[int]bool)
	w := ec.window(role)
	for _, m := range w.Months() {
		seen[m] = true
	}
	if hol, ok := ec.Holiday(role); ok {
		for _, m := range hol.Months() {
			seen[m] = true
		}
	}
	if role == BudgetYear && ec.CrossYearAdjacency {
		seen[int(ec.CY.End().Month())] = true
	}
	months := make([]int, 0, len(seen))
	for m := 1; m <= 12; m++ {
		if seen[m] {
			months = append(months, m)
		}
	}
	return months
}

// DirtyCYMonths lists compare-year months that contain at least one event or
// holiday day. A reference month must not be dirty.
func (ec *EventCalendar) DirtyCYMonths() map[int]bool {
	dirty := make(map[int]bool)
	for _, m := range ec.CY.Months() {
		dirty[m] = true
	}
	if hol, ok := ec.Holiday(CompareYear); ok {
		for _, m := range hol.Months() {
			dirty[m] = true
		}
	}
	return dirty
}

// Label renders a human-readable day label ("Ramadan Day 3", "Eid Day 1",
// "Normal Day") for the day-level breakdown.
func (ec *EventCalendar) Label(d time.Time, role YearRole) string {
	day := Midnight(d)
	w := ec.window(role)
	if n := w.Ordinal(day); n > 0 {
		return fmt.Sprintf("%s Day %d", ec.Name, n)
	}
	if hol, ok := ec.Holiday(role); ok {
		if n := hol.Ordinal(day); n > 0 {
			return fmt.Sprintf("Eid Day %d", n)
		}
	}
	return "Normal Day"
}
