// internal/forecast/events.go
package forecast

import "time"

// Event is an EventCalendar plus the per-event estimation policy. The three
// constructors below are the only places these policies are set; everything
// downstream is generic over *Event.
type Event struct {
	EventCalendar

	// EventDaysDirectCopy copies event-day sales by ordinal day number
	// instead of weekday averaging. Eid al-Adha's short window has its own
	// day-by-day rhythm that weekday means would flatten.
	EventDaysDirectCopy bool

	// SkipWhenSameMonth suppresses the whole calculation when the event
	// occupies the same Gregorian month in both years: month totals are
	// unaffected by a shift inside the month, so every effect is 0%.
	SkipWhenSameMonth bool

	// WidenSpilloverMonth forces the month the compare-year holiday spills
	// into onto the estimation plan even when no budget-year day classifies
	// into it. That month's budget-year days are normal, but their same-month
	// reference is contaminated and needs the holiday-excluded range.
	WidenSpilloverMonth bool
}

// NewRamadanEidEvent builds the Ramadan event: the fasting month followed by
// a 4-day Eid al-Fitr holiday. Cross-year adjacency and spillover widening
// are both on, since Ramadan's drift routinely splits months between years.
func NewRamadanEidEvent(cy, by Window) *Event {
	return &Event{
		EventCalendar: EventCalendar{
			Name:               "Ramadan",
			CY:                 cy,
			BY:                 by,
			HolidayDays:        4,
			CrossYearAdjacency: true,
		},
		WidenSpilloverMonth: true,
	}
}

// NewMuharramEvent builds the Islamic new year event. No trailing holiday.
func NewMuharramEvent(cy, by Window) *Event {
	return &Event{
		EventCalendar: EventCalendar{
			Name: "Muharram",
			CY:   cy,
			BY:   by,
		},
	}
}

// EidAlAdhaDays is the fixed celebration length; the start date shifts with
// the lunar calendar but the window never does.
const EidAlAdhaDays = 3

// NewEidAlAdhaEvent builds the Eid al-Adha event from its start dates.
func NewEidAlAdhaEvent(cyStart, byStart time.Time) *Event {
	return &Event{
		EventCalendar: EventCalendar{
			Name: "Eid al-Adha",
			CY:   NewWindow(cyStart, EidAlAdhaDays),
			BY:   NewWindow(byStart, EidAlAdhaDays),
		},
		EventDaysDirectCopy: true,
		SkipWhenSameMonth:   true,
	}
}

// SameMonth reports whether the event sits wholly inside the same Gregorian
// month in both years.
func (e *Event) SameMonth() bool {
	return !e.CY.CrossesMonth() && !e.BY.CrossesMonth() &&
		e.CY.Start.Month() == e.BY.Start.Month()
}

// WidenedMonths returns extra plan months required by the widening policy:
// months the compare-year holiday touches that no budget-year day already
// pulls in.
func (e *Event) WidenedMonths() []int {
	if !e.WidenSpilloverMonth {
		return nil
	}
	hol, ok := e.Holiday(CompareYear)
	if !ok {
		return nil
	}
	covered := make(map[int]bool)
	for _, m := range e.AffectedMonths(BudgetYear) {
		covered[m] = true
	}
	var extra []int
	for _, m := range hol.Months() {
		if !covered[m] {
			extra = append(extra, m)
		}
	}
	return extra
}
