// internal/forecast/plan.go
package forecast

import (
	"fmt"
	"time"
)

// RefMethod says how a budget-year day's estimate is produced.
type RefMethod int

const (
	// RefWeekdayAverage: mean daily gross per weekday over a reference
	// period, looked up by the budget day's weekday name.
	RefWeekdayAverage RefMethod = iota
	// RefDirectCopy: exact value of one compare-year date, matched by
	// ordinal day number inside the event or holiday window. Holiday sales
	// depend on which holiday day it is, not on the weekday it lands on.
	RefDirectCopy
)

// DayRef is the reference plan entry for one budget-year calendar day.
type DayRef struct {
	Date     time.Time
	Category DayCategory
	Method   RefMethod

	// Source describes the reference period for logs and breakdowns.
	Source string

	// Weekday-average sources: either whole compare-year months or an
	// explicit date range (used when holiday days must be excluded).
	SourceMonths []int
	SourceRange  *DateRange

	// Direct-copy mapping: 1-based ordinal within the window and the
	// compare-year date carrying the value.
	Ordinal int
	CYDate  time.Time
}

// Plan maps month -> day -> DayRef for every budget-year day in an affected
// month. Built once per (event, budget year) configuration and consumed
// immediately.
type Plan map[int]map[int]DayRef

// SelectorOptions tunes the reference month search.
type SelectorOptions struct {
	// WrapYearSearch lets the nearest-month search wrap across the year
	// boundary (January considers December and vice versa). Off by default
	// to match the historical behavior, which scans for any clean month
	// instead. See DESIGN.md.
	WrapYearSearch bool
}

// Selector decides, for each budget-year day, which compare-year period
// supplies its estimate and by which method.
type Selector struct {
	event       *Event
	compareYear int
	budgetYear  int
	opts        SelectorOptions
}

func NewSelector(event *Event, compareYear int, opts SelectorOptions) *Selector {
	return &Selector{
		event:       event,
		compareYear: compareYear,
		budgetYear:  compareYear + 1,
		opts:        opts,
	}
}

// BuildPlan computes the reference plan for all affected budget-year months
// plus any extra months forced in by the event's widening policy.
func (s *Selector) BuildPlan(extraMonths ...int) Plan {
	months := make(map[int]bool)
	for _, m := range s.event.AffectedMonths(BudgetYear) {
		months[m] = true
	}
	for _, m := range extraMonths {
		months[m] = true
	}

	plan := make(Plan, len(months))
	for m := 1; m <= 12; m++ {
		if !months[m] {
			continue
		}
		days := make(map[int]DayRef)
		for day := 1; day <= DaysInMonth(s.budgetYear, time.Month(m)); day++ {
			days[day] = s.DayRef(m, day)
		}
		plan[m] = days
	}
	return plan
}

// DayRef resolves the reference for one budget-year day. Decision order:
// holiday, event, then normal/adjacent; first match wins.
func (s *Selector) DayRef(month, day int) DayRef {
	d := Date(s.budgetYear, time.Month(month), day)
	cat := s.event.Classify(d, BudgetYear)

	switch cat {
	case DayHoliday:
		holBY, _ := s.event.Holiday(BudgetYear)
		holCY, _ := s.event.Holiday(CompareYear)
		ordinal := holBY.Ordinal(d)
		return DayRef{
			Date:     d,
			Category: cat,
			Method:   RefDirectCopy,
			Source:   fmt.Sprintf("CY Eid Day %d", ordinal),
			Ordinal:  ordinal,
			CYDate:   holCY.DayAt(ordinal),
		}

	case DayEvent:
		if s.event.EventDaysDirectCopy {
			ordinal := s.event.BY.Ordinal(d)
			return DayRef{
				Date:     d,
				Category: cat,
				Method:   RefDirectCopy,
				Source:   fmt.Sprintf("CY %s Day %d", s.event.Name, ordinal),
				Ordinal:  ordinal,
				CYDate:   s.event.CY.DayAt(ordinal),
			}
		}
		r := DateRange{Start: s.event.CY.Start, End: s.event.CY.End()}
		return DayRef{
			Date:        d,
			Category:    cat,
			Method:      RefWeekdayAverage,
			Source:      fmt.Sprintf("CY %s window", s.event.Name),
			SourceRange: &r,
		}

	default:
		return s.normalDayRef(d, month, cat)
	}
}

// normalDayRef picks the reference period for a normal or adjacent day: the
// same compare-year month when it is clean, the holiday-excluded remainder
// of a spillover month, or the nearest clean month otherwise.
func (s *Selector) normalDayRef(d time.Time, month int, cat DayCategory) DayRef {
	dirty := s.event.DirtyCYMonths()

	if !dirty[month] {
		return DayRef{
			Date:         d,
			Category:     cat,
			Method:       RefWeekdayAverage,
			Source:       fmt.Sprintf("CY %s", time.Month(month)),
			SourceMonths: []int{month},
		}
	}

	if r, ok := s.holidayRemainder(month); ok {
		return DayRef{
			Date:        d,
			Category:    cat,
			Method:      RefWeekdayAverage,
			Source:      fmt.Sprintf("CY %s excluding holiday days", time.Month(month)),
			SourceRange: &r,
		}
	}

	if m, ok := s.nearestCleanMonth(month, dirty); ok {
		return DayRef{
			Date:         d,
			Category:     cat,
			Method:       RefWeekdayAverage,
			Source:       fmt.Sprintf("CY %s", time.Month(m)),
			SourceMonths: []int{m},
		}
	}

	// No clean month anywhere; the estimator falls back to actuals per day.
	return DayRef{
		Date:     d,
		Category: cat,
		Method:   RefWeekdayAverage,
		Source:   "no clean reference month",
	}
}

// holidayRemainder handles the month the trailing holiday spills into: its
// compare-year data minus the holiday's own days is still a valid "normal
// day" reference, whereas the whole month would be contaminated by the few
// holiday-classified days at its start.
func (s *Selector) holidayRemainder(month int) (DateRange, bool) {
	hol, ok := s.event.Holiday(CompareYear)
	if !ok {
		return DateRange{}, false
	}
	// Only applies when the event itself ends before this month, i.e. the
	// month's only dirty days are the spilled-over holiday days.
	if int(s.event.CY.End().Month()) == month || int(hol.End().Month()) != month {
		return DateRange{}, false
	}
	start := hol.End().AddDate(0, 0, 1)
	end := Date(start.Year(), time.Month(month), DaysInMonth(start.Year(), time.Month(month)))
	if start.After(end) {
		return DateRange{}, false
	}
	return DateRange{Start: start, End: end}, true
}

// nearestCleanMonth searches outward ±1..±6 months, earlier month first at
// each distance, for a compare-year month with no event or holiday days.
// Falls back to the first clean month scanning January through December.
func (s *Selector) nearestCleanMonth(month int, dirty map[int]bool) (int, bool) {
	for offset := 1; offset <= 6; offset++ {
		for _, dir := range []int{-1, 1} {
			m := month + offset*dir
			if s.opts.WrapYearSearch {
				m = ((m-1)%12+12)%12 + 1
			} else if m < 1 || m > 12 {
				continue
			}
			if !dirty[m] {
				return m, true
			}
		}
	}
	for m := 1; m <= 12; m++ {
		if !dirty[m] {
			return m, true
		}
	}
	return 0, false
}
