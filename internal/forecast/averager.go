// internal/forecast/averager.go
package forecast

import (
	"time"

	"github.com/andresuchdata/budgetcast/internal/domain"
)

// DateRange is an inclusive span of business dates used as a reference
// period (e.g. "April 4th through April 30th").
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether d falls inside the range.
func (r DateRange) Contains(d time.Time) bool {
	d = Midnight(d)
	return !d.Before(r.Start) && !d.After(r.End)
}

// DailyLedger holds one branch's sales pre-aggregated to daily totals.
// Transaction rows must never be averaged directly: a date with many small
// orders would otherwise drag the weekday mean down, so rows are summed per
// business date before any averaging happens.
type DailyLedger struct {
	totals map[time.Time]float64
}

// NewDailyLedger sums the branch's transaction rows to one total per
// business date.
func NewDailyLedger(records []domain.SalesRecord) *DailyLedger {
	totals := make(map[time.Time]float64)
	for _, r := range records {
		totals[Midnight(r.BusinessDate)] += r.Gross
	}
	return &DailyLedger{totals: totals}
}

// NewDailyLedgerFromFacts builds a ledger from pre-aggregated branch-day
// rows, skipping the per-transaction summing.
func NewDailyLedgerFromFacts(facts []domain.DailySalesFact) *DailyLedger {
	totals := make(map[time.Time]float64, len(facts))
	for _, f := range facts {
		totals[Midnight(f.BusinessDate)] += f.Gross
	}
	return &DailyLedger{totals: totals}
}

// Gross returns the daily total for a date and whether the ledger has any
// data for it.
func (l *DailyLedger) Gross(d time.Time) (float64, bool) {
	v, ok := l.totals[Midnight(d)]
	return v, ok
}

// Dates returns every business date present in the ledger, unordered.
func (l *DailyLedger) Dates() []time.Time {
	dates := make([]time.Time, 0, len(l.totals))
	for d := range l.totals {
		dates = append(dates, d)
	}
	return dates
}

// WeekdayAveragesRange computes the mean daily gross per weekday over the
// ledger dates inside the range. Dates absent from the ledger contribute
// nothing. Returns an empty map when no date matches; callers fall back.
func (l *DailyLedger) WeekdayAveragesRange(r DateRange) map[time.Weekday]float64 {
	sums := make(map[time.Weekday]float64)
	counts := make(map[time.Weekday]int)
	for d, gross := range l.totals {
		if !r.Contains(d) {
			continue
		}
		wd := d.Weekday()
		sums[wd] += gross
		counts[wd]++
	}
	return divideSums(sums, counts)
}

// WeekdayAveragesMonth computes the mean daily gross per weekday over one
// calendar month of one year.
func (l *DailyLedger) WeekdayAveragesMonth(year, month int) map[time.Weekday]float64 {
	return l.WeekdayAveragesMonths(year, month)
}

// WeekdayAveragesMonths computes the mean daily gross per weekday over a set
// of calendar months of one year, not necessarily contiguous.
func (l *DailyLedger) WeekdayAveragesMonths(year int, months ...int) map[time.Weekday]float64 {
	want := make(map[int]bool, len(months))
	for _, m := range months {
		want[m] = true
	}
	sums := make(map[time.Weekday]float64)
	counts := make(map[time.Weekday]int)
	for d, gross := range l.totals {
		if d.Year() != year || !want[int(d.Month())] {
			continue
		}
		wd := d.Weekday()
		sums[wd] += gross
		counts[wd]++
	}
	return divideSums(sums, counts)
}

func divideSums(sums map[time.Weekday]float64, counts map[time.Weekday]int) map[time.Weekday]float64 {
	avgs := make(map[time.Weekday]float64, len(sums))
	for wd, sum := range sums {
		if counts[wd] > 0 {
			avgs[wd] = sum / float64(counts[wd])
		}
	}
	return avgs
}

// MonthGross sums daily totals over one calendar month of one year.
func (l *DailyLedger) MonthGross(year, month int) float64 {
	var total float64
	for d, gross := range l.totals {
		if d.Year() == year && int(d.Month()) == month {
			total += gross
		}
	}
	return total
}

// MonthDays counts the distinct ledger dates in one calendar month of one
// year, used for data-coverage checks.
func (l *DailyLedger) MonthDays(year, month int) int {
	var n int
	for d := range l.totals {
		if d.Year() == year && int(d.Month()) == month {
			n++
		}
	}
	return n
}
