// internal/forecast/estimator.go
package forecast

import (
	"math"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/budgetcast/internal/domain"
)

// EstimateOutcome tags how a day's estimate was obtained, so silent
// degradations stay visible in logs and breakdowns.
type EstimateOutcome int

const (
	// OutcomeEstimated: the estimate came from the planned reference.
	OutcomeEstimated EstimateOutcome = iota
	// OutcomeFallbackActual: the reference had no usable data and the
	// compare-year actual was used as-is.
	OutcomeFallbackActual
)

// DayEstimate pairs one budget-year day's planned reference with the values
// the estimator produced for it.
type DayEstimate struct {
	Ref DayRef

	// CYDate is the same calendar day in the compare year; its sales are
	// the "actual" side of the effect calculation.
	CYDate time.Time

	Actual   float64
	Estimate float64
	Outcome  EstimateOutcome
	Reason   string

	// HasData is false when the compare year recorded no sales on the day
	// at all. Such days are excluded from both sides of the month totals
	// rather than counted as zero.
	HasData bool
}

// MonthlyEffect is one month's event effect: the compare-year actuals, the
// event-adjusted estimate for the budget year, and the resulting percentage.
type MonthlyEffect struct {
	Month     int     `json:"month"`
	Actual    float64 `json:"actual"`
	Estimated float64 `json:"estimated"`
	EffectPct float64 `json:"effect_pct"`
}

// Estimator computes one event's effect for one branch ledger.
type Estimator struct {
	event       *Event
	ledger      *DailyLedger
	compareYear int
	budgetYear  int
	selector    *Selector

	planOnce Plan
	avgCache map[string]map[time.Weekday]float64
}

func NewEstimator(event *Event, ledger *DailyLedger, compareYear int, opts SelectorOptions) *Estimator {
	return &Estimator{
		event:       event,
		ledger:      ledger,
		compareYear: compareYear,
		budgetYear:  compareYear + 1,
		selector:    NewSelector(event, compareYear, opts),
		avgCache:    make(map[string]map[time.Weekday]float64),
	}
}

// MonthlyEffects computes the effect for every month on the estimation plan,
// keyed by month number.
func (e *Estimator) MonthlyEffects() map[int]MonthlyEffect {
	effects := make(map[int]MonthlyEffect)

	// A shift inside one month cannot move the month total.
	if e.event.SkipWhenSameMonth && e.event.SameMonth() {
		for _, m := range e.event.AffectedMonths(BudgetYear) {
			gross := round2(e.ledger.MonthGross(e.compareYear, m))
			effects[m] = MonthlyEffect{Month: m, Actual: gross, Estimated: gross}
		}
		return effects
	}

	plan := e.plan()
	for m := range plan {
		var act, est float64
		for _, de := range e.dayEstimates(plan, m) {
			if !de.HasData {
				continue
			}
			act += de.Actual
			est += de.Estimate
		}
		effects[m] = MonthlyEffect{
			Month:     m,
			Actual:    round2(act),
			Estimated: round2(est),
			EffectPct: effectPct(act, est),
		}
	}
	return effects
}

// Breakdown returns the day-level detail rows for one plan month, or nil when
// the month is not on the plan (or the same-month skip applies).
func (e *Estimator) Breakdown(month int) []domain.DayDetail {
	if e.event.SkipWhenSameMonth && e.event.SameMonth() {
		return nil
	}
	plan := e.plan()
	if _, ok := plan[month]; !ok {
		return nil
	}
	ests := e.dayEstimates(plan, month)
	details := make([]domain.DayDetail, 0, len(ests))
	for _, de := range ests {
		details = append(details, domain.DayDetail{
			Day:        de.Ref.Date.Day(),
			DateCY:     de.CYDate.Format("2006-01-02"),
			DateBY:     de.Ref.Date.Format("2006-01-02"),
			DayName:    de.Ref.Date.Weekday().String(),
			SalesCY:    round2(de.Actual),
			EstSalesBY: round2(de.Estimate),
			Source:     de.Ref.Source,
			LabelCY:    e.event.Label(de.CYDate, CompareYear),
			LabelBY:    e.event.Label(de.Ref.Date, BudgetYear),
		})
	}
	return details
}

// Months lists the plan months in ascending order.
func (e *Estimator) Months() []int {
	if e.event.SkipWhenSameMonth && e.event.SameMonth() {
		return e.event.AffectedMonths(BudgetYear)
	}
	plan := e.plan()
	months := make([]int, 0, len(plan))
	for m := 1; m <= 12; m++ {
		if _, ok := plan[m]; ok {
			months = append(months, m)
		}
	}
	return months
}

func (e *Estimator) plan() Plan {
	if e.planOnce == nil {
		e.planOnce = e.selector.BuildPlan(e.event.WidenedMonths()...)
	}
	return e.planOnce
}

func (e *Estimator) dayEstimates(plan Plan, month int) []DayEstimate {
	days := plan[month]
	out := make([]DayEstimate, 0, len(days))
	for day := 1; day <= len(days); day++ {
		ref := days[day]
		cyDate := ShiftYear(ref.Date, e.compareYear)
		actual, ok := e.ledger.Gross(cyDate)
		de := DayEstimate{Ref: ref, CYDate: cyDate, Actual: actual, HasData: ok}
		if !ok {
			out = append(out, de)
			continue
		}

		switch ref.Method {
		case RefDirectCopy:
			if v, found := e.ledger.Gross(ref.CYDate); found {
				de.Estimate = v
			} else {
				de.Estimate = actual
				de.Outcome = OutcomeFallbackActual
				de.Reason = "no sales on copy source date"
			}
		default:
			avgs := e.averagesFor(ref)
			if v, found := avgs[ref.Date.Weekday()]; found {
				de.Estimate = v
			} else {
				de.Estimate = actual
				de.Outcome = OutcomeFallbackActual
				de.Reason = "no weekday average in reference period"
			}
		}

		if de.Outcome == OutcomeFallbackActual {
			log.Debug().
				Str("event", e.event.Name).
				Str("date", ref.Date.Format("2006-01-02")).
				Str("source", ref.Source).
				Str("reason", de.Reason).
				Msg("Day estimate fell back to actuals")
		}
		out = append(out, de)
	}
	return out
}

func (e *Estimator) averagesFor(ref DayRef) map[time.Weekday]float64 {
	if avgs, ok := e.avgCache[ref.Source]; ok {
		return avgs
	}
	var avgs map[time.Weekday]float64
	switch {
	case ref.SourceRange != nil:
		avgs = e.ledger.WeekdayAveragesRange(*ref.SourceRange)
	case len(ref.SourceMonths) > 0:
		avgs = e.ledger.WeekdayAveragesMonths(e.compareYear, ref.SourceMonths...)
	default:
		avgs = map[time.Weekday]float64{}
	}
	e.avgCache[ref.Source] = avgs
	return avgs
}

// effectPct computes the month effect percentage. Zero compare-year sales
// mean there is nothing to scale, so the effect is 0 rather than undefined.
func effectPct(actual, estimated float64) float64 {
	if actual == 0 {
		return 0
	}
	return round2((estimated - actual) / actual * 100)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
