// internal/forecast/summary.go
package forecast

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/budgetcast/internal/domain"
)

// minMonthCoverage is the minimum share of a month's calendar days that must
// have sales data before the month's own actuals are trusted. Below it the
// prior year's same month is used instead.
const minMonthCoverage = 0.10

// Summarizer aggregates one branch's transaction rows into the descriptive
// month-level actuals of the budget worksheet.
type Summarizer struct {
	compareYear int
	months      map[monthKey]*monthAccum
}

type monthKey struct {
	year  int
	month int
}

type typeAccum struct {
	sales  float64
	orders map[string]bool
}

type monthAccum struct {
	sales    float64
	discount float64
	vat      float64
	guests   int
	orders   map[string]bool
	days     map[int]bool
	byType   map[string]*typeAccum
}

// NewSummarizer indexes the branch's rows by calendar month. Rows outside the
// compare year and the year before it are ignored; the prior year exists only
// to back the sparse-month fallback.
func NewSummarizer(records []domain.SalesRecord, compareYear int) *Summarizer {
	s := &Summarizer{
		compareYear: compareYear,
		months:      make(map[monthKey]*monthAccum),
	}
	for _, r := range records {
		y := r.BusinessDate.Year()
		if y != compareYear && y != compareYear-1 {
			continue
		}
		key := monthKey{year: y, month: int(r.BusinessDate.Month())}
		acc, ok := s.months[key]
		if !ok {
			acc = &monthAccum{
				orders: make(map[string]bool),
				days:   make(map[int]bool),
				byType: make(map[string]*typeAccum),
			}
			s.months[key] = acc
		}
		acc.sales += r.Gross
		acc.discount += r.Discount
		acc.vat += r.VAT
		acc.orders[r.OrderID] = true
		acc.days[r.BusinessDate.Day()] = true
		if r.OrderType == domain.OrderTypeDineIn {
			acc.guests += r.Guests
		}
		ta, ok := acc.byType[r.OrderType]
		if !ok {
			ta = &typeAccum{orders: make(map[string]bool)}
			acc.byType[r.OrderType] = ta
		}
		ta.sales += r.Gross
		ta.orders[r.OrderID] = true
	}
	return s
}

// MonthRows builds the twelve descriptive rows for the compare year. Months
// with under 10% day coverage are substituted with the prior year's same
// month and flagged.
func (s *Summarizer) MonthRows() []domain.MonthRow {
	rows := make([]domain.MonthRow, 0, 12)
	for m := 1; m <= 12; m++ {
		acc := s.months[monthKey{year: s.compareYear, month: m}]
		fallback := false
		if s.coverage(acc, s.compareYear, m) < minMonthCoverage {
			prior := s.months[monthKey{year: s.compareYear - 1, month: m}]
			if prior != nil {
				log.Debug().
					Int("month", m).
					Int("year", s.compareYear).
					Msg("Sparse month, using prior year actuals")
				acc = prior
			}
			fallback = true
		}
		rows = append(rows, buildRow(m, acc, fallback))
	}
	return rows
}

func (s *Summarizer) coverage(acc *monthAccum, year, month int) float64 {
	if acc == nil {
		return 0
	}
	return float64(len(acc.days)) / float64(DaysInMonth(year, time.Month(month)))
}

func buildRow(month int, acc *monthAccum, fallback bool) domain.MonthRow {
	row := domain.MonthRow{Month: month, UsedFallback: fallback}
	if acc == nil {
		return row
	}

	trans := len(acc.orders)
	row.TotalSales = round2(acc.sales)
	row.TotalTrans = trans
	row.AvgCheck = safeDiv(acc.sales, float64(trans))
	row.Discount = round2(acc.discount)
	row.DiscountPct = safeDiv(acc.discount*100, acc.sales)
	row.VAT = round2(acc.vat)
	row.NetSales = round2(acc.sales - acc.vat)
	row.CustomerCount = acc.guests

	if ta := acc.byType[domain.OrderTypeDineIn]; ta != nil {
		row.DiningSales = round2(ta.sales)
		row.DiningTrans = len(ta.orders)
		row.DiningAvgCheck = safeDiv(ta.sales, float64(len(ta.orders)))
		row.AvgPerCover = safeDiv(ta.sales, float64(acc.guests))
	}
	if ta := acc.byType[domain.OrderTypeDelivery]; ta != nil {
		row.DeliverySales = round2(ta.sales)
		row.DeliveryTrans = len(ta.orders)
		row.DeliveryAvgCheck = safeDiv(ta.sales, float64(len(ta.orders)))
	}
	if ta := acc.byType[domain.OrderTypeTakeaway]; ta != nil {
		row.TakeawaySales = round2(ta.sales)
		row.TakeawayTrans = len(ta.orders)
		row.TakeawayAvgCheck = safeDiv(ta.sales, float64(len(ta.orders)))
	}
	if ta := acc.byType[domain.OrderTypeDriveThru]; ta != nil {
		row.DriveThruSales = round2(ta.sales)
		row.DriveThruTrans = len(ta.orders)
		row.DriveThruAvgCheck = safeDiv(ta.sales, float64(len(ta.orders)))
	}
	if ta := acc.byType[domain.OrderTypeCatering]; ta != nil {
		row.CateringSales = round2(ta.sales)
		row.CateringTrans = len(ta.orders)
		row.CateringAvgCheck = safeDiv(ta.sales, float64(len(ta.orders)))
	}
	return row
}

func safeDiv(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return round2(num / den)
}

// TradeOnOff measures how the month's weekday composition shifts between the
// compare and budget years: the same weekday averages applied to the budget
// year's calendar give the expected total, and the effect is its deviation
// from the actual. Months under the coverage floor substitute the prior
// year's same month, matching the descriptive rows. Nil when neither year
// has usable averages.
func TradeOnOff(ledger *DailyLedger, compareYear, month int) *float64 {
	sourceYear := compareYear
	coverage := float64(ledger.MonthDays(compareYear, month)) / float64(DaysInMonth(compareYear, time.Month(month)))
	if coverage < minMonthCoverage && ledger.MonthDays(compareYear-1, month) > 0 {
		log.Debug().
			Int("month", month).
			Int("year", compareYear).
			Msg("Sparse month, using prior year for trade on/off")
		sourceYear = compareYear - 1
	}

	avgs := ledger.WeekdayAveragesMonth(sourceYear, month)
	if len(avgs) == 0 {
		return nil
	}
	budgetYear := compareYear + 1
	var expected float64
	for day := 1; day <= DaysInMonth(budgetYear, time.Month(month)); day++ {
		expected += avgs[Date(budgetYear, time.Month(month), day).Weekday()]
	}
	if expected == 0 {
		return nil
	}
	actual := ledger.MonthGross(sourceYear, month)
	v := round2((1 - actual/expected) * 100)
	return &v
}
