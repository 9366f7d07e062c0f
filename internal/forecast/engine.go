// internal/forecast/engine.go
package forecast

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/andresuchdata/budgetcast/internal/domain"
)

// Event names accepted by the breakdown endpoints.
const (
	EventRamadan   = "ramadan"
	EventMuharram  = "muharram"
	EventEidAlAdha = "eid_al_adha"
)

// Config carries the lunar event placement for one budget run. The compare
// year is the historical year; the budget year is always the one after it.
type Config struct {
	CompareYear int `json:"compare_year"`

	RamadanCYStart time.Time `json:"ramadan_cy_start"`
	RamadanCYDays  int       `json:"ramadan_cy_days"`
	RamadanBYStart time.Time `json:"ramadan_by_start"`
	RamadanBYDays  int       `json:"ramadan_by_days"`

	MuharramCYStart time.Time `json:"muharram_cy_start"`
	MuharramCYDays  int       `json:"muharram_cy_days"`
	MuharramBYStart time.Time `json:"muharram_by_start"`
	MuharramBYDays  int       `json:"muharram_by_days"`

	EidAlAdhaCYStart time.Time `json:"eid_al_adha_cy_start"`
	EidAlAdhaBYStart time.Time `json:"eid_al_adha_by_start"`

	Options SelectorOptions `json:"options"`
}

// BudgetYear is the year the forecast is built for.
func (c Config) BudgetYear() int {
	return c.CompareYear + 1
}

// Validate rejects configurations the engine cannot compute from. All checks
// run before any data is touched so a bad request never reaches the ledger.
func (c Config) Validate() error {
	if c.CompareYear < 2000 || c.CompareYear > 2100 {
		return fmt.Errorf("compare year %d out of range", c.CompareYear)
	}
	windows := []struct {
		name  string
		start time.Time
		days  int
		year  int
	}{
		{"ramadan compare-year", c.RamadanCYStart, c.RamadanCYDays, c.CompareYear},
		{"ramadan budget-year", c.RamadanBYStart, c.RamadanBYDays, c.BudgetYear()},
		{"muharram compare-year", c.MuharramCYStart, c.MuharramCYDays, c.CompareYear},
		{"muharram budget-year", c.MuharramBYStart, c.MuharramBYDays, c.BudgetYear()},
		{"eid al-adha compare-year", c.EidAlAdhaCYStart, EidAlAdhaDays, c.CompareYear},
		{"eid al-adha budget-year", c.EidAlAdhaBYStart, EidAlAdhaDays, c.BudgetYear()},
	}
	for _, w := range windows {
		if w.start.IsZero() {
			return fmt.Errorf("%s window start is required", w.name)
		}
		if w.start.Year() != w.year {
			return fmt.Errorf("%s window must start in %d, got %d", w.name, w.year, w.start.Year())
		}
		if w.days < 1 || w.days > 45 {
			return fmt.Errorf("%s window length %d out of range", w.name, w.days)
		}
	}
	return nil
}

// Fingerprint is a stable digest of the configuration, used as part of cache
// keys so a changed event placement never serves stale results.
func (c Config) Fingerprint() string {
	h := sha256.New()
	fmt.Fprintf(h, "%d|%s|%d|%s|%d|%s|%d|%s|%d|%s|%s|%t",
		c.CompareYear,
		c.RamadanCYStart.Format("2006-01-02"), c.RamadanCYDays,
		c.RamadanBYStart.Format("2006-01-02"), c.RamadanBYDays,
		c.MuharramCYStart.Format("2006-01-02"), c.MuharramCYDays,
		c.MuharramBYStart.Format("2006-01-02"), c.MuharramBYDays,
		c.EidAlAdhaCYStart.Format("2006-01-02"),
		c.EidAlAdhaBYStart.Format("2006-01-02"),
		c.Options.WrapYearSearch,
	)
	return hex.EncodeToString(h.Sum(nil))
}

// Engine runs the full budget calculation for one branch's records.
type Engine struct {
	cfg Config
}

func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{cfg: cfg}, nil
}

func (e *Engine) ramadan() *Event {
	return NewRamadanEidEvent(
		NewWindow(e.cfg.RamadanCYStart, e.cfg.RamadanCYDays),
		NewWindow(e.cfg.RamadanBYStart, e.cfg.RamadanBYDays),
	)
}

func (e *Engine) muharram() *Event {
	return NewMuharramEvent(
		NewWindow(e.cfg.MuharramCYStart, e.cfg.MuharramCYDays),
		NewWindow(e.cfg.MuharramBYStart, e.cfg.MuharramBYDays),
	)
}

func (e *Engine) eidAlAdha() *Event {
	return NewEidAlAdhaEvent(e.cfg.EidAlAdhaCYStart, e.cfg.EidAlAdhaBYStart)
}

func (e *Engine) eventByName(name string) (*Event, error) {
	switch name {
	case EventRamadan:
		return e.ramadan(), nil
	case EventMuharram:
		return e.muharram(), nil
	case EventEidAlAdha:
		return e.eidAlAdha(), nil
	default:
		return nil, fmt.Errorf("unknown event %q", name)
	}
}

// Calculate produces the twelve merged month rows for one branch: descriptive
// compare-year actuals, the weekday-shift effect, and the three lunar event
// effects with their counterfactual baselines.
func (e *Engine) Calculate(records []domain.SalesRecord) []domain.MonthRow {
	ledger := NewDailyLedger(records)
	rows := NewSummarizer(records, e.cfg.CompareYear).MonthRows()

	ramadan := NewEstimator(e.ramadan(), ledger, e.cfg.CompareYear, e.cfg.Options).MonthlyEffects()
	muharram := NewEstimator(e.muharram(), ledger, e.cfg.CompareYear, e.cfg.Options).MonthlyEffects()
	eid2 := NewEstimator(e.eidAlAdha(), ledger, e.cfg.CompareYear, e.cfg.Options).MonthlyEffects()

	for i := range rows {
		m := rows[i].Month
		rows[i].TradeOnOff = TradeOnOff(ledger, e.cfg.CompareYear, m)

		if eff, ok := ramadan[m]; ok {
			rows[i].RamadanEidPct = ptr(eff.EffectPct)
			rows[i].EstSalesNoRamadan = baseline(rows[i].TotalSales, eff.EffectPct)
			setSalesCY(&rows[i], eff.Actual)
		}
		if eff, ok := muharram[m]; ok {
			rows[i].MuharramPct = ptr(eff.EffectPct)
			rows[i].EstSalesNoMuharram = baseline(rows[i].TotalSales, eff.EffectPct)
			setSalesCY(&rows[i], eff.Actual)
		}
		if eff, ok := eid2[m]; ok {
			rows[i].Eid2Pct = ptr(eff.EffectPct)
			rows[i].EstSalesNoEid2 = baseline(rows[i].TotalSales, eff.EffectPct)
			setSalesCY(&rows[i], eff.Actual)
		}
	}
	return rows
}

// DailyBreakdown returns the day-level detail for one event and month, or an
// error for an unknown event name. A month outside the event's plan yields an
// empty slice.
func (e *Engine) DailyBreakdown(records []domain.SalesRecord, event string, month int) ([]domain.DayDetail, error) {
	return e.DailyBreakdownLedger(NewDailyLedger(records), event, month)
}

// DailyBreakdownLedger is DailyBreakdown over an already-built ledger, for
// callers that load pre-aggregated daily facts instead of transactions.
func (e *Engine) DailyBreakdownLedger(ledger *DailyLedger, event string, month int) ([]domain.DayDetail, error) {
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("month %d out of range", month)
	}
	ev, err := e.eventByName(event)
	if err != nil {
		return nil, err
	}
	return NewEstimator(ev, ledger, e.cfg.CompareYear, e.cfg.Options).Breakdown(month), nil
}

// baseline strips an event effect back out of a month total:
// total == baseline * (1 + pct/100).
func baseline(total, pct float64) *float64 {
	factor := 1 + pct/100
	if factor == 0 {
		return nil
	}
	return ptr(round2(total / factor))
}

func setSalesCY(row *domain.MonthRow, actual float64) {
	if row.SalesCY == nil {
		row.SalesCY = ptr(actual)
	}
}

func ptr(v float64) *float64 {
	return &v
}
