package forecast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/budgetcast/internal/domain"
)

func order(d time.Time, id, orderType string, gross, discount, vat float64, guests int) domain.SalesRecord {
	return domain.SalesRecord{
		BranchID:     1,
		OrderID:      id,
		BusinessDate: d,
		OrderType:    orderType,
		Gross:        gross,
		Discount:     discount,
		VAT:          vat,
		Guests:       guests,
	}
}

func TestMonthRowTotalsAndSplits(t *testing.T) {
	d := Date(2025, time.June, 10)
	records := []domain.SalesRecord{
		order(d, "a1", domain.OrderTypeDineIn, 200, 20, 22, 4),
		order(d, "a2", domain.OrderTypeDineIn, 100, 0, 11, 2),
		order(d, "a3", domain.OrderTypeDelivery, 80, 0, 8.8, 0),
		order(d, "a4", domain.OrderTypeTakeaway, 50, 5, 5.5, 0),
		order(d, "a5", domain.OrderTypeDriveThru, 40, 0, 4.4, 0),
		order(d, "a6", domain.OrderTypeCatering, 500, 0, 55, 0),
	}

	rows := NewSummarizer(records, 2025).MonthRows()
	require.Len(t, rows, 12)

	jun := rows[5]
	require.Equal(t, 6, jun.Month)
	assert.InDelta(t, 970, jun.TotalSales, 0.01)
	assert.Equal(t, 6, jun.TotalTrans)
	assert.InDelta(t, 161.67, jun.AvgCheck, 0.01)
	assert.InDelta(t, 25, jun.Discount, 0.01)
	assert.InDelta(t, 2.58, jun.DiscountPct, 0.01)
	assert.InDelta(t, 106.7, jun.VAT, 0.01)
	assert.InDelta(t, 863.3, jun.NetSales, 0.01)

	assert.InDelta(t, 300, jun.DiningSales, 0.01)
	assert.Equal(t, 2, jun.DiningTrans)
	assert.InDelta(t, 150, jun.DiningAvgCheck, 0.01)
	assert.Equal(t, 6, jun.CustomerCount)
	assert.InDelta(t, 50, jun.AvgPerCover, 0.01)

	assert.InDelta(t, 80, jun.DeliverySales, 0.01)
	assert.Equal(t, 1, jun.DeliveryTrans)
	assert.InDelta(t, 50, jun.TakeawaySales, 0.01)
	assert.InDelta(t, 40, jun.DriveThruSales, 0.01)
	assert.InDelta(t, 500, jun.CateringSales, 0.01)

	// One day of data out of thirty is under the coverage floor; with no
	// prior-year June the row still flags the substitution attempt.
	assert.True(t, jun.UsedFallback)
}

func TestMonthRowCoverage(t *testing.T) {
	var records []domain.SalesRecord
	for day := 1; day <= 4; day++ {
		records = append(records, txn(Date(2025, time.June, day), 100))
	}
	rows := NewSummarizer(records, 2025).MonthRows()

	// 4 of 30 days is 13%, above the floor: the month stands on its own.
	jun := rows[5]
	assert.False(t, jun.UsedFallback)
	assert.InDelta(t, 400, jun.TotalSales, 0.01)
}

func TestMonthRowSparseFallsBackToPriorYear(t *testing.T) {
	records := []domain.SalesRecord{
		txn(Date(2025, time.June, 1), 999), // 1 of 30 days, too sparse
	}
	for day := 1; day <= 30; day++ {
		records = append(records, txn(Date(2024, time.June, day), 100))
	}

	rows := NewSummarizer(records, 2025).MonthRows()

	jun := rows[5]
	assert.True(t, jun.UsedFallback)
	assert.InDelta(t, 3000, jun.TotalSales, 0.01)
}

func TestMonthRowEmptyMonth(t *testing.T) {
	rows := NewSummarizer(nil, 2025).MonthRows()

	sep := rows[8]
	assert.Equal(t, 9, sep.Month)
	assert.True(t, sep.UsedFallback)
	assert.Zero(t, sep.TotalSales)
	assert.Zero(t, sep.TotalTrans)
}

func TestTradeOnOff(t *testing.T) {
	// March 2025 has 10 weekend days, March 2026 only 9; with weekends at
	// 200 and weekdays at 100 the same averages over the 2026 calendar give
	// 4000 against 4100 actual.
	var records []domain.SalesRecord
	for day := 1; day <= 31; day++ {
		d := Date(2025, time.March, day)
		gross := 100.0
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			gross = 200.0
		}
		records = append(records, txn(d, gross))
	}
	ledger := NewDailyLedger(records)

	v := TradeOnOff(ledger, 2025, 3)
	require.NotNil(t, v)
	assert.InDelta(t, -2.5, *v, 0.001)
}

func TestTradeOnOffSparseFallsBackToPriorYear(t *testing.T) {
	records := []domain.SalesRecord{
		txn(Date(2025, time.March, 1), 999), // 1 of 31 days, too sparse
	}
	// March 2024 has the same weekend shape as March 2025, so the effect
	// against the 2026 calendar must come out identical to TestTradeOnOff.
	for day := 1; day <= 31; day++ {
		d := Date(2024, time.March, day)
		gross := 100.0
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			gross = 200.0
		}
		records = append(records, txn(d, gross))
	}
	ledger := NewDailyLedger(records)

	v := TradeOnOff(ledger, 2025, 3)
	require.NotNil(t, v)
	assert.InDelta(t, -2.5, *v, 0.001)
}

func TestTradeOnOffSparseWithoutPriorYear(t *testing.T) {
	// No prior-year March to fall back on: the lone Thursday stands in for
	// all four 2026 Thursdays and nothing else.
	ledger := NewDailyLedger([]domain.SalesRecord{txn(Date(2025, time.March, 6), 999)})

	v := TradeOnOff(ledger, 2025, 3)
	require.NotNil(t, v)
	assert.InDelta(t, 75.0, *v, 0.001)
}

func TestTradeOnOffNilWithoutData(t *testing.T) {
	assert.Nil(t, TradeOnOff(NewDailyLedger(nil), 2025, 3))
}
