package forecast

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/budgetcast/internal/domain"
)

func txn(d time.Time, gross float64) domain.SalesRecord {
	return domain.SalesRecord{
		BranchID:     1,
		OrderID:      fmt.Sprintf("%s-%.0f", d.Format("20060102"), gross),
		BusinessDate: d,
		OrderType:    domain.OrderTypeDineIn,
		Gross:        gross,
	}
}

// A day made of many small transactions must weigh the same as a day with
// one large one: averaging happens over daily totals, never over rows.
func TestLedgerAggregatesBeforeAveraging(t *testing.T) {
	mon1 := Date(2025, time.June, 2)
	mon2 := Date(2025, time.June, 9)

	records := []domain.SalesRecord{txn(mon1, 300)}
	for i := 0; i < 10; i++ {
		records = append(records, txn(mon2, 10))
	}

	ledger := NewDailyLedger(records)
	avgs := ledger.WeekdayAveragesMonth(2025, 6)

	// (300 + 100) / 2, not (300 + 10*10) / 11.
	require.InDelta(t, 200, avgs[time.Monday], 1e-9)
}

func TestLedgerGross(t *testing.T) {
	d := Date(2025, time.June, 2)
	ledger := NewDailyLedger([]domain.SalesRecord{txn(d, 100), txn(d, 50)})

	v, ok := ledger.Gross(d)
	require.True(t, ok)
	assert.InDelta(t, 150, v, 1e-9)

	_, ok = ledger.Gross(Date(2025, time.June, 3))
	assert.False(t, ok)
}

func TestWeekdayAveragesRange(t *testing.T) {
	records := []domain.SalesRecord{
		txn(Date(2025, time.April, 4), 100),  // Friday
		txn(Date(2025, time.April, 11), 200), // Friday
		txn(Date(2025, time.April, 2), 999),  // Wednesday, outside range
	}
	ledger := NewDailyLedger(records)

	avgs := ledger.WeekdayAveragesRange(DateRange{
		Start: Date(2025, time.April, 4),
		End:   Date(2025, time.April, 30),
	})

	require.InDelta(t, 150, avgs[time.Friday], 1e-9)
	_, ok := avgs[time.Wednesday]
	assert.False(t, ok)
}

func TestWeekdayAveragesEmptyWhenNoData(t *testing.T) {
	ledger := NewDailyLedger(nil)
	assert.Empty(t, ledger.WeekdayAveragesMonth(2025, 6))
	assert.Empty(t, ledger.WeekdayAveragesRange(DateRange{
		Start: Date(2025, time.June, 1),
		End:   Date(2025, time.June, 30),
	}))
}

func TestMonthGrossAndDays(t *testing.T) {
	records := []domain.SalesRecord{
		txn(Date(2025, time.June, 2), 100),
		txn(Date(2025, time.June, 2), 50),
		txn(Date(2025, time.June, 3), 75),
		txn(Date(2025, time.July, 1), 500),
	}
	ledger := NewDailyLedger(records)

	assert.InDelta(t, 225, ledger.MonthGross(2025, 6), 1e-9)
	assert.Equal(t, 2, ledger.MonthDays(2025, 6))
	assert.Equal(t, 1, ledger.MonthDays(2025, 7))
	assert.Equal(t, 0, ledger.MonthDays(2025, 8))
}
