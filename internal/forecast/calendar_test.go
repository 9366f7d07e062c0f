package forecast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindowBounds(t *testing.T) {
	w := NewWindow(Date(2025, time.March, 1), 30)

	assert.Equal(t, Date(2025, time.March, 30), w.End())
	assert.True(t, w.Contains(Date(2025, time.March, 1)))
	assert.True(t, w.Contains(Date(2025, time.March, 30)))
	assert.False(t, w.Contains(Date(2025, time.February, 28)))
	assert.False(t, w.Contains(Date(2025, time.March, 31)))
}

func TestWindowOrdinal(t *testing.T) {
	w := NewWindow(Date(2025, time.March, 1), 30)

	assert.Equal(t, 1, w.Ordinal(Date(2025, time.March, 1)))
	assert.Equal(t, 30, w.Ordinal(Date(2025, time.March, 30)))
	assert.Equal(t, 0, w.Ordinal(Date(2025, time.April, 1)))
	assert.Equal(t, Date(2025, time.March, 15), w.DayAt(15))
}

func TestWindowTrailing(t *testing.T) {
	w := NewWindow(Date(2025, time.March, 1), 30)
	hol := w.Trailing(4)

	assert.Equal(t, Date(2025, time.March, 31), hol.Start)
	assert.Equal(t, Date(2025, time.April, 3), hol.End())
	assert.Equal(t, []int{3, 4}, hol.Months())
	assert.True(t, hol.CrossesMonth())
}

func TestWindowMonthsSingle(t *testing.T) {
	w := NewWindow(Date(2025, time.June, 7), 3)

	assert.Equal(t, []int{6}, w.Months())
	assert.False(t, w.CrossesMonth())
}

func TestShiftYear(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		year int
		want time.Time
	}{
		{"plain date", Date(2026, time.April, 15), 2025, Date(2025, time.April, 15)},
		{"leap day to leap year", Date(2024, time.February, 29), 2028, Date(2028, time.February, 29)},
		{"leap day to common year", Date(2024, time.February, 29), 2025, Date(2025, time.February, 28)},
		{"feb 28 unchanged", Date(2025, time.February, 28), 2024, Date(2024, time.February, 28)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShiftYear(tt.in, tt.year))
		})
	}
}

func TestDaysInMonth(t *testing.T) {
	assert.Equal(t, 28, DaysInMonth(2025, time.February))
	assert.Equal(t, 29, DaysInMonth(2024, time.February))
	assert.Equal(t, 31, DaysInMonth(2025, time.March))
	assert.Equal(t, 30, DaysInMonth(2025, time.April))
}

func TestMidnightNormalizes(t *testing.T) {
	ts := time.Date(2025, time.March, 5, 14, 30, 12, 0, time.UTC)
	require.Equal(t, Date(2025, time.March, 5), Midnight(ts))
}
