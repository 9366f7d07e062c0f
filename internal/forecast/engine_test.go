package forecast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		CompareYear:      2025,
		RamadanCYStart:   Date(2025, time.March, 1),
		RamadanCYDays:    30,
		RamadanBYStart:   Date(2026, time.February, 18),
		RamadanBYDays:    30,
		MuharramCYStart:  Date(2025, time.July, 15),
		MuharramCYDays:   2,
		MuharramBYStart:  Date(2026, time.July, 4),
		MuharramBYDays:   2,
		EidAlAdhaCYStart: Date(2025, time.June, 7),
		EidAlAdhaBYStart: Date(2026, time.May, 27),
	}
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, validConfig().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"compare year out of range", func(c *Config) { c.CompareYear = 1970 }},
		{"missing window start", func(c *Config) { c.RamadanCYStart = time.Time{} }},
		{"window in wrong year", func(c *Config) { c.RamadanBYStart = Date(2025, time.February, 18) }},
		{"zero day count", func(c *Config) { c.MuharramCYDays = 0 }},
		{"absurd day count", func(c *Config) { c.RamadanCYDays = 90 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestConfigFingerprint(t *testing.T) {
	a := validConfig()
	b := validConfig()
	require.Equal(t, a.Fingerprint(), b.Fingerprint())

	b.RamadanBYStart = Date(2026, time.February, 19)
	assert.NotEqual(t, a.Fingerprint(), b.Fingerprint())

	c := validConfig()
	c.Options.WrapYearSearch = true
	assert.NotEqual(t, a.Fingerprint(), c.Fingerprint())
}

func TestNewEngineRejectsInvalidConfig(t *testing.T) {
	cfg := validConfig()
	cfg.RamadanCYDays = 0
	_, err := NewEngine(cfg)
	assert.Error(t, err)
}

func TestCalculateMergesEffects(t *testing.T) {
	engine, err := NewEngine(validConfig())
	require.NoError(t, err)

	records := flatYear(2025, 100)
	records = withGross(records, Date(2025, time.March, 1), Date(2025, time.March, 30), 150)
	records = withGross(records, Date(2025, time.March, 31), Date(2025, time.March, 31), 500)
	records = withGross(records, Date(2025, time.April, 1), Date(2025, time.April, 1), 400)
	records = withGross(records, Date(2025, time.April, 2), Date(2025, time.April, 2), 300)
	records = withGross(records, Date(2025, time.April, 3), Date(2025, time.April, 3), 200)

	rows := engine.Calculate(records)
	require.Len(t, rows, 12)

	apr := rows[3]
	require.NotNil(t, apr.RamadanEidPct)
	assert.InDelta(t, -16.67, *apr.RamadanEidPct, 0.001)
	require.NotNil(t, apr.SalesCY)
	assert.InDelta(t, 3600, *apr.SalesCY, 0.01)
	assert.Nil(t, apr.MuharramPct)
	assert.Nil(t, apr.Eid2Pct)

	// Counterfactual baseline inverts the effect exactly.
	require.NotNil(t, apr.EstSalesNoRamadan)
	assert.InDelta(t, apr.TotalSales, *apr.EstSalesNoRamadan*(1+*apr.RamadanEidPct/100), 0.5)

	jul := rows[6]
	assert.NotNil(t, jul.MuharramPct)
	assert.Nil(t, jul.RamadanEidPct)

	may := rows[4]
	assert.NotNil(t, may.Eid2Pct)
	require.NotNil(t, may.EstSalesNoEid2)

	// Months no event touches carry no effect columns.
	sep := rows[8]
	assert.Nil(t, sep.RamadanEidPct)
	assert.Nil(t, sep.MuharramPct)
	assert.Nil(t, sep.Eid2Pct)
	assert.Nil(t, sep.SalesCY)
	assert.NotNil(t, sep.TradeOnOff)
}

func TestCalculateEidAlAdhaMonth(t *testing.T) {
	engine, err := NewEngine(validConfig())
	require.NoError(t, err)

	records := flatYear(2025, 100)
	records = withGross(records, Date(2025, time.June, 5), Date(2025, time.June, 7), 300)

	rows := engine.Calculate(records)

	// The BY celebration sits in May; June only held the CY one.
	may := rows[4]
	require.NotNil(t, may.Eid2Pct)
	jun := rows[5]
	assert.Nil(t, jun.Eid2Pct)
}

func TestDailyBreakdown(t *testing.T) {
	engine, err := NewEngine(validConfig())
	require.NoError(t, err)

	records := flatYear(2025, 100)

	breakdown, err := engine.DailyBreakdown(records, EventRamadan, 3)
	require.NoError(t, err)
	assert.Len(t, breakdown, 31)

	breakdown, err = engine.DailyBreakdown(records, EventMuharram, 9)
	require.NoError(t, err)
	assert.Empty(t, breakdown)

	_, err = engine.DailyBreakdown(records, "christmas", 3)
	assert.Error(t, err)

	_, err = engine.DailyBreakdown(records, EventRamadan, 13)
	assert.Error(t, err)
}
