package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/budgetcast/internal/domain"
	"github.com/andresuchdata/budgetcast/internal/forecast"
)

type fakeSalesRepo struct {
	brands    []domain.Brand
	branches  []domain.Branch
	records   map[int64][]domain.SalesRecord
	loadCalls int
}

func (f *fakeSalesRepo) GetBrands(ctx context.Context) ([]domain.Brand, error) {
	return f.brands, nil
}

func (f *fakeSalesRepo) GetBranches(ctx context.Context, brandIDs []int64) ([]domain.Branch, error) {
	if len(brandIDs) == 0 {
		return f.branches, nil
	}
	want := make(map[int64]bool, len(brandIDs))
	for _, id := range brandIDs {
		want[id] = true
	}
	var out []domain.Branch
	for _, b := range f.branches {
		if want[b.BrandID] {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeSalesRepo) GetSalesRecords(ctx context.Context, branchID int64, yearFrom, yearTo int) ([]domain.SalesRecord, error) {
	f.loadCalls++
	return f.records[branchID], nil
}

func (f *fakeSalesRepo) GetDailyFacts(ctx context.Context, branchID int64, yearFrom, yearTo int) ([]domain.DailySalesFact, error) {
	totals := make(map[time.Time]float64)
	for _, r := range f.records[branchID] {
		if r.BusinessDate.Year() >= yearFrom && r.BusinessDate.Year() <= yearTo {
			totals[r.BusinessDate] += r.Gross
		}
	}
	var facts []domain.DailySalesFact
	for d, gross := range totals {
		facts = append(facts, domain.DailySalesFact{
			BranchID:     branchID,
			BusinessDate: d,
			WeekdayName:  d.Weekday().String(),
			Gross:        gross,
		})
	}
	return facts, nil
}

type memBudgetCache struct {
	entries map[string]*domain.BranchBudget
}

func newMemBudgetCache() *memBudgetCache {
	return &memBudgetCache{entries: make(map[string]*domain.BranchBudget)}
}

func (m *memBudgetCache) key(branchID int64, fingerprint string) string {
	return fmt.Sprintf("%d:%s", branchID, fingerprint)
}

func (m *memBudgetCache) GetBudget(ctx context.Context, branchID int64, fingerprint string) (*domain.BranchBudget, bool, error) {
	b, ok := m.entries[m.key(branchID, fingerprint)]
	return b, ok, nil
}

func (m *memBudgetCache) SetBudget(ctx context.Context, branchID int64, fingerprint string, budget *domain.BranchBudget) error {
	m.entries[m.key(branchID, fingerprint)] = budget
	return nil
}

func (m *memBudgetCache) InvalidateBranch(ctx context.Context, branchID int64) error {
	prefix := fmt.Sprintf("%d:", branchID)
	for k := range m.entries {
		if strings.HasPrefix(k, prefix) {
			delete(m.entries, k)
		}
	}
	return nil
}

func (m *memBudgetCache) InvalidateAll(ctx context.Context) error {
	m.entries = make(map[string]*domain.BranchBudget)
	return nil
}

func yearOfSales(branchID int64, year int, gross float64) []domain.SalesRecord {
	var records []domain.SalesRecord
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	for d := start; d.Year() == year; d = d.AddDate(0, 0, 1) {
		records = append(records, domain.SalesRecord{
			BranchID:     branchID,
			OrderID:      fmt.Sprintf("%d-%s", branchID, d.Format("20060102")),
			BusinessDate: d,
			OrderType:    domain.OrderTypeDineIn,
			Gross:        gross,
			Guests:       2,
		})
	}
	return records
}

func testConfig() forecast.Config {
	return forecast.Config{
		CompareYear:      2025,
		RamadanCYStart:   time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC),
		RamadanCYDays:    30,
		RamadanBYStart:   time.Date(2026, time.February, 18, 0, 0, 0, 0, time.UTC),
		RamadanBYDays:    30,
		MuharramCYStart:  time.Date(2025, time.July, 15, 0, 0, 0, 0, time.UTC),
		MuharramCYDays:   2,
		MuharramBYStart:  time.Date(2026, time.July, 4, 0, 0, 0, 0, time.UTC),
		MuharramBYDays:   2,
		EidAlAdhaCYStart: time.Date(2025, time.June, 7, 0, 0, 0, 0, time.UTC),
		EidAlAdhaBYStart: time.Date(2026, time.May, 27, 0, 0, 0, 0, time.UTC),
	}
}

func testRepo() *fakeSalesRepo {
	return &fakeSalesRepo{
		brands: []domain.Brand{
			{ID: 1, Name: "Padang Raya"},
			{ID: 2, Name: "Nusantara Grill"},
		},
		branches: []domain.Branch{
			{ID: 10, BrandID: 1, Name: "Jakarta Pusat"},
			{ID: 11, BrandID: 1, Name: "Bandung"},
			{ID: 20, BrandID: 2, Name: "Surabaya"},
		},
		records: map[int64][]domain.SalesRecord{
			10: yearOfSales(10, 2025, 100),
			11: yearOfSales(11, 2025, 200),
			20: yearOfSales(20, 2025, 300),
		},
	}
}

func TestCalculateGroupsByBrand(t *testing.T) {
	svc := NewBudgetService(testRepo(), nil, nil, "")

	budgets, err := svc.Calculate(context.Background(), testConfig(), nil)
	require.NoError(t, err)
	require.Len(t, budgets, 2)

	assert.Equal(t, "Padang Raya", budgets[0].BrandName)
	require.Len(t, budgets[0].Branches, 2)
	assert.Equal(t, "Nusantara Grill", budgets[1].BrandName)
	require.Len(t, budgets[1].Branches, 1)

	for _, brand := range budgets {
		for _, branch := range brand.Branches {
			assert.Len(t, branch.Months, 12)
		}
	}
}

func TestCalculateFiltersByBrand(t *testing.T) {
	svc := NewBudgetService(testRepo(), nil, nil, "")

	budgets, err := svc.Calculate(context.Background(), testConfig(), []int64{2})
	require.NoError(t, err)
	require.Len(t, budgets, 1)
	assert.Equal(t, int64(2), budgets[0].BrandID)
	assert.Equal(t, int64(20), budgets[0].Branches[0].BranchID)
}

func TestCalculateUsesCache(t *testing.T) {
	repo := testRepo()
	svc := NewBudgetService(repo, newMemBudgetCache(), nil, "")
	cfg := testConfig()

	_, err := svc.Calculate(context.Background(), cfg, nil)
	require.NoError(t, err)
	firstLoads := repo.loadCalls
	require.Equal(t, 3, firstLoads)

	_, err = svc.Calculate(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, firstLoads, repo.loadCalls)

	// A different event placement must miss the cache.
	cfg.RamadanBYStart = time.Date(2026, time.February, 19, 0, 0, 0, 0, time.UTC)
	_, err = svc.Calculate(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, firstLoads*2, repo.loadCalls)
}

func TestInvalidateCacheBranch(t *testing.T) {
	repo := testRepo()
	svc := NewBudgetService(repo, newMemBudgetCache(), nil, "")
	cfg := testConfig()

	_, err := svc.Calculate(context.Background(), cfg, nil)
	require.NoError(t, err)
	require.Equal(t, 3, repo.loadCalls)

	// Only the invalidated branch reloads; the other two stay cached.
	require.NoError(t, svc.InvalidateCacheBranch(context.Background(), 10))
	_, err = svc.Calculate(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, 4, repo.loadCalls)
}

func TestCalculateRejectsInvalidConfig(t *testing.T) {
	svc := NewBudgetService(testRepo(), nil, nil, "")

	cfg := testConfig()
	cfg.RamadanCYDays = 0
	_, err := svc.Calculate(context.Background(), cfg, nil)
	assert.Error(t, err)
}

func TestBreakdown(t *testing.T) {
	svc := NewBudgetService(testRepo(), nil, nil, "")

	days, err := svc.Breakdown(context.Background(), testConfig(), 10, forecast.EventRamadan, 3)
	require.NoError(t, err)
	require.Len(t, days, 31)
	assert.Equal(t, 100.0, days[0].SalesCY)

	_, err = svc.Breakdown(context.Background(), testConfig(), 10, "christmas", 3)
	assert.Error(t, err)
}
