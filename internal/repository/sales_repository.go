// internal/repository/sales_repository.go
package repository

import (
	"context"

	"github.com/andresuchdata/budgetcast/internal/domain"
)

// SalesRepository reads the historical sales ledger and the brand/branch
// master data. The ledger is append-only; nothing here writes to it.
type SalesRepository interface {
	GetBrands(ctx context.Context) ([]domain.Brand, error)
	GetBranches(ctx context.Context, brandIDs []int64) ([]domain.Branch, error)
	// GetSalesRecords returns one branch's transactions with business dates
	// in [yearFrom, yearTo], both inclusive.
	GetSalesRecords(ctx context.Context, branchID int64, yearFrom, yearTo int) ([]domain.SalesRecord, error)
	// GetDailyFacts returns the pre-aggregated branch-day totals for the
	// same year span.
	GetDailyFacts(ctx context.Context, branchID int64, yearFrom, yearTo int) ([]domain.DailySalesFact, error)
}
