// internal/repository/postgres/sales_repository.go
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/andresuchdata/budgetcast/internal/domain"
)

type SalesRepository struct {
	db *DB
}

func NewSalesRepository(db *DB) *SalesRepository {
	return &SalesRepository{db: db}
}

func (r *SalesRepository) GetBrands(ctx context.Context) ([]domain.Brand, error) {
	query := `
		SELECT id, name, created_at, updated_at
		FROM brands
		ORDER BY name`

	var brands []domain.Brand
	if err := r.db.SelectContext(ctx, &brands, query); err != nil {
		return nil, fmt.Errorf("could not fetch brands: %w", err)
	}
	return brands, nil
}

func (r *SalesRepository) GetBranches(ctx context.Context, brandIDs []int64) ([]domain.Branch, error) {
	query := `
		SELECT id, brand_id, name, created_at, updated_at
		FROM branches`
	args := []interface{}{}

	if len(brandIDs) > 0 {
		var err error
		query, args, err = sqlx.In(query+" WHERE brand_id IN (?)", brandIDs)
		if err != nil {
			return nil, fmt.Errorf("could not build branch query: %w", err)
		}
		query = r.db.Rebind(query)
	}
	query += " ORDER BY brand_id, name"

	var branches []domain.Branch
	if err := r.db.SelectContext(ctx, &branches, query, args...); err != nil {
		return nil, fmt.Errorf("could not fetch branches: %w", err)
	}
	return branches, nil
}

func (r *SalesRepository) GetSalesRecords(ctx context.Context, branchID int64, yearFrom, yearTo int) ([]domain.SalesRecord, error) {
	query := `
		SELECT branch_id, order_id, business_date, order_type, gross, discount, vat, guests
		FROM sales_records
		WHERE branch_id = $1
		  AND business_date >= $2
		  AND business_date < $3
		ORDER BY business_date`

	var records []domain.SalesRecord
	err := r.db.SelectContext(ctx, &records, query,
		branchID, yearStart(yearFrom), yearStart(yearTo+1))
	if err != nil {
		return nil, fmt.Errorf("could not fetch sales records for branch %d: %w", branchID, err)
	}
	return records, nil
}

func (r *SalesRepository) GetDailyFacts(ctx context.Context, branchID int64, yearFrom, yearTo int) ([]domain.DailySalesFact, error) {
	query := `
		SELECT branch_id,
		       business_date,
		       SUM(gross) AS gross,
		       TRIM(TO_CHAR(business_date, 'Day')) AS weekday_name
		FROM sales_records
		WHERE branch_id = $1
		  AND business_date >= $2
		  AND business_date < $3
		GROUP BY branch_id, business_date
		ORDER BY business_date`

	var facts []domain.DailySalesFact
	err := r.db.SelectContext(ctx, &facts, query,
		branchID, yearStart(yearFrom), yearStart(yearTo+1))
	if err != nil {
		return nil, fmt.Errorf("could not fetch daily facts for branch %d: %w", branchID, err)
	}
	return facts, nil
}

func yearStart(year int) time.Time {
	return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
}
