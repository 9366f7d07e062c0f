package main

import (
	"database/sql"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/urfave/cli/v2"
)

var demoOrderTypes = []string{"Dinein", "Delivery", "Takeaway", "Drive Thru", "Catering"}

// seedDemoSales fills sales_records with plausible synthetic transactions:
// a weekday-dependent daily baseline split across order types, deterministic
// per branch so reruns produce the same ledger. Each branch writes in one
// transaction.
func seedDemoSales(c *cli.Context) error {
	db := dbFrom(c)
	year := c.Int("year")

	rows, err := db.QueryContext(c.Context, `SELECT id FROM branches ORDER BY id`)
	if err != nil {
		return fmt.Errorf("failed to list branches: %w", err)
	}
	defer rows.Close()

	var branchIDs []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return fmt.Errorf("failed to scan branch id: %w", err)
		}
		branchIDs = append(branchIDs, id)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, branchID := range branchIDs {
		var n int
		err := db.WithTx(c.Context, func(tx *sql.Tx) error {
			var txErr error
			n, txErr = generateBranchSales(c, tx, branchID, year-1, year)
			return txErr
		})
		if err != nil {
			return fmt.Errorf("branch %d: %w", branchID, err)
		}
		log.Printf("branch %d: inserted %d transactions", branchID, n)
	}
	return nil
}

func generateBranchSales(c *cli.Context, tx *sql.Tx, branchID int64, yearFrom, yearTo int) (int, error) {
	rng := rand.New(rand.NewSource(branchID))
	inserted := 0

	start := time.Date(yearFrom, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(yearTo+1, time.January, 1, 0, 0, 0, 0, time.UTC)

	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		base := 80.0 + rng.Float64()*40
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			base *= 1.5
		}

		orders := 8 + rng.Intn(8)
		for i := 0; i < orders; i++ {
			orderType := demoOrderTypes[rng.Intn(len(demoOrderTypes))]
			gross := base * (0.5 + rng.Float64())
			discount := 0.0
			if rng.Intn(10) == 0 {
				discount = gross * 0.1
			}
			vat := gross * 0.11
			guests := 0
			if orderType == "Dinein" {
				guests = 1 + rng.Intn(5)
			}

			orderID := fmt.Sprintf("%d-%s-%03d", branchID, d.Format("20060102"), i)
			_, err := tx.ExecContext(c.Context, `
				INSERT INTO sales_records (branch_id, order_id, business_date, order_type, gross, discount, vat, guests)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
				ON CONFLICT (branch_id, order_id) DO NOTHING`,
				branchID, orderID, d, orderType, gross, discount, vat, guests)
			if err != nil {
				return inserted, fmt.Errorf("failed inserting order %s: %w", orderID, err)
			}
			inserted++
		}
	}
	return inserted, nil
}
