// cmd/budget/main.go
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/budgetcast/internal/domain"
	"github.com/andresuchdata/budgetcast/internal/forecast"
)

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func configFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{Name: "compare-year", Usage: "Historical year the budget is based on", Required: true},
		&cli.StringFlag{Name: "ramadan-cy", Usage: "Compare-year Ramadan start (YYYY-MM-DD)", Required: true},
		&cli.IntFlag{Name: "ramadan-cy-days", Usage: "Compare-year Ramadan length", Value: 30},
		&cli.StringFlag{Name: "ramadan-by", Usage: "Budget-year Ramadan start (YYYY-MM-DD)", Required: true},
		&cli.IntFlag{Name: "ramadan-by-days", Usage: "Budget-year Ramadan length", Value: 30},
		&cli.StringFlag{Name: "muharram-cy", Usage: "Compare-year Muharram start (YYYY-MM-DD)", Required: true},
		&cli.IntFlag{Name: "muharram-cy-days", Usage: "Compare-year Muharram length", Value: 2},
		&cli.StringFlag{Name: "muharram-by", Usage: "Budget-year Muharram start (YYYY-MM-DD)", Required: true},
		&cli.IntFlag{Name: "muharram-by-days", Usage: "Budget-year Muharram length", Value: 2},
		&cli.StringFlag{Name: "eid2-cy", Usage: "Compare-year Eid al-Adha start (YYYY-MM-DD)", Required: true},
		&cli.StringFlag{Name: "eid2-by", Usage: "Budget-year Eid al-Adha start (YYYY-MM-DD)", Required: true},
		&cli.BoolFlag{Name: "wrap-year-search", Usage: "Let the reference month search wrap across the year boundary"},
	}
}

func buildConfig(c *cli.Context) (forecast.Config, error) {
	parse := func(flag string) (time.Time, error) {
		t, err := time.ParseInLocation("2006-01-02", c.String(flag), time.UTC)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid --%s: %w", flag, err)
		}
		return t, nil
	}

	var cfg forecast.Config
	var err error
	cfg.CompareYear = c.Int("compare-year")
	if cfg.RamadanCYStart, err = parse("ramadan-cy"); err != nil {
		return cfg, err
	}
	if cfg.RamadanBYStart, err = parse("ramadan-by"); err != nil {
		return cfg, err
	}
	if cfg.MuharramCYStart, err = parse("muharram-cy"); err != nil {
		return cfg, err
	}
	if cfg.MuharramBYStart, err = parse("muharram-by"); err != nil {
		return cfg, err
	}
	if cfg.EidAlAdhaCYStart, err = parse("eid2-cy"); err != nil {
		return cfg, err
	}
	if cfg.EidAlAdhaBYStart, err = parse("eid2-by"); err != nil {
		return cfg, err
	}
	cfg.RamadanCYDays = c.Int("ramadan-cy-days")
	cfg.RamadanBYDays = c.Int("ramadan-by-days")
	cfg.MuharramCYDays = c.Int("muharram-cy-days")
	cfg.MuharramBYDays = c.Int("muharram-by-days")
	cfg.Options.WrapYearSearch = c.Bool("wrap-year-search")
	return cfg, cfg.Validate()
}

func loadRecords(ctx context.Context, db *sql.DB, branchID int64, yearFrom, yearTo int) ([]domain.SalesRecord, error) {
	query := `
		SELECT branch_id, order_id, business_date, order_type, gross, discount, vat, guests
		FROM sales_records
		WHERE branch_id = $1
		  AND business_date >= $2
		  AND business_date < $3
		ORDER BY business_date`

	from := time.Date(yearFrom, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(yearTo+1, time.January, 1, 0, 0, 0, 0, time.UTC)

	rows, err := db.QueryContext(ctx, query, branchID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query sales records: %w", err)
	}
	defer rows.Close()

	var records []domain.SalesRecord
	for rows.Next() {
		var r domain.SalesRecord
		if err := rows.Scan(&r.BranchID, &r.OrderID, &r.BusinessDate, &r.OrderType, &r.Gross, &r.Discount, &r.VAT, &r.Guests); err != nil {
			return nil, fmt.Errorf("failed to scan sales record: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func runCalculate(c *cli.Context) error {
	cfg, err := buildConfig(c)
	if err != nil {
		return err
	}

	db, err := sql.Open("pgx", c.String("db-url"))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	engine, err := forecast.NewEngine(cfg)
	if err != nil {
		return err
	}

	branchID := c.Int64("branch")
	records, err := loadRecords(c.Context, db, branchID, cfg.CompareYear-1, cfg.CompareYear)
	if err != nil {
		return err
	}

	return printJSON(map[string]interface{}{
		"branch_id":    branchID,
		"compare_year": cfg.CompareYear,
		"budget_year":  cfg.BudgetYear(),
		"months":       engine.Calculate(records),
	})
}

func runBreakdown(c *cli.Context) error {
	cfg, err := buildConfig(c)
	if err != nil {
		return err
	}

	db, err := sql.Open("pgx", c.String("db-url"))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	engine, err := forecast.NewEngine(cfg)
	if err != nil {
		return err
	}

	branchID := c.Int64("branch")
	records, err := loadRecords(c.Context, db, branchID, cfg.CompareYear, cfg.CompareYear)
	if err != nil {
		return err
	}

	days, err := engine.DailyBreakdown(records, c.String("event"), c.Int("month"))
	if err != nil {
		return err
	}

	return printJSON(map[string]interface{}{
		"branch_id": branchID,
		"event":     c.String("event"),
		"month":     c.Int("month"),
		"days":      days,
	})
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: could not load .env file: %v", err)
	}

	branchFlag := &cli.Int64Flag{
		Name:     "branch",
		Usage:    "Branch ID to compute",
		Required: true,
	}

	app := &cli.App{
		Name:  "budget",
		Usage: "Compute branch sales budgets from the command line",
		Commands: []*cli.Command{
			{
				Name:   "calculate",
				Usage:  "Compute the twelve month rows for one branch",
				Flags:  append([]cli.Flag{newDBURLFlag(), branchFlag}, configFlags()...),
				Action: runCalculate,
			},
			{
				Name:  "breakdown",
				Usage: "Show the day-level estimation detail for one event and month",
				Flags: append([]cli.Flag{
					newDBURLFlag(),
					branchFlag,
					&cli.StringFlag{Name: "event", Usage: "ramadan, muharram or eid_al_adha", Required: true},
					&cli.IntFlag{Name: "month", Usage: "Budget-year month (1-12)", Required: true},
				}, configFlags()...),
				Action: runBreakdown,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
