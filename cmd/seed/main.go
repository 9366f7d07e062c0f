package main

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/budgetcast/internal/repository/postgres"
)

type ctxKey string

const dbKey ctxKey = "db"

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func initDB(c *cli.Context) error {
	db, err := postgres.NewDBFromURL(c.String("db-url"))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	c.Context = context.WithValue(c.Context, dbKey, db)
	return nil
}

func closeDB(c *cli.Context) error {
	if db, ok := c.Context.Value(dbKey).(*postgres.DB); ok && db != nil {
		return db.Close()
	}
	return nil
}

func dbFrom(c *cli.Context) *postgres.DB {
	db, _ := c.Context.Value(dbKey).(*postgres.DB)
	return db
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: could not load .env file: %v", err)
	}

	app := &cli.App{
		Name:  "seed",
		Usage: "Seed the database with master and sales data",
		Commands: []*cli.Command{
			{
				Name:  "master",
				Usage: "Seed master data (brands and branches) from CSV files",
				Flags: []cli.Flag{
					newDBURLFlag(),
					&cli.StringFlag{
						Name:    "data-dir",
						Usage:   "Directory containing brands.csv and branches.csv",
						Value:   "./data/seeds/master_data",
						EnvVars: []string{"SEED_DATA_DIR"},
					},
				},
				Before: initDB,
				After:  closeDB,
				Action: seedMaster,
			},
			{
				Name:  "demo",
				Usage: "Generate two years of synthetic sales for every branch",
				Flags: []cli.Flag{
					newDBURLFlag(),
					&cli.IntFlag{
						Name:     "year",
						Usage:    "Last year to generate; the year before is generated too",
						Required: true,
					},
				},
				Before: initDB,
				After:  closeDB,
				Action: seedDemoSales,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// seedMaster upserts brands then branches, each CSV in one transaction so a
// bad row rolls the whole file back.
func seedMaster(c *cli.Context) error {
	db := dbFrom(c)
	dataDir := c.String("data-dir")

	brands, err := readCSV(filepath.Join(dataDir, "brands.csv"))
	if err != nil {
		return fmt.Errorf("failed reading brands: %w", err)
	}
	err = db.WithTx(c.Context, func(tx *sql.Tx) error {
		for _, row := range brands {
			if len(row) < 2 {
				continue
			}
			id, err := strconv.ParseInt(row[0], 10, 64)
			if err != nil {
				continue
			}
			_, err = tx.ExecContext(c.Context, `
				INSERT INTO brands (id, name, created_at, updated_at)
				VALUES ($1, $2, NOW(), NOW())
				ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, updated_at = NOW()`,
				id, row[1])
			if err != nil {
				return fmt.Errorf("failed inserting brand %d: %w", id, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	log.Printf("seeded %d brands", len(brands))

	branches, err := readCSV(filepath.Join(dataDir, "branches.csv"))
	if err != nil {
		return fmt.Errorf("failed reading branches: %w", err)
	}
	err = db.WithTx(c.Context, func(tx *sql.Tx) error {
		for _, row := range branches {
			if len(row) < 3 {
				continue
			}
			id, err1 := strconv.ParseInt(row[0], 10, 64)
			brandID, err2 := strconv.ParseInt(row[1], 10, 64)
			if err1 != nil || err2 != nil {
				continue
			}
			_, err := tx.ExecContext(c.Context, `
				INSERT INTO branches (id, brand_id, name, created_at, updated_at)
				VALUES ($1, $2, $3, NOW(), NOW())
				ON CONFLICT (id) DO UPDATE SET brand_id = EXCLUDED.brand_id, name = EXCLUDED.name, updated_at = NOW()`,
				id, brandID, row[2])
			if err != nil {
				return fmt.Errorf("failed inserting branch %d: %w", id, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	log.Printf("seeded %d branches", len(branches))
	return nil
}

// readCSV loads all rows, skipping the header line.
func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	var rows [][]string
	first := true
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if first {
			first = false
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}
