/*
main.go - CSV seed importer

PURPOSE:
  Bulk-loads project budgets from a CSV export into the configured database.
  Creates the schema if missing, skips the header row, and inserts each line
  through the same parameterized path the API uses.

PARSING:
  Every numeric column is parsed with its real type (strconv / decimal); a
  malformed value aborts the import with the offending line number. The
  literal NULL (or an empty field) is accepted in every column except
  projectId and loads as zero - the schema treats zero and absent the same
  for derived math, and the API never round-trips a NULL back out.

USAGE:
  # Default sqlite engine
  ./seed -csv=data/projects.csv -db=budget.db

  # MySQL via environment
  DB_ENGINE=mysql DB_DSN=user:pass@tcp(host:3306)/budgets ./seed -csv=data/projects.csv
*/
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/warp/budget-engine/budget"
	"github.com/warp/budget-engine/config"
	"github.com/warp/budget-engine/store/sqlstore"
)

func main() {
	config.LoadEnv()
	engine := config.GetEnv("DB_ENGINE", "sqlite3")

	csvPath := flag.String("csv", "data/projects.csv", "CSV file to import")
	dbPath := flag.String("db", config.GetEnv("DB_PATH", "budget.db"), "SQLite database path")
	flag.Parse()

	dsn := *dbPath
	if engine == "mysql" {
		dsn = os.Getenv("DB_DSN")
	}

	store, err := sqlstore.Open(engine, dsn)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer store.Close()

	f, err := os.Open(*csvPath)
	if err != nil {
		log.Fatalf("Failed to open CSV: %v", err)
	}
	defer f.Close()

	count, err := importCSV(context.Background(), store, f)
	if err != nil {
		log.Fatalf("Import failed: %v", err)
	}
	log.Printf("Imported %d project budgets", count)
}

// importCSV reads records from r and inserts them, returning the number of
// rows written.
func importCSV(ctx context.Context, store *sqlstore.Store, r io.Reader) (int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 11

	count := 0
	line := 0
	for {
		fields, err := reader.Read()
		if err == io.EOF {
			return count, nil
		}
		if err != nil {
			return count, err
		}
		line++
		if line == 1 {
			continue // header
		}

		rec, err := parseLine(fields)
		if err != nil {
			return count, fmt.Errorf("line %d: %w", line, err)
		}
		if err := store.Insert(ctx, rec); err != nil {
			return count, fmt.Errorf("line %d (project %d): %w", line, rec.ProjectID, err)
		}
		count++
	}
}

// parseLine converts one CSV row into a Record with typed parsing.
func parseLine(fields []string) (budget.Record, error) {
	var rec budget.Record
	var err error

	if rec.ProjectID, err = strconv.ParseInt(fields[0], 10, 64); err != nil {
		return rec, fmt.Errorf("projectId: %w", err)
	}
	rec.ProjectName = fields[1]
	if rec.Year, err = parseCount(fields[2]); err != nil {
		return rec, fmt.Errorf("year: %w", err)
	}
	rec.Currency = fields[3]

	if rec.InitialBudgetLocal, err = parseMoney(fields[4]); err != nil {
		return rec, fmt.Errorf("initialBudgetLocal: %w", err)
	}
	if rec.BudgetUSD, err = parseMoney(fields[5]); err != nil {
		return rec, fmt.Errorf("budgetUsd: %w", err)
	}
	if rec.InitialScheduleEstimateMonths, err = parseCount(fields[6]); err != nil {
		return rec, fmt.Errorf("initialScheduleEstimateMonths: %w", err)
	}
	if rec.AdjustedScheduleEstimateMonths, err = parseCount(fields[7]); err != nil {
		return rec, fmt.Errorf("adjustedScheduleEstimateMonths: %w", err)
	}
	if rec.ContingencyRate, err = parseMoney(fields[8]); err != nil {
		return rec, fmt.Errorf("contingencyRate: %w", err)
	}
	if rec.EscalationRate, err = parseMoney(fields[9]); err != nil {
		return rec, fmt.Errorf("escalationRate: %w", err)
	}
	if rec.FinalBudgetUSD, err = parseMoney(fields[10]); err != nil {
		return rec, fmt.Errorf("finalBudgetUsd: %w", err)
	}
	return rec, nil
}

func parseMoney(s string) (decimal.Decimal, error) {
	if s == "NULL" || s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

func parseCount(s string) (int, error) {
	if s == "NULL" || s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}
