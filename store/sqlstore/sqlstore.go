/*
Package sqlstore provides the SQL-backed implementation of the budget
repository.

PURPOSE:
  Owns every read and write of the project table through database/sql with
  positional parameterized queries. No SQL is ever built from interpolated
  user input.

ENGINES:
  Two drivers are registered and selected at Open():
    sqlite3  - default; file-backed or ":memory:" (tests, local dev)
    mysql    - production parity; DSN e.g. user:pass@tcp(host:3306)/db
  The schema below is written in the dialect intersection so migrate() runs
  unchanged on both.

KEY TABLE:
  project: one row per project budget, keyed by projectId. DECIMAL(10,2)
  monetary columns round-trip through decimal.Decimal (it implements
  sql.Scanner/driver.Valuer).

CONCURRENCY:
  Writes are serialized with a mutex for the sqlite engine's single-writer
  model. MySQL handles its own locking; the mutex is cheap enough to keep
  unconditionally.

USAGE:
  store, err := sqlstore.Open("sqlite3", ":memory:")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - budget/service.go: The Repository consumer
  - cmd/seed: Bulk CSV import into the same table
*/
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"

	"github.com/warp/budget-engine/budget"
)

// Store implements the budget repository over database/sql.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Open connects with the given driver ("sqlite3" or "mysql") and migrates the
// schema. For sqlite3 the DSN is a file path or ":memory:".
func Open(driver, dsn string) (*Store, error) {
	switch driver {
	case "sqlite3":
		dsn += "?_foreign_keys=on&_journal_mode=WAL"
	case "mysql":
		// parseTime is unused by this schema but harmless; keep DSNs portable.
	default:
		return nil, fmt.Errorf("unsupported database engine: %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the project table.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS project (
		projectId INT PRIMARY KEY,
		projectName VARCHAR(255),
		year INT,
		currency VARCHAR(3),
		initialBudgetLocal DECIMAL(10, 2),
		budgetUsd DECIMAL(10, 2),
		initialScheduleEstimateMonths INT,
		adjustedScheduleEstimateMonths INT,
		contingencyRate DECIMAL(5, 2),
		escalationRate DECIMAL(5, 2),
		finalBudgetUsd DECIMAL(10, 2)
	)`
	_, err := s.db.Exec(schema)
	return err
}

const recordColumns = `projectId, projectName, year, currency, initialBudgetLocal,
	budgetUsd, initialScheduleEstimateMonths, adjustedScheduleEstimateMonths,
	contingencyRate, escalationRate, finalBudgetUsd`

func scanRecord(row interface{ Scan(...any) error }) (budget.Record, error) {
	var rec budget.Record
	err := row.Scan(
		&rec.ProjectID, &rec.ProjectName, &rec.Year, &rec.Currency,
		&rec.InitialBudgetLocal, &rec.BudgetUSD,
		&rec.InitialScheduleEstimateMonths, &rec.AdjustedScheduleEstimateMonths,
		&rec.ContingencyRate, &rec.EscalationRate, &rec.FinalBudgetUSD,
	)
	return rec, err
}

// =============================================================================
// REPOSITORY OPERATIONS
// =============================================================================

// FindByID returns all rows matching the project id. Zero rows is not an
// error; the primary key makes more than one impossible in practice.
func (s *Store) FindByID(ctx context.Context, id int64) ([]budget.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+recordColumns+` FROM project WHERE projectId = ?`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []budget.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// FindByNameAndYear returns the first record matching (projectName, year), or
// nil if there is none.
func (s *Store) FindByNameAndYear(ctx context.Context, name string, year int) (*budget.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+recordColumns+` FROM project WHERE projectName = ? AND year = ?`,
		name, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	rec, err := scanRecord(rows)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Exists reports whether a project with the given id is present.
func (s *Store) Exists(ctx context.Context, id int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM project WHERE projectId = ?`, id).Scan(&count)
	return count > 0, err
}

// Insert adds a new record. The service checks Exists first; a racing insert
// still fails here on the primary key.
func (s *Store) Insert(ctx context.Context, rec budget.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO project (`+recordColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ProjectID, rec.ProjectName, rec.Year, rec.Currency,
		rec.InitialBudgetLocal, rec.BudgetUSD,
		rec.InitialScheduleEstimateMonths, rec.AdjustedScheduleEstimateMonths,
		rec.ContingencyRate, rec.EscalationRate, rec.FinalBudgetUSD,
	)
	return err
}

// Update replaces every mutable field of the record addressed by id and
// returns the affected-row count. 0 means no such project. The projectId
// itself is immutable.
func (s *Store) Update(ctx context.Context, id int64, rec budget.Record) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE project SET
			projectName = ?, year = ?, currency = ?, initialBudgetLocal = ?,
			budgetUsd = ?, initialScheduleEstimateMonths = ?,
			adjustedScheduleEstimateMonths = ?, contingencyRate = ?,
			escalationRate = ?, finalBudgetUsd = ?
		WHERE projectId = ?`,
		rec.ProjectName, rec.Year, rec.Currency, rec.InitialBudgetLocal,
		rec.BudgetUSD, rec.InitialScheduleEstimateMonths,
		rec.AdjustedScheduleEstimateMonths, rec.ContingencyRate,
		rec.EscalationRate, rec.FinalBudgetUSD, id,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Delete removes the record addressed by id and returns the affected-row
// count. 0 means no such project.
func (s *Store) Delete(ctx context.Context, id int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM project WHERE projectId = ?`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// =============================================================================
// HEALTH CHECK
// =============================================================================

// HealthCheck proves the storage path end to end by writing a timestamp row.
// Returns the written value.
func (s *Store) HealthCheck(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx,
		`CREATE TABLE IF NOT EXISTS healthCheck (value TEXT)`); err != nil {
		return "", err
	}
	now := strconv.FormatInt(time.Now().UnixMilli(), 10)
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO healthCheck VALUES (?)`, now); err != nil {
		return "", err
	}
	return now, nil
}
