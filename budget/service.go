/*
service.go - Budget orchestration: validation, lookups, currency conversion

PURPOSE:
  The control-flow core. Every operation validates its input, consults the
  repository, optionally calls the rate provider, and returns either data or
  one of the errors.go outcomes. Handlers stay thin; this is where the
  branching lives.

CONVERSION FLOW (ConvertBudget):
  validate -> findByNameAndYear -> (not found | found)
    found + currency != TTD -> pass the record through unchanged
    found + currency == TTD -> fetch USD->TTD rate
      rate error  -> ErrConversionFailed (provider detail logged, not returned)
      rate ok     -> copy with finalBudgetTtd = round(finalBudgetUsd * rate, 2)
  Results are always a one-element list; the stored record is never mutated.

DEPENDENCIES:
  Injected at construction. The Repository and RateSource interfaces are
  defined here, next to their consumer; sqlstore.Store and rates.Client
  satisfy them.

SEE ALSO:
  - errors.go: Outcome taxonomy
  - rates/client.go: RateSource implementation
  - store/sqlstore/sqlstore.go: Repository implementation
*/
package budget

import (
	"context"
	"log"
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// COLLABORATOR INTERFACES
// =============================================================================

// Repository owns all reads and writes of budget records.
type Repository interface {
	FindByID(ctx context.Context, id int64) ([]Record, error)
	FindByNameAndYear(ctx context.Context, name string, year int) (*Record, error)
	Exists(ctx context.Context, id int64) (bool, error)
	Insert(ctx context.Context, rec Record) error
	Update(ctx context.Context, id int64, rec Record) (int64, error)
	Delete(ctx context.Context, id int64) (int64, error)
}

// RateSource supplies a live conversion rate from base to target currency.
type RateSource interface {
	GetRate(ctx context.Context, base, target string) (decimal.Decimal, error)
}

// Service orchestrates budget operations.
type Service struct {
	repo  Repository
	rates RateSource
}

// NewService creates a service with the given collaborators.
func NewService(repo Repository, rates RateSource) *Service {
	return &Service{repo: repo, rates: rates}
}

// =============================================================================
// CURRENCY CONVERSION
// =============================================================================

// ConvertBudget looks up a project by (name, year) and, if the requested
// currency is TTD, returns a copy with the derived TTD budget attached. Any
// other currency passes the record through unchanged.
func (s *Service) ConvertBudget(ctx context.Context, year int, projectName, currencyCode string) ([]Record, error) {
	if year == 0 || projectName == "" || currencyCode == "" {
		return nil, ErrInvalidInput
	}

	rec, err := s.repo.FindByNameAndYear(ctx, projectName, year)
	if err != nil {
		return nil, &StorageError{Op: "findByNameAndYear", Err: err}
	}
	if rec == nil {
		return nil, ErrNotFound
	}

	if strings.ToUpper(currencyCode) != TargetCurrency {
		return []Record{*rec}, nil
	}

	rate, err := s.rates.GetRate(ctx, BaseCurrency, TargetCurrency)
	if err != nil {
		// Provider detail stays server-side; the caller sees one class.
		log.Printf("conversion failed for project %q (%d): %v", projectName, year, err)
		return nil, ErrConversionFailed
	}

	ttd := rec.FinalBudgetUSD.Mul(rate).Round(2)
	return []Record{rec.WithFinalBudgetTTD(ttd)}, nil
}

// =============================================================================
// CRUD OPERATIONS
// =============================================================================

// GetByID returns all records matching the id (0 or 1 in practice).
func (s *Service) GetByID(ctx context.Context, id int64) ([]Record, error) {
	records, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, &StorageError{Op: "findById", Err: err}
	}
	if len(records) == 0 {
		return nil, ErrNotFound
	}
	return records, nil
}

// AddBudget inserts a new record after checking the id is free.
func (s *Service) AddBudget(ctx context.Context, rec Record) error {
	if rec.ProjectID == 0 || rec.ProjectName == "" || rec.Year == 0 || rec.Currency == "" {
		return ErrInvalidInput
	}

	exists, err := s.repo.Exists(ctx, rec.ProjectID)
	if err != nil {
		return &StorageError{Op: "exists", Err: err}
	}
	if exists {
		return &ConflictError{ProjectID: rec.ProjectID}
	}

	if err := s.repo.Insert(ctx, rec); err != nil {
		return &StorageError{Op: "insert", Err: err}
	}
	return nil
}

// UpdateBudget replaces the mutable fields of the record addressed by id.
func (s *Service) UpdateBudget(ctx context.Context, id int64, rec Record) error {
	if id == 0 || rec.ProjectName == "" || rec.Year == 0 || rec.Currency == "" {
		return ErrInvalidInput
	}

	affected, err := s.repo.Update(ctx, id, rec)
	if err != nil {
		return &StorageError{Op: "update", Err: err}
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteBudget removes the record addressed by id. Deleting an id that does
// not exist reports ErrNotFound, which makes repeated deletes safe.
func (s *Service) DeleteBudget(ctx context.Context, id int64) error {
	affected, err := s.repo.Delete(ctx, id)
	if err != nil {
		return &StorageError{Op: "delete", Err: err}
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
