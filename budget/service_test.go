/*
service_test.go - Unit tests for the budget service

Tests for:
- Conversion validation, pass-through, TTD derivation and rounding
- Failure branches: not found, storage errors, rate provider failures
- CRUD outcomes: conflict on duplicate insert, affected-count semantics
*/
package budget_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/budget-engine/budget"
)

// =============================================================================
// FAKES
// =============================================================================

// fakeRepo is an in-memory Repository with per-call failure injection.
type fakeRepo struct {
	records map[int64]budget.Record
	failOn  string // operation name that should fail
	err     error
}

func newFakeRepo(recs ...budget.Record) *fakeRepo {
	r := &fakeRepo{records: make(map[int64]budget.Record)}
	for _, rec := range recs {
		r.records[rec.ProjectID] = rec
	}
	return r
}

func (r *fakeRepo) fail(op string) error {
	if r.failOn == op {
		if r.err != nil {
			return r.err
		}
		return errors.New("connection refused")
	}
	return nil
}

func (r *fakeRepo) FindByID(ctx context.Context, id int64) ([]budget.Record, error) {
	if err := r.fail("findById"); err != nil {
		return nil, err
	}
	if rec, ok := r.records[id]; ok {
		return []budget.Record{rec}, nil
	}
	return nil, nil
}

func (r *fakeRepo) FindByNameAndYear(ctx context.Context, name string, year int) (*budget.Record, error) {
	if err := r.fail("findByNameAndYear"); err != nil {
		return nil, err
	}
	for _, rec := range r.records {
		if rec.ProjectName == name && rec.Year == year {
			return &rec, nil
		}
	}
	return nil, nil
}

func (r *fakeRepo) Exists(ctx context.Context, id int64) (bool, error) {
	if err := r.fail("exists"); err != nil {
		return false, err
	}
	_, ok := r.records[id]
	return ok, nil
}

func (r *fakeRepo) Insert(ctx context.Context, rec budget.Record) error {
	if err := r.fail("insert"); err != nil {
		return err
	}
	r.records[rec.ProjectID] = rec
	return nil
}

func (r *fakeRepo) Update(ctx context.Context, id int64, rec budget.Record) (int64, error) {
	if err := r.fail("update"); err != nil {
		return 0, err
	}
	if _, ok := r.records[id]; !ok {
		return 0, nil
	}
	rec.ProjectID = id
	r.records[id] = rec
	return 1, nil
}

func (r *fakeRepo) Delete(ctx context.Context, id int64) (int64, error) {
	if err := r.fail("delete"); err != nil {
		return 0, err
	}
	if _, ok := r.records[id]; !ok {
		return 0, nil
	}
	delete(r.records, id)
	return 1, nil
}

// fakeRates returns a fixed rate or a fixed error.
type fakeRates struct {
	rate decimal.Decimal
	err  error
}

func (f fakeRates) GetRate(ctx context.Context, base, target string) (decimal.Decimal, error) {
	return f.rate, f.err
}

func sampleRecord() budget.Record {
	return budget.Record{
		ProjectID:                      42,
		ProjectName:                    "Peking roasted duck Chanel",
		Year:                           2000,
		Currency:                       "EUR",
		InitialBudgetLocal:             budget.MustParseDecimal("316974.50"),
		BudgetUSD:                      budget.MustParseDecimal("233724.23"),
		InitialScheduleEstimateMonths:  13,
		AdjustedScheduleEstimateMonths: 12,
		ContingencyRate:                budget.MustParseDecimal("2.19"),
		EscalationRate:                 budget.MustParseDecimal("3.46"),
		FinalBudgetUSD:                 budget.MustParseDecimal("247106.75"),
	}
}

// =============================================================================
// CONVERSION TESTS
// =============================================================================

func TestConvertBudget_MissingFields_InvalidInput(t *testing.T) {
	svc := budget.NewService(newFakeRepo(sampleRecord()), fakeRates{})
	ctx := context.Background()

	cases := []struct {
		name        string
		year        int
		projectName string
		currency    string
	}{
		{"missing year", 0, "Peking roasted duck Chanel", "TTD"},
		{"missing projectName", 2000, "", "TTD"},
		{"missing currency", 2000, "Peking roasted duck Chanel", ""},
		{"all missing", 0, "", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.ConvertBudget(ctx, tc.year, tc.projectName, tc.currency)
			assert.ErrorIs(t, err, budget.ErrInvalidInput)
			assert.True(t, budget.IsClientError(err))
		})
	}
}

func TestConvertBudget_NonTTD_PassThrough(t *testing.T) {
	// GIVEN: A stored record and a rate source that must not matter
	rec := sampleRecord()
	svc := budget.NewService(newFakeRepo(rec), fakeRates{err: errors.New("must not be called")})

	// WHEN: Requesting the budget in USD
	got, err := svc.ConvertBudget(context.Background(), rec.Year, rec.ProjectName, "USD")

	// THEN: Exactly one unmodified record, no TTD field
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Nil(t, got[0].FinalBudgetTTD)
	assert.True(t, rec.FinalBudgetUSD.Equal(got[0].FinalBudgetUSD))
	assert.Equal(t, rec.ProjectName, got[0].ProjectName)
}

func TestConvertBudget_LowercaseTTD_Converts(t *testing.T) {
	// GIVEN: finalBudgetUsd 247106.75 and rate 6.7890
	rec := sampleRecord()
	rate := budget.MustParseDecimal("6.7890")
	svc := budget.NewService(newFakeRepo(rec), fakeRates{rate: rate})

	// WHEN: Requesting with lowercase currency code
	got, err := svc.ConvertBudget(context.Background(), rec.Year, rec.ProjectName, "ttd")

	// THEN: One record with finalBudgetTtd = round(247106.75 * 6.7890, 2)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.NotNil(t, got[0].FinalBudgetTTD)
	want := rec.FinalBudgetUSD.Mul(rate).Round(2)
	assert.True(t, want.Equal(*got[0].FinalBudgetTTD),
		"want %s, got %s", want, got[0].FinalBudgetTTD)
}

func TestConvertBudget_DoesNotMutateStoredRecord(t *testing.T) {
	rec := sampleRecord()
	repo := newFakeRepo(rec)
	svc := budget.NewService(repo, fakeRates{rate: budget.MustParseDecimal("6.80")})

	_, err := svc.ConvertBudget(context.Background(), rec.Year, rec.ProjectName, "TTD")
	require.NoError(t, err)

	stored := repo.records[rec.ProjectID]
	assert.Nil(t, stored.FinalBudgetTTD, "stored record must stay unconverted")
}

func TestConvertBudget_UnknownProject_NotFound(t *testing.T) {
	svc := budget.NewService(newFakeRepo(), fakeRates{rate: decimal.NewFromInt(7)})

	for _, currency := range []string{"TTD", "USD"} {
		_, err := svc.ConvertBudget(context.Background(), 1999, "No such project", currency)
		assert.ErrorIs(t, err, budget.ErrNotFound, "currency %s", currency)
	}
}

func TestConvertBudget_RateFailure_ConversionFailed(t *testing.T) {
	// GIVEN: A record that exists but a provider that fails
	rec := sampleRecord()

	for _, provErr := range []error{
		errors.New("rates: request timed out"),
		errors.New("rates: provider error: 503 unavailable"),
		errors.New("rates: rate not available"),
	} {
		svc := budget.NewService(newFakeRepo(rec), fakeRates{err: provErr})

		// WHEN: Converting to TTD
		got, err := svc.ConvertBudget(context.Background(), rec.Year, rec.ProjectName, "TTD")

		// THEN: ConversionFailed, never a partial record
		assert.ErrorIs(t, err, budget.ErrConversionFailed)
		assert.Nil(t, got)
	}
}

func TestConvertBudget_StorageFailure_StorageError(t *testing.T) {
	repo := newFakeRepo(sampleRecord())
	repo.failOn = "findByNameAndYear"
	svc := budget.NewService(repo, fakeRates{})

	_, err := svc.ConvertBudget(context.Background(), 2000, "Peking roasted duck Chanel", "TTD")
	assert.ErrorIs(t, err, budget.ErrStorage)

	var storageErr *budget.StorageError
	require.ErrorAs(t, err, &storageErr)
	assert.Equal(t, "findByNameAndYear", storageErr.Op)
}

// =============================================================================
// CRUD TESTS
// =============================================================================

func TestGetByID(t *testing.T) {
	rec := sampleRecord()
	svc := budget.NewService(newFakeRepo(rec), fakeRates{})
	ctx := context.Background()

	got, err := svc.GetByID(ctx, rec.ProjectID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, rec.ProjectID, got[0].ProjectID)

	_, err = svc.GetByID(ctx, 9999)
	assert.ErrorIs(t, err, budget.ErrNotFound)
}

func TestAddBudget_MissingFields_InvalidInput(t *testing.T) {
	svc := budget.NewService(newFakeRepo(), fakeRates{})

	rec := sampleRecord()
	rec.Currency = ""
	assert.ErrorIs(t, svc.AddBudget(context.Background(), rec), budget.ErrInvalidInput)

	rec = sampleRecord()
	rec.ProjectID = 0
	assert.ErrorIs(t, svc.AddBudget(context.Background(), rec), budget.ErrInvalidInput)
}

func TestAddBudget_Duplicate_Conflict(t *testing.T) {
	// GIVEN: A record already stored
	rec := sampleRecord()
	repo := newFakeRepo(rec)
	svc := budget.NewService(repo, fakeRates{})

	// WHEN: Adding the same project id with different fields
	dup := rec
	dup.ProjectName = "Imposter"
	err := svc.AddBudget(context.Background(), dup)

	// THEN: Conflict, and the stored record is unchanged
	assert.ErrorIs(t, err, budget.ErrConflict)
	var conflict *budget.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, rec.ProjectID, conflict.ProjectID)
	assert.Equal(t, rec.ProjectName, repo.records[rec.ProjectID].ProjectName)
}

func TestAddBudget_ThenGetByID_RoundTrip(t *testing.T) {
	repo := newFakeRepo()
	svc := budget.NewService(repo, fakeRates{})
	ctx := context.Background()

	rec := sampleRecord()
	require.NoError(t, svc.AddBudget(ctx, rec))

	got, err := svc.GetByID(ctx, rec.ProjectID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, rec, got[0])
}

func TestUpdateBudget(t *testing.T) {
	rec := sampleRecord()
	repo := newFakeRepo(rec)
	svc := budget.NewService(repo, fakeRates{})
	ctx := context.Background()

	// Missing required fields
	bad := rec
	bad.ProjectName = ""
	assert.ErrorIs(t, svc.UpdateBudget(ctx, rec.ProjectID, bad), budget.ErrInvalidInput)

	// Unknown id: no side effect, no insert
	assert.ErrorIs(t, svc.UpdateBudget(ctx, 9999, rec), budget.ErrNotFound)
	assert.Len(t, repo.records, 1)

	// Happy path
	changed := rec
	changed.FinalBudgetUSD = budget.MustParseDecimal("300000.00")
	require.NoError(t, svc.UpdateBudget(ctx, rec.ProjectID, changed))
	assert.True(t, repo.records[rec.ProjectID].FinalBudgetUSD.Equal(changed.FinalBudgetUSD))
}

func TestDeleteBudget_IdempotentEffect(t *testing.T) {
	rec := sampleRecord()
	svc := budget.NewService(newFakeRepo(rec), fakeRates{})
	ctx := context.Background()

	// First delete succeeds, second reports not found
	require.NoError(t, svc.DeleteBudget(ctx, rec.ProjectID))
	assert.ErrorIs(t, svc.DeleteBudget(ctx, rec.ProjectID), budget.ErrNotFound)

	// Never-existing id
	assert.ErrorIs(t, svc.DeleteBudget(ctx, 777), budget.ErrNotFound)
}

func TestStorageErrors_SurfaceOnEveryOperation(t *testing.T) {
	rec := sampleRecord()
	ctx := context.Background()

	ops := []struct {
		failOn string
		call   func(svc *budget.Service) error
	}{
		{"findById", func(s *budget.Service) error { _, err := s.GetByID(ctx, rec.ProjectID); return err }},
		{"exists", func(s *budget.Service) error { return s.AddBudget(ctx, rec) }},
		{"update", func(s *budget.Service) error { return s.UpdateBudget(ctx, rec.ProjectID, rec) }},
		{"delete", func(s *budget.Service) error { return s.DeleteBudget(ctx, rec.ProjectID) }},
	}

	for _, op := range ops {
		repo := newFakeRepo(rec)
		repo.failOn = op.failOn
		svc := budget.NewService(repo, fakeRates{})
		assert.ErrorIs(t, op.call(svc), budget.ErrStorage, "operation %s", op.failOn)
	}
}
