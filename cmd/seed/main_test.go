/*
main_test.go - Tests for the CSV importer

Covers the zero-load policy for NULL columns and the hard failure on
malformed numerics.
*/
package main

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/budget-engine/store/sqlstore"
)

const csvHeader = "projectId,projectName,year,currency,initialBudgetLocal,budgetUsd,initialScheduleEstimateMonths,adjustedScheduleEstimateMonths,contingencyRate,escalationRate,finalBudgetUsd\n"

func newSeedStore(t *testing.T) *sqlstore.Store {
	t.Helper()
	store, err := sqlstore.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestImportCSV_NullColumnsLoadAsZero(t *testing.T) {
	store := newSeedStore(t)
	ctx := context.Background()

	data := csvHeader +
		"1,Humitas Hewlett Packard,2005,EUR,316974.50,233724.23,13,12,2.19,3.46,247106.75\n" +
		"2,Sparse import,NULL,USD,NULL,NULL,NULL,NULL,NULL,NULL,NULL\n"

	count, err := importCSV(ctx, store, strings.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	got, err := store.FindByID(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Zero(t, got[0].Year)
	assert.Zero(t, got[0].InitialScheduleEstimateMonths)
	assert.True(t, got[0].BudgetUSD.IsZero())
	assert.True(t, got[0].FinalBudgetUSD.IsZero())

	// The fully-populated line survives intact
	got, err = store.FindByID(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 2005, got[0].Year)
	assert.Equal(t, "247106.75", got[0].FinalBudgetUSD.StringFixed(2))
}

func TestImportCSV_MalformedNumeric_Aborts(t *testing.T) {
	store := newSeedStore(t)

	data := csvHeader +
		"1,Good line,2005,EUR,100.00,100.00,1,1,1.00,1.00,100.00\n" +
		"2,Bad year,20x5,USD,100.00,100.00,1,1,1.00,1.00,100.00\n"

	count, err := importCSV(context.Background(), store, strings.NewReader(data))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 3")
	assert.Contains(t, err.Error(), "year")
	assert.Equal(t, 1, count, "rows before the bad line stay imported")
}

func TestImportCSV_MalformedProjectID_Aborts(t *testing.T) {
	store := newSeedStore(t)

	data := csvHeader +
		"NULL,No id,2005,EUR,100.00,100.00,1,1,1.00,1.00,100.00\n"

	count, err := importCSV(context.Background(), store, strings.NewReader(data))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "projectId")
	assert.Zero(t, count)
}
