/*
types.go - Core types for the project budget domain

PURPOSE:
  Defines the budget Record and the small value helpers used across the
  repository, service, and API layers.

DESIGN PRINCIPLES:
  1. Precision: monetary amounts and percentage rates use decimal.Decimal,
     never float64, to avoid binary floating-point drift on 2-decimal values.
  2. One model: the Record is both the storage row and the API payload; the
     only derived field (finalBudgetTtd) is attached to a copy, never to the
     stored row.

USAGE:
  rec := budget.Record{ProjectID: 1, ProjectName: "Peking roasted duck Chanel", ...}
  converted := rec.WithFinalBudgetTTD(ttd)

SEE ALSO:
  - service.go: Orchestration that produces converted copies
  - store/sqlstore/sqlstore.go: Persistence of Records
*/
package budget

import (
	"fmt"

	"github.com/shopspring/decimal"
)

func init() {
	// Budget amounts are plain JSON numbers on the wire, matching the
	// DECIMAL(10,2) columns they come from.
	decimal.MarshalJSONWithoutQuotes = true
}

// BaseCurrency is the currency every stored final budget is denominated in.
const BaseCurrency = "USD"

// TargetCurrency is the only supported conversion target.
const TargetCurrency = "TTD"

// =============================================================================
// RECORD
// =============================================================================

// Record is one project budget. FinalBudgetTTD is derived on demand by a
// currency conversion and is absent everywhere else.
type Record struct {
	ProjectID                      int64            `json:"projectId"`
	ProjectName                    string           `json:"projectName"`
	Year                           int              `json:"year"`
	Currency                       string           `json:"currency"`
	InitialBudgetLocal             decimal.Decimal  `json:"initialBudgetLocal"`
	BudgetUSD                      decimal.Decimal  `json:"budgetUsd"`
	InitialScheduleEstimateMonths  int              `json:"initialScheduleEstimateMonths"`
	AdjustedScheduleEstimateMonths int              `json:"adjustedScheduleEstimateMonths"`
	ContingencyRate                decimal.Decimal  `json:"contingencyRate"`
	EscalationRate                 decimal.Decimal  `json:"escalationRate"`
	FinalBudgetUSD                 decimal.Decimal  `json:"finalBudgetUsd"`
	FinalBudgetTTD                 *decimal.Decimal `json:"finalBudgetTtd,omitempty"`
}

// WithFinalBudgetTTD returns a copy of the record with the derived TTD budget
// attached. The receiver is not modified.
func (r Record) WithFinalBudgetTTD(v decimal.Decimal) Record {
	out := r
	out.FinalBudgetTTD = &v
	return out
}

// MustParseDecimal parses s and panics on malformed input. For literals in
// tests and seeds only; runtime input goes through explicit parsing.
func MustParseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(fmt.Sprintf("malformed decimal literal %q: %v", s, err))
	}
	return d
}
