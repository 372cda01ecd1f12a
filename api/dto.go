/*
dto.go - Request and response types for the budget API

PURPOSE:
  Defines the JSON contract. Success and error envelopes carry the HTTP
  status inside the body as well (statusCode), so clients that only look at
  the payload can still branch.

NAMING CONVENTION:
  - *Request:  request body types from clients
  - *Response: response envelopes returned to clients

VALIDATION:
  Presence validation lives in the service, not here. DTOs are pure data
  carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - budget/types.go: The Record these wrap
*/
package api

import (
	"github.com/shopspring/decimal"

	"github.com/warp/budget-engine/budget"
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

// ConvertRequest asks for a project budget in a given currency.
type ConvertRequest struct {
	Year        int    `json:"year"`
	ProjectName string `json:"projectName"`
	Currency    string `json:"currency"`
}

// BudgetRequest is the request body for creating or updating a budget.
type BudgetRequest struct {
	ProjectID                      int64           `json:"projectId"`
	ProjectName                    string          `json:"projectName"`
	Year                           int             `json:"year"`
	Currency                       string          `json:"currency"`
	InitialBudgetLocal             decimal.Decimal `json:"initialBudgetLocal"`
	BudgetUSD                      decimal.Decimal `json:"budgetUsd"`
	InitialScheduleEstimateMonths  int             `json:"initialScheduleEstimateMonths"`
	AdjustedScheduleEstimateMonths int             `json:"adjustedScheduleEstimateMonths"`
	ContingencyRate                decimal.Decimal `json:"contingencyRate"`
	EscalationRate                 decimal.Decimal `json:"escalationRate"`
	FinalBudgetUSD                 decimal.Decimal `json:"finalBudgetUsd"`
}

// toRecord maps the payload onto the domain model.
func (b BudgetRequest) toRecord() budget.Record {
	return budget.Record{
		ProjectID:                      b.ProjectID,
		ProjectName:                    b.ProjectName,
		Year:                           b.Year,
		Currency:                       b.Currency,
		InitialBudgetLocal:             b.InitialBudgetLocal,
		BudgetUSD:                      b.BudgetUSD,
		InitialScheduleEstimateMonths:  b.InitialScheduleEstimateMonths,
		AdjustedScheduleEstimateMonths: b.AdjustedScheduleEstimateMonths,
		ContingencyRate:                b.ContingencyRate,
		EscalationRate:                 b.EscalationRate,
		FinalBudgetUSD:                 b.FinalBudgetUSD,
	}
}

// =============================================================================
// RESPONSE ENVELOPES
// =============================================================================

// DataResponse wraps record payloads.
type DataResponse struct {
	StatusCode int             `json:"statusCode"`
	Success    bool            `json:"success"`
	Data       []budget.Record `json:"data"`
}

// MessageResponse wraps mutation acknowledgements. ProjectID is set only on
// creation.
type MessageResponse struct {
	StatusCode int    `json:"statusCode"`
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	ProjectID  int64  `json:"projectId,omitempty"`
}

// ErrorResponse is the single error envelope for every failure.
type ErrorResponse struct {
	StatusCode int    `json:"statusCode"`
	Error      string `json:"error"`
	Success    bool   `json:"success"`
}
