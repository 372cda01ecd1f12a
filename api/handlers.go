/*
handlers.go - HTTP API handlers for the project budget service

PURPOSE:
  Exposes the budget service over REST. Handles HTTP request/response, JSON
  serialization, and delegates all branching to the domain logic.

ENDPOINTS:
  POST   /project/budget/currency  Look up by (name, year), convert to TTD
  GET    /project/budget/{id}      Get budget by project id
  POST   /project/budget           Create budget
  PUT    /project/budget/{id}      Update budget
  DELETE /project/budget/{id}      Delete budget

ERROR HANDLING:
  Service outcomes map to one error envelope:
  - 400: missing required fields / unreadable body
  - 404: no matching record
  - 409: duplicate project id
  - 500: storage failure or failed currency conversion
  Provider detail for failed conversions is never echoed to clients; the
  service logs it.

PATH IDS:
  A non-numeric {id} matches no stored row and is reported as 404, the same
  answer a well-formed unknown id gets.

SEE ALSO:
  - dto.go: Request/response envelopes
  - server.go: Router setup and middleware
  - budget/service.go: The orchestration these delegate to
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/warp/budget-engine/budget"
)

// maxBodyBytes caps request bodies at 5 MB.
const maxBodyBytes = 5 << 20

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Service *budget.Service
	Checker HealthChecker
}

// NewHandler creates a new handler around the budget service. The checker
// backs /health and may be nil in tests that don't exercise it.
func NewHandler(service *budget.Service, checker HealthChecker) *Handler {
	return &Handler{Service: service, Checker: checker}
}

// =============================================================================
// BUDGET HANDLERS
// =============================================================================

// ConvertCurrency looks up a budget by (projectName, year) and returns it,
// converted to TTD when requested.
func (h *Handler) ConvertCurrency(w http.ResponseWriter, r *http.Request) {
	var req ConvertRequest
	if !decodeBody(w, r, &req) {
		return
	}

	records, err := h.Service.ConvertBudget(r.Context(), req.Year, req.ProjectName, req.Currency)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeData(w, http.StatusOK, records)
}

// GetBudget returns the budget addressed by project id.
func (h *Handler) GetBudget(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "Project not found")
		return
	}

	records, err := h.Service.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeData(w, http.StatusOK, records)
}

// AddBudget creates a new budget record.
func (h *Handler) AddBudget(w http.ResponseWriter, r *http.Request) {
	var req BudgetRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.Service.AddBudget(r.Context(), req.toRecord()); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, MessageResponse{
		StatusCode: http.StatusCreated,
		Success:    true,
		Message:    "Project budget added successfully",
		ProjectID:  req.ProjectID,
	})
}

// UpdateBudget replaces the mutable fields of the budget addressed by id.
func (h *Handler) UpdateBudget(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "Project not found")
		return
	}

	var req BudgetRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.Service.UpdateBudget(r.Context(), id, req.toRecord()); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{
		StatusCode: http.StatusOK,
		Success:    true,
		Message:    "Project budget updated successfully",
	})
}

// DeleteBudget removes the budget addressed by id.
func (h *Handler) DeleteBudget(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "Project not found")
		return
	}

	if err := h.Service.DeleteBudget(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{
		StatusCode: http.StatusOK,
		Success:    true,
		Message:    "Project budget deleted successfully",
	})
}

// =============================================================================
// HELPERS
// =============================================================================

// pathID parses the {id} route parameter.
func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil
}

// decodeBody reads a size-capped JSON body into v, answering 400 itself on
// failure.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// writeServiceError maps a service outcome to its status and message.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, budget.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "Missing required fields")
	case errors.Is(err, budget.ErrNotFound):
		writeError(w, http.StatusNotFound, "Project not found")
	case errors.Is(err, budget.ErrConflict):
		var conflict *budget.ConflictError
		if errors.As(err, &conflict) {
			writeError(w, http.StatusConflict,
				fmt.Sprintf("Project with ID %d already exists", conflict.ProjectID))
			return
		}
		writeError(w, http.StatusConflict, "Project already exists")
	case errors.Is(err, budget.ErrConversionFailed):
		writeError(w, http.StatusInternalServerError, "Currency conversion failed")
	default:
		writeError(w, http.StatusInternalServerError, "Database error")
	}
}

func writeData(w http.ResponseWriter, status int, records []budget.Record) {
	writeJSON(w, status, DataResponse{
		StatusCode: status,
		Success:    true,
		Data:       records,
	})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{
		StatusCode: status,
		Error:      message,
		Success:    false,
	})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
