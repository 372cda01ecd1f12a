/*
errors.go - Centralized error taxonomy for the budget service

PURPOSE:
  All outcome classes in one place. The HTTP layer maps these to status
  codes; nothing below the service ever reaches a handler unclassified.

ERROR CATEGORIES:
  1. Client errors     - missing fields, duplicate identifiers
  2. Lookup errors     - no matching record
  3. Collaborator errors - storage failures, failed currency conversion

USAGE:
  Collaborator failures are wrapped so callers can classify:

    if errors.Is(err, budget.ErrStorage) {
        // 500
    }

SEE ALSO:
  - service.go: Produces these errors
  - api/handlers.go: Maps them to HTTP statuses
*/
package budget

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidInput is returned when required request fields are missing.
	ErrInvalidInput = errors.New("missing required fields")

	// ErrNotFound is returned when no record matches the given key.
	ErrNotFound = errors.New("project not found")

	// ErrConflict is returned when inserting an already-existing project id.
	ErrConflict = errors.New("project already exists")

	// ErrStorage is returned when the storage collaborator fails. The
	// underlying driver error is wrapped, never swallowed.
	ErrStorage = errors.New("storage error")

	// ErrConversionFailed is returned when the rate provider call fails for
	// any reason. The provider detail is kept server-side.
	ErrConversionFailed = errors.New("currency conversion failed")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ConflictError identifies which project id collided on insert.
type ConflictError struct {
	ProjectID int64
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("project with ID %d already exists", e.ProjectID)
}

func (e *ConflictError) Unwrap() error {
	return ErrConflict
}

// StorageError wraps a driver-level failure with the operation that hit it.
type StorageError struct {
	Op  string // e.g. "findByNameAndYear", "insert"
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error in %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return ErrStorage
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrConflict)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
