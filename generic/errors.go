/*
errors.go - Centralized error types

PURPOSE:
  All sentinel errors in one place. The forecast engine itself never returns
  errors for bad source records (it skips them); these are for the edges:
  parsing the filter range, loading snapshots, and HTTP input.

ERROR CATEGORIES:
  1. Input errors - malformed dates, empty windows
  2. Lookup errors - missing project, account or record

USAGE:
  if generic.IsNotFound(err) {
      writeError(w, http.StatusNotFound, "Project not found", err)
  }
*/
package generic

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidDate is returned when a date string is not yyyy-MM-dd.
	ErrInvalidDate = errors.New("invalid date (use YYYY-MM-DD)")

	// ErrInvalidWindow is returned when a window's end is not after its start.
	ErrInvalidWindow = errors.New("invalid window: end not after start")

	// ErrProjectNotFound is returned when a forecast project doesn't exist.
	ErrProjectNotFound = errors.New("project not found")

	// ErrAccountNotFound is returned when a referenced account doesn't exist.
	ErrAccountNotFound = errors.New("account not found")

	// ErrRecordNotFound is returned for missing liabilities, receivables and entries.
	ErrRecordNotFound = errors.New("record not found")

	// ErrInvalidRecord is returned when a record fails field validation.
	ErrInvalidRecord = errors.New("invalid record")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// FieldError names the offending field of a rejected record.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *FieldError) Unwrap() error {
	return ErrInvalidRecord
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrInvalidWindow) ||
		errors.Is(err, ErrInvalidRecord)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrProjectNotFound) ||
		errors.Is(err, ErrAccountNotFound) ||
		errors.Is(err, ErrRecordNotFound)
}
