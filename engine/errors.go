/*
errors.go - Centralized error types for the allowance engine

PURPOSE:
  All engine error types in one place. The taxonomy is small by design:
  only malformed input aborts a computation, and it aborts it for that
  employee alone. Ambiguous attendance data (duplicate clock events) is
  resolved by documented policy, and a missing rule code falls back to a
  default percentage - neither is an error.

USAGE:
  result, err := engine.ComputePeriodResult(input)
  if engine.IsInvalidInput(err) {
      // reject this employee's inputs, keep processing the roster
  }
*/
package engine

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidDateRange is returned when a period's end precedes its start.
	ErrInvalidDateRange = errors.New("invalid date range: end before start")

	// ErrNegativeBaseAllowance is returned when the base allowance is negative.
	ErrNegativeBaseAllowance = errors.New("negative base allowance")

	// ErrEventOutOfRange is returned when an attendance event is dated
	// outside the requested period.
	ErrEventOutOfRange = errors.New("attendance event outside requested range")

	// ErrPercentOutOfRange is returned when a rule-table or manual-deduction
	// percentage falls outside [0, 100].
	ErrPercentOutOfRange = errors.New("percentage outside [0, 100]")

	// ErrNegativeDeduction is returned when a manual deduction carries a
	// negative fixed amount.
	ErrNegativeDeduction = errors.New("negative manual deduction amount")
)

// =============================================================================
// STRUCTURED ERRORS - Carry the failing employee and field
// =============================================================================

// InvalidInputError wraps one of the sentinel errors with the employee and
// the offending field. One employee's invalid input never aborts the roster;
// the caller records the error for that employee and moves on.
type InvalidInputError struct {
	EmployeeID EmployeeID
	Field      string
	Err        error
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input for employee %s (%s): %v", e.EmployeeID, e.Field, e.Err)
}

func (e *InvalidInputError) Unwrap() error { return e.Err }

func invalidInput(id EmployeeID, field string, err error) error {
	return &InvalidInputError{EmployeeID: id, Field: field, Err: err}
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsInvalidInput reports whether the error is an input-validation failure.
func IsInvalidInput(err error) bool {
	var ie *InvalidInputError
	return errors.As(err, &ie)
}
