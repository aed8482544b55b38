/*
errors.go - Centralized error types for the workload engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Callers branch on these with errors.Is / errors.As.

ERROR CATEGORIES:
  1. Configuration errors - unknown calculation mode, or a value that has
     no valid payroll type to land on. These abort the calculation; no
     partial Workload is ever produced.
  2. Lifecycle errors - finalizing twice, asking for a Workload too early.
  3. Lookup errors - used by Source implementations and the API layer.

The engine itself has no retryable errors: a failure is deterministic for
the same inputs.

SEE ALSO:
  - calculation.go: Returns these errors
  - factory/mode.go: Wraps ErrUnknownCalculationMode
*/
package workload

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrUnknownCalculationMode is returned when a school year declares a
	// calculation mode id no Mode implements.
	ErrUnknownCalculationMode = errors.New("unknown calculation mode")

	// ErrPercentOnlyPayrollType is returned when a lesson value is routed to
	// a payroll type that is not lesson based.
	ErrPercentOnlyPayrollType = errors.New("lessons booked on percent-only payroll type")

	// ErrMissingPayrollType is returned when a contribution resolves to no
	// payroll type at all.
	ErrMissingPayrollType = errors.New("contribution has no payroll type")

	// ErrMissingDefaultPayrollType is returned by modes that need a default
	// payroll type when the school year does not declare one.
	ErrMissingDefaultPayrollType = errors.New("school year has no default payroll type")

	// ErrCalculationFinalized is returned when contributions are added after
	// CalculatePayroll ran.
	ErrCalculationFinalized = errors.New("calculation already finalized")

	// ErrNotFinalized is returned when a Workload is requested before the
	// payroll was calculated.
	ErrNotFinalized = errors.New("calculation not finalized")

	// ErrSchoolYearNotFound is returned by sources for unknown school years.
	ErrSchoolYearNotFound = errors.New("school year not found")

	// ErrEmploymentNotFound is returned by sources for unknown employments.
	ErrEmploymentNotFound = errors.New("employment not found")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// PayrollTypeError reports a value that cannot be booked on a payroll type.
type PayrollTypeError struct {
	PayrollType *PayrollType
	Semester    Semester
	Value       float64
	Source      string // "course", "posting", ...
}

func (e *PayrollTypeError) Error() string {
	if e.PayrollType == nil {
		return fmt.Sprintf("%s: %g from %s (%s)", ErrMissingPayrollType, e.Value, e.Source, e.Semester)
	}
	return fmt.Sprintf("%s: %g lessons from %s on payroll type %s (%s)",
		ErrPercentOnlyPayrollType, e.Value, e.Source, e.PayrollType.Code, e.Semester)
}

// Unwrap yields ErrMissingPayrollType for a nil type.
func (e *PayrollTypeError) Unwrap() error {
	if e.PayrollType == nil {
		return ErrMissingPayrollType
	}
	return ErrPercentOnlyPayrollType
}

// ModeError reports an unrecognized calculation mode id.
type ModeError struct {
	ModeID       int
	SchoolYearID string
}

func (e *ModeError) Error() string {
	return fmt.Sprintf("%s %d for school year %q", ErrUnknownCalculationMode, e.ModeID, e.SchoolYearID)
}

func (e *ModeError) Unwrap() error {
	return ErrUnknownCalculationMode
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsConfigurationError returns true for faults in school-year configuration
// or engine wiring. They are never caused by user input.
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrUnknownCalculationMode) ||
		errors.Is(err, ErrPercentOnlyPayrollType) ||
		errors.Is(err, ErrMissingPayrollType) ||
		errors.Is(err, ErrMissingDefaultPayrollType)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrSchoolYearNotFound) ||
		errors.Is(err, ErrEmploymentNotFound)
}
