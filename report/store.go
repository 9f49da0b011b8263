/*
store.go - Persistence interface between the report layer and the database

PURPOSE:
  Defines the interface the report assembler (and the API layer) use to
  read attendance inputs and persist computed summaries. Different
  implementations can use SQLite or in-memory storage.

KEY INTERFACES:
  Store: employees, clock events, leave, holidays, rule overrides,
         manual deductions, persisted period summaries

READ/WRITE SPLIT:
  Attendance inputs (events, leave, holidays) are written by the admin
  surface and read by the assembler. Summaries flow the other way: the
  assembler writes them, the admin surface reads them back. The engine
  itself never touches the Store; the assembler materializes everything
  up front and hands the engine plain values.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: Production SQLite
  - store/memory/memory.go: In-memory for testing/dev

SEE ALSO:
  - assembler.go: The Store's main consumer
*/
package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/warp/allowance-engine/engine"
)

// =============================================================================
// RECORDS - What the store persists beyond the engine's value types
// =============================================================================

// EmployeeRecord is an employee plus their assigned shift schedule.
// A nil Shift means the default schedule applies.
type EmployeeRecord struct {
	engine.Employee
	Shift *engine.ShiftSchedule
}

// LeaveRecord is one approved or pending leave request covering a
// contiguous date range. Only approved leave suppresses deductions.
type LeaveRecord struct {
	ID         string
	EmployeeID engine.EmployeeID
	Range      engine.DateRange
	Reason     string
	Approved   bool
}

// Holiday is a company-wide non-working day.
type Holiday struct {
	Date engine.Date
	Name string
}

// ManualDeductionRecord attaches a manual deduction to an employee and
// month so it participates in that month's capping.
type ManualDeductionRecord struct {
	ID         string
	EmployeeID engine.EmployeeID
	Month      Month
	Deduction  engine.ManualDeduction
}

// Summary is the persisted outcome of one employee's month. It carries
// the capped totals and flags, not the per-day breakdown; the breakdown
// is recomputed on demand from the stored inputs.
type Summary struct {
	EmployeeID          engine.EmployeeID
	Month               Month
	BaseAllowance       engine.Money
	AttendanceDeduction engine.Money
	ManualDeduction     engine.Money
	TotalDeduction      engine.Money
	NetAllowance        engine.Money
	AttendanceCapped    bool
	OtherCapped         bool
	TotalCapped         bool
	UsedFallback        bool
	GeneratedAt         time.Time
}

// =============================================================================
// STORE - The persistence interface
// =============================================================================

// Store handles persistence of attendance inputs and computed summaries.
type Store interface {
	// Employees.
	SaveEmployee(ctx context.Context, rec EmployeeRecord) error
	Employee(ctx context.Context, id engine.EmployeeID) (EmployeeRecord, error)
	Employees(ctx context.Context) ([]EmployeeRecord, error)

	// Clock events. Duplicates per day are allowed; the engine collapses
	// them (earliest IN, latest OUT).
	AppendEvent(ctx context.Context, event engine.AttendanceEvent) error
	EventsInRange(ctx context.Context, id engine.EmployeeID, r engine.DateRange) ([]engine.AttendanceEvent, error)

	// Leave.
	SaveLeave(ctx context.Context, rec LeaveRecord) error
	ApprovedLeaveDates(ctx context.Context, id engine.EmployeeID, r engine.DateRange) (engine.DateSet, error)

	// Holidays.
	SaveHoliday(ctx context.Context, h Holiday) error
	HolidayDates(ctx context.Context, r engine.DateRange) (engine.DateSet, error)

	// Deduction rule overrides. Absent codes fall back to engine defaults.
	SaveRuleOverride(ctx context.Context, code engine.RuleCode, p engine.Percent) error
	RuleOverrides(ctx context.Context) (map[engine.RuleCode]engine.Percent, error)

	// Manual deductions for a month.
	AddManualDeduction(ctx context.Context, rec ManualDeductionRecord) error
	ManualDeductions(ctx context.Context, id engine.EmployeeID, m Month) ([]engine.ManualDeduction, error)

	// Computed summaries. SaveSummary upserts on (employee, month).
	SaveSummary(ctx context.Context, s Summary) error
	Summary(ctx context.Context, id engine.EmployeeID, m Month) (Summary, error)
	Summaries(ctx context.Context, m Month) ([]Summary, error)
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrNotFound is the sentinel every missing-record error wraps.
var ErrNotFound = errors.New("not found")

// NotFoundError names the missing record.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Resource, e.ID, ErrNotFound)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// NotFound builds a NotFoundError. Store implementations use this so
// callers can classify with IsNotFound regardless of backend.
func NotFound(resource, id string) error {
	return &NotFoundError{Resource: resource, ID: id}
}

// IsNotFound reports whether err means a record does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
