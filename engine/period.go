/*
period.go - Period aggregation: the engine's single logical operation

PURPOSE:
  ComputePeriodResult iterates the day classifier over every calendar day
  in the requested range, accumulates the attendance-deduction total, sums
  the independently supplied manual deductions, and applies the cap engine.
  This is the one operation the report/API layers call.

CONTRACT:
  - Every calendar date in the range yields exactly one DayOutcome.
  - The sum of daily deduction amounts equals the pre-cap attendance
    total exactly (daily amounts are already rounded; the total is their
    plain sum, so there is no drift).
  - Weekends are ordinary days unless a holiday/leave record says
    otherwise; the engine does not decide which days are workdays.
  - Duplicate clock events collapse deterministically: earliest IN,
    latest OUT. Documented policy, not an error.
  - Pure function: no wall clock, no I/O, no shared mutable state. Safe
    to run for many employees in parallel against one shared RuleTable.
*/
package engine

import "strconv"

// PeriodInput is the fully materialized input for one employee's period.
// The caller fetches everything up front; the engine never blocks.
type PeriodInput struct {
	Employee     Employee
	Range        DateRange
	Events       []AttendanceEvent
	LeaveDates   DateSet
	HolidayDates DateSet
	Rules        RuleTable
	Manual       []ManualDeduction
}

// PeriodResult is the computed outcome for one employee and period.
type PeriodResult struct {
	EmployeeID    EmployeeID
	Range         DateRange
	BaseAllowance Money

	// Pre-cap totals.
	AttendanceDeduction Money
	ManualDeduction     Money

	// Capped totals, flags and the net allowance.
	Cap CapResult

	// One outcome per calendar day, in date order.
	Days []DayOutcome

	// True when any day's percentage came from a fallback default.
	UsedFallback bool
}

// ComputePeriodResult validates the input, classifies every day, sums the
// deductions and applies the cap.
//
// An InvalidInputError aborts the computation for this employee only; the
// caller is expected to keep processing the rest of the roster.
func ComputePeriodResult(input PeriodInput) (*PeriodResult, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	byDate := collapseEvents(input.Events)

	result := &PeriodResult{
		EmployeeID:          input.Employee.ID,
		Range:               input.Range,
		BaseAllowance:       input.Employee.BaseAllowance,
		AttendanceDeduction: ZeroMoney(),
		ManualDeduction:     ZeroMoney(),
	}

	for _, date := range input.Range.Days() {
		facts := DayFacts{
			Date:    date,
			Holiday: input.HolidayDates.Contains(date),
			Leave:   input.LeaveDates.Contains(date),
		}
		if pair, ok := byDate[date]; ok {
			facts.ClockIn = pair.in
			facts.ClockOut = pair.out
		}

		outcome := ClassifyDay(input.Employee.BaseAllowance, facts, input.Rules)
		result.Days = append(result.Days, outcome)
		result.AttendanceDeduction = result.AttendanceDeduction.Add(outcome.Deduction)
		result.UsedFallback = result.UsedFallback || outcome.UsedFallback
	}

	for _, d := range input.Manual {
		result.ManualDeduction = result.ManualDeduction.Add(d.AmountFor(input.Employee.BaseAllowance))
	}

	result.Cap = ApplyCap(input.Employee.BaseAllowance, result.AttendanceDeduction, result.ManualDeduction)
	return result, nil
}

// =============================================================================
// INPUT VALIDATION - Fail fast, for this employee only
// =============================================================================

func validateInput(input PeriodInput) error {
	id := input.Employee.ID

	if err := input.Range.Validate(); err != nil {
		return invalidInput(id, "dateRange", err)
	}
	if input.Employee.BaseAllowance.IsNegative() {
		return invalidInput(id, "baseAllowance", ErrNegativeBaseAllowance)
	}
	for _, e := range input.Events {
		if !input.Range.Contains(e.Date) {
			return invalidInput(id, "events."+e.Date.String(), ErrEventOutOfRange)
		}
	}
	for i, d := range input.Manual {
		if d.Percent != nil && !d.Percent.InRange() {
			return invalidInput(id, manualField(i, "percent"), ErrPercentOutOfRange)
		}
		if d.Amount != nil && d.Amount.IsNegative() {
			return invalidInput(id, manualField(i, "amount"), ErrNegativeDeduction)
		}
	}
	return nil
}

func manualField(i int, field string) string {
	return "manualDeductions[" + strconv.Itoa(i) + "]." + field
}

// =============================================================================
// DUPLICATE EVENT COLLAPSE - earliest IN, latest OUT
// =============================================================================

type eventPair struct {
	in  *AttendanceEvent
	out *AttendanceEvent
}

func collapseEvents(events []AttendanceEvent) map[Date]eventPair {
	byDate := make(map[Date]eventPair)
	for i := range events {
		e := events[i]
		pair := byDate[e.Date]
		switch e.Kind {
		case KindClockIn:
			if pair.in == nil || e.Time.Before(pair.in.Time) {
				pair.in = &e
			}
		case KindClockOut:
			if pair.out == nil || e.Time.After(pair.out.Time) {
				pair.out = &e
			}
		}
		byDate[e.Date] = pair
	}
	return byDate
}
