/*
overtime.go - Late-arrival / overtime compensation rule

PURPOSE:
  A narrow refinement of the day classifier: an employee who arrived
  31-90 minutes late can cancel the late penalty by working past the
  scheduled end of the shift. Overtime is valued at half the penalty
  rate, so two overtime minutes offset one compensable late minute.

  The first 30 late minutes are free and therefore not compensable.
  Lateness beyond 90 minutes is not offered compensation at all.
  The rule never touches early-departure deductions.
*/
package engine

const (
	// lateGraceMinutes is the free lateness window; arrivals within it
	// carry no deduction and no code lookup.
	lateGraceMinutes = 30

	// compensationLimitMinutes is the upper bound of lateness for which
	// overtime compensation is offered.
	compensationLimitMinutes = 90

	// overtimeMinutesPerLateMinute: two overtime minutes offset one
	// compensable late minute.
	overtimeMinutesPerLateMinute = 2
)

// CompensationResult describes the outcome of the overtime rule for one day.
type CompensationResult struct {
	// Eligible is true when lateness falls in (30, 90] minutes.
	Eligible bool

	// Compensated is true when recorded overtime covers the requirement.
	Compensated bool

	// OvertimeMinutes worked past the scheduled shift end (floor 0).
	OvertimeMinutes int

	// RequiredMinutes of overtime needed to cancel the penalty.
	RequiredMinutes int
}

// CompensateLateness applies the overtime rule. clockOut is nil when the
// employee never clocked out that day (no overtime can be measured).
func CompensateLateness(lateMinutes int, scheduledEnd ClockTime, clockOut *ClockTime) CompensationResult {
	if lateMinutes <= lateGraceMinutes || lateMinutes > compensationLimitMinutes {
		return CompensationResult{}
	}

	overtime := 0
	if clockOut != nil {
		if d := clockOut.Sub(scheduledEnd); d > 0 {
			overtime = d
		}
	}

	compensable := lateMinutes - lateGraceMinutes
	required := compensable * overtimeMinutesPerLateMinute

	return CompensationResult{
		Eligible:        true,
		Compensated:     overtime >= required,
		OvertimeMinutes: overtime,
		RequiredMinutes: required,
	}
}
