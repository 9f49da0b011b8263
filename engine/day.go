/*
day.go - Per-day attendance classification

PURPOSE:
  Turns one employee-day of attendance facts into a single immutable
  DayOutcome: a closed status, the minutes late/early, the applied
  percentage, the deduction amount, and a narrative rationale.

PRECEDENCE (first match wins):
  a. holiday                      -> LIBUR, no deduction
  b. approved leave               -> CUTI, no deduction
  c. no clock events              -> ALPHA, rule TA
  d. clock-in only                -> LUPA PULANG, rule LAP
  e. clock-out only               -> LUPA MASUK, rule LAM
  f. both events                  -> lateness and earliness evaluated
                                     independently, percentages summed

TIERS:
  Lateness (minutes): <=30 free, 31-60 TL1, 61-90 TL2, >90 TL3.
  Earliness (minutes): 0 nominal, 1-30 PSW1, 31-60 PSW2, >60 PSW3.
  Lateness in (30, 90] may be cancelled by overtime (see overtime.go).

SEE ALSO:
  - overtime.go: Compensation rule
  - period.go:   Aggregates DayOutcomes over a period
*/
package engine

import "fmt"

// =============================================================================
// DAY STATUS - Closed tagged variant, not a free-form string
// =============================================================================

type DayStatus int

const (
	StatusHadir DayStatus = iota
	StatusLibur
	StatusCuti
	StatusAlpha
	StatusLupaMasuk
	StatusLupaPulang
	StatusTerlambat
	StatusPulangCepat
	StatusTerlambatPulangCepat
	StatusTerlambatKompensasi
	StatusTerlambatKompensasiPulangCepat
)

var dayStatusLabels = map[DayStatus]string{
	StatusHadir:                          "HADIR",
	StatusLibur:                          "LIBUR",
	StatusCuti:                           "CUTI",
	StatusAlpha:                          "ALPHA",
	StatusLupaMasuk:                      "LUPA MASUK",
	StatusLupaPulang:                     "LUPA PULANG",
	StatusTerlambat:                      "TERLAMBAT",
	StatusPulangCepat:                    "PULANG CEPAT",
	StatusTerlambatPulangCepat:           "TERLAMBAT + PULANG CEPAT",
	StatusTerlambatKompensasi:            "TERLAMBAT (DIKOMPENSASI LEMBUR)",
	StatusTerlambatKompensasiPulangCepat: "TERLAMBAT (DIKOMPENSASI LEMBUR) + PULANG CEPAT",
}

func (s DayStatus) String() string { return dayStatusLabels[s] }

// IsNonWorking reports whether the status suppresses all deductions.
func (s DayStatus) IsNonWorking() bool { return s == StatusLibur || s == StatusCuti }

// =============================================================================
// ATTENDANCE EVENTS AND SHIFTS
// =============================================================================

type EventKind string

const (
	KindClockIn  EventKind = "IN"
	KindClockOut EventKind = "OUT"
)

// ShiftSchedule is the scheduled start and end of a working day, local
// wall-clock. It travels with the attendance event, not the employee:
// the same employee may attend under different shifts on different days.
type ShiftSchedule struct {
	Start ClockTime
	End   ClockTime
}

// DefaultShift is used when an event carries no schedule.
func DefaultShift() ShiftSchedule {
	return ShiftSchedule{Start: NewClockTime(8, 0), End: NewClockTime(17, 0)}
}

// AttendanceEvent is one clock event for one employee on one date.
type AttendanceEvent struct {
	EmployeeID EmployeeID
	Date       Date
	Kind       EventKind
	Time       ClockTime
	Shift      *ShiftSchedule
}

// =============================================================================
// DAY OUTCOME - The fully classified result for one employee-day
// =============================================================================

// DayOutcome is produced exactly once per calendar date in a period and
// never mutated afterwards.
type DayOutcome struct {
	Date         Date
	Status       DayStatus
	MinutesLate  int
	MinutesEarly int
	Percent      Percent
	Deduction    Money
	Note         string
	Compensated  bool
	UsedFallback bool
}

// DayFacts are the materialized inputs for one employee-day. ClockIn and
// ClockOut are already collapsed: earliest IN, latest OUT (see period.go).
type DayFacts struct {
	Date     Date
	ClockIn  *AttendanceEvent
	ClockOut *AttendanceEvent
	Holiday  bool
	Leave    bool
}

// =============================================================================
// DAY CLASSIFIER
// =============================================================================

// ClassifyDay classifies one employee-day and prices its deduction against
// the base allowance. Pure: no clock, no I/O.
func ClassifyDay(base Money, facts DayFacts, rules RuleTable) DayOutcome {
	out := DayOutcome{Date: facts.Date, Percent: ZeroPercent(), Deduction: ZeroMoney()}

	hasAttendance := facts.ClockIn != nil || facts.ClockOut != nil

	switch {
	case facts.Holiday:
		out.Status = StatusLibur
		out.Note = "hari libur"
		return out

	case facts.Leave:
		out.Status = StatusCuti
		out.Note = "cuti disetujui"
		if hasAttendance {
			// Flagged for audit: leave suppresses the deduction but the
			// recorded attendance should not silently disappear.
			out.Note = "cuti disetujui; kehadiran tercatat pada hari cuti"
		}
		return out

	case !hasAttendance:
		pct, fb := rules.Lookup(CodeAbsence)
		out.Status = StatusAlpha
		out.Percent = pct
		out.UsedFallback = fb
		out.Note = fmt.Sprintf("tidak hadir tanpa keterangan (%s %s)", CodeAbsence, pct)

	case facts.ClockOut == nil:
		pct, fb := rules.Lookup(CodeMissingClockOut)
		out.Status = StatusLupaPulang
		out.Percent = pct
		out.UsedFallback = fb
		out.Note = fmt.Sprintf("lupa absen pulang (%s %s)", CodeMissingClockOut, pct)

	case facts.ClockIn == nil:
		pct, fb := rules.Lookup(CodeMissingClockIn)
		out.Status = StatusLupaMasuk
		out.Percent = pct
		out.UsedFallback = fb
		out.Note = fmt.Sprintf("lupa absen masuk (%s %s)", CodeMissingClockIn, pct)

	default:
		classifyFullDay(&out, facts, rules)
	}

	out.Deduction = base.ApplyPercent(out.Percent)
	return out
}

// classifyFullDay handles a day with both clock events: lateness and
// earliness are measured independently and their percentages summed.
func classifyFullDay(out *DayOutcome, facts DayFacts, rules RuleTable) {
	shift := resolveShift(facts)

	late := facts.ClockIn.Time.Sub(shift.Start)
	if late < 0 {
		late = 0
	}
	early := shift.End.Sub(facts.ClockOut.Time)
	if early < 0 {
		early = 0
	}
	out.MinutesLate = late
	out.MinutesEarly = early

	latePct, lateNote := lateDeduction(out, late, shift, facts, rules)
	earlyPct, earlyNote := earlyDeduction(out, early, rules)

	out.Percent = latePct.Add(earlyPct)
	out.Status = combineStatus(late, early, out.Compensated)
	out.Note = joinNotes(lateNote, earlyNote)
	if out.Note == "" {
		out.Note = "hadir tepat waktu"
	}
}

// resolveShift picks the day's schedule: the clock-in's shift, then the
// clock-out's, then the default.
func resolveShift(facts DayFacts) ShiftSchedule {
	if facts.ClockIn != nil && facts.ClockIn.Shift != nil {
		return *facts.ClockIn.Shift
	}
	if facts.ClockOut != nil && facts.ClockOut.Shift != nil {
		return *facts.ClockOut.Shift
	}
	return DefaultShift()
}

func lateDeduction(out *DayOutcome, late int, shift ShiftSchedule, facts DayFacts, rules RuleTable) (Percent, string) {
	if late == 0 {
		return ZeroPercent(), ""
	}
	if late <= lateGraceMinutes {
		return ZeroPercent(), fmt.Sprintf("terlambat %d menit (bebas potongan)", late)
	}

	var code RuleCode
	switch {
	case late <= 60:
		code = CodeLate31To60
	case late <= compensationLimitMinutes:
		code = CodeLate61To90
	default:
		code = CodeLateOver90
	}
	pct, fb := rules.Lookup(code)
	out.UsedFallback = out.UsedFallback || fb

	var clockOut *ClockTime
	if facts.ClockOut != nil {
		clockOut = &facts.ClockOut.Time
	}
	comp := CompensateLateness(late, shift.End, clockOut)
	if comp.Compensated {
		out.Compensated = true
		return ZeroPercent(), fmt.Sprintf(
			"terlambat %d menit dikompensasi lembur %d menit (butuh %d menit)",
			late, comp.OvertimeMinutes, comp.RequiredMinutes)
	}

	return pct, fmt.Sprintf("terlambat %d menit (%s %s)", late, code, pct)
}

func earlyDeduction(out *DayOutcome, early int, rules RuleTable) (Percent, string) {
	if early == 0 {
		return ZeroPercent(), ""
	}

	var code RuleCode
	switch {
	case early <= 30:
		code = CodeEarlyUpTo30
	case early <= 60:
		code = CodeEarly31To60
	default:
		code = CodeEarlyOver60
	}
	pct, fb := rules.Lookup(code)
	out.UsedFallback = out.UsedFallback || fb
	return pct, fmt.Sprintf("pulang cepat %d menit (%s %s)", early, code, pct)
}

// combineStatus concatenates whichever halves of the day are non-nominal.
func combineStatus(late, early int, compensated bool) DayStatus {
	lateBad := late > lateGraceMinutes
	earlyBad := early > 0

	switch {
	case !lateBad && !earlyBad:
		return StatusHadir
	case lateBad && !earlyBad:
		if compensated {
			return StatusTerlambatKompensasi
		}
		return StatusTerlambat
	case !lateBad && earlyBad:
		return StatusPulangCepat
	default:
		if compensated {
			return StatusTerlambatKompensasiPulangCepat
		}
		return StatusTerlambatPulangCepat
	}
}

func joinNotes(notes ...string) string {
	joined := ""
	for _, n := range notes {
		if n == "" {
			continue
		}
		if joined != "" {
			joined += "; "
		}
		joined += n
	}
	return joined
}
