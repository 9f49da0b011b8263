/*
rules.go - Deduction-rule table with documented fallback defaults

PURPOSE:
  Maps deduction codes to percentages of the base allowance. The code set
  is closed and versionable; an externally supplied table may override any
  subset of it. Lookups never fail: a missing code falls back to the
  documented default for its category and the lookup reports that a
  fallback was used, so period results remain auditable.

CODES:
  TA    absent all day (no clock events)            default 5%
  LAM   clock-out present, clock-in missing         default 2.5%
  LAP   clock-in present, clock-out missing         default 2.5%
  TL1   late 31-60 minutes                          default 0.5%
  TL2   late 61-90 minutes                          default 1.25%
  TL3   late more than 90 minutes                   default 2.5%
  PSW1  left early up to 30 minutes                 default 0.5%
  PSW2  left early 31-60 minutes                    default 1.25%
  PSW3  left early more than 60 minutes             default 2.5%

  Lateness of 30 minutes or less is free and has no code lookup.
*/
package engine

// =============================================================================
// RULE CODES - Closed, versionable set
// =============================================================================

type RuleCode string

const (
	CodeAbsence         RuleCode = "TA"
	CodeMissingClockIn  RuleCode = "LAM"
	CodeMissingClockOut RuleCode = "LAP"
	CodeLate31To60      RuleCode = "TL1"
	CodeLate61To90      RuleCode = "TL2"
	CodeLateOver90      RuleCode = "TL3"
	CodeEarlyUpTo30     RuleCode = "PSW1"
	CodeEarly31To60     RuleCode = "PSW2"
	CodeEarlyOver60     RuleCode = "PSW3"
)

// AllRuleCodes returns the closed code set in stable order.
func AllRuleCodes() []RuleCode {
	return []RuleCode{
		CodeAbsence, CodeMissingClockIn, CodeMissingClockOut,
		CodeLate31To60, CodeLate61To90, CodeLateOver90,
		CodeEarlyUpTo30, CodeEarly31To60, CodeEarlyOver60,
	}
}

// IsValidRuleCode reports whether code belongs to the closed set.
func IsValidRuleCode(code RuleCode) bool {
	for _, c := range AllRuleCodes() {
		if c == code {
			return true
		}
	}
	return false
}

// defaultPercentages is the documented fallback table. A RuleTable override
// replaces an entry; it never removes the default.
var defaultPercentages = map[RuleCode]Percent{
	CodeAbsence:         MustParsePercent("5"),
	CodeMissingClockIn:  MustParsePercent("2.5"),
	CodeMissingClockOut: MustParsePercent("2.5"),
	CodeLate31To60:      MustParsePercent("0.5"),
	CodeLate61To90:      MustParsePercent("1.25"),
	CodeLateOver90:      MustParsePercent("2.5"),
	CodeEarlyUpTo30:     MustParsePercent("0.5"),
	CodeEarly31To60:     MustParsePercent("1.25"),
	CodeEarlyOver60:     MustParsePercent("2.5"),
}

// RuleLabels are human labels for display and export.
var RuleLabels = map[RuleCode]string{
	CodeAbsence:         "Tanpa keterangan (alpha)",
	CodeMissingClockIn:  "Lupa absen masuk",
	CodeMissingClockOut: "Lupa absen pulang",
	CodeLate31To60:      "Terlambat 31-60 menit",
	CodeLate61To90:      "Terlambat 61-90 menit",
	CodeLateOver90:      "Terlambat lebih dari 90 menit",
	CodeEarlyUpTo30:     "Pulang cepat sampai 30 menit",
	CodeEarly31To60:     "Pulang cepat 31-60 menit",
	CodeEarlyOver60:     "Pulang cepat lebih dari 60 menit",
}

// =============================================================================
// RULE TABLE - Read-only lookup with fallback
// =============================================================================

// RuleTable resolves rule codes to percentages. The zero value is usable
// and resolves every code to its default.
//
// The table is read-only after construction; a calculation run may share
// one table across employees and goroutines.
type RuleTable struct {
	overrides map[RuleCode]Percent
}

// NewRuleTable builds a table from external overrides. Percentages outside
// [0, 100] are rejected up front so a bad table is a startup-time concern,
// never a silent per-day one.
func NewRuleTable(overrides map[RuleCode]Percent) (RuleTable, error) {
	copied := make(map[RuleCode]Percent, len(overrides))
	for code, pct := range overrides {
		if !pct.InRange() {
			return RuleTable{}, invalidInput("", "ruleTable."+string(code), ErrPercentOutOfRange)
		}
		copied[code] = pct
	}
	return RuleTable{overrides: copied}, nil
}

// DefaultRuleTable returns a table with no overrides.
func DefaultRuleTable() RuleTable { return RuleTable{} }

// Lookup resolves a code. The second return is true when the table had no
// override and the documented default was used.
func (t RuleTable) Lookup(code RuleCode) (Percent, bool) {
	if pct, ok := t.overrides[code]; ok {
		return pct, false
	}
	return defaultPercentages[code], true
}
