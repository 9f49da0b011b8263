package engine_test

import (
	"testing"
	"time"

	"github.com/warp/allowance-engine/engine"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func money(s string) engine.Money     { return engine.MustParseMoney(s) }
func pct(s string) engine.Percent     { return engine.MustParsePercent(s) }
func date(d int) engine.Date          { return engine.NewDate(2026, time.March, d) }
func clock(h, m int) engine.ClockTime { return engine.NewClockTime(h, m) }

func stdShift() *engine.ShiftSchedule {
	s := engine.ShiftSchedule{Start: clock(8, 0), End: clock(17, 0)}
	return &s
}

func inEvent(d engine.Date, t engine.ClockTime) *engine.AttendanceEvent {
	return &engine.AttendanceEvent{
		EmployeeID: "emp-1", Date: d, Kind: engine.KindClockIn, Time: t, Shift: stdShift(),
	}
}

func outEvent(d engine.Date, t engine.ClockTime) *engine.AttendanceEvent {
	return &engine.AttendanceEvent{
		EmployeeID: "emp-1", Date: d, Kind: engine.KindClockOut, Time: t, Shift: stdShift(),
	}
}

var testBase = money("1000000")

func classify(facts engine.DayFacts) engine.DayOutcome {
	return engine.ClassifyDay(testBase, facts, engine.DefaultRuleTable())
}

// =============================================================================
// PRECEDENCE TESTS
// =============================================================================

func TestClassifyDay_Holiday_NoDeduction(t *testing.T) {
	// GIVEN: A holiday, even with attendance recorded
	// THEN: LIBUR, zero deduction

	out := classify(engine.DayFacts{
		Date:    date(1),
		Holiday: true,
		ClockIn: inEvent(date(1), clock(8, 0)),
	})

	if out.Status != engine.StatusLibur {
		t.Errorf("expected LIBUR, got %s", out.Status)
	}
	if !out.Deduction.IsZero() {
		t.Errorf("holiday must have zero deduction, got %s", out.Deduction)
	}
}

func TestClassifyDay_HolidayWinsOverLeave(t *testing.T) {
	// GIVEN: Both a holiday and approved leave on the same date
	// THEN: Labeled LIBUR; deduction zero either way

	out := classify(engine.DayFacts{Date: date(1), Holiday: true, Leave: true})

	if out.Status != engine.StatusLibur {
		t.Errorf("expected LIBUR label, got %s", out.Status)
	}
	if !out.Deduction.IsZero() {
		t.Errorf("expected zero deduction, got %s", out.Deduction)
	}
}

func TestClassifyDay_Leave_NoDeduction(t *testing.T) {
	out := classify(engine.DayFacts{Date: date(2), Leave: true})

	if out.Status != engine.StatusCuti {
		t.Errorf("expected CUTI, got %s", out.Status)
	}
	if !out.Deduction.IsZero() {
		t.Errorf("leave must have zero deduction, got %s", out.Deduction)
	}
}

func TestClassifyDay_LeaveWithAttendance_FlaggedInNote(t *testing.T) {
	// GIVEN: Approved leave AND a recorded clock-in on the same date
	// THEN: Leave wins (zero deduction) but the note records the collision

	out := classify(engine.DayFacts{
		Date:    date(2),
		Leave:   true,
		ClockIn: inEvent(date(2), clock(8, 5)),
	})

	if out.Status != engine.StatusCuti {
		t.Errorf("expected CUTI, got %s", out.Status)
	}
	if out.Note == "cuti disetujui" {
		t.Error("note should flag the recorded attendance on a leave day")
	}
}

func TestClassifyDay_NoEvents_Alpha(t *testing.T) {
	out := classify(engine.DayFacts{Date: date(3)})

	if out.Status != engine.StatusAlpha {
		t.Errorf("expected ALPHA, got %s", out.Status)
	}
	// Default TA = 5% of 1,000,000
	if !out.Deduction.Equal(money("50000")) {
		t.Errorf("expected 50000, got %s", out.Deduction)
	}
}

func TestClassifyDay_InOnly_LupaPulang(t *testing.T) {
	out := classify(engine.DayFacts{Date: date(4), ClockIn: inEvent(date(4), clock(8, 0))})

	if out.Status != engine.StatusLupaPulang {
		t.Errorf("expected LUPA PULANG, got %s", out.Status)
	}
	// Default LAP = 2.5%
	if !out.Deduction.Equal(money("25000")) {
		t.Errorf("expected 25000, got %s", out.Deduction)
	}
}

func TestClassifyDay_OutOnly_LupaMasuk(t *testing.T) {
	out := classify(engine.DayFacts{Date: date(5), ClockOut: outEvent(date(5), clock(17, 0))})

	if out.Status != engine.StatusLupaMasuk {
		t.Errorf("expected LUPA MASUK, got %s", out.Status)
	}
	if !out.Deduction.Equal(money("25000")) {
		t.Errorf("expected 25000, got %s", out.Deduction)
	}
}

// =============================================================================
// LATENESS TIERS
// =============================================================================

func TestClassifyDay_LatenessTiers(t *testing.T) {
	cases := []struct {
		name      string
		inTime    engine.ClockTime
		deduction string
		status    engine.DayStatus
	}{
		{"on time", clock(8, 0), "0", engine.StatusHadir},
		{"30 min late is free", clock(8, 30), "0", engine.StatusHadir},
		{"31 min late hits TL1", clock(8, 31), "5000", engine.StatusTerlambat},
		{"60 min late stays TL1", clock(9, 0), "5000", engine.StatusTerlambat},
		{"61 min late hits TL2", clock(9, 1), "12500", engine.StatusTerlambat},
		{"90 min late stays TL2", clock(9, 30), "12500", engine.StatusTerlambat},
		{"91 min late hits TL3", clock(9, 31), "25000", engine.StatusTerlambat},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out := classify(engine.DayFacts{
				Date:     date(6),
				ClockIn:  inEvent(date(6), tc.inTime),
				ClockOut: outEvent(date(6), clock(17, 0)),
			})

			if !out.Deduction.Equal(money(tc.deduction)) {
				t.Errorf("expected deduction %s, got %s", tc.deduction, out.Deduction)
			}
			if out.Status != tc.status {
				t.Errorf("expected status %s, got %s", tc.status, out.Status)
			}
		})
	}
}

// =============================================================================
// EARLINESS TIERS
// =============================================================================

func TestClassifyDay_EarlinessTiers(t *testing.T) {
	cases := []struct {
		name      string
		outTime   engine.ClockTime
		deduction string
		status    engine.DayStatus
	}{
		{"on the dot", clock(17, 0), "0", engine.StatusHadir},
		{"late checkout is fine", clock(18, 0), "0", engine.StatusHadir},
		{"1 min early hits PSW1", clock(16, 59), "5000", engine.StatusPulangCepat},
		{"30 min early stays PSW1", clock(16, 30), "5000", engine.StatusPulangCepat},
		{"31 min early hits PSW2", clock(16, 29), "12500", engine.StatusPulangCepat},
		{"60 min early stays PSW2", clock(16, 0), "12500", engine.StatusPulangCepat},
		{"61 min early hits PSW3", clock(15, 59), "25000", engine.StatusPulangCepat},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out := classify(engine.DayFacts{
				Date:     date(7),
				ClockIn:  inEvent(date(7), clock(8, 0)),
				ClockOut: outEvent(date(7), tc.outTime),
			})

			if !out.Deduction.Equal(money(tc.deduction)) {
				t.Errorf("expected deduction %s, got %s", tc.deduction, out.Deduction)
			}
			if out.Status != tc.status {
				t.Errorf("expected status %s, got %s", tc.status, out.Status)
			}
		})
	}
}

// =============================================================================
// COMBINED HALVES
// =============================================================================

func TestClassifyDay_LateAndEarly_PercentagesSum(t *testing.T) {
	// GIVEN: 45 minutes late (TL1 0.5%) and 45 minutes early (PSW2 1.25%)
	// THEN: Combined status, 1.75% deduction

	out := classify(engine.DayFacts{
		Date:     date(8),
		ClockIn:  inEvent(date(8), clock(8, 45)),
		ClockOut: outEvent(date(8), clock(16, 15)),
	})

	if out.Status != engine.StatusTerlambatPulangCepat {
		t.Errorf("expected TERLAMBAT + PULANG CEPAT, got %s", out.Status)
	}
	if !out.Deduction.Equal(money("17500")) {
		t.Errorf("expected 17500, got %s", out.Deduction)
	}
	if out.MinutesLate != 45 || out.MinutesEarly != 45 {
		t.Errorf("expected 45/45 minutes, got %d/%d", out.MinutesLate, out.MinutesEarly)
	}
}

// =============================================================================
// OVERTIME COMPENSATION (spec scenarios B and C)
// =============================================================================

func TestClassifyDay_Late45NoOvertime_NotCompensated(t *testing.T) {
	// GIVEN: 45 minutes late, checkout exactly at scheduled end
	// THEN: TL1 deduction 5000, not compensated

	out := classify(engine.DayFacts{
		Date:     date(9),
		ClockIn:  inEvent(date(9), clock(8, 45)),
		ClockOut: outEvent(date(9), clock(17, 0)),
	})

	if out.Compensated {
		t.Error("no overtime recorded, must not be compensated")
	}
	if out.Status != engine.StatusTerlambat {
		t.Errorf("expected TERLAMBAT, got %s", out.Status)
	}
	if !out.Deduction.Equal(money("5000")) {
		t.Errorf("expected 5000, got %s", out.Deduction)
	}
}

func TestClassifyDay_Late45Overtime40_Compensated(t *testing.T) {
	// GIVEN: 45 minutes late (compensable 15, required overtime 30),
	//        checkout 40 minutes past scheduled end
	// THEN: Deduction zeroed, status marked compensated

	out := classify(engine.DayFacts{
		Date:     date(10),
		ClockIn:  inEvent(date(10), clock(8, 45)),
		ClockOut: outEvent(date(10), clock(17, 40)),
	})

	if !out.Compensated {
		t.Fatal("40 minutes overtime covers the 30 required, must compensate")
	}
	if out.Status != engine.StatusTerlambatKompensasi {
		t.Errorf("expected TERLAMBAT (DIKOMPENSASI LEMBUR), got %s", out.Status)
	}
	if !out.Deduction.IsZero() {
		t.Errorf("expected zero deduction, got %s", out.Deduction)
	}
}

func TestClassifyDay_CompensationNeverTouchesEarliness(t *testing.T) {
	// Compensation is a lateness-only rule; an early departure on the same
	// day keeps its own deduction. (Early checkout also means no overtime,
	// so this exercises the not-compensated path with both halves active.)

	out := classify(engine.DayFacts{
		Date:     date(11),
		ClockIn:  inEvent(date(11), clock(8, 45)),
		ClockOut: outEvent(date(11), clock(16, 45)),
	})

	if out.Compensated {
		t.Error("early checkout cannot produce overtime compensation")
	}
	// TL1 0.5% + PSW1 0.5%
	if !out.Deduction.Equal(money("10000")) {
		t.Errorf("expected 10000, got %s", out.Deduction)
	}
}

func TestClassifyDay_LateOver90_NoCompensationOffered(t *testing.T) {
	// GIVEN: 120 minutes late with massive overtime
	// THEN: TL3 applies in full; compensation is not offered above 90

	out := classify(engine.DayFacts{
		Date:     date(12),
		ClockIn:  inEvent(date(12), clock(10, 0)),
		ClockOut: outEvent(date(12), clock(21, 0)),
	})

	if out.Compensated {
		t.Error("lateness above 90 minutes is never compensated")
	}
	if !out.Deduction.Equal(money("25000")) {
		t.Errorf("expected 25000 (TL3), got %s", out.Deduction)
	}
}

// =============================================================================
// FALLBACK TAGGING
// =============================================================================

func TestClassifyDay_OverriddenRule_NotTaggedAsFallback(t *testing.T) {
	rules, err := engine.NewRuleTable(map[engine.RuleCode]engine.Percent{
		engine.CodeAbsence: pct("4"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := engine.ClassifyDay(testBase, engine.DayFacts{Date: date(13)}, rules)

	if out.UsedFallback {
		t.Error("overridden TA must not be tagged as fallback")
	}
	if !out.Deduction.Equal(money("40000")) {
		t.Errorf("expected 40000 with TA=4%%, got %s", out.Deduction)
	}
}

func TestClassifyDay_MissingRule_TaggedAsFallback(t *testing.T) {
	out := classify(engine.DayFacts{Date: date(14)})

	if !out.UsedFallback {
		t.Error("default table lookup must be tagged as fallback for audit")
	}
}
