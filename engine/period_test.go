package engine_test

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/warp/allowance-engine/engine"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func fiveDayRange() engine.DateRange {
	return engine.DateRange{Start: date(2), End: date(6)} // Mar 2-6 2026, Mon-Fri
}

func perfectWeek(emp engine.EmployeeID, r engine.DateRange) []engine.AttendanceEvent {
	var events []engine.AttendanceEvent
	for _, d := range r.Days() {
		events = append(events,
			*inEvent(d, clock(8, 0)),
			*outEvent(d, clock(17, 0)),
		)
	}
	return events
}

func basicInput() engine.PeriodInput {
	return engine.PeriodInput{
		Employee: engine.Employee{ID: "emp-1", BaseAllowance: testBase},
		Range:    fiveDayRange(),
		Rules:    engine.DefaultRuleTable(),
	}
}

// =============================================================================
// SPEC SCENARIOS
// =============================================================================

func TestComputePeriodResult_PerfectAttendance_FullAllowance(t *testing.T) {
	// GIVEN: Clocks in/out exactly on schedule all five days
	// THEN: Net allowance is the full base, every day HADIR

	input := basicInput()
	input.Events = perfectWeek("emp-1", input.Range)

	result, err := engine.ComputePeriodResult(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !result.Cap.NetAllowance.Equal(money("1000000")) {
		t.Errorf("expected net 1000000, got %s", result.Cap.NetAllowance)
	}
	for _, day := range result.Days {
		if day.Status != engine.StatusHadir {
			t.Errorf("%s: expected HADIR, got %s", day.Date, day.Status)
		}
	}
}

func TestComputePeriodResult_OneLateDay(t *testing.T) {
	// GIVEN: 45 minutes late on one day, no overtime
	// THEN: That day deducts 0.5% = 5000; period total matches

	input := basicInput()
	input.Events = perfectWeek("emp-1", input.Range)
	input.Events[0].Time = clock(8, 45) // Monday's clock-in

	result, err := engine.ComputePeriodResult(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !result.AttendanceDeduction.Equal(money("5000")) {
		t.Errorf("expected attendance deduction 5000, got %s", result.AttendanceDeduction)
	}
	if result.Days[0].Status != engine.StatusTerlambat {
		t.Errorf("expected TERLAMBAT, got %s", result.Days[0].Status)
	}
	if result.Days[0].Compensated {
		t.Error("no overtime, must not be compensated")
	}
}

func TestComputePeriodResult_FullMonthAbsent_CappedAt60Percent(t *testing.T) {
	// GIVEN: 30 days, no events, no leave, no holidays, TA default 5%
	// THEN: Raw deduction 1,500,000 capped to 600,000, net 400,000

	input := basicInput()
	input.Range = engine.DateRange{Start: engine.NewDate(2026, time.April, 1), End: engine.NewDate(2026, time.April, 30)}

	result, err := engine.ComputePeriodResult(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !result.AttendanceDeduction.Equal(money("1500000")) {
		t.Errorf("expected pre-cap 1500000, got %s", result.AttendanceDeduction)
	}
	if !result.Cap.AttendanceCapped {
		t.Error("attendanceCapped must be set")
	}
	if !result.Cap.TotalDeduction.Equal(money("600000")) {
		t.Errorf("expected capped 600000, got %s", result.Cap.TotalDeduction)
	}
	if !result.Cap.NetAllowance.Equal(money("400000")) {
		t.Errorf("expected net 400000, got %s", result.Cap.NetAllowance)
	}
}

// =============================================================================
// INVARIANTS
// =============================================================================

func TestComputePeriodResult_OneOutcomePerCalendarDay(t *testing.T) {
	input := basicInput()
	input.Range = engine.DateRange{Start: engine.NewDate(2026, time.February, 1), End: engine.NewDate(2026, time.February, 28)}

	result, err := engine.ComputePeriodResult(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Days) != 28 {
		t.Fatalf("expected 28 outcomes, got %d", len(result.Days))
	}
	for i, day := range result.Days {
		expected := input.Range.Start.AddDays(i)
		if !day.Date.Equal(expected) {
			t.Errorf("day %d: expected %s, got %s", i, expected, day.Date)
		}
	}
}

func TestComputePeriodResult_DailySumEqualsTotal_Exactly(t *testing.T) {
	// A messy week: alpha, late, early, missing checkout, compensated.

	input := basicInput()
	r := input.Range
	input.Events = []engine.AttendanceEvent{
		// Day 1: 40 late, out on time
		*inEvent(r.Start, clock(8, 40)), *outEvent(r.Start, clock(17, 0)),
		// Day 2: in on time, 50 early
		*inEvent(r.Start.AddDays(1), clock(8, 0)), *outEvent(r.Start.AddDays(1), clock(16, 10)),
		// Day 3: clock-in only
		*inEvent(r.Start.AddDays(2), clock(8, 0)),
		// Day 4: 45 late, compensated by 40 overtime
		*inEvent(r.Start.AddDays(3), clock(8, 45)), *outEvent(r.Start.AddDays(3), clock(17, 40)),
		// Day 5: absent (no events)
	}

	result, err := engine.ComputePeriodResult(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sum := engine.ZeroMoney()
	for _, day := range result.Days {
		sum = sum.Add(day.Deduction)
	}
	if !sum.Equal(result.AttendanceDeduction) {
		t.Errorf("daily sum %s != period total %s", sum, result.AttendanceDeduction)
	}
	// 5000 (TL1) + 12500 (PSW2) + 25000 (LAP) + 0 (compensated) + 50000 (TA)
	if !result.AttendanceDeduction.Equal(money("92500")) {
		t.Errorf("expected 92500, got %s", result.AttendanceDeduction)
	}
}

func TestComputePeriodResult_LeaveAndHolidayDays_ZeroDeduction(t *testing.T) {
	input := basicInput()
	input.HolidayDates = engine.NewDateSet(date(3))
	input.LeaveDates = engine.NewDateSet(date(4), date(5))

	result, err := engine.ComputePeriodResult(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, day := range result.Days {
		if day.Status.IsNonWorking() && !day.Deduction.IsZero() {
			t.Errorf("%s: non-working day with deduction %s", day.Date, day.Deduction)
		}
	}
	// Two remaining absent days at 5% each.
	if !result.AttendanceDeduction.Equal(money("100000")) {
		t.Errorf("expected 100000, got %s", result.AttendanceDeduction)
	}
}

func TestComputePeriodResult_Idempotent(t *testing.T) {
	input := basicInput()
	input.Events = perfectWeek("emp-1", input.Range)
	input.Events[2].Time = clock(9, 15)
	input.Manual = []engine.ManualDeduction{{Amount: moneyPtr("25000"), Reason: "seragam"}}

	first, err := engine.ComputePeriodResult(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := engine.ComputePeriodResult(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Error("identical inputs must produce identical results")
	}
}

func moneyPtr(s string) *engine.Money {
	m := money(s)
	return &m
}

func pctPtr(s string) *engine.Percent {
	p := pct(s)
	return &p
}

// =============================================================================
// DUPLICATE EVENTS - earliest IN, latest OUT (documented policy)
// =============================================================================

func TestComputePeriodResult_DuplicateEvents_Collapsed(t *testing.T) {
	input := basicInput()
	d := input.Range.Start
	input.Events = []engine.AttendanceEvent{
		*inEvent(d, clock(9, 0)),   // later duplicate
		*inEvent(d, clock(8, 0)),   // earliest wins
		*outEvent(d, clock(16, 0)), // earlier duplicate
		*outEvent(d, clock(17, 0)), // latest wins
	}

	result, err := engine.ComputePeriodResult(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	day := result.Days[0]
	if day.Status != engine.StatusHadir {
		t.Errorf("expected HADIR after collapse, got %s", day.Status)
	}
	if day.MinutesLate != 0 || day.MinutesEarly != 0 {
		t.Errorf("expected 0/0 minutes, got %d/%d", day.MinutesLate, day.MinutesEarly)
	}
}

// =============================================================================
// MANUAL DEDUCTIONS
// =============================================================================

func TestComputePeriodResult_ManualDeductions_PercentAndFixed(t *testing.T) {
	input := basicInput()
	input.Events = perfectWeek("emp-1", input.Range)
	input.Manual = []engine.ManualDeduction{
		{Percent: pctPtr("10"), Reason: "sanksi"},     // 100000
		{Amount: moneyPtr("50000"), Reason: "kasbon"}, // 50000
	}

	result, err := engine.ComputePeriodResult(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !result.ManualDeduction.Equal(money("150000")) {
		t.Errorf("expected manual total 150000, got %s", result.ManualDeduction)
	}
	if !result.Cap.NetAllowance.Equal(money("850000")) {
		t.Errorf("expected net 850000, got %s", result.Cap.NetAllowance)
	}
}

func TestComputePeriodResult_JointCap_ScenarioE(t *testing.T) {
	// GIVEN: Attendance deduction 500,000 (10 absent days at 5%) and a
	//        fixed manual deduction of 300,000 on base 1,000,000
	// THEN: Proportional scaling to 375,000 + 225,000, net 400,000

	input := basicInput()
	input.Range = engine.DateRange{Start: engine.NewDate(2026, time.May, 1), End: engine.NewDate(2026, time.May, 10)}
	input.Manual = []engine.ManualDeduction{{Amount: moneyPtr("300000"), Reason: "potongan lain"}}

	result, err := engine.ComputePeriodResult(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !result.Cap.TotalCapped {
		t.Fatal("joint cap must trigger")
	}
	if !result.Cap.CappedAttendance.Equal(money("375000")) {
		t.Errorf("expected 375000, got %s", result.Cap.CappedAttendance)
	}
	if !result.Cap.CappedManual.Equal(money("225000")) {
		t.Errorf("expected 225000, got %s", result.Cap.CappedManual)
	}
	if !result.Cap.NetAllowance.Equal(money("400000")) {
		t.Errorf("expected 400000, got %s", result.Cap.NetAllowance)
	}
}

// =============================================================================
// INPUT VALIDATION
// =============================================================================

func TestComputePeriodResult_InvalidInputs(t *testing.T) {
	cases := []struct {
		name     string
		mutate   func(*engine.PeriodInput)
		sentinel error
	}{
		{
			"end before start",
			func(in *engine.PeriodInput) {
				in.Range = engine.DateRange{Start: date(10), End: date(5)}
			},
			engine.ErrInvalidDateRange,
		},
		{
			"negative base allowance",
			func(in *engine.PeriodInput) {
				in.Employee.BaseAllowance = money("-1")
			},
			engine.ErrNegativeBaseAllowance,
		},
		{
			"event outside range",
			func(in *engine.PeriodInput) {
				in.Events = []engine.AttendanceEvent{*inEvent(date(20), clock(8, 0))}
			},
			engine.ErrEventOutOfRange,
		},
		{
			"manual percent above 100",
			func(in *engine.PeriodInput) {
				in.Manual = []engine.ManualDeduction{{Percent: pctPtr("101")}}
			},
			engine.ErrPercentOutOfRange,
		},
		{
			"negative manual amount",
			func(in *engine.PeriodInput) {
				in.Manual = []engine.ManualDeduction{{Amount: moneyPtr("-5")}}
			},
			engine.ErrNegativeDeduction,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := basicInput()
			tc.mutate(&input)

			_, err := engine.ComputePeriodResult(input)

			if !engine.IsInvalidInput(err) {
				t.Fatalf("expected InvalidInputError, got %v", err)
			}
			if !errors.Is(err, tc.sentinel) {
				t.Errorf("expected sentinel %v, got %v", tc.sentinel, err)
			}
		})
	}
}

func TestComputePeriodResult_FallbackTagged(t *testing.T) {
	// Default table means every applied percentage is a fallback.
	input := basicInput()

	result, err := engine.ComputePeriodResult(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.UsedFallback {
		t.Error("result must be tagged when fallback defaults were used")
	}

	// Fully overridden table: no fallback tagging.
	overrides := make(map[engine.RuleCode]engine.Percent)
	for _, code := range engine.AllRuleCodes() {
		overrides[code] = pct("1")
	}
	rules, err := engine.NewRuleTable(overrides)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	input.Rules = rules

	result, err = engine.ComputePeriodResult(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.UsedFallback {
		t.Error("fully overridden table must not tag fallback")
	}
}
