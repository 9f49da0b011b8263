package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/allowance-engine/engine"
	"github.com/warp/allowance-engine/report"
	"github.com/warp/allowance-engine/store/sqlite"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func money(s string) engine.Money { return engine.MustParseMoney(s) }

func TestEmployeeRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	shift := engine.ShiftSchedule{Start: engine.NewClockTime(9, 0), End: engine.NewClockTime(18, 0)}
	rec := report.EmployeeRecord{
		Employee: engine.Employee{ID: "emp-1", Name: "Budi", BaseAllowance: money("1250000.50")},
		Shift:    &shift,
	}
	require.NoError(t, s.SaveEmployee(ctx, rec))

	got, err := s.Employee(ctx, "emp-1")
	require.NoError(t, err)
	assert.Equal(t, "Budi", got.Name)
	assert.True(t, got.BaseAllowance.Equal(money("1250000.50")))
	require.NotNil(t, got.Shift)
	assert.Equal(t, "09:00", got.Shift.Start.String())
	assert.Equal(t, "18:00", got.Shift.End.String())

	// Upsert updates in place.
	rec.Name = "Budi S."
	rec.Shift = nil
	require.NoError(t, s.SaveEmployee(ctx, rec))
	got, err = s.Employee(ctx, "emp-1")
	require.NoError(t, err)
	assert.Equal(t, "Budi S.", got.Name)
	assert.Nil(t, got.Shift)

	_, err = s.Employee(ctx, "missing")
	assert.True(t, report.IsNotFound(err))
}

func TestEventsInRange(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	in := engine.AttendanceEvent{
		EmployeeID: "emp-1",
		Date:       engine.NewDate(2026, time.March, 2),
		Kind:       engine.KindClockIn,
		Time:       engine.NewClockTime(8, 5),
	}
	out := in
	out.Kind = engine.KindClockOut
	out.Time = engine.NewClockTime(17, 2)
	outside := in
	outside.Date = engine.NewDate(2026, time.April, 1)

	require.NoError(t, s.AppendEvent(ctx, in))
	require.NoError(t, s.AppendEvent(ctx, out))
	require.NoError(t, s.AppendEvent(ctx, outside))

	events, err := s.EventsInRange(ctx, "emp-1", engine.MonthOf(2026, time.March))
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, engine.KindClockIn, events[0].Kind)
	assert.Equal(t, "08:05", events[0].Time.String())
	assert.Equal(t, engine.KindClockOut, events[1].Kind)

	// Other employees see nothing.
	events, err = s.EventsInRange(ctx, "emp-2", engine.MonthOf(2026, time.March))
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestApprovedLeaveDates(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	// Straddles the month boundary: only March days are returned.
	require.NoError(t, s.SaveLeave(ctx, report.LeaveRecord{
		ID:         "lv-1",
		EmployeeID: "emp-1",
		Range: engine.DateRange{
			Start: engine.NewDate(2026, time.March, 30),
			End:   engine.NewDate(2026, time.April, 2),
		},
		Approved: true,
	}))
	// Pending leave never counts.
	require.NoError(t, s.SaveLeave(ctx, report.LeaveRecord{
		ID:         "lv-2",
		EmployeeID: "emp-1",
		Range: engine.DateRange{
			Start: engine.NewDate(2026, time.March, 10),
			End:   engine.NewDate(2026, time.March, 12),
		},
		Approved: false,
	}))

	dates, err := s.ApprovedLeaveDates(ctx, "emp-1", engine.MonthOf(2026, time.March))
	require.NoError(t, err)
	assert.Len(t, dates, 2)
	assert.True(t, dates.Contains(engine.NewDate(2026, time.March, 30)))
	assert.True(t, dates.Contains(engine.NewDate(2026, time.March, 31)))
	assert.False(t, dates.Contains(engine.NewDate(2026, time.March, 10)))
}

func TestHolidayRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.SaveHoliday(ctx, report.Holiday{
		Date: engine.NewDate(2026, time.March, 21), Name: "Nyepi",
	}))
	// Same date upserts.
	require.NoError(t, s.SaveHoliday(ctx, report.Holiday{
		Date: engine.NewDate(2026, time.March, 21), Name: "Hari Raya Nyepi",
	}))

	dates, err := s.HolidayDates(ctx, engine.MonthOf(2026, time.March))
	require.NoError(t, err)
	assert.Len(t, dates, 1)
	assert.True(t, dates.Contains(engine.NewDate(2026, time.March, 21)))
}

func TestRuleOverrides(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.SaveRuleOverride(ctx, engine.CodeAbsence, engine.MustParsePercent("4")))
	require.NoError(t, s.SaveRuleOverride(ctx, engine.CodeAbsence, engine.MustParsePercent("3.5")))
	require.NoError(t, s.SaveRuleOverride(ctx, engine.CodeLate31To60, engine.MustParsePercent("0.75")))

	overrides, err := s.RuleOverrides(ctx)
	require.NoError(t, err)
	require.Len(t, overrides, 2)
	assert.True(t, overrides[engine.CodeAbsence].Equal(engine.MustParsePercent("3.5")))
	assert.True(t, overrides[engine.CodeLate31To60].Equal(engine.MustParsePercent("0.75")))
}

func TestManualDeductions(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	march := report.MonthOf(2026, time.March)

	amount := money("50000")
	pct := engine.MustParsePercent("2.5")
	require.NoError(t, s.AddManualDeduction(ctx, report.ManualDeductionRecord{
		EmployeeID: "emp-1", Month: march,
		Deduction: engine.ManualDeduction{Amount: &amount, Reason: "kasbon"},
	}))
	require.NoError(t, s.AddManualDeduction(ctx, report.ManualDeductionRecord{
		EmployeeID: "emp-1", Month: march,
		Deduction: engine.ManualDeduction{Percent: &pct, Reason: "sanksi"},
	}))

	deductions, err := s.ManualDeductions(ctx, "emp-1", march)
	require.NoError(t, err)
	require.Len(t, deductions, 2)
	require.NotNil(t, deductions[0].Amount)
	assert.True(t, deductions[0].Amount.Equal(money("50000")))
	assert.Equal(t, "kasbon", deductions[0].Reason)
	require.NotNil(t, deductions[1].Percent)
	assert.True(t, deductions[1].Percent.Equal(pct))

	// Different month sees nothing.
	deductions, err = s.ManualDeductions(ctx, "emp-1", report.MonthOf(2026, time.April))
	require.NoError(t, err)
	assert.Empty(t, deductions)
}

func TestSummaryUpsert(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	march := report.MonthOf(2026, time.March)

	sum := report.Summary{
		EmployeeID:          "emp-1",
		Month:               march,
		BaseAllowance:       money("1000000"),
		AttendanceDeduction: money("1500000"),
		ManualDeduction:     money("0"),
		TotalDeduction:      money("600000"),
		NetAllowance:        money("400000"),
		AttendanceCapped:    true,
		GeneratedAt:         time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC),
	}
	require.NoError(t, s.SaveSummary(ctx, sum))

	got, err := s.Summary(ctx, "emp-1", march)
	require.NoError(t, err)
	assert.True(t, got.NetAllowance.Equal(money("400000")))
	assert.True(t, got.AttendanceCapped)
	assert.False(t, got.TotalCapped)
	assert.Equal(t, march, got.Month)

	// Recompute overwrites.
	sum.NetAllowance = money("500000")
	sum.AttendanceCapped = false
	require.NoError(t, s.SaveSummary(ctx, sum))
	got, err = s.Summary(ctx, "emp-1", march)
	require.NoError(t, err)
	assert.True(t, got.NetAllowance.Equal(money("500000")))

	list, err := s.Summaries(ctx, march)
	require.NoError(t, err)
	require.Len(t, list, 1)

	_, err = s.Summary(ctx, "emp-1", report.MonthOf(2026, time.May))
	assert.True(t, report.IsNotFound(err))
}

func TestAssemblerOverSQLite(t *testing.T) {
	// The store and the assembler together, end to end.
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.SaveEmployee(ctx, report.EmployeeRecord{
		Employee: engine.Employee{ID: "emp-1", Name: "Budi", BaseAllowance: money("1000000")},
	}))
	d := engine.NewDate(2026, time.March, 2)
	require.NoError(t, s.AppendEvent(ctx, engine.AttendanceEvent{
		EmployeeID: "emp-1", Date: d, Kind: engine.KindClockIn, Time: engine.NewClockTime(8, 45),
	}))
	require.NoError(t, s.AppendEvent(ctx, engine.AttendanceEvent{
		EmployeeID: "emp-1", Date: d, Kind: engine.KindClockOut, Time: engine.NewClockTime(17, 40),
	}))

	res, err := report.NewAssembler(s).ComputeEmployee(ctx, "emp-1", report.MonthOf(2026, time.March))
	require.NoError(t, err)

	// Mar 2: 45 late, 40 overtime, compensated.
	assert.Equal(t, engine.StatusTerlambatKompensasi, res.Days[1].Status)
	assert.True(t, res.Days[1].Deduction.IsZero())

	sum, err := s.Summary(ctx, "emp-1", report.MonthOf(2026, time.March))
	require.NoError(t, err)
	assert.True(t, sum.NetAllowance.Equal(money("400000")))
}
