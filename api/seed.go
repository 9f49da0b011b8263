/*
seed.go - Demo data loader for testing and demonstrations

PURPOSE:
  Populates the store with a small, realistic dataset: a handful of
  employees with different shifts, one month of attendance covering
  every classification (on time, late, compensated lateness, early
  checkout, forgotten clock-out, absence, leave, holiday), a rule
  override and a manual deduction. Running the roster for the seeded
  month then exercises every deduction path including the cap.

USAGE VIA API:
  POST /api/seed
  {"month": "2026-03"}    month is optional, defaults to 2026-03

NOTE:
  Seeding resets the store when the implementation supports it. Only
  use in development/demo environments.

SEE ALSO:
  - handlers.go: The handlers the seeded data feeds
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/warp/allowance-engine/engine"
	"github.com/warp/allowance-engine/report"
)

// Resetter is implemented by stores that can wipe all data.
type Resetter interface {
	Reset(ctx context.Context) error
}

// LoadSeedRequest selects the month the demo data lands in.
type LoadSeedRequest struct {
	Month string `json:"month,omitempty"`
}

// LoadSeedData resets the store (when supported) and loads demo data.
func (h *Handler) LoadSeedData(w http.ResponseWriter, r *http.Request) {
	var req LoadSeedRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body", err)
			return
		}
	}

	month := report.MonthOf(2026, time.March)
	if req.Month != "" {
		var err error
		if month, err = report.ParseMonth(req.Month); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid month (use YYYY-MM)", err)
			return
		}
	}

	ctx := r.Context()
	if resetter, ok := h.Store.(Resetter); ok {
		if err := resetter.Reset(ctx); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to reset store", err)
			return
		}
	}

	if err := loadDemoData(ctx, h.Store, month); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load seed data", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status": "loaded",
		"month":  month.String(),
	})
}

func loadDemoData(ctx context.Context, store report.Store, month report.Month) error {
	r := month.Range()

	employees := []report.EmployeeRecord{
		{Employee: engine.Employee{
			ID: "EMP-001", Name: "Budi Santoso",
			BaseAllowance: engine.MustParseMoney("1000000"),
		}},
		{Employee: engine.Employee{
			ID: "EMP-002", Name: "Siti Rahma",
			BaseAllowance: engine.MustParseMoney("1500000"),
		}},
		{Employee: engine.Employee{
			ID: "EMP-003", Name: "Agus Wijaya",
			BaseAllowance: engine.MustParseMoney("850000"),
		}, Shift: &engine.ShiftSchedule{
			Start: engine.NewClockTime(9, 0),
			End:   engine.NewClockTime(18, 0),
		}},
	}
	for _, emp := range employees {
		if err := store.SaveEmployee(ctx, emp); err != nil {
			return fmt.Errorf("seed employee %s: %w", emp.ID, err)
		}
	}

	// A holiday mid-month, and leave for EMP-002.
	holiday := r.Start.AddDays(16)
	if err := store.SaveHoliday(ctx, report.Holiday{Date: holiday, Name: "Hari Raya Nyepi"}); err != nil {
		return err
	}
	if err := store.SaveLeave(ctx, report.LeaveRecord{
		EmployeeID: "EMP-002",
		Range:      engine.DateRange{Start: r.Start.AddDays(7), End: r.Start.AddDays(9)},
		Reason:     "cuti tahunan",
		Approved:   true,
	}); err != nil {
		return err
	}

	// EMP-001: mostly exemplary, with one of everything sprinkled in.
	schedule := map[int][2]engine.ClockTime{}
	for offset := 0; offset < len(r.Days()); offset++ {
		schedule[offset] = [2]engine.ClockTime{engine.NewClockTime(8, 0), engine.NewClockTime(17, 0)}
	}
	schedule[2] = [2]engine.ClockTime{engine.NewClockTime(8, 45), engine.NewClockTime(17, 0)}  // late, no overtime
	schedule[3] = [2]engine.ClockTime{engine.NewClockTime(8, 45), engine.NewClockTime(17, 40)} // late, compensated
	schedule[4] = [2]engine.ClockTime{engine.NewClockTime(8, 0), engine.NewClockTime(16, 10)}  // early checkout
	delete(schedule, 10) // absence
	if err := seedEvents(ctx, store, "EMP-001", r, schedule, map[int]bool{11: true}); err != nil {
		return err
	}

	// EMP-002: clean attendance around the leave block.
	schedule = map[int][2]engine.ClockTime{}
	for offset := 0; offset < len(r.Days()); offset++ {
		if offset >= 7 && offset <= 9 {
			continue
		}
		schedule[offset] = [2]engine.ClockTime{engine.NewClockTime(8, 0), engine.NewClockTime(17, 5)}
	}
	if err := seedEvents(ctx, store, "EMP-002", r, schedule, nil); err != nil {
		return err
	}

	// EMP-003: the 09:00 shift, attending every other day and very late.
	schedule = map[int][2]engine.ClockTime{}
	for offset := 0; offset < len(r.Days()); offset += 2 {
		schedule[offset] = [2]engine.ClockTime{engine.NewClockTime(10, 45), engine.NewClockTime(18, 0)}
	}
	if err := seedEvents(ctx, store, "EMP-003", r, schedule, nil); err != nil {
		return err
	}

	// A tightened absence rule and one manual deduction.
	if err := store.SaveRuleOverride(ctx, engine.CodeAbsence, engine.MustParsePercent("5")); err != nil {
		return err
	}
	amount := engine.MustParseMoney("75000")
	return store.AddManualDeduction(ctx, report.ManualDeductionRecord{
		EmployeeID: "EMP-001",
		Month:      month,
		Deduction:  engine.ManualDeduction{Amount: &amount, Reason: "cicilan seragam"},
	})
}

// seedEvents writes IN/OUT pairs per day offset; forgotten clock-outs
// get only the IN event.
func seedEvents(ctx context.Context, store report.Store, id engine.EmployeeID, r engine.DateRange, schedule map[int][2]engine.ClockTime, forgotten map[int]bool) error {
	days := r.Days()
	for offset, times := range schedule {
		date := days[offset]
		in := engine.AttendanceEvent{EmployeeID: id, Date: date, Kind: engine.KindClockIn, Time: times[0]}
		if err := store.AppendEvent(ctx, in); err != nil {
			return fmt.Errorf("seed events for %s: %w", id, err)
		}
		if forgotten[offset] {
			continue
		}
		out := engine.AttendanceEvent{EmployeeID: id, Date: date, Kind: engine.KindClockOut, Time: times[1]}
		if err := store.AppendEvent(ctx, out); err != nil {
			return fmt.Errorf("seed events for %s: %w", id, err)
		}
	}
	return nil
}
