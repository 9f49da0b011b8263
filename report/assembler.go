/*
assembler.go - Materializes stored inputs and drives the engine

PURPOSE:
  The Assembler is the bridge between persistence and the pure engine.
  For one employee it fetches everything the engine needs (events, leave,
  holidays, rule overrides, manual deductions), computes the period
  result, and persists the summary. For a roster it fans the same work
  out over a bounded worker pool.

FAILURE ISOLATION:
  One employee's bad input never aborts the roster. Each failure is
  captured per employee in the RosterReport; the rest of the batch keeps
  going. Cancellation is honored between employees only: a computation
  already started runs to completion (it is pure and fast).

SEE ALSO:
  - engine/period.go: ComputePeriodResult, the operation driven here
  - store.go: The persistence interface consumed here
*/
package report

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/warp/allowance-engine/engine"
)

// defaultWorkers bounds roster parallelism when the caller passes 0.
const defaultWorkers = 4

// Assembler computes period results from stored inputs.
type Assembler struct {
	store Store

	// now stamps persisted summaries. Overridable in tests.
	now func() time.Time
}

// NewAssembler builds an Assembler over the given store.
func NewAssembler(store Store) *Assembler {
	return &Assembler{store: store, now: time.Now}
}

// =============================================================================
// SINGLE EMPLOYEE
// =============================================================================

// ComputeEmployee materializes one employee's inputs for the month,
// runs the engine, persists the summary and returns the full result
// with the per-day breakdown.
func (a *Assembler) ComputeEmployee(ctx context.Context, id engine.EmployeeID, month Month) (*engine.PeriodResult, error) {
	emp, err := a.store.Employee(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load employee %s: %w", id, err)
	}

	input, err := a.materialize(ctx, emp, month)
	if err != nil {
		return nil, err
	}

	result, err := engine.ComputePeriodResult(*input)
	if err != nil {
		return nil, err
	}

	if err := a.store.SaveSummary(ctx, a.summarize(result, month)); err != nil {
		return nil, fmt.Errorf("save summary for %s: %w", id, err)
	}
	return result, nil
}

// materialize fetches every engine input for one employee and month.
func (a *Assembler) materialize(ctx context.Context, emp EmployeeRecord, month Month) (*engine.PeriodInput, error) {
	r := month.Range()

	events, err := a.store.EventsInRange(ctx, emp.ID, r)
	if err != nil {
		return nil, fmt.Errorf("load events for %s: %w", emp.ID, err)
	}
	// Events recorded without a schedule inherit the employee's shift.
	for i := range events {
		if events[i].Shift == nil {
			events[i].Shift = emp.Shift
		}
	}

	leave, err := a.store.ApprovedLeaveDates(ctx, emp.ID, r)
	if err != nil {
		return nil, fmt.Errorf("load leave for %s: %w", emp.ID, err)
	}
	holidays, err := a.store.HolidayDates(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("load holidays: %w", err)
	}
	overrides, err := a.store.RuleOverrides(ctx)
	if err != nil {
		return nil, fmt.Errorf("load rule overrides: %w", err)
	}
	rules, err := engine.NewRuleTable(overrides)
	if err != nil {
		return nil, err
	}
	manual, err := a.store.ManualDeductions(ctx, emp.ID, month)
	if err != nil {
		return nil, fmt.Errorf("load manual deductions for %s: %w", emp.ID, err)
	}

	return &engine.PeriodInput{
		Employee:     emp.Employee,
		Range:        r,
		Events:       events,
		LeaveDates:   leave,
		HolidayDates: holidays,
		Rules:        rules,
		Manual:       manual,
	}, nil
}

func (a *Assembler) summarize(res *engine.PeriodResult, month Month) Summary {
	return Summary{
		EmployeeID:          res.EmployeeID,
		Month:               month,
		BaseAllowance:       res.BaseAllowance,
		AttendanceDeduction: res.AttendanceDeduction,
		ManualDeduction:     res.ManualDeduction,
		TotalDeduction:      res.Cap.TotalDeduction,
		NetAllowance:        res.Cap.NetAllowance,
		AttendanceCapped:    res.Cap.AttendanceCapped,
		OtherCapped:         res.Cap.OtherCapped,
		TotalCapped:         res.Cap.TotalCapped,
		UsedFallback:        res.UsedFallback,
		GeneratedAt:         a.now().UTC(),
	}
}

// =============================================================================
// ROSTER - Bounded worker pool over all employees
// =============================================================================

// RosterFailure records why one employee's computation failed.
type RosterFailure struct {
	EmployeeID engine.EmployeeID
	Err        error
}

// RosterReport is the outcome of one roster run. Results and Failures
// are each sorted by employee ID; an employee appears in exactly one.
type RosterReport struct {
	Month    Month
	Results  []*engine.PeriodResult
	Failures []RosterFailure
}

// RunRoster computes the month for every stored employee using at most
// `workers` goroutines (0 means the default bound). Per-employee errors
// are collected, not propagated. Context cancellation stops the batch
// between employees; employees not yet started are reported as failed
// with ctx.Err().
func (a *Assembler) RunRoster(ctx context.Context, month Month, workers int) (*RosterReport, error) {
	employees, err := a.store.Employees(ctx)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	if workers <= 0 {
		workers = defaultWorkers
	}
	if workers > len(employees) && len(employees) > 0 {
		workers = len(employees)
	}

	report := &RosterReport{Month: month}
	jobs := make(chan EmployeeRecord)

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for emp := range jobs {
				// Check between employees, never mid-computation.
				if err := ctx.Err(); err != nil {
					mu.Lock()
					report.Failures = append(report.Failures, RosterFailure{EmployeeID: emp.ID, Err: err})
					mu.Unlock()
					continue
				}

				result, err := a.ComputeEmployee(ctx, emp.ID, month)
				mu.Lock()
				if err != nil {
					report.Failures = append(report.Failures, RosterFailure{EmployeeID: emp.ID, Err: err})
				} else {
					report.Results = append(report.Results, result)
				}
				mu.Unlock()
			}
		}()
	}

	for _, emp := range employees {
		jobs <- emp
	}
	close(jobs)
	wg.Wait()

	sort.Slice(report.Results, func(i, j int) bool {
		return report.Results[i].EmployeeID < report.Results[j].EmployeeID
	})
	sort.Slice(report.Failures, func(i, j int) bool {
		return report.Failures[i].EmployeeID < report.Failures[j].EmployeeID
	})
	return report, nil
}
