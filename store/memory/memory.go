// Package memory provides an in-memory report.Store for testing/dev.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/allowance-engine/engine"
	"github.com/warp/allowance-engine/report"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Store struct {
	mu        sync.RWMutex
	employees map[engine.EmployeeID]report.EmployeeRecord
	events    map[engine.EmployeeID][]engine.AttendanceEvent
	leave     map[engine.EmployeeID][]report.LeaveRecord
	holidays  map[engine.Date]report.Holiday
	rules     map[engine.RuleCode]engine.Percent
	manual    map[manualKey][]engine.ManualDeduction
	summaries map[summaryKey]report.Summary
}

type manualKey struct {
	EmployeeID engine.EmployeeID
	Month      report.Month
}

type summaryKey struct {
	EmployeeID engine.EmployeeID
	Month      report.Month
}

func New() *Store {
	return &Store{
		employees: make(map[engine.EmployeeID]report.EmployeeRecord),
		events:    make(map[engine.EmployeeID][]engine.AttendanceEvent),
		leave:     make(map[engine.EmployeeID][]report.LeaveRecord),
		holidays:  make(map[engine.Date]report.Holiday),
		rules:     make(map[engine.RuleCode]engine.Percent),
		manual:    make(map[manualKey][]engine.ManualDeduction),
		summaries: make(map[summaryKey]report.Summary),
	}
}

// =============================================================================
// EMPLOYEES
// =============================================================================

func (s *Store) SaveEmployee(_ context.Context, rec report.EmployeeRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.employees[rec.ID] = rec
	return nil
}

func (s *Store) Employee(_ context.Context, id engine.EmployeeID) (report.EmployeeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.employees[id]
	if !ok {
		return report.EmployeeRecord{}, report.NotFound("employee", string(id))
	}
	return rec, nil
}

func (s *Store) Employees(_ context.Context) ([]report.EmployeeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]report.EmployeeRecord, 0, len(s.employees))
	for _, rec := range s.employees {
		result = append(result, rec)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// =============================================================================
// CLOCK EVENTS
// =============================================================================

func (s *Store) AppendEvent(_ context.Context, event engine.AttendanceEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.EmployeeID] = append(s.events[event.EmployeeID], event)
	return nil
}

func (s *Store) EventsInRange(_ context.Context, id engine.EmployeeID, r engine.DateRange) ([]engine.AttendanceEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []engine.AttendanceEvent
	for _, e := range s.events[id] {
		if r.Contains(e.Date) {
			result = append(result, e)
		}
	}
	return result, nil
}

// =============================================================================
// LEAVE AND HOLIDAYS
// =============================================================================

func (s *Store) SaveLeave(_ context.Context, rec report.LeaveRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing := s.leave[rec.EmployeeID]
	for i := range existing {
		if existing[i].ID == rec.ID {
			existing[i] = rec
			return nil
		}
	}
	s.leave[rec.EmployeeID] = append(existing, rec)
	return nil
}

func (s *Store) ApprovedLeaveDates(_ context.Context, id engine.EmployeeID, r engine.DateRange) (engine.DateSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	dates := engine.NewDateSet()
	for _, rec := range s.leave[id] {
		if !rec.Approved {
			continue
		}
		for _, d := range rec.Range.Days() {
			if r.Contains(d) {
				dates[d] = true
			}
		}
	}
	return dates, nil
}

func (s *Store) SaveHoliday(_ context.Context, h report.Holiday) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.holidays[h.Date] = h
	return nil
}

func (s *Store) HolidayDates(_ context.Context, r engine.DateRange) (engine.DateSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	dates := engine.NewDateSet()
	for d := range s.holidays {
		if r.Contains(d) {
			dates[d] = true
		}
	}
	return dates, nil
}

// =============================================================================
// RULES AND MANUAL DEDUCTIONS
// =============================================================================

func (s *Store) SaveRuleOverride(_ context.Context, code engine.RuleCode, p engine.Percent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules[code] = p
	return nil
}

func (s *Store) RuleOverrides(_ context.Context) (map[engine.RuleCode]engine.Percent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[engine.RuleCode]engine.Percent, len(s.rules))
	for code, p := range s.rules {
		result[code] = p
	}
	return result, nil
}

func (s *Store) AddManualDeduction(_ context.Context, rec report.ManualDeductionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := manualKey{EmployeeID: rec.EmployeeID, Month: rec.Month}
	s.manual[k] = append(s.manual[k], rec.Deduction)
	return nil
}

func (s *Store) ManualDeductions(_ context.Context, id engine.EmployeeID, m report.Month) ([]engine.ManualDeduction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	k := manualKey{EmployeeID: id, Month: m}
	result := make([]engine.ManualDeduction, len(s.manual[k]))
	copy(result, s.manual[k])
	return result, nil
}

// =============================================================================
// SUMMARIES
// =============================================================================

func (s *Store) SaveSummary(_ context.Context, sum report.Summary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summaries[summaryKey{EmployeeID: sum.EmployeeID, Month: sum.Month}] = sum
	return nil
}

func (s *Store) Summary(_ context.Context, id engine.EmployeeID, m report.Month) (report.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sum, ok := s.summaries[summaryKey{EmployeeID: id, Month: m}]
	if !ok {
		return report.Summary{}, report.NotFound("summary", string(id)+"/"+m.String())
	}
	return sum, nil
}

func (s *Store) Summaries(_ context.Context, m report.Month) ([]report.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []report.Summary
	for k, sum := range s.summaries {
		if k.Month == m {
			result = append(result, sum)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].EmployeeID < result[j].EmployeeID })
	return result, nil
}
