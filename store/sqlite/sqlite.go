/*
Package sqlite provides the SQLite-backed implementation of report.Store.

PURPOSE:
  Persists everything the report assembler reads and writes: employees,
  raw clock events, approved leave, holidays, deduction rule overrides,
  manual deductions and the generated period summaries.

KEY TABLES:
  employees:         Master data with base allowance and shift schedule
  attendance_events: Raw IN/OUT clock events, never collapsed here
  leave_records:     Leave requests; only approved=1 rows suppress deductions
  holidays:          Company-wide non-working days
  deduction_rules:   Percentage overrides per rule code
  manual_deductions: Ad-hoc deductions attached to an employee and month
  period_summaries:  Computed monthly outcomes, upserted per (employee, month)

STORAGE FORMS:
  Money and percentages are stored as decimal strings, never floats.
  Dates are "2006-01-02", months "2006-01", clock times "15:04". All are
  the value types' own wire forms, so ORDER BY on them is chronological.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/allowance.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - report/store.go: Interface definition
  - store/memory/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/warp/allowance-engine/engine"
	"github.com/warp/allowance-engine/report"
)

// Store implements report.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		base_allowance TEXT NOT NULL,
		shift_start TEXT,
		shift_end TEXT,
		created_at TEXT NOT NULL
	);

	-- Raw clock events. Duplicates per (employee, date, kind) are kept:
	-- the engine collapses them (earliest IN, latest OUT).
	CREATE TABLE IF NOT EXISTS attendance_events (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		date TEXT NOT NULL,
		kind TEXT NOT NULL,
		clock_time TEXT NOT NULL,
		shift_start TEXT,
		shift_end TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_employee_date
		ON attendance_events(employee_id, date);

	CREATE TABLE IF NOT EXISTS leave_records (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		reason TEXT,
		approved BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_leave_employee
		ON leave_records(employee_id, start_date, end_date);

	CREATE TABLE IF NOT EXISTS holidays (
		date TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS deduction_rules (
		code TEXT PRIMARY KEY,
		percent TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS manual_deductions (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		month TEXT NOT NULL,
		percent TEXT,
		amount TEXT,
		reason TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_manual_employee_month
		ON manual_deductions(employee_id, month);

	CREATE TABLE IF NOT EXISTS period_summaries (
		employee_id TEXT NOT NULL,
		month TEXT NOT NULL,
		base_allowance TEXT NOT NULL,
		attendance_deduction TEXT NOT NULL,
		manual_deduction TEXT NOT NULL,
		total_deduction TEXT NOT NULL,
		net_allowance TEXT NOT NULL,
		attendance_capped BOOLEAN NOT NULL,
		other_capped BOOLEAN NOT NULL,
		total_capped BOOLEAN NOT NULL,
		used_fallback BOOLEAN NOT NULL,
		generated_at TEXT NOT NULL,
		PRIMARY KEY (employee_id, month)
	);

	CREATE INDEX IF NOT EXISTS idx_summaries_month
		ON period_summaries(month);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// EMPLOYEES
// =============================================================================

// SaveEmployee upserts an employee.
func (s *Store) SaveEmployee(ctx context.Context, rec report.EmployeeRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO employees (id, name, base_allowance, shift_start, shift_end, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			base_allowance = excluded.base_allowance,
			shift_start = excluded.shift_start,
			shift_end = excluded.shift_end
	`

	start, end := shiftColumns(rec.Shift)
	_, err := s.db.ExecContext(ctx, query,
		string(rec.ID), rec.Name, rec.BaseAllowance.String(),
		start, end,
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// Employee retrieves an employee by ID.
func (s *Store) Employee(ctx context.Context, id engine.EmployeeID) (report.EmployeeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		rec              report.EmployeeRecord
		rawID, base      string
		shiftS, shiftE   sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, base_allowance, shift_start, shift_end FROM employees WHERE id = ?",
		string(id),
	).Scan(&rawID, &rec.Name, &base, &shiftS, &shiftE)

	if err == sql.ErrNoRows {
		return report.EmployeeRecord{}, report.NotFound("employee", string(id))
	}
	if err != nil {
		return report.EmployeeRecord{}, err
	}

	rec.ID = engine.EmployeeID(rawID)
	rec.BaseAllowance, err = engine.ParseMoney(base)
	if err != nil {
		return report.EmployeeRecord{}, fmt.Errorf("employee %s: %w", id, err)
	}
	rec.Shift, err = parseShift(shiftS, shiftE)
	if err != nil {
		return report.EmployeeRecord{}, fmt.Errorf("employee %s: %w", id, err)
	}
	return rec, nil
}

// Employees returns all employees ordered by ID.
func (s *Store) Employees(ctx context.Context) ([]report.EmployeeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, base_allowance, shift_start, shift_end FROM employees ORDER BY id",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []report.EmployeeRecord
	for rows.Next() {
		var (
			rec            report.EmployeeRecord
			rawID, base    string
			shiftS, shiftE sql.NullString
		)
		if err := rows.Scan(&rawID, &rec.Name, &base, &shiftS, &shiftE); err != nil {
			return nil, err
		}
		rec.ID = engine.EmployeeID(rawID)
		if rec.BaseAllowance, err = engine.ParseMoney(base); err != nil {
			return nil, fmt.Errorf("employee %s: %w", rawID, err)
		}
		if rec.Shift, err = parseShift(shiftS, shiftE); err != nil {
			return nil, fmt.Errorf("employee %s: %w", rawID, err)
		}
		employees = append(employees, rec)
	}
	return employees, rows.Err()
}

// =============================================================================
// CLOCK EVENTS
// =============================================================================

// AppendEvent stores one raw clock event.
func (s *Store) AppendEvent(ctx context.Context, event engine.AttendanceEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO attendance_events
		(id, employee_id, date, kind, clock_time, shift_start, shift_end, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	start, end := shiftColumns(event.Shift)
	_, err := s.db.ExecContext(ctx, query,
		uuid.NewString(),
		string(event.EmployeeID),
		event.Date.String(),
		string(event.Kind),
		event.Time.String(),
		start, end,
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// EventsInRange returns an employee's events in [r.Start, r.End].
func (s *Store) EventsInRange(ctx context.Context, id engine.EmployeeID, r engine.DateRange) ([]engine.AttendanceEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT employee_id, date, kind, clock_time, shift_start, shift_end
		FROM attendance_events
		WHERE employee_id = ? AND date >= ? AND date <= ?
		ORDER BY date ASC, clock_time ASC
	`

	rows, err := s.db.QueryContext(ctx, query, string(id), r.Start.String(), r.End.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []engine.AttendanceEvent
	for rows.Next() {
		var (
			e                  engine.AttendanceEvent
			empID, date, kind  string
			clock              string
			shiftS, shiftE     sql.NullString
		)
		if err := rows.Scan(&empID, &date, &kind, &clock, &shiftS, &shiftE); err != nil {
			return nil, err
		}
		e.EmployeeID = engine.EmployeeID(empID)
		e.Kind = engine.EventKind(kind)
		if e.Date, err = engine.ParseDate(date); err != nil {
			return nil, err
		}
		if e.Time, err = engine.ParseClock(clock); err != nil {
			return nil, err
		}
		if e.Shift, err = parseShift(shiftS, shiftE); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// =============================================================================
// LEAVE AND HOLIDAYS
// =============================================================================

// SaveLeave upserts a leave record.
func (s *Store) SaveLeave(ctx context.Context, rec report.LeaveRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}

	query := `
		INSERT INTO leave_records (id, employee_id, start_date, end_date, reason, approved, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			reason = excluded.reason,
			approved = excluded.approved
	`

	_, err := s.db.ExecContext(ctx, query,
		rec.ID, string(rec.EmployeeID),
		rec.Range.Start.String(), rec.Range.End.String(),
		rec.Reason, rec.Approved,
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// ApprovedLeaveDates returns every approved leave day inside the range.
func (s *Store) ApprovedLeaveDates(ctx context.Context, id engine.EmployeeID, r engine.DateRange) (engine.DateSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT start_date, end_date FROM leave_records
		WHERE employee_id = ? AND approved = TRUE
		  AND start_date <= ? AND end_date >= ?
	`

	rows, err := s.db.QueryContext(ctx, query, string(id), r.End.String(), r.Start.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	dates := engine.NewDateSet()
	for rows.Next() {
		var startStr, endStr string
		if err := rows.Scan(&startStr, &endStr); err != nil {
			return nil, err
		}
		start, err := engine.ParseDate(startStr)
		if err != nil {
			return nil, err
		}
		end, err := engine.ParseDate(endStr)
		if err != nil {
			return nil, err
		}
		for _, d := range (engine.DateRange{Start: start, End: end}).Days() {
			if r.Contains(d) {
				dates[d] = true
			}
		}
	}
	return dates, rows.Err()
}

// SaveHoliday upserts a holiday by date.
func (s *Store) SaveHoliday(ctx context.Context, h report.Holiday) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO holidays (date, name, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET name = excluded.name
	`

	_, err := s.db.ExecContext(ctx, query,
		h.Date.String(), h.Name,
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// HolidayDates returns every holiday inside the range.
func (s *Store) HolidayDates(ctx context.Context, r engine.DateRange) (engine.DateSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT date FROM holidays WHERE date >= ? AND date <= ?",
		r.Start.String(), r.End.String(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	dates := engine.NewDateSet()
	for rows.Next() {
		var dateStr string
		if err := rows.Scan(&dateStr); err != nil {
			return nil, err
		}
		d, err := engine.ParseDate(dateStr)
		if err != nil {
			return nil, err
		}
		dates[d] = true
	}
	return dates, rows.Err()
}

// =============================================================================
// DEDUCTION RULES
// =============================================================================

// SaveRuleOverride upserts a percentage override for one rule code.
func (s *Store) SaveRuleOverride(ctx context.Context, code engine.RuleCode, p engine.Percent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO deduction_rules (code, percent, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(code) DO UPDATE SET
			percent = excluded.percent,
			updated_at = excluded.updated_at
	`

	_, err := s.db.ExecContext(ctx, query,
		string(code), p.Value.String(),
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// RuleOverrides returns all stored overrides.
func (s *Store) RuleOverrides(ctx context.Context) (map[engine.RuleCode]engine.Percent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT code, percent FROM deduction_rules")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	overrides := make(map[engine.RuleCode]engine.Percent)
	for rows.Next() {
		var code, percent string
		if err := rows.Scan(&code, &percent); err != nil {
			return nil, err
		}
		p, err := engine.ParsePercent(percent)
		if err != nil {
			return nil, fmt.Errorf("rule %s: %w", code, err)
		}
		overrides[engine.RuleCode(code)] = p
	}
	return overrides, rows.Err()
}

// =============================================================================
// MANUAL DEDUCTIONS
// =============================================================================

// AddManualDeduction stores one manual deduction for an employee and month.
func (s *Store) AddManualDeduction(ctx context.Context, rec report.ManualDeductionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}

	var percent, amount sql.NullString
	if rec.Deduction.Percent != nil {
		percent = sql.NullString{String: rec.Deduction.Percent.Value.String(), Valid: true}
	}
	if rec.Deduction.Amount != nil {
		amount = sql.NullString{String: rec.Deduction.Amount.String(), Valid: true}
	}

	query := `
		INSERT INTO manual_deductions (id, employee_id, month, percent, amount, reason, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		rec.ID, string(rec.EmployeeID), rec.Month.String(),
		percent, amount, rec.Deduction.Reason,
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// ManualDeductions returns an employee's manual deductions for the month.
func (s *Store) ManualDeductions(ctx context.Context, id engine.EmployeeID, m report.Month) ([]engine.ManualDeduction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT percent, amount, reason FROM manual_deductions
		WHERE employee_id = ? AND month = ?
		ORDER BY created_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query, string(id), m.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var deductions []engine.ManualDeduction
	for rows.Next() {
		var (
			d               engine.ManualDeduction
			percent, amount sql.NullString
			reason          sql.NullString
		)
		if err := rows.Scan(&percent, &amount, &reason); err != nil {
			return nil, err
		}
		if percent.Valid {
			p, err := engine.ParsePercent(percent.String)
			if err != nil {
				return nil, fmt.Errorf("manual deduction for %s: %w", id, err)
			}
			d.Percent = &p
		}
		if amount.Valid {
			a, err := engine.ParseMoney(amount.String)
			if err != nil {
				return nil, fmt.Errorf("manual deduction for %s: %w", id, err)
			}
			d.Amount = &a
		}
		d.Reason = reason.String
		deductions = append(deductions, d)
	}
	return deductions, rows.Err()
}

// =============================================================================
// PERIOD SUMMARIES
// =============================================================================

// SaveSummary upserts the computed summary for (employee, month).
func (s *Store) SaveSummary(ctx context.Context, sum report.Summary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO period_summaries
		(employee_id, month, base_allowance, attendance_deduction, manual_deduction,
		 total_deduction, net_allowance, attendance_capped, other_capped, total_capped,
		 used_fallback, generated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(employee_id, month) DO UPDATE SET
			base_allowance = excluded.base_allowance,
			attendance_deduction = excluded.attendance_deduction,
			manual_deduction = excluded.manual_deduction,
			total_deduction = excluded.total_deduction,
			net_allowance = excluded.net_allowance,
			attendance_capped = excluded.attendance_capped,
			other_capped = excluded.other_capped,
			total_capped = excluded.total_capped,
			used_fallback = excluded.used_fallback,
			generated_at = excluded.generated_at
	`

	_, err := s.db.ExecContext(ctx, query,
		string(sum.EmployeeID), sum.Month.String(),
		sum.BaseAllowance.String(),
		sum.AttendanceDeduction.String(),
		sum.ManualDeduction.String(),
		sum.TotalDeduction.String(),
		sum.NetAllowance.String(),
		sum.AttendanceCapped, sum.OtherCapped, sum.TotalCapped,
		sum.UsedFallback,
		sum.GeneratedAt.UTC().Format(time.RFC3339),
	)
	return err
}

// Summary retrieves the computed summary for (employee, month).
func (s *Store) Summary(ctx context.Context, id engine.EmployeeID, m report.Month) (report.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT employee_id, month, base_allowance, attendance_deduction, manual_deduction,
		       total_deduction, net_allowance, attendance_capped, other_capped, total_capped,
		       used_fallback, generated_at
		FROM period_summaries
		WHERE employee_id = ? AND month = ?
	`

	row := s.db.QueryRowContext(ctx, query, string(id), m.String())
	sum, err := scanSummary(row.Scan)
	if err == sql.ErrNoRows {
		return report.Summary{}, report.NotFound("summary", string(id)+"/"+m.String())
	}
	return sum, err
}

// Summaries returns all summaries for a month, ordered by employee.
func (s *Store) Summaries(ctx context.Context, m report.Month) ([]report.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT employee_id, month, base_allowance, attendance_deduction, manual_deduction,
		       total_deduction, net_allowance, attendance_capped, other_capped, total_capped,
		       used_fallback, generated_at
		FROM period_summaries
		WHERE month = ?
		ORDER BY employee_id ASC
	`

	rows, err := s.db.QueryContext(ctx, query, m.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []report.Summary
	for rows.Next() {
		sum, err := scanSummary(rows.Scan)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, sum)
	}
	return summaries, rows.Err()
}

func scanSummary(scan func(dest ...any) error) (report.Summary, error) {
	var (
		sum                       report.Summary
		empID, month              string
		base, att, man, total, net string
		generatedAt               string
	)
	err := scan(
		&empID, &month, &base, &att, &man, &total, &net,
		&sum.AttendanceCapped, &sum.OtherCapped, &sum.TotalCapped,
		&sum.UsedFallback, &generatedAt,
	)
	if err != nil {
		return report.Summary{}, err
	}

	sum.EmployeeID = engine.EmployeeID(empID)
	if sum.Month, err = report.ParseMonth(month); err != nil {
		return report.Summary{}, err
	}
	fields := []struct {
		dst *engine.Money
		src string
	}{
		{&sum.BaseAllowance, base},
		{&sum.AttendanceDeduction, att},
		{&sum.ManualDeduction, man},
		{&sum.TotalDeduction, total},
		{&sum.NetAllowance, net},
	}
	for _, f := range fields {
		if *f.dst, err = engine.ParseMoney(f.src); err != nil {
			return report.Summary{}, fmt.Errorf("summary %s/%s: %w", empID, month, err)
		}
	}
	sum.GeneratedAt, _ = time.Parse(time.RFC3339, generatedAt)
	return sum, nil
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{
		"period_summaries", "manual_deductions", "deduction_rules",
		"holidays", "leave_records", "attendance_events", "employees",
	}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

func shiftColumns(shift *engine.ShiftSchedule) (start, end sql.NullString) {
	if shift == nil {
		return sql.NullString{}, sql.NullString{}
	}
	return sql.NullString{String: shift.Start.String(), Valid: true},
		sql.NullString{String: shift.End.String(), Valid: true}
}

func parseShift(start, end sql.NullString) (*engine.ShiftSchedule, error) {
	if !start.Valid || !end.Valid {
		return nil, nil
	}
	s, err := engine.ParseClock(start.String)
	if err != nil {
		return nil, err
	}
	e, err := engine.ParseClock(end.String)
	if err != nil {
		return nil, err
	}
	return &engine.ShiftSchedule{Start: s, End: e}, nil
}
