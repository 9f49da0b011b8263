/*
handlers.go - HTTP API handlers for the allowance engine

PURPOSE:
  Exposes the allowance engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Employees:
    GET    /api/employees                     List all employees
    POST   /api/employees                     Create/replace employee
    GET    /api/employees/{id}                Get employee details
    POST   /api/employees/{id}/events         Record a clock event
    POST   /api/employees/{id}/leaves         Record a leave range
    POST   /api/employees/{id}/deductions     Record a manual deduction
    GET    /api/employees/{id}/report         Compute the monthly report
    GET    /api/employees/{id}/report/xlsx    Download report as XLSX
    GET    /api/employees/{id}/report/pdf     Download report as PDF

  Holidays:
    POST   /api/holidays                      Record a holiday

  Rules:
    GET    /api/rules                         Effective deduction rule table
    PUT    /api/rules/{code}                  Override one rule percentage

  Reports:
    POST   /api/reports/{month}/run           Compute the whole roster
    GET    /api/reports/{month}               List persisted summaries

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input (engine InvalidInput included)
  - 404: Resource not found
  - 500: Internal errors

SECURITY NOTE:
  Currently NO authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - seed.go: Demo data loader
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/warp/allowance-engine/engine"
	"github.com/warp/allowance-engine/report"
)

const timeFormat = time.RFC3339

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store     report.Store
	Assembler *report.Assembler
}

// NewHandler creates a new handler over the given store.
func NewHandler(store report.Store) *Handler {
	return &Handler{
		Store:     store,
		Assembler: report.NewAssembler(store),
	}
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// ListEmployees returns all employees.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Store.Employees(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list employees", err)
		return
	}

	dtos := make([]EmployeeDTO, len(employees))
	for i, rec := range employees {
		dtos[i] = toEmployeeDTO(rec)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetEmployee returns a single employee.
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	id := engine.EmployeeID(chi.URLParam(r, "id"))

	rec, err := h.Store.Employee(r.Context(), id)
	if err != nil {
		writeStoreError(w, "Failed to get employee", err)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(rec))
}

// CreateEmployee creates or replaces an employee.
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, "id and name are required", nil)
		return
	}

	base, err := engine.ParseMoney(req.BaseAllowance)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid base_allowance", err)
		return
	}
	if base.IsNegative() {
		writeError(w, http.StatusBadRequest, "base_allowance must not be negative", nil)
		return
	}

	rec := report.EmployeeRecord{
		Employee: engine.Employee{
			ID:            engine.EmployeeID(req.ID),
			Name:          req.Name,
			BaseAllowance: base,
		},
	}
	if req.ShiftStart != "" || req.ShiftEnd != "" {
		shift, err := parseShiftRequest(req.ShiftStart, req.ShiftEnd)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid shift schedule", err)
			return
		}
		rec.Shift = shift
	}

	if err := h.Store.SaveEmployee(r.Context(), rec); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save employee", err)
		return
	}
	writeJSON(w, http.StatusCreated, toEmployeeDTO(rec))
}

func parseShiftRequest(start, end string) (*engine.ShiftSchedule, error) {
	s, err := engine.ParseClock(start)
	if err != nil {
		return nil, err
	}
	e, err := engine.ParseClock(end)
	if err != nil {
		return nil, err
	}
	return &engine.ShiftSchedule{Start: s, End: e}, nil
}

// =============================================================================
// ATTENDANCE INPUT HANDLERS
// =============================================================================

// RecordEvent stores one raw clock event for an employee.
func (h *Handler) RecordEvent(w http.ResponseWriter, r *http.Request) {
	id := engine.EmployeeID(chi.URLParam(r, "id"))

	var req ClockEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	date, err := engine.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date (use YYYY-MM-DD)", err)
		return
	}
	clock, err := engine.ParseClock(req.Time)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid time (use HH:MM)", err)
		return
	}
	kind := engine.EventKind(req.Kind)
	if kind != engine.KindClockIn && kind != engine.KindClockOut {
		writeError(w, http.StatusBadRequest, "kind must be IN or OUT", nil)
		return
	}

	// The employee must exist; a typo'd ID should not create orphan rows.
	if _, err := h.Store.Employee(r.Context(), id); err != nil {
		writeStoreError(w, "Failed to get employee", err)
		return
	}

	event := engine.AttendanceEvent{
		EmployeeID: id,
		Date:       date,
		Kind:       kind,
		Time:       clock,
	}
	if err := h.Store.AppendEvent(r.Context(), event); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to record event", err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// RecordLeave stores a leave range for an employee.
func (h *Handler) RecordLeave(w http.ResponseWriter, r *http.Request) {
	id := engine.EmployeeID(chi.URLParam(r, "id"))

	var req LeaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	start, err := engine.ParseDate(req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start_date", err)
		return
	}
	end, err := engine.ParseDate(req.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid end_date", err)
		return
	}
	leaveRange := engine.DateRange{Start: start, End: end}
	if err := leaveRange.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "end_date precedes start_date", err)
		return
	}

	if _, err := h.Store.Employee(r.Context(), id); err != nil {
		writeStoreError(w, "Failed to get employee", err)
		return
	}

	rec := report.LeaveRecord{
		EmployeeID: id,
		Range:      leaveRange,
		Reason:     req.Reason,
		Approved:   req.Approved,
	}
	if err := h.Store.SaveLeave(r.Context(), rec); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to record leave", err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// RecordManualDeduction stores a manual deduction for an employee+month.
func (h *Handler) RecordManualDeduction(w http.ResponseWriter, r *http.Request) {
	id := engine.EmployeeID(chi.URLParam(r, "id"))

	var req ManualDeductionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	month, err := report.ParseMonth(req.Month)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid month (use YYYY-MM)", err)
		return
	}
	if (req.Percent == "") == (req.Amount == "") {
		writeError(w, http.StatusBadRequest, "Set exactly one of percent or amount", nil)
		return
	}

	var deduction engine.ManualDeduction
	deduction.Reason = req.Reason
	if req.Percent != "" {
		p, err := engine.ParsePercent(req.Percent)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid percent", err)
			return
		}
		if !p.InRange() {
			writeError(w, http.StatusBadRequest, "percent must be in [0, 100]", nil)
			return
		}
		deduction.Percent = &p
	} else {
		a, err := engine.ParseMoney(req.Amount)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid amount", err)
			return
		}
		if a.IsNegative() {
			writeError(w, http.StatusBadRequest, "amount must not be negative", nil)
			return
		}
		deduction.Amount = &a
	}

	if _, err := h.Store.Employee(r.Context(), id); err != nil {
		writeStoreError(w, "Failed to get employee", err)
		return
	}

	rec := report.ManualDeductionRecord{
		EmployeeID: id,
		Month:      month,
		Deduction:  deduction,
	}
	if err := h.Store.AddManualDeduction(r.Context(), rec); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to record deduction", err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// CreateHoliday records one company-wide holiday.
func (h *Handler) CreateHoliday(w http.ResponseWriter, r *http.Request) {
	var req HolidayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	date, err := engine.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date (use YYYY-MM-DD)", err)
		return
	}

	if err := h.Store.SaveHoliday(r.Context(), report.Holiday{Date: date, Name: req.Name}); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to record holiday", err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// =============================================================================
// RULE HANDLERS
// =============================================================================

// ListRules returns the effective rule table: stored overrides merged
// over the built-in defaults, each row tagged with its origin.
func (h *Handler) ListRules(w http.ResponseWriter, r *http.Request) {
	overrides, err := h.Store.RuleOverrides(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load rules", err)
		return
	}
	rules, err := engine.NewRuleTable(overrides)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Stored rule table is invalid", err)
		return
	}

	var dtos []RuleDTO
	for _, code := range engine.AllRuleCodes() {
		p, fallback := rules.Lookup(code)
		dtos = append(dtos, RuleDTO{
			Code:     string(code),
			Label:    engine.RuleLabels[code],
			Percent:  p.Value.String(),
			Fallback: fallback,
		})
	}
	writeJSON(w, http.StatusOK, dtos)
}

// UpdateRule overrides the percentage for one rule code.
func (h *Handler) UpdateRule(w http.ResponseWriter, r *http.Request) {
	code := engine.RuleCode(chi.URLParam(r, "code"))
	if !engine.IsValidRuleCode(code) {
		writeError(w, http.StatusNotFound, "Unknown rule code", nil)
		return
	}

	var req UpdateRuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	p, err := engine.ParsePercent(req.Percent)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid percent", err)
		return
	}
	if !p.InRange() {
		writeError(w, http.StatusBadRequest, "percent must be in [0, 100]", nil)
		return
	}

	if err := h.Store.SaveRuleOverride(r.Context(), code, p); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save rule", err)
		return
	}
	writeJSON(w, http.StatusOK, RuleDTO{
		Code:    string(code),
		Label:   engine.RuleLabels[code],
		Percent: p.Value.String(),
	})
}

// =============================================================================
// REPORT HANDLERS
// =============================================================================

// GetEmployeeReport computes one employee's monthly report on demand.
func (h *Handler) GetEmployeeReport(w http.ResponseWriter, r *http.Request) {
	id, month, ok := h.reportParams(w, r)
	if !ok {
		return
	}

	res, err := h.Assembler.ComputeEmployee(r.Context(), id, month)
	if err != nil {
		writeComputeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPeriodResultDTO(month, res))
}

// GetEmployeeReportXLSX streams the monthly report as a workbook.
func (h *Handler) GetEmployeeReportXLSX(w http.ResponseWriter, r *http.Request) {
	h.exportReport(w, r, "xlsx")
}

// GetEmployeeReportPDF streams the monthly report as a PDF.
func (h *Handler) GetEmployeeReportPDF(w http.ResponseWriter, r *http.Request) {
	h.exportReport(w, r, "pdf")
}

func (h *Handler) exportReport(w http.ResponseWriter, r *http.Request, format string) {
	id, month, ok := h.reportParams(w, r)
	if !ok {
		return
	}

	emp, err := h.Store.Employee(r.Context(), id)
	if err != nil {
		writeStoreError(w, "Failed to get employee", err)
		return
	}
	res, err := h.Assembler.ComputeEmployee(r.Context(), id, month)
	if err != nil {
		writeComputeError(w, err)
		return
	}

	filename := "tunjangan-" + string(id) + "-" + month.String() + "." + format
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)

	switch format {
	case "xlsx":
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		err = report.WriteXLSX(w, emp, month, res)
	case "pdf":
		w.Header().Set("Content-Type", "application/pdf")
		err = report.WritePDF(w, emp, month, res)
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to render report", err)
	}
}

func (h *Handler) reportParams(w http.ResponseWriter, r *http.Request) (engine.EmployeeID, report.Month, bool) {
	id := engine.EmployeeID(chi.URLParam(r, "id"))
	month, err := report.ParseMonth(r.URL.Query().Get("month"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid or missing month (use ?month=YYYY-MM)", err)
		return "", report.Month{}, false
	}
	return id, month, true
}

// RunRoster computes the month for every employee and persists summaries.
func (h *Handler) RunRoster(w http.ResponseWriter, r *http.Request) {
	month, err := report.ParseMonth(chi.URLParam(r, "month"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid month (use YYYY-MM)", err)
		return
	}

	run, err := h.Assembler.RunRoster(r.Context(), month, 0)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Roster run failed", err)
		return
	}

	dto := RosterRunDTO{
		Month:    month.String(),
		Computed: len(run.Results),
		Failed:   len(run.Failures),
	}
	summaries, err := h.Store.Summaries(r.Context(), month)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load summaries", err)
		return
	}
	for _, sum := range summaries {
		dto.Summaries = append(dto.Summaries, toSummaryDTO(sum))
	}
	for _, f := range run.Failures {
		dto.Failures = append(dto.Failures, RosterFailureDTO{
			EmployeeID: string(f.EmployeeID),
			Error:      f.Err.Error(),
		})
	}
	writeJSON(w, http.StatusOK, dto)
}

// ListSummaries returns the persisted summaries for a month.
func (h *Handler) ListSummaries(w http.ResponseWriter, r *http.Request) {
	month, err := report.ParseMonth(chi.URLParam(r, "month"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid month (use YYYY-MM)", err)
		return
	}

	summaries, err := h.Store.Summaries(r.Context(), month)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load summaries", err)
		return
	}
	dtos := make([]SummaryDTO, len(summaries))
	for i, sum := range summaries {
		dtos[i] = toSummaryDTO(sum)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeStoreError maps store lookups onto 404 vs 500.
func writeStoreError(w http.ResponseWriter, message string, err error) {
	if report.IsNotFound(err) {
		writeError(w, http.StatusNotFound, "Not found", err)
		return
	}
	writeError(w, http.StatusInternalServerError, message, err)
}

// writeComputeError maps engine/assembler failures onto status codes.
func writeComputeError(w http.ResponseWriter, err error) {
	switch {
	case report.IsNotFound(err):
		writeError(w, http.StatusNotFound, "Not found", err)
	case engine.IsInvalidInput(err):
		writeError(w, http.StatusBadRequest, "Invalid computation input", err)
	default:
		writeError(w, http.StatusInternalServerError, "Computation failed", err)
	}
}
