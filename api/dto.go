/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

MONEY ON THE WIRE:
  Amounts and percentages travel as decimal strings ("1000000.00",
  "2.5"), never JSON numbers. Clients that parse them into binary
  floats do so at their own risk.

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"github.com/warp/allowance-engine/engine"
	"github.com/warp/allowance-engine/report"
)

// =============================================================================
// EMPLOYEES
// =============================================================================

// EmployeeDTO represents an employee in API responses.
type EmployeeDTO struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	BaseAllowance string `json:"base_allowance"`
	ShiftStart    string `json:"shift_start,omitempty"`
	ShiftEnd      string `json:"shift_end,omitempty"`
}

// CreateEmployeeRequest is the request to create or replace an employee.
type CreateEmployeeRequest struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	BaseAllowance string `json:"base_allowance"`
	ShiftStart    string `json:"shift_start,omitempty"`
	ShiftEnd      string `json:"shift_end,omitempty"`
}

// =============================================================================
// ATTENDANCE INPUTS
// =============================================================================

// ClockEventRequest records one raw IN/OUT event.
type ClockEventRequest struct {
	Date string `json:"date"` // YYYY-MM-DD
	Kind string `json:"kind"` // IN or OUT
	Time string `json:"time"` // HH:MM or HH:MM:SS
}

// LeaveRequest records a leave range for an employee.
type LeaveRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Reason    string `json:"reason,omitempty"`
	Approved  bool   `json:"approved"`
}

// HolidayRequest records one company-wide holiday.
type HolidayRequest struct {
	Date string `json:"date"`
	Name string `json:"name"`
}

// ManualDeductionRequest records a manual deduction for an employee+month.
// Exactly one of percent or amount should be set.
type ManualDeductionRequest struct {
	Month   string `json:"month"` // YYYY-MM
	Percent string `json:"percent,omitempty"`
	Amount  string `json:"amount,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

// =============================================================================
// RULES
// =============================================================================

// RuleDTO is one deduction rule with its effective percentage.
type RuleDTO struct {
	Code     string `json:"code"`
	Label    string `json:"label"`
	Percent  string `json:"percent"`
	Fallback bool   `json:"fallback"` // true when no stored override exists
}

// UpdateRuleRequest upserts the percentage for one rule code.
type UpdateRuleRequest struct {
	Percent string `json:"percent"`
}

// =============================================================================
// REPORTS
// =============================================================================

// DayOutcomeDTO is one classified calendar day.
type DayOutcomeDTO struct {
	Date         string `json:"date"`
	Status       string `json:"status"`
	MinutesLate  int    `json:"minutes_late,omitempty"`
	MinutesEarly int    `json:"minutes_early,omitempty"`
	Deduction    string `json:"deduction"`
	Note         string `json:"note,omitempty"`
	Compensated  bool   `json:"compensated,omitempty"`
}

// PeriodResultDTO is a full per-employee report with the daily breakdown.
type PeriodResultDTO struct {
	EmployeeID          string          `json:"employee_id"`
	Month               string          `json:"month"`
	BaseAllowance       string          `json:"base_allowance"`
	AttendanceDeduction string          `json:"attendance_deduction"`
	ManualDeduction     string          `json:"manual_deduction"`
	TotalDeduction      string          `json:"total_deduction"`
	NetAllowance        string          `json:"net_allowance"`
	MaxDeduction        string          `json:"max_deduction"`
	AttendanceCapped    bool            `json:"attendance_capped"`
	OtherCapped         bool            `json:"other_capped"`
	TotalCapped         bool            `json:"total_capped"`
	UsedFallback        bool            `json:"used_fallback"`
	Days                []DayOutcomeDTO `json:"days"`
}

// SummaryDTO is a persisted monthly summary without the daily breakdown.
type SummaryDTO struct {
	EmployeeID          string `json:"employee_id"`
	Month               string `json:"month"`
	BaseAllowance       string `json:"base_allowance"`
	AttendanceDeduction string `json:"attendance_deduction"`
	ManualDeduction     string `json:"manual_deduction"`
	TotalDeduction      string `json:"total_deduction"`
	NetAllowance        string `json:"net_allowance"`
	AttendanceCapped    bool   `json:"attendance_capped"`
	OtherCapped         bool   `json:"other_capped"`
	TotalCapped         bool   `json:"total_capped"`
	UsedFallback        bool   `json:"used_fallback"`
	GeneratedAt         string `json:"generated_at"`
}

// RosterRunDTO is the outcome of one roster batch run.
type RosterRunDTO struct {
	Month     string             `json:"month"`
	Computed  int                `json:"computed"`
	Failed    int                `json:"failed"`
	Summaries []SummaryDTO       `json:"summaries"`
	Failures  []RosterFailureDTO `json:"failures,omitempty"`
}

// RosterFailureDTO names one employee whose computation was rejected.
type RosterFailureDTO struct {
	EmployeeID string `json:"employee_id"`
	Error      string `json:"error"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toEmployeeDTO(rec report.EmployeeRecord) EmployeeDTO {
	dto := EmployeeDTO{
		ID:            string(rec.ID),
		Name:          rec.Name,
		BaseAllowance: rec.BaseAllowance.String(),
	}
	if rec.Shift != nil {
		dto.ShiftStart = rec.Shift.Start.String()
		dto.ShiftEnd = rec.Shift.End.String()
	}
	return dto
}

func toPeriodResultDTO(month report.Month, res *engine.PeriodResult) PeriodResultDTO {
	dto := PeriodResultDTO{
		EmployeeID:          string(res.EmployeeID),
		Month:               month.String(),
		BaseAllowance:       res.BaseAllowance.String(),
		AttendanceDeduction: res.AttendanceDeduction.String(),
		ManualDeduction:     res.ManualDeduction.String(),
		TotalDeduction:      res.Cap.TotalDeduction.String(),
		NetAllowance:        res.Cap.NetAllowance.String(),
		MaxDeduction:        res.Cap.MaxDeduction.String(),
		AttendanceCapped:    res.Cap.AttendanceCapped,
		OtherCapped:         res.Cap.OtherCapped,
		TotalCapped:         res.Cap.TotalCapped,
		UsedFallback:        res.UsedFallback,
		Days:                make([]DayOutcomeDTO, 0, len(res.Days)),
	}
	for _, day := range res.Days {
		dto.Days = append(dto.Days, DayOutcomeDTO{
			Date:         day.Date.String(),
			Status:       day.Status.String(),
			MinutesLate:  day.MinutesLate,
			MinutesEarly: day.MinutesEarly,
			Deduction:    day.Deduction.String(),
			Note:         day.Note,
			Compensated:  day.Compensated,
		})
	}
	return dto
}

func toSummaryDTO(sum report.Summary) SummaryDTO {
	return SummaryDTO{
		EmployeeID:          string(sum.EmployeeID),
		Month:               sum.Month.String(),
		BaseAllowance:       sum.BaseAllowance.String(),
		AttendanceDeduction: sum.AttendanceDeduction.String(),
		ManualDeduction:     sum.ManualDeduction.String(),
		TotalDeduction:      sum.TotalDeduction.String(),
		NetAllowance:        sum.NetAllowance.String(),
		AttendanceCapped:    sum.AttendanceCapped,
		OtherCapped:         sum.OtherCapped,
		TotalCapped:         sum.TotalCapped,
		UsedFallback:        sum.UsedFallback,
		GeneratedAt:         sum.GeneratedAt.Format(timeFormat),
	}
}
