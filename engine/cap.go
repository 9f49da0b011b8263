/*
cap.go - Three-stage 60% capping

PURPOSE:
  Bounds how much of the base allowance a period's deductions may remove.
  The cap is 60% of the base allowance, applied in a FIXED order:

    1. attendance total capped at 60% of base
    2. manual total (its ORIGINAL value) capped at 60% of base
    3. if the two capped totals still exceed 60%, both are scaled
       proportionally so their sum lands exactly on the cap

  The order is a policy contract. Reordering changes results for
  employees near the boundary, so it must never be rederived.

ROUNDING:
  Every scaled amount is rounded half-up to the minor unit. After the
  proportional stage the manual component absorbs the rounding remainder,
  so the capped parts always sum exactly to the cap and the 60% bound is
  exact, not epsilon-exact.
*/
package engine

import "github.com/shopspring/decimal"

// capFraction is the maximum deductible share of the base allowance.
var capFraction = decimal.RequireFromString("0.60")

// CapResult carries the capped totals, the derived net allowance, and a
// flag per capping stage for auditability.
type CapResult struct {
	MaxDeduction     Money
	CappedAttendance Money
	CappedManual     Money
	TotalDeduction   Money
	NetAllowance     Money

	AttendanceCapped bool
	OtherCapped      bool
	TotalCapped      bool
}

// ApplyCap runs the three stages against the pre-cap totals.
func ApplyCap(base, attendance, manual Money) CapResult {
	maxCap := base.Scale(capFraction)

	result := CapResult{
		MaxDeduction:     maxCap,
		CappedAttendance: attendance,
		CappedManual:     manual,
	}

	// Stage 1: attendance cap.
	if attendance.GreaterThan(maxCap) {
		result.CappedAttendance = maxCap
		result.AttendanceCapped = true
	}

	// Stage 2: manual cap, judged on the original un-capped value.
	if manual.GreaterThan(maxCap) {
		result.CappedManual = maxCap
		result.OtherCapped = true
	}

	// Stage 3: joint proportional cap.
	total := result.CappedAttendance.Add(result.CappedManual)
	if total.GreaterThan(maxCap) {
		ratio := maxCap.Value.Div(total.Value)
		result.CappedAttendance = result.CappedAttendance.Scale(ratio)
		// Manual absorbs the rounding remainder so the parts sum to the cap.
		result.CappedManual = maxCap.Sub(result.CappedAttendance)
		total = maxCap
		result.TotalCapped = true
	}
	result.TotalDeduction = total

	net := base.Sub(total)
	if net.IsNegative() {
		net = ZeroMoney()
	}
	result.NetAllowance = net
	return result
}
