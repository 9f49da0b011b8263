/*
Package engine computes the monthly net performance allowance.

PURPOSE:
  This package contains the pure calculation core: given an employee's base
  allowance, one period of attendance facts (clock events, approved leave,
  holidays), a deduction-rule table, and any manual deductions, it produces
  a fully classified PeriodResult. No I/O, no clock, no hidden state -
  identical inputs always produce identical output.

KEY CONCEPTS IN THIS FILE (types.go):
  - Money:   A currency amount with fixed-point decimal semantics
  - Percent: A percentage-of-base-allowance in [0, 100]
  - Employee: Identifier + base allowance, immutable per calculation
  - ManualDeduction: A non-attendance deduction supplied by the caller

DESIGN PRINCIPLES:
  1. Precision: decimal.Decimal everywhere, half-up rounding to 2 places
     at every step. Never binary floating point for money.
  2. Immutability: DayOutcome and PeriodResult are produced once and
     never mutated.
  3. Type Safety: Closed enums for statuses and rule codes instead of
     free-form strings.

SEE ALSO:
  - rules.go: Deduction-rule table with fallback defaults
  - day.go:   Per-day attendance classification
  - cap.go:   Three-stage 60% capping
*/
package engine

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// MONEY - Fixed-point currency amount
// =============================================================================

// Money is a currency amount in the allowance's currency.
// All derived amounts are rounded half-up to the minor unit (2 places).
type Money struct {
	Value decimal.Decimal
}

func NewMoney(value float64) Money {
	return Money{Value: decimal.NewFromFloat(value).Round(moneyPlaces)}
}

func NewMoneyFromInt(value int64) Money {
	return Money{Value: decimal.NewFromInt(value)}
}

// ParseMoney parses a decimal string ("1000000", "599999.99").
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("parse money %q: %w", s, err)
	}
	return Money{Value: d}, nil
}

// MustParseMoney is ParseMoney for literals; panics on bad input.
func MustParseMoney(s string) Money {
	m, err := ParseMoney(s)
	if err != nil {
		panic(err)
	}
	return m
}

func ZeroMoney() Money { return Money{Value: decimal.Zero} }

const moneyPlaces = 2

func (m Money) Add(o Money) Money        { return Money{Value: m.Value.Add(o.Value)} }
func (m Money) Sub(o Money) Money        { return Money{Value: m.Value.Sub(o.Value)} }
func (m Money) IsZero() bool             { return m.Value.IsZero() }
func (m Money) IsNegative() bool         { return m.Value.IsNegative() }
func (m Money) GreaterThan(o Money) bool { return m.Value.GreaterThan(o.Value) }
func (m Money) LessThan(o Money) bool    { return m.Value.LessThan(o.Value) }
func (m Money) Equal(o Money) bool       { return m.Value.Equal(o.Value) }

func (m Money) Min(o Money) Money {
	if m.LessThan(o) {
		return m
	}
	return o
}

// ApplyPercent returns value * pct / 100, rounded half-up to the minor unit.
func (m Money) ApplyPercent(p Percent) Money {
	return Money{Value: m.Value.Mul(p.Value).Div(decimal.NewFromInt(100)).Round(moneyPlaces)}
}

// Scale returns value * ratio, rounded half-up to the minor unit.
// Used by the proportional stage of the cap engine.
func (m Money) Scale(ratio decimal.Decimal) Money {
	return Money{Value: m.Value.Mul(ratio).Round(moneyPlaces)}
}

// String formats with exactly two decimal places.
func (m Money) String() string { return m.Value.StringFixed(moneyPlaces) }

// =============================================================================
// PERCENT - Percentage of base allowance
// =============================================================================

// Percent is a percentage-of-base-allowance. Valid rule-table values are
// in [0, 100]; sums of several applied rules may exceed 100.
type Percent struct {
	Value decimal.Decimal
}

func NewPercent(value float64) Percent {
	return Percent{Value: decimal.NewFromFloat(value)}
}

// ParsePercent parses a decimal string without the "%" sign ("2.5").
func ParsePercent(s string) (Percent, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Percent{}, fmt.Errorf("parse percent %q: %w", s, err)
	}
	return Percent{Value: d}, nil
}

// MustParsePercent is ParsePercent for literals; panics on bad input.
func MustParsePercent(s string) Percent {
	p, err := ParsePercent(s)
	if err != nil {
		panic(err)
	}
	return p
}

func ZeroPercent() Percent { return Percent{Value: decimal.Zero} }

func (p Percent) Add(o Percent) Percent { return Percent{Value: p.Value.Add(o.Value)} }
func (p Percent) IsZero() bool          { return p.Value.IsZero() }
func (p Percent) Equal(o Percent) bool  { return p.Value.Equal(o.Value) }

// InRange reports whether the percentage is a valid rule-table value.
func (p Percent) InRange() bool {
	return !p.Value.IsNegative() && !p.Value.GreaterThan(decimal.NewFromInt(100))
}

func (p Percent) String() string { return p.Value.String() + "%" }

// =============================================================================
// EMPLOYEE
// =============================================================================

type EmployeeID string

// Employee is the calculation subject. Immutable for the duration of one
// period computation.
type Employee struct {
	ID            EmployeeID
	Name          string
	BaseAllowance Money
}

// =============================================================================
// MANUAL DEDUCTION - Supplied by the surrounding system, not attendance-driven
// =============================================================================

// ManualDeduction is an independently supplied deduction for the period.
// Exactly one of Percent or Amount should be set; a fixed Amount wins if
// both are present.
type ManualDeduction struct {
	Percent *Percent
	Amount  *Money
	Reason  string
}

// AmountFor converts the deduction to a concrete amount against the base.
func (d ManualDeduction) AmountFor(base Money) Money {
	if d.Amount != nil {
		return *d.Amount
	}
	if d.Percent != nil {
		return base.ApplyPercent(*d.Percent)
	}
	return ZeroMoney()
}
