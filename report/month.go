/*
month.go - Calendar month value type for report periods

PURPOSE:
  Reports are generated per calendar month. Month is a small value type
  that names one, parses/prints the "2006-01" wire form, and expands to
  the engine's DateRange for computation.
*/
package report

import (
	"fmt"
	"time"

	"github.com/warp/allowance-engine/engine"
)

// Month identifies one calendar month.
type Month struct {
	Year  int
	Month time.Month
}

// MonthOf builds a Month. The inputs are normalized the same way
// time.Date normalizes them.
func MonthOf(year int, month time.Month) Month {
	t := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return Month{Year: t.Year(), Month: t.Month()}
}

// ParseMonth parses the "2006-01" form.
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Month{}, fmt.Errorf("parse month %q: %w", s, err)
	}
	return Month{Year: t.Year(), Month: t.Month()}, nil
}

// Range expands the month into the full calendar date range,
// first day through last day inclusive.
func (m Month) Range() engine.DateRange {
	return engine.MonthOf(m.Year, m.Month)
}

// IsZero reports whether m is the zero value.
func (m Month) IsZero() bool {
	return m.Year == 0 && m.Month == 0
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}
