package engine

import (
	"fmt"
	"time"
)

// =============================================================================
// DATE - Calendar date, no time zone ambiguity
// =============================================================================

// Date is a plain calendar date. It is comparable and safe as a map key.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

func NewDate(year int, month time.Month, day int) Date {
	// Normalize through time.Date so e.g. Feb 30 becomes Mar 2.
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}, nil
}

func (d Date) time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d Date) Before(o Date) bool { return d.time().Before(o.time()) }
func (d Date) After(o Date) bool  { return d.time().After(o.time()) }
func (d Date) Equal(o Date) bool  { return d == o }
func (d Date) IsZero() bool       { return d == Date{} }

func (d Date) AddDays(n int) Date {
	t := d.time().AddDate(0, 0, n)
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

func (d Date) Weekday() time.Weekday { return d.time().Weekday() }

func (d Date) String() string { return d.time().Format("2006-01-02") }

// DateSet is a set of calendar dates (holiday and leave inputs).
type DateSet map[Date]bool

func NewDateSet(dates ...Date) DateSet {
	s := make(DateSet, len(dates))
	for _, d := range dates {
		s[d] = true
	}
	return s
}

func (s DateSet) Contains(d Date) bool { return s[d] }

// =============================================================================
// CLOCK TIME - Local wall-clock time of day
// =============================================================================

// ClockTime is a local wall-clock time with minute precision.
// Attendance devices report seconds; they are irrelevant to tiering and
// are dropped on parse.
type ClockTime struct {
	Hour   int
	Minute int
}

func NewClockTime(hour, minute int) ClockTime {
	return ClockTime{Hour: hour, Minute: minute}
}

// ParseClock accepts "15:04" or "15:04:05".
func ParseClock(s string) (ClockTime, error) {
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return ClockTime{Hour: t.Hour(), Minute: t.Minute()}, nil
		}
	}
	return ClockTime{}, fmt.Errorf("parse clock time %q: want HH:MM or HH:MM:SS", s)
}

func (c ClockTime) MinutesOfDay() int { return c.Hour*60 + c.Minute }

// Sub returns c - o in minutes. Negative when c is earlier than o.
func (c ClockTime) Sub(o ClockTime) int { return c.MinutesOfDay() - o.MinutesOfDay() }

func (c ClockTime) Before(o ClockTime) bool { return c.MinutesOfDay() < o.MinutesOfDay() }
func (c ClockTime) After(o ClockTime) bool  { return c.MinutesOfDay() > o.MinutesOfDay() }

func (c ClockTime) String() string { return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute) }

// =============================================================================
// DATE RANGE - Inclusive calendar period
// =============================================================================

// DateRange is an inclusive [Start, End] period of calendar days.
type DateRange struct {
	Start Date
	End   Date
}

// Validate rejects a range whose end precedes its start.
func (r DateRange) Validate() error {
	if r.End.Before(r.Start) {
		return ErrInvalidDateRange
	}
	return nil
}

func (r DateRange) Contains(d Date) bool {
	return !d.Before(r.Start) && !d.After(r.End)
}

// Days returns every calendar day in the range, in order.
// No weekend skipping: the engine does not decide which days are workdays,
// that decision arrives as holiday input.
func (r DateRange) Days() []Date {
	var days []Date
	for d := r.Start; !d.After(r.End); d = d.AddDays(1) {
		days = append(days, d)
	}
	return days
}

func (r DateRange) String() string {
	return "[" + r.Start.String() + ", " + r.End.String() + "]"
}

// MonthOf returns the full calendar month containing the given year/month.
func MonthOf(year int, month time.Month) DateRange {
	start := NewDate(year, month, 1)
	end := start.AddDays(32 - start.Day) // overshoot into next month
	end = NewDate(end.Year, end.Month, 1).AddDays(-1)
	return DateRange{Start: start, End: end}
}
