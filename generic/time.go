package generic

import (
	"fmt"
	"time"
)

// =============================================================================
// TIME POINT - Calendar day anchored at local midnight
// =============================================================================

// DateLayout is the canonical calendar-day form used across the tracker.
const DateLayout = "2006-01-02"

// MonthLayout labels month buckets and recurring occurrences.
const MonthLayout = "2006-01"

// Location anchors every TimePoint. Dates are parsed at local midnight rather
// than UTC midnight so a day never shifts across timezones.
var Location = time.Local

// TimePoint is a calendar day. It carries no time-of-day component.
type TimePoint struct {
	Time time.Time
}

// Constructors
func NewTimePoint(year int, month time.Month, day int) TimePoint {
	return TimePoint{Time: time.Date(year, month, day, 0, 0, 0, 0, Location)}
}

func Today() TimePoint {
	now := time.Now().In(Location)
	return NewTimePoint(now.Year(), now.Month(), now.Day())
}

// FromTime truncates t to its calendar day in Location.
func FromTime(t time.Time) TimePoint {
	t = t.In(Location)
	return NewTimePoint(t.Year(), t.Month(), t.Day())
}

// ParseDate parses a yyyy-MM-dd string at local midnight.
func ParseDate(s string) (TimePoint, error) {
	t, err := time.ParseInLocation(DateLayout, s, Location)
	if err != nil {
		return TimePoint{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return NewTimePoint(t.Year(), t.Month(), t.Day()), nil
}

// MustParseDate is ParseDate for literals in tests and demo data.
func MustParseDate(s string) TimePoint {
	tp, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return tp
}

// Comparison
func (tp TimePoint) Before(other TimePoint) bool        { return tp.Time.Before(other.Time) }
func (tp TimePoint) Equal(other TimePoint) bool         { return tp.Time.Equal(other.Time) }
func (tp TimePoint) After(other TimePoint) bool         { return tp.Time.After(other.Time) }
func (tp TimePoint) BeforeOrEqual(other TimePoint) bool { return !tp.After(other) }
func (tp TimePoint) AfterOrEqual(other TimePoint) bool  { return !tp.Before(other) }

// Arithmetic
func (tp TimePoint) AddDays(n int) TimePoint {
	return NewTimePoint(tp.Year(), tp.Month(), tp.Day()+n)
}

// AddMonths moves by n calendar months, clamping the day to the length of the
// target month (Jan 31 + 1 month = Feb 28 or 29).
func (tp TimePoint) AddMonths(n int) TimePoint {
	first := NewTimePoint(tp.Year(), tp.Month()+time.Month(n), 1)
	return NewTimePoint(first.Year(), first.Month(), min(tp.Day(), DaysInMonth(first.Year(), first.Month())))
}

// Properties
func (tp TimePoint) Year() int         { return tp.Time.Year() }
func (tp TimePoint) Month() time.Month { return tp.Time.Month() }
func (tp TimePoint) Day() int          { return tp.Time.Day() }
func (tp TimePoint) IsZero() bool      { return tp.Time.IsZero() }

func (tp TimePoint) String() string { return tp.Time.Format(DateLayout) }

// MonthKey returns the yyyy-MM label of the month containing tp.
func (tp TimePoint) MonthKey() string { return tp.Time.Format(MonthLayout) }

// =============================================================================
// CALENDAR ARITHMETIC
// =============================================================================

func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func StartOfMonth(tp TimePoint) TimePoint { return NewTimePoint(tp.Year(), tp.Month(), 1) }

func EndOfMonth(tp TimePoint) TimePoint {
	return NewTimePoint(tp.Year(), tp.Month(), DaysInMonth(tp.Year(), tp.Month()))
}

// RecurringDateInMonth resolves base's day-of-month inside the month that
// contains anchor. Days past the end of that month clamp to its last day, so
// a receivable on the 31st lands on Feb 28/29 instead of early March.
func RecurringDateInMonth(base, anchor TimePoint) TimePoint {
	last := DaysInMonth(anchor.Year(), anchor.Month())
	return NewTimePoint(anchor.Year(), anchor.Month(), min(base.Day(), last))
}
