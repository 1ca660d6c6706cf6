package generic

// =============================================================================
// WINDOW - Half-open simulation range
// =============================================================================

// Window is the simulation range [Start, End). A date equal to End is outside.
//
// Examples:
//   - March 2024: Start 2024-03-01, End 2024-04-01
//   - Q2 2025:    Start 2025-04-01, End 2025-07-01
type Window struct {
	Start TimePoint
	End   TimePoint
}

// NewWindow parses a filter range given as yyyy-MM-dd strings.
func NewWindow(start, end string) (Window, error) {
	s, err := ParseDate(start)
	if err != nil {
		return Window{}, err
	}
	e, err := ParseDate(end)
	if err != nil {
		return Window{}, err
	}
	return Window{Start: s, End: e}, nil
}

// MonthsAhead returns the window [from, from + n months).
func MonthsAhead(from TimePoint, n int) Window {
	return Window{Start: from, End: from.AddMonths(n)}
}

// Contains reports whether t is on or after Start and strictly before End.
func (w Window) Contains(t TimePoint) bool {
	return t.AfterOrEqual(w.Start) && t.Before(w.End)
}

// IsEmpty is true when no day can fall inside the window.
func (w Window) IsEmpty() bool {
	return !w.Start.Before(w.End)
}

// Validate rejects windows whose end does not come after their start.
func (w Window) Validate() error {
	if w.IsEmpty() {
		return ErrInvalidWindow
	}
	return nil
}

// Months returns the first day of every month from StartOfMonth(Start) while
// strictly before End. The first month may begin before Start.
func (w Window) Months() []TimePoint {
	var months []TimePoint
	for m := StartOfMonth(w.Start); m.Before(w.End); m = m.AddMonths(1) {
		months = append(months, m)
	}
	return months
}

func (w Window) String() string {
	return "[" + w.Start.String() + ", " + w.End.String() + ")"
}
