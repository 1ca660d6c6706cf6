package generic_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/budget-forecast/generic"
)

// =============================================================================
// TIME POINT
// =============================================================================

func TestParseDate(t *testing.T) {
	tp, err := generic.ParseDate("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, 2024, tp.Year())
	assert.Equal(t, time.February, tp.Month())
	assert.Equal(t, 29, tp.Day())
	assert.Equal(t, generic.Location, tp.Time.Location(), "dates parse at local midnight")
	assert.Equal(t, 0, tp.Time.Hour())

	for _, bad := range []string{"", "2023-02-29", "2024-13-01", "2024-3-1", "03/01/2024", "2024-03-01T00:00:00Z"} {
		_, err := generic.ParseDate(bad)
		assert.ErrorIs(t, err, generic.ErrInvalidDate, bad)
	}
}

func TestAddMonths_ClampsDay(t *testing.T) {
	tests := []struct {
		from   string
		months int
		want   string
	}{
		{"2024-01-31", 1, "2024-02-29"},
		{"2023-01-31", 1, "2023-02-28"},
		{"2024-03-31", 1, "2024-04-30"},
		{"2024-01-15", 1, "2024-02-15"},
		{"2024-11-30", 3, "2025-02-28"},
		{"2024-03-31", -1, "2024-02-29"},
		{"2024-05-10", 12, "2025-05-10"},
	}
	for _, tt := range tests {
		t.Run(tt.from, func(t *testing.T) {
			got := generic.MustParseDate(tt.from).AddMonths(tt.months)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestCalendarHelpers(t *testing.T) {
	assert.Equal(t, 29, generic.DaysInMonth(2024, time.February))
	assert.Equal(t, 28, generic.DaysInMonth(2100, time.February))
	assert.Equal(t, 31, generic.DaysInMonth(2024, time.December))

	tp := generic.MustParseDate("2024-02-17")
	assert.Equal(t, "2024-02-01", generic.StartOfMonth(tp).String())
	assert.Equal(t, "2024-02-29", generic.EndOfMonth(tp).String())
	assert.Equal(t, "2024-02", tp.MonthKey())
}

func TestRecurringDateInMonth(t *testing.T) {
	base := generic.MustParseDate("2023-10-31")

	assert.Equal(t, "2024-02-29", generic.RecurringDateInMonth(base, generic.MustParseDate("2024-02-01")).String())
	assert.Equal(t, "2025-02-28", generic.RecurringDateInMonth(base, generic.MustParseDate("2025-02-14")).String())
	assert.Equal(t, "2024-06-30", generic.RecurringDateInMonth(base, generic.MustParseDate("2024-06-01")).String())
	assert.Equal(t, "2024-07-31", generic.RecurringDateInMonth(base, generic.MustParseDate("2024-07-01")).String())
}

// =============================================================================
// WINDOW
// =============================================================================

func TestWindow_ContainsIsHalfOpen(t *testing.T) {
	w, err := generic.NewWindow("2024-03-01", "2024-04-01")
	require.NoError(t, err)

	assert.True(t, w.Contains(generic.MustParseDate("2024-03-01")))
	assert.True(t, w.Contains(generic.MustParseDate("2024-03-31")))
	assert.False(t, w.Contains(generic.MustParseDate("2024-04-01")))
	assert.False(t, w.Contains(generic.MustParseDate("2024-02-29")))
	assert.Equal(t, "[2024-03-01, 2024-04-01)", w.String())
}

func TestWindow_Empty(t *testing.T) {
	same, err := generic.NewWindow("2024-03-01", "2024-03-01")
	require.NoError(t, err)
	assert.True(t, same.IsEmpty())
	assert.ErrorIs(t, same.Validate(), generic.ErrInvalidWindow)
	assert.Empty(t, same.Months())

	inverted, err := generic.NewWindow("2024-05-01", "2024-03-01")
	require.NoError(t, err, "parsing does not order the bounds")
	assert.True(t, inverted.IsEmpty())
	assert.False(t, inverted.Contains(generic.MustParseDate("2024-04-01")))

	_, err = generic.NewWindow("2024-03-01", "soon")
	assert.ErrorIs(t, err, generic.ErrInvalidDate)
}

func TestWindow_Months(t *testing.T) {
	w, err := generic.NewWindow("2024-11-20", "2025-02-01")
	require.NoError(t, err)

	var labels []string
	for _, m := range w.Months() {
		labels = append(labels, m.String())
	}
	assert.Equal(t, []string{"2024-11-01", "2024-12-01", "2025-01-01"}, labels)

	w, err = generic.NewWindow("2024-11-20", "2025-02-02")
	require.NoError(t, err)
	assert.Len(t, w.Months(), 4, "one day into February adds February")
}

func TestMonthsAhead(t *testing.T) {
	w := generic.MonthsAhead(generic.MustParseDate("2024-08-31"), 6)
	assert.Equal(t, "[2024-08-31, 2025-02-28)", w.String())
}

// =============================================================================
// MONEY
// =============================================================================

func TestMoney_ExactArithmetic(t *testing.T) {
	total := generic.Sum(generic.NewMoney(0.1), generic.NewMoney(0.2))
	assert.True(t, total.Equal(generic.MustParseMoney("0.3")), "no float drift")

	m := generic.MustParseMoney("1299.99")
	assert.Equal(t, "1299.99", m.String())
	assert.Equal(t, "-1299.99", m.Neg().String())
	assert.Equal(t, 1299.99, m.Float64())
	assert.True(t, m.Neg().IsNegative())
	assert.True(t, m.Neg().Abs().Equal(m))
	assert.Equal(t, "5.00", generic.NewMoneyFromInt(5).String())
	assert.True(t, generic.Money{}.IsZero())
	assert.True(t, generic.NewMoneyFromInt(-3).Min(generic.NewMoneyFromInt(2)).Equal(generic.NewMoneyFromInt(-3)))

	_, err := generic.ParseMoney("12,50")
	assert.Error(t, err)
	assert.Panics(t, func() { generic.MustParseMoney("12,50") })
}

// =============================================================================
// ERRORS
// =============================================================================

func TestErrorClassification(t *testing.T) {
	fieldErr := &generic.FieldError{Field: "amount", Reason: "must be positive"}
	assert.Equal(t, "invalid amount: must be positive", fieldErr.Error())
	assert.ErrorIs(t, fieldErr, generic.ErrInvalidRecord)

	assert.True(t, generic.IsClientError(fieldErr))
	assert.True(t, generic.IsClientError(generic.ErrInvalidWindow))
	_, err := generic.ParseDate("nope")
	assert.True(t, generic.IsClientError(err))
	assert.False(t, generic.IsClientError(generic.ErrProjectNotFound))

	assert.True(t, generic.IsNotFound(generic.ErrProjectNotFound))
	assert.True(t, generic.IsNotFound(generic.ErrAccountNotFound))
	assert.True(t, generic.IsNotFound(generic.ErrRecordNotFound))
	assert.False(t, generic.IsNotFound(fieldErr))
}
