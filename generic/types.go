/*
Package generic provides the calendar and money primitives shared by the
forecast engine, the stores and the API.

KEY CONCEPTS:
  - Money: a currency amount on decimal.Decimal (no float drift, no rounding)
  - TimePoint: a calendar day anchored at local midnight
  - Window: the half-open simulation range [Start, End)

DESIGN PRINCIPLES:
  1. Precision: amounts are exact decimals; nothing here rounds
  2. Calendar safety: month arithmetic clamps days instead of overflowing
  3. Local dates: yyyy-MM-dd strings parse at local midnight

USAGE:
  w, err := generic.NewWindow("2024-03-01", "2024-06-01")
  price := generic.NewMoney(1299.99)
  for _, m := range w.Months() { ... }

SEE ALSO:
  - time.go: TimePoint and calendar helpers
  - period.go: Window
  - errors.go: sentinel errors
*/
package generic

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// MONEY - Currency amount (single currency, no conversion)
// =============================================================================

type Money struct {
	Value decimal.Decimal
}

func NewMoney(value float64) Money          { return Money{Value: decimal.NewFromFloat(value)} }
func NewMoneyFromInt(value int64) Money     { return Money{Value: decimal.NewFromInt(value)} }
func MoneyFromDecimal(d decimal.Decimal) Money { return Money{Value: d} }

// ParseMoney parses a decimal string such as "1299.99".
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, err
	}
	return Money{Value: d}, nil
}

// MustParseMoney is ParseMoney for literals in tests and demo data.
func MustParseMoney(s string) Money {
	m, err := ParseMoney(s)
	if err != nil {
		panic(err)
	}
	return m
}

func (m Money) Add(b Money) Money           { return Money{Value: m.Value.Add(b.Value)} }
func (m Money) Sub(b Money) Money           { return Money{Value: m.Value.Sub(b.Value)} }
func (m Money) Neg() Money                  { return Money{Value: m.Value.Neg()} }
func (m Money) Abs() Money                  { return Money{Value: m.Value.Abs()} }
func (m Money) IsNegative() bool            { return m.Value.IsNegative() }
func (m Money) IsZero() bool                { return m.Value.IsZero() }
func (m Money) IsPositive() bool            { return m.Value.IsPositive() }
func (m Money) Equal(b Money) bool          { return m.Value.Equal(b.Value) }
func (m Money) GreaterThan(b Money) bool    { return m.Value.GreaterThan(b.Value) }
func (m Money) LessThan(b Money) bool       { return m.Value.LessThan(b.Value) }
func (m Money) Min(b Money) Money {
	if m.LessThan(b) {
		return m
	}
	return b
}

// Float64 is for the JSON boundary only.
func (m Money) Float64() float64 {
	f, _ := m.Value.Float64()
	return f
}

// String renders two decimal places for display.
func (m Money) String() string { return m.Value.StringFixed(2) }

// Sum adds up amounts.
func Sum(amounts ...Money) Money {
	total := Money{}
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}
