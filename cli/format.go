// Package cli renders forecasts as terminal tables.
package cli

import (
	"strings"

	"github.com/warp/budget-forecast/generic"
)

// FormatMoney renders an amount with comma separators and two decimals.
// e.g., -1234.5 -> "-1,234.50"
func FormatMoney(m generic.Money) string {
	s := m.Abs().String()
	whole, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	if m.IsNegative() {
		b.WriteByte('-')
	}
	remainder := len(whole) % 3
	if remainder > 0 {
		b.WriteString(whole[:remainder])
	}
	for i := remainder; i < len(whole); i += 3 {
		if b.Len() > 0 && !(b.Len() == 1 && m.IsNegative()) {
			b.WriteByte(',')
		}
		b.WriteString(whole[i : i+3])
	}
	b.WriteByte('.')
	b.WriteString(frac)
	return b.String()
}

// FormatDelta renders a signed event amount: "+50.00" or "-30.00".
func FormatDelta(m generic.Money) string {
	if m.IsNegative() {
		return FormatMoney(m)
	}
	return "+" + FormatMoney(m)
}
