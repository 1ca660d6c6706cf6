package forecast

import (
	"sort"

	"github.com/warp/budget-forecast/generic"
)

// AccountCompatibility tells whether an account can carry the project
// through the window without going negative.
type AccountCompatibility struct {
	AccountID      AccountID
	LowestBalance  generic.Money
	LowestMonth    string // yyyy-MM of the lowest min
	FirstShortfall string // yyyy-MM of the first month below zero, empty if none
	EndBalance     generic.Money
	Affordable     bool
}

// Summarize reduces a projection to one line per account, sorted by id.
func Summarize(p Projection) []AccountCompatibility {
	ids := make([]AccountID, 0, len(p))
	for id, months := range p {
		if len(months) > 0 {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]AccountCompatibility, 0, len(ids))
	for _, id := range ids {
		months := p[id]
		c := AccountCompatibility{
			AccountID:     id,
			LowestBalance: months[0].Min,
			LowestMonth:   months[0].Label,
			EndBalance:    months[len(months)-1].End,
			Affordable:    true,
		}
		for _, m := range months {
			if m.Min.LessThan(c.LowestBalance) {
				c.LowestBalance = m.Min
				c.LowestMonth = m.Label
			}
			if m.Min.IsNegative() && c.Affordable {
				c.Affordable = false
				c.FirstShortfall = m.Label
			}
		}
		out = append(out, c)
	}
	return out
}
