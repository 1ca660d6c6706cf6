package forecast

import "sort"

// Sequence returns the events ordered by date ascending. The sort is stable:
// same-day events keep the order Materialize produced them in. The input
// slice is left untouched.
func Sequence(events []CashFlowEvent) []CashFlowEvent {
	sorted := make([]CashFlowEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})
	return sorted
}
