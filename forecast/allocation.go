package forecast

import "github.com/warp/budget-forecast/generic"

type AllocationStatus string

const (
	AllocationBalanced AllocationStatus = "balanced"
	AllocationUnder    AllocationStatus = "under"
	AllocationOver     AllocationStatus = "over"
)

// Allocation compares an item's installments with its price. It is a hint
// for editing forms; the engine forecasts whatever installments exist.
type Allocation struct {
	Allocated generic.Money
	Remaining generic.Money // negative when over-allocated
	Status    AllocationStatus
}

func CheckAllocation(item BudgetItem) Allocation {
	allocated := generic.Money{}
	for _, inst := range item.Installments {
		allocated = allocated.Add(inst.Amount)
	}
	remaining := item.TotalPrice.Sub(allocated)

	status := AllocationBalanced
	switch {
	case remaining.IsPositive():
		status = AllocationUnder
	case remaining.IsNegative():
		status = AllocationOver
	}
	return Allocation{Allocated: allocated, Remaining: remaining, Status: status}
}
