package forecast

import (
	"time"

	"github.com/warp/budget-forecast/generic"
)

// =============================================================================
// EVENT MATERIALIZER - Source records to dated cash-flow events
// =============================================================================

// SkippedRecord names a source record left out because its date did not parse.
type SkippedRecord struct {
	Kind string // "installment", "liability", "receivable"
	ID   string
	Date string
}

// Materialize converts the three source collections into cash-flow events
// dated inside w. Events come out grouped as installments, liabilities,
// one-time receivables, then recurring receivables, each in source order.
//
// Only PENDING liabilities and receivables participate. A record whose date
// does not parse is skipped and reported, never fatal.
func Materialize(w generic.Window, items []BudgetItem, liabilities []Liability, receivables []Receivable) ([]CashFlowEvent, []SkippedRecord) {
	var (
		events  []CashFlowEvent
		skipped []SkippedRecord
	)
	if w.IsEmpty() {
		return events, skipped
	}

	for _, item := range items {
		for _, inst := range item.Installments {
			date, err := generic.ParseDate(inst.Date)
			if err != nil {
				skipped = append(skipped, SkippedRecord{Kind: "installment", ID: inst.ID, Date: inst.Date})
				continue
			}
			if !w.Contains(date) {
				continue
			}
			events = append(events, CashFlowEvent{
				ID:        inst.ID,
				SourceID:  inst.ID,
				Date:      date,
				Type:      EventInstallment,
				Name:      item.Name,
				Amount:    inst.Amount,
				AccountID: inst.AccountID,
			})
		}
	}

	for _, l := range liabilities {
		if l.Status != LiabilityPending {
			continue
		}
		due, err := generic.ParseDate(l.DueDate)
		if err != nil {
			skipped = append(skipped, SkippedRecord{Kind: "liability", ID: l.ID, Date: l.DueDate})
			continue
		}
		if !w.Contains(due) {
			continue
		}
		events = append(events, CashFlowEvent{
			ID:        l.ID,
			SourceID:  l.ID,
			Date:      due,
			Type:      EventLiability,
			Name:      l.Name,
			Amount:    l.Amount,
			AccountID: l.AccountID,
		})
	}

	var recurring []Receivable
	for _, r := range receivables {
		if r.Status != ReceivablePending {
			continue
		}
		switch r.Type {
		case ReceivableRecurring:
			recurring = append(recurring, r)
			continue
		case ReceivableOneTime:
		default:
			continue
		}
		expected, err := generic.ParseDate(r.ExpectedDate)
		if err != nil {
			skipped = append(skipped, SkippedRecord{Kind: "receivable", ID: r.ID, Date: r.ExpectedDate})
			continue
		}
		if !w.Contains(expected) {
			continue
		}
		events = append(events, receivableEvent(r, r.ID, expected, false))
	}

	for _, r := range recurring {
		occurrences, err := RecurringOccurrences(r, w)
		if err != nil {
			skipped = append(skipped, SkippedRecord{Kind: "receivable", ID: r.ID, Date: r.ExpectedDate})
			continue
		}
		events = append(events, occurrences...)
	}

	return events, skipped
}

// RecurringOccurrences expands a recurring receivable into one event per
// month of w whose resolved date falls inside w. It is deterministic: the
// same receivable and window always yield the same ids.
func RecurringOccurrences(r Receivable, w generic.Window) ([]CashFlowEvent, error) {
	base, err := generic.ParseDate(r.ExpectedDate)
	if err != nil {
		return nil, err
	}
	if r.RecurringDay >= 1 && r.RecurringDay <= 31 {
		// Only the day-of-month of base matters from here on.
		base = anchorDay(r.RecurringDay)
	}

	var events []CashFlowEvent
	for _, month := range w.Months() {
		date := generic.RecurringDateInMonth(base, month)
		if !w.Contains(date) {
			continue
		}
		events = append(events, receivableEvent(r, r.ID+"-"+date.MonthKey(), date, true))
	}
	return events, nil
}

// anchorDay returns a date whose Day() is day. January has 31 days, so every
// valid recurring day survives, even ones the expected month lacks.
func anchorDay(day int) generic.TimePoint {
	return generic.NewTimePoint(2000, time.January, day)
}

func receivableEvent(r Receivable, id string, date generic.TimePoint, recurring bool) CashFlowEvent {
	return CashFlowEvent{
		ID:          id,
		SourceID:    r.ID,
		Date:        date,
		Type:        EventReceivable,
		Name:        r.Name,
		Amount:      r.Amount,
		AccountID:   r.AccountID,
		IsRecurring: recurring,
	}
}
