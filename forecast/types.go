// Package forecast implements the budget forecast projection engine.
// It turns planned installments, pending liabilities and pending receivables
// into a chronological cash-flow timeline and a per-account monthly projection.
package forecast

import (
	"time"

	"github.com/warp/budget-forecast/generic"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type AccountID string
type ProjectID string

// =============================================================================
// SOURCE RECORDS - Borrowed read-only by the engine
// =============================================================================

// Account is a place money lives. Its current balance comes from a
// BalanceOracle, never from the engine.
type Account struct {
	ID       AccountID
	Name     string
	Color    string
	ParentID AccountID // empty for top-level accounts
}

// Project is a named budget forecast: things you plan to buy and how you
// plan to pay for them.
type Project struct {
	ID        ProjectID
	Name      string
	CreatedAt time.Time
	Items     []BudgetItem
}

// BudgetItem is a planned purchase. Installments should add up to
// TotalPrice but the engine does not require it.
type BudgetItem struct {
	ID           string
	Name         string
	Link         string
	TotalPrice   generic.Money
	Installments []Installment
}

// Installment is money leaving AccountID on Date.
type Installment struct {
	ID        string
	Date      string // yyyy-MM-dd
	Amount    generic.Money
	AccountID AccountID
}

type LiabilityStatus string

const (
	LiabilityPending LiabilityStatus = "PENDING"
	LiabilityPaid    LiabilityStatus = "PAID"
)

// Liability is a bill due on DueDate, paid from AccountID.
type Liability struct {
	ID        string
	Name      string
	Amount    generic.Money
	DueDate   string // yyyy-MM-dd
	AccountID AccountID
	Status    LiabilityStatus
}

type ReceivableStatus string

const (
	ReceivablePending  ReceivableStatus = "PENDING"
	ReceivableReceived ReceivableStatus = "RECEIVED"
)

type ReceivableType string

const (
	ReceivableOneTime   ReceivableType = "ONE_TIME"
	ReceivableRecurring ReceivableType = "RECURRING"
)

// Receivable is money expected into AccountID. Recurring receivables repeat
// monthly on RecurringDay (or ExpectedDate's day when RecurringDay is 0).
type Receivable struct {
	ID           string
	Name         string
	Amount       generic.Money
	ExpectedDate string // yyyy-MM-dd
	AccountID    AccountID
	Status       ReceivableStatus
	Type         ReceivableType
	RecurringDay int
}

// LedgerEntry is a settled historical transaction. Entries feed the current
// balance oracle; the engine never reads them.
type LedgerEntry struct {
	ID          string
	AccountID   AccountID
	Date        string // yyyy-MM-dd
	Amount      generic.Money
	Description string
}

// =============================================================================
// ENGINE OUTPUT - Created fresh on every recompute
// =============================================================================

type EventType string

const (
	EventInstallment EventType = "PROJECT_INSTALLMENT"
	EventLiability   EventType = "LIABILITY"
	EventReceivable  EventType = "RECEIVABLE"
)

// IsInflow is true for events that add money to their account.
func (t EventType) IsInflow() bool { return t == EventReceivable }

// CashFlowEvent is one dated movement of money on one account.
type CashFlowEvent struct {
	ID             string // source id, or {sourceID}-{yyyy-MM} for recurring occurrences
	SourceID       string
	Date           generic.TimePoint
	Type           EventType
	Name           string
	Amount         generic.Money // unsigned magnitude
	AccountID      AccountID
	IsRecurring    bool
	RunningBalance generic.Money // set by Simulate
}

// Delta is the signed effect of the event on its account.
func (e CashFlowEvent) Delta() generic.Money {
	if e.Type.IsInflow() {
		return e.Amount
	}
	return e.Amount.Neg()
}

// MonthlyBalance is one (account, month) bucket of the projection.
type MonthlyBalance struct {
	Month generic.TimePoint // first day of the month
	Label string            // yyyy-MM
	Start generic.Money
	End   generic.Money
	Min   generic.Money
}

// Projection maps each project-relevant account to its months in order.
type Projection map[AccountID][]MonthlyBalance
