/*
store.go - Persistence interfaces the forecast service reads from

PURPOSE:
  The engine never touches storage. The service loads a consistent snapshot
  through these interfaces, then hands plain slices and an in-memory balance
  map to the engine.

KEY INTERFACES:
  Store:         accounts, liabilities, receivables and projects
  BalanceSource: current balance of every account (the ledger oracle)

IMPLEMENTATIONS:
  - store/sqlite: SQLite, used by the server and CLI
  - store/memory: in-memory, used by tests and demos
*/
package forecast

import (
	"context"
	"time"

	"github.com/warp/budget-forecast/generic"
)

// Store is the read side the forecast needs plus project ownership.
type Store interface {
	ListAccounts(ctx context.Context) ([]Account, error)
	ListLiabilities(ctx context.Context) ([]Liability, error)
	ListReceivables(ctx context.Context) ([]Receivable, error)

	// GetProject returns generic.ErrProjectNotFound when id is unknown.
	GetProject(ctx context.Context, id ProjectID) (*Project, error)
	ListProjects(ctx context.Context) ([]Project, error)
	SaveProject(ctx context.Context, p Project) error
	DeleteProject(ctx context.Context, id ProjectID) error
}

// BalanceSource computes the current balance of every account.
type BalanceSource interface {
	CurrentBalances(ctx context.Context) (map[AccountID]generic.Money, error)
}

// Repository is the full read/write surface the API needs. Lookups of
// missing records return generic.ErrAccountNotFound / ErrRecordNotFound.
type Repository interface {
	Store
	BalanceSource

	SaveAccount(ctx context.Context, a Account) error
	GetAccount(ctx context.Context, id AccountID) (*Account, error)

	AppendEntry(ctx context.Context, e LedgerEntry) error
	ListEntries(ctx context.Context, accountID AccountID) ([]LedgerEntry, error)

	SaveLiability(ctx context.Context, l Liability) error
	GetLiability(ctx context.Context, id string) (*Liability, error)

	SaveReceivable(ctx context.Context, r Receivable) error
	GetReceivable(ctx context.Context, id string) (*Receivable, error)

	// Reset removes every record.
	Reset(ctx context.Context) error
}

// =============================================================================
// MONITOR RUNS - History of background shortfall checks
// =============================================================================

type RunStatus string

const (
	RunOK        RunStatus = "ok"
	RunShortfall RunStatus = "shortfall"
	RunError     RunStatus = "error"
)

// MonitorRun records one account's outcome for one project check.
type MonitorRun struct {
	ID            string
	ProjectID     ProjectID
	AccountID     AccountID
	WindowStart   generic.TimePoint
	WindowEnd     generic.TimePoint
	LowestBalance generic.Money
	LowestMonth   string
	Status        RunStatus
	Error         string
	CreatedAt     time.Time
}

// RunStore persists monitor runs. An empty status lists all runs.
type RunStore interface {
	SaveMonitorRun(ctx context.Context, r MonitorRun) error
	ListMonitorRuns(ctx context.Context, status RunStatus) ([]MonitorRun, error)
}

// AccountTreeBalances sums each account's own entries plus those of all its
// descendants. Cycles in ParentID are ignored past the first visit.
func AccountTreeBalances(accounts []Account, entries []LedgerEntry) map[AccountID]generic.Money {
	direct := make(map[AccountID]generic.Money, len(accounts))
	for _, e := range entries {
		direct[e.AccountID] = direct[e.AccountID].Add(e.Amount)
	}

	children := make(map[AccountID][]AccountID)
	for _, a := range accounts {
		if a.ParentID != "" {
			children[a.ParentID] = append(children[a.ParentID], a.ID)
		}
	}

	var total func(id AccountID, visiting map[AccountID]bool) generic.Money
	total = func(id AccountID, visiting map[AccountID]bool) generic.Money {
		if visiting[id] {
			return generic.Money{}
		}
		visiting[id] = true
		sum := direct[id]
		for _, child := range children[id] {
			sum = sum.Add(total(child, visiting))
		}
		return sum
	}

	balances := make(map[AccountID]generic.Money, len(accounts))
	for _, a := range accounts {
		balances[a.ID] = total(a.ID, make(map[AccountID]bool))
	}
	return balances
}
