package forecast

import "github.com/warp/budget-forecast/generic"

// =============================================================================
// BALANCE ORACLE - Current balance at the start of the simulation
// =============================================================================

// BalanceOracle answers "what is this account's balance right now". It is
// assumed to include every transaction dated before the simulation starts.
// Unknown accounts must return zero.
type BalanceOracle interface {
	Balance(id AccountID) generic.Money
}

// BalanceFunc adapts a plain function to BalanceOracle.
type BalanceFunc func(id AccountID) generic.Money

func (f BalanceFunc) Balance(id AccountID) generic.Money { return f(id) }

// BalanceMap is an in-memory snapshot of current balances.
type BalanceMap map[AccountID]generic.Money

func (m BalanceMap) Balance(id AccountID) generic.Money { return m[id] }

type zeroOracle struct{}

func (zeroOracle) Balance(AccountID) generic.Money { return generic.Money{} }

// =============================================================================
// BALANCE SIMULATOR
// =============================================================================

// Simulate walks sorted events once and returns copies carrying the running
// balance of their own account after each event. Every account in accounts
// is seeded from the oracle, and so is any other id an event references the
// first time it appears; ids the oracle does not know start at zero. Events
// on one account never move another account's balance.
func Simulate(sorted []CashFlowEvent, accounts []Account, oracle BalanceOracle) []CashFlowEvent {
	if oracle == nil {
		oracle = zeroOracle{}
	}

	balances := make(map[AccountID]generic.Money, len(accounts))
	for _, a := range accounts {
		balances[a.ID] = oracle.Balance(a.ID)
	}

	out := make([]CashFlowEvent, len(sorted))
	for i, e := range sorted {
		balance, seen := balances[e.AccountID]
		if !seen {
			balance = oracle.Balance(e.AccountID)
		}
		current := balance.Add(e.Delta())
		balances[e.AccountID] = current
		e.RunningBalance = current
		out[i] = e
	}
	return out
}
