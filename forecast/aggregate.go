package forecast

import "github.com/warp/budget-forecast/generic"

// =============================================================================
// MONTHLY AGGREGATOR - Start/end/min per (account, month)
// =============================================================================

// Aggregate buckets sorted events by account and calendar month for every
// account touched by at least one installment. The first month of each
// account starts at its oracle balance; each later month starts where the
// previous one ended. Min starts at Start and only moves down.
func Aggregate(sorted []CashFlowEvent, w generic.Window, oracle BalanceOracle) Projection {
	projection := make(Projection)
	if w.IsEmpty() {
		return projection
	}
	if oracle == nil {
		oracle = zeroOracle{}
	}

	accounts := projectAccounts(sorted)
	if len(accounts) == 0 {
		return projection
	}

	type bucketKey struct {
		account AccountID
		month   string
	}
	buckets := make(map[bucketKey][]CashFlowEvent)
	for _, e := range sorted {
		k := bucketKey{account: e.AccountID, month: e.Date.MonthKey()}
		buckets[k] = append(buckets[k], e)
	}

	months := w.Months()
	for _, account := range accounts {
		records := make([]MonthlyBalance, 0, len(months))
		start := oracle.Balance(account)
		for _, month := range months {
			label := month.MonthKey()
			balance, lowest := start, start
			for _, e := range buckets[bucketKey{account: account, month: label}] {
				balance = balance.Add(e.Delta())
				lowest = lowest.Min(balance)
			}
			records = append(records, MonthlyBalance{
				Month: month,
				Label: label,
				Start: start,
				End:   balance,
				Min:   lowest,
			})
			start = balance
		}
		projection[account] = records
	}
	return projection
}

// projectAccounts lists accounts with at least one installment event, in
// order of first appearance.
func projectAccounts(events []CashFlowEvent) []AccountID {
	seen := make(map[AccountID]bool)
	var accounts []AccountID
	for _, e := range events {
		if e.Type != EventInstallment || seen[e.AccountID] {
			continue
		}
		seen[e.AccountID] = true
		accounts = append(accounts, e.AccountID)
	}
	return accounts
}
