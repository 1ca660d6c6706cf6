// Package memory provides an in-memory forecast.Repository.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/budget-forecast/forecast"
	"github.com/warp/budget-forecast/generic"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory keeps records in insertion order. Reads return copies so callers
// can edit drafts without touching stored state.
type Memory struct {
	mu          sync.RWMutex
	accounts    []forecast.Account
	entries     []forecast.LedgerEntry
	liabilities []forecast.Liability
	receivables []forecast.Receivable
	projects    []forecast.Project
	runs        []forecast.MonitorRun
}

func New() *Memory {
	return &Memory{}
}

// Compile-time checks
var (
	_ forecast.Repository = (*Memory)(nil)
	_ forecast.RunStore   = (*Memory)(nil)
)

// =============================================================================
// ACCOUNTS & LEDGER
// =============================================================================

func (m *Memory) SaveAccount(_ context.Context, a forecast.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.accounts {
		if m.accounts[i].ID == a.ID {
			m.accounts[i] = a
			return nil
		}
	}
	m.accounts = append(m.accounts, a)
	return nil
}

func (m *Memory) GetAccount(_ context.Context, id forecast.AccountID) (*forecast.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, a := range m.accounts {
		if a.ID == id {
			return &a, nil
		}
	}
	return nil, generic.ErrAccountNotFound
}

func (m *Memory) ListAccounts(_ context.Context) ([]forecast.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]forecast.Account{}, m.accounts...), nil
}

func (m *Memory) AppendEntry(_ context.Context, e forecast.LedgerEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.entries {
		if existing.ID == e.ID {
			return &generic.FieldError{Field: "id", Reason: "duplicate entry"}
		}
	}
	m.entries = append(m.entries, e)
	return nil
}

// ListEntries returns an account's entries ordered by date.
func (m *Memory) ListEntries(_ context.Context, accountID forecast.AccountID) ([]forecast.LedgerEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []forecast.LedgerEntry
	for _, e := range m.entries {
		if e.AccountID == accountID {
			result = append(result, e)
		}
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].Date < result[j].Date })
	return result, nil
}

func (m *Memory) CurrentBalances(_ context.Context) (map[forecast.AccountID]generic.Money, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return forecast.AccountTreeBalances(m.accounts, m.entries), nil
}

// =============================================================================
// LIABILITIES & RECEIVABLES
// =============================================================================

func (m *Memory) SaveLiability(_ context.Context, l forecast.Liability) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.liabilities {
		if m.liabilities[i].ID == l.ID {
			m.liabilities[i] = l
			return nil
		}
	}
	m.liabilities = append(m.liabilities, l)
	return nil
}

func (m *Memory) GetLiability(_ context.Context, id string) (*forecast.Liability, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, l := range m.liabilities {
		if l.ID == id {
			return &l, nil
		}
	}
	return nil, generic.ErrRecordNotFound
}

func (m *Memory) ListLiabilities(_ context.Context) ([]forecast.Liability, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]forecast.Liability{}, m.liabilities...), nil
}

func (m *Memory) SaveReceivable(_ context.Context, r forecast.Receivable) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.receivables {
		if m.receivables[i].ID == r.ID {
			m.receivables[i] = r
			return nil
		}
	}
	m.receivables = append(m.receivables, r)
	return nil
}

func (m *Memory) GetReceivable(_ context.Context, id string) (*forecast.Receivable, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.receivables {
		if r.ID == id {
			return &r, nil
		}
	}
	return nil, generic.ErrRecordNotFound
}

func (m *Memory) ListReceivables(_ context.Context) ([]forecast.Receivable, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]forecast.Receivable{}, m.receivables...), nil
}

// =============================================================================
// PROJECTS
// =============================================================================

func (m *Memory) SaveProject(_ context.Context, p forecast.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := checkItemIDs(p); err != nil {
		return err
	}
	p = cloneProject(p)
	for i := range m.projects {
		if m.projects[i].ID == p.ID {
			m.projects[i] = p
			return nil
		}
	}
	m.projects = append(m.projects, p)
	return nil
}

func (m *Memory) GetProject(_ context.Context, id forecast.ProjectID) (*forecast.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.projects {
		if p.ID == id {
			c := cloneProject(p)
			return &c, nil
		}
	}
	return nil, generic.ErrProjectNotFound
}

func (m *Memory) ListProjects(_ context.Context) ([]forecast.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]forecast.Project, len(m.projects))
	for i, p := range m.projects {
		result[i] = cloneProject(p)
	}
	return result, nil
}

func (m *Memory) DeleteProject(_ context.Context, id forecast.ProjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, p := range m.projects {
		if p.ID == id {
			m.projects = append(m.projects[:i], m.projects[i+1:]...)
			return nil
		}
	}
	return generic.ErrProjectNotFound
}

// checkItemIDs mirrors the SQLite primary keys: item ids are unique within a
// project, installment ids within an item.
func checkItemIDs(p forecast.Project) error {
	items := make(map[string]bool, len(p.Items))
	for _, item := range p.Items {
		if items[item.ID] {
			return &generic.FieldError{Field: "items.id", Reason: "duplicate item id " + item.ID}
		}
		items[item.ID] = true
		installments := make(map[string]bool, len(item.Installments))
		for _, inst := range item.Installments {
			if installments[inst.ID] {
				return &generic.FieldError{Field: "installments.id", Reason: "duplicate installment id " + inst.ID}
			}
			installments[inst.ID] = true
		}
	}
	return nil
}

func cloneProject(p forecast.Project) forecast.Project {
	items := make([]forecast.BudgetItem, len(p.Items))
	for i, item := range p.Items {
		item.Installments = append([]forecast.Installment{}, item.Installments...)
		items[i] = item
	}
	p.Items = items
	return p
}

// =============================================================================
// MONITOR RUNS
// =============================================================================

func (m *Memory) SaveMonitorRun(_ context.Context, r forecast.MonitorRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, r)
	return nil
}

// ListMonitorRuns returns runs newest first.
func (m *Memory) ListMonitorRuns(_ context.Context, status forecast.RunStatus) ([]forecast.MonitorRun, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []forecast.MonitorRun
	for i := len(m.runs) - 1; i >= 0; i-- {
		if status == "" || m.runs[i].Status == status {
			result = append(result, m.runs[i])
		}
	}
	return result, nil
}

// Reset drops every record.
func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts = nil
	m.entries = nil
	m.liabilities = nil
	m.receivables = nil
	m.projects = nil
	m.runs = nil
	return nil
}
