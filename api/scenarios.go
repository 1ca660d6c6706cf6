/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the store with realistic
	data for demos. Each scenario creates accounts, ledger history, bills,
	expected income and one project that shows a specific forecast feature.

AVAILABLE SCENARIOS:

	household:        Salary, rent and a laptop paid in three installments
	tight-month:      A large installment pushes checking below zero
	month-end-salary: Salary on the 31st, clamped in shorter months

HOW SCENARIOS WORK:
 1. Reset store (clear all data)
 2. Create accounts and opening ledger entries
 3. Create liabilities and receivables
 4. Create a project with items and installments

Dates are relative to the current month so the demo always looks ahead.

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "household"}

NOTE:

	Scenarios reset the store. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: Record endpoints
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/warp/budget-forecast/forecast"
	"github.com/warp/budget-forecast/generic"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "household",
		Name:        "Household",
		Description: "Monthly salary and rent with a laptop paid in three installments",
	},
	{
		ID:          "tight-month",
		Name:        "Tight Month",
		Description: "A large down payment takes checking below zero before salary arrives",
	},
	{
		ID:          "month-end-salary",
		Name:        "Month-End Salary",
		Description: "Salary paid on the 31st, moved to the last day of shorter months",
	},
}

type scenarioLoader func(ctx context.Context, store forecast.Repository, month generic.TimePoint) error

var scenarioLoaders = map[string]scenarioLoader{
	"household":        loadHouseholdScenario,
	"tight-month":      loadTightMonthScenario,
	"month-end-salary": loadMonthEndSalaryScenario,
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	if h.currentScenario == "" {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	for _, s := range scenarios {
		if s.ID == h.currentScenario {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, ScenarioDTO{ID: h.currentScenario, Name: h.currentScenario})
}

// LoadScenario resets the store and loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	load, ok := scenarioLoaders[req.ScenarioID]
	if !ok {
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}

	ctx := r.Context()
	if err := h.Store.Reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset store", err)
		return
	}
	h.currentScenario = ""

	if err := load(ctx, h.Store, generic.StartOfMonth(generic.Today())); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to load scenario: %v", err), err)
		return
	}
	h.currentScenario = req.ScenarioID

	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": req.ScenarioID})
}

// ResetDatabase clears all data.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset store", err)
		return
	}
	h.currentScenario = ""
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

// seed collects the records of one scenario and saves them in order.
type seed struct {
	accounts    []forecast.Account
	entries     []forecast.LedgerEntry
	liabilities []forecast.Liability
	receivables []forecast.Receivable
	project     *forecast.Project
}

func (s seed) save(ctx context.Context, store forecast.Repository) error {
	for _, a := range s.accounts {
		if err := store.SaveAccount(ctx, a); err != nil {
			return fmt.Errorf("account %s: %w", a.ID, err)
		}
	}
	for _, e := range s.entries {
		if err := store.AppendEntry(ctx, e); err != nil {
			return fmt.Errorf("entry %s: %w", e.ID, err)
		}
	}
	for _, l := range s.liabilities {
		if err := store.SaveLiability(ctx, l); err != nil {
			return fmt.Errorf("liability %s: %w", l.ID, err)
		}
	}
	for _, r := range s.receivables {
		if err := store.SaveReceivable(ctx, r); err != nil {
			return fmt.Errorf("receivable %s: %w", r.ID, err)
		}
	}
	if s.project != nil {
		if err := store.SaveProject(ctx, *s.project); err != nil {
			return fmt.Errorf("project %s: %w", s.project.ID, err)
		}
	}
	return nil
}

// day formats the given day of the month offset months from base.
func day(base generic.TimePoint, months, d int) string {
	m := base.AddMonths(months)
	return generic.NewTimePoint(m.Year(), m.Month(), min(d, generic.DaysInMonth(m.Year(), m.Month()))).String()
}

func standardAccounts() []forecast.Account {
	return []forecast.Account{
		{ID: "checking", Name: "Checking", Color: "#4f9d69"},
		{ID: "savings", Name: "Savings", Color: "#3a6ea5"},
		{ID: "savings-travel", Name: "Travel Fund", Color: "#8e6fbf", ParentID: "savings"},
	}
}

func loadHouseholdScenario(ctx context.Context, store forecast.Repository, month generic.TimePoint) error {
	s := seed{
		accounts: standardAccounts(),
		entries: []forecast.LedgerEntry{
			{ID: "open-checking", AccountID: "checking", Date: day(month, -1, 1), Amount: generic.NewMoneyFromInt(2400), Description: "Opening balance"},
			{ID: "open-savings", AccountID: "savings", Date: day(month, -1, 1), Amount: generic.NewMoneyFromInt(5000), Description: "Opening balance"},
			{ID: "open-travel", AccountID: "savings-travel", Date: day(month, -1, 1), Amount: generic.NewMoneyFromInt(800), Description: "Opening balance"},
		},
		liabilities: []forecast.Liability{
			{ID: "rent-1", Name: "Rent", Amount: generic.NewMoneyFromInt(1200), DueDate: day(month, 1, 1), AccountID: "checking", Status: forecast.LiabilityPending},
			{ID: "rent-2", Name: "Rent", Amount: generic.NewMoneyFromInt(1200), DueDate: day(month, 2, 1), AccountID: "checking", Status: forecast.LiabilityPending},
			{ID: "insurance", Name: "Car insurance", Amount: generic.NewMoneyFromInt(450), DueDate: day(month, 1, 15), AccountID: "checking", Status: forecast.LiabilityPending},
		},
		receivables: []forecast.Receivable{
			{ID: "salary", Name: "Salary", Amount: generic.NewMoneyFromInt(3100), ExpectedDate: day(month, 0, 25), AccountID: "checking", Status: forecast.ReceivablePending, Type: forecast.ReceivableRecurring},
		},
		project: &forecast.Project{
			ID:        "laptop",
			Name:      "New laptop",
			CreatedAt: time.Now().UTC().Truncate(time.Second),
			Items: []forecast.BudgetItem{{
				ID:         "laptop-item",
				Name:       "Laptop",
				TotalPrice: generic.NewMoneyFromInt(1800),
				Installments: []forecast.Installment{
					{ID: "laptop-1", Date: day(month, 1, 10), Amount: generic.NewMoneyFromInt(600), AccountID: "checking"},
					{ID: "laptop-2", Date: day(month, 2, 10), Amount: generic.NewMoneyFromInt(600), AccountID: "checking"},
					{ID: "laptop-3", Date: day(month, 3, 10), Amount: generic.NewMoneyFromInt(600), AccountID: "checking"},
				},
			}},
		},
	}
	return s.save(ctx, store)
}

func loadTightMonthScenario(ctx context.Context, store forecast.Repository, month generic.TimePoint) error {
	s := seed{
		accounts: standardAccounts(),
		entries: []forecast.LedgerEntry{
			{ID: "open-checking", AccountID: "checking", Date: day(month, -1, 1), Amount: generic.NewMoneyFromInt(900), Description: "Opening balance"},
			{ID: "open-savings", AccountID: "savings", Date: day(month, -1, 1), Amount: generic.NewMoneyFromInt(1500), Description: "Opening balance"},
		},
		liabilities: []forecast.Liability{
			{ID: "rent-1", Name: "Rent", Amount: generic.NewMoneyFromInt(1100), DueDate: day(month, 1, 1), AccountID: "checking", Status: forecast.LiabilityPending},
		},
		receivables: []forecast.Receivable{
			{ID: "salary", Name: "Salary", Amount: generic.NewMoneyFromInt(2600), ExpectedDate: day(month, 1, 28), AccountID: "checking", Status: forecast.ReceivablePending, Type: forecast.ReceivableRecurring},
			{ID: "tax-refund", Name: "Tax refund", Amount: generic.NewMoneyFromInt(700), ExpectedDate: day(month, 2, 12), AccountID: "savings", Status: forecast.ReceivablePending, Type: forecast.ReceivableOneTime},
		},
		project: &forecast.Project{
			ID:        "sofa",
			Name:      "Living room",
			CreatedAt: time.Now().UTC().Truncate(time.Second),
			Items: []forecast.BudgetItem{
				{
					ID:         "sofa-item",
					Name:       "Sofa",
					TotalPrice: generic.NewMoneyFromInt(2000),
					Installments: []forecast.Installment{
						{ID: "sofa-down", Date: day(month, 1, 5), Amount: generic.NewMoneyFromInt(1000), AccountID: "checking"},
						{ID: "sofa-rest", Date: day(month, 2, 5), Amount: generic.NewMoneyFromInt(1000), AccountID: "checking"},
					},
				},
				{
					ID:         "rug-item",
					Name:       "Rug",
					TotalPrice: generic.NewMoneyFromInt(400),
					Installments: []forecast.Installment{
						{ID: "rug-1", Date: day(month, 1, 20), Amount: generic.NewMoneyFromInt(400), AccountID: "savings"},
					},
				},
			},
		},
	}
	return s.save(ctx, store)
}

func loadMonthEndSalaryScenario(ctx context.Context, store forecast.Repository, month generic.TimePoint) error {
	s := seed{
		accounts: standardAccounts()[:1],
		entries: []forecast.LedgerEntry{
			{ID: "open-checking", AccountID: "checking", Date: day(month, -1, 1), Amount: generic.NewMoneyFromInt(500), Description: "Opening balance"},
		},
		receivables: []forecast.Receivable{
			{ID: "salary", Name: "Salary", Amount: generic.NewMoneyFromInt(2000), ExpectedDate: day(month, 0, 1), AccountID: "checking", Status: forecast.ReceivablePending, Type: forecast.ReceivableRecurring, RecurringDay: 31},
		},
		project: &forecast.Project{
			ID:        "bike",
			Name:      "Commuter bike",
			CreatedAt: time.Now().UTC().Truncate(time.Second),
			Items: []forecast.BudgetItem{{
				ID:         "bike-item",
				Name:       "Bike",
				TotalPrice: generic.NewMoneyFromInt(1500),
				Installments: []forecast.Installment{
					{ID: "bike-1", Date: day(month, 1, 2), Amount: generic.NewMoneyFromInt(750), AccountID: "checking"},
					{ID: "bike-2", Date: day(month, 2, 2), Amount: generic.NewMoneyFromInt(750), AccountID: "checking"},
				},
			}},
		},
	}
	return s.save(ctx, store)
}
