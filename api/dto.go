/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

MONEY:
  Amounts travel as JSON numbers. They are converted to decimal on the way
  in and back to float64 on the way out; all arithmetic happens in decimal.

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - forecast/types.go: Domain types
*/
package api

import (
	"time"

	"github.com/warp/budget-forecast/forecast"
	"github.com/warp/budget-forecast/generic"
)

// =============================================================================
// ACCOUNTS & LEDGER
// =============================================================================

// AccountDTO represents an account in API responses.
type AccountDTO struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Color    string   `json:"color,omitempty"`
	ParentID string   `json:"parent_id,omitempty"`
	Balance  *float64 `json:"balance,omitempty"`
}

// CreateAccountRequest is the request to create an account.
type CreateAccountRequest struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Color    string `json:"color"`
	ParentID string `json:"parent_id"`
}

// LedgerEntryDTO represents a settled transaction.
type LedgerEntryDTO struct {
	ID          string  `json:"id"`
	AccountID   string  `json:"account_id"`
	Date        string  `json:"date"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description,omitempty"`
}

// CreateEntryRequest appends a ledger entry to an account.
type CreateEntryRequest struct {
	ID          string  `json:"id"`
	Date        string  `json:"date"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
}

// =============================================================================
// LIABILITIES & RECEIVABLES
// =============================================================================

// LiabilityDTO represents a bill.
type LiabilityDTO struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Amount    float64 `json:"amount"`
	DueDate   string  `json:"due_date"`
	AccountID string  `json:"account_id"`
	Status    string  `json:"status"`
}

// ReceivableDTO represents expected income.
type ReceivableDTO struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Amount       float64 `json:"amount"`
	ExpectedDate string  `json:"expected_date"`
	AccountID    string  `json:"account_id"`
	Status       string  `json:"status"`
	Type         string  `json:"type"`
	RecurringDay int     `json:"recurring_day,omitempty"`
}

// =============================================================================
// PROJECTS
// =============================================================================

// ProjectDTO represents a forecast project.
type ProjectDTO struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	CreatedAt string          `json:"created_at,omitempty"`
	Items     []BudgetItemDTO `json:"items"`
}

// BudgetItemDTO represents a planned purchase.
type BudgetItemDTO struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	Link         string           `json:"link,omitempty"`
	TotalPrice   float64          `json:"total_price"`
	Installments []InstallmentDTO `json:"installments"`
	Allocation   *AllocationDTO   `json:"allocation,omitempty"`
}

// InstallmentDTO is one payment of an item.
type InstallmentDTO struct {
	ID        string  `json:"id"`
	Date      string  `json:"date"`
	Amount    float64 `json:"amount"`
	AccountID string  `json:"account_id"`
}

// AllocationDTO shows how much of an item's price is planned.
type AllocationDTO struct {
	Allocated float64 `json:"allocated"`
	Remaining float64 `json:"remaining"`
	Status    string  `json:"status"`
}

// =============================================================================
// FORECAST
// =============================================================================

// DraftForecastRequest forecasts unsaved items.
type DraftForecastRequest struct {
	Items []BudgetItemDTO `json:"items"`
	Start string          `json:"start"`
	End   string          `json:"end"`
}

// ForecastResponse carries the timeline, the monthly projection and the
// compatibility summary.
type ForecastResponse struct {
	ProjectID     string                         `json:"project_id,omitempty"`
	Start         string                         `json:"start"`
	End           string                         `json:"end"`
	Timeline      []CashFlowEventDTO             `json:"timeline"`
	Projection    map[string][]MonthlyBalanceDTO `json:"projection"`
	Compatibility []CompatibilityDTO             `json:"compatibility"`
	Skipped       int                            `json:"skipped,omitempty"`
}

// CashFlowEventDTO is one row of the timeline.
type CashFlowEventDTO struct {
	ID             string  `json:"id"`
	Date           string  `json:"date"`
	Type           string  `json:"type"`
	Name           string  `json:"name"`
	Amount         float64 `json:"amount"`
	AccountID      string  `json:"account_id"`
	IsRecurring    bool    `json:"is_recurring,omitempty"`
	RunningBalance float64 `json:"running_balance"`
}

// MonthlyBalanceDTO is one month of one account.
type MonthlyBalanceDTO struct {
	Month string  `json:"month"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Min   float64 `json:"min"`
}

// CompatibilityDTO summarizes whether an account can carry the plan.
type CompatibilityDTO struct {
	AccountID      string  `json:"account_id"`
	AccountName    string  `json:"account_name,omitempty"`
	LowestBalance  float64 `json:"lowest_balance"`
	LowestMonth    string  `json:"lowest_month"`
	FirstShortfall string  `json:"first_shortfall,omitempty"`
	EndBalance     float64 `json:"end_balance"`
	Affordable     bool    `json:"affordable"`
}

// =============================================================================
// MONITOR & SCENARIOS
// =============================================================================

// MonitorRunDTO is one shortfall check result.
type MonitorRunDTO struct {
	ID            string  `json:"id"`
	ProjectID     string  `json:"project_id"`
	AccountID     string  `json:"account_id,omitempty"`
	WindowStart   string  `json:"window_start"`
	WindowEnd     string  `json:"window_end"`
	LowestBalance float64 `json:"lowest_balance"`
	LowestMonth   string  `json:"lowest_month,omitempty"`
	Status        string  `json:"status"`
	Error         string  `json:"error,omitempty"`
	CreatedAt     string  `json:"created_at"`
}

// ScenarioDTO describes a demo data set.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadScenarioRequest selects a demo data set.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toAccountDTO(a forecast.Account) AccountDTO {
	return AccountDTO{
		ID:       string(a.ID),
		Name:     a.Name,
		Color:    a.Color,
		ParentID: string(a.ParentID),
	}
}

func toEntryDTO(e forecast.LedgerEntry) LedgerEntryDTO {
	return LedgerEntryDTO{
		ID:          e.ID,
		AccountID:   string(e.AccountID),
		Date:        e.Date,
		Amount:      e.Amount.Float64(),
		Description: e.Description,
	}
}

func toLiabilityDTO(l forecast.Liability) LiabilityDTO {
	return LiabilityDTO{
		ID:        l.ID,
		Name:      l.Name,
		Amount:    l.Amount.Float64(),
		DueDate:   l.DueDate,
		AccountID: string(l.AccountID),
		Status:    string(l.Status),
	}
}

func fromLiabilityDTO(d LiabilityDTO) forecast.Liability {
	status := forecast.LiabilityStatus(d.Status)
	if status == "" {
		status = forecast.LiabilityPending
	}
	return forecast.Liability{
		ID:        d.ID,
		Name:      d.Name,
		Amount:    generic.NewMoney(d.Amount),
		DueDate:   d.DueDate,
		AccountID: forecast.AccountID(d.AccountID),
		Status:    status,
	}
}

func toReceivableDTO(r forecast.Receivable) ReceivableDTO {
	return ReceivableDTO{
		ID:           r.ID,
		Name:         r.Name,
		Amount:       r.Amount.Float64(),
		ExpectedDate: r.ExpectedDate,
		AccountID:    string(r.AccountID),
		Status:       string(r.Status),
		Type:         string(r.Type),
		RecurringDay: r.RecurringDay,
	}
}

func fromReceivableDTO(d ReceivableDTO) forecast.Receivable {
	status := forecast.ReceivableStatus(d.Status)
	if status == "" {
		status = forecast.ReceivablePending
	}
	typ := forecast.ReceivableType(d.Type)
	if typ == "" {
		typ = forecast.ReceivableOneTime
	}
	return forecast.Receivable{
		ID:           d.ID,
		Name:         d.Name,
		Amount:       generic.NewMoney(d.Amount),
		ExpectedDate: d.ExpectedDate,
		AccountID:    forecast.AccountID(d.AccountID),
		Status:       status,
		Type:         typ,
		RecurringDay: d.RecurringDay,
	}
}

func toProjectDTO(p forecast.Project) ProjectDTO {
	dto := ProjectDTO{
		ID:    string(p.ID),
		Name:  p.Name,
		Items: toItemDTOs(p.Items),
	}
	if !p.CreatedAt.IsZero() {
		dto.CreatedAt = p.CreatedAt.Format(time.RFC3339)
	}
	return dto
}

func toItemDTOs(items []forecast.BudgetItem) []BudgetItemDTO {
	dtos := make([]BudgetItemDTO, len(items))
	for i, item := range items {
		insts := make([]InstallmentDTO, len(item.Installments))
		for j, inst := range item.Installments {
			insts[j] = InstallmentDTO{
				ID:        inst.ID,
				Date:      inst.Date,
				Amount:    inst.Amount.Float64(),
				AccountID: string(inst.AccountID),
			}
		}
		alloc := forecast.CheckAllocation(item)
		dtos[i] = BudgetItemDTO{
			ID:           item.ID,
			Name:         item.Name,
			Link:         item.Link,
			TotalPrice:   item.TotalPrice.Float64(),
			Installments: insts,
			Allocation: &AllocationDTO{
				Allocated: alloc.Allocated.Float64(),
				Remaining: alloc.Remaining.Float64(),
				Status:    string(alloc.Status),
			},
		}
	}
	return dtos
}

func fromItemDTOs(dtos []BudgetItemDTO) []forecast.BudgetItem {
	items := make([]forecast.BudgetItem, len(dtos))
	for i, d := range dtos {
		insts := make([]forecast.Installment, len(d.Installments))
		for j, inst := range d.Installments {
			insts[j] = forecast.Installment{
				ID:        inst.ID,
				Date:      inst.Date,
				Amount:    generic.NewMoney(inst.Amount),
				AccountID: forecast.AccountID(inst.AccountID),
			}
		}
		items[i] = forecast.BudgetItem{
			ID:           d.ID,
			Name:         d.Name,
			Link:         d.Link,
			TotalPrice:   generic.NewMoney(d.TotalPrice),
			Installments: insts,
		}
	}
	return items
}

func toForecastResponse(report *forecast.Report, names map[forecast.AccountID]string) ForecastResponse {
	result := report.Result
	resp := ForecastResponse{
		Start:         result.Window.Start.String(),
		End:           result.Window.End.String(),
		Timeline:      make([]CashFlowEventDTO, len(result.Timeline)),
		Projection:    make(map[string][]MonthlyBalanceDTO, len(result.Projection)),
		Compatibility: make([]CompatibilityDTO, len(report.Compatibility)),
		Skipped:       len(result.Skipped),
	}
	if report.Project != nil {
		resp.ProjectID = string(report.Project.ID)
	}

	for i, e := range result.Timeline {
		resp.Timeline[i] = CashFlowEventDTO{
			ID:             e.ID,
			Date:           e.Date.String(),
			Type:           string(e.Type),
			Name:           e.Name,
			Amount:         e.Amount.Float64(),
			AccountID:      string(e.AccountID),
			IsRecurring:    e.IsRecurring,
			RunningBalance: e.RunningBalance.Float64(),
		}
	}

	for account, months := range result.Projection {
		dtos := make([]MonthlyBalanceDTO, len(months))
		for i, m := range months {
			dtos[i] = MonthlyBalanceDTO{
				Month: m.Label,
				Start: m.Start.Float64(),
				End:   m.End.Float64(),
				Min:   m.Min.Float64(),
			}
		}
		resp.Projection[string(account)] = dtos
	}

	for i, c := range report.Compatibility {
		resp.Compatibility[i] = CompatibilityDTO{
			AccountID:      string(c.AccountID),
			AccountName:    names[c.AccountID],
			LowestBalance:  c.LowestBalance.Float64(),
			LowestMonth:    c.LowestMonth,
			FirstShortfall: c.FirstShortfall,
			EndBalance:     c.EndBalance.Float64(),
			Affordable:     c.Affordable,
		}
	}
	return resp
}

func toMonitorRunDTO(r forecast.MonitorRun) MonitorRunDTO {
	return MonitorRunDTO{
		ID:            r.ID,
		ProjectID:     string(r.ProjectID),
		AccountID:     string(r.AccountID),
		WindowStart:   r.WindowStart.String(),
		WindowEnd:     r.WindowEnd.String(),
		LowestBalance: r.LowestBalance.Float64(),
		LowestMonth:   r.LowestMonth,
		Status:        string(r.Status),
		Error:         r.Error,
		CreatedAt:     r.CreatedAt.Format(time.RFC3339),
	}
}
