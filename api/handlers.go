/*
handlers.go - HTTP API handlers for the budget forecast

PURPOSE:
  Exposes accounts, bills, expected income, projects and the forecast engine
  via REST API. Handles HTTP request/response and JSON serialization, and
  delegates to the forecast service.

ENDPOINTS:
  Accounts:
    GET    /api/accounts                 List accounts
    POST   /api/accounts                 Create or update account
    GET    /api/accounts/balances        Current balance per account
    GET    /api/accounts/{id}/entries    Ledger history
    POST   /api/accounts/{id}/entries    Append ledger entry

  Liabilities & receivables:
    GET    /api/liabilities              List bills
    POST   /api/liabilities              Create or update bill
    POST   /api/liabilities/{id}/paid    Mark bill paid
    GET    /api/receivables              List expected income
    POST   /api/receivables              Create or update expected income
    POST   /api/receivables/{id}/received Mark income received

  Projects:
    GET    /api/projects                 List projects
    POST   /api/projects                 Create project
    GET    /api/projects/{id}            Get project
    PUT    /api/projects/{id}            Replace project
    DELETE /api/projects/{id}            Delete project
    GET    /api/projects/{id}/forecast   Forecast a saved project (?start=&end=)
    POST   /api/forecast                 Forecast unsaved items

  Monitor:
    GET    /api/monitor/runs             Shortfall history (?status=)
    POST   /api/monitor/check            Run a shortfall check now

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Resource not found
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - monitor.go: Background shortfall checks
  - scenarios.go: Demo data loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/warp/budget-forecast/forecast"
	"github.com/warp/budget-forecast/generic"
)

// DefaultHorizonMonths is the forecast length when no end date is given.
const DefaultHorizonMonths = 12

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store   forecast.Repository
	Runs    forecast.RunStore
	Service *forecast.Service
	Log     logrus.FieldLogger
	Monitor *ShortfallMonitor // optional; TriggerMonitor builds one when nil

	HorizonMonths int

	// Track currently loaded scenario
	currentScenario string
}

// NewHandler creates a new handler over the given repository.
func NewHandler(store forecast.Repository, runs forecast.RunStore, log logrus.FieldLogger) *Handler {
	return &Handler{
		Store:         store,
		Runs:          runs,
		Service:       forecast.NewService(store, store, log),
		Log:           log,
		HorizonMonths: DefaultHorizonMonths,
	}
}

// =============================================================================
// ACCOUNT ENDPOINTS
// =============================================================================

// ListAccounts returns all accounts.
func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.Store.ListAccounts(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list accounts", err)
		return
	}

	dtos := make([]AccountDTO, len(accounts))
	for i, a := range accounts {
		dtos[i] = toAccountDTO(a)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateAccount creates or updates an account.
func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Name is required", nil)
		return
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	ctx := r.Context()
	if req.ParentID != "" {
		if req.ParentID == req.ID {
			writeError(w, http.StatusBadRequest, "Account cannot be its own parent", nil)
			return
		}
		if _, err := h.Store.GetAccount(ctx, forecast.AccountID(req.ParentID)); err != nil {
			h.writeStoreError(w, "Parent account", err)
			return
		}
	}

	account := forecast.Account{
		ID:       forecast.AccountID(req.ID),
		Name:     req.Name,
		Color:    req.Color,
		ParentID: forecast.AccountID(req.ParentID),
	}
	if err := h.Store.SaveAccount(ctx, account); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save account", err)
		return
	}
	writeJSON(w, http.StatusCreated, toAccountDTO(account))
}

// ListBalances returns every account with its current balance, children
// included.
func (h *Handler) ListBalances(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	accounts, err := h.Store.ListAccounts(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list accounts", err)
		return
	}
	balances, err := h.Store.CurrentBalances(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compute balances", err)
		return
	}

	dtos := make([]AccountDTO, len(accounts))
	for i, a := range accounts {
		dtos[i] = toAccountDTO(a)
		balance := balances[a.ID].Float64()
		dtos[i].Balance = &balance
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ListEntries returns an account's ledger history.
func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	accountID := forecast.AccountID(chi.URLParam(r, "id"))
	if _, err := h.Store.GetAccount(ctx, accountID); err != nil {
		h.writeStoreError(w, "Account", err)
		return
	}

	entries, err := h.Store.ListEntries(ctx, accountID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list entries", err)
		return
	}
	dtos := make([]LedgerEntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = toEntryDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// AppendEntry records a settled transaction on an account.
func (h *Handler) AppendEntry(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	accountID := forecast.AccountID(chi.URLParam(r, "id"))

	var req CreateEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if _, err := generic.ParseDate(req.Date); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}
	if _, err := h.Store.GetAccount(ctx, accountID); err != nil {
		h.writeStoreError(w, "Account", err)
		return
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	entry := forecast.LedgerEntry{
		ID:          req.ID,
		AccountID:   accountID,
		Date:        req.Date,
		Amount:      generic.NewMoney(req.Amount),
		Description: req.Description,
	}
	if err := h.Store.AppendEntry(ctx, entry); err != nil {
		h.writeStoreError(w, "Entry", err)
		return
	}
	writeJSON(w, http.StatusCreated, toEntryDTO(entry))
}

// =============================================================================
// LIABILITY & RECEIVABLE ENDPOINTS
// =============================================================================

// ListLiabilities returns all bills.
func (h *Handler) ListLiabilities(w http.ResponseWriter, r *http.Request) {
	liabilities, err := h.Store.ListLiabilities(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list liabilities", err)
		return
	}
	dtos := make([]LiabilityDTO, len(liabilities))
	for i, l := range liabilities {
		dtos[i] = toLiabilityDTO(l)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateLiability creates or updates a bill.
func (h *Handler) CreateLiability(w http.ResponseWriter, r *http.Request) {
	var req LiabilityDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	l := fromLiabilityDTO(req)
	if err := validateLiability(l); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid liability", err)
		return
	}

	ctx := r.Context()
	if _, err := h.Store.GetAccount(ctx, l.AccountID); err != nil {
		h.writeStoreError(w, "Account", err)
		return
	}
	if err := h.Store.SaveLiability(ctx, l); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save liability", err)
		return
	}
	writeJSON(w, http.StatusCreated, toLiabilityDTO(l))
}

// MarkLiabilityPaid flips a bill to PAID so it leaves the forecast.
func (h *Handler) MarkLiabilityPaid(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l, err := h.Store.GetLiability(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.writeStoreError(w, "Liability", err)
		return
	}
	l.Status = forecast.LiabilityPaid
	if err := h.Store.SaveLiability(ctx, *l); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update liability", err)
		return
	}
	writeJSON(w, http.StatusOK, toLiabilityDTO(*l))
}

// ListReceivables returns all expected income.
func (h *Handler) ListReceivables(w http.ResponseWriter, r *http.Request) {
	receivables, err := h.Store.ListReceivables(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list receivables", err)
		return
	}
	dtos := make([]ReceivableDTO, len(receivables))
	for i, rec := range receivables {
		dtos[i] = toReceivableDTO(rec)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateReceivable creates or updates expected income.
func (h *Handler) CreateReceivable(w http.ResponseWriter, r *http.Request) {
	var req ReceivableDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	rec := fromReceivableDTO(req)
	if err := validateReceivable(rec); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid receivable", err)
		return
	}

	ctx := r.Context()
	if _, err := h.Store.GetAccount(ctx, rec.AccountID); err != nil {
		h.writeStoreError(w, "Account", err)
		return
	}
	if err := h.Store.SaveReceivable(ctx, rec); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save receivable", err)
		return
	}
	writeJSON(w, http.StatusCreated, toReceivableDTO(rec))
}

// MarkReceivableReceived flips income to RECEIVED so it leaves the forecast.
func (h *Handler) MarkReceivableReceived(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rec, err := h.Store.GetReceivable(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.writeStoreError(w, "Receivable", err)
		return
	}
	rec.Status = forecast.ReceivableReceived
	if err := h.Store.SaveReceivable(ctx, *rec); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update receivable", err)
		return
	}
	writeJSON(w, http.StatusOK, toReceivableDTO(*rec))
}

// =============================================================================
// PROJECT ENDPOINTS
// =============================================================================

// ListProjects returns all projects.
func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.Store.ListProjects(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list projects", err)
		return
	}
	dtos := make([]ProjectDTO, len(projects))
	for i, p := range projects {
		dtos[i] = toProjectDTO(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateProject saves a new project.
func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req ProjectDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	project, ok := h.decodeProject(w, r, req)
	if !ok {
		return
	}
	project.CreatedAt = time.Now().UTC().Truncate(time.Second)

	if err := h.Store.SaveProject(r.Context(), project); err != nil {
		h.writeSaveError(w, "Project", err)
		return
	}
	writeJSON(w, http.StatusCreated, toProjectDTO(project))
}

// GetProject returns a single project.
func (h *Handler) GetProject(w http.ResponseWriter, r *http.Request) {
	project, err := h.Store.GetProject(r.Context(), forecast.ProjectID(chi.URLParam(r, "id")))
	if err != nil {
		h.writeStoreError(w, "Project", err)
		return
	}
	writeJSON(w, http.StatusOK, toProjectDTO(*project))
}

// UpdateProject replaces a project's name and items.
func (h *Handler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")
	existing, err := h.Store.GetProject(ctx, forecast.ProjectID(id))
	if err != nil {
		h.writeStoreError(w, "Project", err)
		return
	}

	var req ProjectDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	req.ID = id
	project, ok := h.decodeProject(w, r, req)
	if !ok {
		return
	}
	project.CreatedAt = existing.CreatedAt

	if err := h.Store.SaveProject(ctx, project); err != nil {
		h.writeSaveError(w, "Project", err)
		return
	}
	writeJSON(w, http.StatusOK, toProjectDTO(project))
}

// DeleteProject removes a project and its items.
func (h *Handler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	id := forecast.ProjectID(chi.URLParam(r, "id"))
	if err := h.Store.DeleteProject(r.Context(), id); err != nil {
		h.writeStoreError(w, "Project", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted", "id": string(id)})
}

// decodeProject validates a project body and assigns missing ids.
func (h *Handler) decodeProject(w http.ResponseWriter, r *http.Request, req ProjectDTO) (forecast.Project, bool) {
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Name is required", nil)
		return forecast.Project{}, false
	}
	items, err := h.decodeItems(r, req.Items)
	if err != nil {
		writeItemsError(w, err)
		return forecast.Project{}, false
	}
	return forecast.Project{
		ID:    forecast.ProjectID(req.ID),
		Name:  req.Name,
		Items: items,
	}, true
}

// decodeItems converts item DTOs, assigning ids and checking that every
// installment has a parsable date and a known account.
func (h *Handler) decodeItems(r *http.Request, dtos []BudgetItemDTO) ([]forecast.BudgetItem, error) {
	items := fromItemDTOs(dtos)
	known := make(map[forecast.AccountID]bool)
	for i := range items {
		if items[i].ID == "" {
			items[i].ID = uuid.NewString()
		}
		if items[i].Name == "" {
			return nil, &generic.FieldError{Field: "items.name", Reason: "required"}
		}
		for j := range items[i].Installments {
			inst := &items[i].Installments[j]
			if inst.ID == "" {
				inst.ID = uuid.NewString()
			}
			if _, err := generic.ParseDate(inst.Date); err != nil {
				return nil, err
			}
			if inst.Amount.IsNegative() {
				return nil, &generic.FieldError{Field: "installments.amount", Reason: "must not be negative"}
			}
			if known[inst.AccountID] {
				continue
			}
			if _, err := h.Store.GetAccount(r.Context(), inst.AccountID); err != nil {
				return nil, err
			}
			known[inst.AccountID] = true
		}
	}
	return items, nil
}

// =============================================================================
// FORECAST ENDPOINTS
// =============================================================================

// GetProjectForecast forecasts a saved project. The window defaults to
// today through HorizonMonths ahead.
func (h *Handler) GetProjectForecast(w http.ResponseWriter, r *http.Request) {
	window, err := h.parseWindow(r.URL.Query().Get("start"), r.URL.Query().Get("end"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid forecast range", err)
		return
	}

	ctx := r.Context()
	report, err := h.Service.ProjectForecast(ctx, forecast.ProjectID(chi.URLParam(r, "id")), window)
	if err != nil {
		h.writeStoreError(w, "Project", err)
		return
	}
	h.writeForecast(w, r, report)
}

// DraftForecast forecasts items that have not been saved.
func (h *Handler) DraftForecast(w http.ResponseWriter, r *http.Request) {
	var req DraftForecastRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	window, err := h.parseWindow(req.Start, req.End)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid forecast range", err)
		return
	}
	items, err := h.decodeItems(r, req.Items)
	if err != nil {
		writeItemsError(w, err)
		return
	}

	report, err := h.Service.DraftForecast(r.Context(), items, window)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compute forecast", err)
		return
	}
	h.writeForecast(w, r, report)
}

func (h *Handler) writeForecast(w http.ResponseWriter, r *http.Request, report *forecast.Report) {
	accounts, err := h.Store.ListAccounts(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list accounts", err)
		return
	}
	names := make(map[forecast.AccountID]string, len(accounts))
	for _, a := range accounts {
		names[a.ID] = a.Name
	}
	writeJSON(w, http.StatusOK, toForecastResponse(report, names))
}

// parseWindow reads an optional yyyy-MM-dd range. A missing start means
// today; a missing end means HorizonMonths after start.
func (h *Handler) parseWindow(start, end string) (generic.Window, error) {
	from := generic.Today()
	if start != "" {
		tp, err := generic.ParseDate(start)
		if err != nil {
			return generic.Window{}, err
		}
		from = tp
	}
	if end == "" {
		months := h.HorizonMonths
		if months <= 0 {
			months = DefaultHorizonMonths
		}
		return generic.MonthsAhead(from, months), nil
	}
	to, err := generic.ParseDate(end)
	if err != nil {
		return generic.Window{}, err
	}
	return generic.Window{Start: from, End: to}, nil
}

// =============================================================================
// MONITOR ENDPOINTS
// =============================================================================

// ListMonitorRuns returns shortfall monitor history, newest first.
func (h *Handler) ListMonitorRuns(w http.ResponseWriter, r *http.Request) {
	status := forecast.RunStatus(r.URL.Query().Get("status"))
	switch status {
	case "", forecast.RunOK, forecast.RunShortfall, forecast.RunError:
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Unknown status: %s", status), nil)
		return
	}

	runs, err := h.Runs.ListMonitorRuns(r.Context(), status)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list monitor runs", err)
		return
	}
	dtos := make([]MonitorRunDTO, len(runs))
	for i, run := range runs {
		dtos[i] = toMonitorRunDTO(run)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// VALIDATION
// =============================================================================

func validateLiability(l forecast.Liability) error {
	if l.Name == "" {
		return &generic.FieldError{Field: "name", Reason: "required"}
	}
	if l.AccountID == "" {
		return &generic.FieldError{Field: "account_id", Reason: "required"}
	}
	if l.Amount.IsNegative() {
		return &generic.FieldError{Field: "amount", Reason: "must not be negative"}
	}
	if _, err := generic.ParseDate(l.DueDate); err != nil {
		return err
	}
	switch l.Status {
	case forecast.LiabilityPending, forecast.LiabilityPaid:
	default:
		return &generic.FieldError{Field: "status", Reason: fmt.Sprintf("unknown value %q", l.Status)}
	}
	return nil
}

func validateReceivable(r forecast.Receivable) error {
	if r.Name == "" {
		return &generic.FieldError{Field: "name", Reason: "required"}
	}
	if r.AccountID == "" {
		return &generic.FieldError{Field: "account_id", Reason: "required"}
	}
	if r.Amount.IsNegative() {
		return &generic.FieldError{Field: "amount", Reason: "must not be negative"}
	}
	if _, err := generic.ParseDate(r.ExpectedDate); err != nil {
		return err
	}
	switch r.Status {
	case forecast.ReceivablePending, forecast.ReceivableReceived:
	default:
		return &generic.FieldError{Field: "status", Reason: fmt.Sprintf("unknown value %q", r.Status)}
	}
	switch r.Type {
	case forecast.ReceivableOneTime, forecast.ReceivableRecurring:
	default:
		return &generic.FieldError{Field: "type", Reason: fmt.Sprintf("unknown value %q", r.Type)}
	}
	if r.RecurringDay < 0 || r.RecurringDay > 31 {
		return &generic.FieldError{Field: "recurring_day", Reason: "must be between 1 and 31"}
	}
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

// writeStoreError maps lookup and validation errors to 404/400 and
// everything else to 500.
func (h *Handler) writeStoreError(w http.ResponseWriter, what string, err error) {
	switch {
	case generic.IsNotFound(err):
		writeError(w, http.StatusNotFound, what+" not found", err)
	case generic.IsClientError(err):
		writeError(w, http.StatusBadRequest, "Invalid "+strings.ToLower(what), err)
	default:
		if h.Log != nil {
			h.Log.WithError(err).WithField("resource", what).Error("store operation failed")
		}
		writeError(w, http.StatusInternalServerError, "Failed to load "+strings.ToLower(what), err)
	}
}

// writeSaveError maps a failed write: records the store rejects (duplicate
// ids) are the caller's fault, anything else is ours.
func (h *Handler) writeSaveError(w http.ResponseWriter, what string, err error) {
	if generic.IsClientError(err) {
		writeError(w, http.StatusBadRequest, "Invalid "+strings.ToLower(what), err)
		return
	}
	if h.Log != nil {
		h.Log.WithError(err).WithField("resource", what).Error("store write failed")
	}
	writeError(w, http.StatusInternalServerError, "Failed to save "+strings.ToLower(what), err)
}

// writeItemsError reports a rejected item list. Unknown accounts in a body
// are a client mistake, not a missing resource.
func writeItemsError(w http.ResponseWriter, err error) {
	if generic.IsNotFound(err) || generic.IsClientError(err) {
		writeError(w, http.StatusBadRequest, "Invalid items", err)
		return
	}
	writeError(w, http.StatusInternalServerError, "Failed to validate items", err)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
