/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Owns every record of the tracker: accounts and their ledger entries,
  liabilities, receivables, forecast projects (items and installments) and
  the shortfall monitor's run history.

INTERFACES IMPLEMENTED:
  forecast.Repository: records + current balances
  forecast.RunStore:   monitor runs

KEY TABLES:
  accounts:         account tree (parent_id)
  ledger_entries:   settled transactions feeding current balances
  liabilities:      bills with due date and status
  receivables:      expected income, one-time or recurring
  projects:         forecast projects
  budget_items:     planned purchases, ordered by position
  installments:     payment plan of each item, ordered by position
  monitor_runs:     background shortfall check results

MONEY AND DATES:
  Amounts are stored as decimal TEXT (exact round trip). Dates are stored
  exactly as given (yyyy-MM-dd); parsing happens in the engine, which skips
  records whose dates do not parse.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety on top of WAL mode.

USAGE:
  store, err := sqlite.New("./budget.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  svc := forecast.NewService(store, store, logger)

SEE ALSO:
  - forecast/store.go: Interface definitions
  - store/memory: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/budget-forecast/forecast"
	"github.com/warp/budget-forecast/generic"
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Compile-time checks
var (
	_ forecast.Repository = (*Store)(nil)
	_ forecast.RunStore   = (*Store)(nil)
)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Each connection to ":memory:" is its own database.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS accounts (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		color TEXT,
		parent_id TEXT,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS ledger_entries (
		id TEXT PRIMARY KEY,
		account_id TEXT NOT NULL,
		date TEXT NOT NULL,
		amount TEXT NOT NULL,
		description TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_ledger_entries_account_date
		ON ledger_entries(account_id, date);

	CREATE TABLE IF NOT EXISTS liabilities (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		amount TEXT NOT NULL,
		due_date TEXT NOT NULL,
		account_id TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'PENDING',
		position INTEGER NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS receivables (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		amount TEXT NOT NULL,
		expected_date TEXT NOT NULL,
		account_id TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'PENDING',
		type TEXT NOT NULL DEFAULT 'ONE_TIME',
		recurring_day INTEGER DEFAULT 0,
		position INTEGER NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS projects (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS budget_items (
		id TEXT NOT NULL,
		project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		name TEXT NOT NULL,
		link TEXT,
		total_price TEXT NOT NULL,
		PRIMARY KEY (project_id, id)
	);

	CREATE TABLE IF NOT EXISTS installments (
		id TEXT NOT NULL,
		project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		item_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		date TEXT NOT NULL,
		amount TEXT NOT NULL,
		account_id TEXT NOT NULL,
		PRIMARY KEY (project_id, item_id, id)
	);

	CREATE INDEX IF NOT EXISTS idx_installments_item
		ON installments(project_id, item_id, position);

	CREATE TABLE IF NOT EXISTS monitor_runs (
		id TEXT PRIMARY KEY,
		project_id TEXT NOT NULL,
		account_id TEXT,
		window_start TEXT NOT NULL,
		window_end TEXT NOT NULL,
		lowest_balance TEXT,
		lowest_month TEXT,
		status TEXT NOT NULL,
		error TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_monitor_runs_status
		ON monitor_runs(status);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// ACCOUNTS
// =============================================================================

// SaveAccount inserts or replaces an account.
func (s *Store) SaveAccount(ctx context.Context, a forecast.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (id, name, color, parent_id, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, color = excluded.color, parent_id = excluded.parent_id
	`, a.ID, a.Name, nullString(a.Color), nullString(string(a.ParentID)), now())
	if err != nil {
		return fmt.Errorf("failed to save account: %w", err)
	}
	return nil
}

// GetAccount retrieves an account by ID.
func (s *Store) GetAccount(ctx context.Context, id forecast.AccountID) (*forecast.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		a        forecast.Account
		color    sql.NullString
		parentID sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, color, parent_id FROM accounts WHERE id = ?", id,
	).Scan(&a.ID, &a.Name, &color, &parentID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, generic.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	a.Color = color.String
	a.ParentID = forecast.AccountID(parentID.String)
	return &a, nil
}

// ListAccounts returns all accounts in creation order.
func (s *Store) ListAccounts(ctx context.Context) ([]forecast.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listAccounts(ctx)
}

func (s *Store) listAccounts(ctx context.Context) ([]forecast.Account, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, color, parent_id FROM accounts ORDER BY rowid")
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []forecast.Account
	for rows.Next() {
		var (
			a        forecast.Account
			color    sql.NullString
			parentID sql.NullString
		)
		if err := rows.Scan(&a.ID, &a.Name, &color, &parentID); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		a.Color = color.String
		a.ParentID = forecast.AccountID(parentID.String)
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// =============================================================================
// LEDGER ENTRIES
// =============================================================================

// AppendEntry records a settled transaction. Entry IDs are unique.
func (s *Store) AppendEntry(ctx context.Context, e forecast.LedgerEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ledger_entries (id, account_id, date, amount, description, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, e.ID, e.AccountID, e.Date, e.Amount.Value.String(), nullString(e.Description), now())
	if err != nil {
		if isUniqueConstraintError(err) {
			return &generic.FieldError{Field: "id", Reason: "entry already exists"}
		}
		return fmt.Errorf("failed to append entry: %w", err)
	}
	return nil
}

// ListEntries returns an account's entries ordered by date.
func (s *Store) ListEntries(ctx context.Context, accountID forecast.AccountID) ([]forecast.LedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queryEntries(ctx, `
		SELECT id, account_id, date, amount, description FROM ledger_entries
		WHERE account_id = ? ORDER BY date ASC, created_at ASC, rowid ASC
	`, accountID)
}

func (s *Store) queryEntries(ctx context.Context, query string, args ...any) ([]forecast.LedgerEntry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	var entries []forecast.LedgerEntry
	for rows.Next() {
		var (
			e           forecast.LedgerEntry
			amount      string
			description sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.AccountID, &e.Date, &amount, &description); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		if e.Amount, err = parseAmount(amount); err != nil {
			return nil, err
		}
		e.Description = description.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// CurrentBalances sums each account's entries plus its sub-accounts'.
func (s *Store) CurrentBalances(ctx context.Context) (map[forecast.AccountID]generic.Money, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	accounts, err := s.listAccounts(ctx)
	if err != nil {
		return nil, err
	}
	entries, err := s.queryEntries(ctx,
		"SELECT id, account_id, date, amount, description FROM ledger_entries")
	if err != nil {
		return nil, err
	}
	return forecast.AccountTreeBalances(accounts, entries), nil
}

// =============================================================================
// LIABILITIES
// =============================================================================

// SaveLiability inserts or replaces a liability, keeping its list position.
func (s *Store) SaveLiability(ctx context.Context, l forecast.Liability) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO liabilities (id, name, amount, due_date, account_id, status, position, created_at)
		VALUES (?, ?, ?, ?, ?, ?, (SELECT COALESCE(MAX(position), 0) + 1 FROM liabilities), ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name, amount = excluded.amount, due_date = excluded.due_date,
			account_id = excluded.account_id, status = excluded.status
	`, l.ID, l.Name, l.Amount.Value.String(), l.DueDate, l.AccountID, l.Status, now())
	if err != nil {
		return fmt.Errorf("failed to save liability: %w", err)
	}
	return nil
}

// GetLiability retrieves a liability by ID.
func (s *Store) GetLiability(ctx context.Context, id string) (*forecast.Liability, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list, err := s.queryLiabilities(ctx, liabilitySelect+" WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, generic.ErrRecordNotFound
	}
	return &list[0], nil
}

// ListLiabilities returns all liabilities in insertion order.
func (s *Store) ListLiabilities(ctx context.Context) ([]forecast.Liability, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queryLiabilities(ctx, liabilitySelect+" ORDER BY position")
}

const liabilitySelect = "SELECT id, name, amount, due_date, account_id, status FROM liabilities"

func (s *Store) queryLiabilities(ctx context.Context, query string, args ...any) ([]forecast.Liability, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query liabilities: %w", err)
	}
	defer rows.Close()

	var result []forecast.Liability
	for rows.Next() {
		var (
			l      forecast.Liability
			amount string
		)
		if err := rows.Scan(&l.ID, &l.Name, &amount, &l.DueDate, &l.AccountID, &l.Status); err != nil {
			return nil, fmt.Errorf("failed to scan liability: %w", err)
		}
		if l.Amount, err = parseAmount(amount); err != nil {
			return nil, err
		}
		result = append(result, l)
	}
	return result, rows.Err()
}

// =============================================================================
// RECEIVABLES
// =============================================================================

// SaveReceivable inserts or replaces a receivable, keeping its list position.
func (s *Store) SaveReceivable(ctx context.Context, r forecast.Receivable) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO receivables
		(id, name, amount, expected_date, account_id, status, type, recurring_day, position, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, (SELECT COALESCE(MAX(position), 0) + 1 FROM receivables), ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name, amount = excluded.amount, expected_date = excluded.expected_date,
			account_id = excluded.account_id, status = excluded.status, type = excluded.type,
			recurring_day = excluded.recurring_day
	`, r.ID, r.Name, r.Amount.Value.String(), r.ExpectedDate, r.AccountID, r.Status, r.Type, r.RecurringDay, now())
	if err != nil {
		return fmt.Errorf("failed to save receivable: %w", err)
	}
	return nil
}

// GetReceivable retrieves a receivable by ID.
func (s *Store) GetReceivable(ctx context.Context, id string) (*forecast.Receivable, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list, err := s.queryReceivables(ctx, receivableSelect+" WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, generic.ErrRecordNotFound
	}
	return &list[0], nil
}

// ListReceivables returns all receivables in insertion order.
func (s *Store) ListReceivables(ctx context.Context) ([]forecast.Receivable, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queryReceivables(ctx, receivableSelect+" ORDER BY position")
}

const receivableSelect = `SELECT id, name, amount, expected_date, account_id, status, type, recurring_day FROM receivables`

func (s *Store) queryReceivables(ctx context.Context, query string, args ...any) ([]forecast.Receivable, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query receivables: %w", err)
	}
	defer rows.Close()

	var result []forecast.Receivable
	for rows.Next() {
		var (
			r      forecast.Receivable
			amount string
		)
		if err := rows.Scan(&r.ID, &r.Name, &amount, &r.ExpectedDate, &r.AccountID, &r.Status, &r.Type, &r.RecurringDay); err != nil {
			return nil, fmt.Errorf("failed to scan receivable: %w", err)
		}
		if r.Amount, err = parseAmount(amount); err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// =============================================================================
// PROJECTS
// =============================================================================

// SaveProject replaces a project and all of its items atomically.
func (s *Store) SaveProject(ctx context.Context, p forecast.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	createdAt := p.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	if _, err := sqlTx.ExecContext(ctx, `
		INSERT INTO projects (id, name, created_at) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name
	`, p.ID, p.Name, createdAt.UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("failed to save project: %w", err)
	}

	for _, table := range []string{"installments", "budget_items"} {
		if _, err := sqlTx.ExecContext(ctx, "DELETE FROM "+table+" WHERE project_id = ?", p.ID); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	for i, item := range p.Items {
		if _, err := sqlTx.ExecContext(ctx, `
			INSERT INTO budget_items (id, project_id, position, name, link, total_price)
			VALUES (?, ?, ?, ?, ?, ?)
		`, item.ID, p.ID, i, item.Name, nullString(item.Link), item.TotalPrice.Value.String()); err != nil {
			if isUniqueConstraintError(err) {
				return &generic.FieldError{Field: "items.id", Reason: "duplicate item id " + item.ID}
			}
			return fmt.Errorf("failed to save item: %w", err)
		}
		for j, inst := range item.Installments {
			if _, err := sqlTx.ExecContext(ctx, `
				INSERT INTO installments (id, project_id, item_id, position, date, amount, account_id)
				VALUES (?, ?, ?, ?, ?, ?, ?)
			`, inst.ID, p.ID, item.ID, j, inst.Date, inst.Amount.Value.String(), inst.AccountID); err != nil {
				if isUniqueConstraintError(err) {
					return &generic.FieldError{Field: "installments.id", Reason: "duplicate installment id " + inst.ID}
				}
				return fmt.Errorf("failed to save installment: %w", err)
			}
		}
	}

	return sqlTx.Commit()
}

// GetProject retrieves a project with its items and installments.
func (s *Store) GetProject(ctx context.Context, id forecast.ProjectID) (*forecast.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	projects, err := s.queryProjects(ctx, "SELECT id, name, created_at FROM projects WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(projects) == 0 {
		return nil, generic.ErrProjectNotFound
	}
	return &projects[0], nil
}

// ListProjects returns all projects, oldest first.
func (s *Store) ListProjects(ctx context.Context) ([]forecast.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queryProjects(ctx, "SELECT id, name, created_at FROM projects ORDER BY created_at, rowid")
}

// DeleteProject removes a project; items and installments cascade.
func (s *Store) DeleteProject(ctx context.Context, id forecast.ProjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM projects WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return generic.ErrProjectNotFound
	}
	return nil
}

func (s *Store) queryProjects(ctx context.Context, query string, args ...any) ([]forecast.Project, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query projects: %w", err)
	}

	var projects []forecast.Project
	for rows.Next() {
		var (
			p         forecast.Project
			createdAt string
		)
		if err := rows.Scan(&p.ID, &p.Name, &createdAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		projects = append(projects, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Items are loaded after the project cursor is closed: the pool holds a
	// single connection.
	for i := range projects {
		items, err := s.loadItems(ctx, projects[i].ID)
		if err != nil {
			return nil, err
		}
		projects[i].Items = items
	}
	return projects, nil
}

func (s *Store) loadItems(ctx context.Context, projectID forecast.ProjectID) ([]forecast.BudgetItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, link, total_price FROM budget_items
		WHERE project_id = ? ORDER BY position
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	items := []forecast.BudgetItem{}
	index := make(map[string]int)
	for rows.Next() {
		var (
			item  forecast.BudgetItem
			link  sql.NullString
			price string
		)
		if err := rows.Scan(&item.ID, &item.Name, &link, &price); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		item.Link = link.String
		if item.TotalPrice, err = parseAmount(price); err != nil {
			rows.Close()
			return nil, err
		}
		index[item.ID] = len(items)
		items = append(items, item)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = s.db.QueryContext(ctx, `
		SELECT id, item_id, date, amount, account_id FROM installments
		WHERE project_id = ? ORDER BY item_id, position
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query installments: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			inst   forecast.Installment
			itemID string
			amount string
		)
		if err := rows.Scan(&inst.ID, &itemID, &inst.Date, &amount, &inst.AccountID); err != nil {
			return nil, fmt.Errorf("failed to scan installment: %w", err)
		}
		if inst.Amount, err = parseAmount(amount); err != nil {
			return nil, err
		}
		if i, ok := index[itemID]; ok {
			items[i].Installments = append(items[i].Installments, inst)
		}
	}
	return items, rows.Err()
}

// =============================================================================
// MONITOR RUNS
// =============================================================================

// SaveMonitorRun records one shortfall check result.
func (s *Store) SaveMonitorRun(ctx context.Context, r forecast.MonitorRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	createdAt := r.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO monitor_runs
		(id, project_id, account_id, window_start, window_end, lowest_balance, lowest_month, status, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, r.ID, r.ProjectID, nullString(string(r.AccountID)), r.WindowStart.String(), r.WindowEnd.String(),
		r.LowestBalance.Value.String(), nullString(r.LowestMonth), r.Status, nullString(r.Error),
		createdAt.UTC().Format(timestampLayout))
	if err != nil {
		return fmt.Errorf("failed to save monitor run: %w", err)
	}
	return nil
}

// ListMonitorRuns returns runs newest first, optionally filtered by status.
func (s *Store) ListMonitorRuns(ctx context.Context, status forecast.RunStatus) ([]forecast.MonitorRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT id, project_id, account_id, window_start, window_end, lowest_balance,
	                 lowest_month, status, error, created_at FROM monitor_runs`
	var args []any
	if status != "" {
		query += " WHERE status = ?"
		args = append(args, status)
	}
	query += " ORDER BY created_at DESC, rowid DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query monitor runs: %w", err)
	}
	defer rows.Close()

	var runs []forecast.MonitorRun
	for rows.Next() {
		var (
			r                      forecast.MonitorRun
			accountID, lowestMonth sql.NullString
			lowest, runErr         sql.NullString
			start, end, createdAt  string
		)
		if err := rows.Scan(&r.ID, &r.ProjectID, &accountID, &start, &end, &lowest,
			&lowestMonth, &r.Status, &runErr, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan monitor run: %w", err)
		}
		r.AccountID = forecast.AccountID(accountID.String)
		r.WindowStart, _ = generic.ParseDate(start)
		r.WindowEnd, _ = generic.ParseDate(end)
		if lowest.Valid {
			if r.LowestBalance, err = parseAmount(lowest.String); err != nil {
				return nil, err
			}
		}
		r.LowestMonth = lowestMonth.String
		r.Error = runErr.String
		r.CreatedAt, _ = time.Parse(timestampLayout, createdAt)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// =============================================================================
// ADMIN
// =============================================================================

// Reset clears all data from the database.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{
		"installments", "budget_items", "projects",
		"ledger_entries", "accounts", "liabilities", "receivables", "monitor_runs",
	}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to reset %s: %w", table, err)
		}
	}
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// timestampLayout is fixed-width so stored timestamps sort as text.
const timestampLayout = "2006-01-02T15:04:05.000000000Z"

// parseAmount reads a stored decimal amount.
func parseAmount(s string) (generic.Money, error) {
	m, err := generic.ParseMoney(s)
	if err != nil {
		return generic.Money{}, fmt.Errorf("failed to parse amount %q: %w", s, err)
	}
	return m, nil
}

func now() string {
	return time.Now().UTC().Format(timestampLayout)
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
