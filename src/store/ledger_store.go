// backend/src/store/ledger_store.go
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/username/cfolens/backend/src/models"
	"github.com/username/cfolens/backend/src/pagination"
)

// LedgerStore reads ledger lines and manual balances from the relational
// store. The *sql.DB is constructed by main and injected; the store keeps
// no other state. Every query runs under the statement timeout so a slow
// report cannot pin a connection indefinitely.
type LedgerStore struct {
	db      *sql.DB
	timeout time.Duration
}

func NewLedgerStore(db *sql.DB, statementTimeout time.Duration) *LedgerStore {
	return &LedgerStore{db: db, timeout: statementTimeout}
}

// DB exposes the underlying handle for the free-form query service, which
// shares the connection but builds its own statements.
func (s *LedgerStore) DB() *sql.DB {
	return s.db
}

// LineFilter is the filterable surface over ledger lines. TenantID is
// mandatory; everything else narrows the set.
type LineFilter struct {
	TenantID    string
	StartDate   string // inclusive, YYYY-MM-DD
	EndDate     string // inclusive, YYYY-MM-DD
	Class       string
	Vendor      string
	AccountType string
	AccountName string
	MinAmount   *float64
	MaxAmount   *float64
	Search      string // substring over memo, vendor, account
}

const lineColumns = `id, tenant_id, date, entry_number, line_number, account, account_type,
	account_detail_type, class, property, debit, credit, amount, memo, vendor, normal_balance`

func buildFilterWhere(f LineFilter) (string, []any, error) {
	if strings.TrimSpace(f.TenantID) == "" {
		return "", nil, fmt.Errorf("tenant id is required for every ledger read")
	}
	clauses := []string{"tenant_id = ?"}
	args := []any{f.TenantID}

	if f.StartDate != "" {
		clauses = append(clauses, "date >= ?")
		args = append(args, f.StartDate)
	}
	if f.EndDate != "" {
		clauses = append(clauses, "date <= ?")
		args = append(args, f.EndDate)
	}
	if f.Class != "" {
		clauses = append(clauses, "class = ?")
		args = append(args, f.Class)
	}
	if f.Vendor != "" {
		clauses = append(clauses, "vendor = ?")
		args = append(args, f.Vendor)
	}
	if f.AccountType != "" {
		clauses = append(clauses, "account_type = ?")
		args = append(args, f.AccountType)
	}
	if f.AccountName != "" {
		clauses = append(clauses, "account = ?")
		args = append(args, f.AccountName)
	}
	if f.MinAmount != nil {
		clauses = append(clauses, "amount >= ?")
		args = append(args, *f.MinAmount)
	}
	if f.MaxAmount != nil {
		clauses = append(clauses, "amount <= ?")
		args = append(args, *f.MaxAmount)
	}
	if f.Search != "" {
		clauses = append(clauses, "(memo LIKE ? OR vendor LIKE ? OR account LIKE ?)")
		needle := "%" + f.Search + "%"
		args = append(args, needle, needle, needle)
	}
	return strings.Join(clauses, " AND "), args, nil
}

func scanLine(rows *sql.Rows) (models.LedgerLine, error) {
	var line models.LedgerLine
	var detail, class, property, memo, vendor sql.NullString
	var normalBalance sql.NullFloat64
	err := rows.Scan(
		&line.ID, &line.TenantID, &line.Date, &line.EntryNumber, &line.LineNumber,
		&line.Account, &line.AccountType, &detail, &class, &property,
		&line.Debit, &line.Credit, &line.Amount, &memo, &vendor, &normalBalance)
	if err != nil {
		return line, err
	}
	line.AccountDetailType = detail.String
	line.Class = class.String
	line.Property = property.String
	line.Memo = memo.String
	line.Vendor = vendor.String
	if normalBalance.Valid {
		v := normalBalance.Float64
		line.NormalBalance = &v
	}
	return line, nil
}

func (s *LedgerStore) queryLines(ctx context.Context, query string, args ...any) ([]models.LedgerLine, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying ledger lines: %w", err)
	}
	defer rows.Close()

	var lines []models.LedgerLine
	for rows.Next() {
		line, err := scanLine(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning ledger line: %w", err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating ledger lines: %w", err)
	}
	return lines, nil
}

// FetchLines returns every line matching the filter, ordered by
// (date, entry_number, line_number) ascending. Aggregation callers leave
// StartDate empty: beginning balances need the full history up to EndDate.
func (s *LedgerStore) FetchLines(ctx context.Context, f LineFilter) ([]models.LedgerLine, error) {
	where, args, err := buildFilterWhere(f)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`SELECT %s FROM ledger_lines WHERE %s ORDER BY date ASC, entry_number ASC, line_number ASC`,
		lineColumns, where)
	return s.queryLines(ctx, query, args...)
}

// SearchPage returns one keyset page: limit+1 rows are fetched so a
// further page is detected without a count query, and the sentinel row is
// trimmed before returning.
func (s *LedgerStore) SearchPage(ctx context.Context, f LineFilter, sort pagination.Sort, cursor *pagination.Cursor, limit int) ([]models.LedgerLine, bool, string, error) {
	where, args, err := buildFilterWhere(f)
	if err != nil {
		return nil, false, "", err
	}
	if cursor != nil {
		predicate, predicateArgs := sort.Predicate(*cursor)
		where += " AND " + predicate
		args = append(args, predicateArgs...)
	}
	query := fmt.Sprintf(`SELECT %s FROM ledger_lines WHERE %s ORDER BY %s LIMIT ?`,
		lineColumns, where, sort.OrderBy())
	args = append(args, limit+1)

	rows, err := s.queryLines(ctx, query, args...)
	if err != nil {
		return nil, false, "", err
	}
	page, hasNext, next := pagination.TrimPage(rows, limit, sort)
	return page, hasNext, next, nil
}

// CountLines returns the number of rows matching the filter, for the
// search-result aggregates.
func (s *LedgerStore) CountLines(ctx context.Context, f LineFilter) (int64, error) {
	where, args, err := buildFilterWhere(f)
	if err != nil {
		return 0, err
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var count int64
	query := fmt.Sprintf("SELECT COUNT(*) FROM ledger_lines WHERE %s", where)
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting ledger lines: %w", err)
	}
	return count, nil
}

// ExportRows returns up to cap rows for a CSV export, date-descending.
// The cap is server-enforced; exports take no cursor.
func (s *LedgerStore) ExportRows(ctx context.Context, f LineFilter, rowCap int) ([]models.LedgerLine, error) {
	where, args, err := buildFilterWhere(f)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`SELECT %s FROM ledger_lines WHERE %s ORDER BY %s LIMIT ?`,
		lineColumns, where, pagination.SortDateDesc.OrderBy())
	args = append(args, rowCap)
	return s.queryLines(ctx, query, args...)
}

// ManualBalances returns the tenant's manual opening-balance overrides.
func (s *LedgerStore) ManualBalances(ctx context.Context, tenantID string) ([]models.ManualBalance, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, tenant_id, account, account_type, balance, as_of_date, source
		 FROM manual_balances WHERE tenant_id = ? ORDER BY account ASC`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("querying manual balances: %w", err)
	}
	defer rows.Close()

	var balances []models.ManualBalance
	for rows.Next() {
		var mb models.ManualBalance
		if err := rows.Scan(&mb.ID, &mb.TenantID, &mb.Account, &mb.AccountType, &mb.Balance, &mb.AsOfDate, &mb.Source); err != nil {
			return nil, fmt.Errorf("scanning manual balance: %w", err)
		}
		balances = append(balances, mb)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating manual balances: %w", err)
	}
	return balances, nil
}

// UpsertManualBalance writes one override, replacing any previous value
// for the same (tenant, account, source).
func (s *LedgerStore) UpsertManualBalance(ctx context.Context, mb models.ManualBalance) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO manual_balances (tenant_id, account, account_type, balance, as_of_date, source)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(tenant_id, account, source)
		 DO UPDATE SET account_type = excluded.account_type, balance = excluded.balance, as_of_date = excluded.as_of_date`,
		mb.TenantID, mb.Account, mb.AccountType, mb.Balance, mb.AsOfDate, mb.Source)
	if err != nil {
		return fmt.Errorf("upserting manual balance: %w", err)
	}
	return nil
}
