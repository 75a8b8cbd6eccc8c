// backend/src/services/query_service.go
package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/username/cfolens/backend/src/logger"
	"github.com/username/cfolens/backend/src/models"
	"github.com/username/cfolens/backend/src/security/validation"
)

const (
	// maxRunLimit bounds one page of a free-form report.
	maxRunLimit     = 500
	defaultRunLimit = 100
)

// queryServiceImpl executes caller-supplied read-only report SQL. Every
// statement passes the SQL safety validation first, is wrapped with
// pagination, and runs under the statement timeout. There is no path to
// the database that skips the validator.
type queryServiceImpl struct {
	db        *sql.DB
	allowlist []string
	timeout   time.Duration
}

func NewQueryService(db *sql.DB, allowlist []string, statementTimeout time.Duration) QueryService {
	return &queryServiceImpl{db: db, allowlist: allowlist, timeout: statementTimeout}
}

// wrapQuery nests the validated caller SQL as a subquery and applies the
// single-column cursor predicate plus LIMIT n+1, so continuation works
// without touching the caller's statement. The wrapper's own placeholders
// are named: the caller SQL binds named parameters (:tenant_id at least),
// and sqlite assigns positional ordinals and named parameters from the
// same index space, so a bare ? here would collide with them. The p_
// prefix keeps the wrapper's names out of the caller's namespace.
func wrapQuery(userSQL string, cursor *models.ColumnCursor, limit int) (string, []any, error) {
	var args []any
	query := fmt.Sprintf("SELECT * FROM (%s) AS report", userSQL)
	if cursor != nil {
		if err := validation.ValidateCursorColumn(cursor.Column); err != nil {
			return "", nil, err
		}
		// A cursor with a nil value selects the first page but still
		// fixes the ordering so the continuation key is well-defined.
		if cursor.Value != nil {
			query += fmt.Sprintf(" WHERE report.%s > :p_cursor_value", cursor.Column)
			args = append(args, sql.Named("p_cursor_value", cursor.Value))
		}
		query += fmt.Sprintf(" ORDER BY report.%s ASC", cursor.Column)
	}
	query += " LIMIT :p_limit"
	args = append(args, sql.Named("p_limit", limit+1))
	return query, args, nil
}

func (s *queryServiceImpl) Run(ctx context.Context, tenantID string, req models.RunQueryRequest) (*models.RunQueryResult, error) {
	if err := validation.ValidateSQL(req.SQL, s.allowlist); err != nil {
		return nil, err
	}
	if err := validation.RequireTenantScope(req.SQL, req.Params); err != nil {
		return nil, err
	}
	// The token's tenant always wins over whatever the caller put in
	// params; a report can only read its own tenant.
	if fmt.Sprintf("%v", req.Params["tenant_id"]) != tenantID {
		return nil, fmt.Errorf("%w: params.tenant_id does not match the authenticated tenant", validation.ErrValidationFailed)
	}

	limit := req.Limit
	if limit <= 0 {
		limit = defaultRunLimit
	}
	if limit > maxRunLimit {
		limit = maxRunLimit
	}

	query, args, err := wrapQuery(req.SQL, req.Cursor, limit)
	if err != nil {
		return nil, err
	}
	for name, value := range req.Params {
		args = append(args, sql.Named(name, value))
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	logger.FromContext(ctx).Info("Executing report query", "tenantID", tenantID, "limit", limit)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: report query failed: %v", ErrUpstream, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("%w: reading result columns: %v", ErrUpstream, err)
	}

	var results []map[string]any
	for rows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, fmt.Errorf("%w: scanning report row: %v", ErrUpstream, err)
		}
		row := make(map[string]any, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
			} else {
				row[col] = values[i]
			}
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating report rows: %v", ErrUpstream, err)
	}

	result := &models.RunQueryResult{Rows: results}
	if len(results) > limit {
		result.Rows = results[:limit]
		if req.Cursor != nil {
			result.NextCursor = result.Rows[limit-1][req.Cursor.Column]
		} else {
			// Without a cursor column there is nothing to continue from;
			// flag the cut so the caller can tell a truncated page from an
			// exhausted result set.
			result.Truncated = true
		}
	}
	if result.Rows == nil {
		result.Rows = []map[string]any{}
	}
	return result, nil
}
