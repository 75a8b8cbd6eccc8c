// backend/src/security/validation/sql_validator.go
package validation

import (
	"fmt"
	"regexp"
	"strings"
)

// forbiddenKeywords is the fixed denylist applied to every caller-supplied
// report query. The check is a coarse substring scan, not a parser: a
// column literally named "update_date" trips it too. That false positive
// is accepted; the validator sits on top of a read-only database role and
// conservatively rejects anything that even looks like a mutation.
var forbiddenKeywords = []string{
	"insert", "update", "delete", "drop", "alter",
	"create", "grant", "revoke", "truncate",
}

// tableRefPattern captures the identifier following each FROM or JOIN.
var tableRefPattern = regexp.MustCompile(`\b(?:from|join)\s+([a-zA-Z_][a-zA-Z0-9_]*)`)

// ValidateSQL gates a free-form report query before execution. It rejects
// statements containing any forbidden keyword, then rejects references to
// tables outside the allowlist. It must be called before every execution
// of caller-supplied SQL; there is no bypass path. The returned error
// names the offending keyword or identifier.
func ValidateSQL(query string, allowlist []string) error {
	lowered := strings.ToLower(query)
	if strings.TrimSpace(lowered) == "" {
		return fmt.Errorf("%w: query is empty", ErrValidationFailed)
	}

	for _, kw := range forbiddenKeywords {
		if strings.Contains(lowered, kw) {
			return fmt.Errorf("%w: query contains forbidden keyword %q", ErrValidationFailed, kw)
		}
	}

	allowed := make(map[string]bool, len(allowlist))
	for _, table := range allowlist {
		allowed[strings.ToLower(table)] = true
	}

	for _, match := range tableRefPattern.FindAllStringSubmatch(lowered, -1) {
		table := match[1]
		if !allowed[table] {
			return fmt.Errorf("%w: table %q is not on the report allowlist", ErrValidationFailed, table)
		}
	}
	return nil
}

// RequireTenantScope enforces the tenant boundary on the free-form report
// path: the tenant_id parameter must be supplied and the query must
// reference it textually. Validation here is necessary but not
// sufficient; the execution layer binds the parameter separately.
func RequireTenantScope(query string, params map[string]any) error {
	v, ok := params["tenant_id"]
	if !ok || v == nil || fmt.Sprintf("%v", v) == "" {
		return fmt.Errorf("%w: params.tenant_id is required", ErrValidationFailed)
	}
	if !strings.Contains(strings.ToLower(query), "tenant_id") {
		return fmt.Errorf("%w: query must filter on tenant_id", ErrValidationFailed)
	}
	return nil
}

// cursorColumnRegex restricts the run-path cursor column to a plain
// identifier so it can be interpolated into the wrapper query safely.
var cursorColumnRegex = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// ValidateCursorColumn checks the {column, value} cursor's column name.
func ValidateCursorColumn(column string) error {
	if !cursorColumnRegex.MatchString(column) {
		return fmt.Errorf("%w: cursor column %q is not a valid identifier", ErrValidationFailed, column)
	}
	return nil
}
