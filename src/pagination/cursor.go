// backend/src/pagination/cursor.go
//
// Keyset pagination over ledger lines. A cursor encodes the sort-key
// tuple of the last row of the previous page; the next page filters on a
// strict composite inequality in the sort direction. Re-submitting the
// same cursor with the same filters and sort resumes with no duplicate or
// skipped row, because (date, entry_number, line_number) is a unique key.
package pagination

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/username/cfolens/backend/src/models"
)

// Sort identifies one of the supported sort orders. Each sort carries a
// fixed tie-break chain: date -> entry_number -> line_number for date
// sorts, amount -> date -> entry_number -> line_number for amount sorts,
// all in the direction of the primary key.
type Sort string

const (
	SortDateDesc   Sort = "date_desc"
	SortDateAsc    Sort = "date_asc"
	SortAmountDesc Sort = "amount_desc"
	SortAmountAsc  Sort = "amount_asc"
)

// DefaultLimit is applied when the caller does not send a page size.
const DefaultLimit = 50

// ErrBadCursor reports an undecodable continuation token.
var ErrBadCursor = fmt.Errorf("invalid pagination cursor")

// ParseSort maps the query-string sort value to a Sort, defaulting to
// date_desc for an empty value.
func ParseSort(s string) (Sort, error) {
	switch Sort(s) {
	case "":
		return SortDateDesc, nil
	case SortDateDesc, SortDateAsc, SortAmountDesc, SortAmountAsc:
		return Sort(s), nil
	default:
		return "", fmt.Errorf("unsupported sort %q", s)
	}
}

// Descending reports whether the sort's primary key runs high-to-low.
func (s Sort) Descending() bool {
	return s == SortDateDesc || s == SortAmountDesc
}

func (s Sort) amountFirst() bool {
	return s == SortAmountDesc || s == SortAmountAsc
}

// Cursor is the sort-key tuple of the last seen row. Amount participates
// only for amount sorts.
type Cursor struct {
	Date        string  `json:"date"`
	EntryNumber int64   `json:"entry_number"`
	LineNumber  int     `json:"line_number"`
	Amount      float64 `json:"amount,omitempty"`
}

// Encode serializes a cursor to an opaque URL-safe token.
func Encode(c Cursor) string {
	b, _ := json.Marshal(c)
	return base64.URLEncoding.EncodeToString(b)
}

// Decode parses a token produced by Encode.
func Decode(token string) (Cursor, error) {
	var c Cursor
	b, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return c, fmt.Errorf("%w: %v", ErrBadCursor, err)
	}
	if err := json.Unmarshal(b, &c); err != nil {
		return c, fmt.Errorf("%w: %v", ErrBadCursor, err)
	}
	return c, nil
}

// CursorFor builds the cursor positioned at row for the given sort.
func CursorFor(s Sort, row models.LedgerLine) Cursor {
	c := Cursor{
		Date:        row.Date,
		EntryNumber: row.EntryNumber,
		LineNumber:  row.LineNumber,
	}
	if s.amountFirst() {
		c.Amount = row.Amount
	}
	return c
}

// ClampLimit normalizes a requested page size: non-positive values fall
// back to DefaultLimit and values above max are clamped to max.
func ClampLimit(limit, max int) int {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > max {
		limit = max
	}
	return limit
}

// OrderBy returns the ORDER BY column list implementing the sort and its
// tie-break chain.
func (s Sort) OrderBy() string {
	dir := "ASC"
	if s.Descending() {
		dir = "DESC"
	}
	if s.amountFirst() {
		return fmt.Sprintf("amount %[1]s, date %[1]s, entry_number %[1]s, line_number %[1]s", dir)
	}
	return fmt.Sprintf("date %[1]s, entry_number %[1]s, line_number %[1]s", dir)
}

// Predicate returns the WHERE fragment (and its args) selecting rows
// strictly after the cursor in sort order, in expanded OR form so the
// composite comparison stays portable across stores.
func (s Sort) Predicate(c Cursor) (string, []any) {
	op := ">"
	if s.Descending() {
		op = "<"
	}
	if s.amountFirst() {
		clause := fmt.Sprintf(
			"(amount %[1]s ? OR (amount = ? AND date %[1]s ?) OR (amount = ? AND date = ? AND entry_number %[1]s ?) OR (amount = ? AND date = ? AND entry_number = ? AND line_number %[1]s ?))",
			op)
		args := []any{
			c.Amount,
			c.Amount, c.Date,
			c.Amount, c.Date, c.EntryNumber,
			c.Amount, c.Date, c.EntryNumber, c.LineNumber,
		}
		return clause, args
	}
	clause := fmt.Sprintf(
		"(date %[1]s ? OR (date = ? AND entry_number %[1]s ?) OR (date = ? AND entry_number = ? AND line_number %[1]s ?))",
		op)
	args := []any{
		c.Date,
		c.Date, c.EntryNumber,
		c.Date, c.EntryNumber, c.LineNumber,
	}
	return clause, args
}

// Compare orders two rows under the sort: negative when a precedes b,
// zero when their sort keys are equal.
func Compare(s Sort, a, b models.LedgerLine) int {
	cmp := 0
	if s.amountFirst() {
		cmp = compareFloat(a.Amount, b.Amount)
	}
	if cmp == 0 {
		cmp = compareString(a.Date, b.Date)
	}
	if cmp == 0 {
		cmp = compareInt64(a.EntryNumber, b.EntryNumber)
	}
	if cmp == 0 {
		cmp = compareInt64(int64(a.LineNumber), int64(b.LineNumber))
	}
	if s.Descending() {
		cmp = -cmp
	}
	return cmp
}

// Follows reports whether row comes strictly after the cursor position in
// sort order. It mirrors Predicate so in-memory paging and SQL paging
// select the same rows.
func Follows(s Sort, c Cursor, row models.LedgerLine) bool {
	anchor := models.LedgerLine{
		Date:        c.Date,
		EntryNumber: c.EntryNumber,
		LineNumber:  c.LineNumber,
		Amount:      c.Amount,
	}
	return Compare(s, anchor, row) < 0
}

// TrimPage inspects a limit+1 fetch: it trims the sentinel row, reports
// whether a further page exists and, if so, returns the encoded cursor of
// the last returned row.
func TrimPage(rows []models.LedgerLine, limit int, s Sort) ([]models.LedgerLine, bool, string) {
	if len(rows) <= limit {
		return rows, false, ""
	}
	rows = rows[:limit]
	next := Encode(CursorFor(s, rows[len(rows)-1]))
	return rows, true, next
}

func compareString(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
