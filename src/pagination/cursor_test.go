package pagination

import (
	"fmt"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/cfolens/backend/src/models"
)

// makeDataset builds n lines with distinct (date, entry, line) keys and
// deliberately repeated amounts so amount sorts exercise the tie-break
// chain.
func makeDataset(n int) []models.LedgerLine {
	lines := make([]models.LedgerLine, 0, n)
	for i := 0; i < n; i++ {
		lines = append(lines, models.LedgerLine{
			Date:        fmt.Sprintf("2024-01-%02d", i%28+1),
			EntryNumber: int64(i / 3),
			LineNumber:  i % 3,
			Amount:      float64((i % 5) * 10), // lots of duplicate amounts
		})
	}
	return lines
}

// paginate walks the dataset in-memory the same way the store does:
// sort, then repeated fetch-limit-plus-one pages driven by the returned
// cursor.
func paginate(t *testing.T, lines []models.LedgerLine, s Sort, limit int) []models.LedgerLine {
	t.Helper()
	sorted := append([]models.LedgerLine(nil), lines...)
	sort.SliceStable(sorted, func(i, j int) bool { return Compare(s, sorted[i], sorted[j]) < 0 })

	var out []models.LedgerLine
	var cursor *Cursor
	for page := 0; ; page++ {
		require.Less(t, page, len(lines)+2, "pagination did not terminate")

		var fetched []models.LedgerLine
		for _, row := range sorted {
			if cursor != nil && !Follows(s, *cursor, row) {
				continue
			}
			fetched = append(fetched, row)
			if len(fetched) == limit+1 {
				break
			}
		}
		rows, hasNext, token := TrimPage(fetched, limit, s)
		out = append(out, rows...)
		if !hasNext {
			return out
		}
		c, err := Decode(token)
		require.NoError(t, err)
		cursor = &c
	}
}

func TestPagination_RoundTripNoDuplicatesNoGaps(t *testing.T) {
	const limit = 10
	sorts := []Sort{SortDateDesc, SortDateAsc, SortAmountDesc, SortAmountAsc}
	sizes := []int{0, 1, limit, limit + 1, 3*limit + 7}

	for _, s := range sorts {
		for _, n := range sizes {
			name := fmt.Sprintf("%s_n%d", s, n)
			t.Run(name, func(t *testing.T) {
				lines := makeDataset(n)
				got := paginate(t, lines, s, limit)
				require.Len(t, got, n)

				// Every consecutive pair respects the sort, and keys are
				// strictly increasing in sort order (no duplicates).
				for i := 1; i < len(got); i++ {
					assert.Negative(t, Compare(s, got[i-1], got[i]))
				}
			})
		}
	}
}

// Four rows with amounts [50, 50, 30, 10] and page size two: the amount
// tie between the two 50s must be broken by the date chain and neither
// row may be repeated or skipped across the page boundary.
func TestPagination_AmountTieAcrossPageBoundary(t *testing.T) {
	lines := []models.LedgerLine{
		{Date: "2024-01-01", EntryNumber: 1, LineNumber: 1, Amount: 50},
		{Date: "2024-01-02", EntryNumber: 2, LineNumber: 1, Amount: 50},
		{Date: "2024-01-03", EntryNumber: 3, LineNumber: 1, Amount: 30},
		{Date: "2024-01-04", EntryNumber: 4, LineNumber: 1, Amount: 10},
	}
	got := paginate(t, lines, SortAmountDesc, 2)
	require.Len(t, got, 4)

	assert.Equal(t, []float64{50, 50, 30, 10}, []float64{got[0].Amount, got[1].Amount, got[2].Amount, got[3].Amount})
	assert.Equal(t, "2024-01-02", got[0].Date) // ties run date DESC under amount_desc
	assert.Equal(t, "2024-01-01", got[1].Date)
}

func TestCursor_EncodeDecodeRoundTrip(t *testing.T) {
	c := Cursor{Date: "2024-06-30", EntryNumber: 42, LineNumber: 3, Amount: 199.99}
	got, err := Decode(Encode(c))
	require.NoError(t, err)
	assert.Equal(t, c, got)
}

func TestCursor_DecodeRejectsGarbage(t *testing.T) {
	_, err := Decode("not base64!!")
	assert.ErrorIs(t, err, ErrBadCursor)

	// Valid base64 but not JSON.
	_, err = Decode("bm90IGpzb24=")
	assert.ErrorIs(t, err, ErrBadCursor)
}

func TestCursorFor_AmountOnlyForAmountSorts(t *testing.T) {
	row := models.LedgerLine{Date: "2024-02-10", EntryNumber: 7, LineNumber: 2, Amount: 12.5}

	c := CursorFor(SortDateDesc, row)
	assert.Zero(t, c.Amount)

	c = CursorFor(SortAmountAsc, row)
	assert.InDelta(t, 12.5, c.Amount, 0.001)
}

func TestParseSort(t *testing.T) {
	s, err := ParseSort("")
	require.NoError(t, err)
	assert.Equal(t, SortDateDesc, s)

	s, err = ParseSort("amount_asc")
	require.NoError(t, err)
	assert.Equal(t, SortAmountAsc, s)

	_, err = ParseSort("random_desc")
	assert.Error(t, err)
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, DefaultLimit, ClampLimit(0, 500))
	assert.Equal(t, DefaultLimit, ClampLimit(-3, 500))
	assert.Equal(t, 100, ClampLimit(100, 500))
	assert.Equal(t, 500, ClampLimit(9999, 500))
}

func TestSort_OrderByAndPredicateSQL(t *testing.T) {
	assert.Equal(t, "date DESC, entry_number DESC, line_number DESC", SortDateDesc.OrderBy())
	assert.Equal(t, "date ASC, entry_number ASC, line_number ASC", SortDateAsc.OrderBy())
	assert.Equal(t, "amount DESC, date DESC, entry_number DESC, line_number DESC", SortAmountDesc.OrderBy())

	clause, args := SortDateAsc.Predicate(Cursor{Date: "2024-01-05", EntryNumber: 9, LineNumber: 1})
	assert.Equal(t, "(date > ? OR (date = ? AND entry_number > ?) OR (date = ? AND entry_number = ? AND line_number > ?))", clause)
	assert.Len(t, args, 6)

	clause, args = SortAmountDesc.Predicate(Cursor{Date: "2024-01-05", EntryNumber: 9, LineNumber: 1, Amount: 50})
	assert.Contains(t, clause, "amount < ?")
	assert.Len(t, args, 10)
}

func TestTrimPage(t *testing.T) {
	lines := makeDataset(5)

	rows, hasNext, token := TrimPage(lines, 10, SortDateAsc)
	assert.Len(t, rows, 5)
	assert.False(t, hasNext)
	assert.Empty(t, token)

	rows, hasNext, token = TrimPage(lines, 4, SortDateAsc)
	require.Len(t, rows, 4)
	assert.True(t, hasNext)
	c, err := Decode(token)
	require.NoError(t, err)
	assert.Equal(t, rows[3].Date, c.Date)
	assert.Equal(t, rows[3].EntryNumber, c.EntryNumber)
}
