package models

// AccountAggregate is the per-account rollup for one reporting window.
// EndingBalance always equals BeginningBalance + PeriodActivity.
type AccountAggregate struct {
	Account          string        `json:"account"`
	Bucket           AccountBucket `json:"bucket"`
	BeginningBalance float64       `json:"beginning_balance"`
	PeriodActivity   float64       `json:"period_activity"`
	EndingBalance    float64       `json:"ending_balance"`
	Transactions     []LedgerLine  `json:"transactions,omitempty"` // drill-down, sorted by date, entry, line
}

// ReportSection groups account aggregates under a section heading with a
// section total.
type ReportSection struct {
	Name     string             `json:"name"`
	Accounts []AccountAggregate `json:"accounts"`
	Total    float64            `json:"total"`
}

// BalanceSheet is the assets/liabilities/equity view at the window end.
// Residual is Assets - Liabilities - Equity; it is always reported, never
// hidden, so an unbalanced ledger is visible to the user.
type BalanceSheet struct {
	Assets      ReportSection `json:"assets"`
	Liabilities ReportSection `json:"liabilities"`
	Equity      ReportSection `json:"equity"`
	Residual    float64       `json:"residual"`
}

// IncomeStatement is the revenue/COGS/expense view over the window. The
// section figures are period activity, not ending balances.
type IncomeStatement struct {
	Revenue           ReportSection `json:"revenue"`
	COGS              ReportSection `json:"cogs"`
	OperatingExpenses ReportSection `json:"operating_expenses"`
	OtherIncome       ReportSection `json:"other_income"`
	OtherExpenses     ReportSection `json:"other_expenses"`
	GrossProfit       float64       `json:"gross_profit"`
	NetIncome         float64       `json:"net_income"`
}

// TrendPoint is one time bucket (calendar month or ISO week), optionally
// split by a secondary dimension.
type TrendPoint struct {
	BucketKey    string  `json:"bucket_key"`
	Dimension    string  `json:"dimension,omitempty"`
	Revenue      float64 `json:"revenue"`
	COGS         float64 `json:"cogs"`
	Expenses     float64 `json:"expenses"`
	OtherIncome  float64 `json:"other_income"`
	OtherExpense float64 `json:"other_expense"`
	NetIncome    float64 `json:"net_income"`
}

// VarianceRow is one account's movement between two comparison sets.
type VarianceRow struct {
	Account     string  `json:"account"`
	Current     float64 `json:"current"`
	Base        float64 `json:"base"`
	Variance    float64 `json:"variance"`
	VariancePct float64 `json:"variance_pct"`
}

// SearchAggregates accompanies one search page with totals over the
// filtered set and the page itself.
type SearchAggregates struct {
	Count           int64   `json:"count"`
	PageTotalAmount float64 `json:"pageTotalAmount"`
}

// SearchResult is the response shape of the transaction search endpoint.
type SearchResult struct {
	Rows       []LedgerLine     `json:"rows"`
	HasNext    bool             `json:"hasNext"`
	NextCursor string           `json:"nextCursor,omitempty"`
	Aggregates SearchAggregates `json:"aggregates"`
}

// RunQueryRequest is a caller-supplied read-only report query. Params must
// include tenant_id; the SQL must reference it as a named parameter.
type RunQueryRequest struct {
	SQL    string         `json:"sql"`
	Params map[string]any `json:"params"`
	Cursor *ColumnCursor  `json:"cursor,omitempty"`
	Limit  int            `json:"limit,omitempty"`
}

// ColumnCursor is the single-column continuation token used by the
// free-form report path.
type ColumnCursor struct {
	Column string `json:"column"`
	Value  any    `json:"value"`
}

// RunQueryResult carries generic rows plus the next cursor value (nil when
// the result set is exhausted). Truncated is set when the result set
// exceeded the limit but the request carried no cursor column to continue
// from.
type RunQueryResult struct {
	Rows       []map[string]any `json:"rows"`
	NextCursor any              `json:"nextCursor"`
	Truncated  bool             `json:"truncated,omitempty"`
}

// SummaryRequest is the payload sent to the summarization service: a
// JSON-serializable numeric summary plus a natural-language instruction.
type SummaryRequest struct {
	Mode        string         `json:"mode"` // "insights" or "answer"
	Instruction string         `json:"instruction"`
	Summary     map[string]any `json:"summary"`
}

const (
	SummaryModeInsights = "insights"
	SummaryModeAnswer   = "answer"
)

// SummaryResult is the parsed summarization response. When the service
// returns malformed JSON the raw text lands in Reasoning (insights mode)
// or Answer (answer mode) instead of failing the request.
type SummaryResult struct {
	Grade     string   `json:"grade,omitempty"`
	Reasoning string   `json:"reasoning,omitempty"`
	Insights  []string `json:"insights,omitempty"`
	Answer    string   `json:"answer,omitempty"`
}
