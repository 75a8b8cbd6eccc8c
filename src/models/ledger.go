package models

// AccountBucket is the semantic classification of a ledger account,
// derived from its free-text account type. It is recomputed per query
// and never stored.
type AccountBucket string

const (
	BucketAsset            AccountBucket = "Asset"
	BucketLiability        AccountBucket = "Liability"
	BucketEquity           AccountBucket = "Equity"
	BucketRevenue          AccountBucket = "Revenue"
	BucketCOGS             AccountBucket = "COGS"
	BucketOperatingExpense AccountBucket = "OperatingExpense"
	BucketOtherIncome      AccountBucket = "OtherIncome"
	BucketOtherExpense     AccountBucket = "OtherExpense"
	BucketUnclassified     AccountBucket = "Unclassified"
)

// DebitNormal reports whether an increase on the debit side increases the
// bucket's natural balance.
func (b AccountBucket) DebitNormal() bool {
	switch b {
	case BucketAsset, BucketCOGS, BucketOperatingExpense, BucketOtherExpense:
		return true
	default:
		return false
	}
}

// LedgerLine is one posted journal-entry line. The reporting core treats
// it as read-only input; debit and credit are non-negative magnitudes.
type LedgerLine struct {
	ID                int64    `json:"id,omitempty"`
	TenantID          string   `json:"tenant_id"`
	Date              string   `json:"date"` // YYYY-MM-DD
	EntryNumber       int64    `json:"entry_number"`
	LineNumber        int      `json:"line_number"`
	Account           string   `json:"account"`
	AccountType       string   `json:"account_type"`
	AccountDetailType string   `json:"account_detail_type,omitempty"`
	Class             string   `json:"class,omitempty"`
	Property          string   `json:"property,omitempty"`
	Debit             float64  `json:"debit"`
	Credit            float64  `json:"credit"`
	Amount            float64  `json:"amount"`
	Memo              string   `json:"memo,omitempty"`
	Vendor            string   `json:"vendor,omitempty"`
	NormalBalance     *float64 `json:"normal_balance,omitempty"` // pre-computed signed impact, overrides derivation
}

// ManualBalance is an out-of-band opening balance for one account, either
// persisted in the store or cached from a local upload.
type ManualBalance struct {
	ID          int64   `json:"id,omitempty"`
	TenantID    string  `json:"tenant_id"`
	Account     string  `json:"account"`
	AccountType string  `json:"account_type"`
	Balance     float64 `json:"balance"`
	AsOfDate    string  `json:"as_of_date"` // YYYY-MM-DD
	Source      string  `json:"source"`     // "persisted" or "cached"
}

// Manual balance sources. Persisted overrides win over cached ones when
// both exist for the same account.
const (
	ManualSourcePersisted = "persisted"
	ManualSourceCached    = "cached"
)
