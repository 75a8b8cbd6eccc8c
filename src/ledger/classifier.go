// backend/src/ledger/classifier.go
package ledger

import (
	"strings"

	"github.com/username/cfolens/backend/src/models"
)

// classifierRule pairs a predicate over the (type, detail type) strings
// with the bucket it resolves to. Rules are evaluated in order,
// first match wins, which keeps the precedence auditable: "other income"
// must resolve before the generic "income" containment fires, and COGS
// before the generic "expense"/"cost" containment.
type classifierRule struct {
	bucket models.AccountBucket
	match  func(accountType, detailType string) bool
}

func containsAny(s string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

var classifierRules = []classifierRule{
	{models.BucketOtherIncome, func(t, _ string) bool {
		return strings.Contains(t, "other income")
	}},
	{models.BucketOtherExpense, func(t, _ string) bool {
		return strings.Contains(t, "other expense")
	}},
	{models.BucketCOGS, func(t, dt string) bool {
		return strings.Contains(t, "cost of goods sold") || strings.Contains(dt, "cost of goods sold")
	}},
	{models.BucketRevenue, func(t, _ string) bool {
		return containsAny(t, "income", "revenue", "sales")
	}},
	{models.BucketLiability, func(t, _ string) bool {
		return containsAny(t, "liability", "payable", "credit card", "loan", "mortgage", "line of credit")
	}},
	{models.BucketEquity, func(t, _ string) bool {
		return containsAny(t, "equity", "retained earnings")
	}},
	{models.BucketAsset, func(t, _ string) bool {
		return containsAny(t, "asset", "bank", "cash", "receivable", "inventory", "prepaid", "fixed asset", "other asset")
	}},
	{models.BucketOperatingExpense, func(t, _ string) bool {
		return containsAny(t, "expense", "cost")
	}},
}

// Classify maps a free-text account type (and optional detail type) to a
// bucket. Matching is case-insensitive and substring-based. Unrecognized
// types map to Unclassified, never to a default bucket.
func Classify(accountType, detailType string) models.AccountBucket {
	t := strings.ToLower(strings.TrimSpace(accountType))
	dt := strings.ToLower(strings.TrimSpace(detailType))
	for _, rule := range classifierRules {
		if rule.match(t, dt) {
			return rule.bucket
		}
	}
	return models.BucketUnclassified
}

// SignedImpact derives the line's signed contribution to its account's
// running balance. A pre-computed normal_balance on the line wins; then
// debit-normal buckets contribute debit-credit and credit-normal buckets
// credit-debit. Unclassified lines fall back to debit-credit, but they
// are excluded from report totals anyway.
func SignedImpact(line models.LedgerLine) float64 {
	if line.NormalBalance != nil {
		return *line.NormalBalance
	}
	bucket := Classify(line.AccountType, line.AccountDetailType)
	if bucket.DebitNormal() || bucket == models.BucketUnclassified {
		return line.Debit - line.Credit
	}
	return line.Credit - line.Debit
}
