package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/username/cfolens/backend/src/models"
)

func TestClassify_PrecedenceOrder(t *testing.T) {
	tests := []struct {
		name        string
		accountType string
		detailType  string
		want        models.AccountBucket
	}{
		// Other-Income/Other-Expense must win before the generic matches.
		{"other income before income", "Other Income", "", models.BucketOtherIncome},
		{"other expense before expense", "Other Expense", "", models.BucketOtherExpense},
		{"cogs before expense", "Cost of Goods Sold", "", models.BucketCOGS},
		{"cogs via detail type", "Expense", "Cost of Goods Sold", models.BucketCOGS},

		{"income", "Income", "", models.BucketRevenue},
		{"revenue substring", "Service Revenue", "", models.BucketRevenue},
		{"sales substring", "Sales of Product", "", models.BucketRevenue},

		{"accounts payable", "Accounts Payable", "", models.BucketLiability},
		{"credit card", "Credit Card", "", models.BucketLiability},
		{"long term liability", "Long Term Liability", "", models.BucketLiability},
		{"loan", "Loan", "", models.BucketLiability},
		{"mortgage", "Mortgage", "", models.BucketLiability},
		{"line of credit", "Line of Credit", "", models.BucketLiability},

		{"equity", "Equity", "", models.BucketEquity},
		{"retained earnings", "Retained Earnings", "", models.BucketEquity},

		{"bank", "Bank", "", models.BucketAsset},
		{"cash", "Cash on hand", "", models.BucketAsset},
		{"receivable", "Accounts Receivable", "", models.BucketAsset},
		{"inventory", "Inventory", "", models.BucketAsset},
		{"prepaid", "Prepaid Expenses", "", models.BucketAsset},
		{"fixed asset", "Fixed Asset", "", models.BucketAsset},
		{"other asset", "Other Asset", "", models.BucketAsset},

		{"expense", "Expense", "", models.BucketOperatingExpense},
		{"cost without cogs", "Delivery Cost", "", models.BucketOperatingExpense},

		{"case insensitive", "ACCOUNTS PAYABLE", "", models.BucketLiability},
		{"unknown type", "Suspense", "", models.BucketUnclassified},
		{"empty type", "", "", models.BucketUnclassified},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.accountType, tt.detailType))
		})
	}
}

// "Prepaid Expenses" contains both "prepaid" (asset) and "expense": the
// asset rule fires first because the rule list is ordered.
func TestClassify_AmbiguousOverlapResolvedByOrder(t *testing.T) {
	assert.Equal(t, models.BucketAsset, Classify("Prepaid Expenses", ""))
	assert.Equal(t, models.BucketOtherExpense, Classify("Other Expense Reserve", ""))
	assert.Equal(t, models.BucketRevenue, Classify("Other Sales Income", "")) // no "other income" substring
}

func TestClassify_TotalAndDeterministic(t *testing.T) {
	inputs := []string{"Bank", "gibberish", "", "Loan Income", "other income other expense"}
	for _, in := range inputs {
		first := Classify(in, "")
		assert.Equal(t, first, Classify(in, ""), "classification must be deterministic for %q", in)
		assert.NotEmpty(t, first)
	}
}

func TestSignedImpact_NormalSides(t *testing.T) {
	// Debit-normal: assets and expense families grow with debits.
	asset := models.LedgerLine{AccountType: "Bank", Debit: 100, Credit: 25}
	assert.InDelta(t, 75.0, SignedImpact(asset), 0.001)

	opex := models.LedgerLine{AccountType: "Expense", Debit: 40}
	assert.InDelta(t, 40.0, SignedImpact(opex), 0.001)

	otherExpense := models.LedgerLine{AccountType: "Other Expense", Debit: 10, Credit: 3}
	assert.InDelta(t, 7.0, SignedImpact(otherExpense), 0.001)

	// Credit-normal: liabilities, equity, income grow with credits.
	revenue := models.LedgerLine{AccountType: "Income", Credit: 1000}
	assert.InDelta(t, 1000.0, SignedImpact(revenue), 0.001)

	liability := models.LedgerLine{AccountType: "Accounts Payable", Credit: 200, Debit: 50}
	assert.InDelta(t, 150.0, SignedImpact(liability), 0.001)

	otherIncome := models.LedgerLine{AccountType: "Other Income", Credit: 5}
	assert.InDelta(t, 5.0, SignedImpact(otherIncome), 0.001)
}

func TestSignedImpact_NormalBalanceOverrideWins(t *testing.T) {
	override := -123.45
	line := models.LedgerLine{AccountType: "Bank", Debit: 100, NormalBalance: &override}
	assert.InDelta(t, override, SignedImpact(line), 0.001)
}

func TestSignedImpact_UnclassifiedFallsBackToDebitMinusCredit(t *testing.T) {
	line := models.LedgerLine{AccountType: "Suspense", Debit: 30, Credit: 10}
	assert.InDelta(t, 20.0, SignedImpact(line), 0.001)
}
