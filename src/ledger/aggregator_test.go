package ledger

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/cfolens/backend/src/models"
)

func incomeLine(date string, entry int64, credit float64) models.LedgerLine {
	return models.LedgerLine{
		Date:        date,
		EntryNumber: entry,
		LineNumber:  1,
		Account:     "Consulting Income",
		AccountType: "Income",
		Credit:      credit,
	}
}

func expenseLine(date string, entry int64, debit float64) models.LedgerLine {
	return models.LedgerLine{
		Date:        date,
		EntryNumber: entry,
		LineNumber:  1,
		Account:     "Office Supplies",
		AccountType: "Expense",
		Debit:       debit,
	}
}

// January ledger: one income line (credit 1000) and one expense line
// (debit 300). The January window sees all of it as period activity.
func januaryLedger() []models.LedgerLine {
	return []models.LedgerLine{
		incomeLine("2024-01-15", 100, 1000),
		expenseLine("2024-01-20", 101, 300),
	}
}

func TestAggregate_JanuaryWindow(t *testing.T) {
	result := Aggregate(januaryLedger(), "2024-01-01", "2024-01-31")
	require.Len(t, result.Accounts, 2)

	income := result.Accounts["Consulting Income"]
	require.NotNil(t, income)
	assert.InDelta(t, 0.0, income.BeginningBalance, 0.01)
	assert.InDelta(t, 1000.0, income.PeriodActivity, 0.01)
	assert.InDelta(t, 1000.0, income.EndingBalance, 0.01)

	expense := result.Accounts["Office Supplies"]
	require.NotNil(t, expense)
	assert.InDelta(t, 0.0, expense.BeginningBalance, 0.01)
	assert.InDelta(t, 300.0, expense.PeriodActivity, 0.01)
	assert.InDelta(t, 300.0, expense.EndingBalance, 0.01)

	is := BuildIncomeStatement(result.Accounts)
	assert.InDelta(t, 1000.0, is.Revenue.Total, 0.01)
	assert.InDelta(t, 300.0, is.OperatingExpenses.Total, 0.01)
	assert.InDelta(t, 700.0, is.NetIncome, 0.01)
}

// The February window holds no activity: both accounts carry their
// January value as beginning == ending, and neither is dropped because
// the ending balances are non-zero.
func TestAggregate_FebruaryWindowCarriesBalancesForward(t *testing.T) {
	result := Aggregate(januaryLedger(), "2024-02-01", "2024-02-29")
	require.Len(t, result.Accounts, 2)

	for _, account := range []string{"Consulting Income", "Office Supplies"} {
		agg := result.Accounts[account]
		require.NotNil(t, agg, account)
		assert.InDelta(t, 0.0, agg.PeriodActivity, 0.01, account)
		assert.InDelta(t, agg.BeginningBalance, agg.EndingBalance, 0.01, account)
		assert.NotZero(t, agg.EndingBalance, account)
	}
}

func TestAggregate_EndingEqualsBeginningPlusActivity(t *testing.T) {
	lines := []models.LedgerLine{
		{Date: "2023-11-02", EntryNumber: 1, LineNumber: 1, Account: "Checking", AccountType: "Bank", Debit: 5000},
		{Date: "2024-01-10", EntryNumber: 2, LineNumber: 1, Account: "Checking", AccountType: "Bank", Credit: 1200.55},
		{Date: "2024-01-28", EntryNumber: 3, LineNumber: 1, Account: "Checking", AccountType: "Bank", Debit: 42.10},
	}
	result := Aggregate(lines, "2024-01-01", "2024-01-31")
	agg := result.Accounts["Checking"]
	require.NotNil(t, agg)

	assert.InDelta(t, 5000.0, agg.BeginningBalance, 0.01)
	assert.InDelta(t, -1158.45, agg.PeriodActivity, 0.01)
	assert.InDelta(t, agg.BeginningBalance+agg.PeriodActivity, agg.EndingBalance, 0.01)
}

func TestAggregate_DropsZeroBalanceZeroActivityAccounts(t *testing.T) {
	lines := []models.LedgerLine{
		// Nets to zero before the window, no activity inside it.
		{Date: "2023-06-01", EntryNumber: 1, LineNumber: 1, Account: "Petty Cash", AccountType: "Cash", Debit: 100},
		{Date: "2023-06-30", EntryNumber: 2, LineNumber: 1, Account: "Petty Cash", AccountType: "Cash", Credit: 100},
		// Zero activity but a standing balance: kept.
		{Date: "2023-06-01", EntryNumber: 3, LineNumber: 1, Account: "Savings", AccountType: "Bank", Debit: 900},
	}
	result := Aggregate(lines, "2024-01-01", "2024-01-31")

	assert.NotContains(t, result.Accounts, "Petty Cash")
	assert.Contains(t, result.Accounts, "Savings")
}

func TestAggregate_UnclassifiedLinesAreCountedNotAggregated(t *testing.T) {
	lines := []models.LedgerLine{
		{Date: "2024-01-05", EntryNumber: 1, LineNumber: 1, Account: "Mystery", AccountType: "Suspense", Debit: 50},
		incomeLine("2024-01-15", 2, 100),
	}
	result := Aggregate(lines, "2024-01-01", "2024-01-31")

	assert.Equal(t, 1, result.SkippedUnclassified)
	assert.NotContains(t, result.Accounts, "Mystery")
	assert.Contains(t, result.Accounts, "Consulting Income")
}

func TestAggregate_LinesAfterWindowEndIgnored(t *testing.T) {
	lines := append(januaryLedger(), incomeLine("2024-03-01", 999, 5000))
	result := Aggregate(lines, "2024-01-01", "2024-01-31")

	income := result.Accounts["Consulting Income"]
	require.NotNil(t, income)
	assert.InDelta(t, 1000.0, income.EndingBalance, 0.01)
}

func TestAggregate_DrillDownSortedByDateEntryLine(t *testing.T) {
	lines := []models.LedgerLine{
		{Date: "2024-01-20", EntryNumber: 5, LineNumber: 2, Account: "Checking", AccountType: "Bank", Debit: 1},
		{Date: "2024-01-10", EntryNumber: 9, LineNumber: 1, Account: "Checking", AccountType: "Bank", Debit: 1},
		{Date: "2024-01-20", EntryNumber: 5, LineNumber: 1, Account: "Checking", AccountType: "Bank", Debit: 1},
		{Date: "2024-01-20", EntryNumber: 4, LineNumber: 7, Account: "Checking", AccountType: "Bank", Debit: 1},
	}
	result := Aggregate(lines, "2024-01-01", "2024-01-31")
	agg := result.Accounts["Checking"]
	require.NotNil(t, agg)
	require.Len(t, agg.Transactions, 4)

	assert.Equal(t, "2024-01-10", agg.Transactions[0].Date)
	assert.Equal(t, int64(4), agg.Transactions[1].EntryNumber)
	assert.Equal(t, 1, agg.Transactions[2].LineNumber)
	assert.Equal(t, 2, agg.Transactions[3].LineNumber)
}

// A balanced ledger (every entry posts equal debits and credits) must
// produce a balance sheet whose residual is zero once current earnings
// sit in equity.
func TestBuildBalanceSheet_BalancedLedgerHasZeroResidual(t *testing.T) {
	lines := []models.LedgerLine{
		// Owner funds the company: debit cash, credit equity.
		{Date: "2024-01-02", EntryNumber: 1, LineNumber: 1, Account: "Checking", AccountType: "Bank", Debit: 10000},
		{Date: "2024-01-02", EntryNumber: 1, LineNumber: 2, Account: "Owner Equity", AccountType: "Equity", Credit: 10000},
		// Invoice paid: debit cash, credit income.
		{Date: "2024-01-15", EntryNumber: 2, LineNumber: 1, Account: "Checking", AccountType: "Bank", Debit: 1000},
		{Date: "2024-01-15", EntryNumber: 2, LineNumber: 2, Account: "Consulting Income", AccountType: "Income", Credit: 1000},
		// Supplies on the credit card: debit expense, credit liability.
		{Date: "2024-01-20", EntryNumber: 3, LineNumber: 1, Account: "Office Supplies", AccountType: "Expense", Debit: 300},
		{Date: "2024-01-20", EntryNumber: 3, LineNumber: 2, Account: "Visa", AccountType: "Credit Card", Credit: 300},
	}
	result := Aggregate(lines, "2024-01-01", "2024-01-31")
	bs := BuildBalanceSheet(result.Accounts)

	assert.InDelta(t, 11000.0, bs.Assets.Total, 0.01)
	assert.InDelta(t, 300.0, bs.Liabilities.Total, 0.01)
	assert.InDelta(t, 10700.0, bs.Equity.Total, 0.01) // 10000 contributed + 700 net income
	assert.LessOrEqual(t, math.Abs(bs.Residual), 0.01)

	// The synthetic earnings row is visible in the equity section.
	var foundNetIncome bool
	for _, a := range bs.Equity.Accounts {
		if a.Account == "Net Income" {
			foundNetIncome = true
			assert.InDelta(t, 700.0, a.EndingBalance, 0.01)
		}
	}
	assert.True(t, foundNetIncome)
}

// An intentionally unbalanced ledger must surface its residual, not
// hide it.
func TestBuildBalanceSheet_UnbalancedLedgerSurfacesResidual(t *testing.T) {
	lines := []models.LedgerLine{
		{Date: "2024-01-02", EntryNumber: 1, LineNumber: 1, Account: "Checking", AccountType: "Bank", Debit: 500},
	}
	result := Aggregate(lines, "2024-01-01", "2024-01-31")
	bs := BuildBalanceSheet(result.Accounts)

	assert.InDelta(t, 500.0, bs.Residual, 0.01)
}

func TestBuildIncomeStatement_SectionsAndTotals(t *testing.T) {
	lines := []models.LedgerLine{
		{Date: "2024-01-05", EntryNumber: 1, LineNumber: 1, Account: "Product Sales", AccountType: "Income", Credit: 2000},
		{Date: "2024-01-06", EntryNumber: 2, LineNumber: 1, Account: "Materials", AccountType: "Cost of Goods Sold", Debit: 800},
		{Date: "2024-01-07", EntryNumber: 3, LineNumber: 1, Account: "Rent", AccountType: "Expense", Debit: 400},
		{Date: "2024-01-08", EntryNumber: 4, LineNumber: 1, Account: "Interest Earned", AccountType: "Other Income", Credit: 50},
		{Date: "2024-01-09", EntryNumber: 5, LineNumber: 1, Account: "Penalties", AccountType: "Other Expense", Debit: 20},
	}
	result := Aggregate(lines, "2024-01-01", "2024-01-31")
	is := BuildIncomeStatement(result.Accounts)

	assert.InDelta(t, 2000.0, is.Revenue.Total, 0.01)
	assert.InDelta(t, 800.0, is.COGS.Total, 0.01)
	assert.InDelta(t, 1200.0, is.GrossProfit, 0.01)
	assert.InDelta(t, 400.0, is.OperatingExpenses.Total, 0.01)
	assert.InDelta(t, 50.0, is.OtherIncome.Total, 0.01)
	assert.InDelta(t, 20.0, is.OtherExpenses.Total, 0.01)
	assert.InDelta(t, 830.0, is.NetIncome, 0.01)
}

func TestMergeManualBalances_PersistedWinsOverCached(t *testing.T) {
	persisted := []models.ManualBalance{
		{Account: "Checking", AccountType: "Bank", Balance: 1500, AsOfDate: "2023-12-31", Source: models.ManualSourcePersisted},
	}
	cached := []models.ManualBalance{
		{Account: "Checking", AccountType: "Bank", Balance: 999, AsOfDate: "2023-12-31", Source: models.ManualSourceCached},
		{Account: "Savings", AccountType: "Bank", Balance: 200, AsOfDate: "2023-12-31", Source: models.ManualSourceCached},
	}

	lines := MergeManualBalances(persisted, cached)
	require.Len(t, lines, 2)

	byAccount := map[string]models.LedgerLine{}
	for _, l := range lines {
		byAccount[l.Account] = l
		assert.Equal(t, ManualBalanceMemo, l.Memo)
		require.NotNil(t, l.NormalBalance)
	}
	assert.InDelta(t, 1500.0, *byAccount["Checking"].NormalBalance, 0.01)
	assert.InDelta(t, 200.0, *byAccount["Savings"].NormalBalance, 0.01)
}

func TestMergeManualBalances_FeedsBeginningBalance(t *testing.T) {
	synthetic := MergeManualBalances([]models.ManualBalance{
		{Account: "Checking", AccountType: "Bank", Balance: 1500, AsOfDate: "2023-12-31", Source: models.ManualSourcePersisted},
	}, nil)
	lines := append(synthetic, expenseLine("2024-01-20", 1, 300))

	result := Aggregate(lines, "2024-01-01", "2024-01-31")
	checking := result.Accounts["Checking"]
	require.NotNil(t, checking)
	assert.InDelta(t, 1500.0, checking.BeginningBalance, 0.01)
	assert.InDelta(t, 1500.0, checking.EndingBalance, 0.01)
}
