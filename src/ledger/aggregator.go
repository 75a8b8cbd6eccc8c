// backend/src/ledger/aggregator.go
package ledger

import (
	"math"
	"sort"

	"github.com/username/cfolens/backend/src/models"
	"github.com/username/cfolens/backend/src/utils"
)

// zeroTolerance is the threshold below which a balance is treated as zero
// when deciding whether an account is dropped from a report.
const zeroTolerance = 0.005

// AggregateResult is a full aggregation pass over one window.
type AggregateResult struct {
	Accounts map[string]*models.AccountAggregate
	// SkippedUnclassified counts lines whose account type matched no
	// classification rule. They are excluded from all totals but must be
	// visible in logs, so the caller records this count.
	SkippedUnclassified int
}

// Aggregate computes beginning balance, period activity and ending balance
// per account. The input must contain the full history up to windowEnd
// (no lower bound): balance-sheet accounts carry balance from inception,
// so beginning balance needs every line before windowStart. Lines dated
// after windowEnd are ignored. Accounts with zero ending balance and zero
// period activity are dropped to reduce report noise.
func Aggregate(lines []models.LedgerLine, windowStart, windowEnd string) AggregateResult {
	result := AggregateResult{Accounts: make(map[string]*models.AccountAggregate)}

	for _, line := range lines {
		if windowEnd != "" && line.Date > windowEnd {
			continue
		}
		bucket := Classify(line.AccountType, line.AccountDetailType)
		if bucket == models.BucketUnclassified {
			result.SkippedUnclassified++
			continue
		}
		impact := SignedImpact(line)

		agg, ok := result.Accounts[line.Account]
		if !ok {
			agg = &models.AccountAggregate{Account: line.Account, Bucket: bucket}
			result.Accounts[line.Account] = agg
		}

		if line.Date < windowStart {
			agg.BeginningBalance += impact
		} else {
			agg.PeriodActivity += impact
		}
		agg.Transactions = append(agg.Transactions, line)
	}

	for account, agg := range result.Accounts {
		agg.EndingBalance = agg.BeginningBalance + agg.PeriodActivity
		if math.Abs(agg.EndingBalance) < zeroTolerance && math.Abs(agg.PeriodActivity) < zeroTolerance {
			delete(result.Accounts, account)
			continue
		}
		sortLines(agg.Transactions)
		agg.BeginningBalance = utils.RoundFloat(agg.BeginningBalance, 2)
		agg.PeriodActivity = utils.RoundFloat(agg.PeriodActivity, 2)
		agg.EndingBalance = utils.RoundFloat(agg.BeginningBalance+agg.PeriodActivity, 2)
	}

	return result
}

// sortLines orders drill-down lines by (date, entryNumber, lineNumber)
// ascending so drill-down order is deterministic.
func sortLines(lines []models.LedgerLine) {
	sort.SliceStable(lines, func(i, j int) bool {
		if lines[i].Date != lines[j].Date {
			return lines[i].Date < lines[j].Date
		}
		if lines[i].EntryNumber != lines[j].EntryNumber {
			return lines[i].EntryNumber < lines[j].EntryNumber
		}
		return lines[i].LineNumber < lines[j].LineNumber
	})
}

func buildSection(name string, accounts map[string]*models.AccountAggregate, buckets ...models.AccountBucket) models.ReportSection {
	section := models.ReportSection{Name: name, Accounts: []models.AccountAggregate{}}
	wanted := make(map[models.AccountBucket]bool, len(buckets))
	for _, b := range buckets {
		wanted[b] = true
	}
	for _, agg := range accounts {
		if wanted[agg.Bucket] {
			section.Accounts = append(section.Accounts, *agg)
		}
	}
	sort.Slice(section.Accounts, func(i, j int) bool {
		return section.Accounts[i].Account < section.Accounts[j].Account
	})
	for _, a := range section.Accounts {
		section.Total += a.EndingBalance
	}
	section.Total = utils.RoundFloat(section.Total, 2)
	return section
}

func sectionActivityTotal(section *models.ReportSection) {
	section.Total = 0
	for _, a := range section.Accounts {
		section.Total += a.PeriodActivity
	}
	section.Total = utils.RoundFloat(section.Total, 2)
}

// BuildBalanceSheet rolls aggregates into Assets, Liabilities and Equity
// sections. Current-period earnings (the net of the income-statement
// buckets) are appended to Equity as a synthetic "Net Income" row, the
// same way the closing entry would post them. The residual
// Assets - Liabilities - Equity is always computed and surfaced: a
// non-zero residual means the underlying ledger is unbalanced and the
// user has to investigate, the report must not hide it.
func BuildBalanceSheet(accounts map[string]*models.AccountAggregate) models.BalanceSheet {
	bs := models.BalanceSheet{
		Assets:      buildSection("Assets", accounts, models.BucketAsset),
		Liabilities: buildSection("Liabilities", accounts, models.BucketLiability),
		Equity:      buildSection("Equity", accounts, models.BucketEquity),
	}

	var earnings float64
	for _, agg := range accounts {
		switch agg.Bucket {
		case models.BucketRevenue, models.BucketOtherIncome:
			earnings += agg.EndingBalance
		case models.BucketCOGS, models.BucketOperatingExpense, models.BucketOtherExpense:
			earnings -= agg.EndingBalance
		}
	}
	earnings = utils.RoundFloat(earnings, 2)
	if earnings != 0 {
		bs.Equity.Accounts = append(bs.Equity.Accounts, models.AccountAggregate{
			Account:       "Net Income",
			Bucket:        models.BucketEquity,
			EndingBalance: earnings,
		})
		bs.Equity.Total = utils.RoundFloat(bs.Equity.Total+earnings, 2)
	}

	bs.Residual = utils.RoundFloat(bs.Assets.Total-bs.Liabilities.Total-bs.Equity.Total, 2)
	return bs
}

// BuildIncomeStatement rolls aggregates into the income-statement
// sections. Section totals are period activity: income accounts may carry
// activity from before the window, which belongs to prior periods.
func BuildIncomeStatement(accounts map[string]*models.AccountAggregate) models.IncomeStatement {
	is := models.IncomeStatement{
		Revenue:           buildSection("Revenue", accounts, models.BucketRevenue),
		COGS:              buildSection("Cost of Goods Sold", accounts, models.BucketCOGS),
		OperatingExpenses: buildSection("Operating Expenses", accounts, models.BucketOperatingExpense),
		OtherIncome:       buildSection("Other Income", accounts, models.BucketOtherIncome),
		OtherExpenses:     buildSection("Other Expenses", accounts, models.BucketOtherExpense),
	}
	sectionActivityTotal(&is.Revenue)
	sectionActivityTotal(&is.COGS)
	sectionActivityTotal(&is.OperatingExpenses)
	sectionActivityTotal(&is.OtherIncome)
	sectionActivityTotal(&is.OtherExpenses)

	is.GrossProfit = utils.RoundFloat(is.Revenue.Total-is.COGS.Total, 2)
	is.NetIncome = utils.RoundFloat(is.GrossProfit-is.OperatingExpenses.Total+is.OtherIncome.Total-is.OtherExpenses.Total, 2)
	return is
}
