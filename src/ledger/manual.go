// backend/src/ledger/manual.go
package ledger

import (
	"sort"

	"github.com/username/cfolens/backend/src/models"
)

// ManualBalanceMemo marks synthetic opening-balance lines so they are
// recognizable in drill-downs.
const ManualBalanceMemo = "manual opening balance"

// MergeManualBalances turns manual opening-balance overrides into
// synthetic ledger lines, one per account. Overrides arrive from two
// sources (the persisted store and a locally cached upload); when both
// exist for the same account the persisted one wins, so the same opening
// balance is never injected twice. The merge is an explicit step
// producing new lines: fetched rows are never mutated.
func MergeManualBalances(persisted, cached []models.ManualBalance) []models.LedgerLine {
	byAccount := make(map[string]models.ManualBalance, len(persisted)+len(cached))
	for _, mb := range cached {
		byAccount[mb.Account] = mb
	}
	for _, mb := range persisted {
		byAccount[mb.Account] = mb
	}

	accounts := make([]string, 0, len(byAccount))
	for account := range byAccount {
		accounts = append(accounts, account)
	}
	sort.Strings(accounts)

	lines := make([]models.LedgerLine, 0, len(byAccount))
	for _, account := range accounts {
		mb := byAccount[account]
		balance := mb.Balance
		lines = append(lines, models.LedgerLine{
			TenantID:    mb.TenantID,
			Date:        mb.AsOfDate,
			Account:     mb.Account,
			AccountType: mb.AccountType,
			Memo:        ManualBalanceMemo,
			// The override is already a signed balance; carry it as a
			// normal_balance so classification does not re-derive a sign.
			NormalBalance: &balance,
		})
	}
	return lines
}
