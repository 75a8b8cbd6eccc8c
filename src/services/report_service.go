// backend/src/services/report_service.go
package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/username/cfolens/backend/src/ledger"
	"github.com/username/cfolens/backend/src/logger"
	"github.com/username/cfolens/backend/src/models"
	"github.com/username/cfolens/backend/src/store"
	"github.com/username/cfolens/backend/src/utils"
)

const (
	ckBalanceSheet         = "res_balance_sheet_%s_%s_%s"
	ckIncomeStatement      = "res_income_statement_%s_%s_%s"
	DefaultCacheExpiration = 15 * time.Minute
	CacheCleanupInterval   = 30 * time.Minute
)

type reportServiceImpl struct {
	store       *store.LedgerStore
	reportCache *cache.Cache
}

func NewReportService(ledgerStore *store.LedgerStore, reportCache *cache.Cache) ReportService {
	return &reportServiceImpl{
		store:       ledgerStore,
		reportCache: reportCache,
	}
}

// fetchWindow loads the full history up to windowEnd plus the tenant's
// manual opening balances merged in as synthetic lines. A failed fetch
// returns the error and no rows: reports are all-or-nothing, callers must
// never see totals built from a partial fetch.
func (s *reportServiceImpl) fetchWindow(ctx context.Context, tenantID, windowEnd string) ([]models.LedgerLine, error) {
	lines, err := s.store.FetchLines(ctx, store.LineFilter{TenantID: tenantID, EndDate: windowEnd})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	overrides, err := s.store.ManualBalances(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	var persisted, cached []models.ManualBalance
	for _, mb := range overrides {
		if mb.Source == models.ManualSourceCached {
			cached = append(cached, mb)
		} else {
			persisted = append(persisted, mb)
		}
	}
	for _, synthetic := range ledger.MergeManualBalances(persisted, cached) {
		if windowEnd == "" || synthetic.Date <= windowEnd {
			lines = append(lines, synthetic)
		}
	}
	return lines, nil
}

func (s *reportServiceImpl) aggregateWindow(ctx context.Context, tenantID, windowStart, windowEnd string) (map[string]*models.AccountAggregate, error) {
	lines, err := s.fetchWindow(ctx, tenantID, windowEnd)
	if err != nil {
		return nil, err
	}
	result := ledger.Aggregate(lines, windowStart, windowEnd)
	if result.SkippedUnclassified > 0 {
		logger.FromContext(ctx).Warn("Unclassified ledger lines excluded from report",
			"tenantID", tenantID, "count", result.SkippedUnclassified)
	}
	return result.Accounts, nil
}

func (s *reportServiceImpl) BalanceSheet(ctx context.Context, tenantID, windowStart, windowEnd string) (*models.BalanceSheet, error) {
	cacheKey := fmt.Sprintf(ckBalanceSheet, tenantID, windowStart, windowEnd)
	if cached, found := s.reportCache.Get(cacheKey); found {
		return cached.(*models.BalanceSheet), nil
	}

	accounts, err := s.aggregateWindow(ctx, tenantID, windowStart, windowEnd)
	if err != nil {
		return nil, err
	}
	bs := ledger.BuildBalanceSheet(accounts)

	s.reportCache.Set(cacheKey, &bs, DefaultCacheExpiration)
	return &bs, nil
}

func (s *reportServiceImpl) IncomeStatement(ctx context.Context, tenantID, windowStart, windowEnd string) (*models.IncomeStatement, error) {
	cacheKey := fmt.Sprintf(ckIncomeStatement, tenantID, windowStart, windowEnd)
	if cached, found := s.reportCache.Get(cacheKey); found {
		return cached.(*models.IncomeStatement), nil
	}

	accounts, err := s.aggregateWindow(ctx, tenantID, windowStart, windowEnd)
	if err != nil {
		return nil, err
	}
	is := ledger.BuildIncomeStatement(accounts)

	s.reportCache.Set(cacheKey, &is, DefaultCacheExpiration)
	return &is, nil
}

func (s *reportServiceImpl) Trend(ctx context.Context, tenantID string, opts TrendOptions) ([]models.TrendPoint, error) {
	bucketing := ledger.BucketingMonth
	if opts.Bucketing == string(ledger.BucketingISOWeek) {
		bucketing = ledger.BucketingISOWeek
	}
	months := opts.Months
	if months <= 0 {
		months = 12
	}
	endMonth := time.Now().UTC()
	if opts.EndMonth != "" {
		parsed, err := time.Parse("2006-01", opts.EndMonth)
		if err != nil {
			return nil, fmt.Errorf("invalid end month %q: %w", opts.EndMonth, err)
		}
		endMonth = parsed
	}

	lines, err := s.store.FetchLines(ctx, store.LineFilter{
		TenantID:  tenantID,
		StartDate: opts.StartDate,
		EndDate:   opts.EndDate,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return ledger.Trend(lines, bucketing, opts.Dimension, endMonth, months), nil
}

// activityByAccount reduces one window to per-account period activity,
// the comparison unit of the compare report.
func (s *reportServiceImpl) activityByAccount(ctx context.Context, tenantID, start, end, class string) (map[string]float64, error) {
	lines, err := s.store.FetchLines(ctx, store.LineFilter{
		TenantID:  tenantID,
		StartDate: start,
		EndDate:   end,
		Class:     class,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	totals := make(map[string]float64)
	for _, line := range lines {
		if ledger.Classify(line.AccountType, line.AccountDetailType) == models.BucketUnclassified {
			continue
		}
		totals[line.Account] += ledger.SignedImpact(line)
	}
	for account, v := range totals {
		totals[account] = utils.RoundFloat(v, 2)
	}
	return totals, nil
}

func (s *reportServiceImpl) Compare(ctx context.Context, tenantID string, opts CompareOptions) ([]models.VarianceRow, error) {
	current, err := s.activityByAccount(ctx, tenantID, opts.CurrentStart, opts.CurrentEnd, opts.CurrentClass)
	if err != nil {
		return nil, err
	}
	base, err := s.activityByAccount(ctx, tenantID, opts.BaseStart, opts.BaseEnd, opts.BaseClass)
	if err != nil {
		return nil, err
	}
	topN := opts.TopN
	if topN <= 0 {
		topN = 10
	}
	return ledger.Compare(current, base, topN), nil
}

// InvalidateTenantCache drops every cached report for the tenant, called
// after a manual-balance write so stale aggregates are never served.
func (s *reportServiceImpl) InvalidateTenantCache(tenantID string) {
	marker := fmt.Sprintf("_%s_", tenantID)
	for key := range s.reportCache.Items() {
		if strings.Contains(key, marker) {
			s.reportCache.Delete(key)
		}
	}
}
