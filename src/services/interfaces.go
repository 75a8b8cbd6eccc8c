// backend/src/services/interfaces.go
package services

import (
	"context"
	"errors"

	"github.com/username/cfolens/backend/src/models"
)

// Define common service errors
var (
	// ErrUpstream marks a data-store or summarization-service failure.
	// Handlers surface it as a 5xx with the upstream message attached;
	// the services never retry on their own.
	ErrUpstream = errors.New("upstream failure")
)

// TrendOptions selects a trend series.
type TrendOptions struct {
	Bucketing string // "month" or "isoWeek"
	Dimension string // "", "class" or "property"
	EndMonth  string // YYYY-MM, defaults to the current month
	Months    int    // month mode only, defaults to 12
	StartDate string // optional lower bound on the fetched lines
	EndDate   string // optional upper bound
}

// CompareOptions selects two windows (and optional class scopes) to
// compare account activity between.
type CompareOptions struct {
	CurrentStart string
	CurrentEnd   string
	BaseStart    string
	BaseEnd      string
	CurrentClass string
	BaseClass    string
	TopN         int
}

// ReportService computes the financial reports from ledger lines.
type ReportService interface {
	BalanceSheet(ctx context.Context, tenantID, windowStart, windowEnd string) (*models.BalanceSheet, error)
	IncomeStatement(ctx context.Context, tenantID, windowStart, windowEnd string) (*models.IncomeStatement, error)
	Trend(ctx context.Context, tenantID string, opts TrendOptions) ([]models.TrendPoint, error)
	Compare(ctx context.Context, tenantID string, opts CompareOptions) ([]models.VarianceRow, error)
	InvalidateTenantCache(tenantID string)
}

// QueryService executes validated free-form report queries.
type QueryService interface {
	Run(ctx context.Context, tenantID string, req models.RunQueryRequest) (*models.RunQueryResult, error)
}

// SummaryService sends a numeric summary to the external summarization
// model and returns its structured (or best-effort) response.
type SummaryService interface {
	Summarize(ctx context.Context, req models.SummaryRequest) (*models.SummaryResult, error)
}
