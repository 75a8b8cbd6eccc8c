// backend/src/ledger/trend.go
package ledger

import (
	"math"
	"sort"
	"time"

	"github.com/username/cfolens/backend/src/models"
	"github.com/username/cfolens/backend/src/utils"
)

// Bucketing selects the time grain of a trend series.
type Bucketing string

const (
	BucketingMonth   Bucketing = "month"
	BucketingISOWeek Bucketing = "isoWeek"
)

// Dimension names accepted as the secondary trend split.
const (
	DimensionClass    = "class"
	DimensionProperty = "property"
)

// UnassignedDimension is the sentinel value for lines lacking the
// requested dimension; they are bucketed, not dropped.
const UnassignedDimension = "Unassigned"

const dateLayout = "2006-01-02"

// monthKey formats a date's calendar month, e.g. "2024-01".
func monthKey(t time.Time) string {
	return t.Format("2006-01")
}

// isoWeekKey returns the Monday on/before t (ISO 8601 week start) as the
// bucket key.
func isoWeekKey(t time.Time) string {
	// time.Weekday puts Sunday at 0; shift so Monday is 0.
	offset := (int(t.Weekday()) + 6) % 7
	return t.AddDate(0, 0, -offset).Format(dateLayout)
}

// MonthKeys returns the calendar-month keys ending at endMonth, iterating
// backward for n months, in chronological order. AddDate on the first of
// the month rolls year boundaries and month lengths correctly.
func MonthKeys(endMonth time.Time, n int) []string {
	if n <= 0 {
		return []string{}
	}
	first := time.Date(endMonth.Year(), endMonth.Month(), 1, 0, 0, 0, 0, time.UTC)
	keys := make([]string, n)
	for i := 0; i < n; i++ {
		keys[n-1-i] = monthKey(first.AddDate(0, -i, 0))
	}
	return keys
}

func dimensionValue(line models.LedgerLine, dimension string) string {
	var v string
	switch dimension {
	case DimensionClass:
		v = line.Class
	case DimensionProperty:
		v = line.Property
	}
	if v == "" {
		return UnassignedDimension
	}
	return v
}

func addToPoint(p *models.TrendPoint, line models.LedgerLine) {
	impact := SignedImpact(line)
	switch Classify(line.AccountType, line.AccountDetailType) {
	case models.BucketRevenue:
		p.Revenue += impact
	case models.BucketCOGS:
		p.COGS += impact
	case models.BucketOperatingExpense:
		p.Expenses += impact
	case models.BucketOtherIncome:
		p.OtherIncome += impact
	case models.BucketOtherExpense:
		p.OtherExpense += impact
	}
}

func finishPoint(p *models.TrendPoint) {
	p.Revenue = utils.RoundFloat(p.Revenue, 2)
	p.COGS = utils.RoundFloat(p.COGS, 2)
	p.Expenses = utils.RoundFloat(p.Expenses, 2)
	p.OtherIncome = utils.RoundFloat(p.OtherIncome, 2)
	p.OtherExpense = utils.RoundFloat(p.OtherExpense, 2)
	p.NetIncome = utils.RoundFloat(p.Revenue-p.COGS-p.Expenses+p.OtherIncome-p.OtherExpense, 2)
}

// Trend buckets classified lines by calendar month or ISO week (weeks
// start Monday), optionally split by a secondary dimension. Month mode
// emits a zero-filled point for every month in the range so charts get a
// continuous series; week mode emits the weeks present in the data.
// Unclassified lines do not contribute to any point.
func Trend(lines []models.LedgerLine, bucketing Bucketing, dimension string, endMonth time.Time, months int) []models.TrendPoint {
	type pointKey struct {
		bucket string
		dim    string
	}
	points := make(map[pointKey]*models.TrendPoint)

	var wantedMonths map[string]bool
	var monthOrder []string
	if bucketing == BucketingMonth {
		monthOrder = MonthKeys(endMonth, months)
		wantedMonths = make(map[string]bool, len(monthOrder))
		for _, k := range monthOrder {
			wantedMonths[k] = true
		}
	}

	for _, line := range lines {
		t, err := time.Parse(dateLayout, line.Date)
		if err != nil {
			continue
		}
		var bucket string
		if bucketing == BucketingISOWeek {
			bucket = isoWeekKey(t)
		} else {
			bucket = monthKey(t)
			if !wantedMonths[bucket] {
				continue
			}
		}
		dim := ""
		if dimension != "" {
			dim = dimensionValue(line, dimension)
		}
		key := pointKey{bucket, dim}
		p, ok := points[key]
		if !ok {
			p = &models.TrendPoint{BucketKey: bucket, Dimension: dim}
			points[key] = p
		}
		addToPoint(p, line)
	}

	// Zero-fill empty months when no dimension split is requested.
	if bucketing == BucketingMonth && dimension == "" {
		for _, k := range monthOrder {
			key := pointKey{k, ""}
			if _, ok := points[key]; !ok {
				points[key] = &models.TrendPoint{BucketKey: k}
			}
		}
	}

	out := make([]models.TrendPoint, 0, len(points))
	for _, p := range points {
		finishPoint(p)
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].BucketKey != out[j].BucketKey {
			return out[i].BucketKey < out[j].BucketKey
		}
		return out[i].Dimension < out[j].Dimension
	})
	return out
}

// Compare computes per-account variance between comparison sets A
// (current) and B (base) and returns the top-N accounts by absolute
// variance, ties broken by account name ascending. Variance percent is
// (A-B)/|B|, defined as 0 when B is 0.
func Compare(current, base map[string]float64, topN int) []models.VarianceRow {
	seen := make(map[string]bool, len(current)+len(base))
	rows := make([]models.VarianceRow, 0, len(current)+len(base))
	add := func(account string) {
		if seen[account] {
			return
		}
		seen[account] = true
		a := current[account]
		b := base[account]
		variance := utils.RoundFloat(a-b, 2)
		pct := 0.0
		if b != 0 {
			pct = utils.RoundFloat((a-b)/math.Abs(b), 4)
		}
		rows = append(rows, models.VarianceRow{
			Account:     account,
			Current:     utils.RoundFloat(a, 2),
			Base:        utils.RoundFloat(b, 2),
			Variance:    variance,
			VariancePct: pct,
		})
	}
	for account := range current {
		add(account)
	}
	for account := range base {
		add(account)
	}

	sort.Slice(rows, func(i, j int) bool {
		ai, aj := math.Abs(rows[i].Variance), math.Abs(rows[j].Variance)
		if ai != aj {
			return ai > aj
		}
		return rows[i].Account < rows[j].Account
	})
	if topN > 0 && len(rows) > topN {
		rows = rows[:topN]
	}
	return rows
}
