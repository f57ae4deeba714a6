// Package analytics aggregates movements into time series and category and
// entity breakdowns.
package analytics

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/fincore/internal/domain"
	"github.com/iho/fincore/internal/period"
)

// UnassignedKey groups movements without an entity.
const UnassignedKey = ""

// GranularityFor is the bucket size callers should request for a range:
// daily under 30 days, weekly up to 90 days, monthly beyond.
// BuildReport never applies it on its own.
func GranularityFor(start, end time.Time) domain.PeriodKind {
	days := int(period.Day(end).Sub(period.Day(start)).Hours() / 24)
	switch {
	case days < 30:
		return domain.PeriodDaily
	case days <= 90:
		return domain.PeriodWeekly
	default:
		return domain.PeriodMonthly
	}
}

// BuildReport aggregates the movements dated in [start, end]. The time series
// holds exactly one point per bucket of the requested granularity, including
// empty ones.
func BuildReport(movements []domain.Movement, start, end time.Time, granularity domain.PeriodKind, categoryLabels, entityNames map[string]string) (domain.AnalyticsReport, error) {
	buckets, err := period.Buckets(start, end, granularity)
	if err != nil {
		return domain.AnalyticsReport{}, err
	}

	report := domain.AnalyticsReport{
		Start:       buckets[0].Start,
		End:         buckets[len(buckets)-1].End,
		Granularity: granularity,
		TimeSeries:  make([]domain.TimeSeriesPoint, len(buckets)),
	}
	for i, b := range buckets {
		report.TimeSeries[i] = domain.TimeSeriesPoint{Start: b.Start, End: b.End, Label: b.Label}
	}

	expenseByCategory := newGroups()
	incomeByCategory := newGroups()
	byEntity := newGroups()

	for i := range movements {
		m := &movements[i]
		d := period.Day(m.Date)
		if d.Before(report.Start) || d.After(report.End) {
			continue
		}

		idx := sort.Search(len(buckets), func(j int) bool { return !buckets[j].End.Before(d) })
		point := &report.TimeSeries[idx]

		switch m.Direction {
		case domain.DirectionIncome:
			point.Income += m.Amount
			report.TotalIncome += m.Amount
			incomeByCategory.add(m.CategoryID, m)
		case domain.DirectionExpense:
			point.Expense += m.Amount
			report.TotalExpense += m.Amount
			expenseByCategory.add(m.CategoryID, m)
		default:
			continue
		}
		point.Net = point.Income - point.Expense
		byEntity.add(m.EntityID, m)
	}
	report.Net = report.TotalIncome - report.TotalExpense

	report.ExpenseByCategory = expenseByCategory.items(categoryLabels, func(it domain.BreakdownItem) int64 { return it.Expense }, report.TotalExpense)
	report.IncomeByCategory = incomeByCategory.items(categoryLabels, func(it domain.BreakdownItem) int64 { return it.Income }, report.TotalIncome)
	report.ByEntity = byEntity.items(entityNames, func(it domain.BreakdownItem) int64 { return it.Income + it.Expense }, report.TotalIncome+report.TotalExpense)

	return report, nil
}

type groups map[string]*domain.BreakdownItem

func newGroups() groups { return make(groups) }

func (g groups) add(key string, m *domain.Movement) {
	it, ok := g[key]
	if !ok {
		it = &domain.BreakdownItem{Key: key}
		g[key] = it
	}
	if m.Direction == domain.DirectionIncome {
		it.Income += m.Amount
	} else {
		it.Expense += m.Amount
	}
	it.Net = it.Income - it.Expense
	it.Count++
}

// items returns the groups largest first, ties broken by key, each with its
// share of total as a whole percentage.
func (g groups) items(labels map[string]string, weight func(domain.BreakdownItem) int64, total int64) []domain.BreakdownItem {
	out := make([]domain.BreakdownItem, 0, len(g))
	for key, it := range g {
		item := *it
		item.Label = key
		if l, ok := labels[key]; ok {
			item.Label = l
		}
		item.Percentage = Percentage(weight(item), total)
		out = append(out, item)
	}

	sort.Slice(out, func(i, j int) bool {
		wi, wj := weight(out[i]), weight(out[j])
		if wi != wj {
			return wi > wj
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// Percentage returns part as a whole percentage of total, rounded half up.
// A zero total yields zero.
func Percentage(part, total int64) int64 {
	if total == 0 {
		return 0
	}
	return decimal.NewFromInt(part).Mul(decimal.NewFromInt(100)).Div(decimal.NewFromInt(total)).Round(0).IntPart()
}
