// Package budget derives the spend-versus-limit status of a budget for the
// period containing a reference date.
package budget

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/fincore/internal/domain"
	"github.com/iho/fincore/internal/period"
)

const (
	warningPercent  = 75
	exceededPercent = 100
)

var hundred = decimal.NewFromInt(100)

// Evaluate computes the status of b for the period containing today.
//
// Only expense movements dated inside the period, in one of the budget's
// categories and (for scoped budgets) one of its entities count as spend.
// priorPeriodRemaining is what was left of the previous period; it only rolls
// over when the budget has rollover enabled, capped by RolloverCap.
// A threshold is pending when spend has reached threshold × effective limit
// and fired holds no un-dismissed alert for it in this period.
func Evaluate(b domain.Budget, movements []domain.Movement, fired []domain.BudgetAlert, priorPeriodRemaining int64, today time.Time) (domain.BudgetStatus, error) {
	if err := b.Validate(); err != nil {
		return domain.BudgetStatus{}, err
	}

	today = period.Day(today)
	r, err := period.Containing(b.Period, today)
	if err != nil {
		return domain.BudgetStatus{}, err
	}

	spent := Spent(b, movements, r)
	rollover := RolloverAmount(b, priorPeriodRemaining)
	effective := b.LimitAmount + rollover
	usage := usagePercentage(spent, effective)

	status := domain.BudgetStatus{
		BudgetID:        b.ID,
		PeriodLabel:     r.Label,
		PeriodStart:     r.Start,
		PeriodEnd:       r.End,
		SpentAmount:     spent,
		RolloverAmount:  rollover,
		EffectiveLimit:  effective,
		RemainingAmount: effective - spent,
		UsagePercentage: usage,
		State:           stateFor(usage),
		DaysRemaining:   DaysRemaining(r, today),
		ProjectedSpend:  ProjectedSpend(spent, r, today),
	}
	status.PendingAlerts = pendingAlerts(b, spent, effective, r.Label, fired)
	return status, nil
}

// Spent sums the expense movements in r that fall inside the budget's scope.
func Spent(b domain.Budget, movements []domain.Movement, r period.Range) int64 {
	var total int64
	for i := range movements {
		m := &movements[i]
		if !m.IsExpense() || !r.Contains(m.Date) {
			continue
		}
		if !b.MatchesCategory(m.CategoryID) || !b.MatchesEntity(m.EntityID) {
			continue
		}
		total += m.Amount
	}
	return total
}

// RolloverAmount is the part of the prior period's remainder carried into the
// current one. Overspent periods carry nothing.
func RolloverAmount(b domain.Budget, priorPeriodRemaining int64) int64 {
	if !b.Rollover || priorPeriodRemaining <= 0 {
		return 0
	}
	if b.RolloverCap != nil && *b.RolloverCap < priorPeriodRemaining {
		return *b.RolloverCap
	}
	return priorPeriodRemaining
}

// PriorPeriodRemaining is the unspent base limit of the period before the one
// containing today, floored at zero. Rollover does not chain across periods.
func PriorPeriodRemaining(b domain.Budget, movements []domain.Movement, today time.Time) (int64, error) {
	prev, err := period.Previous(b.Period, today)
	if err != nil {
		return 0, err
	}
	remaining := b.LimitAmount - Spent(b, movements, prev)
	if remaining < 0 {
		return 0, nil
	}
	return remaining, nil
}

// DaysRemaining counts the days left in r, today included.
func DaysRemaining(r period.Range, today time.Time) int {
	today = period.Day(today)
	if today.After(r.End) {
		return 0
	}
	if today.Before(r.Start) {
		return r.Days()
	}
	return int(r.End.Sub(today).Hours()/24) + 1
}

// ProjectedSpend extrapolates spend linearly to the end of r.
func ProjectedSpend(spent int64, r period.Range, today time.Time) int64 {
	today = period.Day(today)
	if !r.Contains(today) {
		return spent
	}
	elapsed := int64(today.Sub(r.Start).Hours()/24) + 1
	total := int64(r.Days())
	return decimal.NewFromInt(spent).Mul(decimal.NewFromInt(total)).
		Div(decimal.NewFromInt(elapsed)).Round(0).IntPart()
}

func usagePercentage(spent, effective int64) int64 {
	if effective <= 0 {
		// A negative effective limit cannot occur with a validated budget.
		return 0
	}
	return decimal.NewFromInt(spent).Mul(hundred).Div(decimal.NewFromInt(effective)).Round(0).IntPart()
}

func stateFor(usage int64) domain.BudgetState {
	switch {
	case usage >= exceededPercent:
		return domain.BudgetStateExceeded
	case usage >= warningPercent:
		return domain.BudgetStateWarning
	default:
		return domain.BudgetStateOK
	}
}

func pendingAlerts(b domain.Budget, spent, effective int64, label string, fired []domain.BudgetAlert) []decimal.Decimal {
	active := make(map[string]bool, len(fired))
	for i := range fired {
		if !fired[i].Dismissed {
			active[fired[i].Key()] = true
		}
	}

	thresholds := make([]decimal.Decimal, len(b.AlertThresholds))
	copy(thresholds, b.AlertThresholds)
	sort.Slice(thresholds, func(i, j int) bool { return thresholds[i].LessThan(thresholds[j]) })

	spentD := decimal.NewFromInt(spent)
	effD := decimal.NewFromInt(effective)

	pending := []decimal.Decimal{}
	seen := make(map[string]bool, len(thresholds))
	for _, th := range thresholds {
		key := domain.AlertKey(b.ID, th, label)
		if seen[key] {
			continue
		}
		seen[key] = true
		if spentD.LessThan(th.Mul(effD)) || active[key] {
			continue
		}
		pending = append(pending, th)
	}
	return pending
}
