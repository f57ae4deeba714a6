package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// PeriodKind is the length of a calendar bucket.
type PeriodKind string

const (
	PeriodDaily     PeriodKind = "daily"
	PeriodWeekly    PeriodKind = "weekly"
	PeriodMonthly   PeriodKind = "monthly"
	PeriodQuarterly PeriodKind = "quarterly"
	PeriodAnnual    PeriodKind = "annual"
)

// IsValid reports whether k is a known period kind.
func (k PeriodKind) IsValid() bool {
	switch k {
	case PeriodDaily, PeriodWeekly, PeriodMonthly, PeriodQuarterly, PeriodAnnual:
		return true
	}
	return false
}

// BudgetState is the traffic-light classification of a budget.
type BudgetState string

const (
	BudgetStateOK       BudgetState = "ok"
	BudgetStateWarning  BudgetState = "warning"
	BudgetStateExceeded BudgetState = "exceeded"
)

// Budget is a spending limit over categories for a recurring period.
type Budget struct {
	CreatedAt       time.Time
	UpdatedAt       time.Time
	RolloverCap     *int64
	ID              string
	Name            string
	Period          PeriodKind
	CategoryIDs     []string
	EntityIDs       []string
	AlertThresholds []decimal.Decimal
	LimitAmount     int64
	Rollover        bool
}

var maxAlertThreshold = decimal.NewFromInt(2)

// Validate rejects budgets that cannot be evaluated. A zero limit is refused
// here so evaluation never divides by zero.
func (b *Budget) Validate() error {
	if b.LimitAmount <= 0 {
		return fmt.Errorf("%w: limit must be positive", ErrInvalidBudgetDefinition)
	}
	if len(b.CategoryIDs) == 0 {
		return fmt.Errorf("%w: at least one category is required", ErrInvalidBudgetDefinition)
	}
	if b.Period == PeriodDaily || !b.Period.IsValid() {
		return fmt.Errorf("%w: unsupported period %q", ErrInvalidBudgetDefinition, b.Period)
	}
	if b.RolloverCap != nil && *b.RolloverCap < 0 {
		return fmt.Errorf("%w: rollover cap cannot be negative", ErrInvalidBudgetDefinition)
	}
	for _, th := range b.AlertThresholds {
		if !th.IsPositive() || th.GreaterThan(maxAlertThreshold) {
			return fmt.Errorf("%w: threshold %s outside (0, 2]", ErrInvalidBudgetDefinition, th)
		}
	}
	return ValidateName(b.Name)
}

// MatchesCategory reports whether categoryID is covered by the budget.
func (b *Budget) MatchesCategory(categoryID string) bool {
	return containsString(b.CategoryIDs, categoryID)
}

// MatchesEntity reports whether entityID is in scope. Unscoped budgets match
// every entity.
func (b *Budget) MatchesEntity(entityID string) bool {
	if len(b.EntityIDs) == 0 {
		return true
	}
	return containsString(b.EntityIDs, entityID)
}

// BudgetAlert is a threshold crossing that has been raised for one period.
// (BudgetID, Threshold, PeriodLabel) identifies it.
type BudgetAlert struct {
	FiredAt     time.Time
	Threshold   decimal.Decimal
	BudgetID    string
	PeriodLabel string
	Dismissed   bool
}

// Key returns the deduplication key of the alert.
func (a *BudgetAlert) Key() string {
	return AlertKey(a.BudgetID, a.Threshold, a.PeriodLabel)
}

// AlertKey builds the deduplication key for a budget alert.
func AlertKey(budgetID string, threshold decimal.Decimal, periodLabel string) string {
	return budgetID + "|" + threshold.String() + "|" + periodLabel
}

// BudgetStatus is the derived state of a budget for its current period. It is
// never persisted.
type BudgetStatus struct {
	PeriodStart     time.Time
	PeriodEnd       time.Time
	BudgetID        string
	PeriodLabel     string
	State           BudgetState
	PendingAlerts   []decimal.Decimal
	SpentAmount     int64
	RolloverAmount  int64
	EffectiveLimit  int64
	RemainingAmount int64
	ProjectedSpend  int64
	UsagePercentage int64
	DaysRemaining   int
}

func containsString(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
