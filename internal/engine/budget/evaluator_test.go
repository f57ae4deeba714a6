package budget

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/fincore/internal/domain"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func th(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func groceries() domain.Budget {
	return domain.Budget{
		ID:              "b1",
		Name:            "Groceries",
		LimitAmount:     500_000,
		CategoryIDs:     []string{"food"},
		Period:          domain.PeriodMonthly,
		AlertThresholds: []decimal.Decimal{th("0.8"), th("1.0")},
	}
}

func expense(amount int64, category string, on time.Time) domain.Movement {
	return domain.Movement{Amount: amount, Direction: domain.DirectionExpense, CategoryID: category, Date: on}
}

func TestEvaluateWithinLimit(t *testing.T) {
	t.Parallel()

	today := day(2026, 3, 20)
	status, err := Evaluate(groceries(), []domain.Movement{expense(300_000, "food", day(2026, 3, 5))}, nil, 0, today)
	require.NoError(t, err)

	assert.Equal(t, int64(300_000), status.SpentAmount)
	assert.Equal(t, int64(60), status.UsagePercentage)
	assert.Equal(t, domain.BudgetStateOK, status.State)
	assert.Empty(t, status.PendingAlerts)
	assert.Equal(t, int64(200_000), status.RemainingAmount)
	assert.Equal(t, "2026-03", status.PeriodLabel)
}

func TestEvaluateExceeded(t *testing.T) {
	t.Parallel()

	status, err := Evaluate(groceries(), []domain.Movement{expense(600_000, "food", day(2026, 3, 5))}, nil, 0, day(2026, 3, 20))
	require.NoError(t, err)

	assert.Equal(t, int64(120), status.UsagePercentage)
	assert.Equal(t, domain.BudgetStateExceeded, status.State)
	assert.Equal(t, int64(-100_000), status.RemainingAmount)
	require.Len(t, status.PendingAlerts, 2)
	assert.True(t, status.PendingAlerts[1].Equal(th("1.0")))
}

func TestEvaluateFiltersMovements(t *testing.T) {
	t.Parallel()

	b := groceries()
	b.EntityIDs = []string{"card"}

	inScope := expense(100_000, "food", day(2026, 3, 2))
	inScope.EntityID = "card"

	otherEntity := expense(50_000, "food", day(2026, 3, 2))
	otherEntity.EntityID = "cash"

	income := domain.Movement{Amount: 70_000, Direction: domain.DirectionIncome, CategoryID: "food", EntityID: "card", Date: day(2026, 3, 2)}

	lastMonth := expense(80_000, "food", day(2026, 2, 28))
	lastMonth.EntityID = "card"

	otherCategory := expense(90_000, "fun", day(2026, 3, 3))
	otherCategory.EntityID = "card"

	status, err := Evaluate(b, []domain.Movement{inScope, otherEntity, income, lastMonth, otherCategory}, nil, 0, day(2026, 3, 31))
	require.NoError(t, err)
	assert.Equal(t, int64(100_000), status.SpentAmount)
}

func TestEvaluateWarningBoundary(t *testing.T) {
	t.Parallel()

	status, err := Evaluate(groceries(), []domain.Movement{expense(375_000, "food", day(2026, 3, 1))}, nil, 0, day(2026, 3, 1))
	require.NoError(t, err)
	assert.Equal(t, int64(75), status.UsagePercentage)
	assert.Equal(t, domain.BudgetStateWarning, status.State)
	assert.Empty(t, status.PendingAlerts)
}

func TestEvaluateRollover(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		rollover bool
		cap      *int64
		prior    int64
		want     int64
	}{
		{"disabled", false, nil, 100_000, 0},
		{"unbounded", true, nil, 100_000, 100_000},
		{"capped", true, ptr(40_000), 100_000, 40_000},
		{"under cap", true, ptr(400_000), 100_000, 100_000},
		{"overspent prior period", true, nil, -20_000, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := groceries()
			b.Rollover = tt.rollover
			b.RolloverCap = tt.cap

			status, err := Evaluate(b, nil, nil, tt.prior, day(2026, 3, 15))
			require.NoError(t, err)
			assert.Equal(t, tt.want, status.RolloverAmount)
			assert.Equal(t, b.LimitAmount+tt.want, status.EffectiveLimit)
		})
	}
}

func TestEvaluateAlertIdempotence(t *testing.T) {
	t.Parallel()

	b := groceries()
	movements := []domain.Movement{expense(450_000, "food", day(2026, 3, 5))}
	today := day(2026, 3, 20)

	first, err := Evaluate(b, movements, nil, 0, today)
	require.NoError(t, err)
	require.Len(t, first.PendingAlerts, 1)

	fired := []domain.BudgetAlert{{BudgetID: b.ID, Threshold: first.PendingAlerts[0], PeriodLabel: first.PeriodLabel, FiredAt: today}}
	for i := 0; i < 3; i++ {
		again, err := Evaluate(b, movements, fired, 0, today)
		require.NoError(t, err)
		assert.Empty(t, again.PendingAlerts)
	}

	// An alert from last period does not suppress this one.
	stale := []domain.BudgetAlert{{BudgetID: b.ID, Threshold: th("0.80"), PeriodLabel: "2026-02"}}
	again, err := Evaluate(b, movements, stale, 0, today)
	require.NoError(t, err)
	assert.Len(t, again.PendingAlerts, 1)

	// Only un-dismissed alerts count as already raised.
	dismissed := []domain.BudgetAlert{{BudgetID: b.ID, Threshold: th("0.8"), PeriodLabel: "2026-03", Dismissed: true}}
	again, err = Evaluate(b, movements, dismissed, 0, today)
	require.NoError(t, err)
	assert.Len(t, again.PendingAlerts, 1)
}

func TestEvaluateRejectsInvalidBudget(t *testing.T) {
	t.Parallel()

	b := groceries()
	b.LimitAmount = 0
	if _, err := Evaluate(b, nil, nil, 0, day(2026, 3, 1)); !errors.Is(err, domain.ErrInvalidBudgetDefinition) {
		t.Fatalf("expected ErrInvalidBudgetDefinition, got %v", err)
	}
}

func TestPriorPeriodRemaining(t *testing.T) {
	t.Parallel()

	b := groceries()
	movements := []domain.Movement{
		expense(120_000, "food", day(2026, 2, 10)),
		expense(999_999, "food", day(2026, 3, 10)),
	}

	got, err := PriorPeriodRemaining(b, movements, day(2026, 3, 15))
	require.NoError(t, err)
	assert.Equal(t, int64(380_000), got)

	movements = append(movements, expense(900_000, "food", day(2026, 2, 11)))
	got, err = PriorPeriodRemaining(b, movements, day(2026, 3, 15))
	require.NoError(t, err)
	assert.Equal(t, int64(0), got)
}

func TestProjectionAndDaysRemaining(t *testing.T) {
	t.Parallel()

	status, err := Evaluate(groceries(), []domain.Movement{expense(100_000, "food", day(2026, 4, 1))}, nil, 0, day(2026, 4, 10))
	require.NoError(t, err)

	assert.Equal(t, 21, status.DaysRemaining)
	assert.Equal(t, int64(300_000), status.ProjectedSpend)
}

func ptr(v int64) *int64 { return &v }
