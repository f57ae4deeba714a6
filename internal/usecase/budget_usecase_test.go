package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/iho/fincore/internal/domain"
	"github.com/iho/fincore/internal/usecase"
	"github.com/iho/fincore/internal/usecase/mocks"
)

func foodBudget(rollover bool) domain.Budget {
	return domain.Budget{
		ID:              "b1",
		Name:            "Food",
		LimitAmount:     100_000,
		CategoryIDs:     []string{"food"},
		Period:          domain.PeriodMonthly,
		AlertThresholds: usecase.DefaultAlertThresholds,
		Rollover:        rollover,
	}
}

func TestBudgetUseCase_CreateBudget(t *testing.T) {
	tests := []struct {
		name        string
		input       usecase.CreateBudgetInput
		expectError bool
	}{
		{
			name:  "defaults thresholds",
			input: usecase.CreateBudgetInput{Name: "Food", LimitAmount: 50_000, CategoryIDs: []string{"food"}, Period: domain.PeriodMonthly},
		},
		{
			name:        "reject missing categories",
			input:       usecase.CreateBudgetInput{Name: "Food", LimitAmount: 50_000, Period: domain.PeriodMonthly},
			expectError: true,
		},
		{
			name:        "reject zero limit",
			input:       usecase.CreateBudgetInput{Name: "Food", CategoryIDs: []string{"food"}, Period: domain.PeriodMonthly},
			expectError: true,
		},
		{
			name:        "reject daily period",
			input:       usecase.CreateBudgetInput{Name: "Food", LimitAmount: 1, CategoryIDs: []string{"food"}, Period: domain.PeriodDaily},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := usecase.NewBudgetUseCase(mocks.NewMockBudgetRepository(), mocks.NewMockAlertRepository(), mocks.NewMockMovementRepository(), mocks.NewMockIDGenerator(), nil)
			b, err := uc.CreateBudget(context.Background(), tt.input)

			if tt.expectError {
				if !errors.Is(err, domain.ErrInvalidBudgetDefinition) {
					t.Errorf("expected ErrInvalidBudgetDefinition, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(b.AlertThresholds) != 2 {
				t.Errorf("expected default thresholds, got %v", b.AlertThresholds)
			}
		})
	}
}

func TestBudgetUseCase_StatusFiresAlertsOnce(t *testing.T) {
	alerts := mocks.NewMockAlertRepository()
	recorder := mocks.NewMockRecorder()
	movements := mocks.NewMockMovementRepository(
		domain.Movement{ID: "m1", CategoryID: "food", Direction: domain.DirectionExpense, Amount: 85_000, Date: day(2026, 3, 5)},
	)
	uc := usecase.NewBudgetUseCase(mocks.NewMockBudgetRepository(foodBudget(false)), alerts, movements, mocks.NewMockIDGenerator(), recorder)
	ctx := context.Background()
	today := day(2026, 3, 10)

	first, err := uc.Status(ctx, "b1", today)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.State != domain.BudgetStateWarning || first.UsagePercentage != 85 {
		t.Errorf("unexpected status %+v", first)
	}
	if len(first.PendingAlerts) != 1 || !first.PendingAlerts[0].Equal(decimal.RequireFromString("0.8")) {
		t.Fatalf("expected pending 0.8, got %v", first.PendingAlerts)
	}
	if recorder.Alerts != 1 {
		t.Errorf("expected one fired alert, got %d", recorder.Alerts)
	}

	second, err := uc.Status(ctx, "b1", today)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(second.PendingAlerts) != 0 {
		t.Errorf("fired alert must not be pending again, got %v", second.PendingAlerts)
	}

	if err := uc.DismissAlert(ctx, "b1", decimal.RequireFromString("0.8"), "2026-03"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	third, err := uc.Status(ctx, "b1", today)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(third.PendingAlerts) != 1 {
		t.Errorf("dismissed alert is reported as pending, got %v", third.PendingAlerts)
	}
	if recorder.Alerts != 1 {
		t.Errorf("dismissed alert must not fire again, got %d", recorder.Alerts)
	}

	if err := uc.DismissAlert(ctx, "b1", decimal.RequireFromString("0.5"), "2026-03"); !errors.Is(err, domain.ErrAlertNotFound) {
		t.Errorf("expected ErrAlertNotFound, got %v", err)
	}
	if err := uc.DismissAlert(ctx, "missing", decimal.RequireFromString("0.8"), "2026-03"); !errors.Is(err, domain.ErrBudgetNotFound) {
		t.Errorf("expected ErrBudgetNotFound, got %v", err)
	}
}

func TestBudgetUseCase_StatusRollsOverPriorPeriod(t *testing.T) {
	movements := mocks.NewMockMovementRepository(
		domain.Movement{ID: "feb", CategoryID: "food", Direction: domain.DirectionExpense, Amount: 40_000, Date: day(2026, 2, 10)},
		domain.Movement{ID: "mar", CategoryID: "food", Direction: domain.DirectionExpense, Amount: 85_000, Date: day(2026, 3, 5)},
	)
	uc := usecase.NewBudgetUseCase(mocks.NewMockBudgetRepository(foodBudget(true)), mocks.NewMockAlertRepository(), movements, mocks.NewMockIDGenerator(), nil)

	statuses, err := uc.Statuses(context.Background(), day(2026, 3, 10))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(statuses) != 1 {
		t.Fatalf("expected 1 status, got %d", len(statuses))
	}
	s := statuses[0]
	if s.RolloverAmount != 60_000 || s.EffectiveLimit != 160_000 || s.SpentAmount != 85_000 {
		t.Errorf("unexpected rollover status %+v", s)
	}
	if s.State != domain.BudgetStateOK || len(s.PendingAlerts) != 0 {
		t.Errorf("expected ok without alerts, got %s %v", s.State, s.PendingAlerts)
	}
}
