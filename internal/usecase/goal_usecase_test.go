package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/iho/fincore/internal/domain"
	"github.com/iho/fincore/internal/usecase"
	"github.com/iho/fincore/internal/usecase/mocks"
)

func TestComputeGoalProgress(t *testing.T) {
	goal := domain.Goal{ID: "g1", Name: "Holiday", TargetAmount: 100_000}
	contrib := func(amount int64, date time.Time) domain.Contribution {
		return domain.Contribution{GoalID: "g1", Amount: amount, Date: date}
	}
	projected := day(2026, 1, 25)

	tests := []struct {
		name          string
		contributions []domain.Contribution
		wantCurrent   int64
		wantRemaining int64
		wantOver      int64
		wantPercent   int64
		wantCompleted bool
		wantProjected *time.Time
	}{
		{
			name:          "no contributions",
			wantRemaining: 100_000,
		},
		{
			name:          "projects from the daily average",
			contributions: []domain.Contribution{contrib(20_000, day(2026, 1, 1)), contrib(20_000, day(2026, 1, 10))},
			wantCurrent:   40_000,
			wantRemaining: 60_000,
			wantPercent:   40,
			wantProjected: &projected,
		},
		{
			name:          "overfunded goal completes",
			contributions: []domain.Contribution{contrib(70_000, day(2026, 1, 1)), contrib(50_000, day(2026, 1, 5))},
			wantCurrent:   120_000,
			wantOver:      20_000,
			wantPercent:   120,
			wantCompleted: true,
		},
		{
			name: "future and foreign contributions are ignored",
			contributions: []domain.Contribution{
				contrib(30_000, day(2026, 2, 1)),
				{GoalID: "other", Amount: 50_000, Date: day(2026, 1, 1)},
			},
			wantRemaining: 100_000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := usecase.ComputeGoalProgress(goal, tt.contributions, day(2026, 1, 10))

			if got.CurrentAmount != tt.wantCurrent || got.RemainingAmount != tt.wantRemaining || got.OverfundedAmount != tt.wantOver {
				t.Errorf("amounts: got %d/%d/%d", got.CurrentAmount, got.RemainingAmount, got.OverfundedAmount)
			}
			if got.Percentage != tt.wantPercent || got.Completed != tt.wantCompleted {
				t.Errorf("expected %d%% completed=%v, got %d%% completed=%v", tt.wantPercent, tt.wantCompleted, got.Percentage, got.Completed)
			}
			switch {
			case tt.wantProjected == nil && got.ProjectedCompletion != nil:
				t.Errorf("expected no projection, got %s", got.ProjectedCompletion)
			case tt.wantProjected != nil && (got.ProjectedCompletion == nil || !got.ProjectedCompletion.Equal(*tt.wantProjected)):
				t.Errorf("expected projection %s, got %v", tt.wantProjected, got.ProjectedCompletion)
			}
		})
	}
}

func TestGoalUseCase_Contribute(t *testing.T) {
	goals := mocks.NewMockGoalRepository(domain.Goal{ID: "g1", Name: "Holiday", TargetAmount: 100_000})
	contributions := mocks.NewMockContributionRepository()
	movements := mocks.NewMockMovementRepository(domain.Movement{ID: "m1", Direction: domain.DirectionExpense, Amount: 5_000, Date: day(2026, 1, 2)})
	cache := mocks.NewMockReportCache()
	uc := usecase.NewGoalUseCase(mocks.NewMockTransactionManager(), goals, contributions, movements, mocks.NewMockIDGenerator(), cache)
	ctx := context.Background()

	c, err := uc.Contribute(ctx, usecase.ContributeInput{GoalID: "g1", Amount: 10_000, Date: day(2026, 1, 3), CategoryID: "savings", RecordMovement: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.MovementID == "" {
		t.Fatal("expected a recorded movement")
	}
	if m, err := movements.GetByID(ctx, c.MovementID); err != nil || m.Amount != 10_000 || m.Direction != domain.DirectionExpense {
		t.Errorf("unexpected movement %+v (%v)", m, err)
	}

	if _, err := uc.Contribute(ctx, usecase.ContributeInput{GoalID: "g1", Amount: 5_000, MovementID: "m1", Date: day(2026, 1, 2)}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	progress, err := uc.Progress(ctx, "g1", day(2026, 1, 10))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if progress.CurrentAmount != 15_000 {
		t.Errorf("expected 15000 contributed, got %d", progress.CurrentAmount)
	}
	if cache.Bumps != 2 {
		t.Errorf("expected 2 invalidations, got %d", cache.Bumps)
	}

	tests := []struct {
		name  string
		input usecase.ContributeInput
		want  error
	}{
		{"unknown goal", usecase.ContributeInput{GoalID: "nope", Amount: 1}, domain.ErrGoalNotFound},
		{"non-positive amount", usecase.ContributeInput{GoalID: "g1", Amount: 0}, domain.ErrInvalidAmount},
		{"unknown movement", usecase.ContributeInput{GoalID: "g1", Amount: 1, MovementID: "ghost"}, domain.ErrMovementNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := uc.Contribute(ctx, tt.input); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestGoalUseCase_CreateGoal(t *testing.T) {
	uc := usecase.NewGoalUseCase(mocks.NewMockTransactionManager(), mocks.NewMockGoalRepository(), mocks.NewMockContributionRepository(), mocks.NewMockMovementRepository(), mocks.NewMockIDGenerator(), nil)

	if _, err := uc.CreateGoal(context.Background(), usecase.CreateGoalInput{Name: "Bike", TargetAmount: 120_000}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := uc.CreateGoal(context.Background(), usecase.CreateGoalInput{Name: "Bike"}); !errors.Is(err, domain.ErrInvalidGoal) {
		t.Errorf("expected ErrInvalidGoal, got %v", err)
	}

	goals, err := uc.ListGoals(context.Background())
	if err != nil || len(goals) != 1 {
		t.Errorf("expected 1 goal, got %d (%v)", len(goals), err)
	}
}
