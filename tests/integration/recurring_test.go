package integration

import (
	"context"
	"testing"

	"github.com/iho/fincore/internal/adapter/repository/postgres"
	"github.com/iho/fincore/internal/domain"
	"github.com/iho/fincore/internal/usecase"
	"github.com/iho/fincore/tests/testutil"
)

func TestRecurringDueCheck(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	testDB := testutil.NewTestDB(t)
	defer testDB.Cleanup()
	testDB.TruncateAll(ctx)

	pool := testDB.Pool
	movementRepo := postgres.NewMovementRepository(pool)
	postingRepo := postgres.NewPostingRepository(pool)
	recurringUC := usecase.NewRecurringUseCase(
		postgres.NewTxManager(pool),
		postgres.NewRecurringRuleRepository(pool),
		postingRepo,
		movementRepo,
		postgres.NewULIDGenerator(),
		postgres.NewRetrier(),
		nil,
		nil,
	)

	rule, err := recurringUC.CreateRule(ctx, usecase.CreateRuleInput{
		StartDate:   testutil.Date(t, "2026-01-05"),
		Description: "Rent",
		CategoryID:  "housing",
		Direction:   domain.DirectionExpense,
		Frequency:   domain.FrequencyMonthly,
		Amount:      120000,
		AutoPost:    true,
	})
	if err != nil {
		t.Fatalf("failed to create rule: %v", err)
	}

	today := testutil.Date(t, "2026-03-10")

	t.Run("posts the latest occurrence and queues missed ones", func(t *testing.T) {
		result, err := recurringUC.RunDueCheck(ctx, today)
		if err != nil {
			t.Fatalf("due check failed: %v", err)
		}

		if len(result.Movements) != 1 {
			t.Fatalf("expected 1 posted movement, got %d", len(result.Movements))
		}
		if result.Movements[0].PeriodLabel != "2026-03" {
			t.Errorf("expected period 2026-03, got %q", result.Movements[0].PeriodLabel)
		}
		if len(result.Queued) != 2 {
			t.Errorf("expected 2 queued postings, got %d", len(result.Queued))
		}

		stored, err := recurringUC.GetRule(ctx, rule.ID)
		if err != nil {
			t.Fatalf("failed to reload rule: %v", err)
		}
		if got := stored.NextDueDate.Format("2006-01-02"); got != "2026-04-05" {
			t.Errorf("expected next due 2026-04-05, got %s", got)
		}
	})

	t.Run("second run is a no-op", func(t *testing.T) {
		result, err := recurringUC.RunDueCheck(ctx, today)
		if err != nil {
			t.Fatalf("due check failed: %v", err)
		}
		if len(result.Movements) != 0 || len(result.Queued) != 0 {
			t.Errorf("expected nothing new, got %d movements and %d queued", len(result.Movements), len(result.Queued))
		}

		movements, err := movementRepo.List(ctx, usecase.MovementFilter{})
		if err != nil {
			t.Fatalf("failed to list movements: %v", err)
		}
		if len(movements) != 1 {
			t.Errorf("expected 1 movement in total, got %d", len(movements))
		}
	})

	t.Run("confirming a queued posting creates its movement once", func(t *testing.T) {
		movement, err := recurringUC.ConfirmPosting(ctx, rule.ID, "2026-01", nil)
		if err != nil {
			t.Fatalf("confirm failed: %v", err)
		}
		if movement.Amount != 120000 {
			t.Errorf("expected amount 120000, got %d", movement.Amount)
		}

		if _, err := recurringUC.ConfirmPosting(ctx, rule.ID, "2026-01", nil); err == nil {
			t.Error("expected second confirm to fail")
		}

		pending, err := recurringUC.ListPending(ctx)
		if err != nil {
			t.Fatalf("failed to list pending: %v", err)
		}
		if len(pending) != 1 || pending[0].PeriodLabel != "2026-02" {
			t.Errorf("expected only 2026-02 pending, got %+v", pending)
		}
	})
}
