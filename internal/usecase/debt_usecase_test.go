package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/iho/fincore/internal/domain"
	"github.com/iho/fincore/internal/engine/amortization"
	"github.com/iho/fincore/internal/usecase"
	"github.com/iho/fincore/internal/usecase/mocks"
)

type debtFixture struct {
	debts     *mocks.MockDebtRepository
	movements *mocks.MockMovementRepository
	cache     *mocks.MockReportCache
	uc        *usecase.DebtUseCase
}

func newDebtFixture(t *testing.T) (*debtFixture, *domain.LongTermDebt) {
	t.Helper()
	f := &debtFixture{
		debts:     mocks.NewMockDebtRepository(),
		movements: mocks.NewMockMovementRepository(),
		cache:     mocks.NewMockReportCache(),
	}
	f.uc = usecase.NewDebtUseCase(mocks.NewMockTransactionManager(), f.debts, f.movements, mocks.NewMockIDGenerator(), f.cache, nil)

	debt, err := f.uc.CreateDebt(context.Background(), usecase.CreateDebtInput{
		Name:       "Car loan",
		EntityID:   "checking",
		Principal:  10_000_000,
		AnnualRate: decimal.RequireFromString("0.12"),
		TermMonths: 12,
		StartDate:  day(2026, 1, 15),
	})
	if err != nil {
		t.Fatalf("create debt: %v", err)
	}
	return f, debt
}

func principalSum(schedule []domain.AmortizationEntry) int64 {
	var total int64
	for _, e := range schedule {
		total += e.PrincipalAmount
	}
	return total
}

func TestDebtUseCase_CreateDebt(t *testing.T) {
	_, debt := newDebtFixture(t)

	if len(debt.Schedule) != 12 {
		t.Fatalf("expected 12 entries, got %d", len(debt.Schedule))
	}
	if debt.MonthlyPayment != 888_488 {
		t.Errorf("expected payment 888488, got %d", debt.MonthlyPayment)
	}
	if debt.CurrentPrincipal != debt.OriginalPrincipal || !debt.Active {
		t.Errorf("unexpected debt state %+v", debt)
	}
}

func TestDebtUseCase_CreateDebtRejectsBadParameters(t *testing.T) {
	uc := usecase.NewDebtUseCase(mocks.NewMockTransactionManager(), mocks.NewMockDebtRepository(), mocks.NewMockMovementRepository(), mocks.NewMockIDGenerator(), nil, nil)

	tests := []struct {
		name  string
		input usecase.CreateDebtInput
	}{
		{"zero principal", usecase.CreateDebtInput{Name: "x", AnnualRate: decimal.RequireFromString("0.1"), TermMonths: 12, StartDate: day(2026, 1, 1)}},
		{"zero rate", usecase.CreateDebtInput{Name: "x", Principal: 100, TermMonths: 12, StartDate: day(2026, 1, 1)}},
		{"zero term", usecase.CreateDebtInput{Name: "x", Principal: 100, AnnualRate: decimal.RequireFromString("0.1"), StartDate: day(2026, 1, 1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := uc.CreateDebt(context.Background(), tt.input); !errors.Is(err, domain.ErrInvalidLoanParameters) {
				t.Errorf("expected ErrInvalidLoanParameters, got %v", err)
			}
		})
	}
}

func TestDebtUseCase_RecordPayment(t *testing.T) {
	tests := []struct {
		name          string
		amount        int64
		wantStatus    domain.EntryStatus
		wantPrincipal int64
		expectError   error
	}{
		{name: "full payment", amount: 888_488, wantStatus: domain.EntryStatusPaid, wantPrincipal: 10_000_000 - 788_488},
		{name: "partial payment", amount: 100_000, wantStatus: domain.EntryStatusPartial, wantPrincipal: 10_000_000},
		{name: "overpayment", amount: 900_000, expectError: domain.ErrInvalidAmount},
		{name: "zero payment", amount: 0, expectError: domain.ErrInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, debt := newDebtFixture(t)

			updated, err := f.uc.RecordPayment(context.Background(), usecase.RecordPaymentInput{
				DebtID: debt.ID,
				Amount: tt.amount,
				Date:   day(2026, 2, 15),
			})
			if tt.expectError != nil {
				if !errors.Is(err, tt.expectError) {
					t.Fatalf("expected %v, got %v", tt.expectError, err)
				}
				movements, _ := f.movements.List(context.Background(), usecase.MovementFilter{})
				if len(movements) != 0 {
					t.Error("rejected payment must not record a movement")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			first := updated.Schedule[0]
			if first.Status != tt.wantStatus {
				t.Errorf("expected %s, got %s", tt.wantStatus, first.Status)
			}
			if first.MovementID == "" {
				t.Error("expected linked movement")
			}
			if updated.CurrentPrincipal != tt.wantPrincipal {
				t.Errorf("expected principal %d, got %d", tt.wantPrincipal, updated.CurrentPrincipal)
			}

			movements, _ := f.movements.List(context.Background(), usecase.MovementFilter{})
			if len(movements) != 1 || movements[0].Amount != tt.amount || movements[0].Direction != domain.DirectionExpense {
				t.Errorf("unexpected movements %+v", movements)
			}
		})
	}
}

func TestDebtUseCase_RecordPaymentRejectsPaidEntry(t *testing.T) {
	f, debt := newDebtFixture(t)
	input := usecase.RecordPaymentInput{DebtID: debt.ID, Period: 1, Amount: 888_488}

	if _, err := f.uc.RecordPayment(context.Background(), input); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := f.uc.RecordPayment(context.Background(), input); !errors.Is(err, domain.ErrInvalidStatusTransition) {
		t.Errorf("expected ErrInvalidStatusTransition, got %v", err)
	}
}

func TestDebtUseCase_ExtraPayment(t *testing.T) {
	t.Run("reduce term shortens the schedule", func(t *testing.T) {
		f, debt := newDebtFixture(t)

		updated, err := f.uc.ExtraPayment(context.Background(), usecase.ExtraPaymentInput{
			DebtID:   debt.ID,
			Amount:   5_000_000,
			Date:     day(2026, 1, 20),
			Strategy: amortization.StrategyReduceTerm,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(updated.Schedule) >= 12 {
			t.Errorf("expected a shorter schedule, got %d entries", len(updated.Schedule))
		}
		if got := principalSum(updated.Schedule); got != 5_000_000 {
			t.Errorf("expected remaining principal 5000000, got %d", got)
		}
		if updated.CurrentPrincipal != 5_000_000 || updated.MonthlyPayment != 888_488 {
			t.Errorf("unexpected debt state: principal %d payment %d", updated.CurrentPrincipal, updated.MonthlyPayment)
		}
	})

	t.Run("reduce payment keeps the term", func(t *testing.T) {
		f, debt := newDebtFixture(t)

		updated, err := f.uc.ExtraPayment(context.Background(), usecase.ExtraPaymentInput{
			DebtID: debt.ID,
			Amount: 5_000_000,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(updated.Schedule) != 12 {
			t.Errorf("expected 12 entries, got %d", len(updated.Schedule))
		}
		if updated.MonthlyPayment >= 888_488 {
			t.Errorf("expected a lower payment, got %d", updated.MonthlyPayment)
		}
	})

	t.Run("paying everything closes the loan", func(t *testing.T) {
		f, debt := newDebtFixture(t)

		updated, err := f.uc.ExtraPayment(context.Background(), usecase.ExtraPaymentInput{DebtID: debt.ID, Amount: 10_000_000})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if updated.Active || updated.CurrentPrincipal != 0 || len(updated.Schedule) != 0 {
			t.Errorf("expected a closed loan, got %+v", updated)
		}
	})

	t.Run("more than the balance is rejected", func(t *testing.T) {
		f, debt := newDebtFixture(t)

		if _, err := f.uc.ExtraPayment(context.Background(), usecase.ExtraPaymentInput{DebtID: debt.ID, Amount: 10_000_001}); !errors.Is(err, domain.ErrInvalidAmount) {
			t.Errorf("expected ErrInvalidAmount, got %v", err)
		}
	})
}

func TestDebtUseCase_ChangeRate(t *testing.T) {
	f, debt := newDebtFixture(t)

	updated, err := f.uc.ChangeRate(context.Background(), usecase.RateChangeInput{
		DebtID:        debt.ID,
		AnnualRate:    decimal.RequireFromString("0.06"),
		EffectiveFrom: day(2026, 6, 1),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(updated.RateHistory) != 1 {
		t.Fatalf("expected rate history entry, got %d", len(updated.RateHistory))
	}
	for i := 0; i < 4; i++ {
		if updated.Schedule[i] != debt.Schedule[i] {
			t.Errorf("entry %d before the change must be untouched", i+1)
		}
	}
	if updated.Schedule[4].PaymentAmount >= debt.Schedule[4].PaymentAmount {
		t.Errorf("expected a lower payment from period 5, got %d", updated.Schedule[4].PaymentAmount)
	}
	if got := principalSum(updated.Schedule); got != 10_000_000 {
		t.Errorf("principal must still sum to 10000000, got %d", got)
	}
	if !updated.RateAt(day(2026, 7, 1)).Equal(decimal.RequireFromString("0.06")) {
		t.Errorf("unexpected rate after change: %s", updated.RateAt(day(2026, 7, 1)))
	}
}

func TestDebtUseCase_MarkOverdue(t *testing.T) {
	f, debt := newDebtFixture(t)

	n, err := f.uc.MarkOverdue(context.Background(), day(2026, 4, 1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 overdue entries, got %d", n)
	}

	details, err := f.uc.GetDebt(context.Background(), debt.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if details.Debt.Schedule[0].Status != domain.EntryStatusOverdue || details.Debt.Schedule[2].Status != domain.EntryStatusPending {
		t.Errorf("unexpected statuses %s/%s", details.Debt.Schedule[0].Status, details.Debt.Schedule[2].Status)
	}
	if details.Summary.PeriodsRemaining != 12 {
		t.Errorf("expected 12 remaining periods, got %d", details.Summary.PeriodsRemaining)
	}

	again, err := f.uc.MarkOverdue(context.Background(), day(2026, 4, 1))
	if err != nil || again != 0 {
		t.Errorf("second sweep must change nothing, got %d (%v)", again, err)
	}
}

func TestDebtUseCase_RecordPaymentRejectsOutOfOrderPeriod(t *testing.T) {
	f, debt := newDebtFixture(t)

	_, err := f.uc.RecordPayment(context.Background(), usecase.RecordPaymentInput{DebtID: debt.ID, Period: 5, Amount: 888_488})
	if !errors.Is(err, domain.ErrInvalidStatusTransition) {
		t.Fatalf("expected ErrInvalidStatusTransition, got %v", err)
	}

	_, err = f.uc.RecordPayment(context.Background(), usecase.RecordPaymentInput{DebtID: debt.ID, Period: 40, Amount: 888_488})
	if !errors.Is(err, domain.ErrEntryNotFound) {
		t.Fatalf("expected ErrEntryNotFound, got %v", err)
	}

	movements, _ := f.movements.List(context.Background(), usecase.MovementFilter{})
	if len(movements) != 0 {
		t.Errorf("rejected payments must not record movements, got %d", len(movements))
	}
}

func TestDebtUseCase_ExtraPaymentPreservesSettledEntries(t *testing.T) {
	for _, strategy := range []amortization.Strategy{amortization.StrategyReducePayment, amortization.StrategyReduceTerm} {
		t.Run(string(strategy), func(t *testing.T) {
			f, debt := newDebtFixture(t)
			ctx := context.Background()

			for i := 0; i < 3; i++ {
				if _, err := f.uc.RecordPayment(ctx, usecase.RecordPaymentInput{DebtID: debt.ID, Amount: debt.MonthlyPayment}); err != nil {
					t.Fatalf("payment %d: %v", i+1, err)
				}
			}
			if _, err := f.uc.RecordPayment(ctx, usecase.RecordPaymentInput{DebtID: debt.ID, Amount: 100_000}); err != nil {
				t.Fatalf("partial payment: %v", err)
			}

			before, err := f.uc.GetDebt(ctx, debt.ID)
			if err != nil {
				t.Fatalf("reload: %v", err)
			}
			settled := append([]domain.AmortizationEntry(nil), before.Debt.Schedule[:4]...)

			updated, err := f.uc.ExtraPayment(ctx, usecase.ExtraPaymentInput{DebtID: debt.ID, Amount: 1_000_000, Strategy: strategy})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			for i, want := range settled {
				if updated.Schedule[i] != want {
					t.Errorf("period %d changed: %+v", want.Period, updated.Schedule[i])
				}
			}
			if updated.Schedule[4].Period != 5 || updated.Schedule[4].Status != domain.EntryStatusPending {
				t.Errorf("expected regeneration from period 5, got %+v", updated.Schedule[4])
			}
			if got, want := principalSum(updated.Schedule), int64(10_000_000-1_000_000); got != want {
				t.Errorf("expected principal sum %d, got %d", want, got)
			}
		})
	}
}

func TestDebtUseCase_ExtraPaymentKeepsOverdueEntries(t *testing.T) {
	f, debt := newDebtFixture(t)
	ctx := context.Background()

	if n, err := f.uc.MarkOverdue(ctx, day(2026, 4, 1)); err != nil || n != 2 {
		t.Fatalf("expected 2 overdue entries, got %d (%v)", n, err)
	}

	updated, err := f.uc.ExtraPayment(ctx, usecase.ExtraPaymentInput{DebtID: debt.ID, Amount: 1_000_000})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i, want := range []domain.EntryStatus{domain.EntryStatusOverdue, domain.EntryStatusOverdue, domain.EntryStatusPending} {
		if got := updated.Schedule[i].Status; got != want {
			t.Errorf("period %d: expected %s, got %s", i+1, want, got)
		}
	}
}
