package amortization

import (
	"errors"
	"testing"
	"time"

	"github.com/iho/fincore/internal/domain"
)

func TestTotalInterestCost(t *testing.T) {
	t.Parallel()

	schedule := []domain.AmortizationEntry{
		{Period: 1, InterestAmount: 100},
		{Period: 2, InterestAmount: 60},
		{Period: 3, InterestAmount: 20},
	}
	if got := TotalInterestCost(schedule); got != 180 {
		t.Fatalf("expected 180, got %d", got)
	}
	if got := TotalInterestCost(nil); got != 0 {
		t.Fatalf("expected 0 for empty schedule, got %d", got)
	}
}

func TestFirstOverdueEntry(t *testing.T) {
	t.Parallel()

	schedule := []domain.AmortizationEntry{
		{Period: 1, DueDate: day(2026, 1, 15), Status: domain.EntryStatusPaid},
		{Period: 2, DueDate: day(2026, 2, 15), Status: domain.EntryStatusPartial},
		{Period: 3, DueDate: day(2026, 3, 15), Status: domain.EntryStatusPending},
		{Period: 4, DueDate: day(2026, 4, 15), Status: domain.EntryStatusOverdue},
	}

	tests := []struct {
		name       string
		today      time.Time
		wantPeriod int
		wantOK     bool
	}{
		{"nothing due yet", day(2026, 1, 10), 0, false},
		{"due today is not overdue", day(2026, 3, 15), 0, false},
		{"skips paid and partial", day(2026, 5, 1), 3, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, ok := FirstOverdueEntry(schedule, tt.today)
			if ok != tt.wantOK {
				t.Fatalf("expected ok=%v, got %v", tt.wantOK, ok)
			}
			if ok && e.Period != tt.wantPeriod {
				t.Fatalf("expected period %d, got %d", tt.wantPeriod, e.Period)
			}
		})
	}
}

func TestMarkOverdueDoesNotMutateInput(t *testing.T) {
	t.Parallel()

	schedule := []domain.AmortizationEntry{
		{Period: 1, DueDate: day(2026, 1, 15), Status: domain.EntryStatusPending},
		{Period: 2, DueDate: day(2026, 2, 15), Status: domain.EntryStatusPaid},
		{Period: 3, DueDate: day(2026, 3, 15), Status: domain.EntryStatusPending},
	}

	out, changed := MarkOverdue(schedule, day(2026, 2, 20))
	if changed != 1 {
		t.Fatalf("expected 1 change, got %d", changed)
	}
	if out[0].Status != domain.EntryStatusOverdue {
		t.Fatalf("expected overdue, got %s", out[0].Status)
	}
	if schedule[0].Status != domain.EntryStatusPending {
		t.Fatal("input schedule was mutated")
	}
	if out[2].Status != domain.EntryStatusPending {
		t.Fatalf("future entry changed to %s", out[2].Status)
	}
}

func TestApplyPayment(t *testing.T) {
	t.Parallel()

	entry := domain.AmortizationEntry{Period: 1, PaymentAmount: 1000, Status: domain.EntryStatusPending}

	partial, surplus, err := ApplyPayment(entry, 400)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if partial.Status != domain.EntryStatusPartial || partial.PartialAmountPaid != 400 || surplus != 0 {
		t.Fatalf("unexpected partial result %+v surplus=%d", partial, surplus)
	}

	paid, surplus, err := ApplyPayment(partial, 700)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if paid.Status != domain.EntryStatusPaid || paid.PartialAmountPaid != 1000 || surplus != 100 {
		t.Fatalf("unexpected paid result %+v surplus=%d", paid, surplus)
	}

	if _, _, err := ApplyPayment(paid, 1); !errors.Is(err, domain.ErrInvalidStatusTransition) {
		t.Fatalf("expected ErrInvalidStatusTransition, got %v", err)
	}
	if _, _, err := ApplyPayment(entry, 0); !errors.Is(err, domain.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	schedule := []domain.AmortizationEntry{
		{Period: 1, PaymentAmount: 1000, InterestAmount: 100, Status: domain.EntryStatusPaid, PartialAmountPaid: 1000},
		{Period: 2, PaymentAmount: 1000, InterestAmount: 80, Status: domain.EntryStatusPartial, PartialAmountPaid: 300},
		{Period: 3, PaymentAmount: 990, InterestAmount: 50, Status: domain.EntryStatusPending},
	}

	s := Summarize(schedule)
	if s.TotalPayments != 2990 || s.TotalInterest != 230 {
		t.Fatalf("unexpected totals %+v", s)
	}
	if s.AmountPaid != 1300 || s.Outstanding != 1690 {
		t.Fatalf("unexpected paid/outstanding %+v", s)
	}
	if s.PeriodsPaid != 1 || s.PeriodsRemaining != 2 {
		t.Fatalf("unexpected period counts %+v", s)
	}

	next, ok := NextUnpaid(schedule)
	if !ok || next.Period != 2 {
		t.Fatalf("expected next unpaid period 2, got %+v", next)
	}
}
