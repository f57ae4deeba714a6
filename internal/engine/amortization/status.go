package amortization

import (
	"fmt"
	"time"

	"github.com/iho/fincore/internal/domain"
	"github.com/iho/fincore/internal/period"
)

// TotalInterestCost sums the interest portions of the schedule.
func TotalInterestCost(schedule []domain.AmortizationEntry) int64 {
	var total int64
	for i := range schedule {
		total += schedule[i].InterestAmount
	}
	return total
}

// FirstOverdueEntry returns the earliest entry due before today that is
// neither paid nor partially paid.
func FirstOverdueEntry(schedule []domain.AmortizationEntry, today time.Time) (domain.AmortizationEntry, bool) {
	today = period.Day(today)
	var (
		found domain.AmortizationEntry
		ok    bool
	)
	for _, e := range schedule {
		if !e.DueDate.Before(today) {
			continue
		}
		if e.Status == domain.EntryStatusPaid || e.Status == domain.EntryStatusPartial {
			continue
		}
		if !ok || e.DueDate.Before(found.DueDate) {
			found, ok = e, true
		}
	}
	return found, ok
}

// MarkOverdue returns a copy of the schedule with every pending entry due
// before today moved to overdue, and the number of entries changed.
func MarkOverdue(schedule []domain.AmortizationEntry, today time.Time) ([]domain.AmortizationEntry, int) {
	today = period.Day(today)
	out := make([]domain.AmortizationEntry, len(schedule))
	copy(out, schedule)

	changed := 0
	for i := range out {
		if out[i].Status == domain.EntryStatusPending && out[i].DueDate.Before(today) {
			out[i].Status = domain.EntryStatusOverdue
			changed++
		}
	}
	return out, changed
}

// ApplyPayment records amount against entry. The entry becomes paid once the
// scheduled payment is covered and partial otherwise. Any amount beyond what
// was outstanding is returned as surplus.
func ApplyPayment(entry domain.AmortizationEntry, amount int64) (domain.AmortizationEntry, int64, error) {
	if amount <= 0 {
		return entry, 0, domain.ErrInvalidAmount
	}
	if entry.Status == domain.EntryStatusPaid {
		return entry, 0, fmt.Errorf("%w: period %d is already paid", domain.ErrInvalidStatusTransition, entry.Period)
	}

	outstanding := entry.Outstanding()
	var surplus int64
	if amount > outstanding {
		surplus = amount - outstanding
		amount = outstanding
	}

	next := domain.EntryStatusPartial
	if entry.PartialAmountPaid+amount >= entry.PaymentAmount {
		next = domain.EntryStatusPaid
	}
	if err := entry.Transition(next); err != nil {
		return entry, 0, err
	}
	entry.PartialAmountPaid += amount
	return entry, surplus, nil
}

// Summary is the aggregate position of a schedule.
type Summary struct {
	TotalPayments    int64
	TotalInterest    int64
	AmountPaid       int64
	Outstanding      int64
	PeriodsPaid      int
	PeriodsRemaining int
}

// Summarize aggregates the schedule.
func Summarize(schedule []domain.AmortizationEntry) Summary {
	var s Summary
	for i := range schedule {
		e := &schedule[i]
		s.TotalPayments += e.PaymentAmount
		s.TotalInterest += e.InterestAmount
		s.AmountPaid += e.PaymentAmount - e.Outstanding()
		s.Outstanding += e.Outstanding()
		if e.Status == domain.EntryStatusPaid {
			s.PeriodsPaid++
		} else {
			s.PeriodsRemaining++
		}
	}
	return s
}

// NextUnpaid returns the first entry that is not fully paid.
func NextUnpaid(schedule []domain.AmortizationEntry) (domain.AmortizationEntry, bool) {
	for _, e := range schedule {
		if e.Status != domain.EntryStatusPaid {
			return e, true
		}
	}
	return domain.AmortizationEntry{}, false
}
