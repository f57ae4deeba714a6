package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// AmortizationMethod selects how a loan schedule is computed.
type AmortizationMethod string

// MethodFrench is the equal-payment method, the only one fully supported.
const MethodFrench AmortizationMethod = "french"

// EntryStatus is the payment state of a scheduled amortization entry.
type EntryStatus string

const (
	EntryStatusPending EntryStatus = "pending"
	EntryStatusPaid    EntryStatus = "paid"
	EntryStatusOverdue EntryStatus = "overdue"
	EntryStatusPartial EntryStatus = "partial"
)

var entryTransitions = map[EntryStatus]map[EntryStatus]bool{
	EntryStatusPending: {EntryStatusPaid: true, EntryStatusPartial: true, EntryStatusOverdue: true},
	EntryStatusOverdue: {EntryStatusPaid: true, EntryStatusPartial: true},
	EntryStatusPartial: {EntryStatusPaid: true},
}

// CanTransitionTo reports whether moving from s to next goes forward.
func (s EntryStatus) CanTransitionTo(next EntryStatus) bool {
	return entryTransitions[s][next]
}

// IsSettled reports whether nothing more is owed on the entry.
func (s EntryStatus) IsSettled() bool {
	return s == EntryStatusPaid
}

// AmortizationEntry is one scheduled loan payment.
type AmortizationEntry struct {
	DueDate            time.Time
	Status             EntryStatus
	MovementID         string
	Period             int
	PaymentAmount      int64
	PrincipalAmount    int64
	InterestAmount     int64
	RemainingPrincipal int64
	PartialAmountPaid  int64
}

// Outstanding returns what is still owed on the entry.
func (e *AmortizationEntry) Outstanding() int64 {
	if e.Status == EntryStatusPaid {
		return 0
	}
	return e.PaymentAmount - e.PartialAmountPaid
}

// Transition moves the entry to next, rejecting backward moves.
func (e *AmortizationEntry) Transition(next EntryStatus) error {
	if e.Status == next {
		return nil
	}
	if !e.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, e.Status, next)
	}
	e.Status = next
	return nil
}

// RateChange records a new annual rate taking effect on a date.
type RateChange struct {
	EffectiveFrom time.Time
	AnnualRate    decimal.Decimal
}

// LongTermDebt is a loan with a precomputed amortization schedule.
type LongTermDebt struct {
	CreatedAt         time.Time
	UpdatedAt         time.Time
	StartDate         time.Time
	AnnualRate        decimal.Decimal
	ID                string
	Name              string
	EntityID          string
	Method            AmortizationMethod
	RateHistory       []RateChange
	Schedule          []AmortizationEntry
	OriginalPrincipal int64
	CurrentPrincipal  int64
	MonthlyPayment    int64
	TermMonths        int
	Active            bool
}

// Validate checks the loan parameters.
func (d *LongTermDebt) Validate() error {
	if d.OriginalPrincipal <= 0 {
		return fmt.Errorf("%w: principal must be positive", ErrInvalidLoanParameters)
	}
	if !d.AnnualRate.IsPositive() {
		return fmt.Errorf("%w: rate must be positive", ErrInvalidLoanParameters)
	}
	if d.TermMonths <= 0 {
		return fmt.Errorf("%w: term must be positive", ErrInvalidLoanParameters)
	}
	if d.Method != "" && d.Method != MethodFrench {
		return fmt.Errorf("%w: unsupported method %q", ErrInvalidLoanParameters, d.Method)
	}
	return ValidateName(d.Name)
}

// Entry returns a pointer to the schedule entry for period.
func (d *LongTermDebt) Entry(period int) (*AmortizationEntry, error) {
	for i := range d.Schedule {
		if d.Schedule[i].Period == period {
			return &d.Schedule[i], nil
		}
	}
	return nil, fmt.Errorf("%w: period %d", ErrEntryNotFound, period)
}

// RateAt returns the annual rate in effect on date, taking the latest rate
// change that started on or before it.
func (d *LongTermDebt) RateAt(date time.Time) decimal.Decimal {
	rate := d.AnnualRate
	var latest time.Time
	for _, rc := range d.RateHistory {
		if rc.EffectiveFrom.After(date) {
			continue
		}
		if latest.IsZero() || !rc.EffectiveFrom.Before(latest) {
			latest = rc.EffectiveFrom
			rate = rc.AnnualRate
		}
	}
	return rate
}
