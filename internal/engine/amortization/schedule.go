// Package amortization computes fixed-payment (French method) loan schedules
// and the status bookkeeping around them.
package amortization

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/fincore/internal/domain"
	"github.com/iho/fincore/internal/period"
)

// Strategy decides how a recomputed schedule absorbs a principal change.
type Strategy string

const (
	// StrategyReducePayment keeps the remaining term and lowers the payment.
	StrategyReducePayment Strategy = "reduce-payment"
	// StrategyReduceTerm keeps the payment and shortens the term.
	StrategyReduceTerm Strategy = "reduce-term"
)

const (
	monthsPerYear  = 12
	factorScale    = 28
	maxTermPeriods = 1200
)

var twelve = decimal.NewFromInt(monthsPerYear)

// MonthlyRate converts an annual rate to the per-period rate.
func MonthlyRate(annualRate decimal.Decimal) decimal.Decimal {
	return annualRate.Div(twelve)
}

// FixedPayment returns principal·r·(1+r)^n / ((1+r)^n − 1) rounded to the
// nearest cent.
func FixedPayment(principal int64, monthlyRate decimal.Decimal, n int) int64 {
	one := decimal.NewFromInt(1)
	growth := one.Add(monthlyRate)
	factor := one
	for i := 0; i < n; i++ {
		factor = factor.Mul(growth).Round(factorScale)
	}
	p := decimal.NewFromInt(principal)
	return p.Mul(monthlyRate).Mul(factor).Div(factor.Sub(one)).Round(0).IntPart()
}

// ComputeFixedPaymentSchedule builds the French-method schedule for a loan.
// Entry k falls due k months after startDate, anchored on its day of month.
// The final entry's principal is the exact remaining balance, so principal
// portions always sum to principal and the loan closes at zero.
func ComputeFixedPaymentSchedule(principal int64, annualRate decimal.Decimal, termPeriods int, startDate time.Time) ([]domain.AmortizationEntry, error) {
	if err := validateParams(principal, annualRate, termPeriods); err != nil {
		return nil, err
	}
	if startDate.IsZero() {
		return nil, fmt.Errorf("%w: start date is required", domain.ErrInvalidLoanParameters)
	}

	r := MonthlyRate(annualRate)
	payment := FixedPayment(principal, r, termPeriods)
	return generate(principal, r, payment, 1, termPeriods, startDate, false), nil
}

// generate produces entries numbered first..last. The payment is fixed; the
// last entry absorbs whatever balance is left. With closeEarly the schedule
// stops at the first entry that clears the balance, otherwise every period up
// to last is emitted even when rounding leaves nothing to amortize.
func generate(principal int64, r decimal.Decimal, payment int64, first, last int, start time.Time, closeEarly bool) []domain.AmortizationEntry {
	capacity := last - first + 1
	if closeEarly && capacity > monthsPerYear {
		capacity = monthsPerYear
	}
	entries := make([]domain.AmortizationEntry, 0, capacity)
	remaining := principal
	anchor := period.Day(start).Day()

	for k := first; k <= last; k++ {
		if closeEarly && remaining <= 0 {
			break
		}
		interest := decimal.NewFromInt(remaining).Mul(r).Round(0).IntPart()
		principalPart := payment - interest
		if principalPart < 0 {
			principalPart = 0
		}
		if k == last || principalPart >= remaining {
			principalPart = remaining
		}

		remaining -= principalPart
		entries = append(entries, domain.AmortizationEntry{
			Period:             k,
			DueDate:            period.AddMonthsAnchored(start, k, anchor),
			PaymentAmount:      principalPart + interest,
			PrincipalAmount:    principalPart,
			InterestAmount:     interest,
			RemainingPrincipal: remaining,
			Status:             domain.EntryStatusPending,
		})
	}
	return entries
}

// Recompute describes a regeneration of a schedule from a given period.
type Recompute struct {
	StartDate  time.Time
	AnnualRate decimal.Decimal
	Strategy   Strategy
	FromPeriod int
	Principal  int64
}

// RecomputeFromPeriod keeps every entry before FromPeriod unchanged and
// regenerates the rest from Principal at AnnualRate. Periods stay contiguous.
// A zero principal closes the loan at FromPeriod−1. Entries from FromPeriod on
// must still be unsettled; a regenerated period that was overdue stays overdue.
func RecomputeFromPeriod(schedule []domain.AmortizationEntry, rc Recompute) ([]domain.AmortizationEntry, error) {
	if rc.FromPeriod < 1 || rc.FromPeriod > len(schedule) {
		return nil, fmt.Errorf("%w: period %d outside schedule of %d", domain.ErrInvalidLoanParameters, rc.FromPeriod, len(schedule))
	}
	overdue := make(map[int]bool)
	for _, e := range schedule[rc.FromPeriod-1:] {
		switch e.Status {
		case domain.EntryStatusPaid, domain.EntryStatusPartial:
			return nil, fmt.Errorf("%w: period %d is already %s", domain.ErrInvalidStatusTransition, e.Period, e.Status)
		case domain.EntryStatusOverdue:
			overdue[e.Period] = true
		}
	}
	if rc.Principal < 0 {
		return nil, fmt.Errorf("%w: principal cannot be negative", domain.ErrInvalidLoanParameters)
	}
	if rc.StartDate.IsZero() {
		return nil, fmt.Errorf("%w: start date is required", domain.ErrInvalidLoanParameters)
	}

	kept := make([]domain.AmortizationEntry, rc.FromPeriod-1, len(schedule))
	copy(kept, schedule[:rc.FromPeriod-1])

	if rc.Principal == 0 {
		return kept, nil
	}
	if !rc.AnnualRate.IsPositive() {
		return nil, fmt.Errorf("%w: rate must be positive", domain.ErrInvalidLoanParameters)
	}

	r := MonthlyRate(rc.AnnualRate)
	var tail []domain.AmortizationEntry

	switch rc.Strategy {
	case StrategyReduceTerm:
		payment := schedule[rc.FromPeriod-1].PaymentAmount
		if first := decimal.NewFromInt(rc.Principal).Mul(r).Round(0).IntPart(); payment <= first {
			return nil, fmt.Errorf("%w: payment %d does not cover interest %d", domain.ErrInvalidLoanParameters, payment, first)
		}
		tail = generate(rc.Principal, r, payment, rc.FromPeriod, rc.FromPeriod-1+maxTermPeriods, rc.StartDate, true)
	case StrategyReducePayment, "":
		last := schedule[len(schedule)-1].Period
		n := last - rc.FromPeriod + 1
		payment := FixedPayment(rc.Principal, r, n)
		tail = generate(rc.Principal, r, payment, rc.FromPeriod, last, rc.StartDate, false)
	default:
		return nil, fmt.Errorf("%w: unknown strategy %q", domain.ErrInvalidLoanParameters, rc.Strategy)
	}

	for i := range tail {
		if overdue[tail[i].Period] {
			tail[i].Status = domain.EntryStatusOverdue
		}
	}
	return append(kept, tail...), nil
}

// PrincipalFrom returns the balance outstanding before period p is paid.
func PrincipalFrom(schedule []domain.AmortizationEntry, p int) int64 {
	var total int64
	for i := range schedule {
		if schedule[i].Period >= p {
			total += schedule[i].PrincipalAmount
		}
	}
	return total
}

func validateParams(principal int64, annualRate decimal.Decimal, term int) error {
	if principal <= 0 {
		return fmt.Errorf("%w: principal must be positive", domain.ErrInvalidLoanParameters)
	}
	if !annualRate.IsPositive() {
		return fmt.Errorf("%w: rate must be positive", domain.ErrInvalidLoanParameters)
	}
	if term <= 0 || term > maxTermPeriods {
		return fmt.Errorf("%w: term must be between 1 and %d", domain.ErrInvalidLoanParameters, maxTermPeriods)
	}
	return nil
}
