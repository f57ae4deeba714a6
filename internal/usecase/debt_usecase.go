package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/fincore/internal/domain"
	"github.com/iho/fincore/internal/engine/amortization"
	"github.com/iho/fincore/internal/period"
)

// DefaultDebtCategory categorizes movements recorded for loan payments.
const DefaultDebtCategory = "debt"

// DebtUseCase handles long-term debts and their amortization schedules.
type DebtUseCase struct {
	txManager    TransactionManager
	debtRepo     DebtRepository
	movementRepo MovementRepository
	idGen        IDGenerator
	cache        ReportCache
	recorder     Recorder
}

// NewDebtUseCase creates a new DebtUseCase.
func NewDebtUseCase(
	txManager TransactionManager,
	debtRepo DebtRepository,
	movementRepo MovementRepository,
	idGen IDGenerator,
	cache ReportCache,
	recorder Recorder,
) *DebtUseCase {
	if recorder == nil {
		recorder = NopRecorder{}
	}
	return &DebtUseCase{
		txManager:    txManager,
		debtRepo:     debtRepo,
		movementRepo: movementRepo,
		idGen:        idGen,
		cache:        cache,
		recorder:     recorder,
	}
}

// CreateDebtInput represents input for registering a loan.
type CreateDebtInput struct {
	StartDate  time.Time
	AnnualRate decimal.Decimal
	Name       string
	EntityID   string
	Principal  int64
	TermMonths int
}

// RecordPaymentInput represents a scheduled payment. A zero Period pays the
// earliest unpaid entry.
type RecordPaymentInput struct {
	Date       time.Time
	DebtID     string
	CategoryID string
	Period     int
	Amount     int64
}

// ExtraPaymentInput represents a principal prepayment.
type ExtraPaymentInput struct {
	Date       time.Time
	DebtID     string
	CategoryID string
	Strategy   amortization.Strategy
	Amount     int64
}

// RateChangeInput represents a change of the annual rate.
type RateChangeInput struct {
	EffectiveFrom time.Time
	AnnualRate    decimal.Decimal
	DebtID        string
	Strategy      amortization.Strategy
}

// DebtDetails is a debt with its schedule aggregates.
type DebtDetails struct {
	Debt    domain.LongTermDebt
	Summary amortization.Summary
}

// CreateDebt computes the schedule of a new loan and stores both.
func (uc *DebtUseCase) CreateDebt(ctx context.Context, input CreateDebtInput) (*domain.LongTermDebt, error) {
	now := time.Now().UTC()
	debt := &domain.LongTermDebt{
		ID:                uc.idGen.Generate(),
		Name:              input.Name,
		EntityID:          input.EntityID,
		OriginalPrincipal: input.Principal,
		CurrentPrincipal:  input.Principal,
		AnnualRate:        input.AnnualRate,
		TermMonths:        input.TermMonths,
		StartDate:         period.Day(input.StartDate),
		Method:            domain.MethodFrench,
		Active:            true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := debt.Validate(); err != nil {
		return nil, err
	}

	started := time.Now()
	schedule, err := amortization.ComputeFixedPaymentSchedule(debt.OriginalPrincipal, debt.AnnualRate, debt.TermMonths, debt.StartDate)
	if err != nil {
		return nil, err
	}
	uc.recorder.ObserveEngine("amortization", time.Since(started))

	debt.Schedule = schedule
	debt.MonthlyPayment = schedule[0].PaymentAmount

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := uc.debtRepo.Create(ctx, tx, debt); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	invalidateViews(ctx, uc.cache)
	return debt, nil
}

// GetDebt retrieves a debt with its schedule summary.
func (uc *DebtUseCase) GetDebt(ctx context.Context, id string) (*DebtDetails, error) {
	debt, err := uc.debtRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return &DebtDetails{Debt: *debt, Summary: amortization.Summarize(debt.Schedule)}, nil
}

// ListDebts lists every debt.
func (uc *DebtUseCase) ListDebts(ctx context.Context) ([]domain.LongTermDebt, error) {
	return uc.debtRepo.List(ctx)
}

// RecordPayment applies a payment to one schedule entry and records the
// matching expense movement.
func (uc *DebtUseCase) RecordPayment(ctx context.Context, input RecordPaymentInput) (*domain.LongTermDebt, error) {
	if input.Amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	debt, err := uc.debtRepo.GetByIDForUpdate(ctx, tx, input.DebtID)
	if err != nil {
		return nil, err
	}

	next, ok := amortization.NextUnpaid(debt.Schedule)
	if !ok {
		return nil, fmt.Errorf("%w: loan is fully paid", domain.ErrInvalidStatusTransition)
	}
	target := input.Period
	if target == 0 {
		target = next.Period
	}
	if target != next.Period {
		if _, err := debt.Entry(target); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: period %d must be settled before period %d", domain.ErrInvalidStatusTransition, next.Period, target)
	}

	entry, err := debt.Entry(target)
	if err != nil {
		return nil, err
	}

	updated, surplus, err := amortization.ApplyPayment(*entry, input.Amount)
	if err != nil {
		return nil, err
	}
	if surplus > 0 {
		return nil, fmt.Errorf("%w: payment exceeds the %d outstanding on period %d", domain.ErrInvalidAmount, entry.Outstanding(), target)
	}

	now := time.Now().UTC()
	movement := uc.paymentMovement(debt, input.CategoryID, input.Amount, input.Date, now)
	movement.Description = fmt.Sprintf("%s payment %d", debt.Name, target)
	if err := uc.movementRepo.Create(ctx, tx, &movement); err != nil {
		return nil, err
	}

	updated.MovementID = movement.ID
	*entry = updated
	refreshDebt(debt, now)

	if err := uc.debtRepo.Update(ctx, tx, debt); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	invalidateViews(ctx, uc.cache)
	return debt, nil
}

// ExtraPayment prepays principal and regenerates the unpaid schedule with the
// chosen strategy.
func (uc *DebtUseCase) ExtraPayment(ctx context.Context, input ExtraPaymentInput) (*domain.LongTermDebt, error) {
	if input.Amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	debt, err := uc.debtRepo.GetByIDForUpdate(ctx, tx, input.DebtID)
	if err != nil {
		return nil, err
	}

	from, err := recomputeFrom(debt.Schedule, time.Time{})
	if err != nil {
		return nil, err
	}

	remaining := amortization.PrincipalFrom(debt.Schedule, from)
	if input.Amount > remaining {
		return nil, fmt.Errorf("%w: prepayment exceeds remaining principal %d", domain.ErrInvalidAmount, remaining)
	}

	date := input.Date
	if date.IsZero() {
		date = time.Now().UTC()
	}

	schedule, err := amortization.RecomputeFromPeriod(debt.Schedule, amortization.Recompute{
		StartDate:  debt.StartDate,
		AnnualRate: debt.RateAt(date),
		Strategy:   input.Strategy,
		FromPeriod: from,
		Principal:  remaining - input.Amount,
	})
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	movement := uc.paymentMovement(debt, input.CategoryID, input.Amount, date, now)
	movement.Description = debt.Name + " prepayment"
	if err := uc.movementRepo.Create(ctx, tx, &movement); err != nil {
		return nil, err
	}

	debt.Schedule = schedule
	refreshDebt(debt, now)

	if err := uc.debtRepo.Update(ctx, tx, debt); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	invalidateViews(ctx, uc.cache)
	return debt, nil
}

// ChangeRate records a new annual rate and regenerates the unpaid entries due
// on or after it takes effect.
func (uc *DebtUseCase) ChangeRate(ctx context.Context, input RateChangeInput) (*domain.LongTermDebt, error) {
	if !input.AnnualRate.IsPositive() {
		return nil, fmt.Errorf("%w: rate must be positive", domain.ErrInvalidLoanParameters)
	}
	if input.EffectiveFrom.IsZero() {
		return nil, fmt.Errorf("%w: effective date is required", domain.ErrInvalidLoanParameters)
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	debt, err := uc.debtRepo.GetByIDForUpdate(ctx, tx, input.DebtID)
	if err != nil {
		return nil, err
	}

	effective := period.Day(input.EffectiveFrom)
	debt.RateHistory = append(debt.RateHistory, domain.RateChange{EffectiveFrom: effective, AnnualRate: input.AnnualRate})

	from, err := recomputeFrom(debt.Schedule, effective)
	if err == nil {
		schedule, err := amortization.RecomputeFromPeriod(debt.Schedule, amortization.Recompute{
			StartDate:  debt.StartDate,
			AnnualRate: input.AnnualRate,
			Strategy:   input.Strategy,
			FromPeriod: from,
			Principal:  amortization.PrincipalFrom(debt.Schedule, from),
		})
		if err != nil {
			return nil, err
		}
		debt.Schedule = schedule
	} else if !errors.Is(err, errNothingToRecompute) {
		return nil, err
	}

	refreshDebt(debt, time.Now().UTC())
	if err := uc.debtRepo.Update(ctx, tx, debt); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	invalidateViews(ctx, uc.cache)
	return debt, nil
}

// MarkOverdue flags every unpaid entry due before today across active debts
// and returns how many entries changed.
func (uc *DebtUseCase) MarkOverdue(ctx context.Context, today time.Time) (int, error) {
	debts, err := uc.debtRepo.List(ctx)
	if err != nil {
		return 0, err
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	total := 0
	now := time.Now().UTC()
	for _, d := range debts {
		if !d.Active {
			continue
		}
		if _, overdue := amortization.FirstOverdueEntry(d.Schedule, today); !overdue {
			continue
		}

		debt, err := uc.debtRepo.GetByIDForUpdate(ctx, tx, d.ID)
		if err != nil {
			return 0, err
		}

		schedule, changed := amortization.MarkOverdue(debt.Schedule, today)
		if changed == 0 {
			continue
		}
		debt.Schedule = schedule
		debt.UpdatedAt = now
		if err := uc.debtRepo.Update(ctx, tx, debt); err != nil {
			return 0, err
		}
		total += changed
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}

	if total > 0 {
		zerolog.Ctx(ctx).Info().Int("entries", total).Msg("marked amortization entries overdue")
		invalidateViews(ctx, uc.cache)
	}
	return total, nil
}

func (uc *DebtUseCase) paymentMovement(debt *domain.LongTermDebt, categoryID string, amount int64, date, now time.Time) domain.Movement {
	if categoryID == "" {
		categoryID = DefaultDebtCategory
	}
	if date.IsZero() {
		date = now
	}
	return domain.Movement{
		ID:         uc.idGen.Generate(),
		CategoryID: categoryID,
		EntityID:   debt.EntityID,
		Direction:  domain.DirectionExpense,
		Amount:     amount,
		Date:       period.Day(date),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

var errNothingToRecompute = fmt.Errorf("%w: no unpaid entries to recompute", domain.ErrInvalidLoanParameters)

// recomputeFrom picks the first period due on or after since that follows
// every settled entry. Paid and partially paid entries are never regenerated.
func recomputeFrom(schedule []domain.AmortizationEntry, since time.Time) (int, error) {
	from := 0
	for _, e := range schedule {
		if e.Status == domain.EntryStatusPaid || e.Status == domain.EntryStatusPartial {
			from = 0
			continue
		}
		if from == 0 && !e.DueDate.Before(since) {
			from = e.Period
		}
	}
	if from == 0 {
		return 0, errNothingToRecompute
	}
	return from, nil
}

// refreshDebt re-derives the stored aggregates of a debt from its schedule.
func refreshDebt(debt *domain.LongTermDebt, now time.Time) {
	var principal int64
	payment := int64(0)
	for _, e := range debt.Schedule {
		if e.Status == domain.EntryStatusPaid {
			continue
		}
		principal += e.PrincipalAmount
		if payment == 0 {
			payment = e.PaymentAmount
		}
	}
	debt.CurrentPrincipal = principal
	if payment > 0 {
		debt.MonthlyPayment = payment
	}
	debt.Active = principal > 0
	debt.UpdatedAt = now
}
