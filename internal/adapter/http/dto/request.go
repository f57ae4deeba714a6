package dto

import (
	"github.com/shopspring/decimal"

	"github.com/iho/fincore/internal/domain"
	"github.com/iho/fincore/internal/engine/amortization"
	"github.com/iho/fincore/internal/usecase"
)

// CreateMovementRequest represents a request to record a movement.
type CreateMovementRequest struct {
	Date        string `json:"date"`
	Description string `json:"description"`
	CategoryID  string `json:"category_id"`
	EntityID    string `json:"entity_id,omitempty"`
	Direction   string `json:"direction"`
	Amount      Amount `json:"amount"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateMovementRequest) ToUseCaseInput() (usecase.CreateMovementInput, error) {
	date, err := ParseDate(r.Date)
	if err != nil {
		return usecase.CreateMovementInput{}, err
	}

	return usecase.CreateMovementInput{
		Date:        date,
		Description: r.Description,
		CategoryID:  r.CategoryID,
		EntityID:    r.EntityID,
		Direction:   domain.Direction(r.Direction),
		Amount:      r.Amount.Cents(),
	}, nil
}

// UpdateMovementRequest carries the editable fields of a movement.
type UpdateMovementRequest struct {
	Description *string `json:"description,omitempty"`
	CategoryID  *string `json:"category_id,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *UpdateMovementRequest) ToUseCaseInput() usecase.UpdateMovementInput {
	return usecase.UpdateMovementInput{
		Description: r.Description,
		CategoryID:  r.CategoryID,
	}
}

// CreateEntityRequest represents a request to create an entity.
type CreateEntityRequest struct {
	Name string `json:"name"`
}

// CreateRuleRequest represents a request to create a recurring rule.
// AutoPost defaults to true.
type CreateRuleRequest struct {
	StartDate       string  `json:"start_date"`
	EndDate         *string `json:"end_date,omitempty"`
	Description     string  `json:"description"`
	CategoryID      string  `json:"category_id"`
	EntityID        string  `json:"entity_id,omitempty"`
	Direction       string  `json:"direction"`
	Frequency       string  `json:"frequency"`
	Amount          Amount  `json:"amount"`
	AutoPost        *bool   `json:"auto_post,omitempty"`
	EstimatedAmount bool    `json:"estimated_amount"`
	BackfillMissed  bool    `json:"backfill_missed"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateRuleRequest) ToUseCaseInput() (usecase.CreateRuleInput, error) {
	start, err := ParseDate(r.StartDate)
	if err != nil {
		return usecase.CreateRuleInput{}, err
	}
	end, err := parseOptionalDate(r.EndDate)
	if err != nil {
		return usecase.CreateRuleInput{}, err
	}

	autoPost := true
	if r.AutoPost != nil {
		autoPost = *r.AutoPost
	}

	return usecase.CreateRuleInput{
		StartDate:       start,
		EndDate:         end,
		Description:     r.Description,
		CategoryID:      r.CategoryID,
		EntityID:        r.EntityID,
		Direction:       domain.Direction(r.Direction),
		Frequency:       domain.Frequency(r.Frequency),
		Amount:          r.Amount.Cents(),
		AutoPost:        autoPost,
		EstimatedAmount: r.EstimatedAmount,
		BackfillMissed:  r.BackfillMissed,
	}, nil
}

// ConfirmPostingRequest optionally adjusts the amount of a pending posting.
type ConfirmPostingRequest struct {
	Amount *Amount `json:"amount,omitempty"`
}

// CreateDebtRequest represents a request to register a loan.
type CreateDebtRequest struct {
	StartDate  string          `json:"start_date"`
	AnnualRate decimal.Decimal `json:"annual_rate"`
	Name       string          `json:"name"`
	EntityID   string          `json:"entity_id,omitempty"`
	Principal  Amount          `json:"principal"`
	TermMonths int             `json:"term_months"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateDebtRequest) ToUseCaseInput() (usecase.CreateDebtInput, error) {
	start, err := ParseDate(r.StartDate)
	if err != nil {
		return usecase.CreateDebtInput{}, err
	}

	return usecase.CreateDebtInput{
		StartDate:  start,
		AnnualRate: r.AnnualRate,
		Name:       r.Name,
		EntityID:   r.EntityID,
		Principal:  r.Principal.Cents(),
		TermMonths: r.TermMonths,
	}, nil
}

// RecordPaymentRequest represents a scheduled loan payment. A zero period
// pays the earliest unpaid entry.
type RecordPaymentRequest struct {
	Date       string `json:"date"`
	CategoryID string `json:"category_id,omitempty"`
	Period     int    `json:"period,omitempty"`
	Amount     Amount `json:"amount"`
}

// ToUseCaseInput converts to use case input.
func (r *RecordPaymentRequest) ToUseCaseInput(debtID string) (usecase.RecordPaymentInput, error) {
	date, err := ParseDate(r.Date)
	if err != nil {
		return usecase.RecordPaymentInput{}, err
	}

	return usecase.RecordPaymentInput{
		Date:       date,
		DebtID:     debtID,
		CategoryID: r.CategoryID,
		Period:     r.Period,
		Amount:     r.Amount.Cents(),
	}, nil
}

// ExtraPaymentRequest represents a principal prepayment.
type ExtraPaymentRequest struct {
	Date       string `json:"date"`
	CategoryID string `json:"category_id,omitempty"`
	Strategy   string `json:"strategy,omitempty"`
	Amount     Amount `json:"amount"`
}

// ToUseCaseInput converts to use case input.
func (r *ExtraPaymentRequest) ToUseCaseInput(debtID string) (usecase.ExtraPaymentInput, error) {
	date, err := ParseDate(r.Date)
	if err != nil {
		return usecase.ExtraPaymentInput{}, err
	}

	return usecase.ExtraPaymentInput{
		Date:       date,
		DebtID:     debtID,
		CategoryID: r.CategoryID,
		Strategy:   amortization.Strategy(r.Strategy),
		Amount:     r.Amount.Cents(),
	}, nil
}

// RateChangeRequest represents a new annual rate for a loan.
type RateChangeRequest struct {
	EffectiveFrom string          `json:"effective_from"`
	AnnualRate    decimal.Decimal `json:"annual_rate"`
	Strategy      string          `json:"strategy,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *RateChangeRequest) ToUseCaseInput(debtID string) (usecase.RateChangeInput, error) {
	from, err := ParseDate(r.EffectiveFrom)
	if err != nil {
		return usecase.RateChangeInput{}, err
	}

	return usecase.RateChangeInput{
		EffectiveFrom: from,
		AnnualRate:    r.AnnualRate,
		DebtID:        debtID,
		Strategy:      amortization.Strategy(r.Strategy),
	}, nil
}

// CreateBudgetRequest represents a request to create a budget.
type CreateBudgetRequest struct {
	RolloverCap     *Amount           `json:"rollover_cap,omitempty"`
	Name            string            `json:"name"`
	Period          string            `json:"period"`
	CategoryIDs     []string          `json:"category_ids"`
	EntityIDs       []string          `json:"entity_ids,omitempty"`
	AlertThresholds []decimal.Decimal `json:"alert_thresholds,omitempty"`
	LimitAmount     Amount            `json:"limit_amount"`
	Rollover        bool              `json:"rollover"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateBudgetRequest) ToUseCaseInput() usecase.CreateBudgetInput {
	return usecase.CreateBudgetInput{
		RolloverCap:     r.RolloverCap.CentsPtr(),
		Name:            r.Name,
		Period:          domain.PeriodKind(r.Period),
		CategoryIDs:     r.CategoryIDs,
		EntityIDs:       r.EntityIDs,
		AlertThresholds: r.AlertThresholds,
		LimitAmount:     r.LimitAmount.Cents(),
		Rollover:        r.Rollover,
	}
}

// DismissAlertRequest identifies a fired alert.
type DismissAlertRequest struct {
	Threshold   decimal.Decimal `json:"threshold"`
	PeriodLabel string          `json:"period_label"`
}

// CreateGoalRequest represents a request to create a savings goal.
type CreateGoalRequest struct {
	TargetDate   *string `json:"target_date,omitempty"`
	Name         string  `json:"name"`
	TargetAmount Amount  `json:"target_amount"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateGoalRequest) ToUseCaseInput() (usecase.CreateGoalInput, error) {
	target, err := parseOptionalDate(r.TargetDate)
	if err != nil {
		return usecase.CreateGoalInput{}, err
	}

	return usecase.CreateGoalInput{
		TargetDate:   target,
		Name:         r.Name,
		TargetAmount: r.TargetAmount.Cents(),
	}, nil
}

// ContributeRequest represents money set aside for a goal.
type ContributeRequest struct {
	Date           string `json:"date"`
	MovementID     string `json:"movement_id,omitempty"`
	CategoryID     string `json:"category_id,omitempty"`
	EntityID       string `json:"entity_id,omitempty"`
	Amount         Amount `json:"amount"`
	RecordMovement bool   `json:"record_movement"`
}

// ToUseCaseInput converts to use case input.
func (r *ContributeRequest) ToUseCaseInput(goalID string) (usecase.ContributeInput, error) {
	date, err := ParseDate(r.Date)
	if err != nil {
		return usecase.ContributeInput{}, err
	}

	return usecase.ContributeInput{
		Date:           date,
		GoalID:         goalID,
		MovementID:     r.MovementID,
		CategoryID:     r.CategoryID,
		EntityID:       r.EntityID,
		Amount:         r.Amount.Cents(),
		RecordMovement: r.RecordMovement,
	}, nil
}
