package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/fincore/internal/domain"
	"github.com/iho/fincore/internal/engine/recurring"
	"github.com/iho/fincore/internal/period"
)

// RecurringUseCase handles recurring rules and the due-check sweep.
type RecurringUseCase struct {
	txManager    TransactionManager
	ruleRepo     RecurringRuleRepository
	postingRepo  PostingRepository
	movementRepo MovementRepository
	idGen        IDGenerator
	retrier      Retrier
	cache        ReportCache
	recorder     Recorder
}

// NewRecurringUseCase creates a new RecurringUseCase. retrier, cache and
// recorder may be nil.
func NewRecurringUseCase(
	txManager TransactionManager,
	ruleRepo RecurringRuleRepository,
	postingRepo PostingRepository,
	movementRepo MovementRepository,
	idGen IDGenerator,
	retrier Retrier,
	cache ReportCache,
	recorder Recorder,
) *RecurringUseCase {
	if recorder == nil {
		recorder = NopRecorder{}
	}
	return &RecurringUseCase{
		txManager:    txManager,
		ruleRepo:     ruleRepo,
		postingRepo:  postingRepo,
		movementRepo: movementRepo,
		idGen:        idGen,
		retrier:      retrier,
		cache:        cache,
		recorder:     recorder,
	}
}

// CreateRuleInput represents input for creating a recurring rule.
type CreateRuleInput struct {
	StartDate       time.Time
	EndDate         *time.Time
	Description     string
	CategoryID      string
	EntityID        string
	Direction       domain.Direction
	Frequency       domain.Frequency
	Amount          int64
	AutoPost        bool
	EstimatedAmount bool
	BackfillMissed  bool
}

// DueCheckResult summarises one sweep.
type DueCheckResult struct {
	Movements    []domain.Movement
	Queued       []domain.RecurringPosting
	ExpiredRules []string
	RulesTouched int
}

// CreateRule creates an active rule first due on its start date.
func (uc *RecurringUseCase) CreateRule(ctx context.Context, input CreateRuleInput) (*domain.RecurringRule, error) {
	now := time.Now().UTC()
	start := period.Day(input.StartDate)
	rule := &domain.RecurringRule{
		ID:              uc.idGen.Generate(),
		Description:     input.Description,
		CategoryID:      input.CategoryID,
		EntityID:        input.EntityID,
		Direction:       input.Direction,
		Frequency:       input.Frequency,
		Amount:          input.Amount,
		StartDate:       start,
		NextDueDate:     start,
		EndDate:         input.EndDate,
		Active:          true,
		AutoPost:        input.AutoPost,
		EstimatedAmount: input.EstimatedAmount,
		BackfillMissed:  input.BackfillMissed,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := rule.Validate(); err != nil {
		return nil, err
	}

	if err := uc.ruleRepo.Create(ctx, rule); err != nil {
		return nil, err
	}

	invalidateViews(ctx, uc.cache)
	return rule, nil
}

// GetRule retrieves a rule by ID.
func (uc *RecurringUseCase) GetRule(ctx context.Context, id string) (*domain.RecurringRule, error) {
	return uc.ruleRepo.GetByID(ctx, id)
}

// ListRules lists every rule.
func (uc *RecurringUseCase) ListRules(ctx context.Context) ([]domain.RecurringRule, error) {
	return uc.ruleRepo.List(ctx)
}

// DueRules returns the rules with an unhandled occurrence on or before today.
func (uc *RecurringUseCase) DueRules(ctx context.Context, today time.Time) ([]domain.RecurringRule, error) {
	rules, err := uc.ruleRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	postings, err := uc.postingRepo.List(ctx, nil)
	if err != nil {
		return nil, err
	}

	return recurring.DueRules(rules, postings, today), nil
}

// RunDueCheck posts or queues every missed occurrence up to today and moves
// each rule's next due date forward. The whole sweep commits atomically and
// is retried on serialization failures.
func (uc *RecurringUseCase) RunDueCheck(ctx context.Context, today time.Time) (*DueCheckResult, error) {
	var result *DueCheckResult
	op := func() error {
		r, err := uc.runDueCheck(ctx, today)
		if err != nil {
			return err
		}
		result = r
		return nil
	}

	var err error
	if uc.retrier != nil {
		err = uc.retrier.Retry(ctx, op)
	} else {
		err = op()
	}
	if err != nil {
		return nil, err
	}

	uc.recorder.RecurringPosted(string(recurring.DispositionPost), len(result.Movements))
	uc.recorder.RecurringPosted(string(recurring.DispositionConfirm), len(result.Queued))

	zerolog.Ctx(ctx).Info().
		Int("posted", len(result.Movements)).
		Int("queued", len(result.Queued)).
		Int("expired", len(result.ExpiredRules)).
		Msg("recurring due-check complete")

	if result.RulesTouched > 0 {
		invalidateViews(ctx, uc.cache)
	}
	return result, nil
}

func (uc *RecurringUseCase) runDueCheck(ctx context.Context, today time.Time) (*DueCheckResult, error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	rules, err := uc.ruleRepo.ListForUpdate(ctx, tx)
	if err != nil {
		return nil, err
	}

	postings, err := uc.postingRepo.List(ctx, tx)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	idx := recurring.IndexPostings(postings)
	plans := make([]recurring.Plan, 0, len(rules))
	for _, rule := range rules {
		plan, err := recurring.PlanRule(rule, idx, today)
		if err != nil {
			return nil, err
		}
		if plan.Changed(rule) {
			plans = append(plans, plan)
		}
	}
	uc.recorder.ObserveEngine("recurring", time.Since(started))

	result := &DueCheckResult{}
	now := time.Now().UTC()
	var newPostings []domain.RecurringPosting
	for _, plan := range plans {
		for _, occ := range plan.Occurrences {
			posting := domain.RecurringPosting{
				RuleID:      plan.Rule.ID,
				PeriodLabel: occ.PeriodLabel,
				DueDate:     occ.DueDate,
				Amount:      plan.Rule.Amount,
				Status:      domain.PostingStatusPending,
				CreatedAt:   now,
			}

			if occ.Disposition == recurring.DispositionPost {
				movement := movementFromRule(&plan.Rule, occ.DueDate, occ.PeriodLabel, plan.Rule.Amount, uc.idGen.Generate(), now)
				posting.Status = domain.PostingStatusPosted
				posting.MovementID = movement.ID
				result.Movements = append(result.Movements, movement)
			} else {
				result.Queued = append(result.Queued, posting)
			}
			newPostings = append(newPostings, posting)
		}
	}

	if err := uc.movementRepo.CreateBatch(ctx, tx, result.Movements); err != nil {
		return nil, err
	}
	if err := uc.postingRepo.CreateBatch(ctx, tx, newPostings); err != nil {
		return nil, err
	}

	for _, plan := range plans {
		plan.Rule.UpdatedAt = now
		if err := uc.ruleRepo.Update(ctx, tx, &plan.Rule); err != nil {
			return nil, err
		}
		if plan.Expired {
			result.ExpiredRules = append(result.ExpiredRules, plan.Rule.ID)
		}
		result.RulesTouched++
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return result, nil
}

// PauseRule deactivates a rule.
func (uc *RecurringUseCase) PauseRule(ctx context.Context, id string) (*domain.RecurringRule, error) {
	rule, err := uc.ruleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	paused := recurring.Pause(*rule)
	paused.UpdatedAt = time.Now().UTC()
	if err := uc.ruleRepo.Update(ctx, nil, &paused); err != nil {
		return nil, err
	}

	invalidateViews(ctx, uc.cache)
	return &paused, nil
}

// ResumeRule reactivates a paused rule from the first period on or after today.
func (uc *RecurringUseCase) ResumeRule(ctx context.Context, id string, today time.Time) (*domain.RecurringRule, error) {
	rule, err := uc.ruleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	resumed, err := recurring.Resume(*rule, today)
	if err != nil {
		return nil, err
	}
	resumed.UpdatedAt = time.Now().UTC()
	if err := uc.ruleRepo.Update(ctx, nil, &resumed); err != nil {
		return nil, err
	}

	invalidateViews(ctx, uc.cache)
	return &resumed, nil
}

// ListPending lists occurrences awaiting confirmation.
func (uc *RecurringUseCase) ListPending(ctx context.Context) ([]domain.RecurringPosting, error) {
	return uc.postingRepo.ListPending(ctx)
}

// ConfirmPosting turns a queued occurrence into a movement. A nil amount
// keeps the amount the rule had when the occurrence was queued.
func (uc *RecurringUseCase) ConfirmPosting(ctx context.Context, ruleID, periodLabel string, amount *int64) (*domain.Movement, error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	posting, err := uc.postingRepo.GetForUpdate(ctx, tx, ruleID, periodLabel)
	if err != nil {
		return nil, err
	}
	if posting.Status != domain.PostingStatusPending {
		return nil, domain.ErrPostingNotPending
	}

	rule, err := uc.ruleRepo.GetByID(ctx, ruleID)
	if err != nil {
		return nil, err
	}

	value := posting.Amount
	if amount != nil {
		value = *amount
	}

	now := time.Now().UTC()
	movement := movementFromRule(rule, posting.DueDate, posting.PeriodLabel, value, uc.idGen.Generate(), now)
	if err := movement.Validate(); err != nil {
		return nil, err
	}
	if err := uc.movementRepo.Create(ctx, tx, &movement); err != nil {
		return nil, err
	}

	posting.Status = domain.PostingStatusPosted
	posting.MovementID = movement.ID
	posting.Amount = value
	if err := uc.postingRepo.Update(ctx, tx, posting); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	invalidateViews(ctx, uc.cache)
	return &movement, nil
}

func movementFromRule(rule *domain.RecurringRule, due time.Time, label string, amount int64, id string, now time.Time) domain.Movement {
	return domain.Movement{
		ID:              id,
		Description:     rule.Description,
		CategoryID:      rule.CategoryID,
		EntityID:        rule.EntityID,
		Direction:       rule.Direction,
		Amount:          amount,
		Date:            due,
		RecurringRuleID: rule.ID,
		PeriodLabel:     label,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}
