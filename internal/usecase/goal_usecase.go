package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/fincore/internal/domain"
	"github.com/iho/fincore/internal/engine/analytics"
	"github.com/iho/fincore/internal/period"
)

// GoalUseCase handles savings goals and contributions.
type GoalUseCase struct {
	txManager        TransactionManager
	goalRepo         GoalRepository
	contributionRepo ContributionRepository
	movementRepo     MovementRepository
	idGen            IDGenerator
	cache            ReportCache
}

// NewGoalUseCase creates a new GoalUseCase.
func NewGoalUseCase(
	txManager TransactionManager,
	goalRepo GoalRepository,
	contributionRepo ContributionRepository,
	movementRepo MovementRepository,
	idGen IDGenerator,
	cache ReportCache,
) *GoalUseCase {
	return &GoalUseCase{
		txManager:        txManager,
		goalRepo:         goalRepo,
		contributionRepo: contributionRepo,
		movementRepo:     movementRepo,
		idGen:            idGen,
		cache:            cache,
	}
}

// CreateGoalInput represents input for creating a goal.
type CreateGoalInput struct {
	TargetDate   *time.Time
	Name         string
	TargetAmount int64
}

// ContributeInput represents money set aside for a goal. A non-empty
// MovementID links the contribution to an existing movement; otherwise
// RecordMovement records an expense movement for it.
type ContributeInput struct {
	Date           time.Time
	GoalID         string
	MovementID     string
	CategoryID     string
	EntityID       string
	Amount         int64
	RecordMovement bool
}

// CreateGoal validates and stores a goal.
func (uc *GoalUseCase) CreateGoal(ctx context.Context, input CreateGoalInput) (*domain.Goal, error) {
	now := time.Now().UTC()
	goal := &domain.Goal{
		ID:           uc.idGen.Generate(),
		Name:         input.Name,
		TargetAmount: input.TargetAmount,
		TargetDate:   input.TargetDate,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := goal.Validate(); err != nil {
		return nil, err
	}

	if err := uc.goalRepo.Create(ctx, goal); err != nil {
		return nil, err
	}

	return goal, nil
}

// ListGoals lists every goal.
func (uc *GoalUseCase) ListGoals(ctx context.Context) ([]domain.Goal, error) {
	return uc.goalRepo.List(ctx)
}

// Contribute records a contribution towards a goal.
func (uc *GoalUseCase) Contribute(ctx context.Context, input ContributeInput) (*domain.Contribution, error) {
	if _, err := uc.goalRepo.GetByID(ctx, input.GoalID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	date := input.Date
	if date.IsZero() {
		date = now
	}
	contribution := &domain.Contribution{
		ID:         uc.idGen.Generate(),
		GoalID:     input.GoalID,
		MovementID: input.MovementID,
		Amount:     input.Amount,
		Date:       period.Day(date),
		CreatedAt:  now,
	}

	if err := contribution.Validate(); err != nil {
		return nil, err
	}

	if contribution.MovementID != "" {
		if _, err := uc.movementRepo.GetByID(ctx, contribution.MovementID); err != nil {
			return nil, err
		}
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if contribution.MovementID == "" && input.RecordMovement {
		movement := &domain.Movement{
			ID:          uc.idGen.Generate(),
			Description: "goal contribution",
			CategoryID:  input.CategoryID,
			EntityID:    input.EntityID,
			Direction:   domain.DirectionExpense,
			Amount:      contribution.Amount,
			Date:        contribution.Date,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := uc.movementRepo.Create(ctx, tx, movement); err != nil {
			return nil, err
		}
		contribution.MovementID = movement.ID
	}

	if err := uc.contributionRepo.Create(ctx, tx, contribution); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	invalidateViews(ctx, uc.cache)
	return contribution, nil
}

// Progress derives the funding state of a goal as of today.
func (uc *GoalUseCase) Progress(ctx context.Context, goalID string, today time.Time) (*domain.GoalProgress, error) {
	goal, err := uc.goalRepo.GetByID(ctx, goalID)
	if err != nil {
		return nil, err
	}

	contributions, err := uc.contributionRepo.ListByGoal(ctx, goalID)
	if err != nil {
		return nil, err
	}

	progress := ComputeGoalProgress(*goal, contributions, today)
	return &progress, nil
}

// ComputeGoalProgress sums the contributions made up to today and projects
// the completion date from the average daily contribution since the first
// one. The projection is nil for completed goals and goals without
// contributions.
func ComputeGoalProgress(goal domain.Goal, contributions []domain.Contribution, today time.Time) domain.GoalProgress {
	today = period.Day(today)
	progress := domain.GoalProgress{GoalID: goal.ID}

	var first time.Time
	for _, c := range contributions {
		if c.GoalID != goal.ID {
			continue
		}
		d := period.Day(c.Date)
		if d.After(today) {
			continue
		}
		progress.CurrentAmount += c.Amount
		if first.IsZero() || d.Before(first) {
			first = d
		}
	}

	progress.Percentage = analytics.Percentage(progress.CurrentAmount, goal.TargetAmount)
	if progress.CurrentAmount >= goal.TargetAmount {
		progress.Completed = true
		progress.OverfundedAmount = progress.CurrentAmount - goal.TargetAmount
		return progress
	}
	progress.RemainingAmount = goal.TargetAmount - progress.CurrentAmount

	if progress.CurrentAmount == 0 {
		return progress
	}

	elapsed := int64(today.Sub(first).Hours()/24) + 1
	perDay := decimal.NewFromInt(progress.CurrentAmount).Div(decimal.NewFromInt(elapsed))
	days := decimal.NewFromInt(progress.RemainingAmount).Div(perDay).Ceil().IntPart()
	projected := today.AddDate(0, 0, int(days))
	progress.ProjectedCompletion = &projected
	return progress
}
