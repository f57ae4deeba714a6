package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/iho/fincore/internal/domain"
	"github.com/iho/fincore/internal/engine/budget"
	"github.com/iho/fincore/internal/period"
)

// DefaultAlertThresholds apply to budgets created without any.
var DefaultAlertThresholds = []decimal.Decimal{
	decimal.RequireFromString("0.8"),
	decimal.NewFromInt(1),
}

// BudgetUseCase handles budgets and their alerts.
type BudgetUseCase struct {
	budgetRepo   BudgetRepository
	alertRepo    AlertRepository
	movementRepo MovementRepository
	idGen        IDGenerator
	recorder     Recorder
}

// NewBudgetUseCase creates a new BudgetUseCase.
func NewBudgetUseCase(
	budgetRepo BudgetRepository,
	alertRepo AlertRepository,
	movementRepo MovementRepository,
	idGen IDGenerator,
	recorder Recorder,
) *BudgetUseCase {
	if recorder == nil {
		recorder = NopRecorder{}
	}
	return &BudgetUseCase{
		budgetRepo:   budgetRepo,
		alertRepo:    alertRepo,
		movementRepo: movementRepo,
		idGen:        idGen,
		recorder:     recorder,
	}
}

// CreateBudgetInput represents input for creating a budget.
type CreateBudgetInput struct {
	RolloverCap     *int64
	Name            string
	Period          domain.PeriodKind
	CategoryIDs     []string
	EntityIDs       []string
	AlertThresholds []decimal.Decimal
	LimitAmount     int64
	Rollover        bool
}

// CreateBudget validates and stores a budget.
func (uc *BudgetUseCase) CreateBudget(ctx context.Context, input CreateBudgetInput) (*domain.Budget, error) {
	thresholds := input.AlertThresholds
	if len(thresholds) == 0 {
		thresholds = DefaultAlertThresholds
	}

	now := time.Now().UTC()
	b := &domain.Budget{
		ID:              uc.idGen.Generate(),
		Name:            input.Name,
		LimitAmount:     input.LimitAmount,
		CategoryIDs:     input.CategoryIDs,
		EntityIDs:       input.EntityIDs,
		Period:          input.Period,
		AlertThresholds: thresholds,
		Rollover:        input.Rollover,
		RolloverCap:     input.RolloverCap,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := b.Validate(); err != nil {
		return nil, err
	}

	if err := uc.budgetRepo.Create(ctx, b); err != nil {
		return nil, err
	}

	return b, nil
}

// GetBudget retrieves a budget by ID.
func (uc *BudgetUseCase) GetBudget(ctx context.Context, id string) (*domain.Budget, error) {
	return uc.budgetRepo.GetByID(ctx, id)
}

// ListBudgets lists every budget.
func (uc *BudgetUseCase) ListBudgets(ctx context.Context) ([]domain.Budget, error) {
	return uc.budgetRepo.List(ctx)
}

// Status evaluates a budget for the period containing today. Thresholds
// crossed for the first time are recorded as fired and reported as pending
// in the returned status.
func (uc *BudgetUseCase) Status(ctx context.Context, id string, today time.Time) (*domain.BudgetStatus, error) {
	b, err := uc.budgetRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return uc.evaluate(ctx, *b, today)
}

// Statuses evaluates every budget.
func (uc *BudgetUseCase) Statuses(ctx context.Context, today time.Time) ([]domain.BudgetStatus, error) {
	budgets, err := uc.budgetRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]domain.BudgetStatus, 0, len(budgets))
	for _, b := range budgets {
		status, err := uc.evaluate(ctx, b, today)
		if err != nil {
			return nil, err
		}
		out = append(out, *status)
	}
	return out, nil
}

func (uc *BudgetUseCase) evaluate(ctx context.Context, b domain.Budget, today time.Time) (*domain.BudgetStatus, error) {
	current, err := period.Containing(b.Period, today)
	if err != nil {
		return nil, err
	}

	from := current.Start
	if b.Rollover {
		prev, err := period.Previous(b.Period, today)
		if err != nil {
			return nil, err
		}
		from = prev.Start
	}

	var (
		movements []domain.Movement
		fired     []domain.BudgetAlert
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		movements, err = uc.movementRepo.List(gctx, MovementFilter{From: &from, To: &current.End})
		return err
	})
	g.Go(func() error {
		var err error
		fired, err = uc.alertRepo.List(gctx, b.ID, current.Label)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	started := time.Now()
	var prior int64
	if b.Rollover {
		prior, err = budget.PriorPeriodRemaining(b, movements, today)
		if err != nil {
			return nil, err
		}
	}

	status, err := budget.Evaluate(b, movements, fired, prior, today)
	if err != nil {
		return nil, err
	}
	uc.recorder.ObserveEngine("budget", time.Since(started))

	known := make(map[string]bool, len(fired))
	for i := range fired {
		known[fired[i].Key()] = true
	}

	var alerts []domain.BudgetAlert
	now := time.Now().UTC()
	for _, th := range status.PendingAlerts {
		if known[domain.AlertKey(b.ID, th, status.PeriodLabel)] {
			// Dismissed earlier; still reported as pending but not fired again.
			continue
		}
		alerts = append(alerts, domain.BudgetAlert{
			BudgetID:    b.ID,
			Threshold:   th,
			PeriodLabel: status.PeriodLabel,
			FiredAt:     now,
		})
	}

	if len(alerts) > 0 {
		if err := uc.alertRepo.Record(ctx, alerts); err != nil {
			return nil, err
		}
		uc.recorder.AlertsFired(len(alerts))
		zerolog.Ctx(ctx).Info().
			Str("budget_id", b.ID).
			Str("period", status.PeriodLabel).
			Int("alerts", len(alerts)).
			Msg("budget alerts fired")
	}

	return &status, nil
}

// DismissAlert marks a fired alert as dismissed.
func (uc *BudgetUseCase) DismissAlert(ctx context.Context, budgetID string, threshold decimal.Decimal, periodLabel string) error {
	if _, err := uc.budgetRepo.GetByID(ctx, budgetID); err != nil {
		return err
	}
	return uc.alertRepo.Dismiss(ctx, budgetID, threshold, periodLabel)
}

// ListAlerts lists the alerts fired for a budget in one period.
func (uc *BudgetUseCase) ListAlerts(ctx context.Context, budgetID, periodLabel string) ([]domain.BudgetAlert, error) {
	return uc.alertRepo.List(ctx, budgetID, periodLabel)
}
