package usecase

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/iho/fincore/internal/domain"
	"github.com/iho/fincore/internal/engine/analytics"
	"github.com/iho/fincore/internal/engine/forecast"
	"github.com/iho/fincore/internal/engine/health"
	"github.com/iho/fincore/internal/period"
)

// ReportUseCase builds the read-only derived views: analytics reports,
// health snapshots and cash-flow forecasts.
type ReportUseCase struct {
	movementRepo     MovementRepository
	entityRepo       EntityRepository
	ruleRepo         RecurringRuleRepository
	postingRepo      PostingRepository
	debtRepo         DebtRepository
	contributionRepo ContributionRepository
	views            viewCache
	recorder         Recorder
}

// NewReportUseCase creates a new ReportUseCase. cache and recorder may be nil.
func NewReportUseCase(
	movementRepo MovementRepository,
	entityRepo EntityRepository,
	ruleRepo RecurringRuleRepository,
	postingRepo PostingRepository,
	debtRepo DebtRepository,
	contributionRepo ContributionRepository,
	cache ReportCache,
	cacheTTL time.Duration,
	recorder Recorder,
) *ReportUseCase {
	views := newViewCache(cache, recorder, cacheTTL)
	return &ReportUseCase{
		movementRepo:     movementRepo,
		entityRepo:       entityRepo,
		ruleRepo:         ruleRepo,
		postingRepo:      postingRepo,
		debtRepo:         debtRepo,
		contributionRepo: contributionRepo,
		views:            views,
		recorder:         views.recorder,
	}
}

// AnalyticsInput selects the range and bucketing of a report. An empty
// Granularity is chosen from the range length.
type AnalyticsInput struct {
	Start       time.Time
	End         time.Time
	Granularity domain.PeriodKind
}

// ForecastInput selects the forecast window. Zero values use today, the
// default horizon and monthly buckets.
type ForecastInput struct {
	Start         time.Time
	Period        domain.PeriodKind
	HorizonMonths int
}

// Analytics aggregates movements between Start and End.
func (uc *ReportUseCase) Analytics(ctx context.Context, input AnalyticsInput) (*domain.AnalyticsReport, error) {
	start, end := period.Day(input.Start), period.Day(input.End)
	if end.Before(start) {
		return nil, domain.ErrInvalidPeriodRange
	}
	granularity := input.Granularity
	if granularity == "" {
		granularity = analytics.GranularityFor(start, end)
	}
	if !granularity.IsValid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidPeriodKind, granularity)
	}

	key := fmt.Sprintf("%s:%s:%s", start.Format(time.DateOnly), end.Format(time.DateOnly), granularity)
	report, err := cachedView(ctx, uc.views, "analytics", key, func() (domain.AnalyticsReport, error) {
		var (
			movements []domain.Movement
			entities  []domain.Entity
		)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			movements, err = uc.movementRepo.List(gctx, MovementFilter{From: &start, To: &end})
			return err
		})
		g.Go(func() error {
			var err error
			entities, err = uc.entityRepo.List(gctx)
			return err
		})
		if err := g.Wait(); err != nil {
			return domain.AnalyticsReport{}, err
		}

		names := make(map[string]string, len(entities))
		for _, e := range entities {
			names[e.ID] = e.Name
		}

		started := time.Now()
		report, err := analytics.BuildReport(movements, start, end, granularity, nil, names)
		if err != nil {
			return domain.AnalyticsReport{}, err
		}
		uc.recorder.ObserveEngine("analytics", time.Since(started))

		report.GeneratedAt = time.Now().UTC()
		return report, nil
	})
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// Health computes the financial health snapshot as of today.
func (uc *ReportUseCase) Health(ctx context.Context, today time.Time) (*domain.HealthSnapshot, error) {
	today = period.Day(today)

	snapshot, err := cachedView(ctx, uc.views, "health", today.Format(time.DateOnly), func() (domain.HealthSnapshot, error) {
		var (
			movements []domain.Movement
			debts     []domain.LongTermDebt
		)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			movements, err = uc.movementRepo.List(gctx, MovementFilter{To: &today})
			return err
		})
		g.Go(func() error {
			var err error
			debts, err = uc.debtRepo.List(gctx)
			return err
		})
		if err := g.Wait(); err != nil {
			return domain.HealthSnapshot{}, err
		}

		started := time.Now()
		snapshot := health.ComputeSnapshot(movements, debts, domain.EntityBalances(movements), today)
		uc.recorder.ObserveEngine("health", time.Since(started))

		snapshot.GeneratedAt = time.Now().UTC()
		return snapshot, nil
	})
	if err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// Forecast projects balances from the ledger balance at Start.
func (uc *ReportUseCase) Forecast(ctx context.Context, input ForecastInput) (*domain.CashFlowForecast, error) {
	start := input.Start
	if start.IsZero() {
		start = time.Now().UTC()
	}
	start = period.Day(start)

	horizon := input.HorizonMonths
	if horizon == 0 {
		horizon = DefaultForecastHorizon
	}
	if horizon < 0 || horizon > MaxForecastHorizon {
		return nil, fmt.Errorf("%w: horizon must be between 1 and %d months", domain.ErrInvalidPeriodRange, MaxForecastHorizon)
	}

	key := fmt.Sprintf("%s:%d:%s", start.Format(time.DateOnly), horizon, input.Period)
	fc, err := cachedView(ctx, uc.views, "forecast", key, func() (domain.CashFlowForecast, error) {
		var (
			movements     []domain.Movement
			rules         []domain.RecurringRule
			pending       []domain.RecurringPosting
			debts         []domain.LongTermDebt
			contributions []domain.Contribution
		)
		before := start.AddDate(0, 0, -1)

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			movements, err = uc.movementRepo.List(gctx, MovementFilter{To: &before})
			return err
		})
		g.Go(func() error {
			var err error
			rules, err = uc.ruleRepo.List(gctx)
			return err
		})
		g.Go(func() error {
			var err error
			pending, err = uc.postingRepo.ListPending(gctx)
			return err
		})
		g.Go(func() error {
			var err error
			debts, err = uc.debtRepo.List(gctx)
			return err
		})
		g.Go(func() error {
			var err error
			contributions, err = uc.contributionRepo.List(gctx)
			return err
		})
		if err := g.Wait(); err != nil {
			return domain.CashFlowForecast{}, err
		}

		started := time.Now()
		fc, err := forecast.Generate(forecast.Input{
			Start:          start,
			Period:         input.Period,
			Rules:          rules,
			Pending:        pending,
			Debts:          debts,
			Contributions:  contributions,
			InitialBalance: LedgerBalance(movements),
			HorizonMonths:  horizon,
		})
		if err != nil {
			return domain.CashFlowForecast{}, err
		}
		uc.recorder.ObserveEngine("forecast", time.Since(started))

		fc.GeneratedAt = time.Now().UTC()
		return fc, nil
	})
	if err != nil {
		return nil, err
	}
	return &fc, nil
}

// LedgerBalance is the signed sum of every movement.
func LedgerBalance(movements []domain.Movement) int64 {
	var total int64
	for i := range movements {
		total += movements[i].Signed()
	}
	return total
}
