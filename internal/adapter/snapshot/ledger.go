package snapshot

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/fincore/internal/domain"
	"github.com/iho/fincore/internal/usecase"
)

// ErrReadOnly is returned by every write except alert recording.
var ErrReadOnly = errors.New("snapshot is read-only")

// Ledger holds a loaded snapshot. Fired budget alerts are kept in memory for
// the lifetime of the value so repeated evaluations stay deduplicated.
type Ledger struct {
	entities      []domain.Entity
	movements     []domain.Movement
	rules         []domain.RecurringRule
	postings      []domain.RecurringPosting
	debts         []domain.LongTermDebt
	budgets       []domain.Budget
	goals         []domain.Goal
	contributions []domain.Contribution

	mu     sync.Mutex
	alerts []domain.BudgetAlert
}

func newLedger() *Ledger {
	return &Ledger{}
}

// Counts reports how many records of each kind were loaded.
func (l *Ledger) Counts() map[string]int {
	return map[string]int{
		"entities":        len(l.entities),
		"movements":       len(l.movements),
		"recurring_rules": len(l.rules),
		"postings":        len(l.postings),
		"debts":           len(l.debts),
		"budgets":         len(l.budgets),
		"goals":           len(l.goals),
		"contributions":   len(l.contributions),
	}
}

func (l *Ledger) Movements() *MovementStore { return &MovementStore{l: l} }
func (l *Ledger) Entities() *EntityStore { return &EntityStore{l: l} }
func (l *Ledger) Rules() *RuleStore { return &RuleStore{l: l} }
func (l *Ledger) Postings() *PostingStore { return &PostingStore{l: l} }
func (l *Ledger) Debts() *DebtStore { return &DebtStore{l: l} }
func (l *Ledger) Budgets() *BudgetStore { return &BudgetStore{l: l} }
func (l *Ledger) Alerts() *AlertStore { return &AlertStore{l: l} }
func (l *Ledger) Goals() *GoalStore { return &GoalStore{l: l} }
func (l *Ledger) Contributions() *ContributionStore { return &ContributionStore{l: l} }

// MovementStore implements usecase.MovementRepository.
type MovementStore struct{ l *Ledger }

func (s *MovementStore) Create(context.Context, usecase.Transaction, *domain.Movement) error {
	return ErrReadOnly
}

func (s *MovementStore) CreateBatch(context.Context, usecase.Transaction, []domain.Movement) error {
	return ErrReadOnly
}

func (s *MovementStore) GetByID(_ context.Context, id string) (*domain.Movement, error) {
	for _, m := range s.l.movements {
		if m.ID == id {
			return &m, nil
		}
	}
	return nil, domain.ErrMovementNotFound
}

func (s *MovementStore) UpdateDetails(context.Context, string, string, string, time.Time) error {
	return ErrReadOnly
}

func (s *MovementStore) Delete(context.Context, usecase.Transaction, string) error {
	return ErrReadOnly
}

// List applies the filter and orders by date, then ID.
func (s *MovementStore) List(_ context.Context, filter usecase.MovementFilter) ([]domain.Movement, error) {
	var out []domain.Movement
	for _, m := range s.l.movements {
		if filter.From != nil && m.Date.Before(*filter.From) {
			continue
		}
		if filter.To != nil && m.Date.After(*filter.To) {
			continue
		}
		if filter.EntityID != "" && m.EntityID != filter.EntityID {
			continue
		}
		if filter.CategoryID != "" && m.CategoryID != filter.CategoryID {
			continue
		}
		out = append(out, m)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return nil, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

// EntityStore implements usecase.EntityRepository.
type EntityStore struct{ l *Ledger }

func (s *EntityStore) Create(context.Context, *domain.Entity) error { return ErrReadOnly }

func (s *EntityStore) GetByID(_ context.Context, id string) (*domain.Entity, error) {
	for _, e := range s.l.entities {
		if e.ID == id {
			return &e, nil
		}
	}
	return nil, domain.ErrEntityNotFound
}

func (s *EntityStore) List(context.Context) ([]domain.Entity, error) {
	return append([]domain.Entity(nil), s.l.entities...), nil
}

// RuleStore implements usecase.RecurringRuleRepository.
type RuleStore struct{ l *Ledger }

func (s *RuleStore) Create(context.Context, *domain.RecurringRule) error { return ErrReadOnly }

func (s *RuleStore) GetByID(_ context.Context, id string) (*domain.RecurringRule, error) {
	for _, r := range s.l.rules {
		if r.ID == id {
			return &r, nil
		}
	}
	return nil, domain.ErrRuleNotFound
}

func (s *RuleStore) List(context.Context) ([]domain.RecurringRule, error) {
	return append([]domain.RecurringRule(nil), s.l.rules...), nil
}

func (s *RuleStore) ListForUpdate(ctx context.Context, _ usecase.Transaction) ([]domain.RecurringRule, error) {
	return s.List(ctx)
}

func (s *RuleStore) Update(context.Context, usecase.Transaction, *domain.RecurringRule) error {
	return ErrReadOnly
}

// PostingStore implements usecase.PostingRepository.
type PostingStore struct{ l *Ledger }

func (s *PostingStore) Create(context.Context, usecase.Transaction, *domain.RecurringPosting) error {
	return ErrReadOnly
}

func (s *PostingStore) CreateBatch(context.Context, usecase.Transaction, []domain.RecurringPosting) error {
	return ErrReadOnly
}

func (s *PostingStore) List(context.Context, usecase.Transaction) ([]domain.RecurringPosting, error) {
	return append([]domain.RecurringPosting(nil), s.l.postings...), nil
}

func (s *PostingStore) ListPending(context.Context) ([]domain.RecurringPosting, error) {
	var out []domain.RecurringPosting
	for _, p := range s.l.postings {
		if p.Status == domain.PostingStatusPending {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *PostingStore) GetForUpdate(_ context.Context, _ usecase.Transaction, ruleID, periodLabel string) (*domain.RecurringPosting, error) {
	for _, p := range s.l.postings {
		if p.RuleID == ruleID && p.PeriodLabel == periodLabel {
			return &p, nil
		}
	}
	return nil, domain.ErrPostingNotFound
}

func (s *PostingStore) Update(context.Context, usecase.Transaction, *domain.RecurringPosting) error {
	return ErrReadOnly
}

// DebtStore implements usecase.DebtRepository.
type DebtStore struct{ l *Ledger }

func (s *DebtStore) Create(context.Context, usecase.Transaction, *domain.LongTermDebt) error {
	return ErrReadOnly
}

func (s *DebtStore) GetByID(_ context.Context, id string) (*domain.LongTermDebt, error) {
	for _, d := range s.l.debts {
		if d.ID == id {
			d.Schedule = append([]domain.AmortizationEntry(nil), d.Schedule...)
			return &d, nil
		}
	}
	return nil, domain.ErrDebtNotFound
}

func (s *DebtStore) GetByIDForUpdate(ctx context.Context, _ usecase.Transaction, id string) (*domain.LongTermDebt, error) {
	return s.GetByID(ctx, id)
}

func (s *DebtStore) List(context.Context) ([]domain.LongTermDebt, error) {
	out := make([]domain.LongTermDebt, len(s.l.debts))
	for i, d := range s.l.debts {
		d.Schedule = append([]domain.AmortizationEntry(nil), d.Schedule...)
		out[i] = d
	}
	return out, nil
}

func (s *DebtStore) Update(context.Context, usecase.Transaction, *domain.LongTermDebt) error {
	return ErrReadOnly
}

// BudgetStore implements usecase.BudgetRepository.
type BudgetStore struct{ l *Ledger }

func (s *BudgetStore) Create(context.Context, *domain.Budget) error { return ErrReadOnly }

func (s *BudgetStore) GetByID(_ context.Context, id string) (*domain.Budget, error) {
	for _, b := range s.l.budgets {
		if b.ID == id {
			return &b, nil
		}
	}
	return nil, domain.ErrBudgetNotFound
}

func (s *BudgetStore) List(context.Context) ([]domain.Budget, error) {
	return append([]domain.Budget(nil), s.l.budgets...), nil
}

// AlertStore implements usecase.AlertRepository in memory.
type AlertStore struct{ l *Ledger }

func (s *AlertStore) List(_ context.Context, budgetID, periodLabel string) ([]domain.BudgetAlert, error) {
	s.l.mu.Lock()
	defer s.l.mu.Unlock()

	var out []domain.BudgetAlert
	for _, a := range s.l.alerts {
		if a.BudgetID != budgetID {
			continue
		}
		if a.PeriodLabel != periodLabel {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (s *AlertStore) Record(_ context.Context, alerts []domain.BudgetAlert) error {
	s.l.mu.Lock()
	defer s.l.mu.Unlock()

	seen := make(map[string]bool, len(s.l.alerts))
	for _, a := range s.l.alerts {
		seen[a.Key()] = true
	}
	for _, a := range alerts {
		if seen[a.Key()] {
			continue
		}
		seen[a.Key()] = true
		s.l.alerts = append(s.l.alerts, a)
	}
	return nil
}

func (s *AlertStore) Dismiss(_ context.Context, budgetID string, threshold decimal.Decimal, periodLabel string) error {
	s.l.mu.Lock()
	defer s.l.mu.Unlock()

	key := domain.AlertKey(budgetID, threshold, periodLabel)
	for i := range s.l.alerts {
		if s.l.alerts[i].Key() == key {
			s.l.alerts[i].Dismissed = true
			return nil
		}
	}
	return domain.ErrAlertNotFound
}

// GoalStore implements usecase.GoalRepository.
type GoalStore struct{ l *Ledger }

func (s *GoalStore) Create(context.Context, *domain.Goal) error { return ErrReadOnly }

func (s *GoalStore) GetByID(_ context.Context, id string) (*domain.Goal, error) {
	for _, g := range s.l.goals {
		if g.ID == id {
			return &g, nil
		}
	}
	return nil, domain.ErrGoalNotFound
}

func (s *GoalStore) List(context.Context) ([]domain.Goal, error) {
	return append([]domain.Goal(nil), s.l.goals...), nil
}

// ContributionStore implements usecase.ContributionRepository.
type ContributionStore struct{ l *Ledger }

func (s *ContributionStore) Create(context.Context, usecase.Transaction, *domain.Contribution) error {
	return ErrReadOnly
}

func (s *ContributionStore) ListByGoal(_ context.Context, goalID string) ([]domain.Contribution, error) {
	var out []domain.Contribution
	for _, c := range s.l.contributions {
		if c.GoalID == goalID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *ContributionStore) List(context.Context) ([]domain.Contribution, error) {
	return append([]domain.Contribution(nil), s.l.contributions...), nil
}

var (
	_ usecase.MovementRepository      = (*MovementStore)(nil)
	_ usecase.EntityRepository        = (*EntityStore)(nil)
	_ usecase.RecurringRuleRepository = (*RuleStore)(nil)
	_ usecase.PostingRepository       = (*PostingStore)(nil)
	_ usecase.DebtRepository          = (*DebtStore)(nil)
	_ usecase.BudgetRepository        = (*BudgetStore)(nil)
	_ usecase.AlertRepository         = (*AlertStore)(nil)
	_ usecase.GoalRepository          = (*GoalStore)(nil)
	_ usecase.ContributionRepository  = (*ContributionStore)(nil)
)
