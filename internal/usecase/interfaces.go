package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/fincore/internal/domain"
)

// Repository methods taking a Transaction run on the pool when tx is nil.

// MovementFilter narrows movement listings. Zero values mean no constraint;
// a zero Limit returns every match.
type MovementFilter struct {
	From       *time.Time
	To         *time.Time
	EntityID   string
	CategoryID string
	Limit      int
	Offset     int
}

// MovementRepository defines data access for movements.
type MovementRepository interface {
	Create(ctx context.Context, tx Transaction, movement *domain.Movement) error
	CreateBatch(ctx context.Context, tx Transaction, movements []domain.Movement) error
	GetByID(ctx context.Context, id string) (*domain.Movement, error)
	UpdateDetails(ctx context.Context, id, description, categoryID string, updatedAt time.Time) error
	Delete(ctx context.Context, tx Transaction, id string) error
	List(ctx context.Context, filter MovementFilter) ([]domain.Movement, error)
}

// EntityRepository defines data access for entities.
type EntityRepository interface {
	Create(ctx context.Context, entity *domain.Entity) error
	GetByID(ctx context.Context, id string) (*domain.Entity, error)
	List(ctx context.Context) ([]domain.Entity, error)
}

// RecurringRuleRepository defines data access for recurring rules.
type RecurringRuleRepository interface {
	Create(ctx context.Context, rule *domain.RecurringRule) error
	GetByID(ctx context.Context, id string) (*domain.RecurringRule, error)
	List(ctx context.Context) ([]domain.RecurringRule, error)
	ListForUpdate(ctx context.Context, tx Transaction) ([]domain.RecurringRule, error)
	Update(ctx context.Context, tx Transaction, rule *domain.RecurringRule) error
}

// PostingRepository defines data access for recurring postings.
type PostingRepository interface {
	Create(ctx context.Context, tx Transaction, posting *domain.RecurringPosting) error
	CreateBatch(ctx context.Context, tx Transaction, postings []domain.RecurringPosting) error
	List(ctx context.Context, tx Transaction) ([]domain.RecurringPosting, error)
	ListPending(ctx context.Context) ([]domain.RecurringPosting, error)
	GetForUpdate(ctx context.Context, tx Transaction, ruleID, periodLabel string) (*domain.RecurringPosting, error)
	Update(ctx context.Context, tx Transaction, posting *domain.RecurringPosting) error
}

// DebtRepository defines data access for long-term debts and their schedules.
type DebtRepository interface {
	Create(ctx context.Context, tx Transaction, debt *domain.LongTermDebt) error
	GetByID(ctx context.Context, id string) (*domain.LongTermDebt, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.LongTermDebt, error)
	List(ctx context.Context) ([]domain.LongTermDebt, error)
	Update(ctx context.Context, tx Transaction, debt *domain.LongTermDebt) error
}

// BudgetRepository defines data access for budgets.
type BudgetRepository interface {
	Create(ctx context.Context, budget *domain.Budget) error
	GetByID(ctx context.Context, id string) (*domain.Budget, error)
	List(ctx context.Context) ([]domain.Budget, error)
}

// AlertRepository defines data access for fired budget alerts.
type AlertRepository interface {
	List(ctx context.Context, budgetID, periodLabel string) ([]domain.BudgetAlert, error)
	// Record stores alerts, ignoring ones whose key already exists.
	Record(ctx context.Context, alerts []domain.BudgetAlert) error
	Dismiss(ctx context.Context, budgetID string, threshold decimal.Decimal, periodLabel string) error
}

// GoalRepository defines data access for goals.
type GoalRepository interface {
	Create(ctx context.Context, goal *domain.Goal) error
	GetByID(ctx context.Context, id string) (*domain.Goal, error)
	List(ctx context.Context) ([]domain.Goal, error)
}

// ContributionRepository defines data access for goal contributions.
type ContributionRepository interface {
	Create(ctx context.Context, tx Transaction, contribution *domain.Contribution) error
	ListByGoal(ctx context.Context, goalID string) ([]domain.Contribution, error)
	List(ctx context.Context) ([]domain.Contribution, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier re-runs an operation on transient storage errors.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// ReportCache stores derived views under keys scoped to a ledger version.
// Bumping the version makes every earlier entry unreachable.
type ReportCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Version(ctx context.Context) (int64, error)
	BumpVersion(ctx context.Context) (int64, error)
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops a claimed key so the request can be retried.
	Release(ctx context.Context, key string) error
}

// Recorder receives operational measurements from use cases.
type Recorder interface {
	ObserveEngine(engine string, d time.Duration)
	RecurringPosted(disposition string, n int)
	AlertsFired(n int)
	CacheLookup(view string, hit bool)
}

// NopRecorder discards measurements.
type NopRecorder struct{}

func (NopRecorder) ObserveEngine(string, time.Duration) {}
func (NopRecorder) RecurringPosted(string, int)         {}
func (NopRecorder) AlertsFired(int)                     {}
func (NopRecorder) CacheLookup(string, bool)            {}
