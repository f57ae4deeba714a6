package mocks

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/fincore/internal/domain"
	"github.com/iho/fincore/internal/usecase"
)

// MockMovementRepository is a mock implementation of MovementRepository.
type MockMovementRepository struct {
	mu        sync.RWMutex
	movements map[string]*domain.Movement

	// BatchCalls counts CreateBatch calls served by the in-memory store.
	BatchCalls int

	CreateFunc        func(ctx context.Context, tx usecase.Transaction, movement *domain.Movement) error
	CreateBatchFunc   func(ctx context.Context, tx usecase.Transaction, movements []domain.Movement) error
	GetByIDFunc       func(ctx context.Context, id string) (*domain.Movement, error)
	UpdateDetailsFunc func(ctx context.Context, id, description, categoryID string, updatedAt time.Time) error
	DeleteFunc        func(ctx context.Context, tx usecase.Transaction, id string) error
	ListFunc          func(ctx context.Context, filter usecase.MovementFilter) ([]domain.Movement, error)
}

func NewMockMovementRepository(seed ...domain.Movement) *MockMovementRepository {
	m := &MockMovementRepository{movements: make(map[string]*domain.Movement)}
	for i := range seed {
		mv := seed[i]
		m.movements[mv.ID] = &mv
	}
	return m
}

func (m *MockMovementRepository) Create(ctx context.Context, tx usecase.Transaction, movement *domain.Movement) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, movement)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *movement
	m.movements[movement.ID] = &cp
	return nil
}

func (m *MockMovementRepository) CreateBatch(ctx context.Context, tx usecase.Transaction, movements []domain.Movement) error {
	if m.CreateBatchFunc != nil {
		return m.CreateBatchFunc(ctx, tx, movements)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.BatchCalls++
	for i := range movements {
		cp := movements[i]
		m.movements[cp.ID] = &cp
	}
	return nil
}

func (m *MockMovementRepository) GetByID(ctx context.Context, id string) (*domain.Movement, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if mv, ok := m.movements[id]; ok {
		cp := *mv
		return &cp, nil
	}
	return nil, domain.ErrMovementNotFound
}

func (m *MockMovementRepository) UpdateDetails(ctx context.Context, id, description, categoryID string, updatedAt time.Time) error {
	if m.UpdateDetailsFunc != nil {
		return m.UpdateDetailsFunc(ctx, id, description, categoryID, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	mv, ok := m.movements[id]
	if !ok {
		return domain.ErrMovementNotFound
	}
	mv.Description = description
	mv.CategoryID = categoryID
	mv.UpdatedAt = updatedAt
	return nil
}

func (m *MockMovementRepository) Delete(ctx context.Context, tx usecase.Transaction, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, tx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.movements[id]; !ok {
		return domain.ErrMovementNotFound
	}
	delete(m.movements, id)
	return nil
}

func (m *MockMovementRepository) List(ctx context.Context, filter usecase.MovementFilter) ([]domain.Movement, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []domain.Movement
	for _, mv := range m.movements {
		if filter.From != nil && mv.Date.Before(*filter.From) {
			continue
		}
		if filter.To != nil && mv.Date.After(*filter.To) {
			continue
		}
		if filter.EntityID != "" && mv.EntityID != filter.EntityID {
			continue
		}
		if filter.CategoryID != "" && mv.CategoryID != filter.CategoryID {
			continue
		}
		out = append(out, *mv)
	}
	sort.Slice(out, func(i, j int) bool {
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

// MockEntityRepository is a mock implementation of EntityRepository.
type MockEntityRepository struct {
	mu       sync.RWMutex
	entities map[string]*domain.Entity

	CreateFunc  func(ctx context.Context, entity *domain.Entity) error
	GetByIDFunc func(ctx context.Context, id string) (*domain.Entity, error)
	ListFunc    func(ctx context.Context) ([]domain.Entity, error)
}

func NewMockEntityRepository(seed ...domain.Entity) *MockEntityRepository {
	m := &MockEntityRepository{entities: make(map[string]*domain.Entity)}
	for i := range seed {
		e := seed[i]
		m.entities[e.ID] = &e
	}
	return m
}

func (m *MockEntityRepository) Create(ctx context.Context, entity *domain.Entity) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, entity)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *entity
	m.entities[entity.ID] = &cp
	return nil
}

func (m *MockEntityRepository) GetByID(ctx context.Context, id string) (*domain.Entity, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if e, ok := m.entities[id]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, domain.ErrEntityNotFound
}

func (m *MockEntityRepository) List(ctx context.Context) ([]domain.Entity, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.Entity, 0, len(m.entities))
	for _, e := range m.entities {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// MockRecurringRuleRepository is a mock implementation of RecurringRuleRepository.
type MockRecurringRuleRepository struct {
	mu    sync.RWMutex
	rules map[string]*domain.RecurringRule

	CreateFunc        func(ctx context.Context, rule *domain.RecurringRule) error
	GetByIDFunc       func(ctx context.Context, id string) (*domain.RecurringRule, error)
	ListFunc          func(ctx context.Context) ([]domain.RecurringRule, error)
	ListForUpdateFunc func(ctx context.Context, tx usecase.Transaction) ([]domain.RecurringRule, error)
	UpdateFunc        func(ctx context.Context, tx usecase.Transaction, rule *domain.RecurringRule) error
}

func NewMockRecurringRuleRepository(seed ...domain.RecurringRule) *MockRecurringRuleRepository {
	m := &MockRecurringRuleRepository{rules: make(map[string]*domain.RecurringRule)}
	for i := range seed {
		r := seed[i]
		m.rules[r.ID] = &r
	}
	return m
}

func (m *MockRecurringRuleRepository) Create(ctx context.Context, rule *domain.RecurringRule) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, rule)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *rule
	m.rules[rule.ID] = &cp
	return nil
}

func (m *MockRecurringRuleRepository) GetByID(ctx context.Context, id string) (*domain.RecurringRule, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if r, ok := m.rules[id]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, domain.ErrRuleNotFound
}

func (m *MockRecurringRuleRepository) List(ctx context.Context) ([]domain.RecurringRule, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.RecurringRule, 0, len(m.rules))
	for _, r := range m.rules {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MockRecurringRuleRepository) ListForUpdate(ctx context.Context, tx usecase.Transaction) ([]domain.RecurringRule, error) {
	if m.ListForUpdateFunc != nil {
		return m.ListForUpdateFunc(ctx, tx)
	}
	return m.List(ctx)
}

func (m *MockRecurringRuleRepository) Update(ctx context.Context, tx usecase.Transaction, rule *domain.RecurringRule) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, tx, rule)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rules[rule.ID]; !ok {
		return domain.ErrRuleNotFound
	}
	cp := *rule
	m.rules[rule.ID] = &cp
	return nil
}

// MockPostingRepository is a mock implementation of PostingRepository.
type MockPostingRepository struct {
	mu       sync.RWMutex
	postings map[string]*domain.RecurringPosting

	// BatchCalls counts CreateBatch calls served by the in-memory store.
	BatchCalls int

	CreateFunc       func(ctx context.Context, tx usecase.Transaction, posting *domain.RecurringPosting) error
	CreateBatchFunc  func(ctx context.Context, tx usecase.Transaction, postings []domain.RecurringPosting) error
	ListFunc         func(ctx context.Context, tx usecase.Transaction) ([]domain.RecurringPosting, error)
	ListPendingFunc  func(ctx context.Context) ([]domain.RecurringPosting, error)
	GetForUpdateFunc func(ctx context.Context, tx usecase.Transaction, ruleID, periodLabel string) (*domain.RecurringPosting, error)
	UpdateFunc       func(ctx context.Context, tx usecase.Transaction, posting *domain.RecurringPosting) error
}

func NewMockPostingRepository(seed ...domain.RecurringPosting) *MockPostingRepository {
	m := &MockPostingRepository{postings: make(map[string]*domain.RecurringPosting)}
	for i := range seed {
		p := seed[i]
		m.postings[p.RuleID+"|"+p.PeriodLabel] = &p
	}
	return m
}

func (m *MockPostingRepository) Create(ctx context.Context, tx usecase.Transaction, posting *domain.RecurringPosting) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, posting)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := posting.RuleID + "|" + posting.PeriodLabel
	if _, ok := m.postings[key]; ok {
		return fmt.Errorf("duplicate posting %s", key)
	}
	cp := *posting
	m.postings[key] = &cp
	return nil
}

func (m *MockPostingRepository) CreateBatch(ctx context.Context, tx usecase.Transaction, postings []domain.RecurringPosting) error {
	if m.CreateBatchFunc != nil {
		return m.CreateBatchFunc(ctx, tx, postings)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.BatchCalls++
	seen := make(map[string]bool, len(postings))
	for _, p := range postings {
		key := p.RuleID + "|" + p.PeriodLabel
		if _, ok := m.postings[key]; ok || seen[key] {
			return fmt.Errorf("duplicate posting %s", key)
		}
		seen[key] = true
	}
	for i := range postings {
		cp := postings[i]
		m.postings[cp.RuleID+"|"+cp.PeriodLabel] = &cp
	}
	return nil
}

func (m *MockPostingRepository) List(ctx context.Context, tx usecase.Transaction) ([]domain.RecurringPosting, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, tx)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sorted(func(*domain.RecurringPosting) bool { return true }), nil
}

func (m *MockPostingRepository) ListPending(ctx context.Context) ([]domain.RecurringPosting, error) {
	if m.ListPendingFunc != nil {
		return m.ListPendingFunc(ctx)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sorted(func(p *domain.RecurringPosting) bool { return p.Status == domain.PostingStatusPending }), nil
}

func (m *MockPostingRepository) GetForUpdate(ctx context.Context, tx usecase.Transaction, ruleID, periodLabel string) (*domain.RecurringPosting, error) {
	if m.GetForUpdateFunc != nil {
		return m.GetForUpdateFunc(ctx, tx, ruleID, periodLabel)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if p, ok := m.postings[ruleID+"|"+periodLabel]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, domain.ErrPostingNotFound
}

func (m *MockPostingRepository) Update(ctx context.Context, tx usecase.Transaction, posting *domain.RecurringPosting) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, tx, posting)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := posting.RuleID + "|" + posting.PeriodLabel
	if _, ok := m.postings[key]; !ok {
		return domain.ErrPostingNotFound
	}
	cp := *posting
	m.postings[key] = &cp
	return nil
}

func (m *MockPostingRepository) sorted(keep func(*domain.RecurringPosting) bool) []domain.RecurringPosting {
	var out []domain.RecurringPosting
	for _, p := range m.postings {
		if keep(p) {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].RuleID != out[j].RuleID {
			return out[i].RuleID < out[j].RuleID
		}
		return out[i].PeriodLabel < out[j].PeriodLabel
	})
	return out
}

// MockDebtRepository is a mock implementation of DebtRepository.
type MockDebtRepository struct {
	mu    sync.RWMutex
	debts map[string]*domain.LongTermDebt

	CreateFunc           func(ctx context.Context, tx usecase.Transaction, debt *domain.LongTermDebt) error
	GetByIDFunc          func(ctx context.Context, id string) (*domain.LongTermDebt, error)
	GetByIDForUpdateFunc func(ctx context.Context, tx usecase.Transaction, id string) (*domain.LongTermDebt, error)
	ListFunc             func(ctx context.Context) ([]domain.LongTermDebt, error)
	UpdateFunc           func(ctx context.Context, tx usecase.Transaction, debt *domain.LongTermDebt) error
}

func NewMockDebtRepository(seed ...domain.LongTermDebt) *MockDebtRepository {
	m := &MockDebtRepository{debts: make(map[string]*domain.LongTermDebt)}
	for i := range seed {
		d := cloneDebt(seed[i])
		m.debts[d.ID] = &d
	}
	return m
}

func (m *MockDebtRepository) Create(ctx context.Context, tx usecase.Transaction, debt *domain.LongTermDebt) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, debt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := cloneDebt(*debt)
	m.debts[debt.ID] = &cp
	return nil
}

func (m *MockDebtRepository) GetByID(ctx context.Context, id string) (*domain.LongTermDebt, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if d, ok := m.debts[id]; ok {
		cp := cloneDebt(*d)
		return &cp, nil
	}
	return nil, domain.ErrDebtNotFound
}

func (m *MockDebtRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.LongTermDebt, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockDebtRepository) List(ctx context.Context) ([]domain.LongTermDebt, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.LongTermDebt, 0, len(m.debts))
	for _, d := range m.debts {
		out = append(out, cloneDebt(*d))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MockDebtRepository) Update(ctx context.Context, tx usecase.Transaction, debt *domain.LongTermDebt) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, tx, debt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.debts[debt.ID]; !ok {
		return domain.ErrDebtNotFound
	}
	cp := cloneDebt(*debt)
	m.debts[debt.ID] = &cp
	return nil
}

func cloneDebt(d domain.LongTermDebt) domain.LongTermDebt {
	d.Schedule = append([]domain.AmortizationEntry(nil), d.Schedule...)
	d.RateHistory = append([]domain.RateChange(nil), d.RateHistory...)
	return d
}

// MockBudgetRepository is a mock implementation of BudgetRepository.
type MockBudgetRepository struct {
	mu      sync.RWMutex
	budgets map[string]*domain.Budget

	CreateFunc  func(ctx context.Context, budget *domain.Budget) error
	GetByIDFunc func(ctx context.Context, id string) (*domain.Budget, error)
	ListFunc    func(ctx context.Context) ([]domain.Budget, error)
}

func NewMockBudgetRepository(seed ...domain.Budget) *MockBudgetRepository {
	m := &MockBudgetRepository{budgets: make(map[string]*domain.Budget)}
	for i := range seed {
		b := seed[i]
		m.budgets[b.ID] = &b
	}
	return m
}

func (m *MockBudgetRepository) Create(ctx context.Context, budget *domain.Budget) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, budget)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *budget
	m.budgets[budget.ID] = &cp
	return nil
}

func (m *MockBudgetRepository) GetByID(ctx context.Context, id string) (*domain.Budget, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if b, ok := m.budgets[id]; ok {
		cp := *b
		return &cp, nil
	}
	return nil, domain.ErrBudgetNotFound
}

func (m *MockBudgetRepository) List(ctx context.Context) ([]domain.Budget, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.Budget, 0, len(m.budgets))
	for _, b := range m.budgets {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// MockAlertRepository is a mock implementation of AlertRepository.
type MockAlertRepository struct {
	mu     sync.RWMutex
	alerts map[string]*domain.BudgetAlert

	ListFunc    func(ctx context.Context, budgetID, periodLabel string) ([]domain.BudgetAlert, error)
	RecordFunc  func(ctx context.Context, alerts []domain.BudgetAlert) error
	DismissFunc func(ctx context.Context, budgetID string, threshold decimal.Decimal, periodLabel string) error
}

func NewMockAlertRepository(seed ...domain.BudgetAlert) *MockAlertRepository {
	m := &MockAlertRepository{alerts: make(map[string]*domain.BudgetAlert)}
	for i := range seed {
		a := seed[i]
		m.alerts[a.Key()] = &a
	}
	return m
}

func (m *MockAlertRepository) List(ctx context.Context, budgetID, periodLabel string) ([]domain.BudgetAlert, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, budgetID, periodLabel)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []domain.BudgetAlert
	for _, a := range m.alerts {
		if a.BudgetID == budgetID && a.PeriodLabel == periodLabel {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Threshold.LessThan(out[j].Threshold) })
	return out, nil
}

func (m *MockAlertRepository) Record(ctx context.Context, alerts []domain.BudgetAlert) error {
	if m.RecordFunc != nil {
		return m.RecordFunc(ctx, alerts)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range alerts {
		a := alerts[i]
		if _, ok := m.alerts[a.Key()]; !ok {
			m.alerts[a.Key()] = &a
		}
	}
	return nil
}

func (m *MockAlertRepository) Dismiss(ctx context.Context, budgetID string, threshold decimal.Decimal, periodLabel string) error {
	if m.DismissFunc != nil {
		return m.DismissFunc(ctx, budgetID, threshold, periodLabel)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.alerts[domain.AlertKey(budgetID, threshold, periodLabel)]
	if !ok {
		return domain.ErrAlertNotFound
	}
	a.Dismissed = true
	return nil
}

// MockGoalRepository is a mock implementation of GoalRepository.
type MockGoalRepository struct {
	mu    sync.RWMutex
	goals map[string]*domain.Goal

	CreateFunc  func(ctx context.Context, goal *domain.Goal) error
	GetByIDFunc func(ctx context.Context, id string) (*domain.Goal, error)
	ListFunc    func(ctx context.Context) ([]domain.Goal, error)
}

func NewMockGoalRepository(seed ...domain.Goal) *MockGoalRepository {
	m := &MockGoalRepository{goals: make(map[string]*domain.Goal)}
	for i := range seed {
		g := seed[i]
		m.goals[g.ID] = &g
	}
	return m
}

func (m *MockGoalRepository) Create(ctx context.Context, goal *domain.Goal) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, goal)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *goal
	m.goals[goal.ID] = &cp
	return nil
}

func (m *MockGoalRepository) GetByID(ctx context.Context, id string) (*domain.Goal, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if g, ok := m.goals[id]; ok {
		cp := *g
		return &cp, nil
	}
	return nil, domain.ErrGoalNotFound
}

func (m *MockGoalRepository) List(ctx context.Context) ([]domain.Goal, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.Goal, 0, len(m.goals))
	for _, g := range m.goals {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// MockContributionRepository is a mock implementation of ContributionRepository.
type MockContributionRepository struct {
	mu            sync.RWMutex
	contributions []domain.Contribution

	CreateFunc     func(ctx context.Context, tx usecase.Transaction, contribution *domain.Contribution) error
	ListByGoalFunc func(ctx context.Context, goalID string) ([]domain.Contribution, error)
	ListFunc       func(ctx context.Context) ([]domain.Contribution, error)
}

func NewMockContributionRepository(seed ...domain.Contribution) *MockContributionRepository {
	return &MockContributionRepository{contributions: append([]domain.Contribution(nil), seed...)}
}

func (m *MockContributionRepository) Create(ctx context.Context, tx usecase.Transaction, contribution *domain.Contribution) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, contribution)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.contributions = append(m.contributions, *contribution)
	return nil
}

func (m *MockContributionRepository) ListByGoal(ctx context.Context, goalID string) ([]domain.Contribution, error) {
	if m.ListByGoalFunc != nil {
		return m.ListByGoalFunc(ctx, goalID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []domain.Contribution
	for _, c := range m.contributions {
		if c.GoalID == goalID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *MockContributionRepository) List(ctx context.Context) ([]domain.Contribution, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]domain.Contribution(nil), m.contributions...), nil
}

// MockTransactionManager is a mock implementation of TransactionManager.
type MockTransactionManager struct {
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)

	mu        sync.Mutex
	Begun     int
	Committed int
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Begun++
	return &MockTransaction{CommitFunc: func(context.Context) error {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.Committed++
		return nil
	}}, nil
}

// MockTransaction is a mock implementation of Transaction.
type MockTransaction struct {
	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error
}

func (m *MockTransaction) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		return m.CommitFunc(ctx)
	}
	return nil
}

func (m *MockTransaction) Rollback(ctx context.Context) error {
	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
	return nil
}

// MockIDGenerator is a mock implementation of IDGenerator.
type MockIDGenerator struct {
	GenerateFunc func() string
	counter      int
	mu           sync.Mutex
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return fmt.Sprintf("mock-id-%d", m.counter)
}

// MockRetrier is a mock implementation of Retrier. By default it runs the
// operation up to Attempts times until it succeeds.
type MockRetrier struct {
	RetryFunc func(ctx context.Context, operation func() error) error
	Attempts  int
	Calls     int
}

func NewMockRetrier(attempts int) *MockRetrier {
	return &MockRetrier{Attempts: attempts}
}

func (m *MockRetrier) Retry(ctx context.Context, operation func() error) error {
	if m.RetryFunc != nil {
		return m.RetryFunc(ctx, operation)
	}
	var err error
	for i := 0; i < max(m.Attempts, 1); i++ {
		m.Calls++
		if err = operation(); err == nil {
			return nil
		}
	}
	return err
}

// MockReportCache is an in-memory ReportCache.
type MockReportCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	version int64

	GetFunc     func(ctx context.Context, key string) ([]byte, bool, error)
	VersionFunc func(ctx context.Context) (int64, error)
	Bumps       int
}

func NewMockReportCache() *MockReportCache {
	return &MockReportCache{data: make(map[string][]byte)}
}

func (m *MockReportCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *MockReportCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *MockReportCache) Version(ctx context.Context) (int64, error) {
	if m.VersionFunc != nil {
		return m.VersionFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.version, nil
}

func (m *MockReportCache) BumpVersion(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.version++
	m.Bumps++
	return m.version, nil
}

// Len returns the number of cached entries.
func (m *MockReportCache) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.data)
}

// MockRecorder counts recorded measurements.
type MockRecorder struct {
	mu          sync.Mutex
	Engines     map[string]int
	Posted      map[string]int
	Alerts      int
	CacheHits   int
	CacheMisses int
}

func NewMockRecorder() *MockRecorder {
	return &MockRecorder{Engines: make(map[string]int), Posted: make(map[string]int)}
}

func (m *MockRecorder) ObserveEngine(engine string, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Engines[engine]++
}

func (m *MockRecorder) RecurringPosted(disposition string, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Posted[disposition] += n
}

func (m *MockRecorder) AlertsFired(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Alerts += n
}

func (m *MockRecorder) CacheLookup(view string, hit bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if hit {
		m.CacheHits++
	} else {
		m.CacheMisses++
	}
}

// MockIdempotencyStore is a mock implementation of IdempotencyStore.
type MockIdempotencyStore struct {
	mu   sync.RWMutex
	data map[string][]byte

	CheckAndSetFunc func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	UpdateFunc      func(ctx context.Context, key string, response []byte, ttl time.Duration) error
}

func NewMockIdempotencyStore() *MockIdempotencyStore {
	return &MockIdempotencyStore{
		data: make(map[string][]byte),
	}
}

func (m *MockIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	if m.CheckAndSetFunc != nil {
		return m.CheckAndSetFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.data[key]; ok {
		return true, existing, nil
	}
	if response != nil {
		m.data[key] = response
	} else {
		m.data[key] = []byte("processing")
	}
	return false, nil, nil
}

func (m *MockIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = response
	return nil
}

func (m *MockIdempotencyStore) Release(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}
