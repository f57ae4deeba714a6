package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/fincore/internal/domain"
	"github.com/iho/fincore/internal/usecase"
)

// MovementResponse represents a movement in API responses.
type MovementResponse struct {
	ID              string    `json:"id"`
	Date            string    `json:"date"`
	Description     string    `json:"description"`
	CategoryID      string    `json:"category_id"`
	EntityID        string    `json:"entity_id,omitempty"`
	Direction       string    `json:"direction"`
	Amount          Amount    `json:"amount"`
	RecurringRuleID string    `json:"recurring_rule_id,omitempty"`
	PeriodLabel     string    `json:"period_label,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// MovementFromDomain converts a domain movement to response.
func MovementFromDomain(m *domain.Movement) *MovementResponse {
	return &MovementResponse{
		ID:              m.ID,
		Date:            FormatDate(m.Date),
		Description:     m.Description,
		CategoryID:      m.CategoryID,
		EntityID:        m.EntityID,
		Direction:       string(m.Direction),
		Amount:          Amount(m.Amount),
		RecurringRuleID: m.RecurringRuleID,
		PeriodLabel:     m.PeriodLabel,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

// MovementsFromDomain converts domain movements to responses.
func MovementsFromDomain(movements []domain.Movement) []*MovementResponse {
	result := make([]*MovementResponse, len(movements))
	for i := range movements {
		result[i] = MovementFromDomain(&movements[i])
	}
	return result
}

// EntityResponse represents an entity with its derived balance.
type EntityResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Balance   Amount    `json:"balance"`
	CreatedAt time.Time `json:"created_at"`
}

// EntityFromDomain converts an entity balance to response.
func EntityFromDomain(e *usecase.EntityBalance) *EntityResponse {
	return &EntityResponse{
		ID:        e.Entity.ID,
		Name:      e.Entity.Name,
		Balance:   Amount(e.Balance),
		CreatedAt: e.Entity.CreatedAt,
	}
}

// EntitiesFromDomain converts entity balances to responses.
func EntitiesFromDomain(entities []usecase.EntityBalance) []*EntityResponse {
	result := make([]*EntityResponse, len(entities))
	for i := range entities {
		result[i] = EntityFromDomain(&entities[i])
	}
	return result
}

// RuleResponse represents a recurring rule.
type RuleResponse struct {
	ID              string    `json:"id"`
	Description     string    `json:"description"`
	CategoryID      string    `json:"category_id"`
	EntityID        string    `json:"entity_id,omitempty"`
	Direction       string    `json:"direction"`
	Frequency       string    `json:"frequency"`
	Amount          Amount    `json:"amount"`
	StartDate       string    `json:"start_date"`
	NextDueDate     string    `json:"next_due_date"`
	EndDate         *string   `json:"end_date,omitempty"`
	Active          bool      `json:"active"`
	AutoPost        bool      `json:"auto_post"`
	EstimatedAmount bool      `json:"estimated_amount"`
	BackfillMissed  bool      `json:"backfill_missed"`
	CreatedAt       time.Time `json:"created_at"`
}

// RuleFromDomain converts a domain rule to response.
func RuleFromDomain(r *domain.RecurringRule) *RuleResponse {
	return &RuleResponse{
		ID:              r.ID,
		Description:     r.Description,
		CategoryID:      r.CategoryID,
		EntityID:        r.EntityID,
		Direction:       string(r.Direction),
		Frequency:       string(r.Frequency),
		Amount:          Amount(r.Amount),
		StartDate:       FormatDate(r.StartDate),
		NextDueDate:     FormatDate(r.NextDueDate),
		EndDate:         formatOptionalDate(r.EndDate),
		Active:          r.Active,
		AutoPost:        r.AutoPost,
		EstimatedAmount: r.EstimatedAmount,
		BackfillMissed:  r.BackfillMissed,
		CreatedAt:       r.CreatedAt,
	}
}

// RulesFromDomain converts domain rules to responses.
func RulesFromDomain(rules []domain.RecurringRule) []*RuleResponse {
	result := make([]*RuleResponse, len(rules))
	for i := range rules {
		result[i] = RuleFromDomain(&rules[i])
	}
	return result
}

// PostingResponse represents one period of a recurring rule.
type PostingResponse struct {
	RuleID      string `json:"rule_id"`
	PeriodLabel string `json:"period_label"`
	DueDate     string `json:"due_date"`
	Status      string `json:"status"`
	Amount      Amount `json:"amount"`
	MovementID  string `json:"movement_id,omitempty"`
}

// PostingsFromDomain converts postings to responses.
func PostingsFromDomain(postings []domain.RecurringPosting) []*PostingResponse {
	result := make([]*PostingResponse, len(postings))
	for i, p := range postings {
		result[i] = &PostingResponse{
			RuleID:      p.RuleID,
			PeriodLabel: p.PeriodLabel,
			DueDate:     FormatDate(p.DueDate),
			Status:      string(p.Status),
			Amount:      Amount(p.Amount),
			MovementID:  p.MovementID,
		}
	}
	return result
}

// DueCheckResponse summarises a due-check sweep.
type DueCheckResponse struct {
	Movements    []*MovementResponse `json:"movements"`
	Queued       []*PostingResponse  `json:"queued"`
	ExpiredRules []string            `json:"expired_rules"`
	RulesTouched int                 `json:"rules_touched"`
}

// DueCheckFromDomain converts a sweep result to response.
func DueCheckFromDomain(r *usecase.DueCheckResult) *DueCheckResponse {
	expired := r.ExpiredRules
	if expired == nil {
		expired = []string{}
	}
	return &DueCheckResponse{
		Movements:    MovementsFromDomain(r.Movements),
		Queued:       PostingsFromDomain(r.Queued),
		ExpiredRules: expired,
		RulesTouched: r.RulesTouched,
	}
}

// EntryResponse represents one amortization period.
type EntryResponse struct {
	Period             int    `json:"period"`
	DueDate            string `json:"due_date"`
	Status             string `json:"status"`
	Payment            Amount `json:"payment"`
	Principal          Amount `json:"principal"`
	Interest           Amount `json:"interest"`
	RemainingPrincipal Amount `json:"remaining_principal"`
	PartialAmountPaid  Amount `json:"partial_amount_paid"`
	MovementID         string `json:"movement_id,omitempty"`
}

// ScheduleFromDomain converts a schedule to responses.
func ScheduleFromDomain(schedule []domain.AmortizationEntry) []*EntryResponse {
	result := make([]*EntryResponse, len(schedule))
	for i, e := range schedule {
		result[i] = &EntryResponse{
			Period:             e.Period,
			DueDate:            FormatDate(e.DueDate),
			Status:             string(e.Status),
			Payment:            Amount(e.PaymentAmount),
			Principal:          Amount(e.PrincipalAmount),
			Interest:           Amount(e.InterestAmount),
			RemainingPrincipal: Amount(e.RemainingPrincipal),
			PartialAmountPaid:  Amount(e.PartialAmountPaid),
			MovementID:         e.MovementID,
		}
	}
	return result
}

// RateChangeResponse represents one entry of a loan's rate history.
type RateChangeResponse struct {
	EffectiveFrom string          `json:"effective_from"`
	AnnualRate    decimal.Decimal `json:"annual_rate"`
}

// SummaryResponse aggregates a schedule.
type SummaryResponse struct {
	TotalPayments    Amount `json:"total_payments"`
	TotalInterest    Amount `json:"total_interest"`
	AmountPaid       Amount `json:"amount_paid"`
	Outstanding      Amount `json:"outstanding"`
	PeriodsPaid      int    `json:"periods_paid"`
	PeriodsRemaining int    `json:"periods_remaining"`
}

// DebtResponse represents a loan and its schedule.
type DebtResponse struct {
	ID                string               `json:"id"`
	Name              string               `json:"name"`
	EntityID          string               `json:"entity_id,omitempty"`
	Method            string               `json:"method"`
	StartDate         string               `json:"start_date"`
	AnnualRate        decimal.Decimal      `json:"annual_rate"`
	OriginalPrincipal Amount               `json:"original_principal"`
	CurrentPrincipal  Amount               `json:"current_principal"`
	MonthlyPayment    Amount               `json:"monthly_payment"`
	TermMonths        int                  `json:"term_months"`
	Active            bool                 `json:"active"`
	RateHistory       []RateChangeResponse `json:"rate_history"`
	Schedule          []*EntryResponse     `json:"schedule"`
	Summary           *SummaryResponse     `json:"summary,omitempty"`
	CreatedAt         time.Time            `json:"created_at"`
	UpdatedAt         time.Time            `json:"updated_at"`
}

// DebtFromDomain converts a domain debt to response.
func DebtFromDomain(d *domain.LongTermDebt) *DebtResponse {
	history := make([]RateChangeResponse, len(d.RateHistory))
	for i, rc := range d.RateHistory {
		history[i] = RateChangeResponse{EffectiveFrom: FormatDate(rc.EffectiveFrom), AnnualRate: rc.AnnualRate}
	}
	return &DebtResponse{
		ID:                d.ID,
		Name:              d.Name,
		EntityID:          d.EntityID,
		Method:            string(d.Method),
		StartDate:         FormatDate(d.StartDate),
		AnnualRate:        d.AnnualRate,
		OriginalPrincipal: Amount(d.OriginalPrincipal),
		CurrentPrincipal:  Amount(d.CurrentPrincipal),
		MonthlyPayment:    Amount(d.MonthlyPayment),
		TermMonths:        d.TermMonths,
		Active:            d.Active,
		RateHistory:       history,
		Schedule:          ScheduleFromDomain(d.Schedule),
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}
}

// DebtDetailsFromDomain converts a debt with its aggregates to response.
func DebtDetailsFromDomain(d *usecase.DebtDetails) *DebtResponse {
	resp := DebtFromDomain(&d.Debt)
	resp.Summary = &SummaryResponse{
		TotalPayments:    Amount(d.Summary.TotalPayments),
		TotalInterest:    Amount(d.Summary.TotalInterest),
		AmountPaid:       Amount(d.Summary.AmountPaid),
		Outstanding:      Amount(d.Summary.Outstanding),
		PeriodsPaid:      d.Summary.PeriodsPaid,
		PeriodsRemaining: d.Summary.PeriodsRemaining,
	}
	return resp
}

// DebtsFromDomain converts domain debts to responses.
func DebtsFromDomain(debts []domain.LongTermDebt) []*DebtResponse {
	result := make([]*DebtResponse, len(debts))
	for i := range debts {
		result[i] = DebtFromDomain(&debts[i])
	}
	return result
}

// BudgetResponse represents a budget definition.
type BudgetResponse struct {
	ID              string            `json:"id"`
	Name            string            `json:"name"`
	Period          string            `json:"period"`
	LimitAmount     Amount            `json:"limit_amount"`
	CategoryIDs     []string          `json:"category_ids"`
	EntityIDs       []string          `json:"entity_ids,omitempty"`
	AlertThresholds []decimal.Decimal `json:"alert_thresholds"`
	Rollover        bool              `json:"rollover"`
	RolloverCap     *Amount           `json:"rollover_cap,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
}

// BudgetFromDomain converts a domain budget to response.
func BudgetFromDomain(b *domain.Budget) *BudgetResponse {
	resp := &BudgetResponse{
		ID:              b.ID,
		Name:            b.Name,
		Period:          string(b.Period),
		LimitAmount:     Amount(b.LimitAmount),
		CategoryIDs:     b.CategoryIDs,
		EntityIDs:       b.EntityIDs,
		AlertThresholds: b.AlertThresholds,
		Rollover:        b.Rollover,
		CreatedAt:       b.CreatedAt,
	}
	if b.RolloverCap != nil {
		c := Amount(*b.RolloverCap)
		resp.RolloverCap = &c
	}
	return resp
}

// BudgetsFromDomain converts domain budgets to responses.
func BudgetsFromDomain(budgets []domain.Budget) []*BudgetResponse {
	result := make([]*BudgetResponse, len(budgets))
	for i := range budgets {
		result[i] = BudgetFromDomain(&budgets[i])
	}
	return result
}

// BudgetStatusResponse represents a budget evaluated for its current period.
type BudgetStatusResponse struct {
	BudgetID        string            `json:"budget_id"`
	PeriodLabel     string            `json:"period_label"`
	PeriodStart     string            `json:"period_start"`
	PeriodEnd       string            `json:"period_end"`
	State           string            `json:"state"`
	SpentAmount     Amount            `json:"spent_amount"`
	RolloverAmount  Amount            `json:"rollover_amount"`
	EffectiveLimit  Amount            `json:"effective_limit"`
	RemainingAmount Amount            `json:"remaining_amount"`
	ProjectedSpend  Amount            `json:"projected_spend"`
	UsagePercentage int64             `json:"usage_percentage"`
	DaysRemaining   int               `json:"days_remaining"`
	PendingAlerts   []decimal.Decimal `json:"pending_alerts"`
}

// BudgetStatusFromDomain converts a status to response.
func BudgetStatusFromDomain(s *domain.BudgetStatus) *BudgetStatusResponse {
	pending := s.PendingAlerts
	if pending == nil {
		pending = []decimal.Decimal{}
	}
	return &BudgetStatusResponse{
		BudgetID:        s.BudgetID,
		PeriodLabel:     s.PeriodLabel,
		PeriodStart:     FormatDate(s.PeriodStart),
		PeriodEnd:       FormatDate(s.PeriodEnd),
		State:           string(s.State),
		SpentAmount:     Amount(s.SpentAmount),
		RolloverAmount:  Amount(s.RolloverAmount),
		EffectiveLimit:  Amount(s.EffectiveLimit),
		RemainingAmount: Amount(s.RemainingAmount),
		ProjectedSpend:  Amount(s.ProjectedSpend),
		UsagePercentage: s.UsagePercentage,
		DaysRemaining:   s.DaysRemaining,
		PendingAlerts:   pending,
	}
}

// BudgetStatusesFromDomain converts statuses to responses.
func BudgetStatusesFromDomain(statuses []domain.BudgetStatus) []*BudgetStatusResponse {
	result := make([]*BudgetStatusResponse, len(statuses))
	for i := range statuses {
		result[i] = BudgetStatusFromDomain(&statuses[i])
	}
	return result
}

// AlertResponse represents a fired budget alert.
type AlertResponse struct {
	BudgetID    string          `json:"budget_id"`
	Threshold   decimal.Decimal `json:"threshold"`
	PeriodLabel string          `json:"period_label"`
	Dismissed   bool            `json:"dismissed"`
	FiredAt     time.Time       `json:"fired_at"`
}

// AlertsFromDomain converts alerts to responses.
func AlertsFromDomain(alerts []domain.BudgetAlert) []*AlertResponse {
	result := make([]*AlertResponse, len(alerts))
	for i, a := range alerts {
		result[i] = &AlertResponse{
			BudgetID:    a.BudgetID,
			Threshold:   a.Threshold,
			PeriodLabel: a.PeriodLabel,
			Dismissed:   a.Dismissed,
			FiredAt:     a.FiredAt,
		}
	}
	return result
}

// GoalResponse represents a savings goal.
type GoalResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	TargetAmount Amount    `json:"target_amount"`
	TargetDate   *string   `json:"target_date,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// GoalFromDomain converts a domain goal to response.
func GoalFromDomain(g *domain.Goal) *GoalResponse {
	return &GoalResponse{
		ID:           g.ID,
		Name:         g.Name,
		TargetAmount: Amount(g.TargetAmount),
		TargetDate:   formatOptionalDate(g.TargetDate),
		CreatedAt:    g.CreatedAt,
	}
}

// GoalsFromDomain converts domain goals to responses.
func GoalsFromDomain(goals []domain.Goal) []*GoalResponse {
	result := make([]*GoalResponse, len(goals))
	for i := range goals {
		result[i] = GoalFromDomain(&goals[i])
	}
	return result
}

// ContributionResponse represents money set aside for a goal.
type ContributionResponse struct {
	ID         string `json:"id"`
	GoalID     string `json:"goal_id"`
	MovementID string `json:"movement_id,omitempty"`
	Date       string `json:"date"`
	Amount     Amount `json:"amount"`
}

// ContributionFromDomain converts a contribution to response.
func ContributionFromDomain(c *domain.Contribution) *ContributionResponse {
	return &ContributionResponse{
		ID:         c.ID,
		GoalID:     c.GoalID,
		MovementID: c.MovementID,
		Date:       FormatDate(c.Date),
		Amount:     Amount(c.Amount),
	}
}

// GoalProgressResponse represents how far a goal is funded.
type GoalProgressResponse struct {
	GoalID              string  `json:"goal_id"`
	CurrentAmount       Amount  `json:"current_amount"`
	RemainingAmount     Amount  `json:"remaining_amount"`
	OverfundedAmount    Amount  `json:"overfunded_amount"`
	Percentage          int64   `json:"percentage"`
	Completed           bool    `json:"completed"`
	ProjectedCompletion *string `json:"projected_completion,omitempty"`
}

// GoalProgressFromDomain converts progress to response.
func GoalProgressFromDomain(p *domain.GoalProgress) *GoalProgressResponse {
	return &GoalProgressResponse{
		GoalID:              p.GoalID,
		CurrentAmount:       Amount(p.CurrentAmount),
		RemainingAmount:     Amount(p.RemainingAmount),
		OverfundedAmount:    Amount(p.OverfundedAmount),
		Percentage:          p.Percentage,
		Completed:           p.Completed,
		ProjectedCompletion: formatOptionalDate(p.ProjectedCompletion),
	}
}

// PointResponse is one bucket of an analytics time series.
type PointResponse struct {
	Label   string `json:"label"`
	Start   string `json:"start"`
	End     string `json:"end"`
	Income  Amount `json:"income"`
	Expense Amount `json:"expense"`
	Net     Amount `json:"net"`
}

// BreakdownResponse is one row of an analytics breakdown.
type BreakdownResponse struct {
	Key        string `json:"key"`
	Label      string `json:"label"`
	Income     Amount `json:"income"`
	Expense    Amount `json:"expense"`
	Net        Amount `json:"net"`
	Percentage int64  `json:"percentage"`
	Count      int    `json:"count"`
}

// AnalyticsResponse represents an analytics report.
type AnalyticsResponse struct {
	Start             string              `json:"start"`
	End               string              `json:"end"`
	Granularity       string              `json:"granularity"`
	TotalIncome       Amount              `json:"total_income"`
	TotalExpense      Amount              `json:"total_expense"`
	Net               Amount              `json:"net"`
	TimeSeries        []PointResponse     `json:"time_series"`
	ExpenseByCategory []BreakdownResponse `json:"expense_by_category"`
	IncomeByCategory  []BreakdownResponse `json:"income_by_category"`
	ByEntity          []BreakdownResponse `json:"by_entity"`
	GeneratedAt       time.Time           `json:"generated_at"`
}

func breakdownFromDomain(items []domain.BreakdownItem) []BreakdownResponse {
	result := make([]BreakdownResponse, len(items))
	for i, b := range items {
		result[i] = BreakdownResponse{
			Key:        b.Key,
			Label:      b.Label,
			Income:     Amount(b.Income),
			Expense:    Amount(b.Expense),
			Net:        Amount(b.Net),
			Percentage: b.Percentage,
			Count:      b.Count,
		}
	}
	return result
}

// AnalyticsFromDomain converts a report to response.
func AnalyticsFromDomain(r *domain.AnalyticsReport) *AnalyticsResponse {
	points := make([]PointResponse, len(r.TimeSeries))
	for i, p := range r.TimeSeries {
		points[i] = PointResponse{
			Label:   p.Label,
			Start:   FormatDate(p.Start),
			End:     FormatDate(p.End),
			Income:  Amount(p.Income),
			Expense: Amount(p.Expense),
			Net:     Amount(p.Net),
		}
	}
	return &AnalyticsResponse{
		Start:             FormatDate(r.Start),
		End:               FormatDate(r.End),
		Granularity:       string(r.Granularity),
		TotalIncome:       Amount(r.TotalIncome),
		TotalExpense:      Amount(r.TotalExpense),
		Net:               Amount(r.Net),
		TimeSeries:        points,
		ExpenseByCategory: breakdownFromDomain(r.ExpenseByCategory),
		IncomeByCategory:  breakdownFromDomain(r.IncomeByCategory),
		ByEntity:          breakdownFromDomain(r.ByEntity),
		GeneratedAt:       r.GeneratedAt,
	}
}

// RatioResponse is one scored health ratio. A null value is undefined.
type RatioResponse struct {
	Name      string          `json:"name"`
	Value     domain.Ratio    `json:"value"`
	Benchmark decimal.Decimal `json:"benchmark"`
	Level     string          `json:"level"`
	Weight    int64           `json:"weight"`
	Score     int64           `json:"score"`
}

// HealthResponse represents a financial health snapshot.
type HealthResponse struct {
	AsOf                string          `json:"as_of"`
	Score               int64           `json:"score"`
	SavingsRate         domain.Ratio    `json:"savings_rate"`
	DebtToIncomeRatio   domain.Ratio    `json:"debt_to_income_ratio"`
	EmergencyFundMonths domain.Ratio    `json:"emergency_fund_months"`
	TotalAssets         Amount          `json:"total_assets"`
	TotalLiabilities    Amount          `json:"total_liabilities"`
	NetWorth            Amount          `json:"net_worth"`
	AverageIncome       Amount          `json:"average_income"`
	AverageExpense      Amount          `json:"average_expense"`
	MonthlyDebtPayments Amount          `json:"monthly_debt_payments"`
	Ratios              []RatioResponse `json:"ratios"`
	GeneratedAt         time.Time       `json:"generated_at"`
}

// HealthFromDomain converts a snapshot to response.
func HealthFromDomain(s *domain.HealthSnapshot) *HealthResponse {
	ratios := make([]RatioResponse, len(s.Ratios))
	for i, r := range s.Ratios {
		ratios[i] = RatioResponse{
			Name:      r.Name,
			Value:     r.Value,
			Benchmark: r.Benchmark,
			Level:     string(r.Level),
			Weight:    r.Weight,
			Score:     r.Score,
		}
	}
	return &HealthResponse{
		AsOf:                FormatDate(s.AsOf),
		Score:               s.Score,
		SavingsRate:         s.SavingsRate,
		DebtToIncomeRatio:   s.DebtToIncomeRatio,
		EmergencyFundMonths: s.EmergencyFundMonths,
		TotalAssets:         Amount(s.TotalAssets),
		TotalLiabilities:    Amount(s.TotalLiabilities),
		NetWorth:            Amount(s.NetWorth),
		AverageIncome:       Amount(s.AverageIncome),
		AverageExpense:      Amount(s.AverageExpense),
		MonthlyDebtPayments: Amount(s.MonthlyDebtPayments),
		Ratios:              ratios,
		GeneratedAt:         s.GeneratedAt,
	}
}

// EventResponse is one projected cash event.
type EventResponse struct {
	Date        string `json:"date"`
	Source      string `json:"source"`
	ReferenceID string `json:"reference_id"`
	Description string `json:"description"`
	Amount      Amount `json:"amount"`
	IsEstimated bool   `json:"is_estimated"`
}

// ForecastEntryResponse is one forecast bucket.
type ForecastEntryResponse struct {
	Label             string          `json:"label"`
	Start             string          `json:"start"`
	End               string          `json:"end"`
	OpeningBalance    Amount          `json:"opening_balance"`
	ProjectedIncome   Amount          `json:"projected_income"`
	ProjectedExpenses Amount          `json:"projected_expenses"`
	NetCashFlow       Amount          `json:"net_cash_flow"`
	ClosingBalance    Amount          `json:"closing_balance"`
	HasEstimates      bool            `json:"has_estimates"`
	Events            []EventResponse `json:"events"`
}

// ForecastResponse represents a cash-flow forecast.
type ForecastResponse struct {
	Start             string                  `json:"start"`
	End               string                  `json:"end"`
	Period            string                  `json:"period"`
	HorizonMonths     int                     `json:"horizon_months"`
	InitialBalance    Amount                  `json:"initial_balance"`
	FinalBalance      Amount                  `json:"final_balance"`
	LowestBalance     Amount                  `json:"lowest_balance"`
	LowestBalanceDate string                  `json:"lowest_balance_date"`
	FirstNegativeDate *string                 `json:"first_negative_date"`
	Entries           []ForecastEntryResponse `json:"entries"`
	GeneratedAt       time.Time               `json:"generated_at"`
}

// ForecastFromDomain converts a forecast to response.
func ForecastFromDomain(f *domain.CashFlowForecast) *ForecastResponse {
	entries := make([]ForecastEntryResponse, len(f.Entries))
	for i, e := range f.Entries {
		events := make([]EventResponse, len(e.Events))
		for j, ev := range e.Events {
			events[j] = EventResponse{
				Date:        FormatDate(ev.Date),
				Source:      string(ev.Source),
				ReferenceID: ev.ReferenceID,
				Description: ev.Description,
				Amount:      Amount(ev.Amount),
				IsEstimated: ev.IsEstimated,
			}
		}
		entries[i] = ForecastEntryResponse{
			Label:             e.Label,
			Start:             FormatDate(e.Start),
			End:               FormatDate(e.End),
			OpeningBalance:    Amount(e.OpeningBalance),
			ProjectedIncome:   Amount(e.ProjectedIncome),
			ProjectedExpenses: Amount(e.ProjectedExpenses),
			NetCashFlow:       Amount(e.NetCashFlow),
			ClosingBalance:    Amount(e.ClosingBalance),
			HasEstimates:      e.HasEstimates,
			Events:            events,
		}
	}
	return &ForecastResponse{
		Start:             FormatDate(f.Start),
		End:               FormatDate(f.End),
		Period:            string(f.Period),
		HorizonMonths:     f.HorizonMonths,
		InitialBalance:    Amount(f.InitialBalance),
		FinalBalance:      Amount(f.FinalBalance),
		LowestBalance:     Amount(f.LowestBalance),
		LowestBalanceDate: FormatDate(f.LowestBalanceDate),
		FirstNegativeDate: formatOptionalDate(f.FirstNegativeDate),
		Entries:           entries,
		GeneratedAt:       f.GeneratedAt,
	}
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
