// Package snapshot loads a JSON ledger file into memory and serves it through
// the repository interfaces, so the use cases can run without a database.
package snapshot

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/fincore/internal/domain"
	"github.com/iho/fincore/internal/engine/amortization"
	"github.com/iho/fincore/internal/money"
	"github.com/iho/fincore/internal/period"
	"github.com/iho/fincore/internal/usecase"
)

// File is the on-disk layout. Amounts are strings in the file's locale
// ("1.234,56" for de-DE); dates are YYYY-MM-DD.
type File struct {
	Locale         string               `json:"locale,omitempty"`
	Entities       []EntityRecord       `json:"entities"`
	Movements      []MovementRecord     `json:"movements"`
	RecurringRules []RuleRecord         `json:"recurring_rules"`
	Postings       []PostingRecord      `json:"postings"`
	Debts          []DebtRecord         `json:"debts"`
	Budgets        []BudgetRecord       `json:"budgets"`
	Alerts         []AlertRecord        `json:"alerts"`
	Goals          []GoalRecord         `json:"goals"`
	Contributions  []ContributionRecord `json:"contributions"`
}

type EntityRecord struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type MovementRecord struct {
	ID              string `json:"id"`
	Date            string `json:"date"`
	Description     string `json:"description"`
	CategoryID      string `json:"category_id"`
	EntityID        string `json:"entity_id,omitempty"`
	Direction       string `json:"direction"`
	Amount          string `json:"amount"`
	RecurringRuleID string `json:"recurring_rule_id,omitempty"`
	PeriodLabel     string `json:"period_label,omitempty"`
}

// RuleRecord describes a recurring rule. Active and AutoPost default to true;
// NextDueDate defaults to StartDate.
type RuleRecord struct {
	ID             string  `json:"id"`
	Description    string  `json:"description"`
	CategoryID     string  `json:"category_id"`
	EntityID       string  `json:"entity_id,omitempty"`
	Direction      string  `json:"direction"`
	Frequency      string  `json:"frequency"`
	Amount         string  `json:"amount"`
	StartDate      string  `json:"start_date"`
	NextDueDate    string  `json:"next_due_date,omitempty"`
	EndDate        *string `json:"end_date,omitempty"`
	Active         *bool   `json:"active,omitempty"`
	AutoPost       *bool   `json:"auto_post,omitempty"`
	Estimated      bool    `json:"estimated,omitempty"`
	BackfillMissed bool    `json:"backfill_missed,omitempty"`
}

type PostingRecord struct {
	RuleID      string `json:"rule_id"`
	PeriodLabel string `json:"period_label"`
	DueDate     string `json:"due_date"`
	Status      string `json:"status"`
	Amount      string `json:"amount"`
	MovementID  string `json:"movement_id,omitempty"`
}

// DebtRecord describes a fixed-payment loan. The schedule is computed on load
// and the first PaidPeriods entries are marked paid.
type DebtRecord struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	EntityID    string          `json:"entity_id,omitempty"`
	Principal   string          `json:"principal"`
	AnnualRate  decimal.Decimal `json:"annual_rate"`
	TermMonths  int             `json:"term_months"`
	StartDate   string          `json:"start_date"`
	PaidPeriods int             `json:"paid_periods,omitempty"`
}

type BudgetRecord struct {
	ID              string            `json:"id"`
	Name            string            `json:"name"`
	Period          string            `json:"period"`
	Limit           string            `json:"limit"`
	CategoryIDs     []string          `json:"category_ids"`
	EntityIDs       []string          `json:"entity_ids,omitempty"`
	AlertThresholds []decimal.Decimal `json:"alert_thresholds,omitempty"`
	Rollover        bool              `json:"rollover,omitempty"`
	RolloverCap     *string           `json:"rollover_cap,omitempty"`
}

type AlertRecord struct {
	BudgetID    string          `json:"budget_id"`
	Threshold   decimal.Decimal `json:"threshold"`
	PeriodLabel string          `json:"period_label"`
	Dismissed   bool            `json:"dismissed,omitempty"`
}

type GoalRecord struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	TargetAmount string  `json:"target_amount"`
	TargetDate   *string `json:"target_date,omitempty"`
}

type ContributionRecord struct {
	ID         string `json:"id"`
	GoalID     string `json:"goal_id"`
	Amount     string `json:"amount"`
	Date       string `json:"date"`
	MovementID string `json:"movement_id,omitempty"`
}

// Open reads and decodes the snapshot at path.
func Open(path string) (*Ledger, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Read(f)
}

// Read decodes a snapshot and validates every record.
func Read(r io.Reader) (*Ledger, error) {
	var file File
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return file.Ledger()
}

type decoder struct {
	loc money.Locale
}

func (d decoder) amount(field, s string) (int64, error) {
	v, err := money.ParseAmount(s, d.loc)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", field, err)
	}
	return v, nil
}

func (d decoder) date(field, s string) (time.Time, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w: %q", field, domain.ErrInvalidPeriodRange, s)
	}
	return t, nil
}

func (d decoder) optionalDate(field string, s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := d.date(field, *s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Ledger converts the file records into domain values.
func (f *File) Ledger() (*Ledger, error) {
	d := decoder{loc: money.Lookup(f.Locale)}
	l := newLedger()

	for i, rec := range f.Entities {
		e := domain.Entity{ID: rec.ID, Name: rec.Name}
		if err := domain.ValidateName(e.Name); err != nil {
			return nil, fmt.Errorf("entities[%d]: %w", i, err)
		}
		l.entities = append(l.entities, e)
	}

	for i, rec := range f.Movements {
		m, err := d.movement(rec)
		if err != nil {
			return nil, fmt.Errorf("movements[%d]: %w", i, err)
		}
		l.movements = append(l.movements, m)
	}

	for i, rec := range f.RecurringRules {
		r, err := d.rule(rec)
		if err != nil {
			return nil, fmt.Errorf("recurring_rules[%d]: %w", i, err)
		}
		l.rules = append(l.rules, r)
	}

	for i, rec := range f.Postings {
		p, err := d.posting(rec)
		if err != nil {
			return nil, fmt.Errorf("postings[%d]: %w", i, err)
		}
		l.postings = append(l.postings, p)
	}

	for i, rec := range f.Debts {
		debt, err := d.debt(rec)
		if err != nil {
			return nil, fmt.Errorf("debts[%d]: %w", i, err)
		}
		l.debts = append(l.debts, debt)
	}

	for i, rec := range f.Budgets {
		b, err := d.budget(rec)
		if err != nil {
			return nil, fmt.Errorf("budgets[%d]: %w", i, err)
		}
		l.budgets = append(l.budgets, b)
	}

	for _, rec := range f.Alerts {
		l.alerts = append(l.alerts, domain.BudgetAlert{
			BudgetID:    rec.BudgetID,
			Threshold:   rec.Threshold,
			PeriodLabel: rec.PeriodLabel,
			Dismissed:   rec.Dismissed,
		})
	}

	for i, rec := range f.Goals {
		g, err := d.goal(rec)
		if err != nil {
			return nil, fmt.Errorf("goals[%d]: %w", i, err)
		}
		l.goals = append(l.goals, g)
	}

	for i, rec := range f.Contributions {
		c, err := d.contribution(rec)
		if err != nil {
			return nil, fmt.Errorf("contributions[%d]: %w", i, err)
		}
		l.contributions = append(l.contributions, c)
	}

	return l, nil
}

func (d decoder) movement(rec MovementRecord) (domain.Movement, error) {
	date, err := d.date("date", rec.Date)
	if err != nil {
		return domain.Movement{}, err
	}
	amount, err := d.amount("amount", rec.Amount)
	if err != nil {
		return domain.Movement{}, err
	}
	m := domain.Movement{
		ID:              rec.ID,
		Date:            date,
		Description:     rec.Description,
		CategoryID:      rec.CategoryID,
		EntityID:        rec.EntityID,
		Direction:       domain.Direction(rec.Direction),
		Amount:          amount,
		RecurringRuleID: rec.RecurringRuleID,
		PeriodLabel:     rec.PeriodLabel,
	}
	return m, m.Validate()
}

func (d decoder) rule(rec RuleRecord) (domain.RecurringRule, error) {
	start, err := d.date("start_date", rec.StartDate)
	if err != nil {
		return domain.RecurringRule{}, err
	}
	next := start
	if rec.NextDueDate != "" {
		if next, err = d.date("next_due_date", rec.NextDueDate); err != nil {
			return domain.RecurringRule{}, err
		}
	}
	end, err := d.optionalDate("end_date", rec.EndDate)
	if err != nil {
		return domain.RecurringRule{}, err
	}
	amount, err := d.amount("amount", rec.Amount)
	if err != nil {
		return domain.RecurringRule{}, err
	}

	r := domain.RecurringRule{
		ID:              rec.ID,
		Description:     rec.Description,
		CategoryID:      rec.CategoryID,
		EntityID:        rec.EntityID,
		Direction:       domain.Direction(rec.Direction),
		Frequency:       domain.Frequency(rec.Frequency),
		Amount:          amount,
		StartDate:       start,
		NextDueDate:     next,
		EndDate:         end,
		Active:          rec.Active == nil || *rec.Active,
		AutoPost:        rec.AutoPost == nil || *rec.AutoPost,
		EstimatedAmount: rec.Estimated,
		BackfillMissed:  rec.BackfillMissed,
	}
	return r, r.Validate()
}

func (d decoder) posting(rec PostingRecord) (domain.RecurringPosting, error) {
	due, err := d.date("due_date", rec.DueDate)
	if err != nil {
		return domain.RecurringPosting{}, err
	}
	amount, err := d.amount("amount", rec.Amount)
	if err != nil {
		return domain.RecurringPosting{}, err
	}
	status := domain.PostingStatus(rec.Status)
	if status != domain.PostingStatusPosted && status != domain.PostingStatusPending {
		return domain.RecurringPosting{}, fmt.Errorf("unknown posting status %q", rec.Status)
	}
	return domain.RecurringPosting{
		RuleID:      rec.RuleID,
		PeriodLabel: rec.PeriodLabel,
		DueDate:     due,
		Status:      status,
		Amount:      amount,
		MovementID:  rec.MovementID,
	}, nil
}

func (d decoder) debt(rec DebtRecord) (domain.LongTermDebt, error) {
	start, err := d.date("start_date", rec.StartDate)
	if err != nil {
		return domain.LongTermDebt{}, err
	}
	principal, err := d.amount("principal", rec.Principal)
	if err != nil {
		return domain.LongTermDebt{}, err
	}

	debt := domain.LongTermDebt{
		ID:                rec.ID,
		Name:              rec.Name,
		EntityID:          rec.EntityID,
		OriginalPrincipal: principal,
		CurrentPrincipal:  principal,
		AnnualRate:        rec.AnnualRate,
		TermMonths:        rec.TermMonths,
		StartDate:         period.Day(start),
		Method:            domain.MethodFrench,
		Active:            true,
	}
	if err := debt.Validate(); err != nil {
		return domain.LongTermDebt{}, err
	}
	if rec.PaidPeriods < 0 || rec.PaidPeriods > rec.TermMonths {
		return domain.LongTermDebt{}, fmt.Errorf("%w: paid_periods out of range", domain.ErrInvalidLoanParameters)
	}

	schedule, err := amortization.ComputeFixedPaymentSchedule(principal, rec.AnnualRate, rec.TermMonths, debt.StartDate)
	if err != nil {
		return domain.LongTermDebt{}, err
	}
	for i := 0; i < rec.PaidPeriods; i++ {
		schedule[i].Status = domain.EntryStatusPaid
		debt.CurrentPrincipal = schedule[i].RemainingPrincipal
	}
	debt.Schedule = schedule
	debt.MonthlyPayment = schedule[0].PaymentAmount
	debt.Active = debt.CurrentPrincipal > 0
	return debt, nil
}

func (d decoder) budget(rec BudgetRecord) (domain.Budget, error) {
	limit, err := d.amount("limit", rec.Limit)
	if err != nil {
		return domain.Budget{}, err
	}
	thresholds := rec.AlertThresholds
	if len(thresholds) == 0 {
		thresholds = usecase.DefaultAlertThresholds
	}

	b := domain.Budget{
		ID:              rec.ID,
		Name:            rec.Name,
		Period:          domain.PeriodKind(rec.Period),
		LimitAmount:     limit,
		CategoryIDs:     rec.CategoryIDs,
		EntityIDs:       rec.EntityIDs,
		AlertThresholds: thresholds,
		Rollover:        rec.Rollover,
	}
	if rec.RolloverCap != nil {
		rolloverCap, err := d.amount("rollover_cap", *rec.RolloverCap)
		if err != nil {
			return domain.Budget{}, err
		}
		b.RolloverCap = &rolloverCap
	}
	return b, b.Validate()
}

func (d decoder) goal(rec GoalRecord) (domain.Goal, error) {
	target, err := d.amount("target_amount", rec.TargetAmount)
	if err != nil {
		return domain.Goal{}, err
	}
	targetDate, err := d.optionalDate("target_date", rec.TargetDate)
	if err != nil {
		return domain.Goal{}, err
	}
	g := domain.Goal{ID: rec.ID, Name: rec.Name, TargetAmount: target, TargetDate: targetDate}
	return g, g.Validate()
}

func (d decoder) contribution(rec ContributionRecord) (domain.Contribution, error) {
	date, err := d.date("date", rec.Date)
	if err != nil {
		return domain.Contribution{}, err
	}
	amount, err := d.amount("amount", rec.Amount)
	if err != nil {
		return domain.Contribution{}, err
	}
	c := domain.Contribution{ID: rec.ID, GoalID: rec.GoalID, Amount: amount, Date: date, MovementID: rec.MovementID}
	return c, c.Validate()
}
