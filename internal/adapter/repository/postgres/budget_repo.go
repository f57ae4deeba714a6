package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/iho/fincore/internal/domain"
)

const budgetColumns = `id, name, period, category_ids, entity_ids, alert_thresholds, limit_amount, rollover, rollover_cap, created_at, updated_at`

// BudgetRepository implements usecase.BudgetRepository.
type BudgetRepository struct {
	db DBTX
}

// NewBudgetRepository creates a new BudgetRepository.
func NewBudgetRepository(db DBTX) *BudgetRepository {
	return &BudgetRepository{db: db}
}

// Create inserts a budget. Thresholds are stored in their exact decimal
// text so alert keys survive the round trip.
func (r *BudgetRepository) Create(ctx context.Context, b *domain.Budget) error {
	thresholds := make([]string, len(b.AlertThresholds))
	for i, th := range b.AlertThresholds {
		thresholds[i] = th.String()
	}

	query := `
		INSERT INTO budgets (` + budgetColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.db.Exec(ctx, query,
		b.ID,
		b.Name,
		string(b.Period),
		b.CategoryIDs,
		stringsOrEmpty(b.EntityIDs),
		thresholds,
		b.LimitAmount,
		b.Rollover,
		int8OrNull(b.RolloverCap),
		b.CreatedAt,
		b.UpdatedAt,
	)

	return err
}

// GetByID retrieves a budget by ID.
func (r *BudgetRepository) GetByID(ctx context.Context, id string) (*domain.Budget, error) {
	b, err := scanBudget(r.db.QueryRow(ctx, `SELECT `+budgetColumns+` FROM budgets WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrBudgetNotFound
		}
		return nil, err
	}

	return b, nil
}

// List returns every budget ordered by name.
func (r *BudgetRepository) List(ctx context.Context) ([]domain.Budget, error) {
	rows, err := r.db.Query(ctx, `SELECT `+budgetColumns+` FROM budgets ORDER BY name, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	budgets := make([]domain.Budget, 0)
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		budgets = append(budgets, *b)
	}

	return budgets, rows.Err()
}

func scanBudget(row pgx.Row) (*domain.Budget, error) {
	var (
		b           domain.Budget
		period      string
		thresholds  []string
		rolloverCap pgtype.Int8
	)

	err := row.Scan(
		&b.ID,
		&b.Name,
		&period,
		&b.CategoryIDs,
		&b.EntityIDs,
		&thresholds,
		&b.LimitAmount,
		&b.Rollover,
		&rolloverCap,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	b.Period = domain.PeriodKind(period)
	b.RolloverCap = int8FromPg(rolloverCap)
	if len(b.EntityIDs) == 0 {
		b.EntityIDs = nil
	}

	b.AlertThresholds = make([]decimal.Decimal, 0, len(thresholds))
	for _, s := range thresholds {
		th, err := decimal.NewFromString(s)
		if err != nil {
			return nil, fmt.Errorf("decode threshold of budget %s: %w", b.ID, err)
		}
		b.AlertThresholds = append(b.AlertThresholds, th)
	}

	return &b, nil
}

func stringsOrEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// AlertRepository implements usecase.AlertRepository.
type AlertRepository struct {
	db DBTX
}

// NewAlertRepository creates a new AlertRepository.
func NewAlertRepository(db DBTX) *AlertRepository {
	return &AlertRepository{db: db}
}

// List returns the alerts fired for a budget in one period.
func (r *AlertRepository) List(ctx context.Context, budgetID, periodLabel string) ([]domain.BudgetAlert, error) {
	query := `
		SELECT budget_id, threshold, period_label, fired_at, dismissed
		FROM budget_alerts
		WHERE budget_id = $1 AND period_label = $2
		ORDER BY threshold
	`

	rows, err := r.db.Query(ctx, query, budgetID, periodLabel)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	alerts := make([]domain.BudgetAlert, 0)
	for rows.Next() {
		var (
			a         domain.BudgetAlert
			threshold pgtype.Numeric
		)
		if err := rows.Scan(&a.BudgetID, &threshold, &a.PeriodLabel, &a.FiredAt, &a.Dismissed); err != nil {
			return nil, err
		}
		a.Threshold = numericToDecimal(threshold)
		alerts = append(alerts, a)
	}

	return alerts, rows.Err()
}

// Record stores fired alerts. Alerts already on record are left untouched,
// dismissed ones included.
func (r *AlertRepository) Record(ctx context.Context, alerts []domain.BudgetAlert) error {
	query := `
		INSERT INTO budget_alerts (budget_id, threshold, period_label, fired_at, dismissed)
		VALUES ($1, $2, $3, $4, FALSE)
		ON CONFLICT (budget_id, threshold, period_label) DO NOTHING
	`

	for _, a := range alerts {
		firedAt := a.FiredAt
		if firedAt.IsZero() {
			firedAt = time.Now().UTC()
		}
		if _, err := r.db.Exec(ctx, query, a.BudgetID, decimalToNumeric(a.Threshold), a.PeriodLabel, firedAt); err != nil {
			return err
		}
	}

	return nil
}

// Dismiss marks a fired alert as dismissed.
func (r *AlertRepository) Dismiss(ctx context.Context, budgetID string, threshold decimal.Decimal, periodLabel string) error {
	query := `
		UPDATE budget_alerts
		SET dismissed = TRUE
		WHERE budget_id = $1 AND threshold = $2 AND period_label = $3
	`

	tag, err := r.db.Exec(ctx, query, budgetID, decimalToNumeric(threshold), periodLabel)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAlertNotFound
	}

	return nil
}
