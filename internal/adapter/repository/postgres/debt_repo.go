package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/iho/fincore/internal/domain"
	"github.com/iho/fincore/internal/usecase"
)

const debtColumns = `id, name, entity_id, method, annual_rate, start_date, original_principal, current_principal, monthly_payment, term_months, active, rate_history, created_at, updated_at`

var entryColumns = []string{
	"debt_id", "period", "due_date", "payment_amount", "principal_amount", "interest_amount",
	"remaining_principal", "partial_amount_paid", "status", "movement_id",
}

// DebtRepository implements usecase.DebtRepository. The schedule lives in
// amortization_entries and is rewritten as a whole on every update.
type DebtRepository struct {
	db DBTX
}

// NewDebtRepository creates a new DebtRepository.
func NewDebtRepository(db DBTX) *DebtRepository {
	return &DebtRepository{db: db}
}

// Create inserts a debt with its schedule.
func (r *DebtRepository) Create(ctx context.Context, tx usecase.Transaction, d *domain.LongTermDebt) error {
	db := querier(r.db, tx)

	history, err := json.Marshal(rateHistoryOrEmpty(d.RateHistory))
	if err != nil {
		return err
	}

	query := `
		INSERT INTO debts (` + debtColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err = db.Exec(ctx, query,
		d.ID,
		d.Name,
		textOrNull(d.EntityID),
		string(methodOrDefault(d.Method)),
		decimalToNumeric(d.AnnualRate),
		d.StartDate,
		d.OriginalPrincipal,
		d.CurrentPrincipal,
		d.MonthlyPayment,
		d.TermMonths,
		d.Active,
		history,
		d.CreatedAt,
		d.UpdatedAt,
	)
	if err != nil {
		return err
	}

	return r.insertSchedule(ctx, db, d)
}

// GetByID retrieves a debt and its schedule.
func (r *DebtRepository) GetByID(ctx context.Context, id string) (*domain.LongTermDebt, error) {
	return r.get(ctx, r.db, `SELECT `+debtColumns+` FROM debts WHERE id = $1`, id)
}

// GetByIDForUpdate retrieves a debt with a FOR UPDATE lock on its row.
func (r *DebtRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.LongTermDebt, error) {
	return r.get(ctx, querier(r.db, tx), `SELECT `+debtColumns+` FROM debts WHERE id = $1 FOR UPDATE`, id)
}

func (r *DebtRepository) get(ctx context.Context, db DBTX, query, id string) (*domain.LongTermDebt, error) {
	d, err := scanDebt(db.QueryRow(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrDebtNotFound
		}
		return nil, err
	}

	schedules, err := r.loadSchedules(ctx, db, []string{d.ID})
	if err != nil {
		return nil, err
	}
	d.Schedule = schedules[d.ID]

	return d, nil
}

// List returns every debt with its schedule.
func (r *DebtRepository) List(ctx context.Context) ([]domain.LongTermDebt, error) {
	rows, err := r.db.Query(ctx, `SELECT `+debtColumns+` FROM debts ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}

	debts := make([]domain.LongTermDebt, 0)
	for rows.Next() {
		d, err := scanDebt(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		debts = append(debts, *d)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(debts) == 0 {
		return debts, nil
	}

	ids := make([]string, len(debts))
	for i := range debts {
		ids[i] = debts[i].ID
	}
	schedules, err := r.loadSchedules(ctx, r.db, ids)
	if err != nil {
		return nil, err
	}
	for i := range debts {
		debts[i].Schedule = schedules[debts[i].ID]
	}

	return debts, nil
}

// Update stores the debt state and replaces its schedule.
func (r *DebtRepository) Update(ctx context.Context, tx usecase.Transaction, d *domain.LongTermDebt) error {
	db := querier(r.db, tx)

	history, err := json.Marshal(rateHistoryOrEmpty(d.RateHistory))
	if err != nil {
		return err
	}

	query := `
		UPDATE debts
		SET annual_rate = $2, current_principal = $3, monthly_payment = $4, term_months = $5,
		    active = $6, rate_history = $7, updated_at = $8
		WHERE id = $1
	`
	tag, err := db.Exec(ctx, query,
		d.ID,
		decimalToNumeric(d.AnnualRate),
		d.CurrentPrincipal,
		d.MonthlyPayment,
		d.TermMonths,
		d.Active,
		history,
		d.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrDebtNotFound
	}

	if _, err := db.Exec(ctx, `DELETE FROM amortization_entries WHERE debt_id = $1`, d.ID); err != nil {
		return err
	}

	return r.insertSchedule(ctx, db, d)
}

func (r *DebtRepository) insertSchedule(ctx context.Context, db DBTX, d *domain.LongTermDebt) error {
	if len(d.Schedule) == 0 {
		return nil
	}

	rows := make([][]any, len(d.Schedule))
	for i, e := range d.Schedule {
		rows[i] = []any{
			d.ID,
			int32(e.Period),
			e.DueDate,
			e.PaymentAmount,
			e.PrincipalAmount,
			e.InterestAmount,
			e.RemainingPrincipal,
			e.PartialAmountPaid,
			string(e.Status),
			textOrNull(e.MovementID),
		}
	}

	n, err := db.CopyFrom(ctx, pgx.Identifier{"amortization_entries"}, entryColumns, pgx.CopyFromRows(rows))
	if err != nil {
		return err
	}
	if int(n) != len(rows) {
		return fmt.Errorf("schedule copy wrote %d of %d entries", n, len(rows))
	}

	return nil
}

func (r *DebtRepository) loadSchedules(ctx context.Context, db DBTX, ids []string) (map[string][]domain.AmortizationEntry, error) {
	query := `
		SELECT debt_id, period, due_date, payment_amount, principal_amount, interest_amount,
		       remaining_principal, partial_amount_paid, status, movement_id
		FROM amortization_entries
		WHERE debt_id = ANY($1)
		ORDER BY debt_id, period
	`

	rows, err := db.Query(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	schedules := make(map[string][]domain.AmortizationEntry, len(ids))
	for rows.Next() {
		var (
			debtID     string
			period     int32
			status     string
			movementID pgtype.Text
			e          domain.AmortizationEntry
		)
		err := rows.Scan(
			&debtID,
			&period,
			&e.DueDate,
			&e.PaymentAmount,
			&e.PrincipalAmount,
			&e.InterestAmount,
			&e.RemainingPrincipal,
			&e.PartialAmountPaid,
			&status,
			&movementID,
		)
		if err != nil {
			return nil, err
		}
		e.Period = int(period)
		e.DueDate = e.DueDate.UTC()
		e.Status = domain.EntryStatus(status)
		e.MovementID = movementID.String
		schedules[debtID] = append(schedules[debtID], e)
	}

	return schedules, rows.Err()
}

func scanDebt(row pgx.Row) (*domain.LongTermDebt, error) {
	var (
		d        domain.LongTermDebt
		entityID pgtype.Text
		method   string
		rate     pgtype.Numeric
		term     int32
		history  []byte
	)

	err := row.Scan(
		&d.ID,
		&d.Name,
		&entityID,
		&method,
		&rate,
		&d.StartDate,
		&d.OriginalPrincipal,
		&d.CurrentPrincipal,
		&d.MonthlyPayment,
		&term,
		&d.Active,
		&history,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	d.EntityID = entityID.String
	d.Method = domain.AmortizationMethod(method)
	d.AnnualRate = numericToDecimal(rate)
	d.TermMonths = int(term)
	d.StartDate = d.StartDate.UTC()

	if len(history) > 0 {
		if err := json.Unmarshal(history, &d.RateHistory); err != nil {
			return nil, fmt.Errorf("decode rate history of debt %s: %w", d.ID, err)
		}
	}
	if len(d.RateHistory) == 0 {
		d.RateHistory = nil
	}

	return &d, nil
}

func rateHistoryOrEmpty(h []domain.RateChange) []domain.RateChange {
	if h == nil {
		return []domain.RateChange{}
	}
	return h
}

func methodOrDefault(m domain.AmortizationMethod) domain.AmortizationMethod {
	if m == "" {
		return domain.MethodFrench
	}
	return m
}
