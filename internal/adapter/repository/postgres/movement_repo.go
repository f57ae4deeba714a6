package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/iho/fincore/internal/domain"
	"github.com/iho/fincore/internal/usecase"
)

const movementColumns = `id, date, description, category_id, entity_id, recurring_rule_id, period_label, direction, amount, created_at, updated_at`

var movementCopyColumns = []string{
	"id", "date", "description", "category_id", "entity_id", "recurring_rule_id",
	"period_label", "direction", "amount", "created_at", "updated_at",
}

// MovementRepository implements usecase.MovementRepository.
type MovementRepository struct {
	db DBTX
}

// NewMovementRepository creates a new MovementRepository.
func NewMovementRepository(db DBTX) *MovementRepository {
	return &MovementRepository{db: db}
}

// Create inserts a movement.
func (r *MovementRepository) Create(ctx context.Context, tx usecase.Transaction, m *domain.Movement) error {
	query := `
		INSERT INTO movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := querier(r.db, tx).Exec(ctx, query,
		m.ID,
		m.Date,
		m.Description,
		m.CategoryID,
		textOrNull(m.EntityID),
		textOrNull(m.RecurringRuleID),
		m.PeriodLabel,
		string(m.Direction),
		m.Amount,
		m.CreatedAt,
		m.UpdatedAt,
	)

	return err
}

// CreateBatch copies movements into the table in one round trip.
func (r *MovementRepository) CreateBatch(ctx context.Context, tx usecase.Transaction, movements []domain.Movement) error {
	if len(movements) == 0 {
		return nil
	}

	rows := make([][]any, len(movements))
	for i, m := range movements {
		rows[i] = []any{
			m.ID,
			m.Date,
			m.Description,
			m.CategoryID,
			textOrNull(m.EntityID),
			textOrNull(m.RecurringRuleID),
			m.PeriodLabel,
			string(m.Direction),
			m.Amount,
			m.CreatedAt,
			m.UpdatedAt,
		}
	}

	n, err := querier(r.db, tx).CopyFrom(ctx, pgx.Identifier{"movements"}, movementCopyColumns, pgx.CopyFromRows(rows))
	if err != nil {
		return err
	}
	if int(n) != len(rows) {
		return fmt.Errorf("movement copy wrote %d of %d rows", n, len(rows))
	}
	return nil
}

// GetByID retrieves a movement by ID.
func (r *MovementRepository) GetByID(ctx context.Context, id string) (*domain.Movement, error) {
	query := `SELECT ` + movementColumns + ` FROM movements WHERE id = $1`

	m, err := scanMovement(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrMovementNotFound
		}
		return nil, err
	}

	return m, nil
}

// UpdateDetails changes the description and category of a movement.
func (r *MovementRepository) UpdateDetails(ctx context.Context, id, description, categoryID string, updatedAt time.Time) error {
	query := `
		UPDATE movements
		SET description = $2, category_id = $3, updated_at = $4
		WHERE id = $1
	`

	tag, err := r.db.Exec(ctx, query, id, description, categoryID, updatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrMovementNotFound
	}

	return nil
}

// Delete removes a movement. Contributions linked to it go with it.
func (r *MovementRepository) Delete(ctx context.Context, tx usecase.Transaction, id string) error {
	tag, err := querier(r.db, tx).Exec(ctx, `DELETE FROM movements WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrMovementNotFound
	}

	return nil
}

// List returns movements matching filter ordered by date and ID.
func (r *MovementRepository) List(ctx context.Context, filter usecase.MovementFilter) ([]domain.Movement, error) {
	query, args := buildMovementQuery(filter)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	movements := make([]domain.Movement, 0)
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, err
		}
		movements = append(movements, *m)
	}

	return movements, rows.Err()
}

func buildMovementQuery(filter usecase.MovementFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.From != nil {
		add("date >= $%d", *filter.From)
	}
	if filter.To != nil {
		add("date <= $%d", *filter.To)
	}
	if filter.EntityID != "" {
		add("entity_id = $%d", filter.EntityID)
	}
	if filter.CategoryID != "" {
		add("category_id = $%d", filter.CategoryID)
	}

	var b strings.Builder
	b.WriteString(`SELECT ` + movementColumns + ` FROM movements`)
	if len(conds) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(conds, " AND "))
	}
	b.WriteString(" ORDER BY date, id")

	if filter.Limit > 0 {
		args = append(args, filter.Limit, filter.Offset)
		fmt.Fprintf(&b, " LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	return b.String(), args
}

func scanMovement(row pgx.Row) (*domain.Movement, error) {
	var (
		m         domain.Movement
		entityID  pgtype.Text
		ruleID    pgtype.Text
		direction string
	)

	err := row.Scan(
		&m.ID,
		&m.Date,
		&m.Description,
		&m.CategoryID,
		&entityID,
		&ruleID,
		&m.PeriodLabel,
		&direction,
		&m.Amount,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	m.Date = m.Date.UTC()
	m.EntityID = entityID.String
	m.RecurringRuleID = ruleID.String
	m.Direction = domain.Direction(direction)

	return &m, nil
}
