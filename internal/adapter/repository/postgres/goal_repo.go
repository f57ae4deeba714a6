package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/iho/fincore/internal/domain"
	"github.com/iho/fincore/internal/usecase"
)

// GoalRepository implements usecase.GoalRepository.
type GoalRepository struct {
	db DBTX
}

// NewGoalRepository creates a new GoalRepository.
func NewGoalRepository(db DBTX) *GoalRepository {
	return &GoalRepository{db: db}
}

// Create inserts a goal.
func (r *GoalRepository) Create(ctx context.Context, g *domain.Goal) error {
	query := `
		INSERT INTO goals (id, name, target_amount, target_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.Exec(ctx, query, g.ID, g.Name, g.TargetAmount, dateOrNull(g.TargetDate), g.CreatedAt, g.UpdatedAt)
	return err
}

// GetByID retrieves a goal by ID.
func (r *GoalRepository) GetByID(ctx context.Context, id string) (*domain.Goal, error) {
	query := `SELECT id, name, target_amount, target_date, created_at, updated_at FROM goals WHERE id = $1`

	g, err := scanGoal(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrGoalNotFound
		}
		return nil, err
	}

	return g, nil
}

// List returns every goal ordered by name.
func (r *GoalRepository) List(ctx context.Context) ([]domain.Goal, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, target_amount, target_date, created_at, updated_at FROM goals ORDER BY name, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	goals := make([]domain.Goal, 0)
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		goals = append(goals, *g)
	}

	return goals, rows.Err()
}

func scanGoal(row pgx.Row) (*domain.Goal, error) {
	var (
		g          domain.Goal
		targetDate pgtype.Date
	)

	if err := row.Scan(&g.ID, &g.Name, &g.TargetAmount, &targetDate, &g.CreatedAt, &g.UpdatedAt); err != nil {
		return nil, err
	}
	g.TargetDate = dateFromPg(targetDate)

	return &g, nil
}

// ContributionRepository implements usecase.ContributionRepository.
type ContributionRepository struct {
	db DBTX
}

// NewContributionRepository creates a new ContributionRepository.
func NewContributionRepository(db DBTX) *ContributionRepository {
	return &ContributionRepository{db: db}
}

// Create inserts a contribution.
func (r *ContributionRepository) Create(ctx context.Context, tx usecase.Transaction, c *domain.Contribution) error {
	query := `
		INSERT INTO contributions (id, goal_id, movement_id, date, amount, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := querier(r.db, tx).Exec(ctx, query, c.ID, c.GoalID, textOrNull(c.MovementID), c.Date, c.Amount, c.CreatedAt)
	return err
}

// ListByGoal returns the contributions of one goal by date.
func (r *ContributionRepository) ListByGoal(ctx context.Context, goalID string) ([]domain.Contribution, error) {
	return r.list(ctx, `SELECT id, goal_id, movement_id, date, amount, created_at FROM contributions WHERE goal_id = $1 ORDER BY date, id`, goalID)
}

// List returns every contribution by date.
func (r *ContributionRepository) List(ctx context.Context) ([]domain.Contribution, error) {
	return r.list(ctx, `SELECT id, goal_id, movement_id, date, amount, created_at FROM contributions ORDER BY date, id`)
}

func (r *ContributionRepository) list(ctx context.Context, query string, args ...any) ([]domain.Contribution, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	contributions := make([]domain.Contribution, 0)
	for rows.Next() {
		var (
			c          domain.Contribution
			movementID pgtype.Text
		)
		if err := rows.Scan(&c.ID, &c.GoalID, &movementID, &c.Date, &c.Amount, &c.CreatedAt); err != nil {
			return nil, err
		}
		c.MovementID = movementID.String
		c.Date = c.Date.UTC()
		contributions = append(contributions, c)
	}

	return contributions, rows.Err()
}
