package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/iho/fincore/internal/domain"
	"github.com/iho/fincore/internal/usecase"
)

const ruleColumns = `id, description, category_id, entity_id, direction, frequency, amount, start_date, next_due_date, end_date, active, auto_post, estimated_amount, backfill_missed, created_at, updated_at`

// RecurringRuleRepository implements usecase.RecurringRuleRepository.
type RecurringRuleRepository struct {
	db DBTX
}

// NewRecurringRuleRepository creates a new RecurringRuleRepository.
func NewRecurringRuleRepository(db DBTX) *RecurringRuleRepository {
	return &RecurringRuleRepository{db: db}
}

// Create inserts a rule.
func (r *RecurringRuleRepository) Create(ctx context.Context, rule *domain.RecurringRule) error {
	query := `
		INSERT INTO recurring_rules (` + ruleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	_, err := r.db.Exec(ctx, query,
		rule.ID,
		rule.Description,
		rule.CategoryID,
		textOrNull(rule.EntityID),
		string(rule.Direction),
		string(rule.Frequency),
		rule.Amount,
		rule.StartDate,
		rule.NextDueDate,
		dateOrNull(rule.EndDate),
		rule.Active,
		rule.AutoPost,
		rule.EstimatedAmount,
		rule.BackfillMissed,
		rule.CreatedAt,
		rule.UpdatedAt,
	)

	return err
}

// GetByID retrieves a rule by ID.
func (r *RecurringRuleRepository) GetByID(ctx context.Context, id string) (*domain.RecurringRule, error) {
	rule, err := scanRule(r.db.QueryRow(ctx, `SELECT `+ruleColumns+` FROM recurring_rules WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrRuleNotFound
		}
		return nil, err
	}

	return rule, nil
}

// List returns every rule ordered by next due date.
func (r *RecurringRuleRepository) List(ctx context.Context) ([]domain.RecurringRule, error) {
	return r.list(ctx, r.db, `SELECT `+ruleColumns+` FROM recurring_rules ORDER BY next_due_date, id`)
}

// ListForUpdate returns every rule locked for the duration of tx.
func (r *RecurringRuleRepository) ListForUpdate(ctx context.Context, tx usecase.Transaction) ([]domain.RecurringRule, error) {
	return r.list(ctx, querier(r.db, tx), `SELECT `+ruleColumns+` FROM recurring_rules ORDER BY next_due_date, id FOR UPDATE`)
}

func (r *RecurringRuleRepository) list(ctx context.Context, db DBTX, query string) ([]domain.RecurringRule, error) {
	rows, err := db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rules := make([]domain.RecurringRule, 0)
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		rules = append(rules, *rule)
	}

	return rules, rows.Err()
}

// Update stores the mutable state of a rule.
func (r *RecurringRuleRepository) Update(ctx context.Context, tx usecase.Transaction, rule *domain.RecurringRule) error {
	query := `
		UPDATE recurring_rules
		SET next_due_date = $2, end_date = $3, active = $4, amount = $5, updated_at = $6
		WHERE id = $1
	`

	tag, err := querier(r.db, tx).Exec(ctx, query,
		rule.ID,
		rule.NextDueDate,
		dateOrNull(rule.EndDate),
		rule.Active,
		rule.Amount,
		rule.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrRuleNotFound
	}

	return nil
}

func scanRule(row pgx.Row) (*domain.RecurringRule, error) {
	var (
		rule      domain.RecurringRule
		entityID  pgtype.Text
		endDate   pgtype.Date
		direction string
		frequency string
	)

	err := row.Scan(
		&rule.ID,
		&rule.Description,
		&rule.CategoryID,
		&entityID,
		&direction,
		&frequency,
		&rule.Amount,
		&rule.StartDate,
		&rule.NextDueDate,
		&endDate,
		&rule.Active,
		&rule.AutoPost,
		&rule.EstimatedAmount,
		&rule.BackfillMissed,
		&rule.CreatedAt,
		&rule.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	rule.EntityID = entityID.String
	rule.Direction = domain.Direction(direction)
	rule.Frequency = domain.Frequency(frequency)
	rule.StartDate = rule.StartDate.UTC()
	rule.NextDueDate = rule.NextDueDate.UTC()
	rule.EndDate = dateFromPg(endDate)

	return &rule, nil
}

const postingColumns = `rule_id, period_label, due_date, movement_id, status, amount, created_at`

var postingCopyColumns = []string{"rule_id", "period_label", "due_date", "movement_id", "status", "amount", "created_at"}

// PostingRepository implements usecase.PostingRepository.
type PostingRepository struct {
	db DBTX
}

// NewPostingRepository creates a new PostingRepository.
func NewPostingRepository(db DBTX) *PostingRepository {
	return &PostingRepository{db: db}
}

// Create inserts a posting. A second posting for the same rule and period
// label is rejected by the primary key.
func (r *PostingRepository) Create(ctx context.Context, tx usecase.Transaction, p *domain.RecurringPosting) error {
	query := `
		INSERT INTO recurring_postings (` + postingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := querier(r.db, tx).Exec(ctx, query,
		p.RuleID,
		p.PeriodLabel,
		p.DueDate,
		textOrNull(p.MovementID),
		string(p.Status),
		p.Amount,
		p.CreatedAt,
	)
	if err != nil && isUniqueViolation(err) {
		return fmt.Errorf("duplicate posting %s/%s: %w", p.RuleID, p.PeriodLabel, err)
	}

	return err
}

// CreateBatch copies postings into the table in one round trip. A period
// that already has a posting fails the whole batch with a unique violation.
func (r *PostingRepository) CreateBatch(ctx context.Context, tx usecase.Transaction, postings []domain.RecurringPosting) error {
	if len(postings) == 0 {
		return nil
	}

	rows := make([][]any, len(postings))
	for i, p := range postings {
		rows[i] = []any{
			p.RuleID,
			p.PeriodLabel,
			p.DueDate,
			textOrNull(p.MovementID),
			string(p.Status),
			p.Amount,
			p.CreatedAt,
		}
	}

	n, err := querier(r.db, tx).CopyFrom(ctx, pgx.Identifier{"recurring_postings"}, postingCopyColumns, pgx.CopyFromRows(rows))
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("duplicate posting in batch of %d: %w", len(rows), err)
		}
		return err
	}
	if int(n) != len(rows) {
		return fmt.Errorf("posting copy wrote %d of %d rows", n, len(rows))
	}
	return nil
}

// List returns every posting.
func (r *PostingRepository) List(ctx context.Context, tx usecase.Transaction) ([]domain.RecurringPosting, error) {
	return r.list(ctx, querier(r.db, tx), `SELECT `+postingColumns+` FROM recurring_postings ORDER BY due_date, rule_id`)
}

// ListPending returns postings awaiting confirmation, oldest first.
func (r *PostingRepository) ListPending(ctx context.Context) ([]domain.RecurringPosting, error) {
	return r.list(ctx, r.db, `SELECT `+postingColumns+` FROM recurring_postings WHERE status = 'pending' ORDER BY due_date, rule_id`)
}

func (r *PostingRepository) list(ctx context.Context, db DBTX, query string) ([]domain.RecurringPosting, error) {
	rows, err := db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	postings := make([]domain.RecurringPosting, 0)
	for rows.Next() {
		p, err := scanPosting(rows)
		if err != nil {
			return nil, err
		}
		postings = append(postings, *p)
	}

	return postings, rows.Err()
}

// GetForUpdate retrieves and locks one posting.
func (r *PostingRepository) GetForUpdate(ctx context.Context, tx usecase.Transaction, ruleID, periodLabel string) (*domain.RecurringPosting, error) {
	query := `SELECT ` + postingColumns + ` FROM recurring_postings WHERE rule_id = $1 AND period_label = $2 FOR UPDATE`

	p, err := scanPosting(querier(r.db, tx).QueryRow(ctx, query, ruleID, periodLabel))
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrPostingNotFound
		}
		return nil, err
	}

	return p, nil
}

// Update stores the status, amount and movement link of a posting.
func (r *PostingRepository) Update(ctx context.Context, tx usecase.Transaction, p *domain.RecurringPosting) error {
	query := `
		UPDATE recurring_postings
		SET status = $3, amount = $4, movement_id = $5
		WHERE rule_id = $1 AND period_label = $2
	`

	tag, err := querier(r.db, tx).Exec(ctx, query,
		p.RuleID,
		p.PeriodLabel,
		string(p.Status),
		p.Amount,
		textOrNull(p.MovementID),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPostingNotFound
	}

	return nil
}

func scanPosting(row pgx.Row) (*domain.RecurringPosting, error) {
	var (
		p          domain.RecurringPosting
		movementID pgtype.Text
		status     string
	)

	if err := row.Scan(&p.RuleID, &p.PeriodLabel, &p.DueDate, &movementID, &status, &p.Amount, &p.CreatedAt); err != nil {
		return nil, err
	}

	p.DueDate = p.DueDate.UTC()
	p.MovementID = movementID.String
	p.Status = domain.PostingStatus(status)

	return &p, nil
}
