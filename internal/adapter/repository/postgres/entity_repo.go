package postgres

import (
	"context"

	"github.com/iho/fincore/internal/domain"
)

// EntityRepository implements usecase.EntityRepository.
type EntityRepository struct {
	db DBTX
}

// NewEntityRepository creates a new EntityRepository.
func NewEntityRepository(db DBTX) *EntityRepository {
	return &EntityRepository{db: db}
}

// Create inserts an entity.
func (r *EntityRepository) Create(ctx context.Context, entity *domain.Entity) error {
	query := `
		INSERT INTO entities (id, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.db.Exec(ctx, query, entity.ID, entity.Name, entity.CreatedAt, entity.UpdatedAt)
	return err
}

// GetByID retrieves an entity by ID.
func (r *EntityRepository) GetByID(ctx context.Context, id string) (*domain.Entity, error) {
	var e domain.Entity
	err := r.db.QueryRow(ctx, `SELECT id, name, created_at, updated_at FROM entities WHERE id = $1`, id).
		Scan(&e.ID, &e.Name, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrEntityNotFound
		}
		return nil, err
	}

	return &e, nil
}

// List returns every entity ordered by name.
func (r *EntityRepository) List(ctx context.Context) ([]domain.Entity, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, created_at, updated_at FROM entities ORDER BY name, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entities := make([]domain.Entity, 0)
	for rows.Next() {
		var e domain.Entity
		if err := rows.Scan(&e.ID, &e.Name, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		entities = append(entities, e)
	}

	return entities, rows.Err()
}
