package usecase

import (
	"context"
	"time"

	"github.com/iho/fincore/internal/domain"
)

// EntityBalance pairs an entity with its derived balance.
type EntityBalance struct {
	Entity  domain.Entity
	Balance int64
}

// EntityUseCase handles entity business logic.
type EntityUseCase struct {
	entityRepo   EntityRepository
	movementRepo MovementRepository
	idGen        IDGenerator
}

// NewEntityUseCase creates a new EntityUseCase.
func NewEntityUseCase(entityRepo EntityRepository, movementRepo MovementRepository, idGen IDGenerator) *EntityUseCase {
	return &EntityUseCase{
		entityRepo:   entityRepo,
		movementRepo: movementRepo,
		idGen:        idGen,
	}
}

// CreateEntity creates a new entity. Entities start with no movements and so
// a zero balance.
func (uc *EntityUseCase) CreateEntity(ctx context.Context, name string) (*domain.Entity, error) {
	now := time.Now().UTC()
	entity := &domain.Entity{
		ID:        uc.idGen.Generate(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := entity.Validate(); err != nil {
		return nil, err
	}

	if err := uc.entityRepo.Create(ctx, entity); err != nil {
		return nil, err
	}

	return entity, nil
}

// GetEntity returns an entity and its balance.
func (uc *EntityUseCase) GetEntity(ctx context.Context, id string) (*EntityBalance, error) {
	entity, err := uc.entityRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	movements, err := uc.movementRepo.List(ctx, MovementFilter{EntityID: id})
	if err != nil {
		return nil, err
	}

	return &EntityBalance{Entity: *entity, Balance: domain.EntityBalance(id, movements)}, nil
}

// ListEntities returns every entity with its balance recomputed from the
// movements that reference it.
func (uc *EntityUseCase) ListEntities(ctx context.Context) ([]EntityBalance, error) {
	entities, err := uc.entityRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	movements, err := uc.movementRepo.List(ctx, MovementFilter{})
	if err != nil {
		return nil, err
	}
	balances := domain.EntityBalances(movements)

	out := make([]EntityBalance, 0, len(entities))
	for _, e := range entities {
		out = append(out, EntityBalance{Entity: e, Balance: balances[e.ID]})
	}
	return out, nil
}
