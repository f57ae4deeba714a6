package usecase

import (
	"context"
	"time"

	"github.com/iho/fincore/internal/domain"
)

// MovementUseCase handles movement business logic.
type MovementUseCase struct {
	txManager    TransactionManager
	movementRepo MovementRepository
	entityRepo   EntityRepository
	idGen        IDGenerator
	cache        ReportCache
}

// NewMovementUseCase creates a new MovementUseCase.
func NewMovementUseCase(
	txManager TransactionManager,
	movementRepo MovementRepository,
	entityRepo EntityRepository,
	idGen IDGenerator,
	cache ReportCache,
) *MovementUseCase {
	return &MovementUseCase{
		txManager:    txManager,
		movementRepo: movementRepo,
		entityRepo:   entityRepo,
		idGen:        idGen,
		cache:        cache,
	}
}

// CreateMovementInput represents input for recording a movement.
type CreateMovementInput struct {
	Date        time.Time
	Description string
	CategoryID  string
	EntityID    string
	Direction   domain.Direction
	Amount      int64
}

// UpdateMovementInput carries the editable fields of a movement. Nil fields
// are left unchanged.
type UpdateMovementInput struct {
	Description *string
	CategoryID  *string
}

// CreateMovement validates and stores a movement.
func (uc *MovementUseCase) CreateMovement(ctx context.Context, input CreateMovementInput) (*domain.Movement, error) {
	now := time.Now().UTC()
	movement := &domain.Movement{
		ID:          uc.idGen.Generate(),
		Description: input.Description,
		CategoryID:  input.CategoryID,
		EntityID:    input.EntityID,
		Direction:   input.Direction,
		Amount:      input.Amount,
		Date:        input.Date,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := movement.Validate(); err != nil {
		return nil, err
	}

	if movement.EntityID != "" {
		if _, err := uc.entityRepo.GetByID(ctx, movement.EntityID); err != nil {
			return nil, err
		}
	}

	if err := uc.movementRepo.Create(ctx, nil, movement); err != nil {
		return nil, err
	}

	invalidateViews(ctx, uc.cache)
	return movement, nil
}

// GetMovement retrieves a movement by ID.
func (uc *MovementUseCase) GetMovement(ctx context.Context, id string) (*domain.Movement, error) {
	return uc.movementRepo.GetByID(ctx, id)
}

// ListMovements lists movements matching filter with pagination limits applied.
func (uc *MovementUseCase) ListMovements(ctx context.Context, filter MovementFilter) ([]domain.Movement, error) {
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return nil, domain.ErrInvalidPeriodRange
	}

	limit, offset, err := domain.ValidatePagination(filter.Limit, filter.Offset)
	if err != nil {
		return nil, err
	}
	filter.Limit, filter.Offset = limit, offset

	return uc.movementRepo.List(ctx, filter)
}

// UpdateMovement edits the description and category of a movement. Amount,
// direction and date are immutable once recorded.
func (uc *MovementUseCase) UpdateMovement(ctx context.Context, id string, input UpdateMovementInput) (*domain.Movement, error) {
	movement, err := uc.movementRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Description != nil {
		if err := domain.ValidateDescription(*input.Description); err != nil {
			return nil, err
		}
		movement.Description = *input.Description
	}
	if input.CategoryID != nil {
		movement.CategoryID = *input.CategoryID
	}
	movement.UpdatedAt = time.Now().UTC()

	if err := uc.movementRepo.UpdateDetails(ctx, id, movement.Description, movement.CategoryID, movement.UpdatedAt); err != nil {
		return nil, err
	}

	invalidateViews(ctx, uc.cache)
	return movement, nil
}

// DeleteMovement removes a movement together with any goal contribution
// linked to it.
func (uc *MovementUseCase) DeleteMovement(ctx context.Context, id string) error {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := uc.movementRepo.Delete(ctx, tx, id); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	invalidateViews(ctx, uc.cache)
	return nil
}
