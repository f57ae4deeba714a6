package domain

import (
	"fmt"
	"time"
)

// Goal is a savings target. Its current amount is always the sum of its
// contributions and is never stored.
type Goal struct {
	CreatedAt    time.Time
	UpdatedAt    time.Time
	TargetDate   *time.Time
	ID           string
	Name         string
	TargetAmount int64
}

// Validate checks the goal definition.
func (g *Goal) Validate() error {
	if g.TargetAmount <= 0 {
		return fmt.Errorf("%w: target must be positive", ErrInvalidGoal)
	}
	return ValidateName(g.Name)
}

// Contribution is money set aside for a goal. When MovementID is set the
// contribution is removed together with that movement.
type Contribution struct {
	CreatedAt  time.Time
	Date       time.Time
	ID         string
	GoalID     string
	MovementID string
	Amount     int64
}

// Validate checks the contribution.
func (c *Contribution) Validate() error {
	if c.Amount <= 0 {
		return ErrInvalidAmount
	}
	if c.GoalID == "" {
		return fmt.Errorf("%w: goal is required", ErrInvalidGoal)
	}
	if c.Date.IsZero() {
		return fmt.Errorf("%w: contribution date is required", ErrInvalidPeriodRange)
	}
	return nil
}

// GoalProgress is the derived funding state of a goal.
type GoalProgress struct {
	ProjectedCompletion *time.Time
	GoalID              string
	CurrentAmount       int64
	RemainingAmount     int64
	OverfundedAmount    int64
	Percentage          int64
	Completed           bool
}
