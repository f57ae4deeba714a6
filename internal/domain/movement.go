package domain

import (
	"fmt"
	"time"
)

// Direction tells whether a movement brings money in or takes it out.
type Direction string

const (
	DirectionIncome  Direction = "income"
	DirectionExpense Direction = "expense"
)

// IsValid reports whether d is a known direction.
func (d Direction) IsValid() bool {
	return d == DirectionIncome || d == DirectionExpense
}

// Sign returns +1 for income and -1 for expense.
func (d Direction) Sign() int64 {
	if d == DirectionIncome {
		return 1
	}
	return -1
}

// Movement is a single dated income or expense record. Amount is an unsigned
// magnitude in cents; Direction carries the sign.
type Movement struct {
	CreatedAt       time.Time
	UpdatedAt       time.Time
	Date            time.Time
	ID              string
	Description     string
	CategoryID      string
	EntityID        string
	RecurringRuleID string
	PeriodLabel     string
	Direction       Direction
	Amount          int64
}

// Signed returns the amount with the direction applied.
func (m *Movement) Signed() int64 {
	return m.Direction.Sign() * m.Amount
}

// IsExpense reports whether the movement takes money out.
func (m *Movement) IsExpense() bool {
	return m.Direction == DirectionExpense
}

// Validate checks the posting invariants of a movement.
func (m *Movement) Validate() error {
	if m.Amount <= 0 {
		return ErrInvalidAmount
	}

	if !m.Direction.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidDirection, m.Direction)
	}

	if m.Date.IsZero() {
		return fmt.Errorf("%w: movement date is required", ErrInvalidPeriodRange)
	}

	return ValidateDescription(m.Description)
}

// Entity is a named account or wallet. Its balance is never stored; it is
// always recomputed from the movements that reference it.
type Entity struct {
	CreatedAt time.Time
	UpdatedAt time.Time
	ID        string
	Name      string
}

// EntityBalance sums the signed amounts of every movement referencing entityID.
func EntityBalance(entityID string, movements []Movement) int64 {
	var balance int64
	for i := range movements {
		if movements[i].EntityID == entityID {
			balance += movements[i].Signed()
		}
	}
	return balance
}

// EntityBalances derives the balance of every entity referenced by movements.
// Movements without an entity are not attributed to any balance.
func EntityBalances(movements []Movement) map[string]int64 {
	balances := make(map[string]int64)
	for i := range movements {
		if movements[i].EntityID == "" {
			continue
		}
		balances[movements[i].EntityID] += movements[i].Signed()
	}
	return balances
}

// Validate checks the entity definition.
func (e *Entity) Validate() error {
	return ValidateName(e.Name)
}
