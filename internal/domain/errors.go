package domain

import "errors"

var (
	// Input errors
	ErrInvalidAmountFormat     = errors.New("invalid amount format")
	ErrInvalidAmount           = errors.New("amount must be positive")
	ErrInvalidDirection        = errors.New("direction must be income or expense")
	ErrInvalidLoanParameters   = errors.New("invalid loan parameters")
	ErrInvalidBudgetDefinition = errors.New("invalid budget definition")
	ErrInvalidPeriodRange      = errors.New("invalid period range")
	ErrInvalidPeriodKind       = errors.New("invalid period kind")
	ErrInvalidFrequency        = errors.New("invalid recurring frequency")
	ErrInvalidGoal             = errors.New("invalid goal definition")

	// Derived value errors
	ErrUndefinedRatio = errors.New("ratio is undefined for a zero denominator")

	// State errors
	ErrInvalidStatusTransition = errors.New("invalid amortization status transition")
	ErrRuleExpired             = errors.New("recurring rule has expired")
	ErrPostingNotPending       = errors.New("recurring posting is not pending confirmation")

	// Lookup errors
	ErrMovementNotFound = errors.New("movement not found")
	ErrEntityNotFound   = errors.New("entity not found")
	ErrRuleNotFound     = errors.New("recurring rule not found")
	ErrPostingNotFound  = errors.New("recurring posting not found")
	ErrDebtNotFound     = errors.New("debt not found")
	ErrEntryNotFound    = errors.New("amortization entry not found")
	ErrBudgetNotFound   = errors.New("budget not found")
	ErrAlertNotFound    = errors.New("budget alert not found")
	ErrGoalNotFound     = errors.New("goal not found")
)
