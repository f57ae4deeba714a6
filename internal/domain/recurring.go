package domain

import (
	"fmt"
	"time"
)

// Frequency is how often a recurring rule falls due.
type Frequency string

const (
	FrequencyWeekly    Frequency = "weekly"
	FrequencyBiweekly  Frequency = "biweekly"
	FrequencyMonthly   Frequency = "monthly"
	FrequencyQuarterly Frequency = "quarterly"
	FrequencyAnnual    Frequency = "annual"
)

var validFrequencies = map[Frequency]bool{
	FrequencyWeekly:    true,
	FrequencyBiweekly:  true,
	FrequencyMonthly:   true,
	FrequencyQuarterly: true,
	FrequencyAnnual:    true,
}

// IsValid reports whether f is a supported frequency.
func (f Frequency) IsValid() bool {
	return validFrequencies[f]
}

// RecurringRule is a template for periodic obligations such as rent or
// subscriptions. NextDueDate only moves forward.
type RecurringRule struct {
	CreatedAt       time.Time
	UpdatedAt       time.Time
	StartDate       time.Time
	NextDueDate     time.Time
	EndDate         *time.Time
	ID              string
	Description     string
	CategoryID      string
	EntityID        string
	Direction       Direction
	Frequency       Frequency
	Amount          int64
	Active          bool
	AutoPost        bool
	EstimatedAmount bool
	BackfillMissed  bool
}

// Validate checks the rule definition.
func (r *RecurringRule) Validate() error {
	if r.Amount <= 0 {
		return ErrInvalidAmount
	}

	if !r.Direction.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidDirection, r.Direction)
	}

	if !r.Frequency.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidFrequency, r.Frequency)
	}

	if r.StartDate.IsZero() || r.NextDueDate.IsZero() {
		return fmt.Errorf("%w: start and next due dates are required", ErrInvalidPeriodRange)
	}

	if r.NextDueDate.Before(r.StartDate) {
		return fmt.Errorf("%w: next due date precedes start date", ErrInvalidPeriodRange)
	}

	if r.EndDate != nil && r.EndDate.Before(r.StartDate) {
		return fmt.Errorf("%w: end date precedes start date", ErrInvalidPeriodRange)
	}

	return ValidateDescription(r.Description)
}

// ExpiredAt reports whether the rule is past its end date on day today.
func (r *RecurringRule) ExpiredAt(today time.Time) bool {
	return r.EndDate != nil && today.After(*r.EndDate)
}

// PostingStatus is the state of one recurring occurrence.
type PostingStatus string

const (
	PostingStatusPosted  PostingStatus = "posted"
	PostingStatusPending PostingStatus = "pending"
)

// RecurringPosting records that the occurrence of a rule for one period label
// has been handled, either posted as a movement or queued for confirmation.
// (RuleID, PeriodLabel) is unique.
type RecurringPosting struct {
	CreatedAt   time.Time
	DueDate     time.Time
	RuleID      string
	PeriodLabel string
	MovementID  string
	Status      PostingStatus
	Amount      int64
}
