// Package recurring decides which recurring rules are due, enumerates their
// occurrences and computes the state transition a due-check applies.
package recurring

import (
	"fmt"
	"time"

	"github.com/iho/fincore/internal/domain"
	"github.com/iho/fincore/internal/period"
)

// maxOccurrences bounds enumeration for rules left untouched for a very long
// time.
const maxOccurrences = 1000

// PeriodKind maps a frequency to the period its label is taken from.
// Biweekly rules are labelled by ISO week like weekly ones.
func PeriodKind(f domain.Frequency) (domain.PeriodKind, error) {
	switch f {
	case domain.FrequencyWeekly, domain.FrequencyBiweekly:
		return domain.PeriodWeekly, nil
	case domain.FrequencyMonthly:
		return domain.PeriodMonthly, nil
	case domain.FrequencyQuarterly:
		return domain.PeriodQuarterly, nil
	case domain.FrequencyAnnual:
		return domain.PeriodAnnual, nil
	}
	return "", fmt.Errorf("%w: %q", domain.ErrInvalidFrequency, f)
}

// Label returns the deduplication label of an occurrence due on due.
func Label(due time.Time, f domain.Frequency) (string, error) {
	kind, err := PeriodKind(f)
	if err != nil {
		return "", err
	}
	return period.Label(kind, due)
}

// Advance adds one frequency interval to due. Month-based intervals clamp to
// the last day of a shorter month: 2026-01-31 monthly becomes 2026-02-28.
func Advance(due time.Time, f domain.Frequency) (time.Time, error) {
	return AdvanceAnchored(due, f, period.Day(due).Day())
}

// AdvanceAnchored is Advance for month-based intervals landing on anchorDay
// when the target month has it.
func AdvanceAnchored(due time.Time, f domain.Frequency, anchorDay int) (time.Time, error) {
	due = period.Day(due)
	switch f {
	case domain.FrequencyWeekly:
		return due.AddDate(0, 0, 7), nil
	case domain.FrequencyBiweekly:
		return due.AddDate(0, 0, 14), nil
	case domain.FrequencyMonthly:
		return period.AddMonthsAnchored(due, 1, anchorDay), nil
	case domain.FrequencyQuarterly:
		return period.AddMonthsAnchored(due, 3, anchorDay), nil
	case domain.FrequencyAnnual:
		return period.AddMonthsAnchored(due, 12, anchorDay), nil
	}
	return time.Time{}, fmt.Errorf("%w: %q", domain.ErrInvalidFrequency, f)
}

// anchorDay is the day of month a rule's schedule returns to.
func anchorDay(rule *domain.RecurringRule) int {
	if !rule.StartDate.IsZero() {
		return period.Day(rule.StartDate).Day()
	}
	return period.Day(rule.NextDueDate).Day()
}

// Occurrences lists the due dates of rule within [from, to], starting at its
// NextDueDate and stopping at its EndDate.
func Occurrences(rule domain.RecurringRule, from, to time.Time) ([]time.Time, error) {
	from, to = period.Day(from), period.Day(to)
	if to.Before(from) {
		return nil, fmt.Errorf("%w: %s is before %s", domain.ErrInvalidPeriodRange,
			to.Format(time.DateOnly), from.Format(time.DateOnly))
	}

	var dates []time.Time
	anchor := anchorDay(&rule)
	due := period.Day(rule.NextDueDate)
	for i := 0; i < maxOccurrences && !due.After(to); i++ {
		if rule.EndDate != nil && due.After(period.Day(*rule.EndDate)) {
			break
		}
		if !due.Before(from) {
			dates = append(dates, due)
		}
		next, err := AdvanceAnchored(due, rule.Frequency, anchor)
		if err != nil {
			return nil, err
		}
		due = next
	}
	return dates, nil
}
