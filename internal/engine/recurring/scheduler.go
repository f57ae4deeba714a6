package recurring

import (
	"time"

	"github.com/iho/fincore/internal/domain"
	"github.com/iho/fincore/internal/period"
)

// Disposition says what the due-check does with an occurrence.
type Disposition string

const (
	// DispositionPost creates the movement immediately.
	DispositionPost Disposition = "post"
	// DispositionConfirm queues the occurrence until the user confirms it.
	DispositionConfirm Disposition = "confirm"
)

// Occurrence is one due period of a rule that has not been handled yet.
type Occurrence struct {
	DueDate     time.Time
	PeriodLabel string
	Disposition Disposition
}

// Plan is the outcome of a due-check for one rule: the rule as it must be
// persisted and the occurrences to post or queue.
type Plan struct {
	Rule        domain.RecurringRule
	Occurrences []Occurrence
	Expired     bool
}

// Changed reports whether applying the plan writes anything.
func (p Plan) Changed(before domain.RecurringRule) bool {
	return p.Expired || len(p.Occurrences) > 0 || !p.Rule.NextDueDate.Equal(before.NextDueDate)
}

// PostingIndex is the set of (rule, period label) pairs already handled.
type PostingIndex map[string]struct{}

// IndexPostings builds the deduplication index from existing postings.
func IndexPostings(postings []domain.RecurringPosting) PostingIndex {
	idx := make(PostingIndex, len(postings))
	for i := range postings {
		idx.Add(postings[i].RuleID, postings[i].PeriodLabel)
	}
	return idx
}

// Add marks (ruleID, label) as handled.
func (idx PostingIndex) Add(ruleID, label string) {
	idx[ruleID+"|"+label] = struct{}{}
}

// Has reports whether (ruleID, label) has been handled.
func (idx PostingIndex) Has(ruleID, label string) bool {
	_, ok := idx[ruleID+"|"+label]
	return ok
}

// DueRules returns the active, unexpired rules whose NextDueDate is on or
// before today and whose current period has no posting yet.
func DueRules(rules []domain.RecurringRule, postings []domain.RecurringPosting, today time.Time) []domain.RecurringRule {
	today = period.Day(today)
	idx := IndexPostings(postings)

	var due []domain.RecurringRule
	for _, r := range rules {
		if !r.Active || r.ExpiredAt(today) {
			continue
		}
		if period.Day(r.NextDueDate).After(today) {
			continue
		}
		label, err := Label(r.NextDueDate, r.Frequency)
		if err != nil || idx.Has(r.ID, label) {
			continue
		}
		due = append(due, r)
	}
	return due
}

// PlanRule computes the transition rule × today → rule'. Every occurrence from
// NextDueDate up to today (and not past EndDate) whose label has no posting is
// returned with its disposition, and NextDueDate moves past today. A rule past
// its EndDate is deactivated; its history is left alone.
//
// Auto-posting rules post their latest occurrence; earlier missed ones are
// posted too when BackfillMissed is set and queued otherwise. Rules without
// auto-post queue everything.
func PlanRule(rule domain.RecurringRule, idx PostingIndex, today time.Time) (Plan, error) {
	today = period.Day(today)
	plan := Plan{Rule: rule}
	if !rule.Active {
		return plan, nil
	}

	anchor := anchorDay(&rule)
	due := period.Day(rule.NextDueDate)
	for i := 0; i < maxOccurrences && !due.After(today); i++ {
		if rule.EndDate != nil && due.After(period.Day(*rule.EndDate)) {
			break
		}
		label, err := Label(due, rule.Frequency)
		if err != nil {
			return Plan{}, err
		}
		if !idx.Has(rule.ID, label) {
			plan.Occurrences = append(plan.Occurrences, Occurrence{DueDate: due, PeriodLabel: label})
		}
		next, err := AdvanceAnchored(due, rule.Frequency, anchor)
		if err != nil {
			return Plan{}, err
		}
		due = next
	}
	plan.Rule.NextDueDate = due

	for i := range plan.Occurrences {
		plan.Occurrences[i].Disposition = disposition(&rule, i == len(plan.Occurrences)-1)
	}

	if rule.ExpiredAt(today) {
		plan.Rule.Active = false
		plan.Expired = true
	}
	return plan, nil
}

func disposition(rule *domain.RecurringRule, latest bool) Disposition {
	if !rule.AutoPost {
		return DispositionConfirm
	}
	if latest || rule.BackfillMissed {
		return DispositionPost
	}
	return DispositionConfirm
}

// Pause stops a rule from falling due.
func Pause(rule domain.RecurringRule) domain.RecurringRule {
	rule.Active = false
	return rule
}

// Resume reactivates a paused rule. Periods that passed while it was paused
// are skipped rather than backfilled. An expired rule cannot be resumed.
func Resume(rule domain.RecurringRule, today time.Time) (domain.RecurringRule, error) {
	today = period.Day(today)
	if rule.ExpiredAt(today) {
		return rule, domain.ErrRuleExpired
	}
	if rule.Active {
		return rule, nil
	}

	anchor := anchorDay(&rule)
	due := period.Day(rule.NextDueDate)
	for i := 0; i < maxOccurrences && due.Before(today); i++ {
		next, err := AdvanceAnchored(due, rule.Frequency, anchor)
		if err != nil {
			return rule, err
		}
		due = next
	}
	rule.NextDueDate = due
	rule.Active = true
	return rule, nil
}
