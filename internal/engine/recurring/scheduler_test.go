package recurring

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/fincore/internal/domain"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func monthlyRule(id string, next time.Time) domain.RecurringRule {
	return domain.RecurringRule{
		ID:          id,
		Description: "Rent",
		Amount:      120_000,
		Direction:   domain.DirectionExpense,
		CategoryID:  "housing",
		Frequency:   domain.FrequencyMonthly,
		StartDate:   next,
		NextDueDate: next,
		Active:      true,
		AutoPost:    true,
	}
}

func TestAdvance(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		due  time.Time
		freq domain.Frequency
		want time.Time
	}{
		{"monthly clamps to february", day(2026, 1, 31), domain.FrequencyMonthly, day(2026, 2, 28)},
		{"weekly", day(2026, 1, 31), domain.FrequencyWeekly, day(2026, 2, 7)},
		{"biweekly", day(2026, 12, 25), domain.FrequencyBiweekly, day(2027, 1, 8)},
		{"quarterly", day(2026, 11, 30), domain.FrequencyQuarterly, day(2027, 2, 28)},
		{"annual leap day", day(2028, 2, 29), domain.FrequencyAnnual, day(2029, 2, 28)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Advance(tt.due, tt.freq)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := Advance(day(2026, 1, 1), "daily")
	assert.ErrorIs(t, err, domain.ErrInvalidFrequency)
}

func TestAdvanceAnchoredReturnsToStartDay(t *testing.T) {
	t.Parallel()

	feb, err := AdvanceAnchored(day(2026, 1, 31), domain.FrequencyMonthly, 31)
	require.NoError(t, err)
	assert.Equal(t, day(2026, 2, 28), feb)

	mar, err := AdvanceAnchored(feb, domain.FrequencyMonthly, 31)
	require.NoError(t, err)
	assert.Equal(t, day(2026, 3, 31), mar)
}

func TestLabel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		freq domain.Frequency
		due  time.Time
		want string
	}{
		{domain.FrequencyWeekly, day(2026, 1, 28), "2026-W05"},
		{domain.FrequencyBiweekly, day(2026, 1, 28), "2026-W05"},
		{domain.FrequencyMonthly, day(2026, 2, 14), "2026-02"},
		{domain.FrequencyQuarterly, day(2026, 8, 1), "2026-Q3"},
		{domain.FrequencyAnnual, day(2026, 8, 1), "2026"},
	}

	for _, tt := range tests {
		got, err := Label(tt.due, tt.freq)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestDueRules(t *testing.T) {
	t.Parallel()

	today := day(2026, 3, 10)
	end := day(2026, 2, 1)

	due := monthlyRule("due", day(2026, 3, 1))
	future := monthlyRule("future", day(2026, 3, 20))
	paused := monthlyRule("paused", day(2026, 3, 1))
	paused.Active = false
	expired := monthlyRule("expired", day(2026, 1, 1))
	expired.EndDate = &end
	posted := monthlyRule("posted", day(2026, 3, 5))

	postings := []domain.RecurringPosting{{RuleID: "posted", PeriodLabel: "2026-03"}}

	got := DueRules([]domain.RecurringRule{due, future, paused, expired, posted}, postings, today)
	require.Len(t, got, 1)
	assert.Equal(t, "due", got[0].ID)

	// Repeated checks in the same period see the posting and stay quiet.
	postings = append(postings, domain.RecurringPosting{RuleID: "due", PeriodLabel: "2026-03"})
	assert.Empty(t, DueRules([]domain.RecurringRule{due}, postings, today))
}

func TestPlanRuleSinglePeriod(t *testing.T) {
	t.Parallel()

	rule := monthlyRule("rent", day(2026, 1, 31))
	plan, err := PlanRule(rule, PostingIndex{}, day(2026, 2, 1))
	require.NoError(t, err)

	require.Len(t, plan.Occurrences, 1)
	assert.Equal(t, "2026-01", plan.Occurrences[0].PeriodLabel)
	assert.Equal(t, DispositionPost, plan.Occurrences[0].Disposition)
	assert.Equal(t, day(2026, 2, 28), plan.Rule.NextDueDate)
	assert.True(t, plan.Changed(rule))

	// The input rule is never modified.
	assert.Equal(t, day(2026, 1, 31), rule.NextDueDate)
}

func TestPlanRuleBackfill(t *testing.T) {
	t.Parallel()

	today := day(2026, 4, 15)

	tests := []struct {
		name     string
		autoPost bool
		backfill bool
		want     []Disposition
	}{
		{"auto post with backfill", true, true, []Disposition{DispositionPost, DispositionPost, DispositionPost, DispositionPost}},
		{"auto post without backfill", true, false, []Disposition{DispositionConfirm, DispositionConfirm, DispositionConfirm, DispositionPost}},
		{"confirmation rule", false, true, []Disposition{DispositionConfirm, DispositionConfirm, DispositionConfirm, DispositionConfirm}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := monthlyRule("sub", day(2026, 1, 10))
			rule.AutoPost = tt.autoPost
			rule.BackfillMissed = tt.backfill

			plan, err := PlanRule(rule, PostingIndex{}, today)
			require.NoError(t, err)
			require.Len(t, plan.Occurrences, len(tt.want))

			for i, o := range plan.Occurrences {
				assert.Equal(t, tt.want[i], o.Disposition, "occurrence %s", o.PeriodLabel)
			}
			assert.Equal(t, day(2026, 5, 10), plan.Rule.NextDueDate)
		})
	}
}

func TestPlanRuleSkipsPostedLabels(t *testing.T) {
	t.Parallel()

	rule := monthlyRule("sub", day(2026, 1, 10))
	rule.BackfillMissed = true
	idx := IndexPostings([]domain.RecurringPosting{{RuleID: "sub", PeriodLabel: "2026-02"}})

	plan, err := PlanRule(rule, idx, day(2026, 3, 10))
	require.NoError(t, err)

	labels := make([]string, 0, len(plan.Occurrences))
	for _, o := range plan.Occurrences {
		labels = append(labels, o.PeriodLabel)
	}
	assert.Equal(t, []string{"2026-01", "2026-03"}, labels)
}

func TestPlanRuleExpires(t *testing.T) {
	t.Parallel()

	end := day(2026, 2, 15)
	rule := monthlyRule("gym", day(2026, 2, 1))
	rule.EndDate = &end
	rule.BackfillMissed = true

	plan, err := PlanRule(rule, PostingIndex{}, day(2026, 5, 1))
	require.NoError(t, err)

	assert.True(t, plan.Expired)
	assert.False(t, plan.Rule.Active)
	require.Len(t, plan.Occurrences, 1)
	assert.Equal(t, "2026-02", plan.Occurrences[0].PeriodLabel)
}

func TestPlanRuleInactiveIsNoop(t *testing.T) {
	t.Parallel()

	rule := Pause(monthlyRule("paused", day(2026, 1, 1)))
	plan, err := PlanRule(rule, PostingIndex{}, day(2026, 6, 1))
	require.NoError(t, err)
	assert.Empty(t, plan.Occurrences)
	assert.False(t, plan.Changed(rule))
}

func TestResume(t *testing.T) {
	t.Parallel()

	rule := Pause(monthlyRule("paused", day(2026, 1, 31)))
	resumed, err := Resume(rule, day(2026, 4, 2))
	require.NoError(t, err)
	assert.True(t, resumed.Active)
	assert.Equal(t, day(2026, 4, 30), resumed.NextDueDate)

	end := day(2026, 2, 1)
	rule.EndDate = &end
	if _, err := Resume(rule, day(2026, 4, 2)); !errors.Is(err, domain.ErrRuleExpired) {
		t.Fatalf("expected ErrRuleExpired, got %v", err)
	}
}

func TestOccurrences(t *testing.T) {
	t.Parallel()

	rule := monthlyRule("rent", day(2026, 1, 31))
	got, err := Occurrences(rule, day(2026, 2, 1), day(2026, 5, 31))
	require.NoError(t, err)
	assert.Equal(t, []time.Time{day(2026, 2, 28), day(2026, 3, 31), day(2026, 4, 30), day(2026, 5, 31)}, got)

	_, err = Occurrences(rule, day(2026, 5, 1), day(2026, 4, 1))
	assert.ErrorIs(t, err, domain.ErrInvalidPeriodRange)
}
