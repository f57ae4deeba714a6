package forecast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/fincore/internal/domain"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func rule(id string, dir domain.Direction, amount int64, next time.Time) domain.RecurringRule {
	return domain.RecurringRule{
		ID:          id,
		Description: id,
		Direction:   dir,
		Amount:      amount,
		Frequency:   domain.FrequencyMonthly,
		StartDate:   next,
		NextDueDate: next,
		Active:      true,
		AutoPost:    true,
	}
}

func TestGenerateFirstNegativeDate(t *testing.T) {
	t.Parallel()

	fc, err := Generate(Input{
		InitialBalance: 0,
		Rules:          []domain.RecurringRule{rule("rent", domain.DirectionExpense, 50_000, day(2026, 1, 10))},
		Start:          day(2026, 1, 1),
		HorizonMonths:  3,
	})
	require.NoError(t, err)

	require.Len(t, fc.Entries, 3)
	require.NotNil(t, fc.FirstNegativeDate)
	assert.Equal(t, day(2026, 1, 10), *fc.FirstNegativeDate)
	assert.Equal(t, int64(-150_000), fc.FinalBalance)
	assert.Equal(t, int64(-150_000), fc.LowestBalance)
	assert.Equal(t, day(2026, 3, 31), fc.LowestBalanceDate)
	assert.Equal(t, day(2026, 3, 31), fc.End)
}

func TestGenerateChainsBalances(t *testing.T) {
	t.Parallel()

	salary := rule("salary", domain.DirectionIncome, 300_000, day(2026, 1, 25))
	groceries := rule("groceries", domain.DirectionExpense, 80_000, day(2026, 1, 3))
	groceries.Frequency = domain.FrequencyWeekly
	groceries.EstimatedAmount = true

	debt := domain.LongTermDebt{
		ID:     "car",
		Name:   "Car loan",
		Active: true,
		Schedule: []domain.AmortizationEntry{
			{Period: 1, DueDate: day(2025, 12, 15), PaymentAmount: 40_000, Status: domain.EntryStatusOverdue},
			{Period: 2, DueDate: day(2026, 1, 15), PaymentAmount: 40_000, Status: domain.EntryStatusPaid, PartialAmountPaid: 40_000},
			{Period: 3, DueDate: day(2026, 2, 15), PaymentAmount: 40_000, Status: domain.EntryStatusPartial, PartialAmountPaid: 15_000},
			{Period: 4, DueDate: day(2026, 3, 15), PaymentAmount: 40_000, Status: domain.EntryStatusPending},
		},
	}
	contribution := domain.Contribution{GoalID: "holiday", Amount: 10_000, Date: day(2026, 2, 1)}

	fc, err := Generate(Input{
		InitialBalance: 100_000,
		Rules:          []domain.RecurringRule{salary, groceries},
		Debts:          []domain.LongTermDebt{debt},
		Contributions:  []domain.Contribution{contribution},
		Start:          day(2026, 1, 1),
		HorizonMonths:  6,
	})
	require.NoError(t, err)
	require.Len(t, fc.Entries, 6)

	assert.Equal(t, fc.InitialBalance, fc.Entries[0].OpeningBalance)
	for i := 0; i+1 < len(fc.Entries); i++ {
		assert.Equal(t, fc.Entries[i].ClosingBalance, fc.Entries[i+1].OpeningBalance, "entry %d", i)
	}
	for _, e := range fc.Entries {
		assert.Equal(t, e.ProjectedIncome-e.ProjectedExpenses, e.NetCashFlow)
		assert.Equal(t, e.OpeningBalance+e.NetCashFlow, e.ClosingBalance)
		assert.True(t, e.HasEstimates)
	}
	assert.Equal(t, fc.Entries[len(fc.Entries)-1].ClosingBalance, fc.FinalBalance)

	feb := fc.Entries[1]
	var debtOut, contribOut int64
	for _, ev := range feb.Events {
		switch ev.Source {
		case domain.SourceDebt:
			debtOut += ev.Amount
		case domain.SourceContribution:
			contribOut += ev.Amount
		}
	}
	assert.Equal(t, int64(-25_000), debtOut)
	assert.Equal(t, int64(-10_000), contribOut)

	var janDebt []domain.ForecastEvent
	for _, ev := range fc.Entries[0].Events {
		if ev.Source == domain.SourceDebt {
			janDebt = append(janDebt, ev)
		}
	}
	require.Len(t, janDebt, 1, "paid entries are not projected")
	assert.Equal(t, "car#1", janDebt[0].ReferenceID)
	assert.Equal(t, day(2026, 1, 1), janDebt[0].Date)
	assert.Equal(t, int64(-40_000), janDebt[0].Amount)
}

func TestGenerateCarriesArrearsIntoFirstEntry(t *testing.T) {
	t.Parallel()

	// The due-check has not run since November, so October is still awaiting
	// confirmation and November and December were never swept.
	rent := rule("rent", domain.DirectionExpense, 50_000, day(2025, 11, 10))
	rent.StartDate = day(2025, 1, 10)
	pending := []domain.RecurringPosting{
		{RuleID: "rent", PeriodLabel: "2025-10", DueDate: day(2025, 10, 10), Amount: 48_000, Status: domain.PostingStatusPending},
		{RuleID: "rent", PeriodLabel: "2025-09", DueDate: day(2025, 9, 10), Amount: 50_000, Status: domain.PostingStatusPosted},
		{RuleID: "gone", PeriodLabel: "2025-10", DueDate: day(2025, 10, 1), Amount: 1, Status: domain.PostingStatusPending},
	}
	debt := domain.LongTermDebt{
		ID:     "car",
		Name:   "Car loan",
		Active: true,
		Schedule: []domain.AmortizationEntry{
			{Period: 1, DueDate: day(2025, 11, 15), PaymentAmount: 40_000, Status: domain.EntryStatusPaid},
			{Period: 2, DueDate: day(2025, 12, 15), PaymentAmount: 40_000, Status: domain.EntryStatusPending},
		},
	}

	fc, err := Generate(Input{
		InitialBalance: 500_000,
		Rules:          []domain.RecurringRule{rent},
		Pending:        pending,
		Debts:          []domain.LongTermDebt{debt},
		Start:          day(2026, 1, 1),
		HorizonMonths:  2,
	})
	require.NoError(t, err)
	require.Len(t, fc.Entries, 2)

	jan := fc.Entries[0]
	var onStart int
	for _, ev := range jan.Events {
		if ev.Date.Equal(day(2026, 1, 1)) {
			onStart++
		}
	}
	// October pending, November and December rent, December loan payment.
	assert.Equal(t, 4, onStart)
	assert.Equal(t, int64(48_000+2*50_000+40_000+50_000), jan.ProjectedExpenses)
	assert.True(t, jan.HasEstimates)

	feb := fc.Entries[1]
	assert.Equal(t, int64(50_000), feb.ProjectedExpenses)
	assert.Equal(t, int64(500_000-238_000-50_000), fc.FinalBalance)
}

func TestGenerateFlagsConfirmationRulesAsEstimates(t *testing.T) {
	t.Parallel()

	manual := rule("bonus", domain.DirectionIncome, 20_000, day(2026, 1, 5))
	manual.AutoPost = false
	paused := rule("paused", domain.DirectionExpense, 99_999, day(2026, 1, 5))
	paused.Active = false

	fc, err := Generate(Input{
		InitialBalance: 1_000,
		Rules:          []domain.RecurringRule{manual, paused},
		Start:          day(2026, 1, 1),
		HorizonMonths:  1,
	})
	require.NoError(t, err)
	require.Len(t, fc.Entries, 1)
	require.Len(t, fc.Entries[0].Events, 1)
	assert.True(t, fc.Entries[0].Events[0].IsEstimated)
	assert.Nil(t, fc.FirstNegativeDate)
	assert.Equal(t, int64(21_000), fc.FinalBalance)
}

func TestGenerateWeeklyBuckets(t *testing.T) {
	t.Parallel()

	fc, err := Generate(Input{Start: day(2026, 2, 1), HorizonMonths: 1, Period: domain.PeriodWeekly})
	require.NoError(t, err)

	// 2026-02-01 is a Sunday; February spans five ISO weeks.
	require.Len(t, fc.Entries, 5)
	assert.Equal(t, day(2026, 2, 1), fc.Entries[0].End)
	assert.Equal(t, day(2026, 2, 28), fc.Entries[4].End)
}

func TestGenerateRejectsBadHorizon(t *testing.T) {
	t.Parallel()

	_, err := Generate(Input{Start: day(2026, 1, 1), HorizonMonths: 0})
	assert.ErrorIs(t, err, domain.ErrInvalidPeriodRange)

	_, err = Generate(Input{Start: day(2026, 1, 1), HorizonMonths: 1, Period: "hourly"})
	assert.ErrorIs(t, err, domain.ErrInvalidPeriodKind)
}
