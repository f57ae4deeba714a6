package health

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/fincore/internal/domain"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestComputeSnapshotZeroIncome(t *testing.T) {
	t.Parallel()

	today := day(2026, 6, 30)
	movements := []domain.Movement{
		{Direction: domain.DirectionExpense, Amount: 90_000, Date: day(2026, 6, 1)},
	}
	debts := []domain.LongTermDebt{{Active: true, CurrentPrincipal: 1_000_000, MonthlyPayment: 20_000}}

	s := ComputeSnapshot(movements, debts, map[string]int64{"checking": 60_000}, today)

	rate, err := s.SavingsRate.Decimal()
	if err != nil {
		t.Fatalf("savings rate must be defined, got %v", err)
	}
	if !rate.IsZero() {
		t.Fatalf("expected savings rate 0, got %s", rate)
	}
	if !s.DebtToIncomeRatio.Undefined {
		t.Fatalf("expected undefined debt-to-income, got %+v", s.DebtToIncomeRatio)
	}
	if _, err := s.DebtToIncomeRatio.Decimal(); !errors.Is(err, domain.ErrUndefinedRatio) {
		t.Fatalf("expected ErrUndefinedRatio, got %v", err)
	}
	if s.NetWorth != -940_000 {
		t.Fatalf("expected net worth -940000, got %d", s.NetWorth)
	}
	// savings critical, DTI critical (payments owed), emergency fund 2 months critical, net worth critical
	if s.Score != 0 {
		t.Fatalf("expected score 0, got %d", s.Score)
	}
}

func TestComputeSnapshotEmptyLedger(t *testing.T) {
	t.Parallel()

	s := ComputeSnapshot(nil, nil, nil, day(2026, 1, 1))

	if !s.EmergencyFundMonths.Undefined || !s.DebtToIncomeRatio.Undefined {
		t.Fatalf("expected undefined ratios, got %+v", s)
	}
	// DTI good (no payments), net worth good, savings and emergency fund critical.
	if s.Score != 45 {
		t.Fatalf("expected score 45, got %d", s.Score)
	}
}

func TestComputeSnapshotHealthy(t *testing.T) {
	t.Parallel()

	today := day(2026, 4, 15)
	var movements []domain.Movement
	for _, m := range []time.Month{time.February, time.March, time.April} {
		movements = append(movements,
			domain.Movement{Direction: domain.DirectionIncome, Amount: 500_000, Date: day(2026, m, 1)},
			domain.Movement{Direction: domain.DirectionExpense, Amount: 250_000, Date: day(2026, m, 5)},
		)
	}
	// Outside the trailing window.
	movements = append(movements,
		domain.Movement{Direction: domain.DirectionExpense, Amount: 9_000_000, Date: day(2026, 1, 15)},
		domain.Movement{Direction: domain.DirectionIncome, Amount: 9_000_000, Date: day(2026, 4, 16)},
	)

	debts := []domain.LongTermDebt{
		{Active: true, CurrentPrincipal: 2_000_000, MonthlyPayment: 50_000},
		{Active: false, CurrentPrincipal: 7_000_000, MonthlyPayment: 90_000},
	}
	totals := map[string]int64{"checking": 1_000_000, "savings": 1_500_000}

	s := ComputeSnapshot(movements, debts, totals, today)

	if s.AverageIncome != 500_000 || s.AverageExpense != 250_000 {
		t.Fatalf("unexpected averages %d/%d", s.AverageIncome, s.AverageExpense)
	}
	if s.TotalLiabilities != 2_000_000 || s.MonthlyDebtPayments != 50_000 {
		t.Fatalf("inactive debt counted: %+v", s)
	}

	checks := []struct {
		name  string
		ratio domain.Ratio
		want  string
	}{
		{"savings", s.SavingsRate, "0.4"},
		{"dti", s.DebtToIncomeRatio, "0.1"},
		{"emergency", s.EmergencyFundMonths, "10"},
	}
	for _, c := range checks {
		v, err := c.ratio.Decimal()
		if err != nil {
			t.Fatalf("%s: %v", c.name, err)
		}
		if !v.Equal(decimal.RequireFromString(c.want)) {
			t.Fatalf("%s = %s, want %s", c.name, v, c.want)
		}
	}

	if s.Score != 100 {
		t.Fatalf("expected score 100, got %d", s.Score)
	}
}

func TestScoreBands(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value string
		level func(domain.Ratio) domain.HealthLevel
		want  domain.HealthLevel
	}{
		{"savings good", "0.20", levelSavings, domain.HealthGood},
		{"savings warning", "0.10", levelSavings, domain.HealthWarning},
		{"savings critical", "0.0999", levelSavings, domain.HealthCritical},
		{"dti good", "0.35", func(r domain.Ratio) domain.HealthLevel { return levelDebtToIncome(r, 1) }, domain.HealthGood},
		{"dti warning", "0.50", func(r domain.Ratio) domain.HealthLevel { return levelDebtToIncome(r, 1) }, domain.HealthWarning},
		{"dti critical", "0.51", func(r domain.Ratio) domain.HealthLevel { return levelDebtToIncome(r, 1) }, domain.HealthCritical},
		{"fund good", "6", func(r domain.Ratio) domain.HealthLevel { return levelEmergencyFund(r, 1) }, domain.HealthGood},
		{"fund warning", "3", func(r domain.Ratio) domain.HealthLevel { return levelEmergencyFund(r, 1) }, domain.HealthWarning},
		{"fund critical", "2.99", func(r domain.Ratio) domain.HealthLevel { return levelEmergencyFund(r, 1) }, domain.HealthCritical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.level(domain.DefinedRatio(decimal.RequireFromString(tt.value)))
			if got != tt.want {
				t.Fatalf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestScoreRoundsHalfUp(t *testing.T) {
	t.Parallel()

	ratios := []domain.HealthRatio{
		{Weight: 25, Score: 50},
		{Weight: 30, Score: 0},
	}
	if got := Score(ratios); got != 13 {
		t.Fatalf("expected 13, got %d", got)
	}
}
