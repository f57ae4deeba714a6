// Package health scores the overall financial position from balances, debts
// and the trailing three months of movements.
package health

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/fincore/internal/domain"
	"github.com/iho/fincore/internal/period"
)

// TrailingMonths is the window income and expense averages are taken over.
const TrailingMonths = 3

// Ratio names.
const (
	RatioSavingsRate   = "savings_rate"
	RatioDebtToIncome  = "debt_to_income"
	RatioEmergencyFund = "emergency_fund_months"
	RatioNetWorth      = "net_worth"
)

const (
	scoreGood     = 100
	scoreWarning  = 50
	scoreCritical = 0
	ratioScale    = 4
)

var (
	savingsGood   = decimal.RequireFromString("0.20")
	savingsWarn   = decimal.RequireFromString("0.10")
	dtiGood       = decimal.RequireFromString("0.35")
	dtiWarn       = decimal.RequireFromString("0.50")
	emergencyGood = decimal.NewFromInt(6)
	emergencyWarn = decimal.NewFromInt(3)
	trailing      = decimal.NewFromInt(TrailingMonths)
)

var weights = map[string]int64{
	RatioSavingsRate:   30,
	RatioDebtToIncome:  30,
	RatioEmergencyFund: 25,
	RatioNetWorth:      15,
}

// ComputeSnapshot derives the health snapshot as of today. entityTotals are
// the derived entity balances; negative balances count as they are.
// Ratios against a zero denominator come back as domain.UndefinedRatio,
// except the savings rate which is zero when there is no income.
func ComputeSnapshot(movements []domain.Movement, debts []domain.LongTermDebt, entityTotals map[string]int64, today time.Time) domain.HealthSnapshot {
	today = period.Day(today)
	from := period.AddMonths(today, -TrailingMonths)

	var s domain.HealthSnapshot
	s.AsOf = today

	for _, bal := range entityTotals {
		s.TotalAssets += bal
	}
	for i := range debts {
		if debts[i].Active {
			s.TotalLiabilities += debts[i].CurrentPrincipal
			s.MonthlyDebtPayments += debts[i].MonthlyPayment
		}
	}
	s.NetWorth = s.TotalAssets - s.TotalLiabilities

	var income, expense int64
	for i := range movements {
		d := period.Day(movements[i].Date)
		if !d.After(from) || d.After(today) {
			continue
		}
		if movements[i].Direction == domain.DirectionIncome {
			income += movements[i].Amount
		} else {
			expense += movements[i].Amount
		}
	}

	avgIncome := decimal.NewFromInt(income).Div(trailing)
	avgExpense := decimal.NewFromInt(expense).Div(trailing)
	debtPayments := decimal.NewFromInt(s.MonthlyDebtPayments)
	s.AverageIncome = avgIncome.Round(0).IntPart()
	s.AverageExpense = avgExpense.Round(0).IntPart()

	if income == 0 {
		s.SavingsRate = domain.DefinedRatio(decimal.Zero)
		s.DebtToIncomeRatio = domain.UndefinedRatio
	} else {
		s.SavingsRate = domain.DefinedRatio(avgIncome.Sub(avgExpense).Sub(debtPayments).Div(avgIncome).Round(ratioScale))
		s.DebtToIncomeRatio = domain.DefinedRatio(debtPayments.Div(avgIncome).Round(ratioScale))
	}

	if expense == 0 {
		s.EmergencyFundMonths = domain.UndefinedRatio
	} else {
		s.EmergencyFundMonths = domain.DefinedRatio(decimal.NewFromInt(s.TotalAssets).Div(avgExpense).Round(ratioScale))
	}

	s.Ratios = []domain.HealthRatio{
		scored(RatioSavingsRate, s.SavingsRate, savingsGood, levelSavings(s.SavingsRate)),
		scored(RatioDebtToIncome, s.DebtToIncomeRatio, dtiGood, levelDebtToIncome(s.DebtToIncomeRatio, s.MonthlyDebtPayments)),
		scored(RatioEmergencyFund, s.EmergencyFundMonths, emergencyGood, levelEmergencyFund(s.EmergencyFundMonths, s.TotalAssets)),
		scored(RatioNetWorth, domain.DefinedRatio(decimal.NewFromInt(s.NetWorth)), decimal.Zero, levelNetWorth(s.NetWorth)),
	}
	s.Score = Score(s.Ratios)
	return s
}

// Score is the weighted sum of the ratio scores, rounded half up to 0-100.
func Score(ratios []domain.HealthRatio) int64 {
	var sum int64
	for _, r := range ratios {
		sum += r.Weight * r.Score
	}
	return (sum + 50) / 100
}

func scored(name string, value domain.Ratio, benchmark decimal.Decimal, level domain.HealthLevel) domain.HealthRatio {
	return domain.HealthRatio{
		Name:      name,
		Value:     value,
		Benchmark: benchmark,
		Level:     level,
		Weight:    weights[name],
		Score:     levelScore(level),
	}
}

func levelScore(l domain.HealthLevel) int64 {
	switch l {
	case domain.HealthGood:
		return scoreGood
	case domain.HealthWarning:
		return scoreWarning
	default:
		return scoreCritical
	}
}

func levelSavings(r domain.Ratio) domain.HealthLevel {
	v, err := r.Decimal()
	if err != nil {
		return domain.HealthCritical
	}
	switch {
	case v.GreaterThanOrEqual(savingsGood):
		return domain.HealthGood
	case v.GreaterThanOrEqual(savingsWarn):
		return domain.HealthWarning
	}
	return domain.HealthCritical
}

func levelDebtToIncome(r domain.Ratio, debtPayments int64) domain.HealthLevel {
	v, err := r.Decimal()
	if err != nil {
		// No income: only fine when nothing is owed each month.
		if debtPayments == 0 {
			return domain.HealthGood
		}
		return domain.HealthCritical
	}
	switch {
	case v.LessThanOrEqual(dtiGood):
		return domain.HealthGood
	case v.LessThanOrEqual(dtiWarn):
		return domain.HealthWarning
	}
	return domain.HealthCritical
}

func levelEmergencyFund(r domain.Ratio, assets int64) domain.HealthLevel {
	v, err := r.Decimal()
	if err != nil {
		if assets > 0 {
			return domain.HealthGood
		}
		return domain.HealthCritical
	}
	switch {
	case v.GreaterThanOrEqual(emergencyGood):
		return domain.HealthGood
	case v.GreaterThanOrEqual(emergencyWarn):
		return domain.HealthWarning
	}
	return domain.HealthCritical
}

func levelNetWorth(netWorth int64) domain.HealthLevel {
	if netWorth >= 0 {
		return domain.HealthGood
	}
	return domain.HealthCritical
}
