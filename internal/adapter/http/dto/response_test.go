package dto

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/fincore/internal/domain"
	"github.com/iho/fincore/internal/engine/amortization"
	"github.com/iho/fincore/internal/usecase"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestMovementFromDomain(t *testing.T) {
	m := domain.Movement{
		ID:          "m1",
		Date:        day(2026, 3, 5),
		Description: "Groceries",
		CategoryID:  "food",
		Direction:   domain.DirectionExpense,
		Amount:      4_250,
	}

	resp := MovementFromDomain(&m)
	if resp.Date != "2026-03-05" || resp.Amount != 4_250 || resp.Direction != "expense" {
		t.Fatalf("unexpected movement response: %+v", resp)
	}

	body, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(body), `"amount":"42.50"`) {
		t.Fatalf("amount must travel as a decimal string: %s", body)
	}

	list := MovementsFromDomain([]domain.Movement{m})
	if len(list) != 1 || list[0].ID != "m1" {
		t.Fatalf("MovementsFromDomain returned %+v", list)
	}
}

func TestDebtDetailsFromDomain(t *testing.T) {
	details := &usecase.DebtDetails{
		Debt: domain.LongTermDebt{
			ID:          "d1",
			Name:        "Car loan",
			Method:      domain.MethodFrench,
			StartDate:   day(2026, 1, 15),
			AnnualRate:  decimal.RequireFromString("0.12"),
			RateHistory: []domain.RateChange{{EffectiveFrom: day(2026, 6, 1), AnnualRate: decimal.RequireFromString("0.06")}},
			Schedule: []domain.AmortizationEntry{
				{Period: 1, DueDate: day(2026, 2, 15), Status: domain.EntryStatusPaid, PaymentAmount: 888_488, PrincipalAmount: 788_488, InterestAmount: 100_000},
			},
			OriginalPrincipal: 10_000_000,
			CurrentPrincipal:  9_211_512,
			MonthlyPayment:    888_488,
			TermMonths:        12,
			Active:            true,
		},
		Summary: amortization.Summary{TotalPayments: 888_488, PeriodsPaid: 1},
	}

	resp := DebtDetailsFromDomain(details)
	if resp.Summary == nil || resp.Summary.PeriodsPaid != 1 {
		t.Fatalf("expected summary, got %+v", resp.Summary)
	}
	if len(resp.Schedule) != 1 || resp.Schedule[0].DueDate != "2026-02-15" || resp.Schedule[0].Status != "paid" {
		t.Fatalf("unexpected schedule %+v", resp.Schedule)
	}
	if len(resp.RateHistory) != 1 || resp.RateHistory[0].EffectiveFrom != "2026-06-01" {
		t.Fatalf("unexpected rate history %+v", resp.RateHistory)
	}

	if list := DebtsFromDomain([]domain.LongTermDebt{details.Debt}); list[0].Summary != nil {
		t.Fatal("listings carry no summary")
	}
}

func TestBudgetStatusFromDomain(t *testing.T) {
	status := &domain.BudgetStatus{
		BudgetID:        "b1",
		PeriodLabel:     "2026-03",
		PeriodStart:     day(2026, 3, 1),
		PeriodEnd:       day(2026, 3, 31),
		State:           domain.BudgetStateWarning,
		SpentAmount:     85_000,
		EffectiveLimit:  100_000,
		UsagePercentage: 85,
	}

	resp := BudgetStatusFromDomain(status)
	if resp.PendingAlerts == nil {
		t.Fatal("pending alerts must encode as an empty list")
	}
	if resp.State != "warning" || resp.PeriodEnd != "2026-03-31" {
		t.Fatalf("unexpected status response %+v", resp)
	}

	capped := domain.Budget{ID: "b1", RolloverCap: new(int64)}
	*capped.RolloverCap = 5_000
	if b := BudgetFromDomain(&capped); b.RolloverCap == nil || *b.RolloverCap != 5_000 {
		t.Fatalf("unexpected rollover cap %+v", b.RolloverCap)
	}
}

func TestHealthFromDomain_UndefinedRatioIsNull(t *testing.T) {
	snapshot := &domain.HealthSnapshot{
		AsOf:                day(2026, 4, 15),
		SavingsRate:         domain.UndefinedRatio,
		DebtToIncomeRatio:   domain.DefinedRatio(decimal.RequireFromString("0.25")),
		EmergencyFundMonths: domain.UndefinedRatio,
		Score:               50,
	}

	body, err := json.Marshal(HealthFromDomain(snapshot))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(body), `"savings_rate":null`) {
		t.Fatalf("undefined ratio must encode as null: %s", body)
	}
	if !strings.Contains(string(body), `"debt_to_income_ratio":"0.25"`) {
		t.Fatalf("defined ratio must encode as a string: %s", body)
	}
}

func TestForecastFromDomain(t *testing.T) {
	negative := day(2026, 1, 10)
	fc := &domain.CashFlowForecast{
		Start:             day(2026, 1, 1),
		End:               day(2026, 3, 31),
		Period:            domain.PeriodMonthly,
		FirstNegativeDate: &negative,
		LowestBalanceDate: day(2026, 3, 10),
		Entries: []domain.ForecastEntry{{
			Label: "2026-01",
			Events: []domain.ForecastEvent{
				{Date: negative, Source: domain.SourceRecurring, ReferenceID: "rent", Amount: -450_000},
			},
			ClosingBalance: -50_000,
		}},
		HorizonMonths: 3,
	}

	resp := ForecastFromDomain(fc)
	if resp.FirstNegativeDate == nil || *resp.FirstNegativeDate != "2026-01-10" {
		t.Fatalf("unexpected first negative date %v", resp.FirstNegativeDate)
	}
	if len(resp.Entries) != 1 || resp.Entries[0].Events[0].Source != "recurring" || resp.Entries[0].ClosingBalance != -50_000 {
		t.Fatalf("unexpected entries %+v", resp.Entries)
	}
}

func TestAnalyticsFromDomain(t *testing.T) {
	report := &domain.AnalyticsReport{
		Start:       day(2026, 1, 1),
		End:         day(2026, 1, 31),
		Granularity: domain.PeriodWeekly,
		TimeSeries:  []domain.TimeSeriesPoint{{Label: "2026-W01", Start: day(2025, 12, 29), End: day(2026, 1, 4), Income: 100}},
		ExpenseByCategory: []domain.BreakdownItem{
			{Key: "food", Label: "food", Expense: 50_000, Percentage: 100, Count: 2},
		},
		TotalIncome:  100,
		TotalExpense: 50_000,
		Net:          -49_900,
	}

	resp := AnalyticsFromDomain(report)
	if resp.Granularity != "weekly" || len(resp.TimeSeries) != 1 || resp.TimeSeries[0].Start != "2025-12-29" {
		t.Fatalf("unexpected analytics response %+v", resp)
	}
	if len(resp.ExpenseByCategory) != 1 || resp.ExpenseByCategory[0].Count != 2 || len(resp.ByEntity) != 0 {
		t.Fatalf("unexpected breakdown %+v", resp.ExpenseByCategory)
	}
}
