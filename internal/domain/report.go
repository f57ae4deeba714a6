package domain

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Ratio is a derived ratio that may be undefined because its denominator is
// zero. An undefined ratio is an expected steady state, not an error.
type Ratio struct {
	Value     decimal.Decimal
	Undefined bool
}

// UndefinedRatio is the sentinel for a ratio computed against zero.
var UndefinedRatio = Ratio{Undefined: true}

// DefinedRatio wraps v as a defined ratio.
func DefinedRatio(v decimal.Decimal) Ratio {
	return Ratio{Value: v}
}

// Decimal returns the value, or ErrUndefinedRatio when there is none.
func (r Ratio) Decimal() (decimal.Decimal, error) {
	if r.Undefined {
		return decimal.Zero, ErrUndefinedRatio
	}
	return r.Value, nil
}

// MarshalJSON renders undefined ratios as null.
func (r Ratio) MarshalJSON() ([]byte, error) {
	if r.Undefined {
		return []byte("null"), nil
	}
	return json.Marshal(r.Value.Round(4).String())
}

// UnmarshalJSON reads the form written by MarshalJSON.
func (r *Ratio) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*r = UndefinedRatio
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, err := decimal.NewFromString(s)
	if err != nil {
		return err
	}
	*r = DefinedRatio(v)
	return nil
}

// TimeSeriesPoint is one bucket of an analytics time series.
type TimeSeriesPoint struct {
	Start   time.Time
	End     time.Time
	Label   string
	Income  int64
	Expense int64
	Net     int64
}

// BreakdownItem is one group of a category or entity breakdown.
type BreakdownItem struct {
	Key        string
	Label      string
	Income     int64
	Expense    int64
	Net        int64
	Percentage int64
	Count      int
}

// AnalyticsReport aggregates movements over a date range.
type AnalyticsReport struct {
	GeneratedAt       time.Time
	Start             time.Time
	End               time.Time
	Granularity       PeriodKind
	TimeSeries        []TimeSeriesPoint
	ExpenseByCategory []BreakdownItem
	IncomeByCategory  []BreakdownItem
	ByEntity          []BreakdownItem
	TotalIncome       int64
	TotalExpense      int64
	Net               int64
}

// HealthLevel grades a single health ratio.
type HealthLevel string

const (
	HealthGood     HealthLevel = "good"
	HealthWarning  HealthLevel = "warning"
	HealthCritical HealthLevel = "critical"
)

// HealthRatio is one weighted component of the health score.
type HealthRatio struct {
	Name      string
	Value     Ratio
	Benchmark decimal.Decimal
	Level     HealthLevel
	Weight    int64
	Score     int64
}

// HealthSnapshot summarizes the financial position at a point in time.
type HealthSnapshot struct {
	GeneratedAt         time.Time
	AsOf                time.Time
	SavingsRate         Ratio
	DebtToIncomeRatio   Ratio
	EmergencyFundMonths Ratio
	Ratios              []HealthRatio
	TotalAssets         int64
	TotalLiabilities    int64
	NetWorth            int64
	AverageIncome       int64
	AverageExpense      int64
	MonthlyDebtPayments int64
	Score               int64
}

// ForecastSource identifies what produced a forecast event.
type ForecastSource string

const (
	SourceRecurring    ForecastSource = "recurring"
	SourceDebt         ForecastSource = "debt"
	SourceContribution ForecastSource = "contribution"
)

// ForecastEvent is a single projected cash movement. Amount is signed.
type ForecastEvent struct {
	Date        time.Time
	Source      ForecastSource
	ReferenceID string
	Description string
	Amount      int64
	IsEstimated bool
}

// ForecastEntry is one period of a cash-flow forecast.
type ForecastEntry struct {
	Start             time.Time
	End               time.Time
	Label             string
	Events            []ForecastEvent
	OpeningBalance    int64
	ProjectedIncome   int64
	ProjectedExpenses int64
	NetCashFlow       int64
	ClosingBalance    int64
	HasEstimates      bool
}

// CashFlowForecast projects balances over a horizon.
type CashFlowForecast struct {
	GeneratedAt       time.Time
	Start             time.Time
	End               time.Time
	LowestBalanceDate time.Time
	FirstNegativeDate *time.Time
	Period            PeriodKind
	Entries           []ForecastEntry
	InitialBalance    int64
	LowestBalance     int64
	FinalBalance      int64
	HorizonMonths     int
}
