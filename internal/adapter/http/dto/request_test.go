package dto

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/fincore/internal/domain"
	"github.com/iho/fincore/internal/engine/amortization"
	"github.com/iho/fincore/internal/usecase"
)

func TestAmount_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		want        Amount
		expectError bool
	}{
		{name: "decimal string", input: `"12.34"`, want: 1234},
		{name: "grouped string", input: `"1,234.50"`, want: 123450},
		{name: "bare number", input: `99.5`, want: 9950},
		{name: "half cent rounds away from zero", input: `"0.005"`, want: 1},
		{name: "negative", input: `"-7.10"`, want: -710},
		{name: "not a number", input: `"bad"`, expectError: true},
		{name: "empty string", input: `""`, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Amount
			err := json.Unmarshal([]byte(tt.input), &got)

			if tt.expectError {
				if !errors.Is(err, domain.ErrInvalidAmountFormat) {
					t.Fatalf("expected ErrInvalidAmountFormat, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestAmount_MarshalJSON(t *testing.T) {
	tests := map[Amount]string{
		123456: `"1234.56"`,
		5:      `"0.05"`,
		-710:   `"-7.10"`,
		0:      `"0.00"`,
	}

	for in, want := range tests {
		got, err := json.Marshal(in)
		if err != nil {
			t.Fatalf("marshal %d: %v", in, err)
		}
		if string(got) != want {
			t.Fatalf("marshal %d = %s, want %s", in, got, want)
		}
	}
}

func TestAmount_NullLeavesOptionalUnset(t *testing.T) {
	var req ConfirmPostingRequest
	if err := json.Unmarshal([]byte(`{"amount": null}`), &req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Amount.CentsPtr() != nil {
		t.Fatalf("expected no amount, got %v", *req.Amount)
	}

	if err := json.Unmarshal([]byte(`{"amount": "950.00"}`), &req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := req.Amount.CentsPtr(); got == nil || *got != 95_000 {
		t.Fatalf("expected 95000 cents, got %v", got)
	}
}

func TestCreateMovementRequest_ToUseCaseInput(t *testing.T) {
	tests := []struct {
		name        string
		request     *CreateMovementRequest
		want        usecase.CreateMovementInput
		expectError bool
	}{
		{
			name: "valid",
			request: &CreateMovementRequest{
				Date:        "2026-03-05",
				Description: "Groceries",
				CategoryID:  "food",
				EntityID:    "checking",
				Direction:   "expense",
				Amount:      4_250,
			},
			want: usecase.CreateMovementInput{
				Date:        time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC),
				Description: "Groceries",
				CategoryID:  "food",
				EntityID:    "checking",
				Direction:   domain.DirectionExpense,
				Amount:      4_250,
			},
		},
		{
			name:        "invalid date",
			request:     &CreateMovementRequest{Date: "05/03/2026", Amount: 1},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.request.ToUseCaseInput()

			if tt.expectError {
				if !errors.Is(err, domain.ErrInvalidPeriodRange) {
					t.Fatalf("expected ErrInvalidPeriodRange, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("ToUseCaseInput() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestCreateRuleRequest_ToUseCaseInput(t *testing.T) {
	t.Run("auto post defaults to true", func(t *testing.T) {
		var req CreateRuleRequest
		body := `{"start_date":"2026-01-31","description":"Gym","category_id":"health","direction":"expense","frequency":"monthly","amount":"40.00"}`
		if err := json.Unmarshal([]byte(body), &req); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		got, err := req.ToUseCaseInput()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !got.AutoPost || got.EndDate != nil || got.Amount != 4_000 || got.Frequency != domain.FrequencyMonthly {
			t.Fatalf("unexpected input %+v", got)
		}
	})

	t.Run("explicit confirmation and end date", func(t *testing.T) {
		autoPost := false
		end := "2026-12-31"
		req := &CreateRuleRequest{StartDate: "2026-01-01", EndDate: &end, AutoPost: &autoPost}

		got, err := req.ToUseCaseInput()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.AutoPost || got.EndDate == nil || FormatDate(*got.EndDate) != end {
			t.Fatalf("unexpected input %+v", got)
		}
	})

	t.Run("bad end date", func(t *testing.T) {
		end := "soon"
		req := &CreateRuleRequest{StartDate: "2026-01-01", EndDate: &end}
		if _, err := req.ToUseCaseInput(); err == nil {
			t.Fatal("expected error, got nil")
		}
	})
}

func TestDebtRequests_ToUseCaseInput(t *testing.T) {
	var create CreateDebtRequest
	body := `{"start_date":"2026-01-15","annual_rate":"0.12","name":"Car loan","principal":"100000.00","term_months":12}`
	if err := json.Unmarshal([]byte(body), &create); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	in, err := create.ToUseCaseInput()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if in.Principal != 10_000_000 || !in.AnnualRate.Equal(decimal.RequireFromString("0.12")) || in.TermMonths != 12 {
		t.Fatalf("unexpected input %+v", in)
	}

	extra := &ExtraPaymentRequest{Date: "2026-02-01", Strategy: "reduce-term", Amount: 500_000}
	ein, err := extra.ToUseCaseInput("d1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ein.DebtID != "d1" || ein.Strategy != amortization.StrategyReduceTerm {
		t.Fatalf("unexpected input %+v", ein)
	}

	rate := &RateChangeRequest{EffectiveFrom: "not-a-date"}
	if _, err := rate.ToUseCaseInput("d1"); !errors.Is(err, domain.ErrInvalidPeriodRange) {
		t.Fatalf("expected ErrInvalidPeriodRange, got %v", err)
	}
}

func TestCreateBudgetRequest_ToUseCaseInput(t *testing.T) {
	var req CreateBudgetRequest
	body := `{"name":"Food","period":"monthly","category_ids":["food"],"alert_thresholds":["0.5","0.9"],"limit_amount":"500","rollover":true,"rollover_cap":"100"}`
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := req.ToUseCaseInput()
	if got.LimitAmount != 50_000 || got.Period != domain.PeriodMonthly || !got.Rollover {
		t.Fatalf("unexpected input %+v", got)
	}
	if got.RolloverCap == nil || *got.RolloverCap != 10_000 {
		t.Fatalf("expected rollover cap 10000, got %v", got.RolloverCap)
	}
	if len(got.AlertThresholds) != 2 || !got.AlertThresholds[1].Equal(decimal.RequireFromString("0.9")) {
		t.Fatalf("unexpected thresholds %v", got.AlertThresholds)
	}
}

func TestGoalRequests_ToUseCaseInput(t *testing.T) {
	target := "2026-12-01"
	goal := &CreateGoalRequest{Name: "Holiday", TargetAmount: 100_000, TargetDate: &target}
	gin, err := goal.ToUseCaseInput()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gin.TargetDate == nil || gin.TargetAmount != 100_000 {
		t.Fatalf("unexpected input %+v", gin)
	}

	contribution := &ContributeRequest{Date: "2026-01-03", Amount: 10_000, RecordMovement: true}
	cin, err := contribution.ToUseCaseInput("g1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cin.GoalID != "g1" || !cin.RecordMovement || cin.Amount != 10_000 {
		t.Fatalf("unexpected input %+v", cin)
	}
}
