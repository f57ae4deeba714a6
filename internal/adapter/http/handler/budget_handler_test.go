package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/fincore/internal/adapter/http/dto"
	"github.com/iho/fincore/internal/domain"
)

type budgetServiceStub struct {
	BudgetService

	statusFn  func(ctx context.Context, id string, today time.Time) (*domain.BudgetStatus, error)
	dismissFn func(ctx context.Context, budgetID string, threshold decimal.Decimal, periodLabel string) error
}

func (s *budgetServiceStub) Status(ctx context.Context, id string, today time.Time) (*domain.BudgetStatus, error) {
	return s.statusFn(ctx, id, today)
}

func (s *budgetServiceStub) DismissAlert(ctx context.Context, budgetID string, threshold decimal.Decimal, periodLabel string) error {
	return s.dismissFn(ctx, budgetID, threshold, periodLabel)
}

func TestBudgetHandler_Status(t *testing.T) {
	handler := NewBudgetHandler(&budgetServiceStub{
		statusFn: func(ctx context.Context, id string, today time.Time) (*domain.BudgetStatus, error) {
			if id == "missing" {
				return nil, domain.ErrBudgetNotFound
			}
			return &domain.BudgetStatus{
				BudgetID:        id,
				PeriodLabel:     "2026-03",
				State:           domain.BudgetStateWarning,
				SpentAmount:     85_000,
				EffectiveLimit:  100_000,
				UsagePercentage: 85,
				PendingAlerts:   []decimal.Decimal{decimal.RequireFromString("0.8")},
			}, nil
		},
	})

	rec := httptest.NewRecorder()
	handler.Status(rec, withURLParams(httptest.NewRequest(http.MethodGet, "/budgets/b1/status?as_of=2026-03-10", nil), "id", "b1"))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.BudgetStatusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.State != "warning" || resp.SpentAmount != 85_000 || len(resp.PendingAlerts) != 1 {
		t.Fatalf("unexpected response %+v", resp)
	}

	rec = httptest.NewRecorder()
	handler.Status(rec, withURLParams(httptest.NewRequest(http.MethodGet, "/budgets/missing/status", nil), "id", "missing"))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestBudgetHandler_DismissAlert(t *testing.T) {
	var gotThreshold decimal.Decimal
	var gotLabel string
	handler := NewBudgetHandler(&budgetServiceStub{
		dismissFn: func(ctx context.Context, budgetID string, threshold decimal.Decimal, periodLabel string) error {
			gotThreshold, gotLabel = threshold, periodLabel
			if periodLabel == "2020-01" {
				return domain.ErrAlertNotFound
			}
			return nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/budgets/b1/alerts/dismiss", bytes.NewBufferString(`{"threshold":"0.8","period_label":"2026-03"}`))
	rec := httptest.NewRecorder()
	handler.DismissAlert(rec, withURLParams(req, "id", "b1"))

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if !gotThreshold.Equal(decimal.RequireFromString("0.8")) || gotLabel != "2026-03" {
		t.Fatalf("unexpected dismissal %s/%s", gotThreshold, gotLabel)
	}

	req = httptest.NewRequest(http.MethodPost, "/budgets/b1/alerts/dismiss", bytes.NewBufferString(`{"threshold":"0.8","period_label":"2020-01"}`))
	rec = httptest.NewRecorder()
	handler.DismissAlert(rec, withURLParams(req, "id", "b1"))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
