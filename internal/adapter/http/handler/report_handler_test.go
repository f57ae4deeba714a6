package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/iho/fincore/internal/adapter/export"
	"github.com/iho/fincore/internal/adapter/http/dto"
	"github.com/iho/fincore/internal/domain"
	"github.com/iho/fincore/internal/usecase"
)

type reportServiceStub struct {
	analyticsFn func(ctx context.Context, input usecase.AnalyticsInput) (*domain.AnalyticsReport, error)
	healthFn    func(ctx context.Context, today time.Time) (*domain.HealthSnapshot, error)
	forecastFn  func(ctx context.Context, input usecase.ForecastInput) (*domain.CashFlowForecast, error)
}

func (s *reportServiceStub) Analytics(ctx context.Context, input usecase.AnalyticsInput) (*domain.AnalyticsReport, error) {
	return s.analyticsFn(ctx, input)
}

func (s *reportServiceStub) Health(ctx context.Context, today time.Time) (*domain.HealthSnapshot, error) {
	return s.healthFn(ctx, today)
}

func (s *reportServiceStub) Forecast(ctx context.Context, input usecase.ForecastInput) (*domain.CashFlowForecast, error) {
	return s.forecastFn(ctx, input)
}

func analyticsStub(captured *usecase.AnalyticsInput) *reportServiceStub {
	return &reportServiceStub{
		analyticsFn: func(ctx context.Context, input usecase.AnalyticsInput) (*domain.AnalyticsReport, error) {
			*captured = input
			if input.End.Before(input.Start) {
				return nil, domain.ErrInvalidPeriodRange
			}
			return &domain.AnalyticsReport{
				Start:       input.Start,
				End:         input.End,
				Granularity: domain.PeriodMonthly,
				TotalIncome: 300_000,
				Net:         300_000,
			}, nil
		},
	}
}

func TestReportHandler_Analytics(t *testing.T) {
	var captured usecase.AnalyticsInput
	handler := NewReportHandler(analyticsStub(&captured))

	rec := httptest.NewRecorder()
	handler.Analytics(rec, httptest.NewRequest(http.MethodGet, "/reports/analytics?from=2026-01-01&to=2026-03-31&granularity=monthly", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if captured.Granularity != domain.PeriodMonthly || !captured.End.Equal(day(2026, 3, 31)) {
		t.Fatalf("unexpected input %+v", captured)
	}

	var resp dto.AnalyticsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.TotalIncome != 300_000 || resp.Start != "2026-01-01" {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestReportHandler_AnalyticsRejectsBadRange(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"missing bounds", "/reports/analytics"},
		{"bad date", "/reports/analytics?from=2026-13-01&to=2026-12-31"},
		{"inverted", "/reports/analytics?from=2026-03-01&to=2026-01-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var captured usecase.AnalyticsInput
			rec := httptest.NewRecorder()
			NewReportHandler(analyticsStub(&captured)).Analytics(rec, httptest.NewRequest(http.MethodGet, tt.query, nil))

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
		})
	}
}

func TestReportHandler_AnalyticsAsWorkbook(t *testing.T) {
	var captured usecase.AnalyticsInput
	rec := httptest.NewRecorder()
	NewReportHandler(analyticsStub(&captured)).Analytics(rec, httptest.NewRequest(http.MethodGet, "/reports/analytics?from=2026-01-01&to=2026-01-31&format=xlsx", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	f, err := excelize.OpenReader(rec.Body)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	if v, _ := f.GetCellValue(export.SummarySheet, "A4"); v != "Total Income" {
		t.Fatalf("unexpected summary label %q", v)
	}
}

func TestReportHandler_Forecast(t *testing.T) {
	var captured usecase.ForecastInput
	handler := NewReportHandler(&reportServiceStub{
		forecastFn: func(ctx context.Context, input usecase.ForecastInput) (*domain.CashFlowForecast, error) {
			captured = input
			if input.HorizonMonths > usecase.MaxForecastHorizon {
				return nil, domain.ErrInvalidPeriodRange
			}
			return &domain.CashFlowForecast{Start: input.Start, HorizonMonths: input.HorizonMonths}, nil
		},
	})

	rec := httptest.NewRecorder()
	handler.Forecast(rec, httptest.NewRequest(http.MethodGet, "/reports/forecast?start=2026-01-01&horizon=3", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if captured.HorizonMonths != 3 || !captured.Start.Equal(day(2026, 1, 1)) {
		t.Fatalf("unexpected input %+v", captured)
	}

	rec = httptest.NewRecorder()
	handler.Forecast(rec, httptest.NewRequest(http.MethodGet, "/reports/forecast?horizon=61", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if !captured.Start.IsZero() {
		t.Fatal("missing start must be left for the use case to default")
	}
}

func TestReportHandler_Health(t *testing.T) {
	handler := NewReportHandler(&reportServiceStub{
		healthFn: func(ctx context.Context, today time.Time) (*domain.HealthSnapshot, error) {
			return &domain.HealthSnapshot{AsOf: today, SavingsRate: domain.UndefinedRatio, Score: 40}, nil
		},
	})

	rec := httptest.NewRecorder()
	handler.Health(rec, httptest.NewRequest(http.MethodGet, "/reports/health?as_of=2026-04-15", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["as_of"] != "2026-04-15" || resp["savings_rate"] != nil {
		t.Fatalf("unexpected response %v", resp)
	}
}
