package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/iho/fincore/internal/adapter/export"
	"github.com/iho/fincore/internal/adapter/http/dto"
	"github.com/iho/fincore/internal/domain"
	"github.com/iho/fincore/internal/usecase"
)

// ReportService defines the behavior needed by ReportHandler.
type ReportService interface {
	Analytics(ctx context.Context, input usecase.AnalyticsInput) (*domain.AnalyticsReport, error)
	Health(ctx context.Context, today time.Time) (*domain.HealthSnapshot, error)
	Forecast(ctx context.Context, input usecase.ForecastInput) (*domain.CashFlowForecast, error)
}

// ReportHandler serves the derived read models.
type ReportHandler struct {
	reportUC ReportService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reportUC ReportService) *ReportHandler {
	return &ReportHandler{reportUC: reportUC}
}

// Analytics aggregates movements between from and to. format=xlsx returns a
// workbook instead of JSON.
func (h *ReportHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	from, err := parseDateQuery(r, "from")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid from date", err.Error())
		return
	}
	to, err := parseDateQuery(r, "to")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid to date", err.Error())
		return
	}
	if from == nil || to == nil {
		writeError(w, http.StatusBadRequest, "from and to are required", "")
		return
	}

	report, err := h.reportUC.Analytics(r.Context(), usecase.AnalyticsInput{
		Start:       *from,
		End:         *to,
		Granularity: domain.PeriodKind(r.URL.Query().Get("granularity")),
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to build analytics report", err.Error())
		return
	}

	if r.URL.Query().Get("format") == "xlsx" {
		wb, err := export.AnalyticsWorkbook(report)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to export report", err.Error())
			return
		}
		w.Header().Set("Content-Type", export.ContentType)
		w.Header().Set("Content-Disposition", "attachment; filename=analytics.xlsx")
		export.Write(w, wb)
		return
	}

	writeJSON(w, http.StatusOK, dto.AnalyticsFromDomain(report))
}

// Health computes the financial health snapshot as of as_of.
func (h *ReportHandler) Health(w http.ResponseWriter, r *http.Request) {
	day, err := today(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid as_of date", err.Error())
		return
	}

	snapshot, err := h.reportUC.Health(r.Context(), day)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to compute health", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.HealthFromDomain(snapshot))
}

// Forecast projects the balance over horizon months from start.
func (h *ReportHandler) Forecast(w http.ResponseWriter, r *http.Request) {
	start, err := parseDateQuery(r, "start")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid start date", err.Error())
		return
	}

	input := usecase.ForecastInput{
		Period:        domain.PeriodKind(r.URL.Query().Get("period")),
		HorizonMonths: parseIntQuery(r, "horizon", 0),
	}
	if start != nil {
		input.Start = *start
	}

	forecast, err := h.reportUC.Forecast(r.Context(), input)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to build forecast", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ForecastFromDomain(forecast))
}
