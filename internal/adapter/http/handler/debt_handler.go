package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/iho/fincore/internal/adapter/export"
	"github.com/iho/fincore/internal/adapter/http/dto"
	"github.com/iho/fincore/internal/domain"
	"github.com/iho/fincore/internal/usecase"
)

// DebtService defines the behavior needed by DebtHandler.
type DebtService interface {
	CreateDebt(ctx context.Context, input usecase.CreateDebtInput) (*domain.LongTermDebt, error)
	GetDebt(ctx context.Context, id string) (*usecase.DebtDetails, error)
	ListDebts(ctx context.Context) ([]domain.LongTermDebt, error)
	RecordPayment(ctx context.Context, input usecase.RecordPaymentInput) (*domain.LongTermDebt, error)
	ExtraPayment(ctx context.Context, input usecase.ExtraPaymentInput) (*domain.LongTermDebt, error)
	ChangeRate(ctx context.Context, input usecase.RateChangeInput) (*domain.LongTermDebt, error)
	MarkOverdue(ctx context.Context, today time.Time) (int, error)
}

// DebtHandler handles loans and their amortization schedules.
type DebtHandler struct {
	debtUC DebtService
}

// NewDebtHandler creates a new DebtHandler.
func NewDebtHandler(debtUC DebtService) *DebtHandler {
	return &DebtHandler{debtUC: debtUC}
}

// Create registers a loan and computes its schedule.
func (h *DebtHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateDebtRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	debt, err := h.debtUC.CreateDebt(r.Context(), input)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to create debt", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.DebtFromDomain(debt))
}

// Get retrieves a loan with its schedule summary.
func (h *DebtHandler) Get(w http.ResponseWriter, r *http.Request) {
	details, err := h.debtUC.GetDebt(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get debt", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.DebtDetailsFromDomain(details))
}

// Schedule downloads the amortization schedule as an XLSX workbook.
func (h *DebtHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	details, err := h.debtUC.GetDebt(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get debt", err.Error())
		return
	}

	wb, err := export.ScheduleWorkbook(&details.Debt)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to export schedule", err.Error())
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", "attachment; filename=schedule-"+details.Debt.ID+".xlsx")
	export.Write(w, wb)
}

// List lists every loan.
func (h *DebtHandler) List(w http.ResponseWriter, r *http.Request) {
	debts, err := h.debtUC.ListDebts(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list debts", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.DebtsFromDomain(debts))
}

// Pay records a scheduled payment.
func (h *DebtHandler) Pay(w http.ResponseWriter, r *http.Request) {
	var req dto.RecordPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input, err := req.ToUseCaseInput(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	debt, err := h.debtUC.RecordPayment(r.Context(), input)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to record payment", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.DebtFromDomain(debt))
}

// Prepay applies an extra principal payment.
func (h *DebtHandler) Prepay(w http.ResponseWriter, r *http.Request) {
	var req dto.ExtraPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input, err := req.ToUseCaseInput(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	debt, err := h.debtUC.ExtraPayment(r.Context(), input)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to apply extra payment", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.DebtFromDomain(debt))
}

// ChangeRate reprices the unpaid part of the schedule.
func (h *DebtHandler) ChangeRate(w http.ResponseWriter, r *http.Request) {
	var req dto.RateChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input, err := req.ToUseCaseInput(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	debt, err := h.debtUC.ChangeRate(r.Context(), input)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to change rate", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.DebtFromDomain(debt))
}

// MarkOverdue flags every unpaid entry due before as_of.
func (h *DebtHandler) MarkOverdue(w http.ResponseWriter, r *http.Request) {
	day, err := today(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid as_of date", err.Error())
		return
	}

	n, err := h.debtUC.MarkOverdue(r.Context(), day)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to mark overdue entries", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"marked": n})
}
