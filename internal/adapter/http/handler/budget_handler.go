package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/iho/fincore/internal/adapter/http/dto"
	"github.com/iho/fincore/internal/domain"
	"github.com/iho/fincore/internal/usecase"
)

// BudgetService defines the behavior needed by BudgetHandler.
type BudgetService interface {
	CreateBudget(ctx context.Context, input usecase.CreateBudgetInput) (*domain.Budget, error)
	GetBudget(ctx context.Context, id string) (*domain.Budget, error)
	ListBudgets(ctx context.Context) ([]domain.Budget, error)
	Status(ctx context.Context, id string, today time.Time) (*domain.BudgetStatus, error)
	Statuses(ctx context.Context, today time.Time) ([]domain.BudgetStatus, error)
	DismissAlert(ctx context.Context, budgetID string, threshold decimal.Decimal, periodLabel string) error
	ListAlerts(ctx context.Context, budgetID, periodLabel string) ([]domain.BudgetAlert, error)
}

// BudgetHandler handles budgets, their status and alerts.
type BudgetHandler struct {
	budgetUC BudgetService
}

// NewBudgetHandler creates a new BudgetHandler.
func NewBudgetHandler(budgetUC BudgetService) *BudgetHandler {
	return &BudgetHandler{budgetUC: budgetUC}
}

// Create creates a budget.
func (h *BudgetHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateBudgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	budget, err := h.budgetUC.CreateBudget(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to create budget", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.BudgetFromDomain(budget))
}

// Get retrieves a budget definition.
func (h *BudgetHandler) Get(w http.ResponseWriter, r *http.Request) {
	budget, err := h.budgetUC.GetBudget(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get budget", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.BudgetFromDomain(budget))
}

// List lists every budget.
func (h *BudgetHandler) List(w http.ResponseWriter, r *http.Request) {
	budgets, err := h.budgetUC.ListBudgets(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list budgets", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.BudgetsFromDomain(budgets))
}

// Status evaluates one budget for the period containing as_of.
func (h *BudgetHandler) Status(w http.ResponseWriter, r *http.Request) {
	day, err := today(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid as_of date", err.Error())
		return
	}

	status, err := h.budgetUC.Status(r.Context(), chi.URLParam(r, "id"), day)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to evaluate budget", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.BudgetStatusFromDomain(status))
}

// Statuses evaluates every budget.
func (h *BudgetHandler) Statuses(w http.ResponseWriter, r *http.Request) {
	day, err := today(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid as_of date", err.Error())
		return
	}

	statuses, err := h.budgetUC.Statuses(r.Context(), day)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to evaluate budgets", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.BudgetStatusesFromDomain(statuses))
}

// Alerts lists fired alerts, optionally for one period label.
func (h *BudgetHandler) Alerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.budgetUC.ListAlerts(r.Context(), chi.URLParam(r, "id"), r.URL.Query().Get("period"))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list alerts", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.AlertsFromDomain(alerts))
}

// DismissAlert marks a fired alert as seen.
func (h *BudgetHandler) DismissAlert(w http.ResponseWriter, r *http.Request) {
	var req dto.DismissAlertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := h.budgetUC.DismissAlert(r.Context(), chi.URLParam(r, "id"), req.Threshold, req.PeriodLabel); err != nil {
		writeError(w, mapDomainError(err), "failed to dismiss alert", err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
