package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/iho/fincore/internal/adapter/http/dto"
	"github.com/iho/fincore/internal/domain"
	"github.com/iho/fincore/internal/usecase"
)

// RecurringService defines the behavior needed by RecurringHandler.
type RecurringService interface {
	CreateRule(ctx context.Context, input usecase.CreateRuleInput) (*domain.RecurringRule, error)
	GetRule(ctx context.Context, id string) (*domain.RecurringRule, error)
	ListRules(ctx context.Context) ([]domain.RecurringRule, error)
	DueRules(ctx context.Context, today time.Time) ([]domain.RecurringRule, error)
	RunDueCheck(ctx context.Context, today time.Time) (*usecase.DueCheckResult, error)
	PauseRule(ctx context.Context, id string) (*domain.RecurringRule, error)
	ResumeRule(ctx context.Context, id string, today time.Time) (*domain.RecurringRule, error)
	ListPending(ctx context.Context) ([]domain.RecurringPosting, error)
	ConfirmPosting(ctx context.Context, ruleID, periodLabel string, amount *int64) (*domain.Movement, error)
}

// RecurringHandler handles recurring rules and their postings.
type RecurringHandler struct {
	recurringUC RecurringService
}

// NewRecurringHandler creates a new RecurringHandler.
func NewRecurringHandler(recurringUC RecurringService) *RecurringHandler {
	return &RecurringHandler{recurringUC: recurringUC}
}

// Create creates a recurring rule.
func (h *RecurringHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateRuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	rule, err := h.recurringUC.CreateRule(r.Context(), input)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to create rule", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.RuleFromDomain(rule))
}

// Get retrieves a rule by ID.
func (h *RecurringHandler) Get(w http.ResponseWriter, r *http.Request) {
	rule, err := h.recurringUC.GetRule(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get rule", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.RuleFromDomain(rule))
}

// List lists every rule.
func (h *RecurringHandler) List(w http.ResponseWriter, r *http.Request) {
	rules, err := h.recurringUC.ListRules(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list rules", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.RulesFromDomain(rules))
}

// Due lists the rules due on or before as_of.
func (h *RecurringHandler) Due(w http.ResponseWriter, r *http.Request) {
	day, err := today(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid as_of date", err.Error())
		return
	}

	rules, err := h.recurringUC.DueRules(r.Context(), day)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list due rules", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.RulesFromDomain(rules))
}

// RunDue posts or queues every period due on or before as_of.
func (h *RecurringHandler) RunDue(w http.ResponseWriter, r *http.Request) {
	day, err := today(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid as_of date", err.Error())
		return
	}

	result, err := h.recurringUC.RunDueCheck(r.Context(), day)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to run due check", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.DueCheckFromDomain(result))
}

// Pause deactivates a rule.
func (h *RecurringHandler) Pause(w http.ResponseWriter, r *http.Request) {
	rule, err := h.recurringUC.PauseRule(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to pause rule", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.RuleFromDomain(rule))
}

// Resume reactivates a rule from the first period after as_of.
func (h *RecurringHandler) Resume(w http.ResponseWriter, r *http.Request) {
	day, err := today(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid as_of date", err.Error())
		return
	}

	rule, err := h.recurringUC.ResumeRule(r.Context(), chi.URLParam(r, "id"), day)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to resume rule", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.RuleFromDomain(rule))
}

// Pending lists postings awaiting confirmation.
func (h *RecurringHandler) Pending(w http.ResponseWriter, r *http.Request) {
	postings, err := h.recurringUC.ListPending(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list pending postings", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.PostingsFromDomain(postings))
}

// Confirm posts a pending period, optionally with an adjusted amount. The
// request body may be empty.
func (h *RecurringHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	var req dto.ConfirmPostingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	movement, err := h.recurringUC.ConfirmPosting(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "label"), req.Amount.CentsPtr())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to confirm posting", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.MovementFromDomain(movement))
}
