package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/iho/fincore/internal/adapter/http/dto"
	"github.com/iho/fincore/internal/domain"
	"github.com/iho/fincore/internal/usecase"
)

// GoalService defines the behavior needed by GoalHandler.
type GoalService interface {
	CreateGoal(ctx context.Context, input usecase.CreateGoalInput) (*domain.Goal, error)
	ListGoals(ctx context.Context) ([]domain.Goal, error)
	Contribute(ctx context.Context, input usecase.ContributeInput) (*domain.Contribution, error)
	Progress(ctx context.Context, goalID string, today time.Time) (*domain.GoalProgress, error)
}

// GoalHandler handles savings goals.
type GoalHandler struct {
	goalUC GoalService
}

// NewGoalHandler creates a new GoalHandler.
func NewGoalHandler(goalUC GoalService) *GoalHandler {
	return &GoalHandler{goalUC: goalUC}
}

// Create creates a goal.
func (h *GoalHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateGoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	goal, err := h.goalUC.CreateGoal(r.Context(), input)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to create goal", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.GoalFromDomain(goal))
}

// List lists every goal.
func (h *GoalHandler) List(w http.ResponseWriter, r *http.Request) {
	goals, err := h.goalUC.ListGoals(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list goals", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.GoalsFromDomain(goals))
}

// Contribute sets money aside for a goal.
func (h *GoalHandler) Contribute(w http.ResponseWriter, r *http.Request) {
	var req dto.ContributeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input, err := req.ToUseCaseInput(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	contribution, err := h.goalUC.Contribute(r.Context(), input)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to record contribution", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.ContributionFromDomain(contribution))
}

// Progress reports how far a goal is funded as of as_of.
func (h *GoalHandler) Progress(w http.ResponseWriter, r *http.Request) {
	day, err := today(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid as_of date", err.Error())
		return
	}

	progress, err := h.goalUC.Progress(r.Context(), chi.URLParam(r, "id"), day)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to compute progress", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.GoalProgressFromDomain(progress))
}
