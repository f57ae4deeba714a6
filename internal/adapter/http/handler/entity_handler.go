package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/fincore/internal/adapter/http/dto"
	"github.com/iho/fincore/internal/domain"
	"github.com/iho/fincore/internal/usecase"
)

// EntityService defines the behavior needed by EntityHandler.
type EntityService interface {
	CreateEntity(ctx context.Context, name string) (*domain.Entity, error)
	GetEntity(ctx context.Context, id string) (*usecase.EntityBalance, error)
	ListEntities(ctx context.Context) ([]usecase.EntityBalance, error)
}

// EntityHandler handles account-like entities.
type EntityHandler struct {
	entityUC EntityService
}

// NewEntityHandler creates a new EntityHandler.
func NewEntityHandler(entityUC EntityService) *EntityHandler {
	return &EntityHandler{entityUC: entityUC}
}

// Create creates an entity with a zero balance.
func (h *EntityHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateEntityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	entity, err := h.entityUC.CreateEntity(r.Context(), req.Name)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to create entity", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.EntityFromDomain(&usecase.EntityBalance{Entity: *entity}))
}

// Get retrieves an entity and its derived balance.
func (h *EntityHandler) Get(w http.ResponseWriter, r *http.Request) {
	entity, err := h.entityUC.GetEntity(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get entity", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.EntityFromDomain(entity))
}

// List lists every entity with its balance.
func (h *EntityHandler) List(w http.ResponseWriter, r *http.Request) {
	entities, err := h.entityUC.ListEntities(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list entities", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.EntitiesFromDomain(entities))
}
