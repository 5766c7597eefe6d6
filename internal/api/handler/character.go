package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/charsheet-go/internal/api/request"
	"github.com/mcoot/charsheet-go/internal/api/response"
	"github.com/mcoot/charsheet-go/internal/identity"
	"github.com/mcoot/charsheet-go/internal/model"
	"github.com/mcoot/charsheet-go/internal/services/character"
)

// CharacterHandler handles character endpoints. Every route runs behind RequirePrincipal.
type CharacterHandler struct {
	controller *character.Controller
	logger     *slog.Logger
}

// NewCharacterHandler creates a new character handler
func NewCharacterHandler(controller *character.Controller, logger *slog.Logger) *CharacterHandler {
	return &CharacterHandler{
		controller: controller,
		logger:     logger,
	}
}

// List handles GET /api/v1/characters
func (h *CharacterHandler) List(w http.ResponseWriter, r *http.Request) {
	principal, err := identity.CurrentRequestPrincipal(r.Context())
	if err != nil {
		fail(h.logger, w, r, err)
		return
	}

	characters, err := h.controller.List(r.Context(), principal)
	if err != nil {
		fail(h.logger, w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, response.CharacterListFromModel(characters))
}

// Create handles POST /api/v1/characters
func (h *CharacterHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal, err := identity.CurrentRequestPrincipal(r.Context())
	if err != nil {
		fail(h.logger, w, r, err)
		return
	}

	var req request.CreateCharacterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}
	draft, err := req.ToDraft()
	if err != nil {
		WriteError(w, err)
		return
	}

	created, err := h.controller.Create(r.Context(), principal, draft)
	if err != nil {
		fail(h.logger, w, r, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.CharacterFromModel(created))
}

// Get handles GET /api/v1/characters/{id}
func (h *CharacterHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := characterID(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	found, err := h.controller.Get(r.Context(), id)
	if err != nil {
		fail(h.logger, w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, response.CharacterFromModel(found))
}

// Update handles PATCH /api/v1/characters/{id}
func (h *CharacterHandler) Update(w http.ResponseWriter, r *http.Request) {
	principal, err := identity.CurrentRequestPrincipal(r.Context())
	if err != nil {
		fail(h.logger, w, r, err)
		return
	}
	id, err := characterID(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	var req request.UpdateCharacterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}
	changes, err := req.ToChanges()
	if err != nil {
		WriteError(w, err)
		return
	}

	updated, err := h.controller.Update(r.Context(), principal, id, changes)
	if err != nil {
		fail(h.logger, w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, response.CharacterFromModel(updated))
}

// Delete handles DELETE /api/v1/characters/{id}
func (h *CharacterHandler) Delete(w http.ResponseWriter, r *http.Request) {
	principal, err := identity.CurrentRequestPrincipal(r.Context())
	if err != nil {
		fail(h.logger, w, r, err)
		return
	}
	id, err := characterID(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	if err := h.controller.Delete(r.Context(), principal, id); err != nil {
		fail(h.logger, w, r, err)
		return
	}

	response.NoContent(w)
}

// Assign handles PUT /api/v1/characters/{id}/control
func (h *CharacterHandler) Assign(w http.ResponseWriter, r *http.Request) {
	principal, err := identity.CurrentRequestPrincipal(r.Context())
	if err != nil {
		fail(h.logger, w, r, err)
		return
	}
	id, err := characterID(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	var req request.ControlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}
	assignment, err := req.ToAssignment()
	if err != nil {
		WriteError(w, err)
		return
	}

	assigned, err := h.controller.Assign(r.Context(), principal, id, assignment)
	if err != nil {
		fail(h.logger, w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, response.CharacterFromModel(assigned))
}

func characterID(r *http.Request) (model.ID, error) {
	return model.NewID(mux.Vars(r)["id"])
}
