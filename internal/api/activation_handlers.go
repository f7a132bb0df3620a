package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"thetalounge/internal/entities"
	"thetalounge/internal/service"

	"github.com/gorilla/mux"
)

type ActivationHandler struct {
	Service *service.ActivationService
}

func NewActivationHandler(svc *service.ActivationService) *ActivationHandler {
	return &ActivationHandler{Service: svc}
}

func (h *ActivationHandler) ListPackages(w http.ResponseWriter, r *http.Request) {
	packages, err := h.Service.ListPackages(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"data": packages})
}

func (h *ActivationHandler) CreateActivation(w http.ResponseWriter, r *http.Request) {
	var req entities.ActivationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, service.ErrInvalidRequest)
		return
	}

	activation, err := h.Service.CreateActivation(r.Context(), &req)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, activation)
}

func (h *ActivationHandler) UpdateActivationStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, service.ErrInvalidRequest)
		return
	}

	var req entities.ActivationStatusUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, service.ErrInvalidRequest)
		return
	}

	activation, err := h.Service.UpdateActivationStatus(r.Context(), id, &req)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, activation)
}

func (h *ActivationHandler) ListActivations(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page, _ := strconv.Atoi(query.Get("page"))
	limit, _ := strconv.Atoi(query.Get("limit"))

	list, err := h.Service.ListActivations(r.Context(), query.Get("status"), page, limit)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

func (h *ActivationHandler) GetActivePackages(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	activations, err := h.Service.GetActivePackages(r.Context(), email)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"data": activations})
}
