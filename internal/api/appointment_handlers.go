package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"thetalounge/internal/entities"
	"thetalounge/internal/service"

	"github.com/gorilla/mux"
)

type AppointmentHandler struct {
	Service *service.BookingService
}

func NewAppointmentHandler(svc *service.BookingService) *AppointmentHandler {
	return &AppointmentHandler{Service: svc}
}

func (h *AppointmentHandler) CreateAppointment(w http.ResponseWriter, r *http.Request) {
	var req entities.AppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, service.ErrInvalidRequest)
		return
	}

	appt, err := h.Service.BookSession(r.Context(), &req)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, appt)
}

func (h *AppointmentHandler) UpdateAppointmentStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, service.ErrInvalidRequest)
		return
	}

	var req entities.StatusUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, service.ErrInvalidRequest)
		return
	}

	appt, err := h.Service.UpdateAppointmentStatus(r.Context(), id, req.Status)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, appt)
}

func (h *AppointmentHandler) GetBookedTimes(w http.ResponseWriter, r *http.Request) {
	date := mux.Vars(r)["date"]
	times, err := h.Service.GetBookedTimes(r.Context(), date)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"data": times})
}

func (h *AppointmentHandler) GetAppointmentCounts(w http.ResponseWriter, r *http.Request) {
	startDate := r.URL.Query().Get("startDate")
	endDate := r.URL.Query().Get("endDate")
	if startDate == "" || endDate == "" {
		respondError(w, service.ErrInvalidRequest)
		return
	}

	counts, err := h.Service.GetAppointmentCounts(r.Context(), startDate, endDate)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"data": counts})
}

func (h *AppointmentHandler) ListAppointments(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page, _ := strconv.Atoi(query.Get("page"))
	limit, _ := strconv.Atoi(query.Get("limit"))

	list, err := h.Service.ListAppointments(r.Context(), query.Get("startDate"), query.Get("endDate"), page, limit)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}
