package api

import (
	"encoding/json"
	"net/http"
	"thetalounge/internal/entities"
	"thetalounge/internal/service"
)

type CalendarHandler struct {
	Service *service.CalendarService
}

func NewCalendarHandler(svc *service.CalendarService) *CalendarHandler {
	return &CalendarHandler{Service: svc}
}

func (h *CalendarHandler) SaveCalendarDay(w http.ResponseWriter, r *http.Request) {
	var req entities.CalendarDayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, service.ErrInvalidRequest)
		return
	}

	day, err := h.Service.SaveDay(r.Context(), &req)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, day)
}

func (h *CalendarHandler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	days, err := h.Service.GetRange(r.Context(), query.Get("startDate"), query.Get("endDate"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"data": days})
}
