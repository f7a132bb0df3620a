package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	apperrors "thetalounge/internal/errors"
	"thetalounge/internal/service"
)

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

// respondError maps a service error onto the HTTP taxonomy: validation 400,
// not-found 404, business-rule conflicts 409, everything else a generic 500.
func respondError(w http.ResponseWriter, err error) {
	httpErr := httpErrorFor(err)
	respondJSON(w, httpErr.Code, map[string]string{"message": httpErr.Message})
}

func httpErrorFor(err error) *apperrors.HTTPError {
	switch {
	case errors.Is(err, service.ErrInvalidRequest),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrInvalidTransition):
		return apperrors.ErrBadRequest(err.Error())
	case errors.Is(err, service.ErrAppointmentNotFound),
		errors.Is(err, service.ErrActivationNotFound),
		errors.Is(err, service.ErrPackageNotFound),
		errors.Is(err, service.ErrUnknownPackage):
		return apperrors.ErrNotFound(err.Error())
	case errors.Is(err, service.ErrSoldOut),
		errors.Is(err, service.ErrPackageNotConfirmed),
		errors.Is(err, service.ErrPackageExpired),
		errors.Is(err, service.ErrNoRemainingSessions):
		return apperrors.ErrConflict(err.Error())
	case errors.Is(err, service.ErrTransactionFailed):
		return apperrors.NewHTTPError(http.StatusInternalServerError, service.ErrTransactionFailed.Error())
	default:
		log.Printf("Unexpected error: %v", err)
		return apperrors.NewHTTPError(http.StatusInternalServerError, "Internal server error")
	}
}
