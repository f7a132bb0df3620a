package entities

// DefaultSystemSettings are the business-hours defaults the frontend sends
// along with a booking, used only when the requested date has no calendar row
// yet.
type DefaultSystemSettings struct {
	OpenTime            string `json:"openTime"`
	CloseTime           string `json:"closeTime"`
	SessionDuration     int    `json:"sessionDuration"`
	CleaningBuffer      int    `json:"cleaningBuffer"`
	NumberOfTanks       int    `json:"numberOfTanks"`
	TankStaggerInterval int    `json:"tankStaggerInterval"`
}

type CalendarContext struct {
	DefaultSystemSettings DefaultSystemSettings `json:"defaultSystemSettings"`
}

type AppointmentRequest struct {
	Name                string           `json:"name"`
	Date                string           `json:"date"`
	Time                string           `json:"time"`
	Email               string           `json:"email"`
	ContactNumber       string           `json:"contactNumber"`
	SpecialNote         string           `json:"specialNote"`
	CalendarContext     *CalendarContext `json:"calendarContext"`
	PackageActivationID *int             `json:"packageActivationId"`
}

type AppointmentResponse struct {
	ID                  int    `json:"id"`
	ReservationID       string `json:"reservationId"`
	Name                string `json:"name"`
	Email               string `json:"email"`
	ContactNumber       string `json:"contactNumber"`
	Date                string `json:"date"`
	Time                string `json:"time"`
	SpecialNote         string `json:"specialNote,omitempty"`
	Status              string `json:"status"`
	PackageActivationID *int   `json:"packageActivationId,omitempty"`
}

type StatusUpdateRequest struct {
	Status string `json:"status"`
}

type DateCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type AppointmentList struct {
	Appointments []AppointmentResponse `json:"appointments"`
	Total        int                   `json:"total"`
	Page         int                   `json:"page"`
	TotalPages   int                   `json:"totalPages"`
}
