package entities

type BookingEmailData struct {
	Name          string
	ReservationID string
	Date          string
	Time          string
	ContactNumber string
	SpecialNote   string
	CurrentYear   int
}
