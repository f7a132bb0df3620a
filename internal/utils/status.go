package utils

// Appointment statuses. Appointments are created as "pending" by the booking
// flow and only move forward by admin action.
const (
	AppointmentPending   = "pending"
	AppointmentCompleted = "completed"
	AppointmentCancelled = "cancelled"
)

// Calendar day bookability statuses.
const (
	CalendarBookable = "Bookable"
	CalendarClosed   = "Closed"
	CalendarSoldOut  = "Sold Out"
)

// Package activation statuses.
const (
	ActivationPending   = "Pending"
	ActivationContacted = "Contacted"
	ActivationConfirmed = "Confirmed"
	ActivationRejected  = "Rejected"
	ActivationExpired   = "Expired"
)

func IsAppointmentStatus(status string) bool {
	switch status {
	case AppointmentPending, AppointmentCompleted, AppointmentCancelled:
		return true
	}
	return false
}

// CanTransitionAppointment reports whether an appointment may move from one
// status to another. Re-applying the current status is allowed (no-op);
// completed and cancelled are terminal.
func CanTransitionAppointment(from, to string) bool {
	if from == to {
		return true
	}
	if from == AppointmentPending {
		return to == AppointmentCompleted || to == AppointmentCancelled
	}
	return false
}

func IsActivationStatus(status string) bool {
	switch status {
	case ActivationPending, ActivationContacted, ActivationConfirmed,
		ActivationRejected, ActivationExpired:
		return true
	}
	return false
}

// CanTransitionActivation reports whether a package activation may move from
// one status to another. Expired is only ever set by the expiry sweep, never
// by an admin, but the transition itself is part of the machine.
func CanTransitionActivation(from, to string) bool {
	if from == to {
		return true
	}
	switch from {
	case ActivationPending:
		return to == ActivationContacted || to == ActivationConfirmed || to == ActivationRejected
	case ActivationContacted:
		return to == ActivationConfirmed
	case ActivationConfirmed:
		return to == ActivationExpired
	}
	return false
}
