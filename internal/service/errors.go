package service

import "errors"

// Business outcomes of the booking flow. SoldOut and the package errors are
// expected under contention or policy, not defects; handlers surface their
// messages verbatim.
var (
	ErrInvalidRequest      = errors.New("missing required fields: name, date, time, email, contactNumber, and calendar context are mandatory")
	ErrPackageNotFound     = errors.New("package activation not found")
	ErrPackageNotConfirmed = errors.New("package is not confirmed yet")
	ErrPackageExpired      = errors.New("this package has expired")
	ErrNoRemainingSessions = errors.New("no remaining sessions")
	ErrSoldOut             = errors.New("sold out: no available sessions")
	ErrTransactionFailed   = errors.New("booking could not be completed, please try again")

	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrInvalidStatus       = errors.New("invalid status value")
	ErrInvalidTransition   = errors.New("status transition not allowed")

	ErrActivationNotFound = errors.New("package activation not found")
	ErrUnknownPackage     = errors.New("associated package not found")
)
