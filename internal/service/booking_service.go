package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"thetalounge/internal/db"
	"thetalounge/internal/entities"
	"thetalounge/internal/repository"
	"thetalounge/internal/utils"
	"time"
)

// BookingStore is the persistence surface the booking coordinator needs. The
// appointment repository implements it against Postgres.
type BookingStore interface {
	InTx(ctx context.Context, fn func(tx repository.BookingTx) error) error
	GetAppointmentByID(ctx context.Context, id int) (*db.Appointment, error)
	SetAppointmentStatus(ctx context.Context, id int, status string) (*db.Appointment, error)
	GetBookedTimes(ctx context.Context, date string) ([]string, error)
	GetAppointmentCounts(ctx context.Context, startDate, endDate string) ([]entities.DateCount, error)
	ListAppointments(ctx context.Context, startDate, endDate string, page, limit int) ([]db.Appointment, int, error)
}

// BookingNotifier receives post-commit events. Implementations must not block
// the booking path; delivery is best-effort.
type BookingNotifier interface {
	BookingConfirmed(appt db.Appointment)
	AppointmentStatusChanged(appt db.Appointment)
}

type BookingService struct {
	Store    BookingStore
	Notifier BookingNotifier
}

func NewBookingService(store BookingStore, notifier BookingNotifier) *BookingService {
	return &BookingService{Store: store, Notifier: notifier}
}

// BookSession reserves one session slot as a single atomic unit: optional
// package entitlement validation and consumption, calendar capacity check and
// decrement (lazily materializing the day from the supplied default settings),
// and appointment creation with a fresh sequential reservation code.
// Notifications fire only after the transaction commits.
func (s *BookingService) BookSession(ctx context.Context, req *entities.AppointmentRequest) (*entities.AppointmentResponse, error) {
	if req.Name == "" || req.Date == "" || req.Time == "" || req.Email == "" ||
		req.ContactNumber == "" || req.CalendarContext == nil {
		return nil, ErrInvalidRequest
	}

	var created db.Appointment
	err := s.Store.InTx(ctx, func(tx repository.BookingTx) error {
		if req.PackageActivationID != nil {
			if err := consumeActivation(tx, *req.PackageActivationID); err != nil {
				return err
			}
		}

		settings := req.CalendarContext.DefaultSystemSettings
		day, err := tx.CalendarDayForUpdate(req.Date)
		if err != nil {
			return err
		}

		openTime := settings.OpenTime
		closeTime := settings.CloseTime
		var sessionsToSell int
		if day != nil {
			if day.Status == utils.CalendarClosed {
				return ErrSoldOut
			}
			sessionsToSell = day.SessionsToSell
			openTime = day.OpenTime
			closeTime = day.CloseTime
		} else {
			sessionsToSell = CalculateStaggeredSessions(
				settings.OpenTime, settings.CloseTime,
				settings.SessionDuration, settings.CleaningBuffer,
				settings.NumberOfTanks, settings.TankStaggerInterval,
			)
		}
		// Capacity is a separate constraint from the entitlement balance, so
		// this holds for package-funded bookings too.
		if sessionsToSell <= 0 {
			return ErrSoldOut
		}

		seq, err := tx.NextReservationSeq()
		if err != nil {
			return err
		}

		created = db.Appointment{
			ReservationID: fmt.Sprintf("TLB-%02d", seq),
			Name:          req.Name,
			Email:         req.Email,
			ContactNumber: req.ContactNumber,
			Date:          req.Date,
			Time:          req.Time,
			SpecialNote:   req.SpecialNote,
			Status:        utils.AppointmentPending,
		}
		if req.PackageActivationID != nil {
			created.PackageActivationID = sql.NullInt64{Int64: int64(*req.PackageActivationID), Valid: true}
		}
		if err := tx.InsertAppointment(&created); err != nil {
			return err
		}

		if day == nil {
			remaining := sessionsToSell - 1
			return tx.InsertCalendarDay(&db.CalendarDay{
				Date:           req.Date,
				Status:         calendarStatusFor(remaining),
				OpenTime:       openTime,
				CloseTime:      closeTime,
				SessionsToSell: remaining,
			})
		}
		if err := tx.DecrementCalendarDay(req.Date); err != nil {
			if errors.Is(err, repository.ErrCapacityExhausted) {
				return ErrSoldOut
			}
			return err
		}
		return nil
	})
	if err != nil {
		if isBusinessError(err) {
			return nil, err
		}
		log.Printf("Booking transaction failed for %s %s: %v", req.Date, req.Time, err)
		return nil, fmt.Errorf("%w: %v", ErrTransactionFailed, err)
	}

	s.Notifier.BookingConfirmed(created)
	return toAppointmentResponse(&created), nil
}

// consumeActivation validates the entitlement and burns one session. The row
// is locked for the rest of the transaction, so the check and the increment
// cannot interleave with a concurrent booking against the same activation.
func consumeActivation(tx repository.BookingTx, id int) error {
	act, err := tx.ActivationForUpdate(id)
	if err != nil {
		return err
	}
	if act == nil {
		return ErrPackageNotFound
	}
	if act.Status != utils.ActivationConfirmed {
		return ErrPackageNotConfirmed
	}
	if act.ExpiryDate.Valid && time.Now().After(act.ExpiryDate.Time) {
		return ErrPackageExpired
	}
	if act.TotalSessions-act.UsedCount <= 0 {
		return ErrNoRemainingSessions
	}
	if err := tx.ConsumeActivationSession(act.ID); err != nil {
		if errors.Is(err, repository.ErrSessionsExhausted) {
			return ErrNoRemainingSessions
		}
		return err
	}
	return nil
}

// UpdateAppointmentStatus applies an admin status change. Re-applying the
// current status is a no-op success; pending is the only state that can move.
func (s *BookingService) UpdateAppointmentStatus(ctx context.Context, id int, status string) (*entities.AppointmentResponse, error) {
	status = strings.ToLower(status)
	if !utils.IsAppointmentStatus(status) {
		return nil, ErrInvalidStatus
	}

	appt, err := s.Store.GetAppointmentByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if appt == nil {
		return nil, ErrAppointmentNotFound
	}
	if !utils.CanTransitionAppointment(appt.Status, status) {
		return nil, ErrInvalidTransition
	}
	if appt.Status == status {
		return toAppointmentResponse(appt), nil
	}

	updated, err := s.Store.SetAppointmentStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrAppointmentNotFound
	}

	if status == utils.AppointmentCompleted || status == utils.AppointmentCancelled {
		s.Notifier.AppointmentStatusChanged(*updated)
	}
	return toAppointmentResponse(updated), nil
}

func (s *BookingService) GetBookedTimes(ctx context.Context, date string) ([]string, error) {
	times, err := s.Store.GetBookedTimes(ctx, date)
	if err != nil {
		return nil, err
	}
	if times == nil {
		times = []string{}
	}
	return times, nil
}

func (s *BookingService) GetAppointmentCounts(ctx context.Context, startDate, endDate string) ([]entities.DateCount, error) {
	counts, err := s.Store.GetAppointmentCounts(ctx, startDate, endDate)
	if err != nil {
		return nil, err
	}
	if counts == nil {
		counts = []entities.DateCount{}
	}
	return counts, nil
}

func (s *BookingService) ListAppointments(ctx context.Context, startDate, endDate string, page, limit int) (*entities.AppointmentList, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	appointments, total, err := s.Store.ListAppointments(ctx, startDate, endDate, page, limit)
	if err != nil {
		return nil, err
	}

	list := &entities.AppointmentList{
		Appointments: make([]entities.AppointmentResponse, 0, len(appointments)),
		Total:        total,
		Page:         page,
		TotalPages:   (total + limit - 1) / limit,
	}
	for i := range appointments {
		list.Appointments = append(list.Appointments, *toAppointmentResponse(&appointments[i]))
	}
	return list, nil
}

func calendarStatusFor(remaining int) string {
	if remaining > 0 {
		return utils.CalendarBookable
	}
	return utils.CalendarSoldOut
}

func isBusinessError(err error) bool {
	for _, sentinel := range []error{
		ErrInvalidRequest, ErrPackageNotFound, ErrPackageNotConfirmed,
		ErrPackageExpired, ErrNoRemainingSessions, ErrSoldOut,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

func toAppointmentResponse(appt *db.Appointment) *entities.AppointmentResponse {
	resp := &entities.AppointmentResponse{
		ID:            appt.ID,
		ReservationID: appt.ReservationID,
		Name:          appt.Name,
		Email:         appt.Email,
		ContactNumber: appt.ContactNumber,
		Date:          appt.Date,
		Time:          appt.Time,
		SpecialNote:   appt.SpecialNote,
		Status:        strings.ToLower(appt.Status),
	}
	if appt.PackageActivationID.Valid {
		id := int(appt.PackageActivationID.Int64)
		resp.PackageActivationID = &id
	}
	return resp
}
