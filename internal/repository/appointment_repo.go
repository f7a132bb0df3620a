package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"thetalounge/internal/db"
	"thetalounge/internal/entities"
	"thetalounge/internal/utils"
)

// Guard errors returned by the guarded counter updates. The booking service
// checks balances before decrementing, but the updates themselves refuse to go
// negative as a last-resort invariant guard.
var (
	ErrCapacityExhausted = errors.New("calendar capacity exhausted")
	ErrSessionsExhausted = errors.New("activation sessions exhausted")
)

// BookingTx is the set of row-locked operations available inside a single
// booking transaction. All reads lock the row they touch (SELECT ... FOR
// UPDATE) so that two concurrent bookings for the same date or the same
// activation serialize on the contended row.
type BookingTx interface {
	ActivationForUpdate(id int) (*db.PackageActivation, error)
	ConsumeActivationSession(id int) error
	CalendarDayForUpdate(date string) (*db.CalendarDay, error)
	InsertCalendarDay(day *db.CalendarDay) error
	DecrementCalendarDay(date string) error
	NextReservationSeq() (int, error)
	InsertAppointment(appt *db.Appointment) error
}

type AppointmentRepository struct {
	DB *sql.DB
}

func NewAppointmentRepository(database *sql.DB) *AppointmentRepository {
	return &AppointmentRepository{DB: database}
}

// InTx runs fn inside a single database transaction. Any error from fn rolls
// every mutation back; the transaction commits only when fn returns nil.
func (r *AppointmentRepository) InTx(ctx context.Context, fn func(tx BookingTx) error) error {
	sqlTx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting booking transaction: %w", err)
	}

	if err := fn(&bookingTx{tx: sqlTx}); err != nil {
		if rbErr := sqlTx.Rollback(); rbErr != nil {
			log.Printf("Error rolling back booking transaction: %v", rbErr)
		}
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("error committing booking transaction: %w", err)
	}
	return nil
}

type bookingTx struct {
	tx *sql.Tx
}

func (t *bookingTx) ActivationForUpdate(id int) (*db.PackageActivation, error) {
	var act db.PackageActivation
	query := `
		SELECT id, full_name, email, phone, address, message, package_id, package_name,
		       total_sessions, used_count, status, preferred_date, start_date, expiry_date,
		       created_at, updated_at
		FROM package_activations
		WHERE id = $1
		FOR UPDATE`
	err := t.tx.QueryRow(query, id).Scan(
		&act.ID, &act.FullName, &act.Email, &act.Phone, &act.Address, &act.Message,
		&act.PackageID, &act.PackageName, &act.TotalSessions, &act.UsedCount, &act.Status,
		&act.PreferredDate, &act.StartDate, &act.ExpiryDate, &act.CreatedAt, &act.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error locking package activation %d: %w", id, err)
	}
	return &act, nil
}

func (t *bookingTx) ConsumeActivationSession(id int) error {
	result, err := t.tx.Exec(`
		UPDATE package_activations
		SET used_count = used_count + 1, updated_at = NOW()
		WHERE id = $1 AND used_count < total_sessions`, id)
	if err != nil {
		return fmt.Errorf("error consuming activation session: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrSessionsExhausted
	}
	return nil
}

func (t *bookingTx) CalendarDayForUpdate(date string) (*db.CalendarDay, error) {
	var day db.CalendarDay
	query := `
		SELECT id, date, status, open_time, close_time, sessions_to_sell
		FROM calendar_days
		WHERE date = $1
		FOR UPDATE`
	err := t.tx.QueryRow(query, date).Scan(
		&day.ID, &day.Date, &day.Status, &day.OpenTime, &day.CloseTime, &day.SessionsToSell,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error locking calendar day %s: %w", date, err)
	}
	return &day, nil
}

func (t *bookingTx) InsertCalendarDay(day *db.CalendarDay) error {
	query := `
		INSERT INTO calendar_days (date, status, open_time, close_time, sessions_to_sell)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	err := t.tx.QueryRow(query, day.Date, day.Status, day.OpenTime, day.CloseTime, day.SessionsToSell).
		Scan(&day.ID)
	if err != nil {
		return fmt.Errorf("error inserting calendar day %s: %w", day.Date, err)
	}
	return nil
}

func (t *bookingTx) DecrementCalendarDay(date string) error {
	result, err := t.tx.Exec(`
		UPDATE calendar_days
		SET sessions_to_sell = sessions_to_sell - 1,
		    status = CASE WHEN sessions_to_sell - 1 <= 0 THEN 'Sold Out' ELSE 'Bookable' END
		WHERE date = $1 AND sessions_to_sell > 0`, date)
	if err != nil {
		return fmt.Errorf("error decrementing calendar day %s: %w", date, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrCapacityExhausted
	}
	return nil
}

// NextReservationSeq atomically advances the reservation counter. The counter
// lives in its own row so the sequence survives restarts and stays monotonic
// across server instances.
func (t *bookingTx) NextReservationSeq() (int, error) {
	var seq int
	query := `
		INSERT INTO counters (key, seq) VALUES ('reservationId', 1)
		ON CONFLICT (key) DO UPDATE SET seq = counters.seq + 1
		RETURNING seq`
	if err := t.tx.QueryRow(query).Scan(&seq); err != nil {
		return 0, fmt.Errorf("error advancing reservation counter: %w", err)
	}
	return seq, nil
}

func (t *bookingTx) InsertAppointment(appt *db.Appointment) error {
	query := `
		INSERT INTO appointments
		(reservation_id, name, email, contact_number, date, time, special_note, status, package_activation_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		RETURNING id, created_at, updated_at`
	return t.tx.QueryRow(query,
		appt.ReservationID,
		appt.Name,
		appt.Email,
		appt.ContactNumber,
		appt.Date,
		appt.Time,
		appt.SpecialNote,
		appt.Status,
		appt.PackageActivationID,
	).Scan(&appt.ID, &appt.CreatedAt, &appt.UpdatedAt)
}

func (r *AppointmentRepository) GetAppointmentByID(ctx context.Context, id int) (*db.Appointment, error) {
	var appt db.Appointment
	query := `
		SELECT id, reservation_id, name, email, contact_number, date, time, special_note,
		       status, package_activation_id, created_at, updated_at
		FROM appointments
		WHERE id = $1`
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&appt.ID, &appt.ReservationID, &appt.Name, &appt.Email, &appt.ContactNumber,
		&appt.Date, &appt.Time, &appt.SpecialNote, &appt.Status, &appt.PackageActivationID,
		&appt.CreatedAt, &appt.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying appointment %d: %w", id, err)
	}
	return &appt, nil
}

func (r *AppointmentRepository) SetAppointmentStatus(ctx context.Context, id int, status string) (*db.Appointment, error) {
	var appt db.Appointment
	query := `
		UPDATE appointments
		SET status = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING id, reservation_id, name, email, contact_number, date, time, special_note,
		          status, package_activation_id, created_at, updated_at`
	err := r.DB.QueryRowContext(ctx, query, status, id).Scan(
		&appt.ID, &appt.ReservationID, &appt.Name, &appt.Email, &appt.ContactNumber,
		&appt.Date, &appt.Time, &appt.SpecialNote, &appt.Status, &appt.PackageActivationID,
		&appt.CreatedAt, &appt.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error updating appointment %d status: %w", id, err)
	}
	return &appt, nil
}

// GetBookedTimes returns the deduplicated occupied time slots for a date.
// Cancelled appointments free their slot.
func (r *AppointmentRepository) GetBookedTimes(ctx context.Context, date string) ([]string, error) {
	query := `
		SELECT DISTINCT time FROM appointments
		WHERE date = $1 AND status IN ($2, $3)
		ORDER BY time`
	rows, err := r.DB.QueryContext(ctx, query, date, utils.AppointmentPending, utils.AppointmentCompleted)
	if err != nil {
		return nil, fmt.Errorf("error querying booked times for %s: %w", date, err)
	}
	defer rows.Close()

	var times []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("error scanning booked time: %w", err)
		}
		times = append(times, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating booked times: %w", err)
	}
	return times, nil
}

func (r *AppointmentRepository) GetAppointmentCounts(ctx context.Context, startDate, endDate string) ([]entities.DateCount, error) {
	query := `
		SELECT date, COUNT(*) FROM appointments
		WHERE date >= $1 AND date <= $2 AND status IN ($3, $4)
		GROUP BY date
		ORDER BY date`
	rows, err := r.DB.QueryContext(ctx, query, startDate, endDate, utils.AppointmentPending, utils.AppointmentCompleted)
	if err != nil {
		return nil, fmt.Errorf("error querying appointment counts: %w", err)
	}
	defer rows.Close()

	var counts []entities.DateCount
	for rows.Next() {
		var dc entities.DateCount
		if err := rows.Scan(&dc.Date, &dc.Count); err != nil {
			return nil, fmt.Errorf("error scanning appointment count: %w", err)
		}
		counts = append(counts, dc)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating appointment counts: %w", err)
	}
	return counts, nil
}

// ListAppointments returns a page of appointments, newest first, optionally
// restricted to a date range. Empty startDate/endDate means no restriction.
func (r *AppointmentRepository) ListAppointments(ctx context.Context, startDate, endDate string, page, limit int) ([]db.Appointment, int, error) {
	where := ""
	args := []interface{}{}
	if startDate != "" && endDate != "" {
		where = "WHERE date >= $1 AND date <= $2"
		args = append(args, startDate, endDate)
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM appointments " + where
	if err := r.DB.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting appointments: %w", err)
	}

	offset := (page - 1) * limit
	listQuery := fmt.Sprintf(`
		SELECT id, reservation_id, name, email, contact_number, date, time, special_note,
		       status, package_activation_id, created_at, updated_at
		FROM appointments %s
		ORDER BY date DESC, time DESC
		LIMIT $%d OFFSET $%d`, where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.DB.QueryContext(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing appointments: %w", err)
	}
	defer rows.Close()

	var appointments []db.Appointment
	for rows.Next() {
		var appt db.Appointment
		if err := rows.Scan(
			&appt.ID, &appt.ReservationID, &appt.Name, &appt.Email, &appt.ContactNumber,
			&appt.Date, &appt.Time, &appt.SpecialNote, &appt.Status, &appt.PackageActivationID,
			&appt.CreatedAt, &appt.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("error scanning appointment: %w", err)
		}
		appointments = append(appointments, appt)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error after iterating appointments: %w", err)
	}
	return appointments, total, nil
}
