package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"thetalounge/internal/db"
)

type CalendarRepository struct {
	DB *sql.DB
}

func NewCalendarRepository(database *sql.DB) *CalendarRepository {
	return &CalendarRepository{DB: database}
}

func (r *CalendarRepository) GetDay(ctx context.Context, date string) (*db.CalendarDay, error) {
	var day db.CalendarDay
	query := `
		SELECT id, date, status, open_time, close_time, sessions_to_sell
		FROM calendar_days
		WHERE date = $1`
	err := r.DB.QueryRowContext(ctx, query, date).Scan(
		&day.ID, &day.Date, &day.Status, &day.OpenTime, &day.CloseTime, &day.SessionsToSell,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying calendar day %s: %w", date, err)
	}
	return &day, nil
}

// SaveDay creates or overwrites the admin-editable fields of a calendar day.
// An already-materialized row keeps any field the request leaves empty.
func (r *CalendarRepository) SaveDay(ctx context.Context, day *db.CalendarDay) error {
	query := `
		INSERT INTO calendar_days (date, status, open_time, close_time, sessions_to_sell)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (date) DO UPDATE SET
			status = EXCLUDED.status,
			open_time = EXCLUDED.open_time,
			close_time = EXCLUDED.close_time,
			sessions_to_sell = EXCLUDED.sessions_to_sell
		RETURNING id`
	err := r.DB.QueryRowContext(ctx, query,
		day.Date, day.Status, day.OpenTime, day.CloseTime, day.SessionsToSell,
	).Scan(&day.ID)
	if err != nil {
		return fmt.Errorf("error saving calendar day %s: %w", day.Date, err)
	}
	return nil
}

func (r *CalendarRepository) GetRange(ctx context.Context, startDate, endDate string) ([]db.CalendarDay, error) {
	query := `
		SELECT id, date, status, open_time, close_time, sessions_to_sell
		FROM calendar_days
		WHERE date >= $1 AND date <= $2
		ORDER BY date`
	rows, err := r.DB.QueryContext(ctx, query, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("error querying calendar range: %w", err)
	}
	defer rows.Close()

	var days []db.CalendarDay
	for rows.Next() {
		var day db.CalendarDay
		if err := rows.Scan(&day.ID, &day.Date, &day.Status, &day.OpenTime, &day.CloseTime, &day.SessionsToSell); err != nil {
			return nil, fmt.Errorf("error scanning calendar day: %w", err)
		}
		days = append(days, day)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating calendar days: %w", err)
	}
	return days, nil
}
