package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"thetalounge/internal/db"
	"thetalounge/internal/utils"
	"time"
)

type ActivationRepository struct {
	DB *sql.DB
}

func NewActivationRepository(database *sql.DB) *ActivationRepository {
	return &ActivationRepository{DB: database}
}

func (r *ActivationRepository) GetPackageByID(ctx context.Context, id int) (*db.Package, error) {
	var pkg db.Package
	query := `
		SELECT id, name, duration, sessions, total_price, discount, is_active, created_at, updated_at
		FROM packages
		WHERE id = $1`
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&pkg.ID, &pkg.Name, &pkg.Duration, &pkg.Sessions, &pkg.TotalPrice, &pkg.Discount,
		&pkg.IsActive, &pkg.CreatedAt, &pkg.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying package %d: %w", id, err)
	}
	return &pkg, nil
}

func (r *ActivationRepository) ListActivePackages(ctx context.Context) ([]db.Package, error) {
	query := `
		SELECT id, name, duration, sessions, total_price, discount, is_active, created_at, updated_at
		FROM packages
		WHERE is_active = TRUE
		ORDER BY total_price`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error querying packages: %w", err)
	}
	defer rows.Close()

	var packages []db.Package
	for rows.Next() {
		var pkg db.Package
		if err := rows.Scan(&pkg.ID, &pkg.Name, &pkg.Duration, &pkg.Sessions, &pkg.TotalPrice,
			&pkg.Discount, &pkg.IsActive, &pkg.CreatedAt, &pkg.UpdatedAt); err != nil {
			return nil, fmt.Errorf("error scanning package: %w", err)
		}
		packages = append(packages, pkg)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating packages: %w", err)
	}
	return packages, nil
}

func (r *ActivationRepository) CreateActivation(ctx context.Context, act *db.PackageActivation) error {
	query := `
		INSERT INTO package_activations
		(full_name, email, phone, address, message, package_id, package_name, total_sessions,
		 used_count, status, preferred_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
		RETURNING id, created_at, updated_at`
	return r.DB.QueryRowContext(ctx, query,
		act.FullName, act.Email, act.Phone, act.Address, act.Message,
		act.PackageID, act.PackageName, act.TotalSessions, act.UsedCount,
		act.Status, act.PreferredDate,
	).Scan(&act.ID, &act.CreatedAt, &act.UpdatedAt)
}

func (r *ActivationRepository) GetActivationByID(ctx context.Context, id int) (*db.PackageActivation, error) {
	var act db.PackageActivation
	query := `
		SELECT id, full_name, email, phone, address, message, package_id, package_name,
		       total_sessions, used_count, status, preferred_date, start_date, expiry_date,
		       created_at, updated_at
		FROM package_activations
		WHERE id = $1`
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&act.ID, &act.FullName, &act.Email, &act.Phone, &act.Address, &act.Message,
		&act.PackageID, &act.PackageName, &act.TotalSessions, &act.UsedCount, &act.Status,
		&act.PreferredDate, &act.StartDate, &act.ExpiryDate, &act.CreatedAt, &act.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying package activation %d: %w", id, err)
	}
	return &act, nil
}

// UpdateActivationStatus writes the new status and, when the transition stamps
// the consumable window, the start and expiry dates.
func (r *ActivationRepository) UpdateActivationStatus(ctx context.Context, id int, status string, startDate, expiryDate sql.NullTime) (*db.PackageActivation, error) {
	var act db.PackageActivation
	query := `
		UPDATE package_activations
		SET status = $1,
		    start_date = COALESCE($2, start_date),
		    expiry_date = COALESCE($3, expiry_date),
		    updated_at = NOW()
		WHERE id = $4
		RETURNING id, full_name, email, phone, address, message, package_id, package_name,
		          total_sessions, used_count, status, preferred_date, start_date, expiry_date,
		          created_at, updated_at`
	err := r.DB.QueryRowContext(ctx, query, status, startDate, expiryDate, id).Scan(
		&act.ID, &act.FullName, &act.Email, &act.Phone, &act.Address, &act.Message,
		&act.PackageID, &act.PackageName, &act.TotalSessions, &act.UsedCount, &act.Status,
		&act.PreferredDate, &act.StartDate, &act.ExpiryDate, &act.CreatedAt, &act.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error updating package activation %d status: %w", id, err)
	}
	return &act, nil
}

func (r *ActivationRepository) ListActivations(ctx context.Context, status string, page, limit int) ([]db.PackageActivation, int, error) {
	where := ""
	args := []interface{}{}
	if status != "" {
		where = "WHERE status = $1"
		args = append(args, status)
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM package_activations " + where
	if err := r.DB.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting package activations: %w", err)
	}

	offset := (page - 1) * limit
	listQuery := fmt.Sprintf(`
		SELECT id, full_name, email, phone, address, message, package_id, package_name,
		       total_sessions, used_count, status, preferred_date, start_date, expiry_date,
		       created_at, updated_at
		FROM package_activations %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`, where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.DB.QueryContext(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing package activations: %w", err)
	}
	defer rows.Close()

	activations, err := scanActivations(rows)
	if err != nil {
		return nil, 0, err
	}
	return activations, total, nil
}

// GetActiveByEmail returns the confirmed, unexpired activations owned by an
// email address, most recently started first.
func (r *ActivationRepository) GetActiveByEmail(ctx context.Context, email string, now time.Time) ([]db.PackageActivation, error) {
	query := `
		SELECT id, full_name, email, phone, address, message, package_id, package_name,
		       total_sessions, used_count, status, preferred_date, start_date, expiry_date,
		       created_at, updated_at
		FROM package_activations
		WHERE email = $1 AND status = $2 AND (expiry_date IS NULL OR expiry_date > $3)
		ORDER BY start_date DESC`
	rows, err := r.DB.QueryContext(ctx, query, email, utils.ActivationConfirmed, now)
	if err != nil {
		return nil, fmt.Errorf("error querying active packages for %s: %w", email, err)
	}
	defer rows.Close()

	return scanActivations(rows)
}

func scanActivations(rows *sql.Rows) ([]db.PackageActivation, error) {
	var activations []db.PackageActivation
	for rows.Next() {
		var act db.PackageActivation
		if err := rows.Scan(
			&act.ID, &act.FullName, &act.Email, &act.Phone, &act.Address, &act.Message,
			&act.PackageID, &act.PackageName, &act.TotalSessions, &act.UsedCount, &act.Status,
			&act.PreferredDate, &act.StartDate, &act.ExpiryDate, &act.CreatedAt, &act.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("error scanning package activation: %w", err)
		}
		activations = append(activations, act)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating package activations: %w", err)
	}
	return activations, nil
}
