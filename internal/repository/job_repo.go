package repository

import (
	"database/sql"
	"fmt"
	"log"
	"thetalounge/internal/utils"
	"time"

	"github.com/lib/pq"
)

type JobRepository struct {
	DB *sql.DB
}

func NewJobRepository(database *sql.DB) *JobRepository {
	return &JobRepository{DB: database}
}

// GetConfirmedActivationIDsPastExpiry returns the IDs of confirmed activations
// whose expiry date has passed.
func (r *JobRepository) GetConfirmedActivationIDsPastExpiry(now time.Time) ([]int, error) {
	query := `SELECT id FROM package_activations WHERE status = $1 AND expiry_date <= $2`
	rows, err := r.DB.Query(query, utils.ActivationConfirmed, now)
	if err != nil {
		return nil, fmt.Errorf("error querying confirmed activations past expiry: %w", err)
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning activation ID: %w", err)
		}
		ids = append(ids, id)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating rows: %w", err)
	}
	return ids, nil
}

// ExpireActivations flips a list of activations to 'Expired' and refreshes
// their updated_at.
func (r *JobRepository) ExpireActivations(ids []int) error {
	if len(ids) == 0 {
		return nil
	}
	query := `UPDATE package_activations SET status = $1, updated_at = NOW() WHERE id = ANY($2)`
	result, err := r.DB.Exec(query, utils.ActivationExpired, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("error expiring activations: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Printf("Could not get rows affected: %v", err)
	} else {
		log.Printf("Marked %d package activations as '%s'", rowsAffected, utils.ActivationExpired)
	}
	return nil
}
