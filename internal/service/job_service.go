package service

import (
	"fmt"
	"log"
	"thetalounge/internal/repository"
	"time"
)

type JobService struct {
	Repo *repository.JobRepository
}

func NewJobService(repo *repository.JobRepository) *JobService {
	return &JobService{Repo: repo}
}

// ExpireConfirmedActivations flips confirmed package activations whose expiry
// date has passed to 'Expired'. Runs as a daily singleton cron job.
func (s *JobService) ExpireConfirmedActivations() error {
	log.Println("Cron Job: Checking for package activations to mark as 'Expired'...")

	activationIDs, err := s.Repo.GetConfirmedActivationIDsPastExpiry(time.Now().UTC())
	if err != nil {
		return fmt.Errorf("cron job: failed to get confirmed activations past expiry: %w", err)
	}

	if len(activationIDs) == 0 {
		log.Println("Cron Job: No confirmed activations found past their expiry date.")
		return nil
	}

	log.Printf("Cron Job: Found %d activations to mark as 'Expired'. IDs: %v", len(activationIDs), activationIDs)

	if err := s.Repo.ExpireActivations(activationIDs); err != nil {
		return fmt.Errorf("cron job: failed to expire activations: %w", err)
	}

	log.Printf("Cron Job: Successfully expired %d package activations.", len(activationIDs))
	return nil
}
