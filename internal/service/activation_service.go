package service

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strconv"
	"thetalounge/internal/db"
	"thetalounge/internal/entities"
	"thetalounge/internal/repository"
	"thetalounge/internal/utils"
	"time"
)

var durationMonthsPattern = regexp.MustCompile(`(\d+)-Month`)

// parseDurationMonths extracts the month count from a package duration label
// like "6-Month". Unparsable labels default to 1 month.
func parseDurationMonths(duration string) int {
	match := durationMonthsPattern.FindStringSubmatch(duration)
	if match == nil {
		return 1
	}
	months, err := strconv.Atoi(match[1])
	if err != nil {
		return 1
	}
	return months
}

// ExpiryFromDuration computes when a package confirmed at start stops being
// consumable.
func ExpiryFromDuration(start time.Time, duration string) time.Time {
	return start.AddDate(0, parseDurationMonths(duration), 0)
}

type ActivationService struct {
	Repo *repository.ActivationRepository
}

func NewActivationService(repo *repository.ActivationRepository) *ActivationService {
	return &ActivationService{Repo: repo}
}

func (s *ActivationService) ListPackages(ctx context.Context) ([]entities.PackageResponse, error) {
	packages, err := s.Repo.ListActivePackages(ctx)
	if err != nil {
		return nil, err
	}
	responses := make([]entities.PackageResponse, 0, len(packages))
	for _, pkg := range packages {
		responses = append(responses, entities.PackageResponse{
			ID:         pkg.ID,
			Name:       pkg.Name,
			Duration:   pkg.Duration,
			Sessions:   pkg.Sessions,
			TotalPrice: pkg.TotalPrice,
			Discount:   pkg.Discount,
		})
	}
	return responses, nil
}

// CreateActivation records a new activation request in Pending state. The
// session balance is fixed from the package definition at request time.
func (s *ActivationService) CreateActivation(ctx context.Context, req *entities.ActivationRequest) (*entities.ActivationResponse, error) {
	if req.FullName == "" || req.Email == "" || req.Phone == "" || req.Address == "" || req.PackageID == 0 {
		return nil, ErrInvalidRequest
	}

	pkg, err := s.Repo.GetPackageByID(ctx, req.PackageID)
	if err != nil {
		return nil, err
	}
	if pkg == nil {
		return nil, ErrUnknownPackage
	}

	preferred := time.Now().UTC()
	if req.PreferredDate != "" {
		if parsed, err := time.Parse("2006-01-02", req.PreferredDate); err == nil {
			preferred = parsed
		}
	}

	act := &db.PackageActivation{
		FullName:      req.FullName,
		Email:         req.Email,
		Phone:         req.Phone,
		Address:       req.Address,
		Message:       req.Message,
		PackageID:     pkg.ID,
		PackageName:   pkg.Name,
		TotalSessions: pkg.Sessions,
		UsedCount:     0,
		Status:        utils.ActivationPending,
		PreferredDate: preferred,
	}
	if err := s.Repo.CreateActivation(ctx, act); err != nil {
		return nil, fmt.Errorf("error creating package activation: %w", err)
	}
	return toActivationResponse(act), nil
}

// UpdateActivationStatus applies an admin transition. Confirming stamps the
// start date (given or now) and the expiry derived from the package duration.
// Expired is reserved for the sweep and rejected here.
func (s *ActivationService) UpdateActivationStatus(ctx context.Context, id int, req *entities.ActivationStatusUpdateRequest) (*entities.ActivationResponse, error) {
	if !utils.IsActivationStatus(req.Status) || req.Status == utils.ActivationExpired {
		return nil, ErrInvalidStatus
	}

	act, err := s.Repo.GetActivationByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if act == nil {
		return nil, ErrActivationNotFound
	}
	if !utils.CanTransitionActivation(act.Status, req.Status) {
		return nil, ErrInvalidTransition
	}
	if act.Status == req.Status && req.StartDate == "" {
		return toActivationResponse(act), nil
	}

	var startDate, expiryDate sql.NullTime
	if req.Status == utils.ActivationConfirmed && (!act.StartDate.Valid || req.StartDate != "") {
		pkg, err := s.Repo.GetPackageByID(ctx, act.PackageID)
		if err != nil {
			return nil, err
		}
		if pkg == nil {
			return nil, ErrUnknownPackage
		}

		start := time.Now().UTC()
		if req.StartDate != "" {
			parsed, err := time.Parse("2006-01-02", req.StartDate)
			if err != nil {
				return nil, ErrInvalidRequest
			}
			start = parsed
		}
		startDate = sql.NullTime{Time: start, Valid: true}
		expiryDate = sql.NullTime{Time: ExpiryFromDuration(start, pkg.Duration), Valid: true}
	}

	updated, err := s.Repo.UpdateActivationStatus(ctx, id, req.Status, startDate, expiryDate)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrActivationNotFound
	}
	return toActivationResponse(updated), nil
}

func (s *ActivationService) ListActivations(ctx context.Context, status string, page, limit int) (*entities.ActivationList, error) {
	if status != "" && !utils.IsActivationStatus(status) {
		return nil, ErrInvalidStatus
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	activations, total, err := s.Repo.ListActivations(ctx, status, page, limit)
	if err != nil {
		return nil, err
	}

	list := &entities.ActivationList{
		Activations: make([]entities.ActivationResponse, 0, len(activations)),
		Total:       total,
		Page:        page,
		TotalPages:  (total + limit - 1) / limit,
	}
	for i := range activations {
		list.Activations = append(list.Activations, *toActivationResponse(&activations[i]))
	}
	return list, nil
}

// GetActivePackages returns the confirmed, unexpired activations a customer
// can still fund bookings with.
func (s *ActivationService) GetActivePackages(ctx context.Context, email string) ([]entities.ActivationResponse, error) {
	if email == "" {
		return nil, ErrInvalidRequest
	}
	activations, err := s.Repo.GetActiveByEmail(ctx, email, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	responses := make([]entities.ActivationResponse, 0, len(activations))
	for i := range activations {
		responses = append(responses, *toActivationResponse(&activations[i]))
	}
	return responses, nil
}

func toActivationResponse(act *db.PackageActivation) *entities.ActivationResponse {
	remaining := act.TotalSessions - act.UsedCount
	if remaining < 0 {
		remaining = 0
	}
	resp := &entities.ActivationResponse{
		ID:                act.ID,
		FullName:          act.FullName,
		Email:             act.Email,
		Phone:             act.Phone,
		Address:           act.Address,
		Message:           act.Message,
		PackageID:         act.PackageID,
		PackageName:       act.PackageName,
		TotalSessions:     act.TotalSessions,
		UsedCount:         act.UsedCount,
		RemainingSessions: remaining,
		Status:            act.Status,
	}
	if act.StartDate.Valid {
		start := act.StartDate.Time
		resp.StartDate = &start
	}
	if act.ExpiryDate.Valid {
		expiry := act.ExpiryDate.Time
		resp.ExpiryDate = &expiry
	}
	return resp
}
