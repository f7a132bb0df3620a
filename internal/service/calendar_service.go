package service

import (
	"context"
	"thetalounge/internal/db"
	"thetalounge/internal/entities"
	"thetalounge/internal/repository"
	"thetalounge/internal/utils"
)

type CalendarService struct {
	Repo *repository.CalendarRepository
}

func NewCalendarService(repo *repository.CalendarRepository) *CalendarService {
	return &CalendarService{Repo: repo}
}

// SaveDay creates or overrides a calendar day. Fields the request leaves
// empty keep their current value on an already-materialized row; a fresh row
// defaults to Bookable. Admin edits never retroactively recompute capacity.
func (s *CalendarService) SaveDay(ctx context.Context, req *entities.CalendarDayRequest) (*entities.CalendarDayResponse, error) {
	if req.Date == "" {
		return nil, ErrInvalidRequest
	}
	if req.Status != "" {
		switch req.Status {
		case utils.CalendarBookable, utils.CalendarClosed, utils.CalendarSoldOut:
		default:
			return nil, ErrInvalidStatus
		}
	}
	if req.SessionsToSell != nil && *req.SessionsToSell < 0 {
		return nil, ErrInvalidRequest
	}

	existing, err := s.Repo.GetDay(ctx, req.Date)
	if err != nil {
		return nil, err
	}

	day := db.CalendarDay{Date: req.Date, Status: utils.CalendarBookable}
	if existing != nil {
		day = *existing
	}
	if req.Status != "" {
		day.Status = req.Status
	}
	if req.OpenTime != "" {
		day.OpenTime = req.OpenTime
	}
	if req.CloseTime != "" {
		day.CloseTime = req.CloseTime
	}
	if req.SessionsToSell != nil {
		day.SessionsToSell = *req.SessionsToSell
		if day.Status != utils.CalendarClosed {
			day.Status = calendarStatusFor(day.SessionsToSell)
		}
	}

	if err := s.Repo.SaveDay(ctx, &day); err != nil {
		return nil, err
	}
	return toCalendarDayResponse(&day), nil
}

func (s *CalendarService) GetRange(ctx context.Context, startDate, endDate string) ([]entities.CalendarDayResponse, error) {
	if startDate == "" || endDate == "" {
		return nil, ErrInvalidRequest
	}
	days, err := s.Repo.GetRange(ctx, startDate, endDate)
	if err != nil {
		return nil, err
	}
	responses := make([]entities.CalendarDayResponse, 0, len(days))
	for i := range days {
		responses = append(responses, *toCalendarDayResponse(&days[i]))
	}
	return responses, nil
}

func toCalendarDayResponse(day *db.CalendarDay) *entities.CalendarDayResponse {
	return &entities.CalendarDayResponse{
		Date:           day.Date,
		Status:         day.Status,
		OpenTime:       day.OpenTime,
		CloseTime:      day.CloseTime,
		SessionsToSell: day.SessionsToSell,
	}
}
