package service

import (
	"bytes"
	"context"
	"time"

	"github.com/yourorg/imnotdurnk/internal/apperror"
	"github.com/yourorg/imnotdurnk/internal/exporter"
	"github.com/yourorg/imnotdurnk/internal/models"
	"github.com/yourorg/imnotdurnk/internal/validation"
)

const maxAlcoholLevel = 3

// PlanStore is the persistence the calendar needs.
type PlanStore interface {
	Create(ctx context.Context, p *models.Plan) (int64, error)
	ListBetween(ctx context.Context, userID int64, from, to time.Time) ([]models.Plan, error)
	FindByIDAndUser(ctx context.Context, id, userID int64) (*models.Plan, error)
	FindLatestBetween(ctx context.Context, userID int64, from, to time.Time) (*models.Plan, error)
	UpdateFeedback(ctx context.Context, p *models.Plan) error
	UpdateArrivalTime(ctx context.Context, id, userID int64, arrival string) error
	Delete(ctx context.Context, id, userID int64) (bool, error)
	StatRows(ctx context.Context, userID int64, from, to time.Time) ([]models.PlanStatRow, error)
}

// GameLogLister lists the games played during a plan.
type GameLogLister interface {
	ListByPlan(ctx context.Context, planID int64) ([]models.GameLogDTO, error)
}

type CalendarService struct {
	plans    PlanStore
	gameLogs GameLogLister
	auth     TokenResolver
}

func NewCalendarService(plans PlanStore, gameLogs GameLogLister, auth TokenResolver) *CalendarService {
	return &CalendarService{plans: plans, gameLogs: gameLogs, auth: auth}
}

// GetDiary lists the month's plans in their compact form.
func (s *CalendarService) GetDiary(ctx context.Context, token string, year, month int) ([]models.DiaryDTO, error) {
	userID, err := s.auth.UserID(token)
	if err != nil {
		return nil, err
	}
	from, to, err := monthRange(year, month)
	if err != nil {
		return nil, err
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()
	plans, err := s.plans.ListBetween(ctx, userID, from, to)
	if err != nil {
		return nil, internal("failed to load diary", err)
	}

	out := make([]models.DiaryDTO, 0, len(plans))
	for _, p := range plans {
		out = append(out, models.DiaryDTO{
			PlanID:       p.ID,
			Title:        p.Title,
			DateTime:     p.DateTime.Format(models.DateTimeLayout),
			AlcoholLevel: p.AlcoholLevel,
		})
	}
	return out, nil
}

// AddCalendar validates and stores a new plan.
func (s *CalendarService) AddCalendar(ctx context.Context, token string, dto models.CalendarDTO) (*models.CalendarDTO, error) {
	userID, err := s.auth.UserID(token)
	if err != nil {
		return nil, err
	}
	if !validation.CheckTitle(dto.Title) {
		return nil, apperror.BadRequest("title is required and must be at most 30 characters")
	}
	if !validation.CheckMemo(dto.Memo) {
		return nil, apperror.BadRequest("memo must be at most 200 characters")
	}
	at, err := parseDateTime(dto.Date)
	if err != nil {
		return nil, err
	}
	if err := checkFeedback(dto); err != nil {
		return nil, err
	}

	plan := &models.Plan{
		UserID:       userID,
		Title:        *dto.Title,
		Memo:         dto.Memo,
		DateTime:     at,
		ArrivalTime:  dto.ArrivalTime,
		AlcoholLevel: dto.AlcoholLevel,
		SojuAmount:   dto.SojuAmount,
		BeerAmount:   dto.BeerAmount,
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()
	id, err := s.plans.Create(ctx, plan)
	if err != nil {
		return nil, internal("failed to save plan", err)
	}
	plan.ID = id

	out := plan.ToDTO()
	return &out, nil
}

// UpdateFeedback records how the plan went: alcohol level, amounts and
// optionally memo and arrival time.
func (s *CalendarService) UpdateFeedback(ctx context.Context, token string, planID int64, dto models.CalendarDTO) (*models.CalendarDTO, error) {
	userID, err := s.auth.UserID(token)
	if err != nil {
		return nil, err
	}
	if dto.AlcoholLevel == nil {
		return nil, apperror.BadRequest("alcoholLevel is required")
	}
	if err := checkFeedback(dto); err != nil {
		return nil, err
	}
	if !validation.CheckMemo(dto.Memo) {
		return nil, apperror.BadRequest("memo must be at most 200 characters")
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()
	plan, err := s.plans.FindByIDAndUser(ctx, planID, userID)
	if err != nil {
		return nil, notFoundOr(err, "plan not found", "failed to load plan")
	}

	plan.AlcoholLevel = dto.AlcoholLevel
	plan.SojuAmount = dto.SojuAmount
	plan.BeerAmount = dto.BeerAmount
	if dto.Memo != nil {
		plan.Memo = dto.Memo
	}
	if dto.ArrivalTime != nil {
		plan.ArrivalTime = dto.ArrivalTime
	}
	if err := s.plans.UpdateFeedback(ctx, plan); err != nil {
		return nil, internal("failed to update plan", err)
	}

	out := plan.ToDTO()
	return &out, nil
}

// GetCalendar lists the plans of one day ("yyyy-MM-dd") ordered by time.
func (s *CalendarService) GetCalendar(ctx context.Context, token, date string) ([]models.CalendarDTO, error) {
	userID, err := s.auth.UserID(token)
	if err != nil {
		return nil, err
	}
	day, err := parseDate(date)
	if err != nil {
		return nil, err
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()
	plans, err := s.plans.ListBetween(ctx, userID, day, day.AddDate(0, 0, 1))
	if err != nil {
		return nil, internal("failed to load plans", err)
	}

	out := make([]models.CalendarDTO, 0, len(plans))
	for i := range plans {
		out = append(out, plans[i].ToDTO())
	}
	return out, nil
}

// GetCalendarStatistic summarizes the month containing date and its year.
func (s *CalendarService) GetCalendarStatistic(ctx context.Context, date, token string) (*models.CalendarStatisticDTO, error) {
	userID, err := s.auth.UserID(token)
	if err != nil {
		return nil, err
	}
	day, err := parseDate(date)
	if err != nil {
		return nil, err
	}

	monthStart := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)
	lastMonthStart := monthStart.AddDate(0, -1, 0)
	yearStart := time.Date(day.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	from := yearStart
	if lastMonthStart.Before(from) {
		from = lastMonthStart
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()
	rows, err := s.plans.StatRows(ctx, userID, from, yearStart.AddDate(1, 0, 0))
	if err != nil {
		return nil, internal("failed to compute statistics", err)
	}
	return computeStatistic(day, rows), nil
}

func computeStatistic(day time.Time, rows []models.PlanStatRow) *models.CalendarStatisticDTO {
	stat := &models.CalendarStatisticDTO{Year: day.Year(), Month: int(day.Month())}
	lastMonth := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)

	monthDrinkingDays := map[int]bool{}
	yearDrinkingDays := map[int]bool{}
	for _, r := range rows {
		drinking := r.AlcoholLevel != nil && *r.AlcoholLevel > 0
		sameYear := r.DateTime.Year() == day.Year()
		sameMonth := sameYear && r.DateTime.Month() == day.Month()

		if r.DateTime.Year() == lastMonth.Year() && r.DateTime.Month() == lastMonth.Month() {
			stat.LastMonthPlanCount++
		}
		if sameYear {
			stat.YearPlanCount++
			if drinking {
				yearDrinkingDays[r.DateTime.YearDay()] = true
			}
		}
		if !sameMonth {
			continue
		}
		stat.MonthPlanCount++
		if r.AlcoholLevel != nil && *r.AlcoholLevel >= 0 && *r.AlcoholLevel <= maxAlcoholLevel {
			stat.AlcoholLevelCounts[*r.AlcoholLevel]++
		}
		if drinking {
			monthDrinkingDays[r.DateTime.Day()] = true
		}
		if r.SojuAmount != nil {
			stat.MonthSojuAmount += *r.SojuAmount
		}
		if r.BeerAmount != nil {
			stat.MonthBeerAmount += *r.BeerAmount
		}
	}

	stat.MonthDrinkingCount = len(monthDrinkingDays)
	stat.YearDrinkingCount = len(yearDrinkingDays)
	daysInMonth := time.Date(day.Year(), day.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
	stat.MonthDrinkingRatio = float64(stat.MonthDrinkingCount) / float64(daysInMonth)
	return stat
}

// UpdateArrivalTime sets the "HH:mm" the user got home after the plan.
func (s *CalendarService) UpdateArrivalTime(ctx context.Context, token string, planID int64, arrival string) (*models.CalendarDTO, error) {
	userID, err := s.auth.UserID(token)
	if err != nil {
		return nil, err
	}
	if !validation.CheckTime(arrival) {
		return nil, apperror.BadRequest("arrival time must be HH:mm")
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()
	plan, err := s.plans.FindByIDAndUser(ctx, planID, userID)
	if err != nil {
		return nil, notFoundOr(err, "plan not found", "failed to load plan")
	}
	if err := s.plans.UpdateArrivalTime(ctx, planID, userID, arrival); err != nil {
		return nil, internal("failed to update arrival time", err)
	}
	plan.ArrivalTime = &arrival

	out := plan.ToDTO()
	return &out, nil
}

func (s *CalendarService) DeletePlan(ctx context.Context, token string, planID int64) error {
	userID, err := s.auth.UserID(token)
	if err != nil {
		return err
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()
	deleted, err := s.plans.Delete(ctx, planID, userID)
	if err != nil {
		return internal("failed to delete plan", err)
	}
	if !deleted {
		return apperror.NotFound("plan not found")
	}
	return nil
}

// GetPlanDetail returns the plan and the games played during it.
func (s *CalendarService) GetPlanDetail(ctx context.Context, token string, planID int64) (*models.PlanDetailDTO, error) {
	userID, err := s.auth.UserID(token)
	if err != nil {
		return nil, err
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()
	plan, err := s.plans.FindByIDAndUser(ctx, planID, userID)
	if err != nil {
		return nil, notFoundOr(err, "plan not found", "failed to load plan")
	}
	logs, err := s.gameLogs.ListByPlan(ctx, planID)
	if err != nil {
		return nil, internal("failed to load game logs", err)
	}
	return &models.PlanDetailDTO{CalendarDTO: plan.ToDTO(), GameLogs: logs}, nil
}

// ArrivedHome stamps the arrival on the latest plan that started within the
// 24 hours before datetime.
func (s *CalendarService) ArrivedHome(ctx context.Context, token, datetime string) (*models.CalendarDTO, error) {
	userID, err := s.auth.UserID(token)
	if err != nil {
		return nil, err
	}
	at, err := parseDateTime(datetime)
	if err != nil {
		return nil, err
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()
	plan, err := s.plans.FindLatestBetween(ctx, userID, at.Add(-24*time.Hour), at)
	if err != nil {
		return nil, notFoundOr(err, "no plan in the last 24 hours", "failed to load plan")
	}

	arrival := at.Format("15:04")
	if err := s.plans.UpdateArrivalTime(ctx, plan.ID, userID, arrival); err != nil {
		return nil, internal("failed to update arrival time", err)
	}
	plan.ArrivalTime = &arrival

	out := plan.ToDTO()
	return &out, nil
}

// ExportCalendar renders the month's plans as iCalendar text.
func (s *CalendarService) ExportCalendar(ctx context.Context, token string, year, month int) ([]byte, error) {
	userID, err := s.auth.UserID(token)
	if err != nil {
		return nil, err
	}
	from, to, err := monthRange(year, month)
	if err != nil {
		return nil, err
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()
	plans, err := s.plans.ListBetween(ctx, userID, from, to)
	if err != nil {
		return nil, internal("failed to load plans", err)
	}

	var buf bytes.Buffer
	if err := exporter.PlansICS(plans, &buf); err != nil {
		return nil, internal("failed to export calendar", err)
	}
	return buf.Bytes(), nil
}

func checkFeedback(dto models.CalendarDTO) error {
	if dto.AlcoholLevel != nil && (*dto.AlcoholLevel < 0 || *dto.AlcoholLevel > maxAlcoholLevel) {
		return apperror.BadRequest("alcoholLevel must be between 0 and 3")
	}
	if dto.SojuAmount != nil && *dto.SojuAmount < 0 {
		return apperror.BadRequest("sojuAmount must not be negative")
	}
	if dto.BeerAmount != nil && *dto.BeerAmount < 0 {
		return apperror.BadRequest("beerAmount must not be negative")
	}
	if dto.ArrivalTime != nil && !validation.CheckTime(*dto.ArrivalTime) {
		return apperror.BadRequest("arrival time must be HH:mm")
	}
	return nil
}

func monthRange(year, month int) (time.Time, time.Time, error) {
	if year < 1 || month < 1 || month > 12 {
		return time.Time{}, time.Time{}, apperror.BadRequest("invalid year or month")
	}
	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(0, 1, 0), nil
}

func parseDate(s string) (time.Time, error) {
	if !validation.CheckDate(s) {
		return time.Time{}, apperror.BadRequest("date must be yyyy-MM-dd")
	}
	t, err := time.Parse(models.DateLayout, s)
	if err != nil {
		return time.Time{}, apperror.BadRequest("date must be yyyy-MM-dd")
	}
	return t, nil
}

func parseDateTime(s string) (time.Time, error) {
	if !validation.CheckDateTime(s) {
		return time.Time{}, apperror.BadRequest("date must be yyyy-MM-ddTHH:mm")
	}
	t, err := time.Parse(models.DateTimeLayout, s)
	if err != nil {
		return time.Time{}, apperror.BadRequest("date must be yyyy-MM-ddTHH:mm")
	}
	return t, nil
}
