package handlers

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/yourorg/imnotdurnk/internal/models"
)

// CalendarService is what the calendar endpoints need from the service layer.
type CalendarService interface {
	GetDiary(ctx context.Context, token string, year, month int) ([]models.DiaryDTO, error)
	AddCalendar(ctx context.Context, token string, dto models.CalendarDTO) (*models.CalendarDTO, error)
	UpdateFeedback(ctx context.Context, token string, planID int64, dto models.CalendarDTO) (*models.CalendarDTO, error)
	GetCalendar(ctx context.Context, token, date string) ([]models.CalendarDTO, error)
	GetCalendarStatistic(ctx context.Context, date, token string) (*models.CalendarStatisticDTO, error)
	UpdateArrivalTime(ctx context.Context, token string, planID int64, arrival string) (*models.CalendarDTO, error)
	DeletePlan(ctx context.Context, token string, planID int64) error
	GetPlanDetail(ctx context.Context, token string, planID int64) (*models.PlanDetailDTO, error)
	ArrivedHome(ctx context.Context, token, datetime string) (*models.CalendarDTO, error)
	ExportCalendar(ctx context.Context, token string, year, month int) ([]byte, error)
}

type CalendarHandler struct {
	svc CalendarService
}

func NewCalendarHandler(svc CalendarService) *CalendarHandler {
	return &CalendarHandler{svc: svc}
}

// GetDiary handles GET /calendars?year&month.
func (h *CalendarHandler) GetDiary(c *fiber.Ctx) error {
	year, err := queryInt(c, "year")
	if err != nil {
		return err
	}
	month, err := queryInt(c, "month")
	if err != nil {
		return err
	}
	diary, err := h.svc.GetDiary(c.UserContext(), accessToken(c), year, month)
	if err != nil {
		return err
	}
	return list(c, "diary loaded", diary)
}

// AddCalendar handles POST /calendars.
func (h *CalendarHandler) AddCalendar(c *fiber.Ctx) error {
	var dto models.CalendarDTO
	if err := parseBody(c, &dto); err != nil {
		return err
	}
	plan, err := h.svc.AddCalendar(c.UserContext(), accessToken(c), dto)
	if err != nil {
		return err
	}
	return single(c, fiber.StatusCreated, "plan created", plan)
}

// UpdateFeedback handles PUT /calendars/plans/:planId.
func (h *CalendarHandler) UpdateFeedback(c *fiber.Ctx) error {
	planID, err := paramID(c, "planId")
	if err != nil {
		return err
	}
	var dto models.CalendarDTO
	if err := parseBody(c, &dto); err != nil {
		return err
	}
	plan, err := h.svc.UpdateFeedback(c.UserContext(), accessToken(c), planID, dto)
	if err != nil {
		return err
	}
	return single(c, fiber.StatusOK, "feedback saved", plan)
}

// GetCalendar handles GET /calendars/:date/plans.
func (h *CalendarHandler) GetCalendar(c *fiber.Ctx) error {
	plans, err := h.svc.GetCalendar(c.UserContext(), accessToken(c), c.Params("date"))
	if err != nil {
		return err
	}
	return list(c, "plans loaded", plans)
}

// GetCalendarStatistic handles GET /calendars/statistics?dateStr. The body
// is the statistics object itself, without the envelope.
func (h *CalendarHandler) GetCalendarStatistic(c *fiber.Ctx) error {
	stat, err := h.svc.GetCalendarStatistic(c.UserContext(), c.Query("dateStr"), accessToken(c))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(stat)
}

// UpdateArrivalTime handles GET /calendars/:planId?arrival-time. Older
// clients send this as a GET even though it writes.
func (h *CalendarHandler) UpdateArrivalTime(c *fiber.Ctx) error {
	planID, err := paramID(c, "planId")
	if err != nil {
		return err
	}
	plan, err := h.svc.UpdateArrivalTime(c.UserContext(), accessToken(c), planID, c.Query("arrival-time"))
	if err != nil {
		return err
	}
	return single(c, fiber.StatusOK, "arrival time updated", plan)
}

// DeletePlan handles DELETE /calendars/:planId.
func (h *CalendarHandler) DeletePlan(c *fiber.Ctx) error {
	planID, err := paramID(c, "planId")
	if err != nil {
		return err
	}
	if err := h.svc.DeletePlan(c.UserContext(), accessToken(c), planID); err != nil {
		return err
	}
	return ok(c, "plan deleted")
}

// GetPlanDetail handles GET /calendars/plans/:planId.
func (h *CalendarHandler) GetPlanDetail(c *fiber.Ctx) error {
	planID, err := paramID(c, "planId")
	if err != nil {
		return err
	}
	detail, err := h.svc.GetPlanDetail(c.UserContext(), accessToken(c), planID)
	if err != nil {
		return err
	}
	return single(c, fiber.StatusOK, "plan loaded", detail)
}

// ArrivedHome handles PUT /calendars/arrival/:datetimestr.
func (h *CalendarHandler) ArrivedHome(c *fiber.Ctx) error {
	plan, err := h.svc.ArrivedHome(c.UserContext(), accessToken(c), c.Params("datetimestr"))
	if err != nil {
		return err
	}
	return single(c, fiber.StatusOK, "arrival recorded", plan)
}

// ExportCalendar handles GET /calendars/export?year&month.
func (h *CalendarHandler) ExportCalendar(c *fiber.Ctx) error {
	year, err := queryInt(c, "year")
	if err != nil {
		return err
	}
	month, err := queryInt(c, "month")
	if err != nil {
		return err
	}
	data, err := h.svc.ExportCalendar(c.UserContext(), accessToken(c), year, month)
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, "text/calendar; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="plans-%04d-%02d.ics"`, year, month))
	return c.Status(fiber.StatusOK).Send(data)
}
