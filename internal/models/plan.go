package models

import "time"

// DateTimeLayout is the wire format for plan date-times (yyyy-MM-ddTHH:mm).
const DateTimeLayout = "2006-01-02T15:04"

// DateLayout is the wire format for calendar days (yyyy-MM-dd).
const DateLayout = "2006-01-02"

// Plan is a row of the plans table.
type Plan struct {
	ID           int64
	UserID       int64
	Title        string
	Memo         *string
	DateTime     time.Time
	ArrivalTime  *string
	AlcoholLevel *int
	SojuAmount   *int
	BeerAmount   *int
	CreatedAt    time.Time
}

// CalendarDTO is the request/response shape for a single plan.
type CalendarDTO struct {
	PlanID       int64   `json:"planId"`
	Title        *string `json:"title"`
	Memo         *string `json:"memo"`
	Date         string  `json:"date"`
	ArrivalTime  *string `json:"arrivalTime"`
	AlcoholLevel *int    `json:"alcoholLevel"`
	SojuAmount   *int    `json:"sojuAmount"`
	BeerAmount   *int    `json:"beerAmount"`
}

// ToDTO converts a plan row for the wire.
func (p *Plan) ToDTO() CalendarDTO {
	title := p.Title
	return CalendarDTO{
		PlanID:       p.ID,
		Title:        &title,
		Memo:         p.Memo,
		Date:         p.DateTime.Format(DateTimeLayout),
		ArrivalTime:  p.ArrivalTime,
		AlcoholLevel: p.AlcoholLevel,
		SojuAmount:   p.SojuAmount,
		BeerAmount:   p.BeerAmount,
	}
}

// DiaryDTO is the compact monthly-view entry.
type DiaryDTO struct {
	PlanID       int64  `json:"planId"`
	Title        string `json:"title"`
	DateTime     string `json:"datetime"`
	AlcoholLevel *int   `json:"alcoholLevel"`
}

// PlanDetailDTO is a plan together with the games played during it.
type PlanDetailDTO struct {
	CalendarDTO
	GameLogs []GameLogDTO `json:"gameLogs"`
}

// CalendarStatisticDTO summarizes the month (and year) around a given day.
type CalendarStatisticDTO struct {
	Year               int     `json:"year"`
	Month              int     `json:"month"`
	MonthPlanCount     int     `json:"monthPlanCount"`
	MonthDrinkingCount int     `json:"monthDrinkingCount"`
	LastMonthPlanCount int     `json:"lastMonthPlanCount"`
	AlcoholLevelCounts [4]int  `json:"alcoholLevelCounts"`
	MonthSojuAmount    int     `json:"monthSojuAmount"`
	MonthBeerAmount    int     `json:"monthBeerAmount"`
	YearPlanCount      int     `json:"yearPlanCount"`
	YearDrinkingCount  int     `json:"yearDrinkingCount"`
	MonthDrinkingRatio float64 `json:"monthDrinkingRatio"`
}

// PlanStatRow is the minimal projection the statistics are computed from.
type PlanStatRow struct {
	DateTime     time.Time
	AlcoholLevel *int
	SojuAmount   *int
	BeerAmount   *int
}
