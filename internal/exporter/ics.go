package exporter

import (
	"fmt"
	"io"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/yourorg/imnotdurnk/internal/models"
)

const defaultPlanLength = time.Hour

// PlansICS writes the plans as an iCalendar feed. A plan ends at its recorded
// arrival time when that lies after the start, otherwise one hour later.
func PlansICS(plans []models.Plan, w io.Writer) error {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//imnotdurnk//calendar export//EN")

	now := time.Now()
	for _, p := range plans {
		start := p.DateTime
		end := planEnd(p)

		event := cal.AddEvent(fmt.Sprintf("plan-%d@imnotdurnk", p.ID))
		event.SetCreatedTime(now)
		event.SetDtStampTime(now)
		event.SetStartAt(start)
		event.SetEndAt(end)
		event.SetSummary(p.Title)
		if desc := planDescription(p); desc != "" {
			event.SetDescription(desc)
		}
	}

	return cal.SerializeTo(w)
}

func planEnd(p models.Plan) time.Time {
	if p.ArrivalTime != nil {
		if t, err := time.Parse("15:04", *p.ArrivalTime); err == nil {
			end := time.Date(p.DateTime.Year(), p.DateTime.Month(), p.DateTime.Day(),
				t.Hour(), t.Minute(), 0, 0, p.DateTime.Location())
			if !end.After(p.DateTime) {
				// arrived after midnight
				end = end.AddDate(0, 0, 1)
			}
			return end
		}
	}
	return p.DateTime.Add(defaultPlanLength)
}

func planDescription(p models.Plan) string {
	desc := ""
	if p.Memo != nil && *p.Memo != "" {
		desc = *p.Memo
	}
	if p.AlcoholLevel != nil {
		if desc != "" {
			desc += "\n"
		}
		desc += fmt.Sprintf("Alcohol level: %d", *p.AlcoholLevel)
	}
	return desc
}
