package favorite

import (
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/eventdeck/eventdeck/pkg/event"
	log "github.com/sirupsen/logrus"
)

const (
	dateLayout      = "2006-01-02"
	timeLayout      = "15:04"
	defaultDuration = time.Hour
)

// RenderCalendar builds an iCalendar feed of events. Events without a parseable date are left
// out; events without a parseable time become all-day entries.
func RenderCalendar(events []event.Event, loc *time.Location, stamp time.Time) string {
	if loc == nil {
		loc = time.UTC
	}
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//eventdeck//favorites//EN")
	cal.SetXWRCalName("Favorite events")

	for _, e := range events {
		day, err := time.ParseInLocation(dateLayout, e.Date, loc)
		if err != nil {
			log.Tracef("skipping event %s without parseable date %q", e.Id, e.Date)
			continue
		}
		ve := cal.AddEvent(e.Id + "@eventdeck")
		ve.SetDtStampTime(stamp)
		ve.SetSummary(e.EventName)
		ve.SetDescription(e.Description)
		ve.SetLocation(e.Location)

		clock, err := time.Parse(timeLayout, e.Time)
		if err != nil {
			ve.SetAllDayStartAt(day)
			ve.SetAllDayEndAt(day.AddDate(0, 0, 1))
			continue
		}
		start := time.Date(day.Year(), day.Month(), day.Day(), clock.Hour(), clock.Minute(), 0, 0, loc)
		ve.SetStartAt(start)
		ve.SetEndAt(start.Add(defaultDuration))
	}
	return cal.Serialize()
}
