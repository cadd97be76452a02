// Package ics converts events to and from iCalendar feeds.
package ics

import (
	"fmt"
	"io"
	"strings"
	"time"

	"rooydad/src-app/agenda"
	"rooydad/src-app/jalali"
	"rooydad/src-app/model"

	ical "github.com/arran4/golang-ical"
	"github.com/xyedo/rrule"
)

const (
	ProductID    = "-//rooydad//Jalali Event Scheduler//FA"
	CalendarName = "رویدادها"
	// length of a timed event, the table only stores a start
	DefaultDuration = time.Hour
)

// Export writes events as a VCALENDAR. Dates are read in loc. A recurring
// event starts at its first occurrence in the week it was created in (the
// week of now when unknown).
func Export(w io.Writer, events []model.Event, loc *time.Location, now time.Time) error {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(ProductID)
	cal.SetXWRCalName(CalendarName)
	cal.SetXWRTimezone(loc.String())

	for i := range events {
		if err := addEvent(cal, &events[i], loc, now); err != nil {
			return fmt.Errorf("Export: %w", err)
		}
	}

	if err := cal.SerializeTo(w); err != nil {
		return fmt.Errorf("Export: %w", err)
	}
	return nil
}

func addEvent(cal *ical.Calendar, e *model.Event, loc *time.Location, now time.Time) error {
	start, err := firstOccurrence(e, loc, now)
	if err != nil {
		return err
	}

	ve := cal.AddEvent(e.UID)
	ve.SetSummary(e.Title)
	if e.Description != "" {
		ve.SetDescription(e.Description)
	}
	ve.SetProperty(ical.ComponentPropertyCategories, e.EventType)
	ve.SetDtStampTime(now)
	if e.CreatedAt > 0 {
		ve.SetCreatedTime(time.Unix(e.CreatedAt, 0))
	}
	if e.UpdatedAt > 0 {
		ve.SetModifiedAt(time.Unix(e.UpdatedAt, 0))
	}

	if start.Timed {
		ve.SetStartAt(start.Start)
		ve.SetEndAt(start.Start.Add(DefaultDuration))
	} else {
		ve.SetAllDayStartAt(start.Day)
		ve.SetAllDayEndAt(start.Day.AddDate(0, 0, 1))
	}

	if e.IsRecurring {
		rule, err := agenda.WeeklyRule(e, start.Start)
		if err != nil {
			return err
		}
		ve.AddRrule(rruleValue(rule, start.Timed))
	}
	return nil
}

// firstOccurrence is the occurrence DTSTART points at.
func firstOccurrence(e *model.Event, loc *time.Location, now time.Time) (agenda.Occurrence, error) {
	anchor := now.In(loc)
	if e.CreatedAt > 0 {
		anchor = time.Unix(e.CreatedAt, 0).In(loc)
	}
	from := jalali.WeekStart(anchor)
	if !e.IsRecurring {
		day, err := time.ParseInLocation(jalali.GregorianLayout, e.Date, loc)
		if err != nil {
			return agenda.Occurrence{}, fmt.Errorf("event %d: %w", e.ID, err)
		}
		from = day
	}

	occs, err := agenda.Occurrences(eventWithoutEnd(e), from, from.AddDate(0, 0, 7))
	if err != nil {
		return agenda.Occurrence{}, err
	}
	if len(occs) == 0 {
		return agenda.Occurrence{}, fmt.Errorf("event %d: no occurrence to start from", e.ID)
	}
	return occs[0], nil
}

// an event that ended before its anchor week still needs a DTSTART
func eventWithoutEnd(e *model.Event) *model.Event {
	if e.EndDate == "" {
		return e
	}
	clone := *e
	clone.EndDate = ""
	return &clone
}

// rruleValue is the RRULE property value of a weekly rule. An all-day
// event's UNTIL is a plain date.
func rruleValue(rule *rrule.RRule, timed bool) string {
	option := rule.OrigOptions
	value := option.RRuleString()
	if timed || option.Until.IsZero() {
		return value
	}
	parts := strings.Split(value, ";")
	for i, part := range parts {
		if strings.HasPrefix(part, "UNTIL=") {
			parts[i] = "UNTIL=" + option.Until.Format("20060102")
		}
	}
	return strings.Join(parts, ";")
}
