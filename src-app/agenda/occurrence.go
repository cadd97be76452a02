// Package agenda turns stored events into the views the user browses:
// the nearest event, upcoming events, future tasks and the weekly table.
package agenda

import (
	"fmt"
	"time"

	"rooydad/src-app/jalali"
	"rooydad/src-app/model"

	"github.com/xyedo/rrule"
)

// Occurrence is one concrete day an event happens on.
type Occurrence struct {
	Event *model.Event
	// midnight of the day
	Day time.Time
	// Day plus the event time; equal to Day when the event has no time
	Start time.Time
	Timed bool
}

// Before orders occurrences by start; an untimed occurrence precedes a timed
// one starting at midnight of the same day.
func (o Occurrence) Before(other Occurrence) bool {
	switch {
	case !o.Start.Equal(other.Start):
		return o.Start.Before(other.Start)
	case o.Timed != other.Timed:
		return !o.Timed
	default:
		return o.Event.ID < other.Event.ID
	}
}

// indexed by time.Weekday
var rruleWeekdays = []rrule.Weekday{rrule.SU, rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA}

// RRuleWeekday maps a Jalali weekday index to its rrule weekday.
func RRuleWeekday(i int) rrule.Weekday {
	return rruleWeekdays[jalali.GoWeekday(i)]
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func newOccurrence(e *model.Event, day time.Time) (Occurrence, error) {
	occ := Occurrence{Event: e, Day: day, Start: day}
	if e.Time == "" {
		return occ, nil
	}
	clock, err := time.Parse(jalali.TimeLayout, e.Time)
	if err != nil {
		return Occurrence{}, fmt.Errorf("newOccurrence: event %d: %w", e.ID, err)
	}
	occ.Start = time.Date(day.Year(), day.Month(), day.Day(), clock.Hour(), clock.Minute(), 0, 0, day.Location())
	occ.Timed = true
	return occ, nil
}

// WeeklyRule builds the recurrence rule of a recurring event starting at dtstart.
func WeeklyRule(e *model.Event, dtstart time.Time) (*rrule.RRule, error) {
	if !e.IsRecurring {
		return nil, fmt.Errorf("WeeklyRule: event %d is not recurring", e.ID)
	}
	option := rrule.ROption{
		Freq:      rrule.WEEKLY,
		Dtstart:   dtstart,
		Byweekday: []rrule.Weekday{RRuleWeekday(e.RecurringDay)},
	}
	if e.EndDate != "" {
		endDate, err := time.ParseInLocation(jalali.GregorianLayout, e.EndDate, dtstart.Location())
		if err != nil {
			return nil, fmt.Errorf("WeeklyRule: event %d: %w", e.ID, err)
		}
		// the end date itself is still included
		option.Until = endDate.Add(24*time.Hour - time.Second)
	}
	rule, err := rrule.NewRRule(option)
	if err != nil {
		return nil, fmt.Errorf("WeeklyRule: event %d: %w", e.ID, err)
	}
	return rule, nil
}

// Occurrences lists the days within [from, to) on which e happens, from and
// to being midnights in the display location.
func Occurrences(e *model.Event, from, to time.Time) ([]Occurrence, error) {
	from, to = midnight(from), midnight(to)
	out := make([]Occurrence, 0)

	if !e.IsRecurring {
		day, err := time.ParseInLocation(jalali.GregorianLayout, e.Date, from.Location())
		if err != nil {
			return nil, fmt.Errorf("Occurrences: event %d: %w", e.ID, err)
		}
		if day.Before(from) || !day.Before(to) {
			return out, nil
		}
		occ, err := newOccurrence(e, day)
		if err != nil {
			return nil, err
		}
		return append(out, occ), nil
	}

	rule, err := WeeklyRule(e, from)
	if err != nil {
		return nil, err
	}
	for _, day := range rule.Between(from, to, true) {
		day = midnight(day)
		if !day.Before(to) {
			continue
		}
		occ, err := newOccurrence(e, day)
		if err != nil {
			return nil, err
		}
		out = append(out, occ)
	}
	return out, nil
}
