package ics

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"rooydad/src-app/agenda"
	"rooydad/src-app/jalali"
	"rooydad/src-app/model"
	"rooydad/src-app/utils"

	ical "github.com/arran4/golang-ical"
	"github.com/uptrace/bun"
	"github.com/xyedo/rrule"
)

var (
	ErrUnsupportedRule = errors.New("only weekly rules on a single weekday are supported")
	ErrOccurrenceEdit  = errors.New("edits of a single occurrence are not supported")
)

// Parse reads the VEVENTs of a feed. Events that can't be represented are
// logged and skipped; their count is returned.
func Parse(r io.Reader, loc *time.Location, defaultType string) ([]model.Event, int, error) {
	cal, err := ical.ParseCalendar(r)
	if err != nil {
		return nil, 0, fmt.Errorf("Parse: %w", err)
	}

	events := make([]model.Event, 0)
	skipped := 0
	for _, ve := range cal.Events() {
		e, err := parseVEvent(ve, loc, defaultType)
		if err != nil {
			slog.Warn("skipping vevent", "uid", ve.Id(), "error", err)
			skipped++
			continue
		}
		events = append(events, *e)
	}
	return events, skipped, nil
}

func parseVEvent(ve *ical.VEvent, loc *time.Location, defaultType string) (*model.Event, error) {
	if ve.GetProperty(ical.ComponentPropertyRecurrenceId) != nil {
		return nil, ErrOccurrenceEdit
	}

	e := &model.Event{
		UID:          ve.Id(),
		RecurringDay: model.NoRecurringDay,
		EventType:    defaultType,
	}

	// #region - text fields, unescaped by the parser
	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		e.Title = utils.CleanupString(p.Value)
	}
	if e.Title == "" {
		return nil, errors.New("missing SUMMARY")
	}
	if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
		e.Description = utils.CleanupText(p.Value)
	}
	if p := ve.GetProperty(ical.ComponentPropertyCategories); p != nil {
		if category := utils.CleanupString(strings.Split(p.Value, ",")[0]); category != "" {
			e.EventType = category
		}
	}
	// #endregion

	// #region - start
	start, allDay, err := startOf(ve, loc)
	if err != nil {
		return nil, err
	}
	if !allDay {
		e.Time = start.Format(jalali.TimeLayout)
	}
	// #endregion

	// #region - recurrence
	p := ve.GetProperty(ical.ComponentPropertyRrule)
	if p == nil {
		e.Date = start.Format(jalali.GregorianLayout)
		return e, nil
	}
	option, err := rrule.StrToROption(p.Value)
	if err != nil {
		return nil, fmt.Errorf("RRULE %q: %w", p.Value, err)
	}
	if option.Freq != rrule.WEEKLY || option.Interval > 1 || len(option.Byweekday) > 1 || option.Count > 0 {
		return nil, fmt.Errorf("RRULE %q: %w", p.Value, ErrUnsupportedRule)
	}
	e.IsRecurring = true
	e.RecurringDay = jalali.Weekday(start)
	if len(option.Byweekday) == 1 {
		day, ok := weekdayIndex(option.Byweekday[0])
		if !ok {
			return nil, fmt.Errorf("RRULE %q: %w", p.Value, ErrUnsupportedRule)
		}
		e.RecurringDay = day
	}
	if !option.Until.IsZero() {
		e.EndDate = option.Until.In(loc).Format(jalali.GregorianLayout)
		if allDay {
			// a date-only UNTIL is parsed as UTC midnight
			e.EndDate = option.Until.Format(jalali.GregorianLayout)
		}
	}
	// #endregion

	return e, nil
}

// startOf reads DTSTART in loc and reports whether it is a date.
func startOf(ve *ical.VEvent, loc *time.Location) (time.Time, bool, error) {
	p := ve.GetProperty(ical.ComponentPropertyDtStart)
	if p == nil {
		return time.Time{}, false, errors.New("missing DTSTART")
	}
	allDay := !strings.Contains(p.Value, "T")
	if values, ok := p.ICalParameters["VALUE"]; ok && len(values) > 0 && strings.EqualFold(values[0], "DATE") {
		allDay = true
	}

	if allDay {
		day, err := time.ParseInLocation("20060102", strings.TrimSpace(p.Value), loc)
		if err != nil {
			return time.Time{}, false, fmt.Errorf("DTSTART %q: %w", p.Value, err)
		}
		return day, true, nil
	}
	start, err := ve.GetStartAt()
	if err != nil {
		return time.Time{}, false, fmt.Errorf("DTSTART %q: %w", p.Value, err)
	}
	return start.In(loc), false, nil
}

func weekdayIndex(w rrule.Weekday) (int, bool) {
	for i := range jalali.Weekdays() {
		if agenda.RRuleWeekday(i) == w {
			return i, true
		}
	}
	return 0, false
}

// Save inserts the parsed events, updating rows that share a UID, in one
// transaction.
func Save(ctx context.Context, db *bun.DB, events []model.Event) (created, updated int, err error) {
	err = db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for i := range events {
			isNew, err := events[i].Upsert(ctx, tx)
			if err != nil {
				return fmt.Errorf("%q: %w", events[i].Title, err)
			}
			if isNew {
				created++
			} else {
				updated++
			}
		}
		return nil
	})
	if err != nil {
		return 0, 0, fmt.Errorf("Save: %w", err)
	}
	return created, updated, nil
}
