// Package handler validates what the user typed and applies it to the
// events table.
package handler

import (
	"fmt"
	"time"

	"rooydad/src-app/jalali"
	"rooydad/src-app/model"
	"rooydad/src-app/utils"
)

// Input holds the raw form fields. Dates are Jalali YYYY-MM-DD, Weekday is a
// weekday name or index.
type Input struct {
	Title       string
	EventType   string
	Date        string
	Time        string
	Description string
	IsRecurring bool
	Weekday     string
	EndDate     string
}

func (in Input) cleanup() Input {
	in.Title = utils.CleanupString(in.Title)
	in.EventType = utils.CleanupString(in.EventType)
	in.Date = utils.NormalizeDigits(utils.CleanupString(in.Date))
	in.Time = utils.NormalizeDigits(utils.CleanupString(in.Time))
	in.Description = utils.CleanupText(in.Description)
	in.Weekday = utils.NormalizeDigits(utils.CleanupString(in.Weekday))
	in.EndDate = utils.NormalizeDigits(utils.CleanupString(in.EndDate))
	return in
}

// Event validates the input in form order and converts it into a row.
// Fields that don't apply (date of a recurring event, end date of a one-off
// one) are dropped.
func (in Input) Event() (*model.Event, error) {
	in = in.cleanup()

	// #region - title and type
	if in.Title == "" {
		return nil, ErrMissingTitle
	}
	if in.EventType == "" {
		return nil, ErrMissingType
	}
	// #endregion

	e := &model.Event{
		Title:        in.Title,
		EventType:    in.EventType,
		Description:  in.Description,
		IsRecurring:  in.IsRecurring,
		RecurringDay: model.NoRecurringDay,
	}

	// #region - schedule
	if in.IsRecurring {
		day, ok := jalali.WeekdayIndex(in.Weekday)
		if !ok {
			return nil, ErrMissingWeekday
		}
		e.RecurringDay = day
		if in.EndDate != "" {
			endDate, err := jalali.ToGregorian(in.EndDate)
			if err != nil {
				return nil, fmt.Errorf("%w: %w", ErrInvalidEndDate, err)
			}
			e.EndDate = endDate
		}
	} else {
		if in.Date == "" {
			return nil, ErrInvalidDate
		}
		date, err := jalali.ToGregorian(in.Date)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidDate, err)
		}
		e.Date = date
	}
	// #endregion

	if !jalali.ValidTime(in.Time) {
		return nil, ErrInvalidTime
	}
	e.Time = in.Time

	return e, nil
}

// InputFromEvent fills an edit form from a stored row.
func InputFromEvent(e *model.Event) Input {
	in := Input{
		Title:       e.Title,
		EventType:   e.EventType,
		Time:        e.Time,
		Description: e.Description,
		IsRecurring: e.IsRecurring,
	}
	if e.IsRecurring {
		in.Weekday = jalali.WeekdayName(e.RecurringDay)
		if e.EndDate != "" {
			if endDate, err := jalali.FromGregorian(e.EndDate); err == nil {
				in.EndDate = endDate
			}
		}
		return in
	}
	if date, err := time.Parse(jalali.GregorianLayout, e.Date); err == nil {
		in.Date = jalali.Format(date)
	}
	return in
}
