package agenda

import (
	"context"
	"fmt"
	"time"

	"rooydad/src-app/jalali"
	"rooydad/src-app/model"

	"github.com/uptrace/bun"
)

// Week is the Saturday to Friday table of the week containing a given day.
type Week struct {
	Start time.Time
	Days  [7]WeekDay
}

type WeekDay struct {
	// Jalali weekday index, 0 = Saturday
	Index   int
	Name    string
	Date    time.Time
	Entries []Entry
}

type Entry struct {
	Event     model.Event
	Text      string
	Recurring bool
}

func (d WeekDay) Empty() bool {
	return len(d.Entries) == 0
}

// Rows lays the week out as table rows, one column per weekday; day i's
// entries stack down column i.
func (w Week) Rows() [][]string {
	height := 1
	for _, day := range w.Days {
		height = max(height, len(day.Entries))
	}
	rows := make([][]string, height)
	for r := range rows {
		rows[r] = make([]string, len(w.Days))
		for c, day := range w.Days {
			switch {
			case r < len(day.Entries):
				rows[r][c] = day.Entries[r].Text
			case r == 0:
				rows[r][c] = NoEventsLabel
			}
		}
	}
	return rows
}

// Weekly merges the recurring pattern with this week's one-off events. A
// recurring event shows on its weekday as long as its end date is not before
// that day.
func Weekly(ctx context.Context, db bun.IDB, now time.Time) (*Week, error) {
	start := jalali.WeekStart(now)
	end := start.AddDate(0, 0, 6)

	recurring, err := model.ListRecurringActive(ctx, db, start.Format(jalali.GregorianLayout))
	if err != nil {
		return nil, fmt.Errorf("Weekly: %w", err)
	}
	oneOffs, err := model.ListOneOffBetween(ctx, db,
		start.Format(jalali.GregorianLayout),
		end.Format(jalali.GregorianLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("Weekly: %w", err)
	}

	week := &Week{Start: start}
	for i := range week.Days {
		date := start.AddDate(0, 0, i)
		dateStr := date.Format(jalali.GregorianLayout)
		day := WeekDay{
			Index:   i,
			Name:    jalali.WeekdayName(i),
			Date:    date,
			Entries: make([]Entry, 0),
		}
		for _, e := range recurring {
			if e.RecurringDay != i || (e.EndDate != "" && e.EndDate < dateStr) {
				continue
			}
			day.Entries = append(day.Entries, Entry{Event: e, Text: entryText(&e), Recurring: true})
		}
		for _, e := range oneOffs {
			if e.Date != dateStr {
				continue
			}
			day.Entries = append(day.Entries, Entry{Event: e, Text: entryText(&e)})
		}
		week.Days[i] = day
	}
	return week, nil
}

func entryText(e *model.Event) string {
	return fmt.Sprintf("%s (%s) - %s", e.Title, e.EventType, TimeText(e))
}
