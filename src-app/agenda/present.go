package agenda

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"rooydad/src-app/jalali"
	"rooydad/src-app/model"
)

const (
	NoTimeLabel        = "بدون زمان"
	NoDescriptionLabel = "بدون توضیحات"
	NoEventsLabel      = "بدون رویداد"
	NoUpcomingMessage  = "No upcoming event found."
)

// Row is an event flattened for list views.
type Row struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Type        string `json:"type"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Description string `json:"description"`
}

// Cells renders the row on one line; multi-line descriptions are joined.
func (r Row) Cells() []string {
	description := strings.Join(strings.Fields(r.Description), " ")
	return []string{strconv.FormatInt(r.ID, 10), r.Title, r.Type, r.Date, r.Time, description}
}

var RowHeaders = []string{"ID", "Title", "Type", "Date (Jalali)", "Time", "Description"}

func Present(e *model.Event) Row {
	return Row{
		ID:          e.ID,
		Title:       e.Title,
		Type:        e.EventType,
		Date:        DateText(e),
		Time:        TimeText(e),
		Description: e.Description,
	}
}

func PresentAll(events []model.Event) []Row {
	rows := make([]Row, len(events))
	for i := range events {
		rows[i] = Present(&events[i])
	}
	return rows
}

// DateText is the Jalali date with its weekday, or "تکراری (weekday)" for a
// recurring event.
func DateText(e *model.Event) string {
	if e.IsRecurring {
		return fmt.Sprintf("تکراری (%s)", jalali.WeekdayName(e.RecurringDay))
	}
	if e.Date == "" {
		return ""
	}
	date, err := time.Parse(jalali.GregorianLayout, e.Date)
	if err != nil {
		return e.Date
	}
	return jalali.FormatWithWeekday(date)
}

func TimeText(e *model.Event) string {
	if e.Time == "" {
		return NoTimeLabel
	}
	return e.Time
}

// EndDateText is the Jalali end date of a recurring event, empty if unbounded.
func EndDateText(e *model.Event) string {
	if e.EndDate == "" {
		return ""
	}
	endDate, err := jalali.FromGregorian(e.EndDate)
	if err != nil {
		return e.EndDate
	}
	return endDate
}

// Describe renders an occurrence as the multi-line block shown for the
// nearest event.
func Describe(o *Occurrence) string {
	if o == nil {
		return NoUpcomingMessage
	}
	e := o.Event
	date := jalali.FormatWithWeekday(o.Day)
	if e.IsRecurring {
		date = fmt.Sprintf("%s - هر %s", date, jalali.WeekdayName(e.RecurringDay))
	}
	description := e.Description
	if description == "" {
		description = NoDescriptionLabel
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Title: %s\n", e.Title)
	fmt.Fprintf(&sb, "Type: %s\n", e.EventType)
	fmt.Fprintf(&sb, "Date: %s\n", date)
	fmt.Fprintf(&sb, "Time: %s\n", TimeText(e))
	fmt.Fprintf(&sb, "Description: %s", description)
	return sb.String()
}
