package agenda_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"rooydad/src-app/agenda"
	"rooydad/src-app/jalali"
	"rooydad/src-app/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// Wednesday 1403-01-01, jalali weekday 4
var now = time.Date(2024, 3, 20, 10, 0, 0, 0, time.UTC)

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()
	rawDB, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	rawDB.SetMaxOpenConns(1)
	bundb := bun.NewDB(rawDB, sqlitedialect.New())
	t.Cleanup(func() { bundb.Close() })
	require.NoError(t, model.CreateSchema(context.Background(), bundb))
	return bundb
}

func insert(t *testing.T, db bun.IDB, e *model.Event) *model.Event {
	t.Helper()
	if e.EventType == "" {
		e.EventType = "سایر"
	}
	require.NoError(t, e.Insert(context.Background(), db))
	return e
}

func oneOff(title, date, clock string) *model.Event {
	return &model.Event{Title: title, Date: date, Time: clock, RecurringDay: model.NoRecurringDay}
}

func weekly(title string, day int, clock, endDate string) *model.Event {
	return &model.Event{Title: title, Time: clock, IsRecurring: true, RecurringDay: day, EndDate: endDate}
}

func TestOccurrences(t *testing.T) {
	from := now
	to := now.AddDate(0, 0, 14)

	// case: saturdays in the next two weeks
	occs, err := agenda.Occurrences(weekly("class", 0, "08:30", ""), from, to)
	require.NoError(t, err)
	require.Len(t, occs, 2)
	assert.Equal(t, time.Date(2024, 3, 23, 0, 0, 0, 0, time.UTC), occs[0].Day)
	assert.Equal(t, time.Date(2024, 3, 23, 8, 30, 0, 0, time.UTC), occs[0].Start)
	assert.True(t, occs[0].Timed)
	assert.Equal(t, time.Date(2024, 3, 30, 0, 0, 0, 0, time.UTC), occs[1].Day)

	// case: end date is inclusive
	occs, err = agenda.Occurrences(weekly("class", 0, "", "2024-03-23"), from, to)
	require.NoError(t, err)
	require.Len(t, occs, 1)
	assert.False(t, occs[0].Timed)
	assert.Equal(t, occs[0].Day, occs[0].Start)

	// case: ended before the range
	occs, err = agenda.Occurrences(weekly("class", 0, "", "2024-03-19"), from, to)
	require.NoError(t, err)
	assert.Empty(t, occs)

	// case: today's weekday is part of the range
	occs, err = agenda.Occurrences(weekly("class", 4, "", ""), from, to)
	require.NoError(t, err)
	require.Len(t, occs, 2)
	assert.Equal(t, time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC), occs[0].Day)

	// case: one-off inside and outside the range
	occs, err = agenda.Occurrences(oneOff("exam", "2024-03-21", "09:00"), from, to)
	require.NoError(t, err)
	require.Len(t, occs, 1)
	assert.Equal(t, time.Date(2024, 3, 21, 9, 0, 0, 0, time.UTC), occs[0].Start)
	occs, err = agenda.Occurrences(oneOff("exam", "2024-04-03", "09:00"), from, to)
	require.NoError(t, err)
	assert.Empty(t, occs)
}

func TestNearest(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	// case: nothing stored
	occ, err := agenda.Nearest(ctx, db, now)
	require.NoError(t, err)
	assert.Nil(t, occ)

	insert(t, db, oneOff("yesterday", "2024-03-19", "12:00"))
	insert(t, db, oneOff("this morning", "2024-03-20", "09:00"))
	untimed := insert(t, db, oneOff("today task", "2024-03-20", ""))
	insert(t, db, oneOff("tomorrow exam", "2024-03-21", "07:00"))
	insert(t, db, weekly("thursday class", 5, "08:00", ""))

	// case: today's untimed task is still ahead
	occ, err = agenda.Nearest(ctx, db, now)
	require.NoError(t, err)
	require.NotNil(t, occ)
	assert.Equal(t, "today task", occ.Event.Title)

	// case: the earlier of a one-off and a recurring occurrence wins
	require.NoError(t, model.DeleteEventByID(ctx, db, untimed.ID))
	occ, err = agenda.Nearest(ctx, db, now)
	require.NoError(t, err)
	require.NotNil(t, occ)
	assert.Equal(t, "tomorrow exam", occ.Event.Title)

	insert(t, db, weekly("early thursday", 5, "06:00", ""))
	occ, err = agenda.Nearest(ctx, db, now)
	require.NoError(t, err)
	require.NotNil(t, occ)
	assert.Equal(t, "early thursday", occ.Event.Title)
	assert.Equal(t, time.Date(2024, 3, 21, 6, 0, 0, 0, time.UTC), occ.Start)
}

func TestNearestRecurringToday(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	insert(t, db, weekly("wednesday seminar", 4, "11:00", ""))

	occ, err := agenda.Nearest(ctx, db, now)
	require.NoError(t, err)
	require.NotNil(t, occ)
	assert.Equal(t, time.Date(2024, 3, 20, 11, 0, 0, 0, time.UTC), occ.Start)

	// case: already started today, so next week
	occ, err = agenda.Nearest(ctx, db, now.Add(2*time.Hour))
	require.NoError(t, err)
	require.NotNil(t, occ)
	assert.Equal(t, time.Date(2024, 3, 27, 11, 0, 0, 0, time.UTC), occ.Start)

	// case: ended
	db2 := newTestDB(t)
	insert(t, db2, weekly("finished", 4, "11:00", "2024-03-19"))
	occ, err = agenda.Nearest(ctx, db2, now)
	require.NoError(t, err)
	assert.Nil(t, occ)
}

func TestNearestFrom(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	insert(t, db, oneOff("early", "2024-03-25", "06:00"))
	insert(t, db, oneOff("later", "2024-03-26", "06:00"))
	insert(t, db, weekly("sunday", 1, "05:00", ""))

	from, err := jalali.Parse("1403-01-06", time.UTC) // 2024-03-25, a Monday
	require.NoError(t, err)
	occ, err := agenda.NearestFrom(ctx, db, from)
	require.NoError(t, err)
	require.NotNil(t, occ)
	assert.Equal(t, "early", occ.Event.Title)

	occ, err = agenda.NearestFrom(ctx, db, time.Date(2024, 3, 24, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.NotNil(t, occ)
	assert.Equal(t, "sunday", occ.Event.Title)
}

func TestUpcoming(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	insert(t, db, oneOff("past", "2024-03-19", "12:00"))
	insert(t, db, oneOff("this morning", "2024-03-20", "09:00"))
	insert(t, db, oneOff("now", "2024-03-20", "10:00"))
	insert(t, db, oneOff("today task", "2024-03-20", ""))
	insert(t, db, oneOff("friday", "2024-03-22", "18:00"))
	insert(t, db, weekly("ended class", 1, "", "2024-03-01"))
	insert(t, db, weekly("monday class", 2, "", ""))
	insert(t, db, weekly("saturday class", 0, "", ""))

	events, err := agenda.Upcoming(ctx, db, now)
	require.NoError(t, err)
	titles := make([]string, 0, len(events))
	for _, e := range events {
		titles = append(titles, e.Title)
	}
	assert.Equal(t, []string{"today task", "now", "friday", "saturday class", "monday class"}, titles)
}

func TestFutureTasks(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	insert(t, db, oneOff("old task", "2024-03-19", ""))
	insert(t, db, oneOff("timed", "2024-03-21", "09:00"))
	insert(t, db, oneOff("later task", "2024-04-01", ""))
	insert(t, db, oneOff("today task", "2024-03-20", ""))
	insert(t, db, weekly("recurring untimed", 3, "", ""))

	events, err := agenda.FutureTasks(ctx, db, now)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "today task", events[0].Title)
	assert.Equal(t, "later task", events[1].Title)
}

func TestWeekly(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	insert(t, db, weekly("saturday class", 0, "08:00", ""))
	insert(t, db, weekly("monday lab", 2, "", "2024-03-17")) // ended before monday 03-18
	insert(t, db, weekly("sunday gym", 1, "19:00", "2024-03-17"))
	insert(t, db, oneOff("exam", "2024-03-20", "09:00"))
	insert(t, db, oneOff("trip", "2024-03-22", ""))
	insert(t, db, oneOff("next week", "2024-03-23", "09:00"))

	week, err := agenda.Weekly(ctx, db, now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 16, 0, 0, 0, 0, time.UTC), week.Start)

	for i, day := range week.Days {
		assert.Equal(t, i, day.Index)
		assert.Equal(t, jalali.WeekdayName(i), day.Name)
		assert.Equal(t, week.Start.AddDate(0, 0, i), day.Date)
	}

	require.Len(t, week.Days[0].Entries, 1)
	assert.Equal(t, "saturday class (سایر) - 08:00", week.Days[0].Entries[0].Text)
	assert.True(t, week.Days[0].Entries[0].Recurring)

	require.Len(t, week.Days[1].Entries, 1)
	assert.Equal(t, "sunday gym", week.Days[1].Entries[0].Event.Title)
	assert.True(t, week.Days[2].Empty())
	assert.True(t, week.Days[3].Empty())

	require.Len(t, week.Days[4].Entries, 1)
	assert.Equal(t, "exam (سایر) - 09:00", week.Days[4].Entries[0].Text)
	assert.False(t, week.Days[4].Entries[0].Recurring)

	require.Len(t, week.Days[6].Entries, 1)
	assert.Equal(t, "trip (سایر) - "+agenda.NoTimeLabel, week.Days[6].Entries[0].Text)

	rows := week.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, agenda.NoEventsLabel, rows[0][2])
	assert.Equal(t, week.Days[4].Entries[0].Text, rows[0][4])
}

func TestWeeklyRecurringBeforeOneOff(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	insert(t, db, oneOff("exam", "2024-03-20", "09:00"))
	insert(t, db, weekly("seminar", 4, "11:00", ""))

	week, err := agenda.Weekly(ctx, db, now)
	require.NoError(t, err)
	require.Len(t, week.Days[4].Entries, 2)
	assert.Equal(t, "seminar", week.Days[4].Entries[0].Event.Title)
	assert.Equal(t, "exam", week.Days[4].Entries[1].Event.Title)

	rows := week.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, agenda.NoEventsLabel, rows[0][0])
	assert.Equal(t, "", rows[1][0])
}

func TestDue(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	soon := insert(t, db, oneOff("soon", "2024-03-20", "10:10"))
	insert(t, db, oneOff("later", "2024-03-20", "10:30"))
	insert(t, db, oneOff("untimed", "2024-03-20", ""))
	insert(t, db, oneOff("started", "2024-03-20", "10:00"))
	insert(t, db, weekly("seminar", 4, "10:05", ""))

	due, err := agenda.Due(ctx, db, now, 15*time.Minute)
	require.NoError(t, err)
	require.Len(t, due, 2)
	assert.Equal(t, "seminar", due[0].Event.Title)
	assert.Equal(t, "soon", due[1].Event.Title)

	require.NoError(t, model.MarkNotified(ctx, db, soon.ID, due[1].Start))
	due, err = agenda.Due(ctx, db, now, 15*time.Minute)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "seminar", due[0].Event.Title)
}

func TestDueAcrossMidnight(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	insert(t, db, oneOff("midnight", "2024-03-21", "00:05"))

	lateNight := time.Date(2024, 3, 20, 23, 55, 0, 0, time.UTC)
	due, err := agenda.Due(ctx, db, lateNight, 15*time.Minute)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, time.Date(2024, 3, 21, 0, 5, 0, 0, time.UTC), due[0].Start)
}

func TestPresent(t *testing.T) {
	row := agenda.Present(&model.Event{
		ID:           7,
		Title:        "exam",
		EventType:    "امتحان",
		Date:         "2024-03-20",
		RecurringDay: model.NoRecurringDay,
	})
	assert.Equal(t, "1403-01-01 ("+jalali.WeekdayName(4)+")", row.Date)
	assert.Equal(t, agenda.NoTimeLabel, row.Time)
	assert.Equal(t, []string{"7", "exam", "امتحان", row.Date, agenda.NoTimeLabel, ""}, row.Cells())

	row.Description = "room 2\nbring ID"
	assert.Equal(t, "room 2 bring ID", row.Cells()[5])

	recurring := weekly("class", 2, "08:00", "2024-03-20")
	row = agenda.Present(recurring)
	assert.Equal(t, "تکراری ("+jalali.WeekdayName(2)+")", row.Date)
	assert.Equal(t, "08:00", row.Time)
	assert.Equal(t, "1403-01-01", agenda.EndDateText(recurring))

	assert.Equal(t, agenda.NoUpcomingMessage, agenda.Describe(nil))
	desc := agenda.Describe(&agenda.Occurrence{
		Event: recurring,
		Day:   time.Date(2024, 3, 18, 0, 0, 0, 0, time.UTC),
	})
	assert.Contains(t, desc, "Title: class")
	assert.Contains(t, desc, "هر "+jalali.WeekdayName(2))
	assert.Contains(t, desc, agenda.NoDescriptionLabel)
}
