package ics_test

import (
	"bytes"
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"rooydad/src-app/ics"
	"rooydad/src-app/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

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

func TestExport(t *testing.T) {
	events := []model.Event{
		{
			ID: 1, UID: "exam-1", Title: "exam", EventType: "exam-type",
			Date: "2024-03-21", Time: "09:30", RecurringDay: model.NoRecurringDay,
			CreatedAt: now.Unix(),
		},
		{
			ID: 2, UID: "task-2", Title: "task", EventType: "other",
			Date: "2024-03-20", RecurringDay: model.NoRecurringDay,
			CreatedAt: now.Unix(),
		},
		{
			ID: 3, UID: "class-3", Title: "class", EventType: "class-type", Description: "room 4",
			Time: "08:00", IsRecurring: true, RecurringDay: 2, EndDate: "2024-06-20",
			CreatedAt: now.Unix(),
		},
		{
			ID: 4, UID: "gym-4", Title: "gym", EventType: "other",
			IsRecurring: true, RecurringDay: 6,
			CreatedAt: now.Unix(),
		},
	}

	var buf bytes.Buffer
	require.NoError(t, ics.Export(&buf, events, time.UTC, now))
	out := strings.ReplaceAll(buf.String(), "\r\n ", "")

	assert.Contains(t, out, "BEGIN:VCALENDAR")
	assert.Contains(t, out, ics.ProductID)
	assert.Equal(t, 4, strings.Count(out, "BEGIN:VEVENT"))

	// timed one-off
	assert.Contains(t, out, "UID:exam-1")
	assert.Contains(t, out, "DTSTART:20240321T093000Z")
	assert.Contains(t, out, "DTEND:20240321T103000Z")
	assert.Contains(t, out, "CATEGORIES:exam-type")

	// all-day one-off
	assert.Contains(t, out, "VALUE=DATE:20240320")

	// recurring monday, first occurrence in the week of creation
	assert.Contains(t, out, "DTSTART:20240318T080000Z")
	assert.Contains(t, out, "DESCRIPTION:room 4")
	assert.Regexp(t, `RRULE:FREQ=WEEKLY;[^\r\n]*BYDAY=MO`, out)
	assert.Regexp(t, `RRULE:[^\r\n]*UNTIL=20240620T235959Z`, out)

	// recurring friday without end
	assert.Contains(t, out, "VALUE=DATE:20240322")
	assert.Regexp(t, `RRULE:FREQ=WEEKLY;[^\r\n]*BYDAY=FR`, out)
}

const feed = "BEGIN:VCALENDAR\r\n" +
	"VERSION:2.0\r\n" +
	"PRODID:-//test//EN\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:one\r\n" +
	"DTSTAMP:20240301T000000Z\r\n" +
	"SUMMARY:Dentist\\, downtown\r\n" +
	"DTSTART:20240325T063000Z\r\n" +
	"DTEND:20240325T073000Z\r\n" +
	"CATEGORIES:Health,Personal\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:two\r\n" +
	"DTSTAMP:20240301T000000Z\r\n" +
	"SUMMARY:Holiday\r\n" +
	"DTSTART;VALUE=DATE:20240401\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:three\r\n" +
	"DTSTAMP:20240301T000000Z\r\n" +
	"SUMMARY:Lecture\r\n" +
	"DESCRIPTION:Hall A\r\n" +
	"DTSTART:20240318T080000Z\r\n" +
	"RRULE:FREQ=WEEKLY;UNTIL=20240620T235959Z;BYDAY=MO\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:four\r\n" +
	"DTSTAMP:20240301T000000Z\r\n" +
	"SUMMARY:Standup\r\n" +
	"DTSTART:20240318T090000Z\r\n" +
	"RRULE:FREQ=DAILY\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:five\r\n" +
	"DTSTAMP:20240301T000000Z\r\n" +
	"DTSTART:20240318T090000Z\r\n" +
	"END:VEVENT\r\n" +
	"END:VCALENDAR\r\n"

func TestParse(t *testing.T) {
	events, skipped, err := ics.Parse(strings.NewReader(feed), time.UTC, "other")
	require.NoError(t, err)
	assert.Equal(t, 2, skipped, "daily rule and missing summary")
	require.Len(t, events, 3)

	dentist := events[0]
	assert.Equal(t, "one", dentist.UID)
	assert.Equal(t, "Dentist, downtown", dentist.Title)
	assert.Equal(t, "Health", dentist.EventType)
	assert.Equal(t, "2024-03-25", dentist.Date)
	assert.Equal(t, "06:30", dentist.Time)
	assert.False(t, dentist.IsRecurring)
	assert.NoError(t, dentist.Check())

	holiday := events[1]
	assert.Equal(t, "other", holiday.EventType)
	assert.Equal(t, "2024-04-01", holiday.Date)
	assert.Empty(t, holiday.Time)
	assert.NoError(t, holiday.Check())

	lecture := events[2]
	assert.True(t, lecture.IsRecurring)
	assert.Equal(t, 2, lecture.RecurringDay)
	assert.Equal(t, "08:00", lecture.Time)
	assert.Equal(t, "2024-06-20", lecture.EndDate)
	assert.Empty(t, lecture.Date)
	assert.Equal(t, "Hall A", lecture.Description)
	assert.NoError(t, lecture.Check())
}

func TestParseInLocation(t *testing.T) {
	tehran := time.FixedZone("IRST", 3*3600+1800)
	events, _, err := ics.Parse(strings.NewReader(feed), tehran, "other")
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, "10:00", events[0].Time)
	assert.Equal(t, "11:30", events[2].Time)
}

func TestSave(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	events, _, err := ics.Parse(strings.NewReader(feed), time.UTC, "other")
	require.NoError(t, err)
	created, updated, err := ics.Save(ctx, db, events)
	require.NoError(t, err)
	assert.Equal(t, 3, created)
	assert.Zero(t, updated)

	// case: importing the same feed again updates in place
	events, _, err = ics.Parse(strings.NewReader(feed), time.UTC, "other")
	require.NoError(t, err)
	events[0].Title = "Dentist moved"
	created, updated, err = ics.Save(ctx, db, events)
	require.NoError(t, err)
	assert.Zero(t, created)
	assert.Equal(t, 3, updated)

	n, err := model.CountEvents(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	got, err := model.GetEventByUID(ctx, db, "one")
	require.NoError(t, err)
	assert.Equal(t, "Dentist moved", got.Title)

	// case: a bad row rolls the whole batch back
	_, _, err = ics.Save(ctx, db, []model.Event{
		{UID: "new", Title: "fine", EventType: "x", Date: "2024-05-01", RecurringDay: model.NoRecurringDay},
		{UID: "bad", Title: "", EventType: "x", Date: "2024-05-01", RecurringDay: model.NoRecurringDay},
	})
	require.Error(t, err)
	_, err = model.GetEventByUID(ctx, db, "new")
	assert.ErrorIs(t, err, model.ErrEventNotFound)
}

const overrideFeed = "BEGIN:VCALENDAR\r\n" +
	"VERSION:2.0\r\n" +
	"PRODID:-//test//EN\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:class@example.com\r\n" +
	"DTSTAMP:20240301T000000Z\r\n" +
	"DTSTART:20240316T080000Z\r\n" +
	"RRULE:FREQ=WEEKLY;BYDAY=SA\r\n" +
	"SUMMARY:Class\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:class@example.com\r\n" +
	"DTSTAMP:20240301T000000Z\r\n" +
	"RECURRENCE-ID:20240323T080000Z\r\n" +
	"DTSTART:20240323T100000Z\r\n" +
	"SUMMARY:Class moved\r\n" +
	"END:VEVENT\r\n" +
	"END:VCALENDAR\r\n"

func TestParseSkipsOccurrenceEdits(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	events, skipped, err := ics.Parse(strings.NewReader(overrideFeed), time.UTC, "other")
	require.NoError(t, err)
	assert.Equal(t, 1, skipped)
	require.Len(t, events, 1)

	created, updated, err := ics.Save(ctx, db, events)
	require.NoError(t, err)
	assert.Equal(t, 1, created)
	assert.Zero(t, updated)

	got, err := model.GetEventByUID(ctx, db, "class@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Class", got.Title)
	assert.True(t, got.IsRecurring)
	assert.Equal(t, 0, got.RecurringDay)
}

func TestTextRoundTrip(t *testing.T) {
	events := []model.Event{{
		ID: 1, UID: "backup-1", Title: `Backup C:\new; daily, full`, EventType: "ops",
		Description:  "line one\nline two",
		Date:         "2024-03-21",
		RecurringDay: model.NoRecurringDay,
		CreatedAt:    now.Unix(),
	}}

	var buf bytes.Buffer
	require.NoError(t, ics.Export(&buf, events, time.UTC, now))
	assert.Contains(t, strings.ReplaceAll(buf.String(), "\r\n ", ""), `SUMMARY:Backup C:\\new\; daily\, full`)

	parsed, skipped, err := ics.Parse(&buf, time.UTC, "other")
	require.NoError(t, err)
	assert.Zero(t, skipped)
	require.Len(t, parsed, 1)
	assert.Equal(t, `Backup C:\new; daily, full`, parsed[0].Title)
	assert.Equal(t, "line one\nline two", parsed[0].Description)
	assert.Equal(t, "ops", parsed[0].EventType)

	// case: a hand-written escaped backslash
	parsed, _, err = ics.Parse(strings.NewReader(strings.Replace(overrideFeed, "SUMMARY:Class\r\n", `SUMMARY:Backup C:\\new`+"\r\n", 1)), time.UTC, "other")
	require.NoError(t, err)
	require.Len(t, parsed, 1)
	assert.Equal(t, `Backup C:\new`, parsed[0].Title)
}
