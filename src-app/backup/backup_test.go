package backup_test

import (
	"bytes"
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"rooydad/src-app/backup"
	"rooydad/src-app/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"gopkg.in/yaml.v3"
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

func seed(t *testing.T, db bun.IDB) {
	t.Helper()
	for _, e := range []*model.Event{
		{Title: "exam", EventType: "امتحان", Date: "2024-03-21", Time: "09:00", Description: "chapter 3", RecurringDay: model.NoRecurringDay},
		{Title: "class", EventType: "کلاس", IsRecurring: true, RecurringDay: 2, EndDate: "2024-06-20"},
	} {
		require.NoError(t, e.Insert(context.Background(), db))
	}
}

func TestExport(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	seed(t, db)

	var buf bytes.Buffer
	n, err := backup.Export(ctx, db, &buf, now)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	var doc backup.Document
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, backup.Version, doc.Version)
	assert.True(t, strings.HasPrefix(doc.ExportedAt, "1403/01/01 10:00:00"))
	require.Len(t, doc.Events, 2)

	class := doc.Events[0]
	assert.True(t, class.Recurring)
	assert.Equal(t, "دوشنبه", class.Weekday)
	assert.Equal(t, "1403-03-31", class.EndDate)
	assert.Empty(t, class.Date)

	exam := doc.Events[1]
	assert.Equal(t, "1403-01-02", exam.Date)
	assert.Equal(t, "09:00", exam.Time)
	assert.Equal(t, "chapter 3", exam.Description)
	assert.NotEmpty(t, exam.UID)
}

func TestRestore(t *testing.T) {
	ctx := context.Background()
	src := newTestDB(t)
	seed(t, src)
	var buf bytes.Buffer
	_, err := backup.Export(ctx, src, &buf, now)
	require.NoError(t, err)
	dump := buf.String()

	// case: into an empty database
	dst := newTestDB(t)
	result, err := backup.Restore(ctx, dst, strings.NewReader(dump), false)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Created)
	want, err := model.ListEvents(ctx, src)
	require.NoError(t, err)
	got, err := model.ListEvents(ctx, dst)
	require.NoError(t, err)
	require.Len(t, got, 2)
	for i := range want {
		assert.Equal(t, want[i].UID, got[i].UID)
		assert.Equal(t, want[i].Date, got[i].Date)
		assert.Equal(t, want[i].Time, got[i].Time)
		assert.Equal(t, want[i].RecurringDay, got[i].RecurringDay)
		assert.Equal(t, want[i].EndDate, got[i].EndDate)
	}

	// case: merging again updates by uid
	result, err = backup.Restore(ctx, dst, strings.NewReader(dump), false)
	require.NoError(t, err)
	assert.Zero(t, result.Created)
	assert.Equal(t, 2, result.Updated)

	// case: replace drops rows missing from the dump
	extra := &model.Event{Title: "extra", EventType: "x", Date: "2024-05-01", RecurringDay: model.NoRecurringDay}
	require.NoError(t, extra.Insert(ctx, dst))
	result, err = backup.Restore(ctx, dst, strings.NewReader(dump), true)
	require.NoError(t, err)
	assert.Equal(t, int64(3), result.Removed)
	assert.Equal(t, 2, result.Created)
	n, err := model.CountEvents(ctx, dst)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestRestoreHandWritten(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	doc := `
version: 1
events:
  - title: سمینار
    type: ارائه
    date: ۱۴۰۳-۰۱-۱۰
    time: "14:00"
  - title: ورزش
    type: سایر
    recurring: true
    weekday: friday
`
	result, err := backup.Restore(ctx, db, strings.NewReader(doc), false)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Created)

	events, err := model.ListEvents(ctx, db)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, 6, events[0].RecurringDay)
	assert.Equal(t, "2024-03-29", events[1].Date)

	// case: one bad entry leaves the table untouched
	bad := `
events:
  - title: ok
    type: x
    date: 1403-02-01
  - title: broken
    type: x
    date: 1403-02-32
`
	_, err = backup.Restore(ctx, db, strings.NewReader(bad), true)
	require.Error(t, err)
	n, err := model.CountEvents(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
