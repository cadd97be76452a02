package model

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// NoRecurringDay marks a one-off event in the recurring_day column.
const NoRecurringDay = -1

var ErrEventNotFound = fmt.Errorf("event not found: %w", sql.ErrNoRows)

type Event struct {
	bun.BaseModel `bun:"table:events"`

	ID          int64  `bun:"id,pk,autoincrement" json:"id"`
	UID         string `bun:"uid,notnull,unique" json:"uid"`
	Title       string `bun:"title,notnull" json:"title"`
	EventType   string `bun:"event_type,notnull" json:"event_type"`
	Description string `bun:"description" json:"description,omitempty"`

	// Gregorian YYYY-MM-DD, empty (NULL) for recurring events
	Date string `bun:"date,nullzero" json:"date,omitempty"`
	// HH:MM, empty (NULL) when the event has no set time
	Time string `bun:"time,nullzero" json:"time,omitempty"`

	IsRecurring bool `bun:"is_recurring,notnull" json:"is_recurring"`
	// Jalali weekday index, 0 = Saturday
	RecurringDay int `bun:"recurring_day,notnull" json:"recurring_day"`
	// Gregorian YYYY-MM-DD, last day a recurring event happens on
	EndDate string `bun:"end_date,nullzero" json:"end_date,omitempty"`

	// unix time of the last occurrence a reminder went out for
	NotifiedAt int64 `bun:"notified_at,notnull" json:"-"`
	CreatedAt  int64 `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt  int64 `bun:"updated_at" json:"updated_at,omitempty"`
}

// Check enforces the shape of a row before it is written.
func (e *Event) Check() error {
	switch {
	case e.Title == "":
		return fmt.Errorf("(*Event).Check: title is blank")
	case e.EventType == "":
		return fmt.Errorf("(*Event).Check: event type is blank")
	case e.Time != "":
		if _, err := time.Parse("15:04", e.Time); err != nil {
			return fmt.Errorf("(*Event).Check: time is invalid: %w", err)
		}
	}

	switch e.IsRecurring {
	case true:
		if e.RecurringDay < 0 || e.RecurringDay > 6 {
			return fmt.Errorf("(*Event).Check: recurring day %d out of range", e.RecurringDay)
		}
		if e.Date != "" {
			return fmt.Errorf("(*Event).Check: recurring event can't have a date")
		}
		if e.EndDate != "" {
			if _, err := time.Parse("2006-01-02", e.EndDate); err != nil {
				return fmt.Errorf("(*Event).Check: end date is invalid: %w", err)
			}
		}
	case false:
		if _, err := time.Parse("2006-01-02", e.Date); err != nil {
			return fmt.Errorf("(*Event).Check: date is invalid: %w", err)
		}
		if e.RecurringDay != NoRecurringDay {
			return fmt.Errorf("(*Event).Check: one-off event can't have a recurring day")
		}
		if e.EndDate != "" {
			return fmt.Errorf("(*Event).Check: one-off event can't have an end date")
		}
	}
	return nil
}

func (e *Event) Insert(ctx context.Context, db bun.IDB) error {
	if e.UID == "" {
		e.UID = uuid.NewString()
	}
	if e.CreatedAt == 0 {
		e.CreatedAt = time.Now().UTC().Unix()
	}
	if err := e.Check(); err != nil {
		return fmt.Errorf("(*Event).Insert: %w", err)
	}
	if _, err := db.NewInsert().
		Model(e).
		Exec(ctx); err != nil {
		return fmt.Errorf("(*Event).Insert: %w", err)
	}
	return nil
}

// Update overwrites every column of the row with e.ID. Changing the date,
// time or recurrence resets the reminder stamp.
func (e *Event) Update(ctx context.Context, db bun.IDB) error {
	if err := e.Check(); err != nil {
		return fmt.Errorf("(*Event).Update: %w", err)
	}
	old, err := GetEventByID(ctx, db, e.ID)
	if err != nil {
		return fmt.Errorf("(*Event).Update: %w", err)
	}
	e.UID = old.UID
	e.CreatedAt = old.CreatedAt
	e.UpdatedAt = time.Now().UTC().Unix()
	if old.Date == e.Date &&
		old.Time == e.Time &&
		old.IsRecurring == e.IsRecurring &&
		old.RecurringDay == e.RecurringDay {
		e.NotifiedAt = old.NotifiedAt
	} else {
		e.NotifiedAt = 0
	}

	if _, err := db.NewUpdate().
		Model(e).
		WherePK().
		Exec(ctx); err != nil {
		return fmt.Errorf("(*Event).Update: %w", err)
	}
	return nil
}

// Upsert inserts e, or overwrites the row sharing its UID. It reports
// whether a row was created.
func (e *Event) Upsert(ctx context.Context, db bun.IDB) (bool, error) {
	if e.UID == "" {
		if err := e.Insert(ctx, db); err != nil {
			return false, fmt.Errorf("(*Event).Upsert: %w", err)
		}
		return true, nil
	}
	old, err := GetEventByUID(ctx, db, e.UID)
	switch {
	case errors.Is(err, ErrEventNotFound):
		if err := e.Insert(ctx, db); err != nil {
			return false, fmt.Errorf("(*Event).Upsert: %w", err)
		}
		return true, nil
	case err != nil:
		return false, fmt.Errorf("(*Event).Upsert: %w", err)
	}
	e.ID = old.ID
	if err := e.Update(ctx, db); err != nil {
		return false, fmt.Errorf("(*Event).Upsert: %w", err)
	}
	return false, nil
}

func GetEventByID(ctx context.Context, db bun.IDB, id int64) (*Event, error) {
	e := new(Event)
	if err := db.NewSelect().
		Model(e).
		Where("id = ?", id).
		Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetEventByID: id=%d: %w", id, ErrEventNotFound)
		}
		return nil, fmt.Errorf("GetEventByID: %w", err)
	}
	return e, nil
}

func GetEventByUID(ctx context.Context, db bun.IDB, uid string) (*Event, error) {
	e := new(Event)
	if err := db.NewSelect().
		Model(e).
		Where("uid = ?", uid).
		Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetEventByUID: uid=%s: %w", uid, ErrEventNotFound)
		}
		return nil, fmt.Errorf("GetEventByUID: %w", err)
	}
	return e, nil
}

func DeleteEventByID(ctx context.Context, db bun.IDB, id int64) error {
	res, err := db.NewDelete().
		Model((*Event)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("DeleteEventByID: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("DeleteEventByID: id=%d: %w", id, ErrEventNotFound)
	}
	return nil
}

// DeleteAllEvents empties the table and reports how many rows were removed.
func DeleteAllEvents(ctx context.Context, db bun.IDB) (int64, error) {
	res, err := db.NewDelete().
		Model((*Event)(nil)).
		Where("1 = 1").
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("DeleteAllEvents: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// ListEvents returns recurring events first (by weekday), then one-off
// events by date and time. Untimed events sort first within their day.
func ListEvents(ctx context.Context, db bun.IDB) ([]Event, error) {
	events := make([]Event, 0)
	if err := db.NewSelect().
		Model(&events).
		OrderExpr("CASE WHEN is_recurring = 1 THEN 0 ELSE 1 END").
		OrderExpr("recurring_day, date, time, id").
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("ListEvents: %w", err)
	}
	return events, nil
}

func CountEvents(ctx context.Context, db bun.IDB) (int, error) {
	n, err := db.NewSelect().
		Model((*Event)(nil)).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("CountEvents: %w", err)
	}
	return n, nil
}

// MarkNotified stamps the start of the occurrence a reminder was sent for.
func MarkNotified(ctx context.Context, db bun.IDB, id int64, occurrence time.Time) error {
	if _, err := db.NewUpdate().
		Model((*Event)(nil)).
		Set("notified_at = ?", occurrence.Unix()).
		Where("id = ?", id).
		Exec(ctx); err != nil {
		return fmt.Errorf("MarkNotified: %w", err)
	}
	return nil
}
