package model

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

// ListOneOffFrom returns one-off events dated on or after fromDate
// (Gregorian YYYY-MM-DD) ordered by date then time, untimed first.
func ListOneOffFrom(ctx context.Context, db bun.IDB, fromDate string) ([]Event, error) {
	events := make([]Event, 0)
	if err := db.NewSelect().
		Model(&events).
		Where("is_recurring = ?", false).
		Where("date >= ?", fromDate).
		OrderExpr("date, time, id").
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("ListOneOffFrom: %w", err)
	}
	return events, nil
}

// ListOneOffBetween returns one-off events dated within [fromDate, toDate].
func ListOneOffBetween(ctx context.Context, db bun.IDB, fromDate, toDate string) ([]Event, error) {
	events := make([]Event, 0)
	if err := db.NewSelect().
		Model(&events).
		Where("is_recurring = ?", false).
		Where("date >= ?", fromDate).
		Where("date <= ?", toDate).
		OrderExpr("date, time, id").
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("ListOneOffBetween: %w", err)
	}
	return events, nil
}

// ListUntimedFrom returns one-off events without a time dated on or after fromDate.
func ListUntimedFrom(ctx context.Context, db bun.IDB, fromDate string) ([]Event, error) {
	events := make([]Event, 0)
	if err := db.NewSelect().
		Model(&events).
		Where("is_recurring = ?", false).
		Where("time IS NULL").
		Where("date >= ?", fromDate).
		OrderExpr("date, id").
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("ListUntimedFrom: %w", err)
	}
	return events, nil
}

// ListRecurringActive returns recurring events whose end date, if any, is
// not before onDate, ordered by weekday then time.
func ListRecurringActive(ctx context.Context, db bun.IDB, onDate string) ([]Event, error) {
	events := make([]Event, 0)
	if err := db.NewSelect().
		Model(&events).
		Where("is_recurring = ?", true).
		WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.
				Where("end_date IS NULL").
				WhereOr("end_date >= ?", onDate)
		}).
		OrderExpr("recurring_day, time, id").
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("ListRecurringActive: %w", err)
	}
	return events, nil
}
