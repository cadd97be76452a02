package agenda

import (
	"context"
	"fmt"
	"sort"
	"time"

	"rooydad/src-app/jalali"
	"rooydad/src-app/model"

	"github.com/uptrace/bun"
)

// Nearest finds the first occurrence still ahead of now: a later day, or
// today with a time after now. Untimed events of today still count.
func Nearest(ctx context.Context, db bun.IDB, now time.Time) (*Occurrence, error) {
	today := midnight(now)
	occ, err := nearest(ctx, db, today, func(o Occurrence) bool {
		if o.Day.After(today) || !o.Timed {
			return true
		}
		return o.Start.After(now)
	})
	if err != nil {
		return nil, fmt.Errorf("Nearest: %w", err)
	}
	return occ, nil
}

// NearestFrom finds the first occurrence on or after the day containing from.
func NearestFrom(ctx context.Context, db bun.IDB, from time.Time) (*Occurrence, error) {
	occ, err := nearest(ctx, db, midnight(from), func(Occurrence) bool { return true })
	if err != nil {
		return nil, fmt.Errorf("NearestFrom: %w", err)
	}
	return occ, nil
}

func nearest(ctx context.Context, db bun.IDB, from time.Time, keep func(Occurrence) bool) (*Occurrence, error) {
	fromDate := from.Format(jalali.GregorianLayout)
	var best *Occurrence
	consider := func(o Occurrence) {
		if best == nil || o.Before(*best) {
			best = &o
		}
	}

	// #region - one-off events, already sorted by date and time
	oneOffs, err := model.ListOneOffFrom(ctx, db, fromDate)
	if err != nil {
		return nil, err
	}
	for i := range oneOffs {
		day, err := time.ParseInLocation(jalali.GregorianLayout, oneOffs[i].Date, from.Location())
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", oneOffs[i].ID, err)
		}
		occ, err := newOccurrence(&oneOffs[i], day)
		if err != nil {
			return nil, err
		}
		if keep(occ) {
			consider(occ)
			break
		}
	}
	// #endregion

	// #region - recurring events, the next two weeks always hold a kept occurrence
	recurring, err := model.ListRecurringActive(ctx, db, fromDate)
	if err != nil {
		return nil, err
	}
	for i := range recurring {
		occs, err := Occurrences(&recurring[i], from, from.AddDate(0, 0, 14))
		if err != nil {
			return nil, err
		}
		for _, occ := range occs {
			if keep(occ) {
				consider(occ)
				break
			}
		}
	}
	// #endregion

	return best, nil
}

// Upcoming lists one-off events from now on (today's untimed ones included)
// followed by the recurring events that have not ended.
func Upcoming(ctx context.Context, db bun.IDB, now time.Time) ([]model.Event, error) {
	today := now.Format(jalali.GregorianLayout)
	clock := now.Format(jalali.TimeLayout)

	oneOffs, err := model.ListOneOffFrom(ctx, db, today)
	if err != nil {
		return nil, fmt.Errorf("Upcoming: %w", err)
	}
	events := make([]model.Event, 0, len(oneOffs))
	for _, e := range oneOffs {
		if e.Date == today && e.Time != "" && e.Time < clock {
			continue
		}
		events = append(events, e)
	}

	recurring, err := model.ListRecurringActive(ctx, db, today)
	if err != nil {
		return nil, fmt.Errorf("Upcoming: %w", err)
	}
	return append(events, recurring...), nil
}

// All lists every event, recurring patterns first.
func All(ctx context.Context, db bun.IDB) ([]model.Event, error) {
	events, err := model.ListEvents(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("All: %w", err)
	}
	return events, nil
}

// FutureTasks lists one-off events without a time from today on.
func FutureTasks(ctx context.Context, db bun.IDB, now time.Time) ([]model.Event, error) {
	events, err := model.ListUntimedFrom(ctx, db, now.Format(jalali.GregorianLayout))
	if err != nil {
		return nil, fmt.Errorf("FutureTasks: %w", err)
	}
	return events, nil
}

// Due lists the timed occurrences starting within (now, now+lead] that no
// reminder went out for yet.
func Due(ctx context.Context, db bun.IDB, now time.Time, lead time.Duration) ([]Occurrence, error) {
	today := midnight(now)
	until := now.Add(lead)
	todayDate := today.Format(jalali.GregorianLayout)

	candidates, err := model.ListOneOffBetween(ctx, db, todayDate, until.Format(jalali.GregorianLayout))
	if err != nil {
		return nil, fmt.Errorf("Due: %w", err)
	}
	recurring, err := model.ListRecurringActive(ctx, db, todayDate)
	if err != nil {
		return nil, fmt.Errorf("Due: %w", err)
	}
	candidates = append(candidates, recurring...)

	due := make([]Occurrence, 0)
	for i := range candidates {
		e := &candidates[i]
		if e.Time == "" {
			continue
		}
		occs, err := Occurrences(e, today, midnight(until).AddDate(0, 0, 1))
		if err != nil {
			return nil, fmt.Errorf("Due: %w", err)
		}
		for _, occ := range occs {
			if !occ.Start.After(now) || occ.Start.After(until) {
				continue
			}
			if e.NotifiedAt >= occ.Start.Unix() {
				continue
			}
			due = append(due, occ)
		}
	}
	sortOccurrences(due)
	return due, nil
}

func sortOccurrences(occs []Occurrence) {
	sort.Slice(occs, func(i, j int) bool {
		return occs[i].Before(occs[j])
	})
}
