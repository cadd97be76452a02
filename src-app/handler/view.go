package handler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"rooydad/src-app/agenda"
	"rooydad/src-app/jalali"
	"rooydad/src-app/model"
	"rooydad/src-app/utils"
)

// Mode is one of the list views the user switches between.
type Mode int

const (
	ModeNearest Mode = iota
	ModeUpcoming
	ModeAll
	ModeWeekly
	ModeTasks
)

var modeNames = []string{"nearest", "upcoming", "all", "weekly", "tasks"}

var modeTitles = []string{
	"نزدیک‌ترین رویداد",
	"رویدادهای آینده",
	"همه رویدادها",
	"برنامه هفتگی",
	"کارهای آینده (بدون زمان)",
}

func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return fmt.Sprintf("Mode(%d)", int(m))
	}
	return modeNames[m]
}

// Title is the heading shown above the view.
func (m Mode) Title() string {
	if m < 0 || int(m) >= len(modeTitles) {
		return ""
	}
	return modeTitles[m]
}

// ParseMode accepts a mode name or its number.
func ParseMode(s string) (Mode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range modeNames {
		if s == name || s == fmt.Sprint(i) {
			return Mode(i), nil
		}
	}
	return 0, fmt.Errorf("ParseMode: %q: %w", s, ErrInvalidMode)
}

// List returns the events of a list view. The nearest view holds at most one
// event; the weekly view is built by Week instead.
func List(ctx context.Context, as *utils.AppState, mode Mode) ([]model.Event, error) {
	startTimer := time.Now()
	defer as.MetricChans.ObserveRead(startTimer)

	var events []model.Event
	var err error
	switch mode {
	case ModeNearest:
		var occ *agenda.Occurrence
		occ, err = agenda.Nearest(ctx, as.BunDB, as.Now())
		events = make([]model.Event, 0, 1)
		if occ != nil {
			events = append(events, *occ.Event)
		}
	case ModeUpcoming:
		events, err = agenda.Upcoming(ctx, as.BunDB, as.Now())
	case ModeAll:
		events, err = agenda.All(ctx, as.BunDB)
	case ModeTasks:
		events, err = agenda.FutureTasks(ctx, as.BunDB, as.Now())
	default:
		return nil, fmt.Errorf("List: %s: %w", mode, ErrInvalidMode)
	}
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	return events, nil
}

func Nearest(ctx context.Context, as *utils.AppState) (*agenda.Occurrence, error) {
	startTimer := time.Now()
	occ, err := agenda.Nearest(ctx, as.BunDB, as.Now())
	if err != nil {
		return nil, fmt.Errorf("Nearest: %w", err)
	}
	as.MetricChans.ObserveRead(startTimer)
	return occ, nil
}

func Week(ctx context.Context, as *utils.AppState) (*agenda.Week, error) {
	startTimer := time.Now()
	week, err := agenda.Weekly(ctx, as.BunDB, as.Now())
	if err != nil {
		return nil, fmt.Errorf("Week: %w", err)
	}
	as.MetricChans.ObserveRead(startTimer)
	return week, nil
}

// FindNearestFrom resolves query to a day and returns the first occurrence on
// or after it. query is a Jalali date or a phrase like "next friday".
func FindNearestFrom(ctx context.Context, as *utils.AppState, query string) (*agenda.Occurrence, error) {
	from, err := ResolveDay(as, query)
	if err != nil {
		return nil, fmt.Errorf("FindNearestFrom: %w", err)
	}

	startTimer := time.Now()
	occ, err := agenda.NearestFrom(ctx, as.BunDB, from)
	if err != nil {
		return nil, fmt.Errorf("FindNearestFrom: %w", err)
	}
	as.MetricChans.ObserveRead(startTimer)
	return occ, nil
}

// ResolveDay turns a Jalali date or a natural language phrase into midnight
// of that day in the configured location.
func ResolveDay(as *utils.AppState, query string) (time.Time, error) {
	query = utils.NormalizeDigits(utils.CleanupString(query))
	if query == "" {
		return time.Time{}, ErrInvalidSearch
	}
	loc := as.Config.GetLocation()
	day, err := jalali.Parse(query, loc)
	switch {
	case err == nil:
		return day, nil
	case jalali.LooksLikeDate(query):
		return time.Time{}, fmt.Errorf("%w: %w", ErrInvalidSearch, err)
	}

	r, err := as.When.Parse(query, as.Now())
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %w", ErrInvalidSearch, err)
	}
	if r == nil {
		return time.Time{}, ErrInvalidSearch
	}
	t := r.Time.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc), nil
}
