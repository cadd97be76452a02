// Package backup dumps the events table to YAML with Jalali dates, so the
// file can be edited by hand, and restores it.
package backup

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"rooydad/src-app/handler"
	"rooydad/src-app/jalali"
	"rooydad/src-app/model"

	"github.com/uptrace/bun"
	"gopkg.in/yaml.v3"
)

const Version = 1

type Document struct {
	Version    int     `yaml:"version"`
	ExportedAt string  `yaml:"exported_at"`
	Events     []Entry `yaml:"events"`
}

// Entry mirrors the entry form: dates are Jalali, the weekday is a name.
type Entry struct {
	UID         string `yaml:"uid,omitempty"`
	Title       string `yaml:"title"`
	Type        string `yaml:"type"`
	Date        string `yaml:"date,omitempty"`
	Time        string `yaml:"time,omitempty"`
	Description string `yaml:"description,omitempty"`
	Recurring   bool   `yaml:"recurring,omitempty"`
	Weekday     string `yaml:"weekday,omitempty"`
	EndDate     string `yaml:"end_date,omitempty"`
}

func entryFromEvent(e *model.Event) Entry {
	in := handler.InputFromEvent(e)
	return Entry{
		UID:         e.UID,
		Title:       in.Title,
		Type:        in.EventType,
		Date:        in.Date,
		Time:        in.Time,
		Description: in.Description,
		Recurring:   in.IsRecurring,
		Weekday:     in.Weekday,
		EndDate:     in.EndDate,
	}
}

func (en Entry) event() (*model.Event, error) {
	e, err := handler.Input{
		Title:       en.Title,
		EventType:   en.Type,
		Date:        en.Date,
		Time:        en.Time,
		Description: en.Description,
		IsRecurring: en.Recurring,
		Weekday:     en.Weekday,
		EndDate:     en.EndDate,
	}.Event()
	if err != nil {
		return nil, err
	}
	e.UID = en.UID
	return e, nil
}

// Export writes every event to w.
func Export(ctx context.Context, db bun.IDB, w io.Writer, now time.Time) (int, error) {
	events, err := model.ListEvents(ctx, db)
	if err != nil {
		return 0, fmt.Errorf("Export: %w", err)
	}

	doc := Document{
		Version:    Version,
		ExportedAt: jalali.FormatClock(now),
		Events:     make([]Entry, len(events)),
	}
	for i := range events {
		doc.Events[i] = entryFromEvent(&events[i])
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return 0, fmt.Errorf("Export: %w", err)
	}
	if err := enc.Close(); err != nil {
		return 0, fmt.Errorf("Export: %w", err)
	}
	return len(events), nil
}

type Result struct {
	Removed int64
	Created int
	Updated int
}

// Restore reads a document from r and writes it in one transaction. With
// replace the table is emptied first; otherwise entries overwrite the rows
// sharing their UID. An invalid entry aborts the whole restore.
func Restore(ctx context.Context, db *bun.DB, r io.Reader, replace bool) (*Result, error) {
	var doc Document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("Restore: %w", err)
	}
	if doc.Version > Version {
		return nil, fmt.Errorf("Restore: unsupported version %d", doc.Version)
	}

	events := make([]*model.Event, len(doc.Events))
	for i, en := range doc.Events {
		e, err := en.event()
		if err != nil {
			return nil, fmt.Errorf("Restore: entry %d (%q): %w", i+1, en.Title, err)
		}
		events[i] = e
	}

	result := new(Result)
	if err := db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if replace {
			n, err := model.DeleteAllEvents(ctx, tx)
			if err != nil {
				return err
			}
			result.Removed = n
		}
		for _, e := range events {
			created, err := e.Upsert(ctx, tx)
			if err != nil {
				return err
			}
			if created {
				result.Created++
			} else {
				result.Updated++
			}
		}
		return nil
	}); err != nil {
		return nil, fmt.Errorf("Restore: %w", err)
	}

	slog.Info("backup restored", "removed", result.Removed, "created", result.Created, "updated", result.Updated)
	return result, nil
}
