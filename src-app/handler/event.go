package handler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"rooydad/src-app/model"
	"rooydad/src-app/utils"
)

func CreateEvent(ctx context.Context, as *utils.AppState, in Input) (*model.Event, error) {
	e, err := in.Event()
	if err != nil {
		return nil, fmt.Errorf("CreateEvent: %w", err)
	}

	startTimer := time.Now()
	if err := e.Insert(ctx, as.BunDB); err != nil {
		return nil, fmt.Errorf("CreateEvent: %w", err)
	}
	as.MetricChans.ObserveWrite(startTimer)

	slog.Info("event created", "id", e.ID, "title", e.Title, "recurring", e.IsRecurring)
	return e, nil
}

// ModifyEvent replaces every field of event id with the input.
func ModifyEvent(ctx context.Context, as *utils.AppState, id int64, in Input) (*model.Event, error) {
	e, err := in.Event()
	if err != nil {
		return nil, fmt.Errorf("ModifyEvent: %w", err)
	}
	e.ID = id

	startTimer := time.Now()
	if err := e.Update(ctx, as.BunDB); err != nil {
		return nil, fmt.Errorf("ModifyEvent: %w", err)
	}
	as.MetricChans.ObserveWrite(startTimer)

	slog.Info("event modified", "id", e.ID, "title", e.Title)
	return e, nil
}

func DeleteEvent(ctx context.Context, as *utils.AppState, id int64) error {
	startTimer := time.Now()
	if err := model.DeleteEventByID(ctx, as.BunDB, id); err != nil {
		return fmt.Errorf("DeleteEvent: %w", err)
	}
	as.MetricChans.ObserveWrite(startTimer)

	slog.Info("event deleted", "id", id)
	return nil
}

func GetEvent(ctx context.Context, as *utils.AppState, id int64) (*model.Event, error) {
	startTimer := time.Now()
	e, err := model.GetEventByID(ctx, as.BunDB, id)
	if err != nil {
		return nil, fmt.Errorf("GetEvent: %w", err)
	}
	as.MetricChans.ObserveRead(startTimer)
	return e, nil
}
