// Package scheduler sends reminders for events about to start.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"rooydad/src-app/agenda"
	"rooydad/src-app/model"
	"rooydad/src-app/utils"

	"github.com/robfig/cron/v3"
)

type Reminder struct {
	as        *utils.AppState
	notifiers []Notifier
	// a slow run must not overlap the next tick
	mu sync.Mutex
}

// NewReminder always logs reminders; extra notifiers receive them too.
func NewReminder(as *utils.AppState, notifiers ...Notifier) *Reminder {
	return &Reminder{
		as:        as,
		notifiers: append([]Notifier{LogNotifier{}}, notifiers...),
	}
}

// NotifiersFromConfig builds the optional notifiers the environment asks for.
func NotifiersFromConfig(config *utils.Config) []Notifier {
	notifiers := make([]Notifier, 0)
	if webhookURL := config.GetDiscordWebhookURL(); webhookURL != "" {
		discord, err := NewDiscordNotifier(webhookURL)
		if err != nil {
			slog.Error("discord reminders disabled", "error", err)
		} else {
			notifiers = append(notifiers, discord)
		}
	}
	return notifiers
}

// RunOnce reminds of every occurrence due at now and stamps it so it is not
// reminded again. It returns how many occurrences were delivered.
func (r *Reminder) RunOnce(ctx context.Context, now time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	startTimer := time.Now()
	due, err := agenda.Due(ctx, r.as.BunDB, now, r.as.Config.GetReminderLead())
	if err != nil {
		return 0, fmt.Errorf("(*Reminder).RunOnce: %w", err)
	}
	r.as.MetricChans.ObserveRead(startTimer)
	if len(due) == 0 {
		return 0, nil
	}

	for _, notifier := range r.notifiers {
		if err := notifier.Notify(ctx, due); err != nil {
			slog.Warn("can't deliver reminder", "notifier", fmt.Sprintf("%T", notifier), "error", err)
		}
	}

	startTimer = time.Now()
	for _, occ := range due {
		if err := model.MarkNotified(ctx, r.as.BunDB, occ.Event.ID, occ.Start); err != nil {
			return 0, fmt.Errorf("(*Reminder).RunOnce: %w", err)
		}
	}
	r.as.MetricChans.ObserveWrite(startTimer)
	r.as.MetricChans.ObserveReminders(len(due))

	return len(due), nil
}

// Start runs the reminder on REMINDER_CRON until the app shuts down.
func (r *Reminder) Start() error {
	c := cron.New(cron.WithLocation(r.as.Config.GetLocation()))
	if _, err := c.AddFunc(r.as.Config.GetReminderCron(), func() {
		if _, err := r.RunOnce(context.Background(), r.as.Now()); err != nil {
			slog.Error("reminder run failed", "error", err)
		}
	}); err != nil {
		return fmt.Errorf("(*Reminder).Start: invalid REMINDER_CRON %q: %w", r.as.Config.GetReminderCron(), err)
	}
	c.Start()
	slog.Debug("reminder scheduled", "cron", r.as.Config.GetReminderCron(), "lead", r.as.Config.GetReminderLead())

	gracefulShutdownCh := r.as.CreateGracefulShutdownChan()
	go func() {
		<-gracefulShutdownCh
		<-c.Stop().Done()
		slog.Debug("reminder stopped")
	}()
	return nil
}
