package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"rooydad/src-app/agenda"
	"rooydad/src-app/jalali"

	"github.com/bwmarrin/discordgo"
)

// Notifier delivers reminders for occurrences about to start.
type Notifier interface {
	Notify(ctx context.Context, occs []agenda.Occurrence) error
}

// NotifierFunc adapts a function, e.g. one forwarding to the TUI.
type NotifierFunc func(ctx context.Context, occs []agenda.Occurrence) error

func (f NotifierFunc) Notify(ctx context.Context, occs []agenda.Occurrence) error {
	return f(ctx, occs)
}

// LogNotifier writes one log line per occurrence.
type LogNotifier struct{}

func (LogNotifier) Notify(_ context.Context, occs []agenda.Occurrence) error {
	for _, occ := range occs {
		slog.Info("reminder",
			"id", occ.Event.ID,
			"title", occ.Event.Title,
			"type", occ.Event.EventType,
			"start", jalali.FormatClock(occ.Start),
		)
	}
	return nil
}

var ErrInvalidWebhookURL = errors.New("expected https://discord.com/api/webhooks/<id>/<token>")

// DiscordNotifier posts reminders as embeds through a channel webhook, no
// bot login needed.
type DiscordNotifier struct {
	session   *discordgo.Session
	webhookID string
	token     string
}

func NewDiscordNotifier(webhookURL string) (*DiscordNotifier, error) {
	id, token, err := parseWebhookURL(webhookURL)
	if err != nil {
		return nil, fmt.Errorf("NewDiscordNotifier: %w", err)
	}
	session, err := discordgo.New("")
	if err != nil {
		return nil, fmt.Errorf("NewDiscordNotifier: %w", err)
	}
	return &DiscordNotifier{session: session, webhookID: id, token: token}, nil
}

func parseWebhookURL(raw string) (string, string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", err
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	// api/webhooks/<id>/<token>, optionally api/v10/webhooks/...
	for i := 0; i+2 < len(parts); i++ {
		if parts[i] == "webhooks" && parts[i+1] != "" && parts[i+2] != "" {
			return parts[i+1], parts[i+2], nil
		}
	}
	return "", "", ErrInvalidWebhookURL
}

// Discord caps a message at 10 embeds.
const embedsPerMessage = 10

func (d *DiscordNotifier) Notify(ctx context.Context, occs []agenda.Occurrence) error {
	embeds := make([]*discordgo.MessageEmbed, len(occs))
	for i, occ := range occs {
		embeds[i] = occ.Event.ToDiscordEmbed(occ.Start, jalali.FormatWithWeekday(occ.Day)+" "+agenda.TimeText(occ.Event))
	}

	for start := 0; start < len(embeds); start += embedsPerMessage {
		end := min(start+embedsPerMessage, len(embeds))
		startTimer := time.Now()
		if _, err := d.session.WebhookExecute(d.webhookID, d.token, false, &discordgo.WebhookParams{
			Content: "یادآوری رویداد",
			Embeds:  embeds[start:end],
		}, discordgo.WithContext(ctx)); err != nil {
			return fmt.Errorf("(*DiscordNotifier).Notify: %w", err)
		}
		slog.Debug("discord reminder sent", "count", end-start, "took", time.Since(startTimer))
	}
	return nil
}
