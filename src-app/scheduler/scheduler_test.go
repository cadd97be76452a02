package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"rooydad/src-app/agenda"
	"rooydad/src-app/model"
	"rooydad/src-app/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 3, 20, 10, 0, 0, 0, time.UTC)

func newTestAppState(t *testing.T) *utils.AppState {
	t.Helper()
	t.Setenv("TIMEZONE", "UTC")
	t.Setenv("REMINDER_LEAD", "15m")
	config, err := utils.NewConfig()
	require.NoError(t, err)
	as, err := utils.NewAppState(config, ":memory:")
	require.NoError(t, err)
	as.Now = func() time.Time { return now }
	t.Cleanup(as.GracefulShutdown)
	require.NoError(t, model.CreateSchema(context.Background(), as.BunDB))
	return as
}

func TestRunOnce(t *testing.T) {
	ctx := context.Background()
	as := newTestAppState(t)
	for _, e := range []*model.Event{
		{Title: "soon", EventType: "x", Date: "2024-03-20", Time: "10:10", RecurringDay: model.NoRecurringDay},
		{Title: "later", EventType: "x", Date: "2024-03-20", Time: "11:00", RecurringDay: model.NoRecurringDay},
		{Title: "weekly", EventType: "x", Time: "10:05", IsRecurring: true, RecurringDay: 4},
	} {
		require.NoError(t, e.Insert(ctx, as.BunDB))
	}

	var got []string
	collect := NotifierFunc(func(_ context.Context, occs []agenda.Occurrence) error {
		for _, occ := range occs {
			got = append(got, occ.Event.Title)
		}
		return nil
	})
	failing := NotifierFunc(func(context.Context, []agenda.Occurrence) error {
		return errors.New("offline")
	})
	r := NewReminder(as, failing, collect)

	n, err := r.RunOnce(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"weekly", "soon"}, got)

	// case: already reminded
	n, err = r.RunOnce(ctx, now.Add(time.Minute))
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Len(t, got, 2)

	// case: the next one comes into the window
	n, err = r.RunOnce(ctx, now.Add(50*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, "later", got[2])

	// case: next week's occurrence of the recurring event is reminded again
	n, err = r.RunOnce(ctx, now.AddDate(0, 0, 7))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, "weekly", got[3])

	select {
	case v := <-as.MetricChans.ReminderSent:
		assert.Equal(t, float64(2), v)
	default:
		t.Fatal("reminder count not reported")
	}
}

func TestParseWebhookURL(t *testing.T) {
	id, token, err := parseWebhookURL("https://discord.com/api/webhooks/123456/abc-DEF_tok")
	require.NoError(t, err)
	assert.Equal(t, "123456", id)
	assert.Equal(t, "abc-DEF_tok", token)

	id, token, err = parseWebhookURL("https://discord.com/api/v10/webhooks/42/xyz/")
	require.NoError(t, err)
	assert.Equal(t, "42", id)
	assert.Equal(t, "xyz", token)

	for _, raw := range []string{"https://discord.com/api/webhooks/42", "https://example.com/hook", "::"} {
		_, _, err := parseWebhookURL(raw)
		assert.Error(t, err, raw)
	}
}

func TestNotifiersFromConfig(t *testing.T) {
	t.Setenv("DISCORD_WEBHOOK_URL", "")
	config, err := utils.NewConfig()
	require.NoError(t, err)
	assert.Empty(t, NotifiersFromConfig(config))

	t.Setenv("DISCORD_WEBHOOK_URL", "https://discord.com/api/webhooks/1/token")
	config, err = utils.NewConfig()
	require.NoError(t, err)
	notifiers := NotifiersFromConfig(config)
	require.Len(t, notifiers, 1)
	assert.IsType(t, &DiscordNotifier{}, notifiers[0])
}

func TestStartRejectsBadCron(t *testing.T) {
	as := newTestAppState(t)
	t.Setenv("REMINDER_CRON", "every minute")
	config, err := utils.NewConfig()
	require.NoError(t, err)
	as.Config = config
	assert.Error(t, NewReminder(as).Start())
}
