package utils

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"
)

type Config struct {
	dbPath  string
	logFile string
	port    string

	location   *time.Location
	eventTypes []string

	reminderCron      string
	reminderLead      time.Duration
	discordWebhookURL string

	metricCollectionInterval time.Duration
}

// NewConfig reads the environment once. Call godotenv.Load before it.
func NewConfig() (*Config, error) {
	var errs []error

	c := &Config{
		dbPath: func() string {
			dbPath := os.Getenv("DB_PATH")
			if dbPath == "" {
				dbPath = "./events.db"
			}
			slog.Debug("env", "DB_PATH", dbPath)
			return dbPath
		}(),
		logFile: func() string {
			logFile := os.Getenv("LOG_FILE")
			if logFile == "" {
				logFile = "rooydad.log"
			}
			slog.Debug("env", "LOG_FILE", logFile)
			return logFile
		}(),
		port: func() string {
			port := os.Getenv("PORT")
			if port == "" {
				port = "8080"
			}
			slog.Debug("env", "PORT", port)
			return port
		}(),

		location: func() *time.Location {
			timezoneStr := os.Getenv("TIMEZONE")
			var loc *time.Location
			var err error
			switch timezoneStr {
			case "":
				slog.Debug("TIMEZONE is not set, using local timezone", "timezone", time.Local)
				loc = time.Local
			case "UTC":
				loc = time.UTC
			default:
				loc, err = time.LoadLocation(timezoneStr)
				if err != nil {
					errs = append(errs, fmt.Errorf("invalid TIMEZONE %q: %w", timezoneStr, err))
					return time.Local
				}
			}
			slog.Debug("env", "TIMEZONE", timezoneStr)
			return loc
		}(),
		eventTypes: func() []string {
			eventTypes := ParseEventTypes(os.Getenv("EVENT_TYPES"))
			slog.Debug("env", "EVENT_TYPES", eventTypes)
			return eventTypes
		}(),

		reminderCron: func() string {
			reminderCron := os.Getenv("REMINDER_CRON")
			if reminderCron == "" {
				reminderCron = "* * * * *"
			}
			slog.Debug("env", "REMINDER_CRON", reminderCron)
			return reminderCron
		}(),
		reminderLead: func() time.Duration {
			reminderLead := os.Getenv("REMINDER_LEAD")
			if reminderLead == "" {
				reminderLead = "15m"
			}
			duration, err := time.ParseDuration(reminderLead)
			if err != nil || duration <= 0 {
				errs = append(errs, fmt.Errorf("invalid REMINDER_LEAD %q", reminderLead))
				return 15 * time.Minute
			}
			slog.Debug("env", "REMINDER_LEAD", reminderLead, "duration", duration)
			return duration
		}(),
		discordWebhookURL: func() string {
			webhookURL := strings.TrimSpace(os.Getenv("DISCORD_WEBHOOK_URL"))
			if webhookURL == "" {
				return ""
			}
			if _, err := url.ParseRequestURI(webhookURL); err != nil {
				errs = append(errs, fmt.Errorf("invalid DISCORD_WEBHOOK_URL: %w", err))
				return ""
			}
			slog.Debug("env", "DISCORD_WEBHOOK_URL", "set")
			return webhookURL
		}(),

		metricCollectionInterval: func() time.Duration {
			interval := os.Getenv("METRIC_INTERVAL")
			if interval == "" {
				interval = "10s"
			}
			duration, err := time.ParseDuration(interval)
			if err != nil || duration <= 0 {
				errs = append(errs, fmt.Errorf("invalid METRIC_INTERVAL %q", interval))
				return 10 * time.Second
			}
			slog.Debug("env", "METRIC_INTERVAL", interval)
			return duration
		}(),
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("NewConfig: %w", errors.Join(errs...))
	}
	return c, nil
}

// DefaultEventTypes mirrors the categories offered by the entry form; the
// last one is preselected.
var DefaultEventTypes = []string{"امتحان", "تمرین", "کلاس", "جلسه", "تحقیق", "ارائه", "سایر"}

// ParseEventTypes splits a comma separated list, falling back to DefaultEventTypes.
func ParseEventTypes(raw string) []string {
	eventTypes := make([]string, 0)
	for _, t := range strings.Split(raw, ",") {
		if t = CleanupString(t); t != "" {
			eventTypes = append(eventTypes, t)
		}
	}
	if len(eventTypes) == 0 {
		return append([]string(nil), DefaultEventTypes...)
	}
	return eventTypes
}

// Get DB_PATH env, default to ./events.db
func (c *Config) GetDBPath() string {
	return c.dbPath
}

// Get LOG_FILE env, default to rooydad.log
func (c *Config) GetLogFile() string {
	return c.logFile
}

// Get PORT env, default to 8080
func (c *Config) GetPort() string {
	return c.port
}

// Get TIMEZONE env
func (c *Config) GetLocation() *time.Location {
	return c.location
}

// Get EVENT_TYPES env
func (c *Config) GetEventTypes() []string {
	return c.eventTypes
}

// The type preselected in entry forms.
func (c *Config) GetDefaultEventType() string {
	return c.eventTypes[len(c.eventTypes)-1]
}

// Get REMINDER_CRON env, default to every minute
func (c *Config) GetReminderCron() string {
	return c.reminderCron
}

// Get REMINDER_LEAD env, default to 15m
func (c *Config) GetReminderLead() time.Duration {
	return c.reminderLead
}

// Get DISCORD_WEBHOOK_URL env
func (c *Config) GetDiscordWebhookURL() string {
	return c.discordWebhookURL
}

// Get METRIC_INTERVAL env, default to 10s
func (c *Config) GetMetricCollectionInterval() time.Duration {
	return c.metricCollectionInterval
}
