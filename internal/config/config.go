package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	DatabaseURL string
	RedisURL    string

	GmailWebhook string
	GmailToken   string
	EnvPath      string

	ClassifyMode     string
	AlertWindowHours int
	BackfillHours    int
	SignalWindowDays int
	AlertPollSecs    int
	MailTimeoutSecs  int

	BackupFile   string
	CalendarURL  string
	CalendarCron string

	TelegramBotToken string
	TelegramChatID   int64

	APIKey string
}

func Load() *Config {
	cfg := &Config{
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		RedisURL:         os.Getenv("REDIS_URL"),
		GmailWebhook:     os.Getenv("GMAIL_WEBHOOK"),
		GmailToken:       os.Getenv("GMAIL_TOKEN"),
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		APIKey:           os.Getenv("API_KEY"),
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = dsnFromParts()
	}
	if cfg.DatabaseURL == "" {
		log.Println("Warning: DATABASE_URL not set")
	}
	if cfg.RedisURL == "" {
		log.Println("Warning: REDIS_URL not set, indicator snapshot mirroring disabled")
	}
	if cfg.GmailWebhook == "" {
		log.Println("Warning: GMAIL_WEBHOOK not set, mailbox polling will be unavailable")
	}

	cfg.EnvPath = strings.TrimSpace(os.Getenv("ENV_PATH"))
	if cfg.EnvPath == "" {
		cfg.EnvPath = ".env"
	}

	cfg.ClassifyMode = strings.ToLower(strings.TrimSpace(os.Getenv("ALERT_CLASSIFY_MODE")))
	if cfg.ClassifyMode == "" {
		cfg.ClassifyMode = "subject"
	}
	if cfg.ClassifyMode != "subject" && cfg.ClassifyMode != "body" {
		log.Printf("Warning: unsupported ALERT_CLASSIFY_MODE=%q, defaulting to subject", cfg.ClassifyMode)
		cfg.ClassifyMode = "subject"
	}

	cfg.AlertWindowHours = 4
	if v := os.Getenv("ALERT_WINDOW_HOURS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.AlertWindowHours = n
		}
	}

	cfg.BackfillHours = 23
	if v := os.Getenv("ALERT_BACKFILL_HOURS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.BackfillHours = n
		}
	}

	cfg.SignalWindowDays = 2
	if v := os.Getenv("SIGNAL_WINDOW_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.SignalWindowDays = n
		}
	}

	cfg.AlertPollSecs = 0
	if v := os.Getenv("ALERT_POLL_SECS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.AlertPollSecs = n
		}
	}

	cfg.MailTimeoutSecs = 30
	if v := os.Getenv("MAIL_TIMEOUT_SECS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MailTimeoutSecs = n
		}
	}

	cfg.BackupFile = strings.TrimSpace(os.Getenv("BACKUP_FILE"))
	if cfg.BackupFile == "" {
		cfg.BackupFile = "indicator_backup.json"
	}

	cfg.CalendarURL = strings.TrimSpace(os.Getenv("CALENDAR_URL"))
	if cfg.CalendarURL == "" {
		cfg.CalendarURL = "https://tradingeconomics.com/calendar"
	}

	cfg.CalendarCron = strings.TrimSpace(os.Getenv("CALENDAR_CRON"))
	if cfg.CalendarCron == "" {
		cfg.CalendarCron = "0 */6 * * *"
	}

	if v := strings.TrimSpace(os.Getenv("TELEGRAM_CHAT_ID")); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.TelegramChatID = n
		} else {
			log.Printf("Warning: invalid TELEGRAM_CHAT_ID=%q, alert pushes disabled", v)
		}
	}

	return cfg
}

// dsnFromParts assembles a Postgres URL from the discrete DB_* variables.
func dsnFromParts() string {
	host := os.Getenv("DB_HOST")
	if host == "" {
		return ""
	}
	port := os.Getenv("DB_PORT")
	if port == "" {
		port = "5432"
	}
	user := os.Getenv("DB_USER")
	pass := os.Getenv("DB_PASSWORD")
	name := os.Getenv("WEB_DB_NAME")
	if name == "" {
		name = os.Getenv("DB_NAME")
	}

	auth := url.UserPassword(user, pass).String()
	if pass == "" {
		auth = url.User(user).String()
	}
	return fmt.Sprintf("postgres://%s@%s:%s/%s", auth, host, port, name)
}
