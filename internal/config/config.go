package config

import (
	"os"
	"time"
)

type Config struct {
	DatabaseURL string
	HTTPAddr    string
	LogLevel    string
	Env         string // dev|prod
	Location    *time.Location

	SentryDSN string

	// почтовый коллаборатор (sendgrid); пустой ключ => консольный бэкенд
	SendgridAPIKey string
	MailFrom       string
	MailFromName   string

	// опциональный телеграм-канал уведомлений родителей
	BotToken string
}

func Load() (*Config, error) {
	tz := getenv("TZ", "Europe/Paris")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		loc = time.Local
	}

	cfg := &Config{
		DatabaseURL:    mustEnv("DATABASE_URL"),
		HTTPAddr:       getenv("HTTP_ADDR", ":8080"),
		LogLevel:       getenv("LOG_LEVEL", "info"),
		Env:            getenv("ENV", "dev"),
		Location:       loc,
		SentryDSN:      os.Getenv("SENTRY_DSN"),
		SendgridAPIKey: os.Getenv("SENDGRID_API_KEY"),
		MailFrom:       getenv("MAIL_FROM", "no-reply@ecoleplus.app"),
		MailFromName:   getenv("MAIL_FROM_NAME", "EcolePlus"),
		BotToken:       os.Getenv("BOT_TOKEN"),
	}
	return cfg, nil
}

func mustEnv(k string) string {
	v := os.Getenv(k)
	if v == "" {
		panic("required env " + k + " is empty")
	}
	return v
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
