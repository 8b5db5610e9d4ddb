package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/ecoleplus/server/internal/app"
	"github.com/ecoleplus/server/internal/config"
	"github.com/ecoleplus/server/internal/db"
	"github.com/ecoleplus/server/internal/jobs"
	"github.com/ecoleplus/server/internal/lifeevents"
	"github.com/ecoleplus/server/internal/logging"
	"github.com/ecoleplus/server/internal/notify"
	"github.com/ecoleplus/server/internal/observability"
)

func main() {
	// Загрузка переменных окружения
	if err := godotenv.Load(); err != nil {
		log.Println("Не удалось загрузить .env файл, используем переменные окружения")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Ошибка конфигурации: %v", err)
	}

	lg, err := logging.Init(cfg.LogLevel, cfg.Env)
	if err != nil {
		log.Fatalf("Ошибка инициализации логгера: %v", err)
	}
	defer lg.Closer()

	flushSentry, err := observability.InitSentry(cfg.SentryDSN, cfg.Env, "ecoleplus-server")
	if err != nil {
		lg.Base.Warn("sentry не инициализирован", zap.Error(err))
	}
	defer flushSentry()

	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		lg.Base.Fatal("Ошибка подключения к БД", zap.Error(err))
	}
	defer func() { _ = database.Close() }()

	if err := db.Migrate(database); err != nil {
		lg.Base.Fatal("Миграция не удалась", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// каналы уведомлений: sendgrid (или консоль в dev) + опционально телеграм
	var notifier notify.Fanout
	if cfg.SendgridAPIKey != "" {
		notifier = append(notifier, notify.NewSendgrid(cfg.SendgridAPIKey, cfg.MailFrom, cfg.MailFromName, lg.Base))
	} else {
		notifier = append(notifier, notify.NewConsole(lg.Base))
	}
	if cfg.BotToken != "" {
		bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
		if err != nil {
			lg.Base.Warn("телеграм-канал выключен", zap.Error(err))
		} else {
			notifier = append(notifier, notify.NewTelegram(bot, lg.Base))
		}
	}
	runner := jobs.New(ctx)
	runner.Every(24*time.Hour, "refresh_stats", jobs.RefreshStats(database))

	svcs := &app.Services{
		DB:         database,
		Log:        lg.Base,
		LifeEvents: lifeevents.New(database, lg.Base, notifier),
	}
	app.StartHTTP(ctx, cfg.HTTPAddr, database, svcs)

	lg.Base.Info("сервер запущен", zap.String("addr", cfg.HTTPAddr), zap.String("env", cfg.Env))
	<-ctx.Done()
	lg.Base.Info("остановка по сигналу")
}
