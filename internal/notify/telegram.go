package notify

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/ecoleplus/server/internal/metrics"
)

// TelegramNotifier — второй канал для родителей, привязавших чат.
// Временные пароли в телеграм не шлём.
type TelegramNotifier struct {
	bot *tgbotapi.BotAPI
	log *zap.Logger
}

var _ Notifier = (*TelegramNotifier)(nil)

func NewTelegram(bot *tgbotapi.BotAPI, log *zap.Logger) *TelegramNotifier {
	return &TelegramNotifier{bot: bot, log: log}
}

func (t *TelegramNotifier) SendTemporaryPassword(ctx context.Context, email, name, tempPassword string) {
}

func (t *TelegramNotifier) SendLifeEventNotice(ctx context.Context, n LifeEventNotice) {
	if n.ParentChatID == nil {
		return
	}
	text := fmt.Sprintf("%s: %s — %s (%s)\nMotif: %s",
		n.SchoolName, n.StudentName, eventLabel(n.EventType),
		n.OccurredAt.Format("02/01/2006 15:04"), n.Reason)
	if _, err := t.bot.Send(tgbotapi.NewMessage(*n.ParentChatID, text)); err != nil {
		metrics.NotifyErrors.WithLabelValues("telegram").Inc()
		t.log.Warn("телеграм-уведомление не отправлено", zap.Int64("chat_id", *n.ParentChatID), zap.Error(err))
		return
	}
	metrics.NotifySent.WithLabelValues("telegram").Inc()
}
