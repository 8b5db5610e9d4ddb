package notify

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// ConsoleNotifier — dev/тестовый бэкенд: пишет в лог и копит отправленное.
type ConsoleNotifier struct {
	log *zap.Logger

	mu      sync.Mutex
	Notices []LifeEventNotice
}

var _ Notifier = (*ConsoleNotifier)(nil)

func NewConsole(log *zap.Logger) *ConsoleNotifier {
	return &ConsoleNotifier{log: log}
}

func (c *ConsoleNotifier) SendTemporaryPassword(ctx context.Context, email, name, tempPassword string) {
	c.log.Info("временный пароль (console)", zap.String("email", email), zap.String("name", name))
}

func (c *ConsoleNotifier) SendLifeEventNotice(ctx context.Context, n LifeEventNotice) {
	c.mu.Lock()
	c.Notices = append(c.Notices, n)
	c.mu.Unlock()
	c.log.Info("уведомление родителю (console)",
		zap.String("parent", n.ParentName),
		zap.String("student", n.StudentName),
		zap.String("type", string(n.EventType)),
	)
}

// Sent — снимок накопленных уведомлений (для тестов).
func (c *ConsoleNotifier) Sent() []LifeEventNotice {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]LifeEventNotice, len(c.Notices))
	copy(out, c.Notices)
	return out
}
