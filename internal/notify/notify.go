// Package notify — best-effort уведомления. Ошибки канала логируются,
// считаются в метриках и никогда не возвращаются вызывающему: запись в
// журнале к этому моменту уже зафиксирована в БД.
package notify

import (
	"context"
	"time"

	"github.com/ecoleplus/server/internal/models"
)

// LifeEventNotice — данные для уведомления родителя о событии ученика.
type LifeEventNotice struct {
	ParentName     string
	ParentEmail    string
	ParentChatID   *int64
	StudentName    string
	SchoolName     string
	EventType      models.LifeEventType
	OccurredAt     time.Time
	Reason         string
	DurationMinute *int
}

// Notifier — «выстрелил и забыл»: реализации не возвращают ошибок.
type Notifier interface {
	SendTemporaryPassword(ctx context.Context, email, name, tempPassword string)
	SendLifeEventNotice(ctx context.Context, n LifeEventNotice)
}

// Fanout рассылает во все каналы; отказ одного получателя/канала не
// останавливает остальных.
type Fanout []Notifier

var _ Notifier = (Fanout)(nil)

func (f Fanout) SendTemporaryPassword(ctx context.Context, email, name, tempPassword string) {
	for _, n := range f {
		n.SendTemporaryPassword(ctx, email, name, tempPassword)
	}
}

func (f Fanout) SendLifeEventNotice(ctx context.Context, notice LifeEventNotice) {
	for _, n := range f {
		n.SendLifeEventNotice(ctx, notice)
	}
}

func eventLabel(t models.LifeEventType) string {
	switch t {
	case models.LifeEventAbsence:
		return "absence"
	case models.LifeEventRetard:
		return "retard"
	case models.LifeEventSanction:
		return "sanction"
	case models.LifeEventPunition:
		return "punition"
	default:
		return string(t)
	}
}
