package notify

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"

	"github.com/ecoleplus/server/internal/metrics"
	"github.com/ecoleplus/server/internal/observability"
)

type SendgridNotifier struct {
	client *sendgrid.Client
	from   *sgmail.Email
	log    *zap.Logger
}

var _ Notifier = (*SendgridNotifier)(nil)

func NewSendgrid(apiKey, fromEmail, fromName string, log *zap.Logger) *SendgridNotifier {
	return &SendgridNotifier{
		client: sendgrid.NewSendClient(apiKey),
		from:   sgmail.NewEmail(fromName, fromEmail),
		log:    log,
	}
}

func (s *SendgridNotifier) SendTemporaryPassword(ctx context.Context, email, name, tempPassword string) {
	subject := "Votre mot de passe temporaire"
	body := fmt.Sprintf("Bonjour %s,\n\nVotre mot de passe temporaire: %s\nMerci de le changer à la première connexion.", name, tempPassword)
	s.send(ctx, sgmail.NewEmail(name, email), subject, body)
}

func (s *SendgridNotifier) SendLifeEventNotice(ctx context.Context, n LifeEventNotice) {
	if n.ParentEmail == "" {
		return
	}
	subject := fmt.Sprintf("[%s] %s — %s", n.SchoolName, n.StudentName, eventLabel(n.EventType))
	body := fmt.Sprintf("Bonjour %s,\n\nUn événement a été enregistré pour %s le %s: %s.\nMotif: %s\n",
		n.ParentName, n.StudentName, n.OccurredAt.Format("02/01/2006 15:04"), eventLabel(n.EventType), n.Reason)
	if n.DurationMinute != nil {
		body += fmt.Sprintf("Durée: %d min\n", *n.DurationMinute)
	}
	s.send(ctx, sgmail.NewEmail(n.ParentName, n.ParentEmail), subject, body)
}

func (s *SendgridNotifier) send(ctx context.Context, to *sgmail.Email, subject, body string) {
	msg := sgmail.NewSingleEmail(s.from, subject, to, body, "")
	resp, err := s.client.SendWithContext(ctx, msg)
	if err != nil {
		metrics.NotifyErrors.WithLabelValues("mail").Inc()
		observability.CaptureTagged("notify", err)
		s.log.Warn("почтовое уведомление не отправлено", zap.String("to", to.Address), zap.Error(err))
		return
	}
	if resp.StatusCode >= 400 {
		metrics.NotifyErrors.WithLabelValues("mail").Inc()
		s.log.Warn("sendgrid ответил ошибкой", zap.String("to", to.Address), zap.Int("status", resp.StatusCode))
		return
	}
	metrics.NotifySent.WithLabelValues("mail").Inc()
}
