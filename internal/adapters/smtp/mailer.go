package smtp

import (
	"context"
	"os"
	"time"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"github.com/qpago/serfinsa-settler/internal/config"
	"github.com/qpago/serfinsa-settler/internal/domain"
	"github.com/qpago/serfinsa-settler/internal/domain/ports"
	"github.com/qpago/serfinsa-settler/pkg/resilience"
)

const maxSendAttempts = 3

// Mailer implements ports.Mailer over an SMTP relay. Transient relay
// failures are retried with exponential backoff before the send is given
// up on.
type Mailer struct {
	cfg     config.MailConfig
	backoff resilience.BackoffStrategy
	logger  *zap.Logger
}

// NewMailer creates a new SMTP mailer
func NewMailer(cfg config.MailConfig, logger *zap.Logger) *Mailer {
	return &Mailer{cfg: cfg, backoff: resilience.MailBackoff(), logger: logger}
}

// Send delivers one notification email. Attachments that no longer exist
// on disk are skipped with a warning rather than failing the send.
func (m *Mailer) Send(ctx context.Context, email *ports.Email) error {
	msg := mail.NewMsg()
	if err := msg.FromFormat(m.cfg.FromName, m.cfg.FromAddress); err != nil {
		return domain.WrapError(domain.ErrorCodeNotifySendFailed, "invalid sender address", err)
	}
	if err := msg.To(email.To); err != nil {
		return domain.WrapError(domain.ErrorCodeNotifySendFailed, "invalid recipient address", err).
			WithDetail("to", email.To)
	}
	msg.Subject(email.Subject)
	msg.SetBodyString(mail.TypeTextHTML, email.HTMLBody)

	for _, path := range email.Attachments {
		if _, err := os.Stat(path); err != nil {
			m.logger.Warn("Attachment missing, skipping", zap.String("path", path), zap.Error(err))
			continue
		}
		msg.AttachFile(path)
	}

	opts := []mail.Option{
		mail.WithPort(m.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(m.cfg.Username),
		mail.WithPassword(m.cfg.Password),
	}
	switch m.cfg.Encryption {
	case "ssl":
		opts = append(opts, mail.WithSSL())
	case "none":
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	default:
		// STARTTLS, the relay's documented mode.
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	}

	client, err := mail.NewClient(m.cfg.Host, opts...)
	if err != nil {
		return domain.WrapError(domain.ErrorCodeNotifySendFailed, "create SMTP client", err).
			WithDetail("host", m.cfg.Host)
	}

	var sendErr error
	for attempt := 0; attempt < maxSendAttempts; attempt++ {
		if attempt > 0 {
			delay := m.backoff.NextDelay(attempt - 1)
			m.logger.Warn("Retrying email delivery",
				zap.Int("attempt", attempt+1),
				zap.Duration("delay", delay),
				zap.Error(sendErr),
			)
			select {
			case <-ctx.Done():
				return domain.WrapError(domain.ErrorCodeNotifySendFailed, "send email", ctx.Err()).
					WithDetail("to", email.To)
			case <-time.After(delay):
			}
		}
		if sendErr = client.DialAndSendWithContext(ctx, msg); sendErr == nil {
			break
		}
	}
	if sendErr != nil {
		return domain.WrapError(domain.ErrorCodeNotifySendFailed, "send email", sendErr).
			WithDetail("to", email.To).
			WithDetail("subject", email.Subject)
	}

	m.logger.Info("Email sent",
		zap.String("to", email.To),
		zap.String("subject", email.Subject),
		zap.Int("attachments", len(email.Attachments)),
	)
	return nil
}
