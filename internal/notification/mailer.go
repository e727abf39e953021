package notification

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/hr-management/internal"
	"gopkg.in/gomail.v2"
)

type Mailer interface {
	Send(ctx context.Context, to []string, subject, body string) error
}

type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPMailer(cfg internal.MailConfig) *SMTPMailer {
	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	dialer.TLSConfig = &tls.Config{
		ServerName: cfg.Host,
		MinVersion: tls.VersionTLS12,
	}
	return &SMTPMailer{dialer: dialer, from: cfg.From}
}

func (m *SMTPMailer) Send(ctx context.Context, to []string, subject, body string) error {
	if len(to) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := gomail.NewMessage(
		gomail.SetCharset("UTF-8"),
		gomail.SetEncoding(gomail.Base64),
	)
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to...)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// LogMailer stands in when SMTP is not configured.
type LogMailer struct {
	Logger *slog.Logger
}

func (m LogMailer) Send(_ context.Context, to []string, subject, _ string) error {
	m.Logger.Info("mail delivery disabled, skipping", "to", to, "subject", subject)
	return nil
}

// NewMailer picks SMTP when a host is configured.
func NewMailer(cfg internal.MailConfig, logger *slog.Logger) Mailer {
	if cfg.Enabled() {
		return NewSMTPMailer(cfg)
	}
	return LogMailer{Logger: logger}
}
