// Package notification delivers booking lifecycle emails as a best-effort
// side channel. Nothing in here may fail a booking request.
package notification

import (
	"context"
	"log/slog"

	"gopkg.in/gomail.v2"
)

// Message is a rendered email ready for delivery.
type Message struct {
	To       string
	Subject  string
	TextBody string
	HTMLBody string
}

// Mailer sends a single email.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPMailer delivers through an SMTP relay. A fresh connection is dialed per
// message; the sending volume of a one-person practice does not justify a
// persistent connection.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPMailer constructs a mailer for the given relay and sender address.
func NewSMTPMailer(host string, port int, username, password, from string) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

// Send delivers the message through the relay.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	_ = ctx

	mail := gomail.NewMessage()
	mail.SetHeader("From", m.from)
	mail.SetHeader("To", msg.To)
	mail.SetHeader("Subject", msg.Subject)
	mail.SetBody("text/plain", msg.TextBody)
	mail.AddAlternative("text/html", msg.HTMLBody)

	return m.dialer.DialAndSend(mail)
}

// LogMailer writes the email to the log instead of sending it. Used when no
// SMTP relay is configured, typically in development.
type LogMailer struct {
	logger *slog.Logger
}

// NewLogMailer constructs a log-only mailer.
func NewLogMailer(logger *slog.Logger) *LogMailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogMailer{logger: logger}
}

// Send logs the message and reports success.
func (m *LogMailer) Send(ctx context.Context, msg Message) error {
	m.logger.InfoContext(ctx, "email delivery skipped, no relay configured",
		"to", msg.To,
		"subject", msg.Subject,
	)
	return nil
}
