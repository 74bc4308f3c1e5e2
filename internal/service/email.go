package service

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"gopkg.in/gomail.v2"

	"blackrent-backend/internal/config"
	"blackrent-backend/internal/logger"
)

// NewNotifier returns the notifier for the configured provider
func NewNotifier(cfg config.EmailConfig) Notifier {
	switch cfg.Provider {
	case "smtp":
		return NewSMTPNotifier(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.From, cfg.FromName)
	case "sendgrid":
		return NewSendGridNotifier(cfg.SendGridAPIKey, cfg.From, cfg.FromName)
	default:
		return noopNotifier{}
	}
}

type smtpNotifier struct {
	dialer   *gomail.Dialer
	from     string
	fromName string
}

func NewSMTPNotifier(host string, port int, username, password, from, fromName string) Notifier {
	return &smtpNotifier{
		dialer:   gomail.NewDialer(host, port, username, password),
		from:     from,
		fromName: fromName,
	}
}

func (n *smtpNotifier) Send(ctx context.Context, to []string, subject, body string) error {
	if len(to) == 0 {
		return nil
	}
	m := gomail.NewMessage()
	m.SetAddressHeader("From", n.from, n.fromName)
	m.SetHeader("To", to...)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	logger.ExternalServiceCall("smtp", "send", "to", to, "subject", subject)
	err := n.dialer.DialAndSend(m)
	logger.ExternalServiceResult("smtp", "send", err, "to", to)
	if err != nil {
		return fmt.Errorf("failed to send email via smtp: %w", err)
	}
	return nil
}

type sendGridNotifier struct {
	client   *sendgrid.Client
	from     string
	fromName string
}

func NewSendGridNotifier(apiKey, from, fromName string) Notifier {
	return &sendGridNotifier{
		client:   sendgrid.NewSendClient(apiKey),
		from:     from,
		fromName: fromName,
	}
}

func (n *sendGridNotifier) Send(ctx context.Context, to []string, subject, body string) error {
	if len(to) == 0 {
		return nil
	}
	message := mail.NewV3Mail()
	message.SetFrom(mail.NewEmail(n.fromName, n.from))
	message.Subject = subject

	personalization := mail.NewPersonalization()
	for _, addr := range to {
		personalization.AddTos(mail.NewEmail("", addr))
	}
	message.AddPersonalizations(personalization)
	message.AddContent(mail.NewContent("text/plain", body))

	logger.ExternalServiceCall("sendgrid", "send", "to", to, "subject", subject)
	response, err := n.client.SendWithContext(ctx, message)
	if err == nil && response.StatusCode >= 400 {
		err = fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
	}
	logger.ExternalServiceResult("sendgrid", "send", err, "to", to)
	if err != nil {
		return fmt.Errorf("failed to send email via sendgrid: %w", err)
	}
	return nil
}

type noopNotifier struct{}

func (noopNotifier) Send(ctx context.Context, to []string, subject, body string) error {
	logger.Debug("E-mail delivery disabled, dropping message", "to", to, "subject", subject)
	return nil
}
