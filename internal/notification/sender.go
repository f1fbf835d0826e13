package notification

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// Email is one outbound message.
type Email struct {
	To       []string
	Subject  string
	TextBody string
	HTMLBody string
}

// Sender delivers emails.
type Sender interface {
	Send(ctx context.Context, email Email) error
}

// SMTPConfig holds SMTP relay settings.
type SMTPConfig struct {
	Host        string
	Port        int
	Username    string
	Password    string
	SenderEmail string
	Encryption  string // none, ssl or starttls
}

// SMTPSender sends email through an SMTP relay with gomail.
type SMTPSender struct {
	from   string
	dialer *gomail.Dialer
	logger *zap.Logger
}

// NewSMTPSender validates cfg and builds a dialer.
func NewSMTPSender(cfg SMTPConfig, logger *zap.Logger) (*SMTPSender, error) {
	if cfg.Host == "" || cfg.Port == 0 || cfg.SenderEmail == "" {
		return nil, fmt.Errorf("SMTP host, port, and sender email must be configured")
	}

	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	switch strings.ToLower(cfg.Encryption) {
	case "ssl":
		dialer.SSL = true
		dialer.TLSConfig = &tls.Config{ServerName: cfg.Host, MinVersion: tls.VersionTLS12}
	case "tls", "starttls":
		dialer.TLSConfig = &tls.Config{ServerName: cfg.Host, MinVersion: tls.VersionTLS12}
	}

	return &SMTPSender{from: cfg.SenderEmail, dialer: dialer, logger: logger}, nil
}

// Send dials the relay and delivers email, giving up when ctx is done.
func (s *SMTPSender) Send(ctx context.Context, email Email) error {
	if len(email.To) == 0 {
		return fmt.Errorf("no recipients provided for email")
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", email.To...)
	m.SetHeader("Subject", email.Subject)

	switch {
	case email.HTMLBody != "":
		m.SetBody("text/html", email.HTMLBody)
		if email.TextBody != "" {
			m.AddAlternative("text/plain", email.TextBody)
		}
	case email.TextBody != "":
		m.SetBody("text/plain", email.TextBody)
	default:
		return fmt.Errorf("email body (HTML or Text) must be provided")
	}

	done := make(chan error, 1)
	go func() {
		done <- s.dialer.DialAndSend(m)
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("email sending cancelled or timed out: %w", ctx.Err())
	case err := <-done:
		if err != nil {
			return fmt.Errorf("failed to send email: %w", err)
		}
	}

	s.logger.Info("email sent", zap.Strings("to", email.To), zap.String("subject", email.Subject))
	return nil
}

// LogSender logs emails instead of sending them. Used when SMTP is disabled.
type LogSender struct {
	logger *zap.Logger
}

// NewLogSender creates a LogSender.
func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// Send logs the email.
func (s *LogSender) Send(_ context.Context, email Email) error {
	s.logger.Info("email suppressed (smtp disabled)",
		zap.Strings("to", email.To),
		zap.String("subject", email.Subject),
	)
	return nil
}
