// Package mail is the outbound notification port. Deliveries are best
// effort: callers dispatch them after the primary operation has committed
// and never wait on the result.
package mail

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/pomodorify/core/internal/infrastructure/config"
	"github.com/pomodorify/core/internal/infrastructure/logger"
)

// Notifier sends account lifecycle emails.
type Notifier interface {
	SendVerificationEmail(ctx context.Context, to, name, code string) error
	SendWelcomeEmail(ctx context.Context, to, name string) error
	SendPasswordResetEmail(ctx context.Context, to, resetURL string) error
	SendResetSuccessEmail(ctx context.Context, to string) error
}

// NewNotifier returns an SMTP-backed notifier when mail delivery is
// configured, otherwise a logging stand-in.
func NewNotifier(cfg config.MailConfig, log *logger.Logger) Notifier {
	if cfg.Enabled() {
		return &SMTPNotifier{cfg: cfg, logger: log}
	}
	return &LogNotifier{logger: log}
}

// SMTPNotifier delivers mail over SMTP with plain auth.
type SMTPNotifier struct {
	cfg    config.MailConfig
	logger *logger.Logger
}

func (n *SMTPNotifier) send(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s\r\n",
		n.cfg.From, to, subject, body)

	var auth smtp.Auth
	if n.cfg.Username != "" {
		auth = smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.Host)
	}

	if err := smtp.SendMail(n.cfg.Addr(), auth, n.cfg.From, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}

	return nil
}

func (n *SMTPNotifier) SendVerificationEmail(ctx context.Context, to, name, code string) error {
	body := fmt.Sprintf("Hi %s,\n\nYour verification code is: %s\n\nIt expires in 24 hours.\n", name, code)
	return n.send(to, "Verify your email", body)
}

func (n *SMTPNotifier) SendWelcomeEmail(ctx context.Context, to, name string) error {
	body := fmt.Sprintf("Hi %s,\n\nYour email is verified. Time to start your first pomodoro.\n", name)
	return n.send(to, "Welcome to Pomodorify", body)
}

func (n *SMTPNotifier) SendPasswordResetEmail(ctx context.Context, to, resetURL string) error {
	body := fmt.Sprintf("A password reset was requested for this account.\n\nReset link (valid for 1 hour): %s\n\nIf you did not request this, ignore this email.\n", resetURL)
	return n.send(to, "Reset your password", body)
}

func (n *SMTPNotifier) SendResetSuccessEmail(ctx context.Context, to string) error {
	return n.send(to, "Your password was changed", "Your password was reset successfully.\n")
}

// LogNotifier records sends instead of delivering them; used in
// development and tests.
type LogNotifier struct {
	logger *logger.Logger
}

func (n *LogNotifier) SendVerificationEmail(ctx context.Context, to, name, code string) error {
	n.logger.Infow("verification email (delivery disabled)", "to", to, "code", code)
	return nil
}

func (n *LogNotifier) SendWelcomeEmail(ctx context.Context, to, name string) error {
	n.logger.Infow("welcome email (delivery disabled)", "to", to)
	return nil
}

func (n *LogNotifier) SendPasswordResetEmail(ctx context.Context, to, resetURL string) error {
	n.logger.Infow("password reset email (delivery disabled)", "to", to, "url", resetURL)
	return nil
}

func (n *LogNotifier) SendResetSuccessEmail(ctx context.Context, to string) error {
	n.logger.Infow("reset success email (delivery disabled)", "to", to)
	return nil
}
