package notification

import (
	"GraphSpectra/internal/config"
	"GraphSpectra/internal/model"
	"GraphSpectra/internal/pkg/retry"
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

// EmailNotifier implements the Notifier interface for sending emails.
type EmailNotifier struct {
	cfg    config.SMTPConfig
	auth   smtp.Auth
	policy retry.Policy
	send   func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewEmailNotifier creates a new EmailNotifier.
func NewEmailNotifier(cfg config.SMTPConfig) model.Notifier {
	// PlainAuth will not send credentials until the server identifies itself as a trusted one.
	auth := smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	return &EmailNotifier{cfg: cfg, auth: auth, policy: retry.DefaultPolicy(), send: smtp.SendMail}
}

// Send sends an email to the configured recipients, retrying transient failures.
func (n *EmailNotifier) Send(subject, body string) error {
	addr := fmt.Sprintf("%s:%d", n.cfg.Host, n.cfg.Port)
	recipients := n.recipients()
	if len(recipients) == 0 {
		return fmt.Errorf("no email recipients configured")
	}
	msg := n.message(subject, body)

	err := retry.Do(context.Background(), n.policy, func(int) error {
		return n.send(addr, n.auth, n.cfg.From, recipients, msg)
	})
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func (n *EmailNotifier) recipients() []string {
	var out []string
	for _, r := range strings.Split(n.cfg.To, ",") {
		if r = strings.TrimSpace(r); r != "" {
			out = append(out, r)
		}
	}
	return out
}

func (n *EmailNotifier) message(subject, body string) []byte {
	return []byte("To: " + n.cfg.To + "\r\n" +
		"From: " + n.cfg.From + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"Content-Type: text/html; charset=UTF-8\r\n" +
		"\r\n" +
		body)
}
