// Package mailer is the outbound notification port. Delivery failures are
// the caller's to log; they never invalidate a token that was already
// generated.
package mailer

import (
	"context"
	"fmt"
	"net/smtp"
)

type Notifier interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SMTP delivers over plain SMTP with optional auth.
type SMTP struct {
	Host string
	Port string
	User string
	Pass string
	From string
}

func (m *SMTP) Send(ctx context.Context, to, subject, body string) error {
	if m.Host == "" {
		return fmt.Errorf("smtp host not configured")
	}

	msg := []byte("From: " + m.From + "\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"\r\n" +
		body + "\r\n")

	var auth smtp.Auth
	if m.User != "" {
		auth = smtp.PlainAuth("", m.User, m.Pass, m.Host)
	}

	done := make(chan error, 1)
	go func() {
		done <- smtp.SendMail(m.Host+":"+m.Port, auth, m.From, []string{to}, msg)
	}()
	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("send mail: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Noop drops every message; used when SMTP is not configured.
type Noop struct{}

func (Noop) Send(context.Context, string, string, string) error { return nil }
