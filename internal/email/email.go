// Package email sends transactional mail over SMTP.
//
// The Mailer interface is what services depend on; SMTPMailer is the real
// implementation, tests substitute an in-memory fake. Delivery failures are
// surfaced to the caller — the signup flow in particular must know, because
// it rolls the new account back when the verification mail cannot be sent.
package email

import (
	"context"
	"fmt"
	"net/smtp"
)

// Mailer sends a single plain-text message.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Config holds the SMTP settings for outbound mail.
type Config struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string // From address, e.g. no-reply@sniphub.example.com
}

// SMTPMailer delivers mail through a plain-auth SMTP relay.
type SMTPMailer struct {
	cfg Config
}

// NewSMTPMailer creates an SMTPMailer. It fails fast on missing credentials
// so misconfiguration surfaces at startup, not on the first signup.
func NewSMTPMailer(cfg Config) (*SMTPMailer, error) {
	if cfg.Host == "" || cfg.Username == "" || cfg.Password == "" {
		return nil, fmt.Errorf("email: SMTP credentials not configured")
	}
	if cfg.From == "" {
		cfg.From = cfg.Username
	}
	return &SMTPMailer{cfg: cfg}, nil
}

// Send composes and delivers a message.
//
// net/smtp has no context support, so ctx only gates the call upfront;
// an in-flight delivery runs to completion or to the relay's own timeout.
func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)

	msg := []byte(fmt.Sprintf(
		"From: SnipHub <%s>\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"\r\n"+
			"%s\r\n",
		m.cfg.From, to, subject, body))

	addr := m.cfg.Host + ":" + m.cfg.Port
	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{to}, msg); err != nil {
		return fmt.Errorf("email: sending to %s: %w", to, err)
	}

	return nil
}

// VerificationBody builds the account-verification message pointing at the
// frontend verify page.
func VerificationBody(firstName, verifyURL string) string {
	return fmt.Sprintf(
		"Hi %s,\n\nClick here to activate your SnipHub account:\n\n%s\n\n"+
			"If you didn't sign up, you can ignore this email.\n",
		firstName, verifyURL)
}

// AlertBody builds the operator alert sent when the reaper fails.
func AlertBody(jobErr error) string {
	return fmt.Sprintf("The inactive-account cleanup job failed:\n\n%v\n", jobErr)
}
