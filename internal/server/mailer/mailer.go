// Package mailer delivers email verification links.
package mailer

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/rotamanager/internal/logging"
	"gopkg.in/gomail.v2"
)

// VerificationSender delivers a verification token to a freshly registered
// or re-verifying user.
type VerificationSender interface {
	SendVerification(ctx context.Context, toEmail, toName, token string) error
}

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPSender sends verification mail through an SMTP relay.
type SMTPSender struct {
	from     string
	linkBase string
	dialer   dialer
	log      logging.Logger
}

func NewSMTPSender(host string, port int, username, password, from, linkBase string, log logging.Logger) (*SMTPSender, error) {
	if host == "" || port == 0 || from == "" {
		return nil, fmt.Errorf("SMTP host, port and sender must be configured")
	}
	return &SMTPSender{
		from:     from,
		linkBase: linkBase,
		dialer:   gomail.NewDialer(host, port, username, password),
		log:      log,
	}, nil
}

// VerificationLink appends token to base.
func VerificationLink(base, token string) string {
	return base + token
}

func verificationBody(name, link string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\n", name)
	b.WriteString("Please confirm your email address to activate your rota account:\n\n")
	b.WriteString(link)
	b.WriteString("\n\nThe link expires soon. If it does, request a new one from the sign-in page.\n")
	return b.String()
}

func (s *SMTPSender) SendVerification(ctx context.Context, toEmail, toName, token string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetAddressHeader("To", toEmail, toName)
	m.SetHeader("Subject", "Confirm your email")
	m.SetBody("text/plain", verificationBody(toName, VerificationLink(s.linkBase, token)))

	done := make(chan error, 1)
	go func() {
		done <- s.dialer.DialAndSend(m)
	}()

	select {
	case <-ctx.Done():
		s.log.Warn(ctx, "verification mail cancelled", "to", toEmail, "error", ctx.Err())
		return fmt.Errorf("verification mail cancelled: %w", ctx.Err())
	case err := <-done:
		if err != nil {
			return fmt.Errorf("failed to send verification mail: %w", err)
		}
	}

	s.log.Info(ctx, "verification mail sent", "to", toEmail)
	return nil
}

// LogSender writes the verification link to the log instead of mailing it.
// Used when no SMTP relay is configured.
type LogSender struct {
	linkBase string
	log      logging.Logger
}

func NewLogSender(linkBase string, log logging.Logger) *LogSender {
	return &LogSender{linkBase: linkBase, log: log}
}

func (s *LogSender) SendVerification(ctx context.Context, toEmail, toName, token string) error {
	s.log.Info(ctx, "verification link", "to", toEmail, "link", VerificationLink(s.linkBase, token))
	return nil
}
