package notify

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/abenov/accounts-server/internal/config"
	"github.com/abenov/accounts-server/internal/model"
)

var _ model.Notifier = (*SMTP)(nil)

// SMTP delivers plaintext mail through a plain-auth SMTP relay.
type SMTP struct {
	host     string
	port     string
	from     string
	password string
	send     func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTP creates a notifier from SMTP configuration.
func NewSMTP(cfg config.SMTP) *SMTP {
	return &SMTP{
		host:     cfg.Host,
		port:     cfg.Port,
		from:     cfg.From,
		password: cfg.Password,
		send:     smtp.SendMail,
	}
}

// Send delivers the message. The context is accepted for interface symmetry;
// net/smtp offers no cancellation hook, delivery is bounded by the relay.
func (s *SMTP) Send(_ context.Context, to, subject, body string) error {
	auth := smtp.PlainAuth("", s.from, s.password, s.host)

	msg := []byte("To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"\r\n" + body + "\r\n")

	if err := s.send(s.host+":"+s.port, auth, s.from, []string{to}, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
