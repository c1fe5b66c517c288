package notifier

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"
)

// SMTPConfig configures the SMTP notifier.
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromEmail string
	FromName  string
}

// mailSender is satisfied by *gomail.Dialer.
type mailSender interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTP sends plain-text code emails with gomail.
type SMTP struct {
	cfg    SMTPConfig
	tpl    *Templates
	dialer mailSender
}

func NewSMTP(cfg SMTPConfig, tpl *Templates) *SMTP {
	return &SMTP{
		cfg:    cfg,
		tpl:    tpl,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

func (s *SMTP) message(msg Message) (*gomail.Message, error) {
	subject, body, err := s.tpl.Render(msg)
	if err != nil {
		return nil, err
	}

	from := s.cfg.FromEmail
	if from == "" {
		from = s.cfg.Username
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", from, s.cfg.FromName)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)
	return m, nil
}

// Send dials the server and delivers the message. gomail has no context
// support, so a cancelled ctx abandons the in-flight dial.
func (s *SMTP) Send(ctx context.Context, msg Message) error {
	m, err := s.message(msg)
	if err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() {
		done <- s.dialer.DialAndSend(m)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp send failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("smtp send aborted: %w", ctx.Err())
	}
}
