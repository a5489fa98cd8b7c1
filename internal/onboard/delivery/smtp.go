package delivery

import (
	"context"
	"errors"
	"fmt"

	"github.com/wneessen/go-mail"
)

const defaultSubject = "Your verification code"

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Subject  string
}

// SMTPSender emails codes. A fresh connection is dialled per message.
type SMTPSender struct {
	from    string
	subject string
	host    string
	opts    []mail.Option
}

func NewSMTPSender(cfg SMTPConfig) (*SMTPSender, error) {
	if cfg.Host == "" {
		return nil, errors.New("delivery: SMTP_HOST is required")
	}
	if cfg.From == "" {
		return nil, errors.New("delivery: SMTP_FROM is required")
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	if cfg.Subject == "" {
		cfg.Subject = defaultSubject
	}

	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	return &SMTPSender{
		from:    cfg.From,
		subject: cfg.Subject,
		host:    cfg.Host,
		opts:    opts,
	}, nil
}

func (s *SMTPSender) newMessage(destination, code string) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(s.from); err != nil {
		return nil, fmt.Errorf("delivery: from address: %w", err)
	}
	if err := msg.To(destination); err != nil {
		return nil, fmt.Errorf("delivery: destination address: %w", err)
	}
	msg.Subject(s.subject)
	msg.SetBodyString(mail.TypeTextPlain, message(code))
	return msg, nil
}

func (s *SMTPSender) SendOTP(ctx context.Context, destination, code string) error {
	msg, err := s.newMessage(destination, code)
	if err != nil {
		return err
	}

	client, err := mail.NewClient(s.host, s.opts...)
	if err != nil {
		return fmt.Errorf("delivery: smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("delivery: smtp send: %w", err)
	}
	return nil
}
