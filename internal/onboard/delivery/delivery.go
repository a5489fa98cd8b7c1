// Package delivery sends one-time codes to their owners.
package delivery

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Sender delivers a code to a destination (an email address today).
type Sender interface {
	SendOTP(ctx context.Context, destination, code string) error
}

// Drivers selectable through Config.Driver.
const (
	DriverLog  = "log"
	DriverSMTP = "smtp"
	DriverAMQP = "amqp"
)

type Config struct {
	Driver string
	SMTP   SMTPConfig
	AMQP   AMQPConfig
}

// New builds the Sender named by cfg.Driver. Senders holding a connection
// also implement io.Closer.
func New(cfg Config, logger *slog.Logger) (Sender, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", DriverLog:
		return &LogSender{Logger: logger}, nil
	case DriverSMTP:
		return NewSMTPSender(cfg.SMTP)
	case DriverAMQP:
		return NewAMQPSender(cfg.AMQP)
	default:
		return nil, fmt.Errorf("delivery: unknown driver %q", cfg.Driver)
	}
}

// message renders the plain-text body shared by the senders.
func message(code string) string {
	return fmt.Sprintf("Your verification code is %s.\n\nIf you did not request this code you can ignore this message.\n", code)
}
