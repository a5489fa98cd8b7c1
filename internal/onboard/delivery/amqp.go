package delivery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// RoutingKeyOTPRequested is the default routing key for OTP events.
const RoutingKeyOTPRequested = "otp.requested"

type AMQPConfig struct {
	URL        string
	Exchange   string
	RoutingKey string
}

// OTPRequested is published for a downstream notifier to deliver.
type OTPRequested struct {
	Destination string    `json:"destination"`
	Code        string    `json:"code"`
	Message     string    `json:"message"`
	RequestedAt time.Time `json:"requested_at"`
}

// publisher is the part of *amqp.Channel the sender uses.
type publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// amqpSession is one connection and channel. done is closed by the client
// library when the channel goes away, including when the broker drops the
// connection.
type amqpSession struct {
	pub   publisher
	done  <-chan *amqp.Error
	close func() error
}

func (s *amqpSession) alive() bool {
	select {
	case <-s.done:
		return false
	default:
		return true
	}
}

// AMQPSender hands codes to a topic exchange instead of delivering them
// itself. A lost connection is redialled on the next send.
type AMQPSender struct {
	dial       func() (*amqpSession, error)
	exchange   string
	routingKey string

	mu      sync.Mutex
	session *amqpSession
}

func NewAMQPSender(cfg AMQPConfig) (*AMQPSender, error) {
	if cfg.URL == "" {
		return nil, errors.New("delivery: AMQP_URL is required")
	}
	if cfg.Exchange == "" {
		cfg.Exchange = "onboard"
	}
	if cfg.RoutingKey == "" {
		cfg.RoutingKey = RoutingKeyOTPRequested
	}

	s := &AMQPSender{
		dial:       func() (*amqpSession, error) { return dialAMQP(cfg) },
		exchange:   cfg.Exchange,
		routingKey: cfg.RoutingKey,
	}
	// Fail at startup rather than on the first code.
	if _, err := s.current(); err != nil {
		return nil, err
	}
	return s, nil
}

func dialAMQP(cfg AMQPConfig) (*amqpSession, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(cfg.Exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	return &amqpSession{
		pub:  ch,
		done: ch.NotifyClose(make(chan *amqp.Error, 1)),
		close: func() error {
			_ = ch.Close()
			return conn.Close()
		},
	}, nil
}

// current returns a live session, dialling a new one when the last was lost.
func (s *AMQPSender) current() (*amqpSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session != nil && s.session.alive() {
		return s.session, nil
	}
	if s.session != nil {
		_ = s.session.close()
		s.session = nil
	}

	session, err := s.dial()
	if err != nil {
		return nil, err
	}
	s.session = session
	return session, nil
}

// drop discards session if it is still the current one.
func (s *AMQPSender) drop(session *amqpSession) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == session {
		_ = session.close()
		s.session = nil
	}
}

func (s *AMQPSender) SendOTP(ctx context.Context, destination, code string) error {
	b, err := json.Marshal(OTPRequested{
		Destination: destination,
		Code:        code,
		Message:     message(code),
		RequestedAt: time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Body:         b,
	}

	// One retry covers a connection that died before done was signalled.
	for attempt := 0; ; attempt++ {
		session, err := s.current()
		if err != nil {
			return fmt.Errorf("delivery: connect: %w", err)
		}

		err = session.pub.PublishWithContext(ctx, s.exchange, s.routingKey, false, false, msg)
		if err == nil {
			return nil
		}
		if !errors.Is(err, amqp.ErrClosed) || attempt > 0 {
			return fmt.Errorf("delivery: publish: %w", err)
		}
		s.drop(session)
	}
}

func (s *AMQPSender) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return nil
	}
	err := s.session.close()
	s.session = nil
	return err
}
