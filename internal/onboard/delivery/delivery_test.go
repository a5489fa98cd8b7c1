package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"
)

func TestNewSelectsDriver(t *testing.T) {
	s, err := New(Config{}, nil)
	require.NoError(t, err)
	require.IsType(t, &LogSender{}, s)

	s, err = New(Config{Driver: "SMTP", SMTP: SMTPConfig{Host: "localhost", From: "noreply@example.com"}}, nil)
	require.NoError(t, err)
	require.IsType(t, &SMTPSender{}, s)

	_, err = New(Config{Driver: "carrier-pigeon"}, nil)
	require.Error(t, err)

	_, err = New(Config{Driver: DriverAMQP}, nil)
	require.Error(t, err, "amqp requires a URL")
}

func TestLogSender(t *testing.T) {
	var buf bytes.Buffer
	s := &LogSender{Logger: slog.New(slog.NewJSONHandler(&buf, nil))}

	require.NoError(t, s.SendOTP(context.Background(), "owner@example.com", "4821"))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "otp issued", entry["msg"])
	require.Equal(t, "owner@example.com", entry["destination"])
	require.Equal(t, "4821", entry["code"])
}

func TestSMTPSenderValidation(t *testing.T) {
	_, err := NewSMTPSender(SMTPConfig{From: "noreply@example.com"})
	require.Error(t, err)

	_, err = NewSMTPSender(SMTPConfig{Host: "localhost"})
	require.Error(t, err)

	s, err := NewSMTPSender(SMTPConfig{Host: "localhost", From: "noreply@example.com"})
	require.NoError(t, err)

	msg, err := s.newMessage("owner@example.com", "4821")
	require.NoError(t, err)
	require.Equal(t, []string{defaultSubject}, msg.GetGenHeader(mail.HeaderSubject))

	// Address parsing fails before any connection is attempted.
	err = s.SendOTP(context.Background(), "not an address", "4821")
	require.Error(t, err)
}

type fakePublisher struct {
	exchange string
	key      string
	msg      amqp.Publishing
	err      error
	calls    int
}

func (f *fakePublisher) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	f.exchange, f.key, f.msg = exchange, key, msg
	f.calls++
	return f.err
}

// fakeBroker hands out sessions whose done channel the test controls.
type fakeBroker struct {
	pubs    []*fakePublisher
	dones   []chan *amqp.Error
	closed  int
	dialErr error
}

func (b *fakeBroker) dial() (*amqpSession, error) {
	if b.dialErr != nil {
		return nil, b.dialErr
	}
	pub := &fakePublisher{}
	done := make(chan *amqp.Error, 1)
	b.pubs = append(b.pubs, pub)
	b.dones = append(b.dones, done)
	return &amqpSession{
		pub:   pub,
		done:  done,
		close: func() error { b.closed++; return nil },
	}, nil
}

func newTestAMQPSender(b *fakeBroker) *AMQPSender {
	return &AMQPSender{dial: b.dial, exchange: "onboard", routingKey: RoutingKeyOTPRequested}
}

func TestAMQPSenderPublishesEvent(t *testing.T) {
	broker := &fakeBroker{}
	s := newTestAMQPSender(broker)

	require.NoError(t, s.SendOTP(context.Background(), "owner@example.com", "4821"))
	require.Len(t, broker.pubs, 1)
	pub := broker.pubs[0]
	require.Equal(t, "onboard", pub.exchange)
	require.Equal(t, RoutingKeyOTPRequested, pub.key)
	require.Equal(t, "application/json", pub.msg.ContentType)

	var evt OTPRequested
	require.NoError(t, json.Unmarshal(pub.msg.Body, &evt))
	require.Equal(t, "owner@example.com", evt.Destination)
	require.Equal(t, "4821", evt.Code)
	require.Contains(t, evt.Message, "4821")
	require.False(t, evt.RequestedAt.IsZero())

	pub.err = errors.New("exchange not found")
	require.Error(t, s.SendOTP(context.Background(), "owner@example.com", "4821"))
	require.Len(t, broker.pubs, 1, "only a closed connection is redialled")

	require.NoError(t, s.Close())
	require.Equal(t, 1, broker.closed)
}

func TestAMQPSenderRedialsAfterConnectionLoss(t *testing.T) {
	broker := &fakeBroker{}
	s := newTestAMQPSender(broker)
	ctx := context.Background()

	require.NoError(t, s.SendOTP(ctx, "owner@example.com", "1111"))

	// Broker restart: the library closes the channel's notify chan.
	broker.dones[0] <- &amqp.Error{Code: amqp.ConnectionForced, Reason: "broker shutdown"}
	close(broker.dones[0])

	require.NoError(t, s.SendOTP(ctx, "owner@example.com", "2222"))
	require.Len(t, broker.pubs, 2)
	require.Equal(t, 1, broker.pubs[0].calls)
	require.Equal(t, 1, broker.pubs[1].calls)
	require.Equal(t, 1, broker.closed, "the dead session is released")
}

func TestAMQPSenderRetriesOnceWhenChannelIsClosed(t *testing.T) {
	broker := &fakeBroker{}
	s := newTestAMQPSender(broker)
	ctx := context.Background()

	require.NoError(t, s.SendOTP(ctx, "owner@example.com", "1111"))
	broker.pubs[0].err = amqp.ErrClosed

	require.NoError(t, s.SendOTP(ctx, "owner@example.com", "2222"))
	require.Len(t, broker.pubs, 2)
	require.Equal(t, 1, broker.pubs[1].calls)
}

func TestAMQPSenderDialFailure(t *testing.T) {
	broker := &fakeBroker{dialErr: errors.New("connection refused")}
	s := newTestAMQPSender(broker)
	ctx := context.Background()

	require.ErrorContains(t, s.SendOTP(ctx, "owner@example.com", "1111"), "connection refused")

	// The broker comes back.
	broker.dialErr = nil
	require.NoError(t, s.SendOTP(ctx, "owner@example.com", "2222"))
	require.Len(t, broker.pubs, 1)
}
