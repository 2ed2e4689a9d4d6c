package refresh

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"acquiring-gateway/internal/logger"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Notifier is told about the failures of a refresh run.
type Notifier interface {
	NotifyFailures(ctx context.Context, errs []error) error
}

// LogNotifier writes each failure to the context logger.
type LogNotifier struct{}

func (LogNotifier) NotifyFailures(ctx context.Context, errs []error) error {
	log := logger.FromCtx(ctx)
	for _, err := range errs {
		log.Error("status refresh failure", zap.Error(err))
	}
	return nil
}

const FailureRoutingKey = "payment.status_refresh.failed"

// FailureEvent is the message body published by AMQPNotifier.
type FailureEvent struct {
	RunID     string    `json:"run_id"`
	CallID    string    `json:"call_id,omitempty"`
	Errors    []string  `json:"errors"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher is the part of *amqp.Channel the notifier uses.
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type AMQPNotifier struct {
	publisher Publisher
	exchange  string
	now       func() time.Time
}

func NewAMQPNotifier(publisher Publisher, exchange string) *AMQPNotifier {
	return &AMQPNotifier{publisher: publisher, exchange: exchange, now: time.Now}
}

// NotifyFailures publishes one persistent JSON event listing every error text.
func (n *AMQPNotifier) NotifyFailures(ctx context.Context, errs []error) error {
	event := FailureEvent{
		RunID:     uuid.NewString(),
		CallID:    logger.CallIDFrom(ctx),
		Errors:    make([]string, len(errs)),
		Timestamp: n.now().UTC(),
	}
	for i, err := range errs {
		event.Errors[i] = err.Error()
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal failure event: %w", err)
	}

	err = n.publisher.PublishWithContext(ctx, n.exchange, FailureRoutingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.RunID,
		Timestamp:    event.Timestamp,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish failure event: %w", err)
	}

	logger.FromCtx(ctx).Info("refresh failures published",
		zap.String("exchange", n.exchange),
		zap.String("run_id", event.RunID),
		zap.Int("errors", len(errs)),
	)
	return nil
}

// AMQPConnection owns the broker connection behind an AMQPNotifier.
type AMQPConnection struct {
	conn    *amqp.Connection
	Channel *amqp.Channel
}

// DialAMQP connects to url and declares exchange as a durable topic exchange.
func DialAMQP(url, exchange string) (*AMQPConnection, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		exchange,
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	return &AMQPConnection{conn: conn, Channel: ch}, nil
}

func (c *AMQPConnection) Close() error {
	if c.Channel != nil {
		_ = c.Channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
