package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"user-service/shared/interfaces"
	"user-service/shared/models"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const (
	AccountEventsExchange     = "account_events"
	accountEventsExchangeType = "fanout"
)

// amqpChannel is the subset of *amqp091.Channel the publisher uses.
type amqpChannel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp091.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

var (
	_ interfaces.AccountEventPublisher = (*RabbitMQAccountEventPublisher)(nil)
	_ interfaces.AccountEventPublisher = NoopAccountEventPublisher{}
)

// RabbitMQAccountEventPublisher sends account events to a durable fanout exchange.
type RabbitMQAccountEventPublisher struct {
	ch           amqpChannel
	logger       *zap.Logger
	exchangeName string
}

// NewRabbitMQAccountEventPublisher opens a channel on conn and declares the exchange.
// The connection stays owned by the caller.
func NewRabbitMQAccountEventPublisher(conn *amqp091.Connection, logger *zap.Logger) (*RabbitMQAccountEventPublisher, error) {
	if conn == nil {
		return nil, fmt.Errorf("rabbitmq connection is nil")
	}
	ch, err := conn.Channel()
	if err != nil {
		logger.Error("Failed to open a channel for account events", zap.Error(err))
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}
	return newAccountEventPublisher(ch, logger)
}

func newAccountEventPublisher(ch amqpChannel, logger *zap.Logger) (*RabbitMQAccountEventPublisher, error) {
	err := ch.ExchangeDeclare(
		AccountEventsExchange,
		accountEventsExchangeType,
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		_ = ch.Close()
		logger.Error("Failed to declare account events exchange", zap.String("exchange", AccountEventsExchange), zap.Error(err))
		return nil, fmt.Errorf("failed to declare exchange '%s': %w", AccountEventsExchange, err)
	}

	logger.Info("Account events exchange declared", zap.String("exchange", AccountEventsExchange))

	return &RabbitMQAccountEventPublisher{
		ch:           ch,
		logger:       logger.Named("AccountEventPublisher"),
		exchangeName: AccountEventsExchange,
	}, nil
}

// PublishAccountEvent publishes event as JSON. Fanout ignores the routing key.
func (p *RabbitMQAccountEventPublisher) PublishAccountEvent(ctx context.Context, event models.AccountEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal account event: %w", err)
	}

	err = p.ch.PublishWithContext(ctx,
		p.exchangeName,
		"",
		false, // mandatory
		false, // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Type:         string(event.Event),
			Body:         body,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		p.logger.Error("Failed to publish account event", zap.Error(err), zap.String("event", string(event.Event)))
		return fmt.Errorf("failed to publish account event: %w", err)
	}

	p.logger.Debug("Account event published", zap.String("event", string(event.Event)), zap.String("username", event.Username))
	return nil
}

func (p *RabbitMQAccountEventPublisher) Close() error {
	if p.ch != nil {
		return p.ch.Close()
	}
	return nil
}

// NoopAccountEventPublisher drops every event. Used when no broker is configured.
type NoopAccountEventPublisher struct{}

func (NoopAccountEventPublisher) PublishAccountEvent(context.Context, models.AccountEvent) error {
	return nil
}

func (NoopAccountEventPublisher) Close() error { return nil }
