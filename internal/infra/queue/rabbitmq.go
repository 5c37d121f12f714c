package mq

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/AbelardoOk/PlanTracker/internal/config"
)

// tableCarrier lets the otel propagator write trace headers into an amqp.Table.
type tableCarrier struct {
	table amqp.Table
}

func (c tableCarrier) Get(key string) string {
	if val, ok := c.table[key]; ok {
		if str, ok := val.(string); ok {
			return str
		}
		return fmt.Sprintf("%v", val)
	}
	return ""
}

func (c tableCarrier) Set(key, value string) {
	c.table[key] = value
}

func (c tableCarrier) Keys() []string {
	keys := make([]string, 0, len(c.table))
	for k := range c.table {
		keys = append(keys, k)
	}
	return keys
}

// Dial opens the broker connection described by cfg.RabbitMQ.
func Dial(cfg *config.Config) (*amqp.Connection, error) {
	if cfg.RabbitMQ.EnableTLS {
		return amqp.DialTLS(cfg.RabbitMQ.URL, &tls.Config{MinVersion: tls.VersionTLS12})
	}
	return amqp.Dial(cfg.RabbitMQ.URL)
}

// Publisher sends domain events to a durable topic exchange.
type Publisher struct {
	ch       *amqp.Channel
	exchange string
	log      *zap.Logger
	cfg      *config.Config
}

// NewPublisher opens a channel and declares the configured exchange.
func NewPublisher(conn *amqp.Connection, log *zap.Logger, cfg *config.Config) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}
	if err := ch.ExchangeDeclare(cfg.RabbitMQ.ExchangeName, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", cfg.RabbitMQ.ExchangeName, err)
	}
	return &Publisher{ch: ch, exchange: cfg.RabbitMQ.ExchangeName, log: log, cfg: cfg}, nil
}

func (p *Publisher) Close() error { return p.ch.Close() }

// PublishJSON encodes body with sonic and publishes it under routingKey,
// carrying the caller's trace context in the message headers.
func (p *Publisher) PublishJSON(ctx context.Context, routingKey string, body any) error {
	b, err := sonic.Marshal(body)
	if err != nil {
		return err
	}

	ctx, span := otel.Tracer(p.cfg.App.Name).Start(ctx, "rabbitmq.publish",
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			attribute.String("messaging.system", "rabbitmq"),
			attribute.String("messaging.destination", p.exchange),
			attribute.String("messaging.destination_kind", "exchange"),
			attribute.String("messaging.rabbitmq.routing_key", routingKey),
		))
	defer span.End()

	headers := make(amqp.Table)
	otel.GetTextMapPropagator().Inject(ctx, tableCarrier{table: headers})

	err = p.ch.PublishWithContext(ctx, p.exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Body:         b,
		Headers:      headers,
	})
	if err != nil {
		span.RecordError(err)
		return err
	}

	span.SetAttributes(attribute.Int("messaging.message.body.size", len(b)))
	return nil
}
