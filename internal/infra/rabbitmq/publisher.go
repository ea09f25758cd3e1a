package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/streadway/amqp"
)

type Publisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	log      logrus.FieldLogger
}

// Message is the envelope consumers receive; Pattern repeats the routing key.
type Message struct {
	Pattern    string    `json:"pattern"`
	Data       any       `json:"data"`
	ID         string    `json:"id,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

func NewPublisher(amqpURL, exchange string, log logrus.FieldLogger) (*Publisher, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		exchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	return &Publisher{
		conn:     conn,
		channel:  channel,
		exchange: exchange,
		log:      log,
	}, nil
}

func encode(pattern string, data any, now time.Time) ([]byte, error) {
	body, err := json.Marshal(Message{
		Pattern:    pattern,
		Data:       data,
		ID:         uuid.NewString(),
		OccurredAt: now,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}
	return body, nil
}

func (p *Publisher) Publish(ctx context.Context, pattern string, data any) error {
	body, err := encode(pattern, data, time.Now())
	if err != nil {
		return err
	}

	p.log.WithFields(logrus.Fields{"pattern": pattern, "exchange": p.exchange}).Debug("Publishing message")

	p.mu.Lock()
	defer p.mu.Unlock()
	err = p.channel.Publish(
		p.exchange,
		pattern,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}
	return nil
}

func (p *Publisher) Close() {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}

// NopPublisher drops every message. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, any) error { return nil }
