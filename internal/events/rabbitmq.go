package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

const (
	exchangeType   = "topic"
	connectRetries = 5
	retryDelay     = 2 * time.Second
)

// Connect dials the broker, retrying while it starts up, and declares the
// durable topic exchange.
func Connect(url, exchange string, logger zerolog.Logger) (*amqp.Connection, *amqp.Channel, error) {
	var (
		conn *amqp.Connection
		err  error
	)

	for i := 0; i < connectRetries; i++ {
		conn, err = amqp.Dial(url)
		if err == nil {
			break
		}
		logger.Warn().Err(err).Int("attempt", i+1).Msg("failed to connect to RabbitMQ")
		time.Sleep(retryDelay)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("could not connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("could not open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		exchange,     // name
		exchangeType, // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, nil, fmt.Errorf("could not declare exchange: %w", err)
	}

	return conn, ch, nil
}

type rabbitPublisher struct {
	mu       sync.Mutex
	ch       *amqp.Channel
	exchange string
}

// NewRabbitPublisher publishes events as JSON on exchange, routed by event type.
func NewRabbitPublisher(ch *amqp.Channel, exchange string) Publisher {
	return &rabbitPublisher{ch: ch, exchange: exchange}
}

func (p *rabbitPublisher) Publish(ctx context.Context, event DishEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("could not marshal event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.ch.PublishWithContext(ctx,
		p.exchange,         // exchange
		string(event.Type), // routing key
		false,              // mandatory
		false,              // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Timestamp:   event.OccurredAt,
			Body:        body,
		},
	)
	if err != nil {
		return fmt.Errorf("could not publish %s: %w", event.Type, err)
	}
	return nil
}

type rabbitSubscriber struct {
	ch       *amqp.Channel
	exchange string
	logger   zerolog.Logger
}

// NewRabbitSubscriber consumes events from exchange through a private queue.
func NewRabbitSubscriber(ch *amqp.Channel, exchange string, logger zerolog.Logger) Subscriber {
	return &rabbitSubscriber{
		ch:       ch,
		exchange: exchange,
		logger:   logger.With().Str("component", "event_subscriber").Logger(),
	}
}

func (s *rabbitSubscriber) Subscribe(ctx context.Context, bindingKey string, handler func(DishEvent) error) error {
	// Temporary queue exclusive to this instance
	q, err := s.ch.QueueDeclare(
		"",    // random name
		false, // non-durable
		true,  // delete when unused
		true,  // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return fmt.Errorf("could not declare queue: %w", err)
	}

	if err := s.ch.QueueBind(q.Name, bindingKey, s.exchange, false, nil); err != nil {
		return fmt.Errorf("could not bind queue: %w", err)
	}

	msgs, err := s.ch.Consume(
		q.Name, // queue
		"",     // consumer tag
		true,   // auto-ack
		false,  // exclusive
		false,  // no-local
		false,  // no-wait
		nil,    // args
	)
	if err != nil {
		return fmt.Errorf("could not start consume: %w", err)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case d, ok := <-msgs:
				if !ok {
					s.logger.Warn().Msg("event delivery channel closed")
					return
				}
				var event DishEvent
				if err := json.Unmarshal(d.Body, &event); err != nil {
					s.logger.Error().Err(err).Str("routing_key", d.RoutingKey).Msg("failed to decode event")
					continue
				}
				if err := handler(event); err != nil {
					s.logger.Error().Err(err).Str("type", string(event.Type)).Msg("failed to handle event")
				}
			}
		}
	}()

	return nil
}
