// Package queue bridges domain events onto an AMQP exchange for
// downstream consumers (analytics, housekeeping boards).
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/Seiiyes/HotelReservation/internal/events"
)

// Publisher publishes domain events to a topic exchange. Routing keys
// are the event types (reservation.created, payment.settled, ...).
type Publisher struct {
	url      string
	exchange string
	logger   zerolog.Logger

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewPublisher connects to the broker and declares the exchange.
func NewPublisher(url, exchange string, logger zerolog.Logger) (*Publisher, error) {
	p := &Publisher{url: url, exchange: exchange, logger: logger}
	if err := p.connect(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Publisher) connect() error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return fmt.Errorf("dial broker: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(p.exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("declare exchange: %w", err)
	}
	p.conn = conn
	p.ch = ch
	return nil
}

// Subscribe publishes every domain event onto the exchange. Publishing
// runs in its own goroutine; a broker outage is logged and the event
// dropped rather than failing the originating request.
func (p *Publisher) Subscribe(bus *events.Bus) {
	handler := func(event events.Event) {
		go func() {
			if err := p.publish(event); err != nil {
				p.logger.Error().Err(err).Str("type", event.Type).Msg("amqp publish failed")
			}
		}()
	}
	for _, t := range []string{
		events.TypeReservationCreated,
		events.TypeReservationUpdated,
		events.TypeReservationDeleted,
		events.TypePaymentSettled,
		events.TypePaymentDeleted,
	} {
		bus.Subscribe(t, handler)
	}
}

func (p *Publisher) publish(event events.Event) error {
	body, err := json.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch == nil || p.ch.IsClosed() {
		if err := p.connect(); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return p.ch.PublishWithContext(ctx, p.exchange, event.Type, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    event.OccurredAt,
		Body:         body,
	})
}

// Close shuts the channel and connection down.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
