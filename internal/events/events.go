// Package events provides in-process pub/sub for hotel domain events.
// The API layer publishes; the staff notifier and the AMQP bridge
// subscribe.
package events

import (
	"sync"
	"time"
)

// Event types.
const (
	TypeReservationCreated = "reservation.created"
	TypeReservationUpdated = "reservation.updated"
	TypeReservationDeleted = "reservation.deleted"
	TypePaymentSettled     = "payment.settled"
	TypePaymentDeleted     = "payment.deleted"
)

// ReservationEvent describes a reservation lifecycle change. Dates are
// formatted YYYY-MM-DD.
type ReservationEvent struct {
	ReservationID int64  `json:"reservation_id"`
	CustomerID    int64  `json:"customer_id"`
	RoomID        int64  `json:"room_id"`
	CheckIn       string `json:"check_in"`
	CheckOut      string `json:"check_out"`
}

// PaymentEvent describes a payment settlement or deletion. Balance is
// the outstanding balance after the change.
type PaymentEvent struct {
	PaymentID     int64  `json:"payment_id"`
	ReservationID int64  `json:"reservation_id"`
	Reference     string `json:"reference"`
	Amount        int64  `json:"amount"`
	Method        string `json:"method"`
	Balance       int64  `json:"balance"`
}

// Event is a typed domain event. Payload is the *Event struct matching
// Type.
type Event struct {
	Type       string
	Payload    any
	OccurredAt time.Time
}

// Handler reacts to an event.
type Handler func(event Event)

// Bus provides in-process pub/sub for events.
type Bus struct {
	subscribers map[string][]Handler
	mu          sync.RWMutex
}

// NewBus constructs an empty bus.
func NewBus() *Bus {
	return &Bus{subscribers: make(map[string][]Handler)}
}

// Subscribe registers a handler for a given event type.
func (b *Bus) Subscribe(eventType string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// Publish notifies subscribers of the event type.
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	handlers := append([]Handler(nil), b.subscribers[event.Type]...)
	b.mu.RUnlock()

	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}

	for _, handler := range handlers {
		// Handlers run synchronously; caller decides concurrency model.
		handler(event)
	}
}
