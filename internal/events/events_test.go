package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBus_PublishToSubscribers(t *testing.T) {
	bus := NewBus()

	var created []Event
	var settled []Event
	bus.Subscribe(TypeReservationCreated, func(e Event) { created = append(created, e) })
	bus.Subscribe(TypeReservationCreated, func(e Event) { created = append(created, e) })
	bus.Subscribe(TypePaymentSettled, func(e Event) { settled = append(settled, e) })

	bus.Publish(Event{
		Type:    TypeReservationCreated,
		Payload: ReservationEvent{ReservationID: 1, RoomID: 2, CheckIn: "2025-01-10", CheckOut: "2025-01-15"},
	})

	assert.Len(t, created, 2)
	assert.Empty(t, settled)
	assert.Equal(t, int64(1), created[0].Payload.(ReservationEvent).ReservationID)
	assert.False(t, created[0].OccurredAt.IsZero())
}

func TestBus_NoSubscribers(t *testing.T) {
	bus := NewBus()

	// Publishing with no handlers must not panic.
	assert.NotPanics(t, func() {
		bus.Publish(Event{Type: TypePaymentDeleted, Payload: PaymentEvent{PaymentID: 9}})
	})
}
