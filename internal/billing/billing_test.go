package billing

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Seiiyes/HotelReservation/internal/database"
	"github.com/Seiiyes/HotelReservation/internal/events"
	"github.com/Seiiyes/HotelReservation/internal/models"
)

type fixture struct {
	db          *database.DB
	billing     *Service
	bus         *events.Bus
	reservation *models.Reservation
}

// newFixture seeds a customer, a 100000 COP room and a reservation over
// [Jan 10, Jan 15).
func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	logger := zerolog.Nop()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "test.db"), &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	customer := &models.Customer{DocumentID: "CC-1", FirstName: "Ana", LastName: "Gomez", Email: "ana@example.com"}
	require.NoError(t, db.CreateCustomer(ctx, customer))

	room := &models.Room{Type: "double", Capacity: 2, Price: 100000, Available: true}
	require.NoError(t, db.CreateRoom(ctx, room))

	reservation := &models.Reservation{
		CustomerID: customer.ID,
		RoomID:     room.ID,
		CheckIn:    time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC),
		CheckOut:   time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, db.CreateReservation(ctx, reservation))

	bus := events.NewBus()
	return &fixture{
		db:          db,
		billing:     NewService(db, bus, zerolog.Nop()),
		bus:         bus,
		reservation: reservation,
	}
}

func (f *fixture) addService(t *testing.T, name string, price int64) *models.Service {
	t.Helper()
	svc := &models.Service{ReservationID: f.reservation.ID, Name: name, Price: price}
	require.NoError(t, f.db.CreateService(context.Background(), svc))
	return svc
}

func TestComputeBalance(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	stmt, err := f.billing.ComputeBalance(ctx, f.reservation.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(100000), stmt.RoomPrice)
	assert.Equal(t, int64(100000), stmt.TotalDue)
	assert.Zero(t, stmt.TotalPaid)
	assert.Equal(t, int64(100000), stmt.Balance)
	assert.Empty(t, stmt.Services)

	f.addService(t, "minibar", 20000)

	stmt, err = f.billing.ComputeBalance(ctx, f.reservation.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(120000), stmt.TotalDue)
	assert.Equal(t, int64(120000), stmt.Balance)
	require.Len(t, stmt.Services, 1)
	assert.False(t, stmt.Services[0].Paid())
}

func TestComputeBalance_RepeatableWithoutWrites(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addService(t, "minibar", 20000)

	_, err := f.billing.Settle(ctx, f.reservation.ID, 50000, "cash")
	require.NoError(t, err)

	// Without intervening writes, recomputing yields the same statement.
	first, err := f.billing.ComputeBalance(ctx, f.reservation.ID)
	require.NoError(t, err)
	second, err := f.billing.ComputeBalance(ctx, f.reservation.ID)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int64(70000), second.Balance)
}

func TestComputeBalance_MissingReservation(t *testing.T) {
	f := newFixture(t)

	_, err := f.billing.ComputeBalance(context.Background(), 999)
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestSettle_FullBalance(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := f.addService(t, "minibar", 20000)

	var settled []events.PaymentEvent
	f.bus.Subscribe(events.TypePaymentSettled, func(e events.Event) {
		settled = append(settled, e.Payload.(events.PaymentEvent))
	})

	payment, err := f.billing.Settle(ctx, f.reservation.ID, 120000, "cash")
	require.NoError(t, err)
	require.NotZero(t, payment.ID)
	assert.NotEmpty(t, payment.Reference)

	stmt, err := f.billing.ComputeBalance(ctx, f.reservation.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(120000), stmt.TotalPaid)
	assert.Zero(t, stmt.Balance)

	got, err := f.db.GetService(ctx, svc.ID)
	require.NoError(t, err)
	assert.True(t, got.Paid())
	require.NotNil(t, got.SettledByPaymentID)
	assert.Equal(t, payment.ID, *got.SettledByPaymentID)

	require.Len(t, settled, 1)
	assert.Equal(t, payment.ID, settled[0].PaymentID)
	assert.Zero(t, settled[0].Balance)
}

func TestSettle_PartialThenRemainder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.billing.Settle(ctx, f.reservation.ID, 40000, "card")
	require.NoError(t, err)

	stmt, err := f.billing.ComputeBalance(ctx, f.reservation.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(60000), stmt.Balance)

	_, err = f.billing.Settle(ctx, f.reservation.ID, 60000, "cash")
	require.NoError(t, err)

	stmt, err = f.billing.ComputeBalance(ctx, f.reservation.ID)
	require.NoError(t, err)
	assert.Zero(t, stmt.Balance)
}

func TestSettle_InvalidAmount(t *testing.T) {
	f := newFixture(t)

	for _, amount := range []int64{0, -5000} {
		_, err := f.billing.Settle(context.Background(), f.reservation.ID, amount, "cash")
		assert.ErrorIs(t, err, ErrInvalidAmount)
	}
}

func TestSettle_Overpayment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.billing.Settle(ctx, f.reservation.ID, 150000, "cash")
	require.Error(t, err)

	var overpayment *OverpaymentError
	require.ErrorAs(t, err, &overpayment)
	assert.Equal(t, int64(150000), overpayment.Amount)
	assert.Equal(t, int64(100000), overpayment.Balance)
	assert.Equal(t, "the entered amount (150000) exceeds the pending balance (100000)", err.Error())

	// Nothing was recorded.
	stmt, err := f.billing.ComputeBalance(ctx, f.reservation.ID)
	require.NoError(t, err)
	assert.Zero(t, stmt.TotalPaid)
}

func TestSettle_MissingReservation(t *testing.T) {
	f := newFixture(t)

	_, err := f.billing.Settle(context.Background(), 999, 50000, "cash")
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestDeletePayment_RevertsOwnServices(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := f.addService(t, "minibar", 20000)

	payment, err := f.billing.Settle(ctx, f.reservation.ID, 120000, "cash")
	require.NoError(t, err)

	var deleted []events.PaymentEvent
	f.bus.Subscribe(events.TypePaymentDeleted, func(e events.Event) {
		deleted = append(deleted, e.Payload.(events.PaymentEvent))
	})

	require.NoError(t, f.billing.DeletePayment(ctx, payment.ID))

	stmt, err := f.billing.ComputeBalance(ctx, f.reservation.ID)
	require.NoError(t, err)
	assert.Zero(t, stmt.TotalPaid)
	assert.Equal(t, int64(120000), stmt.Balance)

	got, err := f.db.GetService(ctx, svc.ID)
	require.NoError(t, err)
	assert.False(t, got.Paid())
	assert.Nil(t, got.SettledByPaymentID)

	require.Len(t, deleted, 1)
	assert.Equal(t, int64(120000), deleted[0].Balance)
}

func TestDeletePayment_KeepsOtherPaymentsServices(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := f.addService(t, "laundry", 15000)
	p1, err := f.billing.Settle(ctx, f.reservation.ID, 15000, "cash")
	require.NoError(t, err)

	second := f.addService(t, "minibar", 20000)
	p2, err := f.billing.Settle(ctx, f.reservation.ID, 20000, "card")
	require.NoError(t, err)

	require.NoError(t, f.billing.DeletePayment(ctx, p2.ID))

	gotFirst, err := f.db.GetService(ctx, first.ID)
	require.NoError(t, err)
	assert.True(t, gotFirst.Paid())
	require.NotNil(t, gotFirst.SettledByPaymentID)
	assert.Equal(t, p1.ID, *gotFirst.SettledByPaymentID)

	gotSecond, err := f.db.GetService(ctx, second.ID)
	require.NoError(t, err)
	assert.False(t, gotSecond.Paid())
}

func TestDeletePayment_Missing(t *testing.T) {
	f := newFixture(t)

	err := f.billing.DeletePayment(context.Background(), 999)
	assert.ErrorIs(t, err, database.ErrNotFound)
}
