package booking

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

type serviceFixture struct {
	db       *database.DB
	service  *Service
	bus      *events.Bus
	customer *models.Customer
	room     *models.Room
}

func newServiceFixture(t *testing.T) *serviceFixture {
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

	bus := events.NewBus()
	return &serviceFixture{
		db:       db,
		service:  NewService(db, bus, zerolog.Nop()),
		bus:      bus,
		customer: customer,
		room:     room,
	}
}

// futureDay returns today+offset at midnight UTC, so date rules pass
// regardless of when the test runs.
func futureDay(offset int) time.Time {
	return models.DateOnly(time.Now().UTC()).AddDate(0, 0, offset)
}

func TestServiceCreate(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	var published []events.Event
	f.bus.Subscribe(events.TypeReservationCreated, func(e events.Event) { published = append(published, e) })

	r := &models.Reservation{
		CustomerID: f.customer.ID,
		RoomID:     f.room.ID,
		CheckIn:    futureDay(10),
		CheckOut:   futureDay(15),
	}
	errs, err := f.service.Create(ctx, r)
	require.NoError(t, err)
	assert.True(t, errs.Empty())
	require.NotZero(t, r.ID)

	require.Len(t, published, 1)
	payload := published[0].Payload.(events.ReservationEvent)
	assert.Equal(t, r.ID, payload.ReservationID)
	assert.Equal(t, futureDay(10).Format("2006-01-02"), payload.CheckIn)
}

func TestServiceCreate_ConflictRejected(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	first := &models.Reservation{CustomerID: f.customer.ID, RoomID: f.room.ID, CheckIn: futureDay(10), CheckOut: futureDay(15)}
	errs, err := f.service.Create(ctx, first)
	require.NoError(t, err)
	require.True(t, errs.Empty())

	overlapping := &models.Reservation{CustomerID: f.customer.ID, RoomID: f.room.ID, CheckIn: futureDay(14), CheckOut: futureDay(20)}
	errs, err = f.service.Create(ctx, overlapping)
	require.NoError(t, err)
	require.Len(t, errs, 1)
	assert.Equal(t, "the room is already reserved for the selected dates", errs[0].Message)
	assert.Zero(t, overlapping.ID)

	// Back to back with the first stay is fine.
	adjacent := &models.Reservation{CustomerID: f.customer.ID, RoomID: f.room.ID, CheckIn: futureDay(15), CheckOut: futureDay(20)}
	errs, err = f.service.Create(ctx, adjacent)
	require.NoError(t, err)
	assert.True(t, errs.Empty())
}

func TestServiceUpdate_VersionConflict(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	r := &models.Reservation{CustomerID: f.customer.ID, RoomID: f.room.ID, CheckIn: futureDay(10), CheckOut: futureDay(15)}
	errs, err := f.service.Create(ctx, r)
	require.NoError(t, err)
	require.True(t, errs.Empty())

	r.CheckOut = futureDay(16)
	errs, err = f.service.Update(ctx, r)
	require.NoError(t, err)
	assert.True(t, errs.Empty())
	assert.Equal(t, int64(2), r.Version)

	stale := *r
	stale.Version = 1
	stale.CheckOut = futureDay(17)
	_, err = f.service.Update(ctx, &stale)
	assert.ErrorIs(t, err, database.ErrVersionConflict)
}

func TestServiceUpdate_MissingID(t *testing.T) {
	f := newServiceFixture(t)

	r := &models.Reservation{CustomerID: f.customer.ID, RoomID: f.room.ID, CheckIn: futureDay(10), CheckOut: futureDay(15)}
	_, err := f.service.Update(context.Background(), r)
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestServiceDelete(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	var deleted []events.Event
	f.bus.Subscribe(events.TypeReservationDeleted, func(e events.Event) { deleted = append(deleted, e) })

	r := &models.Reservation{CustomerID: f.customer.ID, RoomID: f.room.ID, CheckIn: futureDay(10), CheckOut: futureDay(15)}
	errs, err := f.service.Create(ctx, r)
	require.NoError(t, err)
	require.True(t, errs.Empty())

	require.NoError(t, f.service.Delete(ctx, r.ID))
	assert.Len(t, deleted, 1)

	assert.ErrorIs(t, f.service.Delete(ctx, r.ID), database.ErrNotFound)
}

func TestServiceDelete_BlockedByService(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	r := &models.Reservation{CustomerID: f.customer.ID, RoomID: f.room.ID, CheckIn: futureDay(10), CheckOut: futureDay(15)}
	errs, err := f.service.Create(ctx, r)
	require.NoError(t, err)
	require.True(t, errs.Empty())

	svc := &models.Service{ReservationID: r.ID, Name: "laundry", Price: 15000}
	require.NoError(t, f.db.CreateService(ctx, svc))

	assert.ErrorIs(t, f.service.Delete(ctx, r.ID), database.ErrConflict)
}
